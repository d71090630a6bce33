package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"wiki-identity-bridge/internal/account/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an account repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `account_id, account_name, email, real_name, email_confirmed_at, is_temporary, created_at, updated_at`

// GetByID returns the account for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_id = $1`, id)
	return scanAccount(row)
}

// GetByName returns the account with the exact given username, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_name = $1`, name)
	return scanAccount(row)
}

// Create persists the account and assigns its ID from the sequence.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	return r.db.QueryRowContext(ctx,
		`INSERT INTO accounts (account_name, email, real_name, email_confirmed_at, is_temporary, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING account_id`,
		a.Name, a.Email, a.RealName, a.EmailConfirmedAt, a.Temporary, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
}

// Rename changes the account's username.
func (r *PostgresRepository) Rename(ctx context.Context, id int64, newName string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET account_name = $2, updated_at = now() WHERE account_id = $1`, id, newName)
	return err
}

// UpdateEmail sets the email and its confirmation timestamp (nil clears confirmation).
func (r *PostgresRepository) UpdateEmail(ctx context.Context, id int64, email string, confirmedAt *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET email = $2, email_confirmed_at = $3, updated_at = now() WHERE account_id = $1`,
		id, email, confirmedAt)
	return err
}

// ConfirmEmail marks the current email confirmed at the given time.
func (r *PostgresRepository) ConfirmEmail(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET email_confirmed_at = $2, updated_at = now() WHERE account_id = $1`, id, at)
	return err
}

// UpdateRealName sets the display name.
func (r *PostgresRepository) UpdateRealName(ctx context.Context, id int64, realName string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET real_name = $2, updated_at = now() WHERE account_id = $1`, id, realName)
	return err
}

// ListPage returns up to limit accounts with ID > afterID in ID order.
func (r *PostgresRepository) ListPage(ctx context.Context, afterID int64, limit int) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_id > $1 ORDER BY account_id LIMIT $2`,
		afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccountRow(s rowScanner) (*domain.Account, error) {
	var a domain.Account
	var confirmedAt sql.NullTime
	if err := s.Scan(&a.ID, &a.Name, &a.Email, &a.RealName, &confirmedAt, &a.Temporary, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		a.EmailConfirmedAt = &t
	}
	return &a, nil
}

func scanAccount(row *sql.Row) (*domain.Account, error) {
	a, err := scanAccountRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}
