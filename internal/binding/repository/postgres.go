package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"wiki-identity-bridge/internal/binding/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a binding repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByIdentity returns the binding for the identity within the provider scope, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByIdentity(ctx context.Context, identityID, providerHost string) (*domain.Binding, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT account_id, identity_id, provider_host, created_at
		 FROM identity_bindings WHERE identity_id = $1 AND provider_host = $2`,
		identityID, providerHost)
	return scanBinding(row)
}

// GetByAccount returns the binding for the account within the provider scope, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByAccount(ctx context.Context, accountID int64, providerHost string) (*domain.Binding, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT account_id, identity_id, provider_host, created_at
		 FROM identity_bindings WHERE account_id = $1 AND provider_host = $2`,
		accountID, providerHost)
	return scanBinding(row)
}

// Bind inserts the binding, relying on the unique indexes to absorb
// concurrent duplicate inserts: ON CONFLICT DO NOTHING makes the operation
// idempotent without application-level locking.
func (r *PostgresRepository) Bind(ctx context.Context, b *domain.Binding) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identity_bindings (account_id, identity_id, provider_host, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT DO NOTHING`,
		b.AccountID, b.IdentityID, b.ProviderHost, b.CreatedAt)
	return err
}

func scanBinding(row *sql.Row) (*domain.Binding, error) {
	var b domain.Binding
	if err := row.Scan(&b.AccountID, &b.IdentityID, &b.ProviderHost, &b.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
