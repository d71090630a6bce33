package repository

import (
	"context"
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an equivalence repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or replaces the equivalence row for the account.
func (r *PostgresRepository) Upsert(ctx context.Context, accountID int64, normalized string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO username_equivalence (account_id, normalized, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (account_id) DO UPDATE SET normalized = EXCLUDED.normalized, updated_at = now()`,
		accountID, normalized)
	return err
}

// InsertIgnore inserts the row only if the account has none yet.
func (r *PostgresRepository) InsertIgnore(ctx context.Context, accountID int64, normalized string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO username_equivalence (account_id, normalized, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (account_id) DO NOTHING`,
		accountID, normalized)
	return err
}

// GetAccountIDsByNormalized returns up to limit account ids whose equivalence
// row matches normalized, excluding excludeAccountID.
func (r *PostgresRepository) GetAccountIDsByNormalized(ctx context.Context, normalized string, excludeAccountID int64, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT account_id FROM username_equivalence
		 WHERE normalized = $1 AND account_id <> $2
		 ORDER BY account_id LIMIT $3`,
		normalized, excludeAccountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
