package repository

import "context"

// Repository defines persistence for username equivalence classes. Each
// registered account has at most one row holding the normalized form of its
// current username.
type Repository interface {
	// Upsert inserts or replaces the equivalence row for the account.
	Upsert(ctx context.Context, accountID int64, normalized string) error
	// InsertIgnore inserts the row only if the account has none yet.
	// Used by the backfill so it never overwrites fresher rows.
	InsertIgnore(ctx context.Context, accountID int64, normalized string) error
	// GetAccountIDsByNormalized returns up to limit account ids whose
	// equivalence row matches normalized, excluding excludeAccountID (pass 0
	// to exclude nothing).
	GetAccountIDsByNormalized(ctx context.Context, normalized string, excludeAccountID int64, limit int) ([]int64, error)
}
