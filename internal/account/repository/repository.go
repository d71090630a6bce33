package repository

import (
	"context"
	"time"

	"wiki-identity-bridge/internal/account/domain"
)

// Repository defines persistence for local accounts. The account table is
// shared with the wiki host; this service only performs the writes the
// bridge needs (provisioning, renames, trait sync).
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	// GetByName matches the exact current username, including temporary accounts.
	GetByName(ctx context.Context, name string) (*domain.Account, error)
	// Create persists the account and assigns its ID.
	Create(ctx context.Context, a *domain.Account) error
	// Rename changes the account's username.
	Rename(ctx context.Context, id int64, newName string) error
	// UpdateEmail sets the email and its confirmation timestamp (nil clears confirmation).
	UpdateEmail(ctx context.Context, id int64, email string, confirmedAt *time.Time) error
	// ConfirmEmail marks the current email confirmed at the given time.
	ConfirmEmail(ctx context.Context, id int64, at time.Time) error
	// UpdateRealName sets the display name.
	UpdateRealName(ctx context.Context, id int64, realName string) error
	// ListPage returns up to limit accounts with ID > afterID in ID order.
	// Used by the equivalence backfill to walk the table in bounded batches.
	ListPage(ctx context.Context, afterID int64, limit int) ([]*domain.Account, error)
}
