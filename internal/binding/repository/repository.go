package repository

import (
	"context"

	"wiki-identity-bridge/internal/binding/domain"
)

// Repository defines persistence for identity bindings.
type Repository interface {
	// GetByIdentity returns the binding for the identity within the provider scope, or nil if not found.
	// Safe against a replica; it is a read-only index lookup.
	GetByIdentity(ctx context.Context, identityID, providerHost string) (*domain.Binding, error)
	// GetByAccount returns the binding for the account within the provider scope, or nil if not found.
	GetByAccount(ctx context.Context, accountID int64, providerHost string) (*domain.Binding, error)
	// Bind inserts the binding if absent. Duplicate inserts for the same
	// (account, provider) or (identity, provider) pair are silently ignored,
	// so concurrent first logins cannot produce two rows.
	Bind(ctx context.Context, b *domain.Binding) error
}
