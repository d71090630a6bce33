package server

import "context"

type contextKey struct{ name string }

var (
	accountIDKey  = contextKey{"account_id"}
	identityIDKey = contextKey{"identity_id"}
)

// WithAccount returns a context with the resolved account_id and identity_id
// set. Handlers can read these via GetAccountID and GetIdentityID.
func WithAccount(ctx context.Context, accountID int64, identityID string) context.Context {
	ctx = context.WithValue(ctx, accountIDKey, accountID)
	ctx = context.WithValue(ctx, identityIDKey, identityID)
	return ctx
}

// GetAccountID returns the account_id from context and true if set; otherwise 0, false.
func GetAccountID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(accountIDKey).(int64)
	return v, ok
}

// GetIdentityID returns the identity_id from context and true if set; otherwise "", false.
func GetIdentityID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(identityIDKey).(string)
	return v, ok
}
