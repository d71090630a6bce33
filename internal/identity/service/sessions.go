package service

import (
	"context"
	"log"

	"wiki-identity-bridge/internal/telemetry"
)

// Deauthenticate terminates the provider session carried by cookieHeader via
// the browser logout flow. Best-effort: provider failures are logged and
// swallowed so local logout never blocks on the provider.
func (s *Service) Deauthenticate(ctx context.Context, cookieHeader string) {
	ctx, span := s.tracer.Start(ctx, "identity.Deauthenticate")
	defer span.End()

	if err := s.frontend.Logout(ctx, cookieHeader); err != nil {
		log.Printf("identity: logout flow failed: %v", err)
		return
	}
	s.emit(telemetry.EventLogout, nil)
}

// InvalidateAllSessions revokes every provider session for the identity bound
// to accountID. An account with no binding has nothing to invalidate and the
// call is a no-op with zero provider calls. Revocation failures are logged
// and swallowed: local account actions never fail because remote cleanup did.
func (s *Service) InvalidateAllSessions(ctx context.Context, accountID int64) error {
	ctx, span := s.tracer.Start(ctx, "identity.InvalidateAllSessions")
	defer span.End()

	bound, err := s.bindings.GetByAccount(ctx, accountID, s.providerHost)
	if err != nil {
		return err
	}
	if bound == nil {
		return nil
	}
	if err := s.admin.DeleteSessions(ctx, bound.IdentityID); err != nil {
		log.Printf("identity: session revocation for account %d failed: %v", accountID, err)
		return nil
	}
	s.emit(telemetry.EventSessionsRevoked, func(e *telemetry.AuthEvent) {
		e.AccountID = accountID
		e.IdentityID = bound.IdentityID
	})
	return nil
}
