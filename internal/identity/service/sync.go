package service

import (
	"context"
	"log"
	"time"

	"wiki-identity-bridge/internal/provider"
)

// SyncTraits refreshes the local account from the provider's identity record:
// a changed email replaces the stored one (confirmed only if the provider has
// verified it), a newly verified address confirms the stored email, and a
// changed display name is copied over. Accounts without a binding, and
// provider read failures, are skipped silently; this is convergence, not a
// consistency guarantee.
func (s *Service) SyncTraits(ctx context.Context, accountID int64) error {
	ctx, span := s.tracer.Start(ctx, "identity.SyncTraits")
	defer span.End()

	bound, err := s.bindings.GetByAccount(ctx, accountID, s.providerHost)
	if err != nil {
		return err
	}
	if bound == nil {
		return nil
	}

	identity, err := s.admin.GetIdentity(ctx, bound.IdentityID)
	if err != nil {
		log.Printf("identity: trait sync for account %d failed to load identity: %v", accountID, err)
		return nil
	}
	return s.applyTraits(ctx, accountID, identity)
}

// applyTraits writes provider traits into the local account, touching only
// fields that changed.
func (s *Service) applyTraits(ctx context.Context, accountID int64, identity *provider.Identity) error {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acct == nil {
		return nil
	}

	if acct.Email != identity.Traits.Email {
		var confirmedAt *time.Time
		if identity.EmailVerified() {
			now := time.Now().UTC()
			confirmedAt = &now
		}
		if err := s.accounts.UpdateEmail(ctx, accountID, identity.Traits.Email, confirmedAt); err != nil {
			return err
		}
	} else if !acct.EmailConfirmed() && identity.EmailVerified() {
		if err := s.accounts.ConfirmEmail(ctx, accountID, time.Now().UTC()); err != nil {
			return err
		}
	}

	if identity.Traits.Name != "" && acct.RealName != identity.Traits.Name {
		if err := s.accounts.UpdateRealName(ctx, accountID, identity.Traits.Name); err != nil {
			return err
		}
	}
	return nil
}
