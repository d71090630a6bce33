package service

import (
	"context"
	"log"

	accountdomain "wiki-identity-bridge/internal/account/domain"
)

// AccountCreated records the equivalence row for a newly created account.
// Temporary accounts are excluded from equivalence tracking.
func (s *Service) AccountCreated(ctx context.Context, acct *accountdomain.Account) error {
	if acct.Temporary {
		return nil
	}
	return s.usernames.RecordUsername(ctx, acct.ID, acct.Name)
}

// Rename changes the account's username, refreshes its equivalence row, and
// propagates the new name to the provider's username trait when a binding
// exists. The provider patch is best-effort: a failure is logged and the
// local rename stands. Temporary accounts rename locally only; they never
// gain an equivalence row or a binding.
func (s *Service) Rename(ctx context.Context, accountID int64, newName string) error {
	ctx, span := s.tracer.Start(ctx, "identity.Rename")
	defer span.End()

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acct == nil {
		return nil
	}
	if err := s.accounts.Rename(ctx, accountID, newName); err != nil {
		return err
	}
	if acct.Temporary {
		return nil
	}
	if err := s.usernames.RecordUsername(ctx, accountID, newName); err != nil {
		return err
	}

	bound, err := s.bindings.GetByAccount(ctx, accountID, s.providerHost)
	if err != nil {
		return err
	}
	if bound == nil {
		return nil
	}
	if err := s.admin.PatchUsername(ctx, bound.IdentityID, newName); err != nil {
		log.Printf("identity: failed to patch identity for account %d: %v", accountID, err)
	}
	return nil
}
