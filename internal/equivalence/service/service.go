package service

import (
	"context"
	"fmt"

	accountdomain "wiki-identity-bridge/internal/account/domain"
	"wiki-identity-bridge/internal/equivalence"
)

// Usability reason strings, returned verbatim to clients.
const (
	ReasonInvalid    = "Username is not valid"
	ReasonTaken      = "Username is taken"
	reasonTooSimilar = "Username is too similar to a taken username: %s"
)

// Usability is the outcome of a CheckUsable call. Canonical is the host's
// canonical form of the candidate and is set whenever the name passed the
// validity rules; accounts must be created under it, not the raw candidate.
type Usability struct {
	Usable    bool   `json:"usable"`
	Reason    string `json:"reason,omitempty"`
	Canonical string `json:"canonical,omitempty"`
}

// Canonicalizer applies the host's username-validity rules. It returns the
// canonical form of the candidate, or ok=false when the name cannot name an
// account at all.
type Canonicalizer interface {
	Canonical(username string) (string, bool)
}

// AccountRepo is the minimal account repository needed by the usability checker.
type AccountRepo interface {
	GetByID(ctx context.Context, id int64) (*accountdomain.Account, error)
	GetByName(ctx context.Context, name string) (*accountdomain.Account, error)
}

// EquivRepo is the minimal equivalence repository needed by this service.
type EquivRepo interface {
	Upsert(ctx context.Context, accountID int64, normalized string) error
	GetAccountIDsByNormalized(ctx context.Context, normalized string, excludeAccountID int64, limit int) ([]int64, error)
}

// Service checks candidate usernames against existing accounts and their
// confusable-equivalence classes, and keeps equivalence rows in sync with
// account lifecycle events.
type Service struct {
	canonical  Canonicalizer
	accounts   AccountRepo
	equiv      EquivRepo
	normalizer *equivalence.Normalizer
}

// NewService returns a Service with the given dependencies.
func NewService(canonical Canonicalizer, accounts AccountRepo, equiv EquivRepo, normalizer *equivalence.Normalizer) *Service {
	return &Service{
		canonical:  canonical,
		accounts:   accounts,
		equiv:      equiv,
		normalizer: normalizer,
	}
}

// CheckUsable reports whether candidate can name a new account. It short-circuits
// on the first failure: host validity rules, exact-name collision, then
// equivalence-class collision (the conflicting account's current username is
// included in the reason). The check is advisory; the store does not enforce it.
func (s *Service) CheckUsable(ctx context.Context, candidate string) (*Usability, error) {
	canonical, ok := s.canonical.Canonical(candidate)
	if !ok {
		return &Usability{Usable: false, Reason: ReasonInvalid}, nil
	}

	existing, err := s.accounts.GetByName(ctx, canonical)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Usability{Usable: false, Reason: ReasonTaken, Canonical: canonical}, nil
	}

	ids, err := s.equiv.GetAccountIDsByNormalized(ctx, s.normalizer.Normalize(canonical), 0, 1)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		conflict, err := s.accounts.GetByID(ctx, ids[0])
		if err != nil {
			return nil, err
		}
		name := ""
		if conflict != nil {
			name = conflict.Name
		}
		return &Usability{Usable: false, Reason: fmt.Sprintf(reasonTooSimilar, name), Canonical: canonical}, nil
	}

	return &Usability{Usable: true, Canonical: canonical}, nil
}

// Canonical returns the host's canonical form of username, or ok=false when
// the name cannot name an account at all.
func (s *Service) Canonical(username string) (string, bool) {
	return s.canonical.Canonical(username)
}

// RecordUsername writes the equivalence row for the account's current
// username. Called on account creation and after renames; temporary accounts
// are skipped by callers before they reach this method.
func (s *Service) RecordUsername(ctx context.Context, accountID int64, username string) error {
	return s.equiv.Upsert(ctx, accountID, s.normalizer.Normalize(username))
}
