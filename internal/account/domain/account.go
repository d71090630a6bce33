package domain

import (
	"errors"
	"time"
)

// Account is a local wiki account. The account store is authoritative for
// usernames and ids; identity bindings and equivalence rows reference it by id.
type Account struct {
	ID               int64
	Name             string
	Email            string
	RealName         string // optional display name
	EmailConfirmedAt *time.Time
	Temporary        bool // temporary/ephemeral accounts are excluded from binding and equivalence tracking
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EmailConfirmed reports whether the account's email has been confirmed.
func (a *Account) EmailConfirmed() bool {
	return a.EmailConfirmedAt != nil
}

// Registered reports whether the account participates in identity binding.
func (a *Account) Registered() bool {
	return !a.Temporary
}

// Validate validates the account for persistence. Returns an error describing
// the first validation failure.
func (a *Account) Validate() error {
	if a.Name == "" {
		return errors.New("account name is required")
	}
	return nil
}
