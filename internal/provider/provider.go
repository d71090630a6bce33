// Package provider is an HTTP client for an Ory-Kratos-compatible identity
// provider. The frontend client handles browser-facing session introspection
// and logout flows; the admin client handles identity administration.
package provider

import "errors"

// ErrUnauthenticated is returned when the provider reports no active session
// for the forwarded cookies (401/403 or active=false). It is a control-flow
// signal, not a failure: callers redirect to the provider's login flow.
var ErrUnauthenticated = errors.New("provider: no active session")

// Traits are the user-editable attributes the provider stores per identity.
// Name is optional; providers without a name trait leave it empty.
type Traits struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
}

// VerifiableAddress is an email address the provider can verify out of band.
type VerifiableAddress struct {
	Value    string `json:"value"`
	Verified bool   `json:"verified"`
}

// Identity is an identity record as returned by the provider.
type Identity struct {
	ID                  string              `json:"id"`
	Traits              Traits              `json:"traits"`
	VerifiableAddresses []VerifiableAddress `json:"verifiable_addresses,omitempty"`
}

// Session is the provider's session-introspection result.
type Session struct {
	ID       string   `json:"id"`
	Active   bool     `json:"active"`
	Identity Identity `json:"identity"`
}

// EmailVerified reports whether the identity's first verifiable address is verified.
func (i *Identity) EmailVerified() bool {
	return len(i.VerifiableAddresses) > 0 && i.VerifiableAddresses[0].Verified
}
