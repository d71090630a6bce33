// Package service implements the identity bridge: it introspects provider
// sessions, resolves verified identities to local accounts, and maintains the
// identity bindings that tie the two together.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	accountdomain "wiki-identity-bridge/internal/account/domain"
	bindingdomain "wiki-identity-bridge/internal/binding/domain"
	equivservice "wiki-identity-bridge/internal/equivalence/service"
	"wiki-identity-bridge/internal/provider"
	"wiki-identity-bridge/internal/telemetry"
)

// Sentinel errors; handlers map them to HTTP responses.
var (
	ErrInvalidIdentityID = errors.New("identity id is not a valid UUID")
	ErrUsernameNotUsable = errors.New("username is not usable for a new account")
)

// RedirectError signals that the caller must answer the current request with
// a redirect to Location (the provider's hosted login flow) and stop: no
// account resolution happens for unauthenticated requests.
type RedirectError struct {
	Location string
}

func (e *RedirectError) Error() string {
	return "authentication requires login at " + e.Location
}

// AuthResult is the outcome of a successful session introspection.
// AccountID is nil when the identity has no local account yet; the traits are
// still populated so the host can provision one.
type AuthResult struct {
	AccountID  *int64
	IdentityID string
	Username   string
	Email      string
	RealName   string
}

// BindingRepo is the minimal binding repository needed by the bridge.
type BindingRepo interface {
	GetByIdentity(ctx context.Context, identityID, providerHost string) (*bindingdomain.Binding, error)
	GetByAccount(ctx context.Context, accountID int64, providerHost string) (*bindingdomain.Binding, error)
	Bind(ctx context.Context, b *bindingdomain.Binding) error
}

// AccountRepo is the minimal account repository needed by the bridge.
type AccountRepo interface {
	GetByID(ctx context.Context, id int64) (*accountdomain.Account, error)
	GetByName(ctx context.Context, name string) (*accountdomain.Account, error)
	Create(ctx context.Context, a *accountdomain.Account) error
	Rename(ctx context.Context, id int64, newName string) error
	UpdateEmail(ctx context.Context, id int64, email string, confirmedAt *time.Time) error
	ConfirmEmail(ctx context.Context, id int64, at time.Time) error
	UpdateRealName(ctx context.Context, id int64, realName string) error
}

// FrontendAPI is the provider's public API surface used by the bridge.
type FrontendAPI interface {
	ToSession(ctx context.Context, cookieHeader string) (*provider.Session, error)
	Logout(ctx context.Context, cookieHeader string) error
	LoginURL(returnTo string) string
}

// AdminAPI is the provider's admin API surface used by the bridge.
type AdminAPI interface {
	GetIdentity(ctx context.Context, id string) (*provider.Identity, error)
	DeleteSessions(ctx context.Context, id string) error
	PatchUsername(ctx context.Context, id, username string) error
}

// UsernameChecker decides whether a candidate username may name a new account
// and records equivalence rows for account lifecycle events. Implemented by
// the equivalence service.
type UsernameChecker interface {
	CheckUsable(ctx context.Context, candidate string) (*equivservice.Usability, error)
	RecordUsername(ctx context.Context, accountID int64, username string) error
	Canonical(username string) (string, bool)
}

// Service bridges the identity provider to local accounts.
type Service struct {
	bindings     BindingRepo
	accounts     AccountRepo
	frontend     FrontendAPI
	admin        AdminAPI
	usernames    UsernameChecker
	providerHost string
	autoCreate   bool
	events       telemetry.EventEmitter

	tracer trace.Tracer
	logins metric.Int64Counter
}

// NewService returns a Service with the given dependencies. providerHost is
// the public provider base URL; it scopes every binding so multiple provider
// environments can share one database. events may be nil.
func NewService(
	bindings BindingRepo,
	accounts AccountRepo,
	frontend FrontendAPI,
	admin AdminAPI,
	usernames UsernameChecker,
	providerHost string,
	autoCreate bool,
	events telemetry.EventEmitter,
) *Service {
	logins, err := otel.Meter("wiki-identity-bridge/identity").Int64Counter("auth.logins",
		metric.WithDescription("Authentication attempts by outcome"))
	if err != nil {
		log.Printf("identity: login counter init failed: %v", err)
	}
	return &Service{
		bindings:     bindings,
		accounts:     accounts,
		frontend:     frontend,
		admin:        admin,
		usernames:    usernames,
		providerHost: providerHost,
		autoCreate:   autoCreate,
		events:       events,
		tracer:       otel.Tracer("wiki-identity-bridge/identity"),
		logins:       logins,
	}
}

// Authenticate introspects the session carried by cookieHeader and resolves
// it to a local account. Resolution precedence is strict:
//
//  1. an existing binding for the identity always wins, so a later username
//     change at the provider cannot sever an established binding;
//  2. an exact current-username match against a registered account creates a
//     binding (the one-time migration path for accounts that predate the
//     provider) and wins;
//  3. otherwise the account is auto-provisioned when enabled, or the result
//     carries a nil AccountID for the host to provision.
//
// An unauthenticated session returns a *RedirectError pointing at the
// provider's login flow with returnTo carried as return_to. Any other
// provider failure denies the attempt; there are no retries.
func (s *Service) Authenticate(ctx context.Context, cookieHeader, returnTo string) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Authenticate")
	defer span.End()

	session, err := s.frontend.ToSession(ctx, cookieHeader)
	if err != nil {
		if errors.Is(err, provider.ErrUnauthenticated) {
			s.countLogin(ctx, "unauthenticated")
			return nil, &RedirectError{Location: s.frontend.LoginURL(returnTo)}
		}
		s.countLogin(ctx, "provider_error")
		s.emit(telemetry.EventLoginDenied, func(e *telemetry.AuthEvent) { e.Reason = err.Error() })
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	identity := session.Identity
	result := &AuthResult{
		IdentityID: identity.ID,
		Username:   identity.Traits.Username,
		Email:      identity.Traits.Email,
		RealName:   identity.Traits.Name,
	}
	span.SetAttributes(attribute.String("identity.id", identity.ID))

	bound, err := s.bindings.GetByIdentity(ctx, identity.ID, s.providerHost)
	if err != nil {
		return nil, err
	}
	if bound != nil {
		result.AccountID = &bound.AccountID
		// Convergence, not a guarantee: a failed trait sync never blocks login.
		if err := s.applyTraits(ctx, bound.AccountID, &identity); err != nil {
			log.Printf("identity: trait sync for account %d failed: %v", bound.AccountID, err)
		}
		s.countLogin(ctx, "bound")
		s.emit(telemetry.EventLoginSuccess, func(e *telemetry.AuthEvent) {
			e.AccountID = bound.AccountID
			e.IdentityID = identity.ID
		})
		return result, nil
	}

	// Host accounts store canonical names; the provider's raw username must be
	// canonicalized before the exact-match lookup.
	if name, ok := s.usernames.Canonical(identity.Traits.Username); ok {
		acct, err := s.accounts.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if acct != nil && acct.Registered() {
			if err := s.bind(ctx, acct.ID, identity.ID); err != nil {
				return nil, err
			}
			result.AccountID = &acct.ID
			s.countLogin(ctx, "migrated")
			s.emit(telemetry.EventBindingCreated, func(e *telemetry.AuthEvent) {
				e.AccountID = acct.ID
				e.IdentityID = identity.ID
				e.Username = acct.Name
			})
			return result, nil
		}
	}

	// No binding, no exact username match. A confusable-but-different name
	// never auto-merges here; collisions are handled at creation time.
	if !s.autoCreate {
		s.countLogin(ctx, "no_account")
		return result, nil
	}
	created, err := s.Provision(ctx, &identity)
	if err != nil {
		return nil, err
	}
	result.AccountID = &created.ID
	s.countLogin(ctx, "provisioned")
	return result, nil
}

// SaveExtraAttributes persists the binding between accountID and identityID.
// Called by hosts that create accounts themselves after Authenticate returned
// a nil AccountID. Idempotent: a duplicate call is a no-op.
func (s *Service) SaveExtraAttributes(ctx context.Context, accountID int64, identityID string) error {
	return s.bind(ctx, accountID, identityID)
}

// Provision creates a local account from the identity's traits, records its
// equivalence row, and binds it. The username must pass the usability check;
// a confusable collision returns ErrUsernameNotUsable rather than merging
// into the existing account. The account is created under the canonical form
// of the provider username, so a repeat usability check finds it by exact
// match.
func (s *Service) Provision(ctx context.Context, identity *provider.Identity) (*accountdomain.Account, error) {
	usable, err := s.usernames.CheckUsable(ctx, identity.Traits.Username)
	if err != nil {
		return nil, err
	}
	if !usable.Usable {
		return nil, fmt.Errorf("%w: %s", ErrUsernameNotUsable, usable.Reason)
	}

	acct := &accountdomain.Account{
		Name:     usable.Canonical,
		Email:    identity.Traits.Email,
		RealName: identity.Traits.Name,
	}
	if identity.EmailVerified() {
		now := time.Now().UTC()
		acct.EmailConfirmedAt = &now
	}
	if err := acct.Validate(); err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, err
	}
	if err := s.usernames.RecordUsername(ctx, acct.ID, acct.Name); err != nil {
		return nil, err
	}
	if err := s.bind(ctx, acct.ID, identity.ID); err != nil {
		return nil, err
	}
	s.emit(telemetry.EventAccountProvisioned, func(e *telemetry.AuthEvent) {
		e.AccountID = acct.ID
		e.IdentityID = identity.ID
		e.Username = acct.Name
	})
	return acct, nil
}

func (s *Service) bind(ctx context.Context, accountID int64, identityID string) error {
	if _, err := uuid.Parse(identityID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidIdentityID, identityID)
	}
	return s.bindings.Bind(ctx, &bindingdomain.Binding{
		AccountID:    accountID,
		IdentityID:   identityID,
		ProviderHost: s.providerHost,
	})
}

func (s *Service) countLogin(ctx context.Context, outcome string) {
	if s.logins != nil {
		s.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (s *Service) emit(eventType string, fill func(*telemetry.AuthEvent)) {
	if s.events == nil {
		return
	}
	event := telemetry.NewAuthEvent(eventType)
	event.ProviderHost = s.providerHost
	if fill != nil {
		fill(event)
	}
	telemetry.EmitAsync(s.events, context.Background(), event)
}
