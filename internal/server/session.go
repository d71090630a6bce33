package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	bindingdomain "wiki-identity-bridge/internal/binding/domain"
	"wiki-identity-bridge/internal/provider"
)

// sessionVerifier introspects a forwarded Cookie header at the provider.
type sessionVerifier interface {
	ToSession(ctx context.Context, cookieHeader string) (*provider.Session, error)
}

// bindingLookup reads an existing identity binding.
type bindingLookup interface {
	GetByIdentity(ctx context.Context, identityID, providerHost string) (*bindingdomain.Binding, error)
}

// SessionMiddleware resolves the provider session cookie to a bound account
// and stashes it in the request context. Binding lookups only: no username
// matching and no auto-create happen here. Unauthenticated requests, unbound
// identities, and provider failures all pass through anonymous.
//
// cookieName is the provider's session cookie; requests without it skip the
// provider round trip entirely. Empty means any cookie triggers introspection.
func SessionMiddleware(frontend sessionVerifier, bindings bindingLookup, providerHost, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie := r.Header.Get("Cookie")
			if cookie == "" {
				next.ServeHTTP(w, r)
				return
			}
			if cookieName != "" {
				if _, err := r.Cookie(cookieName); err != nil {
					next.ServeHTTP(w, r)
					return
				}
			}

			session, err := frontend.ToSession(r.Context(), cookie)
			if err != nil {
				if !errors.Is(err, provider.ErrUnauthenticated) {
					log.Printf("server: session introspection failed: %v", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			bound, err := bindings.GetByIdentity(r.Context(), session.Identity.ID, providerHost)
			if err != nil {
				log.Printf("server: binding lookup failed: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if bound == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithAccount(r.Context(), bound.AccountID, bound.IdentityID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
