// Package server wires the HTTP surface: router, middleware stack, and the
// session-resolving middleware that maps provider cookies to bound accounts.
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	equivhandler "wiki-identity-bridge/internal/equivalence/handler"
	healthhandler "wiki-identity-bridge/internal/health/handler"
	identityhandler "wiki-identity-bridge/internal/identity/handler"
)

// Deps holds the handlers and middleware the router mounts.
type Deps struct {
	// Identity serves the /v1 authentication, logout, binding, and flow endpoints.
	Identity *identityhandler.Handler
	// Usability serves POST /v1/username-usable.
	Usability *equivhandler.Handler
	// Health serves the /health probes.
	Health *healthhandler.Handler
	// Session, when non-nil, resolves provider cookies to bound accounts for
	// every /v1 request. Built with SessionMiddleware.
	Session func(http.Handler) http.Handler
}

// NewRouter builds the chi router with the full middleware stack and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/health", deps.Health.Routes)

	r.Route("/v1", func(r chi.Router) {
		if deps.Session != nil {
			r.Use(deps.Session)
		}
		deps.Identity.Routes(r)
		deps.Usability.Routes(r)
	})

	return r
}

// requestLogger logs completed requests with method, path, status, and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Printf("http: %s %s status=%d bytes=%d duration=%s request_id=%s",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start), middleware.GetReqID(r.Context()))
	})
}
