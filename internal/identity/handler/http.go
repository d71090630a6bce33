// Package handler exposes the identity bridge over HTTP: session
// authentication with login redirects, logout, binding management, and the
// provider flow URLs a wiki host links from its UI.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"wiki-identity-bridge/internal/identity/service"
)

// Bridge is the identity service surface the HTTP handlers need.
type Bridge interface {
	Authenticate(ctx context.Context, cookieHeader, returnTo string) (*service.AuthResult, error)
	Deauthenticate(ctx context.Context, cookieHeader string)
	SaveExtraAttributes(ctx context.Context, accountID int64, identityID string) error
	InvalidateAllSessions(ctx context.Context, accountID int64) error
	SyncTraits(ctx context.Context, accountID int64) error
	Rename(ctx context.Context, accountID int64, newName string) error
}

// FlowURLs builds the provider's hosted browser-flow URLs.
type FlowURLs interface {
	FlowURL(flow, returnTo string) string
}

// Handler serves the /v1 identity endpoints.
type Handler struct {
	bridge Bridge
	flows  FlowURLs
	uiURL  string
}

// NewHandler returns a Handler. uiURL is the provider's settings UI base URL
// and may be empty.
func NewHandler(bridge Bridge, flows FlowURLs, uiURL string) *Handler {
	return &Handler{bridge: bridge, flows: flows, uiURL: uiURL}
}

// Routes mounts the identity endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/authenticate", h.Authenticate)
	r.Post("/logout", h.Logout)
	r.Get("/flows", h.Flows)
	r.Route("/accounts/{accountID}", func(r chi.Router) {
		r.Post("/binding", h.Bind)
		r.Post("/invalidate-sessions", h.InvalidateSessions)
		r.Post("/sync-traits", h.SyncTraits)
		r.Post("/rename", h.Rename)
	})
}

// AuthResponse is the JSON shape of a resolved authentication.
type AuthResponse struct {
	AccountID  *int64 `json:"accountId"`
	IdentityID string `json:"identityId"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	RealName   string `json:"realName,omitempty"`
}

// Authenticate handles GET /v1/authenticate. It forwards the request's Cookie
// header to the provider and resolves the session to a local account. An
// unauthenticated request is answered with a 303 redirect to the provider's
// login flow carrying return_to; provider failures deny with 502.
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	returnTo := r.URL.Query().Get("return_to")

	result, err := h.bridge.Authenticate(r.Context(), r.Header.Get("Cookie"), returnTo)
	if err != nil {
		var redirect *service.RedirectError
		if errors.As(err, &redirect) {
			http.Redirect(w, r, redirect.Location, http.StatusSeeOther)
			return
		}
		if errors.Is(err, service.ErrUsernameNotUsable) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		AccountID:  result.AccountID,
		IdentityID: result.IdentityID,
		Username:   result.Username,
		Email:      result.Email,
		RealName:   result.RealName,
	})
}

// Logout handles POST /v1/logout. Always 204: provider-side logout is
// best-effort and its failure must not block local logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.bridge.Deauthenticate(r.Context(), r.Header.Get("Cookie"))
	w.WriteHeader(http.StatusNoContent)
}

// BindRequest is the body for POST /v1/accounts/{accountID}/binding.
type BindRequest struct {
	IdentityID string `json:"identityId"`
}

// Bind handles POST /v1/accounts/{accountID}/binding. Hosts call it after
// creating an account themselves for an identity that had none. Idempotent.
func (h *Handler) Bind(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(w, r)
	if !ok {
		return
	}
	var req BindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.bridge.SaveExtraAttributes(r.Context(), accountID, req.IdentityID); err != nil {
		if errors.Is(err, service.ErrInvalidIdentityID) {
			writeError(w, http.StatusBadRequest, "identityId must be a UUID")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save binding")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InvalidateSessions handles POST /v1/accounts/{accountID}/invalidate-sessions.
// 204 even when the account has no binding or the provider refused; revocation
// is fire-and-forget.
func (h *Handler) InvalidateSessions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(w, r)
	if !ok {
		return
	}
	if err := h.bridge.InvalidateAllSessions(r.Context(), accountID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to invalidate sessions")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncTraits handles POST /v1/accounts/{accountID}/sync-traits.
func (h *Handler) SyncTraits(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(w, r)
	if !ok {
		return
	}
	if err := h.bridge.SyncTraits(r.Context(), accountID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sync traits")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenameRequest is the body for POST /v1/accounts/{accountID}/rename.
type RenameRequest struct {
	Username string `json:"username"`
}

// Rename handles POST /v1/accounts/{accountID}/rename. The local rename is
// authoritative; propagation to the provider is best-effort inside the service.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(w, r)
	if !ok {
		return
	}
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username required")
		return
	}
	if err := h.bridge.Rename(r.Context(), accountID, req.Username); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rename account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FlowsResponse lists the provider's hosted flow URLs for the wiki UI.
type FlowsResponse struct {
	Login        string `json:"login"`
	Registration string `json:"registration"`
	Verification string `json:"verification"`
	Settings     string `json:"settings,omitempty"`
}

// Flows handles GET /v1/flows. return_to, when present, is carried into each
// browser-flow URL.
func (h *Handler) Flows(w http.ResponseWriter, r *http.Request) {
	returnTo := r.URL.Query().Get("return_to")
	writeJSON(w, http.StatusOK, FlowsResponse{
		Login:        h.flows.FlowURL("login", returnTo),
		Registration: h.flows.FlowURL("registration", returnTo),
		Verification: h.flows.FlowURL("verification", returnTo),
		Settings:     h.uiURL,
	})
}

func accountIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "accountID must be a positive integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
