// Package handler exposes the username usability check over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wiki-identity-bridge/internal/equivalence/service"
)

// Checker decides whether a candidate username may name a new account.
type Checker interface {
	CheckUsable(ctx context.Context, candidate string) (*service.Usability, error)
}

// Handler serves POST /v1/username-usable.
type Handler struct {
	checker Checker
}

// NewHandler returns a Handler backed by the given checker.
func NewHandler(checker Checker) *Handler {
	return &Handler{checker: checker}
}

// Routes mounts the usability endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/username-usable", h.CheckUsable)
}

// CheckRequest is the body for POST /v1/username-usable.
type CheckRequest struct {
	Username string `json:"username"`
}

// CheckUsable handles POST /v1/username-usable. The answer is advisory: the
// authoritative check happens again at creation time.
func (h *Handler) CheckUsable(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username required")
		return
	}

	usability, err := h.checker.CheckUsable(r.Context(), req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "usability check failed")
		return
	}
	writeJSON(w, http.StatusOK, usability)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
