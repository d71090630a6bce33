// Package telemetry emits best-effort auth events. Emission never blocks or
// fails an authentication request; errors are logged and dropped.
package telemetry

import (
	"context"
	"time"
)

// Auth event types emitted by the identity service.
const (
	EventLoginSuccess       = "login_success"
	EventLoginDenied        = "login_denied"
	EventBindingCreated     = "binding_created"
	EventAccountProvisioned = "account_provisioned"
	EventLogout             = "logout"
	EventSessionsRevoked    = "sessions_revoked"
)

// AuthEvent is a single auth event.
type AuthEvent struct {
	EventType    string    `json:"eventType"`
	AccountID    int64     `json:"accountId,omitempty"`
	IdentityID   string    `json:"identityId,omitempty"`
	Username     string    `json:"username,omitempty"`
	ProviderHost string    `json:"providerHost,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewAuthEvent returns an AuthEvent of the given type stamped with the current time.
func NewAuthEvent(eventType string) *AuthEvent {
	return &AuthEvent{EventType: eventType, CreatedAt: time.Now().UTC()}
}

// EventEmitter emits auth events (e.g. to Kafka or OTel Logs). Best-effort;
// callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *AuthEvent) error
}
