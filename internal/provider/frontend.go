package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 15 * time.Second

// FrontendClient calls the provider's public (browser-facing) API. Session
// introspection forwards the caller's raw Cookie header, so the provider sees
// the same cookies the browser sent.
type FrontendClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewFrontendClient returns a client for the provider's public API at baseURL.
func NewFrontendClient(baseURL string) *FrontendClient {
	return &FrontendClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// ToSession introspects the session carried by cookieHeader via GET /sessions/whoami.
// Returns ErrUnauthenticated when the provider answers 401/403 or reports the
// session inactive. Any other failure (5xx, transport, malformed body) is
// returned as an error; callers must not retry.
func (c *FrontendClient) ToSession(ctx context.Context, cookieHeader string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/sessions/whoami", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider: whoami: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("provider: whoami returned status=%d body=%s", resp.StatusCode, string(b))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("provider: decode whoami response: %w", err)
	}
	if !session.Active {
		return nil, ErrUnauthenticated
	}
	return &session, nil
}

// logoutFlow is the provider's browser logout flow descriptor.
type logoutFlow struct {
	LogoutToken string `json:"logout_token"`
}

// Logout terminates the browser session carried by cookieHeader: it creates a
// browser logout flow and submits the returned token. Returns an error on any
// provider failure; callers treat logout as best-effort.
func (c *FrontendClient) Logout(ctx context.Context, cookieHeader string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/self-service/logout/browser", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider: create logout flow: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider: create logout flow returned status=%d", resp.StatusCode)
	}
	var flow logoutFlow
	if err := json.NewDecoder(resp.Body).Decode(&flow); err != nil {
		return fmt.Errorf("provider: decode logout flow: %w", err)
	}

	u := c.BaseURL + "/self-service/logout?token=" + url.QueryEscape(flow.LogoutToken)
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	resp, err = c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider: submit logout: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("provider: submit logout returned status=%d", resp.StatusCode)
	}
	return nil
}
