package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// AdminClient calls the provider's admin API. The admin host must never be
// exposed to browsers; it is configured separately from the public host.
type AdminClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewAdminClient returns a client for the provider's admin API at baseURL.
func NewAdminClient(baseURL string) *AdminClient {
	return &AdminClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// GetIdentity fetches the identity record for id, including verifiable addresses.
func (c *AdminClient) GetIdentity(ctx context.Context, id string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.identityURL(id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider: get identity: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("provider: get identity returned status=%d body=%s", resp.StatusCode, string(b))
	}
	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("provider: decode identity: %w", err)
	}
	return &identity, nil
}

// DeleteSessions revokes every session the provider holds for the identity.
func (c *AdminClient) DeleteSessions(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.identityURL(id)+"/sessions", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider: delete sessions: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider: delete sessions returned status=%d", resp.StatusCode)
	}
	return nil
}

// jsonPatch is a single RFC 6902 patch operation.
type jsonPatch struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value string `json:"value"`
}

// PatchUsername replaces the identity's username trait. Used to propagate a
// local rename back to the provider.
func (c *AdminClient) PatchUsername(ctx context.Context, id, username string) error {
	payload, err := json.Marshal([]jsonPatch{{Op: "replace", Path: "/traits/username", Value: username}})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.identityURL(id), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider: patch identity: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider: patch identity returned status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}

func (c *AdminClient) identityURL(id string) string {
	return c.BaseURL + "/admin/identities/" + url.PathEscape(id)
}
