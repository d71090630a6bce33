package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/identities/id-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"id": "id-1",
			"traits": {"username": "alice", "email": "alice@example.org"},
			"verifiable_addresses": [{"value": "alice@example.org", "verified": true}]
		}`))
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL)
	identity, err := c.GetIdentity(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("GetIdentity: %v", err)
	}
	if identity.Traits.Username != "alice" {
		t.Errorf("username = %q, want alice", identity.Traits.Username)
	}
	if !identity.EmailVerified() {
		t.Error("EmailVerified() = false, want true")
	}
}

func TestGetIdentity_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL)
	if _, err := c.GetIdentity(context.Background(), "missing"); err == nil {
		t.Fatal("GetIdentity should return error on 404")
	}
}

func TestDeleteSessions(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL)
	if err := c.DeleteSessions(context.Background(), "id-9"); err != nil {
		t.Fatalf("DeleteSessions: %v", err)
	}
	if method != http.MethodDelete || path != "/admin/identities/id-9/sessions" {
		t.Errorf("request = %s %s, want DELETE /admin/identities/id-9/sessions", method, path)
	}
}

func TestPatchUsername(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %q, want PATCH", r.Method)
		}
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"id": "id-1"}`))
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL)
	if err := c.PatchUsername(context.Background(), "id-1", "NewName"); err != nil {
		t.Fatalf("PatchUsername: %v", err)
	}

	var ops []map[string]string
	if err := json.Unmarshal(body, &ops); err != nil {
		t.Fatalf("patch body is not a JSON array: %v", err)
	}
	if len(ops) != 1 || ops[0]["op"] != "replace" || ops[0]["path"] != "/traits/username" || ops[0]["value"] != "NewName" {
		t.Errorf("patch ops = %v", ops)
	}
}

func TestPatchUsername_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conflict", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL)
	if err := c.PatchUsername(context.Background(), "id-1", "x"); err == nil {
		t.Fatal("PatchUsername should return error on non-200")
	}
}
