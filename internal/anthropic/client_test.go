package anthropic_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"claude-chat/internal/anthropic"
	"claude-chat/internal/domain"
)

func TestIsOAuthToken(t *testing.T) {
	tests := []struct {
		credential string
		expected   bool
	}{
		{"sk-ant-oat01-abc", true},
		{"ant-oa-abc", true},
		{"sk-ant-api03-abc", false},
		{"random-string", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := anthropic.IsOAuthToken(tt.credential); got != tt.expected {
			t.Errorf("IsOAuthToken(%q) = %v, want %v", tt.credential, got, tt.expected)
		}
	}
}

func TestClient_Verify_APIKey(t *testing.T) {
	var gotKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"msg_1"}`))
	}))
	defer srv.Close()

	client := anthropic.NewClientWithBaseURL(srv.URL)
	identity, err := client.Verify(context.Background(), "sk-ant-api03-abc")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if gotKey != "sk-ant-api03-abc" {
		t.Errorf("expected x-api-key header, got %q", gotKey)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header for API key, got %q", gotAuth)
	}

	// API key identities are a 32-char digest prefix.
	if len(identity.AnthropicUserID) != 32 {
		t.Errorf("expected 32-char user id, got %q", identity.AnthropicUserID)
	}
}

func TestClient_Verify_OAuthToken(t *testing.T) {
	var gotAuth, gotBeta string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBeta = r.Header.Get("anthropic-beta")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"msg_1"}`))
	}))
	defer srv.Close()

	client := anthropic.NewClientWithBaseURL(srv.URL)
	identity, err := client.Verify(context.Background(), "sk-ant-oat01-abc")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if gotAuth != "Bearer sk-ant-oat01-abc" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotBeta != "oauth-2025-04-20" {
		t.Errorf("expected oauth beta header, got %q", gotBeta)
	}

	// OAuth identities carry a distinguishing prefix.
	if len(identity.AnthropicUserID) != len("oauth_")+28 {
		t.Errorf("unexpected user id shape: %q", identity.AnthropicUserID)
	}
	if identity.AnthropicUserID[:6] != "oauth_" {
		t.Errorf("expected oauth_ prefix, got %q", identity.AnthropicUserID)
	}
}

func TestClient_Verify_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"authentication_error"}}`))
	}))
	defer srv.Close()

	client := anthropic.NewClientWithBaseURL(srv.URL)
	_, err := client.Verify(context.Background(), "sk-ant-api03-bad")
	if !errors.Is(err, domain.ErrInvalidCredential) {
		t.Errorf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestClient_Verify_EmptyCredential(t *testing.T) {
	client := anthropic.NewClient()
	_, err := client.Verify(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidCredential) {
		t.Errorf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestClient_Verify_StableIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := anthropic.NewClientWithBaseURL(srv.URL)

	first, err := client.Verify(context.Background(), "sk-ant-api03-abc")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	second, err := client.Verify(context.Background(), "sk-ant-api03-abc")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	// Same credential, same identity: repeat logins map to one user.
	if first.AnthropicUserID != second.AnthropicUserID {
		t.Errorf("identity not stable: %q vs %q", first.AnthropicUserID, second.AnthropicUserID)
	}

	other, err := client.Verify(context.Background(), "sk-ant-api03-xyz")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if other.AnthropicUserID == first.AnthropicUserID {
		t.Error("distinct credentials should derive distinct identities")
	}
}
