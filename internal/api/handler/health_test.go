package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"claude-chat/internal/api/handler"
	"claude-chat/internal/security"
	"claude-chat/internal/session"
	"github.com/google/uuid"
)

func newTestSessions(t *testing.T) *session.Store {
	t.Helper()
	encryptor, err := security.NewEncryptorFromSecret("test-secret")
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}
	return session.NewStore(time.Hour, encryptor)
}

func TestHealthCheck(t *testing.T) {
	sessions := newTestSessions(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(sessions)(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", response["status"])
	}
}

func TestHealthCheck_SweepsExpiredSessions(t *testing.T) {
	sessions := newTestSessions(t)

	base := time.Now()
	sessions.SetClock(func() time.Time { return base })
	if _, _, err := sessions.Create(uuid.New(), "sk-ant-test"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	sessions.SetClock(func() time.Time { return base.Add(2 * time.Hour) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthCheck(sessions)(rec, req)

	if sessions.Len() != 0 {
		t.Errorf("expected expired sessions to be swept, have %d", sessions.Len())
	}
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestReadyCheck(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()

		handler.ReadyCheck(stubPinger{})(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response["status"] != "ready" {
			t.Errorf("expected status 'ready', got %v", response["status"])
		}
	})

	t.Run("database down", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()

		handler.ReadyCheck(stubPinger{err: errors.New("connection refused")})(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
		}

		var response map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response["success"] != false {
			t.Error("expected success false")
		}
	})
}
