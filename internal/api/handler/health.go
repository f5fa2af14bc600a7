package handler

import (
	"context"
	"net/http"

	"claude-chat/internal/api/response"
	"claude-chat/internal/session"
)

// Pinger is the slice of the store the readiness check needs
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck reports liveness and sweeps expired sessions as a side
// effect, so an idle deployment still sheds stale entries.
func HealthCheck(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.CleanupExpired()
		response.JSON(w, http.StatusOK, response.M{"status": "ok"})
	}
}

// ReadyCheck returns readiness status including database connectivity
func ReadyCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database not ready")
			return
		}
		response.JSON(w, http.StatusOK, response.M{"status": "ready"})
	}
}
