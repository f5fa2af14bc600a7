package middleware

import (
	"context"
	"net/http"
	"strings"

	"claude-chat/internal/api/response"
	"claude-chat/internal/session"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey       contextKey = "userID"
	CredentialKey   contextKey = "credential"
	SessionTokenKey contextKey = "sessionToken"
)

// AuthMiddleware resolves bearer session tokens against the in-memory store
type AuthMiddleware struct {
	sessions *session.Store
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessions *session.Store) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate requires a valid session token and stores the session's
// identity in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			response.Unauthorized(w, "Authentication required")
			return
		}

		sess, ok := m.sessions.Validate(token)
		if !ok {
			response.Unauthorized(w, "Invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, sess.UserID)
		ctx = context.WithValue(ctx, CredentialKey, sess.Credential)
		ctx = context.WithValue(ctx, SessionTokenKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional resolves the session when present but never rejects. Used by
// the /api/auth/me endpoint.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if sess, ok := m.sessions.Validate(token); ok {
				ctx := context.WithValue(r.Context(), UserIDKey, sess.UserID)
				ctx = context.WithValue(ctx, CredentialKey, sess.Credential)
				ctx = context.WithValue(ctx, SessionTokenKey, token)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	// Cookie fallback, set alongside the JSON token at login.
	if cookie, err := r.Cookie("session_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// GetUserID gets the user ID from context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetCredential gets the session's Anthropic credential from context
func GetCredential(ctx context.Context) (string, bool) {
	credential, ok := ctx.Value(CredentialKey).(string)
	return credential, ok
}

// GetSessionToken gets the raw session token from context
func GetSessionToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(SessionTokenKey).(string)
	return token, ok
}
