package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"claude-chat/internal/anthropic"
	"claude-chat/internal/domain"
	"claude-chat/internal/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuthService handles login, logout and session resolution
type AuthService struct {
	users    domain.UserRepository
	verifier anthropic.Verifier
	sessions *session.Store
}

// NewAuthService creates a new auth service
func NewAuthService(users domain.UserRepository, verifier anthropic.Verifier, sessions *session.Store) *AuthService {
	return &AuthService{
		users:    users,
		verifier: verifier,
		sessions: sessions,
	}
}

// LoginResult is returned on successful login
type LoginResult struct {
	User         *domain.User
	SessionToken string
	ExpiresAt    time.Time
}

// Login validates the Anthropic credential, creates the user on first
// sight and opens a new session. Each login gets its own session, so the
// same credential can be active from several browsers at once.
func (s *AuthService) Login(ctx context.Context, credential string) (*LoginResult, error) {
	credential = strings.TrimSpace(credential)

	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetOrCreate(ctx, identity.AnthropicUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		// Login still succeeds; the timestamp is informational.
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record last login")
	}

	token, expiresAt, err := s.sessions.Create(user.ID, credential)
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Time("expires_at", expiresAt).Msg("user logged in")

	return &LoginResult{
		User:         user,
		SessionToken: token,
		ExpiresAt:    expiresAt,
	}, nil
}

// Logout revokes the session. Always succeeds, even for unknown tokens.
func (s *AuthService) Logout(token string) {
	s.sessions.Revoke(token)
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}
