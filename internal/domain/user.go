package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated account derived from a validated
// Anthropic credential. Users are created on first successful login and
// never mutated through the API.
type User struct {
	ID              uuid.UUID  `json:"id"`
	AnthropicUserID string     `json:"-"`
	Email           *string    `json:"email"`
	Name            *string    `json:"name"`
	CreatedAt       time.Time  `json:"created_at"`
	LastLoginAt     *time.Time `json:"-"`
}

// LoginRequest carries the raw Anthropic credential supplied at login
type LoginRequest struct {
	Token string `json:"token" validate:"required"`
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	// GetOrCreate returns the user bound to the provider identity,
	// creating the row on first sight. Idempotent on anthropicUserID.
	GetOrCreate(ctx context.Context, anthropicUserID string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
