package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"claude-chat/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository implements domain.UserRepository over postgres
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetOrCreate(ctx context.Context, anthropicUserID string) (*domain.User, error) {
	// ON CONFLICT DO NOTHING plus re-read keeps the call idempotent under
	// concurrent first logins.
	query := `
		INSERT INTO users (id, anthropic_user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (anthropic_user_id) DO NOTHING
	`
	if _, err := r.db.Pool.Exec(ctx, query, uuid.New(), anthropicUserID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	var u domain.User
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, anthropic_user_id, email, name, created_at, last_login_at
		FROM users
		WHERE anthropic_user_id = $1
	`, anthropicUserID).Scan(&u.ID, &u.AnthropicUserID, &u.Email, &u.Name, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, anthropic_user_id, email, name, created_at, last_login_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.AnthropicUserID, &u.Email, &u.Name, &u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
