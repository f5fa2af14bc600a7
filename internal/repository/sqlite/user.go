package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"claude-chat/internal/domain"
	"github.com/google/uuid"
)

// UserRepository implements domain.UserRepository over sqlite
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetOrCreate(ctx context.Context, anthropicUserID string) (*domain.User, error) {
	if user, err := r.getByAnthropicID(ctx, anthropicUserID); err == nil {
		return user, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	user := &domain.User{
		ID:              uuid.New(),
		AnthropicUserID: anthropicUserID,
		CreatedAt:       time.Now().UTC(),
	}

	query := `
		INSERT INTO users (id, anthropic_user_id, email, name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.db.ExecContext(ctx, query,
		user.ID.String(),
		user.AnthropicUserID,
		user.Email,
		user.Name,
		formatTime(user.CreatedAt),
	)
	if err != nil {
		// Two concurrent first logins can race on the unique natural key;
		// the loser reads the winner's row.
		if existing, getErr := r.getByAnthropicID(ctx, anthropicUserID); getErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, anthropic_user_id, email, name, created_at, last_login_at
		FROM users
		WHERE id = ?
	`
	return r.scanUser(r.db.db.QueryRowContext(ctx, query, id.String()))
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE users SET last_login_at = ? WHERE id = ?`
	if _, err := r.db.db.ExecContext(ctx, query, formatTime(at), id.String()); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *UserRepository) getByAnthropicID(ctx context.Context, anthropicUserID string) (*domain.User, error) {
	query := `
		SELECT id, anthropic_user_id, email, name, created_at, last_login_at
		FROM users
		WHERE anthropic_user_id = ?
	`
	return r.scanUser(r.db.db.QueryRowContext(ctx, query, anthropicUserID))
}

func (r *UserRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u         domain.User
		id        string
		createdAt string
		lastLogin sql.NullString
	)
	err := row.Scan(&id, &u.AnthropicUserID, &u.Email, &u.Name, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if u.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t, err := parseTime(lastLogin.String)
		if err != nil {
			return nil, err
		}
		u.LastLoginAt = &t
	}
	return &u, nil
}
