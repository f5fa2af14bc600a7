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

// ConversationRepository implements domain.ConversationRepository over
// postgres, mirroring the sqlite implementation's ownership scoping.
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []domain.Conversation{}
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

func (r *ConversationRepository) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, conversation_id, role, content, ordinal, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY ordinal ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	c.Messages = []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Ordinal, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		c.Messages = append(c.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, conv.ID, conv.UserID, conv.Title, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepository) Rename(ctx context.Context, userID, id uuid.UUID, title string) (*domain.Conversation, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE conversations
		SET title = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
	`, title, time.Now().UTC(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to rename conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	var c domain.Conversation
	err = r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`, id).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &c, nil
}

func (r *ConversationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM conversations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE conversation_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *ConversationRepository) AppendMessages(ctx context.Context, conversationID uuid.UUID, msgs []domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	for _, m := range msgs {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidRole, m.Role)
		}
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var next int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(ordinal), -1) + 1 FROM messages WHERE conversation_id = $1`,
		conversationID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to compute ordinal: %w", err)
	}

	var last time.Time
	for i, m := range msgs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO messages (id, conversation_id, role, content, ordinal, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, m.ID, conversationID, m.Role, m.Content, next+i, m.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
		last = m.CreatedAt
	}

	tag, err := tx.Exec(ctx,
		`UPDATE conversations SET updated_at = $1 WHERE id = $2`,
		last, conversationID,
	)
	if err != nil {
		return fmt.Errorf("failed to bump conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit(ctx)
}
