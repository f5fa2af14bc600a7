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

// ConversationRepository implements domain.ConversationRepository over
// sqlite. All lookups are scoped by owner: a conversation that exists but
// belongs to another user is reported as ErrNotFound.
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	query := `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY updated_at DESC
	`
	rows, err := r.db.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []domain.Conversation{}
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *conv)
	}
	return conversations, rows.Err()
}

func (r *ConversationRepository) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE id = ? AND user_id = ?
	`
	rows, err := r.db.db.QueryContext(ctx, query, id.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get conversation: %w", err)
		}
		return nil, domain.ErrNotFound
	}
	conv, err := scanConversation(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	conv.Messages, err = r.listMessages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	query := `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.db.ExecContext(ctx, query,
		conv.ID.String(),
		conv.UserID.String(),
		conv.Title,
		formatTime(conv.CreatedAt),
		formatTime(conv.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepository) Rename(ctx context.Context, userID, id uuid.UUID, title string) (*domain.Conversation, error) {
	query := `
		UPDATE conversations
		SET title = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`
	res, err := r.db.db.ExecContext(ctx, query,
		title,
		formatTime(time.Now().UTC()),
		id.String(),
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to rename conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to rename conversation: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	conv, err := r.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	conv.Messages = nil
	return conv, nil
}

func (r *ConversationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM conversations WHERE id = ? AND user_id = ?`,
		id.String(), userID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	// Cascade inside the same transaction; the pragma-dependent FK
	// cascade is not relied upon.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id = ?`, id.String(),
	); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	return tx.Commit()
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

	tx, err := r.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(ordinal), -1) + 1 FROM messages WHERE conversation_id = ?`,
		conversationID.String(),
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to compute ordinal: %w", err)
	}

	var last time.Time
	for i, m := range msgs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (id, conversation_id, role, content, ordinal, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			m.ID.String(),
			conversationID.String(),
			string(m.Role),
			m.Content,
			next+i,
			formatTime(m.CreatedAt),
		); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
		last = m.CreatedAt
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`,
		formatTime(last), conversationID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to bump conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to bump conversation: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit()
}

func (r *ConversationRepository) listMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, ordinal, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY ordinal ASC
	`
	rows, err := r.db.db.QueryContext(ctx, query, conversationID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var (
			m         domain.Message
			id        string
			convID    string
			role      string
			createdAt string
		)
		if err := rows.Scan(&id, &convID, &role, &m.Content, &m.Ordinal, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid message id: %w", err)
		}
		if m.ConversationID, err = uuid.Parse(convID); err != nil {
			return nil, fmt.Errorf("invalid conversation id: %w", err)
		}
		m.Role = domain.MessageRole(role)
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*domain.Conversation, error) {
	var (
		c         domain.Conversation
		id        string
		userID    string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&id, &userID, &c.Title, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}

	if c.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid conversation id: %w", err)
	}
	if c.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
