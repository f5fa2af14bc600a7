package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one of the accepted values.
// Roles are validated at write time rather than trusted from callers.
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Conversation is a named thread of messages owned by exactly one user.
// UpdatedAt always reflects the timestamp of the most recent message.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages,omitempty"`
}

// Message is one turn in a conversation. Immutable once created; the
// ordinal records insertion order and is the display order on read.
type Message struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID uuid.UUID   `json:"-"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	Ordinal        int         `json:"-"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ConversationCreate represents conversation creation data
type ConversationCreate struct {
	Title string `json:"title" validate:"omitempty,max=255"`
}

// ConversationUpdate represents a rename request
type ConversationUpdate struct {
	Title string `json:"title" validate:"required,max=255"`
}

// ChatRequest represents a chat turn request
type ChatRequest struct {
	Message        string     `json:"message" validate:"required"`
	ConversationID *uuid.UUID `json:"conversation_id"`
}

// ConversationRepository defines the interface for conversation storage.
// Every read and write is scoped to the owning user: operations against a
// conversation that exists but belongs to someone else return ErrNotFound.
type ConversationRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Conversation, error)
	// Get returns the conversation with its messages in ordinal order.
	Get(ctx context.Context, userID, id uuid.UUID) (*Conversation, error)
	Create(ctx context.Context, conv *Conversation) error
	Rename(ctx context.Context, userID, id uuid.UUID, title string) (*Conversation, error)
	// Delete removes the conversation and all of its messages atomically.
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// AppendMessages stores the batch in one transaction and bumps the
	// conversation's updated_at. Either every message lands or none do.
	AppendMessages(ctx context.Context, conversationID uuid.UUID, msgs []Message) error
}
