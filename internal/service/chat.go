package service

import (
	"context"
	"fmt"
	"time"

	"claude-chat/internal/assistant"
	"claude-chat/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultTitle = "New Conversation"

// ChatService owns conversation CRUD and the chat turn. Every operation
// is scoped to the authenticated user id; client-supplied ids are never
// trusted for ownership.
type ChatService struct {
	conversations domain.ConversationRepository
	gateway       assistant.Gateway
}

// NewChatService creates a new chat service
func NewChatService(conversations domain.ConversationRepository, gateway assistant.Gateway) *ChatService {
	return &ChatService{
		conversations: conversations,
		gateway:       gateway,
	}
}

// ListConversations returns the user's conversations, most recently
// active first.
func (s *ChatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	return s.conversations.ListByUser(ctx, userID)
}

// GetConversation returns one conversation with its messages in order.
func (s *ChatService) GetConversation(ctx context.Context, userID, id uuid.UUID) (*domain.Conversation, error) {
	return s.conversations.Get(ctx, userID, id)
}

// CreateConversation creates an empty conversation.
func (s *ChatService) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*domain.Conversation, error) {
	if title == "" {
		title = defaultTitle
	}

	now := time.Now().UTC()
	conv := &domain.Conversation{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// RenameConversation updates the title.
func (s *ChatService) RenameConversation(ctx context.Context, userID, id uuid.UUID, title string) (*domain.Conversation, error) {
	return s.conversations.Rename(ctx, userID, id, title)
}

// DeleteConversation removes the conversation and all its messages.
func (s *ChatService) DeleteConversation(ctx context.Context, userID, id uuid.UUID) error {
	return s.conversations.Delete(ctx, userID, id)
}

// ChatResult is returned from a successful turn
type ChatResult struct {
	Reply          string
	ConversationID uuid.UUID
}

// Chat runs one turn: resolve or create the conversation, call the
// assistant with the prior history, then append the {user, assistant}
// pair as one atomic batch. On assistant failure nothing is persisted, so
// a conversation never holds a user message without its reply.
func (s *ChatService) Chat(ctx context.Context, userID uuid.UUID, credential string, req domain.ChatRequest) (*ChatResult, error) {
	var (
		conv *domain.Conversation
		err  error
	)

	if req.ConversationID != nil {
		conv, err = s.conversations.Get(ctx, userID, *req.ConversationID)
		if err != nil {
			return nil, err
		}
	} else {
		conv, err = s.CreateConversation(ctx, userID, assistant.DeriveTitle(req.Message))
		if err != nil {
			return nil, err
		}
	}

	// A client disconnect must not kill an in-flight turn: once the
	// assistant call starts it runs to completion or its own timeout,
	// and the pair is persisted either way.
	turnCtx := context.WithoutCancel(ctx)

	reply, err := s.gateway.Complete(turnCtx, credential, conv.Messages, req.Message)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pair := []domain.Message{
		{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			Role:           domain.RoleUser,
			Content:        req.Message,
			CreatedAt:      now,
		},
		{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			Role:           domain.RoleAssistant,
			Content:        reply,
			CreatedAt:      now,
		},
	}
	if err := s.conversations.AppendMessages(turnCtx, conv.ID, pair); err != nil {
		return nil, fmt.Errorf("failed to store turn: %w", err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("conversation_id", conv.ID.String()).
		Msg("chat turn completed")

	return &ChatResult{
		Reply:          reply,
		ConversationID: conv.ID,
	}, nil
}
