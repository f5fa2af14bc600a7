package handler

import (
	"encoding/json"
	"net/http"

	"claude-chat/internal/api/middleware"
	"claude-chat/internal/api/response"
	"claude-chat/internal/domain"
	"claude-chat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ConversationHandler handles conversation CRUD endpoints
type ConversationHandler struct {
	chatService *service.ChatService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(chatService *service.ChatService) *ConversationHandler {
	return &ConversationHandler{chatService: chatService}
}

// List returns the user's conversations, most recently active first
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	conversations, err := h.chatService.ListConversations(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, response.M{"conversations": conversations})
}

// Create creates a new, empty conversation
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var input domain.ConversationCreate
	if r.Body != nil {
		// Body is optional; a missing title gets the placeholder.
		_ = json.NewDecoder(r.Body).Decode(&input)
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, "invalid title")
		return
	}

	conv, err := h.chatService.CreateConversation(r.Context(), userID, input.Title)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, response.M{"conversation": conv})
}

// Get returns a conversation with its messages
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, convID, ok := requestScope(w, r)
	if !ok {
		return
	}

	conv, err := h.chatService.GetConversation(r.Context(), userID, convID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, response.M{"conversation": conv})
}

// Update renames a conversation
func (h *ConversationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, convID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var input domain.ConversationUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, "Title is required")
		return
	}

	conv, err := h.chatService.RenameConversation(r.Context(), userID, convID, input.Title)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, response.M{"conversation": conv})
}

// Delete removes a conversation and all its messages
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, convID, ok := requestScope(w, r)
	if !ok {
		return
	}

	if err := h.chatService.DeleteConversation(r.Context(), userID, convID); err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, response.M{})
}

// requestScope pulls the authenticated user and the conversation id out
// of the request, writing the error response itself on failure.
func requestScope(w http.ResponseWriter, r *http.Request) (userID, convID uuid.UUID, ok bool) {
	userID, ok = middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	convID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		// An unparseable id can't belong to the caller either.
		response.NotFound(w, "Conversation not found")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, convID, true
}
