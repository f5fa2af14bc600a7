package handler

import (
	"encoding/json"
	"net/http"

	"claude-chat/internal/api/middleware"
	"claude-chat/internal/api/response"
	"claude-chat/internal/domain"
	"claude-chat/internal/service"
)

// ChatHandler handles the chat relay endpoint
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat runs one conversation turn through the assistant
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	credential, ok := middleware.GetCredential(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var input domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, "No message provided")
		return
	}

	result, err := h.chatService.Chat(r.Context(), userID, credential, input)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, response.M{
		"response":        result.Reply,
		"conversation_id": result.ConversationID,
	})
}
