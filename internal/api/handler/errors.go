package handler

import (
	"errors"
	"net/http"

	"claude-chat/internal/api/response"
	"claude-chat/internal/domain"
)

// respondError converts a service error into the uniform
// {"success":false,"error":...} body. Unknown errors become a 500; the
// server never crashes a request on them.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "Conversation not found")
	case errors.Is(err, domain.ErrInvalidCredential):
		response.Unauthorized(w, "Invalid token")
	case errors.Is(err, domain.ErrUnauthorized):
		response.Unauthorized(w, "Authentication required")
	case errors.Is(err, domain.ErrTimeout):
		response.Error(w, http.StatusGatewayTimeout, "Request timed out")
	case errors.Is(err, domain.ErrUpstream):
		response.Error(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrInvalidRole):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, err.Error())
	}
}
