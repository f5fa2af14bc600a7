package handler

import (
	"encoding/json"
	"net/http"

	"claude-chat/internal/api/middleware"
	"claude-chat/internal/api/response"
	"claude-chat/internal/domain"
	"claude-chat/internal/service"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login validates an Anthropic credential and opens a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, "Token is required")
		return
	}

	result, err := h.authService.Login(r.Context(), input.Token)
	if err != nil {
		respondError(w, err)
		return
	}

	// Cookie mirror of the token for convenience; the SPA uses the
	// Authorization header.
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    result.SessionToken,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  result.ExpiresAt,
		Path:     "/",
	})

	response.OK(w, response.M{
		"user":          result.User,
		"session_token": result.SessionToken,
	})
}

// Logout revokes the current session. Idempotent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.GetSessionToken(r.Context()); ok {
		h.authService.Logout(token)
	}

	http.SetCookie(w, &http.Cookie{
		Name:   "session_token",
		Value:  "",
		MaxAge: -1,
		Path:   "/",
	})

	response.OK(w, response.M{})
}

// Verify confirms the session is still valid
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.M{"valid": true})
}

// Me returns the current user when authenticated
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.JSON(w, http.StatusOK, response.M{"authenticated": false})
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		response.JSON(w, http.StatusOK, response.M{"authenticated": false})
		return
	}

	response.JSON(w, http.StatusOK, response.M{
		"authenticated": true,
		"user":          user,
	})
}
