package response

import (
	"encoding/json"
	"net/http"
)

// M is a response payload. Handlers build the exact body shape the
// client expects; nothing is injected besides what they put in.
type M map[string]any

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, payload M) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// OK sends a 200 OK response with success set
func OK(w http.ResponseWriter, payload M) {
	if payload == nil {
		payload = M{}
	}
	payload["success"] = true
	JSON(w, http.StatusOK, payload)
}

// Created sends a 201 Created response with success set
func Created(w http.ResponseWriter, payload M) {
	payload["success"] = true
	JSON(w, http.StatusCreated, payload)
}

// Error sends a {"success":false,"error":...} response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, M{"success": false, "error": message})
}

// BadRequest sends a 400 Bad Request response
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// NotFound sends a 404 Not Found response
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// InternalError sends a 500 Internal Server Error response
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}
