package server

import (
	"encoding/json"
	"net/http"

	"github.com/desertthunder/notehub/internal/services"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteMessage writes an {"message": msg} error body.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Message: msg})
}

// WriteError maps err to its status code and user-facing message.
func WriteError(w http.ResponseWriter, err error) {
	WriteMessage(w, services.StatusCode(err), services.UserMessage(err))
}
