// Package web holds the HTTP plumbing shared by the REST transports: JSON responses,
// path parameter parsing and middleware.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, ErrorResponse{Error: message})
}

// RespondFieldError reports an error attributed to a single request field.
func RespondFieldError(w http.ResponseWriter, logger *slog.Logger, status int, field, message string) {
	RespondJSON(w, logger, status, ErrorResponse{Error: message, Field: field})
}
