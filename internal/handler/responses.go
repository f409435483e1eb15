package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/flatground/skateline/internal/logger"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response. Reason carries the typed
// rejection code when the error is a validator rejection.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Get a buffer from the pool to reduce allocations
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent, nothing to do but log
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message, reason string) {
	respondJSON(w, status, ErrorResponse{Error: message, Reason: reason})
}

// respondServiceError logs a failed service call and writes the mapped
// user-facing error.
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	logger.FromContext(r.Context()).Error("Failed to "+opName, "error", err)
	status, userMsg, reason := mapServiceErrorToUserMessage(err)
	respondError(w, status, userMsg, reason)
}
