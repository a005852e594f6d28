package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/folio"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Upload exceeds the size limit")
	case errors.Is(err, folio.ErrNoFile):
		WriteError(w, http.StatusBadRequest, "no_file", "No file")
	case errors.Is(err, folio.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", "Missing or invalid fields")
	case errors.Is(err, folio.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
	case errors.Is(err, folio.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid or missing token")
	case errors.Is(err, folio.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "Not allowed to modify this image")
	case errors.Is(err, folio.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Image not found")
	case errors.Is(err, folio.ErrUsernameTaken):
		WriteError(w, http.StatusConflict, "username_taken", "Username already exists")
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
