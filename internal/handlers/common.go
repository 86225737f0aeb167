package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"othershorts-backend/internal/apperr"

	"github.com/rs/zerolog/log"
)

const msgDatabaseFailed = "Database operation failed."

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondJSON sends v as a JSON body
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondServiceError maps a service error onto a status code. Client errors
// carry their reason; everything else is logged and answered with fallback.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrInvalidFormat),
		errors.Is(err, apperr.ErrNoVideosFound),
		errors.Is(err, apperr.ErrNoShortsFound):
		respondError(w, apperr.Reason(err), http.StatusBadRequest)
	case errors.Is(err, apperr.ErrUnauthorized):
		respondError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, apperr.ErrNotFound):
		respondError(w, "User not found", http.StatusNotFound)
	case errors.Is(err, apperr.ErrAlreadyRated):
		respondError(w, "You have already rated this video", http.StatusConflict)
	case errors.Is(err, apperr.ErrNotConfigured):
		log.Error().Err(err).Msg("Missing server configuration")
		respondError(w, "Server configuration error: Missing API Key.", http.StatusInternalServerError)
	default:
		log.Error().Err(err).Msg(fallback)
		respondError(w, fallback, http.StatusInternalServerError)
	}
}

// decodeJSON reads a JSON request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}
