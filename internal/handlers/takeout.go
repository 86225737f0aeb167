package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"othershorts-backend/internal/middleware"
	"othershorts-backend/internal/services"

	"github.com/rs/zerolog/log"
)

const multipartMemory = 8 << 20

// TakeoutHandler handles watch-history uploads
type TakeoutHandler struct {
	takeoutService *services.TakeoutService
	maxUploadBytes int64
}

// NewTakeoutHandler creates a new takeout handler
func NewTakeoutHandler(takeoutService *services.TakeoutService, maxUploadBytes int64) *TakeoutHandler {
	return &TakeoutHandler{
		takeoutService: takeoutService,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadTakeout handles POST /api/uploadTakeout (multipart: file, userId)
func (h *TakeoutHandler) UploadTakeout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, fmt.Sprintf("File is too large. The limit is %d bytes.", h.maxUploadBytes), http.StatusBadRequest)
			return
		}
		respondError(w, "User ID or file is missing.", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	userID := r.FormValue("userId")
	if err := middleware.CheckActor(ctx, userID); err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	var (
		data     []byte
		filename string
	)
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		filename = header.Filename
		data, err = io.ReadAll(file)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to read uploaded file")
			respondError(w, "User ID or file is missing.", http.StatusBadRequest)
			return
		}
	}

	res, err := h.takeoutService.Ingest(ctx, userID, filename, data)
	if err != nil {
		respondServiceError(w, err, "An internal server error occurred while processing your file.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%d new shorts added successfully.", res.Added),
	})
}
