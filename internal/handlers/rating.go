package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"othershorts-backend/internal/middleware"
	"othershorts-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// politicalFlag accepts true/false as well as the 0/1 the mobile client sends
type politicalFlag bool

func (p *politicalFlag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1":
		*p = true
	case "false", "0":
		*p = false
	default:
		return fmt.Errorf("invalid political value %s", data)
	}
	return nil
}

type ratingRequest struct {
	UserID     string         `json:"userId"`
	ReviewerID string         `json:"reviewerId"`
	VideoURL   string         `json:"videoUrl"`
	Rating     *int           `json:"rating"`
	Political  *politicalFlag `json:"political"`
}

// RatingHandler handles rating submissions
type RatingHandler struct {
	ratingService *services.RatingService
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(ratingService *services.RatingService) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
	}
}

// SubmitRating handles POST /api/ratings
func (h *RatingHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Missing required fields", http.StatusBadRequest)
		return
	}
	if err := middleware.CheckActor(ctx, req.ReviewerID); err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	in := services.RatingInput{
		TargetUserID: req.UserID,
		ReviewerID:   req.ReviewerID,
		VideoURL:     req.VideoURL,
		Rating:       req.Rating,
	}
	if req.Political != nil {
		political := bool(*req.Political)
		in.Political = &political
	}

	rating, err := h.ratingService.Submit(ctx, in)
	if err != nil {
		respondServiceError(w, err, msgDatabaseFailed)
		return
	}

	log.Info().
		Int64("rating_id", rating.ID).
		Str("target_user_id", rating.TargetUserID).
		Str("reviewer_id", rating.ReviewerID).
		Msg("Rating stored")

	w.WriteHeader(http.StatusNoContent)
}
