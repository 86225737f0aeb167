package handlers

import (
	"net/http"

	"othershorts-backend/internal/middleware"
	"othershorts-backend/internal/models"
	"othershorts-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// BatchResponse is the body of GET /api/batch/{userId}
type BatchResponse struct {
	Videos []models.FeedVideo `json:"videos"`
}

// FeedHandler serves feed batches
type FeedHandler struct {
	feedService *services.FeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// GetBatch handles GET /api/batch/{userId}?seen=a,b&submitted=url1,url2
func (h *FeedHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")
	if err := middleware.CheckActor(ctx, userID); err != nil {
		respondServiceError(w, err, "batch fetch failed")
		return
	}

	q := r.URL.Query()
	videos, err := h.feedService.NextBatch(ctx, services.FeedRequest{
		RequesterID: userID,
		Seen:        services.ParseIDList(q.Get("seen")),
		Submitted:   services.ParseIDList(q.Get("submitted")),
	})
	if err != nil {
		respondServiceError(w, err, "batch fetch failed")
		return
	}

	respondJSON(w, http.StatusOK, BatchResponse{Videos: videos})
}
