package services

import (
	"context"
	"fmt"
	"strings"

	"othershorts-backend/internal/apperr"
	"othershorts-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// RatingStore appends ratings
type RatingStore interface {
	Create(ctx context.Context, rating *models.Rating) error
}

// RatingNotifier tells an uploader that one of their videos was rated
type RatingNotifier interface {
	NotifyRatingReceived(ctx context.Context, rating *models.Rating) error
}

// RatingInput is a rating as submitted by a reviewer. Political must be
// answered; VideoURL is optional and, when present, limits the reviewer to
// one rating per video.
type RatingInput struct {
	TargetUserID string
	ReviewerID   string
	VideoURL     string
	Rating       *int
	Political    *bool
}

// RatingService handles rating submission
type RatingService struct {
	ratingRepo RatingStore
	notifier   RatingNotifier
}

// NewRatingService creates a new rating service. notifier may be nil.
func NewRatingService(ratingRepo RatingStore, notifier RatingNotifier) *RatingService {
	return &RatingService{
		ratingRepo: ratingRepo,
		notifier:   notifier,
	}
}

// Submit validates and appends a rating, then notifies the uploader.
// Notification failures are logged and never fail the submission.
func (s *RatingService) Submit(ctx context.Context, in RatingInput) (*models.Rating, error) {
	target := strings.TrimSpace(in.TargetUserID)
	reviewer := strings.TrimSpace(in.ReviewerID)
	if target == "" || reviewer == "" || in.Rating == nil || in.Political == nil {
		return nil, apperr.Validation("Missing required fields")
	}
	if *in.Rating < models.MinRating || *in.Rating > models.MaxRating {
		return nil, apperr.Validation("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	if target == reviewer {
		return nil, apperr.Validation("cannot rate your own video")
	}

	rating := &models.Rating{
		TargetUserID: target,
		ReviewerID:   reviewer,
		Value:        *in.Rating,
		Political:    *in.Political,
	}
	if url := strings.TrimSpace(in.VideoURL); url != "" {
		rating.VideoURL = &url
	}

	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to store rating: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyRatingReceived(ctx, rating); err != nil {
			log.Warn().
				Err(err).
				Str("target_user_id", rating.TargetUserID).
				Msg("Failed to notify uploader about rating")
		}
	}

	return rating, nil
}
