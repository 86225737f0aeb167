package repository

import (
	"context"
	"errors"
	"fmt"

	"othershorts-backend/internal/apperr"
	"othershorts-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// RatingRepository appends ratings. Rows are never updated or deleted.
type RatingRepository struct {
	db DBTX
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db DBTX) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create appends a rating and fills in its ID and CreatedAt. A rating that
// names a video the reviewer already rated is rejected with ErrAlreadyRated.
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (target_user_id, reviewer_id, video_url, rating, political)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (reviewer_id, video_url) WHERE video_url IS NOT NULL DO NOTHING
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		rating.TargetUserID, rating.ReviewerID, rating.VideoURL, rating.Value, rating.Political,
	).Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("rating exists: %w", apperr.ErrAlreadyRated)
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}
