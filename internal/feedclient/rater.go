package feedclient

import (
	"context"
	"fmt"

	"othershorts-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// RatingSubmitter posts a rating
type RatingSubmitter interface {
	SubmitRating(ctx context.Context, rating RatingRequest) error
}

// Rater submits ratings on behalf of a session, at most once per video.
type Rater struct {
	submitter RatingSubmitter
}

// NewRater creates a rater.
func NewRater(submitter RatingSubmitter) *Rater {
	return &Rater{submitter: submitter}
}

// Submit rates video. It is a no-op returning false when the video was
// already rated in s, a rating for it is in flight, or political is
// unanswered. On success the URL joins
// the submitted set; on failure it stays unsubmitted so the rating can be
// retried.
func (r *Rater) Submit(ctx context.Context, s *Session, video models.FeedVideo, rating int, political *bool) (bool, error) {
	if political == nil || video.UploaderID == "" || !s.beginSubmit(video.URL) {
		return false, nil
	}

	err := r.submitter.SubmitRating(ctx, RatingRequest{
		UserID:     video.UploaderID,
		ReviewerID: s.UserID,
		VideoURL:   video.URL,
		Rating:     rating,
		Political:  *political,
	})
	s.endSubmit(video.URL, err == nil)
	if err != nil {
		log.Error().Err(err).Str("video_url", video.URL).Msg("Rating submission failed")
		return false, fmt.Errorf("failed to rate %s: %w", video.URL, err)
	}

	return true, nil
}
