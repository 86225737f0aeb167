package services

import (
	"context"
	"errors"
	"testing"

	"othershorts-backend/internal/apperr"
	"othershorts-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	err   error
	calls []models.Rating
}

func (n *recordingNotifier) NotifyRatingReceived(_ context.Context, rating *models.Rating) error {
	n.calls = append(n.calls, *rating)
	return n.err
}

func TestRatingService_Submit(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	svc := NewRatingService(store, notifier)

	rating, err := svc.Submit(context.Background(), RatingInput{
		TargetUserID: "uploader",
		ReviewerID:   "reviewer",
		VideoURL:     " https://www.youtube.com/shorts/AAAAAAAAAAA ",
		Rating:       intPtr(73),
		Political:    boolPtr(true),
	})
	require.NoError(t, err)
	assert.NotZero(t, rating.ID)
	assert.Equal(t, 73, rating.Value)
	assert.True(t, rating.Political)
	require.NotNil(t, rating.VideoURL)
	assert.Equal(t, "https://www.youtube.com/shorts/AAAAAAAAAAA", *rating.VideoURL)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "uploader", notifier.calls[0].TargetUserID)
}

func TestRatingService_Submit_AppendsWithoutVideoURL(t *testing.T) {
	store := newMemStore()
	svc := NewRatingService(store, nil)
	in := RatingInput{TargetUserID: "uploader", ReviewerID: "reviewer", Rating: intPtr(0), Political: boolPtr(false)}

	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), in)
	require.NoError(t, err)

	assert.Len(t, store.ratings, 2)
}

func TestRatingService_Submit_OncePerVideo(t *testing.T) {
	store := newMemStore()
	svc := NewRatingService(store, nil)
	in := RatingInput{
		TargetUserID: "uploader",
		ReviewerID:   "reviewer",
		VideoURL:     "https://www.youtube.com/shorts/AAAAAAAAAAA",
		Rating:       intPtr(100),
		Political:    boolPtr(false),
	}

	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAlreadyRated))
	assert.Len(t, store.ratings, 1)
}

func TestRatingService_Submit_NotifierErrorIgnored(t *testing.T) {
	store := newMemStore()
	svc := NewRatingService(store, &recordingNotifier{err: errors.New("socket closed")})

	_, err := svc.Submit(context.Background(), RatingInput{
		TargetUserID: "uploader",
		ReviewerID:   "reviewer",
		Rating:       intPtr(50),
		Political:    boolPtr(false),
	})
	require.NoError(t, err)
	assert.Len(t, store.ratings, 1)
}

func TestRatingService_Submit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		in     RatingInput
		reason string
	}{
		{
			name:   "missing target",
			in:     RatingInput{ReviewerID: "r", Rating: intPtr(5), Political: boolPtr(false)},
			reason: "Missing required fields",
		},
		{
			name:   "missing reviewer",
			in:     RatingInput{TargetUserID: "t", Rating: intPtr(5), Political: boolPtr(false)},
			reason: "Missing required fields",
		},
		{
			name:   "missing rating",
			in:     RatingInput{TargetUserID: "t", ReviewerID: "r", Political: boolPtr(false)},
			reason: "Missing required fields",
		},
		{
			name:   "missing political",
			in:     RatingInput{TargetUserID: "t", ReviewerID: "r", Rating: intPtr(5)},
			reason: "Missing required fields",
		},
		{
			name:   "below range",
			in:     RatingInput{TargetUserID: "t", ReviewerID: "r", Rating: intPtr(-1), Political: boolPtr(false)},
			reason: "rating must be between 0 and 100",
		},
		{
			name:   "above range",
			in:     RatingInput{TargetUserID: "t", ReviewerID: "r", Rating: intPtr(101), Political: boolPtr(true)},
			reason: "rating must be between 0 and 100",
		},
		{
			name:   "self rating",
			in:     RatingInput{TargetUserID: "same", ReviewerID: "same", Rating: intPtr(10), Political: boolPtr(true)},
			reason: "cannot rate your own video",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			notifier := &recordingNotifier{}
			svc := NewRatingService(store, notifier)

			_, err := svc.Submit(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
			assert.Equal(t, tt.reason, apperr.Reason(err))
			assert.Empty(t, store.ratings)
			assert.Empty(t, notifier.calls)
		})
	}
}
