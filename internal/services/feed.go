package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"othershorts-backend/internal/apperr"
	"othershorts-backend/internal/models"
)

// VideoStore is the persistence for ingested videos and the feed queries
type VideoStore interface {
	InsertIfAbsent(ctx context.Context, url, userID string) (bool, error)
	EligibleUploaders(ctx context.Context, requesterID string, seen, submitted []string) ([]string, error)
	ListForFeed(ctx context.Context, uploaderID string, submitted []string, limit int) ([]models.FeedVideo, error)
}

// FeedRequest is one feed-selector call. Seen and Submitted are owned by the
// client; the server keeps no session state between calls.
type FeedRequest struct {
	RequesterID string
	Seen        []string
	Submitted   []string
}

// FeedService selects the next uploader whose shorts a viewer should rate
type FeedService struct {
	videoRepo VideoStore
	perBatch  int
	pick      func(n int) int
}

// FeedOption configures the FeedService.
type FeedOption func(*FeedService)

// WithPicker replaces the uniform random choice of uploader (used by tests).
func WithPicker(pick func(n int) int) FeedOption {
	return func(s *FeedService) {
		s.pick = pick
	}
}

// NewFeedService creates a new feed service returning up to perBatch videos
// per call
func NewFeedService(videoRepo VideoStore, perBatch int, opts ...FeedOption) *FeedService {
	s := &FeedService{
		videoRepo: videoRepo,
		perBatch:  perBatch,
		pick:      rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextBatch picks one eligible uploader uniformly at random and returns up to
// perBatch of their videos that the requester has not rated, newest first.
// An empty pool yields an empty, non-nil slice.
func (s *FeedService) NextBatch(ctx context.Context, req FeedRequest) ([]models.FeedVideo, error) {
	if strings.TrimSpace(req.RequesterID) == "" {
		return nil, apperr.Validation("userId is required")
	}

	seen := cleanSet(req.Seen)
	submitted := cleanSet(req.Submitted)

	pool, err := s.videoRepo.EligibleUploaders(ctx, req.RequesterID, seen, submitted)
	if err != nil {
		return nil, fmt.Errorf("failed to build uploader pool: %w", err)
	}
	pool = s.filterPool(pool, req.RequesterID, seen)
	if len(pool) == 0 {
		return []models.FeedVideo{}, nil
	}

	uploader := pool[s.pick(len(pool))]

	videos, err := s.videoRepo.ListForFeed(ctx, uploader, submitted, s.perBatch)
	if err != nil {
		return nil, fmt.Errorf("failed to load uploader videos: %w", err)
	}

	return s.filterVideos(videos, req.RequesterID, seen, submitted), nil
}

// filterPool re-applies the requester and seen exclusions to whatever the
// store returned.
func (s *FeedService) filterPool(pool []string, requesterID string, seen []string) []string {
	excluded := toSet(seen)
	excluded[requesterID] = struct{}{}

	out := pool[:0:0]
	for _, id := range pool {
		if _, skip := excluded[id]; !skip {
			out = append(out, id)
		}
	}
	return out
}

func (s *FeedService) filterVideos(videos []models.FeedVideo, requesterID string, seen, submitted []string) []models.FeedVideo {
	excludedUploaders := toSet(seen)
	excludedUploaders[requesterID] = struct{}{}
	excludedURLs := toSet(submitted)

	out := make([]models.FeedVideo, 0, len(videos))
	for _, v := range videos {
		if _, skip := excludedUploaders[v.UploaderID]; skip {
			continue
		}
		if _, skip := excludedURLs[v.URL]; skip {
			continue
		}
		out = append(out, v)
		if len(out) == s.perBatch {
			break
		}
	}
	return out
}

// ParseIDList splits a comma-joined query value, dropping blanks
func ParseIDList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return cleanSet(strings.Split(raw, ","))
}

// cleanSet trims, drops blanks and deduplicates, keeping first-seen order.
func cleanSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values)+1)
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
