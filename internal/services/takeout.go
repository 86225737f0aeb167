package services

import (
	"context"
	"fmt"
	"time"

	"othershorts-backend/internal/apperr"
	"othershorts-backend/internal/takeout"

	"github.com/rs/zerolog/log"
)

// DurationLookup resolves YouTube video ids to ISO-8601 durations
type DurationLookup interface {
	Configured() bool
	FetchDurations(ctx context.Context, ids []string) (map[string]string, error)
}

// TakeoutArchive keeps a copy of raw uploads. Implementations return the key
// the file was stored under.
type TakeoutArchive interface {
	Store(ctx context.Context, userID, filename string, data []byte) (string, error)
}

// TakeoutPolicy configures ingestion
type TakeoutPolicy struct {
	MaxDuration time.Duration
	BatchSize   int
}

// IngestResult summarises one takeout upload
type IngestResult struct {
	Format     takeout.Format
	Candidates int
	Kept       int
	Added      int
	ArchiveKey string
}

// TakeoutService turns watch-history exports into stored shorts
type TakeoutService struct {
	videoRepo VideoStore
	userRepo  UserStore
	lookup    DurationLookup
	archive   TakeoutArchive
	policy    TakeoutPolicy
}

// NewTakeoutService creates a new takeout service. archive may be nil.
func NewTakeoutService(videoRepo VideoStore, userRepo UserStore, lookup DurationLookup, archive TakeoutArchive, policy TakeoutPolicy) *TakeoutService {
	if policy.BatchSize <= 0 {
		policy.BatchSize = 50
	}
	return &TakeoutService{
		videoRepo: videoRepo,
		userRepo:  userRepo,
		lookup:    lookup,
		archive:   archive,
		policy:    policy,
	}
}

// Ingest parses data, keeps the videos no longer than the policy threshold
// and stores them for userID. Re-uploading the same file adds nothing.
func (s *TakeoutService) Ingest(ctx context.Context, userID, filename string, data []byte) (*IngestResult, error) {
	if userID == "" || len(data) == 0 {
		return nil, apperr.Validation("User ID or file is missing.")
	}
	if !s.lookup.Configured() {
		return nil, fmt.Errorf("youtube api key: %w", apperr.ErrNotConfigured)
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	result := &IngestResult{}

	if s.archive != nil {
		key, err := s.archive.Store(ctx, userID, filename, data)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Failed to archive takeout file")
		} else {
			result.ArchiveKey = key
		}
	}

	parsed := takeout.Parse(data)
	result.Format = parsed.Format
	if parsed.Format == takeout.FormatUnrecognized {
		return nil, apperr.WithReason(apperr.ErrInvalidFormat,
			"Invalid file format. Please upload watch-history.json or watch-history.html.")
	}

	ids := takeout.ExtractIDs(parsed.URLs)
	result.Candidates = len(ids)
	if len(ids) == 0 {
		return nil, apperr.WithReason(apperr.ErrNoVideosFound, "No YouTube videos found in the provided history.")
	}

	keep, err := s.filterShorts(ctx, ids)
	if err != nil {
		return nil, err
	}
	result.Kept = len(keep)
	if len(keep) == 0 {
		return nil, apperr.WithReason(apperr.ErrNoShortsFound, fmt.Sprintf(
			"No videos under %d seconds were found in your history.", int(s.policy.MaxDuration.Seconds())))
	}

	for _, id := range keep {
		added, err := s.videoRepo.InsertIfAbsent(ctx, takeout.ShortsURL(id), userID)
		if err != nil {
			return nil, fmt.Errorf("failed to store shorts: %w", err)
		}
		if added {
			result.Added++
		}
	}

	log.Info().
		Str("user_id", userID).
		Str("format", result.Format.String()).
		Int("candidates", result.Candidates).
		Int("kept", result.Kept).
		Int("added", result.Added).
		Msg("Takeout ingested")

	return result, nil
}

// filterShorts looks ids up in batches and returns those whose duration is
// within the threshold. A failed batch is logged and skipped, so a lookup
// outage leaves keep empty rather than failing the upload.
func (s *TakeoutService) filterShorts(ctx context.Context, ids []string) ([]string, error) {
	var (
		keep     []string
		failures int
	)

	for start := 0; start < len(ids); start += s.policy.BatchSize {
		end := min(start+s.policy.BatchSize, len(ids))
		batch := ids[start:end]

		durations, err := s.lookup.FetchDurations(ctx, batch)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Error().Err(err).Int("batch_size", len(batch)).Msg("Duration lookup failed, skipping batch")
			failures++
			continue
		}

		for _, id := range batch {
			raw, ok := durations[id]
			if !ok {
				continue
			}
			d, ok := takeout.ParseDuration(raw)
			if !ok {
				log.Debug().Str("video_id", id).Str("duration", raw).Msg("Skipping unparsable duration")
				continue
			}
			if d <= s.policy.MaxDuration {
				keep = append(keep, id)
			}
		}
	}

	if failures > 0 {
		log.Warn().Int("failed_batches", failures).Int("kept", len(keep)).Msg("Some duration lookups failed")
	}

	return keep, nil
}
