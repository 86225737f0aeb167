package feedclient

import (
	"context"
	"fmt"

	"othershorts-backend/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	DefaultTarget = 5
	DefaultBudget = 3
)

// Phase is a state of one Accumulator.Load run.
type Phase int

const (
	PhaseFetching Phase = iota
	PhasePoolExhausted
	PhaseResetting
	PhaseExhausted
)

func (p Phase) String() string {
	switch p {
	case PhaseFetching:
		return "fetching"
	case PhasePoolExhausted:
		return "pool_exhausted"
	case PhaseResetting:
		return "resetting"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// BatchFetcher performs one feed-selector call
type BatchFetcher interface {
	FetchBatch(ctx context.Context, userID string, seen, submitted []string) ([]models.FeedVideo, error)
}

// LoadResult summarises one Load.
type LoadResult struct {
	Added    []models.FeedVideo
	Calls    int
	Reset    bool
	NoVideos bool
}

// Accumulator fills a page of Target new videos from at most Budget batch
// calls. When the pool runs dry with uploaders still excluded, the seen set
// is cleared once and the call that follows counts against the same budget.
type Accumulator struct {
	fetcher BatchFetcher
	Target  int
	Budget  int
}

// NewAccumulator creates an accumulator with the default target and budget.
func NewAccumulator(fetcher BatchFetcher) *Accumulator {
	return &Accumulator{
		fetcher: fetcher,
		Target:  DefaultTarget,
		Budget:  DefaultBudget,
	}
}

// Load runs one page load on s. It fails with ErrLoadInProgress when another
// load holds the session. A failed call halts the load; videos merged before
// it stay displayed.
func (a *Accumulator) Load(ctx context.Context, s *Session) (*LoadResult, error) {
	if !s.beginLoad() {
		return nil, ErrLoadInProgress
	}

	res := &LoadResult{}
	resetUsed := false
	phase := PhaseFetching

	for phase != PhaseExhausted {
		switch phase {
		case PhaseFetching:
			if res.Calls >= a.Budget {
				phase = PhaseExhausted
				continue
			}

			seen := s.Seen()
			res.Calls++
			videos, err := a.fetcher.FetchBatch(ctx, s.UserID, seen, s.Submitted())
			if err != nil {
				s.endLoad(err, false)
				return res, fmt.Errorf("failed to load videos: %w", err)
			}

			if len(videos) == 0 {
				if len(seen) > 0 && !resetUsed {
					phase = PhasePoolExhausted
				} else {
					phase = PhaseExhausted
				}
				continue
			}

			for _, v := range videos {
				s.markSeen(v.UploaderID)
			}
			res.Added = append(res.Added, s.merge(videos)...)
			if len(res.Added) >= a.Target {
				phase = PhaseExhausted
			}

		case PhasePoolExhausted:
			phase = PhaseResetting

		case PhaseResetting:
			s.resetSeen()
			resetUsed = true
			res.Reset = true
			phase = PhaseFetching
		}
	}

	res.NoVideos = len(res.Added) == 0 && s.displayedCount() == 0
	s.endLoad(nil, res.NoVideos)

	log.Debug().
		Str("session_id", s.ID.String()).
		Int("added", len(res.Added)).
		Int("calls", res.Calls).
		Bool("reset", res.Reset).
		Msg("Feed page loaded")

	return res, nil
}
