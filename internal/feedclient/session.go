package feedclient

import (
	"errors"
	"sync"

	"othershorts-backend/internal/models"

	"github.com/google/uuid"
)

// ErrLoadInProgress is returned when a second load starts on a busy session.
var ErrLoadInProgress = errors.New("a load is already in progress")

// Session is one viewer's feed state. It owns the exclusion sets sent with
// every batch call and the list of videos already displayed.
type Session struct {
	ID     uuid.UUID
	UserID string

	mu        sync.Mutex
	seen      orderedSet
	submitted orderedSet
	pending   map[string]struct{}
	displayed []models.FeedVideo
	shownURLs map[string]struct{}
	loading   bool
	noVideos  bool
	loadErr   error
}

// NewSession starts an empty session for userID.
func NewSession(userID string) *Session {
	return &Session{
		ID:        uuid.New(),
		UserID:    userID,
		seen:      newOrderedSet(),
		submitted: newOrderedSet(),
		pending:   make(map[string]struct{}),
		shownURLs: make(map[string]struct{}),
	}
}

// Seen returns the uploader ids excluded from the next batch.
func (s *Session) Seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.values()
}

// Submitted returns the URLs rated in this session.
func (s *Session) Submitted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted.values()
}

// IsSubmitted reports whether url was already rated in this session.
func (s *Session) IsSubmitted(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted.has(url)
}

// Displayed returns a copy of the videos shown so far, in order.
func (s *Session) Displayed() []models.FeedVideo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FeedVideo(nil), s.displayed...)
}

// NoVideos reports whether the last load found nothing while the displayed
// list was empty.
func (s *Session) NoVideos() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noVideos
}

// LastError returns the error of the last failed load, nil after a success.
// A failed load can simply be retried.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Loading reports whether a load is running.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// RemoveUnavailable drops a video the player could not play.
func (s *Session) RemoveUnavailable(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.displayed[:0]
	for _, v := range s.displayed {
		if v.URL != url {
			out = append(out, v)
		}
	}
	s.displayed = out
}

func (s *Session) beginLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return false
	}
	s.loading = true
	return true
}

func (s *Session) endLoad(err error, noVideos bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.loadErr = err
	if err == nil {
		s.noVideos = noVideos
	}
}

func (s *Session) markSeen(uploaderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen.add(uploaderID)
}

func (s *Session) resetSeen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = newOrderedSet()
}

func (s *Session) markSubmitted(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted.add(url)
}

// beginSubmit claims url for one rating call. It reports false when url is
// already rated or a call for it is in flight.
func (s *Session) beginSubmit(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted.has(url) {
		return false
	}
	if _, ok := s.pending[url]; ok {
		return false
	}
	s.pending[url] = struct{}{}
	return true
}

func (s *Session) endSubmit(url string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, url)
	if ok {
		s.submitted.add(url)
	}
}

// merge appends the videos not displayed yet and returns them.
func (s *Session) merge(videos []models.FeedVideo) []models.FeedVideo {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []models.FeedVideo
	for _, v := range videos {
		if _, dup := s.shownURLs[v.URL]; dup {
			continue
		}
		s.shownURLs[v.URL] = struct{}{}
		s.displayed = append(s.displayed, v)
		fresh = append(fresh, v)
	}
	return fresh
}

func (s *Session) displayedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.displayed)
}

type orderedSet struct {
	order []string
	index map[string]struct{}
}

func newOrderedSet() orderedSet {
	return orderedSet{index: make(map[string]struct{})}
}

func (o *orderedSet) add(v string) {
	if _, ok := o.index[v]; ok {
		return
	}
	o.index[v] = struct{}{}
	o.order = append(o.order, v)
}

func (o *orderedSet) has(v string) bool {
	_, ok := o.index[v]
	return ok
}

func (o *orderedSet) values() []string {
	return append([]string{}, o.order...)
}
