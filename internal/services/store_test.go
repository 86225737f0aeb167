package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"othershorts-backend/internal/apperr"
	"othershorts-backend/internal/models"
)

// memStore mirrors the SQL semantics of the repositories in memory.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*models.User
	countries map[int]string
	videos    []models.Video
	ratings   []models.Rating
	nextID    int64
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*models.User),
		countries: map[int]string{1: "Canada", 2: "Japan", 3: "Spain"},
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
func shorts(id string) string { return "https://www.youtube.com/shorts/" + id }

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// addUploader creates a user with a complete profile (or none when
// country is 0) owning the given video ids, oldest first.
func (m *memStore) addUploader(id string, country int, videoIDs ...string) {
	u := &models.User{ID: id, CreatedAt: time.Now()}
	if country != 0 {
		u.Age = intPtr(30)
		u.Gender = strPtr("Other")
		u.CountryID = intPtr(country)
	}
	m.users[id] = u
	for _, v := range videoIDs {
		m.videos = append(m.videos, models.Video{ID: m.id(), URL: shorts(v), UserID: id})
	}
}

func (m *memStore) CreateIfAbsent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		m.users[id] = &models.User{ID: id, CreatedAt: time.Now()}
	}
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateProfile(_ context.Context, id string, age int, gender string, countryID int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
	}
	u.Age, u.Gender, u.CountryID = &age, &gender, &countryID
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", apperr.ErrNotFound)
	}
	u.PushToken = pushToken
	return nil
}

func (m *memStore) List(_ context.Context) ([]models.Country, error) {
	out := make([]models.Country, 0, len(m.countries))
	for id, name := range m.countries {
		out = append(out, models.Country{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) Exists(_ context.Context, id int) (bool, error) {
	_, ok := m.countries[id]
	return ok, nil
}

func (m *memStore) InsertIfAbsent(_ context.Context, url, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.videos {
		if v.URL == url {
			return false, nil
		}
	}
	m.videos = append(m.videos, models.Video{ID: m.id(), URL: url, UserID: userID})
	return true, nil
}

func (m *memStore) EligibleUploaders(_ context.Context, requesterID string, seen, submitted []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seenSet, subSet := toSet(seen), toSet(submitted)
	pool := map[string]struct{}{}
	for _, v := range m.videos {
		if v.UserID == requesterID {
			continue
		}
		if _, ok := seenSet[v.UserID]; ok {
			continue
		}
		if _, ok := subSet[v.URL]; ok {
			continue
		}
		if u := m.users[v.UserID]; u == nil || u.CountryID == nil {
			continue
		}
		pool[v.UserID] = struct{}{}
	}
	out := make([]string, 0, len(pool))
	for id := range pool {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) ListForFeed(_ context.Context, uploaderID string, submitted []string, limit int) ([]models.FeedVideo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subSet := toSet(submitted)
	u := m.users[uploaderID]
	out := make([]models.FeedVideo, 0, limit)
	for i := len(m.videos) - 1; i >= 0 && len(out) < limit; i-- {
		v := m.videos[i]
		if v.UserID != uploaderID {
			continue
		}
		if _, ok := subSet[v.URL]; ok {
			continue
		}
		fv := models.FeedVideo{URL: v.URL, UploaderID: uploaderID, Age: u.Age, Gender: u.Gender}
		if u.CountryID != nil {
			fv.Country = strPtr(m.countries[*u.CountryID])
		}
		out = append(out, fv)
	}
	return out, nil
}

func (m *memStore) Create(_ context.Context, rating *models.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rating.VideoURL != nil {
		for _, r := range m.ratings {
			if r.ReviewerID == rating.ReviewerID && r.VideoURL != nil && *r.VideoURL == *rating.VideoURL {
				return fmt.Errorf("rating exists: %w", apperr.ErrAlreadyRated)
			}
		}
	}
	rating.ID = m.id()
	rating.CreatedAt = time.Now()
	m.ratings = append(m.ratings, *rating)
	return nil
}

func (m *memStore) videoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.videos)
}
