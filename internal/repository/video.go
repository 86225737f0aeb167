package repository

import (
	"context"
	"fmt"

	"othershorts-backend/internal/models"
)

// VideoRepository handles database operations for videos
type VideoRepository struct {
	db DBTX
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db DBTX) *VideoRepository {
	return &VideoRepository{db: db}
}

// InsertIfAbsent stores url for userID unless the url is already known.
// It reports whether a row was inserted.
func (r *VideoRepository) InsertIfAbsent(ctx context.Context, url, userID string) (bool, error) {
	query := `
		INSERT INTO videos (url, user_id)
		VALUES ($1, $2)
		ON CONFLICT (url) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query, url, userID)
	if err != nil {
		return false, fmt.Errorf("failed to insert video: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// EligibleUploaders returns the ids of users, other than requesterID and not
// in seen, who completed their profile and own at least one video whose url
// is not in submitted.
func (r *VideoRepository) EligibleUploaders(ctx context.Context, requesterID string, seen, submitted []string) ([]string, error) {
	query := `
		SELECT v.user_id
		FROM videos v
		JOIN users u ON u.google_hash = v.user_id
		WHERE v.user_id <> $1
		  AND v.user_id <> ALL($2::text[])
		  AND v.url <> ALL($3::text[])
		  AND u.country_id IS NOT NULL
		GROUP BY v.user_id
		ORDER BY v.user_id
	`
	rows, err := r.db.Query(ctx, query, requesterID, nonNil(seen), nonNil(submitted))
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible uploaders: %w", err)
	}
	defer rows.Close()

	uploaders := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan uploader: %w", err)
		}
		uploaders = append(uploaders, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating uploaders: %w", err)
	}

	return uploaders, nil
}

// ListForFeed returns up to limit of the uploader's videos not in submitted,
// newest first, joined with the uploader's public profile.
func (r *VideoRepository) ListForFeed(ctx context.Context, uploaderID string, submitted []string, limit int) ([]models.FeedVideo, error) {
	query := `
		SELECT v.url, u.age, u.gender, c.name, u.google_hash
		FROM videos v
		JOIN users u ON v.user_id = u.google_hash
		LEFT JOIN countries c ON u.country_id = c.id
		WHERE v.user_id = $1
		  AND v.url <> ALL($2::text[])
		ORDER BY v.id DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, uploaderID, nonNil(submitted), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed videos: %w", err)
	}
	defer rows.Close()

	videos := make([]models.FeedVideo, 0, limit)
	for rows.Next() {
		var v models.FeedVideo
		if err := rows.Scan(&v.URL, &v.Age, &v.Gender, &v.Country, &v.UploaderID); err != nil {
			return nil, fmt.Errorf("failed to scan feed video: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed videos: %w", err)
	}

	return videos, nil
}

// nonNil keeps pgx from encoding a nil slice as SQL NULL, which would make
// every <> ALL comparison unknown.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
