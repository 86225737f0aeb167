package models

import "time"

// User represents a user in the system. ID is the sha256 hex of the
// external sign-in identity. Age, Gender and CountryID are set together.
type User struct {
	ID        string    `json:"id"`
	Age       *int      `json:"age"`
	Gender    *string   `json:"gender"`
	CountryID *int      `json:"country_id"`
	PushToken *string   `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// ProfileComplete reports whether onboarding has been finished.
func (u *User) ProfileComplete() bool {
	return u.Age != nil && u.Gender != nil && u.CountryID != nil
}

// Country is one selectable profile country
type Country struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Video is a short owned by the user whose watch history contained it
type Video struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedVideo is a video joined with its uploader's public profile, as served
// by the batch endpoint.
type FeedVideo struct {
	URL        string  `json:"url"`
	Age        *int    `json:"age"`
	Gender     *string `json:"gender"`
	Country    *string `json:"country"`
	UploaderID string  `json:"uploaderId"`
}

// Rating is one reviewer's judgement of a target user's video
type Rating struct {
	ID           int64     `json:"id"`
	TargetUserID string    `json:"userId"`
	ReviewerID   string    `json:"reviewerId"`
	VideoURL     *string   `json:"videoUrl,omitempty"`
	Value        int       `json:"rating"`
	Political    bool      `json:"political"`
	CreatedAt    time.Time `json:"created_at"`
}

// Rating bounds
const (
	MinRating = 0
	MaxRating = 100
)
