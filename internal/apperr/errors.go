// Package apperr defines the sentinel errors shared by the service and
// transport layers. Callers match them with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed request fields.
	ErrValidation = errors.New("validation error")

	// ErrInvalidFormat marks a takeout file that is neither JSON nor HTML history.
	ErrInvalidFormat = errors.New("invalid file format")

	// ErrNoVideosFound marks a takeout file with no YouTube video ids in it.
	ErrNoVideosFound = errors.New("no videos found")

	// ErrNoShortsFound marks a takeout file where no video passed the duration filter.
	ErrNoShortsFound = errors.New("no shorts found")

	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUpstream marks a failure of the third-party duration lookup.
	ErrUpstream = errors.New("upstream error")

	// ErrAlreadyRated marks a second rating by one reviewer for one video.
	ErrAlreadyRated = errors.New("already rated")

	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotConfigured marks a feature whose server configuration is missing.
	ErrNotConfigured = errors.New("not configured")
)

// Validation wraps ErrValidation with a human-readable reason.
func Validation(format string, args ...any) error {
	return WithReason(ErrValidation, fmt.Sprintf(format, args...))
}

// WithReason attaches a client-facing reason to one of the sentinels above.
func WithReason(sentinel error, reason string) error {
	return &reasonError{sentinel: sentinel, reason: reason}
}

// Reason returns the message a client should see for err. Errors built with
// WithReason keep their reason through any amount of wrapping.
func Reason(err error) string {
	var target *reasonError
	if errors.As(err, &target) {
		return target.reason
	}
	return err.Error()
}

type reasonError struct {
	sentinel error
	reason   string
}

func (e *reasonError) Error() string { return e.reason }

func (e *reasonError) Unwrap() error { return e.sentinel }
