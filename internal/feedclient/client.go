// Package feedclient is a Go client for the feed API. Besides the raw calls it
// models the viewer side of the feed: a Session holding the exclusion sets
// and an Accumulator that fills a page from several batch calls.
package feedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"othershorts-backend/internal/models"
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sends token as a bearer credential on every call.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// APIError is a non-success response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// RatingRequest is the body of POST /api/ratings
type RatingRequest struct {
	UserID     string `json:"userId"`
	ReviewerID string `json:"reviewerId"`
	VideoURL   string `json:"videoUrl,omitempty"`
	Rating     int    `json:"rating"`
	Political  bool   `json:"political"`
}

// Client talks to the feed API.
type Client struct {
	baseURL    string
	token      string
	httpClient HTTPClient
}

// NewClient creates a new API client for baseURL (scheme and host).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchBatch performs one feed-selector call.
func (c *Client) FetchBatch(ctx context.Context, userID string, seen, submitted []string) ([]models.FeedVideo, error) {
	q := url.Values{}
	if len(seen) > 0 {
		q.Set("seen", strings.Join(seen, ","))
	}
	if len(submitted) > 0 {
		q.Set("submitted", strings.Join(submitted, ","))
	}

	endpoint := fmt.Sprintf("%s/api/batch/%s", c.baseURL, url.PathEscape(userID))
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var response struct {
		Videos []models.FeedVideo `json:"videos"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch batch: %w", err)
	}
	if response.Videos == nil {
		response.Videos = []models.FeedVideo{}
	}

	return response.Videos, nil
}

// SubmitRating posts one rating.
func (c *Client) SubmitRating(ctx context.Context, rating RatingRequest) error {
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/ratings", rating, nil); err != nil {
		return fmt.Errorf("failed to submit rating: %w", err)
	}
	return nil
}

// ListCountries returns the selectable profile countries.
func (c *Client) ListCountries(ctx context.Context) ([]models.Country, error) {
	var countries []models.Country
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/countries", nil, &countries); err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	return countries, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
