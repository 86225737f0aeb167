// Package youtube provides a minimal YouTube Data API v3 client used to look
// up video durations during takeout ingestion.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"othershorts-backend/internal/apperr"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://www.googleapis.com"

	// MaxIDsPerRequest is the API limit for the id parameter of videos.list.
	MaxIDsPerRequest = 50
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

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithRateLimit caps outbound requests per second. Zero or less disables it.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// Client is a YouTube Data API client authenticated with an API key.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
	limiter    *rate.Limiter
}

// NewClient creates a new YouTube API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Configured reports whether an API key is available.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// FetchDurations returns the raw ISO-8601 contentDetails duration for each of
// ids that YouTube knows about. Unknown, private or deleted videos are simply
// absent from the result. At most MaxIDsPerRequest ids may be passed.
func (c *Client) FetchDurations(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	if len(ids) > MaxIDsPerRequest {
		return nil, fmt.Errorf("too many ids in one request: %d > %d", len(ids), MaxIDsPerRequest)
	}

	q := url.Values{}
	q.Set("part", "contentDetails")
	q.Set("id", strings.Join(ids, ","))
	q.Set("key", c.apiKey)
	endpoint := fmt.Sprintf("%s/youtube/v3/videos?%s", c.baseURL, q.Encode())

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var response videosResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse videos response: %v", apperr.ErrUpstream, err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("%w: YouTube API error: %s", apperr.ErrUpstream, response.Error.Message)
	}

	durations := make(map[string]string, len(response.Items))
	for _, item := range response.Items {
		if item.ContentDetails.Duration == "" {
			continue
		}
		durations[item.ID] = item.ContentDetails.Duration
	}

	return durations, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", apperr.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, handleAPIError(resp.StatusCode)
	}

	return body, nil
}

// API response types (private - implementation detail)

type videosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func handleAPIError(statusCode int) error {
	switch statusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: YouTube API rejected the request - check the API key", apperr.ErrUpstream)
	case http.StatusForbidden:
		return fmt.Errorf("%w: YouTube API access denied or quota exceeded", apperr.ErrUpstream)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: YouTube API rate limit exceeded", apperr.ErrUpstream)
	case http.StatusServiceUnavailable, http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: YouTube API server error (status %d)", apperr.ErrUpstream, statusCode)
	default:
		return fmt.Errorf("%w: YouTube API error (status %d)", apperr.ErrUpstream, statusCode)
	}
}
