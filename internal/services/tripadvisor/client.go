// Package tripadvisor implements the secondary, category-based POI
// provider, including the per-row fallback geocoding used when the
// provider omits coordinates.
package tripadvisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
)

const (
	// DefaultBaseURL is the TripAdvisor content API base URL.
	DefaultBaseURL = "https://api.content.tripadvisor.com/api/v1"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second
)

// ErrMissingAPIKey is returned before any network attempt when the client
// has no credentials.
var ErrMissingAPIKey = errors.New("tripadvisor API key is not configured")

// StatusError reports a non-success HTTP status from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tripadvisor returned status %d: %s", e.Code, e.Body)
}

// StatusCode extracts the HTTP status from an error chain, if present.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// Client is a TripAdvisor content API client. The API key travels as a
// query parameter, which is this provider's auth scheme.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new TripAdvisor client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NearbySearch executes a category-bounded nearby search.
func (c *Client) NearbySearch(ctx context.Context, lat, lon float64, category string, radiusKm float64) ([]LocationRow, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("latLong", fmt.Sprintf("%f,%f", lat, lon))
	params.Set("category", category)
	params.Set("radius", fmt.Sprintf("%g", radiusKm))
	params.Set("radiusUnit", "km")
	params.Set("key", c.apiKey)

	fullURL := fmt.Sprintf("%s/location/nearby_search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call TripAdvisor: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var nearbyResp NearbyResponse
	if err := json.Unmarshal(body, &nearbyResp); err != nil {
		return nil, fmt.Errorf("failed to decode nearby response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("category", category).
			Int("results", len(nearbyResp.Data)).
			Msg("TripAdvisor nearby search completed")
	}
	return nearbyResp.Data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
