// Package foursquare implements the primary POI search provider client.
package foursquare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Foursquare Places API base URL.
	DefaultBaseURL = "https://api.foursquare.com/v3"

	// DefaultAPIVersion is sent on every request.
	DefaultAPIVersion = "2023-06-01"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default request rate (requests per second).
	DefaultRateLimit = 5

	// MaxResults is the provider ceiling, enforced regardless of the
	// caller's requested limit.
	MaxResults = 50
)

// ErrMissingAPIKey is returned before any network attempt when the client
// has no credentials.
var ErrMissingAPIKey = errors.New("foursquare API key is not configured")

// StatusError reports a non-success HTTP status from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("foursquare returned status %d: %s", e.Code, e.Body)
}

// StatusCode extracts the HTTP status from an error chain, if present.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// SearchRequest holds the parameters of a nearby search.
type SearchRequest struct {
	Lat          float64
	Lon          float64
	RadiusMeters int
	Limit        int
	Query        string // optional free-text term
}

// Client is a Foursquare Places API client.
type Client struct {
	baseURL    string
	apiKey     string
	apiVersion string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
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

// WithAPIVersion sets the places API version header value.
func WithAPIVersion(version string) ClientOption {
	return func(c *Client) {
		if version != "" {
			c.apiVersion = version
		}
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new Foursquare client. An empty apiKey is allowed at
// construction; Search fails fast with ErrMissingAPIKey before any network
// call when credentials are absent.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		apiVersion: DefaultAPIVersion,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchNearby executes a radius-bounded nearby search around a center.
// The limit is capped at MaxResults.
func (c *Client) SearchNearby(ctx context.Context, req SearchRequest) ([]Place, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	limit := req.Limit
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	params := url.Values{}
	params.Set("ll", fmt.Sprintf("%f,%f", req.Lat, req.Lon))
	params.Set("radius", strconv.Itoa(req.RadiusMeters))
	params.Set("limit", strconv.Itoa(limit))
	if req.Query != "" {
		params.Set("query", req.Query)
	}

	fullURL := fmt.Sprintf("%s/places/search?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", c.apiKey)
	httpReq.Header.Set("X-Places-Api-Version", c.apiVersion)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call Foursquare: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Float64("lat", req.Lat).
			Float64("lon", req.Lon).
			Int("radius_m", req.RadiusMeters).
			Int("results", len(searchResp.Results)).
			Msg("Foursquare nearby search completed")
	}
	return searchResp.Results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
