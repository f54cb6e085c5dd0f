// Package nominatim implements the geocoding provider client. The usage
// policy of the public instance requires an identifying User-Agent on every
// request and roughly one request per second; both are enforced here rather
// than left to callers.
package nominatim

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

	"github.com/ternarybob/carto/internal/geo"
	"github.com/ternarybob/carto/internal/models"
)

const (
	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestSpacing keeps the client inside the public instance's
	// absolute-maximum one request per second.
	DefaultRequestSpacing = 1100 * time.Millisecond
)

// StatusError reports a non-success HTTP status from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nominatim returned status %d: %s", e.Code, e.Body)
}

// StatusCode extracts the HTTP status from an error chain, if present.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// Client is a Nominatim API client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL (a self-hosted instance or a test server).
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

// WithRequestSpacing sets the minimum spacing between outbound requests.
func WithRequestSpacing(spacing time.Duration) ClientOption {
	return func(c *Client) {
		if spacing > 0 {
			c.limiter = rate.NewLimiter(rate.Every(spacing), 1)
		}
	}
}

// NewClient creates a new Nominatim client. userAgent identifies the
// calling application per the provider's usage policy and must be non-empty.
func NewClient(userAgent string, opts ...ClientOption) (*Client, error) {
	if userAgent == "" {
		return nil, fmt.Errorf("nominatim client requires an identifying user agent")
	}

	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultRequestSpacing), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search executes a free-text search and returns the raw result rows.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(req.Limit))
	if req.PolygonGeoJSON {
		params.Set("polygon_geojson", "1")
	}
	if req.CountryCodes != "" {
		params.Set("countrycodes", req.CountryCodes)
	}
	if req.ViewBox != nil {
		params.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f",
			req.ViewBox.MinLon, req.ViewBox.MinLat, req.ViewBox.MaxLon, req.ViewBox.MaxLat))
		params.Set("bounded", "1")
	}

	body, err := c.get(ctx, "/search", params, req.Locale)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("query", req.Query).
			Int("results", len(results)).
			Msg("Nominatim search completed")
	}
	return results, nil
}

// GeocodeOnce resolves a single address to a [lon, lat] coordinate,
// optionally biased to a small box around center. Returns (nil, nil) when
// the provider finds no match, so callers can skip rather than fail.
func (c *Client) GeocodeOnce(ctx context.Context, address string, bias *models.Bias) ([]float64, error) {
	req := SearchRequest{Query: address, Limit: 1}
	if bias != nil {
		radius := bias.RadiusKm
		if radius <= 0 {
			radius = models.DefaultBiasRadius
		}
		box := geo.BoxAround(bias.Lat, bias.Lon, radius)
		req.ViewBox = &ViewBox{MinLon: box.MinLon, MinLat: box.MinLat, MaxLon: box.MaxLon, MaxLat: box.MaxLat}
	}

	results, err := c.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	coord, err := results[0].Coordinate()
	if err != nil {
		return nil, nil
	}
	return coord, nil
}

// Coordinate parses the row's string Lat/Lon pair into [lon, lat].
func (r SearchResult) Coordinate() ([]float64, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", r.Lon, err)
	}
	return []float64{lon, lat}, nil
}

// get performs a rate-limited GET against the provider.
func (c *Client) get(ctx context.Context, path string, params url.Values, locale string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if locale != "" {
		req.Header.Set("Accept-Language", locale)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Nominatim: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
