// Package catalog retrieves earthquake events from the USGS fdsnws catalog
// service.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"omori-lab/internal/domain"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://earthquake.usgs.gov/fdsnws/event/1/query"
	DefaultTimeout = 60 * time.Second
	DefaultDelay   = 500 * time.Millisecond // per-request courtesy delay
	DefaultLimit   = 20000
)

// Circle restricts a query to a great-circle radius around a point.
type Circle struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// Query describes one catalog request. Zero-valued optional fields are
// omitted from the request.
type Query struct {
	Start        time.Time
	End          time.Time
	MinMagnitude float64
	Circle       *Circle
	Limit        int
}

// Client provides earthquake events from a catalog service.
type Client interface {
	// FetchEvents returns events matching the query, ordered by time ASC.
	// Records without a magnitude and non-earthquake event types are
	// filtered out.
	FetchEvents(ctx context.Context, q Query) ([]domain.Event, error)
}

// HTTPClient implements Client against the USGS fdsnws GeoJSON endpoint.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	delay   time.Duration
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithBaseURL overrides the catalog endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithDelay sets the courtesy delay applied before each request.
func WithDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.delay = d
	}
}

// NewHTTPClient creates a new catalog HTTP client.
func NewHTTPClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
		delay:   DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Client = (*HTTPClient)(nil)

// FetchEvents performs one catalog query.
func (c *HTTPClient) FetchEvents(ctx context.Context, q Query) ([]domain.Event, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.URL.RawQuery = buildParams(q).Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog request failed: status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	events, err := ParseGeoJSON(body)
	if err != nil {
		return nil, fmt.Errorf("parse catalog response: %w", err)
	}
	return events, nil
}

func buildParams(q Query) url.Values {
	params := url.Values{}
	params.Set("format", "geojson")
	params.Set("orderby", "time-asc")
	params.Set("starttime", q.Start.UTC().Format("2006-01-02T15:04:05"))
	params.Set("endtime", q.End.UTC().Format("2006-01-02T15:04:05"))

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	params.Set("limit", strconv.Itoa(limit))

	if q.MinMagnitude > 0 {
		params.Set("minmagnitude", formatFloat(q.MinMagnitude))
	}
	if q.Circle != nil {
		params.Set("latitude", formatFloat(q.Circle.Latitude))
		params.Set("longitude", formatFloat(q.Circle.Longitude))
		params.Set("maxradiuskm", formatFloat(q.Circle.RadiusKm))
	}
	return params
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
