// Package suhm is the HTTP client for the Smart Urban Heat Map API.
package suhm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/domain"
	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/observability"
)

// Client fetches readings from the upstream weather-sensor API. One GET per
// invocation: no retry, no caching. A non-success status surfaces as an
// error carrying the status code and response body.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an upstream API client with the given base URL and
// request timeout.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchLatest retrieves the most recent reading for every station.
func (c *Client) FetchLatest(ctx context.Context) ([]domain.StationReading, error) {
	body, err := c.get(ctx, c.baseURL+"/latest", "latest")
	if err != nil {
		return nil, err
	}
	return domain.ParseLatest(body)
}

// FetchTimeseries retrieves readings for one station over an optional time
// range. Query parameters are forwarded as given; an empty upstream response
// yields no points.
func (c *Client) FetchTimeseries(ctx context.Context, q domain.TimeseriesQuery) ([]domain.TimeseriesPoint, error) {
	params := url.Values{"stationId": {q.StationID}}
	if !q.TimeFrom.IsZero() {
		params.Set("timeFrom", q.TimeFrom.Format(time.RFC3339))
	}
	if !q.TimeTo.IsZero() {
		params.Set("timeTo", q.TimeTo.Format(time.RFC3339))
	}

	body, err := c.get(ctx, c.baseURL+"/timeseries?"+params.Encode(), "timeseries")
	if err != nil {
		return nil, err
	}
	return domain.ParseTimeseries(body)
}

func (c *Client) get(ctx context.Context, fullURL, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()
	c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if resp.StatusCode == http.StatusNoContent {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "success").Inc()
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("upstream API error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	c.metrics.UpstreamRequests.WithLabelValues(endpoint, "success").Inc()
	return body, nil
}
