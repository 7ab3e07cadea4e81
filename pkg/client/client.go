// Package client provides the HTTP boundary to the Riot platform API and
// Data Dragon. It performs exactly one request per call: no quota handling,
// no caching and no retry happen here.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for Riot API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scouter_requests_total",
		Help: "Total Riot API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scouter_request_duration_seconds",
		Help:    "Riot API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scouter_errors_total",
		Help: "Total Riot API errors by class",
	}, []string{"class"})
)

// Default hosts.
const (
	DefaultBaseURL       = "https://euw1.api.riotgames.com"
	DefaultDataDragonURL = "https://ddragon.leagueoflegends.com"
)

// Client is the Riot API HTTP client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the platform host, e.g. https://euw1.api.riotgames.com.
	BaseURL string

	// DataDragonURL is the static data host.
	DataDragonURL string

	// APIKey is sent as the api_key query parameter.
	APIKey string

	// UserAgent header.
	UserAgent string

	// Timeout bounds a single request. Zero leaves the transport default.
	Timeout time.Duration
}

// DefaultConfig returns the configuration for the EUW platform.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		DataDragonURL: DefaultDataDragonURL,
		APIKey:        apiKey,
		UserAgent:     "lol-scouter/1.0",
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if cfg.DataDragonURL == "" {
		cfg.DataDragonURL = DefaultDataDragonURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		logger:     log.With().Str("component", "riot-client").Logger(),
	}, nil
}

// Response is a fully read response body.
type Response struct {
	StatusCode int
	Body       []byte
}

// Get performs a GET against the platform host. A non-200 status is
// returned as *APIError carrying the upstream status.message, together
// with the response.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("api_key", c.config.APIKey)

	return c.do(ctx, strings.TrimRight(c.config.BaseURL, "/")+path+"?"+q.Encode(), route(path))
}

func (c *Client) do(ctx context.Context, rawURL, endpoint string) (*Response, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().Str("endpoint", endpoint).Msg("Executing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &APIError{Class: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &APIError{StatusCode: resp.StatusCode, Class: ErrorClassNetwork, Message: "read body", Err: err}
	}

	status := strconv.Itoa(resp.StatusCode)
	requestsTotal.WithLabelValues(endpoint, status).Inc()
	out := &Response{StatusCode: resp.StatusCode, Body: body}

	if resp.StatusCode != http.StatusOK {
		class := classify(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    upstreamMessage(resp.StatusCode, body),
		}
		c.logger.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Request failed")
		return out, apiErr
	}

	return out, nil
}

// route reduces a request path to a low-cardinality metric label by
// keeping the first four segments: /lol/match/v4/matches/123 -> /lol/match/v4/matches.
func route(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 5)
	if len(parts) > 4 {
		parts = parts[:4]
	}
	return "/" + strings.Join(parts, "/")
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
