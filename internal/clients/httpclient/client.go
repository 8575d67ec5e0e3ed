// Package httpclient is the shared transport for upstream market data APIs:
// rate limiting, a circuit breaker per provider, and JSON decoding that
// keeps numbers as literals.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/aristath/earnings/internal/metrics"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 1.0

	// DefaultFailureThreshold is the number of consecutive failures that
	// opens the breaker.
	DefaultFailureThreshold = 5

	maxErrorBody = 512
)

// Client performs authenticated GET requests against one provider.
type Client struct {
	provider   string
	baseURL    string
	authParam  string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	threshold  uint32
	openFor    time.Duration
	log        zerolog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets requests per second and burst.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithBreaker sets the consecutive-failure threshold and how long the
// breaker stays open before probing again.
func WithBreaker(threshold uint32, openFor time.Duration) Option {
	return func(c *Client) {
		c.threshold = threshold
		c.openFor = openFor
	}
}

// New creates a client for provider. The API key is sent as the authParam
// query parameter.
func New(provider, baseURL, authParam, apiKey string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		provider:   provider,
		baseURL:    strings.TrimRight(baseURL, "/"),
		authParam:  authParam,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		threshold:  DefaultFailureThreshold,
		openFor:    60 * time.Second,
		log:        log.With().Str("client", provider).Logger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        provider,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     c.openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.threshold
		},
		IsSuccessful: func(err error) bool {
			// Client errors other than throttling say nothing about provider health.
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitBreakerState(name, int(to))
			c.log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return c
}

// Provider returns the provider name used in logs and metrics.
func (c *Client) Provider() string {
	return c.provider
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// APIError is a non-2xx upstream response.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %s (status %d, endpoint: %s)", e.Provider, e.Message, e.StatusCode, e.Endpoint)
}

// Get performs a GET request and decodes the JSON body into result.
// Numbers decode as json.Number when result holds interface{} values.
func (c *Client) Get(ctx context.Context, path string, params url.Values, result interface{}) error {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, path, params)
	})
	metrics.RecordUpstreamRequest(c.provider, err)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("%s: failed to decode %s: %w", c.provider, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	if c.authParam != "" {
		query.Set(c.authParam, c.apiKey)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Upstream request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &APIError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Message:    msg,
			Endpoint:   path,
		}
	}

	return body, nil
}
