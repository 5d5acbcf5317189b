// Package resilience wraps outbound calls to mapping providers with a
// circuit breaker, bounded retries, and per-provider health bookkeeping.
// Defaults are tuned for the openrouteservice free tier, where aggressive
// retrying burns daily quota faster than it recovers availability.
package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the provider's circuit breaker is open
// and the call was rejected without reaching the network.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the provider for circuit breaker naming.
	Name string

	// Timeout is the per-attempt HTTP timeout. Default: 10s.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the first call.
	// Default: 2. Directions quota on the free tier is 40/min, so a
	// failing spell must not multiply into bursts of retried calls.
	MaxRetries uint64

	// InitialInterval is the first retry backoff. Default: 500ms.
	InitialInterval time.Duration

	// MaxInterval caps the retry backoff. Default: 8s.
	MaxInterval time.Duration

	// BreakerOpenFor is how long the breaker stays open before probing
	// with a single half-open request. Default: 30s.
	BreakerOpenFor time.Duration

	// ReadyToTrip overrides the trip condition. Default: QuotaReadyToTrip.
	ReadyToTrip func(counts gobreaker.Counts) bool
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 8 * time.Second
	}
	if cfg.BreakerOpenFor == 0 {
		cfg.BreakerOpenFor = 30 * time.Second
	}
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = QuotaReadyToTrip
	}
}

// QuotaReadyToTrip trips after 4+ calls with a 60% failure rate. Tripping
// early stops quota being spent on a provider that is down anyway; the
// short open window (BreakerOpenFor) recovers quickly from blips.
func QuotaReadyToTrip(counts gobreaker.Counts) bool {
	if counts.Requests < 4 {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
}

// Client is an HTTP client that retries transient failures with
// exponential backoff and rejects calls while its circuit is open.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a resilient HTTP client for one provider.
func NewClient(cfg ClientConfig) *Client {
	cfg.applyDefaults()

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{ //nolint:bodyclose // type param, not a response
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: cfg.ReadyToTrip,
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		config:     cfg,
	}
}

// Name returns the provider name this client was built for.
func (c *Client) Name() string {
	return c.config.Name
}

// Do executes the request. Network errors and 5xx responses are retried
// with backoff and count against the breaker; 4xx responses (including
// 429 quota rejections) are returned as-is without retrying, since
// repeating them only spends more quota.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // attempts are bounded by MaxRetries, not wall time

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			return c.send(ctx, req)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}
		lastResp = resp
		return nil
	}

	if err := backoff.Retry(attempt, policy); err != nil {
		// A 5xx that exhausted its retries still carries a readable body.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}
	return lastResp, nil
}

// send performs one attempt. 5xx responses are surfaced as errors so the
// breaker and retry policy see them as failures.
func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req.Clone(ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 500 {
		return resp, &upstreamError{status: resp.StatusCode}
	}
	return resp, nil
}

// State returns the current circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the circuit breaker's request counters.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}

type upstreamError struct {
	status int
}

func (e *upstreamError) Error() string {
	return "upstream error: " + http.StatusText(e.status)
}
