package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/commutewise/commutewise/internal/api/models"
)

// SessionHeader carries the client's anonymous session identifier. It keys
// the session rate limit tiers and is echoed into request logs.
const SessionHeader = "X-Session-Id"

// RateLimitConfig holds one rate limit tier.
type RateLimitConfig struct {
	// RequestLimit is the number of requests allowed per window.
	RequestLimit int
	// WindowLength is the limit window duration.
	WindowLength time.Duration
}

// Rate limit tiers. Compute is the most expensive endpoint because every
// uncached request costs a mapping provider call.
var (
	// AdminRateLimit applies to admin endpoints.
	AdminRateLimit = RateLimitConfig{RequestLimit: 10, WindowLength: time.Minute}

	// ExpensiveRateLimit applies to compute and geocoding endpoints.
	ExpensiveRateLimit = RateLimitConfig{RequestLimit: 30, WindowLength: time.Minute}

	// StandardRateLimit applies to catalog and metadata endpoints.
	StandardRateLimit = RateLimitConfig{RequestLimit: 100, WindowLength: time.Minute}
)

// RateLimitByIP limits by client IP. RealIP runs earlier in the chain, so
// the key reflects the address behind the load balancer.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitHandler(cfg.WindowLength)),
	)
}

// RateLimitBySession limits by the session header, falling back to client
// IP when the header is absent so anonymous clients cannot dodge limits
// by omitting it.
func RateLimitBySession(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyBySessionOrIP),
		httprate.WithLimitHandler(limitHandler(cfg.WindowLength)),
	)
}

func keyBySessionOrIP(r *http.Request) (string, error) {
	if sessionID := r.Header.Get(SessionHeader); sessionID != "" {
		return "session:" + sessionID, nil
	}
	return httprate.KeyByRealIP(r)
}

// limitHandler writes a 429 problem. Retry-After is the full window;
// httprate does not expose the exact reset time.
func limitHandler(window time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		problem := models.NewTooManyRequests(
			GetRequestID(r.Context()),
			"rate limit exceeded, retry after the window resets",
		)
		problem.Instance = r.URL.Path

		w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
		problem.Write(w)
	}
}
