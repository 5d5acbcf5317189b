// Package routing resolves route distance, geocoding and place autocomplete
// through an external mapping provider.
package routing

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the mapping provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("mapping provider unavailable")
	// ErrNoRouteFound indicates no valid route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrNoResults indicates a geocoding query matched nothing.
	ErrNoResults = errors.New("no matching places found")
)

// Provider defines the interface for mapping providers.
type Provider interface {
	// RouteDistance resolves the driving route between two points.
	RouteDistance(ctx context.Context, req DistanceRequest) (*RouteDistance, error)
	// Geocode resolves a free-text place query to coordinates.
	Geocode(ctx context.Context, query string) ([]Place, error)
	// Autocomplete returns place suggestions for a partial query.
	Autocomplete(ctx context.Context, query string) ([]Place, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// DistanceRequest is the request for resolving a route distance.
type DistanceRequest struct {
	Origin      Coordinate
	Destination Coordinate
}

// RouteDistance is the resolved route between two points.
type RouteDistance struct {
	DistanceKm      float64
	DurationMinutes float64
	Provider        string
	FetchedAt       time.Time
}

// Place is one geocoding or autocomplete result.
type Place struct {
	Name    string
	Label   string
	Point   Coordinate
	Country string
}

// Error provides detailed error information from the mapping provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
