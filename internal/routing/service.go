package routing

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the mapping data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache distance lookups (default: 10 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.01 ~ 1.1km).
	// Points within the same grid cell share cached data.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 30 minutes).
	StaleIfErrorTTL time.Duration

	// Now returns the current time. Injected so tests control cache expiry.
	// Defaults to time.Now.
	Now func() time.Time

	// Metrics records provider call outcomes and distance cache outcomes.
	// Optional.
	Metrics ProviderMetrics
}

// ProviderMetrics records provider calls and the cache in front of them.
// *middleware.ProviderMetrics satisfies it.
type ProviderMetrics interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// Service resolves route distances with caching. The cache is an explicit
// per-process object with an injected clock, constructed once and passed to
// callers; there is no package-level state.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	now             func() time.Time
	metrics         ProviderMetrics

	mu    sync.RWMutex
	cache map[string]*cachedDistance
}

type cachedDistance struct {
	result    *RouteDistance
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.01 // ~1.1km at equator
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		now:             now,
		metrics:         cfg.Metrics,
		cache:           make(map[string]*cachedDistance),
	}
}

// RouteDistance resolves the route distance between two points.
// Uses cached data if available and not expired.
func (s *Service) RouteDistance(ctx context.Context, req DistanceRequest) (*RouteDistance, error) {
	if err := validateCoordinates(req.Origin); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}
	if err := validateCoordinates(req.Destination); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}

	cacheKey := s.cacheKey(req)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && s.now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit for route distance")
		s.recordCacheHit()
		return cached.result, nil
	}
	s.mu.RUnlock()

	s.recordCacheMiss()
	return s.fetchDistance(ctx, req, cacheKey)
}

// Geocode resolves a free-text place query through the provider. Results
// are not cached: queries are user-typed and rarely repeat.
func (s *Service) Geocode(ctx context.Context, query string) ([]Place, error) {
	start := time.Now()
	places, err := s.provider.Geocode(ctx, query)
	s.recordRequest("geocode", time.Since(start), err)
	return places, err
}

// Autocomplete returns place suggestions for a partial query.
func (s *Service) Autocomplete(ctx context.Context, query string) ([]Place, error) {
	start := time.Now()
	places, err := s.provider.Autocomplete(ctx, query)
	s.recordRequest("autocomplete", time.Since(start), err)
	return places, err
}

// fetchDistance fetches the distance from the provider and updates the cache.
func (s *Service) fetchDistance(ctx context.Context, req DistanceRequest, cacheKey string) (*RouteDistance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd)
	if cached, ok := s.cache[cacheKey]; ok && s.now().Before(cached.expiresAt) {
		return cached.result, nil
	}

	s.logger.Debug().
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Str("provider", s.provider.Name()).
		Msg("fetching route distance from provider")

	start := time.Now()
	result, err := s.provider.RouteDistance(ctx, req)
	s.recordRequest("route_distance", time.Since(start), err)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("origin_lat", req.Origin.Lat).
			Float64("origin_lon", req.Origin.Lon).
			Msg("failed to fetch route distance")

		// Stale-if-error: a slightly old distance beats a failed calculation.
		if cached, ok := s.cache[cacheKey]; ok {
			if s.now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Str("cache_key", cacheKey).
					Msg("serving stale route distance due to provider error")
				return cached.result, nil
			}
		}

		return nil, err
	}

	now := s.now()
	s.cache[cacheKey] = &cachedDistance{
		result:    result,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	return result, nil
}

// cacheKey generates a cache key using grid-based quantization of both
// endpoints, so nearby points share cached data.
func (s *Service) cacheKey(req DistanceRequest) string {
	gridOriginLat := math.Floor(req.Origin.Lat/s.cacheGridSize) * s.cacheGridSize
	gridOriginLon := math.Floor(req.Origin.Lon/s.cacheGridSize) * s.cacheGridSize
	gridDestLat := math.Floor(req.Destination.Lat/s.cacheGridSize) * s.cacheGridSize
	gridDestLon := math.Floor(req.Destination.Lon/s.cacheGridSize) * s.cacheGridSize

	return fmt.Sprintf("%.2f,%.2f:%.2f,%.2f",
		gridOriginLat, gridOriginLon,
		gridDestLat, gridDestLon,
	)
}

// InvalidateCache clears all cached data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedDistance)
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

func (s *Service) recordRequest(operation string, duration time.Duration, err error) {
	if s.metrics != nil {
		s.metrics.RecordRequest(s.provider.Name(), operation, duration, err)
	}
}

func (s *Service) recordCacheHit() {
	if s.metrics != nil {
		s.metrics.RecordCacheHit(s.provider.Name(), "route_distance")
	}
}

func (s *Service) recordCacheMiss() {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.provider.Name(), "route_distance")
	}
}

// validateCoordinates checks if coordinates are within valid ranges.
func validateCoordinates(c Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lon)
	}
	return nil
}
