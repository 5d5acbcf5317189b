package routing

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	distance *RouteDistance
	places   []Place
	err      error
	calls    int
}

func (m *mockProvider) RouteDistance(_ context.Context, _ DistanceRequest) (*RouteDistance, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.distance, nil
}

func (m *mockProvider) Geocode(_ context.Context, _ string) ([]Place, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.places, nil
}

func (m *mockProvider) Autocomplete(_ context.Context, _ string) ([]Place, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.places, nil
}

func (m *mockProvider) Name() string {
	return "mock"
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestService(p Provider, clock *fakeClock) *Service {
	return NewService(ServiceConfig{
		Provider: p,
		Logger:   zerolog.Nop(),
		Now:      clock.Now,
	})
}

func testRequest() DistanceRequest {
	return DistanceRequest{
		Origin:      Coordinate{Lat: 12.9716, Lon: 77.5946},
		Destination: Coordinate{Lat: 12.9352, Lon: 77.6245},
	}
}

func TestRouteDistance_CacheHit(t *testing.T) {
	provider := &mockProvider{
		distance: &RouteDistance{DistanceKm: 15.2, DurationMinutes: 42, Provider: "mock"},
	}
	clock := &fakeClock{t: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	svc := newTestService(provider, clock)

	first, err := svc.RouteDistance(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 15.2, first.DistanceKm)

	second, err := svc.RouteDistance(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls, "second lookup should be served from cache")
}

func TestRouteDistance_CacheExpiry(t *testing.T) {
	provider := &mockProvider{
		distance: &RouteDistance{DistanceKm: 15.2, Provider: "mock"},
	}
	clock := &fakeClock{t: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	svc := newTestService(provider, clock)

	_, err := svc.RouteDistance(context.Background(), testRequest())
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)

	_, err = svc.RouteDistance(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls, "expired entry should be refetched")
}

func TestRouteDistance_StaleIfError(t *testing.T) {
	provider := &mockProvider{
		distance: &RouteDistance{DistanceKm: 15.2, Provider: "mock"},
	}
	clock := &fakeClock{t: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	svc := newTestService(provider, clock)

	_, err := svc.RouteDistance(context.Background(), testRequest())
	require.NoError(t, err)

	// Entry expires, then the provider goes down.
	clock.Advance(15 * time.Minute)
	provider.err = ErrProviderUnavailable

	result, err := svc.RouteDistance(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 15.2, result.DistanceKm, "stale data should be served on provider error")
}

func TestRouteDistance_StaleTooOld(t *testing.T) {
	provider := &mockProvider{
		distance: &RouteDistance{DistanceKm: 15.2, Provider: "mock"},
	}
	clock := &fakeClock{t: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	svc := newTestService(provider, clock)

	_, err := svc.RouteDistance(context.Background(), testRequest())
	require.NoError(t, err)

	// Beyond the stale-if-error window.
	clock.Advance(45 * time.Minute)
	provider.err = ErrProviderUnavailable

	_, err = svc.RouteDistance(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestRouteDistance_InvalidCoordinates(t *testing.T) {
	provider := &mockProvider{}
	clock := &fakeClock{t: time.Now()}
	svc := newTestService(provider, clock)

	tests := []struct {
		name string
		req  DistanceRequest
	}{
		{
			name: "latitude out of range",
			req: DistanceRequest{
				Origin:      Coordinate{Lat: 91, Lon: 77},
				Destination: Coordinate{Lat: 12.9, Lon: 77.6},
			},
		},
		{
			name: "longitude out of range",
			req: DistanceRequest{
				Origin:      Coordinate{Lat: 12.9, Lon: 77.6},
				Destination: Coordinate{Lat: 12.9, Lon: 181},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RouteDistance(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidCoordinates)
			assert.Equal(t, 0, provider.calls, "provider should not be called for invalid input")
		})
	}
}

func TestRouteDistance_GridSharing(t *testing.T) {
	provider := &mockProvider{
		distance: &RouteDistance{DistanceKm: 15.2, Provider: "mock"},
	}
	clock := &fakeClock{t: time.Now()}
	svc := newTestService(provider, clock)

	_, err := svc.RouteDistance(context.Background(), DistanceRequest{
		Origin:      Coordinate{Lat: 12.9711, Lon: 77.5941},
		Destination: Coordinate{Lat: 12.9351, Lon: 77.6241},
	})
	require.NoError(t, err)

	// Nearby points within the same grid cells share the cached result.
	_, err = svc.RouteDistance(context.Background(), DistanceRequest{
		Origin:      Coordinate{Lat: 12.9719, Lon: 77.5949},
		Destination: Coordinate{Lat: 12.9359, Lon: 77.6249},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
}

func TestInvalidateCache(t *testing.T) {
	provider := &mockProvider{
		distance: &RouteDistance{DistanceKm: 15.2, Provider: "mock"},
	}
	clock := &fakeClock{t: time.Now()}
	svc := newTestService(provider, clock)

	_, err := svc.RouteDistance(context.Background(), testRequest())
	require.NoError(t, err)

	svc.InvalidateCache()

	_, err = svc.RouteDistance(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

type countingMetrics struct {
	hits     int
	misses   int
	requests int
	failures int
}

func (m *countingMetrics) RecordRequest(_, _ string, _ time.Duration, err error) {
	m.requests++
	if err != nil {
		m.failures++
	}
}
func (m *countingMetrics) RecordCacheHit(_, _ string)  { m.hits++ }
func (m *countingMetrics) RecordCacheMiss(_, _ string) { m.misses++ }

func TestRouteDistance_RecordsCacheMetrics(t *testing.T) {
	provider := &mockProvider{
		distance: &RouteDistance{DistanceKm: 15.2, Provider: "mock"},
	}
	clock := &fakeClock{t: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	metrics := &countingMetrics{}
	svc := NewService(ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		Now:      clock.Now,
		Metrics:  metrics,
	})

	_, err := svc.RouteDistance(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.hits)
	assert.Equal(t, 1, metrics.misses)

	_, err = svc.RouteDistance(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 1, metrics.requests, "only the cache miss should reach the provider")
	assert.Equal(t, 0, metrics.failures)
}

func TestGeocode_Passthrough(t *testing.T) {
	provider := &mockProvider{
		places: []Place{{Name: "Indiranagar", Label: "Indiranagar, Bengaluru, India"}},
	}
	clock := &fakeClock{t: time.Now()}
	svc := newTestService(provider, clock)

	places, err := svc.Geocode(context.Background(), "Indiranagar")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Indiranagar", places[0].Name)
}

func TestProviderName(t *testing.T) {
	svc := newTestService(&mockProvider{}, &fakeClock{t: time.Now()})
	assert.Equal(t, "mock", svc.ProviderName())
}
