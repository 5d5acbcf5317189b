package openrouteservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commutewise/commutewise/internal/routing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})
}

func TestRouteDistance_Success(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/directions/driving-car", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"routes": [{"summary": {"distance": 15200.0, "duration": 2520.0}}]
		}`))
	})

	result, err := client.RouteDistance(context.Background(), routing.DistanceRequest{
		Origin:      routing.Coordinate{Lat: 12.9716, Lon: 77.5946},
		Destination: routing.Coordinate{Lat: 12.9352, Lon: 77.6245},
	})
	require.NoError(t, err)

	assert.InDelta(t, 15.2, result.DistanceKm, 0.001)
	assert.InDelta(t, 42.0, result.DurationMinutes, 0.001)
	assert.Equal(t, ProviderName, result.Provider)
	assert.False(t, result.FetchedAt.IsZero())
}

func TestRouteDistance_NoRoutes(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"routes": []}`))
	})

	_, err := client.RouteDistance(context.Background(), routing.DistanceRequest{})
	assert.ErrorIs(t, err, routing.ErrNoRouteFound)
}

func TestRouteDistance_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    error
	}{
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error": {"code": 429, "message": "quota exceeded"}}`,
			wantErr:    routing.ErrRateLimitExceeded,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			body:       `{"error": {"code": 2009, "message": "route could not be found"}}`,
			wantErr:    routing.ErrNoRouteFound,
		},
		{
			name:       "bad request",
			statusCode: http.StatusBadRequest,
			body:       `{"error": {"code": 2003, "message": "parameter coordinates is invalid"}}`,
			wantErr:    routing.ErrInvalidCoordinates,
		},
		{
			name:       "server error",
			statusCode: http.StatusBadGateway,
			body:       ``,
			wantErr:    routing.ErrProviderUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.RouteDistance(context.Background(), routing.DistanceRequest{})
			assert.ErrorIs(t, err, tt.wantErr)

			var provErr *routing.Error
			require.ErrorAs(t, err, &provErr)
			assert.Equal(t, ProviderName, provErr.Provider)
		})
	}
}

func TestGeocode_Success(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "Indiranagar", r.URL.Query().Get("text"))

		_, _ = w.Write([]byte(`{
			"features": [{
				"geometry": {"coordinates": [77.6408, 12.9784]},
				"properties": {"name": "Indiranagar", "label": "Indiranagar, Bengaluru, India", "country": "India"}
			}]
		}`))
	})

	places, err := client.Geocode(context.Background(), "Indiranagar")
	require.NoError(t, err)
	require.Len(t, places, 1)

	assert.Equal(t, "Indiranagar", places[0].Name)
	assert.Equal(t, "Indiranagar, Bengaluru, India", places[0].Label)
	assert.InDelta(t, 12.9784, places[0].Point.Lat, 0.0001)
	assert.InDelta(t, 77.6408, places[0].Point.Lon, 0.0001)
}

func TestGeocode_NoResults(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features": []}`))
	})

	_, err := client.Geocode(context.Background(), "zzzzzz")
	assert.ErrorIs(t, err, routing.ErrNoResults)
}

func TestAutocomplete_UsesAutocompleteEndpoint(t *testing.T) {
	var gotPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{
			"features": [{
				"geometry": {"coordinates": [77.64, 12.97]},
				"properties": {"name": "Indira", "label": "Indira...", "country": "India"}
			}]
		}`))
	})

	_, err := client.Autocomplete(context.Background(), "Indira")
	require.NoError(t, err)
	assert.Equal(t, "/geocode/autocomplete", gotPath)
}

func TestName(t *testing.T) {
	client := NewClient(ClientConfig{APIKey: "k"})
	assert.Equal(t, "openrouteservice", client.Name())
}
