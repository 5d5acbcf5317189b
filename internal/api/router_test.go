package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commutewise/commutewise/internal/api"
	"github.com/commutewise/commutewise/internal/api/models"
	"github.com/commutewise/commutewise/internal/auth"
	"github.com/commutewise/commutewise/internal/calculation"
	"github.com/commutewise/commutewise/internal/featureflags"
	"github.com/commutewise/commutewise/internal/routing"
	"github.com/commutewise/commutewise/internal/session"
	"github.com/commutewise/commutewise/internal/vehicle"
)

// stubProvider serves fixed mapping data so no HTTP calls leave the test.
type stubProvider struct{}

func (p *stubProvider) RouteDistance(_ context.Context, _ routing.DistanceRequest) (*routing.RouteDistance, error) {
	return &routing.RouteDistance{
		DistanceKm:      12.5,
		DurationMinutes: 30,
		Provider:        p.Name(),
		FetchedAt:       time.Now(),
	}, nil
}

func (p *stubProvider) Geocode(_ context.Context, _ string) ([]routing.Place, error) {
	return []routing.Place{
		{Name: "Indiranagar", Label: "Indiranagar, Bengaluru", Point: routing.Coordinate{Lat: 12.97, Lon: 77.64}, Country: "India"},
	}, nil
}

func (p *stubProvider) Autocomplete(_ context.Context, _ string) ([]routing.Place, error) {
	return []routing.Place{
		{Name: "Indiranagar", Label: "Indiranagar, Bengaluru", Point: routing.Coordinate{Lat: 12.97, Lon: 77.64}, Country: "India"},
		{Name: "Indira Canteen", Label: "Indira Canteen, Bengaluru", Point: routing.Coordinate{Lat: 12.98, Lon: 77.60}, Country: "India"},
	}, nil
}

func (p *stubProvider) Name() string { return "stub" }

// testTokenService creates a token service for testing.
func testTokenService() *auth.ServiceTokenService {
	return auth.NewServiceTokenService(auth.ServiceTokenConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.commutewise.dev",
		Audience:   "commutewise-api",
	})
}

// adminToken generates a valid admin service token.
func adminToken(t *testing.T) string {
	t.Helper()
	token, err := testTokenService().GenerateToken("ops-tooling", auth.ScopeAdmin, time.Hour)
	require.NoError(t, err)
	return token
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zerolog.New(io.Discard)

	vehicleService := vehicle.NewService(vehicle.NewInMemoryRepository())
	require.NoError(t, vehicleService.SeedDefaults(context.Background()))

	flagService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: featureflags.NewInMemoryRepository(),
		Logger:     logger,
	})

	routingService := routing.NewService(routing.ServiceConfig{
		Provider: &stubProvider{},
		Logger:   logger,
	})

	calculationService := calculation.NewService(calculation.ServiceConfig{
		Repository: calculation.NewInMemoryRepository(),
		Sessions:   session.NewInMemoryRepository(),
		Vehicles:   vehicleService,
		Flags:      flagService,
		Routing:    routingService,
		Logger:     logger,
	})

	return api.NewRouter(api.RouterConfig{
		Version:            "test",
		BuildTime:          "2026-01-01T00:00:00Z",
		Logger:             logger,
		TokenService:       testTokenService(),
		CalculationService: calculationService,
		VehicleService:     vehicleService,
		RoutingService:     routingService,
		FeatureFlagService: flagService,
	})
}

// addAdminHeader adds a valid admin Bearer token to the request.
func addAdminHeader(t *testing.T, req *http.Request) {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.NotEmpty(t, health.Time)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	err := json.Unmarshal(w.Body.Bytes(), &status)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.NotEmpty(t, status.Subsystems)
	assert.Empty(t, status.DisabledFlags)
}

func TestRouter_SystemStatus_ReportsDisabledFlags(t *testing.T) {
	router := newTestRouter(t)

	input := featureflags.FlagUpdateRequest{
		Updates: []featureflags.FlagUpdate{
			{Key: featureflags.FlagAltTransit, Value: false},
		},
		Reason: "transit data outage",
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/feature-flags", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAdminHeader(t, req)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, []string{featureflags.FlagAltTransit}, status.DisabledFlags)
}

func TestRouter_ComputeCalculation(t *testing.T) {
	router := newTestRouter(t)

	input := models.CalculationRequest{
		TransportMode:  models.ModeCar,
		VehicleClassID: "hatchback",
		Occupancy:      1,
		DistanceKm:     15,
		TravelPattern:  models.PatternDailyCommute,
		SessionID:      "ses_router_test",
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/calculations:compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.CalculationResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, 79, resp.Score)
	assert.Equal(t, "A", resp.Confidence)
	assert.NotEmpty(t, resp.ID)
	assert.NotEmpty(t, resp.Alternatives)
}

func TestRouter_ComputeCalculation_RoutedDistance(t *testing.T) {
	router := newTestRouter(t)

	input := models.CalculationRequest{
		TransportMode:    models.ModeCar,
		VehicleClassID:   "hatchback",
		OriginPoint:      &models.Point{Lat: 12.97, Lon: 77.64},
		DestinationPoint: &models.Point{Lat: 12.93, Lon: 77.62},
		TravelPattern:    models.PatternDailyCommute,
		SessionID:        "ses_router_test",
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/calculations:compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.CalculationResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, 12.5, resp.DistanceKm)
}

func TestRouter_ComputeCalculation_ValidationError(t *testing.T) {
	router := newTestRouter(t)

	// Missing session and travel pattern
	input := models.CalculationRequest{
		TransportMode: models.ModeCar,
		DistanceKm:    15,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/calculations:compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.NotEmpty(t, problem.TraceID)
}

func TestRouter_ComputeCalculation_UnsupportedMediaType(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/calculations:compute", bytes.NewReader([]byte("mode=car")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeUnsupportedMedia, problem.Type)
}

func TestRouter_SessionHistory(t *testing.T) {
	router := newTestRouter(t)

	input := models.CalculationRequest{
		TransportMode: models.ModeBus,
		DistanceKm:    10,
		TravelPattern: models.PatternWeekdayCommute,
		SessionID:     "ses_history",
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/calculations:compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Persistence is asynchronous, so poll until the record lands.
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/v1/sessions/ses_history/calculations", http.NoBody)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			return false
		}
		var page models.PagedCalculations
		if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
			return false
		}
		return len(page.Items) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRouter_SessionHistory_InvalidLimit(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/ses_x/calculations?limit=999", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_SessionHistory_InvalidCursor(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/ses_x/calculations?cursor=bogus", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_ListVehicles(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var list models.VehicleClassList
	err := json.Unmarshal(w.Body.Bytes(), &list)
	require.NoError(t, err)

	assert.NotEmpty(t, list.Items)
}

func TestRouter_ListVehicles_CategoryFilter(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles?category=car", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var list models.VehicleClassList
	err := json.Unmarshal(w.Body.Bytes(), &list)
	require.NoError(t, err)

	require.NotEmpty(t, list.Items)
	for _, item := range list.Items {
		assert.Equal(t, "car", item.Category)
	}
}

func TestRouter_GetVehicle(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles/hatchback", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var class models.VehicleClass
	err := json.Unmarshal(w.Body.Bytes(), &class)
	require.NoError(t, err)

	assert.Equal(t, "hatchback", class.ID)
	assert.Equal(t, "car", class.Category)
}

func TestRouter_GetVehicle_NotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles/hovercraft", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_MetadataPatterns(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/metadata/patterns", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var patterns models.TravelPatternList
	err := json.Unmarshal(w.Body.Bytes(), &patterns)
	require.NoError(t, err)

	assert.Len(t, patterns.Items, 6)
}

func TestRouter_MetadataEnums(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/metadata/enums", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var enums models.Enums
	err := json.Unmarshal(w.Body.Bytes(), &enums)
	require.NoError(t, err)

	assert.Contains(t, enums.Modes, models.ModeCar)
	assert.Contains(t, enums.Modes, models.ModeWalking)
	assert.Contains(t, enums.Patterns, models.PatternDailyCommute)
	assert.Contains(t, enums.Confidence, "A")
}

func TestRouter_GeoAutocomplete(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/geo/autocomplete?q=indira", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var places models.PlaceList
	err := json.Unmarshal(w.Body.Bytes(), &places)
	require.NoError(t, err)

	assert.Len(t, places.Items, 2)
}

func TestRouter_GeoGeocode_QueryTooShort(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/geo/geocode?q=a", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Admin_RequiresToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/feature-flags", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_Admin_ListFlags(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/feature-flags", http.NoBody)
	addAdminHeader(t, req)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var list featureflags.FlagList
	err := json.Unmarshal(w.Body.Bytes(), &list)
	require.NoError(t, err)

	assert.Len(t, list.Items, 5)
}

func TestRouter_Admin_UpdateFlags(t *testing.T) {
	router := newTestRouter(t)

	input := featureflags.FlagUpdateRequest{
		Updates: []featureflags.FlagUpdate{
			{Key: featureflags.FlagAltTransit, Value: false},
		},
		Reason: "transit data outage",
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/feature-flags", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAdminHeader(t, req)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouter_Admin_InvalidateFlags(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/feature-flags/invalidate", http.NoBody)
	addAdminHeader(t, req)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouter_Admin_UpsertVehicle(t *testing.T) {
	router := newTestRouter(t)

	input := models.VehicleClassUpsertRequest{
		ID:              "car-cng",
		Name:            "CNG Car",
		Category:        "car",
		EmissionFactor:  0.11,
		FuelCostPerKm:   4.5,
		AvgSpeedKmh:     22,
		BaseImpactScore: 48,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/vehicles", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAdminHeader(t, req)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// The new class is now visible on the public catalog.
	getReq := httptest.NewRequest(http.MethodGet, "/v1/vehicles/car-cng", http.NoBody)
	getW := httptest.NewRecorder()
	router.ServeHTTP(getW, getReq)
	assert.Equal(t, http.StatusOK, getW.Code)
}

func TestRouter_Admin_UpsertVehicle_InvalidCategory(t *testing.T) {
	router := newTestRouter(t)

	input := models.VehicleClassUpsertRequest{
		ID:              "rocket",
		Name:            "Rocket",
		Category:        "rocket",
		AvgSpeedKmh:     1000,
		BaseImpactScore: 100,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/vehicles", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAdminHeader(t, req)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
