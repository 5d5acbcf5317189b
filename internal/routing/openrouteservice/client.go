// Package openrouteservice provides a client for the openrouteservice API.
package openrouteservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/commutewise/commutewise/internal/provider/resilience"
	"github.com/commutewise/commutewise/internal/routing"
)

const (
	// DefaultBaseURL is the base URL for the openrouteservice API.
	DefaultBaseURL = "https://api.openrouteservice.org"

	// ProviderName identifies this provider.
	ProviderName = "openrouteservice"

	// maxPlaceResults caps geocode and autocomplete result sizes.
	maxPlaceResults = 5
)

// ClientConfig holds configuration for the openrouteservice client.
type ClientConfig struct {
	// APIKey is the openrouteservice API key (required).
	APIKey string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration

	// Registry records provider health. Optional.
	Registry *resilience.Registry
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an openrouteservice API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	registry   *resilience.Registry
}

// NewClient creates a new openrouteservice client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Retry and breaker defaults are already tuned for this provider's
		// quota; only the timeout is overridable here.
		resilientClient := resilience.NewClient(resilience.ClientConfig{
			Name:    ProviderName,
			Timeout: cfg.Timeout,
		})
		if cfg.Registry != nil {
			cfg.Registry.Register(ProviderName, resilientClient)
		}
		httpClient = resilientClient
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		registry:   cfg.Registry,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return ProviderName
}

// RouteDistance resolves the driving route between two points using the
// directions endpoint.
func (c *Client) RouteDistance(ctx context.Context, dreq routing.DistanceRequest) (*routing.RouteDistance, error) {
	body := directionsRequest{
		Coordinates: [][2]float64{
			{dreq.Origin.Lon, dreq.Origin.Lat},
			{dreq.Destination.Lon, dreq.Destination.Lat},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := c.baseURL + "/v2/directions/driving-car"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(err)
		return nil, c.wrapTransportError("fetch directions", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := c.handleErrorResponse(resp)
		c.recordFailure(err)
		return nil, err
	}

	var result directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.recordFailure(err)
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	if len(result.Routes) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no route in directions response",
			Err:      routing.ErrNoRouteFound,
		}
	}

	c.recordSuccess()

	summary := result.Routes[0].Summary
	return &routing.RouteDistance{
		DistanceKm:      summary.Distance / 1000,
		DurationMinutes: summary.Duration / 60,
		Provider:        ProviderName,
		FetchedAt:       time.Now(),
	}, nil
}

// Geocode resolves a free-text place query to coordinates.
func (c *Client) Geocode(ctx context.Context, query string) ([]routing.Place, error) {
	return c.fetchPlaces(ctx, "/geocode/search", query)
}

// Autocomplete returns place suggestions for a partial query.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]routing.Place, error) {
	return c.fetchPlaces(ctx, "/geocode/autocomplete", query)
}

// fetchPlaces calls a geocoding endpoint and converts the GeoJSON features.
func (c *Client) fetchPlaces(ctx context.Context, path, query string) ([]routing.Place, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("text", query)
	params.Set("size", fmt.Sprintf("%d", maxPlaceResults))

	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(err)
		return nil, c.wrapTransportError("fetch places", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := c.handleErrorResponse(resp)
		c.recordFailure(err)
		return nil, err
	}

	var result geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.recordFailure(err)
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(result.Features) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_RESULTS",
			Message:  fmt.Sprintf("no places matching %q", query),
			Err:      routing.ErrNoResults,
		}
	}

	c.recordSuccess()

	places := make([]routing.Place, 0, len(result.Features))
	for _, f := range result.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		places = append(places, routing.Place{
			Name:  f.Properties.Name,
			Label: f.Properties.Label,
			Point: routing.Coordinate{
				Lat: f.Geometry.Coordinates[1],
				Lon: f.Geometry.Coordinates[0],
			},
			Country: f.Properties.Country,
		})
	}

	return places, nil
}

// handleErrorResponse maps API error responses to domain errors.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var apiErr errorResponse
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMITED",
			Message:  message,
			Err:      routing.ErrRateLimitExceeded,
		}
	case http.StatusNotFound:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "NOT_FOUND",
			Message:  message,
			Err:      routing.ErrNoRouteFound,
		}
	case http.StatusBadRequest:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "BAD_REQUEST",
			Message:  message,
			Err:      routing.ErrInvalidCoordinates,
		}
	default:
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  message,
			Err:      routing.ErrProviderUnavailable,
		}
	}
}

// wrapTransportError maps transport-level failures (including an open
// circuit breaker) to ErrProviderUnavailable.
func (c *Client) wrapTransportError(op string, err error) error {
	return &routing.Error{
		Provider: ProviderName,
		Code:     "TRANSPORT",
		Message:  op + " failed",
		Err:      fmt.Errorf("%w: %w", routing.ErrProviderUnavailable, err),
	}
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(ProviderName)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(ProviderName, err)
	}
}

// Ensure Client implements routing.Provider.
var _ routing.Provider = (*Client)(nil)
