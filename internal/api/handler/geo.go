package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/commutewise/commutewise/internal/api/models"
	"github.com/commutewise/commutewise/internal/api/response"
	"github.com/commutewise/commutewise/internal/routing"
)

// minQueryLength is the shortest accepted place query.
const minQueryLength = 2

// GeoHandler handles geocoding and autocomplete endpoints.
type GeoHandler struct {
	service *routing.Service
}

// NewGeoHandler creates a new GeoHandler.
func NewGeoHandler(service *routing.Service) *GeoHandler {
	return &GeoHandler{service: service}
}

// Autocomplete handles GET /v1/geo/autocomplete?q= - place suggestions.
func (h *GeoHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	h.places(w, r, h.service.Autocomplete)
}

// Geocode handles GET /v1/geo/geocode?q= - resolve a place to coordinates.
func (h *GeoHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	h.places(w, r, h.service.Geocode)
}

func (h *GeoHandler) places(w http.ResponseWriter, r *http.Request, lookup func(context.Context, string) ([]routing.Place, error)) {
	if h.service == nil {
		response.ServiceUnavailable(w, r, "place lookup is not configured")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < minQueryLength {
		response.BadRequest(w, r, "query too short", []models.FieldError{
			{Field: "q", Message: "must be at least 2 characters"},
		})
		return
	}

	places, err := lookup(r.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, routing.ErrNoResults):
			response.JSON(w, r, http.StatusOK, models.PlaceList{Items: []models.Place{}})
		case errors.Is(err, routing.ErrRateLimitExceeded):
			response.TooManyRequests(w, r, "place lookup quota exceeded")
		default:
			response.ServiceUnavailable(w, r, "place lookup is temporarily unavailable")
		}
		return
	}

	items := make([]models.Place, 0, len(places))
	for _, p := range places {
		items = append(items, models.Place{
			Name:    p.Name,
			Label:   p.Label,
			Point:   models.Point{Lat: p.Point.Lat, Lon: p.Point.Lon},
			Country: p.Country,
		})
	}

	response.JSON(w, r, http.StatusOK, models.PlaceList{Items: items})
}
