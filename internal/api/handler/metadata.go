package handler

import (
	"net/http"

	"github.com/commutewise/commutewise/internal/api/models"
	"github.com/commutewise/commutewise/internal/api/response"
	"github.com/commutewise/commutewise/internal/pattern"
)

// MetadataHandler handles static metadata endpoints.
type MetadataHandler struct{}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{}
}

// Patterns handles GET /v1/metadata/patterns - the travel pattern presets.
func (h *MetadataHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	all := pattern.All()

	items := make([]models.TravelPatternInfo, 0, len(all))
	for _, p := range all {
		items = append(items, models.TravelPatternInfo{
			ID:        models.TravelPattern(p.ID),
			Timing:    string(p.Timing),
			Frequency: string(p.Frequency),
		})
	}

	response.JSON(w, r, http.StatusOK, models.TravelPatternList{Items: items})
}

// Enums handles GET /v1/metadata/enums - enum values used by the API.
func (h *MetadataHandler) Enums(w http.ResponseWriter, r *http.Request) {
	all := pattern.All()

	patterns := make([]models.TravelPattern, 0, len(all))
	for _, p := range all {
		patterns = append(patterns, models.TravelPattern(p.ID))
	}

	enums := models.Enums{
		Modes: []models.TransportMode{
			models.ModeCar,
			models.ModeBike,
			models.ModeMetro,
			models.ModeBus,
			models.ModeAuto,
			models.ModeWalking,
		},
		Patterns:   patterns,
		Confidence: []string{"A", "B", "C"},
	}

	response.JSON(w, r, http.StatusOK, enums)
}
