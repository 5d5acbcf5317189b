package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/commutewise/commutewise/internal/api/models"
	"github.com/commutewise/commutewise/internal/api/response"
	"github.com/commutewise/commutewise/internal/vehicle"
)

// VehicleHandler handles vehicle catalog endpoints.
type VehicleHandler struct {
	service *vehicle.Service
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(service *vehicle.Service) *VehicleHandler {
	return &VehicleHandler{service: service}
}

// List handles GET /v1/vehicles - list vehicle classes, optionally filtered
// by category.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	classes, err := h.service.List(r.Context(), category)
	if err != nil {
		response.BadRequest(w, r, "invalid category filter", []models.FieldError{
			{Field: "category", Message: "must be one of car, bike, metro, bus, auto, walking"},
		})
		return
	}

	items := make([]models.VehicleClass, 0, len(classes))
	for _, c := range classes {
		items = append(items, toAPIVehicleClass(c))
	}

	response.JSON(w, r, http.StatusOK, models.VehicleClassList{Items: items})
}

// Get handles GET /v1/vehicles/{vehicleId} - retrieve one vehicle class.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "vehicleId")

	class, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			response.NotFound(w, r, "vehicle class not found")
			return
		}
		response.InternalError(w, r, "failed to load vehicle class")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIVehicleClass(class))
}

// toAPIVehicleClass converts a domain Class to an API VehicleClass.
func toAPIVehicleClass(c *vehicle.Class) models.VehicleClass {
	return models.VehicleClass{
		ID:              c.ID,
		Name:            c.Name,
		Category:        string(c.Category),
		EmissionFactor:  c.EmissionFactor,
		FuelCostPerKm:   c.FuelCostPerKm,
		AvgSpeedKmh:     c.AvgSpeedKmh,
		BaseImpactScore: c.BaseImpactScore,
	}
}
