package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/commutewise/commutewise/internal/api/middleware"
	"github.com/commutewise/commutewise/internal/api/models"
	"github.com/commutewise/commutewise/internal/api/response"
	"github.com/commutewise/commutewise/internal/featureflags"
	"github.com/commutewise/commutewise/internal/vehicle"
)

// AdminHandler handles the authenticated admin surface: vehicle catalog
// management and feature flags.
type AdminHandler struct {
	vehicles *vehicle.Service
	flags    *featureflags.Service
	logger   zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(vehicles *vehicle.Service, flags *featureflags.Service, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		vehicles: vehicles,
		flags:    flags,
		logger:   logger,
	}
}

// UpsertVehicle handles PUT /v1/admin/vehicles - create or replace a
// vehicle class.
func (h *AdminHandler) UpsertVehicle(w http.ResponseWriter, r *http.Request) {
	var req models.VehicleClassUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	class := &vehicle.Class{
		ID:              req.ID,
		Name:            req.Name,
		Category:        vehicle.Category(req.Category),
		EmissionFactor:  req.EmissionFactor,
		FuelCostPerKm:   req.FuelCostPerKm,
		AvgSpeedKmh:     req.AvgSpeedKmh,
		BaseImpactScore: req.BaseImpactScore,
	}

	if err := h.vehicles.Upsert(r.Context(), class); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	h.logger.Info().
		Str("vehicle_class_id", class.ID).
		Str("admin", middleware.GetAdminSubject(r.Context())).
		Msg("vehicle class upserted")

	response.JSON(w, r, http.StatusOK, toAPIVehicleClass(class))
}

// ListFlags handles GET /v1/admin/feature-flags - list all feature flags.
func (h *AdminHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	flags := h.flags.GetAllFlags(r.Context())

	list := featureflags.FlagList{Items: make([]featureflags.Flag, 0, len(flags))}
	for _, flag := range flags {
		list.Items = append(list.Items, *flag)
	}

	response.JSON(w, r, http.StatusOK, list)
}

// UpdateFlags handles PUT /v1/admin/feature-flags - update feature flags.
func (h *AdminHandler) UpdateFlags(w http.ResponseWriter, r *http.Request) {
	var req featureflags.FlagUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	if len(req.Updates) == 0 {
		response.BadRequest(w, r, "no updates provided", []models.FieldError{
			{Field: "updates", Message: "must not be empty"},
		})
		return
	}

	flags := make([]*featureflags.Flag, 0, len(req.Updates))
	for _, update := range req.Updates {
		if update.Key == "" {
			response.BadRequest(w, r, "flag key is required", []models.FieldError{
				{Field: "updates", Message: "every update needs a key"},
			})
			return
		}
		flags = append(flags, &featureflags.Flag{Key: update.Key, Value: update.Value})
	}

	if err := h.flags.SetFlags(r.Context(), flags); err != nil {
		response.InternalError(w, r, "failed to update feature flags")
		return
	}

	h.logger.Info().
		Int("count", len(flags)).
		Str("reason", req.Reason).
		Str("admin", middleware.GetAdminSubject(r.Context())).
		Msg("feature flags updated")

	response.NoContent(w, r)
}

// InvalidateFlags handles POST /v1/admin/feature-flags/invalidate - clear
// the flag cache.
func (h *AdminHandler) InvalidateFlags(w http.ResponseWriter, r *http.Request) {
	h.flags.InvalidateCache()
	response.NoContent(w, r)
}
