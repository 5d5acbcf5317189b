package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/commutewise/commutewise/internal/api/models"
	"github.com/commutewise/commutewise/internal/api/response"
	"github.com/commutewise/commutewise/internal/calculation"
)

// History pagination bounds.
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// CalculationHandler handles impact score calculation endpoints.
type CalculationHandler struct {
	service *calculation.Service
}

// NewCalculationHandler creates a new CalculationHandler.
func NewCalculationHandler(service *calculation.Service) *CalculationHandler {
	return &CalculationHandler{service: service}
}

// Compute handles POST /v1/calculations:compute - compute an impact score.
func (h *CalculationHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req models.CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	result, err := h.service.Compute(r.Context(), &req)
	if err != nil {
		var valErr *calculation.ValidationError
		switch {
		case errors.As(err, &valErr):
			response.BadRequest(w, r, "validation failed", valErr.Errors)
		case errors.Is(err, calculation.ErrDistanceUnavailable):
			response.ServiceUnavailable(w, r, "distance could not be resolved, supply distanceKm directly")
		default:
			response.InternalError(w, r, "calculation failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// History handles GET /v1/sessions/{sessionId}/calculations - session history.
func (h *CalculationHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		response.BadRequest(w, r, "session id is required", nil)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryLimit {
			response.BadRequest(w, r, "invalid limit", []models.FieldError{
				{Field: "limit", Message: "must be an integer between 1 and 100"},
			})
			return
		}
		limit = parsed
	}

	page, err := h.service.History(r.Context(), sessionID, limit, r.URL.Query().Get("cursor"))
	if err != nil {
		var valErr *calculation.ValidationError
		if errors.As(err, &valErr) {
			response.BadRequest(w, r, "validation failed", valErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to load calculation history")
		return
	}

	response.JSON(w, r, http.StatusOK, page)
}
