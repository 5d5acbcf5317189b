// Package handler provides HTTP handlers for the Commutewise API.
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commutewise/commutewise/internal/api/models"
	"github.com/commutewise/commutewise/internal/api/response"
	"github.com/commutewise/commutewise/internal/featureflags"
	"github.com/commutewise/commutewise/internal/provider/resilience"
)

// readinessTimeout bounds the database ping during readiness checks.
const readinessTimeout = 2 * time.Second

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	pool      *pgxpool.Pool
	registry  *resilience.Registry
	flags     *featureflags.Service
}

// NewOpsHandler creates a new OpsHandler. pool, registry and flags may be
// nil in tests; the corresponding checks are then skipped.
func NewOpsHandler(version, buildTime string, pool *pgxpool.Pool, registry *resilience.Registry, flags *featureflags.Service) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		pool:      pool,
		registry:  registry,
		flags:     flags,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(time.Now()),
		Version:   h.version,
		BuildTime: h.buildTime,
	})
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
// Fails when the database is unreachable.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := h.pool.Ping(ctx); err != nil {
			response.JSON(w, r, http.StatusServiceUnavailable, models.Health{
				Status: models.HealthStatusFail,
				Time:   models.Timestamp(time.Now()),
				Detail: "database unreachable: " + err.Error(),
			})
			return
		}
	}

	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	})
}

// SystemStatus handles GET /v1/ops/status - subsystem and provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	status.Subsystems = append(status.Subsystems, h.postgresStatus(r.Context(), &status))

	if h.registry != nil {
		for _, p := range h.registry.Snapshot() {
			providerStatus := models.HealthStatusOK
			switch {
			case p.Unhealthy():
				providerStatus = models.HealthStatusFail
				status.Status = models.HealthStatusDegraded
			case p.Degraded():
				providerStatus = models.HealthStatusDegraded
			}

			entry := models.ProviderStatus{
				Provider:  p.Name,
				Status:    providerStatus,
				LastError: p.LastError,
			}
			if p.LastSuccessAt != nil {
				ts := models.Timestamp(*p.LastSuccessAt)
				entry.LastSuccessAt = &ts
			}
			if p.LastFailureAt != nil {
				ts := models.Timestamp(*p.LastFailureAt)
				entry.LastFailureAt = &ts
			}
			status.Providers = append(status.Providers, entry)
		}
	}

	status.DisabledFlags = h.disabledFlags(r.Context())

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) postgresStatus(ctx context.Context, status *models.SystemStatus) models.SubsystemStatus {
	entry := models.SubsystemStatus{
		Name:   "postgres",
		Status: models.HealthStatusOK,
	}
	if h.pool == nil {
		return entry
	}

	pingCtx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	if err := h.pool.Ping(pingCtx); err != nil {
		entry.Status = models.HealthStatusFail
		entry.Detail = err.Error()
		status.Status = models.HealthStatusDegraded
	}
	return entry
}

// disabledFlags lists well-known flags that are currently switched off.
// Operators flip these to shed load, so the status page surfaces them.
func (h *OpsHandler) disabledFlags(ctx context.Context) []string {
	if h.flags == nil {
		return nil
	}

	var disabled []string
	for key := range featureflags.DefaultFlags() {
		if !h.flags.IsEnabled(ctx, key) {
			disabled = append(disabled, key)
		}
	}
	sort.Strings(disabled)
	return disabled
}
