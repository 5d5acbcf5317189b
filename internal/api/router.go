// Package api provides the HTTP API for Commutewise.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/commutewise/commutewise/internal/api/handler"
	"github.com/commutewise/commutewise/internal/api/middleware"
	"github.com/commutewise/commutewise/internal/auth"
	"github.com/commutewise/commutewise/internal/calculation"
	"github.com/commutewise/commutewise/internal/featureflags"
	"github.com/commutewise/commutewise/internal/provider/resilience"
	"github.com/commutewise/commutewise/internal/routing"
	"github.com/commutewise/commutewise/internal/vehicle"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	Pool               *pgxpool.Pool
	Registry           *resilience.Registry
	TokenService       *auth.ServiceTokenService
	CalculationService *calculation.Service
	VehicleService     *vehicle.Service
	RoutingService     *routing.Service
	FeatureFlagService *featureflags.Service
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "commutewise-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // Reject non-JSON request bodies

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pool, cfg.Registry, cfg.FeatureFlagService)
	calculationHandler := handler.NewCalculationHandler(cfg.CalculationService)
	vehicleHandler := handler.NewVehicleHandler(cfg.VehicleService)
	geoHandler := handler.NewGeoHandler(cfg.RoutingService)
	metadataHandler := handler.NewMetadataHandler()
	adminHandler := handler.NewAdminHandler(cfg.VehicleService, cfg.FeatureFlagService, cfg.Logger)

	// Create admin auth middleware
	adminAuth := middleware.AdminAuth(cfg.TokenService)

	// Create rate limit middleware for different endpoint categories
	adminRateLimit := middleware.RateLimitByIP(middleware.AdminRateLimit)              // 10 req/min
	expensiveRateLimit := middleware.RateLimitBySession(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)        // 100 req/min
	historyRateLimit := middleware.RateLimitBySession(middleware.StandardRateLimit)    // 100 req/min per session

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Impact score calculation - expensive compute, session-keyed limiting
		r.With(expensiveRateLimit).Post("/calculations:compute", calculationHandler.Compute)

		// Session calculation history
		r.With(historyRateLimit).Get("/sessions/{sessionId}/calculations", calculationHandler.History)

		// Vehicle catalog (public) - standard rate limiting
		r.Route("/vehicles", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", vehicleHandler.List)
			r.Get("/{vehicleId}", vehicleHandler.Get)
		})

		// Metadata endpoints (public) - standard rate limiting
		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/patterns", metadataHandler.Patterns)
			r.Get("/enums", metadataHandler.Enums)
		})

		// Geocoding endpoints - expensive upstream calls, strict rate limiting
		r.Route("/geo", func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(middleware.ExpensiveRateLimit))
			r.Get("/autocomplete", geoHandler.Autocomplete)
			r.Get("/geocode", geoHandler.Geocode)
		})

		// Admin endpoints (service token required) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth)
			r.Use(adminRateLimit)

			// Vehicle catalog management
			r.Put("/vehicles", adminHandler.UpsertVehicle)

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", adminHandler.ListFlags)
				r.Put("/", adminHandler.UpdateFlags)
				r.Post("/invalidate", adminHandler.InvalidateFlags)
			})
		})
	})

	return r
}
