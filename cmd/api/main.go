// Package main provides the entrypoint for the Commutewise API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/commutewise/commutewise/internal/api"
	"github.com/commutewise/commutewise/internal/api/middleware"
	"github.com/commutewise/commutewise/internal/auth"
	"github.com/commutewise/commutewise/internal/calculation"
	"github.com/commutewise/commutewise/internal/database"
	"github.com/commutewise/commutewise/internal/events"
	"github.com/commutewise/commutewise/internal/featureflags"
	"github.com/commutewise/commutewise/internal/provider/resilience"
	"github.com/commutewise/commutewise/internal/routing"
	"github.com/commutewise/commutewise/internal/routing/openrouteservice"
	"github.com/commutewise/commutewise/internal/session"
	"github.com/commutewise/commutewise/internal/telemetry"
	"github.com/commutewise/commutewise/internal/vehicle"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "commutewise-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Commutewise API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	sampleRatio := 0.0
	if raw := os.Getenv("OTEL_TRACE_SAMPLE_RATIO"); raw != "" {
		parsed, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			log.Fatal().Err(parseErr).Msg("invalid OTEL_TRACE_SAMPLE_RATIO")
		}
		sampleRatio = parsed
	}

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
		SampleRatio:    sampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize vehicle catalog and seed the built-in classes
	vehicleService := vehicle.NewService(vehicle.NewPostgresRepository(pool))
	if err := vehicleService.SeedDefaults(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed vehicle catalog")
	}
	log.Info().Msg("vehicle catalog seeded")

	// Initialize feature flags repository and service
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: featureflags.NewPostgresRepository(pool),
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})
	log.Info().Msg("feature flags service initialized")

	// Initialize admin token validation (get signing key from environment)
	adminSigningKey := os.Getenv("ADMIN_TOKEN_SIGNING_KEY")
	if adminSigningKey == "" {
		adminSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default admin token signing key - not secure for production")
	}

	tokenService := auth.NewServiceTokenService(auth.ServiceTokenConfig{
		SigningKey: adminSigningKey,
		Issuer:     "https://api.commutewise.dev",
		Audience:   "commutewise-api",
	})

	// Initialize the mapping provider behind the resilience registry
	registry := resilience.NewRegistry()
	var routingService *routing.Service
	orsKey := os.Getenv("ORS_API_KEY")
	if orsKey != "" {
		orsClient := openrouteservice.NewClient(openrouteservice.ClientConfig{
			APIKey:   orsKey,
			Registry: registry,
		})
		providerMetrics, err := middleware.NewProviderMetrics()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize provider metrics")
		}
		routingService = routing.NewService(routing.ServiceConfig{
			Provider: orsClient,
			Logger:   log,
			Metrics:  providerMetrics,
		})
		log.Info().Msg("routing service initialized")
	} else {
		log.Warn().Msg("ORS_API_KEY not set - distance lookups and geocoding disabled")
	}

	// Initialize event publishing (optional)
	var publisher events.Publisher
	pubsubProject := os.Getenv("PUBSUB_PROJECT")
	if pubsubProject != "" {
		topicName := os.Getenv("PUBSUB_TOPIC")
		if topicName == "" {
			topicName = "commutewise-calculations"
		}
		pubsubPublisher, err := events.NewPubSubPublisher(ctx, events.PubSubPublisherConfig{
			ProjectID: pubsubProject,
			TopicName: topicName,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize event publisher")
		}
		defer func() {
			if closeErr := pubsubPublisher.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close event publisher")
			}
		}()
		publisher = pubsubPublisher
		log.Info().Str("topic", topicName).Msg("event publisher initialized")
	} else {
		publisher = events.NewNoopPublisher(log)
	}

	// Initialize the calculation service
	calculationConfig := calculation.ServiceConfig{
		Repository: calculation.NewPostgresRepository(pool),
		Sessions:   session.NewPostgresRepository(pool),
		Vehicles:   vehicleService,
		Flags:      ffService,
		Publisher:  publisher,
		Logger:     log,
	}
	if routingService != nil {
		calculationConfig.Routing = routingService
	}
	calculationService := calculation.NewService(calculationConfig)
	log.Info().Msg("calculation service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		Pool:               pool,
		Registry:           registry,
		TokenService:       tokenService,
		CalculationService: calculationService,
		VehicleService:     vehicleService,
		RoutingService:     routingService,
		FeatureFlagService: ffService,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
