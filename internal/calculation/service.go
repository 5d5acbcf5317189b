package calculation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/commutewise/commutewise/internal/api/models"
	"github.com/commutewise/commutewise/internal/events"
	"github.com/commutewise/commutewise/internal/featureflags"
	"github.com/commutewise/commutewise/internal/pattern"
	"github.com/commutewise/commutewise/internal/routing"
	"github.com/commutewise/commutewise/internal/scoring"
	"github.com/commutewise/commutewise/internal/session"
	"github.com/commutewise/commutewise/internal/vehicle"
)

// Service errors.
var (
	ErrDistanceUnavailable = errors.New("distance could not be resolved")
)

// Validation constants.
const (
	MaxDistanceKm  = 500
	MaxLabelLength = 120

	// persistTimeout bounds the background write after a response is sent.
	persistTimeout = 5 * time.Second
)

// DistanceResolver resolves a routed distance between two points.
// *routing.Service satisfies it; tests substitute a stub.
type DistanceResolver interface {
	RouteDistance(ctx context.Context, req routing.DistanceRequest) (*routing.RouteDistance, error)
}

// ServiceConfig holds dependencies for the calculation service.
type ServiceConfig struct {
	Repository Repository
	Sessions   session.Repository
	Vehicles   *vehicle.Service
	Flags      *featureflags.Service
	Routing    DistanceResolver // optional
	Publisher  events.Publisher // optional
	Logger     zerolog.Logger
}

// Service computes impact scores and records them against sessions.
type Service struct {
	repo      Repository
	sessions  session.Repository
	vehicles  *vehicle.Service
	flags     *featureflags.Service
	routing   DistanceResolver
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewService creates a new calculation service.
func NewService(cfg ServiceConfig) *Service {
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}

	return &Service{
		repo:      cfg.Repository,
		sessions:  cfg.Sessions,
		vehicles:  cfg.Vehicles,
		flags:     cfg.Flags,
		routing:   cfg.Routing,
		publisher: publisher,
		logger:    cfg.Logger,
	}
}

// Compute validates the request, resolves the trip and distance, scores it,
// and records the calculation. Persistence happens in the background: a
// storage failure is logged but never blocks or fails the response.
func (s *Service) Compute(ctx context.Context, input *models.CalculationRequest) (*models.CalculationResponse, error) {
	if fieldErrors := s.validateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	travelPattern, err := pattern.Resolve(string(input.TravelPattern))
	if err != nil {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "travelPattern", Message: "unknown travel pattern"},
		}}
	}

	trip, vehicleClassID, occupancy, fieldErrors := s.resolveTrip(ctx, input)
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	distanceKm, err := s.resolveDistance(ctx, input)
	if err != nil {
		return nil, err
	}

	result, err := scoring.Compute(scoring.Input{
		Trip:       trip,
		DistanceKm: distanceKm,
		Timing:     travelPattern.Timing,
		Frequency:  travelPattern.Frequency,
	})
	if err != nil {
		return nil, s.toValidationError(err)
	}

	result.Alternatives = s.filterAlternatives(ctx, result.Alternatives)

	calc := &Calculation{
		ID:             "clc_" + uuid.New().String()[:22],
		SessionID:      input.SessionID,
		Mode:           string(input.TransportMode),
		VehicleClassID: vehicleClassID,
		Occupancy:      occupancy,
		DistanceKm:     distanceKm,
		Pattern:        string(input.TravelPattern),
		Origin:         input.Origin,
		Destination:    input.Destination,
		Result:         *result,
		CreatedAt:      time.Now(),
	}

	go s.record(calc)

	return s.toAPICalculation(calc), nil
}

// History retrieves the calculation history for a session, newest first.
// A non-empty cursor resumes from the position a previous page's
// meta.nextCursor advertised.
func (s *Service) History(ctx context.Context, sessionID string, limit int, cursor string) (*models.PagedCalculations, error) {
	result, err := s.repo.ListBySession(ctx, sessionID, ListOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		if errors.Is(err, ErrInvalidCursor) {
			return nil, &ValidationError{Errors: []models.FieldError{
				{Field: "cursor", Message: "is malformed"},
			}}
		}
		return nil, err
	}

	items := make([]models.CalculationResponse, 0, len(result.Items))
	for _, calc := range result.Items {
		items = append(items, *s.toAPICalculation(calc))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedCalculations{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// record persists the calculation, touches the session, and publishes the
// calculation event. Runs detached from the request context.
func (s *Service) record(calc *Calculation) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	logger := s.logger.With().
		Str("calculation_id", calc.ID).
		Str("session_id", calc.SessionID).
		Logger()

	if err := s.repo.Create(ctx, calc); err != nil {
		logger.Error().Err(err).Msg("failed to persist calculation")
		return
	}

	if err := s.sessions.Touch(ctx, calc.SessionID); err != nil {
		logger.Error().Err(err).Msg("failed to touch session")
	}

	err := s.publisher.PublishCalculationRecorded(ctx, events.CalculationRecorded{
		CalculationID: calc.ID,
		SessionID:     calc.SessionID,
		Mode:          calc.Mode,
		Score:         calc.Result.Score,
		DistanceKm:    calc.DistanceKm,
		RecordedAt:    calc.CreatedAt,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to publish calculation event")
	}
}

// resolveTrip builds the scoring trip variant from the request.
func (s *Service) resolveTrip(ctx context.Context, input *models.CalculationRequest) (scoring.Trip, *string, int, []models.FieldError) {
	category, ok := vehicle.ParseCategory(string(input.TransportMode))
	if !ok {
		return nil, nil, 0, []models.FieldError{
			{Field: "transportMode", Message: "unknown transport mode"},
		}
	}

	if !category.IsPrivate() {
		return scoring.SustainableMode{Category: category}, nil, 1, nil
	}

	if input.VehicleClassID == "" {
		return nil, nil, 0, []models.FieldError{
			{Field: "vehicleClassId", Message: "is required for car and bike modes"},
		}
	}

	class, err := s.vehicles.Get(ctx, input.VehicleClassID)
	if err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			return nil, nil, 0, []models.FieldError{
				{Field: "vehicleClassId", Message: "unknown vehicle class"},
			}
		}
		s.logger.Error().Err(err).Str("vehicle_class_id", input.VehicleClassID).Msg("vehicle lookup failed")
		return nil, nil, 0, []models.FieldError{
			{Field: "vehicleClassId", Message: "could not be resolved"},
		}
	}

	if class.Category != category {
		return nil, nil, 0, []models.FieldError{
			{Field: "vehicleClassId", Message: fmt.Sprintf("belongs to category %q, not %q", class.Category, category)},
		}
	}

	occupancy := input.Occupancy
	if occupancy == 0 {
		occupancy = 1
	}

	classID := class.ID
	return scoring.PrivateVehicle{Class: *class, Occupancy: occupancy}, &classID, occupancy, nil
}

// resolveDistance returns the caller-supplied distance, or resolves one from
// the routed origin/destination points.
func (s *Service) resolveDistance(ctx context.Context, input *models.CalculationRequest) (float64, error) {
	if input.DistanceKm > 0 {
		return input.DistanceKm, nil
	}

	if s.routing == nil || !s.flags.IsRoutingEnabled(ctx) {
		return 0, ErrDistanceUnavailable
	}

	route, err := s.routing.RouteDistance(ctx, routing.DistanceRequest{
		Origin:      routing.Coordinate{Lat: input.OriginPoint.Lat, Lon: input.OriginPoint.Lon},
		Destination: routing.Coordinate{Lat: input.DestinationPoint.Lat, Lon: input.DestinationPoint.Lon},
	})
	if err != nil {
		if errors.Is(err, routing.ErrInvalidCoordinates) {
			return 0, &ValidationError{Errors: []models.FieldError{
				{Field: "originPoint", Message: "coordinates could not be routed"},
			}}
		}
		s.logger.Error().Err(err).Msg("distance lookup failed")
		return 0, fmt.Errorf("%w: %w", ErrDistanceUnavailable, err)
	}

	return route.DistanceKm, nil
}

// filterAlternatives drops alternative types that are disabled by flags.
func (s *Service) filterAlternatives(ctx context.Context, alts []scoring.Alternative) []scoring.Alternative {
	filtered := make([]scoring.Alternative, 0, len(alts))
	for _, alt := range alts {
		if s.flags.IsAlternativeEnabled(ctx, string(alt.Type)) {
			filtered = append(filtered, alt)
		}
	}
	return filtered
}

// validateInput validates the shape of a calculation request.
func (s *Service) validateInput(input *models.CalculationRequest) []models.FieldError {
	var errs []models.FieldError

	if input.SessionID == "" {
		errs = append(errs, models.FieldError{Field: "sessionId", Message: "is required"})
	}

	if input.TransportMode == "" {
		errs = append(errs, models.FieldError{Field: "transportMode", Message: "is required"})
	}

	if input.TravelPattern == "" {
		errs = append(errs, models.FieldError{Field: "travelPattern", Message: "is required"})
	}

	if input.DistanceKm < 0 {
		errs = append(errs, models.FieldError{Field: "distanceKm", Message: "must be positive"})
	} else if input.DistanceKm > MaxDistanceKm {
		errs = append(errs, models.FieldError{Field: "distanceKm", Message: fmt.Sprintf("must be at most %d", MaxDistanceKm)})
	}

	if input.DistanceKm == 0 {
		if input.OriginPoint == nil || input.DestinationPoint == nil {
			errs = append(errs, models.FieldError{
				Field:   "distanceKm",
				Message: "is required unless origin and destination points are provided",
			})
		}
	}

	if input.Occupancy < 0 {
		errs = append(errs, models.FieldError{Field: "occupancy", Message: "must be positive"})
	}

	if len(input.Origin) > MaxLabelLength {
		errs = append(errs, models.FieldError{Field: "origin", Message: "must be at most 120 characters"})
	}
	if len(input.Destination) > MaxLabelLength {
		errs = append(errs, models.FieldError{Field: "destination", Message: "must be at most 120 characters"})
	}

	if input.Origin != "" && input.Origin == input.Destination {
		errs = append(errs, models.FieldError{
			Field:   "destination",
			Message: "origin and destination cannot be the same location",
		})
	}
	if input.OriginPoint != nil && input.DestinationPoint != nil &&
		input.OriginPoint.Lat == input.DestinationPoint.Lat &&
		input.OriginPoint.Lon == input.DestinationPoint.Lon {
		errs = append(errs, models.FieldError{
			Field:   "destinationPoint",
			Message: "origin and destination cannot be the same location",
		})
	}

	return errs
}

// toValidationError converts engine errors into field-level validation errors.
func (s *Service) toValidationError(err error) error {
	switch {
	case errors.Is(err, scoring.ErrInvalidDistance):
		return &ValidationError{Errors: []models.FieldError{
			{Field: "distanceKm", Message: "must be strictly positive"},
		}}
	case errors.Is(err, scoring.ErrInvalidOccupancy):
		return &ValidationError{Errors: []models.FieldError{
			{Field: "occupancy", Message: "out of range for the selected mode"},
		}}
	case errors.Is(err, scoring.ErrVehicleRequired):
		return &ValidationError{Errors: []models.FieldError{
			{Field: "vehicleClassId", Message: "is required for car and bike modes"},
		}}
	default:
		return err
	}
}

// toAPICalculation converts a domain Calculation to an API response.
func (s *Service) toAPICalculation(calc *Calculation) *models.CalculationResponse {
	alts := make([]models.Alternative, 0, len(calc.Result.Alternatives))
	for _, alt := range calc.Result.Alternatives {
		alts = append(alts, models.Alternative{
			Type:               string(alt.Type),
			Title:              alt.Title,
			Description:        alt.Description,
			ImpactReductionPct: alt.ImpactReductionPct,
			TimeDelta:          alt.TimeDelta,
			MonthlySavings:     alt.MonthlySavings,
			NewScore:           alt.NewScore,
		})
	}

	return &models.CalculationResponse{
		ID:              calc.ID,
		SessionID:       calc.SessionID,
		TransportMode:   models.TransportMode(calc.Mode),
		VehicleClassID:  calc.VehicleClassID,
		Occupancy:       calc.Occupancy,
		DistanceKm:      calc.DistanceKm,
		TravelPattern:   models.TravelPattern(calc.Pattern),
		Origin:          calc.Origin,
		Destination:     calc.Destination,
		Score:           calc.Result.Score,
		Confidence:      string(calc.Result.Confidence),
		ConfidenceLabel: calc.Result.ConfidenceLabel,
		Breakdown: models.Breakdown{
			VehicleImpact:       calc.Result.Breakdown.VehicleImpact,
			CongestionFactor:    calc.Result.Breakdown.CongestionFactor,
			TimingMultiplier:    calc.Result.Breakdown.TimingMultiplier,
			FrequencyMultiplier: calc.Result.Breakdown.FrequencyMultiplier,
			Occupancy:           calc.Result.Breakdown.Occupancy,
			RawScore:            calc.Result.Breakdown.RawScore,
		},
		Monthly: models.MonthlyImpact{
			EmissionsKg: calc.Result.MonthlyEmissions,
			CostRupees:  calc.Result.MonthlyCost,
			TimeHours:   calc.Result.MonthlyTimeHours,
		},
		Alternatives: alts,
		Methodology:  calc.Result.Methodology,
		CreatedAt:    models.Timestamp(calc.CreatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
