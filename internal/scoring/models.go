// Package scoring implements the impact scoring engine: a pure, deterministic
// function from a resolved trip to a bounded 0-100 impact score, monthly
// cost/emissions/time estimates, and alternative transport suggestions.
//
// The engine performs no I/O and holds no state; it may be invoked
// concurrently without coordination.
package scoring

import (
	"errors"

	"github.com/commutewise/commutewise/internal/pattern"
	"github.com/commutewise/commutewise/internal/vehicle"
)

// Engine errors.
var (
	ErrInvalidDistance  = errors.New("distance must be strictly positive")
	ErrInvalidOccupancy = errors.New("occupancy out of range for mode")
	ErrVehicleRequired  = errors.New("vehicle class is required for private vehicle modes")
)

// Occupancy ceilings per mode. Shared and active modes accept occupancy for
// bookkeeping but never use it in arithmetic.
const (
	MaxOccupancyCar   = 7
	MaxOccupancyBike  = 3
	MaxOccupancyOther = 4
)

// Trip is the mode-resolved portion of a calculation input. The variant is
// decided once at construction so the engine can branch exhaustively instead
// of re-testing mode strings.
type Trip interface {
	Mode() vehicle.Category
	isTrip()
}

// PrivateVehicle is a trip in a specific private vehicle shared by
// Occupancy people.
type PrivateVehicle struct {
	Class     vehicle.Class
	Occupancy int
}

// Mode returns the trip's transport category.
func (t PrivateVehicle) Mode() vehicle.Category { return t.Class.Category }

func (PrivateVehicle) isTrip() {}

// SustainableMode is a trip on shared or active transport. Vehicle identity
// and occupancy are not meaningful here, so the engine uses a fixed per-mode
// base score instead.
type SustainableMode struct {
	Category vehicle.Category
}

// Mode returns the trip's transport category.
func (t SustainableMode) Mode() vehicle.Category { return t.Category }

func (SustainableMode) isTrip() {}

// MaxOccupancy returns the occupancy ceiling for a mode.
func MaxOccupancy(mode vehicle.Category) int {
	switch mode {
	case vehicle.CategoryCar:
		return MaxOccupancyCar
	case vehicle.CategoryBike:
		return MaxOccupancyBike
	default:
		return MaxOccupancyOther
	}
}

// Input is a fully-resolved scoring request.
type Input struct {
	Trip       Trip
	DistanceKm float64
	Timing     pattern.TimingClass
	Frequency  pattern.FrequencyClass
}

// Confidence is a coarse display hint on how much the score should be
// trusted. It is a three-bucket heuristic, not a statistical interval.
type Confidence string

const (
	ConfidenceA Confidence = "A"
	ConfidenceB Confidence = "B"
	ConfidenceC Confidence = "C"
)

// Label returns the human-readable description of the confidence level.
func (c Confidence) Label() string {
	switch c {
	case ConfidenceA:
		return "high confidence"
	case ConfidenceB:
		return "good confidence"
	default:
		return "estimated"
	}
}

// Breakdown records the factors behind a score. RawScore is kept un-clamped
// for transparency.
type Breakdown struct {
	VehicleImpact       int     `json:"vehicleImpact"`
	CongestionFactor    float64 `json:"congestionFactor"`
	TimingMultiplier    float64 `json:"timingMultiplier"`
	FrequencyMultiplier float64 `json:"frequencyMultiplier"`
	Occupancy           int     `json:"occupancy"`
	RawScore            float64 `json:"rawScore"`
}

// AlternativeType tags one category of alternative suggestion.
type AlternativeType string

const (
	AlternativeTransit  AlternativeType = "transit"
	AlternativeCarpool  AlternativeType = "carpool"
	AlternativeTiming   AlternativeType = "timing"
	AlternativeElectric AlternativeType = "electric"
)

// Alternative is one suggested substitute transport choice.
type Alternative struct {
	Type               AlternativeType `json:"type"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	ImpactReductionPct int             `json:"impactReductionPct"`
	TimeDelta          string          `json:"timeDelta"`
	MonthlySavings     int             `json:"monthlySavings"`
	NewScore           int             `json:"newScore"`
}

// Result is the engine's output for one calculation.
type Result struct {
	Score            int           `json:"score"`
	Confidence       Confidence    `json:"confidence"`
	ConfidenceLabel  string        `json:"confidenceLabel"`
	Breakdown        Breakdown     `json:"breakdown"`
	MonthlyEmissions int           `json:"monthlyEmissionsKg"`
	MonthlyCost      int           `json:"monthlyCost"`
	MonthlyTimeHours float64       `json:"monthlyTimeHours"`
	Alternatives     []Alternative `json:"alternatives"`
	Methodology      string        `json:"methodology"`
}
