package scoring

import (
	"fmt"
	"math"

	"github.com/commutewise/commutewise/internal/pattern"
	"github.com/commutewise/commutewise/internal/vehicle"
)

// Multiplier and monthly-trip tables. These are the agreed methodology
// values; the frequency multiplier and monthly trip count are deliberately
// distinct tables.
var (
	frequencyMultipliers = map[pattern.FrequencyClass]float64{
		pattern.FrequencyDaily:      1.00,
		pattern.FrequencyWeekdays:   0.75,
		pattern.FrequencyWeekends:   0.40,
		pattern.FrequencyFrequent:   0.50,
		pattern.FrequencyOccasional: 0.25,
		pattern.FrequencyRare:       0.25,
	}

	monthlyTrips = map[pattern.FrequencyClass]int{
		pattern.FrequencyDaily:      22,
		pattern.FrequencyWeekdays:   22,
		pattern.FrequencyWeekends:   8,
		pattern.FrequencyFrequent:   16,
		pattern.FrequencyOccasional: 8,
		pattern.FrequencyRare:       4,
	}

	sustainableBaseScores = map[vehicle.Category]int{
		vehicle.CategoryMetro:   15,
		vehicle.CategoryBus:     20,
		vehicle.CategoryAuto:    35,
		vehicle.CategoryWalking: 5,
	}

	// Fare per km per person for shared/active modes.
	sustainableFarePerKm = map[vehicle.Category]float64{
		vehicle.CategoryMetro:   2.0,
		vehicle.CategoryBus:     1.5,
		vehicle.CategoryAuto:    12.0,
		vehicle.CategoryWalking: 0,
	}
)

const (
	timingMultiplierPeak    = 1.35
	timingMultiplierOffPeak = 1.10

	// Congestion grows 2% per kilometre: longer routes compound congestion
	// exposure. This continuous form is authoritative; there is no stepped
	// threshold variant anywhere in this codebase.
	congestionPerKm = 0.02

	// Emission factor for shared motorized transport, kg CO2 per
	// passenger-km.
	sharedEmissionPerKm = 0.05

	// Assumed door-to-door speed for shared/active modes, km/h.
	sustainableSpeedKmh = 20

	// Distance beyond which a private-vehicle estimate is no longer
	// considered high confidence.
	highConfidenceMaxKm = 50
)

const methodologyNote = "Score composes the vehicle's base impact with " +
	"distance, timing and frequency multipliers, divided by occupancy, " +
	"clamped to 0-100. Monthly figures assume round trips."

// Compute runs the scoring engine over a fully-resolved input. It validates
// before any arithmetic and never substitutes defaults for missing inputs.
func Compute(in Input) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	var r *Result
	switch trip := in.Trip.(type) {
	case PrivateVehicle:
		r = computePrivate(trip, in)
	case SustainableMode:
		r = computeSustainable(trip, in)
	default:
		return nil, fmt.Errorf("unsupported trip variant %T", in.Trip)
	}

	r.ConfidenceLabel = r.Confidence.Label()
	r.Methodology = methodologyNote
	r.Alternatives = generateAlternatives(in, r)
	return r, nil
}

func validate(in Input) error {
	if in.Trip == nil {
		return ErrVehicleRequired
	}
	if in.DistanceKm <= 0 {
		return fmt.Errorf("%w: got %g km", ErrInvalidDistance, in.DistanceKm)
	}
	if _, ok := frequencyMultipliers[in.Frequency]; !ok {
		return fmt.Errorf("%w: unknown frequency class %q", pattern.ErrInvalidPattern, in.Frequency)
	}
	if trip, ok := in.Trip.(PrivateVehicle); ok {
		maxOcc := MaxOccupancy(trip.Mode())
		if trip.Occupancy < 1 || trip.Occupancy > maxOcc {
			return fmt.Errorf("%w: occupancy %d for mode %s (max %d)",
				ErrInvalidOccupancy, trip.Occupancy, trip.Mode(), maxOcc)
		}
	}
	return nil
}

func computePrivate(trip PrivateVehicle, in Input) *Result {
	base := trip.Class.BaseImpactScore
	congestion := 1 + in.DistanceKm*congestionPerKm
	timing := timingMultiplier(in.Timing)
	frequency := frequencyMultipliers[in.Frequency]

	raw := float64(base) * congestion * timing * frequency / float64(trip.Occupancy)

	trips := monthlyTrips[in.Frequency]
	totalKm := in.DistanceKm * 2 * float64(trips)

	conf := ConfidenceC
	if in.DistanceKm < highConfidenceMaxKm {
		conf = ConfidenceA
	}

	return &Result{
		Score:      clampScore(math.Round(raw)),
		Confidence: conf,
		Breakdown: Breakdown{
			VehicleImpact:       base,
			CongestionFactor:    congestion,
			TimingMultiplier:    timing,
			FrequencyMultiplier: frequency,
			Occupancy:           trip.Occupancy,
			RawScore:            raw,
		},
		MonthlyEmissions: int(math.Round(totalKm * trip.Class.EmissionFactor)),
		MonthlyCost:      int(math.Round(totalKm * trip.Class.FuelCostPerKm / float64(trip.Occupancy))),
		MonthlyTimeHours: round2(totalKm / float64(trip.Class.AvgSpeedKmh)),
	}
}

func computeSustainable(trip SustainableMode, in Input) *Result {
	base := sustainableBaseScores[trip.Category]
	trips := monthlyTrips[in.Frequency]

	emissions := 0
	if trip.Category != vehicle.CategoryWalking {
		emissions = int(math.Round(in.DistanceKm * sharedEmissionPerKm * float64(trips)))
	}

	totalKm := in.DistanceKm * 2 * float64(trips)
	cost := int(math.Round(totalKm * sustainableFarePerKm[trip.Category]))
	timeHours := round2(in.DistanceKm / sustainableSpeedKmh * float64(trips) * 2)

	return &Result{
		Score:      base,
		Confidence: ConfidenceB,
		Breakdown: Breakdown{
			VehicleImpact:       base,
			CongestionFactor:    1,
			TimingMultiplier:    1,
			FrequencyMultiplier: 1,
			Occupancy:           1,
			RawScore:            float64(base),
		},
		MonthlyEmissions: emissions,
		MonthlyCost:      cost,
		MonthlyTimeHours: timeHours,
	}
}

func timingMultiplier(t pattern.TimingClass) float64 {
	if t.IsPeak() {
		return timingMultiplierPeak
	}
	return timingMultiplierOffPeak
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
