package scoring

import (
	"fmt"
	"math"

	"github.com/commutewise/commutewise/internal/pattern"
	"github.com/commutewise/commutewise/internal/vehicle"
)

const (
	maxAlternatives = 4

	// Illustrative fixed values for the public transport suggestion.
	transitNewScore       = 20
	transitMonthlySavings = 1200

	carpoolTargetOccupancy = 3

	electricReductionPct = 40
)

// generateAlternatives builds the suggestion list for a computed result.
// Order is a deliberate design choice (transit, carpool, timing, electric),
// not a savings sort; the list is truncated to maxAlternatives.
func generateAlternatives(in Input, r *Result) []Alternative {
	var alts []Alternative

	mode := in.Trip.Mode()

	// Public transport, unless the trip already rides it or is near-optimal.
	if mode != vehicle.CategoryMetro && mode != vehicle.CategoryBus && mode != vehicle.CategoryWalking {
		alts = append(alts, transitAlternative(r))
	}

	// Carpooling, only when there is room to share.
	if trip, ok := in.Trip.(PrivateVehicle); ok && trip.Occupancy < carpoolTargetOccupancy {
		alts = append(alts, carpoolAlternative(trip, r))
	}

	// Time shifting, only when the trip is currently peak-exposed.
	if in.Timing.IsPeak() {
		alts = append(alts, timingAlternative(in, r))
	}

	// Electric switch, only for cars.
	if mode == vehicle.CategoryCar {
		alts = append(alts, electricAlternative(r))
	}

	if len(alts) > maxAlternatives {
		alts = alts[:maxAlternatives]
	}
	return alts
}

func transitAlternative(r *Result) Alternative {
	reduction := 0
	if r.Score > transitNewScore {
		reduction = int(math.Round(float64(r.Score-transitNewScore) / float64(r.Score) * 100))
	}
	return Alternative{
		Type:               AlternativeTransit,
		Title:              "Switch to metro or bus",
		Description:        "Public transport carries your trip at a fraction of the congestion and emissions cost.",
		ImpactReductionPct: reduction,
		TimeDelta:          "+15-20 minutes",
		MonthlySavings:     transitMonthlySavings,
		NewScore:           transitNewScore,
	}
}

func carpoolAlternative(trip PrivateVehicle, r *Result) Alternative {
	// Score and cost scale down proportionally with the occupancy increase.
	newScore := int(math.Round(float64(r.Score) * float64(trip.Occupancy) / carpoolTargetOccupancy))
	newCost := int(math.Round(float64(r.MonthlyCost) * float64(trip.Occupancy) / carpoolTargetOccupancy))
	savings := r.MonthlyCost - newCost
	if savings < 0 {
		savings = 0
	}

	reduction := 0
	if r.Score > 0 {
		reduction = int(math.Round(float64(r.Score-newScore) / float64(r.Score) * 100))
	}

	return Alternative{
		Type:               AlternativeCarpool,
		Title:              fmt.Sprintf("Carpool with %d people", carpoolTargetOccupancy),
		Description:        "Sharing the ride divides per-person impact and fuel cost.",
		ImpactReductionPct: reduction,
		TimeDelta:          "+5-10 minutes",
		MonthlySavings:     savings,
		NewScore:           newScore,
	}
}

func timingAlternative(in Input, r *Result) Alternative {
	// Reduction reflects the timing-multiplier ratio removed: larger when
	// both peaks are avoided.
	reduction := 33
	if in.Timing == pattern.TimingBothPeaks {
		reduction = 44
	}
	newScore := int(math.Round(float64(r.Score) * float64(100-reduction) / 100))

	return Alternative{
		Type:               AlternativeTiming,
		Title:              "Travel outside peak hours",
		Description:        "Shifting departure outside 8-11 AM and 5-8 PM avoids the worst congestion.",
		ImpactReductionPct: reduction,
		TimeDelta:          "same travel time",
		MonthlySavings:     0,
		NewScore:           newScore,
	}
}

func electricAlternative(r *Result) Alternative {
	newScore := int(math.Round(float64(r.Score) * 0.6))
	savings := int(math.Round(float64(r.MonthlyCost) * 0.6))

	return Alternative{
		Type:               AlternativeElectric,
		Title:              "Switch to an electric vehicle",
		Description:        "An EV removes tailpipe emissions and cuts running cost sharply.",
		ImpactReductionPct: electricReductionPct,
		TimeDelta:          "no change",
		MonthlySavings:     savings,
		NewScore:           newScore,
	}
}
