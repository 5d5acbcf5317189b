package models

// CalculationRequest is the request body for computing an impact score.
type CalculationRequest struct {
	// TransportMode selects the primary commute mode.
	TransportMode TransportMode `json:"transportMode"`

	// VehicleClassID selects the vehicle class for private modes (car, bike).
	VehicleClassID string `json:"vehicleClassId,omitempty"`

	// Occupancy is the number of people sharing the vehicle (default: 1).
	Occupancy int `json:"occupancy,omitempty"`

	// DistanceKm is the one-way commute distance. Optional when origin and
	// destination points are supplied.
	DistanceKm float64 `json:"distanceKm,omitempty"`

	// OriginPoint and DestinationPoint trigger a routed distance lookup when
	// DistanceKm is absent.
	OriginPoint      *Point `json:"originPoint,omitempty"`
	DestinationPoint *Point `json:"destinationPoint,omitempty"`

	// Origin and Destination are free-text labels stored with the calculation.
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`

	// TravelPattern selects the timing/frequency preset.
	TravelPattern TravelPattern `json:"travelPattern"`

	// SessionID groups calculations from the same browser session.
	SessionID string `json:"sessionId"`
}

// CalculationResponse is the scored calculation returned to the client.
type CalculationResponse struct {
	ID              string        `json:"id"`
	SessionID       string        `json:"sessionId"`
	TransportMode   TransportMode `json:"transportMode"`
	VehicleClassID  *string       `json:"vehicleClassId,omitempty"`
	Occupancy       int           `json:"occupancy"`
	DistanceKm      float64       `json:"distanceKm"`
	TravelPattern   TravelPattern `json:"travelPattern"`
	Origin          string        `json:"origin,omitempty"`
	Destination     string        `json:"destination,omitempty"`
	Score           int           `json:"score"`
	Confidence      string        `json:"confidence"`
	ConfidenceLabel string        `json:"confidenceLabel"`
	Breakdown       Breakdown     `json:"breakdown"`
	Monthly         MonthlyImpact `json:"monthly"`
	Alternatives    []Alternative `json:"alternatives"`
	Methodology     string        `json:"methodology"`
	CreatedAt       Timestamp     `json:"createdAt"`
}

// Breakdown exposes the score computation factors.
type Breakdown struct {
	VehicleImpact       int     `json:"vehicleImpact"`
	CongestionFactor    float64 `json:"congestionFactor"`
	TimingMultiplier    float64 `json:"timingMultiplier"`
	FrequencyMultiplier float64 `json:"frequencyMultiplier"`
	Occupancy           int     `json:"occupancy"`
	RawScore            float64 `json:"rawScore"`
}

// MonthlyImpact groups the monthly cost, emissions and time figures.
type MonthlyImpact struct {
	EmissionsKg int     `json:"emissionsKg"`
	CostRupees  int     `json:"costRupees"`
	TimeHours   float64 `json:"timeHours"`
}

// Alternative is one suggested lower-impact option.
type Alternative struct {
	Type               string `json:"type"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	ImpactReductionPct int    `json:"impactReductionPct"`
	TimeDelta          string `json:"timeDelta"`
	MonthlySavings     int    `json:"monthlySavings"`
	NewScore           int    `json:"newScore"`
}

// PagedCalculations is a page of session calculation history.
type PagedCalculations struct {
	Items []CalculationResponse `json:"items"`
	Meta  PagedResponseMeta     `json:"meta"`
}
