package models

// TravelPatternInfo describes one travel pattern preset.
type TravelPatternInfo struct {
	ID        TravelPattern `json:"id"`
	Timing    string        `json:"timing"`
	Frequency string        `json:"frequency"`
}

// TravelPatternList is the response for pattern metadata.
type TravelPatternList struct {
	Items []TravelPatternInfo `json:"items"`
}

// Enums represents the enum values used by the API.
type Enums struct {
	Modes      []TransportMode `json:"modes"`
	Patterns   []TravelPattern `json:"patterns"`
	Confidence []string        `json:"confidence"`
}
