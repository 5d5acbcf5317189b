// Package featureflags provides feature flag management for runtime configuration.
package featureflags

import (
	"encoding/json"
	"time"
)

// Well-known feature flag keys.
const (
	// FlagAltTransit controls whether public transit alternatives are suggested.
	FlagAltTransit = "alt.transit"

	// FlagAltCarpool controls whether carpool alternatives are suggested.
	FlagAltCarpool = "alt.carpool"

	// FlagAltTiming controls whether off-peak timing alternatives are suggested.
	FlagAltTiming = "alt.timing"

	// FlagAltElectric controls whether electric vehicle alternatives are suggested.
	FlagAltElectric = "alt.electric"

	// FlagRoutingEnabled controls whether distance lookups through the mapping
	// provider are allowed. When disabled, only caller-supplied distances work.
	FlagRoutingEnabled = "routing.enabled"
)

// Flag represents a feature flag with its current value.
type Flag struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// FlagList represents a list of feature flags.
type FlagList struct {
	Items []Flag `json:"items"`
}

// FlagUpdate represents a single flag update request.
type FlagUpdate struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// FlagUpdateRequest represents a request to update feature flags.
type FlagUpdateRequest struct {
	Updates []FlagUpdate `json:"updates"`
	Reason  string       `json:"reason"`
}

// BoolValue returns the flag value as a boolean.
// Returns the default value if the flag is nil, not found, or not a boolean.
func (f *Flag) BoolValue(defaultValue bool) bool {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case bool:
		return v
	case float64:
		// JSON unmarshals numbers as float64
		return v != 0
	default:
		return defaultValue
	}
}

// StringValue returns the flag value as a string.
// Returns the default value if the flag is nil, not found, or not a string.
func (f *Flag) StringValue(defaultValue string) string {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case string:
		return v
	default:
		return defaultValue
	}
}

// IntValue returns the flag value as an integer.
// Returns the default value if the flag is nil, not found, or not a number.
func (f *Flag) IntValue(defaultValue int) int {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case float64:
		// JSON unmarshals numbers as float64
		return int(v)
	case int:
		return v
	default:
		return defaultValue
	}
}

// JSONValue unmarshals the flag value into the target struct.
func (f *Flag) JSONValue(target interface{}) error {
	if f == nil {
		return nil
	}
	data, err := json.Marshal(f.Value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// DefaultFlags returns the default feature flags for the application.
// All alternative suggestions and routing lookups are enabled by default.
func DefaultFlags() map[string]*Flag {
	now := time.Now()
	return map[string]*Flag{
		FlagAltTransit: {
			Key:       FlagAltTransit,
			Value:     true,
			UpdatedAt: now,
		},
		FlagAltCarpool: {
			Key:       FlagAltCarpool,
			Value:     true,
			UpdatedAt: now,
		},
		FlagAltTiming: {
			Key:       FlagAltTiming,
			Value:     true,
			UpdatedAt: now,
		},
		FlagAltElectric: {
			Key:       FlagAltElectric,
			Value:     true,
			UpdatedAt: now,
		},
		FlagRoutingEnabled: {
			Key:       FlagRoutingEnabled,
			Value:     true,
			UpdatedAt: now,
		},
	}
}
