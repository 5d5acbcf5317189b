// Package pattern resolves a user-facing travel pattern choice into its
// timing and frequency axes.
package pattern

import (
	"errors"
	"fmt"
)

// ErrInvalidPattern is returned for a travel pattern outside the fixed set.
var ErrInvalidPattern = errors.New("unknown travel pattern")

// TimingClass categorizes when trips occur relative to peak traffic.
type TimingClass string

const (
	TimingBothPeaks   TimingClass = "both-peaks"
	TimingMorningPeak TimingClass = "morning-peak"
	TimingEveningPeak TimingClass = "evening-peak"
	TimingOffPeak     TimingClass = "off-peak"
	TimingNight       TimingClass = "night"
)

// IsPeak reports whether the timing class involves any peak-hour exposure.
func (t TimingClass) IsPeak() bool {
	switch t {
	case TimingBothPeaks, TimingMorningPeak, TimingEveningPeak:
		return true
	default:
		return false
	}
}

// FrequencyClass categorizes how often the trip recurs per month.
type FrequencyClass string

const (
	FrequencyDaily      FrequencyClass = "daily"
	FrequencyWeekdays   FrequencyClass = "weekdays"
	FrequencyWeekends   FrequencyClass = "weekends"
	FrequencyFrequent   FrequencyClass = "frequent"
	FrequencyOccasional FrequencyClass = "occasional"
	FrequencyRare       FrequencyClass = "rare"
)

// Pattern is one selectable travel pattern and its resolved axes.
type Pattern struct {
	ID        string
	Timing    TimingClass
	Frequency FrequencyClass
}

// patterns is the fixed pattern table. The mapping is total: every pattern
// the form offers resolves here, and anything else is rejected rather than
// defaulted, since a silent default would corrupt the score unnoticed.
var patterns = []Pattern{
	{ID: "daily-commute", Timing: TimingBothPeaks, Frequency: FrequencyDaily},
	{ID: "weekday-commute", Timing: TimingMorningPeak, Frequency: FrequencyWeekdays},
	{ID: "weekend-commute", Timing: TimingOffPeak, Frequency: FrequencyWeekends},
	{ID: "frequent-trips", Timing: TimingOffPeak, Frequency: FrequencyFrequent},
	{ID: "occasional-trips", Timing: TimingOffPeak, Frequency: FrequencyOccasional},
	{ID: "rare-trips", Timing: TimingOffPeak, Frequency: FrequencyRare},
}

// byID is derived from patterns at init.
var byID = func() map[string]Pattern {
	m := make(map[string]Pattern, len(patterns))
	for _, p := range patterns {
		m[p.ID] = p
	}
	return m
}()

// Resolve returns the timing and frequency axes for a pattern identifier.
// Returns ErrInvalidPattern for any identifier outside the fixed set.
func Resolve(id string) (Pattern, error) {
	p, ok := byID[id]
	if !ok {
		return Pattern{}, fmt.Errorf("%w: %q", ErrInvalidPattern, id)
	}
	return p, nil
}

// All returns every travel pattern in a stable display order.
func All() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}
