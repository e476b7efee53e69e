// Package matcher provides the conflict detection engine that compares
// incoming parsed records against the records a member already has.
//
// Flight matching is fuzzy: candidates are selected through indexed lookups,
// scored on route, date, airline and flight number similarity, and flagged
// when the best candidate clears the confidence threshold. Monthly miles
// records are compared exactly; any difference within the same month is a
// conflict.
//
// Example usage:
//
//	detector := matcher.NewDetector(matcher.DefaultMatchConfig(), log)
//	detector.LoadExisting(flights, milesRecords)
//
//	conflicts := detector.DetectConflicts(parsedFlights, parsedMiles)
package matcher

import (
	"fmt"
)

// MatchWeights defines the score contribution of each similarity signal.
// The sum of all weights bounds the highest possible confidence.
type MatchWeights struct {
	// Route is added when both records cover the same airport pair.
	Route float64 `json:"route"`

	// ExactDate is added when both records carry the same date.
	ExactDate float64 `json:"exact_date"`

	// DateTolerance is added instead of ExactDate when the dates differ but
	// fall within the configured tolerance window.
	DateTolerance float64 `json:"date_tolerance"`

	// Airline is added when both records name the same carrier.
	Airline float64 `json:"airline"`

	// FlightNumber is added when both records carry the same flight number.
	FlightNumber float64 `json:"flight_number"`
}

// MatchConfig holds the tunables of the conflict detector. Use the factory
// functions for common scenarios:
//   - DefaultMatchConfig(): balanced matching for routine imports
//   - StrictMatchConfig(): tight matching that only flags near-certain pairs
//   - RelaxedMatchConfig(): loose matching for exploratory review
type MatchConfig struct {
	// DateToleranceDays is the window, in days, within which two different
	// flight dates still count as a partial date match.
	DateToleranceDays int `json:"date_tolerance_days"`

	// MinConfidence is the score an incoming/existing pair must reach before
	// it is reported as a conflict.
	MinConfidence float64 `json:"min_confidence"`

	// IncludeManualFlights opts manually entered records into fuzzy matching.
	// They are excluded by default so hand-maintained data is not second-
	// guessed by the importer.
	IncludeManualFlights bool `json:"include_manual_flights"`

	// MaxCandidatesPerFlight caps how many existing records are scored per
	// incoming flight.
	MaxCandidatesPerFlight int `json:"max_candidates_per_flight"`

	Weights MatchWeights `json:"weights"`
}

// DefaultMatchConfig returns a configuration with sensible defaults.
func DefaultMatchConfig() *MatchConfig {
	return &MatchConfig{
		DateToleranceDays:      1,
		MinConfidence:          0.7,
		IncludeManualFlights:   false,
		MaxCandidatesPerFlight: 10,
		Weights: MatchWeights{
			Route:         0.4,
			ExactDate:     0.3,
			DateTolerance: 0.2,
			Airline:       0.2,
			FlightNumber:  0.1,
		},
	}
}

// StrictMatchConfig returns a configuration that only flags pairs matching
// on route, exact date and carrier.
func StrictMatchConfig() *MatchConfig {
	cfg := DefaultMatchConfig()
	cfg.DateToleranceDays = 0
	cfg.MinConfidence = 0.9
	cfg.MaxCandidatesPerFlight = 5
	return cfg
}

// RelaxedMatchConfig returns a configuration for exploratory matching with a
// wide date window and a low threshold.
func RelaxedMatchConfig() *MatchConfig {
	cfg := DefaultMatchConfig()
	cfg.DateToleranceDays = 3
	cfg.MinConfidence = 0.6
	cfg.IncludeManualFlights = true
	cfg.MaxCandidatesPerFlight = 20
	return cfg
}

// Validate checks if the matching configuration is valid.
func (mc *MatchConfig) Validate() error {
	if mc.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance days cannot be negative: %d", mc.DateToleranceDays)
	}

	if mc.MinConfidence < 0.0 || mc.MinConfidence > 1.0 {
		return fmt.Errorf("minimum confidence must be between 0.0 and 1.0: %f", mc.MinConfidence)
	}

	if mc.MaxCandidatesPerFlight <= 0 {
		return fmt.Errorf("max candidates per flight must be positive: %d", mc.MaxCandidatesPerFlight)
	}

	if err := mc.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}

	return nil
}

// Validate checks if the matching weights are valid.
func (mw *MatchWeights) Validate() error {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"route", mw.Route},
		{"exact date", mw.ExactDate},
		{"date tolerance", mw.DateTolerance},
		{"airline", mw.Airline},
		{"flight number", mw.FlightNumber},
	} {
		if w.value < 0.0 || w.value > 1.0 {
			return fmt.Errorf("%s weight must be between 0.0 and 1.0: %f", w.name, w.value)
		}
	}

	// A partial date match must never outrank an exact one.
	if mw.DateTolerance > mw.ExactDate {
		return fmt.Errorf("date tolerance weight (%f) cannot exceed exact date weight (%f)",
			mw.DateTolerance, mw.ExactDate)
	}

	return nil
}

// Clone creates a deep copy of the matching configuration.
func (mc *MatchConfig) Clone() *MatchConfig {
	if mc == nil {
		return nil
	}

	clone := *mc
	return &clone
}

// String returns a human-readable description of the configuration.
func (mc *MatchConfig) String() string {
	return fmt.Sprintf("MatchConfig{DateTolerance: %d days, MinConfidence: %.2f, IncludeManual: %t}",
		mc.DateToleranceDays, mc.MinConfidence, mc.IncludeManualFlights)
}
