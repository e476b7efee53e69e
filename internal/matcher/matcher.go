package matcher

import (
	"fmt"
	"sort"
	"strings"

	"loyalty-statement-import/internal/models"
	"loyalty-statement-import/pkg/logger"
)

// Detector is the conflict detection engine. It is loaded once with the
// member's existing records and then queried with parsed statement data.
type Detector struct {
	Config *MatchConfig

	flightIndex   *FlightIndex
	existingMiles map[string]*models.MilesRecord

	log logger.Logger
}

// FlightScore is one scored incoming/existing pair.
type FlightScore struct {
	Existing   *models.Flight
	Confidence float64
	Reasons    []string
}

// NewDetector creates a conflict detector with the given configuration.
func NewDetector(config *MatchConfig, log logger.Logger) *Detector {
	if config == nil {
		config = DefaultMatchConfig()
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Detector{
		Config: config,
		log:    log.WithComponent("matcher"),
	}
}

// LoadExisting indexes the member's persisted records for matching.
func (d *Detector) LoadExisting(flights []*models.Flight, miles []*models.MilesRecord) {
	d.flightIndex = NewFlightIndex(flights)

	d.existingMiles = make(map[string]*models.MilesRecord, len(miles))
	for _, m := range miles {
		d.existingMiles[m.Month] = m
	}
}

// DetectConflicts compares parsed flights and monthly miles against the
// loaded records. Detection is pure: nothing is persisted, the caller decides
// every resolution.
func (d *Detector) DetectConflicts(flights []*models.ParsedFlight, miles []*models.ParsedMiles) ([]*models.ImportConflict, error) {
	if d.flightIndex == nil {
		return nil, fmt.Errorf("existing records must be loaded before detection")
	}

	conflicts := d.detectFlightConflicts(flights)
	conflicts = append(conflicts, d.detectMilesConflicts(miles)...)

	d.log.WithFields(map[string]interface{}{
		"flights":   len(flights),
		"miles":     len(miles),
		"conflicts": len(conflicts),
	}).Debug("conflict detection complete")

	return conflicts, nil
}

// detectFlightConflicts reports at most one conflict per incoming flight:
// the highest-scoring existing record above the confidence threshold.
func (d *Detector) detectFlightConflicts(flights []*models.ParsedFlight) []*models.ImportConflict {
	var conflicts []*models.ImportConflict

	for _, in := range flights {
		if in.Status == models.RecordDuplicate {
			// Exact duplicates were settled during extraction.
			continue
		}

		scores := d.ScoreCandidates(in)
		if len(scores) == 0 {
			continue
		}

		best := scores[0]
		if best.Confidence < d.Config.MinConfidence {
			continue
		}

		in.Status = models.RecordFuzzyMatch
		in.MatchedExistingID = best.Existing.ID
		in.MatchConfidence = best.Confidence
		conflicts = append(conflicts, &models.ImportConflict{
			ID:              "conflict-" + in.ID,
			Type:            models.ConflictFlight,
			Reason:          models.ReasonFuzzyMatch,
			ExistingFlight:  best.Existing,
			IncomingFlight:  in,
			MatchReason:     strings.Join(best.Reasons, ", "),
			MatchConfidence: best.Confidence,
		})
	}

	return conflicts
}

// ScoreCandidates scores every candidate for one incoming flight, highest
// confidence first.
func (d *Detector) ScoreCandidates(in *models.ParsedFlight) []*FlightScore {
	candidates := d.flightIndex.GetCandidates(in, d.Config)

	scores := make([]*FlightScore, 0, len(candidates))
	for _, ex := range candidates {
		if score := d.scoreFlight(in, ex); score.Confidence > 0 {
			scores = append(scores, score)
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Confidence > scores[j].Confidence
	})
	return scores
}

// scoreFlight calculates the weighted similarity between an incoming and an
// existing flight.
func (d *Detector) scoreFlight(in *models.ParsedFlight, ex *models.Flight) *FlightScore {
	score := &FlightScore{Existing: ex}
	weights := d.Config.Weights

	if in.Route != "" && in.Route == ex.Route {
		score.Confidence += weights.Route
		score.Reasons = append(score.Reasons, "same route")
	}

	switch {
	case in.Date != "" && in.Date == ex.Date:
		score.Confidence += weights.ExactDate
		score.Reasons = append(score.Reasons, "same date")
	case d.Config.DateToleranceDays > 0:
		if days := daysApart(in.Date, ex.Date); days > 0 && days <= d.Config.DateToleranceDays {
			score.Confidence += weights.DateTolerance
			score.Reasons = append(score.Reasons, fmt.Sprintf("date within %d days", days))
		}
	}

	if in.Airline != "" && strings.EqualFold(in.Airline, ex.Airline) {
		score.Confidence += weights.Airline
		score.Reasons = append(score.Reasons, "same airline")
	}

	if in.FlightNumber != "" && strings.EqualFold(in.FlightNumber, ex.FlightNumber) {
		score.Confidence += weights.FlightNumber
		score.Reasons = append(score.Reasons, "same flight number")
	}

	return score
}

// detectMilesConflicts compares monthly records exactly: an incoming month
// that already exists is either an untouched duplicate or a full conflict.
func (d *Detector) detectMilesConflicts(miles []*models.ParsedMiles) []*models.ImportConflict {
	var conflicts []*models.ImportConflict

	for _, in := range miles {
		ex, ok := d.existingMiles[in.Month]
		if !ok {
			continue
		}

		if in.Sources.Equal(&ex.Sources) && in.Debit == ex.Debit {
			in.Status = models.RecordDuplicate
			continue
		}

		in.Status = models.RecordFuzzyMatch
		conflicts = append(conflicts, &models.ImportConflict{
			ID:              "conflict-miles-" + in.Month,
			Type:            models.ConflictMiles,
			Reason:          models.ReasonDifferentValues,
			ExistingMiles:   ex,
			IncomingMiles:   in,
			MatchReason:     "same month, different values",
			MatchConfidence: 1.0,
		})
	}

	return conflicts
}

// GetConfiguration returns a copy of the current configuration.
func (d *Detector) GetConfiguration() *MatchConfig {
	return d.Config.Clone()
}

// UpdateConfiguration replaces the detector configuration after validation.
func (d *Detector) UpdateConfiguration(config *MatchConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	d.Config = config.Clone()
	return nil
}
