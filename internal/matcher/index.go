package matcher

import (
	"sort"
	"time"

	"loyalty-statement-import/internal/models"
)

// FlightIndex provides efficient candidate lookups for flight matching.
type FlightIndex struct {
	// RouteIndex maps airport pairs ("AMS-BER") to flight slices.
	RouteIndex map[string][]*models.Flight

	// DateIndex maps ISO dates (YYYY-MM-DD) to flight slices.
	DateIndex map[string][]*models.Flight

	// AllFlights holds all indexed flights.
	AllFlights []*models.Flight
}

// NewFlightIndex creates a new flight index from a slice of existing flights.
func NewFlightIndex(flights []*models.Flight) *FlightIndex {
	index := &FlightIndex{
		RouteIndex: make(map[string][]*models.Flight),
		DateIndex:  make(map[string][]*models.Flight),
		AllFlights: flights,
	}

	for _, f := range flights {
		if f.Route != "" {
			index.RouteIndex[f.Route] = append(index.RouteIndex[f.Route], f)
		}
		if f.Date != "" {
			index.DateIndex[f.Date] = append(index.DateIndex[f.Date], f)
		}
	}

	return index
}

// GetCandidates returns the existing flights worth scoring against the
// incoming flight: every flight on the same route, plus every flight within
// the date tolerance window. The result is deduplicated, ordered
// deterministically, and capped at the configured candidate limit.
func (fi *FlightIndex) GetCandidates(incoming *models.ParsedFlight, cfg *MatchConfig) []*models.Flight {
	seen := make(map[string]bool)
	var candidates []*models.Flight

	add := func(f *models.Flight) {
		if seen[f.ID] {
			return
		}
		if f.Manual && !cfg.IncludeManualFlights {
			return
		}
		seen[f.ID] = true
		candidates = append(candidates, f)
	}

	for _, f := range fi.RouteIndex[incoming.Route] {
		add(f)
	}

	for _, date := range datesAround(incoming.Date, cfg.DateToleranceDays) {
		for _, f := range fi.DateIndex[date] {
			add(f)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Date != candidates[j].Date {
			return candidates[i].Date < candidates[j].Date
		}
		return candidates[i].ID < candidates[j].ID
	})

	if len(candidates) > cfg.MaxCandidatesPerFlight {
		candidates = candidates[:cfg.MaxCandidatesPerFlight]
	}

	return candidates
}

// IndexStats provides statistics about an index.
type IndexStats struct {
	TotalFlights int
	UniqueRoutes int
	UniqueDates  int
}

// GetIndexStats returns statistics about the flight index.
func (fi *FlightIndex) GetIndexStats() IndexStats {
	return IndexStats{
		TotalFlights: len(fi.AllFlights),
		UniqueRoutes: len(fi.RouteIndex),
		UniqueDates:  len(fi.DateIndex),
	}
}

// datesAround expands an ISO date to the dates within the tolerance window,
// the date itself included.
func datesAround(isoDate string, toleranceDays int) []string {
	base, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return []string{isoDate}
	}

	dates := make([]string, 0, 2*toleranceDays+1)
	for d := -toleranceDays; d <= toleranceDays; d++ {
		dates = append(dates, base.AddDate(0, 0, d).Format("2006-01-02"))
	}
	return dates
}

// daysApart returns the absolute distance between two ISO dates in days, or
// -1 when either date does not parse.
func daysApart(a, b string) int {
	ta, errA := time.Parse("2006-01-02", a)
	tb, errB := time.Parse("2006-01-02", b)
	if errA != nil || errB != nil {
		return -1
	}

	diff := ta.Sub(tb)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
