package matcher

import (
	"testing"

	"loyalty-statement-import/internal/models"
)

func TestFlightIndex_GetCandidates(t *testing.T) {
	flights := []*models.Flight{
		{ID: "f-1", Date: "2025-11-30", Route: "AMS-BER"},
		{ID: "f-2", Date: "2025-12-01", Route: "CDG-JFK"},
		{ID: "f-3", Date: "2025-06-01", Route: "AMS-BER"},
		{ID: "f-4", Date: "2025-11-29", Route: "LHR-AMS"},
	}
	index := NewFlightIndex(flights)
	cfg := DefaultMatchConfig()

	incoming := &models.ParsedFlight{Date: "2025-11-30", Route: "AMS-BER"}
	candidates := index.GetCandidates(incoming, cfg)

	// Same route: f-1, f-3. Within one day: f-1 (dedup), f-2, f-4.
	if len(candidates) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(candidates))
	}

	// Deterministic order: by date, then ID.
	wantOrder := []string{"f-3", "f-4", "f-1", "f-2"}
	for i, want := range wantOrder {
		if candidates[i].ID != want {
			t.Errorf("candidates[%d] = %s, want %s", i, candidates[i].ID, want)
		}
	}
}

func TestFlightIndex_CandidateCap(t *testing.T) {
	var flights []*models.Flight
	for i := 0; i < 20; i++ {
		flights = append(flights, &models.Flight{
			ID: string(rune('a' + i)), Date: "2025-11-30", Route: "AMS-BER",
		})
	}
	index := NewFlightIndex(flights)

	cfg := DefaultMatchConfig()
	cfg.MaxCandidatesPerFlight = 5

	incoming := &models.ParsedFlight{Date: "2025-11-30", Route: "AMS-BER"}
	if got := index.GetCandidates(incoming, cfg); len(got) != 5 {
		t.Errorf("expected 5 candidates, got %d", len(got))
	}
}

func TestFlightIndex_Stats(t *testing.T) {
	index := NewFlightIndex([]*models.Flight{
		{ID: "f-1", Date: "2025-11-30", Route: "AMS-BER"},
		{ID: "f-2", Date: "2025-11-30", Route: "CDG-JFK"},
	})

	stats := index.GetIndexStats()
	if stats.TotalFlights != 2 || stats.UniqueRoutes != 2 || stats.UniqueDates != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDaysApart(t *testing.T) {
	if got := daysApart("2025-11-30", "2025-12-01"); got != 1 {
		t.Errorf("daysApart = %d, want 1", got)
	}
	if got := daysApart("2025-11-30", "2025-11-30"); got != 0 {
		t.Errorf("daysApart = %d, want 0", got)
	}
	if got := daysApart("garbage", "2025-11-30"); got != -1 {
		t.Errorf("daysApart = %d, want -1", got)
	}
}
