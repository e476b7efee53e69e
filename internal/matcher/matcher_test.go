package matcher

import (
	"testing"

	"loyalty-statement-import/internal/models"
)

func newTestDetector(t *testing.T, cfg *MatchConfig, flights []*models.Flight, miles []*models.MilesRecord) *Detector {
	t.Helper()
	d := NewDetector(cfg, nil)
	d.LoadExisting(flights, miles)
	return d
}

func TestDetectConflicts_RequiresLoadedRecords(t *testing.T) {
	d := NewDetector(nil, nil)
	if _, err := d.DetectConflicts(nil, nil); err == nil {
		t.Fatal("expected error when no records are loaded")
	}
}

func TestDetectFlightConflicts_RouteAndDate(t *testing.T) {
	existing := []*models.Flight{
		{ID: "f-1", Date: "2025-11-30", Route: "AMS-BER", Airline: "KL", FlightNumber: "KL1775"},
	}
	incoming := []*models.ParsedFlight{
		{ID: "pf-1", Date: "2025-11-30", Route: "AMS-BER", Status: models.RecordNew},
	}

	d := newTestDetector(t, nil, existing, nil)
	conflicts, err := d.DetectConflicts(incoming, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}

	c := conflicts[0]
	if c.Type != models.ConflictFlight || c.Reason != models.ReasonFuzzyMatch {
		t.Errorf("conflict = %s/%s", c.Type, c.Reason)
	}
	if c.ExistingFlight.ID != "f-1" {
		t.Errorf("existing = %s, want f-1", c.ExistingFlight.ID)
	}
	// Route (0.4) + exact date (0.3) clears the 0.7 threshold.
	if c.MatchConfidence < 0.7 {
		t.Errorf("confidence = %v, want >= 0.7", c.MatchConfidence)
	}
	if incoming[0].Status != models.RecordFuzzyMatch {
		t.Errorf("incoming status = %s, want fuzzy_match", incoming[0].Status)
	}
	if incoming[0].MatchedExistingID != "f-1" {
		t.Errorf("matched existing = %q, want f-1", incoming[0].MatchedExistingID)
	}
	if incoming[0].MatchConfidence != c.MatchConfidence {
		t.Errorf("incoming confidence = %v, want %v", incoming[0].MatchConfidence, c.MatchConfidence)
	}
}

func TestDetectFlightConflicts_FullMatchScoresOne(t *testing.T) {
	existing := []*models.Flight{
		{ID: "f-1", Date: "2025-11-30", Route: "AMS-BER", Airline: "KL", FlightNumber: "KL1775"},
	}
	incoming := []*models.ParsedFlight{
		{ID: "pf-1", Date: "2025-11-30", Route: "AMS-BER", Airline: "KL", FlightNumber: "KL1775"},
	}

	d := newTestDetector(t, nil, existing, nil)
	conflicts, _ := d.DetectConflicts(incoming, nil)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if got := conflicts[0].MatchConfidence; got < 0.99 {
		t.Errorf("confidence = %v, want ~1.0", got)
	}
}

func TestDetectFlightConflicts_RouteOnlyBelowThreshold(t *testing.T) {
	existing := []*models.Flight{
		{ID: "f-1", Date: "2025-06-01", Route: "AMS-BER"},
	}
	incoming := []*models.ParsedFlight{
		{ID: "pf-1", Date: "2025-11-30", Route: "AMS-BER"},
	}

	d := newTestDetector(t, nil, existing, nil)
	conflicts, _ := d.DetectConflicts(incoming, nil)
	if len(conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %d", len(conflicts))
	}
	if incoming[0].Status != models.RecordNew {
		t.Errorf("incoming status = %s, want new", incoming[0].Status)
	}
}

func TestDetectFlightConflicts_DateToleranceScoresLower(t *testing.T) {
	existing := []*models.Flight{
		{ID: "f-1", Date: "2025-12-01", Route: "AMS-BER", Airline: "KL", FlightNumber: "KL1775"},
	}
	incoming := []*models.ParsedFlight{
		{ID: "pf-1", Date: "2025-11-30", Route: "AMS-BER", Airline: "KL", FlightNumber: "KL1775"},
	}

	d := newTestDetector(t, nil, existing, nil)
	conflicts, _ := d.DetectConflicts(incoming, nil)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}

	// Route + tolerance date + airline + flight number: 0.9, not 1.0.
	got := conflicts[0].MatchConfidence
	if got < 0.85 || got > 0.95 {
		t.Errorf("confidence = %v, want ~0.9", got)
	}
	if incoming[0].MatchedExistingID != "f-1" {
		t.Errorf("matched existing = %q, want f-1", incoming[0].MatchedExistingID)
	}
	if incoming[0].MatchConfidence != got {
		t.Errorf("incoming confidence = %v, want %v", incoming[0].MatchConfidence, got)
	}
}

func TestDetectFlightConflicts_OneConflictPerIncoming(t *testing.T) {
	existing := []*models.Flight{
		{ID: "f-1", Date: "2025-11-30", Route: "AMS-BER", Airline: "KL", FlightNumber: "KL1775"},
		{ID: "f-2", Date: "2025-11-30", Route: "AMS-BER", Airline: "KL", FlightNumber: "KL1777"},
	}
	incoming := []*models.ParsedFlight{
		{ID: "pf-1", Date: "2025-11-30", Route: "AMS-BER", Airline: "KL", FlightNumber: "KL1775"},
	}

	d := newTestDetector(t, nil, existing, nil)
	conflicts, _ := d.DetectConflicts(incoming, nil)
	if len(conflicts) != 1 {
		t.Fatalf("expected exactly 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].ExistingFlight.ID != "f-1" {
		t.Errorf("best match = %s, want f-1 (full score)", conflicts[0].ExistingFlight.ID)
	}
}

func TestDetectFlightConflicts_ManualExcludedByDefault(t *testing.T) {
	existing := []*models.Flight{
		{ID: "f-1", Date: "2025-11-30", Route: "AMS-BER", Airline: "KL", FlightNumber: "KL1775", Manual: true},
	}
	incoming := []*models.ParsedFlight{
		{ID: "pf-1", Date: "2025-11-30", Route: "AMS-BER", Airline: "KL", FlightNumber: "KL1775"},
	}

	d := newTestDetector(t, nil, existing, nil)
	conflicts, _ := d.DetectConflicts(incoming, nil)
	if len(conflicts) != 0 {
		t.Fatalf("manual flight matched without opt-in, got %d conflicts", len(conflicts))
	}

	cfg := DefaultMatchConfig()
	cfg.IncludeManualFlights = true
	d = newTestDetector(t, cfg, existing, nil)
	conflicts, _ = d.DetectConflicts(incoming, nil)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict with manual opt-in, got %d", len(conflicts))
	}
}

func TestDetectFlightConflicts_SkipsExactDuplicates(t *testing.T) {
	existing := []*models.Flight{
		{ID: "f-1", Date: "2025-11-30", Route: "AMS-BER"},
	}
	incoming := []*models.ParsedFlight{
		{ID: "pf-1", Date: "2025-11-30", Route: "AMS-BER", Status: models.RecordDuplicate},
	}

	d := newTestDetector(t, nil, existing, nil)
	conflicts, _ := d.DetectConflicts(incoming, nil)
	if len(conflicts) != 0 {
		t.Fatalf("duplicate flight must not re-enter matching, got %d conflicts", len(conflicts))
	}
}

func TestDetectMilesConflicts_DifferentValues(t *testing.T) {
	existingMiles := &models.MilesRecord{Month: "2025-12"}
	existingMiles.Sources.Subscription.Miles = 200

	incoming := &models.ParsedMiles{Month: "2025-12", Status: models.RecordNew}
	incoming.Sources.Subscription.Miles = 250
	incoming.RecalcTotals()

	d := newTestDetector(t, nil, nil, []*models.MilesRecord{existingMiles})
	conflicts, _ := d.DetectConflicts(nil, []*models.ParsedMiles{incoming})
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}

	c := conflicts[0]
	if c.Type != models.ConflictMiles || c.Reason != models.ReasonDifferentValues {
		t.Errorf("conflict = %s/%s", c.Type, c.Reason)
	}
	if c.MatchConfidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", c.MatchConfidence)
	}
}

func TestDetectMilesConflicts_IdenticalIsDuplicate(t *testing.T) {
	existingMiles := &models.MilesRecord{Month: "2025-12"}
	existingMiles.Sources.Subscription.Miles = 200

	incoming := &models.ParsedMiles{Month: "2025-12", Status: models.RecordNew}
	incoming.Sources.Subscription.Miles = 200
	incoming.RecalcTotals()

	d := newTestDetector(t, nil, nil, []*models.MilesRecord{existingMiles})
	conflicts, _ := d.DetectConflicts(nil, []*models.ParsedMiles{incoming})
	if len(conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %d", len(conflicts))
	}
	if incoming.Status != models.RecordDuplicate {
		t.Errorf("status = %s, want duplicate", incoming.Status)
	}
}

func TestDetectMilesConflicts_NewMonthPassesThrough(t *testing.T) {
	incoming := &models.ParsedMiles{Month: "2026-01", Status: models.RecordNew}

	d := newTestDetector(t, nil, nil, nil)
	conflicts, _ := d.DetectConflicts(nil, []*models.ParsedMiles{incoming})
	if len(conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %d", len(conflicts))
	}
	if incoming.Status != models.RecordNew {
		t.Errorf("status = %s, want new", incoming.Status)
	}
}
