package pipeline

import (
	"reflect"
	"testing"

	"loyalty-statement-import/internal/models"
)

const sampleStatement = `JOHN DOE
1234567890
PLATINUM
Miles balance as of 30 nov 2025 248928 Miles 183 XP 40 UXP
30 nov 2025 Trip to Berlin
AMS - BER KL1775 Economy 276 Miles 5 XP 5 UXP
1 dec 2025 Subscription 200 Miles`

func TestParseStatement_FullStatement(t *testing.T) {
	result := ParseStatement(sampleStatement, &Options{UserCurrency: "EUR"})
	if !result.Success {
		t.Fatalf("parse failed: %s", result.Error)
	}

	if len(result.Flights) != 1 {
		t.Fatalf("expected 1 flight, got %d", len(result.Flights))
	}
	f := result.Flights[0]
	if f.Route != "AMS-BER" || f.FlightNumber != "KL1775" || f.EarnedMiles != 276 {
		t.Errorf("flight = %+v", f)
	}

	// November carries the merged flight miles, December the subscription.
	if len(result.Miles) != 2 {
		t.Fatalf("expected 2 monthly records, got %d", len(result.Miles))
	}
	if result.Miles[0].Month != "2025-12" || result.Miles[0].Sources.Subscription.Miles != 200 {
		t.Errorf("december record = %+v", result.Miles[0])
	}
	if result.Miles[1].Month != "2025-11" || result.Miles[1].Sources.Flights.Miles != 276 {
		t.Errorf("november record = %+v", result.Miles[1])
	}

	if result.OfficialMilesBalance != 248928 || result.BalanceConfidence != 1.0 {
		t.Errorf("balance = %d (confidence %v)", result.OfficialMilesBalance, result.BalanceConfidence)
	}

	if result.Status == nil || result.Status.CurrentStatus != models.StatusPlatinum {
		t.Errorf("status = %+v", result.Status)
	}

	if result.XPTotals.Official != 183 || result.XPTotals.FromFlights != 5 {
		t.Errorf("xp = %+v", result.XPTotals)
	}
	if result.XPTotals.Discrepancy != 178 {
		t.Errorf("discrepancy = %d, want 178", result.XPTotals.Discrepancy)
	}
	if result.UXPTotals.Official != 40 || result.UXPTotals.FromFlights != 5 {
		t.Errorf("uxp = %+v", result.UXPTotals)
	}

	if result.Summary.NewFlights != 1 || result.Summary.Conflicts != 0 {
		t.Errorf("summary = %+v", result.Summary)
	}
	if result.Meta.Language != "en" {
		t.Errorf("language = %s, want en", result.Meta.Language)
	}
}

func TestParseStatement_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   \n\t  "} {
		result := ParseStatement(text, nil)
		if result.Success {
			t.Errorf("empty input %q parsed successfully", text)
		}
		if result.Error == "" {
			t.Error("hard failure carries no error message")
		}
		if len(result.Flights) != 0 || len(result.Miles) != 0 {
			t.Error("hard failure must carry no partial data")
		}
	}
}

// Repeated parses of identical text must be identical in every field.
func TestParseStatement_Deterministic(t *testing.T) {
	opts := &Options{UserCurrency: "EUR"}
	first := ParseStatement(sampleStatement, opts)

	for i := 0; i < 3; i++ {
		again := ParseStatement(sampleStatement, opts)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("parse result not deterministic")
		}
	}
}

// Importing the same statement against the result of the first import must
// classify everything as duplicate and produce nothing new.
func TestParseStatement_IdempotentReimport(t *testing.T) {
	first := ParseStatement(sampleStatement, &Options{UserCurrency: "EUR"})
	if !first.Success {
		t.Fatalf("first parse failed: %s", first.Error)
	}

	var existingFlights []*models.Flight
	for _, f := range first.Flights {
		existingFlights = append(existingFlights, &models.Flight{
			ID:           f.ID,
			Date:         f.Date,
			FlightNumber: f.FlightNumber,
			Route:        f.Route,
			Airline:      f.Airline,
			EarnedXP:     f.EarnedXP,
			EarnedMiles:  f.EarnedMiles,
			SafXP:        f.SafXP,
			UXP:          f.UXP,
		})
	}
	var existingMiles []*models.MilesRecord
	for _, m := range first.Miles {
		existingMiles = append(existingMiles, &models.MilesRecord{
			Month:   m.Month,
			Sources: m.Sources,
			Debit:   m.Debit,
		})
	}

	second := ParseStatement(sampleStatement, &Options{
		UserCurrency:    "EUR",
		ExistingFlights: existingFlights,
		ExistingMiles:   existingMiles,
	})
	if !second.Success {
		t.Fatalf("second parse failed: %s", second.Error)
	}

	if second.Summary.NewFlights != 0 {
		t.Errorf("re-import produced %d new flights, want 0", second.Summary.NewFlights)
	}
	if second.Summary.DuplicateFlights != len(second.Flights) {
		t.Errorf("duplicates = %d of %d flights", second.Summary.DuplicateFlights, len(second.Flights))
	}
	for _, m := range second.Miles {
		if m.Status != models.RecordDuplicate {
			t.Errorf("month %s status = %s, want duplicate", m.Month, m.Status)
		}
	}
	if len(second.Conflicts) != 0 {
		t.Errorf("re-import produced %d conflicts, want 0", len(second.Conflicts))
	}
}

func TestParseStatement_FuzzyAgainstExisting(t *testing.T) {
	existing := []*models.Flight{
		// Same route and flight number, one day off.
		{ID: "f-1", Date: "2025-11-29", Route: "AMS-BER", Airline: "KL", FlightNumber: "KL1775"},
	}

	result := ParseStatement(sampleStatement, &Options{
		UserCurrency:    "EUR",
		ExistingFlights: existing,
	})
	if !result.Success {
		t.Fatalf("parse failed: %s", result.Error)
	}

	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(result.Conflicts))
	}
	c := result.Conflicts[0]
	if c.Type != models.ConflictFlight || c.MatchConfidence < 0.7 {
		t.Errorf("conflict = %s with confidence %v", c.Type, c.MatchConfidence)
	}
	if result.Summary.FuzzyFlights != 1 {
		t.Errorf("fuzzy flights = %d, want 1", result.Summary.FuzzyFlights)
	}
}

func TestResolve_EndToEnd(t *testing.T) {
	parsed := ParseStatement(sampleStatement, &Options{UserCurrency: "EUR"})
	if !parsed.Success {
		t.Fatalf("parse failed: %s", parsed.Error)
	}

	resolved, err := Resolve(parsed, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(resolved.FlightsToAdd) != 1 {
		t.Errorf("flights to add = %d, want 1", len(resolved.FlightsToAdd))
	}
	if len(resolved.MilesToMerge) != 2 {
		t.Errorf("months to merge = %d, want 2", len(resolved.MilesToMerge))
	}
	if resolved.QualificationSettings == nil ||
		resolved.QualificationSettings.CurrentStatus != models.StatusPlatinum {
		t.Errorf("qualification = %+v", resolved.QualificationSettings)
	}
	if resolved.OfficialBalances == nil || resolved.OfficialBalances.Miles != 248928 {
		t.Errorf("balances = %+v", resolved.OfficialBalances)
	}
	if resolved.ImportMeta.Language != "en" {
		t.Errorf("meta language = %s", resolved.ImportMeta.Language)
	}
}

func TestResolve_RejectsFailedParse(t *testing.T) {
	if _, err := Resolve(failedResult("broken", Meta{}), nil, nil); err == nil {
		t.Error("expected error resolving a failed parse")
	}
	if _, err := Resolve(nil, nil, nil); err == nil {
		t.Error("expected error resolving nil")
	}
}
