package extract

import (
	"testing"

	"loyalty-statement-import/internal/locale"
	"loyalty-statement-import/internal/models"
)

func TestExtractXP_SourcesAndDates(t *testing.T) {
	lines := tokenized(`30 nov 2025 Trip to Berlin
AMS - BER KL1775 Economy 276 Miles 5 XP 5 UXP
Sustainable Aviation Fuel bonus 10 XP
5 dec 2025 American Express card 150 Miles 3 XP`)

	entries := ExtractXP(lines, &XPConfig{Language: locale.English})
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	bySource := make(map[models.XPSource]*models.XPEntry)
	for _, e := range entries {
		bySource[e.Source] = e
	}

	flight := bySource[models.XPSourceFlight]
	if flight == nil {
		t.Fatal("missing flight entry")
	}
	if flight.Amount != 5 || flight.UXPAmount != 5 {
		t.Errorf("flight entry = %d XP %d UXP, want 5/5", flight.Amount, flight.UXPAmount)
	}
	if flight.Date != "2025-11-30" || flight.Month != "2025-11" {
		t.Errorf("flight entry date = %s/%s, want 2025-11-30/2025-11", flight.Date, flight.Month)
	}

	saf := bySource[models.XPSourceSaf]
	if saf == nil {
		t.Fatal("missing SAF entry")
	}
	if saf.Amount != 10 {
		t.Errorf("SAF amount = %d, want 10", saf.Amount)
	}
	if saf.Date != "2025-11-30" {
		t.Errorf("SAF entry must inherit the transaction date, got %s", saf.Date)
	}

	card := bySource[models.XPSourceCreditCard]
	if card == nil {
		t.Fatal("missing credit card entry")
	}
	if card.Amount != 3 || card.Month != "2025-12" {
		t.Errorf("card entry = %d XP in %s, want 3 in 2025-12", card.Amount, card.Month)
	}
}

func TestExtractXP_SkipsSummaryAndZero(t *testing.T) {
	lines := tokenized(`Miles balance as of 30 nov 2025 248928 Miles 183 XP 40 UXP
1 dec 2025 Subscription 200 Miles`)

	entries := ExtractXP(lines, &XPConfig{Language: locale.English})
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestExtractXP_SortedNewestFirst(t *testing.T) {
	lines := tokenized(`1 dec 2025 Promotion bonus 5 XP
15 dec 2025 Hotel stay 8 XP`)

	entries := ExtractXP(lines, &XPConfig{Language: locale.English})
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Date != "2025-12-15" || entries[1].Date != "2025-12-01" {
		t.Errorf("order = %s, %s", entries[0].Date, entries[1].Date)
	}
	if entries[0].Source != models.XPSourceHotel || entries[1].Source != models.XPSourcePromo {
		t.Errorf("sources = %s, %s", entries[0].Source, entries[1].Source)
	}
}
