package extract

import (
	"testing"

	"loyalty-statement-import/internal/locale"
	"loyalty-statement-import/internal/models"
)

func TestDetectStatus_CurrentTier(t *testing.T) {
	lines := tokenized(`JOHN DOE
PLATINUM
30 nov 2025 Trip to Berlin`)

	detected := DetectStatus(lines, &StatusConfig{Language: locale.English})
	if detected.CurrentStatus != models.StatusPlatinum {
		t.Errorf("status = %s, want Platinum", detected.CurrentStatus)
	}
	if len(detected.Requalifications) != 0 {
		t.Errorf("expected no events, got %d", len(detected.Requalifications))
	}
}

func TestDetectStatus_RequalificationEvent(t *testing.T) {
	lines := tokenized(`31 mar 2025 Congratulations, you have reached Gold status`)

	detected := DetectStatus(lines, &StatusConfig{Language: locale.English})
	if len(detected.Requalifications) != 1 {
		t.Fatalf("expected 1 event, got %d", len(detected.Requalifications))
	}

	ev := detected.Requalifications[0]
	if ev.NewStatus != models.StatusGold {
		t.Errorf("new status = %s, want Gold", ev.NewStatus)
	}
	if ev.Date != "2025-03-31" {
		t.Errorf("date = %s, want 2025-03-31", ev.Date)
	}
	if ev.XPDeducted != -180 {
		t.Errorf("xpDeducted = %d, want -180", ev.XPDeducted)
	}
	// Qualify in month X, new cycle starts month X+1.
	if ev.CycleStartMonth != "2025-04" {
		t.Errorf("cycleStartMonth = %s, want 2025-04", ev.CycleStartMonth)
	}
	if ev.CycleStartDate != "" {
		t.Errorf("cycleStartDate = %q, want empty when the line prints none", ev.CycleStartDate)
	}
}

func TestDetectStatus_PrintedCycleStartDate(t *testing.T) {
	lines := tokenized(`31 mar 2025 Congratulations, you have reached Gold status, your new cycle starts on 1 apr 2025`)

	detected := DetectStatus(lines, &StatusConfig{Language: locale.English})
	if len(detected.Requalifications) != 1 {
		t.Fatalf("expected 1 event, got %d", len(detected.Requalifications))
	}

	ev := detected.Requalifications[0]
	if ev.Date != "2025-03-31" {
		t.Errorf("date = %s, want 2025-03-31", ev.Date)
	}
	// The printed cycle-start date is kept verbatim, not normalized.
	if ev.CycleStartDate != "1 apr 2025" {
		t.Errorf("cycleStartDate = %q, want 1 apr 2025", ev.CycleStartDate)
	}
	if detected.CycleStartDate != "1 apr 2025" {
		t.Errorf("aggregate cycleStartDate = %q, want 1 apr 2025", detected.CycleStartDate)
	}
}

func TestDetectStatus_YearBoundaryCycleStart(t *testing.T) {
	lines := tokenized(`15 dec 2025 Requalification: welcome to Platinum`)

	detected := DetectStatus(lines, &StatusConfig{Language: locale.English})
	if len(detected.Requalifications) != 1 {
		t.Fatalf("expected 1 event, got %d", len(detected.Requalifications))
	}
	if got := detected.Requalifications[0].CycleStartMonth; got != "2026-01" {
		t.Errorf("cycleStartMonth = %s, want 2026-01", got)
	}
	if detected.CycleStartMonth != "2026-01" {
		t.Errorf("aggregate cycleStartMonth = %s, want 2026-01", detected.CycleStartMonth)
	}
	// No explicit tier line: the latest event supplies the current status.
	if detected.CurrentStatus != models.StatusPlatinum {
		t.Errorf("status = %s, want Platinum", detected.CurrentStatus)
	}
}

func TestDetectStatus_EventsSortedChronologically(t *testing.T) {
	lines := tokenized(`15 dec 2025 Congratulations, you have reached Platinum
31 mar 2025 Congratulations, you have reached Gold`)

	detected := DetectStatus(lines, &StatusConfig{Language: locale.English})
	if len(detected.Requalifications) != 2 {
		t.Fatalf("expected 2 events, got %d", len(detected.Requalifications))
	}
	if detected.Requalifications[0].NewStatus != models.StatusGold {
		t.Errorf("first event = %s, want Gold", detected.Requalifications[0].NewStatus)
	}
	if detected.CycleStartMonth != "2026-01" {
		t.Errorf("cycleStartMonth = %s, want 2026-01 (latest event)", detected.CycleStartMonth)
	}
}

func TestDetectStatus_DutchPhrases(t *testing.T) {
	lines := tokenized(`30 nov 2025 Gefeliciteerd, u heeft de Gold status bereikt`)

	detected := DetectStatus(lines, &StatusConfig{Language: locale.Dutch})
	if len(detected.Requalifications) != 1 {
		t.Fatalf("expected 1 event, got %d", len(detected.Requalifications))
	}
	if detected.Requalifications[0].NewStatus != models.StatusGold {
		t.Errorf("new status = %s, want Gold", detected.Requalifications[0].NewStatus)
	}
}

func TestDetectStatus_LineWithoutTierIsSkipped(t *testing.T) {
	lines := tokenized(`30 nov 2025 Congratulations on your loyalty`)

	detected := DetectStatus(lines, &StatusConfig{Language: locale.English})
	if len(detected.Requalifications) != 0 {
		t.Errorf("expected no events, got %d", len(detected.Requalifications))
	}
}
