package parsers

import (
	"testing"

	"loyalty-statement-import/internal/locale"
)

// All four layouts of the same date must normalize to one ISO form.
func TestParseDate_RoundTrip(t *testing.T) {
	inputs := []struct {
		fragment string
		lang     locale.Language
	}{
		{"2025-11-30", locale.English},
		{"30/11/2025", locale.English},
		{"30.11.2025", locale.German},
		{"30 nov 2025", locale.Dutch},
	}

	for _, in := range inputs {
		got, ok := ParseDate(in.fragment, in.lang)
		if !ok {
			t.Errorf("ParseDate(%q) failed", in.fragment)
			continue
		}
		if got != "2025-11-30" {
			t.Errorf("ParseDate(%q) = %s, want 2025-11-30", in.fragment, got)
		}
	}
}

func TestParseDate_NumericDisambiguation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"13/05/2025", "2025-05-13"}, // 13 > 12, must be the day
		{"05/13/2025", "2025-05-13"}, // 13 > 12 in second position
		{"03/05/2025", "2025-05-03"}, // ambiguous: day-first default
		{"2025/03/05", "2025-03-05"}, // 4-digit first: ISO ordering
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.in, locale.English)
		if !ok || got != tt.want {
			t.Errorf("ParseDate(%q) = (%s, %v), want %s", tt.in, got, ok, tt.want)
		}
	}
}

func TestParseDate_TextMonthFallback(t *testing.T) {
	// "mrt" only exists in the Dutch table, but any active language must
	// still resolve it via the cross-table fallback.
	got, ok := ParseDate("15 mrt 2024", locale.English)
	if !ok || got != "2024-03-15" {
		t.Errorf("ParseDate(15 mrt 2024) = (%s, %v), want 2024-03-15", got, ok)
	}

	// Month-first English form.
	got, ok = ParseDate("Nov 30, 2025", locale.English)
	if !ok || got != "2025-11-30" {
		t.Errorf("ParseDate(Nov 30, 2025) = (%s, %v), want 2025-11-30", got, ok)
	}
}

func TestParseDate_Rejections(t *testing.T) {
	rejects := []string{
		"",
		"30 nov",       // no year
		"nov 2025",     // no day
		"32/01/2025",   // day out of range
		"30/13/2025",   // both numbers >12, month invalid
		"15 mrt 1999",  // year below accepted range
		"some words",
	}

	for _, in := range rejects {
		if got, ok := ParseDate(in, locale.Dutch); ok {
			t.Errorf("ParseDate(%q) = %s, expected rejection", in, got)
		}
	}
}

func TestStripLeadingDate(t *testing.T) {
	iso, rest, ok := StripLeadingDate("30 nov 2025 Trip to Berlin", locale.Dutch)
	if !ok || iso != "2025-11-30" || rest != "Trip to Berlin" {
		t.Errorf("StripLeadingDate = (%s, %q, %v)", iso, rest, ok)
	}

	iso, rest, ok = StripLeadingDate("2025-12-01: Subscription 200 Miles", locale.English)
	if !ok || iso != "2025-12-01" || rest != "Subscription 200 Miles" {
		t.Errorf("StripLeadingDate = (%s, %q, %v)", iso, rest, ok)
	}

	if _, _, ok := StripLeadingDate("Subscription 200 Miles", locale.English); ok {
		t.Error("expected no leading date")
	}
}

func TestFindDate(t *testing.T) {
	iso, ok := FindDate("flown on 1 dec 2025", locale.English)
	if !ok || iso != "2025-12-01" {
		t.Errorf("FindDate = (%s, %v), want 2025-12-01", iso, ok)
	}

	if _, ok := FindDate("no date in here", locale.English); ok {
		t.Error("expected no date found")
	}
}

func TestParseDate_Deterministic(t *testing.T) {
	first, _ := ParseDate("30 nov 2025", locale.Dutch)
	for i := 0; i < 5; i++ {
		got, _ := ParseDate("30 nov 2025", locale.Dutch)
		if got != first {
			t.Fatal("date parsing not deterministic")
		}
	}
}
