package parsers

import (
	"reflect"
	"testing"

	"loyalty-statement-import/internal/locale"
	"loyalty-statement-import/internal/models"
)

const sampleStatement = `JOHN DOE
1234567890
PLATINUM
Miles balance as of 30 nov 2025 248928 Miles 183 XP 40 UXP
30 nov 2025 Trip to Berlin
AMS - BER KL1775 Economy 276 Miles 5 XP 5 UXP
1 dec 2025 Subscription 200 Miles

garbage line without structure`

func TestTokenize_Classification(t *testing.T) {
	result := Tokenize(sampleStatement)

	want := []models.LineType{
		models.LineHeader,        // JOHN DOE
		models.LineHeader,        // member number
		models.LineStatus,        // PLATINUM
		models.LineSummary,       // combined balance line
		models.LineTransaction,   // trip header with leading date
		models.LineFlightSegment, // AMS - BER
		models.LineTransaction,   // subscription line
		models.LineUnknown,       // garbage
	}

	if len(result.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(result.Lines))
	}

	for i, w := range want {
		if result.Lines[i].Type != w {
			t.Errorf("line %d (%q): type = %s, want %s", i, result.Lines[i].Text, result.Lines[i].Type, w)
		}
	}
}

func TestTokenize_TransactionLines(t *testing.T) {
	result := Tokenize(sampleStatement)

	trip := result.Lines[4]
	if !trip.StartsTransaction {
		t.Error("trip header line should start a transaction")
	}
	if trip.Date != "2025-11-30" {
		t.Errorf("trip date = %s, want 2025-11-30", trip.Date)
	}
	if trip.Content != "Trip to Berlin" {
		t.Errorf("trip content = %q, want \"Trip to Berlin\"", trip.Content)
	}

	sub := result.Lines[6]
	if sub.Date != "2025-12-01" {
		t.Errorf("subscription date = %s, want 2025-12-01", sub.Date)
	}
}

func TestTokenize_DropsEmptyLines(t *testing.T) {
	result := Tokenize("\n\n  \nPLATINUM\n\n")
	if len(result.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(result.Lines))
	}
	if result.Lines[0].LineNumber != 0 {
		t.Errorf("line number = %d, want 0", result.Lines[0].LineNumber)
	}
}

func TestTokenize_LanguageDetection(t *testing.T) {
	dutch := `Uw vlucht naar Berlijn
30 nov 2025 Reis naar Berlijn
Saldo: 1.000 Miles verdiend, overzicht van uw miles`

	result := Tokenize(dutch)
	if result.Language != locale.Dutch {
		t.Errorf("language = %s, want nl", result.Language)
	}
}

// Tokenization must be a pure function of the input text.
func TestTokenize_Deterministic(t *testing.T) {
	first := Tokenize(sampleStatement)
	for i := 0; i < 5; i++ {
		again := Tokenize(sampleStatement)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("tokenization not deterministic")
		}
	}
}

func TestTokenize_DatedCompositeIsTransaction(t *testing.T) {
	// An earning line with both a date and a "Miles ... XP" composite must
	// stay a transaction; only label-led lines are summaries.
	result := Tokenize("5 dec 2025 American Express card 150 Miles 3 XP")
	line := result.Lines[0]
	if line.Type != models.LineTransaction {
		t.Fatalf("type = %s, want transaction", line.Type)
	}
	if line.Date != "2025-12-05" {
		t.Errorf("date = %s, want 2025-12-05", line.Date)
	}

	result = Tokenize("1 dec 2025 Total Miles balance 248928")
	if result.Lines[0].Type != models.LineSummary {
		t.Errorf("dated balance label classified as %s, want summary", result.Lines[0].Type)
	}
}

func TestTokenize_StatusNotHeader(t *testing.T) {
	// Status words are all-caps too; they must win over the header pattern.
	result := Tokenize("GOLD")
	if result.Lines[0].Type != models.LineStatus {
		t.Errorf("GOLD classified as %s, want status", result.Lines[0].Type)
	}
}
