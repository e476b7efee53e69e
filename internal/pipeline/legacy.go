package pipeline

import (
	"strings"
	"unicode"

	"loyalty-statement-import/internal/models"
	"loyalty-statement-import/internal/parsers"
)

// LegacyMonth is the simplified monthly breakdown of the legacy surface.
type LegacyMonth struct {
	Month       string `json:"month"`
	FlightMiles int    `json:"flightMiles"`
	OtherMiles  int    `json:"otherMiles"`
	Debit       int    `json:"debit"`
	XP          int    `json:"xp"`
}

// LegacyResult is the flattened shape older callers consume. It is derived
// from the same pipeline as ImportResult and equivalent in substance.
type LegacyResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	MemberName   string `json:"memberName,omitempty"`
	MemberNumber string `json:"memberNumber,omitempty"`

	Flights []*models.ParsedFlight `json:"flights"`
	Miles   []LegacyMonth          `json:"miles"`

	Status     models.Status `json:"status,omitempty"`
	TotalXP    int           `json:"totalXP"`
	TotalUXP   int           `json:"totalUXP"`
	TotalMiles int           `json:"totalMiles"`

	Requalifications []models.LevelChangeEvent `json:"requalifications"`
}

// ParseStatementLegacy is the drop-in adapter for the pre-pipeline callers.
func ParseStatementLegacy(text string, opts *Options) *LegacyResult {
	parsed := ParseStatement(text, opts)
	if !parsed.Success {
		return &LegacyResult{
			Success: false,
			Error:   parsed.Error,
			Flights: []*models.ParsedFlight{},
			Miles:   []LegacyMonth{},
		}
	}

	legacy := &LegacyResult{
		Success:    true,
		Flights:    parsed.Flights,
		Miles:      make([]LegacyMonth, 0, len(parsed.Miles)),
		TotalXP:    parsed.XPTotals.Official,
		TotalUXP:   parsed.UXPTotals.Official,
		TotalMiles: parsed.OfficialMilesBalance,
	}

	for _, m := range parsed.Miles {
		legacy.Miles = append(legacy.Miles, LegacyMonth{
			Month:       m.Month,
			FlightMiles: m.Sources.Flights.Miles,
			OtherMiles:  m.TotalEarned,
			Debit:       m.Debit,
			XP:          m.TotalXP,
		})
	}

	if parsed.Status != nil {
		legacy.Status = parsed.Status.CurrentStatus
		legacy.Requalifications = parsed.Status.Requalifications
	}

	legacy.MemberName, legacy.MemberNumber = memberHeader(text)
	return legacy
}

// memberHeader pulls the member's name and number off the statement header:
// the first all-caps header line and the first all-digit header line.
func memberHeader(text string) (name, number string) {
	tokens := parsers.Tokenize(text)

	for _, line := range tokens.Lines {
		if line.Type != models.LineHeader {
			continue
		}

		if isAllDigits(line.Text) {
			if number == "" {
				number = line.Text
			}
		} else if name == "" {
			name = strings.TrimSpace(line.Text)
		}

		if name != "" && number != "" {
			break
		}
	}

	return name, number
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
