package extract

import (
	"regexp"
	"strings"

	"loyalty-statement-import/internal/locale"
	"loyalty-statement-import/internal/models"
	"loyalty-statement-import/internal/parsers"
	"loyalty-statement-import/pkg/logger"
)

var numberAfterLabelRe = regexp.MustCompile(`-?[\d][\d.,\s]*\d|\d`)

// BalanceConfig configures official-balance extraction.
type BalanceConfig struct {
	Language locale.Language
	Logger   logger.Logger
}

// BalanceResult is the extracted official balance plus how trustworthy the
// extraction is. The combined summary pattern yields full confidence; the
// per-label fallback accumulates partial confidence per field found.
type BalanceResult struct {
	Balances   models.OfficialBalances
	Confidence float64
}

// ExtractBalances finds the authoritative totals printed on the statement.
func ExtractBalances(lines []models.TokenizedLine, cfg *BalanceConfig) *BalanceResult {
	if cfg == nil {
		cfg = &BalanceConfig{Language: locale.English}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	// A summary line with the full "<n> Miles <n> XP [<n> UXP]" composite is
	// authoritative on its own.
	for _, line := range lines {
		if line.Type != models.LineSummary {
			continue
		}
		m := parsers.CombinedBalanceRe.FindStringSubmatch(line.Text)
		if m == nil {
			continue
		}

		miles, _ := parsers.ParseInt(strings.TrimSpace(m[1]))
		xp, _ := parsers.ParseInt(m[2])
		uxp := 0
		if m[3] != "" {
			uxp, _ = parsers.ParseInt(m[3])
		}

		log.WithField("line", line.LineNumber).Debug("combined balance pattern matched")
		return &BalanceResult{
			Balances:   models.OfficialBalances{Miles: miles, XP: xp, UXP: uxp},
			Confidence: 1.0,
		}
	}

	return labelFallback(lines, locale.Get(cfg.Language), log)
}

// labelFallback scans for per-language balance labels and takes the first
// number after each. Every field found adds to the confidence score.
func labelFallback(lines []models.TokenizedLine, patterns *locale.Patterns, log logger.Logger) *BalanceResult {
	result := &BalanceResult{}
	foundMiles, foundXP, foundUXP := false, false, false

	for _, line := range lines {
		lower := strings.ToLower(line.Text)

		if !foundMiles {
			if v, ok := labeledNumber(line.Text, lower, patterns.Balance.Miles); ok {
				result.Balances.Miles = v
				result.Confidence += 0.4
				foundMiles = true
			}
		}
		// UXP labels contain the XP labels as substrings, so they are checked
		// first and the plain XP match skips lines that carry a UXP label.
		if !foundUXP {
			if v, ok := labeledNumber(line.Text, lower, patterns.Balance.UXP); ok {
				result.Balances.UXP = v
				result.Confidence += 0.3
				foundUXP = true
				continue
			}
		}
		if !foundXP {
			if v, ok := labeledNumber(line.Text, lower, patterns.Balance.XP); ok {
				result.Balances.XP = v
				result.Confidence += 0.3
				foundXP = true
			}
		}
	}

	if result.Confidence > 1.0 {
		result.Confidence = 1.0
	}
	if result.Confidence == 0 {
		log.Warn("no official balances found on statement")
	}
	return result
}

func labeledNumber(text, lower string, labels []string) (int, bool) {
	for _, label := range labels {
		idx := strings.Index(lower, label)
		if idx < 0 {
			continue
		}
		tail := text[idx+len(label):]
		m := numberAfterLabelRe.FindString(tail)
		if m == "" {
			continue
		}
		if v, ok := parsers.ParseInt(strings.TrimSpace(m)); ok {
			return v, true
		}
	}
	return 0, false
}
