// Package parsers contains the leaf text parsers of the import pipeline:
// ambiguous-separator numbers, multi-locale dates, and the line tokenizer
// that classifies raw statement text.
package parsers

import (
	"regexp"
	"strings"

	"loyalty-statement-import/internal/locale"
	"loyalty-statement-import/internal/models"
)

var (
	// "AMS - BER ..." airport-pair prefix.
	segmentPrefixRe = regexp.MustCompile(`^[A-Z]{3}\s*-\s*[A-Z]{3}\b`)

	// "<miles> Miles <xp> XP [<uxp> UXP]" composite summary.
	CombinedBalanceRe = regexp.MustCompile(`(?i)([\d][\d.,\s]*)\s*Miles\s+(\d+)\s*XP(?:\s+(\d+)\s*UXP)?`)

	memberNumberRe = regexp.MustCompile(`^\d{6,12}$`)
	allCapsNameRe  = regexp.MustCompile(`^[A-ZÀ-Þ][A-ZÀ-Þ\s.'-]{2,}$`)

	totalKeywords = []string{"total", "totaal", "totale", "gesamt", "totaux"}
)

// TokenizeResult is the output of one tokenization pass.
type TokenizeResult struct {
	Lines    []models.TokenizedLine
	Language locale.Language
}

// Tokenize splits raw page-joined statement text into classified lines and
// detects the statement language.
//
// Tokenization is a pure function of the input text: identical input always
// yields identical output.
func Tokenize(text string) *TokenizeResult {
	lang := locale.DetectLanguage(text)
	patterns := locale.Get(lang)

	raw := strings.Split(text, "\n")
	lines := make([]models.TokenizedLine, 0, len(raw))

	n := 0
	for _, r := range raw {
		trimmed := strings.TrimSpace(r)
		if trimmed == "" {
			continue
		}
		lines = append(lines, classifyLine(trimmed, n, lang, patterns))
		n++
	}

	return &TokenizeResult{Lines: lines, Language: lang}
}

func classifyLine(text string, lineNumber int, lang locale.Language, patterns *locale.Patterns) models.TokenizedLine {
	line := models.TokenizedLine{Text: text, LineNumber: lineNumber, Type: models.LineUnknown}

	// Status lines are an exact tier name and nothing else.
	if _, ok := models.ParseStatus(text); ok {
		line.Type = models.LineStatus
		return line
	}

	// Airport-pair prefix marks a flight segment.
	if segmentPrefixRe.MatchString(text) {
		line.Type = models.LineFlightSegment
		return line
	}

	// Header lines: a bare member number, or an all-caps name that is not a
	// status word (those were consumed above).
	if memberNumberRe.MatchString(text) || allCapsNameRe.MatchString(text) {
		line.Type = models.LineHeader
		return line
	}

	// Date-led lines are transactions, unless the remainder is a balance or
	// total label. The transaction check runs before the summary check so a
	// dated earning line carrying a "<n> Miles <n> XP" composite is not
	// mistaken for a balance summary.
	if iso, rest, ok := StripLeadingDate(text, lang); ok && !isBalanceKeywordLine(rest, patterns) {
		line.Type = models.LineTransaction
		line.StartsTransaction = true
		line.Date = iso
		line.Content = rest
		return line
	}

	// Summary lines: the composite balance pattern, or a total/balance label.
	if CombinedBalanceRe.MatchString(text) || isBalanceKeywordLine(text, patterns) {
		line.Type = models.LineSummary
		return line
	}

	return line
}

func isBalanceKeywordLine(text string, patterns *locale.Patterns) bool {
	lower := strings.ToLower(text)

	for _, kw := range totalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, labels := range [][]string{patterns.Balance.Miles, patterns.Balance.XP, patterns.Balance.UXP} {
		for _, label := range labels {
			if strings.Contains(lower, label) {
				return true
			}
		}
	}
	return false
}
