package extract

import (
	"regexp"
	"sort"
	"strings"

	"loyalty-statement-import/internal/locale"
	"loyalty-statement-import/internal/models"
	"loyalty-statement-import/internal/parsers"
	"loyalty-statement-import/pkg/logger"
)

var uxpOnLineRe = regexp.MustCompile(`(?i)(\d+)\s*UXP\b`)

// XPConfig configures a bonus-XP extraction pass.
type XPConfig struct {
	Language locale.Language
	Logger   logger.Logger
}

// ExtractXP collects every experience-point event on the statement into flat
// entries, one per line carrying an XP amount. Segment lines inherit the date
// of the transaction above them.
func ExtractXP(lines []models.TokenizedLine, cfg *XPConfig) []*models.XPEntry {
	if cfg == nil {
		cfg = &XPConfig{Language: locale.English}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	patterns := locale.Get(cfg.Language)
	var entries []*models.XPEntry
	currentDate := ""

	for _, line := range lines {
		if line.Type == models.LineTransaction && line.Date != "" {
			currentDate = line.Date
		}
		if line.Type == models.LineSummary {
			// Balance totals are not events.
			continue
		}

		xm := xpOnLineRe.FindStringSubmatch(line.Text)
		if xm == nil {
			continue
		}
		amount, ok := parsers.ParseInt(xm[1])
		if !ok || amount == 0 {
			continue
		}

		entry := &models.XPEntry{
			Date:        lineDate(line, currentDate),
			Amount:      amount,
			Source:      classifyXPSource(line, patterns),
			Description: strings.TrimSpace(firstOf(line.Content, line.Text)),
		}
		entry.Month = models.MonthOf(entry.Date)

		if um := uxpOnLineRe.FindStringSubmatch(line.Text); um != nil {
			entry.UXPAmount, _ = parsers.ParseInt(um[1])
		}

		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Date > entries[b].Date
	})

	log.WithField("entries", len(entries)).Debug("xp extraction complete")
	return entries
}

func lineDate(line models.TokenizedLine, current string) string {
	if line.Date != "" {
		return line.Date
	}
	return current
}

func firstOf(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// classifyXPSource maps a line to its XP origin: flight segments are always
// "flight", other lines go through the per-language table.
func classifyXPSource(line models.TokenizedLine, patterns *locale.Patterns) models.XPSource {
	if line.Type == models.LineFlightSegment || segmentRe.MatchString(line.Text) {
		return models.XPSourceFlight
	}

	lower := strings.ToLower(line.Text)
	for _, xs := range patterns.XPSources {
		for _, kw := range xs.Keywords {
			if strings.Contains(lower, kw) {
				return xpSourceFor(xs.Category)
			}
		}
	}
	return models.XPSourceOther
}

func xpSourceFor(category locale.XPCategory) models.XPSource {
	switch category {
	case locale.XPSaf:
		return models.XPSourceSaf
	case locale.XPCreditCard:
		return models.XPSourceCreditCard
	case locale.XPHotel:
		return models.XPSourceHotel
	case locale.XPFirstFlight:
		return models.XPSourceFirstFlight
	case locale.XPPromo:
		return models.XPSourcePromo
	default:
		return models.XPSourceOther
	}
}
