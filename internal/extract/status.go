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

// universalRequalRes match level-change announcements regardless of language,
// as a safety net under the per-language phrase tables.
var universalRequalRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)requalif`),
	regexp.MustCompile(`(?i)herkwalific|requalifiz|riqualific|recalific`),
	regexp.MustCompile(`(?i)\b(new|nieuw|nouveau|neuer|nuevo|novo|nuovo)\w*\s+(level|status|niveau)\b`),
}

// StatusConfig configures status and cycle detection.
type StatusConfig struct {
	Language locale.Language
	Logger   logger.Logger
}

// DetectStatus reads the member's current tier and reconstructs level-change
// events from requalification announcements. Each event's cycle start is the
// month after the event date.
func DetectStatus(lines []models.TokenizedLine, cfg *StatusConfig) *models.DetectedStatus {
	if cfg == nil {
		cfg = &StatusConfig{Language: locale.English}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	patterns := locale.Get(cfg.Language)
	detected := &models.DetectedStatus{}

	for _, line := range lines {
		if line.Type == models.LineStatus && detected.CurrentStatus == "" {
			if st, ok := models.ParseStatus(line.Text); ok {
				detected.CurrentStatus = st
			}
			continue
		}

		if !isRequalLine(line.Text, patterns) {
			continue
		}

		event, ok := buildLevelChange(line, cfg.Language, log)
		if !ok {
			continue
		}
		detected.Requalifications = append(detected.Requalifications, event)
	}

	sort.SliceStable(detected.Requalifications, func(a, b int) bool {
		return detected.Requalifications[a].Date < detected.Requalifications[b].Date
	})

	if n := len(detected.Requalifications); n > 0 {
		latest := detected.Requalifications[n-1]
		detected.CycleStartMonth = latest.CycleStartMonth
		detected.CycleStartDate = latest.CycleStartDate
		if detected.CurrentStatus == "" {
			detected.CurrentStatus = latest.NewStatus
		}
	}

	log.WithFields(map[string]interface{}{
		"status": detected.CurrentStatus,
		"events": len(detected.Requalifications),
	}).Debug("status detection complete")
	return detected
}

func isRequalLine(text string, patterns *locale.Patterns) bool {
	lower := strings.ToLower(text)
	for _, phrase := range patterns.Requalification {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, re := range universalRequalRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// buildLevelChange assembles one event from an announcement line. The line
// must name a tier and carry a date; the XP deduction is the negated
// threshold of the reached tier.
func buildLevelChange(line models.TokenizedLine, lang locale.Language, log logger.Logger) (models.LevelChangeEvent, bool) {
	status, ok := statusInText(line.Text)
	if !ok {
		log.WithField("line", line.LineNumber).Debug("requalification line names no tier, skipped")
		return models.LevelChangeEvent{}, false
	}

	date := line.Date
	if date == "" {
		date, ok = parsers.FindDate(line.Text, lang)
		if !ok {
			log.WithField("line", line.LineNumber).Debug("requalification line carries no date, skipped")
			return models.LevelChangeEvent{}, false
		}
	}

	startMonth, err := models.MonthAfter(date)
	if err != nil {
		return models.LevelChangeEvent{}, false
	}

	return models.LevelChangeEvent{
		Date:            date,
		NewStatus:       status,
		XPDeducted:      -models.XPThreshold(status),
		CycleEndDate:    date,
		CycleStartDate:  cycleStartInText(line.Text, date, lang),
		CycleStartMonth: startMonth,
	}, true
}

// cycleStartInText returns the cycle-start date some statements print on the
// announcement line itself ("your new cycle starts on 1 apr 2025"), kept raw
// as printed. Empty when the line carries no second date.
func cycleStartInText(text, eventDate string, lang locale.Language) string {
	words := strings.Fields(text)
	// Smallest window first, so the returned fragment is the date alone and
	// not the surrounding words.
	for w := 1; w <= 4; w++ {
		for i := 0; i+w <= len(words); i++ {
			raw := strings.Trim(strings.Join(words[i:i+w], " "), ".,:;")
			if iso, ok := parsers.ParseDate(raw, lang); ok && iso != eventDate {
				return raw
			}
		}
	}
	return ""
}

func statusInText(text string) (models.Status, bool) {
	lower := strings.ToLower(text)
	// Scan the ladder top-down so "Platinum" is never shadowed by a shorter
	// tier name appearing in the same sentence.
	for i := len(models.StatusLadder) - 1; i >= 0; i-- {
		st := models.StatusLadder[i]
		if strings.Contains(lower, strings.ToLower(string(st))) {
			return st, true
		}
	}
	return "", false
}
