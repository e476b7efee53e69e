// Package extract contains the facet extractors that walk tokenized
// statement lines independently: flights, monthly miles, bonus XP, official
// balances, and status/cycle detection, plus the rollover calculator.
//
// Extractors share no mutable state; each consumes the tokenized lines (or
// their raw text) and produces one facet of the parse result. Failures are
// soft: an unparseable line is skipped and at most logged, never an error.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"loyalty-statement-import/internal/locale"
	"loyalty-statement-import/internal/models"
	"loyalty-statement-import/internal/parsers"
	"loyalty-statement-import/pkg/logger"
)

var (
	segmentRe      = regexp.MustCompile(`^([A-Z]{3})\s*-\s*([A-Z]{3})\b\s*(.*)$`)
	flightNumberRe = regexp.MustCompile(`\b([A-Z]{2})\s?(\d{2,4})\b`)
	xpOnLineRe     = regexp.MustCompile(`(?i)(\d+)\s*XP\b`)

	// Continuation markers that refine a segment's date ("flown on 1 dec
	// 2025", "gevlogen op ...", "le ...").
	onDatePrefixRe = regexp.MustCompile(`(?i)^(flown on|on|gevlogen op|op|le|am|el|em|il)\b`)
)

// partnerAirlines maps partner carrier name substrings to airline codes, for
// segment lines that carry no flight number.
var partnerAirlines = []struct {
	substr string
	code   string
}{
	{"delta", "DL"},
	{"kenya airways", "KQ"},
	{"virgin atlantic", "VS"},
	{"air europa", "UX"},
	{"china eastern", "MU"},
	{"vietnam airlines", "VN"},
	{"etihad", "EY"},
	{"air mauritius", "MK"},
	{"copa", "CM"},
	{"tarom", "RO"},
	{"aircalin", "SB"},
	{"sas", "SK"},
	{"gol", "G3"},
}

// lookaheadWindow limits how far numbers, dates and SAF lines are collected
// past a segment line before a new transaction boundary ends the search.
const lookaheadWindow = 4

// FlightConfig configures a flight extraction pass.
type FlightConfig struct {
	Language locale.Language

	// Existing flights, used to flag exact duplicates (same date and route)
	// during extraction.
	Existing []*models.Flight

	Logger logger.Logger
}

// trip accumulates the state of one multi-segment trip while the extractor
// walks forward. Keeping it explicit makes the stop condition testable in
// isolation.
type trip struct {
	headerDate   string
	segments     []*models.ParsedFlight
	pendingSafXP int
}

// ExtractFlights assembles multi-segment trips into discrete flight records.
// The result is sorted newest-first.
func ExtractFlights(lines []models.TokenizedLine, cfg *FlightConfig) []*models.ParsedFlight {
	if cfg == nil {
		cfg = &FlightConfig{Language: locale.English}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	patterns := locale.Get(cfg.Language)
	var flights []*models.ParsedFlight

	i := 0
	for i < len(lines) {
		headerDate, ok := tripHeaderDate(lines[i].Text, cfg.Language, patterns)
		if !ok {
			i++
			continue
		}

		t := &trip{headerDate: headerDate}
		next := collectTrip(lines, i+1, t, cfg.Language, patterns)
		flights = append(flights, flushTrip(t, cfg, log)...)
		i = next
	}

	sort.SliceStable(flights, func(a, b int) bool {
		return flights[a].Date > flights[b].Date
	})

	log.WithField("flights", len(flights)).Debug("flight extraction complete")
	return flights
}

// tripHeaderDate reports whether a line opens a trip: it must strip a leading
// date and its remaining content must contain a trip-header phrase for the
// detected language.
func tripHeaderDate(text string, lang locale.Language, patterns *locale.Patterns) (string, bool) {
	iso, rest, ok := parsers.StripLeadingDate(text, lang)
	if !ok {
		return "", false
	}

	lower := strings.ToLower(rest)
	for _, phrase := range patterns.TripHeaders {
		if strings.Contains(lower, phrase) {
			return iso, true
		}
	}
	return "", false
}

// collectTrip walks forward from index i gathering the trip's segments and
// SAF bonuses. It returns the index of the first line that belongs to the
// next transaction.
func collectTrip(lines []models.TokenizedLine, i int, t *trip, lang locale.Language, patterns *locale.Patterns) int {
	for i < len(lines) {
		text := lines[i].Text

		if seg, ok := parseSegment(text, lines, i, lang); ok {
			seg.Date = t.headerDate
			if refined, ok := continuationDate(lines, i+1, lang); ok {
				seg.Date = refined
			}
			t.segments = append(t.segments, seg)
			i++
			continue
		}

		if xp, ok := safBonusXP(text, patterns); ok {
			t.pendingSafXP += xp
			i++
			continue
		}

		// A dated line that is not itself a continuation ends the trip.
		if startsNewTransaction(text, lang) && !isContinuation(text, lang, patterns) {
			return i
		}

		i++
	}
	return i
}

// parseSegment turns an airport-pair line into a ParsedFlight. Earned
// numbers come from the segment line itself or, when absent, from the next
// few lines up to the next segment/transaction boundary.
func parseSegment(text string, lines []models.TokenizedLine, idx int, lang locale.Language) (*models.ParsedFlight, bool) {
	m := segmentRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	flight := &models.ParsedFlight{
		Route:  m[1] + "-" + m[2],
		Status: models.RecordNew,
	}

	rest := m[3]
	if fn := flightNumberRe.FindStringSubmatch(rest); fn != nil {
		flight.Airline = fn[1]
		flight.FlightNumber = fn[1] + fn[2]
	} else {
		// Partner-airline variant without a flight number.
		lower := strings.ToLower(rest)
		for _, p := range partnerAirlines {
			if strings.Contains(lower, p.substr) {
				flight.Airline = p.code
				break
			}
		}
	}
	flight.IsPartnerFlight = flight.Airline != "" && !models.IsQualifyingCarrier(flight.Airline)

	miles, xp, uxp, found := earnedNumbers(text)
	if !found || (miles == 0 && xp == 0) {
		// Numbers may trail on one of the next few lines.
		for j := idx + 1; j <= idx+lookaheadWindow && j < len(lines); j++ {
			next := lines[j].Text
			if segmentRe.MatchString(next) || startsNewTransaction(next, lang) {
				break
			}
			if m2, x2, u2, ok := earnedNumbers(next); ok {
				miles, xp, uxp = m2, x2, u2
				break
			}
		}
	}

	flight.EarnedMiles = miles
	flight.EarnedXP = xp
	flight.UXP = uxp
	flight.NormalizeUXP()
	return flight, true
}

// earnedNumbers pulls the "<miles> Miles <xp> XP [<uxp> UXP]" composite off
// a line.
func earnedNumbers(text string) (miles, xp, uxp int, ok bool) {
	m := parsers.CombinedBalanceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, 0, false
	}

	miles, _ = parsers.ParseInt(strings.TrimSpace(m[1]))
	xp, _ = parsers.ParseInt(m[2])
	if m[3] != "" {
		uxp, _ = parsers.ParseInt(m[3])
	}
	return miles, xp, uxp, true
}

// continuationDate looks for a "flown on <date>" marker within the next few
// lines, stopping at segment or transaction boundaries.
func continuationDate(lines []models.TokenizedLine, from int, lang locale.Language) (string, bool) {
	for j := from; j < from+lookaheadWindow && j < len(lines); j++ {
		text := lines[j].Text
		if segmentRe.MatchString(text) {
			return "", false
		}
		if onDatePrefixRe.MatchString(text) {
			if iso, ok := parsers.FindDate(text, lang); ok {
				return iso, true
			}
		}
		if startsNewTransaction(text, lang) {
			return "", false
		}
	}
	return "", false
}

// safBonusXP recognizes sustainable-fuel-bonus lines and returns their XP.
func safBonusXP(text string, patterns *locale.Patterns) (int, bool) {
	lower := strings.ToLower(text)

	matched := false
	for _, xs := range patterns.XPSources {
		if xs.Category != locale.XPSaf {
			continue
		}
		for _, kw := range xs.Keywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
	}
	if !matched {
		return 0, false
	}

	m := xpOnLineRe.FindStringSubmatch(text)
	if m == nil {
		return 0, true
	}
	xp, _ := parsers.ParseInt(m[1])
	return xp, true
}

func startsNewTransaction(text string, lang locale.Language) bool {
	_, _, ok := parsers.StripLeadingDate(text, lang)
	return ok
}

func isContinuation(text string, lang locale.Language, patterns *locale.Patterns) bool {
	if segmentRe.MatchString(text) {
		return true
	}
	if onDatePrefixRe.MatchString(text) {
		if _, ok := parsers.FindDate(text, lang); ok {
			return true
		}
	}
	_, isSaf := safBonusXP(text, patterns)
	return isSaf
}

// flushTrip finalizes the accumulated trip: the pending SAF bonus is
// attributed entirely to the first segment (a documented simplification for
// multi-segment trips), IDs are assigned, and exact duplicates against the
// caller's existing flights are flagged.
func flushTrip(t *trip, cfg *FlightConfig, log logger.Logger) []*models.ParsedFlight {
	if len(t.segments) == 0 {
		if t.pendingSafXP > 0 {
			log.WithField("saf_xp", t.pendingSafXP).Warn("SAF bonus found outside any segment, dropped")
		}
		return nil
	}

	if t.pendingSafXP > 0 {
		first := t.segments[0]
		first.SafXP = t.pendingSafXP
		first.NormalizeUXP()
	}

	for n, seg := range t.segments {
		seg.ID = flightID(seg, n)
		if isExactDuplicate(seg, cfg.Existing) {
			seg.Status = models.RecordDuplicate
		}
	}
	return t.segments
}

// flightID builds a deterministic identifier so repeated parses of the same
// text yield identical results.
func flightID(f *models.ParsedFlight, n int) string {
	if f.FlightNumber != "" {
		return fmt.Sprintf("pf-%s-%s-%s", f.Date, f.Route, f.FlightNumber)
	}
	return fmt.Sprintf("pf-%s-%s-%d", f.Date, f.Route, n)
}

// isExactDuplicate applies the extraction-time duplicate rule: same date and
// same route as an existing record.
func isExactDuplicate(f *models.ParsedFlight, existing []*models.Flight) bool {
	for _, e := range existing {
		if e.Date == f.Date && e.Route == f.Route {
			return true
		}
	}
	return false
}
