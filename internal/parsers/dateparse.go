package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"loyalty-statement-import/internal/locale"
)

// Statement exports print dates in numeric layouts with '-', '/' or '.'
// separators, and in text-month layouts in any of the supported languages.
var (
	numericDateRe = regexp.MustCompile(`^(\d{1,4})[-/.](\d{1,2})[-/.](\d{1,4})$`)

	// Leading-date forms used by StripLeadingDate. The text form covers
	// "30 nov 2025" and "30 november 2025"; month-first covers "Nov 30, 2025".
	leadingNumericRe   = regexp.MustCompile(`^(\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4})\b[\s:,–-]*(.*)$`)
	leadingTextRe      = regexp.MustCompile(`^(\d{1,2}\.?\s+\p{L}+\.?,?\s+\d{4})\b[\s:,–-]*(.*)$`)
	leadingMonthFirstRe = regexp.MustCompile(`^(\p{L}+\.?\s+\d{1,2},?\s+\d{4})\b[\s:,–-]*(.*)$`)

	dateTokenSplit = regexp.MustCompile(`[\s,.]+`)
)

// ParseDate parses a date fragment into an ISO YYYY-MM-DD string.
//
// Numeric A-B-C layouts: a 4-digit A is treated as an ISO year-month-day;
// otherwise a 4-digit C is the year and day vs month is decided by the rule
// "whichever number exceeds 12 is the day", defaulting to day-first ordering
// when both fit. The day-first default is a known heuristic limitation for
// US-formatted exports and is deliberately left as is.
//
// Text-month layouts match one token against the active language's month
// table, falling back across all supported tables; a 4-digit token in
// [2000,2100] is the year, any other token in [1,31] is the day.
func ParseDate(fragment string, lang locale.Language) (string, bool) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return "", false
	}

	if m := numericDateRe.FindStringSubmatch(fragment); m != nil {
		return parseNumericDate(m[1], m[2], m[3])
	}

	return parseTextDate(fragment, lang)
}

func parseNumericDate(a, b, c string) (string, bool) {
	na, _ := strconv.Atoi(a)
	nb, _ := strconv.Atoi(b)
	nc, _ := strconv.Atoi(c)

	var year, month, day int

	switch {
	case len(a) == 4:
		// ISO year-month-day
		year, month, day = na, nb, nc
	case len(c) == 4:
		year = nc
		switch {
		case na > 12 && nb <= 12:
			day, month = na, nb
		case nb > 12 && na <= 12:
			day, month = nb, na
		default:
			// Ambiguous: default to European day-first ordering.
			day, month = na, nb
		}
	default:
		return "", false
	}

	return formatISO(year, month, day)
}

func parseTextDate(fragment string, lang locale.Language) (string, bool) {
	tokens := dateTokenSplit.Split(fragment, -1)

	var year, month, day int
	active := locale.Get(lang)

	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,")
		if tok == "" {
			continue
		}

		if n, err := strconv.Atoi(tok); err == nil {
			switch {
			case len(tok) == 4 && n >= 2000 && n <= 2100:
				year = n
			case n >= 1 && n <= 31 && day == 0:
				day = n
			}
			continue
		}

		if month == 0 {
			if m, ok := active.MonthNumber(tok); ok {
				month = m
			} else if m, ok := locale.MonthNumberAny(tok); ok {
				month = m
			}
		}
	}

	if year == 0 || month == 0 || day == 0 {
		return "", false
	}
	return formatISO(year, month, day)
}

// formatISO validates ranges and renders the canonical ISO form. Output is
// rejected unless day, month and year all pass validation.
func formatISO(year, month, day int) (string, bool) {
	if year < 2000 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// StripLeadingDate attempts to remove a date from the front of a line,
// returning the ISO date and the remaining content. Used by the tokenizer to
// mark transaction starts.
func StripLeadingDate(line string, lang locale.Language) (iso, rest string, ok bool) {
	line = strings.TrimSpace(line)

	for _, re := range []*regexp.Regexp{leadingNumericRe, leadingTextRe, leadingMonthFirstRe} {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if iso, ok := ParseDate(m[1], lang); ok {
			return iso, strings.TrimSpace(m[2]), true
		}
	}

	return "", line, false
}

// FindDate scans a line for the first parseable date anywhere in it. Used by
// the flight extractor for "flown on <date>" continuation lines.
func FindDate(line string, lang locale.Language) (string, bool) {
	if iso, _, ok := StripLeadingDate(line, lang); ok {
		return iso, true
	}

	words := strings.Fields(line)
	for i := range words {
		// Try windows of up to four tokens starting at each word.
		for w := 4; w >= 1; w-- {
			if i+w > len(words) {
				continue
			}
			candidate := strings.Join(words[i:i+w], " ")
			candidate = strings.Trim(candidate, ".,:;")
			if iso, ok := ParseDate(candidate, lang); ok {
				return iso, true
			}
		}
	}
	return "", false
}
