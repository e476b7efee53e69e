package parsers

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a numeric token whose thousands/decimal separators are
// ambiguous across locales: "1.234,56", "1,234.56", "1 234,56", "248.928",
// "248,928" and plain "248928" are all accepted.
//
// Disambiguation rules, in order:
//   - when both '.' and ',' occur, the one appearing last is the decimal mark
//   - a separator occurring more than once is a thousands separator
//   - a single separator followed by exactly three digits groups thousands
//     (loyalty statements print integer miles as "248.928")
//   - otherwise the single separator is the decimal mark
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	// Currency symbols and space-style grouping never carry meaning here.
	for _, sym := range []string{"€", "£", "$", "zł", "kr", "CHF", " ", " "} {
		s = strings.ReplaceAll(s, sym, "")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if s == "" {
		return decimal.Zero, false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			// 1,234.56 - comma groups, dot is decimal
			s = strings.ReplaceAll(s, ",", "")
		} else {
			// 1.234,56 - dot groups, comma is decimal
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastComma >= 0:
		s = resolveSingleSeparator(s, ",")
	case lastDot >= 0:
		s = resolveSingleSeparator(s, ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// resolveSingleSeparator decides whether the only separator present groups
// thousands or marks decimals, and normalizes to a '.' decimal mark.
func resolveSingleSeparator(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}

	idx := strings.LastIndex(s, sep)
	digitsAfter := len(s) - idx - 1

	if digitsAfter == 3 && idx > 0 {
		// "1.234" / "1,234": thousands grouping.
		return strings.ReplaceAll(s, sep, "")
	}
	return strings.Replace(s, sep, ".", 1)
}

// ParseInt parses an integer quantity (miles, XP) through the same separator
// disambiguation, truncating any fractional part.
func ParseInt(s string) (int, bool) {
	d, ok := ParseAmount(s)
	if !ok {
		return 0, false
	}
	return int(d.IntPart()), true
}
