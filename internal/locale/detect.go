package locale

import (
	"regexp"
	"strings"
)

var wordSplit = regexp.MustCompile(`[^\p{L}\p{N}+-]+`)

// DetectLanguage scores the statement text against every supported
// language's keyword list and distinguishing month abbreviations. The
// highest score wins; ties (including no signal at all) resolve to English.
//
// Detection is a pure function of the input text.
func DetectLanguage(text string) Language {
	words := wordSplit.Split(strings.ToLower(text), -1)

	counts := make(map[string]int, len(words))
	for _, w := range words {
		if w != "" {
			counts[w]++
		}
	}

	best := English
	bestScore := 0

	for _, lang := range Supported {
		p := banks[lang]
		score := 0

		for _, kw := range p.Keywords {
			// Multi-word keywords are matched as substrings; single words
			// against the word counts to avoid partial hits.
			if strings.ContainsRune(kw, ' ') {
				score += strings.Count(strings.ToLower(text), kw)
			} else {
				score += counts[kw]
			}
		}

		// A month abbreviation that only exists in one language is a strong
		// signal; weight it above plain keywords.
		for _, m := range p.DistinctMonths {
			score += 2 * counts[m]
		}

		if score > bestScore {
			bestScore = score
			best = lang
		}
	}

	return best
}

// DetectCurrency finds the statement currency from symbols and ISO codes.
// Currency is metadata only; no conversion is performed. The userCurrency
// hint disambiguates the dollar sign (USD/CAD/AUD all print "$").
func DetectCurrency(text, userCurrency string) string {
	upper := strings.ToUpper(text)

	for _, code := range []string{"EUR", "USD", "GBP", "CAD", "CHF", "AUD", "SEK", "NOK", "DKK", "PLN"} {
		if containsWord(upper, code) {
			return code
		}
	}

	switch {
	case strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(text, "£"):
		return "GBP"
	case strings.Contains(text, "zł"):
		return "PLN"
	case strings.Contains(text, "$"):
		switch userCurrency {
		case "CAD", "AUD", "USD":
			return userCurrency
		}
		return "USD"
	case strings.Contains(strings.ToLower(text), " kr"):
		return "SEK"
	}

	if userCurrency != "" {
		return userCurrency
	}
	return "EUR"
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		i += idx

		beforeOK := i == 0 || !isAlnum(text[i-1])
		after := i + len(word)
		afterOK := after >= len(text) || !isAlnum(text[after])
		if beforeOK && afterOK {
			return true
		}
		idx = i + len(word)
	}
}

func isAlnum(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
