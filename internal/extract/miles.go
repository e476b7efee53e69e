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

var milesAmountRe = regexp.MustCompile(`(?i)(-?\s?[\d][\d.,]*)\s*Miles\b`)

// MilesConfig configures a monthly miles extraction pass.
type MilesConfig struct {
	Language locale.Language
	Logger   logger.Logger
}

// ExtractMiles aggregates non-flight earning activity into one record per
// calendar month. Flight miles are never counted here; they are merged in by
// MergeFlightMiles so the conservation invariant (totalEarned equals the sum
// of non-flight buckets) holds at every point.
func ExtractMiles(lines []models.TokenizedLine, cfg *MilesConfig) []*models.ParsedMiles {
	if cfg == nil {
		cfg = &MilesConfig{Language: locale.English}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	patterns := locale.Get(cfg.Language)
	byMonth := make(map[string]*models.ParsedMiles)

	for _, line := range lines {
		if line.Type != models.LineTransaction || line.Date == "" {
			continue
		}
		if isTripHeaderContent(line.Content, patterns) {
			continue
		}

		m := milesAmountRe.FindStringSubmatch(line.Text)
		if m == nil {
			continue
		}

		amount, ok := parsers.ParseInt(strings.ReplaceAll(m[1], " ", ""))
		if !ok {
			log.WithField("line", line.LineNumber).Debug("unparseable miles amount skipped")
			continue
		}

		month := models.MonthOf(line.Date)
		rec := byMonth[month]
		if rec == nil {
			rec = &models.ParsedMiles{Month: month, Status: models.RecordNew}
			byMonth[month] = rec
		}

		xp := 0
		if xm := xpOnLineRe.FindStringSubmatch(line.Text); xm != nil {
			xp, _ = parsers.ParseInt(xm[1])
		}

		category, found := classifyMilesSource(line.Content, patterns)
		switch {
		case found:
			bucket := bucketFor(&rec.Sources, category)
			bucket.Miles += amount
			bucket.XP += xp
		case amount < 0:
			// No explicit source and a negative amount: redemption/debit.
			rec.Debit += -amount
		default:
			rec.Sources.Other.Miles += amount
			rec.Sources.Other.XP += xp
		}
	}

	records := make([]*models.ParsedMiles, 0, len(byMonth))
	for _, rec := range byMonth {
		rec.RecalcTotals()
		records = append(records, rec)
	}

	sort.Slice(records, func(a, b int) bool {
		return records[a].Month > records[b].Month
	})

	log.WithField("months", len(records)).Debug("miles extraction complete")
	return records
}

// classifyMilesSource applies the ordered per-language category table;
// the first matching pattern wins.
func classifyMilesSource(content string, patterns *locale.Patterns) (locale.SourceCategory, bool) {
	lower := strings.ToLower(content)

	for _, sp := range patterns.MilesSources {
		for _, kw := range sp.Keywords {
			if strings.Contains(lower, kw) {
				return sp.Category, true
			}
		}
	}
	return "", false
}

func bucketFor(s *models.MilesSources, category locale.SourceCategory) *models.MilesBucket {
	switch category {
	case locale.SourceSubscription:
		return &s.Subscription
	case locale.SourceCreditCard:
		return &s.CreditCard
	case locale.SourceHotel:
		return &s.Hotel
	case locale.SourceTransfer:
		return &s.Transfer
	case locale.SourcePromo:
		return &s.Promo
	case locale.SourcePurchased:
		return &s.Purchased
	default:
		return &s.Other
	}
}

func isTripHeaderContent(content string, patterns *locale.Patterns) bool {
	lower := strings.ToLower(content)
	for _, phrase := range patterns.TripHeaders {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// MergeFlightMiles is the dedicated step that folds flight earnings into the
// monthly records' Flights bucket. TotalEarned is deliberately left alone:
// it only ever covers the non-flight buckets.
func MergeFlightMiles(records []*models.ParsedMiles, flights []*models.ParsedFlight) []*models.ParsedMiles {
	byMonth := make(map[string]*models.ParsedMiles, len(records))
	for _, rec := range records {
		byMonth[rec.Month] = rec
	}

	out := append([]*models.ParsedMiles{}, records...)

	for _, f := range flights {
		month := models.MonthOf(f.Date)
		if month == "" {
			continue
		}

		rec := byMonth[month]
		if rec == nil {
			rec = &models.ParsedMiles{Month: month, Status: models.RecordNew}
			byMonth[month] = rec
			out = append(out, rec)
		}

		rec.Sources.Flights.Miles += f.EarnedMiles
		rec.Sources.Flights.XP += f.EarnedXP + f.SafXP
	}

	sort.Slice(out, func(a, b int) bool {
		return out[a].Month > out[b].Month
	})
	return out
}
