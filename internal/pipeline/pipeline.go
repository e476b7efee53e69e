// Package pipeline orchestrates the statement import in two phases.
//
// Phase 1, ParseStatement, is pure and re-runnable: tokenize, run the facet
// extractors, detect conflicts, and return an ImportResult. It never
// persists anything and only hard-fails on unreadable input or an unexpected
// panic.
//
// Phase 2, Resolve, runs once after the caller has attached a decision to
// every conflict, and produces the single artifact handed to persistence.
// Commit wraps the snapshot-then-commit rule around the persistence write.
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"loyalty-statement-import/internal/extract"
	"loyalty-statement-import/internal/locale"
	"loyalty-statement-import/internal/matcher"
	"loyalty-statement-import/internal/models"
	"loyalty-statement-import/internal/parsers"
	"loyalty-statement-import/internal/resolver"
	"loyalty-statement-import/pkg/errors"
	"loyalty-statement-import/pkg/logger"
)

// Options carries the caller-side context of one import.
type Options struct {
	// ExistingFlights and ExistingMiles are the member's persisted records,
	// used for duplicate flagging and conflict detection.
	ExistingFlights []*models.Flight
	ExistingMiles   []*models.MilesRecord

	// UserCurrency disambiguates shared currency symbols during detection.
	UserCurrency string

	// Match overrides the conflict detector configuration.
	Match *matcher.MatchConfig

	// PageCount and Source describe the document the text came from.
	PageCount int
	Source    string

	// Logger receives pipeline logging. When nil, logging is discarded but
	// warnings are still collected into the result meta.
	Logger logger.Logger

	// Collector, when set together with Logger, harvests warnings into the
	// result meta.
	Collector *logger.Collector
}

// ParseStatement runs phase 1 over page-joined statement text. It is a pure
// function of its inputs; repeated calls yield identical results.
func ParseStatement(text string, opts *Options) (result *ImportResult) {
	if opts == nil {
		opts = &Options{}
	}

	log, collector := pipelineLogger(opts)

	meta := Meta{ParseDate: time.Time{}, PageCount: opts.PageCount, Source: opts.Source, Warnings: []string{}}

	// A single recover at the top level converts any unexpected panic into a
	// hard-failure result instead of tearing down the caller.
	defer func() {
		if r := recover(); r != nil {
			err := errors.InternalError(errors.CodeUnexpectedPanic, "parse statement", fmt.Errorf("%v", r))
			log.WithError(err).Error("statement parse panicked")
			result = failedResult(err.Error(), meta)
		}
	}()

	if strings.TrimSpace(text) == "" {
		err := errors.InputError(errors.CodeEmptyInput, "no text")
		return failedResult(err.Error(), meta)
	}

	tokens := parsers.Tokenize(text)
	lang := tokens.Language
	currency := locale.DetectCurrency(text, opts.UserCurrency)
	meta.Language = string(lang)
	meta.DetectedCurrency = string(currency)

	flights := extract.ExtractFlights(tokens.Lines, &extract.FlightConfig{
		Language: lang,
		Existing: opts.ExistingFlights,
		Logger:   log,
	})
	miles := extract.ExtractMiles(tokens.Lines, &extract.MilesConfig{Language: lang, Logger: log})
	miles = extract.MergeFlightMiles(miles, flights)
	xpEntries := extract.ExtractXP(tokens.Lines, &extract.XPConfig{Language: lang, Logger: log})
	balances := extract.ExtractBalances(tokens.Lines, &extract.BalanceConfig{Language: lang, Logger: log})
	status := extract.DetectStatus(tokens.Lines, &extract.StatusConfig{Language: lang, Logger: log})

	status.CurrentMiles = balances.Balances.Miles
	status.CurrentXP = balances.Balances.XP
	status.CurrentUXP = balances.Balances.UXP
	extract.FillRollovers(status, func(ev models.LevelChangeEvent) int {
		total := 0
		for _, f := range flights {
			if f.Date != "" && models.CompareISODates(f.Date, ev.Date) <= 0 {
				total += f.EarnedXP + f.SafXP
			}
		}
		return total
	})

	detector := matcher.NewDetector(opts.Match, log)
	detector.LoadExisting(opts.ExistingFlights, opts.ExistingMiles)
	conflicts, err := detector.DetectConflicts(flights, miles)
	if err != nil {
		return failedResult(err.Error(), meta)
	}

	if collector != nil {
		meta.Warnings = collector.Messages()
	}

	result = &ImportResult{
		Success:              true,
		Flights:              flights,
		Miles:                miles,
		XP:                   xpEntries,
		Status:               status,
		XPTotals:             xpBreakdown(flights, xpEntries, balances.Balances.XP),
		UXPTotals:            uxpBreakdown(flights, xpEntries, balances.Balances.UXP),
		OfficialMilesBalance: balances.Balances.Miles,
		BalanceConfidence:    balances.Confidence,
		Conflicts:            conflicts,
		Summary:              summarize(flights, miles, conflicts),
		Meta:                 meta,
	}
	return result
}

// Resolve runs phase 2: it applies the caller's conflict decisions to a
// successful parse result. The parse result is not modified.
func Resolve(parsed *ImportResult, resolutions map[string]models.Resolution, log logger.Logger) (*models.ResolvedImportData, error) {
	if parsed == nil || !parsed.Success {
		return nil, errors.New(errors.CategoryResolve, errors.CodeUnexpectedError,
			"cannot resolve a failed parse result")
	}

	var balances *models.OfficialBalances
	if parsed.BalanceConfidence > 0 {
		balances = &models.OfficialBalances{
			Miles: parsed.OfficialMilesBalance,
			XP:    parsed.XPTotals.Official,
			UXP:   parsed.UXPTotals.Official,
		}
	}

	return resolver.Resolve(&resolver.Input{
		Flights:   parsed.Flights,
		Miles:     parsed.Miles,
		XP:        parsed.XP,
		Balances:  balances,
		Status:    parsed.Status,
		Conflicts: parsed.Conflicts,
		Meta: models.ImportMeta{
			Language:  parsed.Meta.Language,
			Currency:  parsed.Meta.DetectedCurrency,
			PageCount: parsed.Meta.PageCount,
			Source:    parsed.Meta.Source,
		},
	}, resolutions, log)
}

func pipelineLogger(opts *Options) (logger.Logger, *logger.Collector) {
	if opts.Logger != nil {
		return opts.Logger, opts.Collector
	}

	log, collector, err := logger.NewCollector(&logger.Config{
		Level:  logger.DebugLevel,
		Format: logger.TextFormat,
		Output: io.Discard,
	})
	if err != nil {
		return logger.NewNop(), nil
	}
	return log, collector
}

func xpBreakdown(flights []*models.ParsedFlight, entries []*models.XPEntry, official int) XPBreakdown {
	b := XPBreakdown{Official: official}

	for _, f := range flights {
		b.FromFlights += f.EarnedXP
		b.FromSaf += f.SafXP
	}
	for _, e := range entries {
		if e.Source == models.XPSourceFlight || e.Source == models.XPSourceSaf {
			continue
		}
		b.FromBonus += e.Amount
	}

	b.Discrepancy = official - (b.FromFlights + b.FromSaf + b.FromBonus)
	return b
}

func uxpBreakdown(flights []*models.ParsedFlight, entries []*models.XPEntry, official int) UXPBreakdown {
	b := UXPBreakdown{Official: official}

	for _, f := range flights {
		b.FromFlights += f.UXP
	}
	b.Detected = b.FromFlights
	for _, e := range entries {
		if e.Source != models.XPSourceFlight {
			b.Detected += e.UXPAmount
		}
	}

	return b
}

func summarize(flights []*models.ParsedFlight, miles []*models.ParsedMiles, conflicts []*models.ImportConflict) Summary {
	s := Summary{
		TotalFlights: len(flights),
		MilesMonths:  len(miles),
		Conflicts:    len(conflicts),
	}

	for _, f := range flights {
		switch f.Status {
		case models.RecordDuplicate:
			s.DuplicateFlights++
		case models.RecordFuzzyMatch:
			s.FuzzyFlights++
		default:
			s.NewFlights++
		}
		s.TotalEarnedMiles += f.EarnedMiles
	}

	return s
}
