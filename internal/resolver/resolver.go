// Package resolver turns a reviewed parse result into the single artifact
// handed to persistence. Resolution is a pure transform: it reads the parsed
// records and the caller's conflict decisions and produces new data, touching
// neither its inputs nor any store.
package resolver

import (
	"sort"
	"time"

	"loyalty-statement-import/internal/models"
	"loyalty-statement-import/pkg/errors"
	"loyalty-statement-import/pkg/logger"
)

// Input bundles everything resolution needs from the parse phase.
type Input struct {
	Flights   []*models.ParsedFlight
	Miles     []*models.ParsedMiles
	XP        []*models.XPEntry
	Balances  *models.OfficialBalances
	Status    *models.DetectedStatus
	Conflicts []*models.ImportConflict
	Meta      models.ImportMeta
}

// Resolve applies the caller's decisions to the parsed data. Every conflict
// must carry a valid resolution, either preset on the conflict or supplied in
// the resolutions map keyed by conflict ID; the map takes precedence.
func Resolve(in *Input, resolutions map[string]models.Resolution, log logger.Logger) (*models.ResolvedImportData, error) {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("resolver")

	decided, err := decide(in.Conflicts, resolutions)
	if err != nil {
		return nil, err
	}

	resolved := &models.ResolvedImportData{
		FlightsToAdd:   selectFlights(in.Flights, decided, log),
		MilesToMerge:   selectMiles(in.Miles, decided, log),
		BonusXPByMonth: bonusXPByMonth(in.XP),
		ImportMeta:     in.Meta,
	}

	if in.Balances != nil {
		balances := *in.Balances
		resolved.OfficialBalances = &balances
	}

	if in.Status != nil && in.Status.CurrentStatus != "" {
		resolved.QualificationSettings = &models.QualificationSettings{
			CurrentStatus:   in.Status.CurrentStatus,
			CycleStartMonth: in.Status.CycleStartMonth,
			CycleStartDate:  in.Status.CycleStartDate,
			RolloverXP:      in.Status.RolloverXP,
		}
	}

	if resolved.ImportMeta.ParseDate.IsZero() {
		resolved.ImportMeta.ParseDate = time.Now().UTC()
	}

	log.WithFields(map[string]interface{}{
		"flights": len(resolved.FlightsToAdd),
		"months":  len(resolved.MilesToMerge),
	}).Info("import resolved")
	return resolved, nil
}

// decide merges preset and supplied resolutions and rejects the import when
// any conflict is left undecided.
func decide(conflicts []*models.ImportConflict, resolutions map[string]models.Resolution) (map[string]models.Resolution, error) {
	decided := make(map[string]models.Resolution, len(conflicts))

	for _, c := range conflicts {
		res := c.Resolution
		if r, ok := resolutions[c.ID]; ok {
			res = r
		}

		if res == "" {
			return nil, errors.ResolveError(errors.CodeMissingResolution, c.ID, nil)
		}
		if !res.IsValid() {
			return nil, errors.ResolveError(errors.CodeUnknownResolution, c.ID, nil).
				WithContext("resolution", string(res))
		}

		decided[c.ID] = res
	}

	return decided, nil
}

// selectFlights picks which parsed flights are persisted. Duplicates never
// survive; conflicted flights follow their resolution; everything else is new
// and goes through.
func selectFlights(flights []*models.ParsedFlight, decided map[string]models.Resolution, log logger.Logger) []*models.ParsedFlight {
	var out []*models.ParsedFlight

	for _, f := range flights {
		switch f.Status {
		case models.RecordDuplicate:
			continue
		case models.RecordFuzzyMatch:
			switch decided["conflict-"+f.ID] {
			case models.ResolutionKeepExisting:
				log.WithField("flight", f.ID).Debug("conflicted flight dropped, existing record kept")
				continue
			case models.ResolutionUseIncoming, models.ResolutionKeepBoth:
				out = append(out, f)
			}
		default:
			out = append(out, f)
		}
	}

	return out
}

// selectMiles picks which monthly records are merged. Months are exclusive,
// so keep_both cannot apply; it degrades to keeping the existing record.
func selectMiles(miles []*models.ParsedMiles, decided map[string]models.Resolution, log logger.Logger) []*models.ParsedMiles {
	var out []*models.ParsedMiles

	for _, m := range miles {
		switch m.Status {
		case models.RecordDuplicate:
			continue
		case models.RecordFuzzyMatch:
			switch decided["conflict-miles-"+m.Month] {
			case models.ResolutionUseIncoming:
				out = append(out, m)
			default:
				log.WithField("month", m.Month).Debug("conflicted month dropped, existing record kept")
			}
		default:
			out = append(out, m)
		}
	}

	sort.Slice(out, func(a, b int) bool {
		return out[a].Month > out[b].Month
	})
	return out
}

// bonusXPByMonth totals non-flight XP per month for the downstream
// projection engine. Flight XP travels with the flight records instead.
func bonusXPByMonth(entries []*models.XPEntry) map[string]int {
	totals := make(map[string]int)

	for _, e := range entries {
		if e.Source == models.XPSourceFlight || e.Month == "" {
			continue
		}
		totals[e.Month] += e.Amount
	}

	return totals
}
