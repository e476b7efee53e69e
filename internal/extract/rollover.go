package extract

import "loyalty-statement-import/internal/models"

// RolloverXP calculates the XP that rolls into the cycle opened by a
// requalification on requalDate. The counter at cycle end is the starting XP
// plus all flight XP earned up to and including that date; the surplus above
// the reached tier's threshold carries over, clamped to that threshold.
func RolloverXP(flights []*models.ParsedFlight, requalDate string, previousStatus models.Status, startingXP int) int {
	reached, ok := models.NextStatus(previousStatus)
	if !ok {
		return 0
	}

	total := startingXP
	for _, f := range flights {
		if f.Date != "" && models.CompareISODates(f.Date, requalDate) <= 0 {
			total += f.EarnedXP + f.SafXP
		}
	}

	return ComputeRollover(total, reached)
}

// ComputeRollover returns the XP carried into the new qualification cycle
// after reaching newStatus with xpAtCycleEnd points on the counter.
//
// The surplus above the tier threshold rolls over, clamped to the threshold
// itself. The top tier never rolls anything over.
func ComputeRollover(xpAtCycleEnd int, newStatus models.Status) int {
	if _, ok := models.NextStatus(newStatus); !ok {
		return 0
	}

	surplus := xpAtCycleEnd - models.XPThreshold(newStatus)
	if surplus < 0 {
		return 0
	}
	if limit := models.RolloverCap(newStatus); surplus > limit {
		return limit
	}
	return surplus
}

// FillRollovers sets the rollover on every detected level change. xpAtEnd
// supplies the XP counter value at each event's cycle end; the latest event's
// rollover is mirrored onto the aggregate.
func FillRollovers(d *models.DetectedStatus, xpAtEnd func(models.LevelChangeEvent) int) {
	if d == nil {
		return
	}

	for i := range d.Requalifications {
		ev := &d.Requalifications[i]
		ev.RolloverXP = ComputeRollover(xpAtEnd(*ev), ev.NewStatus)
	}

	if n := len(d.Requalifications); n > 0 {
		d.RolloverXP = d.Requalifications[n-1].RolloverXP
	}
}
