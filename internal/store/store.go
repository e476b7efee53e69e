// Package store persists the member's loyalty data as a single JSON file.
//
// The file is the system of record the CLI imports into: flights, monthly
// miles, qualification settings, and the bonus-XP ledger. Writes go through
// a temp file and rename so a crash never leaves a half-written file.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"loyalty-statement-import/internal/backup"
	"loyalty-statement-import/internal/models"
	"loyalty-statement-import/pkg/errors"
)

// MemberData is the full persisted state of one member.
type MemberData struct {
	Flights       []*models.Flight              `json:"flights"`
	Miles         []*models.MilesRecord         `json:"miles"`
	Qualification *models.QualificationSettings `json:"qualification,omitempty"`
	Balances      *models.OfficialBalances      `json:"balances,omitempty"`
	BonusXP       map[string]int                `json:"bonusXpByMonth,omitempty"`
	LastImport    *models.ImportMeta            `json:"lastImport,omitempty"`
}

// Load reads the member data file. A missing file yields empty data, not an
// error, so a first import needs no setup.
func Load(path string) (*MemberData, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &MemberData{Flights: []*models.Flight{}, Miles: []*models.MilesRecord{}}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInput, errors.CodeUnreadableText,
			"failed to read member data file").WithContext("path", path)
	}

	var data MemberData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInput, errors.CodeUnreadableText,
			"member data file is not valid JSON").WithContext("path", path)
	}
	if data.Flights == nil {
		data.Flights = []*models.Flight{}
	}
	if data.Miles == nil {
		data.Miles = []*models.MilesRecord{}
	}
	return &data, nil
}

// Save writes the member data file atomically.
func Save(path string, data *MemberData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError,
			"failed to encode member data")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".member-data-*")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError,
			"failed to create temp file").WithContext("path", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError,
			"failed to write member data").WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError,
			"failed to flush member data").WithContext("path", path)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError,
			"failed to replace member data file").WithContext("path", path)
	}
	return nil
}

// ApplyImport merges a resolved import into the member data. Flights are
// appended, monthly miles replace any record for the same month, and the
// qualification settings and balances are overwritten when present.
func (d *MemberData) ApplyImport(resolved *models.ResolvedImportData) {
	if resolved == nil {
		return
	}

	for _, f := range resolved.FlightsToAdd {
		d.Flights = append(d.Flights, &models.Flight{
			ID:           f.ID,
			Date:         f.Date,
			FlightNumber: f.FlightNumber,
			Route:        f.Route,
			Airline:      f.Airline,
			EarnedXP:     f.EarnedXP,
			EarnedMiles:  f.EarnedMiles,
			SafXP:        f.SafXP,
			UXP:          f.UXP,
		})
	}

	byMonth := make(map[string]int, len(d.Miles))
	for i, m := range d.Miles {
		byMonth[m.Month] = i
	}
	for _, m := range resolved.MilesToMerge {
		record := &models.MilesRecord{Month: m.Month, Sources: m.Sources, Debit: m.Debit}
		if i, ok := byMonth[m.Month]; ok {
			d.Miles[i] = record
		} else {
			byMonth[m.Month] = len(d.Miles)
			d.Miles = append(d.Miles, record)
		}
	}
	sort.Slice(d.Miles, func(i, j int) bool { return d.Miles[i].Month > d.Miles[j].Month })

	if resolved.QualificationSettings != nil {
		d.Qualification = resolved.QualificationSettings
	}
	if resolved.OfficialBalances != nil {
		d.Balances = resolved.OfficialBalances
	}

	if len(resolved.BonusXPByMonth) > 0 {
		if d.BonusXP == nil {
			d.BonusXP = make(map[string]int, len(resolved.BonusXPByMonth))
		}
		for month, xp := range resolved.BonusXPByMonth {
			d.BonusXP[month] = xp
		}
	}

	meta := resolved.ImportMeta
	d.LastImport = &meta
}

// Snapshot captures the current state for the pre-import backup.
func (d *MemberData) Snapshot(source string) (*backup.Snapshot, error) {
	var ledger json.RawMessage
	if len(d.BonusXP) > 0 {
		raw, err := json.Marshal(d.BonusXP)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError,
				"failed to encode bonus ledger")
		}
		ledger = raw
	}
	return &backup.Snapshot{
		Source:        source,
		Flights:       d.Flights,
		Miles:         d.Miles,
		Qualification: d.Qualification,
		ManualLedger:  ledger,
	}, nil
}

// RestoreFrom replaces the member data with the contents of a snapshot.
func (d *MemberData) RestoreFrom(snap *backup.Snapshot) error {
	if snap == nil {
		return errors.BackupError(errors.CodeBackupMissing, "restore", nil)
	}

	d.Flights = snap.Flights
	if d.Flights == nil {
		d.Flights = []*models.Flight{}
	}
	d.Miles = snap.Miles
	if d.Miles == nil {
		d.Miles = []*models.MilesRecord{}
	}
	d.Qualification = snap.Qualification

	d.BonusXP = nil
	if len(snap.ManualLedger) > 0 {
		if err := json.Unmarshal(snap.ManualLedger, &d.BonusXP); err != nil {
			return errors.Wrap(err, errors.CategoryBackup, errors.CodeBackupRead,
				"failed to decode bonus ledger from snapshot")
		}
	}
	return nil
}
