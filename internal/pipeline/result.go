package pipeline

import (
	"time"

	"loyalty-statement-import/internal/models"
)

// XPBreakdown splits the experience points of one statement by origin and
// records the gap between the official counter and the computed sum. The
// official value is the source of truth; the discrepancy is surfaced, never
// corrected away.
type XPBreakdown struct {
	Official    int `json:"official"`
	FromFlights int `json:"fromFlights"`
	FromSaf     int `json:"fromSaf"`
	FromBonus   int `json:"fromBonus"`
	Discrepancy int `json:"discrepancy"`
}

// UXPBreakdown does the same for qualifying (Ultimate) experience points.
type UXPBreakdown struct {
	Detected    int `json:"detected"`
	Official    int `json:"official"`
	FromFlights int `json:"fromFlights"`
}

// Summary gives aggregate counts for one parse.
type Summary struct {
	TotalFlights     int `json:"totalFlights"`
	NewFlights       int `json:"newFlights"`
	DuplicateFlights int `json:"duplicateFlights"`
	FuzzyFlights     int `json:"fuzzyFlights"`
	MilesMonths      int `json:"milesMonths"`
	Conflicts        int `json:"conflicts"`
	TotalEarnedMiles int `json:"totalEarnedMiles"`
}

// Meta describes the provenance of one parse run.
type Meta struct {
	Language         string    `json:"language"`
	DetectedCurrency string    `json:"detectedCurrency"`
	ParseDate        time.Time `json:"parseDate"`
	PageCount        int       `json:"pdfPageCount"`
	Source           string    `json:"source,omitempty"`
	Warnings         []string  `json:"warnings"`
}

// ImportResult is the primary output of the parse-and-detect phase. On hard
// failure Success is false, Error describes the cause, and all collections
// are empty.
type ImportResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Flights []*models.ParsedFlight  `json:"flights"`
	Miles   []*models.ParsedMiles   `json:"miles"`
	XP      []*models.XPEntry       `json:"xpEntries"`
	Status  *models.DetectedStatus  `json:"status,omitempty"`

	XPTotals  XPBreakdown  `json:"xp"`
	UXPTotals UXPBreakdown `json:"uxp"`

	OfficialMilesBalance int     `json:"officialMilesBalance"`
	BalanceConfidence    float64 `json:"balanceConfidence"`

	Conflicts []*models.ImportConflict `json:"conflicts"`
	Summary   Summary                  `json:"summary"`
	Meta      Meta                     `json:"meta"`
}

// failedResult builds the hard-failure shape: no partial data, one error.
func failedResult(errMsg string, meta Meta) *ImportResult {
	return &ImportResult{
		Success:   false,
		Error:     errMsg,
		Flights:   []*models.ParsedFlight{},
		Miles:     []*models.ParsedMiles{},
		XP:        []*models.XPEntry{},
		Conflicts: []*models.ImportConflict{},
		Meta:      meta,
	}
}
