// Package models defines the data model shared by all pipeline stages:
// tokenized statement lines, parsed activity records, balances, status and
// cycle information, import conflicts, and the resolved import batch.
//
// Ownership rule: every entity is created and fully populated within a single
// pipeline run. The only post-creation mutation is ParsedFlight.Status /
// MatchedExistingID, written exclusively by the conflict detector.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LineType classifies a tokenized statement line.
type LineType string

const (
	LineTransaction   LineType = "transaction"
	LineHeader        LineType = "header"
	LineSummary       LineType = "summary"
	LineStatus        LineType = "status"
	LineFlightSegment LineType = "flight_segment"
	LineUnknown       LineType = "unknown"
)

// TokenizedLine is one classified line of statement text. Immutable after
// tokenization.
type TokenizedLine struct {
	Text              string   `json:"text"`
	LineNumber        int      `json:"lineNumber"`
	Type              LineType `json:"type"`
	StartsTransaction bool     `json:"startsTransaction"`
	// Date is the ISO date stripped from the front of the line, if any.
	Date string `json:"date,omitempty"`
	// Content is the line text after the leading date was stripped.
	Content string `json:"content,omitempty"`
}

// RecordStatus classifies a parsed record relative to existing data.
type RecordStatus string

const (
	RecordNew        RecordStatus = "new"
	RecordDuplicate  RecordStatus = "duplicate"
	RecordFuzzyMatch RecordStatus = "fuzzy_match"
)

// ParsedFlight is one flight segment extracted from the statement.
//
// Invariants: UXP <= EarnedXP+SafXP, and UXP is zero unless Airline is a
// qualifying carrier.
type ParsedFlight struct {
	ID              string       `json:"id"`
	Date            string       `json:"date"`
	FlightNumber    string       `json:"flightNumber"`
	Route           string       `json:"route"`
	Airline         string       `json:"airline"`
	IsPartnerFlight bool         `json:"isPartnerFlight"`
	EarnedXP        int          `json:"earnedXP"`
	EarnedMiles     int          `json:"earnedMiles"`
	SafXP           int          `json:"safXP"`
	UXP             int          `json:"uxp"`
	Status          RecordStatus `json:"status"`

	// Written only by the conflict detector.
	MatchedExistingID string  `json:"matchedExistingId,omitempty"`
	MatchConfidence   float64 `json:"matchConfidence,omitempty"`
}

// NormalizeUXP enforces the UXP invariants on the flight.
func (f *ParsedFlight) NormalizeUXP() {
	if !IsQualifyingCarrier(f.Airline) {
		f.UXP = 0
		return
	}
	if max := f.EarnedXP + f.SafXP; f.UXP > max {
		f.UXP = max
	}
}

// Validate performs basic validation on the ParsedFlight.
func (f *ParsedFlight) Validate() error {
	if f.Date == "" {
		return fmt.Errorf("flight date cannot be empty")
	}
	if f.Route == "" {
		return fmt.Errorf("flight route cannot be empty")
	}
	if f.UXP > f.EarnedXP+f.SafXP {
		return fmt.Errorf("uxp %d exceeds earned xp %d", f.UXP, f.EarnedXP+f.SafXP)
	}
	if f.UXP > 0 && !IsQualifyingCarrier(f.Airline) {
		return fmt.Errorf("uxp on non-qualifying carrier %s", f.Airline)
	}
	return nil
}

// String returns a string representation of the ParsedFlight.
func (f *ParsedFlight) String() string {
	return fmt.Sprintf("ParsedFlight{%s %s %s, %d Miles, %d XP, %d UXP, %s}",
		f.Date, f.Route, f.FlightNumber, f.EarnedMiles, f.EarnedXP, f.UXP, f.Status)
}

// MilesBucket holds the miles and XP attributed to one earning source.
type MilesBucket struct {
	Miles int `json:"miles"`
	XP    int `json:"xp"`
}

// MilesSources breaks a month's earnings down by source category.
type MilesSources struct {
	Flights      MilesBucket `json:"flights"`
	Subscription MilesBucket `json:"subscription"`
	CreditCard   MilesBucket `json:"creditCard"`
	Hotel        MilesBucket `json:"hotel"`
	Transfer     MilesBucket `json:"transfer"`
	Promo        MilesBucket `json:"promo"`
	Purchased    MilesBucket `json:"purchased"`
	Other        MilesBucket `json:"other"`
}

// NonFlightMiles sums the miles of all buckets except Flights.
func (s *MilesSources) NonFlightMiles() int {
	return s.Subscription.Miles + s.CreditCard.Miles + s.Hotel.Miles +
		s.Transfer.Miles + s.Promo.Miles + s.Purchased.Miles + s.Other.Miles
}

// TotalXP sums the XP of all buckets except Flights.
func (s *MilesSources) TotalXP() int {
	return s.Subscription.XP + s.CreditCard.XP + s.Hotel.XP +
		s.Transfer.XP + s.Promo.XP + s.Purchased.XP + s.Other.XP
}

// Equal reports whether two source breakdowns are identical.
func (s *MilesSources) Equal(other *MilesSources) bool {
	if other == nil {
		return false
	}
	return *s == *other
}

// ParsedMiles is the non-flight earning activity of one calendar month.
//
// Invariant: TotalEarned equals the sum of the non-flight source buckets.
// Flight miles are merged in by a dedicated step downstream, never here.
type ParsedMiles struct {
	Month       string       `json:"month"` // YYYY-MM
	Sources     MilesSources `json:"sources"`
	Debit       int          `json:"debit"`
	TotalEarned int          `json:"totalEarned"`
	TotalXP     int          `json:"totalXP"`
	Status      RecordStatus `json:"status"`
}

// RecalcTotals restores the conservation invariant after bucket updates.
func (m *ParsedMiles) RecalcTotals() {
	m.TotalEarned = m.Sources.NonFlightMiles()
	m.TotalXP = m.Sources.TotalXP()
}

// XPSource classifies the origin of a bonus-XP event.
type XPSource string

const (
	XPSourceFlight      XPSource = "flight"
	XPSourceSaf         XPSource = "saf"
	XPSourceCreditCard  XPSource = "creditCard"
	XPSourceHotel       XPSource = "hotel"
	XPSourceFirstFlight XPSource = "firstFlight"
	XPSourcePromo       XPSource = "promo"
	XPSourceOther       XPSource = "other"
)

// XPEntry is one experience-point event extracted from the statement.
type XPEntry struct {
	Month       string   `json:"month"`
	Date        string   `json:"date,omitempty"`
	Source      XPSource `json:"source"`
	Amount      int      `json:"amount"`
	UXPAmount   int      `json:"uxpAmount"`
	Description string   `json:"description"`
}

// OfficialBalances holds the authoritative totals printed on the statement.
// These are the source of truth: computed sums are compared against them and
// discrepancies recorded, never the other way around.
type OfficialBalances struct {
	XP    int `json:"xp"`
	UXP   int `json:"uxp"`
	Miles int `json:"miles"`
}

// Status is a loyalty program tier.
type Status string

const (
	StatusExplorer Status = "Explorer"
	StatusSilver   Status = "Silver"
	StatusGold     Status = "Gold"
	StatusPlatinum Status = "Platinum"
	StatusUltimate Status = "Ultimate"
)

// StatusLadder lists the tiers in ascending order.
var StatusLadder = []Status{StatusExplorer, StatusSilver, StatusGold, StatusPlatinum, StatusUltimate}

// xpThresholds maps each tier to the XP required to reach it.
var xpThresholds = map[Status]int{
	StatusExplorer: 0,
	StatusSilver:   100,
	StatusGold:     180,
	StatusPlatinum: 300,
	StatusUltimate: 900,
}

// ParseStatus matches a string against the known tiers, case-insensitively.
func ParseStatus(s string) (Status, bool) {
	for _, st := range StatusLadder {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

// XPThreshold returns the XP required to reach the given tier.
func XPThreshold(s Status) int {
	return xpThresholds[s]
}

// NextStatus returns the tier directly above s, or false when s is the top
// tier or unknown.
func NextStatus(s Status) (Status, bool) {
	for i, st := range StatusLadder {
		if st == s && i+1 < len(StatusLadder) {
			return StatusLadder[i+1], true
		}
	}
	return "", false
}

// RolloverCap returns the maximum XP that may roll into a new cycle for the
// given target tier.
func RolloverCap(target Status) int {
	return xpThresholds[target]
}

// qualifyingCarriers are the airline codes whose flights earn UXP.
var qualifyingCarriers = map[string]bool{
	"KL": true,
	"AF": true,
	"TO": true,
	"HV": true,
}

// IsQualifyingCarrier reports whether the airline code earns UXP.
func IsQualifyingCarrier(code string) bool {
	return qualifyingCarriers[strings.ToUpper(code)]
}

// LevelChangeEvent records one status change reconstructed from the
// statement.
//
// Invariant: CycleStartMonth is always the first month after Date, per the
// program rule "qualify in month X, new cycle starts month X+1".
type LevelChangeEvent struct {
	Date           string `json:"date"`
	NewStatus      Status `json:"newStatus"`
	XPDeducted     int    `json:"xpDeducted"` // <= 0
	RolloverXP     int    `json:"rolloverXP"`
	CycleEndDate   string `json:"cycleEndDate,omitempty"`
	CycleStartDate string `json:"cycleStartDate,omitempty"` // raw, as printed
	CycleStartMonth string `json:"cycleStartMonth"`         // calculated, YYYY-MM
}

// DetectedStatus aggregates everything the status detector learned.
type DetectedStatus struct {
	CurrentStatus    Status             `json:"currentStatus"`
	CurrentXP        int                `json:"currentXP"`
	CurrentUXP       int                `json:"currentUXP"`
	CurrentMiles     int                `json:"currentMiles"`
	CycleStartMonth  string             `json:"cycleStartMonth,omitempty"`
	CycleStartDate   string             `json:"cycleStartDate,omitempty"`
	RolloverXP       int                `json:"rolloverXP"`
	Requalifications []LevelChangeEvent `json:"requalifications"`
}

// Flight is an existing persisted flight record supplied by the caller.
type Flight struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	FlightNumber string `json:"flightNumber"`
	Route        string `json:"route"`
	Airline      string `json:"airline"`
	EarnedXP     int    `json:"earnedXP"`
	EarnedMiles  int    `json:"earnedMiles"`
	SafXP        int    `json:"safXP"`
	UXP          int    `json:"uxp"`
	// Manual marks records the user entered by hand. They are excluded from
	// fuzzy matching unless explicitly opted in.
	Manual bool `json:"manual"`
}

// MilesRecord is an existing persisted monthly miles record.
type MilesRecord struct {
	Month   string       `json:"month"`
	Sources MilesSources `json:"sources"`
	Debit   int          `json:"debit"`
}

// ConflictType distinguishes flight conflicts from monthly miles conflicts.
type ConflictType string

const (
	ConflictFlight ConflictType = "flight"
	ConflictMiles  ConflictType = "miles"
)

// ConflictReason describes why two records were flagged.
type ConflictReason string

const (
	ReasonFuzzyMatch      ConflictReason = "fuzzy_match"
	ReasonDifferentValues ConflictReason = "different_values"
)

// Resolution is the caller's decision for one conflict.
type Resolution string

const (
	ResolutionKeepExisting Resolution = "keep_existing"
	ResolutionUseIncoming  Resolution = "use_incoming"
	ResolutionKeepBoth     Resolution = "keep_both"
)

// IsValid checks if the resolution is one of the known values.
func (r Resolution) IsValid() bool {
	return r == ResolutionKeepExisting || r == ResolutionUseIncoming || r == ResolutionKeepBoth
}

// ImportConflict pairs an incoming record with the existing record it
// collides with. Created by the conflict detector, resolved by the caller,
// consumed once by the resolver, then discarded.
type ImportConflict struct {
	ID              string         `json:"id"`
	Type            ConflictType   `json:"type"`
	Reason          ConflictReason `json:"reason"`
	ExistingFlight  *Flight        `json:"existingFlight,omitempty"`
	IncomingFlight  *ParsedFlight  `json:"incomingFlight,omitempty"`
	ExistingMiles   *MilesRecord   `json:"existingMiles,omitempty"`
	IncomingMiles   *ParsedMiles   `json:"incomingMiles,omitempty"`
	MatchReason     string         `json:"matchReason"`
	MatchConfidence float64        `json:"matchConfidence"`
	Resolution      Resolution     `json:"resolution,omitempty"`
}

// QualificationSettings captures the cycle state the import derived, for the
// downstream projection engine.
type QualificationSettings struct {
	CurrentStatus   Status `json:"currentStatus"`
	CycleStartMonth string `json:"cycleStartMonth,omitempty"`
	CycleStartDate  string `json:"cycleStartDate,omitempty"`
	RolloverXP      int    `json:"rolloverXP"`
}

// ImportMeta describes the provenance of one import run.
type ImportMeta struct {
	Language  string    `json:"language"`
	Currency  string    `json:"detectedCurrency"`
	ParseDate time.Time `json:"parseDate"`
	PageCount int       `json:"pdfPageCount"`
	Source    string    `json:"source,omitempty"`
}

// ResolvedImportData is the only artifact the pipeline hands to persistence.
type ResolvedImportData struct {
	FlightsToAdd          []*ParsedFlight        `json:"flightsToAdd"`
	MilesToMerge          []*ParsedMiles         `json:"milesToMerge"`
	QualificationSettings *QualificationSettings `json:"qualificationSettings,omitempty"`
	BonusXPByMonth        map[string]int         `json:"bonusXpByMonth"`
	OfficialBalances      *OfficialBalances      `json:"officialBalances,omitempty"`
	ImportMeta            ImportMeta             `json:"importMeta"`
}

// Currency is an ISO-4217 currency code. Metadata only; no conversion is
// ever performed.
type Currency string

// SupportedCurrencies lists the currencies a statement may be denominated in.
var SupportedCurrencies = []Currency{"EUR", "USD", "GBP", "CAD", "CHF", "AUD", "SEK", "NOK", "DKK", "PLN"}

// IsSupportedCurrency reports whether the code is a supported currency.
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if string(c) == code {
			return true
		}
	}
	return false
}

// Calendar month arithmetic is done on integers rather than time.Time to
// avoid timezone and end-of-month surprises.

// MonthOf reduces an ISO date (YYYY-MM-DD) to its month (YYYY-MM).
func MonthOf(isoDate string) string {
	if len(isoDate) >= 7 {
		return isoDate[:7]
	}
	return ""
}

// MonthAfter returns the month (YYYY-MM) following the month of the given
// ISO date. "2025-03-31" yields "2025-04"; "2025-12-15" yields "2026-01".
func MonthAfter(isoDate string) (string, error) {
	year, month, err := splitYearMonth(isoDate)
	if err != nil {
		return "", err
	}

	month++
	if month > 12 {
		month = 1
		year++
	}

	return fmt.Sprintf("%04d-%02d", year, month), nil
}

// FirstDayOfMonthAfter returns the ISO date of the first day of the month
// following the given ISO date.
func FirstDayOfMonthAfter(isoDate string) (string, error) {
	month, err := MonthAfter(isoDate)
	if err != nil {
		return "", err
	}
	return month + "-01", nil
}

// CompareISODates orders two ISO dates lexically, which matches chronological
// order for the YYYY-MM-DD layout. Returns -1, 0, or 1.
func CompareISODates(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func splitYearMonth(isoDate string) (int, int, error) {
	if len(isoDate) < 7 || isoDate[4] != '-' {
		return 0, 0, fmt.Errorf("invalid ISO date %q", isoDate)
	}

	year, err := strconv.Atoi(isoDate[:4])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in %q", isoDate)
	}

	month, err := strconv.Atoi(isoDate[5:7])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month in %q", isoDate)
	}

	return year, month, nil
}
