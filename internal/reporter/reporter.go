// Package reporter renders parse results for the CLI.
//
// Supported output formats:
//   - Console: human-readable summary for terminal display
//   - JSON: the full ImportResult for programmatic consumption
//   - CSV: extracted flights as rows for spreadsheet import
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"loyalty-statement-import/internal/models"
	"loyalty-statement-import/internal/pipeline"
)

// OutputFormat selects how a parse result is rendered.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation.
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Detail level options for the console format.
	IncludeFlights   bool `json:"include_flights"`
	IncludeMiles     bool `json:"include_miles"`
	IncludeConflicts bool `json:"include_conflicts"`
	IncludeWarnings  bool `json:"include_warnings"`

	// CSV options.
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:           FormatConsole,
		IncludeFlights:   true,
		IncludeMiles:     true,
		IncludeConflicts: true,
		IncludeWarnings:  true,
		CSVDelimiter:     ',',
		CSVHeaders:       true,
	}
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// ReportGenerator renders ImportResults in the configured format.
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator.
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the rendered result to the writer.
func (rg *ReportGenerator) GenerateReport(result *pipeline.ImportResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("import result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatCSV:
		return rg.generateCSVReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(result *pipeline.ImportResult, w io.Writer) error {
	var b strings.Builder

	b.WriteString("Statement Import Report\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if !result.Success {
		fmt.Fprintf(&b, "Parse FAILED: %s\n", result.Error)
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Language: %s    Currency: %s    Pages: %d\n",
		result.Meta.Language, result.Meta.DetectedCurrency, result.Meta.PageCount)
	fmt.Fprintf(&b, "Flights: %d (%d new, %d duplicate, %d fuzzy)\n",
		result.Summary.TotalFlights, result.Summary.NewFlights,
		result.Summary.DuplicateFlights, result.Summary.FuzzyFlights)
	fmt.Fprintf(&b, "Miles months: %d    Conflicts: %d\n",
		result.Summary.MilesMonths, result.Summary.Conflicts)
	fmt.Fprintf(&b, "Official balance: %d Miles (confidence %.1f), %d XP, %d UXP\n",
		result.OfficialMilesBalance, result.BalanceConfidence,
		result.XPTotals.Official, result.UXPTotals.Official)
	if result.XPTotals.Discrepancy != 0 {
		fmt.Fprintf(&b, "XP discrepancy: %d (official %d vs detected %d)\n",
			result.XPTotals.Discrepancy, result.XPTotals.Official,
			result.XPTotals.FromFlights+result.XPTotals.FromSaf+result.XPTotals.FromBonus)
	}
	if result.Status != nil {
		fmt.Fprintf(&b, "Status: %s", result.Status.CurrentStatus)
		if result.Status.CycleStartMonth != "" {
			fmt.Fprintf(&b, " (cycle start %s)", result.Status.CycleStartMonth)
		}
		b.WriteString("\n")
	}

	if rg.config.IncludeFlights && len(result.Flights) > 0 {
		b.WriteString("\nFlights\n" + strings.Repeat("-", 60) + "\n")
		for _, f := range result.Flights {
			marker := " "
			switch f.Status {
			case models.RecordDuplicate:
				marker = "D"
			case models.RecordFuzzyMatch:
				marker = "?"
			}
			fmt.Fprintf(&b, "%s %s  %-9s %-7s %6d Miles %4d XP %3d UXP\n",
				marker, f.Date, f.Route, f.FlightNumber, f.EarnedMiles, f.EarnedXP, f.UXP)
		}
	}

	if rg.config.IncludeMiles && len(result.Miles) > 0 {
		b.WriteString("\nMonthly miles\n" + strings.Repeat("-", 60) + "\n")
		for _, m := range result.Miles {
			fmt.Fprintf(&b, "  %s  flights %6d  other %6d  debit %6d\n",
				m.Month, m.Sources.Flights.Miles, m.TotalEarned, m.Debit)
		}
	}

	if rg.config.IncludeConflicts && len(result.Conflicts) > 0 {
		b.WriteString("\nConflicts requiring resolution\n" + strings.Repeat("-", 60) + "\n")
		for _, c := range result.Conflicts {
			fmt.Fprintf(&b, "  %s (%s, confidence %.2f): %s\n",
				c.ID, c.Type, c.MatchConfidence, c.MatchReason)
		}
	}

	if rg.config.IncludeWarnings && len(result.Meta.Warnings) > 0 {
		b.WriteString("\nWarnings\n" + strings.Repeat("-", 60) + "\n")
		for _, warning := range result.Meta.Warnings {
			fmt.Fprintf(&b, "  %s\n", warning)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (rg *ReportGenerator) generateJSONReport(result *pipeline.ImportResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func (rg *ReportGenerator) generateCSVReport(result *pipeline.ImportResult, w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		if err := cw.Write([]string{"date", "route", "flight_number", "airline", "miles", "xp", "saf_xp", "uxp", "status"}); err != nil {
			return err
		}
	}

	for _, f := range result.Flights {
		record := []string{
			f.Date,
			f.Route,
			f.FlightNumber,
			f.Airline,
			strconv.Itoa(f.EarnedMiles),
			strconv.Itoa(f.EarnedXP),
			strconv.Itoa(f.SafXP),
			strconv.Itoa(f.UXP),
			string(f.Status),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
