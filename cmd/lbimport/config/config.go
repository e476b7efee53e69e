// Package config builds the runtime configurations the CLI hands to the
// pipeline, matcher, logger, and reporter from command-line flags.
package config

import (
	"fmt"

	"loyalty-statement-import/internal/matcher"
	"loyalty-statement-import/internal/pipeline"
	"loyalty-statement-import/internal/reporter"
	"loyalty-statement-import/internal/store"
	"loyalty-statement-import/pkg/logger"
)

// CreateLoggerConfig creates the logger configuration for CLI runs. Verbose
// runs log debug output, quiet runs only warnings.
func CreateLoggerConfig(verbose bool) *logger.Config {
	config := logger.DefaultConfig()
	if verbose {
		config.Level = logger.DebugLevel
	} else {
		config.Level = logger.WarnLevel
	}
	return config
}

// CreateMatchConfig creates a conflict detector configuration with the
// CLI overrides applied.
func CreateMatchConfig(dateTolerance int, minConfidence float64, includeManual bool) (*matcher.MatchConfig, error) {
	config := matcher.DefaultMatchConfig()

	config.DateToleranceDays = dateTolerance
	if minConfidence > 0 {
		config.MinConfidence = minConfidence
	}
	config.IncludeManualFlights = includeManual

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid match configuration: %w", err)
	}
	return config, nil
}

// CreateParseOptions assembles the pipeline options for one parse run from
// the stored member data and statement provenance.
func CreateParseOptions(data *store.MemberData, match *matcher.MatchConfig, currency string, pageCount int, source string, log logger.Logger) *pipeline.Options {
	opts := &pipeline.Options{
		UserCurrency: currency,
		Match:        match,
		PageCount:    pageCount,
		Source:       source,
		Logger:       log,
	}
	if data != nil {
		opts.ExistingFlights = data.Flights
		opts.ExistingMiles = data.Miles
	}
	return opts
}

// CreateReportConfig creates a report configuration for the specified
// output format.
func CreateReportConfig(format string) (*reporter.ReportConfig, error) {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	default:
		return nil, fmt.Errorf("invalid output format %q. Valid formats: console, json, csv", format)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
