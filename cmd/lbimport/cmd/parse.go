package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"loyalty-statement-import/cmd/lbimport/config"
	"loyalty-statement-import/internal/extractor"
	"loyalty-statement-import/internal/pipeline"
	"loyalty-statement-import/internal/reporter"
	"loyalty-statement-import/internal/store"
	"loyalty-statement-import/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the parse command
var (
	parseDataFile      string
	parseCurrency      string
	parseOutputFormat  string
	parseOutputFile    string
	parseLegacy        bool
	parseDateTolerance int
	parseMinConfidence float64
	parseIncludeManual bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <statement>",
	Short: "Parse a statement without committing anything",
	Long: `Parse extracts flights, miles, XP, balances, and status changes from an
account statement. Nothing is persisted; the command can be run repeatedly
against the same document and always yields the same result.

The statement may be a PDF or a plain-text export. When a member data file
is supplied, extracted records are checked against it for duplicates and
fuzzy matches.

Examples:
  # Parse a PDF and print a console summary
  lbimport parse statement.pdf

  # Parse against stored records and emit the full result as JSON
  lbimport parse statement.pdf --data member.json --output-format json

  # Export the extracted flights as CSV
  lbimport parse statement.pdf --output-format csv --output-file flights.csv`,

	Args:    cobra.ExactArgs(1),
	PreRunE: validateParseFlags,
	RunE:    runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseDataFile, "data", "", "member data file to check duplicates against")
	parseCmd.Flags().StringVar(&parseCurrency, "currency", "", "account currency, used to disambiguate shared symbols")
	parseCmd.Flags().StringVarP(&parseOutputFormat, "output-format", "f", "console", "output format: console, json, csv")
	parseCmd.Flags().StringVarP(&parseOutputFile, "output-file", "o", "", "output file path (default: stdout)")
	parseCmd.Flags().BoolVar(&parseLegacy, "legacy", false, "emit the flattened legacy result shape")
	parseCmd.Flags().IntVarP(&parseDateTolerance, "date-tolerance", "d", 1, "fuzzy match date tolerance in days")
	parseCmd.Flags().Float64Var(&parseMinConfidence, "min-confidence", 0, "minimum fuzzy match confidence (0 keeps the default)")
	parseCmd.Flags().BoolVar(&parseIncludeManual, "include-manual", false, "match against manually entered flights too")

	viper.BindPFlag("parse.output-format", parseCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("parse.currency", parseCmd.Flags().Lookup("currency"))
}

func validateParseFlags(cmd *cobra.Command, args []string) error {
	if err := validateStatementFile(args[0]); err != nil {
		return err
	}
	if parseDataFile != "" {
		if _, err := os.Stat(parseDataFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("cannot access member data file: %w", err)
		}
	}
	if _, err := config.CreateReportConfig(parseOutputFormat); err != nil {
		return err
	}
	if parseDateTolerance < 0 {
		return fmt.Errorf("date tolerance cannot be negative")
	}
	if parseMinConfidence < 0 || parseMinConfidence > 1 {
		return fmt.Errorf("min confidence must be between 0 and 1")
	}
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	log, err := logger.New(config.CreateLoggerConfig(viper.GetBool("verbose")))
	if err != nil {
		return err
	}

	data, err := loadMemberData(parseDataFile)
	if err != nil {
		return err
	}

	text, pageCount, err := loadStatement(args[0])
	if err != nil {
		return err
	}

	match, err := config.CreateMatchConfig(parseDateTolerance, parseMinConfidence, parseIncludeManual)
	if err != nil {
		return err
	}

	opts := config.CreateParseOptions(data, match, parseCurrency, pageCount, filepath.Base(args[0]), log)

	output, cleanup, err := openOutput(parseOutputFile)
	if err != nil {
		return err
	}
	defer cleanup()

	if parseLegacy {
		legacy := pipeline.ParseStatementLegacy(text, opts)
		enc := json.NewEncoder(output)
		enc.SetIndent("", "  ")
		return enc.Encode(legacy)
	}

	result := pipeline.ParseStatement(text, opts)

	reportConfig, err := config.CreateReportConfig(parseOutputFormat)
	if err != nil {
		return err
	}
	gen, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return err
	}
	if err := gen.GenerateReport(result, output); err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("parse failed: %s", result.Error)
	}
	return nil
}

// loadStatement reads the statement file. PDFs go through text extraction;
// anything else is treated as a plain-text export.
func loadStatement(path string) (string, int, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractor.ExtractCombined(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read statement: %w", err)
	}
	return string(raw), 0, nil
}

func loadMemberData(path string) (*store.MemberData, error) {
	if path == "" {
		return nil, nil
	}
	return store.Load(path)
}

func validateStatementFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("statement file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error accessing statement file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("statement path is a directory, expected a file: %s", path)
	}
	return nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
