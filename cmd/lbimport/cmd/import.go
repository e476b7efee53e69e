package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"loyalty-statement-import/cmd/lbimport/config"
	"loyalty-statement-import/internal/backup"
	"loyalty-statement-import/internal/models"
	"loyalty-statement-import/internal/pipeline"
	"loyalty-statement-import/internal/store"
	"loyalty-statement-import/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the import command
var (
	importDataFile      string
	importBackupFile    string
	importCurrency      string
	importResolutions   string
	importDateTolerance int
	importMinConfidence float64
	importIncludeManual bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <statement>",
	Short: "Parse a statement and commit it into the member data file",
	Long: `Import runs the full two-phase pipeline: parse the statement, apply
conflict resolutions, and commit the result into the member data file.

Before anything is written, the current member data is snapshotted into the
backup database. If the snapshot cannot be written the import is aborted, so
there is always a way back to the pre-import state.

When the parse finds conflicts, the import stops and lists them. Provide a
decision for each via a resolutions file and run the import again:

  {
    "conflict-pf-2025-11-30-AMS-BER-KL1775": "use_incoming",
    "conflict-miles-2025-11": "keep_existing"
  }

Examples:
  lbimport import statement.pdf --data member.json --backup backups.db
  lbimport import statement.pdf --data member.json --backup backups.db \
    --resolutions decisions.json`,

	Args:    cobra.ExactArgs(1),
	PreRunE: validateImportFlags,
	RunE:    runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importDataFile, "data", "", "member data file to import into (required)")
	importCmd.Flags().StringVar(&importBackupFile, "backup", "", "backup database path (required)")
	importCmd.Flags().StringVar(&importCurrency, "currency", "", "account currency, used to disambiguate shared symbols")
	importCmd.Flags().StringVar(&importResolutions, "resolutions", "", "JSON file mapping conflict IDs to resolutions")
	importCmd.Flags().IntVarP(&importDateTolerance, "date-tolerance", "d", 1, "fuzzy match date tolerance in days")
	importCmd.Flags().Float64Var(&importMinConfidence, "min-confidence", 0, "minimum fuzzy match confidence (0 keeps the default)")
	importCmd.Flags().BoolVar(&importIncludeManual, "include-manual", false, "match against manually entered flights too")

	importCmd.MarkFlagRequired("data")
	importCmd.MarkFlagRequired("backup")
}

func validateImportFlags(cmd *cobra.Command, args []string) error {
	if err := validateStatementFile(args[0]); err != nil {
		return err
	}
	if importDataFile == "" {
		return fmt.Errorf("data file is required")
	}
	if importBackupFile == "" {
		return fmt.Errorf("backup database path is required")
	}
	if importResolutions != "" {
		if _, err := os.Stat(importResolutions); err != nil {
			return fmt.Errorf("cannot access resolutions file: %w", err)
		}
	}
	if importDateTolerance < 0 {
		return fmt.Errorf("date tolerance cannot be negative")
	}
	if importMinConfidence < 0 || importMinConfidence > 1 {
		return fmt.Errorf("min confidence must be between 0 and 1")
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	log, err := logger.New(config.CreateLoggerConfig(viper.GetBool("verbose")))
	if err != nil {
		return err
	}

	data, err := store.Load(importDataFile)
	if err != nil {
		return err
	}

	text, pageCount, err := loadStatement(args[0])
	if err != nil {
		return err
	}
	source := filepath.Base(args[0])

	match, err := config.CreateMatchConfig(importDateTolerance, importMinConfidence, importIncludeManual)
	if err != nil {
		return err
	}

	opts := config.CreateParseOptions(data, match, importCurrency, pageCount, source, log)
	result := pipeline.ParseStatement(text, opts)
	if !result.Success {
		return fmt.Errorf("parse failed: %s", result.Error)
	}

	resolutions, err := loadResolutions(importResolutions)
	if err != nil {
		return err
	}

	if unresolved := unresolvedConflicts(result, resolutions); len(unresolved) > 0 {
		fmt.Fprintf(os.Stderr, "Import stopped: %d conflict(s) need a resolution:\n", len(unresolved))
		for _, c := range unresolved {
			fmt.Fprintf(os.Stderr, "  %s (%s, confidence %.2f): %s\n", c.ID, c.Type, c.MatchConfidence, c.MatchReason)
		}
		fmt.Fprintf(os.Stderr, "\nProvide decisions with --resolutions and run the import again.\n")
		return fmt.Errorf("%d unresolved conflict(s)", len(unresolved))
	}

	resolved, err := pipeline.Resolve(result, resolutions, log)
	if err != nil {
		return err
	}

	snapshots, err := backup.Open(importBackupFile, log)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	snap, err := data.Snapshot(source)
	if err != nil {
		return err
	}

	err = pipeline.Commit(ctx, snapshots, snap, func(context.Context) error {
		data.ApplyImport(resolved)
		return store.Save(importDataFile, data)
	}, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Imported %d flight(s) and %d miles month(s) from %s.\n",
		len(resolved.FlightsToAdd), len(resolved.MilesToMerge), source)
	if resolved.QualificationSettings != nil {
		fmt.Fprintf(os.Stderr, "Status: %s", resolved.QualificationSettings.CurrentStatus)
		if resolved.QualificationSettings.CycleStartMonth != "" {
			fmt.Fprintf(os.Stderr, " (cycle start %s)", resolved.QualificationSettings.CycleStartMonth)
		}
		fmt.Fprintf(os.Stderr, "\n")
	}
	fmt.Fprintf(os.Stderr, "Pre-import snapshot saved; use 'lbimport backup restore' to undo.\n")
	return nil
}

func loadResolutions(path string) (map[string]models.Resolution, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resolutions file: %w", err)
	}

	var resolutions map[string]models.Resolution
	if err := json.Unmarshal(raw, &resolutions); err != nil {
		return nil, fmt.Errorf("resolutions file is not valid JSON: %w", err)
	}

	for id, r := range resolutions {
		if !r.IsValid() {
			return nil, fmt.Errorf("invalid resolution %q for conflict %s. Use keep_existing, use_incoming, or keep_both", r, id)
		}
	}
	return resolutions, nil
}

func unresolvedConflicts(result *pipeline.ImportResult, resolutions map[string]models.Resolution) []*models.ImportConflict {
	var unresolved []*models.ImportConflict
	for _, c := range result.Conflicts {
		if c.Resolution != "" {
			continue
		}
		if _, ok := resolutions[c.ID]; ok {
			continue
		}
		unresolved = append(unresolved, c)
	}
	return unresolved
}
