package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"loyalty-statement-import/cmd/lbimport/config"
	"loyalty-statement-import/internal/backup"
	"loyalty-statement-import/internal/store"
	"loyalty-statement-import/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the backup commands
var (
	backupDBFile   string
	backupDataFile string
)

// backupCmd groups the snapshot subcommands
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Inspect, restore, or clear the pre-import snapshot",
	Long: `A single snapshot of the member data is written before every committed
import. These commands inspect that snapshot, roll the member data file back
to it, or discard it.

Examples:
  lbimport backup info --backup backups.db
  lbimport backup restore --backup backups.db --data member.json
  lbimport backup clear --backup backups.db`,
}

var backupInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show whether a snapshot exists and how old it is",
	RunE:  runBackupInfo,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Roll the member data file back to the snapshot",
	RunE:  runBackupRestore,
}

var backupClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the snapshot",
	RunE:  runBackupClear,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupInfoCmd, backupRestoreCmd, backupClearCmd)

	backupCmd.PersistentFlags().StringVar(&backupDBFile, "backup", "", "backup database path (required)")
	backupCmd.MarkPersistentFlagRequired("backup")

	backupRestoreCmd.Flags().StringVar(&backupDataFile, "data", "", "member data file to restore into (required)")
	backupRestoreCmd.MarkFlagRequired("data")
}

func openBackupStore() (*backup.Store, logger.Logger, error) {
	log, err := logger.New(config.CreateLoggerConfig(viper.GetBool("verbose")))
	if err != nil {
		return nil, nil, err
	}

	snapshots, err := backup.Open(backupDBFile, log)
	if err != nil {
		return nil, nil, err
	}
	return snapshots, log, nil
}

func runBackupInfo(cmd *cobra.Command, args []string) error {
	snapshots, _, err := openBackupStore()
	if err != nil {
		return err
	}
	defer snapshots.Close()

	ctx := context.Background()
	has, err := snapshots.Has(ctx)
	if err != nil {
		return err
	}
	if !has {
		fmt.Println("No snapshot exists.")
		return nil
	}

	age, err := snapshots.Age(ctx)
	if err != nil {
		return err
	}
	snap, err := snapshots.Restore(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Snapshot taken %s ago", age.Round(time.Second))
	if snap.Source != "" {
		fmt.Printf(" before importing %s", snap.Source)
	}
	fmt.Printf("\nContents: %d flight(s), %d miles month(s)\n", len(snap.Flights), len(snap.Miles))
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	snapshots, _, err := openBackupStore()
	if err != nil {
		return err
	}
	defer snapshots.Close()

	snap, err := snapshots.Restore(context.Background())
	if err != nil {
		return err
	}

	data, err := store.Load(backupDataFile)
	if err != nil {
		// A corrupt data file is exactly what a restore should recover from.
		fmt.Fprintf(os.Stderr, "Warning: existing member data unreadable, restoring over it: %v\n", err)
		data = &store.MemberData{}
	}

	if err := data.RestoreFrom(snap); err != nil {
		return err
	}
	if err := store.Save(backupDataFile, data); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Member data restored to the state before importing %s.\n", snap.Source)
	return nil
}

func runBackupClear(cmd *cobra.Command, args []string) error {
	snapshots, _, err := openBackupStore()
	if err != nil {
		return err
	}
	defer snapshots.Close()

	if err := snapshots.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Snapshot cleared.")
	return nil
}
