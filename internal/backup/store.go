// Package backup persists a single-slot snapshot of the member's records so
// a committed import can be rolled back. Exactly one snapshot exists at a
// time; committing a new import overwrites the previous one.
package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"loyalty-statement-import/internal/models"
	"loyalty-statement-import/pkg/errors"
	"loyalty-statement-import/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS backup_snapshot (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	created_at TEXT NOT NULL,
	snapshot   BLOB NOT NULL
);
`

// Snapshot is the pre-import state written before any mutation of a commit.
type Snapshot struct {
	CreatedAt     time.Time                     `json:"createdAt"`
	Source        string                        `json:"source,omitempty"`
	Flights       []*models.Flight              `json:"flights"`
	Miles         []*models.MilesRecord         `json:"miles"`
	Qualification *models.QualificationSettings `json:"qualification,omitempty"`

	// ManualLedger is an opaque blob of caller-side manual entries, carried
	// through so an undo restores them byte for byte.
	ManualLedger json.RawMessage `json:"manualLedger,omitempty"`
}

// Store is a SQLite-backed snapshot store.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

// Open opens (or creates) the snapshot database at path.
func Open(path string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("backup")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.BackupError(errors.CodeBackupWrite, "open", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, errors.BackupError(errors.CodeBackupWrite, "set journal mode", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.BackupError(errors.CodeBackupWrite, "create schema", err)
	}

	log.WithField("path", path).Debug("backup store opened")
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the snapshot, replacing any previous one. The snapshot's
// creation time is set here.
func (s *Store) Save(ctx context.Context, snap *Snapshot) error {
	snap.CreatedAt = time.Now().UTC()

	blob, err := json.Marshal(snap)
	if err != nil {
		return errors.BackupError(errors.CodeBackupWrite, "encode snapshot", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO backup_snapshot (id, created_at, snapshot) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET created_at = excluded.created_at, snapshot = excluded.snapshot`,
		snap.CreatedAt.Format(time.RFC3339Nano), blob)
	if err != nil {
		return errors.BackupError(errors.CodeBackupWrite, "save snapshot", err)
	}

	s.log.WithField("flights", len(snap.Flights)).Info("backup snapshot written")
	return nil
}

// Has reports whether a snapshot exists.
func (s *Store) Has(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM backup_snapshot").Scan(&n)
	if err != nil {
		return false, errors.BackupError(errors.CodeBackupRead, "check snapshot", err)
	}
	return n > 0, nil
}

// Restore returns the stored snapshot. It fails with a backup_missing error
// when none exists.
func (s *Store) Restore(ctx context.Context) (*Snapshot, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT snapshot FROM backup_snapshot WHERE id = 1").Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, errors.BackupError(errors.CodeBackupMissing, "restore", nil)
	}
	if err != nil {
		return nil, errors.BackupError(errors.CodeBackupRead, "restore", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, errors.BackupError(errors.CodeBackupRead, "decode snapshot", err)
	}

	s.log.WithField("created_at", snap.CreatedAt).Info("backup snapshot restored")
	return &snap, nil
}

// Clear removes the stored snapshot, if any.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM backup_snapshot"); err != nil {
		return errors.BackupError(errors.CodeBackupWrite, "clear snapshot", err)
	}
	return nil
}

// Age returns how old the stored snapshot is. It fails with a backup_missing
// error when none exists.
func (s *Store) Age(ctx context.Context) (time.Duration, error) {
	var createdAt string
	err := s.db.QueryRowContext(ctx, "SELECT created_at FROM backup_snapshot WHERE id = 1").Scan(&createdAt)
	if err == sql.ErrNoRows {
		return 0, errors.BackupError(errors.CodeBackupMissing, "age", nil)
	}
	if err != nil {
		return 0, errors.BackupError(errors.CodeBackupRead, "age", err)
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return 0, errors.BackupError(errors.CodeBackupRead, "parse snapshot time", err)
	}

	return time.Since(t), nil
}
