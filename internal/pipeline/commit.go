package pipeline

import (
	"context"

	"loyalty-statement-import/internal/backup"
	"loyalty-statement-import/pkg/errors"
	"loyalty-statement-import/pkg/logger"
)

// SnapshotStore is the slice of the backup store Commit needs.
type SnapshotStore interface {
	Save(ctx context.Context, snap *backup.Snapshot) error
}

// Commit enforces the snapshot-then-commit rule: the pre-import snapshot is
// written first, and only if that succeeds does the persistence write run.
// A failed snapshot aborts the commit; a failed persist leaves the snapshot
// in place so the caller can still undo whatever partial state their store
// may hold.
func Commit(ctx context.Context, store SnapshotStore, pre *backup.Snapshot, persist func(context.Context) error, log logger.Logger) error {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("commit")

	if store == nil || pre == nil {
		return errors.BackupError(errors.CodeBackupWrite, "commit", nil).
			WithSuggestion("a commit always needs a snapshot of the pre-import state")
	}

	if err := store.Save(ctx, pre); err != nil {
		log.WithError(err).Error("snapshot write failed, commit aborted")
		return err
	}

	if err := persist(ctx); err != nil {
		log.WithError(err).Error("persistence failed after snapshot; snapshot retained for undo")
		return errors.WrapIfNeeded(err, errors.CategoryResolve, errors.CodeUnexpectedError, "persist import")
	}

	log.Info("import committed")
	return nil
}
