package driven

import (
	"context"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

// SnapshotStore defines the driven port for recording context snapshot history.
type SnapshotStore interface {
	// Record stores a snapshot and returns it with its assigned ID.
	Record(ctx context.Context, snapshot model.Snapshot) (model.Snapshot, error)
	// ListByPR returns the most recent snapshots for a pull request, newest first.
	// limit <= 0 returns all of them.
	ListByPR(ctx context.Context, repoFullName string, prNumber int, limit int) ([]model.Snapshot, error)
}
