package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
	"github.com/ericfisherdev/prresolver/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SnapshotStore = (*SnapshotRepo)(nil)

// SnapshotRepo is the SQLite implementation of the SnapshotStore port interface.
type SnapshotRepo struct {
	db *DB
}

// NewSnapshotRepo creates a new SnapshotRepo backed by the given DB.
func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Record inserts a snapshot and returns it with its assigned ID.
func (r *SnapshotRepo) Record(ctx context.Context, s model.Snapshot) (model.Snapshot, error) {
	const query = `
		INSERT INTO context_snapshots
			(repo_full_name, pr_number, head_sha, thread_count, unresolved_count, check_count, failing_count, taken_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if s.TakenAt.IsZero() {
		s.TakenAt = time.Now()
	}
	s.TakenAt = s.TakenAt.UTC()

	result, err := r.db.Writer.ExecContext(ctx, query,
		s.RepoFullName, s.PRNumber, s.HeadSHA,
		s.ThreadCount, s.UnresolvedCount, s.CheckCount, s.FailingCount,
		formatTime(s.TakenAt),
	)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("insert snapshot for %s#%d: %w", s.RepoFullName, s.PRNumber, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot id: %w", err)
	}
	s.ID = id

	return s, nil
}

// ListByPR returns snapshots of a pull request, newest first. limit <= 0
// returns all of them.
func (r *SnapshotRepo) ListByPR(ctx context.Context, repoFullName string, prNumber int, limit int) ([]model.Snapshot, error) {
	const query = `
		SELECT id, repo_full_name, pr_number, head_sha, thread_count, unresolved_count, check_count, failing_count, taken_at
		FROM context_snapshots
		WHERE repo_full_name = ? AND pr_number = ?
		ORDER BY taken_at DESC, id DESC
		LIMIT ?
	`

	// SQLite treats a negative LIMIT as no limit.
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Reader.QueryContext(ctx, query, repoFullName, prNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots for %s#%d: %w", repoFullName, prNumber, err)
	}
	defer rows.Close()

	snapshots := []model.Snapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snapshots, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (*model.Snapshot, error) {
	var snap model.Snapshot
	var takenAt string

	err := s.Scan(
		&snap.ID, &snap.RepoFullName, &snap.PRNumber, &snap.HeadSHA,
		&snap.ThreadCount, &snap.UnresolvedCount, &snap.CheckCount, &snap.FailingCount,
		&takenAt,
	)
	if err != nil {
		return nil, err
	}

	snap.TakenAt, err = parseTime(takenAt)
	if err != nil {
		return nil, fmt.Errorf("parse taken_at: %w", err)
	}

	return &snap, nil
}

// formatTime stores timestamps as RFC 3339 UTC text so ordering by the column
// is chronological.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05.000000000Z",
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}
