package model

import "time"

// Snapshot is a summary row recorded each time a PRContext is built.
// It is history for display; it is never read back as a source of PR data.
type Snapshot struct {
	ID              int64
	RepoFullName    string
	PRNumber        int
	HeadSHA         string
	ThreadCount     int
	UnresolvedCount int
	CheckCount      int
	FailingCount    int
	TakenAt         time.Time
}

// SnapshotOf summarizes a PRContext.
func SnapshotOf(c *PRContext) Snapshot {
	return Snapshot{
		RepoFullName:    c.Repo,
		PRNumber:        c.PullRequest.Number,
		HeadSHA:         c.PullRequest.HeadSHA,
		ThreadCount:     len(c.Threads),
		UnresolvedCount: len(c.UnresolvedThreads),
		CheckCount:      len(c.Checks),
		FailingCount:    len(c.FailingChecks),
		TakenAt:         c.FetchedAt,
	}
}
