package model

import "time"

// PRContext is the aggregated review state of one pull request. It is built
// fresh for every request and never partially updated.
type PRContext struct {
	Repo              string
	PullRequest       PullRequest
	Threads           []ReviewThread
	Checks            []CheckRun
	UnresolvedThreads []ReviewThread
	FailingChecks     []CheckRun
	FetchedAt         time.Time
}

// NewPRContext assembles a PRContext and derives its filtered views.
func NewPRContext(repo string, pr PullRequest, threads []ReviewThread, checks []CheckRun, fetchedAt time.Time) *PRContext {
	if threads == nil {
		threads = []ReviewThread{}
	}
	if checks == nil {
		checks = []CheckRun{}
	}
	return &PRContext{
		Repo:              repo,
		PullRequest:       pr,
		Threads:           threads,
		Checks:            checks,
		UnresolvedThreads: UnresolvedThreads(threads),
		FailingChecks:     FailingChecks(checks),
		FetchedAt:         fetchedAt,
	}
}

// PendingChecks returns the checks that have not completed, in original order.
func (c *PRContext) PendingChecks() []CheckRun {
	pending := []CheckRun{}
	for _, cr := range c.Checks {
		if cr.IsPending() {
			pending = append(pending, cr)
		}
	}
	return pending
}

// UnresolvedThreads returns the threads that are not resolved, in original order.
func UnresolvedThreads(threads []ReviewThread) []ReviewThread {
	out := []ReviewThread{}
	for _, t := range threads {
		if !t.IsResolved {
			out = append(out, t)
		}
	}
	return out
}

// FailingChecks returns the checks with a failing conclusion, in original order.
func FailingChecks(checks []CheckRun) []CheckRun {
	out := []CheckRun{}
	for _, cr := range checks {
		if cr.IsFailing() {
			out = append(out, cr)
		}
	}
	return out
}
