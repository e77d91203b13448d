package model

import "time"

// CheckRun represents one CI job result reported for a commit.
// Conclusion is nil unless Status is CheckStatusCompleted.
type CheckRun struct {
	ID            int64
	Name          string
	Status        CheckStatus
	Conclusion    *CheckConclusion
	DetailsURL    *string
	OutputTitle   *string
	OutputSummary *string
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// IsFailing reports whether the check completed with a failing conclusion.
// A check that has not completed is pending, never failing.
func (cr CheckRun) IsFailing() bool {
	return cr.Status == CheckStatusCompleted && cr.Conclusion != nil && cr.Conclusion.IsFailing()
}

// IsPending reports whether the check has not completed yet.
func (cr CheckRun) IsPending() bool {
	return cr.Status != CheckStatusCompleted
}

// CombinedStatus represents the aggregated commit status from the GitHub Status API.
type CombinedStatus struct {
	State    string         // Overall state: success, failure, pending.
	Statuses []CommitStatus // Individual status entries.
}

// CommitStatus represents an individual status entry from the GitHub Status API.
type CommitStatus struct {
	Context     string // CI service identifier (e.g., "ci/circleci").
	State       string // success, failure, pending, error.
	Description string
	TargetURL   string
}

// CheckSuite groups the check runs one GitHub App created for a commit.
// Status and Conclusion carry GitHub's raw values; suites report states such
// as startup_failure that individual check runs never do.
type CheckSuite struct {
	ID                   int64
	App                  string
	HeadBranch           string
	HeadSHA              string
	Status               string
	Conclusion           *string
	LatestCheckRunsCount int64
	CreatedAt            *time.Time
	UpdatedAt            *time.Time
}

// IsFailing reports whether the suite completed with a failing conclusion.
func (cs CheckSuite) IsFailing() bool {
	return cs.Status == string(CheckStatusCompleted) && failingConclusion(cs.Conclusion)
}

// WorkflowRun is one GitHub Actions workflow execution.
type WorkflowRun struct {
	ID         int64
	Name       string
	RunNumber  int
	Event      string
	HeadBranch string
	HeadSHA    string
	Status     string
	Conclusion *string
	HTMLURL    string
	CreatedAt  *time.Time
	UpdatedAt  *time.Time
}

// IsFailing reports whether the run completed with a failing conclusion.
func (wr WorkflowRun) IsFailing() bool {
	return wr.Status == string(CheckStatusCompleted) && failingConclusion(wr.Conclusion)
}

func failingConclusion(c *string) bool {
	if c == nil {
		return false
	}
	return *c == "startup_failure" || CheckConclusion(*c).IsFailing()
}
