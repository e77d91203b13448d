package model

// PRState represents the lifecycle state of a pull request.
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
)

// ParsePRState converts an upstream state string into a PRState.
func ParsePRState(s string) (PRState, bool) {
	switch PRState(s) {
	case PRStateOpen, PRStateClosed:
		return PRState(s), true
	}
	return "", false
}

// MergeableStatus is GitHub's tri-state mergeable flag.
type MergeableStatus string

const (
	MergeableUnknown    MergeableStatus = "unknown"
	MergeableMergeable  MergeableStatus = "mergeable"
	MergeableConflicted MergeableStatus = "conflicted"
)

// CheckStatus is the lifecycle status of a check run.
type CheckStatus string

const (
	CheckStatusQueued     CheckStatus = "queued"
	CheckStatusInProgress CheckStatus = "in_progress"
	CheckStatusCompleted  CheckStatus = "completed"
	CheckStatusWaiting    CheckStatus = "waiting"
	CheckStatusRequested  CheckStatus = "requested"
	CheckStatusPending    CheckStatus = "pending"
)

// ParseCheckStatus converts an upstream status string into a CheckStatus.
// Unrecognized values are rejected so schema drift surfaces at the boundary.
func ParseCheckStatus(s string) (CheckStatus, bool) {
	switch CheckStatus(s) {
	case CheckStatusQueued, CheckStatusInProgress, CheckStatusCompleted,
		CheckStatusWaiting, CheckStatusRequested, CheckStatusPending:
		return CheckStatus(s), true
	}
	return "", false
}

// CheckConclusion is the final result of a completed check run.
type CheckConclusion string

const (
	ConclusionSuccess        CheckConclusion = "success"
	ConclusionFailure        CheckConclusion = "failure"
	ConclusionNeutral        CheckConclusion = "neutral"
	ConclusionCancelled      CheckConclusion = "cancelled" //nolint:misspell // GitHub API spelling.
	ConclusionTimedOut       CheckConclusion = "timed_out"
	ConclusionActionRequired CheckConclusion = "action_required"
	ConclusionSkipped        CheckConclusion = "skipped"
	ConclusionStale          CheckConclusion = "stale"
)

// ParseCheckConclusion converts an upstream conclusion string into a CheckConclusion.
func ParseCheckConclusion(s string) (CheckConclusion, bool) {
	switch CheckConclusion(s) {
	case ConclusionSuccess, ConclusionFailure, ConclusionNeutral, ConclusionCancelled,
		ConclusionTimedOut, ConclusionActionRequired, ConclusionSkipped, ConclusionStale:
		return CheckConclusion(s), true
	}
	return "", false
}

// IsFailing reports whether the conclusion counts as a failed check.
func (c CheckConclusion) IsFailing() bool {
	switch c {
	case ConclusionFailure, ConclusionCancelled, ConclusionTimedOut, ConclusionActionRequired:
		return true
	}
	return false
}
