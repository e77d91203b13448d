package model

import "time"

// PullRequest is a point-in-time snapshot of a GitHub pull request.
// It is built once by the GitHub adapter and never mutated afterwards.
type PullRequest struct {
	Number       int
	NodeID       string // GraphQL global ID.
	RepoFullName string
	Title        string
	Body         string
	State        PRState
	Merged       bool
	HeadSHA      string // Keys the check run lookup.
	Branch       string // Head ref.
	BaseBranch   string
	Author       string
	URL          string
	DiffURL      string
	Mergeable    MergeableStatus // MergeableUnknown until GitHub has computed it.
	OpenedAt     time.Time
	UpdatedAt    time.Time
}

// IsOpen reports whether the pull request is still open.
func (pr PullRequest) IsOpen() bool {
	return pr.State == PRStateOpen
}
