package model

// ReviewThread is a group of review comments anchored to one file and line,
// sharing a single resolution flag. IsResolved is authoritative; comments carry
// no resolution state of their own.
type ReviewThread struct {
	ID         string // GraphQL global ID; required to resolve the thread.
	IsResolved bool
	IsOutdated bool // The diff region no longer exists at the head commit.
	Path       string
	Line       *int
	Comments   []ReviewComment
}

// RootComment returns the first comment of the thread.
func (t ReviewThread) RootComment() ReviewComment {
	return t.Comments[0]
}
