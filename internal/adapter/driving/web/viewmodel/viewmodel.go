// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// ReportViewModel holds everything the review report page renders.
type ReportViewModel struct {
	Title       string
	Repository  string
	Number      int
	URL         string
	State       string
	Author      string
	Branch      string
	BaseBranch  string
	HeadSHA     string // Shortened for display.
	Mergeable   string
	BodyHTML    string // Sanitized; rendered through templ.Raw.
	GeneratedAt string

	ThreadCount     int
	UnresolvedCount int
	CheckCount      int
	FailingCount    int
	PendingCount    int

	UnresolvedThreads []ThreadViewModel
	FailingChecks     []CheckRunViewModel
	PendingChecks     []CheckRunViewModel
	Suggestions       []SuggestionViewModel
}

// ThreadViewModel holds presentation-ready data for a review comment thread.
type ThreadViewModel struct {
	ID           string
	Location     string // "path:line", or the bare path when the line is gone.
	IsOutdated   bool
	RootComment  CommentViewModel
	Replies      []CommentViewModel
	CommentCount int
}

// CommentViewModel holds presentation-ready data for one review comment.
type CommentViewModel struct {
	ID        int64
	Author    string
	BodyHTML  string
	DiffHTML  string
	CreatedAt string
}

// CheckRunViewModel holds presentation-ready data for a check run.
type CheckRunViewModel struct {
	Name       string
	Status     string
	Conclusion string
	DetailsURL string
	Summary    string
}

// SuggestionViewModel holds a code suggestion extracted from a review comment.
type SuggestionViewModel struct {
	Author       string
	Location     string
	ProposedCode string
}
