package driven

import (
	"context"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

// GitHubClient defines the driven port for reading pull request review state
// from GitHub. Every method performs fresh requests; nothing is cached.
type GitHubClient interface {
	// FetchPullRequest returns the pull request details (REST).
	FetchPullRequest(ctx context.Context, repoFullName string, prNumber int) (*model.PullRequest, error)
	// FetchReviewComments returns every inline review comment on the pull request
	// in upstream order (REST, page-based pagination).
	FetchReviewComments(ctx context.Context, repoFullName string, prNumber int) ([]model.ReviewComment, error)
	// FetchReviewThreads returns every review thread with its comments
	// (GraphQL, cursor pagination).
	FetchReviewThreads(ctx context.Context, repoFullName string, prNumber int) ([]model.ReviewThread, error)
	// FetchCheckRuns returns all check runs for the given ref (REST, page-based pagination).
	FetchCheckRuns(ctx context.Context, repoFullName string, ref string) ([]model.CheckRun, error)
	// FetchCheckSuites returns all check suites for the given ref (REST, page-based pagination).
	FetchCheckSuites(ctx context.Context, repoFullName string, ref string) ([]model.CheckSuite, error)
	// FetchWorkflowRuns returns the most recent Actions workflow runs on branch.
	FetchWorkflowRuns(ctx context.Context, repoFullName string, branch string) ([]model.WorkflowRun, error)
	// FetchCombinedStatus returns the legacy combined commit status for the ref.
	// Returns nil, nil if no status checks are configured.
	FetchCombinedStatus(ctx context.Context, repoFullName string, ref string) (*model.CombinedStatus, error)
	// FetchFileContent returns the decoded content of a file at ref.
	FetchFileContent(ctx context.Context, repoFullName string, path string, ref string) (string, error)
}

// GitHubWriter defines the driven port for GitHub write operations.
// It is kept separate from GitHubClient (read operations).
type GitHubWriter interface {
	// ResolveReviewThread marks a thread resolved. threadID is the thread's
	// GraphQL node ID. It returns the resolved flag reported after the mutation.
	ResolveReviewThread(ctx context.Context, threadID string) (bool, error)
	// FetchThreadResolved reads the current resolved flag of a thread by its
	// GraphQL node ID.
	FetchThreadResolved(ctx context.Context, threadID string) (bool, error)
	// ReplyToReviewComment replies to a review comment. commentID is the REST
	// database ID of the comment.
	ReplyToReviewComment(ctx context.Context, repoFullName string, prNumber int, commentID int64, body string) (*model.ReviewComment, error)
}
