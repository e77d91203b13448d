package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/prresolver/internal/application"
	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ContextResponse is the JSON representation of a pull request context.
type ContextResponse struct {
	Repository        string             `json:"repository" yaml:"repository"`
	PullRequest       PRResponse         `json:"pull_request" yaml:"pull_request"`
	Threads           []ThreadResponse   `json:"threads" yaml:"threads"`
	Checks            []CheckRunResponse `json:"checks" yaml:"checks"`
	UnresolvedThreads []ThreadResponse   `json:"unresolved_threads" yaml:"unresolved_threads"`
	FailingChecks     []CheckRunResponse `json:"failing_checks" yaml:"failing_checks"`
	PendingChecks     []CheckRunResponse `json:"pending_checks" yaml:"pending_checks"`
	FetchedAt         string             `json:"fetched_at" yaml:"fetched_at"`
}

// PRResponse is the JSON representation of a pull request.
type PRResponse struct {
	Number     int    `json:"number" yaml:"number"`
	NodeID     string `json:"node_id" yaml:"node_id"`
	Repository string `json:"repository" yaml:"repository"`
	Title      string `json:"title" yaml:"title"`
	Body       string `json:"body" yaml:"body"`
	State      string `json:"state" yaml:"state"`
	Merged     bool   `json:"merged" yaml:"merged"`
	HeadSHA    string `json:"head_sha" yaml:"head_sha"`
	Branch     string `json:"branch" yaml:"branch"`
	BaseBranch string `json:"base_branch" yaml:"base_branch"`
	Author     string `json:"author" yaml:"author"`
	URL        string `json:"url" yaml:"url"`
	DiffURL    string `json:"diff_url" yaml:"diff_url"`
	Mergeable  string `json:"mergeable" yaml:"mergeable"`
	OpenedAt   string `json:"opened_at" yaml:"opened_at"`
	UpdatedAt  string `json:"updated_at" yaml:"updated_at"`
}

// ThreadResponse is the JSON representation of a review thread.
type ThreadResponse struct {
	ID         string            `json:"id" yaml:"id"`
	IsResolved bool              `json:"is_resolved" yaml:"is_resolved"`
	IsOutdated bool              `json:"is_outdated" yaml:"is_outdated"`
	Path       string            `json:"path" yaml:"path"`
	Line       *int              `json:"line" yaml:"line"`
	Comments   []CommentResponse `json:"comments" yaml:"comments"`
}

// CommentResponse is the JSON representation of a review comment. Both the
// numeric REST id and the GraphQL node id are carried.
type CommentResponse struct {
	ID           int64  `json:"id" yaml:"id"`
	NodeID       string `json:"node_id" yaml:"node_id"`
	Author       string `json:"author" yaml:"author"`
	Body         string `json:"body" yaml:"body"`
	Path         string `json:"path" yaml:"path"`
	Line         *int   `json:"line" yaml:"line"`
	OriginalLine *int   `json:"original_line" yaml:"original_line"`
	DiffHunk     string `json:"diff_hunk" yaml:"diff_hunk"`
	InReplyToID  *int64 `json:"in_reply_to_id" yaml:"in_reply_to_id"`
	ReviewID     *int64 `json:"review_id" yaml:"review_id"`
	CreatedAt    string `json:"created_at" yaml:"created_at"`
	UpdatedAt    string `json:"updated_at" yaml:"updated_at"`
}

// CheckRunResponse is the JSON representation of a check run.
type CheckRunResponse struct {
	ID            int64   `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Status        string  `json:"status" yaml:"status"`
	Conclusion    *string `json:"conclusion" yaml:"conclusion"`
	DetailsURL    *string `json:"details_url" yaml:"details_url"`
	OutputTitle   *string `json:"output_title" yaml:"output_title"`
	OutputSummary *string `json:"output_summary" yaml:"output_summary"`
	StartedAt     *string `json:"started_at" yaml:"started_at"`
	CompletedAt   *string `json:"completed_at" yaml:"completed_at"`
}

// CheckSuiteResponse is the JSON representation of a check suite.
type CheckSuiteResponse struct {
	ID                   int64   `json:"id" yaml:"id"`
	App                  string  `json:"app" yaml:"app"`
	HeadBranch           string  `json:"head_branch" yaml:"head_branch"`
	HeadSHA              string  `json:"head_sha" yaml:"head_sha"`
	Status               string  `json:"status" yaml:"status"`
	Conclusion           *string `json:"conclusion" yaml:"conclusion"`
	LatestCheckRunsCount int64   `json:"latest_check_runs_count" yaml:"latest_check_runs_count"`
	CreatedAt            *string `json:"created_at" yaml:"created_at"`
	UpdatedAt            *string `json:"updated_at" yaml:"updated_at"`
}

// WorkflowRunResponse is the JSON representation of an Actions workflow run.
type WorkflowRunResponse struct {
	ID         int64   `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	RunNumber  int     `json:"run_number" yaml:"run_number"`
	Event      string  `json:"event" yaml:"event"`
	HeadBranch string  `json:"head_branch" yaml:"head_branch"`
	HeadSHA    string  `json:"head_sha" yaml:"head_sha"`
	Status     string  `json:"status" yaml:"status"`
	Conclusion *string `json:"conclusion" yaml:"conclusion"`
	HTMLURL    string  `json:"html_url" yaml:"html_url"`
	CreatedAt  *string `json:"created_at" yaml:"created_at"`
	UpdatedAt  *string `json:"updated_at" yaml:"updated_at"`
}

// SnapshotResponse is the JSON representation of a recorded context snapshot.
type SnapshotResponse struct {
	ID              int64  `json:"id" yaml:"id"`
	Repository      string `json:"repository" yaml:"repository"`
	Number          int    `json:"number" yaml:"number"`
	HeadSHA         string `json:"head_sha" yaml:"head_sha"`
	ThreadCount     int    `json:"thread_count" yaml:"thread_count"`
	UnresolvedCount int    `json:"unresolved_count" yaml:"unresolved_count"`
	CheckCount      int    `json:"check_count" yaml:"check_count"`
	FailingCount    int    `json:"failing_count" yaml:"failing_count"`
	TakenAt         string `json:"taken_at" yaml:"taken_at"`
}

// CombinedStatusResponse is the JSON representation of the legacy combined
// commit status.
type CombinedStatusResponse struct {
	State    string                 `json:"state" yaml:"state"`
	Statuses []CommitStatusResponse `json:"statuses" yaml:"statuses"`
}

// CommitStatusResponse is one entry of a combined status.
type CommitStatusResponse struct {
	Context     string `json:"context" yaml:"context"`
	State       string `json:"state" yaml:"state"`
	Description string `json:"description" yaml:"description"`
	TargetURL   string `json:"target_url" yaml:"target_url"`
}

// SuggestionResponse is the JSON representation of a suggested change.
type SuggestionResponse struct {
	ThreadID     string `json:"thread_id" yaml:"thread_id"`
	CommentID    int64  `json:"comment_id" yaml:"comment_id"`
	Author       string `json:"author" yaml:"author"`
	Path         string `json:"path" yaml:"path"`
	Line         *int   `json:"line" yaml:"line"`
	ProposedCode string `json:"proposed_code" yaml:"proposed_code"`
}

// ResolveResponse is the JSON body returned by the resolve endpoint.
type ResolveResponse struct {
	ThreadID   string `json:"thread_id" yaml:"thread_id"`
	IsResolved bool   `json:"is_resolved" yaml:"is_resolved"`
}

// ReplyRequest is the JSON body for the reply endpoint.
type ReplyRequest struct {
	Body string `json:"body"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToContextResponse converts a PRContext to its JSON response representation.
func ToContextResponse(c *model.PRContext) ContextResponse {
	return ContextResponse{
		Repository:        c.Repo,
		PullRequest:       ToPRResponse(c.PullRequest),
		Threads:           ToThreadResponses(c.Threads),
		Checks:            ToCheckRunResponses(c.Checks),
		UnresolvedThreads: ToThreadResponses(c.UnresolvedThreads),
		FailingChecks:     ToCheckRunResponses(c.FailingChecks),
		PendingChecks:     ToCheckRunResponses(c.PendingChecks()),
		FetchedAt:         formatTime(c.FetchedAt),
	}
}

// ToPRResponse converts a domain PullRequest to its JSON response representation.
func ToPRResponse(pr model.PullRequest) PRResponse {
	return PRResponse{
		Number:     pr.Number,
		NodeID:     pr.NodeID,
		Repository: pr.RepoFullName,
		Title:      pr.Title,
		Body:       pr.Body,
		State:      string(pr.State),
		Merged:     pr.Merged,
		HeadSHA:    pr.HeadSHA,
		Branch:     pr.Branch,
		BaseBranch: pr.BaseBranch,
		Author:     pr.Author,
		URL:        pr.URL,
		DiffURL:    pr.DiffURL,
		Mergeable:  string(pr.Mergeable),
		OpenedAt:   formatTime(pr.OpenedAt),
		UpdatedAt:  formatTime(pr.UpdatedAt),
	}
}

// ToThreadResponses converts review threads, keeping their order.
func ToThreadResponses(threads []model.ReviewThread) []ThreadResponse {
	resp := make([]ThreadResponse, 0, len(threads))
	for _, t := range threads {
		resp = append(resp, ThreadResponse{
			ID:         t.ID,
			IsResolved: t.IsResolved,
			IsOutdated: t.IsOutdated,
			Path:       t.Path,
			Line:       t.Line,
			Comments:   ToCommentResponses(t.Comments),
		})
	}
	return resp
}

// ToCommentResponses converts review comments, keeping their order.
func ToCommentResponses(comments []model.ReviewComment) []CommentResponse {
	resp := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, ToCommentResponse(c))
	}
	return resp
}

// ToCommentResponse converts a domain ReviewComment to its JSON representation.
func ToCommentResponse(c model.ReviewComment) CommentResponse {
	return CommentResponse{
		ID:           c.ID,
		NodeID:       c.NodeID,
		Author:       c.Author,
		Body:         c.Body,
		Path:         c.Path,
		Line:         c.Line,
		OriginalLine: c.OriginalLine,
		DiffHunk:     c.DiffHunk,
		InReplyToID:  c.InReplyToID,
		ReviewID:     c.ReviewID,
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
	}
}

// ToCheckRunResponses converts check runs, keeping their order.
func ToCheckRunResponses(runs []model.CheckRun) []CheckRunResponse {
	resp := make([]CheckRunResponse, 0, len(runs))
	for _, cr := range runs {
		var conclusion *string
		if cr.Conclusion != nil {
			s := string(*cr.Conclusion)
			conclusion = &s
		}
		resp = append(resp, CheckRunResponse{
			ID:            cr.ID,
			Name:          cr.Name,
			Status:        string(cr.Status),
			Conclusion:    conclusion,
			DetailsURL:    cr.DetailsURL,
			OutputTitle:   cr.OutputTitle,
			OutputSummary: cr.OutputSummary,
			StartedAt:     formatTimePtr(cr.StartedAt),
			CompletedAt:   formatTimePtr(cr.CompletedAt),
		})
	}
	return resp
}

// ToCheckSuiteResponses converts check suites, keeping their order.
func ToCheckSuiteResponses(suites []model.CheckSuite) []CheckSuiteResponse {
	resp := make([]CheckSuiteResponse, 0, len(suites))
	for _, cs := range suites {
		resp = append(resp, CheckSuiteResponse{
			ID:                   cs.ID,
			App:                  cs.App,
			HeadBranch:           cs.HeadBranch,
			HeadSHA:              cs.HeadSHA,
			Status:               cs.Status,
			Conclusion:           cs.Conclusion,
			LatestCheckRunsCount: cs.LatestCheckRunsCount,
			CreatedAt:            formatTimePtr(cs.CreatedAt),
			UpdatedAt:            formatTimePtr(cs.UpdatedAt),
		})
	}
	return resp
}

// ToWorkflowRunResponses converts workflow runs, keeping their order.
func ToWorkflowRunResponses(runs []model.WorkflowRun) []WorkflowRunResponse {
	resp := make([]WorkflowRunResponse, 0, len(runs))
	for _, wr := range runs {
		resp = append(resp, WorkflowRunResponse{
			ID:         wr.ID,
			Name:       wr.Name,
			RunNumber:  wr.RunNumber,
			Event:      wr.Event,
			HeadBranch: wr.HeadBranch,
			HeadSHA:    wr.HeadSHA,
			Status:     wr.Status,
			Conclusion: wr.Conclusion,
			HTMLURL:    wr.HTMLURL,
			CreatedAt:  formatTimePtr(wr.CreatedAt),
			UpdatedAt:  formatTimePtr(wr.UpdatedAt),
		})
	}
	return resp
}

// ToSnapshotResponses converts recorded snapshots, keeping their order.
func ToSnapshotResponses(snapshots []model.Snapshot) []SnapshotResponse {
	resp := make([]SnapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		resp = append(resp, SnapshotResponse{
			ID:              s.ID,
			Repository:      s.RepoFullName,
			Number:          s.PRNumber,
			HeadSHA:         s.HeadSHA,
			ThreadCount:     s.ThreadCount,
			UnresolvedCount: s.UnresolvedCount,
			CheckCount:      s.CheckCount,
			FailingCount:    s.FailingCount,
			TakenAt:         formatTime(s.TakenAt),
		})
	}
	return resp
}

// ToCombinedStatusResponse converts a combined status. A nil status, reported
// when no statuses are configured, becomes an empty response.
func ToCombinedStatusResponse(cs *model.CombinedStatus) CombinedStatusResponse {
	resp := CombinedStatusResponse{Statuses: []CommitStatusResponse{}}
	if cs == nil {
		return resp
	}
	resp.State = cs.State
	for _, s := range cs.Statuses {
		resp.Statuses = append(resp.Statuses, CommitStatusResponse{
			Context:     s.Context,
			State:       s.State,
			Description: s.Description,
			TargetURL:   s.TargetURL,
		})
	}
	return resp
}

// ToSuggestionResponses converts extracted suggestions, keeping their order.
func ToSuggestionResponses(suggestions []application.Suggestion) []SuggestionResponse {
	resp := make([]SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		resp = append(resp, SuggestionResponse{
			ThreadID:     s.ThreadID,
			CommentID:    s.CommentID,
			Author:       s.Author,
			Path:         s.FilePath,
			Line:         s.Line,
			ProposedCode: s.ProposedCode,
		})
	}
	return resp
}
