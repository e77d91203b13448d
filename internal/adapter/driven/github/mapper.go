package github

import (
	"time"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

// Mappers translate upstream payloads into domain types. Optional upstream
// fields stay optional; missing required fields become MalformedResponseError.

func missing(entity, field string) error {
	return &model.MalformedResponseError{Entity: entity, Field: field}
}

func unrecognized(entity, field, value string) error {
	return &model.MalformedResponseError{Entity: entity, Field: field, Value: value}
}

// authorLogin substitutes the ghost login for deleted accounts.
func authorLogin(login *string) string {
	if login == nil || *login == "" {
		return model.GhostLogin
	}
	return *login
}

func timePtr(ts *gh.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time
	return &t
}

// mapPullRequest converts a go-github PullRequest to a domain model PullRequest.
func mapPullRequest(pr *gh.PullRequest, repoFullName string) (*model.PullRequest, error) {
	const entity = "pull request"

	switch {
	case pr.Number == nil:
		return nil, missing(entity, "number")
	case pr.Title == nil:
		return nil, missing(entity, "title")
	case pr.State == nil:
		return nil, missing(entity, "state")
	case pr.Head == nil || pr.Head.SHA == nil:
		return nil, missing(entity, "head.sha")
	case pr.Head.Ref == nil:
		return nil, missing(entity, "head.ref")
	case pr.Base == nil || pr.Base.Ref == nil:
		return nil, missing(entity, "base.ref")
	case pr.HTMLURL == nil:
		return nil, missing(entity, "html_url")
	}

	state, ok := model.ParsePRState(pr.GetState())
	if !ok {
		return nil, unrecognized(entity, "state", pr.GetState())
	}

	var author *string
	if pr.User != nil {
		author = pr.User.Login
	}

	return &model.PullRequest{
		Number:       pr.GetNumber(),
		NodeID:       pr.GetNodeID(),
		RepoFullName: repoFullName,
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		State:        state,
		Merged:       pr.GetMerged() || !pr.GetMergedAt().IsZero(),
		HeadSHA:      pr.GetHead().GetSHA(),
		Branch:       pr.GetHead().GetRef(),
		BaseBranch:   pr.GetBase().GetRef(),
		Author:       authorLogin(author),
		URL:          pr.GetHTMLURL(),
		DiffURL:      pr.GetDiffURL(),
		Mergeable:    mapMergeable(pr.Mergeable),
		OpenedAt:     pr.GetCreatedAt().Time,
		UpdatedAt:    pr.GetUpdatedAt().Time,
	}, nil
}

// mapMergeable converts a *bool (GitHub's tri-state mergeable field) to a MergeableStatus.
// nil means GitHub hasn't computed it yet; true means mergeable; false means conflicted.
func mapMergeable(mergeable *bool) model.MergeableStatus {
	if mergeable == nil {
		return model.MergeableUnknown
	}
	if *mergeable {
		return model.MergeableMergeable
	}
	return model.MergeableConflicted
}

// mapReviewComment converts a go-github PullRequestComment to a domain model ReviewComment.
func mapReviewComment(c *gh.PullRequestComment) (model.ReviewComment, error) {
	const entity = "review comment"

	switch {
	case c.ID == nil:
		return model.ReviewComment{}, missing(entity, "id")
	case c.NodeID == nil:
		return model.ReviewComment{}, missing(entity, "node_id")
	case c.Body == nil:
		return model.ReviewComment{}, missing(entity, "body")
	case c.Path == nil:
		return model.ReviewComment{}, missing(entity, "path")
	case c.DiffHunk == nil:
		return model.ReviewComment{}, missing(entity, "diff_hunk")
	case c.CreatedAt == nil:
		return model.ReviewComment{}, missing(entity, "created_at")
	case c.UpdatedAt == nil:
		return model.ReviewComment{}, missing(entity, "updated_at")
	}

	var author *string
	if c.User != nil {
		author = c.User.Login
	}

	return model.ReviewComment{
		ID:           c.GetID(),
		NodeID:       c.GetNodeID(),
		Body:         c.GetBody(),
		Path:         c.GetPath(),
		Line:         c.Line,
		OriginalLine: c.OriginalLine,
		DiffHunk:     c.GetDiffHunk(),
		Author:       authorLogin(author),
		CreatedAt:    c.GetCreatedAt().Time,
		UpdatedAt:    c.GetUpdatedAt().Time,
		InReplyToID:  c.InReplyTo,
		ReviewID:     c.PullRequestReviewID,
	}, nil
}

// mapCheckRun converts a go-github CheckRun to a domain model CheckRun.
// The conclusion must be present exactly when the run has completed.
func mapCheckRun(cr *gh.CheckRun) (model.CheckRun, error) {
	const entity = "check run"

	switch {
	case cr.ID == nil:
		return model.CheckRun{}, missing(entity, "id")
	case cr.Name == nil:
		return model.CheckRun{}, missing(entity, "name")
	case cr.Status == nil:
		return model.CheckRun{}, missing(entity, "status")
	}

	status, ok := model.ParseCheckStatus(cr.GetStatus())
	if !ok {
		return model.CheckRun{}, unrecognized(entity, "status", cr.GetStatus())
	}

	var conclusion *model.CheckConclusion
	if raw := cr.GetConclusion(); raw != "" {
		if status != model.CheckStatusCompleted {
			return model.CheckRun{}, unrecognized(entity, "conclusion for status "+string(status), raw)
		}
		parsed, ok := model.ParseCheckConclusion(raw)
		if !ok {
			return model.CheckRun{}, unrecognized(entity, "conclusion", raw)
		}
		conclusion = &parsed
	} else if status == model.CheckStatusCompleted {
		return model.CheckRun{}, missing(entity, "conclusion")
	}

	run := model.CheckRun{
		ID:          cr.GetID(),
		Name:        cr.GetName(),
		Status:      status,
		Conclusion:  conclusion,
		DetailsURL:  cr.DetailsURL,
		StartedAt:   timePtr(cr.StartedAt),
		CompletedAt: timePtr(cr.CompletedAt),
	}
	if cr.Output != nil {
		run.OutputTitle = cr.Output.Title
		run.OutputSummary = cr.Output.Summary
	}

	return run, nil
}

// mapCombinedStatus converts a go-github CombinedStatus to a domain model CombinedStatus.
// Returns nil if no statuses exist and state is empty (no CI configured).
func mapCombinedStatus(cs *gh.CombinedStatus) *model.CombinedStatus {
	if len(cs.Statuses) == 0 && cs.GetState() == "" {
		return nil
	}

	statuses := make([]model.CommitStatus, 0, len(cs.Statuses))
	for _, s := range cs.Statuses {
		statuses = append(statuses, model.CommitStatus{
			Context:     s.GetContext(),
			State:       s.GetState(),
			Description: s.GetDescription(),
			TargetURL:   s.GetTargetURL(),
		})
	}

	return &model.CombinedStatus{
		State:    cs.GetState(),
		Statuses: statuses,
	}
}

// mapCheckSuite converts a go-github CheckSuite. ID and status are required;
// suites created before any run started have no conclusion.
func mapCheckSuite(s *gh.CheckSuite) (model.CheckSuite, error) {
	const entity = "check suite"

	switch {
	case s.ID == nil:
		return model.CheckSuite{}, missing(entity, "id")
	case s.Status == nil:
		return model.CheckSuite{}, missing(entity, "status")
	}

	suite := model.CheckSuite{
		ID:                   s.GetID(),
		HeadBranch:           s.GetHeadBranch(),
		HeadSHA:              s.GetHeadSHA(),
		Status:               s.GetStatus(),
		Conclusion:           s.Conclusion,
		LatestCheckRunsCount: s.GetLatestCheckRunsCount(),
		CreatedAt:            timePtr(s.CreatedAt),
		UpdatedAt:            timePtr(s.UpdatedAt),
	}
	if s.App != nil {
		suite.App = s.App.GetName()
	}

	return suite, nil
}

func mapWorkflowRun(r *gh.WorkflowRun) (model.WorkflowRun, error) {
	const entity = "workflow run"

	switch {
	case r.ID == nil:
		return model.WorkflowRun{}, missing(entity, "id")
	case r.Status == nil:
		return model.WorkflowRun{}, missing(entity, "status")
	}

	return model.WorkflowRun{
		ID:         r.GetID(),
		Name:       r.GetName(),
		RunNumber:  r.GetRunNumber(),
		Event:      r.GetEvent(),
		HeadBranch: r.GetHeadBranch(),
		HeadSHA:    r.GetHeadSHA(),
		Status:     r.GetStatus(),
		Conclusion: r.Conclusion,
		HTMLURL:    r.GetHTMLURL(),
		CreatedAt:  timePtr(r.CreatedAt),
		UpdatedAt:  timePtr(r.UpdatedAt),
	}, nil
}

// GraphQL node shapes. Pointer fields distinguish null/absent from zero values.

type gqlPageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

func (p gqlPageInfo) endCursor() string {
	if p.EndCursor == nil {
		return ""
	}
	return *p.EndCursor
}

type gqlDatabaseRef struct {
	DatabaseID *int64 `json:"databaseId"`
}

type gqlAuthor struct {
	Login *string `json:"login"`
}

type gqlComment struct {
	ID                *string         `json:"id"`
	DatabaseID        *int64          `json:"databaseId"`
	Body              *string         `json:"body"`
	Author            *gqlAuthor      `json:"author"`
	CreatedAt         *time.Time      `json:"createdAt"`
	UpdatedAt         *time.Time      `json:"updatedAt"`
	Path              *string         `json:"path"`
	Line              *int            `json:"line"`
	OriginalLine      *int            `json:"originalLine"`
	DiffHunk          *string         `json:"diffHunk"`
	ReplyTo           *gqlDatabaseRef `json:"replyTo"`
	PullRequestReview *gqlDatabaseRef `json:"pullRequestReview"`
}

type gqlCommentConnection struct {
	PageInfo gqlPageInfo  `json:"pageInfo"`
	Nodes    []gqlComment `json:"nodes"`
}

type gqlThread struct {
	ID         *string               `json:"id"`
	IsResolved *bool                 `json:"isResolved"`
	IsOutdated *bool                 `json:"isOutdated"`
	Path       *string               `json:"path"`
	Line       *int                  `json:"line"`
	Comments   *gqlCommentConnection `json:"comments"`
}

// mapThreadComment converts a GraphQL PullRequestReviewComment node.
func mapThreadComment(c gqlComment) (model.ReviewComment, error) {
	const entity = "thread comment"

	switch {
	case c.ID == nil:
		return model.ReviewComment{}, missing(entity, "id")
	case c.DatabaseID == nil:
		return model.ReviewComment{}, missing(entity, "databaseId")
	case c.Body == nil:
		return model.ReviewComment{}, missing(entity, "body")
	case c.CreatedAt == nil:
		return model.ReviewComment{}, missing(entity, "createdAt")
	case c.Path == nil:
		return model.ReviewComment{}, missing(entity, "path")
	}

	var author *string
	if c.Author != nil {
		author = c.Author.Login
	}

	out := model.ReviewComment{
		ID:           *c.DatabaseID,
		NodeID:       *c.ID,
		Body:         *c.Body,
		Path:         *c.Path,
		Line:         c.Line,
		OriginalLine: c.OriginalLine,
		Author:       authorLogin(author),
		CreatedAt:    *c.CreatedAt,
		UpdatedAt:    *c.CreatedAt,
	}
	if c.DiffHunk != nil {
		out.DiffHunk = *c.DiffHunk
	}
	if c.UpdatedAt != nil {
		out.UpdatedAt = *c.UpdatedAt
	}
	if c.ReplyTo != nil {
		out.InReplyToID = c.ReplyTo.DatabaseID
	}
	if c.PullRequestReview != nil {
		out.ReviewID = c.PullRequestReview.DatabaseID
	}

	return out, nil
}

// mapThreadComments maps a page of GraphQL comment nodes in order.
func mapThreadComments(nodes []gqlComment) ([]model.ReviewComment, error) {
	comments := make([]model.ReviewComment, 0, len(nodes))
	for _, n := range nodes {
		c, err := mapThreadComment(n)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// mapThread converts a GraphQL PullRequestReviewThread node with the comments
// already collected for it.
func mapThread(t gqlThread, comments []model.ReviewComment) (model.ReviewThread, error) {
	const entity = "review thread"

	switch {
	case t.ID == nil:
		return model.ReviewThread{}, missing(entity, "id")
	case t.IsResolved == nil:
		return model.ReviewThread{}, missing(entity, "isResolved")
	case t.Path == nil:
		return model.ReviewThread{}, missing(entity, "path")
	case len(comments) == 0:
		return model.ReviewThread{}, missing(entity, "comments")
	}

	thread := model.ReviewThread{
		ID:         *t.ID,
		IsResolved: *t.IsResolved,
		Path:       *t.Path,
		Line:       t.Line,
		Comments:   comments,
	}
	if t.IsOutdated != nil {
		thread.IsOutdated = *t.IsOutdated
	}

	return thread, nil
}
