package application

import (
	"context"
	"sync"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

// --- Mock implementations shared by service tests ---

type mockGitHubClient struct {
	mu    sync.Mutex
	calls map[string]int

	pr       *model.PullRequest
	prErr    error
	threads  func(ctx context.Context) ([]model.ReviewThread, error)
	checks   func(ctx context.Context, ref string) ([]model.CheckRun, error)
	comments []model.ReviewComment
	combined *model.CombinedStatus
	files    map[string]string

	suites    []model.CheckSuite
	suiteRefs []string
	runs      []model.WorkflowRun
	runBranch string
}

func (m *mockGitHubClient) called(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[name]++
}

func (m *mockGitHubClient) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockGitHubClient) FetchPullRequest(_ context.Context, _ string, _ int) (*model.PullRequest, error) {
	m.called("pr")
	if m.prErr != nil {
		return nil, m.prErr
	}
	pr := *m.pr
	return &pr, nil
}

func (m *mockGitHubClient) FetchReviewComments(_ context.Context, _ string, _ int) ([]model.ReviewComment, error) {
	m.called("comments")
	return m.comments, nil
}

func (m *mockGitHubClient) FetchReviewThreads(ctx context.Context, _ string, _ int) ([]model.ReviewThread, error) {
	m.called("threads")
	if m.threads == nil {
		return nil, nil
	}
	return m.threads(ctx)
}

func (m *mockGitHubClient) FetchCheckRuns(ctx context.Context, _ string, ref string) ([]model.CheckRun, error) {
	m.called("checks")
	if m.checks == nil {
		return nil, nil
	}
	return m.checks(ctx, ref)
}

func (m *mockGitHubClient) FetchCheckSuites(_ context.Context, _ string, ref string) ([]model.CheckSuite, error) {
	m.called("suites")
	m.mu.Lock()
	m.suiteRefs = append(m.suiteRefs, ref)
	m.mu.Unlock()
	return m.suites, nil
}

func (m *mockGitHubClient) FetchWorkflowRuns(_ context.Context, _ string, branch string) ([]model.WorkflowRun, error) {
	m.called("runs")
	m.mu.Lock()
	m.runBranch = branch
	m.mu.Unlock()
	return m.runs, nil
}

func (m *mockGitHubClient) FetchCombinedStatus(_ context.Context, _ string, _ string) (*model.CombinedStatus, error) {
	m.called("combined")
	return m.combined, nil
}

func (m *mockGitHubClient) FetchFileContent(_ context.Context, _ string, path string, ref string) (string, error) {
	m.called("file")
	return m.files[ref+":"+path], nil
}

type mockSnapshotStore struct {
	mu        sync.Mutex
	recorded  []model.Snapshot
	recordErr error
}

func (m *mockSnapshotStore) Record(_ context.Context, s model.Snapshot) (model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return model.Snapshot{}, m.recordErr
	}
	s.ID = int64(len(m.recorded) + 1)
	m.recorded = append(m.recorded, s)
	return s, nil
}

func (m *mockSnapshotStore) ListByPR(_ context.Context, repo string, number int, limit int) ([]model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Snapshot{}
	for i := len(m.recorded) - 1; i >= 0; i-- {
		s := m.recorded[i]
		if s.RepoFullName == repo && s.PRNumber == number {
			out = append(out, s)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type mockGitHubWriter struct {
	resolveResults []resolveResult
	resolveCalls   int

	state      bool
	stateErr   error
	stateCalls int

	replyRepo      string
	replyNumber    int
	replyCommentID int64
	replyBody      string
}

type resolveResult struct {
	resolved bool
	err      error
}

func (m *mockGitHubWriter) ResolveReviewThread(_ context.Context, _ string) (bool, error) {
	r := m.resolveResults[min(m.resolveCalls, len(m.resolveResults)-1)]
	m.resolveCalls++
	return r.resolved, r.err
}

func (m *mockGitHubWriter) FetchThreadResolved(_ context.Context, _ string) (bool, error) {
	m.stateCalls++
	return m.state, m.stateErr
}

func (m *mockGitHubWriter) ReplyToReviewComment(_ context.Context, repo string, prNumber int, commentID int64, body string) (*model.ReviewComment, error) {
	m.replyRepo = repo
	m.replyNumber = prNumber
	m.replyCommentID = commentID
	m.replyBody = body
	return &model.ReviewComment{ID: 999, Body: body, InReplyToID: &commentID}, nil
}

// --- Helper functions ---

func conclusionPtr(c model.CheckConclusion) *model.CheckConclusion {
	return &c
}

func thread(id string, resolved bool) model.ReviewThread {
	return model.ReviewThread{
		ID:         id,
		IsResolved: resolved,
		Path:       "main.go",
		Comments:   []model.ReviewComment{{ID: 1, NodeID: id + "_c1", Author: "alice"}},
	}
}
