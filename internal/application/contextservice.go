package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
	"github.com/ericfisherdev/prresolver/internal/domain/port/driven"
)

// ContextService assembles the review state of a pull request from GitHub.
// Every call fetches fresh data; nothing is cached between calls.
type ContextService struct {
	client      driven.GitHubClient
	snapshots   driven.SnapshotStore // Optional; nil disables snapshot history.
	defaultRepo string
	now         func() time.Time
}

// NewContextService creates a ContextService. defaultRepo ("owner/repo") is
// used for bare-number references when no repository is given per call; it may
// be empty. snapshots may be nil.
func NewContextService(client driven.GitHubClient, snapshots driven.SnapshotStore, defaultRepo string) *ContextService {
	return &ContextService{
		client:      client,
		snapshots:   snapshots,
		defaultRepo: defaultRepo,
		now:         time.Now,
	}
}

// Resolve turns a URL or bare-number reference into a PRRef using repo, then the
// service's default repository.
func (s *ContextService) Resolve(reference, repo string) (model.PRRef, error) {
	return model.ResolveReference(reference, repo, s.defaultRepo)
}

// GetContext builds a PRContext: the pull request first, then its review
// threads and the check runs for its head commit concurrently. Any failure
// fails the whole call; no partial context is returned.
func (s *ContextService) GetContext(ctx context.Context, reference, repo string) (*model.PRContext, error) {
	ref, err := s.Resolve(reference, repo)
	if err != nil {
		return nil, err
	}

	pr, err := s.client.FetchPullRequest(ctx, ref.Repo, ref.Number)
	if err != nil {
		return nil, fmt.Errorf("building context for %s: %w", ref, err)
	}

	var (
		threads []model.ReviewThread
		checks  []model.CheckRun
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		threads, err = s.client.FetchReviewThreads(gctx, ref.Repo, ref.Number)
		return err
	})
	g.Go(func() error {
		var err error
		checks, err = s.client.FetchCheckRuns(gctx, ref.Repo, pr.HeadSHA)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building context for %s: %w", ref, err)
	}

	prCtx := model.NewPRContext(ref.Repo, *pr, threads, checks, s.now().UTC())

	slog.Info("pull request context built",
		"pr", ref.String(),
		"head_sha", pr.HeadSHA,
		"threads", len(prCtx.Threads),
		"unresolved", len(prCtx.UnresolvedThreads),
		"checks", len(prCtx.Checks),
		"failing", len(prCtx.FailingChecks),
	)

	s.recordSnapshot(ctx, prCtx)

	return prCtx, nil
}

// recordSnapshot stores a summary of prCtx when a store is configured. A
// failure is logged and otherwise ignored.
func (s *ContextService) recordSnapshot(ctx context.Context, prCtx *model.PRContext) {
	if s.snapshots == nil {
		return
	}
	if _, err := s.snapshots.Record(ctx, model.SnapshotOf(prCtx)); err != nil {
		slog.Warn("failed to record context snapshot",
			"repo", prCtx.Repo,
			"pr", prCtx.PullRequest.Number,
			"error", err,
		)
	}
}

// GetPullRequest returns the pull request details only.
func (s *ContextService) GetPullRequest(ctx context.Context, reference, repo string) (*model.PullRequest, error) {
	ref, err := s.Resolve(reference, repo)
	if err != nil {
		return nil, err
	}
	return s.client.FetchPullRequest(ctx, ref.Repo, ref.Number)
}

// GetReviewThreads returns every review thread of the pull request.
func (s *ContextService) GetReviewThreads(ctx context.Context, reference, repo string) ([]model.ReviewThread, error) {
	ref, err := s.Resolve(reference, repo)
	if err != nil {
		return nil, err
	}
	return s.client.FetchReviewThreads(ctx, ref.Repo, ref.Number)
}

// GetCheckRuns returns the check runs of the pull request's current head commit.
func (s *ContextService) GetCheckRuns(ctx context.Context, reference, repo string) ([]model.CheckRun, error) {
	ref, err := s.Resolve(reference, repo)
	if err != nil {
		return nil, err
	}

	pr, err := s.client.FetchPullRequest(ctx, ref.Repo, ref.Number)
	if err != nil {
		return nil, err
	}

	return s.client.FetchCheckRuns(ctx, ref.Repo, pr.HeadSHA)
}

// GetReviewComments returns the flat list of inline review comments.
func (s *ContextService) GetReviewComments(ctx context.Context, reference, repo string) ([]model.ReviewComment, error) {
	ref, err := s.Resolve(reference, repo)
	if err != nil {
		return nil, err
	}
	return s.client.FetchReviewComments(ctx, ref.Repo, ref.Number)
}

// GetCombinedStatus returns the legacy commit status of the pull request's head
// commit, or nil when no statuses are reported.
func (s *ContextService) GetCombinedStatus(ctx context.Context, reference, repo string) (*model.CombinedStatus, error) {
	ref, err := s.Resolve(reference, repo)
	if err != nil {
		return nil, err
	}

	pr, err := s.client.FetchPullRequest(ctx, ref.Repo, ref.Number)
	if err != nil {
		return nil, err
	}

	return s.client.FetchCombinedStatus(ctx, ref.Repo, pr.HeadSHA)
}

// GetCheckSuites returns the check suites reported for the pull request's head commit.
func (s *ContextService) GetCheckSuites(ctx context.Context, reference, repo string) ([]model.CheckSuite, error) {
	ref, err := s.Resolve(reference, repo)
	if err != nil {
		return nil, err
	}

	pr, err := s.client.FetchPullRequest(ctx, ref.Repo, ref.Number)
	if err != nil {
		return nil, err
	}

	return s.client.FetchCheckSuites(ctx, ref.Repo, pr.HeadSHA)
}

// GetWorkflowRuns returns the most recent Actions runs on the pull request's
// head branch.
func (s *ContextService) GetWorkflowRuns(ctx context.Context, reference, repo string) ([]model.WorkflowRun, error) {
	ref, err := s.Resolve(reference, repo)
	if err != nil {
		return nil, err
	}

	pr, err := s.client.FetchPullRequest(ctx, ref.Repo, ref.Number)
	if err != nil {
		return nil, err
	}

	return s.client.FetchWorkflowRuns(ctx, ref.Repo, pr.Branch)
}

// GetFileContent returns a file from the pull request's head commit.
func (s *ContextService) GetFileContent(ctx context.Context, reference, repo, path string) (string, error) {
	ref, err := s.Resolve(reference, repo)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("%w: empty file path", model.ErrMalformedReference)
	}

	pr, err := s.client.FetchPullRequest(ctx, ref.Repo, ref.Number)
	if err != nil {
		return "", err
	}

	return s.client.FetchFileContent(ctx, ref.Repo, path, pr.HeadSHA)
}

// ListSnapshots returns the recorded snapshot history of a pull request, newest
// first. It returns an empty list when no store is configured.
func (s *ContextService) ListSnapshots(ctx context.Context, reference, repo string, limit int) ([]model.Snapshot, error) {
	ref, err := s.Resolve(reference, repo)
	if err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return []model.Snapshot{}, nil
	}
	return s.snapshots.ListByPR(ctx, ref.Repo, ref.Number, limit)
}
