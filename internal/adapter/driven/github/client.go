// Package github implements the GitHubClient and GitHubWriter ports using the
// go-github library for REST and plain JSON requests for GraphQL.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
	"github.com/ericfisherdev/prresolver/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.GitHubClient = (*Client)(nil)
	_ driven.GitHubWriter = (*Client)(nil)
)

// Client implements the driven GitHub ports. REST and GraphQL requests share one
// authenticated http.Client.
type Client struct {
	gh         *gh.Client
	httpClient *http.Client
	graphqlURL string // "https://api.github.com/graphql" in production; derived from baseURL in tests.
	hasToken   bool
	perPage    int
	maxPages   int
}

// Options configures NewClient.
type Options struct {
	Token     string
	BaseURL   string // REST API root; empty means https://api.github.com/.
	HTTPCache bool   // Enables ETag conditional-request caching in the transport.
	MaxPages  int    // Upper bound for every pagination loop; <= 0 uses the default.
}

// NewClient creates a GitHub client with the following transport stack:
//  1. httpcache (optional ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware)
//  3. oauth2 (bearer token for both REST and GraphQL)
//  4. go-github (REST API client)
func NewClient(opts Options) (*Client, error) {
	var base http.RoundTripper = http.DefaultTransport
	if opts.HTTPCache {
		base = httpcache.NewMemoryCacheTransport()
	}
	rateLimitClient := github_ratelimit.NewClient(base)

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.github.com/"
	}

	return newClient(rateLimitClient, baseURL, opts.Token, opts.MaxPages)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	return newClient(httpClient, baseURL, token, 0)
}

// WithMaxPages returns a copy of the client with a different pagination bound.
func (c *Client) WithMaxPages(maxPages int) *Client {
	clone := *c
	if maxPages > 0 {
		clone.maxPages = maxPages
	}
	return &clone
}

func newClient(httpClient *http.Client, baseURL, token string, maxPages int) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	authClient := httpClient
	if token != "" {
		authClient = &http.Client{
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
				Base:   httpClient.Transport,
			},
			Timeout: httpClient.Timeout,
		}
	}

	client := gh.NewClient(authClient)
	client.BaseURL = u

	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return &Client{
		gh:         client,
		httpClient: authClient,
		graphqlURL: graphqlEndpoint(u),
		hasToken:   token != "",
		perPage:    defaultPerPage,
		maxPages:   maxPages,
	}, nil
}

// graphqlEndpoint derives the GraphQL URL from the REST root: GitHub Enterprise
// serves REST under /api/v3/ and GraphQL under /api/graphql.
func graphqlEndpoint(restURL *url.URL) string {
	u := *restURL
	if strings.HasSuffix(u.Path, "/api/v3/") {
		u.Path = strings.TrimSuffix(u.Path, "v3/") + "graphql"
	} else {
		u.Path = "/graphql"
	}
	return u.String()
}

// FetchPullRequest returns the details of one pull request.
func (c *Client) FetchPullRequest(ctx context.Context, repoFullName string, prNumber int) (*model.PullRequest, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, transportError(fmt.Sprintf("fetching pull request %s#%d", repoFullName, prNumber), resp, err)
	}

	logRateLimit(resp, repoFullName+"/pull", 0, 1)

	return mapPullRequest(pr, repoFullName)
}

// FetchReviewComments retrieves all review comments (inline code comments) for a pull request.
// Pages are requested until one comes back short.
func (c *Client) FetchReviewComments(ctx context.Context, repoFullName string, prNumber int) ([]model.ReviewComment, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	return paginateOffset(ctx, c.perPage, c.maxPages, func(ctx context.Context, page, perPage int) ([]model.ReviewComment, error) {
		opts := &gh.PullRequestListCommentsOptions{
			Sort:        "created",
			Direction:   "asc",
			ListOptions: gh.ListOptions{Page: page, PerPage: perPage},
		}

		comments, resp, err := c.gh.PullRequests.ListComments(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return nil, transportError(fmt.Sprintf("listing review comments for %s#%d (page %d)", repoFullName, prNumber, page), resp, err)
		}

		logRateLimit(resp, repoFullName+"/comments", page, len(comments))

		mapped := make([]model.ReviewComment, 0, len(comments))
		for _, comment := range comments {
			m, err := mapReviewComment(comment)
			if err != nil {
				return nil, err
			}
			mapped = append(mapped, m)
		}
		return mapped, nil
	})
}

// FetchCheckRuns retrieves all check runs for the given ref (commit SHA or branch).
// Pages are requested until one comes back short.
func (c *Client) FetchCheckRuns(ctx context.Context, repoFullName string, ref string) ([]model.CheckRun, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		return nil, fmt.Errorf("%w: empty ref for check runs", model.ErrMalformedReference)
	}

	return paginateOffset(ctx, c.perPage, c.maxPages, func(ctx context.Context, page, perPage int) ([]model.CheckRun, error) {
		opts := &gh.ListCheckRunsOptions{
			ListOptions: gh.ListOptions{Page: page, PerPage: perPage},
		}

		result, resp, err := c.gh.Checks.ListCheckRunsForRef(ctx, owner, repo, ref, opts)
		if err != nil {
			return nil, transportError(fmt.Sprintf("listing check runs for %s@%s (page %d)", repoFullName, ref, page), resp, err)
		}
		if result == nil {
			return nil, missing("check runs page", "check_runs")
		}

		logRateLimit(resp, repoFullName+"/check-runs", page, len(result.CheckRuns))

		runs := make([]model.CheckRun, 0, len(result.CheckRuns))
		for _, cr := range result.CheckRuns {
			run, err := mapCheckRun(cr)
			if err != nil {
				return nil, err
			}
			runs = append(runs, run)
		}
		return runs, nil
	})
}

// FetchCheckSuites retrieves every check suite for the given ref.
func (c *Client) FetchCheckSuites(ctx context.Context, repoFullName string, ref string) ([]model.CheckSuite, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		return nil, fmt.Errorf("%w: empty ref for check suites", model.ErrMalformedReference)
	}

	return paginateOffset(ctx, c.perPage, c.maxPages, func(ctx context.Context, page, perPage int) ([]model.CheckSuite, error) {
		opts := &gh.ListCheckSuiteOptions{
			ListOptions: gh.ListOptions{Page: page, PerPage: perPage},
		}

		result, resp, err := c.gh.Checks.ListCheckSuitesForRef(ctx, owner, repo, ref, opts)
		if err != nil {
			return nil, transportError(fmt.Sprintf("listing check suites for %s@%s (page %d)", repoFullName, ref, page), resp, err)
		}
		if result == nil {
			return nil, missing("check suites page", "check_suites")
		}

		logRateLimit(resp, repoFullName+"/check-suites", page, len(result.CheckSuites))

		suites := make([]model.CheckSuite, 0, len(result.CheckSuites))
		for _, s := range result.CheckSuites {
			suite, err := mapCheckSuite(s)
			if err != nil {
				return nil, err
			}
			suites = append(suites, suite)
		}
		return suites, nil
	})
}

// FetchWorkflowRuns returns the most recent Actions workflow runs for branch,
// newest first. Only one page of recentRunsLimit runs is requested; an empty
// branch lists runs across the whole repository.
func (c *Client) FetchWorkflowRuns(ctx context.Context, repoFullName string, branch string) ([]model.WorkflowRun, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListWorkflowRunsOptions{
		Branch:      branch,
		ListOptions: gh.ListOptions{PerPage: recentRunsLimit},
	}

	result, resp, err := c.gh.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
	if err != nil {
		return nil, transportError(fmt.Sprintf("listing workflow runs for %s branch %q", repoFullName, branch), resp, err)
	}
	if result == nil {
		return nil, missing("workflow runs page", "workflow_runs")
	}

	logRateLimit(resp, repoFullName+"/actions/runs", 1, len(result.WorkflowRuns))

	runs := make([]model.WorkflowRun, 0, len(result.WorkflowRuns))
	for _, r := range result.WorkflowRuns {
		run, err := mapWorkflowRun(r)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// FetchCombinedStatus returns the combined commit status for the given ref.
// Returns nil, nil if no status checks are configured (zero statuses and empty state).
func (c *Client) FetchCombinedStatus(ctx context.Context, repoFullName string, ref string) (*model.CombinedStatus, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	cs, resp, err := c.gh.Repositories.GetCombinedStatus(ctx, owner, repo, ref, nil)
	if err != nil {
		return nil, transportError(fmt.Sprintf("fetching combined status for %s@%s", repoFullName, ref), resp, err)
	}

	logRateLimit(resp, repoFullName+"/status", 0, len(cs.Statuses))

	return mapCombinedStatus(cs), nil
}

// FetchFileContent returns the decoded content of the file at path and ref.
func (c *Client) FetchFileContent(ctx context.Context, repoFullName string, path string, ref string) (string, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return "", err
	}

	file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, &gh.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", transportError(fmt.Sprintf("fetching %s@%s in %s", path, ref, repoFullName), resp, err)
	}
	if file == nil {
		return "", missing("file content", "content")
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("%w: decoding %s: %v", model.ErrMalformedResponse, path, err)
	}

	return content, nil
}

// ReplyToReviewComment replies to an existing review comment thread.
// commentID is the REST database ID of any comment in the thread.
func (c *Client) ReplyToReviewComment(ctx context.Context, repoFullName string, prNumber int, commentID int64, body string) (*model.ReviewComment, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	created, resp, err := c.gh.PullRequests.CreateCommentInReplyTo(ctx, owner, repo, prNumber, body, commentID)
	if err != nil {
		return nil, transportError(fmt.Sprintf("replying to comment %d on %s#%d", commentID, repoFullName, prNumber), resp, err)
	}

	logRateLimit(resp, repoFullName+"/reply-comment", 0, 1)

	reply, err := mapReviewComment(created)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// transportError wraps a go-github failure with the upstream status and message.
func transportError(op string, resp *gh.Response, err error) error {
	te := &model.TransportError{Op: op, Err: err}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		te.Body = ghErr.Message
		if ghErr.Response != nil {
			te.StatusCode = ghErr.Response.StatusCode
		}
	} else if resp != nil && resp.Response != nil {
		te.StatusCode = resp.StatusCode
	}

	return te
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: invalid repo name %q: expected owner/repo", model.ErrMalformedReference, fullName)
	}
	return parts[0], parts[1], nil
}
