package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

// maxErrorBody bounds how much of a failed response body is kept for diagnosis.
const maxErrorBody = 4 << 10

const reviewCommentFields = `
fragment reviewCommentFields on PullRequestReviewComment {
	id
	databaseId
	body
	author { login }
	createdAt
	updatedAt
	path
	line
	originalLine
	diffHunk
	replyTo { databaseId }
	pullRequestReview { databaseId }
}`

const reviewThreadsQuery = `query($owner: String!, $repo: String!, $pr: Int!, $first: Int!, $cursor: String) {
	repository(owner: $owner, name: $repo) {
		pullRequest(number: $pr) {
			reviewThreads(first: $first, after: $cursor) {
				pageInfo { hasNextPage endCursor }
				nodes {
					id
					isResolved
					isOutdated
					path
					line
					comments(first: $first) {
						pageInfo { hasNextPage endCursor }
						nodes { ...reviewCommentFields }
					}
				}
			}
		}
	}
}` + reviewCommentFields

const threadCommentsQuery = `query($id: ID!, $first: Int!, $cursor: String) {
	node(id: $id) {
		... on PullRequestReviewThread {
			comments(first: $first, after: $cursor) {
				pageInfo { hasNextPage endCursor }
				nodes { ...reviewCommentFields }
			}
		}
	}
}` + reviewCommentFields

const resolveThreadMutation = `mutation($threadId: ID!) {
	resolveReviewThread(input: {threadId: $threadId}) {
		thread { id isResolved }
	}
}`

const threadStateQuery = `query($id: ID!) {
	node(id: $id) {
		... on PullRequestReviewThread { id isResolved }
	}
}`

// graphqlRequest is the JSON body sent to the GitHub GraphQL API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphqlEnvelope is the top-level shape of every GraphQL response.
type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type reviewThreadsData struct {
	Repository *struct {
		PullRequest *struct {
			ReviewThreads *struct {
				PageInfo gqlPageInfo `json:"pageInfo"`
				Nodes    []gqlThread `json:"nodes"`
			} `json:"reviewThreads"`
		} `json:"pullRequest"`
	} `json:"repository"`
}

type threadCommentsData struct {
	Node *struct {
		Comments *gqlCommentConnection `json:"comments"`
	} `json:"node"`
}

type threadStateData struct {
	Node *struct {
		ID         *string `json:"id"`
		IsResolved *bool   `json:"isResolved"`
	} `json:"node"`
}

type resolveThreadData struct {
	ResolveReviewThread *struct {
		Thread *struct {
			ID         *string `json:"id"`
			IsResolved *bool   `json:"isResolved"`
		} `json:"thread"`
	} `json:"resolveReviewThread"`
}

// doGraphQL posts one GraphQL document and decodes its data into out. A non-200
// status is a TransportError; an errors array is a GraphQLError even when the
// status is 200.
func (c *Client) doGraphQL(ctx context.Context, op, query string, variables map[string]any, out any) error {
	if !c.hasToken {
		return fmt.Errorf("%s: %w: GitHub token required for GraphQL", op, model.ErrConfigurationMissing)
	}

	bodyBytes, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &model.TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &model.TransportError{Op: op, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	var envelope graphqlEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", model.ErrMalformedResponse, op, err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return &model.GraphQLError{Op: op, Messages: messages}
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return missing(op, "data")
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: decoding %s data: %v", model.ErrMalformedResponse, op, err)
	}

	return nil
}

// FetchReviewThreads queries the GitHub GraphQL API for every review thread on a
// pull request with its comments. Threads are paged by cursor; a thread with more
// comments than one nested page holds has the rest fetched by follow-up queries.
func (c *Client) FetchReviewThreads(ctx context.Context, repoFullName string, prNumber int) ([]model.ReviewThread, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	page := 0
	return paginateCursor(ctx, "reviewThreads", c.maxPages, func(ctx context.Context, cursor *string) (cursorPage[model.ReviewThread], error) {
		page++
		var data reviewThreadsData
		err := c.doGraphQL(ctx, fmt.Sprintf("review threads for %s#%d", repoFullName, prNumber), reviewThreadsQuery, map[string]any{
			"owner":  owner,
			"repo":   repo,
			"pr":     prNumber,
			"first":  c.perPage,
			"cursor": cursor,
		}, &data)
		if err != nil {
			return cursorPage[model.ReviewThread]{}, err
		}

		switch {
		case data.Repository == nil:
			return cursorPage[model.ReviewThread]{}, missing("review threads response", "repository")
		case data.Repository.PullRequest == nil:
			return cursorPage[model.ReviewThread]{}, missing("review threads response", "repository.pullRequest")
		case data.Repository.PullRequest.ReviewThreads == nil:
			return cursorPage[model.ReviewThread]{}, missing("review threads response", "pullRequest.reviewThreads")
		}
		conn := data.Repository.PullRequest.ReviewThreads

		slog.Debug("github graphql call",
			"endpoint", repoFullName+"/review-threads",
			"page", page,
			"count", len(conn.Nodes),
		)

		threads := make([]model.ReviewThread, 0, len(conn.Nodes))
		for _, node := range conn.Nodes {
			thread, err := c.collectThread(ctx, node)
			if err != nil {
				return cursorPage[model.ReviewThread]{}, err
			}
			threads = append(threads, thread)
		}

		return cursorPage[model.ReviewThread]{
			Items:       threads,
			HasNextPage: conn.PageInfo.HasNextPage,
			EndCursor:   conn.PageInfo.endCursor(),
		}, nil
	})
}

// collectThread maps a thread node, fetching any comments beyond the first
// nested page.
func (c *Client) collectThread(ctx context.Context, node gqlThread) (model.ReviewThread, error) {
	if node.Comments == nil {
		return mapThread(node, nil)
	}

	comments, err := mapThreadComments(node.Comments.Nodes)
	if err != nil {
		return model.ReviewThread{}, err
	}

	if node.Comments.PageInfo.HasNextPage {
		if node.ID == nil {
			return model.ReviewThread{}, missing("review thread", "id")
		}
		rest, err := c.fetchRemainingThreadComments(ctx, *node.ID, node.Comments.PageInfo)
		if err != nil {
			return model.ReviewThread{}, err
		}
		comments = append(comments, rest...)
	}

	return mapThread(node, comments)
}

// fetchRemainingThreadComments pages through a thread's comments starting after
// the first nested page.
func (c *Client) fetchRemainingThreadComments(ctx context.Context, threadID string, first gqlPageInfo) ([]model.ReviewComment, error) {
	start := first.endCursor()
	if start == "" {
		return nil, missing("thread comments", "pageInfo.endCursor")
	}

	return paginateCursor(ctx, "thread comments", c.maxPages, func(ctx context.Context, cursor *string) (cursorPage[model.ReviewComment], error) {
		after := start
		if cursor != nil {
			after = *cursor
		}

		var data threadCommentsData
		err := c.doGraphQL(ctx, "comments for thread "+threadID, threadCommentsQuery, map[string]any{
			"id":     threadID,
			"first":  c.perPage,
			"cursor": after,
		}, &data)
		if err != nil {
			return cursorPage[model.ReviewComment]{}, err
		}
		if data.Node == nil || data.Node.Comments == nil {
			return cursorPage[model.ReviewComment]{}, missing("thread comments response", "node.comments")
		}

		comments, err := mapThreadComments(data.Node.Comments.Nodes)
		if err != nil {
			return cursorPage[model.ReviewComment]{}, err
		}

		info := data.Node.Comments.PageInfo
		return cursorPage[model.ReviewComment]{
			Items:       comments,
			HasNextPage: info.HasNextPage,
			EndCursor:   info.endCursor(),
		}, nil
	})
}

// ResolveReviewThread marks a review thread resolved via the resolveReviewThread
// mutation. threadID is the thread's GraphQL node ID. It returns the isResolved
// flag reported by GitHub after the mutation.
func (c *Client) ResolveReviewThread(ctx context.Context, threadID string) (bool, error) {
	var data resolveThreadData
	if err := c.doGraphQL(ctx, "resolving thread "+threadID, resolveThreadMutation, map[string]any{
		"threadId": threadID,
	}, &data); err != nil {
		return false, err
	}

	if data.ResolveReviewThread == nil || data.ResolveReviewThread.Thread == nil {
		return false, missing("resolveReviewThread payload", "thread")
	}
	if data.ResolveReviewThread.Thread.IsResolved == nil {
		return false, missing("resolveReviewThread payload", "thread.isResolved")
	}

	return *data.ResolveReviewThread.Thread.IsResolved, nil
}

// FetchThreadResolved reads the current isResolved flag of a review thread.
func (c *Client) FetchThreadResolved(ctx context.Context, threadID string) (bool, error) {
	var data threadStateData
	if err := c.doGraphQL(ctx, "reading thread "+threadID, threadStateQuery, map[string]any{
		"id": threadID,
	}, &data); err != nil {
		return false, err
	}

	if data.Node == nil {
		return false, missing("thread state response", "node")
	}
	if data.Node.IsResolved == nil {
		return false, missing("thread state response", "node.isResolved")
	}

	return *data.Node.IsResolved, nil
}
