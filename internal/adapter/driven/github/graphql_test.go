package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghAdapter "github.com/ericfisherdev/prresolver/internal/adapter/driven/github"
	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// gqlRecorder decodes GraphQL requests and records them for later assertions.
type gqlRecorder struct {
	mu       sync.Mutex
	requests []gqlRequest
}

func (r *gqlRecorder) record(t *testing.T, req *http.Request) gqlRequest {
	t.Helper()
	var body gqlRequest
	require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
	r.mu.Lock()
	r.requests = append(r.requests, body)
	r.mu.Unlock()
	return body
}

func (r *gqlRecorder) all() []gqlRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gqlRequest(nil), r.requests...)
}

func gqlComment(id int, author any) map[string]any {
	var authorNode any
	if author != nil {
		authorNode = map[string]any{"login": author}
	}
	return map[string]any{
		"id":                fmt.Sprintf("PRRC_%d", id),
		"databaseId":        id,
		"body":              fmt.Sprintf("comment %d", id),
		"author":            authorNode,
		"createdAt":         "2026-01-01T00:00:00Z",
		"updatedAt":         "2026-01-01T00:05:00Z",
		"path":              "main.go",
		"line":              12,
		"originalLine":      nil,
		"diffHunk":          "@@ -1 +1 @@",
		"replyTo":           nil,
		"pullRequestReview": map[string]any{"databaseId": 77},
	}
}

func pageInfo(hasNext bool, cursor string) map[string]any {
	info := map[string]any{"hasNextPage": hasNext, "endCursor": nil}
	if cursor != "" {
		info["endCursor"] = cursor
	}
	return info
}

func gqlThread(id string, resolved bool, comments []any, commentsPage map[string]any) map[string]any {
	return map[string]any{
		"id":         id,
		"isResolved": resolved,
		"isOutdated": false,
		"path":       "main.go",
		"line":       12,
		"comments": map[string]any{
			"pageInfo": commentsPage,
			"nodes":    comments,
		},
	}
}

func threadsResponse(hasNext bool, cursor string, threads ...any) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"repository": map[string]any{
				"pullRequest": map[string]any{
					"reviewThreads": map[string]any{
						"pageInfo": pageInfo(hasNext, cursor),
						"nodes":    threads,
					},
				},
			},
		},
	}
}

func TestFetchReviewThreads_FollowsCursor(t *testing.T) {
	rec := &gqlRecorder{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphql", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		req := rec.record(t, r)
		if req.Variables["cursor"] == nil {
			writeJSON(t, w, threadsResponse(true, "CUR1",
				gqlThread("PRRT_1", false, []any{gqlComment(1, "alice")}, pageInfo(false, "")),
			))
			return
		}
		assert.Equal(t, "CUR1", req.Variables["cursor"])
		writeJSON(t, w, threadsResponse(false, "",
			gqlThread("PRRT_2", true, []any{gqlComment(2, nil)}, pageInfo(false, "")),
		))
	})

	client, _ := newTestClient(t, handler)
	threads, err := client.FetchReviewThreads(context.Background(), "acme/widgets", 42)

	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Len(t, rec.all(), 2)

	first := rec.all()[0]
	assert.Equal(t, "acme", first.Variables["owner"])
	assert.Equal(t, "widgets", first.Variables["repo"])
	assert.EqualValues(t, 42, first.Variables["pr"])
	assert.EqualValues(t, 100, first.Variables["first"])

	assert.Equal(t, "PRRT_1", threads[0].ID)
	assert.False(t, threads[0].IsResolved)
	require.NotNil(t, threads[0].Line)
	assert.Equal(t, 12, *threads[0].Line)

	root := threads[0].RootComment()
	assert.Equal(t, int64(1), root.ID, "numeric database id is kept")
	assert.Equal(t, "PRRC_1", root.NodeID, "node id is kept")
	assert.Equal(t, "alice", root.Author)
	assert.Nil(t, root.OriginalLine)
	require.NotNil(t, root.ReviewID)
	assert.Equal(t, int64(77), *root.ReviewID)

	assert.Equal(t, "PRRT_2", threads[1].ID)
	assert.True(t, threads[1].IsResolved)
	assert.Equal(t, model.GhostLogin, threads[1].Comments[0].Author)
}

func TestFetchReviewThreads_FetchesRemainingThreadComments(t *testing.T) {
	rec := &gqlRecorder{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := rec.record(t, r)
		switch {
		case strings.Contains(req.Query, "repository("):
			writeJSON(t, w, threadsResponse(false, "",
				gqlThread("PRRT_1", false, []any{gqlComment(1, "alice"), gqlComment(2, "bob")}, pageInfo(true, "C2")),
			))
		case req.Variables["cursor"] == "C2":
			assert.Equal(t, "PRRT_1", req.Variables["id"])
			writeJSON(t, w, map[string]any{"data": map[string]any{"node": map[string]any{
				"comments": map[string]any{
					"pageInfo": pageInfo(true, "C3"),
					"nodes":    []any{gqlComment(3, "carol")},
				},
			}}})
		case req.Variables["cursor"] == "C3":
			writeJSON(t, w, map[string]any{"data": map[string]any{"node": map[string]any{
				"comments": map[string]any{
					"pageInfo": pageInfo(false, ""),
					"nodes":    []any{gqlComment(4, "dave")},
				},
			}}})
		default:
			t.Errorf("unexpected request: %v", req.Variables)
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	client, _ := newTestClient(t, handler)
	threads, err := client.FetchReviewThreads(context.Background(), "acme/widgets", 42)

	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.Len(t, threads[0].Comments, 4)
	for i, c := range threads[0].Comments {
		assert.Equal(t, int64(i+1), c.ID, "comments stay in chronological order")
	}
	assert.Len(t, rec.all(), 3)
}

func TestFetchReviewThreads_Empty(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, threadsResponse(false, ""))
	})

	client, _ := newTestClient(t, handler)
	threads, err := client.FetchReviewThreads(context.Background(), "acme/widgets", 42)

	require.NoError(t, err)
	assert.NotNil(t, threads)
	assert.Empty(t, threads)
}

func TestFetchReviewThreads_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantErr error
	}{
		{
			name:    "graphql errors with 200",
			status:  http.StatusOK,
			body:    map[string]any{"errors": []any{map[string]any{"message": "Could not resolve to a PullRequest"}}},
			wantErr: model.ErrGraphQLOperationFailed,
		},
		{
			name:    "server error",
			status:  http.StatusBadGateway,
			body:    map[string]any{"message": "upstream unavailable"},
			wantErr: model.ErrTransportFailure,
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    map[string]any{"message": "Bad credentials"},
			wantErr: model.ErrTransportFailure,
		},
		{
			name:    "null data",
			status:  http.StatusOK,
			body:    map[string]any{"data": nil},
			wantErr: model.ErrMalformedResponse,
		},
		{
			name:    "null pull request",
			status:  http.StatusOK,
			body:    map[string]any{"data": map[string]any{"repository": map[string]any{"pullRequest": nil}}},
			wantErr: model.ErrMalformedResponse,
		},
		{
			name:    "next page without cursor",
			status:  http.StatusOK,
			body:    threadsResponse(true, ""),
			wantErr: model.ErrMalformedResponse,
		},
		{
			name:   "thread without comments",
			status: http.StatusOK,
			body: threadsResponse(false, "",
				gqlThread("PRRT_1", false, []any{}, pageInfo(false, "")),
			),
			wantErr: model.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			})

			client, _ := newTestClient(t, handler)
			threads, err := client.FetchReviewThreads(context.Background(), "acme/widgets", 42)

			require.Error(t, err)
			assert.Nil(t, threads)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchReviewThreads_TransportErrorCarriesStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("try later\n"))
	})

	client, _ := newTestClient(t, handler)
	_, err := client.FetchReviewThreads(context.Background(), "acme/widgets", 42)

	var te *model.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	assert.Equal(t, "try later", te.Body)
}

func TestFetchReviewThreads_GraphQLErrorMessages(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"errors": []any{
			map[string]any{"message": "first"},
			map[string]any{"message": "second"},
		}})
	})

	client, _ := newTestClient(t, handler)
	_, err := client.FetchReviewThreads(context.Background(), "acme/widgets", 42)

	var gqlErr *model.GraphQLError
	require.ErrorAs(t, err, &gqlErr)
	assert.Equal(t, []string{"first", "second"}, gqlErr.Messages)
}

func TestFetchReviewThreads_RequiresToken(t *testing.T) {
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	_, server := newTestClient(t, handler)
	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/", "")
	require.NoError(t, err)

	_, err = client.FetchReviewThreads(context.Background(), "acme/widgets", 42)
	assert.ErrorIs(t, err, model.ErrConfigurationMissing)
	assert.Zero(t, calls)
}

func TestFetchReviewThreads_EnterpriseEndpoint(t *testing.T) {
	var path string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		writeJSON(t, w, threadsResponse(false, ""))
	})

	_, server := newTestClient(t, handler)
	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/api/v3/", "test-token")
	require.NoError(t, err)

	_, err = client.FetchReviewThreads(context.Background(), "acme/widgets", 42)
	require.NoError(t, err)
	assert.Equal(t, "/api/graphql", path)
}

func TestResolveReviewThread(t *testing.T) {
	rec := &gqlRecorder{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := rec.record(t, r)
		assert.Contains(t, req.Query, "resolveReviewThread")
		assert.Equal(t, "PRRT_1", req.Variables["threadId"])
		writeJSON(t, w, map[string]any{"data": map[string]any{
			"resolveReviewThread": map[string]any{
				"thread": map[string]any{"id": "PRRT_1", "isResolved": true},
			},
		}})
	})

	client, _ := newTestClient(t, handler)
	resolved, err := client.ResolveReviewThread(context.Background(), "PRRT_1")

	require.NoError(t, err)
	assert.True(t, resolved)
	assert.Len(t, rec.all(), 1)
}

func TestResolveReviewThread_MissingThread(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"data": map[string]any{"resolveReviewThread": nil}})
	})

	client, _ := newTestClient(t, handler)
	_, err := client.ResolveReviewThread(context.Background(), "PRRT_1")

	assert.ErrorIs(t, err, model.ErrMalformedResponse)
}

func TestFetchThreadResolved(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "PRRT_9", req.Variables["id"])
		writeJSON(t, w, map[string]any{"data": map[string]any{
			"node": map[string]any{"id": "PRRT_9", "isResolved": true},
		}})
	})

	client, _ := newTestClient(t, handler)
	resolved, err := client.FetchThreadResolved(context.Background(), "PRRT_9")

	require.NoError(t, err)
	assert.True(t, resolved)
}

func TestFetchThreadResolved_UnknownNode(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"data": map[string]any{"node": nil}})
	})

	client, _ := newTestClient(t, handler)
	_, err := client.FetchThreadResolved(context.Background(), "PRRT_9")

	assert.ErrorIs(t, err, model.ErrMalformedResponse)
}
