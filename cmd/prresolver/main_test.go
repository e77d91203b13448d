package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	httphandler "github.com/ericfisherdev/prresolver/internal/adapter/driving/http"
	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

var configKeys = []string{
	"PRRESOLVER_CONFIG",
	"PRRESOLVER_GITHUB_TOKEN",
	"GITHUB_TOKEN",
	"PRRESOLVER_GITHUB_REPO",
	"GITHUB_REPO",
	"PRRESOLVER_GITHUB_API_URL",
	"PRRESOLVER_MAX_PAGES",
	"PRRESOLVER_HTTP_CACHE",
	"PRRESOLVER_DB_PATH",
	"PRRESOLVER_LISTEN_ADDR",
}

// isolateEnv unsets every configuration variable for the duration of the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

const threadsJSON = `{"data":{"repository":{"pullRequest":{"reviewThreads":{
	"pageInfo":{"hasNextPage":false,"endCursor":null},
	"nodes":[
		{"id":"PRRT_open","isResolved":false,"isOutdated":false,"path":"main.go","line":7,
		 "comments":{"pageInfo":{"hasNextPage":false,"endCursor":null},"nodes":[
			{"id":"PRRC_1","databaseId":1,"body":"Rename this\n` + "```suggestion\\nfunc run() error {\\n```" + `","author":{"login":"bob"},
			 "createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z","path":"main.go","line":7,
			 "originalLine":7,"diffHunk":"@@ -1 +1 @@","replyTo":null,"pullRequestReview":null}]}},
		{"id":"PRRT_done","isResolved":true,"isOutdated":false,"path":"go.mod","line":null,
		 "comments":{"pageInfo":{"hasNextPage":false,"endCursor":null},"nodes":[
			{"id":"PRRC_2","databaseId":2,"body":"ok","author":null,
			 "createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z","path":"go.mod","line":null,
			 "originalLine":null,"diffHunk":"","replyTo":null,"pullRequestReview":null}]}}
	]}}}}}`

// fakeGitHub serves the REST and GraphQL endpoints the commands read.
func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widgets/pulls/42", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"number":42,"node_id":"PR_42","title":"Add feature X","state":"open",
			"html_url":"https://github.com/acme/widgets/pull/42","user":{"login":"alice"},
			"head":{"ref":"feature-x","sha":"abc123"},"base":{"ref":"main"},
			"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-02T00:00:00Z"}`))
	})
	mux.HandleFunc("GET /repos/acme/widgets/commits/abc123/check-runs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_count":2,"check_runs":[
			{"id":1,"name":"build","status":"completed","conclusion":"success"},
			{"id":2,"name":"lint","status":"completed","conclusion":"failure","details_url":"https://ci.example.com/2"}]}`))
	})
	mux.HandleFunc("GET /repos/acme/widgets/commits/abc123/check-suites", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_count":1,"check_suites":[
			{"id":5,"head_sha":"abc123","head_branch":"feature-x","status":"completed","conclusion":"failure",
			"latest_check_runs_count":2,"app":{"name":"GitHub Actions"}}]}`))
	})
	mux.HandleFunc("GET /repos/acme/widgets/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("branch") != "feature-x" {
			_, _ = w.Write([]byte(`{"total_count":0,"workflow_runs":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"total_count":1,"workflow_runs":[
			{"id":9001,"name":"CI","run_number":57,"event":"pull_request","head_branch":"feature-x",
			"head_sha":"abc123","status":"completed","conclusion":"success",
			"html_url":"https://github.com/acme/widgets/actions/runs/9001"}]}`))
	})
	mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(threadsJSON))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	isolateEnv(t)
	server := fakeGitHub(t)
	t.Setenv("PRRESOLVER_GITHUB_API_URL", server.URL+"/")
	t.Setenv("PRRESOLVER_GITHUB_TOKEN", "test-token")
	t.Setenv("PRRESOLVER_GITHUB_REPO", "acme/widgets")
}

func TestChecksCmd_JSON(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "checks", "42", "--output", "json", "--failing")
	require.NoError(t, err)

	var runs []httphandler.CheckRunResponse
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "lint", runs[0].Name)
	require.NotNil(t, runs[0].Conclusion)
	assert.Equal(t, "failure", *runs[0].Conclusion)
}

func TestSuitesCmd_Text(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "suites", "42")
	require.NoError(t, err)

	assert.Equal(t, []string{"5", "GitHub", "Actions", "completed", "failure", "2", "runs"}, strings.Fields(out))
}

func TestRunsCmd_JSON(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "runs", "42", "-o", "json")
	require.NoError(t, err)

	var runs []httphandler.WorkflowRunResponse
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1, "runs are filtered by the head branch")
	assert.Equal(t, 57, runs[0].RunNumber)
	assert.Equal(t, "feature-x", runs[0].HeadBranch)
}

func TestContextCmd_Text(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "context", "https://github.com/acme/widgets/pull/42")
	require.NoError(t, err)

	assert.Contains(t, out, "acme/widgets#42")
	assert.Contains(t, out, "1 unresolved of 2")
	assert.Contains(t, out, "1 failing, 0 pending of 2")
	assert.Contains(t, out, "PRRT_open")
	assert.NotContains(t, out, "PRRT_done")
	assert.Contains(t, out, "main.go:7")
}

func TestContextCmd_YAML(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "context", "42", "-o", "yaml")
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "acme/widgets", resp["repository"])
	assert.Len(t, resp["unresolved_threads"], 1)
	assert.Len(t, resp["failing_checks"], 1)
}

func TestThreadsCmd_Unresolved(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "threads", "42", "--unresolved", "-o", "json")
	require.NoError(t, err)

	var threads []httphandler.ThreadResponse
	require.NoError(t, json.Unmarshal([]byte(out), &threads))
	require.Len(t, threads, 1)
	assert.Equal(t, "PRRT_open", threads[0].ID)
}

func TestSuggestionsCmd(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "suggestions", "42", "-o", "json")
	require.NoError(t, err)

	var suggestions []httphandler.SuggestionResponse
	require.NoError(t, json.Unmarshal([]byte(out), &suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, "func run() error {", suggestions[0].ProposedCode)
}

func TestReportCmd_File(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "report.html")

	_, err := runCmd(t, "report", "42", "--file", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1 of 2 threads unresolved")
}

func TestHistoryCmd_RecordsContextRuns(t *testing.T) {
	setupEnv(t)
	t.Setenv("PRRESOLVER_DB_PATH", filepath.Join(t.TempDir(), "history.db"))

	_, err := runCmd(t, "context", "42")
	require.NoError(t, err)
	_, err = runCmd(t, "context", "42")
	require.NoError(t, err)

	out, err := runCmd(t, "history", "42", "-o", "json")
	require.NoError(t, err)

	var snapshots []httphandler.SnapshotResponse
	require.NoError(t, json.Unmarshal([]byte(out), &snapshots))
	require.Len(t, snapshots, 2)
	assert.Equal(t, 1, snapshots[0].UnresolvedCount)
	assert.Equal(t, 1, snapshots[0].FailingCount)
}

func TestResolveCmd_RequiresToken(t *testing.T) {
	isolateEnv(t)

	_, err := runCmd(t, "resolve", "PRRT_open")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfigurationMissing)
}

func TestContextCmd_UnresolvedRepository(t *testing.T) {
	isolateEnv(t)

	_, err := runCmd(t, "context", "42")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRepositoryUnresolved)
}

func TestRootCmd_RejectsUnknownOutput(t *testing.T) {
	isolateEnv(t)

	_, err := runCmd(t, "context", "42", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "first", firstLine("  first\nsecond", 10))
	assert.Equal(t, "abcd…", firstLine("abcdefgh", 5))
	assert.Equal(t, "", firstLine("", 5))
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	checks := []httphandler.CheckRunResponse{{Name: "build", Status: "queued"}}

	err := render(&buf, formatText, checks, func(w io.Writer) error {
		return writeChecksText(w, checks)
	})
	require.NoError(t, err)
	assert.Equal(t, "build  queued  -  -\n", buf.String())
}

func TestSetupLogger_WritesToGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	setupLogger(&buf, "info", "json")
	t.Cleanup(func() { setupLogger(os.Stderr, "warn", "text") })

	slog.Info("hello", "k", "v")
	assert.True(t, strings.Contains(buf.String(), `"msg":"hello"`))
}
