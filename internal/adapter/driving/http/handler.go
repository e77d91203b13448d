package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/prresolver/internal/application"
	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

// maxReplyBody bounds the size of a reply request body.
const maxReplyBody = 64 << 10

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	contextSvc *application.ContextService
	threadSvc  *application.ThreadService
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	contextSvc *application.ContextService,
	threadSvc *application.ThreadService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		contextSvc: contextSvc,
		threadSvc:  threadSvc,
		logger:     logger,
	}
}

// RegisterAPIRoutes registers all JSON API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/context", h.GetContextByReference)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/pulls/{number}/context", h.GetContext)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/pulls/{number}/threads", h.ListThreads)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/pulls/{number}/checks", h.ListChecks)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/pulls/{number}/check-suites", h.ListCheckSuites)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/pulls/{number}/workflow-runs", h.ListWorkflowRuns)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/pulls/{number}/comments", h.ListComments)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/pulls/{number}/snapshots", h.ListSnapshots)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/pulls/{number}/suggestions", h.ListSuggestions)
	mux.HandleFunc("GET /api/v1/repos/{owner}/{repo}/pulls/{number}/status", h.GetCombinedStatus)
	mux.HandleFunc("POST /api/v1/repos/{owner}/{repo}/pulls/{number}/comments/{id}/replies", h.ReplyToComment)
	mux.HandleFunc("POST /api/v1/threads/{id}/resolve", h.ResolveThread)
}

// ApplyMiddleware wraps the handler with recovery and logging middleware.
// Recovery is innermost so panics are caught before logging.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	wrapped := recoveryMiddleware(logger, next)
	return loggingMiddleware(logger, wrapped)
}

// pathRef returns the reference and repository named by the route path.
func pathRef(r *http.Request) (reference, repo string) {
	return r.PathValue("number"), r.PathValue("owner") + "/" + r.PathValue("repo")
}

// GetContext returns the aggregated review state of a pull request.
func (h *Handler) GetContext(w http.ResponseWriter, r *http.Request) {
	reference, repo := pathRef(r)
	h.writeContext(w, r, reference, repo)
}

// GetContextByReference returns the aggregated review state of the pull request
// named by the ref query parameter: a URL or a number, with an optional repo
// parameter for numbers.
func (h *Handler) GetContextByReference(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("ref")
	if reference == "" {
		writeError(w, http.StatusBadRequest, "ref query parameter is required")
		return
	}
	h.writeContext(w, r, reference, r.URL.Query().Get("repo"))
}

func (h *Handler) writeContext(w http.ResponseWriter, r *http.Request, reference, repo string) {
	prCtx, err := h.contextSvc.GetContext(r.Context(), reference, repo)
	if err != nil {
		h.writeServiceError(w, "failed to build context", err, "reference", reference, "repo", repo)
		return
	}

	writeJSON(w, http.StatusOK, ToContextResponse(prCtx))
}

// ListThreads returns every review thread of a pull request.
func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	reference, repo := pathRef(r)

	threads, err := h.contextSvc.GetReviewThreads(r.Context(), reference, repo)
	if err != nil {
		h.writeServiceError(w, "failed to list threads", err, "reference", reference, "repo", repo)
		return
	}

	if r.URL.Query().Get("unresolved") == "true" {
		threads = model.UnresolvedThreads(threads)
	}

	writeJSON(w, http.StatusOK, ToThreadResponses(threads))
}

// ListChecks returns the check runs for the head commit of a pull request.
func (h *Handler) ListChecks(w http.ResponseWriter, r *http.Request) {
	reference, repo := pathRef(r)

	runs, err := h.contextSvc.GetCheckRuns(r.Context(), reference, repo)
	if err != nil {
		h.writeServiceError(w, "failed to list checks", err, "reference", reference, "repo", repo)
		return
	}

	if r.URL.Query().Get("failing") == "true" {
		runs = model.FailingChecks(runs)
	}

	writeJSON(w, http.StatusOK, ToCheckRunResponses(runs))
}

// ListCheckSuites returns the check suites for the head commit of a pull request.
func (h *Handler) ListCheckSuites(w http.ResponseWriter, r *http.Request) {
	reference, repo := pathRef(r)

	suites, err := h.contextSvc.GetCheckSuites(r.Context(), reference, repo)
	if err != nil {
		h.writeServiceError(w, "failed to list check suites", err, "reference", reference, "repo", repo)
		return
	}

	writeJSON(w, http.StatusOK, ToCheckSuiteResponses(suites))
}

// ListWorkflowRuns returns the recent Actions runs on the head branch of a pull request.
func (h *Handler) ListWorkflowRuns(w http.ResponseWriter, r *http.Request) {
	reference, repo := pathRef(r)

	runs, err := h.contextSvc.GetWorkflowRuns(r.Context(), reference, repo)
	if err != nil {
		h.writeServiceError(w, "failed to list workflow runs", err, "reference", reference, "repo", repo)
		return
	}

	writeJSON(w, http.StatusOK, ToWorkflowRunResponses(runs))
}

// ListComments returns the flat review comments grouped into reply chains.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	reference, repo := pathRef(r)

	comments, err := h.contextSvc.GetReviewComments(r.Context(), reference, repo)
	if err != nil {
		h.writeServiceError(w, "failed to list comments", err, "reference", reference, "repo", repo)
		return
	}

	chains := model.GroupReplyChains(comments)
	resp := make([][]CommentResponse, 0, len(chains))
	for _, chain := range chains {
		resp = append(resp, ToCommentResponses(chain))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListSuggestions returns the suggested changes found in unresolved threads.
func (h *Handler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	reference, repo := pathRef(r)

	threads, err := h.contextSvc.GetReviewThreads(r.Context(), reference, repo)
	if err != nil {
		h.writeServiceError(w, "failed to list suggestions", err, "reference", reference, "repo", repo)
		return
	}

	writeJSON(w, http.StatusOK, ToSuggestionResponses(application.ExtractSuggestions(threads)))
}

// GetCombinedStatus returns the legacy combined status of the head commit.
func (h *Handler) GetCombinedStatus(w http.ResponseWriter, r *http.Request) {
	reference, repo := pathRef(r)

	status, err := h.contextSvc.GetCombinedStatus(r.Context(), reference, repo)
	if err != nil {
		h.writeServiceError(w, "failed to get combined status", err, "reference", reference, "repo", repo)
		return
	}

	writeJSON(w, http.StatusOK, ToCombinedStatusResponse(status))
}

// ListSnapshots returns the recorded context history of a pull request.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	reference, repo := pathRef(r)

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	snapshots, err := h.contextSvc.ListSnapshots(r.Context(), reference, repo, limit)
	if err != nil {
		h.writeServiceError(w, "failed to list snapshots", err, "reference", reference, "repo", repo)
		return
	}

	writeJSON(w, http.StatusOK, ToSnapshotResponses(snapshots))
}

// ResolveThread marks a review thread resolved. Resolving an already resolved
// thread succeeds.
func (h *Handler) ResolveThread(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")

	resolved, err := h.threadSvc.ResolveThread(r.Context(), threadID)
	if err != nil {
		h.writeServiceError(w, "failed to resolve thread", err, "thread_id", threadID)
		return
	}

	writeJSON(w, http.StatusOK, ResolveResponse{ThreadID: threadID, IsResolved: resolved})
}

// ReplyToComment posts a reply to a review comment.
func (h *Handler) ReplyToComment(w http.ResponseWriter, r *http.Request) {
	reference, repo := pathRef(r)

	commentID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	var req ReplyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReplyBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.threadSvc.ReplyToComment(r.Context(), reference, repo, commentID, req.Body)
	if err != nil {
		h.writeServiceError(w, "failed to reply to comment", err, "comment_id", commentID, "repo", repo)
		return
	}

	writeJSON(w, http.StatusCreated, ToCommentResponse(*reply))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
