// Package web implements the HTML report driving adapter using templ components.
package web

import (
	"log/slog"
	"net/http"

	httphandler "github.com/ericfisherdev/prresolver/internal/adapter/driving/http"
	"github.com/ericfisherdev/prresolver/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/prresolver/internal/application"
)

// Handler is the web driving adapter that serves HTML review reports.
type Handler struct {
	contextSvc *application.ContextService
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(contextSvc *application.ContextService, logger *slog.Logger) *Handler {
	return &Handler{
		contextSvc: contextSvc,
		logger:     logger,
	}
}

// Report renders the review report for the pull request named by the path.
// Every request fetches fresh state from GitHub.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	reference := r.PathValue("number")
	repo := r.PathValue("owner") + "/" + r.PathValue("repo")

	prCtx, err := h.contextSvc.GetContext(r.Context(), reference, repo)
	if err != nil {
		status := httphandler.StatusForError(err)
		h.logger.Error("failed to build report", "repo", repo, "reference", reference, "status", status, "error", err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	component := templates.Report(toReportViewModel(prCtx))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render report", "repo", repo, "reference", reference, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
