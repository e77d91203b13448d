package web

import (
	"fmt"
	"time"

	vm "github.com/ericfisherdev/prresolver/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/prresolver/internal/application"
	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

const (
	shortSHALength = 7
	displayTime    = "2006-01-02 15:04 UTC"
)

// toReportViewModel converts a PRContext into the report view model. Only
// unresolved threads, failing checks, and pending checks are listed; resolved
// and passing items appear in the counts alone.
func toReportViewModel(prCtx *model.PRContext) vm.ReportViewModel {
	pr := prCtx.PullRequest
	pending := prCtx.PendingChecks()

	headSHA := pr.HeadSHA
	if len(headSHA) > shortSHALength {
		headSHA = headSHA[:shortSHALength]
	}

	report := vm.ReportViewModel{
		Title:             pr.Title,
		Repository:        prCtx.Repo,
		Number:            pr.Number,
		URL:               pr.URL,
		State:             prStateLabel(pr),
		Author:            pr.Author,
		Branch:            pr.Branch,
		BaseBranch:        pr.BaseBranch,
		HeadSHA:           headSHA,
		Mergeable:         string(pr.Mergeable),
		BodyHTML:          RenderMarkdown(pr.Body),
		GeneratedAt:       prCtx.FetchedAt.UTC().Format(displayTime),
		ThreadCount:       len(prCtx.Threads),
		UnresolvedCount:   len(prCtx.UnresolvedThreads),
		CheckCount:        len(prCtx.Checks),
		FailingCount:      len(prCtx.FailingChecks),
		PendingCount:      len(pending),
		UnresolvedThreads: make([]vm.ThreadViewModel, 0, len(prCtx.UnresolvedThreads)),
		FailingChecks:     toCheckRunViewModels(prCtx.FailingChecks),
		PendingChecks:     toCheckRunViewModels(pending),
		Suggestions:       []vm.SuggestionViewModel{},
	}

	for _, t := range prCtx.UnresolvedThreads {
		report.UnresolvedThreads = append(report.UnresolvedThreads, toThreadViewModel(t))
	}

	for _, s := range application.ExtractSuggestions(prCtx.UnresolvedThreads) {
		report.Suggestions = append(report.Suggestions, vm.SuggestionViewModel{
			Author:       s.Author,
			Location:     location(s.FilePath, s.Line),
			ProposedCode: s.ProposedCode,
		})
	}

	return report
}

func prStateLabel(pr model.PullRequest) string {
	if pr.Merged {
		return "merged"
	}
	return string(pr.State)
}

func location(path string, line *int) string {
	if line == nil {
		return path
	}
	return fmt.Sprintf("%s:%d", path, *line)
}

// toThreadViewModel splits a thread into its root comment and replies. Only the
// root carries the diff hunk.
func toThreadViewModel(t model.ReviewThread) vm.ThreadViewModel {
	tv := vm.ThreadViewModel{
		ID:           t.ID,
		Location:     location(t.Path, t.Line),
		IsOutdated:   t.IsOutdated,
		Replies:      []vm.CommentViewModel{},
		CommentCount: len(t.Comments),
	}
	if len(t.Comments) == 0 {
		return tv
	}

	root := t.RootComment()
	tv.RootComment = toCommentViewModel(root)
	tv.RootComment.DiffHTML = RenderDiffHunk(root.DiffHunk)

	for _, c := range t.Comments[1:] {
		tv.Replies = append(tv.Replies, toCommentViewModel(c))
	}
	return tv
}

func toCommentViewModel(c model.ReviewComment) vm.CommentViewModel {
	return vm.CommentViewModel{
		ID:        c.ID,
		Author:    c.Author,
		BodyHTML:  RenderMarkdown(c.Body),
		CreatedAt: formatDisplayTime(c.CreatedAt),
	}
}

func toCheckRunViewModels(runs []model.CheckRun) []vm.CheckRunViewModel {
	out := make([]vm.CheckRunViewModel, 0, len(runs))
	for _, cr := range runs {
		cv := vm.CheckRunViewModel{
			Name:   cr.Name,
			Status: string(cr.Status),
		}
		if cr.Conclusion != nil {
			cv.Conclusion = string(*cr.Conclusion)
		}
		if cr.DetailsURL != nil {
			cv.DetailsURL = *cr.DetailsURL
		}
		switch {
		case cr.OutputTitle != nil:
			cv.Summary = *cr.OutputTitle
		case cr.OutputSummary != nil:
			cv.Summary = *cr.OutputSummary
		}
		out = append(out, cv)
	}
	return out
}

func formatDisplayTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(displayTime)
}
