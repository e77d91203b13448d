package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	httphandler "github.com/ericfisherdev/prresolver/internal/adapter/driving/http"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unsupported output format %q: use text, json or yaml", format)
}

// render writes v in the requested format. text renders the human-readable
// form; json and yaml encode v directly.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		if err := text(tw); err != nil {
			return err
		}
		return tw.Flush()
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func derefOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func threadLocation(t httphandler.ThreadResponse) string {
	if t.Line == nil {
		return t.Path
	}
	return fmt.Sprintf("%s:%d", t.Path, *t.Line)
}

// firstLine returns the first line of s, cut to limit runes.
func firstLine(s string, limit int) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}

func writeContextText(w io.Writer, c httphandler.ContextResponse) error {
	pr := c.PullRequest
	fmt.Fprintf(w, "%s#%d\t%s\n", c.Repository, pr.Number, pr.Title)
	fmt.Fprintf(w, "state\t%s (mergeable: %s)\n", pr.State, pr.Mergeable)
	fmt.Fprintf(w, "head\t%s %s\n", pr.Branch, pr.HeadSHA)
	fmt.Fprintf(w, "threads\t%d unresolved of %d\n", len(c.UnresolvedThreads), len(c.Threads))
	fmt.Fprintf(w, "checks\t%d failing, %d pending of %d\n", len(c.FailingChecks), len(c.PendingChecks), len(c.Checks))

	if len(c.UnresolvedThreads) > 0 {
		fmt.Fprintln(w, "\nUNRESOLVED THREADS")
		if err := writeThreadsText(w, c.UnresolvedThreads); err != nil {
			return err
		}
	}
	if len(c.FailingChecks) > 0 {
		fmt.Fprintln(w, "\nFAILING CHECKS")
		if err := writeChecksText(w, c.FailingChecks); err != nil {
			return err
		}
	}
	return nil
}

func writeThreadsText(w io.Writer, threads []httphandler.ThreadResponse) error {
	for _, t := range threads {
		var author, body string
		if len(t.Comments) > 0 {
			author, body = t.Comments[0].Author, t.Comments[0].Body
		}
		status := "unresolved"
		if t.IsResolved {
			status = "resolved"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, status, threadLocation(t), author, firstLine(body, 60)); err != nil {
			return err
		}
	}
	return nil
}

func writeChecksText(w io.Writer, runs []httphandler.CheckRunResponse) error {
	for _, cr := range runs {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cr.Name, cr.Status, derefOrDash(cr.Conclusion), derefOrDash(cr.DetailsURL)); err != nil {
			return err
		}
	}
	return nil
}

func writeSuitesText(w io.Writer, suites []httphandler.CheckSuiteResponse) error {
	for _, cs := range suites {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d runs\n", cs.ID, orDash(cs.App), cs.Status, derefOrDash(cs.Conclusion), cs.LatestCheckRunsCount); err != nil {
			return err
		}
	}
	return nil
}

func writeRunsText(w io.Writer, runs []httphandler.WorkflowRunResponse) error {
	for _, wr := range runs {
		if _, err := fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%s\t%s\n", wr.RunNumber, wr.Name, wr.Event, wr.Status, derefOrDash(wr.Conclusion), orDash(wr.HTMLURL)); err != nil {
			return err
		}
	}
	return nil
}
