package application

import (
	"regexp"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

// suggestionPattern matches GitHub suggestion blocks in comment bodies.
// Example: ```suggestion\n<proposed code>\n```
var suggestionPattern = regexp.MustCompile("(?s)`{3,}suggestion[^\n]*\n(.*?)\n?`{3,}")

// Suggestion is a proposed code change extracted from a review comment's
// suggestion block, tied to the thread that must be resolved once applied.
type Suggestion struct {
	ThreadID     string
	CommentID    int64
	Author       string
	FilePath     string
	Line         *int
	ProposedCode string
}

// ExtractSuggestions returns the suggestion blocks found in the comments of
// unresolved threads, in thread then comment order. A comment may carry
// several blocks.
func ExtractSuggestions(threads []model.ReviewThread) []Suggestion {
	suggestions := []Suggestion{}

	for _, t := range threads {
		if t.IsResolved {
			continue
		}
		for _, c := range t.Comments {
			for _, m := range suggestionPattern.FindAllStringSubmatch(c.Body, -1) {
				path, line := c.Path, c.Line
				if path == "" {
					path = t.Path
				}
				if line == nil {
					line = t.Line
				}
				suggestions = append(suggestions, Suggestion{
					ThreadID:     t.ID,
					CommentID:    c.ID,
					Author:       c.Author,
					FilePath:     path,
					Line:         line,
					ProposedCode: m[1],
				})
			}
		}
	}

	return suggestions
}
