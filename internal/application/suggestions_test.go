package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

func intPtr(v int) *int {
	return &v
}

func TestExtractSuggestions(t *testing.T) {
	threads := []model.ReviewThread{
		{
			ID:   "T1",
			Line: intPtr(10),
			Comments: []model.ReviewComment{
				{ID: 1, Author: "alice", Path: "main.go", Line: intPtr(12), Body: "Use this:\n```suggestion\nreturn nil\n```"},
				{ID: 2, Author: "bob", Path: "main.go", Body: "Agreed, or:\n```suggestion\nreturn err\n```\nand\n```suggestion\npanic(err)\n```"},
			},
		},
		{
			ID:         "T2",
			IsResolved: true,
			Comments: []model.ReviewComment{
				{ID: 3, Path: "old.go", Body: "```suggestion\nignored\n```"},
			},
		},
		{
			ID:       "T3",
			Comments: []model.ReviewComment{{ID: 4, Path: "doc.md", Body: "plain comment, no code"}},
		},
	}

	got := ExtractSuggestions(threads)

	require.Len(t, got, 3)

	assert.Equal(t, "T1", got[0].ThreadID)
	assert.Equal(t, int64(1), got[0].CommentID)
	assert.Equal(t, "alice", got[0].Author)
	assert.Equal(t, "main.go", got[0].FilePath)
	require.NotNil(t, got[0].Line)
	assert.Equal(t, 12, *got[0].Line)
	assert.Equal(t, "return nil", got[0].ProposedCode)

	assert.Equal(t, int64(2), got[1].CommentID)
	require.NotNil(t, got[1].Line, "falls back to the thread line")
	assert.Equal(t, 10, *got[1].Line)
	assert.Equal(t, "return err", got[1].ProposedCode)
	assert.Equal(t, "panic(err)", got[2].ProposedCode)
}

func TestExtractSuggestions_Empty(t *testing.T) {
	got := ExtractSuggestions(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtractSuggestions_DeletionSuggestion(t *testing.T) {
	threads := []model.ReviewThread{{
		ID:       "T1",
		Comments: []model.ReviewComment{{ID: 1, Body: "Remove it:\n```suggestion\n```"}},
	}}

	got := ExtractSuggestions(threads)

	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].ProposedCode)
}

func TestExtractSuggestions_FallsBackToThreadLocation(t *testing.T) {
	threads := []model.ReviewThread{{
		ID:       "T",
		Path:     "handler.go",
		Line:     intPtr(30),
		Comments: []model.ReviewComment{{ID: 9, Body: "```suggestion\nw.WriteHeader(204)\n```"}},
	}}

	got := ExtractSuggestions(threads)

	require.Len(t, got, 1)
	assert.Equal(t, "handler.go", got[0].FilePath)
	require.NotNil(t, got[0].Line)
	assert.Equal(t, 30, *got[0].Line)
}
