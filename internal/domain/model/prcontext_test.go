package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

func conclusion(c model.CheckConclusion) *model.CheckConclusion {
	return &c
}

func TestNewPRContext_DerivedViews(t *testing.T) {
	threads := []model.ReviewThread{
		{ID: "T1", IsResolved: true},
		{ID: "T2", IsResolved: false},
		{ID: "T3", IsResolved: false},
	}
	checks := []model.CheckRun{
		{ID: 1, Name: "build", Status: model.CheckStatusCompleted, Conclusion: conclusion(model.ConclusionSuccess)},
		{ID: 2, Name: "test", Status: model.CheckStatusCompleted, Conclusion: conclusion(model.ConclusionFailure)},
		{ID: 3, Name: "lint", Status: model.CheckStatusInProgress},
		{ID: 4, Name: "deploy", Status: model.CheckStatusCompleted, Conclusion: conclusion(model.ConclusionCancelled)},
		{ID: 5, Name: "e2e", Status: model.CheckStatusCompleted, Conclusion: conclusion(model.ConclusionTimedOut)},
		{ID: 6, Name: "sec", Status: model.CheckStatusCompleted, Conclusion: conclusion(model.ConclusionActionRequired)},
		{ID: 7, Name: "docs", Status: model.CheckStatusCompleted, Conclusion: conclusion(model.ConclusionSkipped)},
		{ID: 8, Name: "opt", Status: model.CheckStatusCompleted, Conclusion: conclusion(model.ConclusionNeutral)},
	}

	c := model.NewPRContext("acme/widgets", model.PullRequest{Number: 42}, threads, checks, time.Now())

	require.Len(t, c.UnresolvedThreads, 2)
	assert.Equal(t, "T2", c.UnresolvedThreads[0].ID)
	assert.Equal(t, "T3", c.UnresolvedThreads[1].ID)

	var failing []int64
	for _, cr := range c.FailingChecks {
		failing = append(failing, cr.ID)
	}
	assert.Equal(t, []int64{2, 4, 5, 6}, failing)

	pending := c.PendingChecks()
	require.Len(t, pending, 1)
	assert.Equal(t, "lint", pending[0].Name)
}

func TestNewPRContext_InProgressNeverFailing(t *testing.T) {
	checks := []model.CheckRun{
		{ID: 1, Name: "build", Status: model.CheckStatusInProgress},
		{ID: 2, Name: "test", Status: model.CheckStatusQueued},
	}

	c := model.NewPRContext("acme/widgets", model.PullRequest{}, nil, checks, time.Now())

	assert.Empty(t, c.FailingChecks)
	assert.NotNil(t, c.Threads, "threads should be empty, not nil")
	assert.Len(t, c.PendingChecks(), 2)
}

func TestSnapshotOf(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := model.NewPRContext("acme/widgets", model.PullRequest{Number: 42, HeadSHA: "abc"},
		[]model.ReviewThread{{ID: "T1"}, {ID: "T2", IsResolved: true}},
		[]model.CheckRun{{ID: 1, Status: model.CheckStatusCompleted, Conclusion: conclusion(model.ConclusionFailure)}},
		at,
	)

	s := model.SnapshotOf(c)

	assert.Equal(t, model.Snapshot{
		RepoFullName:    "acme/widgets",
		PRNumber:        42,
		HeadSHA:         "abc",
		ThreadCount:     2,
		UnresolvedCount: 1,
		CheckCount:      1,
		FailingCount:    1,
		TakenAt:         at,
	}, s)
}
