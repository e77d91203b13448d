package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

func TestCheckSuite_IsFailing(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name  string
		suite model.CheckSuite
		want  bool
	}{
		{name: "failure", suite: model.CheckSuite{Status: "completed", Conclusion: str("failure")}, want: true},
		{name: "startup failure", suite: model.CheckSuite{Status: "completed", Conclusion: str("startup_failure")}, want: true},
		{name: "stale", suite: model.CheckSuite{Status: "completed", Conclusion: str("stale")}, want: false},
		{name: "success", suite: model.CheckSuite{Status: "completed", Conclusion: str("success")}, want: false},
		{name: "queued", suite: model.CheckSuite{Status: "queued"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.suite.IsFailing())
		})
	}
}

func TestWorkflowRun_IsFailing(t *testing.T) {
	timedOut := "timed_out"
	assert.True(t, model.WorkflowRun{Status: "completed", Conclusion: &timedOut}.IsFailing())
	assert.False(t, model.WorkflowRun{Status: "in_progress"}.IsFailing())
}
