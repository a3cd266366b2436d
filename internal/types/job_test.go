package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, JobStatusQueued.IsTerminal())
	assert.False(t, JobStatusRunning.IsTerminal())
	assert.True(t, JobStatusSucceeded.IsTerminal())
	assert.True(t, JobStatusFailed.IsTerminal())
	assert.True(t, JobStatusCanceled.IsTerminal())
}

func TestJobStatus_CanTransition(t *testing.T) {
	assert.True(t, JobStatusQueued.CanTransition(JobStatusRunning))
	assert.True(t, JobStatusQueued.CanTransition(JobStatusCanceled))
	assert.False(t, JobStatusQueued.CanTransition(JobStatusSucceeded))

	assert.True(t, JobStatusRunning.CanTransition(JobStatusSucceeded))
	assert.True(t, JobStatusRunning.CanTransition(JobStatusFailed))
	assert.True(t, JobStatusRunning.CanTransition(JobStatusCanceled))
	assert.False(t, JobStatusRunning.CanTransition(JobStatusQueued))
}

func TestJobStatus_NoTransitionOutOfTerminal(t *testing.T) {
	terminals := []JobStatus{JobStatusSucceeded, JobStatusFailed, JobStatusCanceled}
	targets := []JobStatus{JobStatusQueued, JobStatusRunning, JobStatusSucceeded, JobStatusFailed, JobStatusCanceled}

	for _, from := range terminals {
		for _, to := range targets {
			assert.False(t, from.CanTransition(to), "terminal %s must not transition to %s", from, to)
		}
	}
}

func TestNewJob(t *testing.T) {
	input := json.RawMessage(`{"cv_id":"abc"}`)
	job := NewJob(JobTypeScoreCV, input, 5)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", job.ID.String())
	assert.Equal(t, JobTypeScoreCV, job.Type)
	assert.Equal(t, JobStatusQueued, job.Status)
	assert.Equal(t, 5, job.Priority)
	assert.Equal(t, input, job.Input)
	assert.False(t, job.CreatedAt.IsZero())
	assert.Nil(t, job.StartedAt)
	assert.Nil(t, job.CompletedAt)
	assert.False(t, job.IsTerminal())
}

func TestJobPatch_IsZero(t *testing.T) {
	assert.True(t, JobPatch{}.IsZero())

	patch := JobPatch{Status: Some(JobStatusRunning)}
	assert.False(t, patch.IsZero())
}
