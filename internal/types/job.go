// Package types provides type definitions for structured data used throughout the cv-scorer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType identifies the kind of work a job carries.
type JobType string

// Supported job types. ScoreCV is currently the only variant; the registry
// design allows new types without touching the dispatcher.
const (
	JobTypeScoreCV JobType = "score_cv"
)

// JobStatus represents the lifecycle state of a job.
type JobStatus string

// Job lifecycle states. Succeeded, Failed and Canceled are terminal.
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
)

// IsTerminal reports whether the status admits no further transitions.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed, JobStatusCanceled:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal state
// machine transition. No transition is legal out of a terminal state.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusQueued:
		return next == JobStatusRunning || next == JobStatusCanceled
	case JobStatusRunning:
		return next == JobStatusSucceeded || next == JobStatusFailed || next == JobStatusCanceled
	}
	return false
}

// Job is the durable unit of asynchronous work. It is created by the job
// service, advanced by the dispatcher, and never deleted (append-only audit
// trail). Version supports optimistic concurrency: every persisted write
// increments it, and writers supply the version they read.
type Job struct {
	ID           uuid.UUID       `json:"id"`
	Type         JobType         `json:"type"`
	Status       JobStatus       `json:"status"`
	Priority     int             `json:"priority"`
	Input        json.RawMessage `json:"input,omitempty"`
	Output       json.RawMessage `json:"output,omitempty"`
	ErrorCode    string          `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	Version      int             `json:"-"`
}

// IsTerminal reports whether the job has reached a terminal status.
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// NewJob constructs a queued job with a fresh ID and CreatedAt set to now.
func NewJob(jobType JobType, input json.RawMessage, priority int) *Job {
	return &Job{
		ID:        uuid.New(),
		Type:      jobType,
		Status:    JobStatusQueued,
		Priority:  priority,
		Input:     input,
		CreatedAt: time.Now().UTC(),
	}
}

// JobPatch is a typed partial update for a Job. Absent fields are left
// untouched by the repository; present fields are written explicitly. This
// replaces generic field-by-field copying with a compile-time-checked shape.
type JobPatch struct {
	Status       Optional[JobStatus]
	Output       Optional[json.RawMessage]
	ErrorCode    Optional[string]
	ErrorMessage Optional[string]
	StartedAt    Optional[time.Time]
	CompletedAt  Optional[time.Time]
}

// IsZero reports whether the patch carries no changes.
func (p JobPatch) IsZero() bool {
	return !p.Status.Present() && !p.Output.Present() && !p.ErrorCode.Present() &&
		!p.ErrorMessage.Present() && !p.StartedAt.Present() && !p.CompletedAt.Present()
}
