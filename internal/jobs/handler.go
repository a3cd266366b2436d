// Package jobs provides the asynchronous job subsystem: the durable job
// service, the handler registry, and the dispatcher worker loop.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jonathan/cv-scorer/internal/types"
)

// Handler executes one kind of job. Implementations must be idempotent for
// at-least-once delivery and must propagate ctx cancellation from their
// blocking calls rather than running to completion after shutdown.
type Handler interface {
	// Type returns the job type this handler executes.
	Type() types.JobType
	// Execute runs the job and returns its output payload. A returned
	// *ExecutionError carries a failure code for the job record; any other
	// error is recorded as an internal failure.
	Execute(ctx context.Context, job *types.Job) (json.RawMessage, error)
}

// Registry maps job types to their handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[types.JobType]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[types.JobType]Handler)}
}

// Register adds a handler. Registering two handlers for one type is an error.
func (r *Registry) Register(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[h.Type()]; exists {
		return fmt.Errorf("handler already registered for job type %q", h.Type())
	}
	r.handlers[h.Type()] = h
	return nil
}

// Resolve returns the handler for a job type, if one is registered.
func (r *Registry) Resolve(jobType types.JobType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[jobType]
	return h, ok
}
