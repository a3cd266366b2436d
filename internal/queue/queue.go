// Package queue provides the ordering and visibility abstraction that
// decouples job producers from the dispatcher.
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-scorer/internal/types"
)

// Envelope is the lightweight queue entry referencing a durable job record.
// It is created at enqueue time and discarded at dequeue time; the job row
// itself stays in the repository.
type Envelope struct {
	JobID     uuid.UUID
	JobType   types.JobType
	Priority  int
	VisibleAt time.Time
}

// Queue orders envelopes by priority and visibility time.
//
// Among entries whose VisibleAt has passed, the highest Priority wins; ties
// go to the earliest VisibleAt, then enqueue order (FIFO within a priority
// band). Entries with a future VisibleAt are invisible until that time.
//
// Dequeue blocks until an eligible entry exists or ctx is done. An empty
// queue is not an error; the only error either method returns is the
// caller's context error. Implementations must never deliver the same
// envelope to two consumers.
type Queue interface {
	Enqueue(ctx context.Context, env Envelope) error
	Dequeue(ctx context.Context) (Envelope, error)
}
