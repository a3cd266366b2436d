package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-scorer/internal/types"
)

// Repository is the durable store for job records. The Postgres
// implementation lives in internal/db.
type Repository interface {
	// Create persists a new job record.
	Create(ctx context.Context, job *types.Job) error

	// Get returns a job by id, or (nil, nil) when the id is unknown.
	Get(ctx context.Context, id uuid.UUID) (*types.Job, error)

	// Update applies the patch to the job iff its stored version still equals
	// expectedVersion, incrementing the version. It returns the updated job,
	// or (nil, nil) when the job is missing or another writer got there
	// first. This version check is what keeps the dispatcher and a racing
	// cancellation from clobbering each other.
	Update(ctx context.Context, id uuid.UUID, expectedVersion int, patch types.JobPatch) (*types.Job, error)

	// ListQueuedBefore returns jobs still in queued status created at or
	// before cutoff. The reconciliation sweep uses it to recover jobs whose
	// queue entry was lost (crash between persist and enqueue, or restart of
	// the in-memory queue).
	ListQueuedBefore(ctx context.Context, cutoff time.Time) ([]types.Job, error)
}
