package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-scorer/internal/types"
)

// fakeRepo is an in-memory Repository with the same optimistic version
// semantics as the Postgres implementation.
type fakeRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*types.Job
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{jobs: make(map[uuid.UUID]*types.Job)}
}

func (r *fakeRepo) Create(_ context.Context, job *types.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *job
	stored.Version = 1
	r.jobs[job.ID] = &stored
	job.Version = 1
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id uuid.UUID) (*types.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (r *fakeRepo) Update(_ context.Context, id uuid.UUID, expectedVersion int, patch types.JobPatch) (*types.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Version != expectedVersion {
		return nil, nil
	}

	if v, ok := patch.Status.Value(); ok {
		job.Status = v
	}
	if v, ok := patch.Output.Value(); ok {
		job.Output = v
	}
	if v, ok := patch.ErrorCode.Value(); ok {
		job.ErrorCode = v
	}
	if v, ok := patch.ErrorMessage.Value(); ok {
		job.ErrorMessage = v
	}
	if v, ok := patch.StartedAt.Value(); ok {
		job.StartedAt = &v
	}
	if v, ok := patch.CompletedAt.Value(); ok {
		job.CompletedAt = &v
	}
	job.Version++

	copied := *job
	return &copied, nil
}

func (r *fakeRepo) ListQueuedBefore(_ context.Context, cutoff time.Time) ([]types.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []types.Job
	for _, job := range r.jobs {
		if job.Status == types.JobStatusQueued && !job.CreatedAt.After(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}
