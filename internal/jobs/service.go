package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-scorer/internal/queue"
	"github.com/jonathan/cv-scorer/internal/types"
)

// cancelRetries bounds the optimistic retry loop in Cancel when the
// dispatcher is advancing the same job concurrently.
const cancelRetries = 3

// Service is the public-facing orchestrator for jobs: it creates and
// enqueues them and exposes query and cancellation.
type Service struct {
	repo Repository
	q    queue.Queue
}

// NewService creates a job service over a repository and a queue.
func NewService(repo Repository, q queue.Queue) *Service {
	return &Service{repo: repo, q: q}
}

// Create persists a new queued job and enqueues its envelope. If the enqueue
// fails after the record is persisted, the job stays queued and is recovered
// by the reconciliation sweep.
func (s *Service) Create(ctx context.Context, jobType types.JobType, input json.RawMessage, priority int) (*types.Job, error) {
	job := types.NewJob(jobType, input, priority)

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	err := s.q.Enqueue(ctx, queue.Envelope{
		JobID:     job.ID,
		JobType:   job.Type,
		Priority:  job.Priority,
		VisibleAt: time.Now(),
	})
	if err != nil {
		// The record exists; the sweep will re-enqueue it.
		return nil, fmt.Errorf("job %s persisted but enqueue failed: %w", job.ID, err)
	}

	return job, nil
}

// Get returns a job by id, or (nil, nil) when unknown.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	return s.repo.Get(ctx, id)
}

// Cancel transitions a non-terminal job to canceled. Canceling a terminal
// job is a no-op that returns the job unchanged; an unknown id returns
// (nil, nil). A job already picked up keeps running until its handler
// observes cancellation or completes; the dispatcher's conditional final
// write defers to the cancellation recorded here.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	for attempt := 0; attempt < cancelRetries; attempt++ {
		job, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if job == nil {
			return nil, nil
		}
		if job.IsTerminal() {
			return job, nil
		}

		now := time.Now().UTC()
		updated, err := s.repo.Update(ctx, id, job.Version, types.JobPatch{
			Status:      types.Some(types.JobStatusCanceled),
			CompletedAt: types.Some(now),
		})
		if err != nil {
			return nil, err
		}
		if updated != nil {
			return updated, nil
		}
		// Version conflict: the dispatcher moved the job meanwhile. Re-read
		// and retry against the new state.
	}
	return s.repo.Get(ctx, id)
}

// ReconcileStuck re-enqueues jobs that are still queued past the cutoff.
// It returns the number of jobs re-enqueued.
func (s *Service) ReconcileStuck(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	stuck, err := s.repo.ListQueuedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stuck jobs: %w", err)
	}

	count := 0
	for i := range stuck {
		job := &stuck[i]
		err := s.q.Enqueue(ctx, queue.Envelope{
			JobID:     job.ID,
			JobType:   job.Type,
			Priority:  job.Priority,
			VisibleAt: time.Now(),
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// StartReconciler runs the reconciliation sweep on a fixed interval until
// ctx is done. Re-enqueueing an envelope whose job was meanwhile picked up
// is harmless: the dispatcher skips jobs no longer queued.
func (s *Service) StartReconciler(ctx context.Context, interval, olderThan time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ReconcileStuck(ctx, olderThan)
			if err != nil {
				log.Printf("jobs: reconciliation sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("jobs: re-enqueued %d stuck job(s)", n)
			}
		}
	}
}
