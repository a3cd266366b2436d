package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-scorer/internal/queue"
	"github.com/jonathan/cv-scorer/internal/types"
)

// Dispatcher runs the worker loops that consume the queue, execute jobs via
// registered handlers, and persist outcomes. It is the only component that
// moves a job from queued to a terminal state under normal completion.
type Dispatcher struct {
	repo     Repository
	q        queue.Queue
	registry *Registry
	workers  int
}

// NewDispatcher creates a dispatcher with the given number of worker loops.
func NewDispatcher(repo Repository, q queue.Queue, registry *Registry, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{repo: repo, q: q, registry: registry, workers: workers}
}

// Run starts the workers and blocks until ctx is done. It returns nil on
// graceful shutdown.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		worker := i
		g.Go(func() error {
			d.runWorker(gCtx, worker)
			return nil
		})
	}
	return g.Wait()
}

func (d *Dispatcher) runWorker(ctx context.Context, worker int) {
	log.Printf("dispatcher: worker %d started", worker)
	for {
		env, err := d.q.Dequeue(ctx)
		if err != nil {
			// Only context errors escape Dequeue; this is shutdown.
			log.Printf("dispatcher: worker %d stopping: %v", worker, err)
			return
		}

		if err := d.process(ctx, env); err != nil {
			// process only fails on repository errors; the envelope is
			// dropped and the reconciliation sweep will redeliver if the
			// job never left queued.
			log.Printf("dispatcher: worker %d: job %s: %v", worker, env.JobID, err)
		}
	}
}

// process executes a single delivery end to end. Redelivery of a job that is
// already running or terminal is a no-op: handlers are not assumed
// re-entrant-safe.
func (d *Dispatcher) process(ctx context.Context, env queue.Envelope) error {
	job, err := d.repo.Get(ctx, env.JobID)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		log.Printf("dispatcher: job %s not found, dropping envelope", env.JobID)
		return nil
	}
	if job.Status != types.JobStatusQueued {
		// Canceled before pickup, already running elsewhere, or terminal.
		return nil
	}

	now := time.Now().UTC()
	running, err := d.repo.Update(ctx, job.ID, job.Version, types.JobPatch{
		Status:    types.Some(types.JobStatusRunning),
		StartedAt: types.Some(now),
	})
	if err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}
	if running == nil {
		// Lost the race, e.g. to a cancellation. Nothing to do.
		return nil
	}

	handler, ok := d.registry.Resolve(running.Type)
	if !ok {
		return d.finalize(ctx, running, nil, Failuref(ErrCodeHandlerNotRegistered,
			"no handler registered for job type %q", running.Type))
	}

	output, execErr := d.execute(ctx, handler, running)
	return d.finalize(ctx, running, output, execErr)
}

// execute invokes the handler, converting a panic into an internal failure
// so a leaked exception can never take down the worker loop.
func (d *Dispatcher) execute(ctx context.Context, handler Handler, job *types.Job) (output json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = Failuref(ErrCodeInternal, "handler panic: %v", r)
		}
	}()
	return handler.Execute(ctx, job)
}

// finalize persists the terminal state for a running job. The write is
// conditional on the version taken when the job entered running; if a
// cancellation landed meanwhile, that state wins and the outcome is dropped.
func (d *Dispatcher) finalize(ctx context.Context, running *types.Job, output json.RawMessage, execErr error) error {
	now := time.Now().UTC()
	patch := types.JobPatch{CompletedAt: types.Some(now)}

	switch {
	case execErr == nil:
		patch.Status = types.Some(types.JobStatusSucceeded)
		patch.Output = types.Some(output)

	case errors.Is(execErr, context.Canceled) || errors.Is(execErr, context.DeadlineExceeded):
		// Shutdown or cancellation, never a failure.
		patch.Status = types.Some(types.JobStatusCanceled)

	default:
		var ee *ExecutionError
		if !errors.As(execErr, &ee) {
			ee = WrapFailure(ErrCodeInternal, "unexpected handler error", execErr)
		}
		patch.Status = types.Some(types.JobStatusFailed)
		patch.ErrorCode = types.Some(ee.Code)
		patch.ErrorMessage = types.Some(ee.Message)
		log.Printf("dispatcher: job %s failed [%s]: %s", running.ID, ee.Code, ee.Message)
	}

	// Use a detached context so the terminal state is persisted even when
	// the worker's own context is already canceled.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	updated, err := d.repo.Update(persistCtx, running.ID, running.Version, patch)
	if err != nil {
		return fmt.Errorf("failed to persist job outcome: %w", err)
	}
	if updated == nil {
		log.Printf("dispatcher: job %s changed during execution, keeping existing state", running.ID)
	}
	return nil
}
