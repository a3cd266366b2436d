package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-scorer/internal/queue"
	"github.com/jonathan/cv-scorer/internal/types"
)

// stubHandler executes score_cv jobs with a configurable function.
type stubHandler struct {
	fn    func(ctx context.Context, job *types.Job) (json.RawMessage, error)
	calls atomic.Int32
}

func (h *stubHandler) Type() types.JobType { return types.JobTypeScoreCV }

func (h *stubHandler) Execute(ctx context.Context, job *types.Job) (json.RawMessage, error) {
	h.calls.Add(1)
	return h.fn(ctx, job)
}

func newRegistryWith(t *testing.T, h Handler) *Registry {
	t.Helper()
	registry := NewRegistry()
	require.NoError(t, registry.Register(h))
	return registry
}

// waitTerminal polls the repository until the job reaches a terminal status.
func waitTerminal(t *testing.T, repo Repository, job *types.Job) *types.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := repo.Get(context.Background(), job.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		if got.IsTerminal() {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal status", job.ID)
	return nil
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	registry := NewRegistry()
	h := &stubHandler{fn: func(context.Context, *types.Job) (json.RawMessage, error) { return nil, nil }}

	require.NoError(t, registry.Register(h))
	assert.Error(t, registry.Register(h))
}

func TestDispatcher_SuccessfulExecution(t *testing.T) {
	repo := newFakeRepo()
	q := queue.NewMemory()
	svc := NewService(repo, q)

	handler := &stubHandler{fn: func(_ context.Context, job *types.Job) (json.RawMessage, error) {
		return json.RawMessage(`{"score_percentage":0.8}`), nil
	}}
	d := NewDispatcher(repo, q, newRegistryWith(t, handler), 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	job, err := svc.Create(context.Background(), types.JobTypeScoreCV, json.RawMessage(`{}`), 1)
	require.NoError(t, err)

	final := waitTerminal(t, repo, job)
	assert.Equal(t, types.JobStatusSucceeded, final.Status)
	assert.JSONEq(t, `{"score_percentage":0.8}`, string(final.Output))
	assert.NotNil(t, final.StartedAt)
	assert.NotNil(t, final.CompletedAt)
	assert.Empty(t, final.ErrorCode)
}

func TestDispatcher_HandlerFailure(t *testing.T) {
	repo := newFakeRepo()
	q := queue.NewMemory()
	svc := NewService(repo, q)

	handler := &stubHandler{fn: func(context.Context, *types.Job) (json.RawMessage, error) {
		return nil, Failure(ErrCodeScoring, "llm call timed out")
	}}
	d := NewDispatcher(repo, q, newRegistryWith(t, handler), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	job, err := svc.Create(context.Background(), types.JobTypeScoreCV, nil, 0)
	require.NoError(t, err)

	final := waitTerminal(t, repo, job)
	assert.Equal(t, types.JobStatusFailed, final.Status)
	assert.Equal(t, ErrCodeScoring, final.ErrorCode)
	assert.Equal(t, "llm call timed out", final.ErrorMessage)
	assert.Nil(t, final.Output)
}

func TestDispatcher_UnexpectedErrorMapsToInternal(t *testing.T) {
	repo := newFakeRepo()
	q := queue.NewMemory()
	svc := NewService(repo, q)

	handler := &stubHandler{fn: func(context.Context, *types.Job) (json.RawMessage, error) {
		return nil, errors.New("boom")
	}}
	d := NewDispatcher(repo, q, newRegistryWith(t, handler), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	job, err := svc.Create(context.Background(), types.JobTypeScoreCV, nil, 0)
	require.NoError(t, err)

	final := waitTerminal(t, repo, job)
	assert.Equal(t, types.JobStatusFailed, final.Status)
	assert.Equal(t, ErrCodeInternal, final.ErrorCode)
}

func TestDispatcher_HandlerPanicIsRecovered(t *testing.T) {
	repo := newFakeRepo()
	q := queue.NewMemory()
	svc := NewService(repo, q)

	handler := &stubHandler{fn: func(context.Context, *types.Job) (json.RawMessage, error) {
		panic("unexpected nil")
	}}
	d := NewDispatcher(repo, q, newRegistryWith(t, handler), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	job, err := svc.Create(context.Background(), types.JobTypeScoreCV, nil, 0)
	require.NoError(t, err)

	final := waitTerminal(t, repo, job)
	assert.Equal(t, types.JobStatusFailed, final.Status)
	assert.Equal(t, ErrCodeInternal, final.ErrorCode)
	assert.Contains(t, final.ErrorMessage, "handler panic")

	// The worker survives and processes the next job.
	next, err := svc.Create(context.Background(), types.JobTypeScoreCV, nil, 0)
	require.NoError(t, err)
	waitTerminal(t, repo, next)
}

func TestDispatcher_CanceledBeforePickupIsSkipped(t *testing.T) {
	repo := newFakeRepo()
	q := queue.NewMemory()
	svc := NewService(repo, q)

	handler := &stubHandler{fn: func(context.Context, *types.Job) (json.RawMessage, error) {
		return json.RawMessage(`{}`), nil
	}}
	d := NewDispatcher(repo, q, newRegistryWith(t, handler), 1)

	// Create and cancel before any worker runs.
	job, err := svc.Create(context.Background(), types.JobTypeScoreCV, nil, 0)
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), job.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	// Give the worker time to drain the stale envelope.
	time.Sleep(100 * time.Millisecond)

	final, err := repo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusCanceled, final.Status)
	assert.Nil(t, final.StartedAt)
	assert.Equal(t, int32(0), handler.calls.Load())
}

func TestDispatcher_RedeliveryOfTerminalJobIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	q := queue.NewMemory()
	svc := NewService(repo, q)

	handler := &stubHandler{fn: func(context.Context, *types.Job) (json.RawMessage, error) {
		return json.RawMessage(`{"n":1}`), nil
	}}
	d := NewDispatcher(repo, q, newRegistryWith(t, handler), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	job, err := svc.Create(context.Background(), types.JobTypeScoreCV, nil, 0)
	require.NoError(t, err)
	first := waitTerminal(t, repo, job)

	// Redeliver the same envelope, as an at-least-once queue may.
	err = q.Enqueue(context.Background(), queue.Envelope{
		JobID: job.ID, JobType: job.Type, Priority: job.Priority, VisibleAt: time.Now(),
	})
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	final, err := repo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Status, final.Status)
	assert.Equal(t, first.Version, final.Version)
	assert.Equal(t, int32(1), handler.calls.Load())
}

func TestDispatcher_CancellationDuringExecutionWins(t *testing.T) {
	repo := newFakeRepo()
	q := queue.NewMemory()
	svc := NewService(repo, q)

	started := make(chan struct{})
	release := make(chan struct{})
	handler := &stubHandler{fn: func(_ context.Context, _ *types.Job) (json.RawMessage, error) {
		close(started)
		<-release
		return json.RawMessage(`{}`), nil
	}}
	d := NewDispatcher(repo, q, newRegistryWith(t, handler), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	job, err := svc.Create(context.Background(), types.JobTypeScoreCV, nil, 0)
	require.NoError(t, err)

	<-started
	canceled, err := svc.Cancel(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusCanceled, canceled.Status)
	close(release)

	// The dispatcher's conditional write must defer to the cancellation.
	time.Sleep(100 * time.Millisecond)
	final, err := repo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusCanceled, final.Status)
	assert.Nil(t, final.Output)
}

func TestDispatcher_ShutdownCancellationMarksJobCanceled(t *testing.T) {
	repo := newFakeRepo()
	q := queue.NewMemory()
	svc := NewService(repo, q)

	started := make(chan struct{})
	handler := &stubHandler{fn: func(ctx context.Context, _ *types.Job) (json.RawMessage, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	d := NewDispatcher(repo, q, newRegistryWith(t, handler), 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()

	job, err := svc.Create(context.Background(), types.JobTypeScoreCV, nil, 0)
	require.NoError(t, err)

	<-started
	cancel()
	<-done

	final := waitTerminal(t, repo, job)
	assert.Equal(t, types.JobStatusCanceled, final.Status)
	assert.Empty(t, final.ErrorCode)
}
