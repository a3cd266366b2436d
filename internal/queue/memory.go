package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Memory is an in-process Queue backed by a priority heap. Delivery is an
// atomic pop under the lock, so no two consumers receive the same envelope.
// Durability across restarts comes from the job service's reconciliation
// sweep, which re-enqueues jobs still marked queued.
type Memory struct {
	mu   sync.Mutex
	h    entryHeap
	seq  uint64
	wake chan struct{}
}

// NewMemory returns an empty in-memory queue.
func NewMemory() *Memory {
	return &Memory{wake: make(chan struct{}, 1)}
}

type entry struct {
	env Envelope
	seq uint64
}

// entryHeap orders by priority desc, then VisibleAt asc, then enqueue order.
type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].env.Priority != h[j].env.Priority {
		return h[i].env.Priority > h[j].env.Priority
	}
	if !h[i].env.VisibleAt.Equal(h[j].env.VisibleAt) {
		return h[i].env.VisibleAt.Before(h[j].env.VisibleAt)
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Enqueue adds an envelope. It fails only when ctx is already done.
func (m *Memory) Enqueue(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.seq++
	heap.Push(&m.h, entry{env: env, seq: m.seq})
	m.mu.Unlock()

	// Non-blocking signal; one pending wakeup is enough.
	select {
	case m.wake <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue removes and returns the next eligible envelope, blocking until one
// becomes visible or ctx is done.
func (m *Memory) Dequeue(ctx context.Context) (Envelope, error) {
	for {
		env, wait, ok := m.tryPop(time.Now())
		if ok {
			return env, nil
		}

		var timer *time.Timer
		var fire <-chan time.Time
		if wait > 0 {
			timer = time.NewTimer(wait)
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return Envelope{}, ctx.Err()
		case <-m.wake:
		case <-fire:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// tryPop pops the best visible entry. When nothing is visible it returns the
// wait until the earliest future VisibleAt, or 0 when the queue is empty.
func (m *Memory) tryPop(now time.Time) (Envelope, time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.h) == 0 {
		return Envelope{}, 0, false
	}

	// The heap root may be invisible while a lower-priority entry is already
	// eligible, so scan for the best visible entry instead of peeking.
	best := -1
	for i := range m.h {
		if m.h[i].env.VisibleAt.After(now) {
			continue
		}
		if best == -1 || m.h.Less(i, best) {
			best = i
		}
	}

	if best >= 0 {
		e := m.h[best]
		heap.Remove(&m.h, best)
		return e.env, 0, true
	}

	earliest := m.h[0].env.VisibleAt
	for i := range m.h {
		if m.h[i].env.VisibleAt.Before(earliest) {
			earliest = m.h[i].env.VisibleAt
		}
	}
	wait := earliest.Sub(now)
	if wait <= 0 {
		wait = time.Millisecond
	}
	return Envelope{}, wait, false
}

// Len returns the number of entries currently held, visible or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.h)
}
