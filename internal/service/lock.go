package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// eventLocks serializes capacity accounting per event. Register and
// cancel must not interleave their read-count/decide/persist sequence
// with another mutator of the same event; operations on different
// events proceed in parallel.
type eventLocks struct {
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

func newEventLocks(timeout time.Duration) *eventLocks {
	return &eventLocks{
		timeout: timeout,
		locks:   map[string]*semaphore.Weighted{},
	}
}

// acquire takes the exclusive scope for one event, waiting at most the
// configured timeout. On timeout or caller cancellation it returns
// ErrBusy. The returned release func must be called exactly once.
func (l *eventLocks) acquire(ctx context.Context, eventID string) (release func(), err error) {
	l.mu.Lock()
	sem, ok := l.locks[eventID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.locks[eventID] = sem
	}
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, ErrBusy
	}
	return func() { sem.Release(1) }, nil
}
