package annotate

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.trai.ch/tally/internal/core/domain"
	"go.trai.ch/zerr"
)

// Limiter bounds the number of concurrently running units of work and holds
// overflow in a FIFO queue of bounded depth. A unit submitted while both
// the running set and the queue are full fails fast with
// domain.ErrQueueFull.
type Limiter[T any] struct {
	mu        sync.Mutex
	running   int
	maxActive int
	maxQueued int
	waiters   []chan struct{}
}

// NewLimiter creates a limiter. Both bounds clamp to at least 1.
func NewLimiter[T any](maxConcurrent, maxQueued int) *Limiter[T] {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if maxQueued < 1 {
		maxQueued = 1
	}
	return &Limiter[T]{
		maxActive: maxConcurrent,
		maxQueued: maxQueued,
	}
}

// Run executes unit under the concurrency bound, blocking while the unit is
// queued or running. Queued units start in strict FIFO order as running
// units finish. A panicking unit is recovered into an ordinary error and
// still releases its slot, so a limiter with maxConcurrent=1 cannot
// deadlock on a faulty unit. Context cancellation abandons a queued wait
// and frees the queue slot; it does not interrupt a unit already running.
func (l *Limiter[T]) Run(ctx context.Context, unit func() (T, error)) (T, error) {
	var zero T

	l.mu.Lock()
	if l.running < l.maxActive {
		l.running++
		l.mu.Unlock()
	} else {
		if len(l.waiters) >= l.maxQueued {
			l.mu.Unlock()
			return zero, zerr.With(zerr.Wrap(domain.ErrQueueFull, "overflow queue at capacity"), "queued", l.maxQueued)
		}
		ready := make(chan struct{})
		l.waiters = append(l.waiters, ready)
		l.mu.Unlock()

		select {
		case <-ready:
			// The finishing unit handed its slot to us; running was left
			// untouched by the handoff.
		case <-ctx.Done():
			if !l.abandon(ready) {
				// Lost the race: the slot was already handed to us, so we
				// hold it and must pass it on.
				l.release()
			}
			return zero, ctx.Err()
		}
	}

	out, err := runUnit(unit)
	l.release()
	return out, err
}

// Running reports the number of units currently executing.
func (l *Limiter[T]) Running() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Queued reports the number of units waiting in the FIFO queue.
func (l *Limiter[T]) Queued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.waiters)
}

// abandon removes ready from the wait queue. It returns false when the
// channel was already signalled, meaning the caller owns a slot.
func (l *Limiter[T]) abandon(ready chan struct{}) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, w := range l.waiters {
		if w == ready {
			l.waiters = slices.Delete(l.waiters, i, i+1)
			return true
		}
	}
	return false
}

// release hands the freed slot to the oldest waiter, or decrements the
// running count when nobody waits.
func (l *Limiter[T]) release() {
	l.mu.Lock()
	if len(l.waiters) > 0 {
		next := l.waiters[0]
		l.waiters = l.waiters[1:]
		l.mu.Unlock()
		close(next)
		return
	}
	l.running--
	l.mu.Unlock()
}

// runUnit executes unit, converting a panic into an ordinary error so the
// limiter's bookkeeping always advances.
func runUnit[T any](unit func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = zerr.New(fmt.Sprintf("unit of work panicked: %v", r))
		}
	}()
	return unit()
}
