package annotate

import (
	"sync"
	"time"
	"unique"
)

// Batch is a single coalesced notification: either an enumerated key set or
// a full refresh, never both.
type Batch struct {
	// Keys are the distinct keys accumulated since the last flush.
	Keys []string
	// FullRefresh signals that individual tracking was abandoned and
	// everything should be considered changed.
	FullRefresh bool
}

// Batcher coalesces rapid per-key events into batched emissions. Keys are
// accumulated into a deduplicated pending set; a debounce timer fires one
// emission per window. When the pending set outgrows its cap, individual
// tracking is dropped in favor of a single full-refresh emission, keeping
// memory bounded under pathological churn such as bulk renames.
type Batcher struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]struct{}
	full     bool
	timer    *time.Timer
	deadline time.Time
	cap      int
	emit     func(Batch)
}

// NewBatcher creates a batcher with the given pending-keys cap and emission
// callback. The cap clamps to at least 1.
func NewBatcher(pendingCap int, emit func(Batch)) *Batcher {
	if pendingCap < 1 {
		pendingCap = 1
	}
	return &Batcher{
		pending: make(map[unique.Handle[string]]struct{}),
		cap:     pendingCap,
		emit:    emit,
	}
}

// Add records key as pending and schedules a flush after delay. A running
// timer is restarted only when the newly requested deadline is earlier than
// the scheduled one, so the effective delay is the minimum requested since
// the timer last fired.
func (b *Batcher) Add(key string, delay time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.full {
		b.pending[unique.Make(key)] = struct{}{}
		if len(b.pending) > b.cap {
			b.pending = make(map[unique.Handle[string]]struct{})
			b.full = true
		}
	}
	b.schedule(delay)
}

// RequestFullRefresh abandons any pending key set and makes the next flush
// announce that everything changed.
func (b *Batcher) RequestFullRefresh(delay time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = make(map[unique.Handle[string]]struct{})
	b.full = true
	b.schedule(delay)
}

// schedule arms or tightens the debounce timer. Callers hold b.mu.
func (b *Batcher) schedule(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	target := time.Now().Add(delay)

	if b.timer == nil {
		b.timer = time.AfterFunc(delay, b.fire)
		b.deadline = target
		return
	}
	if target.Before(b.deadline) {
		b.timer.Stop()
		b.timer = time.AfterFunc(delay, b.fire)
		b.deadline = target
	}
}

// fire emits exactly one batch for everything accumulated in this window.
func (b *Batcher) fire() {
	b.mu.Lock()
	batch, ok := b.drain()
	b.mu.Unlock()

	if ok && b.emit != nil {
		b.emit(batch)
	}
}

// Flush synchronously emits any pending batch, cancelling the timer. Used
// on teardown so no accumulated keys are lost. When the timer has expired
// but its callback has not drained yet, whichever of the two reaches the
// state first takes the batch; drain resets the state, so the other side
// finds nothing and the batch is emitted exactly once.
func (b *Batcher) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	batch, ok := b.drain()
	b.mu.Unlock()

	if ok && b.emit != nil {
		b.emit(batch)
	}
}

// Stop cancels the timer and discards pending state.
func (b *Batcher) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.pending = make(map[unique.Handle[string]]struct{})
	b.full = false
}

// drain builds the batch for the current window and resets state. Callers
// hold b.mu. The second return is false when there is nothing to announce.
func (b *Batcher) drain() (Batch, bool) {
	b.timer = nil

	if b.full {
		b.full = false
		return Batch{FullRefresh: true}, true
	}
	if len(b.pending) == 0 {
		return Batch{}, false
	}

	keys := make([]string, 0, len(b.pending))
	for handle := range b.pending {
		keys = append(keys, handle.Value())
	}
	b.pending = make(map[unique.Handle[string]]struct{})
	return Batch{Keys: keys}, true
}
