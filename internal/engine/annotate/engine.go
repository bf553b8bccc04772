// Package annotate implements the line-count annotation engine: bounded
// caches, in-flight deduplication, staleness detection, bounded
// recomputation, and debounced change notification.
package annotate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.trai.ch/tally/internal/core/cache"
	"go.trai.ch/tally/internal/core/domain"
	"go.trai.ch/tally/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind receives a full refresh instead of the batches it
// missed.
const subscriberBuffer = 64

type subscriber struct {
	ch     chan Batch
	missed bool
}

// Engine resolves, caches, and invalidates line-count annotations for keys
// (file paths). All cache and registry state is confined behind one mutex;
// computations run outside it and their results are re-validated against
// the key's fingerprint before being applied.
type Engine struct {
	cfg      domain.Config
	source   ports.Source
	renderer ports.BadgeRenderer
	logger   ports.Logger

	mu       sync.Mutex
	meta     *cache.Cache[string, domain.Fingerprint]
	values   *cache.Cache[string, domain.Annotation]
	badges   *cache.Cache[string, domain.Badge]
	inflight map[string]int

	group   singleflight.Group
	limiter *Limiter[int]

	notifier *Batcher
	funnel   *Batcher

	subMu   sync.Mutex
	subs    map[int]*subscriber
	nextSub int

	initializing atomic.Bool
}

// New creates an engine from an already-normalized configuration.
func New(cfg domain.Config, source ports.Source, renderer ports.BadgeRenderer, logger ports.Logger) *Engine {
	e := &Engine{
		cfg:      cfg,
		source:   source,
		renderer: renderer,
		logger:   logger,
		meta:     cache.New[string, domain.Fingerprint](cfg.CacheCapacity),
		values:   cache.New[string, domain.Annotation](cfg.CacheCapacity),
		badges:   cache.New[string, domain.Badge](cfg.CacheCapacity),
		inflight: make(map[string]int),
		limiter:  NewLimiter[int](cfg.Concurrency, cfg.LimiterQueueCap),
		subs:     make(map[int]*subscriber),
	}
	e.notifier = NewBatcher(cfg.PendingKeysCap, e.publish)
	e.funnel = NewBatcher(cfg.PendingKeysCap, e.onChanges)
	return e
}

// Resolve returns the rendered annotation for key, or nil when no
// annotation is available. Every failure class (vanished file, read
// timeout, full queue, stale result) is recovered here: caches are purged
// where the protocol requires it and the caller simply sees no annotation,
// self-healing on the next query. The returned error is non-nil only for
// caller-side context cancellation.
func (e *Engine) Resolve(ctx context.Context, key string) (*domain.Badge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fp, err := e.source.Observe(key)
	if err != nil {
		if e.purge(key) {
			e.notifier.Add(key, e.cfg.NotifyDebounce)
		}
		if !errors.Is(err, domain.ErrNotCountable) {
			e.logger.Error(zerr.Wrap(err, "failed to observe file"))
		}
		return nil, nil
	}

	e.mu.Lock()

	// Fast path: fingerprint unchanged and a value is cached. The badge is
	// rebuilt lazily if it was evicted.
	if prev, ok := e.meta.Get(key); ok && prev.Equal(fp) {
		if val, ok := e.values.Get(key); ok {
			badge := e.badgeLocked(key, val)
			e.mu.Unlock()
			return &badge, nil
		}
	}

	// Commit the observed fingerprint before computing. Every later
	// staleness check compares against this baseline; whoever overwrites
	// it owns the cache entry from then on.
	e.meta.Set(key, fp)

	// Degenerate sizes never reach the limiter.
	if fp.Size == 0 {
		badge := e.storeLocked(key, domain.Annotation{})
		e.mu.Unlock()
		e.notifier.Add(key, e.cfg.NotifyDebounce)
		return &badge, nil
	}
	if fp.Size > e.cfg.SizeThreshold {
		est := domain.Annotation{
			Lines:     int(fp.Size / e.cfg.EstimateDivisor),
			Estimated: true,
		}
		badge := e.storeLocked(key, est)
		e.mu.Unlock()
		e.notifier.Add(key, e.cfg.NotifyDebounce)
		return &badge, nil
	}

	e.inflight[key]++
	e.mu.Unlock()

	// At most one concurrent count per key: callers arriving while a
	// computation is in flight share its outcome. The shared unit must
	// outlive any single caller, so it is detached from ctx; abandoned
	// results are discarded by the staleness check, not cancelled.
	detached := context.WithoutCancel(ctx)
	lines, err := e.countShared(detached, key)

	e.mu.Lock()
	e.inflight[key]--
	if e.inflight[key] <= 0 {
		delete(e.inflight, key)
	}

	if err != nil {
		e.purgeLocked(key)
		e.mu.Unlock()
		e.logger.Error(zerr.Wrap(err, "line count failed"))
		return nil, nil
	}

	// Re-validate: if the fingerprint moved while we were computing, a
	// newer resolve or an invalidation owns the entry and this result
	// must not be written.
	cur, ok := e.meta.Peek(key)
	if !ok || !cur.Equal(fp) {
		e.mu.Unlock()
		return nil, nil
	}

	badge := e.storeLocked(key, domain.Annotation{Lines: lines})
	e.mu.Unlock()
	e.notifier.Add(key, e.cfg.NotifyDebounce)
	return &badge, nil
}

// UpdateFromMemory writes an authoritative in-memory line count for key,
// bypassing fingerprint checks. The on-disk fingerprint is reconciled later
// by a normal Resolve, so the metadata cache is left untouched. Observers
// are informed through the usual batched notification.
func (e *Engine) UpdateFromMemory(key string, lines int) {
	e.mu.Lock()
	e.storeLocked(key, domain.Annotation{Lines: lines})
	e.mu.Unlock()
	e.notifier.Add(key, e.cfg.NotifyDebounce)
}

// Invalidate purges all cached state for the given keys, forgets any
// in-flight computation handles, and enqueues the keys for notification.
func (e *Engine) Invalidate(keys ...string) {
	for _, key := range keys {
		if e.purge(key) {
			e.notifier.Add(key, e.cfg.NotifyDebounce)
		}
	}
}

// InvalidateAll empties every cache, forgets all in-flight handles, and
// requests a full-refresh notification.
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	e.meta.Clear()
	e.values.Clear()
	e.badges.Clear()
	for key := range e.inflight {
		e.group.Forget(key)
	}
	e.mu.Unlock()
	e.notifier.RequestFullRefresh(e.cfg.NotifyDebounce)
}

// HandleChanges feeds externally observed changes (filesystem events) into
// the change funnel, where they are debounced and coalesced before
// invalidation and re-resolution.
func (e *Engine) HandleChanges(keys ...string) {
	for _, key := range keys {
		e.funnel.Add(key, e.cfg.ChangeDebounce)
	}
}

// HandleTreeChange signals a change too broad to enumerate (a bulk rename,
// a settings revision change). The funnel collapses it into one full
// invalidation.
func (e *Engine) HandleTreeChange() {
	e.funnel.RequestFullRefresh(e.cfg.ChangeDebounce)
}

// Subscribe registers a notification sink. The returned channel receives
// one Batch per flush; the cancel function unregisters and closes it. A
// subscriber that stops draining misses batches but is guaranteed a full
// refresh once it catches up.
func (e *Engine) Subscribe() (<-chan Batch, func()) {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	sub := &subscriber{ch: make(chan Batch, subscriberBuffer)}
	e.subs[id] = sub
	e.subMu.Unlock()

	cancel := func() {
		e.subMu.Lock()
		if s, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(s.ch)
		}
		e.subMu.Unlock()
	}
	return sub.ch, cancel
}

// Initializing reports whether the warm-up scan is still running.
func (e *Engine) Initializing() bool {
	return e.initializing.Load()
}

// Close flushes both debounce queues and stops their timers.
func (e *Engine) Close() {
	e.funnel.Flush()
	e.notifier.Flush()
	e.funnel.Stop()
	e.notifier.Stop()
}

// countShared performs the deduplicated, limiter-gated line count for key.
func (e *Engine) countShared(ctx context.Context, key string) (int, error) {
	v, err, _ := e.group.Do(key, func() (any, error) {
		return e.limiter.Run(ctx, func() (int, error) {
			return e.count(key)
		})
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// count opens the content stream and counts lines under the read deadline.
func (e *Engine) count(key string) (int, error) {
	rc, err := e.source.Open(key)
	if err != nil {
		return 0, err
	}
	return countWithDeadline(rc, e.cfg.ReadTimeout)
}

// storeLocked writes the value and its rendered badge. Callers hold e.mu.
func (e *Engine) storeLocked(key string, val domain.Annotation) domain.Badge {
	e.values.Set(key, val)
	badge := e.renderer.Render(val)
	e.badges.Set(key, badge)
	return badge
}

// badgeLocked returns the memoized badge for val, rebuilding it when
// evicted. Callers hold e.mu.
func (e *Engine) badgeLocked(key string, val domain.Annotation) domain.Badge {
	if badge, ok := e.badges.Get(key); ok {
		return badge
	}
	badge := e.renderer.Render(val)
	e.badges.Set(key, badge)
	return badge
}

// purge removes all cached state for key. It reports whether anything was
// actually removed, so callers only notify on a real state change and a
// repeated purge of an absent key cannot feed a notification loop.
func (e *Engine) purge(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.purgeLocked(key)
}

func (e *Engine) purgeLocked(key string) bool {
	removed := e.meta.Delete(key)
	removed = e.values.Delete(key) || removed
	removed = e.badges.Delete(key) || removed
	e.group.Forget(key)
	return removed
}

// onChanges is the funnel's flush handler: invalidate the affected keys,
// then re-resolve them in the background so warm results are ready before
// the host asks again.
func (e *Engine) onChanges(b Batch) {
	if b.FullRefresh {
		e.InvalidateAll()
		return
	}
	e.Invalidate(b.Keys...)
	go e.refresh(b.Keys)
}

// refresh re-resolves keys with bounded parallelism. Failures are already
// recovered inside Resolve.
func (e *Engine) refresh(keys []string) {
	g := new(errgroup.Group)
	g.SetLimit(e.cfg.Concurrency)
	for _, key := range keys {
		g.Go(func() error {
			_, _ = e.Resolve(context.Background(), key)
			return nil
		})
	}
	_ = g.Wait()
}

// publish fans a batch out to every subscriber without blocking the
// debounce machinery. A subscriber whose buffer is full is marked and
// compensated with a full refresh on a later publish.
func (e *Engine) publish(b Batch) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	for _, sub := range e.subs {
		if sub.missed {
			select {
			case sub.ch <- Batch{FullRefresh: true}:
				sub.missed = false
			default:
				continue
			}
		}
		select {
		case sub.ch <- b:
		default:
			sub.missed = true
		}
	}
}
