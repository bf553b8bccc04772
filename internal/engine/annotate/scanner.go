package annotate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.trai.ch/tally/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Scanner performs the warm-up pass: it enumerates annotatable keys under a
// set of roots and resolves them in paced batches so the caches are
// populated before the host starts querying. Each run is tagged with an
// epoch; bumping the epoch makes an in-flight run stop at its next batch
// boundary, so a superseded scan can never clobber a newer one's work.
type Scanner struct {
	engine   *Engine
	enum     ports.Enumerator
	eligible func(string) bool
	logger   ports.Logger

	mu      sync.Mutex
	epoch   int64
	running bool
}

// NewScanner wires a scanner to its engine and key enumerator.
func NewScanner(engine *Engine, enum ports.Enumerator, eligible func(string) bool, logger ports.Logger) *Scanner {
	return &Scanner{
		engine:   engine,
		enum:     enum,
		eligible: eligible,
		logger:   logger,
	}
}

// Start launches a scan over roots. A non-forced start while a scan is
// already running is a no-op; a forced start supersedes the running scan.
// The scan itself runs in the background and honors ctx.
func (s *Scanner) Start(ctx context.Context, roots []string, force bool) {
	s.mu.Lock()
	if s.running && !force {
		s.mu.Unlock()
		return
	}
	s.epoch++
	epoch := s.epoch
	s.running = true
	s.mu.Unlock()

	s.engine.initializing.Store(true)
	go s.run(ctx, epoch, roots)
}

// Cancel supersedes any running scan. The in-flight goroutine notices at
// its next batch boundary and exits without the completion refresh.
func (s *Scanner) Cancel() {
	s.mu.Lock()
	s.epoch++
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	if wasRunning {
		s.engine.initializing.Store(false)
	}
}

func (s *Scanner) run(ctx context.Context, epoch int64, roots []string) {
	delay := time.NewTimer(s.engine.cfg.InitialScanDelay)
	defer delay.Stop()
	select {
	case <-delay.C:
	case <-ctx.Done():
		s.finish(epoch, false)
		return
	}

	total := 0
	for _, root := range roots {
		if s.superseded(epoch) || ctx.Err() != nil {
			s.finish(epoch, false)
			return
		}
		n, ok := s.scanRoot(ctx, epoch, root)
		total += n
		if !ok {
			s.finish(epoch, false)
			return
		}
	}

	s.logger.Debug(fmt.Sprintf("warm-up scan resolved %d keys", total))
	s.finish(epoch, true)
}

// scanRoot walks one root batch by batch. It returns false when the scan
// was superseded or cancelled mid-root.
func (s *Scanner) scanRoot(ctx context.Context, epoch int64, root string) (int, bool) {
	batch := make([]string, 0, s.engine.cfg.ScanBatchSize)
	total := 0

	flush := func() bool {
		if s.superseded(epoch) || ctx.Err() != nil {
			return false
		}
		s.resolveBatch(ctx, batch)
		total += len(batch)
		batch = batch[:0]

		pause := time.NewTimer(s.engine.cfg.BatchPause)
		defer pause.Stop()
		select {
		case <-pause.C:
		case <-ctx.Done():
			return false
		}
		return true
	}

	for key := range s.enum.Enumerate(ctx, root, s.eligible) {
		batch = append(batch, key)
		if len(batch) >= s.engine.cfg.ScanBatchSize {
			if !flush() {
				return total, false
			}
		}
	}
	if len(batch) > 0 {
		if s.superseded(epoch) || ctx.Err() != nil {
			return total, false
		}
		s.resolveBatch(ctx, batch)
		total += len(batch)
	}
	return total, true
}

// resolveBatch resolves one batch with bounded parallelism. Resolve
// recovers its own failures, so a bad key never aborts the scan.
func (s *Scanner) resolveBatch(ctx context.Context, keys []string) {
	g := new(errgroup.Group)
	g.SetLimit(s.engine.cfg.Concurrency)
	for _, key := range keys {
		g.Go(func() error {
			_, _ = s.engine.Resolve(ctx, key)
			return nil
		})
	}
	_ = g.Wait()
}

// superseded reports whether a newer scan has taken over this epoch.
func (s *Scanner) superseded(epoch int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch != epoch
}

// finish clears the running state for epoch. A completed (un-superseded)
// scan announces one full refresh so hosts re-query everything warm.
func (s *Scanner) finish(epoch int64, completed bool) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.engine.initializing.Store(false)
	if completed {
		s.engine.notifier.RequestFullRefresh(s.engine.cfg.NotifyDebounce)
	}
}
