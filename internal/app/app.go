// Package app implements the application layer for tally.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/tally/internal/adapters/config"
	"go.trai.ch/tally/internal/core/domain"
	"go.trai.ch/tally/internal/core/ports"
	"go.trai.ch/tally/internal/engine/annotate"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App wires the annotation engine to its adapters and drives the one-shot
// and watch workflows.
type App struct {
	loader   ports.ConfigLoader
	source   ports.Source
	enum     ports.Enumerator
	watcher  ports.Watcher
	renderer ports.BadgeRenderer
	logger   ports.Logger

	out        io.Writer
	configPath string
}

// Components bundles everything the CLI entry point needs.
type Components struct {
	App          *App
	Logger       ports.Logger
	ConfigLoader ports.ConfigLoader
	Source       ports.Source
	Enumerator   ports.Enumerator
	Watcher      ports.Watcher
	Renderer     ports.BadgeRenderer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	source ports.Source,
	enum ports.Enumerator,
	w ports.Watcher,
	renderer ports.BadgeRenderer,
	log ports.Logger,
) *App {
	return &App{
		loader:   loader,
		source:   source,
		enum:     enum,
		watcher:  w,
		renderer: renderer,
		logger:   log,
		out:      os.Stdout,
	}
}

// WithOutput redirects badge output, primarily for testing.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// SetConfigPath pins the configuration file instead of discovering it
// upward from the working directory.
func (a *App) SetConfigPath(path string) {
	a.configPath = path
}

// session is one configured engine instance with its scan root. A settings
// revision change replaces the engine and scanner wholesale, so every knob
// baked into them takes effect immediately.
type session struct {
	cfg         domain.Config
	root        string
	eligible    func(string) bool
	engine      *annotate.Engine
	scanner     *annotate.Scanner
	unsubscribe func()
}

// setup loads the configuration and assembles an engine around it.
func (a *App) setup() (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine working directory")
	}

	var cfg domain.Config
	root := cwd
	if a.configPath != "" {
		cfg, err = a.loader.LoadPath(a.configPath)
		if err == nil {
			root = filepath.Dir(a.configPath)
		}
	} else {
		cfg, root, err = a.loader.Load(cwd)
	}
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	eligible := config.Eligibility(cfg)
	engine := annotate.New(cfg, a.source, a.renderer, a.logger)
	scanner := annotate.NewScanner(engine, a.enum, eligible, a.logger)

	return &session{
		cfg:      cfg,
		root:     root,
		eligible: eligible,
		engine:   engine,
		scanner:  scanner,
	}, nil
}

// Annotate resolves and prints badges for the given paths, or for every
// eligible file under the working directory when no paths are given.
func (a *App) Annotate(ctx context.Context, paths []string) error {
	s, err := a.setup()
	if err != nil {
		return err
	}
	defer s.engine.Close()

	keys, err := a.collectKeys(ctx, s, paths)
	if err != nil {
		return err
	}

	type result struct {
		key   string
		badge *domain.Badge
	}
	results := make([]result, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, key := range keys {
		g.Go(func() error {
			badge, err := s.engine.Resolve(gctx, key)
			if err != nil {
				return err
			}
			results[i] = result{key: key, badge: badge}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		if r.badge == nil {
			continue
		}
		rel := r.key
		if shorter, err := filepath.Rel(s.root, r.key); err == nil {
			rel = shorter
		}
		fmt.Fprintf(a.out, "%-12s %s\n", r.badge.Text, rel)
	}
	return nil
}

// collectKeys turns the argument list into resolved keys, enumerating the
// root when no explicit paths were given.
func (a *App) collectKeys(ctx context.Context, s *session, paths []string) ([]string, error) {
	if len(paths) == 0 {
		var keys []string
		for key := range a.enum.Enumerate(ctx, s.root, s.eligible) {
			keys = append(keys, key)
		}
		return keys, nil
	}

	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to resolve path "+p)
		}
		keys = append(keys, filepath.Clean(abs))
	}
	return keys, nil
}

// Watch runs the continuous mode: warm-up scan, file watching, and badge
// change notifications until ctx is cancelled.
func (a *App) Watch(ctx context.Context) error {
	s, err := a.setup()
	if err != nil {
		return err
	}
	// The session's engine and scanner can be replaced by a settings
	// change, so the teardowns re-read the fields.
	defer func() { s.engine.Close() }()
	defer func() { s.scanner.Cancel() }()

	if err := a.watcher.Start(ctx, s.root); err != nil {
		return zerr.Wrap(err, "failed to start file watcher")
	}
	defer func() { _ = a.watcher.Stop() }()

	s.scanner.Start(ctx, []string{s.root}, false)
	a.logger.Info(fmt.Sprintf("watching %s", s.root))

	a.subscribe(s)
	defer func() { s.unsubscribe() }()

	for event := range a.watcher.Events() {
		a.handleWatchEvent(ctx, s, event)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	// The event stream ended without a cancellation.
	return domain.ErrWatcherClosed
}

// subscribe attaches the batch reporter to the session's current engine.
func (a *App) subscribe(s *session) {
	events, cancel := s.engine.Subscribe()
	s.unsubscribe = cancel
	go a.reportBatches(events)
}

// handleWatchEvent routes one filesystem event into the engine.
func (a *App) handleWatchEvent(ctx context.Context, s *session, event ports.WatchEvent) {
	path := filepath.Clean(event.Path)

	// A config file change may invalidate every cached value.
	if filepath.Base(path) == domain.ConfigFileName {
		a.handleConfigChange(ctx, s, path)
		return
	}

	if !s.eligible(path) {
		return
	}
	s.engine.HandleChanges(path)
}

// handleConfigChange reloads the settings file. When the revision moved,
// the old engine and scanner are torn down, a fresh pair is built from the
// new settings, and a forced rescan repopulates the caches.
func (a *App) handleConfigChange(ctx context.Context, s *session, path string) {
	fresh, err := a.loader.LoadPath(path)
	if err != nil {
		a.logger.Warn("settings file changed but could not be reloaded")
		return
	}
	if fresh.Revision == s.cfg.Revision {
		return
	}
	a.logger.Info("settings changed, rebuilding annotations")

	s.unsubscribe()
	s.scanner.Cancel()
	s.engine.Close()

	s.cfg = fresh
	s.eligible = config.Eligibility(fresh)
	s.engine = annotate.New(fresh, a.source, a.renderer, a.logger)
	s.scanner = annotate.NewScanner(s.engine, a.enum, s.eligible, a.logger)

	a.subscribe(s)
	s.scanner.Start(ctx, []string{s.root}, true)
}

// reportBatches logs notification batches as they arrive.
func (a *App) reportBatches(events <-chan annotate.Batch) {
	for batch := range events {
		if batch.FullRefresh {
			a.logger.Info("annotations refreshed")
			continue
		}
		a.logger.Debug(fmt.Sprintf("%d annotations updated", len(batch.Keys)))
	}
}
