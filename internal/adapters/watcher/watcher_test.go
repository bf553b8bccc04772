package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tally/internal/adapters/logger"
	"go.trai.ch/tally/internal/adapters/watcher"
	"go.trai.ch/tally/internal/core/ports"
)

func newTestWatcher(t *testing.T) *watcher.Watcher {
	t.Helper()
	w, err := watcher.NewWatcher(logger.NewWithOutput(os.Stderr))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

// collectUntil drains events until match returns true or the deadline
// passes. Real fsnotify delivery has no fake-time equivalent.
func collectUntil(t *testing.T, w *watcher.Watcher, match func(ports.WatchEvent) bool) bool {
	t.Helper()

	found := make(chan bool, 1)
	go func() {
		for event := range w.Events() {
			if match(event) {
				found <- true
				return
			}
		}
		found <- false
	}()

	select {
	case ok := <-found:
		return ok
	case <-time.After(5 * time.Second):
		return false
	}
}

func TestWatcher_ReportsFileWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package a\n"), 0o600))

	w := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, dir))

	require.NoError(t, os.WriteFile(path, []byte("package a\n\nvar X = 1\n"), 0o600))

	ok := collectUntil(t, w, func(e ports.WatchEvent) bool {
		return e.Path == path && (e.Operation == ports.OpWrite || e.Operation == ports.OpCreate)
	})
	assert.True(t, ok, "expected a write event for %s", path)
}

func TestWatcher_ReportsCreateInNewDirectory(t *testing.T) {
	dir := t.TempDir()

	w := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, dir))

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o750))

	ok := collectUntil(t, w, func(e ports.WatchEvent) bool {
		return e.Path == sub && e.Operation == ports.OpCreate
	})
	assert.True(t, ok, "expected a create event for %s", sub)
}

func TestWatcher_StopEndsEventSequence(t *testing.T) {
	dir := t.TempDir()

	w := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, dir))

	require.NoError(t, w.Stop())

	done := make(chan struct{})
	go func() {
		for range w.Events() {
			continue
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("event sequence did not end after Stop")
	}
}
