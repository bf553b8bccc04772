package domain

import "go.trai.ch/zerr"

var (
	// ErrNotCountable indicates the key no longer denotes a regular,
	// countable file.
	ErrNotCountable = zerr.New("not a countable file")

	// ErrReadTimeout indicates a content stream did not finish within the
	// configured read timeout and was forcibly closed.
	ErrReadTimeout = zerr.New("read timed out")

	// ErrQueueFull indicates the concurrency limiter had no running or
	// queued slot available.
	ErrQueueFull = zerr.New("computation queue is full")

	// ErrConfigReadFailed indicates the configuration file could not be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed indicates the configuration file could not be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound indicates no configuration file exists at an
	// explicitly requested path.
	ErrConfigNotFound = zerr.New("config file not found")

	// ErrWatcherClosed indicates the file system watcher was stopped while
	// events were still expected.
	ErrWatcherClosed = zerr.New("watcher closed")
)
