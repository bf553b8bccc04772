package domain

import "time"

// ConfigFileName is the configuration file discovered upward from the
// working directory.
const ConfigFileName = "tally.yaml"

// Default values for every tunable. Each knob is a positive integer in the
// config file; absent or invalid values fall back to these.
const (
	// DefaultSizeThreshold is the file size in bytes above which the line
	// count is estimated from size alone instead of read from content.
	DefaultSizeThreshold = 1 << 20
	// DefaultEstimateDivisor is the assumed average bytes per line used by
	// the estimation shortcut.
	DefaultEstimateDivisor = 40
	// DefaultScanBatchSize is the number of keys resolved per scanner batch.
	DefaultScanBatchSize = 200
	// DefaultNotifyDebounce is the debounce window for result-sourced
	// notifications.
	DefaultNotifyDebounce = 250 * time.Millisecond
	// DefaultChangeDebounce is the debounce window for change-sourced
	// invalidations. Change bursts (saves, renames) are noisier than
	// results, so this window is wider.
	DefaultChangeDebounce = 500 * time.Millisecond
	// DefaultInitialScanDelay is how long the scanner waits after startup
	// before the warm-up pass begins.
	DefaultInitialScanDelay = 2 * time.Second
	// DefaultBatchPause is the cooperative yield between scanner batches.
	DefaultBatchPause = 15 * time.Millisecond
	// DefaultCacheCapacity bounds each of the three caches.
	DefaultCacheCapacity = 5000
	// DefaultConcurrency bounds simultaneous content reads.
	DefaultConcurrency = 4
	// DefaultLimiterQueueCap bounds the limiter's FIFO overflow queue.
	DefaultLimiterQueueCap = 1000
	// DefaultPendingKeysCap bounds the distinct keys a debounce queue
	// tracks before collapsing to a full refresh.
	DefaultPendingKeysCap = 8000
	// DefaultReadTimeout bounds a single content read.
	DefaultReadTimeout = 5 * time.Second
)

// Config holds the resolved engine configuration. All values are already
// normalized: durations positive, counts at least 1.
type Config struct {
	// SizeThreshold is the size in bytes above which values are estimated.
	SizeThreshold int64
	// EstimateDivisor converts size to an estimated line count.
	EstimateDivisor int64
	// ScanBatchSize is the number of keys per scanner batch.
	ScanBatchSize int
	// NotifyDebounce is the notification batcher's debounce window.
	NotifyDebounce time.Duration
	// ChangeDebounce is the change funnel's debounce window.
	ChangeDebounce time.Duration
	// InitialScanDelay delays the warm-up scan after startup.
	InitialScanDelay time.Duration
	// BatchPause is the cooperative yield between scanner batches.
	BatchPause time.Duration
	// CacheCapacity bounds each cache.
	CacheCapacity int
	// Concurrency bounds simultaneous content reads.
	Concurrency int
	// LimiterQueueCap bounds the limiter's overflow queue.
	LimiterQueueCap int
	// PendingKeysCap bounds pending keys per debounce queue.
	PendingKeysCap int
	// ReadTimeout bounds a single content read.
	ReadTimeout time.Duration

	// IncludeExtensions restricts eligibility to these file extensions.
	// Empty means every file is eligible.
	IncludeExtensions []string
	// ExcludeDirs are directory names never descended into or annotated.
	ExcludeDirs []string

	// Revision is a digest of all settings above. A revision change means
	// the entire cache population is suspect and triggers a full refresh.
	Revision uint64
}

// DefaultConfig returns a Config populated with every default.
func DefaultConfig() Config {
	return Config{
		SizeThreshold:    DefaultSizeThreshold,
		EstimateDivisor:  DefaultEstimateDivisor,
		ScanBatchSize:    DefaultScanBatchSize,
		NotifyDebounce:   DefaultNotifyDebounce,
		ChangeDebounce:   DefaultChangeDebounce,
		InitialScanDelay: DefaultInitialScanDelay,
		BatchPause:       DefaultBatchPause,
		CacheCapacity:    DefaultCacheCapacity,
		Concurrency:      DefaultConcurrency,
		LimiterQueueCap:  DefaultLimiterQueueCap,
		PendingKeysCap:   DefaultPendingKeysCap,
		ReadTimeout:      DefaultReadTimeout,
	}
}
