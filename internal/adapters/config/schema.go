package config

// File represents the structure of the tally.yaml configuration file.
// Numeric knobs are declared as any so malformed values can be coerced to
// their defaults instead of failing the whole file.
type File struct {
	SizeThreshold      any      `yaml:"size_threshold"`
	EstimateDivisor    any      `yaml:"estimate_divisor"`
	ScanBatchSize      any      `yaml:"scan_batch_size"`
	NotifyDebounceMS   any      `yaml:"notify_debounce_ms"`
	ChangeDebounceMS   any      `yaml:"change_debounce_ms"`
	InitialScanDelayMS any      `yaml:"initial_scan_delay_ms"`
	BatchPauseMS       any      `yaml:"batch_pause_ms"`
	CacheCapacity      any      `yaml:"cache_capacity"`
	Concurrency        any      `yaml:"concurrency"`
	LimiterQueueCap    any      `yaml:"limiter_queue_cap"`
	PendingKeysCap     any      `yaml:"pending_keys_cap"`
	ReadTimeoutMS      any      `yaml:"read_timeout_ms"`
	IncludeExtensions  []string `yaml:"include_extensions"`
	ExcludeDirs        []string `yaml:"exclude_dirs"`
}
