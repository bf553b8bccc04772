// Package config provides the configuration loader for tally.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/tally/internal/core/domain"
	"go.trai.ch/tally/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements configuration loading from a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load discovers tally.yaml upward from cwd and returns the normalized
// configuration plus the directory it was found in. When no file exists the
// defaults apply and cwd is the root.
func (l *Loader) Load(cwd string) (domain.Config, string, error) {
	configPath, err := l.findConfiguration(cwd)
	if err != nil {
		l.Logger.Debug(fmt.Sprintf("no %s found, using defaults", domain.ConfigFileName))
		return withRevision(domain.DefaultConfig()), cwd, nil
	}
	cfg, err := l.LoadPath(configPath)
	if err != nil {
		return domain.Config{}, "", err
	}
	return cfg, filepath.Dir(configPath), nil
}

// LoadPath reads and normalizes the configuration file at path.
func (l *Loader) LoadPath(path string) (domain.Config, error) {
	// #nosec G304 -- path comes from upward discovery or an explicit flag
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Config{}, zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no file at the given path"), "path", path)
		}
		return domain.Config{}, zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	var file File
	if parseErr := yaml.Unmarshal(raw, &file); parseErr != nil {
		return domain.Config{}, zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return withRevision(l.normalize(file)), nil
}

// findConfiguration walks upward from cwd looking for the config file.
func (l *Loader) findConfiguration(cwd string) (string, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no file between cwd and the filesystem root"), "cwd", cwd)
}

// normalize coerces every knob to a usable value: absent or malformed
// entries fall back to defaults, fractional values are floored, and counts
// are clamped to at least 1.
func (l *Loader) normalize(file File) domain.Config {
	cfg := domain.DefaultConfig()

	cfg.SizeThreshold = coerce(file.SizeThreshold, cfg.SizeThreshold)
	cfg.EstimateDivisor = coerce(file.EstimateDivisor, cfg.EstimateDivisor)
	cfg.ScanBatchSize = int(coerce(file.ScanBatchSize, int64(cfg.ScanBatchSize)))
	cfg.CacheCapacity = int(coerce(file.CacheCapacity, int64(cfg.CacheCapacity)))
	cfg.Concurrency = int(coerce(file.Concurrency, int64(cfg.Concurrency)))
	cfg.LimiterQueueCap = int(coerce(file.LimiterQueueCap, int64(cfg.LimiterQueueCap)))
	cfg.PendingKeysCap = int(coerce(file.PendingKeysCap, int64(cfg.PendingKeysCap)))

	cfg.NotifyDebounce = coerceDuration(file.NotifyDebounceMS, cfg.NotifyDebounce)
	cfg.ChangeDebounce = coerceDuration(file.ChangeDebounceMS, cfg.ChangeDebounce)
	cfg.InitialScanDelay = coerceDuration(file.InitialScanDelayMS, cfg.InitialScanDelay)
	cfg.BatchPause = coerceDuration(file.BatchPauseMS, cfg.BatchPause)
	cfg.ReadTimeout = coerceDuration(file.ReadTimeoutMS, cfg.ReadTimeout)

	cfg.IncludeExtensions = canonicalizeList(file.IncludeExtensions)
	cfg.ExcludeDirs = canonicalizeList(file.ExcludeDirs)

	return cfg
}

// coerce converts a loose YAML value to a positive integer, falling back to
// def for anything unusable.
func coerce(v any, def int64) int64 {
	var n int64
	switch t := v.(type) {
	case nil:
		return def
	case int:
		n = int64(t)
	case int64:
		n = t
	case uint64:
		if t > math.MaxInt64 {
			return def
		}
		n = int64(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return def
		}
		n = int64(math.Floor(t))
	default:
		return def
	}

	if n < 1 {
		return def
	}
	return n
}

func coerceDuration(v any, def time.Duration) time.Duration {
	ms := coerce(v, int64(def/time.Millisecond))
	return time.Duration(ms) * time.Millisecond
}

// canonicalizeList sorts and deduplicates a string list so the revision
// digest is insensitive to ordering in the file.
func canonicalizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]string, len(items))
	copy(sorted, items)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

// withRevision stamps cfg with a digest of every effective setting. Two
// configurations with the same effective values share a revision no matter
// how the file spelled them.
func withRevision(cfg domain.Config) domain.Config {
	d := xxhash.New()
	fmt.Fprintf(d, "%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|",
		cfg.SizeThreshold,
		cfg.EstimateDivisor,
		cfg.ScanBatchSize,
		cfg.NotifyDebounce/time.Millisecond,
		cfg.ChangeDebounce/time.Millisecond,
		cfg.InitialScanDelay/time.Millisecond,
		cfg.BatchPause/time.Millisecond,
		cfg.CacheCapacity,
		cfg.Concurrency,
		cfg.LimiterQueueCap,
		cfg.PendingKeysCap,
		cfg.ReadTimeout/time.Millisecond,
	)
	fmt.Fprintf(d, "ext:%s|dirs:%s",
		strings.Join(cfg.IncludeExtensions, ","),
		strings.Join(cfg.ExcludeDirs, ","),
	)
	cfg.Revision = d.Sum64()
	return cfg
}

// Eligibility builds the file predicate for cfg: the extension must be
// included (an empty include list admits everything) and no path segment
// may be an excluded directory.
func Eligibility(cfg domain.Config) func(string) bool {
	included := make(map[string]bool, len(cfg.IncludeExtensions))
	for _, ext := range cfg.IncludeExtensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		included[ext] = true
	}
	excluded := make(map[string]bool, len(cfg.ExcludeDirs))
	for _, dir := range cfg.ExcludeDirs {
		excluded[dir] = true
	}

	return func(path string) bool {
		if len(included) > 0 && !included[filepath.Ext(path)] {
			return false
		}
		if len(excluded) > 0 {
			dir := filepath.Dir(path)
			for _, segment := range strings.Split(filepath.ToSlash(dir), "/") {
				if excluded[segment] {
					return false
				}
			}
		}
		return true
	}
}
