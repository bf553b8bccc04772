package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tally/internal/adapters/config"
	"go.trai.ch/tally/internal/adapters/logger"
	"go.trai.ch/tally/internal/core/domain"
)

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	return config.NewLoader(logger.NewWithOutput(os.Stderr))
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, domain.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load_NoFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := newLoader(t)

	cfg, root, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
	assert.Equal(t, int64(domain.DefaultSizeThreshold), cfg.SizeThreshold)
	assert.Equal(t, domain.DefaultConcurrency, cfg.Concurrency)
	assert.NotZero(t, cfg.Revision)
}

func TestLoader_Load_DiscoversUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "concurrency: 8\n")
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	loader := newLoader(t)
	cfg, foundRoot, err := loader.Load(nested)
	require.NoError(t, err)
	assert.Equal(t, root, foundRoot)
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestLoader_LoadPath_Missing(t *testing.T) {
	loader := newLoader(t)

	_, err := loader.LoadPath(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestLoader_LoadPath_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "concurrency: [not: closed\n")

	loader := newLoader(t)
	_, err := loader.LoadPath(path)
	require.Error(t, err)
}

func TestLoader_LoadPath_Normalization(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		inspect func(t *testing.T, cfg domain.Config)
	}{
		{
			name: "valid values pass through",
			yaml: "size_threshold: 2048\nconcurrency: 2\nnotify_debounce_ms: 100\n",
			inspect: func(t *testing.T, cfg domain.Config) {
				assert.Equal(t, int64(2048), cfg.SizeThreshold)
				assert.Equal(t, 2, cfg.Concurrency)
				assert.Equal(t, 100*time.Millisecond, cfg.NotifyDebounce)
			},
		},
		{
			name: "fractional values are floored",
			yaml: "concurrency: 3.9\n",
			inspect: func(t *testing.T, cfg domain.Config) {
				assert.Equal(t, 3, cfg.Concurrency)
			},
		},
		{
			name: "zero falls back to default",
			yaml: "concurrency: 0\n",
			inspect: func(t *testing.T, cfg domain.Config) {
				assert.Equal(t, domain.DefaultConcurrency, cfg.Concurrency)
			},
		},
		{
			name: "negative falls back to default",
			yaml: "cache_capacity: -5\n",
			inspect: func(t *testing.T, cfg domain.Config) {
				assert.Equal(t, domain.DefaultCacheCapacity, cfg.CacheCapacity)
			},
		},
		{
			name: "non-numeric falls back to default",
			yaml: "read_timeout_ms: fast\n",
			inspect: func(t *testing.T, cfg domain.Config) {
				assert.Equal(t, domain.DefaultReadTimeout, cfg.ReadTimeout)
			},
		},
		{
			name: "nan falls back to default",
			yaml: "estimate_divisor: .nan\n",
			inspect: func(t *testing.T, cfg domain.Config) {
				assert.Equal(t, int64(domain.DefaultEstimateDivisor), cfg.EstimateDivisor)
			},
		},
		{
			name: "lists are sorted and deduplicated",
			yaml: "include_extensions: [\".ts\", \".go\", \".go\"]\nexclude_dirs: [\"dist\", \"build\", \"dist\"]\n",
			inspect: func(t *testing.T, cfg domain.Config) {
				assert.Equal(t, []string{".go", ".ts"}, cfg.IncludeExtensions)
				assert.Equal(t, []string{"build", "dist"}, cfg.ExcludeDirs)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.yaml)
			loader := newLoader(t)

			cfg, err := loader.LoadPath(path)
			require.NoError(t, err)
			tt.inspect(t, cfg)
		})
	}
}

func TestLoader_Revision(t *testing.T) {
	loader := newLoader(t)

	base, err := loader.LoadPath(writeConfig(t, t.TempDir(), "concurrency: 4\n"))
	require.NoError(t, err)

	// Same effective values, different spelling: identical revision.
	same, err := loader.LoadPath(writeConfig(t, t.TempDir(), "concurrency: 4.2\n"))
	require.NoError(t, err)
	assert.Equal(t, base.Revision, same.Revision)

	// A changed knob moves the revision.
	changed, err := loader.LoadPath(writeConfig(t, t.TempDir(), "concurrency: 5\n"))
	require.NoError(t, err)
	assert.NotEqual(t, base.Revision, changed.Revision)
}

func TestEligibility(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		path    string
		want    bool
	}{
		{
			name: "everything eligible by default",
			path: "/p/readme.txt",
			want: true,
		},
		{
			name:    "extension included",
			include: []string{".go"},
			path:    "/p/main.go",
			want:    true,
		},
		{
			name:    "extension not included",
			include: []string{".go"},
			path:    "/p/readme.md",
			want:    false,
		},
		{
			name:    "dotless extension normalized",
			include: []string{"go"},
			path:    "/p/main.go",
			want:    true,
		},
		{
			name:    "excluded directory segment",
			exclude: []string{"vendor"},
			path:    "/p/vendor/lib/a.go",
			want:    false,
		},
		{
			name:    "excluded name as file is fine",
			exclude: []string{"vendor"},
			path:    "/p/src/vendor",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultConfig()
			cfg.IncludeExtensions = tt.include
			cfg.ExcludeDirs = tt.exclude

			eligible := config.Eligibility(cfg)
			assert.Equal(t, tt.want, eligible(tt.path))
		})
	}
}
