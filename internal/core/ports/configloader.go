package ports

import "go.trai.ch/tally/internal/core/domain"

// ConfigLoader loads and normalizes the engine configuration.
//
//go:generate mockgen -source=configloader.go -destination=mocks/mock_configloader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the config file upward from cwd. It returns the
	// normalized configuration and the root directory it applies to;
	// absence of a config file is not an error, the defaults apply.
	Load(cwd string) (domain.Config, string, error)

	// LoadPath loads an explicitly named config file. It returns
	// domain.ErrConfigNotFound when the file does not exist.
	LoadPath(path string) (domain.Config, error)
}
