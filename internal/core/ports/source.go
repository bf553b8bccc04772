// Package ports defines the interfaces between the annotation engine and
// its collaborators.
package ports

import (
	"io"

	"go.trai.ch/tally/internal/core/domain"
)

// Source provides access to the data behind keys.
//
//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks
type Source interface {
	// Observe returns the current fingerprint of the file behind key.
	// It returns domain.ErrNotCountable when the key no longer denotes a
	// regular, countable file.
	Observe(key string) (domain.Fingerprint, error)

	// Open returns the raw content stream for counting. The stream is
	// finite, single-pass, and may fail mid-read.
	Open(key string) (io.ReadCloser, error)
}
