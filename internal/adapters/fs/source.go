// Package fs implements filesystem-backed adapters for observing and
// enumerating annotatable files.
package fs

import (
	"io"
	"os"

	"go.trai.ch/tally/internal/core/domain"
	"go.trai.ch/tally/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Source = (*Source)(nil)

// Source observes and opens files on the local filesystem.
type Source struct{}

// NewSource creates a filesystem source.
func NewSource() *Source {
	return &Source{}
}

// Observe stats the file behind key and returns its fingerprint. A missing
// or irregular file (directory, socket, device) is not countable.
func (s *Source) Observe(key string) (domain.Fingerprint, error) {
	info, err := os.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Fingerprint{}, zerr.With(zerr.Wrap(domain.ErrNotCountable, "file does not exist"), "path", key)
		}
		return domain.Fingerprint{}, zerr.Wrap(err, "failed to stat file")
	}
	if !info.Mode().IsRegular() {
		return domain.Fingerprint{}, zerr.With(zerr.Wrap(domain.ErrNotCountable, "not a regular file"), "path", key)
	}

	return domain.Fingerprint{
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
	}, nil
}

// Open returns the content stream for key.
func (s *Source) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(key)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open file")
	}
	return f, nil
}
