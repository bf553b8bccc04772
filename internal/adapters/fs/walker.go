package fs

import (
	"context"
	"io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/tally/internal/core/ports"
)

var _ ports.Enumerator = (*Walker)(nil)

// skipDirectories are directory names never descended into.
var skipDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
}

// enumerationCap bounds the keys yielded per root so a scan over a
// pathological tree stays finite.
const enumerationCap = 100_000

// Walker enumerates annotatable files by walking a directory tree.
type Walker struct {
	excluded map[string]bool
}

// NewWalker creates a walker. Directory names in exclude are skipped in
// addition to the built-in version control and dependency directories.
func NewWalker(exclude []string) *Walker {
	excluded := make(map[string]bool, len(skipDirectories)+len(exclude))
	for name := range skipDirectories {
		excluded[name] = true
	}
	for _, name := range exclude {
		excluded[name] = true
	}
	return &Walker{excluded: excluded}
}

// Enumerate yields regular files under root that pass the eligible
// predicate, stopping early on context cancellation or at the enumeration
// cap. Unreadable directories are skipped, not fatal.
func (w *Walker) Enumerate(ctx context.Context, root string, eligible func(string) bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		yielded := 0
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // skip unreadable entries and keep walking
			}
			if ctx.Err() != nil || yielded >= enumerationCap {
				return filepath.SkipAll
			}
			if d.IsDir() {
				if w.excluded[d.Name()] {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if eligible != nil && !eligible(path) {
				return nil
			}
			yielded++
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
