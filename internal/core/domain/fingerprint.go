// Package domain contains the core types of the annotation engine.
package domain

// Fingerprint captures the size and modification time of a file as observed
// at the moment a computation starts. A cached value is only trustworthy
// while the file's current fingerprint equals the one it was computed
// against.
type Fingerprint struct {
	// Size is the file size in bytes.
	Size int64
	// ModTime is the modification time in nanoseconds since the Unix epoch.
	ModTime int64
}

// Equal reports whether both fields match exactly.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Size == other.Size && f.ModTime == other.ModTime
}
