package ports

import (
	"context"
	"iter"
)

// Enumerator discovers annotatable keys under a root for bulk scans.
//
//go:generate mockgen -source=enumerator.go -destination=mocks/mock_enumerator.go -package=mocks
type Enumerator interface {
	// Enumerate yields eligible keys under root. The sequence stops early
	// when ctx is cancelled and may be capped by the implementation.
	Enumerate(ctx context.Context, root string, eligible func(string) bool) iter.Seq[string]
}
