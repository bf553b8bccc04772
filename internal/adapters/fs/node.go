package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tally/internal/core/ports"
)

const (
	// SourceNodeID is the unique identifier for the file source Graft node.
	SourceNodeID graft.ID = "adapter.fs.source"
	// WalkerNodeID is the unique identifier for the tree walker Graft node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
)

func init() {
	// Source Node
	graft.Register(graft.Node[ports.Source]{
		ID:        SourceNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Source, error) {
			return NewSource(), nil
		},
	})

	// Walker Node
	graft.Register(graft.Node[ports.Enumerator]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Enumerator, error) {
			// Config-driven directory exclusions are applied through the
			// eligibility predicate at enumeration time.
			return NewWalker(nil), nil
		},
	})
}
