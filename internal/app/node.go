package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tally/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/tally/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/tally/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/tally/internal/adapters/render"  //nolint:depguard // Wired in app layer
	"go.trai.ch/tally/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/tally/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.SourceNodeID,
			fs.WalkerNodeID,
			watcher.NodeID,
			render.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
			fs.SourceNodeID,
			fs.WalkerNodeID,
			watcher.NodeID,
			render.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	source, err := graft.Dep[ports.Source](ctx)
	if err != nil {
		return nil, err
	}
	enum, err := graft.Dep[ports.Enumerator](ctx)
	if err != nil {
		return nil, err
	}
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	renderer, err := graft.Dep[ports.BadgeRenderer](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, source, enum, w, renderer, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	source, err := graft.Dep[ports.Source](ctx)
	if err != nil {
		return nil, err
	}
	enum, err := graft.Dep[ports.Enumerator](ctx)
	if err != nil {
		return nil, err
	}
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	renderer, err := graft.Dep[ports.BadgeRenderer](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:          a,
		Logger:       log,
		ConfigLoader: loader,
		Source:       source,
		Enumerator:   enum,
		Watcher:      w,
		Renderer:     renderer,
	}, nil
}
