package main

import (
	"context"

	"github.com/hubastard/framelab/engine/core"
	"go.uber.org/zap"
)

// DockspaceLayer hosts the full-window dock area. It is the bottom layer,
// so the window size ends with it.
type DockspaceLayer struct {
	core.BaseLayer
	log           *zap.Logger
	width, height uint32
}

func NewDockspaceLayer(width, height uint32) *DockspaceLayer {
	return &DockspaceLayer{
		BaseLayer: core.NewBaseLayer("Dockspace Layer"),
		log:       zap.NewNop(),
		width:     width,
		height:    height,
	}
}

func (l *DockspaceLayer) OnAttach(ctx context.Context) {
	if app, ok := core.FromContext(ctx); ok {
		l.log = app.Logger().Named("dockspace")
	}
}

func (l *DockspaceLayer) OnEvent(ev core.Event) {
	core.Dispatch(core.NewDispatcher(ev), func(e *core.WindowResizeEvent) bool {
		l.width, l.height = e.Width, e.Height
		l.log.Debug("dockspace resized", zap.Uint32("width", e.Width), zap.Uint32("height", e.Height))
		return true
	})
}
