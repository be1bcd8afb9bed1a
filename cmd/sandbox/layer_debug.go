package main

import (
	"context"
	"time"

	"github.com/hubastard/framelab/engine/core"
	"github.com/hubastard/framelab/engine/gui"
	"github.com/hubastard/framelab/engine/profiler"
	"go.uber.org/zap"
)

// presenter is the part of the GUI backend the overlay reports on.
type presenter interface {
	GPU() gui.GPUInfo
	Frames() uint64
}

// DebugLayer is a tool overlay: it reports frame statistics once per second
// and owns the developer shortcuts.
type DebugLayer struct {
	core.BaseLayer
	app        *core.Application
	gui        presenter
	log        *zap.Logger
	dumpPath   string
	showStats  bool
	frames     int
	elapsed    time.Duration
	worstFrame time.Duration
}

func NewDebugLayer(dumpPath string, gui presenter) *DebugLayer {
	return &DebugLayer{
		BaseLayer: core.NewBaseLayer("Debug Layer"),
		gui:       gui,
		log:       zap.NewNop(),
		dumpPath:  dumpPath,
		showStats: true,
	}
}

func (l *DebugLayer) OnAttach(ctx context.Context) {
	if app, ok := core.FromContext(ctx); ok {
		l.app = app
		l.log = app.Logger().Named("debug")
	}
	if l.gui != nil {
		gpu := l.gui.GPU()
		l.log.Info("gpu",
			zap.String("vendor", gpu.Vendor),
			zap.String("renderer", gpu.Renderer),
			zap.String("version", gpu.Version))
	}
}

func (l *DebugLayer) OnUpdate(ts core.Timestep) {
	d := ts.Duration()
	l.frames++
	l.elapsed += d
	if d > l.worstFrame {
		l.worstFrame = d
	}
	if l.elapsed < time.Second {
		return
	}

	if l.showStats {
		l.log.Info("frame stats", l.statsFields()...)
	}
	l.frames, l.elapsed, l.worstFrame = 0, 0, 0
}

func (l *DebugLayer) OnEvent(ev core.Event) {
	k, ok := ev.(*core.KeyEvent)
	if !ok || k.Action != core.ActionPress {
		return
	}
	switch {
	case k.Key == core.KeyP && k.Mods&core.ModCtrl != 0:
		if err := profiler.Dump(l.dumpPath); err != nil {
			l.log.Warn("profiler dump failed", zap.Error(err))
		} else {
			l.log.Info("speedscope dump", zap.String("path", l.dumpPath))
		}
		ev.SetHandled(true)
	case k.Key == core.KeyF1:
		l.showStats = !l.showStats
		ev.SetHandled(true)
	case k.Key == core.KeyEscape:
		if l.app != nil {
			l.app.Stop()
		}
		ev.SetHandled(true)
	}
}

// topScopes is how many profiler scopes the stats line reports.
const topScopes = 3

func (l *DebugLayer) statsFields() []zap.Field {
	rt := profiler.ReadRuntime()
	fields := []zap.Field{
		zap.Int("frames", l.frames),
		zap.Float64("fps", float64(l.frames)/l.elapsed.Seconds()),
		zap.Duration("avg", l.elapsed/time.Duration(l.frames)),
		zap.Duration("worst", l.worstFrame),
		zap.Uint64("heap_bytes", rt.HeapAlloc),
		zap.Int("goroutines", rt.Goroutines),
	}
	if l.gui != nil {
		fields = append(fields, zap.Uint64("presented", l.gui.Frames()))
	}
	for i, s := range profiler.Stats() {
		if i == topScopes {
			break
		}
		fields = append(fields, zap.Duration(s.Name, s.Total/time.Duration(s.Calls)))
	}
	return fields
}
