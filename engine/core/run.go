package core

import "github.com/hubastard/framelab/engine/profiler"

// Run executes the frame loop until the application stops.
// Must be called on the thread that owns the window's GL context.
func (a *Application) Run() {
	a.log.Debug("frame loop started")

	for a.running.Load() {
		a.Frame()
	}

	a.log.Debug("frame loop stopped")
}

// Frame runs one iteration of the loop: poll native events, then update and
// render every layer unless the window is minimized.
func (a *Application) Frame() {
	a.frame++
	profiler.BeginFrame(a.frame)
	defer profiler.Start("Frame")()

	// Native callbacks run inside PollEvents and may stop the loop.
	a.window.PollEvents()

	now := a.clock()
	ts := Timestep(now - a.lastFrameTime)
	a.lastFrameTime = now

	if a.window.Minimized() {
		a.metrics.FrameSkipped()
		return
	}

	a.iterate(func() {
		endUpdate := profiler.Start("Application.Update")
		a.layers.ForEach(func(l Layer) {
			end := profiler.StartLayer(l.Name(), "OnUpdate")
			l.OnUpdate(ts)
			end()
		})
		endUpdate()

		endRender := profiler.Start("Application.Render")
		if a.gui != nil {
			end := profiler.StartLayer(a.gui.Name(), "BeginFrame")
			a.gui.BeginFrame(a.window)
			end()
		}
		a.layers.ForEach(func(l Layer) {
			end := profiler.StartLayer(l.Name(), "OnRender")
			l.OnRender()
			end()
		})
		if a.gui != nil {
			end := profiler.StartLayer(a.gui.Name(), "EndFrame")
			a.gui.EndFrame(a.window)
			end()
		}
		endRender()
	})

	a.metrics.FrameRendered(ts.Duration())
}
