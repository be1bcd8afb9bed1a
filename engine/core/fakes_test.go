package core

import (
	"context"
	"fmt"
)

// trace records hook calls across layers in call order.
type trace struct{ calls []string }

func (t *trace) add(format string, args ...any) { t.calls = append(t.calls, fmt.Sprintf(format, args...)) }

func (t *trace) reset() { t.calls = nil }

type testLayer struct {
	name    string
	tr      *trace
	consume map[Kind]bool
	ctx     context.Context

	onUpdate func(Timestep)
}

func newTestLayer(name string, tr *trace, consumes ...Kind) *testLayer {
	l := &testLayer{name: name, tr: tr, consume: map[Kind]bool{}}
	for _, k := range consumes {
		l.consume[k] = true
	}
	return l
}

func (l *testLayer) Name() string { return l.name }

func (l *testLayer) OnAttach(ctx context.Context) {
	l.ctx = ctx
	l.tr.add("%s.attach", l.name)
}

func (l *testLayer) OnDetach() { l.tr.add("%s.detach", l.name) }

func (l *testLayer) OnUpdate(ts Timestep) {
	l.tr.add("%s.update", l.name)
	if l.onUpdate != nil {
		l.onUpdate(ts)
	}
}

func (l *testLayer) OnRender() { l.tr.add("%s.render", l.name) }

func (l *testLayer) OnEvent(ev Event) {
	l.tr.add("%s.event", l.name)
	if l.consume[ev.Kind()] {
		ev.SetHandled(true)
	}
}

type testGUI struct{ testLayer }

func newTestGUI(tr *trace) *testGUI {
	return &testGUI{testLayer: testLayer{name: "gui", tr: tr, consume: map[Kind]bool{}}}
}

func (g *testGUI) BeginFrame(Window) { g.tr.add("gui.begin") }
func (g *testGUI) EndFrame(Window)   { g.tr.add("gui.end") }

type testWindow struct {
	cb        EventCallback
	minimized bool
	polls     int
	closed    int

	// onPoll runs inside PollEvents, standing in for native callbacks.
	onPoll func(w *testWindow)
}

func (w *testWindow) PollEvents() {
	w.polls++
	if w.onPoll != nil {
		w.onPoll(w)
	}
}

func (w *testWindow) SetEventCallback(cb EventCallback) { w.cb = cb }
func (w *testWindow) Minimized() bool                   { return w.minimized }
func (w *testWindow) FramebufferSize() (int, int)       { return 800, 600 }
func (w *testWindow) SwapBuffers()                      {}

func (w *testWindow) Close() error {
	w.closed++
	return nil
}

func (w *testWindow) emit(ev Event) {
	if w.cb != nil {
		w.cb(ev)
	}
}

// stepClock advances by step seconds on every read.
func stepClock(step float64) func() float64 {
	var now float64
	return func() float64 {
		now += step
		return now
	}
}
