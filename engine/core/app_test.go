package core

import (
	"context"
	"testing"

	"github.com/hubastard/framelab/engine/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	app  *Application
	win  *testWindow
	gui  *testGUI
	tr   *trace
	logs *observer.ObservedLogs
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{win: &testWindow{}, tr: &trace{}, logs: logs}
	f.gui = newTestGUI(f.tr)
	opts = append([]Option{WithLogger(zap.New(core)), WithClock(stepClock(0.016))}, opts...)
	f.app = New(f.win, f.gui, opts...)
	t.Cleanup(func() {
		if f.app != nil {
			_ = f.app.Close()
		}
	})
	f.tr.reset()
	return f
}

func (f *fixture) warnings() []observer.LoggedEntry {
	return f.logs.FilterLevelExact(zapcore.WarnLevel).All()
}

func TestNewPushesGUIAsFirstOverlay(t *testing.T) {
	f := newFixture(t)
	a := newTestLayer("A", f.tr)
	o := newTestLayer("O", f.tr)

	f.app.PushOverlay(o)
	f.app.PushLayer(a)

	assert.Equal(t, []string{"A", "gui", "O"}, names(f.app.Layers()))
	assert.True(t, f.app.Running())
	assert.NotNil(t, f.win.cb)
}

func TestOverlayConsumesFirst(t *testing.T) {
	f := newFixture(t)
	a := newTestLayer("A", f.tr)
	b := newTestLayer("B", f.tr)
	c := newTestLayer("C", f.tr, KindKey)
	f.app.PushLayer(a)
	f.app.PushLayer(b)
	f.app.PushOverlay(c)
	f.tr.reset()

	ev := &KeyEvent{Key: KeySpace, Action: ActionPress}
	f.win.emit(ev)

	assert.True(t, ev.Handled())
	assert.Equal(t, []string{"C.event"}, f.tr.calls)
	assert.Empty(t, f.warnings())
}

func TestPropagationStopsAtConsumer(t *testing.T) {
	f := newFixture(t)
	f.app.PushLayer(newTestLayer("R1", f.tr))
	f.app.PushLayer(newTestLayer("R2", f.tr, KindMouseMove))
	f.app.PushOverlay(newTestLayer("O1", f.tr))
	f.tr.reset()

	ev := &MouseMoveEvent{X: 1, Y: 2}
	f.app.OnEvent(ev)

	assert.True(t, ev.Handled())
	assert.Equal(t, []string{"O1.event", "gui.event", "R2.event"}, f.tr.calls)
}

func TestCloseIsInterceptedBeforeLayers(t *testing.T) {
	f := newFixture(t)
	f.app.PushLayer(newTestLayer("A", f.tr))
	f.tr.reset()

	ev := &WindowCloseEvent{}
	f.win.emit(ev)

	assert.True(t, ev.Handled())
	assert.False(t, f.app.Running())
	assert.Empty(t, f.tr.calls)
}

func TestUnhandledEventVisitsEveryLayerOnce(t *testing.T) {
	f := newFixture(t)
	f.app.PushLayer(newTestLayer("R1", f.tr))
	f.app.PushLayer(newTestLayer("R2", f.tr))
	f.app.PushOverlay(newTestLayer("O1", f.tr))
	f.tr.reset()

	ev := &WindowResizeEvent{Width: 10, Height: 20}
	f.app.OnEvent(ev)

	assert.False(t, ev.Handled())
	assert.Equal(t, []string{"O1.event", "gui.event", "R2.event", "R1.event"}, f.tr.calls)

	warns := f.warnings()
	require.Len(t, warns, 1)
	assert.Equal(t, "unhandled event", warns[0].Message)
	assert.Equal(t, "WindowResize", warns[0].ContextMap()["kind"])
}

func TestFrameOrder(t *testing.T) {
	f := newFixture(t)
	f.app.PushLayer(newTestLayer("R1", f.tr))
	f.app.PushOverlay(newTestLayer("O1", f.tr))
	f.app.PushLayer(newTestLayer("R2", f.tr))
	f.tr.reset()

	f.app.Frame()

	assert.Equal(t, []string{
		"R1.update", "R2.update", "gui.update", "O1.update",
		"gui.begin",
		"R1.render", "R2.render", "gui.render", "O1.render",
		"gui.end",
	}, f.tr.calls)
	assert.Equal(t, 1, f.win.polls)
}

func TestTimestepFromClock(t *testing.T) {
	f := newFixture(t, WithClock(stepClock(0.25)))
	l := newTestLayer("A", f.tr)
	var steps []Timestep
	l.onUpdate = func(ts Timestep) { steps = append(steps, ts) }
	f.app.PushLayer(l)

	f.app.Frame()
	f.app.Frame()

	require.Len(t, steps, 2)
	assert.InDelta(t, 0.25, steps[0].Seconds(), 1e-9)
	assert.InDelta(t, 250, steps[1].Milliseconds(), 1e-6)
}

func TestMinimizedSkipsPassesButNotEvents(t *testing.T) {
	f := newFixture(t)
	f.app.PushLayer(newTestLayer("A", f.tr))
	f.tr.reset()
	f.win.minimized = true
	f.win.onPoll = func(w *testWindow) { w.emit(&WindowCloseEvent{}) }

	f.app.Run()

	assert.Empty(t, f.tr.calls)
	assert.Equal(t, 1, f.win.polls)
	assert.False(t, f.app.Running())
}

func TestRunUntilClose(t *testing.T) {
	f := newFixture(t)
	f.app.PushLayer(newTestLayer("A", f.tr))
	f.win.onPoll = func(w *testWindow) {
		if w.polls == 3 {
			w.emit(&WindowCloseEvent{})
		}
	}
	f.tr.reset()

	f.app.Run()

	assert.Equal(t, 3, f.win.polls)
	// The closing frame still finishes its passes.
	updates := 0
	for _, c := range f.tr.calls {
		if c == "A.update" {
			updates++
		}
	}
	assert.Equal(t, 3, updates)
}

func TestStopEndsRun(t *testing.T) {
	f := newFixture(t)
	f.win.onPoll = func(*testWindow) { f.app.Stop() }

	f.app.Run()

	assert.Equal(t, 1, f.win.polls)
	assert.False(t, f.app.Running())
}

func TestSecondApplicationPanics(t *testing.T) {
	f := newFixture(t)

	assert.Panics(t, func() { New(&testWindow{}, nil) })

	require.NoError(t, f.app.Close())
	f.app = nil

	other := New(&testWindow{}, nil)
	assert.NoError(t, other.Close())
}

func TestCloseDetachesInReverse(t *testing.T) {
	f := newFixture(t)
	f.app.PushLayer(newTestLayer("A", f.tr))
	f.app.PushOverlay(newTestLayer("O", f.tr))
	f.app.PushLayer(newTestLayer("B", f.tr))
	f.tr.reset()

	require.NoError(t, f.app.Close())
	f.app = nil

	assert.Equal(t, []string{"O.detach", "gui.detach", "B.detach", "A.detach"}, f.tr.calls)
	assert.Equal(t, 1, f.win.closed)
}

func TestPopCallsDetach(t *testing.T) {
	f := newFixture(t)
	a := newTestLayer("A", f.tr)
	o := newTestLayer("O", f.tr)
	f.app.PushLayer(a)
	f.app.PushOverlay(o)
	f.tr.reset()

	f.app.PopOverlay(a) // wrong region
	f.app.PopLayer(a)
	f.app.PopOverlay(o)

	assert.Equal(t, []string{"A.detach", "O.detach"}, f.tr.calls)
	assert.Equal(t, []string{"gui"}, names(f.app.Layers()))
}

func TestPushDuringUpdateIsDeferred(t *testing.T) {
	f := newFixture(t)
	late := newTestLayer("Late", f.tr)
	a := newTestLayer("A", f.tr)
	pushed := false
	a.onUpdate = func(Timestep) {
		if !pushed {
			pushed = true
			f.app.PushLayer(late)
		}
	}
	f.app.PushLayer(a)
	f.tr.reset()

	f.app.Frame()
	assert.NotContains(t, f.tr.calls, "Late.update")
	assert.NotContains(t, f.tr.calls, "Late.render")
	assert.Contains(t, f.tr.calls, "Late.attach")

	f.tr.reset()
	f.app.Frame()
	assert.Contains(t, f.tr.calls, "Late.update")
	assert.Equal(t, []string{"A", "Late", "gui"}, names(f.app.Layers()))
}

func TestAttachContextCarriesApplication(t *testing.T) {
	type key struct{}
	parent := context.WithValue(context.Background(), key{}, "sandbox")
	f := newFixture(t, WithContext(parent))
	l := newTestLayer("A", f.tr)
	f.app.PushLayer(l)

	require.NotNil(t, l.ctx)
	app, ok := FromContext(l.ctx)
	require.True(t, ok)
	assert.Same(t, f.app, app)
	assert.Equal(t, "sandbox", l.ctx.Value(key{}))

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestMetricsRecorded(t *testing.T) {
	c := metrics.NewCollector("t")
	f := newFixture(t, WithMetrics(c))
	f.app.PushLayer(newTestLayer("A", f.tr))

	f.app.OnEvent(&KeyEvent{Key: KeyQ, Action: ActionPress})
	f.app.Frame()
	f.win.minimized = true
	f.app.Frame()

	sum, err := c.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1.0, sum["t_loop_frames_total"])
	assert.Equal(t, 1.0, sum["t_loop_frames_skipped_total"])
	assert.Equal(t, 1.0, sum["t_events_dispatched_total"])
	assert.Equal(t, 1.0, sum["t_events_unhandled_total"])
	assert.Equal(t, 2.0, sum["t_layers_count"])

	n, err := testutil.GatherAndCount(c.Registry(), "t_events_unhandled_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInputSeesConsumedEvents(t *testing.T) {
	f := newFixture(t)
	f.app.PushOverlay(newTestLayer("O", f.tr, KindKey))

	f.win.emit(&KeyEvent{Key: KeyEscape, Action: ActionPress})
	assert.True(t, f.app.Input().IsKeyDown(KeyEscape))
}
