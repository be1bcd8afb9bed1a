package core

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hubastard/framelab/engine/logging"
	"github.com/hubastard/framelab/engine/metrics"
	"github.com/hubastard/framelab/engine/profiler"
	"go.uber.org/zap"
)

// Window is the native surface the application drives.
type Window interface {
	PollEvents()
	SetEventCallback(cb EventCallback)
	Minimized() bool
	FramebufferSize() (int, int)
	SwapBuffers()
	Close() error
}

// GUIBackend brackets the render pass of every frame. It also lives in the
// layer stack as the first overlay.
type GUIBackend interface {
	Layer
	BeginFrame(w Window)
	EndFrame(w Window)
}

// Timestep is the elapsed time in seconds since the previous frame.
type Timestep float64

func (t Timestep) Seconds() float64      { return float64(t) }
func (t Timestep) Milliseconds() float64 { return float64(t) * 1000 }
func (t Timestep) Duration() time.Duration {
	return time.Duration(float64(t) * float64(time.Second))
}

// Option configures an Application.
type Option func(*Application)

func WithLogger(log *zap.Logger) Option {
	return func(a *Application) { a.log = log }
}

// WithClock sets the time source in seconds. The default counts from New.
func WithClock(clock func() float64) Option {
	return func(a *Application) { a.clock = clock }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(a *Application) { a.metrics = c }
}

// WithContext sets the parent of the context handed to layers on attach.
func WithContext(ctx context.Context) Option {
	return func(a *Application) { a.ctx = ctx }
}

// instance guards the one-application-per-process rule.
var instance atomic.Pointer[Application]

// Application owns the window and the layer stack and drives the frame loop.
// Only one may exist at a time; it is handed to layers through the context
// given to OnAttach instead of through a global accessor.
type Application struct {
	window  Window
	gui     GUIBackend
	layers  LayerStack
	input   *Input
	log     *zap.Logger
	metrics *metrics.Collector
	clock   func() float64
	ctx     context.Context

	running       atomic.Bool
	lastFrameTime float64
	frame         uint64

	// Stack mutations requested from inside a pass wait for it to finish.
	iterating int
	pending   []func()
}

// New creates the application, subscribes it to win's events and pushes gui
// as the first overlay. It panics if another Application is alive.
func New(win Window, gui GUIBackend, opts ...Option) *Application {
	a := &Application{
		window: win,
		gui:    gui,
		input:  NewInput(),
		log:    zap.NewNop(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.clock == nil {
		start := time.Now()
		a.clock = func() float64 { return time.Since(start).Seconds() }
	}

	logging.Assert(a.log, instance.CompareAndSwap(nil, a), "application already exists")

	a.ctx = NewContext(a.ctx, a)
	a.running.Store(true)
	a.lastFrameTime = a.clock()

	win.SetEventCallback(a.OnEvent)
	if gui != nil {
		a.PushOverlay(gui)
	}

	a.log.Debug("application created")
	return a
}

// Close detaches every layer, closes the window and frees the
// single-instance slot. The application must not be used afterwards.
func (a *Application) Close() error {
	a.running.Store(false)

	layers := a.layers.Clear()
	for i := len(layers) - 1; i >= 0; i-- {
		layers[i].OnDetach()
	}
	a.metrics.SetLayers(0)

	err := a.window.Close()
	instance.CompareAndSwap(a, nil)
	a.log.Debug("application terminates")
	return err
}

func (a *Application) Window() Window           { return a.window }
func (a *Application) Input() *Input            { return a.input }
func (a *Application) Logger() *zap.Logger      { return a.log }
func (a *Application) Context() context.Context { return a.ctx }
func (a *Application) Running() bool            { return a.running.Load() }

// Layers returns the current stack in forward order.
func (a *Application) Layers() []Layer { return a.layers.Layers() }

// Stop ends the frame loop after the current frame. Safe from any goroutine.
func (a *Application) Stop() { a.running.Store(false) }

// PushLayer adds l at the top of the regular layers. It receives updates
// from the next frame and events from the next dispatch.
func (a *Application) PushLayer(l Layer) {
	a.mutate(func() {
		a.layers.PushLayer(l)
		a.attached(l)
	})
}

// PushOverlay adds l above every existing overlay.
func (a *Application) PushOverlay(l Layer) {
	a.mutate(func() {
		a.layers.PushOverlay(l)
		a.attached(l)
	})
}

func (a *Application) PopLayer(l Layer) {
	a.mutate(func() {
		if a.layers.PopLayer(l) {
			a.detached(l)
		}
	})
}

func (a *Application) PopOverlay(l Layer) {
	a.mutate(func() {
		if a.layers.PopOverlay(l) {
			a.detached(l)
		}
	})
}

func (a *Application) attached(l Layer) {
	l.OnAttach(a.ctx)
	a.metrics.SetLayers(a.layers.Len())
	a.log.Debug("layer attached", zap.String("layer", l.Name()))
}

func (a *Application) detached(l Layer) {
	l.OnDetach()
	a.metrics.SetLayers(a.layers.Len())
	a.log.Debug("layer detached", zap.String("layer", l.Name()))
}

func (a *Application) mutate(fn func()) {
	if a.iterating > 0 {
		a.pending = append(a.pending, fn)
		return
	}
	fn()
}

// iterate runs pass with stack mutations deferred until it returns.
func (a *Application) iterate(pass func()) {
	a.iterating++
	defer func() {
		a.iterating--
		if a.iterating == 0 {
			a.flush()
		}
	}()
	pass()
}

func (a *Application) flush() {
	for len(a.pending) > 0 {
		next := a.pending[0]
		a.pending = a.pending[1:]
		next()
	}
	a.pending = nil
}

// OnEvent routes ev: the application handles structural events first, then
// layers see it overlay first, newest first, until one consumes it.
func (a *Application) OnEvent(ev Event) {
	kind := ev.Kind().String()
	a.metrics.EventDispatched(kind)
	a.input.Handle(ev)

	d := NewDispatcher(ev)
	Dispatch(d, a.onClose)
	if ev.Handled() {
		return
	}

	a.iterate(func() {
		a.layers.ForEachReverse(func(l Layer) bool {
			end := profiler.StartLayer(l.Name(), "OnEvent")
			l.OnEvent(ev)
			end()
			return ev.Handled()
		})
	})
	if ev.Handled() {
		return
	}

	a.metrics.EventUnhandled(kind)
	a.log.Warn("unhandled event", zap.String("kind", kind))
}

func (a *Application) onClose(*WindowCloseEvent) bool {
	a.running.Store(false)
	return true
}

type appKey struct{}

// NewContext returns a copy of ctx carrying app.
func NewContext(ctx context.Context, app *Application) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// FromContext returns the Application stored in ctx, if any.
func FromContext(ctx context.Context) (*Application, bool) {
	app, ok := ctx.Value(appKey{}).(*Application)
	return app, ok && app != nil
}
