package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hubastard/framelab/engine/core"
	"go.uber.org/zap"
)

// WindowProperties describe a window in unscaled screen units. The native
// window is created at the size times the monitor's content scale.
type WindowProperties struct {
	Title  string
	Width  uint32
	Height uint32
	VSync  bool
}

// Window owns one GLFW window and turns its callbacks into core events.
// The native callbacks hold a back-reference to the Window; Close removes
// them, so nothing reaches a closed Window.
type Window struct {
	native    *glfw.Window
	props     WindowProperties
	scale     float32
	minimized bool
	onEvent   core.EventCallback
	log       *zap.Logger
}

// NewWindow creates the window and makes its GL context current. share, if
// not nil, shares GL objects with the new context.
// Must be called on the main thread.
func NewWindow(props WindowProperties, share *Window, log *zap.Logger) (*Window, error) {
	runtime.LockOSThread()
	if log == nil {
		log = zap.NewNop()
	}
	if err := glfwContext.Acquire(); err != nil {
		return nil, err
	}

	scale := float32(1)
	if m := glfw.GetPrimaryMonitor(); m != nil {
		if sx, _ := m.GetContentScale(); sx > 0 {
			scale = sx
		}
	}

	var shared *glfw.Window
	if share != nil {
		shared = share.native
	}
	native, err := glfw.CreateWindow(
		int(float32(props.Width)*scale),
		int(float32(props.Height)*scale),
		props.Title, nil, shared,
	)
	if err != nil {
		glfwContext.Release()
		return nil, fmt.Errorf("create window %q: %w", props.Title, err)
	}
	native.MakeContextCurrent()

	w := &Window{native: native, props: props, scale: scale, log: log}
	w.SetVSync(props.VSync)
	w.install()

	log.Debug("window initialised",
		zap.String("title", props.Title),
		zap.Uint32("width", props.Width),
		zap.Uint32("height", props.Height),
		zap.Float32("scale", scale))
	return w, nil
}

func (w *Window) install() {
	w.native.SetCloseCallback(func(*glfw.Window) { w.handleClose() })
	w.native.SetSizeCallback(func(_ *glfw.Window, width, height int) { w.handleSize(width, height) })
	w.native.SetIconifyCallback(func(_ *glfw.Window, iconified bool) { w.handleIconify(iconified) })
	w.native.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		w.handleKey(key, action, mods)
	})
	w.native.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		w.handleMouseButton(b, action, mods)
	})
	w.native.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) { w.emit(&core.MouseMoveEvent{X: x, Y: y}) })
	w.native.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		w.emit(&core.MouseScrollEvent{XOffset: xoff, YOffset: yoff})
	})
}

func (w *Window) handleClose() { w.emit(&core.WindowCloseEvent{}) }

// handleSize stores the new size in unscaled units, the same units the
// window was created with, and emits it.
func (w *Window) handleSize(width, height int) {
	scale := w.scale
	if scale <= 0 {
		scale = 1
	}
	w.props.Width = clampSize(int(float32(width)/scale + 0.5))
	w.props.Height = clampSize(int(float32(height)/scale + 0.5))
	w.emit(&core.WindowResizeEvent{Width: w.props.Width, Height: w.props.Height})
}

func (w *Window) handleIconify(iconified bool) { w.minimized = iconified }

func (w *Window) handleKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) {
	k := translateKey(key)
	if k == core.KeyUnknown {
		return
	}
	w.emit(&core.KeyEvent{Key: k, Action: translateAction(action), Mods: translateMods(mods)})
}

func (w *Window) handleMouseButton(b glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	w.emit(&core.MouseButtonEvent{Button: translateButton(b), Down: action != glfw.Release, Mods: translateMods(mods)})
}

func (w *Window) uninstall() {
	w.native.SetCloseCallback(nil)
	w.native.SetSizeCallback(nil)
	w.native.SetIconifyCallback(nil)
	w.native.SetKeyCallback(nil)
	w.native.SetMouseButtonCallback(nil)
	w.native.SetCursorPosCallback(nil)
	w.native.SetScrollCallback(nil)
}

func (w *Window) emit(ev core.Event) {
	if w.onEvent != nil {
		w.onEvent(ev)
	}
}

// SetEventCallback replaces the single event subscriber.
func (w *Window) SetEventCallback(cb core.EventCallback) { w.onEvent = cb }

// PollEvents drains the queue shared by every window.
func (w *Window) PollEvents() { PollAllEvents() }

func (w *Window) SetVSync(enabled bool) {
	if enabled {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	w.props.VSync = enabled
}

func (w *Window) VSync() bool                  { return w.props.VSync }
func (w *Window) Properties() WindowProperties { return w.props }
func (w *Window) ContentScale() float32        { return w.scale }
func (w *Window) SwapBuffers()                 { w.native.SwapBuffers() }
func (w *Window) FramebufferSize() (int, int)  { return w.native.GetFramebufferSize() }
func (w *Window) Minimized() bool              { return minimized(w.props, w.minimized) }

func (w *Window) SetTitle(title string) {
	w.native.SetTitle(title)
	w.props.Title = title
}

// Close destroys the native window and drops its context reference.
// Calling it again is a no-op.
func (w *Window) Close() error {
	w.onEvent = nil
	if w.native == nil {
		return nil
	}
	w.log.Debug("window terminates", zap.String("title", w.props.Title))
	w.uninstall()
	w.native.Destroy()
	w.native = nil
	glfwContext.Release()
	return nil
}

// minimized reports whether a window has nothing to render into.
func minimized(p WindowProperties, iconified bool) bool {
	return iconified || p.Width == 0 || p.Height == 0
}

func clampSize(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}

var _ core.Window = (*Window)(nil)
