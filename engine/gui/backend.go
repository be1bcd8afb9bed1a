package gui

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/framelab/engine/core"
	"github.com/hubastard/framelab/engine/theme"
	"go.uber.org/zap"
)

// GPUInfo identifies the GL implementation behind the current context.
type GPUInfo struct {
	Vendor   string
	Renderer string
	Version  string
}

// Backend is the GPU side of the GUI. It sits in the layer stack as an
// overlay and brackets every frame's render pass.
type Backend struct {
	core.BaseLayer
	theme  theme.Theme
	gpu    GPUInfo
	frames uint64
}

// NewBackend loads GL entry points for the current context, so the window
// must already be created.
func NewBackend(th theme.Theme, log *zap.Logger) (*Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	b := newBackend(th, GPUInfo{
		Vendor:   gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
	})
	log.Debug("gl initialised", zap.String("version", b.gpu.Version), zap.String("theme", th.Name))
	return b, nil
}

func newBackend(th theme.Theme, gpu GPUInfo) *Backend {
	return &Backend{BaseLayer: core.NewBaseLayer("GUI Backend"), theme: th, gpu: gpu}
}

func (b *Backend) GPU() GPUInfo { return b.gpu }

// Frames counts presented frames.
func (b *Backend) Frames() uint64 { return b.frames }

// OnEvent captures pointer input: the dockspace covers the whole viewport,
// so every pointer event lands on GUI surface.
func (b *Backend) OnEvent(ev core.Event) {
	switch ev.(type) {
	case *core.MouseMoveEvent, *core.MouseButtonEvent, *core.MouseScrollEvent:
		ev.SetHandled(true)
	}
}

// BeginFrame sizes the viewport to the window and clears it to the
// theme's window background.
func (b *Backend) BeginFrame(w core.Window) {
	fw, fh := w.FramebufferSize()
	gl.Viewport(0, 0, int32(fw), int32(fh))
	c := b.theme.WindowBg
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// EndFrame presents the frame.
func (b *Backend) EndFrame(w core.Window) {
	w.SwapBuffers()
	b.frames++
}

var _ core.GUIBackend = (*Backend)(nil)
