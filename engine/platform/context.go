package platform

import (
	"fmt"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// SharedContext is a counted handle on process-wide native state: the first
// Acquire initialises it, the last Release tears it down.
type SharedContext struct {
	mu        sync.Mutex
	refs      int
	init      func() error
	terminate func()
	log       *zap.Logger
}

func NewSharedContext(init func() error, terminate func(), log *zap.Logger) *SharedContext {
	if log == nil {
		log = zap.NewNop()
	}
	return &SharedContext{init: init, terminate: terminate, log: log}
}

// Acquire takes a reference. A failed initialisation takes none.
func (c *SharedContext) Acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refs == 0 {
		if err := c.init(); err != nil {
			return err
		}
		c.log.Debug("native context initialised")
	}
	c.refs++
	return nil
}

// Release drops a reference. Releasing an unheld context is a no-op.
func (c *SharedContext) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.refs {
	case 0:
		c.log.Warn("native context released without a reference")
		return
	case 1:
		c.log.Debug("native context terminates")
		c.terminate()
	}
	c.refs--
}

func (c *SharedContext) Refs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refs
}

// glfwContext is shared by every Window in the process.
var glfwContext = NewSharedContext(initGLFW, glfw.Terminate, nil)

// SetLogger routes native context diagnostics to log.
func SetLogger(log *zap.Logger) {
	glfwContext.mu.Lock()
	defer glfwContext.mu.Unlock()
	glfwContext.log = log
}

func initGLFW() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	// GL 3.3 core; Mac requires the forward-compatible flag.
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	return nil
}

// PollAllEvents drains the native event queue once. Installed window
// callbacks, and so every translated event, run before it returns.
func PollAllEvents() { glfw.PollEvents() }

// Time returns seconds since the native context was initialised.
func Time() float64 { return glfw.GetTime() }
