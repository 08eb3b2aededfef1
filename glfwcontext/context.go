// Package glfwcontext builds headless GL contexts on hidden GLFW windows.
package glfwcontext

import (
	"runtime"
	"sync"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/gosharedgl/graphics"
)

// Context is a GL 4.1 core context owned by a hidden window.
type Context struct {
	window *glfw.Window
}

// New creates a hidden window of the given size. When share is non-nil the
// new context shares textures and buffers with it. Init must have
// succeeded first.
func New(width, height int, share *Context) (*Context, error) {
	var sharewin *glfw.Window
	if share != nil {
		sharewin = share.window
	}

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.StencilBits, 8)
	glfw.WindowHint(glfw.DepthBits, 24)

	win, err := glfw.CreateWindow(width, height, "gosharedgl", nil, sharewin)
	if err != nil {
		return nil, err
	}
	graphics.Logger().Debug("glfwcontext: hidden window created", "width", width, "height", height, "shared", share != nil)
	return &Context{window: win}, nil
}

// MakeCurrent makes the context current on the calling thread.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// DetachCurrent makes no context current on the calling thread.
func (c *Context) DetachCurrent() {
	glfw.DetachCurrentContext()
}

// Destroy destroys the window and its context.
func (c *Context) Destroy() {
	c.window.Destroy()
	c.window = nil
}

// FramebufferSize returns the size of the window's default framebuffer.
func (c *Context) FramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

var (
	initOnce sync.Once
	initErr  error
)

// Init initializes GLFW once. GLFW must be driven from the main thread, so
// the first call locks the calling goroutine to its thread.
func Init() error {
	initOnce.Do(func() {
		runtime.LockOSThread()
		if initErr = glfw.Init(); initErr == nil {
			graphics.Logger().Info("glfwcontext: GLFW initialized")
		}
	})
	return initErr
}

// Terminate shuts GLFW down. Every Context must have been destroyed.
func Terminate() {
	glfw.Terminate()
	graphics.Logger().Info("glfwcontext: GLFW terminated")
}
