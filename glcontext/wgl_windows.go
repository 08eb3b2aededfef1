//go:build windows

package glcontext

import (
	"github.com/richinsley/gosharedgl/glfwcontext"
	"github.com/richinsley/gosharedgl/graphics"
)

func init() {
	register(PlatformWGL, driver{
		open: func(DisplayConfig, graphics.Size) (native, error) {
			return openWGL(glfwAPI{})
		},
		defaults: func() (DisplayConfig, func(), error) {
			return WGLConfig{}, func() {}, nil
		},
	})
}

// hiddenSize is the size of the window behind a WGL context. Rendering
// goes to framebuffers of their own size, so it is never seen.
const hiddenSize = 32

type glfwAPI struct{}

func (glfwAPI) create(share wglWindow) (wglWindow, error) {
	if err := glfwcontext.Init(); err != nil {
		return nil, err
	}
	var parent *glfwcontext.Context
	if share != nil {
		parent = share.(*glfwcontext.Context)
	}
	c, err := glfwcontext.New(hiddenSize, hiddenSize, parent)
	if err != nil {
		return nil, err
	}
	return c, nil
}
