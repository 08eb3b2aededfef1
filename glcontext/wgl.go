package glcontext

import (
	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
)

// wglWindow is a hidden window owning a GL context.
type wglWindow interface {
	MakeCurrent()
	DetachCurrent()
	Destroy()
}

// wglDriver creates hidden windows. A non-nil share makes the new
// context share objects with it.
type wglDriver interface {
	create(share wglWindow) (wglWindow, error)
}

type wglContext struct {
	d   wglDriver
	win wglWindow
}

func openWGL(d wglDriver) (native, error) {
	win, err := d.create(nil)
	if err != nil {
		return nil, &graphics.Error{Op: "glcontext.New", Kind: graphics.KindNativeContextCreationFailed, Err: err}
	}
	return &wglContext{d: d, win: win}, nil
}

func (c *wglContext) makeCurrent() error {
	c.win.MakeCurrent()
	return nil
}

func (c *wglContext) dropCurrent()           { c.win.DetachCurrent() }
func (c *wglContext) bindForTeardown() error { return c.makeCurrent() }
func (c *wglContext) prepare(gles.Functions) {}
func (c *wglContext) textureTarget() uint32  { return gles.TEXTURE_2D }

func (c *wglContext) destroy() {
	c.win.DetachCurrent()
	c.win.Destroy()
}

// Only SharedMemory, which never reaches here, is supported.
func (c *wglContext) newSurface(target SurfaceTarget, _ graphics.Size) (surface, error) {
	return nil, unsupported(PlatformWGL, target)
}

// share gives each rasterization context a hidden window of its own whose
// context shares objects with the parent's.
func (c *wglContext) share() (native, error) {
	win, err := c.d.create(c.win)
	if err != nil {
		return nil, err
	}
	return &wglContext{d: c.d, win: win}, nil
}
