package glcontext

import (
	"fmt"
	"unsafe"

	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
)

// glxDriver is the Xlib and GLX API surface the GLX context uses.
type glxDriver interface {
	// createPixmap creates an X pixmap on the root window at the visual's
	// depth and a GLX pixmap drawable on it. Zero ids mean failure; nothing
	// is left allocated.
	createPixmap(display, visual unsafe.Pointer, size graphics.Size) (pixmap, glxPixmap uint64)
	destroyPixmap(display unsafe.Pointer, pixmap, glxPixmap uint64)
	createContext(display, visual unsafe.Pointer) unsafe.Pointer
	destroyContext(display, ctx unsafe.Pointer)
	// makeCurrent with a zero drawable and nil context releases the
	// current context.
	makeCurrent(display unsafe.Pointer, drawable uint64, ctx unsafe.Pointer) error
	copyArea(display unsafe.Pointer, src, dst uint64, srcX, srcY int, size graphics.Size)
}

// glxContext renders into a GLX pixmap, since GLX has no surfaceless
// context.
type glxContext struct {
	d         glxDriver
	display   unsafe.Pointer
	ctx       unsafe.Pointer
	pixmap    uint64
	glxPixmap uint64
	size      graphics.Size
}

func openGLX(d glxDriver, cfg DisplayConfig, size graphics.Size) (native, error) {
	const op = "glcontext.New"
	c := cfg.(GLXConfig)
	if c.Display == nil || c.VisualInfo == nil {
		return nil, graphics.Errorf(op, graphics.KindConfigurationUnavailable, "GLX needs a display and a visual")
	}
	pixmap, glxPixmap := d.createPixmap(c.Display, c.VisualInfo, size)
	if pixmap == 0 || glxPixmap == 0 {
		return nil, graphics.Errorf(op, graphics.KindNativeContextCreationFailed, "cannot create %dx%d GLX pixmap", size.Width, size.Height)
	}
	ctx := d.createContext(c.Display, c.VisualInfo)
	if ctx == nil {
		d.destroyPixmap(c.Display, pixmap, glxPixmap)
		return nil, graphics.Errorf(op, graphics.KindNativeContextCreationFailed, "glXCreateContext returned no context")
	}
	return &glxContext{
		d:         d,
		display:   c.Display,
		ctx:       ctx,
		pixmap:    pixmap,
		glxPixmap: glxPixmap,
		size:      size,
	}, nil
}

func (c *glxContext) makeCurrent() error {
	return c.d.makeCurrent(c.display, c.glxPixmap, c.ctx)
}

func (c *glxContext) dropCurrent() {
	c.d.makeCurrent(c.display, 0, nil)
}

// bindForTeardown drops before rebinding. Binding over a context that
// was never flushed corrupts the next bind on some drivers.
func (c *glxContext) bindForTeardown() error {
	c.dropCurrent()
	return c.makeCurrent()
}

func (c *glxContext) prepare(gles.Functions) {}

func (c *glxContext) textureTarget() uint32 { return gles.TEXTURE_2D }

func (c *glxContext) destroy() {
	c.dropCurrent()
	c.d.destroyContext(c.display, c.ctx)
	c.d.destroyPixmap(c.display, c.pixmap, c.glxPixmap)
	c.ctx, c.pixmap, c.glxPixmap = nil, 0, 0
}

func (c *glxContext) newSurface(target SurfaceTarget, size graphics.Size) (surface, error) {
	t, ok := target.(Pixmap)
	if !ok {
		return nil, unsupported(PlatformGLX, target)
	}
	if t.XID == 0 {
		return nil, graphics.Errorf("glcontext.NewRasterizationContext", graphics.KindSurfaceBindingFailed, "zero pixmap XID")
	}
	return &pixmapSurface{c: c, xid: t.XID}, nil
}

// pixmapSurface publishes by blitting into the parent's GLX pixmap and
// copying that region into the target pixmap.
type pixmapSurface struct {
	plainStorage
	c   *glxContext
	xid uint64
}

// publish leaves no context current. GL's origin is bottom-left, so the
// blitted rows sit at the bottom of the parent pixmap; the copy reads from
// y = parent height - height.
func (s *pixmapSurface) publish(r *RasterizationContext) error {
	gl := r.gl
	w, h := int32(r.size.Width), int32(r.size.Height)
	gl.BindFramebuffer(gles.READ_FRAMEBUFFER, r.fb.Framebuffer)
	gl.BindFramebuffer(gles.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, gles.COLOR_BUFFER_BIT, gles.NEAREST)
	if e := gl.GetError(); e != gles.NO_ERROR {
		return fmt.Errorf("blit into GLX pixmap: GL error %#x", e)
	}
	gl.Finish()
	r.parent.DropCurrent()

	s.c.d.copyArea(s.c.display, s.c.pixmap, s.xid, 0, s.c.size.Height-r.size.Height, r.size)
	return nil
}

func (s *pixmapSurface) handle() any { return s.xid }
