package glcontext

import (
	"sync/atomic"

	"github.com/richinsley/gosharedgl/framebuffer"
	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
	"github.com/richinsley/gosharedgl/raster"
)

// RasterizationContext is a render target of its own size layered on a
// Context and tied to a shareable surface.
type RasterizationContext struct {
	closed atomic.Bool

	parent *Context
	// own, iface and the render context are set when the platform runs
	// rasterization on a context of its own (WGL).
	own    native
	iface  *raster.Interface
	render *raster.Context

	gl        gles.Functions
	size      graphics.Size
	target    SurfaceTarget
	texTarget uint32
	fb        framebuffer.Triple
	surface   surface
	// detached is set by publishes that drop the colour attachment.
	detached bool
}

var _ graphics.Context = (*RasterizationContext)(nil)

// NewRasterizationContext builds a framebuffer of size on parent, tied to
// target. The parent stays alive until the rasterization context is
// destroyed.
func NewRasterizationContext(parent *Context, target SurfaceTarget, size graphics.Size) (r *RasterizationContext, err error) {
	const op = "glcontext.NewRasterizationContext"
	if parent == nil || parent.refs.Load() <= 0 {
		return nil, graphics.Errorf(op, graphics.KindNativeContextCreationFailed, "parent context is destroyed")
	}
	if !size.Valid() {
		return nil, graphics.Errorf(op, graphics.KindInvalidSize, "size %dx%d", size.Width, size.Height)
	}
	if target == nil {
		return nil, graphics.Errorf(op, graphics.KindSurfaceBindingFailed, "nil surface target")
	}

	var s surface
	if shm, ok := target.(SharedMemory); ok {
		s, err = newReadback(shm, size)
	} else {
		s, err = parent.native.newSurface(target, size)
	}
	if err != nil {
		return nil, wrap(op, graphics.KindSurfaceBindingFailed, err)
	}

	var undo cleanup
	defer func() {
		if err != nil {
			undo.run()
		}
	}()

	r = &RasterizationContext{
		parent:    parent,
		render:    parent.render,
		gl:        parent.gl,
		size:      size,
		target:    target,
		texTarget: parent.native.textureTarget(),
		surface:   s,
	}
	caps := parent.iface

	if sh, ok := parent.native.(sharer); ok {
		if err := r.openOwn(sh, &undo); err != nil {
			return nil, wrap(op, graphics.KindNativeContextCreationFailed, err)
		}
		caps = r.iface
	} else if err := parent.MakeCurrent(); err != nil {
		return nil, wrap(op, graphics.KindNativeContextCreationFailed, err)
	}

	var attachErr error
	attach := s.storage(r.gl, r.texTarget, size)
	fb, err := framebuffer.Setup(r.gl, r.texTarget, size, caps, func() { attachErr = attach() })
	if err == nil {
		undo.push(func() { framebuffer.Destroy(r.gl, fb) })
		r.fb = fb
	}
	if attachErr != nil {
		return nil, wrap(op, graphics.KindSurfaceBindingFailed, attachErr)
	}
	if err != nil {
		return nil, wrap(op, graphics.KindFramebufferIncomplete, err)
	}

	if err := s.bind(r.gl, fb); err != nil {
		return nil, wrap(op, graphics.KindSurfaceBindingFailed, err)
	}

	parent.retain()
	parent.log.Debug("glcontext: rasterization context created", "platform", parent.platform,
		"target", targetName(target), "framebuffer", fb.Framebuffer, "width", size.Width, "height", size.Height)
	return r, nil
}

// openOwn creates the context-owning variant's native context and
// rasterizer handles, pushing their release onto undo.
func (r *RasterizationContext) openOwn(sh sharer, undo *cleanup) error {
	own, err := sh.share()
	if err != nil {
		return err
	}
	undo.push(own.destroy)
	if err := own.makeCurrent(); err != nil {
		return err
	}
	own.prepare(r.gl)

	bridge := r.parent.bridge
	iface, err := bridge.CreateInterface(r.gl)
	if err != nil {
		return as(graphics.KindRasterizerInterfaceUnavailable, err)
	}
	undo.push(iface.Release)
	render, err := bridge.CreateContext(iface, r.texTarget)
	if err != nil {
		return as(graphics.KindRasterizerInterfaceUnavailable, err)
	}
	undo.push(render.Release)

	r.own, r.iface, r.render = own, iface, render
	return nil
}

// MakeCurrent binds the context that owns the framebuffer and binds the
// framebuffer, re-attaching its colour texture if a publish dropped it.
func (r *RasterizationContext) MakeCurrent() error {
	if r.own != nil {
		if err := r.own.makeCurrent(); err != nil {
			return &graphics.Error{Op: "glcontext.MakeCurrent", Kind: graphics.KindNativeContextCreationFailed, Err: err}
		}
	} else if err := r.parent.MakeCurrent(); err != nil {
		return err
	}
	r.gl.BindFramebuffer(gles.FRAMEBUFFER, r.fb.Framebuffer)
	if r.detached {
		r.gl.FramebufferTexture2D(gles.FRAMEBUFFER, gles.COLOR_ATTACHMENT0, r.texTarget, r.fb.Texture, 0)
		r.detached = false
	}
	return nil
}

// DropCurrent leaves no context current on the calling thread.
func (r *RasterizationContext) DropCurrent() {
	if r.own != nil {
		r.own.dropCurrent()
		return
	}
	r.parent.DropCurrent()
}

// Flush makes the context current and flushes it.
func (r *RasterizationContext) Flush() error {
	if err := r.MakeCurrent(); err != nil {
		return err
	}
	r.gl.Flush()
	return nil
}

// Draw makes the context current, lets fn paint a canvas of the context's
// size and uploads the result into the framebuffer's texture.
func (r *RasterizationContext) Draw(fn func(*raster.Canvas)) error {
	if err := r.MakeCurrent(); err != nil {
		return err
	}
	fn(r.render.Canvas(r.fb.Texture, r.size))
	r.render.Upload(r.fb.Texture)
	return nil
}

// FlushToSurface publishes the framebuffer's contents into the surface
// target. The blit-and-copy strategy (Pixmap) leaves no context current.
func (r *RasterizationContext) FlushToSurface() error {
	if err := r.MakeCurrent(); err != nil {
		return err
	}
	if err := r.surface.publish(r); err != nil {
		return wrap("glcontext.FlushToSurface", graphics.KindSurfaceBindingFailed, err)
	}
	return nil
}

// Destroy releases the surface binding and the framebuffer, then the
// parent reference. Calling it again is a no-op.
func (r *RasterizationContext) Destroy() {
	if r.closed.Swap(true) {
		return
	}
	if err := r.MakeCurrent(); err != nil {
		r.parent.log.Warn("glcontext: rasterization teardown could not make context current", "err", err)
	}
	r.surface.release()
	r.render.Forget(r.fb.Texture)
	framebuffer.Destroy(r.gl, r.fb)
	if r.own != nil {
		r.render.Release()
		r.iface.Release()
		r.own.destroy()
	}
	r.parent.log.Debug("glcontext: rasterization context destroyed", "target", targetName(r.target))
	r.parent.release()
}

// Size returns the framebuffer size.
func (r *RasterizationContext) Size() graphics.Size { return r.size }

// FramebufferID returns the framebuffer drawing should target.
func (r *RasterizationContext) FramebufferID() uint32 { return r.fb.Framebuffer }

// TextureID returns the framebuffer's colour texture.
func (r *RasterizationContext) TextureID() uint32 { return r.fb.Texture }

// Target returns the surface target the context was created with.
func (r *RasterizationContext) Target() SurfaceTarget { return r.target }

// Parent returns the context the rasterization context is layered on.
func (r *RasterizationContext) Parent() *Context { return r.parent }

// RenderContext returns the rasterizer render context drawing into this
// framebuffer.
func (r *RasterizationContext) RenderContext() *raster.Context { return r.render }

// SurfaceHandle returns what a compositor needs to consume the surface:
// the IOSurfaceID (uint32), the target pixmap XID (uint64), the
// EGLImageKHR (unsafe.Pointer) or the shared memory name (string).
func (r *RasterizationContext) SurfaceHandle() any { return r.surface.handle() }

func targetName(t SurfaceTarget) string {
	switch t.(type) {
	case IOSurface:
		return "iosurface"
	case Pixmap:
		return "pixmap"
	case EGLImage:
		return "eglimage"
	case SharedMemory:
		return "shm"
	}
	return "unknown"
}
