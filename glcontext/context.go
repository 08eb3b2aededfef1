package glcontext

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/richinsley/gosharedgl/framebuffer"
	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
	"github.com/richinsley/gosharedgl/raster"
)

// native is the platform half of a Context.
type native interface {
	makeCurrent() error
	dropCurrent()
	// bindForTeardown makes the context current ahead of destruction.
	bindForTeardown() error
	// prepare runs once, with the context current, before anything else
	// touches GL.
	prepare(gl gles.Functions)
	textureTarget() uint32
	// newSurface returns the publish strategy for target. SharedMemory
	// targets are handled by the caller and never reach it.
	newSurface(target SurfaceTarget, size graphics.Size) (surface, error)
	// destroy releases the native context and its drawables. The context
	// may be current.
	destroy()
}

// sharer is implemented by natives whose rasterization contexts run on a
// context of their own that shares objects with the parent.
type sharer interface {
	share() (native, error)
}

// Context is a native GL context with a default framebuffer and the
// rasterizer handles bound to it.
//
// A Context is reference counted: the creator holds one reference and
// every RasterizationContext built on it holds another. Destroy drops the
// creator's; teardown runs when the last one goes.
type Context struct {
	refs   atomic.Int32
	closed atomic.Bool

	platform Platform
	native   native
	gl       gles.Functions
	bridge   raster.Bridge
	log      *slog.Logger

	size   graphics.Size
	fb     framebuffer.Triple
	iface  *raster.Interface
	render *raster.Context
}

var _ graphics.Context = (*Context)(nil)

// New creates a context for cfg with a default framebuffer of size. On
// failure everything allocated so far is released and a *graphics.Error
// names the step that failed.
func New(cfg DisplayConfig, size graphics.Size, opts ...Option) (*Context, error) {
	const op = "glcontext.New"
	if cfg == nil {
		return nil, graphics.Errorf(op, graphics.KindConfigurationUnavailable, "nil display config")
	}
	if !size.Valid() {
		return nil, graphics.Errorf(op, graphics.KindInvalidSize, "size %dx%d", size.Width, size.Height)
	}
	d, ok := lookup(cfg.Platform())
	if !ok {
		return nil, graphics.Errorf(op, graphics.KindConfigurationUnavailable,
			"%s is not built into this binary", cfg.Platform())
	}
	o := newOptions(opts)

	n, err := d.open(cfg, size)
	if err != nil {
		return nil, wrap(op, graphics.KindNativeContextCreationFailed, err)
	}
	c, err := build(n, cfg.Platform(), size, o)
	if err != nil {
		return nil, wrap(op, graphics.KindUnknown, err)
	}
	c.log.Info("glcontext: context created", "platform", c.platform,
		"width", size.Width, "height", size.Height, "gl", c.iface.Version())
	return c, nil
}

// build runs the platform-neutral half of New. It owns n: on error n has
// been destroyed.
func build(n native, p Platform, size graphics.Size, o options) (c *Context, err error) {
	var undo cleanup
	defer func() {
		if err != nil {
			undo.run()
		}
	}()
	undo.push(n.destroy)

	if err := n.makeCurrent(); err != nil {
		return nil, &graphics.Error{Kind: graphics.KindNativeContextCreationFailed, Err: fmt.Errorf("make current: %w", err)}
	}
	undo.push(n.dropCurrent)

	gl := o.gl
	if gl == nil {
		if gl, err = gles.Load(); err != nil {
			return nil, &graphics.Error{Kind: graphics.KindNativeContextCreationFailed, Err: err}
		}
	}
	n.prepare(gl)

	iface, err := o.bridge.CreateInterface(gl)
	if err != nil {
		return nil, as(graphics.KindRasterizerInterfaceUnavailable, err)
	}
	undo.push(iface.Release)

	target := n.textureTarget()
	fb, err := framebuffer.Setup(gl, target, size, iface, framebuffer.TexImage2D(gl, target, size))
	if err != nil {
		return nil, err
	}
	undo.push(func() { framebuffer.Destroy(gl, fb) })

	render, err := o.bridge.CreateContext(iface, target)
	if err != nil {
		return nil, as(graphics.KindRasterizerInterfaceUnavailable, err)
	}

	c = &Context{
		platform: p,
		native:   n,
		gl:       gl,
		bridge:   o.bridge,
		log:      o.logger,
		size:     size,
		fb:       fb,
		iface:    iface,
		render:   render,
	}
	c.refs.Store(1)
	return c, nil
}

// MakeCurrent binds the context to the calling thread and binds its
// default framebuffer.
func (c *Context) MakeCurrent() error {
	if err := c.native.makeCurrent(); err != nil {
		return &graphics.Error{Op: "glcontext.MakeCurrent", Kind: graphics.KindNativeContextCreationFailed, Err: err}
	}
	c.gl.BindFramebuffer(gles.FRAMEBUFFER, c.fb.Framebuffer)
	return nil
}

// DropCurrent leaves no context current on the calling thread.
func (c *Context) DropCurrent() {
	c.native.dropCurrent()
}

// Flush makes the context current and flushes it.
func (c *Context) Flush() error {
	if err := c.MakeCurrent(); err != nil {
		return err
	}
	c.gl.Flush()
	return nil
}

// Draw makes the context current, lets fn paint a canvas the size of the
// default framebuffer and uploads the result into it.
func (c *Context) Draw(fn func(*raster.Canvas)) error {
	if err := c.MakeCurrent(); err != nil {
		return err
	}
	fn(c.render.Canvas(c.fb.Texture, c.size))
	c.render.Upload(c.fb.Texture)
	return nil
}

// Destroy drops the creator's reference. Calling it again is a no-op.
func (c *Context) Destroy() {
	if c.closed.Swap(true) {
		return
	}
	c.release()
}

func (c *Context) retain() {
	if c.refs.Add(1) <= 1 {
		panic("glcontext: retain of a destroyed Context")
	}
}

func (c *Context) release() {
	switch n := c.refs.Add(-1); {
	case n == 0:
		c.teardown()
	case n < 0:
		panic("glcontext: Context released more times than retained")
	}
}

// teardown deletes GL objects while the context is current, releases the
// rasterizer handles, then destroys the native context.
func (c *Context) teardown() {
	if err := c.native.bindForTeardown(); err != nil {
		c.log.Warn("glcontext: teardown could not make context current", "platform", c.platform, "err", err)
	}
	c.render.Forget(c.fb.Texture)
	framebuffer.Destroy(c.gl, c.fb)
	c.render.Release()
	c.iface.Release()
	c.native.destroy()
	c.log.Info("glcontext: context destroyed", "platform", c.platform)
}

// Size returns the creation size.
func (c *Context) Size() graphics.Size { return c.size }

// Platform returns the native API backing the context.
func (c *Context) Platform() Platform { return c.platform }

// FramebufferID returns the default framebuffer.
func (c *Context) FramebufferID() uint32 { return c.fb.Framebuffer }

// TextureID returns the default framebuffer's colour texture.
func (c *Context) TextureID() uint32 { return c.fb.Texture }

// Interface returns the rasterizer's GPU interface handle.
func (c *Context) Interface() *raster.Interface { return c.iface }

// RenderContext returns the rasterizer's render context handle. It is only
// usable while the context is current.
func (c *Context) RenderContext() *raster.Context { return c.render }

// Functions returns the GL entry points.
func (c *Context) Functions() gles.Functions { return c.gl }

// cleanup is a stack of release steps run in reverse on failure.
type cleanup []func()

func (u *cleanup) push(f func()) { *u = append(*u, f) }

func (u *cleanup) run() {
	for i := len(*u) - 1; i >= 0; i-- {
		(*u)[i]()
	}
	*u = nil
}

// as gives err kind unless it already carries one.
func as(kind graphics.Kind, err error) error {
	if graphics.KindOf(err) != graphics.KindUnknown {
		return err
	}
	return &graphics.Error{Kind: kind, Err: err}
}

// wrap stamps op onto err. An existing kind wins over kind.
func wrap(op string, kind graphics.Kind, err error) error {
	var e *graphics.Error
	if !errors.As(err, &e) {
		return &graphics.Error{Op: op, Kind: kind, Err: err}
	}
	switch e.Op {
	case op:
		return err
	case "":
		return &graphics.Error{Op: op, Kind: e.Kind, Err: e.Err}
	}
	return &graphics.Error{Op: op, Kind: e.Kind, Err: err}
}
