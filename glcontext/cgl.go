package glcontext

import (
	"fmt"
	"unsafe"

	"github.com/richinsley/gosharedgl/framebuffer"
	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
)

// cglDriver is the CGL and IOSurface API surface the CGL context uses.
type cglDriver interface {
	createContext(pixelFormat unsafe.Pointer) (unsafe.Pointer, error)
	// setCurrent with a nil context clears the current context.
	setCurrent(ctx unsafe.Pointer) error
	destroyContext(ctx unsafe.Pointer)
	// texImageIOSurface binds surface as the storage of the rectangle
	// texture currently bound.
	texImageIOSurface(ctx, surface unsafe.Pointer, size graphics.Size) error
	surfaceID(surface unsafe.Pointer) uint32
}

type cglContext struct {
	d   cglDriver
	ctx unsafe.Pointer
}

func openCGL(d cglDriver, cfg DisplayConfig) (native, error) {
	const op = "glcontext.New"
	pf := cfg.(CGLConfig).PixelFormat
	if pf == nil {
		return nil, graphics.Errorf(op, graphics.KindConfigurationUnavailable, "nil CGL pixel format")
	}
	ctx, err := d.createContext(pf)
	if err != nil {
		return nil, &graphics.Error{Op: op, Kind: graphics.KindNativeContextCreationFailed, Err: err}
	}
	if ctx == nil {
		return nil, graphics.Errorf(op, graphics.KindNativeContextCreationFailed, "CGLCreateContext returned no context")
	}
	return &cglContext{d: d, ctx: ctx}, nil
}

func (c *cglContext) makeCurrent() error     { return c.d.setCurrent(c.ctx) }
func (c *cglContext) dropCurrent()           { c.d.setCurrent(nil) }
func (c *cglContext) bindForTeardown() error { return c.makeCurrent() }
func (c *cglContext) textureTarget() uint32  { return gles.TEXTURE_RECTANGLE }

// IOSurface interop samples rectangle textures.
func (c *cglContext) prepare(gl gles.Functions) {
	gl.Enable(gles.TEXTURE_RECTANGLE)
}

func (c *cglContext) destroy() {
	c.d.setCurrent(nil)
	c.d.destroyContext(c.ctx)
	c.ctx = nil
}

func (c *cglContext) newSurface(target SurfaceTarget, size graphics.Size) (surface, error) {
	t, ok := target.(IOSurface)
	if !ok {
		return nil, unsupported(PlatformCGL, target)
	}
	if t.Ref == nil {
		return nil, graphics.Errorf("glcontext.NewRasterizationContext", graphics.KindSurfaceBindingFailed, "nil IOSurfaceRef")
	}
	return &ioSurface{c: c, ref: t.Ref}, nil
}

// ioSurface publishes by direct binding: the texture's storage is the
// IOSurface, so publishing only has to resolve pending writes.
type ioSurface struct {
	c   *cglContext
	ref unsafe.Pointer
}

func (s *ioSurface) storage(gl gles.Functions, target uint32, size graphics.Size) func() error {
	return func() error {
		if err := s.c.d.texImageIOSurface(s.c.ctx, s.ref, size); err != nil {
			return fmt.Errorf("CGLTexImageIOSurface2D: %w", err)
		}
		return nil
	}
}

func (s *ioSurface) bind(gles.Functions, framebuffer.Triple) error { return nil }

func (s *ioSurface) publish(r *RasterizationContext) error {
	r.gl.Flush()
	detach(r)
	return nil
}

func (s *ioSurface) handle() any { return s.c.d.surfaceID(s.ref) }

// The IOSurface belongs to the caller.
func (s *ioSurface) release() {}
