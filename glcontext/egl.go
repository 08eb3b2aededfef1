package glcontext

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/richinsley/gosharedgl/framebuffer"
	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
)

// eglDriver is the EGL API surface the EGL context uses.
type eglDriver interface {
	// openHeadless finds and initializes a display without a windowing
	// system.
	openHeadless() (unsafe.Pointer, error)
	terminate(display unsafe.Pointer)
	// chooseConfig picks a pbuffer-capable, ES2-renderable config with
	// 8-bit red, green, blue and alpha. nil means none matched.
	chooseConfig(display unsafe.Pointer) unsafe.Pointer
	createContext(display, config unsafe.Pointer) unsafe.Pointer
	createPbuffer(display, config unsafe.Pointer, size graphics.Size) unsafe.Pointer
	// makeCurrent with nil surface and context releases the current
	// context.
	makeCurrent(display, surface, ctx unsafe.Pointer) error
	destroyContext(display, ctx unsafe.Pointer)
	destroySurface(display, surface unsafe.Pointer)
	createImage(display, ctx unsafe.Pointer, texture uint32) unsafe.Pointer
	destroyImage(display, image unsafe.Pointer)
}

type eglContext struct {
	d       eglDriver
	display unsafe.Pointer
	// owned is set when the display came from openHeadless and must be
	// terminated with the context.
	owned   bool
	ctx     unsafe.Pointer
	pbuffer unsafe.Pointer
}

// eglCandidate is one display openHeadless may settle on.
type eglCandidate struct {
	name    string
	display func() unsafe.Pointer
}

// firstInitialized returns the first candidate display that initialize
// accepts. Displays that cannot be obtained or initialized are skipped.
func firstInitialized(log *slog.Logger, candidates []eglCandidate, initialize func(unsafe.Pointer) error) (unsafe.Pointer, error) {
	var errs []error
	for _, c := range candidates {
		display := c.display()
		if display == nil {
			errs = append(errs, fmt.Errorf("%s: no display", c.name))
			continue
		}
		if err := initialize(display); err != nil {
			log.Warn("glcontext: EGL display failed to initialize", "display", c.name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		log.Debug("glcontext: EGL display selected", "display", c.name)
		return display, nil
	}
	if len(errs) == 0 {
		return nil, errors.New("no EGL display candidates")
	}
	return nil, errors.Join(errs...)
}

func openEGL(d eglDriver, cfg DisplayConfig, size graphics.Size) (native, error) {
	const op = "glcontext.New"
	display, owned := cfg.(EGLConfig).Display, false
	if display == nil {
		var err error
		if display, err = d.openHeadless(); err != nil {
			return nil, &graphics.Error{Op: op, Kind: graphics.KindConfigurationUnavailable, Err: err}
		}
		owned = true
	}
	fail := func(kind graphics.Kind, format string, args ...any) (native, error) {
		if owned {
			d.terminate(display)
		}
		return nil, graphics.Errorf(op, kind, format, args...)
	}

	config := d.chooseConfig(display)
	if config == nil {
		return fail(graphics.KindConfigurationUnavailable, "no pbuffer ES2 RGBA8888 EGL config")
	}
	ctx := d.createContext(display, config)
	if ctx == nil {
		return fail(graphics.KindNativeContextCreationFailed, "eglCreateContext returned no context")
	}
	pbuffer := d.createPbuffer(display, config, size)
	if pbuffer == nil {
		d.destroyContext(display, ctx)
		return fail(graphics.KindNativeContextCreationFailed, "cannot create %dx%d pbuffer", size.Width, size.Height)
	}
	return &eglContext{d: d, display: display, owned: owned, ctx: ctx, pbuffer: pbuffer}, nil
}

func (c *eglContext) makeCurrent() error {
	return c.d.makeCurrent(c.display, c.pbuffer, c.ctx)
}

func (c *eglContext) dropCurrent() {
	c.d.makeCurrent(c.display, nil, nil)
}

func (c *eglContext) bindForTeardown() error { return c.makeCurrent() }

func (c *eglContext) prepare(gles.Functions) {}

func (c *eglContext) textureTarget() uint32 { return gles.TEXTURE_2D }

func (c *eglContext) destroy() {
	c.dropCurrent()
	c.d.destroyContext(c.display, c.ctx)
	c.d.destroySurface(c.display, c.pbuffer)
	if c.owned {
		c.d.terminate(c.display)
	}
	c.ctx, c.pbuffer = nil, nil
}

func (c *eglContext) newSurface(target SurfaceTarget, size graphics.Size) (surface, error) {
	if _, ok := target.(EGLImage); !ok {
		return nil, unsupported(PlatformEGL, target)
	}
	return &eglImage{c: c}, nil
}

// eglImage publishes by export: the image is made from the texture once,
// so publishing only has to resolve pending writes.
type eglImage struct {
	plainStorage
	c     *eglContext
	image unsafe.Pointer
}

func (s *eglImage) bind(gl gles.Functions, fb framebuffer.Triple) error {
	s.image = s.c.d.createImage(s.c.display, s.c.ctx, fb.Texture)
	if s.image == nil {
		return fmt.Errorf("eglCreateImageKHR failed for texture %d", fb.Texture)
	}
	return nil
}

func (s *eglImage) publish(r *RasterizationContext) error {
	r.gl.Flush()
	detach(r)
	r.gl.BindFramebuffer(gles.FRAMEBUFFER, 0)
	return nil
}

func (s *eglImage) handle() any { return s.image }

func (s *eglImage) release() {
	if s.image != nil {
		s.c.d.destroyImage(s.c.display, s.image)
		s.image = nil
	}
}
