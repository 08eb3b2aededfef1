package glcontext

import (
	"unsafe"

	"github.com/richinsley/gosharedgl/framebuffer"
	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
)

// SurfaceTarget is the shareable surface a RasterizationContext publishes
// into. Its pixel size must match the rasterization context's size.
type SurfaceTarget interface {
	isSurfaceTarget()
}

// IOSurface binds an IOSurfaceRef as the framebuffer's texture storage.
// CGL only. The surface stays owned by the caller.
type IOSurface struct {
	Ref unsafe.Pointer
}

// Pixmap is an X pixmap publishes are copied into. GLX only. The pixmap
// stays owned by the caller.
type Pixmap struct {
	XID uint64
}

// EGLImage exports the framebuffer's texture as an EGLImageKHR, created
// with the rasterization context and destroyed with it. EGL only.
type EGLImage struct{}

// Section is a mapped memory region published pixels are read back into.
// *sharedmemory.SharedMemory implements it.
type Section interface {
	Name() string
	Bytes() []byte
}

// SharedMemory reads the framebuffer back into Mem as top-down RGBA rows.
// Available on every platform; the only target WGL supports.
type SharedMemory struct {
	Mem Section
}

func (IOSurface) isSurfaceTarget()    {}
func (Pixmap) isSurfaceTarget()       {}
func (EGLImage) isSurfaceTarget()     {}
func (SharedMemory) isSurfaceTarget() {}

// surface is one publish strategy.
type surface interface {
	// storage is the framebuffer attach step that gives the colour
	// texture its storage. An error means the surface could not back it.
	storage(gl gles.Functions, target uint32, size graphics.Size) func() error
	// bind runs once the framebuffer is complete.
	bind(gl gles.Functions, fb framebuffer.Triple) error
	publish(r *RasterizationContext) error
	handle() any
	// release undoes bind. The owning context is current.
	release()
}

// plainStorage is embedded by strategies that copy out of an ordinary
// RGBA texture.
type plainStorage struct{}

func (plainStorage) storage(gl gles.Functions, target uint32, size graphics.Size) func() error {
	alloc := framebuffer.TexImage2D(gl, target, size)
	return func() error {
		alloc()
		return nil
	}
}

func (plainStorage) bind(gles.Functions, framebuffer.Triple) error { return nil }

func (plainStorage) release() {}

func unsupported(p Platform, target SurfaceTarget) error {
	return graphics.Errorf("glcontext.NewRasterizationContext", graphics.KindSurfaceBindingFailed,
		"%s cannot publish to %T", p, target)
}

// detach drops the colour attachment so the driver resolves every pending
// write to the texture. RasterizationContext.MakeCurrent puts it back.
func detach(r *RasterizationContext) {
	r.gl.BindFramebuffer(gles.FRAMEBUFFER, r.fb.Framebuffer)
	r.gl.FramebufferTexture2D(gles.FRAMEBUFFER, gles.COLOR_ATTACHMENT0, r.texTarget, 0, 0)
	r.detached = true
}
