package glcontext

import (
	"errors"
	"log/slog"
	"testing"
	"unsafe"

	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/gles/glestest"
	"github.com/richinsley/gosharedgl/graphics"
	"github.com/richinsley/gosharedgl/raster"
)

// handle returns a distinct non-nil pointer for fake native objects.
func handle() unsafe.Pointer { return unsafe.Pointer(new(byte)) }

// useDriver installs d for p for the duration of the test.
func useDriver(t *testing.T, p Platform, d driver) {
	t.Helper()
	driversMu.Lock()
	prev, had := drivers[p]
	drivers[p] = d
	driversMu.Unlock()
	t.Cleanup(func() {
		driversMu.Lock()
		defer driversMu.Unlock()
		if had {
			drivers[p] = prev
		} else {
			delete(drivers, p)
		}
	})
}

// harness wires a fake GL and a shared event log, and captures the module
// logger into the same log.
type harness struct {
	log *glestest.Log
	gl  *glestest.GL
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := &glestest.Log{}
	graphics.SetLogger(slog.New(glestest.Handler(log)))
	t.Cleanup(func() { graphics.SetLogger(nil) })
	return &harness{log: log, gl: glestest.New(log)}
}

func (h *harness) options(extra ...Option) []Option {
	return append([]Option{WithFunctions(h.gl)}, extra...)
}

// failingBridge fails the chosen step and otherwise defers to the real
// bridge.
type failingBridge struct {
	failInterface bool
	failContext   bool
}

func (b failingBridge) CreateInterface(gl gles.Functions) (*raster.Interface, error) {
	if b.failInterface {
		return nil, errors.New("no native interface")
	}
	return raster.NewInterface(gl)
}

func (b failingBridge) CreateContext(iface *raster.Interface, target uint32) (*raster.Context, error) {
	if b.failContext {
		return nil, errors.New("no render context")
	}
	return raster.NewContext(iface, target)
}

// fakeCGL records CGL calls.
type fakeCGL struct {
	log        *glestest.Log
	failCreate bool
	failBind   bool
	live       int
	current    unsafe.Pointer
}

func (f *fakeCGL) driver() driver {
	return driver{open: func(cfg DisplayConfig, _ graphics.Size) (native, error) { return openCGL(f, cfg) }}
}

func (f *fakeCGL) isCurrent() bool { return f.current != nil }

func (f *fakeCGL) createContext(unsafe.Pointer) (unsafe.Pointer, error) {
	if f.failCreate {
		return nil, errors.New("kCGLBadPixelFormat")
	}
	f.live++
	f.log.Add("cgl.CreateContext")
	return handle(), nil
}

func (f *fakeCGL) setCurrent(ctx unsafe.Pointer) error {
	f.current = ctx
	if ctx == nil {
		f.log.Add("cgl.SetCurrent nil")
	} else {
		f.log.Add("cgl.SetCurrent ctx")
	}
	return nil
}

func (f *fakeCGL) destroyContext(unsafe.Pointer) {
	f.live--
	f.log.Add("cgl.DestroyContext")
}

func (f *fakeCGL) texImageIOSurface(ctx, surface unsafe.Pointer, size graphics.Size) error {
	if f.failBind {
		return errors.New("kCGLBadValue")
	}
	f.log.Add("cgl.TexImageIOSurface2D %dx%d", size.Width, size.Height)
	return nil
}

func (f *fakeCGL) surfaceID(unsafe.Pointer) uint32 { return 7 }

// fakeGLX records GLX and Xlib calls.
type fakeGLX struct {
	log         *glestest.Log
	failPixmap  bool
	failContext bool
	pixmaps     int
	contexts    int
	drawable    uint64
	current     unsafe.Pointer
}

func (f *fakeGLX) driver() driver {
	return driver{open: func(cfg DisplayConfig, size graphics.Size) (native, error) { return openGLX(f, cfg, size) }}
}

func (f *fakeGLX) isCurrent() bool { return f.current != nil }

func (f *fakeGLX) createPixmap(display, visual unsafe.Pointer, size graphics.Size) (uint64, uint64) {
	if f.failPixmap {
		return 0, 0
	}
	f.pixmaps++
	f.log.Add("glx.CreatePixmap %dx%d", size.Width, size.Height)
	return 100, 101
}

func (f *fakeGLX) destroyPixmap(display unsafe.Pointer, pixmap, glxPixmap uint64) {
	f.pixmaps--
	f.log.Add("glx.DestroyPixmap %d %d", pixmap, glxPixmap)
}

func (f *fakeGLX) createContext(display, visual unsafe.Pointer) unsafe.Pointer {
	if f.failContext {
		return nil
	}
	f.contexts++
	f.log.Add("glx.CreateContext")
	return handle()
}

func (f *fakeGLX) destroyContext(display, ctx unsafe.Pointer) {
	f.contexts--
	f.log.Add("glx.DestroyContext")
}

func (f *fakeGLX) makeCurrent(display unsafe.Pointer, drawable uint64, ctx unsafe.Pointer) error {
	f.drawable, f.current = drawable, ctx
	f.log.Add("glx.MakeCurrent %d", drawable)
	return nil
}

func (f *fakeGLX) copyArea(display unsafe.Pointer, src, dst uint64, srcX, srcY int, size graphics.Size) {
	f.log.Add("glx.CopyArea %d->%d at %d,%d %dx%d current=%v", src, dst, srcX, srcY, size.Width, size.Height, f.current != nil)
}

// fakeEGL records EGL calls.
type fakeEGL struct {
	log          *glestest.Log
	noDevice     bool
	noConfig     bool
	failContext  bool
	failPbuffer  bool
	failImage    bool
	displays     int
	contexts     int
	surfaces     int
	images       int
	imageCreates int
	current      unsafe.Pointer
}

func (f *fakeEGL) driver() driver {
	return driver{open: func(cfg DisplayConfig, size graphics.Size) (native, error) { return openEGL(f, cfg, size) }}
}

func (f *fakeEGL) isCurrent() bool { return f.current != nil }

func (f *fakeEGL) openHeadless() (unsafe.Pointer, error) {
	if f.noDevice {
		return nil, errors.New("eglGetDisplay(EGL_DEFAULT_DISPLAY) failed")
	}
	f.displays++
	f.log.Add("egl.Initialize")
	return handle(), nil
}

func (f *fakeEGL) terminate(unsafe.Pointer) {
	f.displays--
	f.log.Add("egl.Terminate")
}

func (f *fakeEGL) chooseConfig(unsafe.Pointer) unsafe.Pointer {
	if f.noConfig {
		return nil
	}
	return handle()
}

func (f *fakeEGL) createContext(display, config unsafe.Pointer) unsafe.Pointer {
	if f.failContext {
		return nil
	}
	f.contexts++
	f.log.Add("egl.CreateContext")
	return handle()
}

func (f *fakeEGL) createPbuffer(display, config unsafe.Pointer, size graphics.Size) unsafe.Pointer {
	if f.failPbuffer {
		return nil
	}
	f.surfaces++
	f.log.Add("egl.CreatePbufferSurface %dx%d", size.Width, size.Height)
	return handle()
}

func (f *fakeEGL) makeCurrent(display, surface, ctx unsafe.Pointer) error {
	f.current = ctx
	f.log.Add("egl.MakeCurrent %v", ctx != nil)
	return nil
}

func (f *fakeEGL) destroyContext(display, ctx unsafe.Pointer) {
	f.contexts--
	f.log.Add("egl.DestroyContext")
}

func (f *fakeEGL) destroySurface(display, surface unsafe.Pointer) {
	f.surfaces--
	f.log.Add("egl.DestroySurface")
}

func (f *fakeEGL) createImage(display, ctx unsafe.Pointer, texture uint32) unsafe.Pointer {
	if f.failImage {
		return nil
	}
	f.images++
	f.imageCreates++
	f.log.Add("egl.CreateImageKHR %d", texture)
	return handle()
}

func (f *fakeEGL) destroyImage(display, image unsafe.Pointer) {
	f.images--
	f.log.Add("egl.DestroyImageKHR")
}

// fakeWGL hands out fake hidden windows.
type fakeWGL struct {
	log        *glestest.Log
	failCreate int // fail the n'th create, 1-based; 0 never
	creates    int
	live       int
	current    *fakeWindow
}

type fakeWindow struct {
	f      *fakeWGL
	id     int
	shared bool
}

func (f *fakeWGL) driver() driver {
	return driver{open: func(DisplayConfig, graphics.Size) (native, error) { return openWGL(f) }}
}

func (f *fakeWGL) isCurrent() bool { return f.current != nil }

func (f *fakeWGL) create(share wglWindow) (wglWindow, error) {
	f.creates++
	if f.creates == f.failCreate {
		return nil, errors.New("glfw: window creation failed")
	}
	f.live++
	w := &fakeWindow{f: f, id: f.creates, shared: share != nil}
	f.log.Add("wgl.Create %d shared=%v", w.id, w.shared)
	return w, nil
}

func (w *fakeWindow) MakeCurrent() {
	w.f.current = w
	w.f.log.Add("wgl.MakeCurrent %d", w.id)
}

func (w *fakeWindow) DetachCurrent() {
	w.f.current = nil
	w.f.log.Add("wgl.DetachCurrent")
}

func (w *fakeWindow) Destroy() {
	w.f.live--
	w.f.log.Add("wgl.Destroy %d", w.id)
}

// fakeSection is an in-memory shared memory section.
type fakeSection struct {
	name string
	buf  []byte
}

func (s *fakeSection) Name() string  { return s.name }
func (s *fakeSection) Bytes() []byte { return s.buf }
