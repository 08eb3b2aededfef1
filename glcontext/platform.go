// Package glcontext creates off-screen GL contexts and the rasterization
// contexts layered on them, and publishes rendered pixels into platform
// shareable surfaces.
//
// A Context owns one native GL context (CGL, GLX, EGL or a hidden WGL
// window), a default framebuffer of its creation size and the rasterizer
// handles bound to it. A RasterizationContext adds a second framebuffer of
// any size tied to a SurfaceTarget and knows how to publish into it.
//
// Nothing here locks. GL current-ness is per thread: pin the goroutine
// with runtime.LockOSThread and call MakeCurrent before touching any
// context's resources.
package glcontext

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unsafe"

	"github.com/richinsley/gosharedgl/graphics"
)

// Platform names a native GL context API.
type Platform int

const (
	PlatformUnknown Platform = iota
	PlatformCGL
	PlatformGLX
	PlatformEGL
	PlatformWGL
)

func (p Platform) String() string {
	switch p {
	case PlatformCGL:
		return "cgl"
	case PlatformGLX:
		return "glx"
	case PlatformEGL:
		return "egl"
	case PlatformWGL:
		return "wgl"
	default:
		return fmt.Sprintf("Platform(%d)", int(p))
	}
}

// ParsePlatform is the inverse of Platform.String.
func ParsePlatform(s string) (Platform, error) {
	for _, p := range []Platform{PlatformCGL, PlatformGLX, PlatformEGL, PlatformWGL} {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return PlatformUnknown, fmt.Errorf("unknown platform %q", s)
}

// DisplayConfig is the caller-supplied configuration a platform needs to
// create a context. Handles are opaque; the package never creates or frees
// them.
type DisplayConfig interface {
	Platform() Platform
	isDisplayConfig()
}

// CGLConfig carries a CGLPixelFormatObj.
type CGLConfig struct {
	PixelFormat unsafe.Pointer
}

// GLXConfig carries an X Display* and the XVisualInfo* to create the
// context and its pixmap drawable with.
type GLXConfig struct {
	Display    unsafe.Pointer
	VisualInfo unsafe.Pointer
}

// EGLConfig carries an initialized EGLDisplay. A nil Display selects a
// headless display: the first EGL device that yields one, falling back to
// EGL_DEFAULT_DISPLAY. The package initializes and terminates that display
// itself.
type EGLConfig struct {
	Display unsafe.Pointer
}

// WGLConfig needs nothing; the context is built on a hidden window.
type WGLConfig struct{}

func (CGLConfig) Platform() Platform { return PlatformCGL }
func (GLXConfig) Platform() Platform { return PlatformGLX }
func (EGLConfig) Platform() Platform { return PlatformEGL }
func (WGLConfig) Platform() Platform { return PlatformWGL }

func (CGLConfig) isDisplayConfig() {}
func (GLXConfig) isDisplayConfig() {}
func (EGLConfig) isDisplayConfig() {}
func (WGLConfig) isDisplayConfig() {}

// opener creates the native half of a Context. It must release whatever it
// allocated before returning an error.
type opener func(cfg DisplayConfig, size graphics.Size) (native, error)

// defaults opens a DisplayConfig for a platform when the caller has none.
// The returned func releases it and must run after the Context is gone.
type defaults func() (DisplayConfig, func(), error)

type driver struct {
	open     opener
	defaults defaults
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[Platform]driver)
)

// register is called from the init of each platform driver file.
func register(p Platform, d driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[p] = d
}

func lookup(p Platform) (driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[p]
	return d, ok
}

// Available returns the platforms built into this binary.
func Available() []Platform {
	driversMu.RLock()
	defer driversMu.RUnlock()
	ps := make([]Platform, 0, len(drivers))
	for p := range drivers {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	return ps
}

// OpenDefault builds a DisplayConfig for p from scratch: a pixel format on
// CGL, the default X display and a matching visual on GLX, a headless
// display on EGL. Call release after every Context created from it has
// been destroyed.
func OpenDefault(p Platform) (cfg DisplayConfig, release func(), err error) {
	d, ok := lookup(p)
	if !ok {
		return nil, nil, graphics.Errorf("glcontext.OpenDefault", graphics.KindConfigurationUnavailable,
			"%s is not built into this binary", p)
	}
	if d.defaults == nil {
		return nil, nil, graphics.Errorf("glcontext.OpenDefault", graphics.KindConfigurationUnavailable,
			"%s has no default configuration", p)
	}
	return d.defaults()
}
