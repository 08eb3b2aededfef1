//go:build linux && cgo

package glcontext

/*
#cgo LDFLAGS: -lEGL

#include <stdint.h>
#include <EGL/egl.h>
#include <EGL/eglext.h>

static PFNEGLQUERYDEVICESEXTPROC query_devices_ptr = NULL;
static PFNEGLGETPLATFORMDISPLAYEXTPROC get_platform_display_ptr = NULL;
static PFNEGLCREATEIMAGEKHRPROC create_image_ptr = NULL;
static PFNEGLDESTROYIMAGEKHRPROC destroy_image_ptr = NULL;

static void load_extension_procs(void) {
	query_devices_ptr = (PFNEGLQUERYDEVICESEXTPROC) eglGetProcAddress("eglQueryDevicesEXT");
	get_platform_display_ptr = (PFNEGLGETPLATFORMDISPLAYEXTPROC) eglGetProcAddress("eglGetPlatformDisplayEXT");
	create_image_ptr = (PFNEGLCREATEIMAGEKHRPROC) eglGetProcAddress("eglCreateImageKHR");
	destroy_image_ptr = (PFNEGLDESTROYIMAGEKHRPROC) eglGetProcAddress("eglDestroyImageKHR");
}

static EGLint device_count(void) {
	EGLint n = 0;
	if (!query_devices_ptr || query_devices_ptr(0, NULL, &n) == EGL_FALSE) {
		return 0;
	}
	return n;
}

// device_display returns a display for the i'th device, or NULL.
static void *device_display(EGLint i, EGLint n) {
	EGLDeviceEXT devices[16];
	if (n > 16) {
		n = 16;
	}
	if (i >= n || !get_platform_display_ptr || query_devices_ptr(n, devices, &n) == EGL_FALSE) {
		return NULL;
	}
	return get_platform_display_ptr(EGL_PLATFORM_DEVICE_EXT, devices[i], NULL);
}

static void *default_display(void) {
	return eglGetDisplay(EGL_DEFAULT_DISPLAY);
}

static int initialize(void *d, EGLint *major, EGLint *minor) {
	return eglInitialize(d, major, minor) == EGL_TRUE;
}

static void *choose_config(void *d) {
	EGLint attrs[] = {
		EGL_SURFACE_TYPE, EGL_PBUFFER_BIT,
		EGL_RENDERABLE_TYPE, EGL_OPENGL_ES2_BIT,
		EGL_RED_SIZE, 8,
		EGL_GREEN_SIZE, 8,
		EGL_BLUE_SIZE, 8,
		EGL_ALPHA_SIZE, 8,
		EGL_NONE,
	};
	EGLConfig config = NULL;
	EGLint n = 0;
	if (eglChooseConfig(d, attrs, &config, 1, &n) == EGL_FALSE || n == 0) {
		return NULL;
	}
	return config;
}

static void *create_context(void *d, void *config) {
	EGLint attrs[] = { EGL_CONTEXT_CLIENT_VERSION, 2, EGL_NONE };
	return eglCreateContext(d, config, EGL_NO_CONTEXT, attrs);
}

static void *create_pbuffer(void *d, void *config, int w, int h) {
	EGLint attrs[] = { EGL_WIDTH, w, EGL_HEIGHT, h, EGL_NONE };
	return eglCreatePbufferSurface(d, config, attrs);
}

static int make_current(void *d, void *surface, void *ctx) {
	return eglMakeCurrent(d, surface, surface, ctx) == EGL_TRUE;
}

static void *create_image(void *d, void *ctx, unsigned int texture) {
	EGLint attrs[] = { EGL_IMAGE_PRESERVED_KHR, EGL_TRUE, EGL_NONE, EGL_NONE };
	if (!create_image_ptr) {
		return NULL;
	}
	return create_image_ptr(d, ctx, EGL_GL_TEXTURE_2D_KHR, (EGLClientBuffer)(uintptr_t)texture, attrs);
}

static void destroy_image(void *d, void *image) {
	if (destroy_image_ptr) {
		destroy_image_ptr(d, image);
	}
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/richinsley/gosharedgl/graphics"
)

func init() {
	register(PlatformEGL, driver{
		open: func(cfg DisplayConfig, size graphics.Size) (native, error) {
			return openEGL(eglAPI{}, cfg, size)
		},
		defaults: func() (DisplayConfig, func(), error) {
			return EGLConfig{}, func() {}, nil
		},
	})
}

var loadEGLProcs sync.Once

type eglAPI struct{}

// openHeadless prefers enumerating devices through EGL_EXT_device_query,
// which is what works inside GPU containers, and falls back to the default
// display. A device whose display fails to initialize is skipped.
func (eglAPI) openHeadless() (unsafe.Pointer, error) {
	loadEGLProcs.Do(func() { C.load_extension_procs() })
	log := graphics.Logger()

	n := C.device_count()
	candidates := make([]eglCandidate, 0, int(n)+1)
	for i := C.EGLint(0); i < n; i++ {
		candidates = append(candidates, eglCandidate{
			name:    fmt.Sprintf("device %d/%d", int(i), int(n)),
			display: func() unsafe.Pointer { return C.device_display(i, n) },
		})
	}
	candidates = append(candidates, eglCandidate{
		name: "EGL_DEFAULT_DISPLAY",
		display: func() unsafe.Pointer {
			if n > 0 {
				log.Warn("glcontext: no usable EGL device, using EGL_DEFAULT_DISPLAY")
			}
			return C.default_display()
		},
	})

	var major, minor C.EGLint
	display, err := firstInitialized(log, candidates, func(d unsafe.Pointer) error {
		if C.initialize(d, &major, &minor) == 0 {
			return fmt.Errorf("eglInitialize failed: %#x", int(C.eglGetError()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug("glcontext: EGL initialized", "major", int(major), "minor", int(minor))
	return display, nil
}

func (eglAPI) terminate(display unsafe.Pointer) {
	C.eglTerminate(C.EGLDisplay(display))
}

func (eglAPI) chooseConfig(display unsafe.Pointer) unsafe.Pointer {
	return C.choose_config(display)
}

func (eglAPI) createContext(display, config unsafe.Pointer) unsafe.Pointer {
	return C.create_context(display, config)
}

func (eglAPI) createPbuffer(display, config unsafe.Pointer, size graphics.Size) unsafe.Pointer {
	return C.create_pbuffer(display, config, C.int(size.Width), C.int(size.Height))
}

func (eglAPI) makeCurrent(display, surface, ctx unsafe.Pointer) error {
	if C.make_current(display, surface, ctx) == 0 {
		return fmt.Errorf("eglMakeCurrent failed: %#x", int(C.eglGetError()))
	}
	return nil
}

func (eglAPI) destroyContext(display, ctx unsafe.Pointer) {
	C.eglDestroyContext(C.EGLDisplay(display), C.EGLContext(ctx))
}

func (eglAPI) destroySurface(display, surface unsafe.Pointer) {
	C.eglDestroySurface(C.EGLDisplay(display), C.EGLSurface(surface))
}

func (eglAPI) createImage(display, ctx unsafe.Pointer, texture uint32) unsafe.Pointer {
	loadEGLProcs.Do(func() { C.load_extension_procs() })
	return C.create_image(display, ctx, C.uint(texture))
}

func (eglAPI) destroyImage(display, image unsafe.Pointer) {
	C.destroy_image(display, image)
}
