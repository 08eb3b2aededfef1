//go:build darwin && cgo

package glcontext

/*
#cgo CFLAGS: -DGL_SILENCE_DEPRECATION
#cgo LDFLAGS: -framework OpenGL -framework IOSurface -framework CoreFoundation

#include <OpenGL/OpenGL.h>
#include <OpenGL/CGLIOSurface.h>
#include <IOSurface/IOSurfaceRef.h>

#define GSGL_TEXTURE_RECTANGLE 0x84F5
#define GSGL_RGBA 0x1908
#define GSGL_BGRA 0x80E1
#define GSGL_UNSIGNED_INT_8_8_8_8_REV 0x8367

static CGLPixelFormatObj choose_pixel_format(void) {
	CGLPixelFormatAttribute attrs[] = {
		kCGLPFAOpenGLProfile, (CGLPixelFormatAttribute)kCGLOGLPVersion_3_2_Core,
		kCGLPFAColorSize, (CGLPixelFormatAttribute)24,
		kCGLPFAAlphaSize, (CGLPixelFormatAttribute)8,
		kCGLPFADepthSize, (CGLPixelFormatAttribute)24,
		kCGLPFAStencilSize, (CGLPixelFormatAttribute)8,
		kCGLPFAAccelerated,
		kCGLPFAAllowOfflineRenderers,
		(CGLPixelFormatAttribute)0,
	};
	CGLPixelFormatObj pf = NULL;
	GLint n = 0;
	if (CGLChoosePixelFormat(attrs, &pf, &n) != kCGLNoError || n == 0) {
		return NULL;
	}
	return pf;
}

static CGLError tex_image_iosurface(CGLContextObj ctx, IOSurfaceRef surface, int w, int h) {
	return CGLTexImageIOSurface2D(ctx, GSGL_TEXTURE_RECTANGLE, GSGL_RGBA, w, h,
		GSGL_BGRA, GSGL_UNSIGNED_INT_8_8_8_8_REV, surface, 0);
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/richinsley/gosharedgl/graphics"
)

func init() {
	register(PlatformCGL, driver{
		open: func(cfg DisplayConfig, _ graphics.Size) (native, error) {
			return openCGL(cglAPI{}, cfg)
		},
		defaults: func() (DisplayConfig, func(), error) {
			pf, err := ChoosePixelFormat()
			if err != nil {
				return nil, nil, err
			}
			return CGLConfig{PixelFormat: pf}, func() { ReleasePixelFormat(pf) }, nil
		},
	})
}

// ChoosePixelFormat returns an accelerated core-profile RGBA8 pixel format
// with 24-bit depth and 8-bit stencil. Release it with ReleasePixelFormat.
func ChoosePixelFormat() (unsafe.Pointer, error) {
	pf := C.choose_pixel_format()
	if pf == nil {
		return nil, graphics.Errorf("glcontext.ChoosePixelFormat", graphics.KindConfigurationUnavailable,
			"no matching CGL pixel format")
	}
	return unsafe.Pointer(pf), nil
}

// ReleasePixelFormat drops a pixel format returned by ChoosePixelFormat.
func ReleasePixelFormat(pf unsafe.Pointer) {
	C.CGLReleasePixelFormat(C.CGLPixelFormatObj(pf))
}

type cglAPI struct{}

func cglError(fn string, e C.CGLError) error {
	return fmt.Errorf("%s: %s", fn, C.GoString(C.CGLErrorString(e)))
}

func (cglAPI) createContext(pf unsafe.Pointer) (unsafe.Pointer, error) {
	var ctx C.CGLContextObj
	if e := C.CGLCreateContext(C.CGLPixelFormatObj(pf), nil, &ctx); e != C.kCGLNoError {
		return nil, cglError("CGLCreateContext", e)
	}
	return unsafe.Pointer(ctx), nil
}

func (cglAPI) setCurrent(ctx unsafe.Pointer) error {
	if e := C.CGLSetCurrentContext(C.CGLContextObj(ctx)); e != C.kCGLNoError {
		return cglError("CGLSetCurrentContext", e)
	}
	return nil
}

func (cglAPI) destroyContext(ctx unsafe.Pointer) {
	C.CGLDestroyContext(C.CGLContextObj(ctx))
}

func (cglAPI) texImageIOSurface(ctx, surface unsafe.Pointer, size graphics.Size) error {
	e := C.tex_image_iosurface(C.CGLContextObj(ctx), C.IOSurfaceRef(surface), C.int(size.Width), C.int(size.Height))
	if e != C.kCGLNoError {
		return cglError("CGLTexImageIOSurface2D", e)
	}
	return nil
}

func (cglAPI) surfaceID(surface unsafe.Pointer) uint32 {
	return uint32(C.IOSurfaceGetID(C.IOSurfaceRef(surface)))
}
