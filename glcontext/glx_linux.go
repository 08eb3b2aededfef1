//go:build linux && !android && cgo

package glcontext

/*
#cgo LDFLAGS: -lX11 -lGL

#include <stdlib.h>
#include <X11/Xlib.h>
#include <X11/Xutil.h>
#include <GL/glx.h>

static Pixmap create_pixmap(Display *d, XVisualInfo *vi, int w, int h) {
	return XCreatePixmap(d, RootWindow(d, vi->screen), w, h, vi->depth);
}

static XVisualInfo *choose_visual(Display *d) {
	int attrs[] = {
		GLX_RGBA,
		GLX_RED_SIZE, 8, GLX_GREEN_SIZE, 8, GLX_BLUE_SIZE, 8, GLX_ALPHA_SIZE, 8,
		GLX_DEPTH_SIZE, 24, GLX_STENCIL_SIZE, 8,
		None,
	};
	return glXChooseVisual(d, DefaultScreen(d), attrs);
}

static void copy_area(Display *d, Pixmap src, Pixmap dst, int sx, int sy, int w, int h) {
	GC gc = XCreateGC(d, dst, 0, NULL);
	XCopyArea(d, src, dst, gc, sx, sy, w, h, 0, 0);
	XFreeGC(d, gc);
}
*/
import "C"

import (
	"errors"
	"unsafe"

	"github.com/richinsley/gosharedgl/graphics"
)

func init() {
	register(PlatformGLX, driver{
		open: func(cfg DisplayConfig, size graphics.Size) (native, error) {
			return openGLX(glxAPI{}, cfg, size)
		},
		defaults: func() (DisplayConfig, func(), error) {
			return OpenGLXDisplay("")
		},
	})
}

// OpenGLXDisplay opens the named X display ("" for $DISPLAY) and picks an
// RGBA8 visual with depth and stencil. release frees the visual and closes
// the display.
func OpenGLXDisplay(name string) (cfg GLXConfig, release func(), err error) {
	const op = "glcontext.OpenGLXDisplay"
	var cname *C.char
	if name != "" {
		cname = C.CString(name)
		defer C.free(unsafe.Pointer(cname))
	}
	d := C.XOpenDisplay(cname)
	if d == nil {
		return GLXConfig{}, nil, graphics.Errorf(op, graphics.KindConfigurationUnavailable, "cannot open X display %q", name)
	}
	vi := C.choose_visual(d)
	if vi == nil {
		C.XCloseDisplay(d)
		return GLXConfig{}, nil, graphics.Errorf(op, graphics.KindConfigurationUnavailable, "no RGBA8 GLX visual")
	}
	release = func() {
		C.XFree(unsafe.Pointer(vi))
		C.XCloseDisplay(d)
	}
	return GLXConfig{Display: unsafe.Pointer(d), VisualInfo: unsafe.Pointer(vi)}, release, nil
}

type glxAPI struct{}

func dpy(p unsafe.Pointer) *C.Display { return (*C.Display)(p) }

func (glxAPI) createPixmap(display, visual unsafe.Pointer, size graphics.Size) (uint64, uint64) {
	vi := (*C.XVisualInfo)(visual)
	pm := C.create_pixmap(dpy(display), vi, C.int(size.Width), C.int(size.Height))
	if pm == 0 {
		return 0, 0
	}
	gp := C.glXCreateGLXPixmap(dpy(display), vi, pm)
	if gp == 0 {
		C.XFreePixmap(dpy(display), pm)
		return 0, 0
	}
	return uint64(pm), uint64(gp)
}

func (glxAPI) destroyPixmap(display unsafe.Pointer, pixmap, glxPixmap uint64) {
	C.glXDestroyGLXPixmap(dpy(display), C.GLXPixmap(glxPixmap))
	C.XFreePixmap(dpy(display), C.Pixmap(pixmap))
}

func (glxAPI) createContext(display, visual unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(C.glXCreateContext(dpy(display), (*C.XVisualInfo)(visual), nil, C.True))
}

func (glxAPI) destroyContext(display, ctx unsafe.Pointer) {
	C.glXDestroyContext(dpy(display), C.GLXContext(ctx))
}

func (glxAPI) makeCurrent(display unsafe.Pointer, drawable uint64, ctx unsafe.Pointer) error {
	if C.glXMakeCurrent(dpy(display), C.GLXDrawable(drawable), C.GLXContext(ctx)) == C.False {
		return errors.New("glXMakeCurrent failed")
	}
	return nil
}

func (glxAPI) copyArea(display unsafe.Pointer, src, dst uint64, srcX, srcY int, size graphics.Size) {
	C.copy_area(dpy(display), C.Pixmap(src), C.Pixmap(dst), C.int(srcX), C.int(srcY), C.int(size.Width), C.int(size.Height))
}
