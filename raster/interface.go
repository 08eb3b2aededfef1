// Package raster is the boundary between GL contexts and the 2D
// rasterizer that draws into them.
//
// Two handles cross the boundary. An *Interface describes the GL
// implementation behind a context and must be created while that context
// is current. A *Context is the rasterizer's render context, built on an
// Interface. Both are reference counted; a Context must be released before
// its Interface, and both before the GL context is destroyed.
package raster

import (
	"fmt"
	"strings"

	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
)

// Interface is the rasterizer's view of a GL implementation.
type Interface struct {
	ref
	gl         gles.Functions
	version    string
	major      int
	minor      int
	es         bool
	extensions map[string]bool
}

// NewInterface queries the GL implementation behind the current context.
// It fails when no context is current (GL_VERSION is empty).
func NewInterface(gl gles.Functions) (*Interface, error) {
	version := gl.GetString(gles.VERSION)
	if version == "" {
		return nil, graphics.Errorf("raster.NewInterface", graphics.KindRasterizerInterfaceUnavailable,
			"GL_VERSION is empty; is a context current?")
	}
	major, minor, es, err := ParseVersion(version)
	if err != nil {
		return nil, &graphics.Error{Op: "raster.NewInterface", Kind: graphics.KindRasterizerInterfaceUnavailable, Err: err}
	}

	i := &Interface{
		gl:         gl,
		version:    version,
		major:      major,
		minor:      minor,
		es:         es,
		extensions: make(map[string]bool),
	}
	for _, ext := range extensions(gl) {
		i.extensions[ext] = true
	}
	i.init(func() {
		graphics.Logger().Debug("raster: interface released", "version", i.version)
	})
	graphics.Logger().Debug("raster: interface created", "version", version, "es", es, "extensions", len(i.extensions))
	return i, nil
}

func extensions(gl gles.Functions) []string {
	if n := gl.GetInteger(gles.NUM_EXTENSIONS); n > 0 {
		exts := make([]string, 0, n)
		for i := uint32(0); i < uint32(n); i++ {
			if e := gl.GetStringi(gles.EXTENSIONS, i); e != "" {
				exts = append(exts, e)
			}
		}
		if len(exts) > 0 {
			return exts
		}
	}
	return strings.Fields(gl.GetString(gles.EXTENSIONS))
}

// ParseVersion extracts the major and minor version from a GL_VERSION
// string such as "4.6.0 NVIDIA 535.54" or "OpenGL ES 3.2 Mesa".
func ParseVersion(s string) (major, minor int, es bool, err error) {
	rest := s
	if strings.HasPrefix(rest, "OpenGL ES") {
		es = true
		rest = strings.TrimPrefix(rest, "OpenGL ES")
		// "OpenGL ES-CM 1.1" and friends.
		if i := strings.IndexByte(rest, ' '); i >= 0 {
			rest = rest[i+1:]
		}
	}
	rest = strings.TrimSpace(rest)
	if _, err := fmt.Sscanf(rest, "%d.%d", &major, &minor); err != nil {
		return 0, 0, false, fmt.Errorf("unrecognised GL_VERSION %q: %w", s, err)
	}
	return major, minor, es, nil
}

// Functions returns the GL table the interface was created with.
func (i *Interface) Functions() gles.Functions { return i.gl }

// Version returns the raw GL_VERSION string.
func (i *Interface) Version() string { return i.version }

// IsES reports whether the context is OpenGL ES.
func (i *Interface) IsES() bool { return i.es }

// VersionAtLeast reports whether the GL version is >= major.minor.
func (i *Interface) VersionAtLeast(major, minor int) bool {
	if i.major != major {
		return i.major > major
	}
	return i.minor >= minor
}

// HasExtension reports whether name is advertised.
func (i *Interface) HasExtension(name string) bool {
	return i.extensions[name]
}

// Retain adds a reference.
func (i *Interface) Retain() { i.retain() }

// Release drops a reference.
func (i *Interface) Release() { i.release() }

// Live reports whether any reference remains.
func (i *Interface) Live() bool { return i.live() }
