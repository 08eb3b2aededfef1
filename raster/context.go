package raster

import (
	"image"

	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
)

// Context is a rasterizer render context bound to one GL context. It
// holds a reference on its Interface until it is released.
type Context struct {
	ref
	iface  *Interface
	target uint32
	// canvases is keyed by destination texture.
	canvases map[uint32]*Canvas
	// scratch holds the flipped rows during upload.
	scratch []byte
}

// NewContext creates a render context on iface. target is the texture
// target render targets use (TEXTURE_2D, or TEXTURE_RECTANGLE on macOS).
func NewContext(iface *Interface, target uint32) (*Context, error) {
	if iface == nil || !iface.Live() {
		return nil, graphics.Errorf("raster.NewContext", graphics.KindRasterizerInterfaceUnavailable, "interface is released")
	}
	iface.Retain()
	c := &Context{iface: iface, target: target, canvases: map[uint32]*Canvas{}}
	c.init(func() {
		c.canvases = nil
		c.scratch = nil
		graphics.Logger().Debug("raster: render context released")
		c.iface.Release()
	})
	graphics.Logger().Debug("raster: render context created", "target", target)
	return c, nil
}

// Interface returns the interface the context was created on.
func (c *Context) Interface() *Interface { return c.iface }

// TextureTarget returns the texture target uploads use.
func (c *Context) TextureTarget() uint32 { return c.target }

// Canvas returns the canvas that backs texture, reusing the previous one
// when the size is unchanged. Each texture keeps its own pixels so render
// targets sharing this context never see each other's drawing.
func (c *Context) Canvas(texture uint32, size graphics.Size) *Canvas {
	cv := c.canvases[texture]
	if cv == nil || cv.Size() != size {
		cv = NewCanvas(size)
		if c.canvases != nil {
			c.canvases[texture] = cv
		}
	}
	return cv
}

// Forget drops the canvas kept for texture. Call it when the texture is
// deleted; GL may hand the same name out again.
func (c *Context) Forget(texture uint32) {
	delete(c.canvases, texture)
}

// Upload copies the canvas of texture into it. The texture must have
// storage of at least the canvas size. Row 0 of the canvas lands at the
// top of the texture in GL's bottom-left convention, so rows are flipped
// on the way. The owning GL context must be current.
func (c *Context) Upload(texture uint32) {
	cv := c.canvases[texture]
	if cv == nil {
		return
	}
	gl := c.iface.gl
	img := cv.Image
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if need := w * h * 4; cap(c.scratch) < need {
		c.scratch = make([]byte, need)
	} else {
		c.scratch = c.scratch[:need]
	}
	flipRows(c.scratch, img, w, h)

	gl.BindTexture(c.target, texture)
	gl.PixelStorei(gles.UNPACK_ALIGNMENT, 4)
	gl.TexSubImage2D(c.target, 0, 0, 0, int32(w), int32(h), gles.RGBA, gles.UNSIGNED_BYTE, c.scratch)
}

func flipRows(dst []byte, img *image.RGBA, w, h int) {
	stride := w * 4
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+stride]
		copy(dst[(h-1-y)*stride:], src)
	}
}

// Retain adds a reference.
func (c *Context) Retain() { c.retain() }

// Release drops a reference. The last release also releases the
// Interface reference the context holds.
func (c *Context) Release() { c.release() }

// Live reports whether any reference remains.
func (c *Context) Live() bool { return c.live() }
