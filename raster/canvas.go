package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/richinsley/gosharedgl/graphics"
)

// Canvas is the CPU side of a render context: an RGBA image and a path
// rasterizer sized to it.
type Canvas struct {
	Image *image.RGBA
	z     *vector.Rasterizer
}

// NewCanvas allocates a transparent canvas.
func NewCanvas(size graphics.Size) *Canvas {
	return &Canvas{
		Image: image.NewRGBA(image.Rect(0, 0, size.Width, size.Height)),
		z:     vector.NewRasterizer(size.Width, size.Height),
	}
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() graphics.Size {
	return graphics.Sz(c.Image.Rect.Dx(), c.Image.Rect.Dy())
}

// Clear fills the whole canvas with col, replacing what was there.
func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.Image, c.Image.Rect, image.NewUniform(col), image.Point{}, draw.Src)
}

// Path resets and returns the path rasterizer. Build a path on it, then
// call Fill.
func (c *Canvas) Path() *vector.Rasterizer {
	c.z.Reset(c.Image.Rect.Dx(), c.Image.Rect.Dy())
	return c.z
}

// Fill composites the current path over the canvas in col.
func (c *Canvas) Fill(col color.Color) {
	c.z.DrawOp = draw.Over
	c.z.Draw(c.Image, c.Image.Rect, image.NewUniform(col), image.Point{})
}

// FillRect fills r in col.
func (c *Canvas) FillRect(r image.Rectangle, col color.Color) {
	z := c.Path()
	z.MoveTo(float32(r.Min.X), float32(r.Min.Y))
	z.LineTo(float32(r.Max.X), float32(r.Min.Y))
	z.LineTo(float32(r.Max.X), float32(r.Max.Y))
	z.LineTo(float32(r.Min.X), float32(r.Max.Y))
	z.ClosePath()
	c.Fill(col)
}
