package main

import (
	"image"
	"image/color"

	"github.com/richinsley/gosharedgl/frame"
	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
	"github.com/richinsley/gosharedgl/raster"
)

var (
	background = color.RGBA{R: 32, G: 32, B: 40, A: 255}
	checkA     = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	checkB     = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	marker     = color.RGBA{R: 220, G: 40, B: 40, A: 255}
)

const checkSize = 16

// drawPattern paints a checkerboard with a red triangle in the top-left
// corner, so a flipped or offset frame is obvious.
func drawPattern(cv *raster.Canvas) {
	size := cv.Size()
	for y := 0; y < size.Height; y += checkSize {
		for x := 0; x < size.Width; x += checkSize {
			col := checkA
			if (x/checkSize+y/checkSize)%2 == 1 {
				col = checkB
			}
			cv.FillRect(image.Rect(x, y, x+checkSize, y+checkSize).Intersect(cv.Image.Rect), col)
		}
	}

	side := float32(min(size.Width, size.Height)) / 2
	z := cv.Path()
	z.MoveTo(0, 0)
	z.LineTo(side, 0)
	z.LineTo(0, side)
	z.ClosePath()
	cv.Fill(marker)
}

// readFramebuffer reads fb back as top-down RGBA rows.
func readFramebuffer(gl gles.Functions, fb uint32, size graphics.Size) []byte {
	stride := size.Width * 4
	pix := make([]byte, stride*size.Height)
	gl.BindFramebuffer(gles.READ_FRAMEBUFFER, fb)
	gl.PixelStorei(gles.PACK_ALIGNMENT, 4)
	gl.ReadPixels(0, 0, int32(size.Width), int32(size.Height), gles.RGBA, gles.UNSIGNED_BYTE, pix)
	frame.FlipRows(pix, stride, size.Height)
	return pix
}
