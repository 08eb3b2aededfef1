// Package frame converts published RGBA frames into images.
package frame

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/richinsley/gosharedgl/graphics"
)

// FlipRows reverses the row order of pix in place.
func FlipRows(pix []byte, stride, h int) {
	row := make([]byte, stride)
	for top, bottom := 0, h-1; top < bottom; top, bottom = top+1, bottom-1 {
		a, b := pix[top*stride:(top+1)*stride], pix[bottom*stride:(bottom+1)*stride]
		copy(row, a)
		copy(a, b)
		copy(b, row)
	}
}

// Image wraps top-down RGBA pixels without copying.
func Image(pix []byte, size graphics.Size) (*image.RGBA, error) {
	if need := size.Area() * 4; len(pix) < need {
		return nil, fmt.Errorf("frame: %d bytes for %dx%d RGBA, need %d", len(pix), size.Width, size.Height, need)
	}
	return &image.RGBA{Pix: pix, Stride: size.Width * 4, Rect: image.Rect(0, 0, size.Width, size.Height)}, nil
}

// WritePNG encodes top-down RGBA pixels scaled by scale.
func WritePNG(w io.Writer, pix []byte, size graphics.Size, scale float64) error {
	src, err := Image(pix, size)
	if err != nil {
		return err
	}
	if scale == 1 {
		return png.Encode(w, src)
	}
	dw := max(1, int(float64(size.Width)*scale))
	dh := max(1, int(float64(size.Height)*scale))
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return png.Encode(w, dst)
}
