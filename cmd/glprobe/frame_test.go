package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/gles/glestest"
	"github.com/richinsley/gosharedgl/graphics"
	"github.com/richinsley/gosharedgl/raster"
)

func TestDrawPattern(t *testing.T) {
	cv := raster.NewCanvas(graphics.Sz(64, 48))
	drawPattern(cv)

	assert.Equal(t, marker, cv.Image.RGBAAt(2, 2), "triangle in the top-left corner")
	assert.Equal(t, checkB, cv.Image.RGBAAt(60, 2))
	assert.Equal(t, checkA, cv.Image.RGBAAt(60-checkSize, 2))
	assert.Equal(t, checkA, cv.Image.RGBAAt(60, 20))
	assert.Equal(t, checkB, cv.Image.RGBAAt(60, 47))
}

func TestReadFramebufferFlipsRows(t *testing.T) {
	gl := glestest.New(nil)
	fb := gl.GenFramebuffer()

	pix := readFramebuffer(gl, fb, graphics.Sz(2, 3))
	require.Len(t, pix, 2*3*4)
	assert.Equal(t, byte(2), pix[0])
	assert.Equal(t, byte(1), pix[8])
	assert.Equal(t, byte(0), pix[16])
	assert.Equal(t, fb, gl.Bound(gles.READ_FRAMEBUFFER))
}
