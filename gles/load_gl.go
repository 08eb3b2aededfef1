//go:build cgo && !android

package gles

import (
	"fmt"
	"sync"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

var glInitOnce sync.Once
var glInitErr error

// Load resolves the desktop GL entry points. A context must be current on
// the calling thread the first time Load is called.
func Load() (Functions, error) {
	glInitOnce.Do(func() {
		glInitErr = gl.Init()
	})
	if glInitErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", glInitErr)
	}
	return desktop{}, nil
}

type desktop struct{}

func (desktop) GetError() uint32 { return gl.GetError() }

func (desktop) GetString(name uint32) string {
	p := gl.GetString(name)
	if p == nil {
		return ""
	}
	return gl.GoStr(p)
}

func (desktop) GetStringi(name uint32, index uint32) string {
	p := gl.GetStringi(name, index)
	if p == nil {
		return ""
	}
	return gl.GoStr(p)
}

func (desktop) GetInteger(name uint32) int32 {
	var v int32
	gl.GetIntegerv(name, &v)
	return v
}

func (desktop) Enable(capability uint32)           { gl.Enable(capability) }
func (desktop) Viewport(x, y, w, h int32)          { gl.Viewport(x, y, w, h) }
func (desktop) PixelStorei(name uint32, p int32)   { gl.PixelStorei(name, p) }
func (desktop) ClearStencil(s int32)               { gl.ClearStencil(s) }
func (desktop) Clear(mask uint32)                  { gl.Clear(mask) }
func (desktop) Flush()                             { gl.Flush() }
func (desktop) Finish()                            { gl.Finish() }
func (desktop) BindFramebuffer(target, fb uint32)  { gl.BindFramebuffer(target, fb) }
func (desktop) BindTexture(target, tex uint32)     { gl.BindTexture(target, tex) }
func (desktop) BindRenderbuffer(target, rb uint32) { gl.BindRenderbuffer(target, rb) }
func (desktop) CheckFramebufferStatus(t uint32) uint32 {
	return gl.CheckFramebufferStatus(t)
}

func (desktop) GenFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (desktop) DeleteFramebuffer(id uint32) { gl.DeleteFramebuffers(1, &id) }

func (desktop) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (desktop) DeleteTexture(id uint32) { gl.DeleteTextures(1, &id) }

func (desktop) GenRenderbuffer() uint32 {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	return id
}

func (desktop) DeleteRenderbuffer(id uint32) { gl.DeleteRenderbuffers(1, &id) }

func (desktop) FramebufferTexture2D(target, attachment, textarget, texture uint32, level int32) {
	gl.FramebufferTexture2D(target, attachment, textarget, texture, level)
}

func (desktop) FramebufferRenderbuffer(target, attachment, rbtarget, rb uint32) {
	gl.FramebufferRenderbuffer(target, attachment, rbtarget, rb)
}

func (desktop) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter uint32) {
	gl.BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1, mask, filter)
}

func (desktop) TexParameteri(target, name uint32, param int32) {
	gl.TexParameteri(target, name, param)
}

func (desktop) TexImage2D(target uint32, level, internalFormat, w, h int32, format, xtype uint32, pixels []byte) {
	gl.TexImage2D(target, level, internalFormat, w, h, 0, format, xtype, bytePtr(pixels))
}

func (desktop) TexSubImage2D(target uint32, level, x, y, w, h int32, format, xtype uint32, pixels []byte) {
	gl.TexSubImage2D(target, level, x, y, w, h, format, xtype, bytePtr(pixels))
}

func (desktop) RenderbufferStorage(target, internalFormat uint32, w, h int32) {
	gl.RenderbufferStorage(target, internalFormat, w, h)
}

func (desktop) ReadPixels(x, y, w, h int32, format, xtype uint32, dst []byte) {
	gl.ReadPixels(x, y, w, h, format, xtype, bytePtr(dst))
}

func bytePtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return gl.Ptr(b)
}
