//go:build cgo && android

package gles

import (
	"fmt"
	"sync"
	"unsafe"

	gl "github.com/go-gl/gl/v3.1/gles2"
)

var glInitOnce sync.Once
var glInitErr error

// Load resolves the OpenGL ES entry points. A context must be current on
// the calling thread the first time Load is called.
func Load() (Functions, error) {
	glInitOnce.Do(func() {
		glInitErr = gl.Init()
	})
	if glInitErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL ES: %w", glInitErr)
	}
	return es{}, nil
}

type es struct{}

func (es) GetError() uint32 { return gl.GetError() }

func (es) GetString(name uint32) string {
	p := gl.GetString(name)
	if p == nil {
		return ""
	}
	return gl.GoStr(p)
}

func (es) GetStringi(name uint32, index uint32) string {
	p := gl.GetStringi(name, index)
	if p == nil {
		return ""
	}
	return gl.GoStr(p)
}

func (es) GetInteger(name uint32) int32 {
	var v int32
	gl.GetIntegerv(name, &v)
	return v
}

func (es) Enable(capability uint32)           { gl.Enable(capability) }
func (es) Viewport(x, y, w, h int32)          { gl.Viewport(x, y, w, h) }
func (es) PixelStorei(name uint32, p int32)   { gl.PixelStorei(name, p) }
func (es) ClearStencil(s int32)               { gl.ClearStencil(s) }
func (es) Clear(mask uint32)                  { gl.Clear(mask) }
func (es) Flush()                             { gl.Flush() }
func (es) Finish()                            { gl.Finish() }
func (es) BindFramebuffer(target, fb uint32)  { gl.BindFramebuffer(target, fb) }
func (es) BindTexture(target, tex uint32)     { gl.BindTexture(target, tex) }
func (es) BindRenderbuffer(target, rb uint32) { gl.BindRenderbuffer(target, rb) }
func (es) CheckFramebufferStatus(t uint32) uint32 {
	return gl.CheckFramebufferStatus(t)
}

func (es) GenFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (es) DeleteFramebuffer(id uint32) { gl.DeleteFramebuffers(1, &id) }

func (es) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (es) DeleteTexture(id uint32) { gl.DeleteTextures(1, &id) }

func (es) GenRenderbuffer() uint32 {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	return id
}

func (es) DeleteRenderbuffer(id uint32) { gl.DeleteRenderbuffers(1, &id) }

func (es) FramebufferTexture2D(target, attachment, textarget, texture uint32, level int32) {
	gl.FramebufferTexture2D(target, attachment, textarget, texture, level)
}

func (es) FramebufferRenderbuffer(target, attachment, rbtarget, rb uint32) {
	gl.FramebufferRenderbuffer(target, attachment, rbtarget, rb)
}

func (es) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter uint32) {
	gl.BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1, mask, filter)
}

func (es) TexParameteri(target, name uint32, param int32) {
	gl.TexParameteri(target, name, param)
}

func (es) TexImage2D(target uint32, level, internalFormat, w, h int32, format, xtype uint32, pixels []byte) {
	gl.TexImage2D(target, level, internalFormat, w, h, 0, format, xtype, bytePtr(pixels))
}

func (es) TexSubImage2D(target uint32, level, x, y, w, h int32, format, xtype uint32, pixels []byte) {
	gl.TexSubImage2D(target, level, x, y, w, h, format, xtype, bytePtr(pixels))
}

func (es) RenderbufferStorage(target, internalFormat uint32, w, h int32) {
	gl.RenderbufferStorage(target, internalFormat, w, h)
}

func (es) ReadPixels(x, y, w, h int32, format, xtype uint32, dst []byte) {
	gl.ReadPixels(x, y, w, h, format, xtype, bytePtr(dst))
}

func bytePtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return gl.Ptr(b)
}
