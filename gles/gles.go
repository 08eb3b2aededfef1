// Package gles describes the subset of OpenGL (desktop and ES) used to
// build and publish off-screen render targets.
//
// The enum values are defined here rather than taken from a binding so
// that platform-neutral code, and its tests, build without cgo.
package gles

const (
	NO_ERROR = 0

	TEXTURE_2D        = 0x0DE1
	TEXTURE_RECTANGLE = 0x84F5

	TEXTURE_MAG_FILTER = 0x2800
	TEXTURE_MIN_FILTER = 0x2801
	TEXTURE_WRAP_S     = 0x2802
	TEXTURE_WRAP_T     = 0x2803
	CLAMP_TO_EDGE      = 0x812F
	NEAREST            = 0x2600

	FRAMEBUFFER          = 0x8D40
	READ_FRAMEBUFFER     = 0x8CA8
	DRAW_FRAMEBUFFER     = 0x8CA9
	RENDERBUFFER         = 0x8D41
	FRAMEBUFFER_COMPLETE = 0x8CD5

	COLOR_ATTACHMENT0  = 0x8CE0
	DEPTH_ATTACHMENT   = 0x8D00
	STENCIL_ATTACHMENT = 0x8D20

	DEPTH_STENCIL    = 0x84F9
	DEPTH24_STENCIL8 = 0x88F0
	STENCIL_INDEX    = 0x1901
	STENCIL_INDEX8   = 0x8D48

	RGBA                     = 0x1908
	BGRA                     = 0x80E1
	UNSIGNED_BYTE            = 0x1401
	UNSIGNED_INT_8_8_8_8_REV = 0x8367

	COLOR_BUFFER_BIT   = 0x4000
	STENCIL_BUFFER_BIT = 0x0400

	VERSION        = 0x1F02
	EXTENSIONS     = 0x1F03
	NUM_EXTENSIONS = 0x821D

	PACK_ALIGNMENT   = 0x0D05
	UNPACK_ALIGNMENT = 0x0CF5
)

// Functions is the GL entry point table. Every call requires a context
// current on the calling thread.
type Functions interface {
	GetError() uint32
	GetString(name uint32) string
	// GetStringi returns "" where indexed strings are unavailable (ES 2).
	GetStringi(name uint32, index uint32) string
	GetInteger(name uint32) int32

	Enable(capability uint32)
	Viewport(x, y, width, height int32)
	PixelStorei(name uint32, param int32)
	ClearStencil(s int32)
	Clear(mask uint32)
	Flush()
	Finish()

	GenFramebuffer() uint32
	BindFramebuffer(target, framebuffer uint32)
	DeleteFramebuffer(framebuffer uint32)
	FramebufferTexture2D(target, attachment, textarget, texture uint32, level int32)
	FramebufferRenderbuffer(target, attachment, renderbuffertarget, renderbuffer uint32)
	CheckFramebufferStatus(target uint32) uint32
	BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int32, mask, filter uint32)

	GenTexture() uint32
	BindTexture(target, texture uint32)
	DeleteTexture(texture uint32)
	TexParameteri(target, name uint32, param int32)
	// TexImage2D allocates storage; pixels may be nil.
	TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte)
	TexSubImage2D(target uint32, level, x, y, width, height int32, format, xtype uint32, pixels []byte)

	GenRenderbuffer() uint32
	BindRenderbuffer(target, renderbuffer uint32)
	DeleteRenderbuffer(renderbuffer uint32)
	RenderbufferStorage(target, internalFormat uint32, width, height int32)

	ReadPixels(x, y, width, height int32, format, xtype uint32, dst []byte)
}

// ClearErrors drains the GL error queue.
func ClearErrors(f Functions) {
	for f.GetError() != NO_ERROR {
	}
}
