// Package framebuffer allocates the framebuffer object, colour texture and
// depth/stencil renderbuffer that back every render target.
//
// Setup is split into Start and Finish so platform code can attach the
// texture's storage in between: some platforms bind a shareable surface
// directly as the texture's backing memory, others allocate plain storage.
// Both phases need a context current on the calling thread.
package framebuffer

import (
	"fmt"

	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
)

// Capabilities reports what the GL implementation behind the current
// context supports. *raster.Interface satisfies it.
type Capabilities interface {
	IsES() bool
	VersionAtLeast(major, minor int) bool
	HasExtension(name string) bool
}

// Triple is the set of GL objects backing one render target.
type Triple struct {
	Framebuffer  uint32
	Texture      uint32
	DepthStencil uint32
}

// Start allocates and binds the framebuffer, the colour texture (attached
// to COLOR_ATTACHMENT0) and the depth/stencil renderbuffer. The texture has
// no storage yet; the caller's attach step provides it before Finish.
func Start(gl gles.Functions, target uint32, size graphics.Size, caps Capabilities) Triple {
	gles.ClearErrors(gl)

	var t Triple
	t.Framebuffer = gl.GenFramebuffer()
	gl.BindFramebuffer(gles.FRAMEBUFFER, t.Framebuffer)

	t.Texture = gl.GenTexture()
	gl.BindTexture(target, t.Texture)
	gl.TexParameteri(target, gles.TEXTURE_WRAP_S, gles.CLAMP_TO_EDGE)
	gl.TexParameteri(target, gles.TEXTURE_WRAP_T, gles.CLAMP_TO_EDGE)
	gl.TexParameteri(target, gles.TEXTURE_MAG_FILTER, gles.NEAREST)
	gl.TexParameteri(target, gles.TEXTURE_MIN_FILTER, gles.NEAREST)
	gl.FramebufferTexture2D(gles.FRAMEBUFFER, gles.COLOR_ATTACHMENT0, target, t.Texture, 0)

	t.DepthStencil = depthStencil(gl, size, caps)
	return t
}

// depthStencil creates the renderbuffer and attaches it. Some drivers that
// support packed depth/stencil only accept the packed format on an FBO, so
// the packed format is preferred whenever it is advertised.
func depthStencil(gl gles.Functions, size graphics.Size, caps Capabilities) uint32 {
	rb := gl.GenRenderbuffer()
	gl.BindRenderbuffer(gles.RENDERBUFFER, rb)

	packed, stencilOnly := uint32(gles.DEPTH_STENCIL), uint32(gles.STENCIL_INDEX)
	if caps.IsES() {
		packed, stencilOnly = gles.DEPTH24_STENCIL8, gles.STENCIL_INDEX8
	}

	w, h := int32(size.Width), int32(size.Height)
	if SupportsPackedDepthStencil(caps) {
		gl.RenderbufferStorage(gles.RENDERBUFFER, packed, w, h)
		gl.FramebufferRenderbuffer(gles.FRAMEBUFFER, gles.DEPTH_ATTACHMENT, gles.RENDERBUFFER, rb)
		graphics.Logger().Debug("framebuffer: packed depth/stencil", "renderbuffer", rb, "format", fmt.Sprintf("%#x", packed))
	} else {
		gl.RenderbufferStorage(gles.RENDERBUFFER, stencilOnly, w, h)
		graphics.Logger().Debug("framebuffer: stencil-only renderbuffer", "renderbuffer", rb, "format", fmt.Sprintf("%#x", stencilOnly))
	}
	gl.FramebufferRenderbuffer(gles.FRAMEBUFFER, gles.STENCIL_ATTACHMENT, gles.RENDERBUFFER, rb)
	return rb
}

// SupportsPackedDepthStencil reports whether a combined depth+stencil
// renderbuffer format is available.
func SupportsPackedDepthStencil(caps Capabilities) bool {
	if caps.IsES() {
		return caps.HasExtension("GL_OES_packed_depth_stencil")
	}
	return caps.VersionAtLeast(3, 0) ||
		caps.HasExtension("GL_EXT_packed_depth_stencil") ||
		caps.HasExtension("GL_ARB_framebuffer_object")
}

// Finish runs attach, which must give the bound texture its storage, sets
// the viewport to the full size and clears the stencil buffer. It reports
// whether no GL error was raised and the framebuffer is complete.
func Finish(gl gles.Functions, size graphics.Size, attach func()) bool {
	attach()

	gl.Viewport(0, 0, int32(size.Width), int32(size.Height))
	gl.ClearStencil(0)
	gl.Clear(gles.STENCIL_BUFFER_BIT)

	if gl.GetError() != gles.NO_ERROR {
		return false
	}
	return gl.CheckFramebufferStatus(gles.FRAMEBUFFER) == gles.FRAMEBUFFER_COMPLETE
}

// Destroy deletes all three objects. Pass only ids returned by Start.
func Destroy(gl gles.Functions, t Triple) {
	gl.DeleteFramebuffer(t.Framebuffer)
	gl.DeleteTexture(t.Texture)
	gl.DeleteRenderbuffer(t.DepthStencil)
}

// Setup runs Start, attach and Finish. On failure everything allocated is
// destroyed and a KindFramebufferIncomplete error is returned.
func Setup(gl gles.Functions, target uint32, size graphics.Size, caps Capabilities, attach func()) (Triple, error) {
	t := Start(gl, target, size, caps)
	if !Finish(gl, size, attach) {
		Destroy(gl, t)
		return Triple{}, graphics.Errorf("framebuffer.Setup", graphics.KindFramebufferIncomplete,
			"%dx%d framebuffer is not complete", size.Width, size.Height)
	}
	graphics.Logger().Debug("framebuffer: ready", "framebuffer", t.Framebuffer, "texture", t.Texture,
		"width", size.Width, "height", size.Height)
	return t, nil
}

// TexImage2D returns an attach step that allocates plain RGBA8 storage for
// the texture bound to target.
func TexImage2D(gl gles.Functions, target uint32, size graphics.Size) func() {
	return func() {
		gl.TexImage2D(target, 0, gles.RGBA, int32(size.Width), int32(size.Height), gles.RGBA, gles.UNSIGNED_BYTE, nil)
	}
}
