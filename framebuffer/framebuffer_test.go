package framebuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/gles/glestest"
	"github.com/richinsley/gosharedgl/graphics"
)

type caps struct {
	es           bool
	major, minor int
	exts         map[string]bool
}

func (c caps) IsES() bool                    { return c.es }
func (c caps) HasExtension(name string) bool { return c.exts[name] }
func (c caps) VersionAtLeast(major, minor int) bool {
	if c.major != major {
		return c.major > major
	}
	return c.minor >= minor
}

var desktop41 = caps{major: 4, minor: 1}

func TestSetupDesktop(t *testing.T) {
	gl := glestest.New(nil)
	size := graphics.Sz(640, 480)

	tr, err := Setup(gl, gles.TEXTURE_2D, size, desktop41, TexImage2D(gl, gles.TEXTURE_2D, size))
	require.NoError(t, err)

	assert.Equal(t, [4]int32{0, 0, 640, 480}, gl.Viewport4)
	assert.Equal(t, tr.Texture, gl.Attachment(tr.Framebuffer, gles.COLOR_ATTACHMENT0))
	assert.Equal(t, tr.DepthStencil, gl.Attachment(tr.Framebuffer, gles.DEPTH_ATTACHMENT))
	assert.Equal(t, tr.DepthStencil, gl.Attachment(tr.Framebuffer, gles.STENCIL_ATTACHMENT))
	assert.Equal(t, uint32(gles.DEPTH_STENCIL), gl.RenderbufferFormat(tr.DepthStencil))

	w, h := gl.TextureSize(tr.Texture)
	assert.Equal(t, int32(640), w)
	assert.Equal(t, int32(480), h)
	assert.Equal(t, 1, gl.Log.Count("gl.Clear 0x400"))
	assert.Equal(t, 3, gl.Live())

	Destroy(gl, tr)
	assert.Zero(t, gl.Live())
	assert.Equal(t, uint32(gles.NO_ERROR), gl.GetError())
}

func TestSetupESPacked(t *testing.T) {
	gl := glestest.New(nil)
	c := caps{es: true, major: 2, exts: map[string]bool{"GL_OES_packed_depth_stencil": true}}
	size := graphics.Sz(16, 16)

	tr, err := Setup(gl, gles.TEXTURE_2D, size, c, TexImage2D(gl, gles.TEXTURE_2D, size))
	require.NoError(t, err)
	assert.Equal(t, uint32(gles.DEPTH24_STENCIL8), gl.RenderbufferFormat(tr.DepthStencil))
	assert.Equal(t, tr.DepthStencil, gl.Attachment(tr.Framebuffer, gles.DEPTH_ATTACHMENT))
}

func TestSetupStencilOnly(t *testing.T) {
	tests := []struct {
		name   string
		caps   caps
		format uint32
	}{
		{"desktop 2.1", caps{major: 2, minor: 1}, gles.STENCIL_INDEX},
		{"es 2.0", caps{es: true, major: 2}, gles.STENCIL_INDEX8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gl := glestest.New(nil)
			size := graphics.Sz(8, 4)
			tr, err := Setup(gl, gles.TEXTURE_2D, size, tt.caps, TexImage2D(gl, gles.TEXTURE_2D, size))
			require.NoError(t, err)
			assert.Equal(t, tt.format, gl.RenderbufferFormat(tr.DepthStencil))
			assert.Zero(t, gl.Attachment(tr.Framebuffer, gles.DEPTH_ATTACHMENT))
			assert.Equal(t, tr.DepthStencil, gl.Attachment(tr.Framebuffer, gles.STENCIL_ATTACHMENT))
		})
	}
}

func TestSupportsPackedDepthStencil(t *testing.T) {
	assert.True(t, SupportsPackedDepthStencil(caps{major: 3}))
	assert.False(t, SupportsPackedDepthStencil(caps{major: 2, minor: 1}))
	assert.True(t, SupportsPackedDepthStencil(caps{major: 2, minor: 1, exts: map[string]bool{"GL_EXT_packed_depth_stencil": true}}))
	assert.True(t, SupportsPackedDepthStencil(caps{major: 2, minor: 1, exts: map[string]bool{"GL_ARB_framebuffer_object": true}}))
	// ES ignores the version and only trusts the OES extension.
	assert.False(t, SupportsPackedDepthStencil(caps{es: true, major: 3}))
}

func TestSetupFailureDestroysEverything(t *testing.T) {
	t.Run("gl error in attach", func(t *testing.T) {
		gl := glestest.New(nil)
		gl.FailTexImage = true
		size := graphics.Sz(32, 32)

		_, err := Setup(gl, gles.TEXTURE_2D, size, desktop41, TexImage2D(gl, gles.TEXTURE_2D, size))
		require.Error(t, err)
		assert.ErrorIs(t, err, graphics.ErrFramebufferIncomplete)
		assert.Zero(t, gl.Live())
	})

	t.Run("incomplete status", func(t *testing.T) {
		gl := glestest.New(nil)
		gl.Status = 0x8CDD // FRAMEBUFFER_UNSUPPORTED
		size := graphics.Sz(32, 32)

		_, err := Setup(gl, gles.TEXTURE_2D, size, desktop41, TexImage2D(gl, gles.TEXTURE_2D, size))
		assert.Equal(t, graphics.KindFramebufferIncomplete, graphics.KindOf(err))
		assert.Zero(t, gl.Live())
	})
}

func TestStartClearsStaleErrors(t *testing.T) {
	gl := glestest.New(nil)
	gl.Errors = []uint32{0x0500}
	size := graphics.Sz(4, 4)

	_, err := Setup(gl, gles.TEXTURE_2D, size, desktop41, TexImage2D(gl, gles.TEXTURE_2D, size))
	assert.NoError(t, err)
}

func TestFinishRunsAttachBeforeViewport(t *testing.T) {
	gl := glestest.New(nil)
	size := graphics.Sz(10, 20)
	Start(gl, gles.TEXTURE_2D, size, desktop41)

	attached := false
	ok := Finish(gl, size, func() {
		attached = true
		gl.Log.Add("attach")
		TexImage2D(gl, gles.TEXTURE_2D, size)()
	})
	assert.True(t, ok)
	assert.True(t, attached)
	assert.Less(t, gl.Log.Index("attach"), gl.Log.Index("gl.Viewport"))
}
