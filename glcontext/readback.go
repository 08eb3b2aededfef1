package glcontext

import (
	"github.com/richinsley/gosharedgl/frame"
	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
)

// readback publishes by reading the framebuffer into a mapped section.
type readback struct {
	plainStorage
	mem Section
}

func newReadback(t SharedMemory, size graphics.Size) (*readback, error) {
	const op = "glcontext.NewRasterizationContext"
	if t.Mem == nil {
		return nil, graphics.Errorf(op, graphics.KindSurfaceBindingFailed, "nil shared memory section")
	}
	if need, have := size.Area()*4, len(t.Mem.Bytes()); have < need {
		return nil, graphics.Errorf(op, graphics.KindSurfaceBindingFailed,
			"section %q holds %d bytes, %dx%d RGBA needs %d", t.Mem.Name(), have, size.Width, size.Height, need)
	}
	return &readback{mem: t.Mem}, nil
}

func (s *readback) publish(r *RasterizationContext) error {
	w, h := r.size.Width, r.size.Height
	buf := s.mem.Bytes()
	if len(buf) < w*h*4 {
		return graphics.Errorf("glcontext.FlushToSurface", graphics.KindSurfaceBindingFailed,
			"section %q holds %d bytes, %dx%d RGBA needs %d", s.mem.Name(), len(buf), w, h, w*h*4)
	}
	dst := buf[:w*h*4]

	r.gl.BindFramebuffer(gles.READ_FRAMEBUFFER, r.fb.Framebuffer)
	r.gl.PixelStorei(gles.PACK_ALIGNMENT, 4)
	r.gl.ReadPixels(0, 0, int32(w), int32(h), gles.RGBA, gles.UNSIGNED_BYTE, dst)
	frame.FlipRows(dst, w*4, h)
	return nil
}

func (s *readback) handle() any { return s.mem.Name() }
