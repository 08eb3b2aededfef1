// Package glestest provides an in-memory gles.Functions that records every
// call and counts live GL objects, for tests that have no GPU.
package glestest

import (
	"fmt"
	"strings"

	"github.com/richinsley/gosharedgl/gles"
)

// Log is an ordered event trail. Several fakes can share one Log so tests
// can assert on the interleaving of GL, native and rasterizer calls.
type Log struct {
	Events []string
}

// Add appends a formatted event.
func (l *Log) Add(format string, args ...any) {
	l.Events = append(l.Events, fmt.Sprintf(format, args...))
}

// Index returns the position of the first event with the given prefix,
// or -1.
func (l *Log) Index(prefix string) int {
	for i, e := range l.Events {
		if strings.HasPrefix(e, prefix) {
			return i
		}
	}
	return -1
}

// Count returns how many events start with prefix.
func (l *Log) Count(prefix string) int {
	n := 0
	for _, e := range l.Events {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

// Reset drops every recorded event.
func (l *Log) Reset() {
	l.Events = l.Events[:0]
}

type texture struct {
	target uint32
	width  int32
	height int32
	pixels []byte
	// writes counts uploads, blits and clears that landed in this texture.
	writes int
}

type framebuffer struct {
	attachments map[uint32]uint32
}

// GL is a fake GL implementation. The zero value is not usable; call New.
type GL struct {
	Log *Log

	// Version is returned for GL_VERSION.
	Version string
	// Extensions are returned through GL_EXTENSIONS / GetStringi.
	Extensions []string

	// Errors is a queue of errors returned by GetError before NO_ERROR.
	Errors []uint32
	// FailTexImage makes TexImage2D raise GL_INVALID_OPERATION instead of
	// allocating storage.
	FailTexImage bool
	// Status overrides CheckFramebufferStatus when non-zero.
	Status uint32

	// Viewport is the last viewport set.
	Viewport4 [4]int32
	// DrawableWrites counts blits whose destination is framebuffer 0.
	DrawableWrites int

	// Current, when set, reports whether a context is current. Calls made
	// while it returns false raise GL_INVALID_OPERATION and are counted in
	// NoContext.
	Current   func() bool
	NoContext int

	nextID        uint32
	framebuffers  map[uint32]*framebuffer
	textures      map[uint32]*texture
	renderbuffers map[uint32]uint32
	bound         map[uint32]uint32
	boundTexture  map[uint32]uint32
	boundRB       uint32
	enabled       map[uint32]bool
}

// New returns a GL 4.1 fake with no extensions.
func New(log *Log) *GL {
	if log == nil {
		log = &Log{}
	}
	return &GL{
		Log:           log,
		Version:       "4.1 fake",
		framebuffers:  make(map[uint32]*framebuffer),
		textures:      make(map[uint32]*texture),
		renderbuffers: make(map[uint32]uint32),
		bound:         make(map[uint32]uint32),
		boundTexture:  make(map[uint32]uint32),
		enabled:       make(map[uint32]bool),
	}
}

var _ gles.Functions = (*GL)(nil)

// LiveFramebuffers returns the number of framebuffers not yet deleted.
func (f *GL) LiveFramebuffers() int { return len(f.framebuffers) }

// LiveTextures returns the number of textures not yet deleted.
func (f *GL) LiveTextures() int { return len(f.textures) }

// LiveRenderbuffers returns the number of renderbuffers not yet deleted.
func (f *GL) LiveRenderbuffers() int { return len(f.renderbuffers) }

// Live returns the total number of live GL objects.
func (f *GL) Live() int {
	return f.LiveFramebuffers() + f.LiveTextures() + f.LiveRenderbuffers()
}

// Attachment returns the object attached at attachment of framebuffer fb.
func (f *GL) Attachment(fb, attachment uint32) uint32 {
	if b, ok := f.framebuffers[fb]; ok {
		return b.attachments[attachment]
	}
	return 0
}

// RenderbufferFormat returns the storage format of rb.
func (f *GL) RenderbufferFormat(rb uint32) uint32 {
	return f.renderbuffers[rb]
}

// TextureSize returns the storage size of tex.
func (f *GL) TextureSize(tex uint32) (int32, int32) {
	if t, ok := f.textures[tex]; ok {
		return t.width, t.height
	}
	return 0, 0
}

// TexturePixels returns the last pixels uploaded into tex.
func (f *GL) TexturePixels(tex uint32) []byte {
	if t, ok := f.textures[tex]; ok {
		return t.pixels
	}
	return nil
}

// TextureWrites returns how many writes landed in tex.
func (f *GL) TextureWrites(tex uint32) int {
	if t, ok := f.textures[tex]; ok {
		return t.writes
	}
	return 0
}

// Bound returns the framebuffer bound to target.
func (f *GL) Bound(target uint32) uint32 {
	return f.bound[target]
}

// Enabled reports whether capability was enabled.
func (f *GL) Enabled(capability uint32) bool {
	return f.enabled[capability]
}

func (f *GL) need() {
	if f.Current != nil && !f.Current() {
		f.Errors = append(f.Errors, 0x0502)
		f.NoContext++
	}
}

func (f *GL) id() uint32 {
	f.nextID++
	return f.nextID
}

func (f *GL) GetError() uint32 {
	if len(f.Errors) == 0 {
		return gles.NO_ERROR
	}
	e := f.Errors[0]
	f.Errors = f.Errors[1:]
	return e
}

func (f *GL) GetString(name uint32) string {
	switch name {
	case gles.VERSION:
		return f.Version
	case gles.EXTENSIONS:
		return strings.Join(f.Extensions, " ")
	}
	return ""
}

func (f *GL) GetStringi(name uint32, index uint32) string {
	if name == gles.EXTENSIONS && int(index) < len(f.Extensions) {
		return f.Extensions[index]
	}
	return ""
}

func (f *GL) GetInteger(name uint32) int32 {
	if name == gles.NUM_EXTENSIONS {
		return int32(len(f.Extensions))
	}
	return 0
}

func (f *GL) Enable(capability uint32) {
	f.need()
	f.enabled[capability] = true
	f.Log.Add("gl.Enable %#x", capability)
}

func (f *GL) Viewport(x, y, w, h int32) {
	f.need()
	f.Viewport4 = [4]int32{x, y, w, h}
	f.Log.Add("gl.Viewport %d %d %d %d", x, y, w, h)
}

func (f *GL) PixelStorei(name uint32, p int32) {}

func (f *GL) ClearStencil(s int32) {}

func (f *GL) Clear(mask uint32) {
	f.need()
	f.Log.Add("gl.Clear %#x", mask)
}

func (f *GL) Flush() {
	f.need()
	f.Log.Add("gl.Flush")
}

func (f *GL) Finish() {
	f.need()
	f.Log.Add("gl.Finish")
}

func (f *GL) GenFramebuffer() uint32 {
	f.need()
	id := f.id()
	f.framebuffers[id] = &framebuffer{attachments: make(map[uint32]uint32)}
	f.Log.Add("gl.GenFramebuffer %d", id)
	return id
}

func (f *GL) BindFramebuffer(target, fb uint32) {
	f.need()
	if fb != 0 {
		if _, ok := f.framebuffers[fb]; !ok {
			f.Errors = append(f.Errors, 0x0502)
		}
	}
	switch target {
	case gles.FRAMEBUFFER:
		f.bound[gles.READ_FRAMEBUFFER] = fb
		f.bound[gles.DRAW_FRAMEBUFFER] = fb
		f.bound[gles.FRAMEBUFFER] = fb
	default:
		f.bound[target] = fb
	}
	f.Log.Add("gl.BindFramebuffer %#x %d", target, fb)
}

func (f *GL) DeleteFramebuffer(fb uint32) {
	f.need()
	if _, ok := f.framebuffers[fb]; !ok {
		f.Errors = append(f.Errors, 0x0501)
	}
	delete(f.framebuffers, fb)
	for t, b := range f.bound {
		if b == fb {
			f.bound[t] = 0
		}
	}
	f.Log.Add("gl.DeleteFramebuffer %d", fb)
}

func (f *GL) FramebufferTexture2D(target, attachment, textarget, tex uint32, level int32) {
	f.need()
	fb := f.framebuffers[f.drawTarget(target)]
	if fb == nil {
		f.Errors = append(f.Errors, 0x0502)
		return
	}
	if tex == 0 {
		delete(fb.attachments, attachment)
	} else {
		fb.attachments[attachment] = tex
	}
	f.Log.Add("gl.FramebufferTexture2D %#x %d", attachment, tex)
}

func (f *GL) FramebufferRenderbuffer(target, attachment, rbtarget, rb uint32) {
	f.need()
	fb := f.framebuffers[f.drawTarget(target)]
	if fb == nil {
		f.Errors = append(f.Errors, 0x0502)
		return
	}
	fb.attachments[attachment] = rb
	f.Log.Add("gl.FramebufferRenderbuffer %#x %d", attachment, rb)
}

func (f *GL) drawTarget(target uint32) uint32 {
	if target == gles.READ_FRAMEBUFFER {
		return f.bound[gles.READ_FRAMEBUFFER]
	}
	return f.bound[gles.DRAW_FRAMEBUFFER]
}

func (f *GL) CheckFramebufferStatus(target uint32) uint32 {
	f.need()
	if f.Status != 0 {
		return f.Status
	}
	fb := f.framebuffers[f.drawTarget(target)]
	if fb == nil || fb.attachments[gles.COLOR_ATTACHMENT0] == 0 {
		return 0x8CD6 // FRAMEBUFFER_INCOMPLETE_ATTACHMENT
	}
	return gles.FRAMEBUFFER_COMPLETE
}

func (f *GL) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter uint32) {
	f.need()
	dst := f.bound[gles.DRAW_FRAMEBUFFER]
	if dst == 0 {
		f.DrawableWrites++
	} else if fb := f.framebuffers[dst]; fb != nil {
		if t := f.textures[fb.attachments[gles.COLOR_ATTACHMENT0]]; t != nil {
			t.writes++
		}
	}
	f.Log.Add("gl.BlitFramebuffer %d->%d %dx%d", f.bound[gles.READ_FRAMEBUFFER], dst, sx1-sx0, sy1-sy0)
}

func (f *GL) GenTexture() uint32 {
	f.need()
	id := f.id()
	f.textures[id] = &texture{}
	f.Log.Add("gl.GenTexture %d", id)
	return id
}

func (f *GL) BindTexture(target, tex uint32) {
	f.need()
	if t, ok := f.textures[tex]; ok {
		t.target = target
	}
	f.boundTexture[target] = tex
}

func (f *GL) DeleteTexture(tex uint32) {
	f.need()
	if _, ok := f.textures[tex]; !ok {
		f.Errors = append(f.Errors, 0x0501)
	}
	delete(f.textures, tex)
	f.Log.Add("gl.DeleteTexture %d", tex)
}

func (f *GL) TexParameteri(target, name uint32, param int32) {}

func (f *GL) TexImage2D(target uint32, level, internalFormat, w, h int32, format, xtype uint32, pixels []byte) {
	f.need()
	if f.FailTexImage {
		f.Errors = append(f.Errors, 0x0502)
		return
	}
	t := f.textures[f.boundTexture[target]]
	if t == nil {
		f.Errors = append(f.Errors, 0x0502)
		return
	}
	t.width, t.height = w, h
	f.Log.Add("gl.TexImage2D %dx%d", w, h)
}

func (f *GL) TexSubImage2D(target uint32, level, x, y, w, h int32, format, xtype uint32, pixels []byte) {
	f.need()
	t := f.textures[f.boundTexture[target]]
	if t == nil {
		f.Errors = append(f.Errors, 0x0502)
		return
	}
	t.pixels = append(t.pixels[:0], pixels...)
	t.writes++
	f.Log.Add("gl.TexSubImage2D %d %dx%d", f.boundTexture[target], w, h)
}

func (f *GL) GenRenderbuffer() uint32 {
	f.need()
	id := f.id()
	f.renderbuffers[id] = 0
	f.Log.Add("gl.GenRenderbuffer %d", id)
	return id
}

func (f *GL) BindRenderbuffer(target, rb uint32) {
	f.need()
	f.boundRB = rb
}

func (f *GL) DeleteRenderbuffer(rb uint32) {
	f.need()
	if _, ok := f.renderbuffers[rb]; !ok {
		f.Errors = append(f.Errors, 0x0501)
	}
	delete(f.renderbuffers, rb)
	f.Log.Add("gl.DeleteRenderbuffer %d", rb)
}

func (f *GL) RenderbufferStorage(target, internalFormat uint32, w, h int32) {
	f.need()
	if _, ok := f.renderbuffers[f.boundRB]; !ok {
		f.Errors = append(f.Errors, 0x0502)
		return
	}
	f.renderbuffers[f.boundRB] = internalFormat
	f.Log.Add("gl.RenderbufferStorage %#x %dx%d", internalFormat, w, h)
}

// ReadPixels fills dst with the row index of each pixel in its red
// channel so tests can check row order.
func (f *GL) ReadPixels(x, y, w, h int32, format, xtype uint32, dst []byte) {
	f.need()
	stride := int(w) * 4
	for row := 0; row < int(h); row++ {
		for i := 0; i < stride && row*stride+i < len(dst); i++ {
			dst[row*stride+i] = 0
			if i%4 == 0 {
				dst[row*stride+i] = byte(row)
			}
		}
	}
	f.Log.Add("gl.ReadPixels %dx%d", w, h)
}
