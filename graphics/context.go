package graphics

// Context is the capability set shared by every platform GL context and
// every rasterization context layered on top of one.
//
// None of the methods lock. A GL context may be current on at most one
// thread, and callers must make a context current on the calling thread
// before issuing GL or rasterizer work against it.
type Context interface {
	// MakeCurrent binds the context (and any drawable it needs) to the
	// calling thread.
	MakeCurrent() error
	// DropCurrent unbinds any context from the calling thread.
	DropCurrent()
	// Flush makes the context current and issues glFlush.
	Flush() error
	// Destroy releases the caller's hold on the context.
	Destroy()
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// Sz is shorthand for Size{w, h}.
func Sz(w, h int) Size {
	return Size{Width: w, Height: h}
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Area returns Width*Height.
func (s Size) Area() int {
	return s.Width * s.Height
}
