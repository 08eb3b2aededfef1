package raster

import "sync/atomic"

// ref is a retain/release counter. free runs once, when the count drops
// to zero.
type ref struct {
	count atomic.Int32
	free  func()
}

func (r *ref) init(free func()) {
	r.count.Store(1)
	r.free = free
}

func (r *ref) retain() {
	if r.count.Add(1) <= 1 {
		panic("raster: retain after release")
	}
}

func (r *ref) release() {
	switch n := r.count.Add(-1); {
	case n == 0:
		r.free()
	case n < 0:
		panic("raster: released more times than retained")
	}
}

func (r *ref) live() bool {
	return r.count.Load() > 0
}
