// Package sharedmemory maps named shared memory segments that a
// compositor in another process can read published frames from.
//
// The creating process owns the segment name: closing it unlinks the
// segment. Opening processes only map it.
package sharedmemory

import (
	"fmt"
	"io"
	"strings"
	"unsafe"

	"github.com/richinsley/gosharedgl/graphics"
)

// SharedMemory is a mapped segment. It implements io.ReaderAt and
// io.WriterAt over the mapping.
type SharedMemory struct {
	name string
	m    *shmi
}

var (
	_ io.ReaderAt = (*SharedMemory)(nil)
	_ io.WriterAt = (*SharedMemory)(nil)
)

func checkName(name string, size int) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("sharedmemory: invalid segment name %q", name)
	}
	if size <= 0 {
		return fmt.Errorf("sharedmemory: invalid segment size %d", size)
	}
	return nil
}

// CreateSharedMemory creates and maps a segment of size bytes, replacing
// any stale segment of the same name.
func CreateSharedMemory(name string, size int) (*SharedMemory, error) {
	if err := checkName(name, size); err != nil {
		return nil, err
	}
	m, err := create(name, size)
	if err != nil {
		return nil, fmt.Errorf("sharedmemory: create %q: %w", name, err)
	}
	graphics.Logger().Debug("sharedmemory: created", "name", name, "size", size)
	return &SharedMemory{name: name, m: m}, nil
}

// OpenSharedMemory maps the first size bytes of an existing segment.
func OpenSharedMemory(name string, size int) (*SharedMemory, error) {
	if err := checkName(name, size); err != nil {
		return nil, err
	}
	m, err := open(name, size)
	if err != nil {
		return nil, fmt.Errorf("sharedmemory: open %q: %w", name, err)
	}
	graphics.Logger().Debug("sharedmemory: opened", "name", name, "size", size)
	return &SharedMemory{name: name, m: m}, nil
}

// Name returns the segment name passed to Create or Open.
func (s *SharedMemory) Name() string { return s.name }

// GetSize returns the mapped size in bytes, or 0 after Close.
func (s *SharedMemory) GetSize() int {
	if s.m == nil {
		return 0
	}
	return s.m.size
}

// GetPtr returns the start of the mapping, or nil after Close. The pointer
// is invalid once the segment is closed.
func (s *SharedMemory) GetPtr() unsafe.Pointer {
	if s.m == nil {
		return nil
	}
	return s.m.getPtr()
}

// Bytes returns the mapping as a slice, nil after Close. Slices taken
// before Close must not be used after it.
func (s *SharedMemory) Bytes() []byte {
	p := s.GetPtr()
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), s.m.size)
}

// ReadAt copies from the mapping at off. It returns io.EOF when off is
// past the end or p runs past it.
func (s *SharedMemory) ReadAt(p []byte, off int64) (int, error) {
	buf := s.Bytes()
	if off < 0 || off >= int64(len(buf)) {
		return 0, io.EOF
	}
	n := copy(p, buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt copies p into the mapping at off. Writes past the end are
// truncated and reported with io.ErrShortWrite.
func (s *SharedMemory) WriteAt(p []byte, off int64) (int, error) {
	buf := s.Bytes()
	if off < 0 || off >= int64(len(buf)) {
		return 0, io.EOF
	}
	n := copy(buf[off:], p)
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Close unmaps the segment, and unlinks it if this process created it.
// Calling it again is a no-op.
func (s *SharedMemory) Close() error {
	if s.m == nil {
		return nil
	}
	err := s.m.close()
	s.m = nil
	graphics.Logger().Debug("sharedmemory: closed", "name", s.name)
	return err
}
