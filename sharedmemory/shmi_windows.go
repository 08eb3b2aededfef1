package sharedmemory

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

type shmi struct {
	h    windows.Handle
	v    uintptr
	size int
}

func (o *shmi) getPtr() unsafe.Pointer {
	return unsafe.Pointer(o.v)
}

func mapping(name string, size int, create bool) (*shmi, error) {
	key, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}

	// A zero maximum size opens an existing mapping without growing it.
	var max uint32
	if create {
		max = uint32(size)
	}
	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, 0, max, key)
	if err != nil {
		return nil, os.NewSyscallError("CreateFileMapping", err)
	}

	v, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(h)
		return nil, os.NewSyscallError("MapViewOfFile", err)
	}
	return &shmi{h: h, v: v, size: size}, nil
}

// The mapping object is released when its last handle closes, so the
// owner needs no unlink step.
func create(name string, size int) (*shmi, error) { return mapping(name, size, true) }
func open(name string, size int) (*shmi, error)   { return mapping(name, size, false) }

func (o *shmi) close() error {
	var err error
	if o.v != 0 {
		if e := windows.UnmapViewOfFile(o.v); e != nil {
			err = os.NewSyscallError("UnmapViewOfFile", e)
		}
		o.v = 0
	}
	if o.h != windows.InvalidHandle && o.h != 0 {
		windows.CloseHandle(o.h)
		o.h = windows.InvalidHandle
	}
	return err
}
