//go:build darwin && cgo

package sharedmemory

/*
#include <errno.h>
#include <fcntl.h>
#include <stdlib.h>
#include <sys/mman.h>
#include <sys/stat.h>
#include <unistd.h>

// Stale segments from a crashed owner are unlinked before creating.
static int create_shm(const char* name, off_t size) {
	shm_unlink(name);
	int fd = shm_open(name, O_RDWR | O_CREAT | O_EXCL, S_IRUSR | S_IWUSR | S_IRGRP | S_IWGRP);
	if (fd < 0) {
		return -errno;
	}
	if (ftruncate(fd, size) != 0) {
		int e = errno;
		close(fd);
		shm_unlink(name);
		return -e;
	}
	return fd;
}

static int open_shm(const char* name) {
	int fd = shm_open(name, O_RDWR, 0);
	return fd < 0 ? -errno : fd;
}

static void* map_shm(int fd, size_t size) {
	void* p = mmap(NULL, size, PROT_READ | PROT_WRITE, MAP_SHARED, fd, 0);
	return p == MAP_FAILED ? NULL : p;
}
*/
import "C"

import (
	"os"
	"syscall"
	"unsafe"
)

type shmi struct {
	name   string
	v      unsafe.Pointer
	size   int
	parent bool
}

func (o *shmi) getPtr() unsafe.Pointer { return o.v }

func create(name string, size int) (*shmi, error) {
	cname := C.CString("/" + name)
	defer C.free(unsafe.Pointer(cname))

	fd := C.create_shm(cname, C.off_t(size))
	if fd < 0 {
		return nil, os.NewSyscallError("shm_open", syscall.Errno(-fd))
	}
	defer C.close(fd)

	v := C.map_shm(fd, C.size_t(size))
	if v == nil {
		C.shm_unlink(cname)
		return nil, os.NewSyscallError("mmap", syscall.EINVAL)
	}
	return &shmi{name: name, v: v, size: size, parent: true}, nil
}

func open(name string, size int) (*shmi, error) {
	cname := C.CString("/" + name)
	defer C.free(unsafe.Pointer(cname))

	fd := C.open_shm(cname)
	if fd < 0 {
		return nil, os.NewSyscallError("shm_open", syscall.Errno(-fd))
	}
	defer C.close(fd)

	v := C.map_shm(fd, C.size_t(size))
	if v == nil {
		return nil, os.NewSyscallError("mmap", syscall.EINVAL)
	}
	return &shmi{name: name, v: v, size: size}, nil
}

func (o *shmi) close() error {
	if o.v != nil {
		C.munmap(o.v, C.size_t(o.size))
		o.v = nil
	}
	if o.parent {
		cname := C.CString("/" + o.name)
		C.shm_unlink(cname)
		C.free(unsafe.Pointer(cname))
	}
	return nil
}
