package sharedmemory

import (
	"errors"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Segments live in /dev/shm, where shm_open puts them, so other
// processes can open them by name with either API.
const shmDir = "/dev/shm"

type shmi struct {
	path   string
	data   []byte
	size   int
	parent bool
}

func (o *shmi) getPtr() unsafe.Pointer {
	if o.data == nil {
		return nil
	}
	return unsafe.Pointer(&o.data[0])
}

func create(name string, size int) (*shmi, error) {
	path := filepath.Join(shmDir, name)
	if err := unix.Unlink(path); err != nil && !errors.Is(err, unix.ENOENT) {
		return nil, os.NewSyscallError("unlink", err)
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL|unix.O_CLOEXEC, 0o660)
	if err != nil {
		return nil, os.NewSyscallError("open", err)
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Unlink(path)
		return nil, os.NewSyscallError("ftruncate", err)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Unlink(path)
		return nil, os.NewSyscallError("mmap", err)
	}
	return &shmi{path: path, data: data, size: size, parent: true}, nil
}

func open(name string, size int) (*shmi, error) {
	path := filepath.Join(shmDir, name)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, os.NewSyscallError("open", err)
	}
	defer unix.Close(fd)

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, os.NewSyscallError("fstat", err)
	}
	if st.Size < int64(size) {
		return nil, errors.New("segment is smaller than the requested size")
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, os.NewSyscallError("mmap", err)
	}
	return &shmi{path: path, data: data, size: size}, nil
}

func (o *shmi) close() error {
	var err error
	if o.data != nil {
		if e := unix.Munmap(o.data); e != nil {
			err = os.NewSyscallError("munmap", e)
		}
		o.data = nil
	}
	if o.parent {
		if e := unix.Unlink(o.path); e != nil && err == nil && !errors.Is(e, unix.ENOENT) {
			err = os.NewSyscallError("unlink", e)
		}
	}
	return err
}
