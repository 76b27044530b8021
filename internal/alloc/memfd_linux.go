// +build linux

package alloc

import (
	"golang.org/x/sys/unix"
	errors "golang.org/x/xerrors"
)

func allocMemFd(p Params) (*Set, error) {
	plane, perBuffer := p.layout()
	size := perBuffer * int(p.Buffers)

	fd, err := unix.MemfdCreate("alohaspa-buffers", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, errors.Errorf("memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, errors.Errorf("ftruncate %d: %w", size, err)
	}
	// Size is fixed from now on.
	unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS, unix.F_SEAL_SHRINK|unix.F_SEAL_GROW)

	mem, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, errors.Errorf("mmap %d: %w", size, err)
	}

	free := func() error {
		err := unix.Munmap(mem)
		if cerr := unix.Close(fd); err == nil {
			err = cerr
		}
		return err
	}
	return &Set{Buffers: carve(p, mem, plane, perBuffer, int64(fd)), free: free}, nil
}
