//go:build unix

// File: shm/shm_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package shm

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// Dir holds segment files. tmpfs-backed on Linux.
var Dir = defaultDir()

func defaultDir() string {
	if runtime.GOOS == "linux" {
		return "/dev/shm"
	}
	return os.TempDir()
}

func mapSegment(path string, size int, create bool) ([]byte, error) {
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return nil, err
	}
	defer f.Close() // the mapping outlives the descriptor

	if create {
		if err := f.Truncate(int64(size)); err != nil {
			os.Remove(path)
			return nil, err
		}
	} else {
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		if info.Size() == 0 || info.Size() > int64(^uint(0)>>1) {
			return nil, fmt.Errorf("segment file of %d bytes", info.Size())
		}
		size = int(info.Size())
	}

	buf, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		if create {
			os.Remove(path)
		}
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	return buf, nil
}

func unmapSegment(buf []byte) error {
	return unix.Munmap(buf)
}

func syncSegment(buf []byte) error {
	return unix.Msync(buf, unix.MS_SYNC)
}

func removeSegment(path string) error {
	return os.Remove(path)
}
