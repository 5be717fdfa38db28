//go:build linux
// +build linux

// File: internal/mem/mem_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux huge page support: size from /proc/meminfo, mappings via mmap with
// MAP_HUGETLB.

package mem

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-fabric/api"
)

var meminfoPath = "/proc/meminfo"

func detectHugePageSize() (int, error) {
	f, err := os.Open(meminfoPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "Hugepagesize:") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "Hugepagesize:"))
		if len(fields) == 0 {
			break
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", meminfoPath, err)
		}
		if len(fields) > 1 && strings.EqualFold(fields[1], "kB") {
			n *= 1024
		}
		return n, nil
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, api.ErrNotSupported
}

func allocHuge(size int) ([]byte, error) {
	buf, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_HUGETLB)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes MAP_HUGETLB: %w", size, err)
	}
	return buf, nil
}

func freeHuge(buf []byte) error {
	return unix.Munmap(buf)
}
