//go:build windows
// +build windows

// File: internal/mem/mem_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows large page support via VirtualAlloc(MEM_LARGE_PAGES). The process
// needs SeLockMemoryPrivilege, otherwise allocation fails and pools fall back
// to aligned heap memory.

package mem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/momentics/hioload-fabric/api"
)

var procGetLargePageMinimum = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetLargePageMinimum")

func detectHugePageSize() (int, error) {
	if err := procGetLargePageMinimum.Find(); err != nil {
		return 0, err
	}
	ret, _, _ := procGetLargePageMinimum.Call()
	if ret == 0 {
		return 0, api.ErrNotSupported
	}
	return int(ret), nil
}

func allocHuge(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT|windows.MEM_LARGE_PAGES,
		windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("VirtualAlloc %d bytes MEM_LARGE_PAGES: %w", size, err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func freeHuge(buf []byte) error {
	return windows.VirtualFree(Addr(buf), 0, windows.MEM_RELEASE)
}
