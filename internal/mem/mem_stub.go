//go:build !linux && !windows
// +build !linux,!windows

// File: internal/mem/mem_stub.go
// Author: momentics <momentics@gmail.com>
//
// Huge pages are not offered on this platform.

package mem

import "github.com/momentics/hioload-fabric/api"

func detectHugePageSize() (int, error) {
	return 0, api.ErrNotSupported
}

func allocHuge(int) ([]byte, error) {
	return nil, api.ErrNotSupported
}

func freeHuge([]byte) error {
	return api.ErrNotSupported
}
