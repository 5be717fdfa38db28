// File: pool/allocator.go
// Author: momentics <momentics@gmail.com>
//
// Region memory backend. The default backend is the platform allocator in
// internal/mem; tests and embedders can supply their own.

package pool

import "github.com/momentics/hioload-fabric/internal/mem"

// Allocator obtains and releases region memory.
type Allocator interface {
	// HugePageSize reports the huge page size or an error when huge pages
	// are not available.
	HugePageSize() (int, error)
	AllocHuge(size int) ([]byte, error)
	FreeHuge(buf []byte) error
	AllocAligned(size, align int) ([]byte, error)
	FreeAligned(buf []byte)
}

// SystemAllocator returns the platform allocator.
func SystemAllocator() Allocator { return mem.System{} }
