// File: internal/mem/mem.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform memory primitives used to back buffer pool regions: huge page
// mappings with an aligned heap fallback. Platform-specific code lives in
// mem_linux.go, mem_windows.go and mem_stub.go.

package mem

import (
	"fmt"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/momentics/hioload-fabric/api"
	"github.com/momentics/hioload-fabric/internal/logutil"
	"github.com/momentics/hioload-fabric/internal/normalize"
)

// Capabilities describes what the platform offers for region backing.
// It is resolved once per process.
type Capabilities struct {
	HugePageSize int  // bytes, 0 when unsupported
	HugePages    bool // huge page mappings can be requested
}

var (
	capsOnce sync.Once
	caps     Capabilities
)

// Caps returns the process-scoped capabilities, detecting them on first use.
func Caps() Capabilities {
	capsOnce.Do(func() {
		size, err := detectHugePageSize()
		if err != nil || size <= 0 {
			logutil.Named("mem").Debug("huge pages unavailable", zap.Error(err))
			return
		}
		caps = Capabilities{HugePageSize: size, HugePages: true}
	})
	return caps
}

// HugePageSize reports the platform huge page size.
func HugePageSize() (int, error) {
	c := Caps()
	if !c.HugePages {
		return 0, api.ErrNotSupported
	}
	return c.HugePageSize, nil
}

// AllocHuge maps size bytes of huge page memory. size should be a multiple
// of HugePageSize.
func AllocHuge(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("huge page alloc of %d bytes: %w", size, api.ErrInvalidArgument)
	}
	return allocHuge(size)
}

// FreeHuge unmaps memory returned by AllocHuge.
func FreeHuge(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return freeHuge(buf)
}

// AllocAligned returns size bytes of Go heap memory whose first byte is
// aligned to align (a power of two). Capacity is clipped to size.
func AllocAligned(size, align int) ([]byte, error) {
	if size <= 0 || !normalize.IsPow2(align) {
		return nil, fmt.Errorf("aligned alloc size=%d align=%d: %w", size, align, api.ErrInvalidArgument)
	}
	raw := make([]byte, size+align-1)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	off := int(uintptr(normalize.AlignUp(int(base), align)) - base)
	return raw[off : off+size : off+size], nil
}

// FreeAligned drops memory returned by AllocAligned. The Go heap owns it,
// so this only exists to keep alloc/free pairs symmetric at call sites.
func FreeAligned(buf []byte) {}

// Addr returns the address of the first byte of buf, 0 for an empty slice.
func Addr(buf []byte) uintptr {
	if cap(buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
}

// System is the default platform allocator.
type System struct{}

func (System) HugePageSize() (int, error)                   { return HugePageSize() }
func (System) AllocHuge(size int) ([]byte, error)           { return AllocHuge(size) }
func (System) FreeHuge(buf []byte) error                    { return FreeHuge(buf) }
func (System) AllocAligned(size, align int) ([]byte, error) { return AllocAligned(size, align) }
func (System) FreeAligned(buf []byte)                       { FreeAligned(buf) }
