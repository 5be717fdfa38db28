// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"errors"
	"fmt"

	"github.com/momentics/hioload-fabric/internal/mem"
)

// ErrInjected is returned by injected allocation failures.
var ErrInjected = errors.New("fake: injected allocation failure")

// Allocator is a region allocator for tests. "Huge" regions are plain heap
// memory; failures are injected by call number.
type Allocator struct {
	// HugeSize is the reported huge page size; 0 means unsupported.
	HugeSize int

	// FailHugeFrom makes huge allocation number n (1-based) and every later
	// one fail; 0 never fails. FailAlignedFrom does the same for aligned.
	FailHugeFrom    int
	FailAlignedFrom int

	// ShortAlignedFrom makes aligned allocation number n (1-based) and every
	// later one return half the requested bytes, capacity clipped.
	ShortAlignedFrom int

	HugeAllocs    int
	HugeFrees     int
	AlignedAllocs int
	AlignedFrees  int

	live map[uintptr]bool
}

func (a *Allocator) HugePageSize() (int, error) {
	if a.HugeSize <= 0 {
		return 0, fmt.Errorf("fake: no huge pages")
	}
	return a.HugeSize, nil
}

func (a *Allocator) AllocHuge(size int) ([]byte, error) {
	a.HugeAllocs++
	if a.FailHugeFrom > 0 && a.HugeAllocs >= a.FailHugeFrom {
		return nil, ErrInjected
	}
	buf, err := mem.AllocAligned(size, 4096)
	if err != nil {
		return nil, err
	}
	a.track(buf)
	return buf, nil
}

func (a *Allocator) FreeHuge(buf []byte) error {
	a.HugeFrees++
	return a.untrack(buf)
}

func (a *Allocator) AllocAligned(size, align int) ([]byte, error) {
	a.AlignedAllocs++
	if a.FailAlignedFrom > 0 && a.AlignedAllocs >= a.FailAlignedFrom {
		return nil, ErrInjected
	}
	buf, err := mem.AllocAligned(size, align)
	if err != nil {
		return nil, err
	}
	if a.ShortAlignedFrom > 0 && a.AlignedAllocs >= a.ShortAlignedFrom {
		buf = buf[: size/2 : size/2]
	}
	a.track(buf)
	return buf, nil
}

func (a *Allocator) FreeAligned(buf []byte) {
	a.AlignedFrees++
	_ = a.untrack(buf)
}

// Live returns the number of regions not yet freed.
func (a *Allocator) Live() int { return len(a.live) }

func (a *Allocator) track(buf []byte) {
	if a.live == nil {
		a.live = make(map[uintptr]bool)
	}
	a.live[mem.Addr(buf)] = true
}

func (a *Allocator) untrack(buf []byte) error {
	addr := mem.Addr(buf)
	if !a.live[addr] {
		return fmt.Errorf("fake: free of unknown region %#x", addr)
	}
	delete(a.live, addr)
	return nil
}
