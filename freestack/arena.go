// File: freestack/arena.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package freestack

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/momentics/hioload-fabric/api"
)

// LinkSize is the number of bytes at the start of a free slot that hold the
// link to the next free slot.
const LinkSize = 8

// Arena is a free list over count slots of stride bytes carved from
// caller-owned memory. While a slot is free its first LinkSize bytes hold
// the index of the next free slot plus one (zero ends the list); the rest of
// the slot is untouched, so trailing metadata survives on the free list.
type Arena struct {
	mem    []byte
	stride int
	count  int
	head   int
	free   int
}

// NewArena links all count slots of mem, slot 0 on top.
func NewArena(mem []byte, stride, count int) (*Arena, error) {
	if stride < LinkSize || count <= 0 || len(mem) < stride*count {
		return nil, fmt.Errorf("freestack: arena stride=%d count=%d len=%d: %w",
			stride, count, len(mem), api.ErrInvalidArgument)
	}
	a := &Arena{
		mem:    mem[:stride*count],
		stride: stride,
		count:  count,
		head:   emptyLink,
	}
	for i := count - 1; i >= 0; i-- {
		a.push(i)
	}
	return a, nil
}

// Cap returns the slot count.
func (a *Arena) Cap() int { return a.count }

// Len returns the number of free slots.
func (a *Arena) Len() int { return a.free }

// Stride returns the slot size.
func (a *Arena) Stride() int { return a.stride }

// IsEmpty reports whether no slot is free.
func (a *Arena) IsEmpty() bool { return a.head == emptyLink }

// Slot returns slot i with its capacity clipped to the stride.
func (a *Arena) Slot(i int) []byte {
	off := i * a.stride
	return a.mem[off : off+a.stride : off+a.stride]
}

// Contains reports whether p starts inside the arena memory.
func (a *Arena) Contains(p []byte) bool {
	if cap(p) == 0 {
		return false
	}
	off := sliceAddr(p) - sliceAddr(a.mem)
	return off < uintptr(len(a.mem))
}

// Index returns the slot that p starts at. p may be shorter than a slot.
func (a *Arena) Index(p []byte) int {
	if cap(p) == 0 {
		panic("freestack: index of empty slice")
	}
	off := sliceAddr(p) - sliceAddr(a.mem)
	if off >= uintptr(len(a.mem)) || off%uintptr(a.stride) != 0 {
		panic("freestack: slice does not start a slot of this arena")
	}
	return int(off / uintptr(a.stride))
}

// Push links the slot starting at p on top of the list.
func (a *Arena) Push(p []byte) {
	a.push(a.Index(p))
}

func (a *Arena) push(i int) {
	binary.NativeEndian.PutUint64(a.mem[i*a.stride:], uint64(a.head+1))
	a.head = i
	a.free++
}

// Pop unlinks the top slot and returns it. The arena must not be empty.
func (a *Arena) Pop() []byte {
	i := a.PopIndex()
	return a.Slot(i)
}

// PopIndex is Pop returning the slot index.
func (a *Arena) PopIndex() int {
	if a.head == emptyLink {
		panic("freestack: pop from empty arena")
	}
	i := a.head
	a.head = int(binary.NativeEndian.Uint64(a.mem[i*a.stride:])) - 1
	a.free--
	return i
}

func sliceAddr(p []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(p)))
}
