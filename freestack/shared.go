// File: freestack/shared.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package freestack

import (
	"encoding/binary"
	"fmt"

	"github.com/momentics/hioload-fabric/api"
	"github.com/momentics/hioload-fabric/internal/buildmode"
	"github.com/momentics/hioload-fabric/internal/normalize"
)

// Shared image layout, all fields native-endian uint64:
//
//	header: magic | base | size | stride | next | free
//	entry:  link  | payload[stride]
//
// base is the address of the image in the process that initialized it.
// Links (next and every entry link) hold base+offset, never a local address.
const (
	sharedMagic = 0x6673_7461_636b_3031 // "fstack01"

	hdrMagic  = 0
	hdrBase   = 8
	hdrSize   = 16
	hdrStride = 24
	hdrNext   = 32
	hdrFree   = 40

	// SharedHeaderSize is the byte size of the image header.
	SharedHeaderSize = 48

	sharedEmpty   = 0
	sharedOffList = ^uint64(0)
)

// Shared is a free list living in a byte image that several address spaces
// may map at different virtual addresses.
type Shared struct {
	mem    []byte
	local  uintptr
	base   uint64
	size   int
	stride int
	checks bool
}

// SharedSize returns the image size for count entries (rounded up to a power
// of two) of stride payload bytes (rounded up to 8).
func SharedSize(count, stride int) int {
	n := normalize.RoundUpPow2(count)
	return SharedHeaderSize + n*(LinkSize+normalize.AlignUp(stride, LinkSize))
}

// InitShared formats mem as a fresh free list and links every entry,
// entry 0 on top. The current address of mem becomes the image base.
func InitShared(mem []byte, count, stride int) (*Shared, error) {
	if count <= 0 || stride < LinkSize {
		return nil, fmt.Errorf("freestack: shared count=%d stride=%d: %w", count, stride, api.ErrInvalidArgument)
	}
	need := SharedSize(count, stride)
	if len(mem) < need {
		return nil, fmt.Errorf("freestack: shared image needs %d bytes, have %d: %w", need, len(mem), api.ErrInvalidArgument)
	}
	s := &Shared{
		mem:    mem[:need],
		local:  sliceAddr(mem),
		size:   normalize.RoundUpPow2(count),
		stride: normalize.AlignUp(stride, LinkSize),
		checks: buildmode.Debug,
	}
	s.base = uint64(s.local)
	s.put(hdrMagic, sharedMagic)
	s.put(hdrBase, s.base)
	s.put(hdrSize, uint64(s.size))
	s.put(hdrStride, uint64(s.stride))
	s.put(hdrNext, sharedEmpty)
	s.put(hdrFree, 0)
	for i := s.size - 1; i >= 0; i-- {
		s.put(s.entryOff(i), sharedOffList)
		s.pushEntry(s.entryOff(i))
	}
	return s, nil
}

// AttachShared views an image initialized elsewhere, possibly by another
// process, at the address mem has in this process.
func AttachShared(mem []byte) (*Shared, error) {
	if len(mem) < SharedHeaderSize {
		return nil, fmt.Errorf("freestack: image of %d bytes: %w", len(mem), api.ErrCorruptImage)
	}
	s := &Shared{mem: mem, local: sliceAddr(mem), checks: buildmode.Debug}
	if s.get(hdrMagic) != sharedMagic {
		return nil, fmt.Errorf("freestack: bad magic: %w", api.ErrCorruptImage)
	}
	s.base = s.get(hdrBase)
	s.size = int(s.get(hdrSize))
	s.stride = int(s.get(hdrStride))
	if !normalize.IsPow2(s.size) || s.stride < LinkSize || len(mem) < SharedSize(s.size, s.stride) {
		return nil, fmt.Errorf("freestack: size=%d stride=%d len=%d: %w", s.size, s.stride, len(mem), api.ErrCorruptImage)
	}
	s.mem = mem[:SharedSize(s.size, s.stride)]
	return s, nil
}

// SetChecks toggles double-push detection.
func (s *Shared) SetChecks(on bool) { s.checks = on }

// BaseAddr returns the creation-time address stored in the image.
func (s *Shared) BaseAddr() uintptr { return uintptr(s.base) }

// LocalAddr returns the address of the image in this process.
func (s *Shared) LocalAddr() uintptr { return s.local }

// Cap returns the entry count.
func (s *Shared) Cap() int { return s.size }

// Len returns the number of free entries.
func (s *Shared) Len() int { return int(s.get(hdrFree)) }

// Stride returns the payload size of one entry.
func (s *Shared) Stride() int { return s.stride }

// IsEmpty reports whether no entry is free.
func (s *Shared) IsEmpty() bool { return s.get(hdrNext) == sharedEmpty }

// Push returns the entry whose payload starts at p.
func (s *Shared) Push(p []byte) {
	off := s.entryOff(s.Index(p))
	if s.checks && s.get(off) != sharedOffList {
		panic(fmt.Sprintf("freestack: shared entry at offset %d pushed while already free", off))
	}
	s.pushEntry(off)
}

// pushEntry links the entry at local offset off. The stored value is the
// entry's address as seen by the initializing process.
func (s *Shared) pushEntry(off int) {
	s.put(off, s.get(hdrNext))
	s.put(hdrNext, s.base+uint64(off))
	s.put(hdrFree, s.get(hdrFree)+1)
}

// Pop unlinks the top entry and returns its payload in local memory.
func (s *Shared) Pop() []byte {
	stored := s.get(hdrNext)
	if stored == sharedEmpty {
		panic("freestack: pop from empty shared stack")
	}
	off := s.localOff(stored)
	s.put(hdrNext, s.get(off))
	s.put(off, sharedOffList)
	s.put(hdrFree, s.get(hdrFree)-1)
	return s.payload(off)
}

// Index returns the entry position of payload p.
func (s *Shared) Index(p []byte) int {
	if cap(p) == 0 {
		panic("freestack: index of empty slice")
	}
	first := s.local + SharedHeaderSize + LinkSize
	addr := sliceAddr(p)
	esz := uintptr(LinkSize + s.stride)
	off := addr - first
	if addr < first || off%esz != 0 || off/esz >= uintptr(s.size) {
		panic("freestack: slice is not an entry payload of this image")
	}
	return int(off / esz)
}

// Entry returns the payload of entry i regardless of its state.
func (s *Shared) Entry(i int) []byte { return s.payload(s.entryOff(i)) }

// localOff translates a stored link into an offset into local memory:
// local = local_base + (stored - base).
func (s *Shared) localOff(stored uint64) int {
	rel := stored - s.base
	esz := uint64(LinkSize + s.stride)
	if rel < SharedHeaderSize || rel >= uint64(len(s.mem)) || (rel-SharedHeaderSize)%esz != 0 {
		panic(fmt.Sprintf("freestack: stored link %#x is not an entry of the image based at %#x", stored, s.base))
	}
	return int(rel)
}

func (s *Shared) entryOff(i int) int {
	return SharedHeaderSize + i*(LinkSize+s.stride)
}

func (s *Shared) payload(off int) []byte {
	start := off + LinkSize
	return s.mem[start : start+s.stride : start+s.stride]
}

func (s *Shared) get(off int) uint64 {
	return binary.NativeEndian.Uint64(s.mem[off:])
}

func (s *Shared) put(off int, v uint64) {
	binary.NativeEndian.PutUint64(s.mem[off:], v)
}
