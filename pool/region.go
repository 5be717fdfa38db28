// File: pool/region.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"github.com/momentics/hioload-fabric/freestack"
	"github.com/momentics/hioload-fabric/internal/mem"
)

// region is one contiguous extent backing ChunkCount buffers.
type region struct {
	id    int    // creation order
	first uint64 // pool index of slot 0
	mem   []byte
	huge  bool
	ctx   any // returned by the alloc hook
	slots *freestack.Arena
	used  int // live buffers, tracked pools only

	inAvail bool
}

func (r *region) base() uintptr { return mem.Addr(r.mem) }

func (r *region) size() int { return len(r.mem) }

// RegionInfo is a read-only view of a region for diagnostics.
type RegionInfo struct {
	ID       int
	Base     uintptr
	Size     int
	HugePage bool
	Free     int
	InUse    int
	Context  any
}

func (r *region) info() RegionInfo {
	return RegionInfo{
		ID:       r.id,
		Base:     r.base(),
		Size:     r.size(),
		HugePage: r.huge,
		Free:     r.slots.Len(),
		InUse:    r.slots.Cap() - r.slots.Len(),
		Context:  r.ctx,
	}
}
