// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs: fixed-size buffer pools with region hooks
// and index addressing.

package api

// RegionAllocHook is invoked once per provisioned region with the region
// memory. The returned value is kept as the region context (for example a
// memory registration handle).
type RegionAllocHook func(poolCtx any, mem []byte) (regionCtx any, err error)

// RegionFreeHook undoes RegionAllocHook when the region is torn down.
type RegionFreeHook func(poolCtx any, regionCtx any)

// EntryInitFunc runs exactly once per buffer when its region is provisioned.
type EntryInitFunc func(poolCtx any, buf []byte)

// BufferPool hands out fixed-size buffers.
type BufferPool interface {
	// Alloc returns a free buffer, growing the pool once if needed.
	Alloc() ([]byte, error)

	// AllocWithContext is Alloc plus the owning region's hook context.
	AllocWithContext() ([]byte, any, error)

	// Release returns buf to the pool; buf must not be used afterwards.
	Release(buf []byte)

	// Stats exposes accounting for observability.
	Stats() BufferPoolStats
}

// IndexedPool addresses buffers by a compact pool-wide index.
type IndexedPool interface {
	BufferPool

	// Index returns the index stamped on buf at provisioning time.
	Index(buf []byte) uint64

	// BufferAt is the inverse of Index.
	BufferAt(index uint64) []byte

	// ContextOf returns the hook context of buf's region.
	ContextOf(buf []byte) any
}
