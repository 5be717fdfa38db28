// Package pool
// Author: momentics <momentics@gmail.com>
//
// Growable, region-based pools of fixed-size buffers for the fabric layer.
//
// A Pool provisions memory in regions of ChunkCount buffers, from huge pages
// when a region is at least one huge page and from aligned heap memory
// otherwise. Each region keeps its own intrusive free list
// (freestack.Arena). Optional hooks register region memory with an external
// resource manager, and an optional per-buffer footer lets buffers be
// addressed by a compact index.
//
// Pool does no locking. Use one pool per goroutine, or wrap it in Locked.
// See bufpool.go for the pool itself, manager.go for size-class pooling.
package pool
