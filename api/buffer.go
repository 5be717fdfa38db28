// Package api
// Author: momentics
//
// Accounting types for region-backed buffer pools.
//
// Regions may be huge pages, aligned heap memory or shared memory segments.

package api

// BufferPoolStats aggregates buffer allocation/reuse stats.
type BufferPoolStats struct {
	EntrySize    int   // stride of one buffer including footer and padding
	NumAllocated int64 // buffers ever provisioned
	InUse        int64 // buffers currently held by callers
	Free         int64 // buffers on region free lists
	Regions      int   // live regions
	RegionBytes  int64 // bytes mapped across all regions
	Grows        int64 // successful grow calls
	GrowFailures int64 // refused or failed grow calls
	HugePages    bool  // regions are backed by huge pages
}
