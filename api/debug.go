// Package api
// Author: momentics
//
// Live debug support for pools running in production.

package api

// Debug exposes runtime introspection and health API.
type Debug interface {
	// DumpState emits a snapshot of system state for diagnostics.
	DumpState() map[string]any

	// RegisterProbe dynamically registers new debug probes.
	RegisterProbe(name string, fn func() any)
}

// PoolInspector is the read-only view of a pool that debug probes dump.
type PoolInspector interface {
	Stats() BufferPoolStats
	Outstanding() []uint64
}
