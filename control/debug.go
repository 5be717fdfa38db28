// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Debug probe registry; pools register a probe that dumps their stats and
// outstanding buffers.

package control

import (
	"sync"

	"github.com/momentics/hioload-fabric/api"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

var _ api.Debug = (*DebugProbes)(nil)

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// PoolState is what a pool probe reports.
type PoolState struct {
	Stats       api.BufferPoolStats
	Outstanding []uint64
}

// RegisterPool adds a "pool.<name>" probe over p. Outstanding is only
// populated for pools with usage tracking.
func (dp *DebugProbes) RegisterPool(name string, p api.PoolInspector) {
	dp.RegisterProbe("pool."+name, func() any {
		return PoolState{Stats: p.Stats(), Outstanding: p.Outstanding()}
	})
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any)
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}
