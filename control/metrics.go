// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics registry. Pools publish their stats here under
// "pool.<name>.<field>" keys.

package control

import (
	"sync"
	"time"

	"github.com/momentics/hioload-fabric/api"
)

// MetricsRegistry holds the latest value of every published metric.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Get returns the value stored under key.
func (mr *MetricsRegistry) Get(key string) (any, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	v, ok := mr.metrics[key]
	return v, ok
}

// PublishPool stores one snapshot of pool stats under "pool.<name>.".
func (mr *MetricsRegistry) PublishPool(name string, st api.BufferPoolStats) {
	prefix := "pool." + name + "."
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.metrics[prefix+"entry_size"] = st.EntrySize
	mr.metrics[prefix+"num_allocated"] = st.NumAllocated
	mr.metrics[prefix+"in_use"] = st.InUse
	mr.metrics[prefix+"free"] = st.Free
	mr.metrics[prefix+"regions"] = st.Regions
	mr.metrics[prefix+"region_bytes"] = st.RegionBytes
	mr.metrics[prefix+"grows"] = st.Grows
	mr.metrics[prefix+"grow_failures"] = st.GrowFailures
	mr.metrics[prefix+"huge_pages"] = st.HugePages
	mr.updated = time.Now()
}

// Updated returns the time of the last write.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}
