package pool

import (
	"sync"
)

var (
	defaultOnce sync.Once
	defaultMgr  *Manager
)

// DefaultTemplate is the Config used by DefaultManager for every class.
var DefaultTemplate = Config{
	Alignment:  64,
	ChunkCount: 64,
}

// DefaultManager returns a process-wide Manager so all components reuse the
// same size-class pools instead of fragmenting allocations.
func DefaultManager() *Manager {
	defaultOnce.Do(func() {
		defaultMgr = NewManager(DefaultTemplate, nil)
	})
	return defaultMgr
}

// DefaultPool is a shortcut to fetch a pool from the default manager.
func DefaultPool(size int) (*Locked, error) {
	return DefaultManager().GetPool(size)
}
