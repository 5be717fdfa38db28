// File: pool/manager.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Size-classed pool manager. Requests are routed to the smallest class that
// fits; each class pool is created lazily from a template Config and guarded
// by its own mutex.

package pool

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/momentics/hioload-fabric/api"
)

// DefaultSizeClasses are power-of-two payload sizes from 2 KiB to 1 MiB.
var DefaultSizeClasses = []int{
	2 * 1024,
	4 * 1024,
	8 * 1024,
	16 * 1024,
	32 * 1024,
	64 * 1024,
	128 * 1024,
	256 * 1024,
	512 * 1024,
	1024 * 1024,
}

// Manager owns one pool per size class.
type Manager struct {
	mu       sync.RWMutex
	template Config
	opts     []Option
	classes  []int
	pools    map[int]*Locked
	closed   bool
}

// NewManager builds a manager. template supplies everything but Size; nil
// classes selects DefaultSizeClasses.
func NewManager(template Config, classes []int, opts ...Option) *Manager {
	if len(classes) == 0 {
		classes = DefaultSizeClasses
	}
	cl := append([]int(nil), classes...)
	sort.Ints(cl)
	return &Manager{
		template: template,
		opts:     opts,
		classes:  cl,
		pools:    make(map[int]*Locked),
	}
}

// ClassFor returns the smallest class >= size, or false if none fits.
func (m *Manager) ClassFor(size int) (int, bool) {
	i := sort.SearchInts(m.classes, size)
	if i == len(m.classes) {
		return 0, false
	}
	return m.classes[i], true
}

// GetPool returns the pool serving buffers of at least size bytes.
func (m *Manager) GetPool(size int) (*Locked, error) {
	class, ok := m.ClassFor(size)
	if !ok {
		return nil, fmt.Errorf("pool: no size class for %d bytes: %w", size, api.ErrInvalidArgument)
	}
	m.mu.RLock()
	lp, ok := m.pools[class]
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return nil, api.ErrPoolDestroyed
	}
	if ok {
		return lp, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, api.ErrPoolDestroyed
	}
	if lp, ok = m.pools[class]; ok {
		return lp, nil
	}
	cfg := m.template
	cfg.Size = class
	p, err := New(cfg, m.opts...)
	if err != nil {
		return nil, err
	}
	lp = NewLocked(p)
	m.pools[class] = lp
	return lp, nil
}

// Stats returns per-class stats for every pool created so far.
func (m *Manager) Stats() map[int]api.BufferPoolStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]api.BufferPoolStats, len(m.pools))
	for class, lp := range m.pools {
		out[class] = lp.Stats()
	}
	return out
}

// Close destroys every pool. Later GetPool calls fail.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	var errs []error
	for class, lp := range m.pools {
		if err := lp.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("class %d: %w", class, err))
		}
	}
	m.pools = nil
	return errors.Join(errs...)
}
