// File: pool/locked.go
// Author: momentics <momentics@gmail.com>
//
// Mutex-guarded pool for callers that share one pool between goroutines.

package pool

import (
	"sync"

	"github.com/momentics/hioload-fabric/api"
)

// Locked serializes every call to the wrapped Pool.
type Locked struct {
	mu sync.Mutex
	p  *Pool
}

var _ api.IndexedPool = (*Locked)(nil)

// NewLocked wraps p. p must not be used directly afterwards.
func NewLocked(p *Pool) *Locked {
	return &Locked{p: p}
}

func (l *Locked) Alloc() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Alloc()
}

func (l *Locked) AllocWithContext() ([]byte, any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.AllocWithContext()
}

func (l *Locked) Release(buf []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.p.Release(buf)
}

func (l *Locked) Index(buf []byte) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Index(buf)
}

func (l *Locked) BufferAt(index uint64) []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.BufferAt(index)
}

func (l *Locked) ContextOf(buf []byte) any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.ContextOf(buf)
}

func (l *Locked) Stats() api.BufferPoolStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Stats()
}

func (l *Locked) Outstanding() []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Outstanding()
}

// Size returns the payload size of one buffer.
func (l *Locked) Size() int { return l.p.Size() }

func (l *Locked) Destroy() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Destroy()
}
