// File: pool/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/momentics/hioload-fabric/api"
	"github.com/momentics/hioload-fabric/internal/normalize"
)

// Config describes a pool. The numeric fields can be loaded from TOML (see
// control.LoadPoolConfig); hooks and context are set in code.
type Config struct {
	// Size is the payload size of one buffer. It must hold at least one
	// pointer, since free buffers carry their free-list link in the first
	// bytes of the payload.
	Size int `toml:"size"`

	// Alignment of every buffer; 0 means pointer alignment.
	Alignment int `toml:"alignment"`

	// MaxCount caps the number of buffers ever provisioned; 0 is unbounded.
	MaxCount int `toml:"max_count"`

	// ChunkCount is the number of buffers provisioned per region.
	ChunkCount int `toml:"chunk_count"`

	// IndexTracking stamps a footer on each buffer so Index, BufferAt and
	// ContextOf work without hooks.
	IndexTracking bool `toml:"index_tracking"`

	// TrackUsage counts live buffers per region and reports leaks at
	// Destroy. Always on in hioload_debug builds.
	TrackUsage bool `toml:"track_usage"`

	// PanicOnLeak turns a leak found by Destroy into a panic.
	PanicOnLeak bool `toml:"panic_on_leak"`

	AllocHook api.RegionAllocHook `toml:"-"`
	FreeHook  api.RegionFreeHook  `toml:"-"`

	// Init runs once per buffer when its region is provisioned. The first
	// pointer-sized bytes are overwritten while the buffer sits on the free
	// list.
	Init api.EntryInitFunc `toml:"-"`

	// Context is passed to the hooks and Init.
	Context any `toml:"-"`
}

func (c Config) validate() error {
	switch {
	case c.Size < normalize.PointerSize:
		return fmt.Errorf("pool: size %d below %d: %w", c.Size, normalize.PointerSize, api.ErrInvalidArgument)
	case c.ChunkCount <= 0:
		return fmt.Errorf("pool: chunk count %d: %w", c.ChunkCount, api.ErrInvalidArgument)
	case c.MaxCount < 0:
		return fmt.Errorf("pool: max count %d: %w", c.MaxCount, api.ErrInvalidArgument)
	}
	return nil
}

// Option customizes pool construction.
type Option func(*Pool)

// WithAllocator replaces the platform allocator.
func WithAllocator(a Allocator) Option {
	return func(p *Pool) {
		p.alloc = a
	}
}

// WithLogger sets the pool logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

// WithHooks installs region hooks and their context.
func WithHooks(alloc api.RegionAllocHook, free api.RegionFreeHook, ctx any) Option {
	return func(p *Pool) {
		p.cfg.AllocHook = alloc
		p.cfg.FreeHook = free
		p.cfg.Context = ctx
	}
}

// WithInit installs the per-buffer initializer.
func WithInit(fn api.EntryInitFunc) Option {
	return func(p *Pool) {
		p.cfg.Init = fn
	}
}

// WithUsageTracking forces usage tracking on or off for non-debug builds.
func WithUsageTracking(on bool) Option {
	return func(p *Pool) {
		p.cfg.TrackUsage = on
	}
}

// WithIndexTracking enables footers for index addressing.
func WithIndexTracking() Option {
	return func(p *Pool) {
		p.cfg.IndexTracking = true
	}
}
