// File: pool/bufpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Growable region-based buffer pool.

package pool

import (
	"errors"
	"fmt"
	"sort"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/hioload-fabric/api"
	"github.com/momentics/hioload-fabric/freestack"
	"github.com/momentics/hioload-fabric/internal/buildmode"
	"github.com/momentics/hioload-fabric/internal/logutil"
	"github.com/momentics/hioload-fabric/internal/mem"
	"github.com/momentics/hioload-fabric/internal/normalize"
)

// regionTableChunk is the growth increment of the index lookup table.
const regionTableChunk = 16

// Pool hands out fixed-size buffers carved from regions. It is not safe for
// concurrent use.
type Pool struct {
	cfg   Config
	alloc Allocator
	log   *zap.Logger

	align     int
	stride    int
	useFooter bool
	huge      bool
	hugeSize  int

	numAllocated uint64
	regions      *queue.Queue // *region, creation order
	table        []*region    // by region id, footer pools only
	byAddr       []*region    // by base address, footer-less pools only
	avail        []*region    // regions with free buffers; last is used first
	tracker      usageTracker

	grows        int64
	growFailures int64
	destroyed    bool
}

var (
	_ api.BufferPool  = (*Pool)(nil)
	_ api.IndexedPool = (*Pool)(nil)
)

// New creates a pool and provisions its first region. It fails when that
// region cannot be provisioned.
func New(cfg Config, opts ...Option) (*Pool, error) {
	p := &Pool{
		cfg:     cfg,
		alloc:   SystemAllocator(),
		log:     logutil.Named("pool"),
		regions: queue.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.cfg.validate(); err != nil {
		return nil, err
	}

	track := p.cfg.TrackUsage || buildmode.Debug
	p.useFooter = track || p.cfg.IndexTracking || p.cfg.AllocHook != nil || p.cfg.FreeHook != nil
	if track {
		p.tracker = newLiveTracker()
	} else {
		p.tracker = noTracker{}
	}
	if buildmode.Debug {
		p.cfg.PanicOnLeak = true
	}

	p.align = normalize.Alignment(p.cfg.Alignment)
	entry := p.cfg.Size
	if p.useFooter {
		entry += footerSize
	}
	p.stride = normalize.AlignUp(entry, p.align)

	if hp, err := p.alloc.HugePageSize(); err == nil && hp > 0 && p.cfg.ChunkCount*p.stride >= hp {
		p.huge = true
		p.hugeSize = hp
	}

	if err := p.Grow(); err != nil {
		return nil, err
	}
	p.log.Debug("pool created",
		zap.Int("size", p.cfg.Size),
		zap.Int("stride", p.stride),
		zap.Int("chunk_count", p.cfg.ChunkCount),
		zap.Int("max_count", p.cfg.MaxCount),
		zap.Bool("footer", p.useFooter),
		zap.Bool("huge_pages", p.huge))
	return p, nil
}

// EntrySize returns the stride of one buffer, footer and padding included.
func (p *Pool) EntrySize() int { return p.stride }

// Size returns the payload size of one buffer.
func (p *Pool) Size() int { return p.cfg.Size }

// NumAllocated returns the number of buffers provisioned so far.
func (p *Pool) NumAllocated() uint64 { return p.numAllocated }

// HugePages reports whether regions are backed by huge pages.
func (p *Pool) HugePages() bool { return p.huge }

// HasFooter reports whether buffers carry a footer, which Index, BufferAt
// and ContextOf require.
func (p *Pool) HasFooter() bool { return p.useFooter }

// Available reports whether Get can be called without growing.
func (p *Pool) Available() bool { return len(p.avail) > 0 }

// Grow provisions one more region of ChunkCount buffers.
func (p *Pool) Grow() error {
	if p.destroyed {
		return api.ErrPoolDestroyed
	}
	if p.cfg.MaxCount > 0 && p.numAllocated >= uint64(p.cfg.MaxCount) {
		p.growFailures++
		return fmt.Errorf("pool: %d of %d buffers provisioned: %w",
			p.numAllocated, p.cfg.MaxCount, api.ErrCapacityExhausted)
	}
	if err := p.provision(); err != nil {
		p.growFailures++
		return err
	}
	p.grows++
	return nil
}

func (p *Pool) provision() error {
	buf, huge, err := p.mapRegion()
	if err != nil {
		return err
	}
	r := &region{
		id:    p.regions.Length(),
		first: p.numAllocated,
		mem:   buf,
		huge:  huge,
	}

	if p.cfg.AllocHook != nil {
		ctx, err := p.cfg.AllocHook(p.cfg.Context, r.mem)
		if err != nil {
			p.log.Debug("region alloc hook failed", zap.Int("region", r.id), zap.Error(err))
			p.unmap(r)
			return fmt.Errorf("pool: region %d: %w: %w", r.id, api.ErrHookFailed, err)
		}
		r.ctx = ctx
	}

	n := p.cfg.ChunkCount
	for i := 0; i < n; i++ {
		slot := r.mem[i*p.stride : (i+1)*p.stride]
		if p.cfg.Init != nil {
			p.cfg.Init(p.cfg.Context, slot[:p.cfg.Size:p.cfg.Size])
		}
		if p.useFooter {
			writeFooter(slot, p.cfg.Size, footer{region: uint64(r.id), index: r.first + uint64(i)})
		}
	}
	slots, err := freestack.NewArena(r.mem, p.stride, n)
	if err != nil {
		// mapRegion guarantees the length; kept so a hook never outlives a
		// region that failed to link.
		if p.cfg.FreeHook != nil {
			p.cfg.FreeHook(p.cfg.Context, r.ctx)
		}
		p.unmap(r)
		return fmt.Errorf("pool: region %d: %w: %w", r.id, api.ErrAllocFailed, err)
	}
	r.slots = slots

	if p.useFooter {
		if len(p.table) == cap(p.table) {
			grown := make([]*region, len(p.table), len(p.table)+regionTableChunk)
			copy(grown, p.table)
			p.table = grown
		}
		p.table = append(p.table, r)
	} else {
		at := sort.Search(len(p.byAddr), func(i int) bool { return p.byAddr[i].base() > r.base() })
		p.byAddr = append(p.byAddr, nil)
		copy(p.byAddr[at+1:], p.byAddr[at:])
		p.byAddr[at] = r
	}
	p.regions.Add(r)
	p.avail = append(p.avail, r)
	r.inAvail = true
	p.numAllocated += uint64(n)

	p.log.Debug("region provisioned",
		zap.Int("region", r.id),
		zap.Int("bytes", r.size()),
		zap.Bool("huge_page", r.huge),
		zap.Uint64("num_allocated", p.numAllocated))
	return nil
}

// mapRegion obtains memory for one region. A huge page failure before the
// first region downgrades the pool to aligned memory for good; after that it
// fails the grow, so a pool never mixes backing kinds.
func (p *Pool) mapRegion() ([]byte, bool, error) {
	want := p.cfg.ChunkCount * p.stride
	if p.huge {
		size := normalize.AlignUpAny(want, p.hugeSize)
		buf, err := p.alloc.AllocHuge(size)
		if err == nil {
			if len(buf) < want {
				err = p.alloc.FreeHuge(buf)
				return nil, false, shortRegion(len(buf), want, err)
			}
			return buf, true, nil
		}
		p.log.Debug("huge page allocation failed", zap.Int("bytes", size), zap.Error(err))
		if p.regions.Length() > 0 {
			return nil, false, fmt.Errorf("pool: huge page region of %d bytes: %w: %w", size, api.ErrAllocFailed, err)
		}
		p.huge = false
	}
	buf, err := p.alloc.AllocAligned(want, p.align)
	if err != nil {
		return nil, false, fmt.Errorf("pool: region of %d bytes: %w: %w", want, api.ErrAllocFailed, err)
	}
	if len(buf) < want {
		p.alloc.FreeAligned(buf)
		return nil, false, shortRegion(len(buf), want, nil)
	}
	return buf, false, nil
}

func shortRegion(got, want int, freeErr error) error {
	err := fmt.Errorf("pool: allocator returned %d of %d region bytes: %w", got, want, api.ErrAllocFailed)
	if freeErr != nil {
		return errors.Join(err, freeErr)
	}
	return err
}

func (p *Pool) unmap(r *region) error {
	if !r.huge {
		p.alloc.FreeAligned(r.mem)
		r.mem = nil
		return nil
	}
	err := p.alloc.FreeHuge(r.mem)
	r.mem = nil
	if err != nil {
		p.log.Error("huge page free failed", zap.Int("region", r.id), zap.Error(err))
		return fmt.Errorf("pool: free region %d: %w", r.id, err)
	}
	return nil
}

// Alloc returns a free buffer, growing the pool once when none is free.
func (p *Pool) Alloc() ([]byte, error) {
	buf, _, err := p.alloc1()
	return buf, err
}

// AllocWithContext is Alloc that also returns the region hook context.
func (p *Pool) AllocWithContext() ([]byte, any, error) {
	buf, r, err := p.alloc1()
	if err != nil {
		return nil, nil, err
	}
	return buf, r.ctx, nil
}

func (p *Pool) alloc1() ([]byte, *region, error) {
	if p.destroyed {
		return nil, nil, api.ErrPoolDestroyed
	}
	if len(p.avail) == 0 {
		if err := p.Grow(); err != nil {
			return nil, nil, err
		}
	}
	buf, r := p.get()
	return buf, r, nil
}

// Get returns a free buffer without growing. The caller must have checked
// Available.
func (p *Pool) Get() []byte {
	buf, _ := p.get()
	return buf
}

// GetWithContext is Get that also returns the region hook context.
func (p *Pool) GetWithContext() ([]byte, any) {
	buf, r := p.get()
	return buf, r.ctx
}

func (p *Pool) get() ([]byte, *region) {
	top := len(p.avail) - 1
	if top < 0 {
		panic("pool: get with no free buffer")
	}
	r := p.avail[top]
	i := r.slots.PopIndex()
	if r.slots.IsEmpty() {
		p.avail[top] = nil
		p.avail = p.avail[:top]
		r.inAvail = false
	}
	p.tracker.acquired(r, r.first+uint64(i))
	return r.slots.Slot(i)[:p.cfg.Size:p.cfg.Size], r
}

// Release returns buf to its region. buf must be a buffer returned by this
// pool and must not be used afterwards.
func (p *Pool) Release(buf []byte) {
	r := p.owner(buf)
	i := r.slots.Index(buf)
	p.tracker.released(r, r.first+uint64(i))
	r.slots.Push(buf)
	if !r.inAvail {
		p.avail = append(p.avail, r)
		r.inAvail = true
	}
}

func (p *Pool) owner(buf []byte) *region {
	if cap(buf) == 0 {
		panic("pool: release of empty slice")
	}
	if p.useFooter {
		f := readFooter(buf, p.cfg.Size)
		if f.region >= uint64(len(p.table)) {
			panic(fmt.Sprintf("pool: footer names unknown region %d", f.region))
		}
		return p.table[f.region]
	}
	addr := mem.Addr(buf)
	at := sort.Search(len(p.byAddr), func(i int) bool { return p.byAddr[i].base() > addr }) - 1
	if at < 0 || !p.byAddr[at].slots.Contains(buf) {
		panic("pool: buffer does not belong to this pool")
	}
	return p.byAddr[at]
}

func (p *Pool) mustFooter(op string) {
	if !p.useFooter {
		panic("pool: " + op + " needs buffer footers; enable IndexTracking or hooks")
	}
}

// Index returns the pool-wide index of buf.
func (p *Pool) Index(buf []byte) uint64 {
	p.mustFooter("Index")
	return readFooter(buf, p.cfg.Size).index
}

// BufferAt returns the buffer with the given index. It is the inverse of
// Index for as long as the owning region lives.
func (p *Pool) BufferAt(index uint64) []byte {
	p.mustFooter("BufferAt")
	chunk := uint64(p.cfg.ChunkCount)
	ri := index / chunk
	if ri >= uint64(len(p.table)) {
		panic(fmt.Sprintf("pool: index %d beyond %d provisioned buffers", index, p.numAllocated))
	}
	return p.table[ri].slots.Slot(int(index % chunk))[:p.cfg.Size:p.cfg.Size]
}

// ContextOf returns the hook context of the region owning buf.
func (p *Pool) ContextOf(buf []byte) any {
	p.mustFooter("ContextOf")
	return p.owner(buf).ctx
}

// Outstanding lists the indices of buffers currently held by callers. It is
// empty for pools without usage tracking.
func (p *Pool) Outstanding() []uint64 {
	return p.tracker.outstanding()
}

// Regions describes the live regions in creation order.
func (p *Pool) Regions() []RegionInfo {
	out := make([]RegionInfo, 0, p.regions.Length())
	for i := 0; i < p.regions.Length(); i++ {
		out = append(out, p.regions.Get(i).(*region).info())
	}
	return out
}

// Stats returns a snapshot of pool accounting.
func (p *Pool) Stats() api.BufferPoolStats {
	st := api.BufferPoolStats{
		EntrySize:    p.stride,
		NumAllocated: int64(p.numAllocated),
		Regions:      p.regions.Length(),
		Grows:        p.grows,
		GrowFailures: p.growFailures,
		HugePages:    p.huge,
	}
	for i := 0; i < p.regions.Length(); i++ {
		r := p.regions.Get(i).(*region)
		st.Free += int64(r.slots.Len())
		st.RegionBytes += int64(r.size())
	}
	st.InUse = st.NumAllocated - st.Free
	return st
}

// Destroy tears down every region: leak check, free hook, memory release.
// Leaks are reported as an error wrapping api.ErrLeakDetected, or a panic
// when PanicOnLeak is set. The pool is unusable afterwards.
func (p *Pool) Destroy() error {
	if p.destroyed {
		return api.ErrPoolDestroyed
	}
	var errs []error
	leaked := false
	for p.regions.Length() > 0 {
		r := p.regions.Remove().(*region)
		if err := p.tracker.leaked(r); err != nil {
			p.log.Warn("region destroyed with live buffers", zap.Int("region", r.id), zap.Int("in_use", r.used))
			errs = append(errs, err)
			leaked = true
		}
		if p.cfg.FreeHook != nil {
			p.cfg.FreeHook(p.cfg.Context, r.ctx)
		}
		if err := p.unmap(r); err != nil {
			errs = append(errs, err)
		}
		r.slots = nil
	}
	p.table = nil
	p.byAddr = nil
	p.avail = nil
	p.destroyed = true

	err := errors.Join(errs...)
	if leaked && p.cfg.PanicOnLeak {
		panic(err.Error())
	}
	return err
}
