// File: pool/tracker.go
// Author: momentics <momentics@gmail.com>
//
// Usage accounting. Tracked pools count live buffers per region and keep the
// set of outstanding indices, which catches double releases and names the
// leaked buffers at Destroy. Untracked pools use the no-op tracker.

package pool

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/momentics/hioload-fabric/api"
)

type usageTracker interface {
	acquired(r *region, index uint64)
	released(r *region, index uint64)
	leaked(r *region) error
	outstanding() []uint64
}

type noTracker struct{}

func (noTracker) acquired(*region, uint64) {}
func (noTracker) released(*region, uint64) {}
func (noTracker) leaked(*region) error     { return nil }
func (noTracker) outstanding() []uint64    { return nil }

type liveTracker struct {
	held *roaring64.Bitmap
}

func newLiveTracker() *liveTracker {
	return &liveTracker{held: roaring64.NewBitmap()}
}

func (t *liveTracker) acquired(r *region, index uint64) {
	r.used++
	t.held.Add(index)
}

func (t *liveTracker) released(r *region, index uint64) {
	if r.used == 0 {
		panic(fmt.Sprintf("pool: release underflows region %d", r.id))
	}
	if !t.held.Contains(index) {
		panic(fmt.Sprintf("pool: buffer %d released twice", index))
	}
	r.used--
	t.held.Remove(index)
}

func (t *liveTracker) leaked(r *region) error {
	if r.used == 0 {
		return nil
	}
	last := r.first + uint64(r.slots.Cap())
	var idx []uint64
	it := t.held.Iterator()
	for it.HasNext() {
		i := it.Next()
		if i >= r.first && i < last {
			idx = append(idx, i)
		}
	}
	return api.NewError(api.ErrCodeLeak, "pool: region destroyed with live buffers").
		WithContext("region", r.id).
		WithContext("in_use", r.used).
		WithContext("indices", idx).
		WithCause(api.ErrLeakDetected)
}

func (t *liveTracker) outstanding() []uint64 {
	return t.held.ToArray()
}
