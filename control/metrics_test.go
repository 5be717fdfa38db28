package control_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-fabric/control"
	"github.com/momentics/hioload-fabric/fake"
	"github.com/momentics/hioload-fabric/pool"
)

func newTrackedPool(t *testing.T) *pool.Pool {
	t.Helper()
	p, err := pool.New(pool.Config{Size: 64, ChunkCount: 4, TrackUsage: true},
		pool.WithAllocator(&fake.Allocator{}))
	require.NoError(t, err)
	return p
}

func TestPublishPool(t *testing.T) {
	p := newTrackedPool(t)
	_, err := p.Alloc()
	require.NoError(t, err)

	mr := control.NewMetricsRegistry()
	assert.True(t, mr.Updated().IsZero())
	mr.PublishPool("rx", p.Stats())
	assert.False(t, mr.Updated().IsZero())

	v, ok := mr.Get("pool.rx.in_use")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
	v, _ = mr.Get("pool.rx.num_allocated")
	assert.Equal(t, int64(4), v)
	v, _ = mr.Get("pool.rx.regions")
	assert.Equal(t, 1, v)

	snap := mr.GetSnapshot()
	assert.Len(t, snap, 9)
	mr.Set("custom", "x")
	assert.Len(t, snap, 9)
}

func TestDebugProbesDumpPool(t *testing.T) {
	p := newTrackedPool(t)
	buf, err := p.Alloc()
	require.NoError(t, err)

	dp := control.NewDebugProbes()
	dp.RegisterPool("rx", p)
	control.RegisterPlatformProbes(dp)

	state := dp.DumpState()
	st, ok := state["pool.rx"].(control.PoolState)
	require.True(t, ok)
	assert.Equal(t, int64(1), st.Stats.InUse)
	assert.Equal(t, []uint64{p.Index(buf)}, st.Outstanding)
	assert.Contains(t, state, "platform.cpus")
	assert.Contains(t, state, "platform.huge_page_size")

	p.Release(buf)
	st = dp.DumpState()["pool.rx"].(control.PoolState)
	assert.Empty(t, st.Outstanding)
}
