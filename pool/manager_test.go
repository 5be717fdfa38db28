package pool_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-fabric/api"
	"github.com/momentics/hioload-fabric/fake"
	"github.com/momentics/hioload-fabric/pool"
)

func TestManagerClassFor(t *testing.T) {
	m := pool.NewManager(pool.Config{ChunkCount: 2}, []int{4096, 64, 512})
	for size, want := range map[int]int{1: 64, 64: 64, 65: 512, 4096: 4096} {
		class, ok := m.ClassFor(size)
		assert.True(t, ok, size)
		assert.Equal(t, want, class, size)
	}
	_, ok := m.ClassFor(4097)
	assert.False(t, ok)

	_, err := m.GetPool(1 << 20)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestManagerReusesClassPool(t *testing.T) {
	fa := &fake.Allocator{}
	m := pool.NewManager(pool.Config{ChunkCount: 4}, []int{64, 256}, pool.WithAllocator(fa))

	a, err := m.GetPool(10)
	require.NoError(t, err)
	b, err := m.GetPool(64)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 64, a.Size())

	c, err := m.GetPool(100)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 256, c.Size())
	assert.Equal(t, 2, fa.AlignedAllocs)

	buf, err := c.Alloc()
	require.NoError(t, err)
	assert.Len(t, buf, 256)
	c.Release(buf)

	st := m.Stats()
	assert.Len(t, st, 2)
	assert.Equal(t, int64(4), st[256].NumAllocated)
}

func TestManagerConcurrentGetPool(t *testing.T) {
	m := pool.NewManager(pool.Config{ChunkCount: 4}, []int{128})
	got := make([]*pool.Locked, 16)
	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lp, err := m.GetPool(100)
			assert.NoError(t, err)
			got[i] = lp
		}(i)
	}
	wg.Wait()
	for _, lp := range got[1:] {
		assert.Same(t, got[0], lp)
	}
	assert.NoError(t, m.Close())
}

func TestManagerClose(t *testing.T) {
	fa := &fake.Allocator{}
	m := pool.NewManager(pool.Config{ChunkCount: 2}, []int{64, 128}, pool.WithAllocator(fa))
	_, err := m.GetPool(64)
	require.NoError(t, err)
	_, err = m.GetPool(128)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	assert.Zero(t, fa.Live())
	assert.NoError(t, m.Close())

	_, err = m.GetPool(64)
	assert.ErrorIs(t, err, api.ErrPoolDestroyed)
}

func TestManagerCloseReportsLeaks(t *testing.T) {
	m := pool.NewManager(pool.Config{ChunkCount: 2, TrackUsage: true}, []int{64}, pool.WithAllocator(&fake.Allocator{}))
	lp, err := m.GetPool(64)
	require.NoError(t, err)
	_, err = lp.Alloc()
	require.NoError(t, err)

	if isDebugBuild() {
		assert.Panics(t, func() { _ = m.Close() })
		return
	}
	assert.ErrorIs(t, m.Close(), api.ErrLeakDetected)
}

func TestDefaultPool(t *testing.T) {
	lp, err := pool.DefaultPool(1500)
	require.NoError(t, err)
	assert.Equal(t, 2048, lp.Size())

	again, err := pool.DefaultPool(2048)
	require.NoError(t, err)
	assert.Same(t, lp, again)
	assert.Same(t, pool.DefaultManager(), pool.DefaultManager())

	buf, err := lp.Alloc()
	require.NoError(t, err)
	lp.Release(buf)
}
