package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-fabric/api"
)

func TestAllocAligned(t *testing.T) {
	for _, align := range []int{8, 64, 4096} {
		buf, err := AllocAligned(1000, align)
		require.NoError(t, err)
		assert.Len(t, buf, 1000)
		assert.Equal(t, 1000, cap(buf))
		assert.Zero(t, Addr(buf)%uintptr(align), "align %d", align)
	}
}

func TestAllocAlignedRejectsBadArgs(t *testing.T) {
	_, err := AllocAligned(0, 8)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	_, err = AllocAligned(64, 12)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestAllocHugeRejectsZero(t *testing.T) {
	_, err := AllocHuge(0)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.NoError(t, FreeHuge(nil))
}

func TestCapsStable(t *testing.T) {
	first := Caps()
	assert.Equal(t, first, Caps())
	size, err := HugePageSize()
	if first.HugePages {
		require.NoError(t, err)
		assert.Equal(t, first.HugePageSize, size)
	} else {
		assert.ErrorIs(t, err, api.ErrNotSupported)
	}
}

func TestAddrEmpty(t *testing.T) {
	assert.Zero(t, Addr(nil))
}
