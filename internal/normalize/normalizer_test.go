package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundUpPow2(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 8: 8, 1000: 1024, 1025: 2048}
	for in, want := range cases {
		assert.Equal(t, want, RoundUpPow2(in), "RoundUpPow2(%d)", in)
	}
}

func TestIsPow2(t *testing.T) {
	assert.True(t, IsPow2(1))
	assert.True(t, IsPow2(64))
	assert.False(t, IsPow2(0))
	assert.False(t, IsPow2(-4))
	assert.False(t, IsPow2(12))
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, 0, AlignUp(0, 8))
	assert.Equal(t, 8, AlignUp(1, 8))
	assert.Equal(t, 64, AlignUp(64, 64))
	assert.Equal(t, 80, AlignUp(65, 16))
	assert.Equal(t, 7, AlignUp(7, 1))
}

func TestAlignUpAny(t *testing.T) {
	assert.Equal(t, 3000, AlignUpAny(2001, 1000))
	assert.Equal(t, 2<<20, AlignUpAny(1, 2<<20))
}

func TestAlignment(t *testing.T) {
	assert.Equal(t, PointerSize, Alignment(0))
	assert.Equal(t, PointerSize, Alignment(1))
	assert.Equal(t, 64, Alignment(64))
	assert.Equal(t, 64, Alignment(48))
}
