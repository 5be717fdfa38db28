package freestack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-fabric/api"
)

func TestArenaRejectsBadLayout(t *testing.T) {
	_, err := NewArena(make([]byte, 64), 4, 16)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	_, err = NewArena(make([]byte, 63), 16, 4)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	_, err = NewArena(make([]byte, 64), 16, 0)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestArenaPopOrderAndLIFO(t *testing.T) {
	mem := make([]byte, 4*32)
	a, err := NewArena(mem, 32, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, a.Len())

	s0 := a.Pop()
	s1 := a.Pop()
	assert.Equal(t, 0, a.Index(s0))
	assert.Equal(t, 1, a.Index(s1))
	assert.Len(t, s0, 32)
	assert.Equal(t, 32, cap(s0))

	a.Push(s0)
	a.Push(s1)
	assert.Equal(t, 1, a.Index(a.Pop()))
	assert.Equal(t, 0, a.Index(a.Pop()))
	assert.Equal(t, 2, a.PopIndex())
	assert.Equal(t, 3, a.PopIndex())
	assert.True(t, a.IsEmpty())
	assert.Panics(t, func() { a.Pop() })
}

func TestArenaPreservesSlotTail(t *testing.T) {
	mem := make([]byte, 2*24)
	a, err := NewArena(mem, 24, 2)
	require.NoError(t, err)
	s := a.Pop()
	copy(s[LinkSize:], "footer-bytes")
	a.Push(s)
	assert.Equal(t, "footer-bytes", string(a.Slot(0)[LinkSize:LinkSize+12]))
}

func TestArenaIndexOfShortSlice(t *testing.T) {
	mem := make([]byte, 3*16)
	a, err := NewArena(mem, 16, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Index(a.Slot(2)[:4]))
	assert.True(t, a.Contains(a.Slot(2)))
	assert.False(t, a.Contains(make([]byte, 16)))
	assert.Panics(t, func() { a.Index(mem[3:]) })
}
