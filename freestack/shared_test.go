package freestack

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-fabric/api"
)

func addrOf(p []byte) uintptr { return uintptr(unsafe.Pointer(unsafe.SliceData(p))) }

func TestSharedSize(t *testing.T) {
	assert.Equal(t, SharedHeaderSize+4*(8+16), SharedSize(3, 16))
	assert.Equal(t, SharedHeaderSize+2*(8+16), SharedSize(2, 10))
}

func TestSharedInitValidates(t *testing.T) {
	_, err := InitShared(make([]byte, 1024), 0, 16)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	_, err = InitShared(make([]byte, 1024), 4, 4)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	_, err = InitShared(make([]byte, 16), 4, 16)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestSharedLocalLIFO(t *testing.T) {
	mem := make([]byte, SharedSize(4, 16))
	s, err := InitShared(mem, 4, 16)
	require.NoError(t, err)
	assert.Equal(t, addrOf(mem), s.BaseAddr())
	assert.Equal(t, 4, s.Len())

	a := s.Pop()
	b := s.Pop()
	assert.Equal(t, 0, s.Index(a))
	assert.Equal(t, 1, s.Index(b))
	s.Push(a)
	s.Push(b)
	assert.Equal(t, addrOf(b), addrOf(s.Pop()))
	assert.Equal(t, addrOf(a), addrOf(s.Pop()))
	assert.Equal(t, 2, s.Len())
}

func TestSharedStoresCreationRelativeLinks(t *testing.T) {
	mem := make([]byte, SharedSize(2, 8))
	s, err := InitShared(mem, 2, 8)
	require.NoError(t, err)

	next := binary.NativeEndian.Uint64(mem[hdrNext:])
	assert.Equal(t, uint64(addrOf(mem))+SharedHeaderSize, next)
	assert.Equal(t, 2, s.Len())
}

func TestSharedTranslatesAcrossAddressSpaces(t *testing.T) {
	size := SharedSize(4, 32)
	orig := make([]byte, size)
	x, err := InitShared(orig, 4, 32)
	require.NoError(t, err)
	held := x.Pop()
	copy(held, "held by X")

	// The same bytes seen at a different address, as a peer process would.
	peer := make([]byte, size)
	copy(peer, orig)
	require.NotEqual(t, addrOf(orig), addrOf(peer))

	y, err := AttachShared(peer)
	require.NoError(t, err)
	assert.Equal(t, x.BaseAddr(), y.BaseAddr())
	assert.Equal(t, addrOf(peer), y.LocalAddr())
	assert.Equal(t, 3, y.Len())

	got := y.Pop()
	want := addrOf(peer) + SharedHeaderSize + 1*(LinkSize+32) + LinkSize
	assert.Equal(t, want, addrOf(got))
	assert.Equal(t, 1, y.Index(got))

	// Push from the peer still writes X-relative links.
	y.Push(got)
	next := binary.NativeEndian.Uint64(peer[hdrNext:])
	assert.Equal(t, uint64(x.BaseAddr())+SharedHeaderSize+1*(LinkSize+32), next)

	// The held entry can be returned through the peer view.
	y.Push(y.Entry(0))
	assert.Equal(t, 4, y.Len())
	for i := 0; i < 4; i++ {
		p := y.Pop()
		assert.GreaterOrEqual(t, addrOf(p), addrOf(peer))
		assert.Less(t, addrOf(p), addrOf(peer)+uintptr(size))
	}
	assert.True(t, y.IsEmpty())
}

func TestSharedAttachRejectsGarbage(t *testing.T) {
	_, err := AttachShared(make([]byte, 8))
	assert.ErrorIs(t, err, api.ErrCorruptImage)
	_, err = AttachShared(make([]byte, 256))
	assert.ErrorIs(t, err, api.ErrCorruptImage)

	mem := make([]byte, SharedSize(4, 16))
	_, err = InitShared(mem, 4, 16)
	require.NoError(t, err)
	_, err = AttachShared(mem[:SharedHeaderSize+8])
	assert.ErrorIs(t, err, api.ErrCorruptImage)
	assert.Equal(t, api.ErrCodeCorrupt, api.CodeOf(err))
}

func TestSharedDoublePushDetected(t *testing.T) {
	mem := make([]byte, SharedSize(2, 8))
	s, err := InitShared(mem, 2, 8)
	require.NoError(t, err)
	s.SetChecks(true)
	p := s.Pop()
	s.Push(p)
	assert.Panics(t, func() { s.Push(p) })
}

func TestSharedPopEmptyPanics(t *testing.T) {
	mem := make([]byte, SharedSize(1, 8))
	s, err := InitShared(mem, 1, 8)
	require.NoError(t, err)
	s.Pop()
	assert.True(t, s.IsEmpty())
	assert.Panics(t, func() { s.Pop() })
}

func TestSharedRejectsMisalignedLink(t *testing.T) {
	mem := make([]byte, SharedSize(4, 16))
	s, err := InitShared(mem, 4, 16)
	require.NoError(t, err)

	for _, rel := range []uint64{
		SharedHeaderSize + 4,
		uint64(len(mem)) - LinkSize,
		SharedHeaderSize - 8,
	} {
		s.put(hdrNext, s.base+rel)
		msg := recoverString(func() { s.Pop() })
		assert.Contains(t, msg, "is not an entry of the image", "offset %d", rel)
	}
}

func recoverString(fn func()) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg, _ = r.(string)
		}
	}()
	fn()
	return ""
}
