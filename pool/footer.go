// File: pool/footer.go
// Author: momentics <momentics@gmail.com>
//
// Per-buffer footer: owning region ordinal and pool-wide index, stored
// right after the payload.

package pool

import (
	"encoding/binary"
	"unsafe"
)

const footerSize = 16

type footer struct {
	region uint64
	index  uint64
}

// footerBytes returns the footer that follows the size-byte payload starting
// at buf. buf's capacity is clipped to the payload, so the footer is reached
// by address within the same region allocation.
func footerBytes(buf []byte, size int) []byte {
	p := unsafe.Add(unsafe.Pointer(unsafe.SliceData(buf)), size)
	return unsafe.Slice((*byte)(p), footerSize)
}

func readFooter(buf []byte, size int) footer {
	b := footerBytes(buf, size)
	return footer{
		region: binary.NativeEndian.Uint64(b[0:]),
		index:  binary.NativeEndian.Uint64(b[8:]),
	}
}

func writeFooter(slot []byte, size int, f footer) {
	b := slot[size : size+footerSize]
	binary.NativeEndian.PutUint64(b[0:], f.region)
	binary.NativeEndian.PutUint64(b[8:], f.index)
}
