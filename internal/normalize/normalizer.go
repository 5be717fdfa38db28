// File: internal/normalize/normalizer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Size and alignment normalization shared by free lists and buffer pools.
// Every call site that turns a requested count, size or alignment into a
// layout value should go through these helpers so the rounding rules stay
// identical across components.
//
// Example usage:
//
//   capacity := normalize.RoundUpPow2(requested)
//   stride   := normalize.AlignUp(size+footer, normalize.Alignment(align))

package normalize

import (
	"math/bits"
	"unsafe"

	"go.uber.org/zap"

	"github.com/momentics/hioload-fabric/internal/logutil"
)

// PointerSize is the width of one free-list link.
const PointerSize = int(unsafe.Sizeof(uintptr(0)))

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// RoundUpPow2 returns the smallest power of two >= n. n <= 1 yields 1.
func RoundUpPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// AlignUp rounds size up to a multiple of align. align must be a power of two.
func AlignUp(size, align int) int {
	if align <= 1 {
		return size
	}
	return (size + align - 1) &^ (align - 1)
}

// AlignUpAny rounds size up to a multiple of any positive align, used for
// huge page sizes that are not guaranteed to be powers of two.
func AlignUpAny(size, align int) int {
	if align <= 1 {
		return size
	}
	return ((size + align - 1) / align) * align
}

// Alignment validates a requested alignment.
//   - 0 selects the pointer width.
//   - Values below the pointer width are raised to it.
//   - Non powers of two are rounded up to the next one.
func Alignment(requested int) int {
	if requested <= 0 {
		return PointerSize
	}
	out := requested
	if !IsPow2(out) {
		out = RoundUpPow2(out)
		logutil.Named("normalize").Debug("alignment rounded to power of two",
			zap.Int("requested", requested), zap.Int("alignment", out))
	}
	if out < PointerSize {
		out = PointerSize
	}
	return out
}
