// Package freestack
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Intrusive LIFO free lists over pre-allocated, uniformly sized entries.
//
//   - Stack[T]  fixed-capacity typed entries (capacity is a power of two).
//   - Arena     byte slots in caller-owned memory, the link overlaid on the
//               first word of a free slot. Buffer pool regions use it.
//   - Shared    byte image for shared memory. Links are stored relative to
//               the address the image had when it was initialized, so
//               processes mapping it elsewhere still traverse it correctly.
//
// None of the types synchronize. Serialize access externally.
package freestack
