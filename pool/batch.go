// File: pool/batch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Batch of pool buffers for burst send/receive paths.
// Not safe for concurrent use.

package pool

// Batch is a minimal zero-alloc batch of buffers.
type Batch struct {
	buffers [][]byte
}

// NewBatch creates a new batch with given capacity.
func NewBatch(capacity int) *Batch {
	return &Batch{
		buffers: make([][]byte, 0, capacity),
	}
}

// Append adds a buffer to the batch.
func (b *Batch) Append(buf []byte) {
	b.buffers = append(b.buffers, buf)
}

// Len returns number of items in the batch.
func (b *Batch) Len() int {
	return len(b.buffers)
}

// Get retrieves item at index.
func (b *Batch) Get(idx int) []byte {
	return b.buffers[idx]
}

// Slice returns zero-copy sub-batch [start:end).
func (b *Batch) Slice(start, end int) *Batch {
	return &Batch{buffers: b.buffers[start:end]}
}

// Underlying returns the underlying slice.
func (b *Batch) Underlying() [][]byte {
	return b.buffers
}

// Split divides the batch at idx into two sub-batches.
func (b *Batch) Split(idx int) (first, second *Batch) {
	return &Batch{buffers: b.buffers[:idx]}, &Batch{buffers: b.buffers[idx:]}
}

// Reset clears the batch retaining underlying storage.
func (b *Batch) Reset() {
	clear(b.buffers)
	b.buffers = b.buffers[:0]
}

// AllocBatch appends up to n buffers to b. It stops at the first failure
// and returns how many were added together with that failure.
func (p *Pool) AllocBatch(b *Batch, n int) (int, error) {
	for i := 0; i < n; i++ {
		buf, err := p.Alloc()
		if err != nil {
			return i, err
		}
		b.Append(buf)
	}
	return n, nil
}

// ReleaseBatch releases every buffer in b and resets it.
func (p *Pool) ReleaseBatch(b *Batch) {
	for _, buf := range b.Underlying() {
		p.Release(buf)
	}
	b.Reset()
}
