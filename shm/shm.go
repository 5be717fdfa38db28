// File: shm/shm.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Named shared memory segments. A segment is a file under Dir mapped
// MAP_SHARED, so every process that opens the same name sees the same bytes,
// usually at a different virtual address.

package shm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/momentics/hioload-fabric/api"
	"github.com/momentics/hioload-fabric/freestack"
	"github.com/momentics/hioload-fabric/internal/logutil"
	"github.com/momentics/hioload-fabric/internal/mem"
)

// Segment is one mapping of a named segment.
type Segment struct {
	name string
	path string
	mem  []byte
}

func segmentPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("shm: segment name %q: %w", name, api.ErrInvalidArgument)
	}
	return filepath.Join(Dir, name), nil
}

// Create makes a new segment of size bytes. It fails if name exists.
func Create(name string, size int) (*Segment, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shm: segment size %d: %w", size, api.ErrInvalidArgument)
	}
	path, err := segmentPath(name)
	if err != nil {
		return nil, err
	}
	buf, err := mapSegment(path, size, true)
	if err != nil {
		return nil, fmt.Errorf("shm: create %s: %w", name, err)
	}
	logutil.Named("shm").Debug("segment created",
		zap.String("name", name), zap.Int("bytes", size), zap.Uintptr("addr", mem.Addr(buf)))
	return &Segment{name: name, path: path, mem: buf}, nil
}

// Open maps an existing segment at its full size.
func Open(name string) (*Segment, error) {
	path, err := segmentPath(name)
	if err != nil {
		return nil, err
	}
	buf, err := mapSegment(path, 0, false)
	if err != nil {
		return nil, fmt.Errorf("shm: open %s: %w", name, err)
	}
	return &Segment{name: name, path: path, mem: buf}, nil
}

// Remove deletes the named segment. Existing mappings stay valid until
// closed.
func Remove(name string) error {
	path, err := segmentPath(name)
	if err != nil {
		return err
	}
	return removeSegment(path)
}

// Name returns the segment name.
func (s *Segment) Name() string { return s.name }

// Size returns the mapped length.
func (s *Segment) Size() int { return len(s.mem) }

// Bytes returns the mapping. It is invalid after Close.
func (s *Segment) Bytes() []byte { return s.mem }

// Addr returns the address of the mapping in this process.
func (s *Segment) Addr() uintptr { return mem.Addr(s.mem) }

// Flush writes the mapping back to its backing store and waits for it.
func (s *Segment) Flush() error {
	if s.mem == nil {
		return os.ErrClosed
	}
	if err := syncSegment(s.mem); err != nil {
		return fmt.Errorf("shm: flush %s: %w", s.name, err)
	}
	return nil
}

// Close unmaps the segment. Closing twice is a no-op.
func (s *Segment) Close() error {
	if s.mem == nil {
		return nil
	}
	err := unmapSegment(s.mem)
	s.mem = nil
	if err != nil {
		return fmt.Errorf("shm: close %s: %w", s.name, err)
	}
	return nil
}

// NewFreeList formats the segment as a shared free list of count entries
// of stride bytes.
func NewFreeList(seg *Segment, count, stride int) (*freestack.Shared, error) {
	return freestack.InitShared(seg.Bytes(), count, stride)
}

// AttachFreeList views a free list another mapping of the segment created.
func AttachFreeList(seg *Segment) (*freestack.Shared, error) {
	return freestack.AttachShared(seg.Bytes())
}
