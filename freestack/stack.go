// File: freestack/stack.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package freestack

import (
	"fmt"
	"unsafe"

	"github.com/momentics/hioload-fabric/api"
	"github.com/momentics/hioload-fabric/internal/buildmode"
	"github.com/momentics/hioload-fabric/internal/normalize"
)

const (
	emptyLink = -1
	offList   = -2 // link value of an entry held by a caller
)

type entry[T any] struct {
	next  int
	Value T
}

// Stack is a fixed-capacity free list of T. Entries live in one contiguous
// slice allocated at creation; Pop hands out pointers into it and Push takes
// them back.
type Stack[T any] struct {
	entries []entry[T]
	head    int
	free    int
	checks  bool
}

// New allocates a stack holding capacity entries rounded up to the next
// power of two. init, when non-nil, runs once per entry before it is linked.
func New[T any](capacity int, init func(*T)) (*Stack[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("freestack: capacity %d: %w", capacity, api.ErrInvalidArgument)
	}
	n := normalize.RoundUpPow2(capacity)
	s := &Stack[T]{
		entries: make([]entry[T], n),
		head:    emptyLink,
		checks:  buildmode.Debug,
	}
	// Link back to front so entry 0 is popped first.
	for i := n - 1; i >= 0; i-- {
		e := &s.entries[i]
		e.next = offList
		if init != nil {
			init(&e.Value)
		}
		s.push(i)
	}
	return s, nil
}

// SetChecks toggles double-push detection.
func (s *Stack[T]) SetChecks(on bool) { s.checks = on }

// Cap returns the number of entries.
func (s *Stack[T]) Cap() int { return len(s.entries) }

// Len returns the number of free entries.
func (s *Stack[T]) Len() int { return s.free }

// IsEmpty reports whether no entry is free.
func (s *Stack[T]) IsEmpty() bool { return s.head == emptyLink }

// Push returns v to the head of the list. v must have come from Pop or At.
func (s *Stack[T]) Push(v *T) {
	i := s.Index(v)
	if s.checks && s.entries[i].next != offList {
		panic(fmt.Sprintf("freestack: entry %d pushed while already free", i))
	}
	s.push(i)
}

func (s *Stack[T]) push(i int) {
	s.entries[i].next = s.head
	s.head = i
	s.free++
}

// Pop removes and returns the most recently pushed entry. The stack must
// not be empty.
func (s *Stack[T]) Pop() *T {
	if s.head == emptyLink {
		panic("freestack: pop from empty stack")
	}
	i := s.head
	e := &s.entries[i]
	s.head = e.next
	e.next = offList
	s.free--
	return &e.Value
}

// Index returns the position of v in the backing array.
func (s *Stack[T]) Index(v *T) int {
	if len(s.entries) == 0 {
		panic("freestack: index on freed stack")
	}
	base := uintptr(unsafe.Pointer(&s.entries[0].Value))
	off := uintptr(unsafe.Pointer(v)) - base
	size := unsafe.Sizeof(s.entries[0])
	i := off / size
	if off%size != 0 || i >= uintptr(len(s.entries)) {
		panic("freestack: pointer does not belong to this stack")
	}
	return int(i)
}

// At returns the entry at position i regardless of its state.
func (s *Stack[T]) At(i int) *T { return &s.entries[i].Value }

// Free releases the backing array. The stack must not be used afterwards.
func (s *Stack[T]) Free() {
	s.entries = nil
	s.head = emptyLink
	s.free = 0
}
