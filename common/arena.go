package common

import (
	"errors"
	"fmt"
)

// ErrStaleHandle is returned when a Handle refers to a slot that was freed or reused.
var ErrStaleHandle = errors.New("stale handle")

// Handle is an opaque reference into an Arena. The zero Handle never refers to a live slot.
type Handle struct {
	Index      uint32
	Generation uint32
}

// String implements fmt.Stringer.
func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.Index, h.Generation)
}

type arenaSlot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// Arena is a slot allocator with generation-checked handles. A removed slot is reused by a later Insert under a new generation,
// so handles to the old occupant fail with ErrStaleHandle instead of aliasing the new one.
// Arena is not safe for concurrent use.
type Arena[T any] struct {
	slots []arenaSlot[T]
	free  []uint32
	count int
}

// NewArena creates an empty Arena.
//
// Returns:
//   - *Arena[T]: the arena
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v in a free slot and returns its handle.
//
// Parameters:
//   - v: the value to store
//
// Returns:
//   - Handle: a handle valid until Remove is called with it
func (a *Arena[T]) Insert(v T) Handle {
	a.count++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.generation++
		s.value = v
		s.live = true
		return Handle{Index: idx, Generation: s.generation}
	}
	a.slots = append(a.slots, arenaSlot[T]{value: v, generation: 1, live: true})
	return Handle{Index: uint32(len(a.slots) - 1), Generation: 1}
}

func (a *Arena[T]) slot(h Handle) (*arenaSlot[T], error) {
	if int(h.Index) >= len(a.slots) {
		return nil, fmt.Errorf("handle %s: %w", h, ErrStaleHandle)
	}
	s := &a.slots[h.Index]
	if !s.live || s.generation != h.Generation {
		return nil, fmt.Errorf("handle %s: %w", h, ErrStaleHandle)
	}
	return s, nil
}

// Get returns a pointer to the value behind h. The pointer is valid until the next Insert.
//
// Parameters:
//   - h: the handle to resolve
//
// Returns:
//   - *T: pointer to the stored value
//   - error: ErrStaleHandle if h does not refer to a live slot
func (a *Arena[T]) Get(h Handle) (*T, error) {
	s, err := a.slot(h)
	if err != nil {
		return nil, err
	}
	return &s.value, nil
}

// Contains reports whether h refers to a live slot.
func (a *Arena[T]) Contains(h Handle) bool {
	_, err := a.slot(h)
	return err == nil
}

// Remove frees the slot behind h and returns the value it held.
//
// Parameters:
//   - h: the handle to remove
//
// Returns:
//   - T: the removed value
//   - error: ErrStaleHandle if h does not refer to a live slot
func (a *Arena[T]) Remove(h Handle) (T, error) {
	s, err := a.slot(h)
	if err != nil {
		var zero T
		return zero, err
	}
	v := s.value
	var zero T
	s.value = zero
	s.live = false
	a.free = append(a.free, h.Index)
	a.count--
	return v, nil
}

// Len returns the number of live slots.
func (a *Arena[T]) Len() int {
	return a.count
}

// Each calls fn for every live slot in slot order.
func (a *Arena[T]) Each(fn func(h Handle, v *T)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.live {
			fn(Handle{Index: uint32(i), Generation: s.generation}, &s.value)
		}
	}
}
