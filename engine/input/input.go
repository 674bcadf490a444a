// Package input tracks pointer position and keyboard state between frames.
// Window callbacks write into a State; the frame driver takes a Snapshot per update and clears the freshly-pressed set afterwards.
package input

import (
	"maps"
	"sync"
)

// Snapshot is an immutable copy of the input state for one update.
type Snapshot struct {
	// PointerX and PointerY are the absolute pointer position in pixels.
	PointerX, PointerY float64
	// HasPointer reports whether any pointer position has been received yet.
	HasPointer bool
	// Held contains every key currently down.
	Held map[uint32]struct{}
	// Pressed contains keys that went down since the last ClearPressed.
	Pressed map[uint32]struct{}
}

// IsHeld reports whether key is currently down.
func (s Snapshot) IsHeld(key uint32) bool {
	_, ok := s.Held[key]
	return ok
}

// WasPressed reports whether key went down since the previous frame.
func (s Snapshot) WasPressed(key uint32) bool {
	_, ok := s.Pressed[key]
	return ok
}

// State accumulates raw input events.
type State interface {
	// SetPointer records an absolute pointer position.
	//
	// Parameters:
	//   - x, y: pointer position in pixels
	SetPointer(x, y float64)

	// KeyDown marks key as held. The key is added to the pressed set only on the up-to-down transition.
	//
	// Parameters:
	//   - key: virtual key code
	KeyDown(key uint32)

	// KeyUp marks key as released.
	//
	// Parameters:
	//   - key: virtual key code
	KeyUp(key uint32)

	// Snapshot copies the current state.
	//
	// Returns:
	//   - Snapshot: copy safe to read without further locking
	Snapshot() Snapshot

	// ClearPressed empties the freshly-pressed set. Called once per frame after the update consumed it.
	ClearPressed()

	// Reset drops all held and pressed keys, e.g. when the window loses focus.
	Reset()
}

type state struct {
	mu *sync.Mutex

	x, y       float64
	hasPointer bool
	held       map[uint32]struct{}
	pressed    map[uint32]struct{}
}

var _ State = &state{}

// NewState creates an empty input State.
//
// Returns:
//   - State: the input state
func NewState() State {
	return &state{
		mu:      &sync.Mutex{},
		held:    make(map[uint32]struct{}),
		pressed: make(map[uint32]struct{}),
	}
}

func (s *state) SetPointer(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y = x, y
	s.hasPointer = true
}

func (s *state) KeyDown(key uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.held[key]; ok {
		return
	}
	s.held[key] = struct{}{}
	s.pressed[key] = struct{}{}
}

func (s *state) KeyUp(key uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, key)
}

func (s *state) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		PointerX:   s.x,
		PointerY:   s.y,
		HasPointer: s.hasPointer,
		Held:       maps.Clone(s.held),
		Pressed:    maps.Clone(s.pressed),
	}
}

func (s *state) ClearPressed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.pressed)
}

func (s *state) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.held)
	clear(s.pressed)
}
