package renderer

import "fmt"

// State is the lifecycle state of a Renderer.
type State int

const (
	// StateUninitialized is the state before Configure; no GPU resources exist.
	StateUninitialized State = iota
	// StateConfigured means the device, shared layouts and surface exist but no camera has been uploaded yet.
	StateConfigured
	// StateFrameReady means the scene uniform holds a camera and frames may be submitted.
	StateFrameReady
	// StateSubmitting is held for the duration of SubmitFrame.
	StateSubmitting
	// StateReleased is terminal; all GPU resources are gone.
	StateReleased
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfigured:
		return "configured"
	case StateFrameReady:
		return "frame-ready"
	case StateSubmitting:
		return "submitting"
	case StateReleased:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// in reports whether s is one of states.
func (s State) in(states ...State) bool {
	for _, st := range states {
		if s == st {
			return true
		}
	}
	return false
}
