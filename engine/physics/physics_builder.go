package physics

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// WorldBuilderOption is a functional option for configuring a World via NewWorld.
type WorldBuilderOption func(*world)

// WithGravity is an option builder that sets the gravity acceleration applied to dynamic bodies.
//
// Parameters:
//   - gravity: acceleration in units per second squared
//
// Returns:
//   - WorldBuilderOption: a function that applies the gravity option to a world
func WithGravity(gravity mgl32.Vec3) WorldBuilderOption {
	return func(w *world) {
		w.gravity = gravity
	}
}

// WithTimestep is an option builder that sets the seconds advanced by one Step. Non-positive values are ignored.
//
// Parameters:
//   - seconds: the fixed timestep
//
// Returns:
//   - WorldBuilderOption: a function that applies the timestep option to a world
func WithTimestep(seconds float32) WorldBuilderOption {
	return func(w *world) {
		if seconds > 0 {
			w.timestep = seconds
		}
	}
}

// WithRestitution is an option builder that sets the bounciness of contacts, 0 for none and 1 for perfectly elastic.
func WithRestitution(e float32) WorldBuilderOption {
	return func(w *world) {
		w.restitution = e
	}
}

// WithFriction is an option builder that sets the Coulomb friction coefficient of contacts.
func WithFriction(mu float32) WorldBuilderOption {
	return func(w *world) {
		w.friction = mu
	}
}

// WithLogger is an option builder that sets the logger used for body lifecycle debug output.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - WorldBuilderOption: a function that applies the logger option to a world
func WithLogger(logger *zap.SugaredLogger) WorldBuilderOption {
	return func(w *world) {
		if logger != nil {
			w.logger = logger
		}
	}
}
