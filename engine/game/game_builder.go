package game

import (
	"github.com/DatBlindArcher/bin-thrower/common"
	"github.com/DatBlindArcher/bin-thrower/engine/camera"
	"github.com/DatBlindArcher/bin-thrower/engine/physics"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// GameBuilderOption is a functional option applied to a game during construction via NewGame.
type GameBuilderOption func(*game)

// WithController sets the controller that turns pointer movement into camera rotation.
//
// Parameters:
//   - c: the CameraController
//
// Returns:
//   - GameBuilderOption: a function that applies the controller option to a game
func WithController(c camera.CameraController) GameBuilderOption {
	return func(g *game) {
		g.controller = c
	}
}

// WithMuzzle sets the camera position and the point balls are thrown from.
//
// Parameters:
//   - muzzle: world position
//
// Returns:
//   - GameBuilderOption: a function that applies the muzzle option to a game
func WithMuzzle(muzzle mgl32.Vec3) GameBuilderOption {
	return func(g *game) {
		g.muzzle = muzzle
	}
}

// WithLaunchSpeed sets the speed balls are thrown with. Zero keeps the current speed.
//
// Parameters:
//   - speed: units per second
//
// Returns:
//   - GameBuilderOption: a function that applies the launch speed option to a game
func WithLaunchSpeed(speed float32) GameBuilderOption {
	return func(g *game) {
		g.speed = common.Coalesce(speed, g.speed)
	}
}

// WithPoolCapacity sets how many balls may be live at once. Values below 1 are ignored.
//
// Parameters:
//   - capacity: the pool size
//
// Returns:
//   - GameBuilderOption: a function that applies the capacity option to a game
func WithPoolCapacity(capacity int) GameBuilderOption {
	return func(g *game) {
		if capacity > 0 {
			g.capacity = capacity
		}
	}
}

// WithBallRadius sets the collider radius of thrown balls. Zero keeps the current radius.
//
// Parameters:
//   - radius: ball radius
//
// Returns:
//   - GameBuilderOption: a function that applies the ball radius option to a game
func WithBallRadius(radius float32) GameBuilderOption {
	return func(g *game) {
		g.ballRadius = common.Coalesce(radius, g.ballRadius)
	}
}

// WithScoreRadius sets the radius of the query ball used to detect a ball inside the bin.
// Zero keeps the current radius.
//
// Parameters:
//   - radius: query radius
//
// Returns:
//   - GameBuilderOption: a function that applies the score radius option to a game
func WithScoreRadius(radius float32) GameBuilderOption {
	return func(g *game) {
		g.scoreShape = physics.Ball{Radius: common.Coalesce(radius, g.scoreShape.Radius)}
	}
}

// WithDebug sets whether the debug overlay starts enabled.
func WithDebug(enabled bool) GameBuilderOption {
	return func(g *game) {
		g.debug = enabled
	}
}

// WithRenderBalls sets whether thrown balls get a render entity.
func WithRenderBalls(enabled bool) GameBuilderOption {
	return func(g *game) {
		g.renderBalls = enabled
	}
}

// WithScoreListener registers a listener called after every hit.
func WithScoreListener(l ScoreListener) GameBuilderOption {
	return func(g *game) {
		g.listeners = append(g.listeners, l)
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.SugaredLogger) GameBuilderOption {
	return func(g *game) {
		if log != nil {
			g.log = log
		}
	}
}
