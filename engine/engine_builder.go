package engine

import (
	"time"

	"github.com/DatBlindArcher/bin-thrower/engine/audio"
	"github.com/DatBlindArcher/bin-thrower/engine/game"
	"github.com/DatBlindArcher/bin-thrower/engine/hud"
	"github.com/DatBlindArcher/bin-thrower/engine/input"
	"github.com/DatBlindArcher/bin-thrower/engine/physics"
	"github.com/DatBlindArcher/bin-thrower/engine/profiler"
	"github.com/DatBlindArcher/bin-thrower/engine/window"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow sets the window whose message loop drives Run.
//
// Parameters:
//   - w: a window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer frames are submitted to. Required.
//
// Parameters:
//   - r: a configured renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r FrameRenderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithWorld sets the physics world stepped every frame. Required.
//
// Parameters:
//   - w: the physics world
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWorld(w physics.World) EngineBuilderOption {
	return func(e *engine) {
		e.world = w
	}
}

// WithGame sets the gameplay state updated every frame. Required.
//
// Parameters:
//   - g: the game
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithGame(g game.Game) EngineBuilderOption {
	return func(e *engine) {
		e.game = g
	}
}

// WithInput sets the input state. Defaults to a fresh input.NewState.
func WithInput(s input.State) EngineBuilderOption {
	return func(e *engine) {
		e.input = s
	}
}

// WithProfiler sets the profiler frame timings are recorded in.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithDisplay sets the telemetry display. Defaults to a log display refreshing once a second.
func WithDisplay(d hud.Display) EngineBuilderOption {
	return func(e *engine) {
		e.display = d
	}
}

// WithHUD sets whether telemetry is shown from the start. The H key toggles it at runtime.
func WithHUD(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.hudEnabled = enabled
	}
}

// WithAudio sets the player used for the score cue. Defaults to a silent player.
func WithAudio(p audio.Player) EngineBuilderOption {
	return func(e *engine) {
		e.audio = p
	}
}

// WithBackgroundTick sets the update interval used while the window is suspended.
// Values <= 0 keep the default of 30ms.
//
// Parameters:
//   - d: the interval
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackgroundTick(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if d > 0 {
			e.backgroundTick = d
		}
	}
}

// WithIdleTimeout sets how long the message loop waits for events while the window is suspended.
func WithIdleTimeout(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if d > 0 {
			e.idleTimeout = d
		}
	}
}

// WithFrameLimit sets an optional frame rate cap for the window loop in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.frameLimit = 0
			return
		}
		e.frameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithLogger sets the logger. The session id is attached to it.
func WithLogger(log *zap.SugaredLogger) EngineBuilderOption {
	return func(e *engine) {
		e.log = log
	}
}
