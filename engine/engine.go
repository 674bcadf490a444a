// Package engine drives the per-frame update of a bin-thrower session: input, physics, gameplay, rendering
// and telemetry, on the window's main loop or on a background ticker while the window is suspended.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DatBlindArcher/bin-thrower/common"
	"github.com/DatBlindArcher/bin-thrower/engine/audio"
	"github.com/DatBlindArcher/bin-thrower/engine/game"
	"github.com/DatBlindArcher/bin-thrower/engine/hud"
	"github.com/DatBlindArcher/bin-thrower/engine/input"
	"github.com/DatBlindArcher/bin-thrower/engine/physics"
	"github.com/DatBlindArcher/bin-thrower/engine/profiler"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer"
	"github.com/DatBlindArcher/bin-thrower/engine/window"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrMissingComponent is returned by NewEngine when the renderer, physics world or game is not set.
	ErrMissingComponent = errors.New("engine component missing")
	// ErrNoWindow is returned by Run when the engine was built without a window.
	ErrNoWindow = errors.New("engine has no window")
)

// FrameRenderer is the part of renderer.Renderer the frame driver uses.
type FrameRenderer interface {
	SubmitFrame(debug bool, lines renderer.DebugLines) error
	Resize(width, height int) error
	Stats() renderer.FrameStats
}

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	id  string
	log *zap.SugaredLogger

	window   window.Window
	renderer FrameRenderer
	world    physics.World
	game     game.Game
	input    input.State
	profiler *profiler.Profiler
	display  hud.Display
	audio    audio.Player

	backgroundTick time.Duration
	idleTimeout    time.Duration
	frameLimit     time.Duration

	hudEnabled bool
	frames     uint64
	lastUpdate time.Time
	stopped    bool

	quitChannel chan struct{}
	quitOnce    sync.Once
	wg          sync.WaitGroup
}

// Engine owns one play session and runs its frame loop.
type Engine interface {
	// SessionID returns the unique id of this session. Every log line of the session carries it as "session".
	SessionID() string

	// Input returns the input state window callbacks write into.
	Input() input.State

	// Update runs one frame: step physics, run the gameplay update, clear the freshly-pressed keys,
	// submit the frame with the optional debug overlay, then record timings and refresh the HUD.
	// Calls from the window loop and the background ticker are serialized. Update does nothing after Quit.
	Update()

	// Frames returns the number of completed updates.
	Frames() uint64

	// HUDEnabled reports whether telemetry is sent to the display.
	HUDEnabled() bool

	// Run installs the window callbacks, starts the background ticker and blocks in the window's message loop
	// until the window closes or ctx is cancelled.
	//
	// Parameters:
	//   - ctx: cancelling it requests the window to close
	//
	// Returns:
	//   - error: ErrNoWindow when the engine has no window
	Run(ctx context.Context) error

	// Quit stops the background ticker and closes the display and audio player.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a session around an already configured renderer, physics world and game.
// The game's score listeners gain an audio cue.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: ErrMissingComponent if the renderer, world or game option is missing
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:             &sync.Mutex{},
		id:             uuid.NewString(),
		log:            zap.NewNop().Sugar(),
		backgroundTick: 30 * time.Millisecond,
		idleTimeout:    100 * time.Millisecond,
		hudEnabled:     true,
		quitChannel:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.renderer == nil || e.world == nil || e.game == nil {
		return nil, ErrMissingComponent
	}

	e.log = e.log.With("session", e.id)
	if e.input == nil {
		e.input = input.NewState()
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.log.Named("profiler")))
	}
	if e.display == nil {
		e.display = hud.NewLogDisplay(e.log.Named("hud"), time.Second)
	}
	if e.audio == nil {
		e.audio = audio.NewNullPlayer()
	}

	e.game.OnScore(func(score int) {
		e.audio.PlayScore()
	})
	e.log.Infow("session started", "background_tick", e.backgroundTick)
	return e, nil
}

func (e *engine) SessionID() string {
	return e.id
}

func (e *engine) Input() input.State {
	return e.input
}

func (e *engine) Update() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}

	start := time.Now()
	if !e.lastUpdate.IsZero() {
		e.profiler.Record(profiler.SectionFrame, start.Sub(e.lastUpdate))
	}
	e.lastUpdate = start

	in := e.input.Snapshot()
	if in.WasPressed(common.KeyToggleHUD) {
		e.hudEnabled = !e.hudEnabled
	}
	if in.WasPressed(common.KeyEsc) && e.window != nil {
		e.window.RequestClose()
	}

	e.profiler.Time(profiler.SectionPhysics, e.world.Step)

	var gameErr error
	e.profiler.Time(profiler.SectionGameplay, func() {
		gameErr = e.game.Update(in)
	})
	if gameErr != nil {
		e.log.Warnw("gameplay update failed", "error", gameErr)
	}
	e.input.ClearPressed()

	debug := e.game.DebugEnabled()
	var lines renderer.DebugLines
	if debug {
		lines = renderer.DebugLines(e.world.DebugLines())
	}
	// A minimized window has a zero-sized surface with nothing to present.
	if e.window == nil || (e.window.Width() > 0 && e.window.Height() > 0) {
		if err := e.renderer.SubmitFrame(debug, lines); err != nil {
			e.log.Warnw("frame not submitted", "error", err)
		}
	}

	stats := e.renderer.Stats()
	e.profiler.Record(profiler.SectionRender, stats.RenderTime)
	if stats.GPUTimeAvailable {
		e.profiler.Record(profiler.SectionGPU, stats.GPUTime)
	}
	e.profiler.Record(profiler.SectionUpdate, time.Since(start))
	e.profiler.Tick()
	e.frames++

	if e.hudEnabled {
		r := e.profiler.Report()
		e.display.Show(hud.Telemetry{
			Score:        e.game.Score(),
			Balls:        len(e.game.Balls()),
			Entities:     stats.Entities,
			Debug:        debug,
			FPS:          r.FPS,
			Sections:     r.Sections,
			GPUAvailable: stats.GPUTimeAvailable,
		})
	}
}

func (e *engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

func (e *engine) HUDEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hudEnabled
}

func (e *engine) Run(ctx context.Context) error {
	if e.window == nil {
		return ErrNoWindow
	}
	defer e.Quit()

	e.installCallbacks()

	e.wg.Add(2)
	go e.handleBackground()
	go e.handleContext(ctx)

	e.window.ProcessMessages(e.idleTimeout)
	e.log.Infow("window closed", "frames", e.Frames())
	return nil
}

func (e *engine) installCallbacks() {
	e.window.SetUpdateCallback(e.frame)
	e.window.SetResizeCallback(func(width, height int) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if err := e.renderer.Resize(width, height); err != nil {
			e.log.Warnw("resize failed", "width", width, "height", height, "error", err)
		}
	})
	e.window.SetKeyDownCallback(e.input.KeyDown)
	e.window.SetKeyUpCallback(e.input.KeyUp)
	e.window.SetMouseMoveCallback(e.input.SetPointer)
	e.window.SetSuspendCallback(func(suspended bool) {
		// Key-up events are lost while unfocused.
		if suspended {
			e.input.Reset()
		}
		e.log.Debugw("window suspended", "suspended", suspended)
	})
}

// frame runs one update from the window loop and sleeps out the rest of the frame limit.
func (e *engine) frame() {
	start := time.Now()
	e.Update()
	if e.frameLimit > 0 {
		if remaining := e.frameLimit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// handleBackground keeps the session updating while the window is suspended and its message loop is blocked.
func (e *engine) handleBackground() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.backgroundTick)
	defer ticker.Stop()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			if e.window.Suspended() {
				e.Update()
			}
		}
	}
}

// handleContext requests the window to close once ctx is done.
func (e *engine) handleContext(ctx context.Context) {
	defer e.wg.Done()
	select {
	case <-e.quitChannel:
	case <-ctx.Done():
		e.window.RequestClose()
	}
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		e.wg.Wait()

		e.mu.Lock()
		e.stopped = true
		e.mu.Unlock()

		e.display.Close()
		e.audio.Close()
		e.log.Infow("session ended", "score", e.game.Score())
	})
}
