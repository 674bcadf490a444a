package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DatBlindArcher/bin-thrower/common"
	"github.com/DatBlindArcher/bin-thrower/engine/game"
	"github.com/DatBlindArcher/bin-thrower/engine/hud"
	"github.com/DatBlindArcher/bin-thrower/engine/physics"
	"github.com/DatBlindArcher/bin-thrower/engine/profiler"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeRenderer stands in for the renderer as both the game's render target and the frame renderer.
type fakeRenderer struct {
	mu       sync.Mutex
	next     uint32
	live     map[renderer.EntityHandle]struct{}
	submits  []bool
	lines    []renderer.DebugLines
	resizes  [][2]int
	cameras  int
	renderDt time.Duration
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{live: make(map[renderer.EntityHandle]struct{}), renderDt: time.Millisecond}
}

func (f *fakeRenderer) SetCamera(mgl32.Vec3, float32, float32, float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cameras++
	return nil
}

func (f *fakeRenderer) CreateEntity(string, string, int, int, int) (renderer.EntityHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	h := renderer.EntityHandle{Index: f.next, Generation: 1}
	f.live[h] = struct{}{}
	return h, nil
}

func (f *fakeRenderer) UpdateEntityTransform(renderer.EntityHandle, common.Transform, int) error {
	return nil
}

func (f *fakeRenderer) UpdateEntityProperties(renderer.EntityHandle, []float32, []float32) error {
	return nil
}

func (f *fakeRenderer) RemoveEntity(h renderer.EntityHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, h)
	return nil
}

func (f *fakeRenderer) SubmitFrame(debug bool, lines renderer.DebugLines) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, debug)
	f.lines = append(f.lines, lines)
	return nil
}

func (f *fakeRenderer) Resize(width, height int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resizes = append(f.resizes, [2]int{width, height})
	return nil
}

func (f *fakeRenderer) Stats() renderer.FrameStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return renderer.FrameStats{RenderTime: f.renderDt, Entities: len(f.live)}
}

// fakeWindow runs a scripted message loop.
type fakeWindow struct {
	mu        sync.Mutex
	suspended bool
	frames    int
	width     int
	height    int
	closed    chan struct{}
	closeOnce sync.Once

	onUpdate    func()
	onResize    func(int, int)
	onKeyDown   func(uint32)
	onKeyUp     func(uint32)
	onMouseMove func(float64, float64)
	onSuspend   func(bool)
}

func newFakeWindow(frames int, suspended bool) *fakeWindow {
	return &fakeWindow{frames: frames, suspended: suspended, width: 800, height: 600, closed: make(chan struct{})}
}

func (w *fakeWindow) SetUpdateCallback(cb func())                    { w.onUpdate = cb }
func (w *fakeWindow) SetResizeCallback(cb func(int, int))            { w.onResize = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(uint32))             { w.onKeyDown = cb }
func (w *fakeWindow) SetKeyUpCallback(cb func(uint32))               { w.onKeyUp = cb }
func (w *fakeWindow) SetMouseMoveCallback(cb func(float64, float64)) { w.onMouseMove = cb }
func (w *fakeWindow) SetSuspendCallback(cb func(bool)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onSuspend = cb
}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) Close() error                               { return nil }

func (w *fakeWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *fakeWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

func (w *fakeWindow) setSize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width, w.height = width, height
}

func (w *fakeWindow) IsRunning() bool {
	select {
	case <-w.closed:
		return false
	default:
		return true
	}
}

func (w *fakeWindow) Suspended() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.suspended
}

func (w *fakeWindow) RequestClose() {
	w.closeOnce.Do(func() { close(w.closed) })
}

// ProcessMessages runs the scripted frames, then blocks until the window is closed.
func (w *fakeWindow) ProcessMessages(time.Duration) {
	for i := 0; i < w.frames && w.IsRunning(); i++ {
		if !w.Suspended() {
			w.onUpdate()
		}
	}
	<-w.closed
}

// recordingDisplay keeps every telemetry it was shown.
type recordingDisplay struct {
	mu     sync.Mutex
	shown  []hud.Telemetry
	closed bool
}

func (d *recordingDisplay) Show(t hud.Telemetry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown = append(d.shown, t)
}

func (d *recordingDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

func (d *recordingDisplay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.shown)
}

// countingPlayer counts score cues.
type countingPlayer struct {
	mu     sync.Mutex
	played int
	closed bool
}

func (p *countingPlayer) PlayScore() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played++
}

func (p *countingPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

type fixture struct {
	engine  Engine
	world   physics.World
	game    game.Game
	render  *fakeRenderer
	display *recordingDisplay
	audio   *countingPlayer
}

func newFixture(t *testing.T, options ...EngineBuilderOption) fixture {
	t.Helper()
	f := fixture{
		world:   physics.NewWorld(),
		render:  newFakeRenderer(),
		display: &recordingDisplay{},
		audio:   &countingPlayer{},
	}
	f.game = game.NewGame(f.world, f.render)
	base := []EngineBuilderOption{
		WithRenderer(f.render),
		WithWorld(f.world),
		WithGame(f.game),
		WithDisplay(f.display),
		WithAudio(f.audio),
	}
	e, err := NewEngine(append(base, options...)...)
	require.NoError(t, err)
	t.Cleanup(e.Quit)
	f.engine = e
	return f
}

func TestNewEngine_RequiresComponents(t *testing.T) {
	_, err := NewEngine(WithWorld(physics.NewWorld()))
	assert.ErrorIs(t, err, ErrMissingComponent)
}

func TestNewEngine_SessionIDIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := newFixture(t, WithLogger(zap.New(core).Sugar()))

	_, err := uuid.Parse(f.engine.SessionID())
	require.NoError(t, err)

	entries := logs.FilterMessage("session started").All()
	require.Len(t, entries, 1)
	assert.Equal(t, f.engine.SessionID(), entries[0].ContextMap()["session"])
}

func TestUpdate_RunsFrame(t *testing.T) {
	f := newFixture(t)
	f.engine.Update()
	f.engine.Update()

	assert.Equal(t, uint64(2), f.engine.Frames())
	assert.Equal(t, 2, f.render.cameras)
	require.Len(t, f.render.submits, 2)
	assert.True(t, f.render.submits[0])

	require.Equal(t, 2, f.display.count())
	last := f.display.shown[1]
	assert.True(t, last.Debug)
	assert.Contains(t, last.Sections, profiler.SectionPhysics)
	assert.Contains(t, last.Sections, profiler.SectionRender)
	assert.False(t, last.GPUAvailable)
}

func TestUpdate_MinimizedWindowSkipsSubmit(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := newFakeWindow(0, true)
	w.setSize(0, 0)
	f := newFixture(t, WithWindow(w), WithLogger(zap.New(core).Sugar()))

	f.engine.Update()
	f.engine.Update()
	assert.Equal(t, uint64(2), f.engine.Frames())
	assert.Empty(t, f.render.submits)
	assert.Zero(t, logs.FilterMessage("frame not submitted").Len())

	w.setSize(800, 600)
	f.engine.Update()
	assert.Len(t, f.render.submits, 1)
}

func TestUpdate_DebugLinesFollowToggle(t *testing.T) {
	f := newFixture(t)
	f.world.CreateCollider(physics.ColliderDesc{
		Shape:       physics.Cuboid{HalfExtents: mgl32.Vec3{1, 1, 1}},
		Groups:      physics.GroupStatic,
		Translation: mgl32.Vec3{0, -5, 0},
		Rotation:    mgl32.QuatIdent(),
	}, nil)

	f.engine.Update()
	require.Len(t, f.render.lines, 1)
	assert.NotEmpty(t, f.render.lines[0].Vertices)

	f.engine.Input().KeyDown(common.KeyToggleDebug)
	f.engine.Update()
	assert.False(t, f.render.submits[1])
	assert.Empty(t, f.render.lines[1].Vertices)
}

func TestUpdate_PressedKeysAreCleared(t *testing.T) {
	f := newFixture(t)
	f.engine.Input().KeyDown(common.KeyFire)
	f.engine.Update()
	f.engine.Update()
	assert.Len(t, f.game.Balls(), 1)
}

func TestUpdate_ScorePlaysCue(t *testing.T) {
	f := newFixture(t)
	f.world.CreateCollider(physics.ColliderDesc{
		Shape:       physics.Cuboid{HalfExtents: mgl32.Vec3{2, 2, 2}},
		Groups:      physics.GroupBin,
		Translation: mgl32.Vec3{1, 0.5, -10},
		Rotation:    mgl32.QuatIdent(),
	}, nil)

	f.engine.Input().KeyDown(common.KeyFire)
	f.engine.Update()

	assert.Equal(t, 1, f.game.Score())
	assert.Equal(t, 1, f.audio.played)
	assert.Equal(t, 1, f.display.shown[0].Score)
}

func TestUpdate_HUDToggle(t *testing.T) {
	f := newFixture(t)
	f.engine.Input().KeyDown(common.KeyToggleHUD)
	f.engine.Update()
	assert.False(t, f.engine.HUDEnabled())
	assert.Equal(t, 0, f.display.count())

	f.engine.Input().KeyUp(common.KeyToggleHUD)
	f.engine.Input().KeyDown(common.KeyToggleHUD)
	f.engine.Update()
	assert.True(t, f.engine.HUDEnabled())
	assert.Equal(t, 1, f.display.count())
}

func TestQuit_StopsUpdatesAndClosesOutputs(t *testing.T) {
	f := newFixture(t)
	f.engine.Quit()
	f.engine.Quit()
	f.engine.Update()

	assert.Equal(t, uint64(0), f.engine.Frames())
	assert.True(t, f.display.closed)
	assert.True(t, f.audio.closed)
}

func TestRun_WithoutWindow(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.engine.Run(context.Background()), ErrNoWindow)
}

func TestRun_DrivesFramesFromWindow(t *testing.T) {
	w := newFakeWindow(3, false)
	f := newFixture(t, WithWindow(w), WithBackgroundTick(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.engine.Run(ctx) }()

	require.Eventually(t, func() bool { return f.engine.Frames() == 3 }, time.Second, time.Millisecond)

	w.onResize(640, 480)
	w.onMouseMove(10, 20)
	w.onKeyDown(common.KeyEsc)
	f.engine.Update()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		cancel()
		t.Fatal("escape did not close the window")
	}
	cancel()

	assert.Equal(t, [][2]int{{640, 480}}, f.render.resizes)
	assert.True(t, f.display.closed)
}

func TestRun_BackgroundTickWhileSuspended(t *testing.T) {
	w := newFakeWindow(0, true)
	f := newFixture(t, WithWindow(w), WithBackgroundTick(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.engine.Run(ctx) }()

	require.Eventually(t, func() bool { return f.engine.Frames() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("cancelling the context did not stop Run")
	}

	frames := f.engine.Frames()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, frames, f.engine.Frames())
}

func TestRun_SuspendResetsInput(t *testing.T) {
	w := newFakeWindow(0, false)
	f := newFixture(t, WithWindow(w), WithBackgroundTick(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.engine.Run(ctx) }()
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.onSuspend != nil
	}, time.Second, time.Millisecond)

	f.engine.Input().KeyDown(common.KeyFire)
	w.onSuspend(true)
	assert.False(t, f.engine.Input().Snapshot().IsHeld(common.KeyFire))

	cancel()
	require.NoError(t, <-done)
}
