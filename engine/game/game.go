// Package game implements the projectile gameplay: camera steering from pointer movement, a bounded pool of
// thrown balls and scoring when a ball reaches the bin.
package game

import (
	"math"
	"slices"
	"sync"

	"github.com/DatBlindArcher/bin-thrower/common"
	"github.com/DatBlindArcher/bin-thrower/engine/camera"
	"github.com/DatBlindArcher/bin-thrower/engine/input"
	"github.com/DatBlindArcher/bin-thrower/engine/model"
	"github.com/DatBlindArcher/bin-thrower/engine/physics"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ballColor tints rendered projectiles.
var ballColor = []float32{1, 0.55, 0.2, 1}

// RenderTarget is the part of renderer.Renderer the game drives.
type RenderTarget interface {
	SetCamera(position mgl32.Vec3, pitch, yaw, roll float32) error
	CreateEntity(meshName, shaderName string, fragProps, matProps, instances int) (renderer.EntityHandle, error)
	UpdateEntityTransform(h renderer.EntityHandle, t common.Transform, instance int) error
	UpdateEntityProperties(h renderer.EntityHandle, frag, mat []float32) error
	RemoveEntity(h renderer.EntityHandle) error
}

// Ball is one live projectile.
type Ball struct {
	Body     physics.BodyHandle
	Collider physics.ColliderHandle
	// Render is nil when balls are not drawn or the render entity could not be created.
	Render *renderer.EntityHandle
	// SpawnedAt is the spawn sequence number, starting at 1.
	SpawnedAt uint64
}

// ScoreListener is notified after every hit with the new score.
type ScoreListener func(score int)

// game is the implementation of the Game interface.
type game struct {
	mu     *sync.Mutex
	log    *zap.SugaredLogger
	world  physics.World
	target RenderTarget

	controller camera.CameraController
	muzzle     mgl32.Vec3
	speed      float32
	capacity   int
	ballRadius float32
	scoreShape physics.Ball

	renderBalls bool
	debug       bool

	balls     []Ball
	spawned   uint64
	score     int
	listeners []ScoreListener
}

// Game runs the per-frame gameplay update.
type Game interface {
	// Update runs one gameplay frame: steer the camera from pointer movement, push the camera, handle the fire,
	// debug and reset keys, then score every ball that reached the bin.
	// It does not clear the freshly-pressed keys; the frame driver does after the update.
	//
	// Parameters:
	//   - in: the input snapshot for this frame
	//
	// Returns:
	//   - error: the render target's SetCamera error
	Update(in input.Snapshot) error

	// Spawn throws a ball from the muzzle along the current view direction, evicting the oldest ball when the pool is full.
	//
	// Returns:
	//   - Ball: the new ball
	Spawn() Ball

	// Score returns the number of hits so far.
	Score() int

	// ResetScore sets the score back to zero.
	ResetScore()

	// Balls returns a copy of the live balls, oldest first.
	Balls() []Ball

	// DebugEnabled reports whether the debug overlay should be drawn.
	DebugEnabled() bool

	// SetDebugEnabled shows or hides the debug overlay.
	SetDebugEnabled(enabled bool)

	// Rotation returns the accumulated camera rotation in degrees.
	Rotation() (rotX, rotY float32)

	// OnScore registers a listener called after every hit.
	OnScore(l ScoreListener)

	// Clear removes every ball from the world and the render target.
	Clear()
}

var _ Game = &game{}

// NewGame creates a Game over a physics world and a render target.
//
// Parameters:
//   - world: the physics world balls are simulated in
//   - target: the renderer receiving camera and ball updates
//   - options: variadic list of GameBuilderOption functions
//
// Returns:
//   - Game: the game
func NewGame(world physics.World, target RenderTarget, options ...GameBuilderOption) Game {
	g := &game{
		mu:          &sync.Mutex{},
		log:         zap.NewNop().Sugar(),
		world:       world,
		target:      target,
		muzzle:      mgl32.Vec3{1, 0.5, -10},
		speed:       10,
		capacity:    3,
		ballRadius:  0.1,
		scoreShape:  physics.Ball{Radius: 0.1},
		renderBalls: true,
		debug:       true,
	}
	for _, opt := range options {
		opt(g)
	}
	if g.controller == nil {
		g.controller = camera.NewCameraController()
	}
	return g
}

// LaunchVelocity returns the initial velocity of a ball thrown with the given camera rotation.
// yaw turns the throw about Y and pitch tilts it; zero rotation throws along +Z.
//
// Parameters:
//   - yawDeg: horizontal rotation in degrees
//   - pitchDeg: vertical rotation in degrees
//   - speed: launch speed in units per second
//
// Returns:
//   - mgl32.Vec3: the velocity
func LaunchVelocity(yawDeg, pitchDeg, speed float32) mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(yawDeg))
	pitch := float64(mgl32.DegToRad(pitchDeg))
	return mgl32.Vec3{
		speed * float32(-math.Sin(yaw)*math.Cos(pitch)),
		speed * float32(-math.Sin(pitch)),
		speed * float32(math.Cos(yaw)*math.Cos(pitch)),
	}
}

func (g *game) Update(in input.Snapshot) error {
	g.mu.Lock()
	scores, err := g.update(in)
	listeners := slices.Clone(g.listeners)
	g.mu.Unlock()

	// Listeners run unlocked so they may read the game.
	for _, score := range scores {
		for _, l := range listeners {
			l(score)
		}
	}
	return err
}

func (g *game) update(in input.Snapshot) ([]int, error) {
	rotX, rotY := g.controller.Rotation()
	if in.HasPointer {
		rotX, rotY = g.controller.Sample(in.PointerX, in.PointerY)
	}
	if err := g.target.SetCamera(g.muzzle, rotY, 180+rotX, 0); err != nil {
		return nil, err
	}

	if in.WasPressed(common.KeyToggleDebug) {
		g.debug = !g.debug
		g.log.Debugw("debug overlay toggled", "enabled", g.debug)
	}
	if in.WasPressed(common.KeyResetScore) {
		g.score = 0
	}
	if in.WasPressed(common.KeyFire) {
		g.spawn(rotX, rotY)
	}

	scores := g.resolveHits()
	g.syncBallRenders()
	return scores, nil
}

func (g *game) Spawn() Ball {
	g.mu.Lock()
	defer g.mu.Unlock()
	rotX, rotY := g.controller.Rotation()
	return g.spawn(rotX, rotY)
}

func (g *game) spawn(rotX, rotY float32) Ball {
	if len(g.balls) >= g.capacity {
		g.removeBall(g.balls[0])
		g.balls = slices.Delete(g.balls, 0, 1)
	}

	body := g.world.CreateRigidBody(physics.BodyDesc{
		Kind:           physics.Dynamic,
		Position:       g.muzzle,
		Rotation:       common.EulerToQuat(rotY, 180+rotX, 0),
		LinearVelocity: LaunchVelocity(rotX, rotY, g.speed),
	})
	collider := g.world.CreateCollider(physics.ColliderDesc{
		Shape:    physics.Ball{Radius: g.ballRadius},
		Groups:   physics.GroupBall,
		Rotation: mgl32.QuatIdent(),
	}, &body)

	g.spawned++
	b := Ball{Body: body, Collider: collider, SpawnedAt: g.spawned}
	if g.renderBalls {
		b.Render = g.createBallRender()
	}
	g.balls = append(g.balls, b)
	return b
}

func (g *game) createBallRender() *renderer.EntityHandle {
	h, err := g.target.CreateEntity(model.MeshCube, shader.ShaderBall, len(ballColor), 1, 1)
	if err != nil {
		g.log.Warnw("ball render entity not created", "error", err)
		return nil
	}
	if err := g.target.UpdateEntityProperties(h, ballColor, nil); err != nil {
		g.log.Warnw("ball color not set", "error", err)
	}
	return &h
}

// removeBall drops a ball's body, colliders and render entity. It does not touch the pool slice.
func (g *game) removeBall(b Ball) {
	g.world.RemoveRigidBody(b.Body)
	if b.Render != nil {
		if err := g.target.RemoveEntity(*b.Render); err != nil {
			g.log.Warnw("ball render entity not removed", "error", err)
		}
	}
}

// resolveHits scores every ball touching the bin and returns the score after each hit.
// Iterating backward keeps the indices of unvisited balls stable.
func (g *game) resolveHits() []int {
	var scores []int
	for i := len(g.balls) - 1; i >= 0; i-- {
		b := g.balls[i]
		state := g.world.Body(b.Body)
		if !g.world.IntersectsShape(state.Position, state.Rotation, g.scoreShape, physics.GroupScoringQuery) {
			continue
		}
		g.score++
		g.removeBall(b)
		g.balls = slices.Delete(g.balls, i, i+1)
		g.log.Infow("hit", "score", g.score, "ball", b.SpawnedAt)
		scores = append(scores, g.score)
	}
	return scores
}

func (g *game) syncBallRenders() {
	scale := mgl32.Vec3{g.ballRadius, g.ballRadius, g.ballRadius}
	for _, b := range g.balls {
		if b.Render == nil {
			continue
		}
		state := g.world.Body(b.Body)
		t, err := common.NewTransformQuat(state.Position, state.Rotation, scale)
		if err != nil {
			continue
		}
		if err := g.target.UpdateEntityTransform(*b.Render, t, 0); err != nil {
			g.log.Debugw("ball transform not updated", "error", err)
		}
	}
}

func (g *game) Score() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score
}

func (g *game) ResetScore() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.score = 0
}

func (g *game) Balls() []Ball {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.balls)
}

func (g *game) DebugEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.debug
}

func (g *game) SetDebugEnabled(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.debug = enabled
}

func (g *game) Rotation() (float32, float32) {
	return g.controller.Rotation()
}

func (g *game) OnScore(l ScoreListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, l)
}

func (g *game) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, b := range g.balls {
		g.removeBall(b)
	}
	g.balls = nil
}
