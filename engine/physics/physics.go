// Package physics is the rigid-body world behind the game: dynamic ball projectiles bouncing off static boxes,
// collision-group filtered shape queries and wireframe debug output.
package physics

import (
	"fmt"
	"sync"

	"github.com/DatBlindArcher/bin-thrower/common"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// restitutionThreshold is the approach speed below which contacts stop bouncing, so resting bodies settle.
const restitutionThreshold = 1.0

// BodyKind selects how a rigid body is simulated.
type BodyKind int

const (
	// Dynamic bodies are moved by gravity, velocity and contacts.
	Dynamic BodyKind = iota
	// Fixed bodies never move.
	Fixed
)

func (k BodyKind) String() string {
	if k == Fixed {
		return "fixed"
	}
	return "dynamic"
}

// BodyHandle references a rigid body in a World.
type BodyHandle common.Handle

// ColliderHandle references a collider in a World.
type ColliderHandle common.Handle

func (h BodyHandle) String() string     { return "body " + common.Handle(h).String() }
func (h ColliderHandle) String() string { return "collider " + common.Handle(h).String() }

// BodyDesc describes a rigid body to create.
type BodyDesc struct {
	Kind           BodyKind
	Position       mgl32.Vec3
	Rotation       mgl32.Quat
	LinearVelocity mgl32.Vec3
}

// ColliderDesc describes a collider to create. Translation and Rotation are relative to the parent body,
// or world space when the collider has no parent.
type ColliderDesc struct {
	Shape       Shape
	Groups      InteractionGroups
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
}

// BodyState is a snapshot of a rigid body.
type BodyState struct {
	Kind           BodyKind
	Position       mgl32.Vec3
	Rotation       mgl32.Quat
	LinearVelocity mgl32.Vec3
}

// DebugRenderBuffers holds collider wireframes as a line list: Vertices has 3 floats and Colors 4 floats per endpoint.
type DebugRenderBuffers struct {
	Vertices []float32
	Colors   []float32
}

type body struct {
	kind      BodyKind
	pos       mgl32.Vec3
	rot       mgl32.Quat
	vel       mgl32.Vec3
	colliders []ColliderHandle
}

type collider struct {
	shape     Shape
	groups    InteractionGroups
	local     pose
	parent    BodyHandle
	hasParent bool
}

// world is the implementation of the World interface.
type world struct {
	mu          *sync.Mutex
	logger      *zap.SugaredLogger
	gravity     mgl32.Vec3
	timestep    float32
	restitution float32
	friction    float32
	slop        float32
	bodies      *common.Arena[body]
	colliders   *common.Arena[collider]
	steps       uint64
}

// World is the physics simulation used by the game.
// Handles are generation checked: using a handle after its body or collider was removed is a programmer error and panics.
type World interface {
	// Step advances the simulation by one fixed timestep: gravity, integration and contact resolution of dynamic bodies.
	Step()

	// CreateRigidBody adds a rigid body.
	//
	// Parameters:
	//   - desc: kind, initial pose and linear velocity of the body
	//
	// Returns:
	//   - BodyHandle: the new body
	CreateRigidBody(desc BodyDesc) BodyHandle

	// CreateCollider adds a collider, attached to parent when it is not nil.
	//
	// Parameters:
	//   - desc: shape, collision groups and local pose of the collider
	//   - parent: the body to attach to, or nil for a free standing static collider
	//
	// Returns:
	//   - ColliderHandle: the new collider
	CreateCollider(desc ColliderDesc, parent *BodyHandle) ColliderHandle

	// RemoveRigidBody removes a body together with every collider attached to it.
	// Panics when h is stale.
	//
	// Parameters:
	//   - h: the body to remove
	RemoveRigidBody(h BodyHandle)

	// RemoveCollider removes a single collider.
	// Panics when h is stale.
	//
	// Parameters:
	//   - h: the collider to remove
	RemoveCollider(h ColliderHandle)

	// Body returns a snapshot of a rigid body. Panics when h is stale.
	//
	// Parameters:
	//   - h: the body to read
	//
	// Returns:
	//   - BodyState: pose and velocity of the body
	Body(h BodyHandle) BodyState

	// ContainsBody reports whether h refers to a live body.
	ContainsBody(h BodyHandle) bool

	// IntersectsShape reports whether a shape placed at the given pose touches any collider whose groups interact with groups.
	//
	// Parameters:
	//   - pos: world position of the query shape
	//   - rot: world orientation of the query shape
	//   - shape: the query shape
	//   - groups: membership and filter masks of the query
	//
	// Returns:
	//   - bool: true when at least one collider intersects the shape
	IntersectsShape(pos mgl32.Vec3, rot mgl32.Quat, shape Shape, groups InteractionGroups) bool

	// DebugLines returns the wireframes of every collider.
	//
	// Returns:
	//   - DebugRenderBuffers: line list vertices and per-vertex colors
	DebugLines() DebugRenderBuffers

	// BodyCount returns the number of live rigid bodies.
	BodyCount() int

	// ColliderCount returns the number of live colliders.
	ColliderCount() int

	// Timestep returns the simulated seconds advanced by one Step.
	Timestep() float32
}

var _ World = &world{}

// NewWorld creates an empty World with gravity (0, -9.81, 0) and a 1/60 s timestep unless overridden.
//
// Parameters:
//   - options: variadic list of WorldBuilderOption functions
//
// Returns:
//   - World: the physics world
func NewWorld(options ...WorldBuilderOption) World {
	w := &world{
		mu:          &sync.Mutex{},
		logger:      zap.NewNop().Sugar(),
		gravity:     mgl32.Vec3{0, -9.81, 0},
		timestep:    1.0 / 60.0,
		restitution: 0.4,
		friction:    0.5,
		slop:        0.001,
		bodies:      common.NewArena[body](),
		colliders:   common.NewArena[collider](),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *world) Step() {
	w.mu.Lock()
	defer w.mu.Unlock()

	dt := w.timestep
	w.bodies.Each(func(h common.Handle, b *body) {
		if b.kind != Dynamic {
			return
		}
		b.vel = b.vel.Add(w.gravity.Mul(dt))
		b.pos = b.pos.Add(b.vel.Mul(dt))

		for _, ch := range b.colliders {
			own, err := w.colliders.Get(common.Handle(ch))
			if err != nil {
				continue
			}
			w.colliders.Each(func(oh common.Handle, other *collider) {
				if other.hasParent && other.parent == BodyHandle(h) {
					return
				}
				if !own.groups.Test(other.groups) {
					return
				}
				c, ok := collide(own.shape, w.worldPose(own), other.shape, w.worldPose(other))
				if !ok {
					return
				}
				w.resolve(b, c, w.isDynamic(other))
			})
		}
	})
	w.steps++
}

// resolve pushes b out of a contact and reflects the approaching part of its velocity.
// Against another dynamic body each side takes half of the positional correction.
func (w *world) resolve(b *body, c contact, otherDynamic bool) {
	share := float32(1)
	if otherDynamic {
		share = 0.5
	}
	if corr := c.depth - w.slop; corr > 0 {
		b.pos = b.pos.Add(c.normal.Mul(corr * share))
	}

	vn := b.vel.Dot(c.normal)
	if vn >= 0 {
		return
	}
	e := w.restitution
	if -vn < restitutionThreshold {
		e = 0
	}
	jn := -(1 + e) * vn
	v := b.vel.Add(c.normal.Mul(jn))

	// Coulomb friction on the tangential part, bounded by the normal impulse.
	along := v.Dot(c.normal)
	tangent := v.Sub(c.normal.Mul(along))
	if tl := tangent.Len(); tl > 0 {
		maxF := w.friction * jn
		if tl <= maxF {
			tangent = mgl32.Vec3{}
		} else {
			tangent = tangent.Sub(tangent.Mul(maxF / tl))
		}
	}
	b.vel = c.normal.Mul(along).Add(tangent)
}

func (w *world) isDynamic(c *collider) bool {
	if !c.hasParent {
		return false
	}
	b, err := w.bodies.Get(common.Handle(c.parent))
	return err == nil && b.kind == Dynamic
}

func (w *world) worldPose(c *collider) pose {
	if !c.hasParent {
		return c.local
	}
	b, err := w.bodies.Get(common.Handle(c.parent))
	if err != nil {
		return c.local
	}
	return pose{
		pos: b.pos.Add(b.rot.Rotate(c.local.pos)),
		rot: b.rot.Mul(c.local.rot),
	}
}

func (w *world) CreateRigidBody(desc BodyDesc) BodyHandle {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := BodyHandle(w.bodies.Insert(body{
		kind: desc.Kind,
		pos:  desc.Position,
		rot:  normalizedRotation(desc.Rotation),
		vel:  desc.LinearVelocity,
	}))
	w.logger.Debugw("rigid body created", "handle", h, "kind", desc.Kind, "pos", desc.Position)
	return h
}

func (w *world) CreateCollider(desc ColliderDesc, parent *BodyHandle) ColliderHandle {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := collider{
		shape:  desc.Shape,
		groups: desc.Groups,
		local:  pose{pos: desc.Translation, rot: normalizedRotation(desc.Rotation)},
	}
	var b *body
	if parent != nil {
		var err error
		b, err = w.bodies.Get(common.Handle(*parent))
		if err != nil {
			panic(fmt.Errorf("attach collider to %s: %w", *parent, err))
		}
		c.parent = *parent
		c.hasParent = true
	}
	h := ColliderHandle(w.colliders.Insert(c))
	if b != nil {
		b.colliders = append(b.colliders, h)
	}
	return h
}

func (w *world) RemoveRigidBody(h BodyHandle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, err := w.bodies.Remove(common.Handle(h))
	if err != nil {
		panic(fmt.Errorf("remove %s: %w", h, err))
	}
	for _, ch := range b.colliders {
		_, _ = w.colliders.Remove(common.Handle(ch))
	}
	w.logger.Debugw("rigid body removed", "handle", h, "colliders", len(b.colliders))
}

func (w *world) RemoveCollider(h ColliderHandle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.colliders.Remove(common.Handle(h))
	if err != nil {
		panic(fmt.Errorf("remove %s: %w", h, err))
	}
	if !c.hasParent {
		return
	}
	if b, err := w.bodies.Get(common.Handle(c.parent)); err == nil {
		for i, ch := range b.colliders {
			if ch == h {
				b.colliders = append(b.colliders[:i], b.colliders[i+1:]...)
				break
			}
		}
	}
}

func (w *world) Body(h BodyHandle) BodyState {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, err := w.bodies.Get(common.Handle(h))
	if err != nil {
		panic(fmt.Errorf("read %s: %w", h, err))
	}
	return BodyState{Kind: b.kind, Position: b.pos, Rotation: b.rot, LinearVelocity: b.vel}
}

func (w *world) ContainsBody(h BodyHandle) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bodies.Contains(common.Handle(h))
}

func (w *world) IntersectsShape(pos mgl32.Vec3, rot mgl32.Quat, shape Shape, groups InteractionGroups) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	query := pose{pos: pos, rot: normalizedRotation(rot)}
	hit := false
	w.colliders.Each(func(_ common.Handle, c *collider) {
		if hit || !groups.Test(c.groups) {
			return
		}
		if _, ok := collide(shape, query, c.shape, w.worldPose(c)); ok {
			hit = true
		}
	})
	return hit
}

func (w *world) BodyCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bodies.Len()
}

func (w *world) ColliderCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.colliders.Len()
}

func (w *world) Timestep() float32 {
	return w.timestep
}

// normalizedRotation treats the zero quaternion as identity so descriptors can leave Rotation unset.
func normalizedRotation(q mgl32.Quat) mgl32.Quat {
	if q.W == 0 && q.V == (mgl32.Vec3{}) {
		return mgl32.QuatIdent()
	}
	return q.Normalize()
}
