// Package scene turns a level document into static render entities and fixed physics colliders.
package scene

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/DatBlindArcher/bin-thrower/common"
	"github.com/DatBlindArcher/bin-thrower/engine/model"
	"github.com/DatBlindArcher/bin-thrower/engine/physics"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Frag tags with meaning to the loader.
const (
	// FragBorder renders without a collider.
	FragBorder = "border"
	// FragBin renders with a scoring collider.
	FragBin = "bin"
)

var (
	// ErrRenderIndex is returned when a render component points outside the document's render list.
	ErrRenderIndex = errors.New("render index out of range")
	// ErrClosed is returned by Load after Close.
	ErrClosed = errors.New("scene closed")
)

// fragPropCount and matPropCount size the per-render property buffers: one RGBA color and one diffuse factor.
const (
	fragPropCount = 4
	matPropCount  = 1
)

var defaultPalette = map[string][4]float32{
	FragBin:    {0.3, 0.8, 0.3, 1},
	FragBorder: {0.5, 0.5, 0.55, 1},
}

var defaultColor = [4]float32{0.85, 0.85, 0.85, 1}

// RenderTarget is the part of renderer.Renderer the loader drives.
type RenderTarget interface {
	CreateEntity(meshName, shaderName string, fragProps, matProps, instances int) (renderer.EntityHandle, error)
	UpdateEntityTransform(h renderer.EntityHandle, t common.Transform, instance int) error
	UpdateEntityProperties(h renderer.EntityHandle, frag, mat []float32) error
	RemoveEntity(h renderer.EntityHandle) error
}

// Scene owns the static geometry of one loaded level.
type Scene interface {
	// Load replaces the current level with doc. Transforms and collider shapes are prepared in parallel;
	// the renderer and the physics world are only touched once every render has been prepared.
	//
	// Parameters:
	//   - doc: the level document
	//
	// Returns:
	//   - error: a preparation, link or render error; on error nothing from doc stays loaded
	Load(doc Document) error

	// Renders returns the render entity of every document render, in document order.
	Renders() []renderer.EntityHandle

	// Colliders returns the collider of every document render, in document order. Border renders have none.
	Colliders() []*physics.ColliderHandle

	// Groups returns the collision groups each render's collider was created with. Border renders report 0.
	Groups() []physics.InteractionGroups

	// Entities returns the level's entities with resolved components.
	Entities() []Entity

	// Entity returns the entity with the given id.
	//
	// Parameters:
	//   - id: the entity id from the level file
	//
	// Returns:
	//   - Entity: the entity
	//   - bool: whether an entity with that id exists
	Entity(id int) (Entity, bool)

	// Unload removes every render entity and collider of the current level.
	Unload()

	// Close unloads the level and stops the preparation workers.
	Close()
}

// prepared is the renderer- and physics-independent data for one render.
type prepared struct {
	transform   common.Transform
	halfExtents mgl32.Vec3
	rotation    mgl32.Quat
	groups      physics.InteractionGroups
	collider    bool
	color       []float32
}

type scene struct {
	mu     *sync.Mutex
	log    *zap.SugaredLogger
	world  physics.World
	target RenderTarget

	mesh    string
	shader  string
	palette map[string][4]float32

	workers int
	pool    worker.DynamicWorkerPool
	closed  bool

	renders   []renderer.EntityHandle
	colliders []*physics.ColliderHandle
	groups    []physics.InteractionGroups
	entities  []Entity
}

var _ Scene = &scene{}

// NewScene creates an empty Scene that loads into world and target.
//
// Parameters:
//   - world: the physics world colliders are created in
//   - target: the renderer render entities are created in
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the scene
func NewScene(world physics.World, target RenderTarget, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:      &sync.Mutex{},
		log:     zap.NewNop().Sugar(),
		world:   world,
		target:  target,
		mesh:    model.MeshCube,
		shader:  shader.ShaderDefault,
		palette: make(map[string][4]float32, len(defaultPalette)),
		workers: max(runtime.NumCPU()-1, 1),
	}
	for tag, c := range defaultPalette {
		s.palette[tag] = c
	}
	for _, opt := range options {
		opt(s)
	}
	s.pool = worker.NewDynamicWorkerPool(s.workers, 256, time.Second)
	return s
}

func (s *scene) Load(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.unload()

	entities := make([]Entity, 0, len(doc.Entities))
	for i, ed := range doc.Entities {
		e, err := newEntity(ed)
		if err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
		if idx, ok := e.Render(); ok && idx >= len(doc.Renders) {
			return fmt.Errorf("entity %d: render %d of %d: %w", i, idx, len(doc.Renders), ErrRenderIndex)
		}
		entities = append(entities, e)
	}

	preps, err := s.prepare(doc.Renders)
	if err != nil {
		return err
	}

	for _, e := range entities {
		idx, ok := e.Render()
		if !ok || !e.Collects() {
			continue
		}
		if !preps[idx].collider {
			s.log.Warnw("collect component on a render without collider", "render", idx, "frag", doc.Renders[idx].Frag)
			continue
		}
		preps[idx].groups = physics.GroupBin
	}

	if err := s.build(preps); err != nil {
		s.unload()
		return err
	}
	s.entities = entities
	s.log.Infow("level loaded", "renders", len(s.renders), "entities", len(entities), "colliders", s.colliderCount())
	return nil
}

// prepare builds every render's transform and collider shape on the worker pool and joins before returning.
func (s *scene) prepare(renders []RenderDesc) ([]prepared, error) {
	preps := make([]prepared, len(renders))
	errs := make([]error, len(renders))

	var wg sync.WaitGroup
	for i, rd := range renders {
		wg.Add(1)
		s.pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: rd,
			Do: func() (any, error) {
				defer wg.Done()
				preps[i], errs[i] = s.prepareRender(rd)
				if errs[i] != nil {
					errs[i] = fmt.Errorf("render %d: %w", i, errs[i])
				}
				return nil, errs[i]
			},
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return preps, nil
}

func (s *scene) prepareRender(rd RenderDesc) (prepared, error) {
	half := rd.Scale.Vec().Mul(0.5)
	rot := rd.Rotation.Vec()
	t, err := common.NewTransform(rd.Position.Vec(), rot, half)
	if err != nil {
		return prepared{}, err
	}

	color, ok := s.palette[rd.Frag]
	if !ok {
		color = defaultColor
	}

	p := prepared{
		transform:   t,
		halfExtents: half,
		rotation:    common.EulerToQuat(rot[0], rot[1], rot[2]),
		color:       color[:],
	}
	switch rd.Frag {
	case FragBorder:
	case FragBin:
		p.collider, p.groups = true, physics.GroupBin
	default:
		p.collider, p.groups = true, physics.GroupStatic
	}
	return p, nil
}

func (s *scene) build(preps []prepared) error {
	for i, p := range preps {
		h, err := s.target.CreateEntity(s.mesh, s.shader, fragPropCount, matPropCount, 1)
		if err != nil {
			return fmt.Errorf("render %d: %w", i, err)
		}
		s.renders = append(s.renders, h)
		if err := s.target.UpdateEntityTransform(h, p.transform, 0); err != nil {
			return fmt.Errorf("render %d: %w", i, err)
		}
		if err := s.target.UpdateEntityProperties(h, p.color, nil); err != nil {
			return fmt.Errorf("render %d: %w", i, err)
		}

		if !p.collider {
			s.colliders = append(s.colliders, nil)
			s.groups = append(s.groups, 0)
			continue
		}
		c := s.world.CreateCollider(physics.ColliderDesc{
			Shape:       physics.Cuboid{HalfExtents: p.halfExtents},
			Groups:      p.groups,
			Translation: p.transform.Position(),
			Rotation:    p.rotation,
		}, nil)
		s.colliders = append(s.colliders, &c)
		s.groups = append(s.groups, p.groups)
	}
	return nil
}

func (s *scene) colliderCount() int {
	n := 0
	for _, c := range s.colliders {
		if c != nil {
			n++
		}
	}
	return n
}

func (s *scene) Renders() []renderer.EntityHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]renderer.EntityHandle(nil), s.renders...)
}

func (s *scene) Colliders() []*physics.ColliderHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*physics.ColliderHandle(nil), s.colliders...)
}

func (s *scene) Groups() []physics.InteractionGroups {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]physics.InteractionGroups(nil), s.groups...)
}

func (s *scene) Entities() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entity(nil), s.entities...)
}

func (s *scene) Entity(id int) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entities {
		if e.ID != nil && *e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

func (s *scene) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unload()
}

func (s *scene) unload() {
	for _, h := range s.renders {
		if err := s.target.RemoveEntity(h); err != nil {
			s.log.Debugw("render entity not removed", "handle", h, "error", err)
		}
	}
	for _, c := range s.colliders {
		if c != nil {
			s.world.RemoveCollider(*c)
		}
	}
	s.renders, s.colliders, s.groups, s.entities = nil, nil, nil, nil
}

func (s *scene) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.unload()
	s.pool.Stop()
	s.closed = true
}
