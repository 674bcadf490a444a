package model

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Built-in mesh names.
const (
	MeshCube = "cube"
	MeshHex  = "hex"
)

var (
	// ErrUnknownMesh is returned when a mesh name has not been registered.
	ErrUnknownMesh = errors.New("unknown mesh")
	// ErrDuplicateMesh is returned when registering a name twice.
	ErrDuplicateMesh = errors.New("mesh already registered")
)

// registry is the implementation of the Registry interface.
type registry struct {
	mu           *sync.Mutex
	meshes       map[string]Mesh
	skipBuiltins bool
}

// Registry maps mesh names to immutable mesh data.
// Meshes are registered once at startup and shared by every entity that names them.
type Registry interface {
	// Get retrieves a mesh by name.
	//
	// Parameters:
	//   - name: the mesh name
	//
	// Returns:
	//   - Mesh: the mesh data
	//   - error: ErrUnknownMesh if the name is not registered
	Get(name string) (Mesh, error)

	// Register adds a mesh under a new name.
	//
	// Parameters:
	//   - name: the mesh name
	//   - mesh: the mesh data
	//
	// Returns:
	//   - error: ErrDuplicateMesh if the name is already taken
	Register(name string, mesh Mesh) error

	// Names returns the registered mesh names in sorted order.
	//
	// Returns:
	//   - []string: the mesh names
	Names() []string
}

var _ Registry = &registry{}

// NewRegistry creates a Registry holding the built-in cube and hex meshes plus any meshes given as options.
//
// Parameters:
//   - options: variadic list of RegistryBuilderOption functions
//
// Returns:
//   - Registry: the mesh registry
func NewRegistry(options ...RegistryBuilderOption) Registry {
	r := &registry{
		mu:     &sync.Mutex{},
		meshes: make(map[string]Mesh),
	}
	for _, opt := range options {
		opt(r)
	}
	if !r.skipBuiltins {
		if _, ok := r.meshes[MeshCube]; !ok {
			r.meshes[MeshCube] = Cube()
		}
		if _, ok := r.meshes[MeshHex]; !ok {
			hex, _ := PolygonPrism(6)
			r.meshes[MeshHex] = hex
		}
	}
	return r
}

func (r *registry) Get(name string) (Mesh, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meshes[name]
	if !ok {
		return Mesh{}, fmt.Errorf("mesh %q: %w", name, ErrUnknownMesh)
	}
	return m, nil
}

func (r *registry) Register(name string, mesh Mesh) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meshes[name]; ok {
		return fmt.Errorf("mesh %q: %w", name, ErrDuplicateMesh)
	}
	r.meshes[name] = mesh
	return nil
}

func (r *registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.meshes))
	for n := range r.meshes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
