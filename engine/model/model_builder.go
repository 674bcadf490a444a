package model

// RegistryBuilderOption is a functional option for configuring a Registry via NewRegistry.
type RegistryBuilderOption func(*registry)

// WithMesh is an option builder that registers an additional named mesh.
//
// Parameters:
//   - name: the mesh name used by CreateEntity
//   - mesh: the mesh data
//
// Returns:
//   - RegistryBuilderOption: a function that applies the mesh option to a registry
func WithMesh(name string, mesh Mesh) RegistryBuilderOption {
	return func(r *registry) {
		r.meshes[name] = mesh
	}
}

// WithoutBuiltins is an option builder that skips registering the cube and hex meshes.
//
// Returns:
//   - RegistryBuilderOption: a function that applies the option to a registry
func WithoutBuiltins() RegistryBuilderOption {
	return func(r *registry) {
		r.skipBuiltins = true
	}
}
