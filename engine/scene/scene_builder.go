package scene

import (
	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithWorkers sets the number of goroutines preparing renders during Load. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.workers = max(n, 1)
	}
}

// WithMesh sets the registered mesh every render is drawn with.
//
// Parameters:
//   - name: a mesh name from the renderer's registry
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMesh(name string) SceneBuilderOption {
	return func(s *scene) {
		s.mesh = name
	}
}

// WithShader sets the shader every render is drawn with.
//
// Parameters:
//   - name: a shader name from the renderer's library
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShader(name string) SceneBuilderOption {
	return func(s *scene) {
		s.shader = name
	}
}

// WithFragColor sets the RGBA color of renders with the given frag tag.
//
// Parameters:
//   - frag: the frag tag
//   - rgba: the color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFragColor(frag string, rgba [4]float32) SceneBuilderOption {
	return func(s *scene) {
		s.palette[frag] = rgba
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) SceneBuilderOption {
	return func(s *scene) {
		s.log = log
	}
}
