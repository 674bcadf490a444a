package renderer

import (
	"github.com/DatBlindArcher/bin-thrower/engine/camera"
	"github.com/DatBlindArcher/bin-thrower/engine/model"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend replaces the default WebGPU backend. Used by tests and headless tools.
//
// Parameters:
//   - backend: the RendererBackend to drive
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(backend RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = backend
	}
}

// WithMeshRegistry sets the registry CreateEntity resolves mesh names against.
// When not specified, a registry holding the built-in cube and hexagonal prism is used.
//
// Parameters:
//   - registry: the mesh Registry
//
// Returns:
//   - RendererBuilderOption: a function that applies the registry option to a renderer
func WithMeshRegistry(registry model.Registry) RendererBuilderOption {
	return func(r *renderer) {
		r.meshes = registry
	}
}

// WithShaderLibrary sets the library CreateEntity resolves shader names against.
// When not specified, the embedded shader assets are used.
//
// Parameters:
//   - library: the shader Library
//
// Returns:
//   - RendererBuilderOption: a function that applies the library option to a renderer
func WithShaderLibrary(library shader.Library) RendererBuilderOption {
	return func(r *renderer) {
		r.shaders = library
	}
}

// WithCamera sets the camera whose matrices SetCamera uploads.
//
// Parameters:
//   - cam: the Camera
//
// Returns:
//   - RendererBuilderOption: a function that applies the camera option to a renderer
func WithCamera(cam camera.Camera) RendererBuilderOption {
	return func(r *renderer) {
		r.camera = cam
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(log *zap.SugaredLogger) RendererBuilderOption {
	return func(r *renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithTimestamps enables or disables GPU timestamp queries for the main pass. Enabled by default;
// the renderer silently runs without them when the adapter lacks the feature.
//
// Parameters:
//   - enabled: whether to request timestamp queries
//
// Returns:
//   - RendererBuilderOption: a function that applies the timestamp option to a renderer
func WithTimestamps(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.wantTimestamps = enabled
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the background color of the main pass.
//
// Parameters:
//   - rgba: red, green, blue and alpha in [0, 1]
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(rgba [4]float64) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = wgpu.Color{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	}
}
