package renderer

import (
	"time"

	"github.com/DatBlindArcher/bin-thrower/engine/renderer/bind_group_provider"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/pipeline"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// BindGroupLayoutKind identifies one of the fixed bind group layouts every pipeline is built from.
type BindGroupLayoutKind int

const (
	// LayoutScene is group 0: the shared scene uniform, visible to vertex and fragment stages.
	LayoutScene BindGroupLayoutKind = iota
	// LayoutModelView is group 1: a read-only storage buffer of per-instance model-view records, visible to the vertex stage.
	LayoutModelView
	// LayoutParams is group 2: the fragment (binding 0) and material (binding 1) uniforms, visible to the fragment stage.
	LayoutParams
)

// entityLayouts is the bind group layout list for entity pipelines, in group order.
var entityLayouts = []BindGroupLayoutKind{LayoutScene, LayoutModelView, LayoutParams}

// debugLayouts is the bind group layout list for the debug line pipeline.
var debugLayouts = []BindGroupLayoutKind{LayoutScene}

// TimestampCallback receives the GPU duration of the main pass once a timestamp readback completes.
// It is called exactly once per ReadTimestamps call, possibly from inside Poll.
type TimestampCallback func(d time.Duration, err error)

// RendererBackend is the GPU seam of the Renderer. The Renderer owns lifecycle, bookkeeping and byte layout;
// the backend owns every GPU object and executes what the Renderer asks for.
// Implementations need not be safe for concurrent use; the Renderer serializes all calls.
type RendererBackend interface {
	// ConfigureSurface (re)configures the presentation surface and recreates the depth target.
	//
	// Parameters:
	//   - width, height: surface size in pixels
	//
	// Returns:
	//   - error: error if the surface or depth target could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the surface present mode. Takes effect on the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// TimestampsSupported reports whether the device was created with timestamp queries.
	//
	// Returns:
	//   - bool: true if the main pass can be timed on the GPU
	TimestampsSupported() bool

	// RegisterRenderPipeline creates the GPU pipeline for p and stores it on p.
	//
	// Parameters:
	//   - p: the pipeline description
	//   - layouts: the bind group layouts for groups 0..n-1
	//
	// Returns:
	//   - error: error if shader module or pipeline creation fails
	RegisterRenderPipeline(p pipeline.Pipeline, layouts []BindGroupLayoutKind) error

	// InitMeshBuffers uploads vertex and index data and stores the buffers on provider.
	//
	// Parameters:
	//   - provider: receives the vertex and index buffers
	//   - vertexData: vertex bytes
	//   - indexData: uint32 index bytes
	//   - indexCount: number of indices
	//
	// Returns:
	//   - error: error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitVertexBuffer creates a writable vertex buffer of provider.BufferSize(0) bytes at binding 0.
	//
	// Parameters:
	//   - provider: receives the buffer
	//
	// Returns:
	//   - error: error if buffer creation fails
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider) error

	// InitBindGroup creates one buffer per binding of the layout, sized from provider.BufferSize, and the bind group over them.
	//
	// Parameters:
	//   - provider: receives the buffers, layout and bind group
	//   - kind: the layout to instantiate
	//
	// Returns:
	//   - error: error if buffer or bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, kind BindGroupLayoutKind) error

	// WriteBuffers enqueues buffer writes on the GPU queue.
	//
	// Parameters:
	//   - writes: the writes, applied in order
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// ReleaseProvider frees every GPU object held by provider.
	//
	// Parameters:
	//   - provider: the provider to release
	ReleaseProvider(provider bind_group_provider.BindGroupProvider)

	// BeginFrame acquires the swapchain texture and begins the main color and depth pass.
	//
	// Parameters:
	//   - timestamps: write begin and end timestamps for the main pass
	//
	// Returns:
	//   - error: error if the swapchain texture could not be acquired
	BeginFrame(timestamps bool) error

	// DrawCall encodes one indexed, instanced draw in the main pass.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - mesh: provider holding vertex and index buffers
	//   - instanceCount: number of instances
	//   - bindGroups: providers bound to groups 0..n-1
	DrawCall(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// EndMainPass ends the main pass.
	EndMainPass()

	// DrawLines encodes a second pass that loads the color target and draws a line list.
	//
	// Parameters:
	//   - p: the registered line pipeline
	//   - vertexBuffers: providers whose binding 0 buffers feed vertex slots 0..n-1
	//   - vertexCount: number of vertices to draw
	//   - bindGroups: providers bound to groups 0..n-1
	DrawLines(p pipeline.Pipeline, vertexBuffers []bind_group_provider.BindGroupProvider, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame finishes the command encoder and submits it.
	//
	// Parameters:
	//   - resolveTimestamps: resolve the main pass timestamps into the readback buffer
	//
	// Returns:
	//   - error: error if the command buffer could not be finished
	EndFrame(resolveTimestamps bool) error

	// Present presents the acquired surface texture.
	Present()

	// ReadTimestamps starts an asynchronous readback of the last resolved timestamps.
	//
	// Parameters:
	//   - callback: receives the result; never called more than once
	ReadTimestamps(callback TimestampCallback)

	// Poll processes completed GPU work without blocking, running pending readback callbacks.
	Poll()

	// Release frees the device, surface and every backend-owned resource.
	Release()
}
