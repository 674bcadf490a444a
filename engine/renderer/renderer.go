package renderer

import (
	"fmt"
	"sync"
	"time"

	"github.com/DatBlindArcher/bin-thrower/common"
	"github.com/DatBlindArcher/bin-thrower/engine/camera"
	"github.com/DatBlindArcher/bin-thrower/engine/model"
	"github.com/DatBlindArcher/bin-thrower/engine/profiler"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/bind_group_provider"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/pipeline"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// EntityHandle is an opaque, generation-checked reference to a render entity.
type EntityHandle common.Handle

// String implements fmt.Stringer.
func (h EntityHandle) String() string {
	return common.Handle(h).String()
}

// SurfaceSource provides the platform surface the default backend presents to. window.Window satisfies it.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// renderEntity is the Renderer-side record of one entity. The backend owns the GPU objects behind the providers.
type renderEntity struct {
	meshName  string
	mesh      bind_group_provider.BindGroupProvider
	modelView bind_group_provider.BindGroupProvider
	params    bind_group_provider.BindGroupProvider
	pipeline  pipeline.Pipeline
	instances int
	fragProps int
	matProps  int
}

type timestampResult struct {
	d   time.Duration
	err error
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	state   State
	surface SurfaceSource
	backend RendererBackend
	log     *zap.SugaredLogger

	meshes  model.Registry
	shaders shader.Library
	camera  camera.Camera

	// pipelineCache holds one pipeline per resolved shader source.
	pipelineCache map[string]pipeline.Pipeline
	meshProviders map[string]bind_group_provider.BindGroupProvider
	entities      *common.Arena[renderEntity]

	scene          bind_group_provider.BindGroupProvider
	debugPipeline  pipeline.Pipeline
	debugPositions bind_group_provider.BindGroupProvider
	debugColors    bind_group_provider.BindGroupProvider

	// timestamps is true when the backend can time the main pass.
	timestamps bool
	// gpuResult is the single-slot future for the outstanding timestamp readback; pending is set while one is in flight.
	gpuResult chan timestampResult
	pending   bool

	renderTime    *profiler.Average
	gpuTime       *profiler.Average
	frames        uint64
	debugSegments int
	// debugTruncated is set once an overlay larger than the line buffer has been logged.
	debugTruncated bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	wantTimestamps       bool
	clearColor           wgpu.Color
	presentMode          PresentMode
}

// Renderer draws mesh entities and a debug line overlay through a GPU backend.
//
// Lifecycle: Uninitialized -> Configure -> Configured -> SetCamera -> FrameReady, then SubmitFrame moves through
// Submitting back to FrameReady. Resize keeps every entity and only rebuilds size-dependent resources.
// Calls made in a state that does not allow them return ErrInvalidState.
type Renderer interface {
	// Configure acquires the GPU device and creates shared resources: the scene uniform, the debug line pipeline
	// and buffers, and timestamp queries when the adapter supports them.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: ErrBackendUnavailable if no device can be acquired, ErrInvalidState if already configured
	Configure(width, height int) error

	// CreateEntity allocates GPU storage for a mesh entity and returns its handle. Every instance starts at the
	// identity transform and every property value starts at 1.0.
	//
	// Parameters:
	//   - meshName: registered mesh name, e.g. "cube"
	//   - shaderName: logical shader name resolved through the shader library
	//   - fragProps: number of float32 fragment properties (at least 1)
	//   - matProps: number of float32 material properties (at least 1)
	//   - instances: number of instances (at least 1)
	//
	// Returns:
	//   - EntityHandle: the new entity
	//   - error: model.ErrUnknownMesh, a *shader.ResolutionError, or a backend error
	CreateEntity(meshName, shaderName string, fragProps, matProps, instances int) (EntityHandle, error)

	// UpdateEntityTransform writes model matrix, inverse and scale for one instance. If the matrix is singular the
	// inverse slot keeps its previous contents.
	//
	// Parameters:
	//   - h: the entity
	//   - t: the transform
	//   - instance: instance index
	//
	// Returns:
	//   - error: common.ErrStaleHandle or ErrInstanceOutOfRange
	UpdateEntityTransform(h EntityHandle, t common.Transform, instance int) error

	// UpdateEntityProperties overwrites the fragment and material uniforms from offset 0. A nil slice leaves that buffer alone.
	//
	// Parameters:
	//   - h: the entity
	//   - frag: fragment property values
	//   - mat: material property values
	//
	// Returns:
	//   - error: common.ErrStaleHandle or ErrPropertyOverflow
	UpdateEntityProperties(h EntityHandle, frag, mat []float32) error

	// RemoveEntity drops the entity from the draw list and releases its GPU buffers.
	//
	// Parameters:
	//   - h: the entity
	//
	// Returns:
	//   - error: common.ErrStaleHandle if h is not live
	RemoveEntity(h EntityHandle) error

	// ContainsEntity reports whether h refers to a live entity.
	ContainsEntity(h EntityHandle) bool

	// SetCamera rebuilds projection-view and view-inverse from the pose and uploads them to the scene uniform.
	//
	// Parameters:
	//   - position: camera position
	//   - pitch, yaw, roll: rotation about X, Y and Z in degrees
	//
	// Returns:
	//   - error: ErrInvalidState before Configure
	SetCamera(position mgl32.Vec3, pitch, yaw, roll float32) error

	// SubmitFrame records and submits one frame: every entity in the main pass, then the debug lines when enabled.
	// GPU timestamps, when available, are read back asynchronously and show up in Stats some frames later.
	//
	// Parameters:
	//   - debug: draw the debug line overlay
	//   - lines: the overlay; segments past DebugLineVertexCapacity vertices are dropped
	//
	// Returns:
	//   - error: ErrInvalidState unless FrameReady, or a backend error
	SubmitFrame(debug bool, lines DebugLines) error

	// Resize reconfigures the surface and depth target and updates the projection aspect. Entities are untouched.
	// A zero or negative size (minimized window) is ignored.
	//
	// Parameters:
	//   - width, height: new surface size in pixels
	//
	// Returns:
	//   - error: ErrInvalidState before Configure, or a backend error
	Resize(width, height int) error

	// Stats returns the rolling frame timings.
	//
	// Returns:
	//   - FrameStats: the current statistics
	Stats() FrameStats

	// State returns the current lifecycle state.
	//
	// Returns:
	//   - State: the state
	State() State

	// Camera returns the camera whose matrices feed the scene uniform.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Release frees all entities and GPU resources. The Renderer is unusable afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer in the Uninitialized state. No GPU work happens until Configure.
//
// Parameters:
//   - surface: the surface source for the default WebGPU backend; may be nil when WithBackend is used
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(surface SurfaceSource, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:             &sync.Mutex{},
		state:          StateUninitialized,
		surface:        surface,
		log:            zap.NewNop().Sugar(),
		pipelineCache:  make(map[string]pipeline.Pipeline),
		meshProviders:  make(map[string]bind_group_provider.BindGroupProvider),
		entities:       common.NewArena[renderEntity](),
		gpuResult:      make(chan timestampResult, 1),
		renderTime:     profiler.NewAverage(profiler.DefaultSmoothing),
		gpuTime:        profiler.NewAverage(profiler.DefaultSmoothing),
		wantTimestamps: true,
		clearColor:     DefaultClearColor,
		presentMode:    PresentModeVSync,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.meshes == nil {
		r.meshes = model.NewRegistry()
	}
	if r.shaders == nil {
		r.shaders = shader.NewLibrary(shader.Assets(), shader.WithLogger(r.log))
	}
	if r.camera == nil {
		r.camera = camera.NewCamera()
	}
	return r
}

func (r *renderer) Configure(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateUninitialized {
		return fmt.Errorf("configure in state %s: %w", r.state, ErrInvalidState)
	}

	if r.backend == nil {
		if r.surface == nil {
			return fmt.Errorf("no surface to present to: %w", ErrBackendUnavailable)
		}
		b, err := newWGPURendererBackend(r.surface.SurfaceDescriptor(), backendOptions{
			forceFallbackAdapter: r.forceFallbackAdapter,
			timestamps:           r.wantTimestamps,
			clearColor:           r.clearColor,
		}, r.log)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		r.backend = b
	}
	r.backend.SetPresentMode(r.presentMode)

	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("configure surface %dx%d: %w", width, height, err)
	}
	if height > 0 {
		r.camera.SetAspect(float32(width) / float32(height))
	}

	r.scene = bind_group_provider.NewBindGroupProvider("Scene",
		bind_group_provider.WithBufferSize(0, uint64((&camera.GPUSceneUniform{}).Size())))
	if err := r.backend.InitBindGroup(r.scene, LayoutScene); err != nil {
		return fmt.Errorf("scene uniform: %w", err)
	}

	if err := r.initDebug(); err != nil {
		return err
	}

	r.timestamps = r.wantTimestamps && r.backend.TimestampsSupported()
	if r.wantTimestamps && !r.timestamps {
		r.log.Infow("GPU timestamp queries unavailable, GPU time will not be reported")
	}

	r.state = StateConfigured
	r.log.Debugw("renderer configured", "width", width, "height", height, "timestamps", r.timestamps)
	return nil
}

func (r *renderer) initDebug() error {
	s, err := r.shaders.Shader(shader.ShaderDebug)
	if err != nil {
		return err
	}
	r.debugPipeline = pipeline.NewPipeline("debug-lines",
		pipeline.WithShader(s),
		pipeline.WithVertexLayouts(debugVertexLayouts...),
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
	)
	if err := r.backend.RegisterRenderPipeline(r.debugPipeline, debugLayouts); err != nil {
		return fmt.Errorf("debug pipeline: %w", err)
	}

	r.debugPositions = bind_group_provider.NewBindGroupProvider("Debug Positions",
		bind_group_provider.WithBufferSize(0, DebugLineVertexCapacity*debugPositionStride))
	r.debugColors = bind_group_provider.NewBindGroupProvider("Debug Colors",
		bind_group_provider.WithBufferSize(0, DebugLineVertexCapacity*debugColorStride))
	for _, p := range []bind_group_provider.BindGroupProvider{r.debugPositions, r.debugColors} {
		if err := r.backend.InitVertexBuffer(p); err != nil {
			return fmt.Errorf("%s: %w", p.Label(), err)
		}
	}
	return nil
}

// meshProvider returns the uploaded buffers for a registered mesh, uploading on first use.
func (r *renderer) meshProvider(name string) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := r.meshProviders[name]; ok {
		return p, nil
	}
	m, err := r.meshes.Get(name)
	if err != nil {
		return nil, err
	}
	p := bind_group_provider.NewBindGroupProvider("Mesh "+name, bind_group_provider.WithIndexCount(m.IndexCount()))
	if err := r.backend.InitMeshBuffers(p, m.VertexBytes(), m.IndexBytes(), m.IndexCount()); err != nil {
		return nil, fmt.Errorf("upload mesh %q: %w", name, err)
	}
	r.meshProviders[name] = p
	return p, nil
}

// entityPipeline returns the cached pipeline for a shader's resolved source, creating it on first use.
func (r *renderer) entityPipeline(s shader.Shader) (pipeline.Pipeline, error) {
	if p, ok := r.pipelineCache[s.Source()]; ok {
		return p, nil
	}
	p := pipeline.NewPipeline(s.Key(),
		pipeline.WithShader(s),
		pipeline.WithVertexLayouts(meshVertexLayout),
	)
	if err := r.backend.RegisterRenderPipeline(p, entityLayouts); err != nil {
		return nil, fmt.Errorf("pipeline for shader %q: %w", s.Key(), err)
	}
	r.pipelineCache[s.Source()] = p
	return p, nil
}

func (r *renderer) CreateEntity(meshName, shaderName string, fragProps, matProps, instances int) (EntityHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.state.in(StateConfigured, StateFrameReady) {
		return EntityHandle{}, fmt.Errorf("create entity in state %s: %w", r.state, ErrInvalidState)
	}
	fragProps = max(fragProps, 1)
	matProps = max(matProps, 1)
	instances = max(instances, 1)

	mesh, err := r.meshProvider(meshName)
	if err != nil {
		return EntityHandle{}, err
	}
	s, err := r.shaders.Shader(shaderName)
	if err != nil {
		return EntityHandle{}, err
	}
	p, err := r.entityPipeline(s)
	if err != nil {
		return EntityHandle{}, err
	}

	modelView := bind_group_provider.NewBindGroupProvider("ModelView",
		bind_group_provider.WithBufferSize(0, uint64(instances*ModelViewStride)))
	if err := r.backend.InitBindGroup(modelView, LayoutModelView); err != nil {
		return EntityHandle{}, fmt.Errorf("model-view storage: %w", err)
	}

	fragSize := align16(uint64(fragProps * 4))
	matSize := align16(uint64(matProps * 4))
	params := bind_group_provider.NewBindGroupProvider("Params",
		bind_group_provider.WithBufferSize(0, fragSize),
		bind_group_provider.WithBufferSize(1, matSize))
	if err := r.backend.InitBindGroup(params, LayoutParams); err != nil {
		r.backend.ReleaseProvider(modelView)
		return EntityHandle{}, fmt.Errorf("entity params: %w", err)
	}

	identity := GPUModelView{
		Model:        mgl32.Ident4(),
		ModelInverse: mgl32.Ident4(),
		Scale:        [4]float32{1, 1, 1, 0},
	}
	initial := make([]byte, 0, instances*ModelViewStride)
	for range instances {
		initial = append(initial, identity.Marshal()...)
	}
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: modelView, Binding: 0, Offset: 0, Data: initial},
		{Provider: params, Binding: 0, Offset: 0, Data: floatBytes(ones(int(fragSize / 4)))},
		{Provider: params, Binding: 1, Offset: 0, Data: floatBytes(ones(int(matSize / 4)))},
	})

	h := r.entities.Insert(renderEntity{
		meshName:  meshName,
		mesh:      mesh,
		modelView: modelView,
		params:    params,
		pipeline:  p,
		instances: instances,
		fragProps: int(fragSize / 4),
		matProps:  int(matSize / 4),
	})
	return EntityHandle(h), nil
}

func ones(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func (r *renderer) UpdateEntityTransform(h EntityHandle, t common.Transform, instance int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.entities.Get(common.Handle(h))
	if err != nil {
		return err
	}
	if instance < 0 || instance >= e.instances {
		return fmt.Errorf("instance %d of %d: %w", instance, e.instances, ErrInstanceOutOfRange)
	}

	base := uint64(instance * ModelViewStride)
	writes := []bind_group_provider.BufferWrite{
		{Provider: e.modelView, Binding: 0, Offset: base + modelOffset, Data: matBytes(t.Matrix)},
	}
	if inv, err := common.Invert(t.Matrix); err == nil {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: e.modelView, Binding: 0, Offset: base + inverseOffset, Data: matBytes(inv),
		})
	} else {
		r.log.Debugw("keeping stale inverse model matrix", "entity", h, "instance", instance, "error", err)
	}
	writes = append(writes, bind_group_provider.BufferWrite{
		Provider: e.modelView, Binding: 0, Offset: base + scaleOffset,
		Data: floatBytes([]float32{t.Scale[0], t.Scale[1], t.Scale[2], 0}),
	})
	r.backend.WriteBuffers(writes)
	return nil
}

func (r *renderer) UpdateEntityProperties(h EntityHandle, frag, mat []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.entities.Get(common.Handle(h))
	if err != nil {
		return err
	}
	if len(frag) > e.fragProps {
		return fmt.Errorf("%d fragment values, capacity %d: %w", len(frag), e.fragProps, ErrPropertyOverflow)
	}
	if len(mat) > e.matProps {
		return fmt.Errorf("%d material values, capacity %d: %w", len(mat), e.matProps, ErrPropertyOverflow)
	}

	var writes []bind_group_provider.BufferWrite
	if len(frag) > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{Provider: e.params, Binding: 0, Data: floatBytes(frag)})
	}
	if len(mat) > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{Provider: e.params, Binding: 1, Data: floatBytes(mat)})
	}
	if len(writes) > 0 {
		r.backend.WriteBuffers(writes)
	}
	return nil
}

func (r *renderer) RemoveEntity(h EntityHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.entities.Remove(common.Handle(h))
	if err != nil {
		return err
	}
	r.backend.ReleaseProvider(e.modelView)
	r.backend.ReleaseProvider(e.params)
	return nil
}

func (r *renderer) ContainsEntity(h EntityHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entities.Contains(common.Handle(h))
}

func (r *renderer) SetCamera(position mgl32.Vec3, pitch, yaw, roll float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.state.in(StateConfigured, StateFrameReady) {
		return fmt.Errorf("set camera in state %s: %w", r.state, ErrInvalidState)
	}
	r.camera.SetPose(position, pitch, yaw, roll)
	r.writeSceneUniform()
	r.state = StateFrameReady
	return nil
}

func (r *renderer) writeSceneUniform() {
	u := r.camera.Uniform()
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.scene, Binding: 0, Offset: 0, Data: u.Marshal()},
	})
}

func (r *renderer) SubmitFrame(debug bool, lines DebugLines) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateFrameReady {
		return fmt.Errorf("submit frame in state %s: %w", r.state, ErrInvalidState)
	}
	r.state = StateSubmitting
	defer func() { r.state = StateFrameReady }()

	start := time.Now()
	r.collectTimestamps()
	timed := r.timestamps && !r.pending

	if err := r.backend.BeginFrame(timed); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}

	r.entities.Each(func(_ common.Handle, e *renderEntity) {
		r.backend.DrawCall(e.pipeline, e.mesh, uint32(e.instances),
			[]bind_group_provider.BindGroupProvider{r.scene, e.modelView, e.params})
	})
	r.backend.EndMainPass()

	r.debugSegments = 0
	if debug {
		r.drawDebugLines(lines)
	}

	if err := r.backend.EndFrame(timed); err != nil {
		return fmt.Errorf("end frame: %w", err)
	}
	r.backend.Present()

	if timed {
		r.pending = true
		r.backend.ReadTimestamps(func(d time.Duration, err error) {
			// At most one readback is outstanding, so the slot is always free here.
			r.gpuResult <- timestampResult{d: d, err: err}
		})
	}
	r.backend.Poll()

	r.frames++
	r.renderTime.Add(time.Since(start))
	return nil
}

// collectTimestamps takes a completed readback out of the slot without blocking.
func (r *renderer) collectTimestamps() {
	select {
	case res := <-r.gpuResult:
		r.pending = false
		if res.err != nil {
			r.log.Debugw("timestamp readback failed", "error", res.err)
			return
		}
		r.gpuTime.Add(res.d)
	default:
	}
}

func (r *renderer) drawDebugLines(lines DebugLines) {
	n := lines.VertexCount()
	if n == 0 {
		return
	}
	if n > DebugLineVertexCapacity {
		if !r.debugTruncated {
			r.log.Warnw("debug lines truncated", "vertices", n, "capacity", DebugLineVertexCapacity)
			r.debugTruncated = true
		}
		n = DebugLineVertexCapacity
	}
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.debugPositions, Binding: 0, Data: floatBytes(lines.Vertices[:n*3])},
		{Provider: r.debugColors, Binding: 0, Data: floatBytes(lines.Colors[:n*4])},
	})
	r.backend.DrawLines(r.debugPipeline,
		[]bind_group_provider.BindGroupProvider{r.debugPositions, r.debugColors},
		uint32(n),
		[]bind_group_provider.BindGroupProvider{r.scene})
	r.debugSegments = n / 2
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.state.in(StateConfigured, StateFrameReady) {
		return fmt.Errorf("resize in state %s: %w", r.state, ErrInvalidState)
	}
	if width <= 0 || height <= 0 {
		return nil
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("resize surface %dx%d: %w", width, height, err)
	}
	r.camera.SetAspect(float32(width) / float32(height))
	if r.state == StateFrameReady {
		r.writeSceneUniform()
	}
	return nil
}

func (r *renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, _ := r.renderTime.Value()
	gt, ok := r.gpuTime.Value()
	return FrameStats{
		RenderTime:       rt,
		GPUTime:          gt,
		GPUTimeAvailable: ok,
		Entities:         r.entities.Len(),
		DebugSegments:    r.debugSegments,
		Frames:           r.frames,
	}
}

func (r *renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *renderer) Camera() camera.Camera {
	return r.camera
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateReleased {
		return
	}
	if r.backend != nil {
		r.entities.Each(func(_ common.Handle, e *renderEntity) {
			r.backend.ReleaseProvider(e.modelView)
			r.backend.ReleaseProvider(e.params)
		})
		for _, p := range r.meshProviders {
			r.backend.ReleaseProvider(p)
		}
		for _, p := range []bind_group_provider.BindGroupProvider{r.scene, r.debugPositions, r.debugColors} {
			if p != nil {
				r.backend.ReleaseProvider(p)
			}
		}
		for _, p := range r.pipelineCache {
			p.Release()
		}
		if r.debugPipeline != nil {
			r.debugPipeline.Release()
		}
		r.backend.Release()
	}
	r.entities = common.NewArena[renderEntity]()
	r.meshProviders = make(map[string]bind_group_provider.BindGroupProvider)
	r.pipelineCache = make(map[string]pipeline.Pipeline)
	r.state = StateReleased
}
