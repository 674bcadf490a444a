package renderer

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/DatBlindArcher/bin-thrower/common"
	"github.com/DatBlindArcher/bin-thrower/engine/model"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/bind_group_provider"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/pipeline"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeDraw struct {
	pipeline   pipeline.Pipeline
	mesh       bind_group_provider.BindGroupProvider
	instances  uint32
	bindGroups []bind_group_provider.BindGroupProvider
}

// fakeBackend records every call the renderer makes. Providers never receive real GPU objects.
type fakeBackend struct {
	timestamps    bool
	configureErr  error
	surfaceSizes  [][2]int
	presentMode   PresentMode
	pipelines     []pipeline.Pipeline
	meshUploads   []string
	bindGroups    map[bind_group_provider.BindGroupProvider]BindGroupLayoutKind
	writes        []bind_group_provider.BufferWrite
	released      []bind_group_provider.BindGroupProvider
	beginFrames   []bool
	endFrames     []bool
	draws         []fakeDraw
	lineVertices  []uint32
	presents      int
	polls         int
	readCallbacks []TimestampCallback
	backendFreed  bool
}

var _ RendererBackend = &fakeBackend{}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{bindGroups: make(map[bind_group_provider.BindGroupProvider]BindGroupLayoutKind)}
}

func (f *fakeBackend) ConfigureSurface(width, height int) error {
	if f.configureErr != nil {
		return f.configureErr
	}
	f.surfaceSizes = append(f.surfaceSizes, [2]int{width, height})
	return nil
}

func (f *fakeBackend) SetPresentMode(mode PresentMode) { f.presentMode = mode }
func (f *fakeBackend) TimestampsSupported() bool       { return f.timestamps }

func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline, _ []BindGroupLayoutKind) error {
	f.pipelines = append(f.pipelines, p)
	return nil
}

func (f *fakeBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, _, _ []byte, indexCount int) error {
	f.meshUploads = append(f.meshUploads, provider.Label())
	provider.SetIndexCount(indexCount)
	return nil
}

func (f *fakeBackend) InitVertexBuffer(bind_group_provider.BindGroupProvider) error { return nil }

func (f *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, kind BindGroupLayoutKind) error {
	f.bindGroups[provider] = kind
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}

func (f *fakeBackend) ReleaseProvider(provider bind_group_provider.BindGroupProvider) {
	provider.Release()
	f.released = append(f.released, provider)
}

func (f *fakeBackend) BeginFrame(timestamps bool) error {
	f.beginFrames = append(f.beginFrames, timestamps)
	return nil
}

func (f *fakeBackend) DrawCall(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) {
	f.draws = append(f.draws, fakeDraw{pipeline: p, mesh: mesh, instances: instanceCount, bindGroups: bindGroups})
}

func (f *fakeBackend) EndMainPass() {}

func (f *fakeBackend) DrawLines(_ pipeline.Pipeline, _ []bind_group_provider.BindGroupProvider, vertexCount uint32, _ []bind_group_provider.BindGroupProvider) {
	f.lineVertices = append(f.lineVertices, vertexCount)
}

func (f *fakeBackend) EndFrame(resolveTimestamps bool) error {
	f.endFrames = append(f.endFrames, resolveTimestamps)
	return nil
}

func (f *fakeBackend) Present() { f.presents++ }

func (f *fakeBackend) ReadTimestamps(callback TimestampCallback) {
	f.readCallbacks = append(f.readCallbacks, callback)
}

func (f *fakeBackend) Poll()    { f.polls++ }
func (f *fakeBackend) Release() { f.backendFreed = true }

// writesTo returns the writes that targeted provider, in order.
func (f *fakeBackend) writesTo(provider bind_group_provider.BindGroupProvider) []bind_group_provider.BufferWrite {
	var out []bind_group_provider.BufferWrite
	for _, w := range f.writes {
		if w.Provider == provider {
			out = append(out, w)
		}
	}
	return out
}

func decodeFloats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func newTestRenderer(t *testing.T, options ...RendererBuilderOption) (*renderer, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend()
	r := NewRenderer(nil, append([]RendererBuilderOption{WithBackend(fb)}, options...)...).(*renderer)
	return r, fb
}

func newReadyRenderer(t *testing.T, options ...RendererBuilderOption) (*renderer, *fakeBackend) {
	t.Helper()
	r, fb := newTestRenderer(t, options...)
	require.NoError(t, r.Configure(800, 600))
	require.NoError(t, r.SetCamera(mgl32.Vec3{0, 0, -10}, 0, 180, 0))
	return r, fb
}

func TestRenderer_Lifecycle(t *testing.T) {
	r, fb := newTestRenderer(t, WithPresentMode(PresentModeUncapped))
	assert.Equal(t, StateUninitialized, r.State())

	_, err := r.CreateEntity(model.MeshCube, shader.ShaderDefault, 4, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, r.SetCamera(mgl32.Vec3{}, 0, 0, 0), ErrInvalidState)
	assert.ErrorIs(t, r.Resize(10, 10), ErrInvalidState)

	require.NoError(t, r.Configure(800, 600))
	assert.Equal(t, StateConfigured, r.State())
	assert.Equal(t, PresentModeUncapped, fb.presentMode)
	assert.Equal(t, [][2]int{{800, 600}}, fb.surfaceSizes)
	assert.InDelta(t, 800.0/600.0, r.Camera().Aspect(), 1e-6)
	assert.ErrorIs(t, r.Configure(800, 600), ErrInvalidState)

	// Frames need a camera first.
	assert.ErrorIs(t, r.SubmitFrame(false, DebugLines{}), ErrInvalidState)

	require.NoError(t, r.SetCamera(mgl32.Vec3{1, 0.5, -10}, 0, 180, 0))
	assert.Equal(t, StateFrameReady, r.State())
	require.NoError(t, r.SubmitFrame(false, DebugLines{}))
	assert.Equal(t, StateFrameReady, r.State())
	assert.Equal(t, 1, fb.presents)

	r.Release()
	assert.Equal(t, StateReleased, r.State())
	assert.True(t, fb.backendFreed)
	assert.ErrorIs(t, r.SubmitFrame(false, DebugLines{}), ErrInvalidState)
	r.Release()
}

func TestRenderer_ConfigureWithoutSurface(t *testing.T) {
	r := NewRenderer(nil)
	err := r.Configure(640, 480)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, StateUninitialized, r.State())
}

func TestRenderer_ConfigureSurfaceError(t *testing.T) {
	r, fb := newTestRenderer(t)
	fb.configureErr = errors.New("lost surface")
	assert.Error(t, r.Configure(640, 480))
	assert.Equal(t, StateUninitialized, r.State())
}

func TestRenderer_SetCameraUploadsSceneUniform(t *testing.T) {
	r, fb := newReadyRenderer(t)

	writes := fb.writesTo(r.scene)
	require.Len(t, writes, 1)
	assert.Len(t, writes[0].Data, 128)

	u := r.Camera().Uniform()
	assert.Equal(t, u.Marshal(), writes[0].Data)
	assert.Equal(t, LayoutScene, fb.bindGroups[r.scene])
}

func TestRenderer_CreateEntityInitialisesBuffers(t *testing.T) {
	r, fb := newReadyRenderer(t)

	h, err := r.CreateEntity(model.MeshCube, shader.ShaderDefault, 4, 1, 3)
	require.NoError(t, err)
	e, err := r.entities.Get(common.Handle(h))
	require.NoError(t, err)

	assert.Equal(t, uint64(3*ModelViewStride), e.modelView.BufferSize(0))
	assert.Equal(t, uint64(16), e.params.BufferSize(0))
	assert.Equal(t, uint64(16), e.params.BufferSize(1))
	assert.Equal(t, LayoutModelView, fb.bindGroups[e.modelView])
	assert.Equal(t, LayoutParams, fb.bindGroups[e.params])

	mv := fb.writesTo(e.modelView)
	require.Len(t, mv, 1)
	floats := decodeFloats(mv[0].Data)
	require.Len(t, floats, 3*ModelViewStride/4)
	ident := mgl32.Ident4()
	for i := 0; i < 3; i++ {
		base := i * ModelViewStride / 4
		assert.Equal(t, ident[:], floats[base:base+16])
		assert.Equal(t, ident[:], floats[base+16:base+32])
		assert.Equal(t, []float32{1, 1, 1, 0}, floats[base+32:base+36])
	}

	params := fb.writesTo(e.params)
	require.Len(t, params, 2)
	assert.Equal(t, []float32{1, 1, 1, 1}, decodeFloats(params[0].Data))
	assert.Equal(t, 1, params[1].Binding)
	assert.Equal(t, []float32{1, 1, 1, 1}, decodeFloats(params[1].Data))
}

func TestRenderer_CreateEntityErrors(t *testing.T) {
	r, _ := newReadyRenderer(t)

	_, err := r.CreateEntity("pyramid", shader.ShaderDefault, 1, 1, 1)
	assert.ErrorIs(t, err, model.ErrUnknownMesh)

	_, err = r.CreateEntity(model.MeshCube, "missing", 1, 1, 1)
	assert.ErrorIs(t, err, shader.ErrShaderNotFound)
	var resErr *shader.ResolutionError
	assert.ErrorAs(t, err, &resErr)

	assert.Equal(t, 0, r.Stats().Entities)
}

func TestRenderer_MeshesAndPipelinesAreShared(t *testing.T) {
	r, fb := newReadyRenderer(t)
	debugPipelines := len(fb.pipelines)

	a, err := r.CreateEntity(model.MeshCube, shader.ShaderDefault, 4, 1, 1)
	require.NoError(t, err)
	b, err := r.CreateEntity(model.MeshCube, shader.ShaderDefault, 4, 1, 1)
	require.NoError(t, err)
	_, err = r.CreateEntity(model.MeshHex, shader.ShaderDefault, 4, 1, 1)
	require.NoError(t, err)
	_, err = r.CreateEntity(model.MeshCube, shader.ShaderBall, 4, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"Mesh " + model.MeshCube, "Mesh " + model.MeshHex}, fb.meshUploads)
	assert.Len(t, fb.pipelines, debugPipelines+2)

	ea, _ := r.entities.Get(common.Handle(a))
	eb, _ := r.entities.Get(common.Handle(b))
	assert.Same(t, ea.pipeline, eb.pipeline)
	assert.Same(t, ea.mesh, eb.mesh)
	assert.NotSame(t, ea.modelView, eb.modelView)
}

func TestRenderer_UpdateEntityTransform(t *testing.T) {
	r, fb := newReadyRenderer(t)
	h, err := r.CreateEntity(model.MeshCube, shader.ShaderDefault, 4, 1, 2)
	require.NoError(t, err)
	e, _ := r.entities.Get(common.Handle(h))
	fb.writes = nil

	tr, err := common.NewTransform(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 45, 0}, mgl32.Vec3{2, 2, 2})
	require.NoError(t, err)
	require.NoError(t, r.UpdateEntityTransform(h, tr, 1))

	writes := fb.writesTo(e.modelView)
	require.Len(t, writes, 3)
	assert.Equal(t, uint64(ModelViewStride+modelOffset), writes[0].Offset)
	assert.Equal(t, tr.Matrix[:], decodeFloats(writes[0].Data))
	assert.Equal(t, uint64(ModelViewStride+inverseOffset), writes[1].Offset)
	inv, err := common.Invert(tr.Matrix)
	require.NoError(t, err)
	assert.Equal(t, inv[:], decodeFloats(writes[1].Data))
	assert.Equal(t, uint64(ModelViewStride+scaleOffset), writes[2].Offset)
	assert.Equal(t, []float32{2, 2, 2, 0}, decodeFloats(writes[2].Data))

	assert.ErrorIs(t, r.UpdateEntityTransform(h, tr, 2), ErrInstanceOutOfRange)
	assert.ErrorIs(t, r.UpdateEntityTransform(h, tr, -1), ErrInstanceOutOfRange)
}

func TestRenderer_SingularTransformKeepsInverse(t *testing.T) {
	r, fb := newReadyRenderer(t)
	h, err := r.CreateEntity(model.MeshCube, shader.ShaderDefault, 1, 1, 1)
	require.NoError(t, err)
	e, _ := r.entities.Get(common.Handle(h))
	fb.writes = nil

	flat := common.Transform{Matrix: common.Scale(common.Identity(), 1, 0, 1), Scale: mgl32.Vec3{1, 1, 1}}
	require.NoError(t, r.UpdateEntityTransform(h, flat, 0))

	writes := fb.writesTo(e.modelView)
	require.Len(t, writes, 2)
	assert.Equal(t, uint64(modelOffset), writes[0].Offset)
	assert.Equal(t, uint64(scaleOffset), writes[1].Offset)
}

func TestRenderer_UpdateEntityProperties(t *testing.T) {
	r, fb := newReadyRenderer(t)
	h, err := r.CreateEntity(model.MeshCube, shader.ShaderDefault, 4, 1, 1)
	require.NoError(t, err)
	e, _ := r.entities.Get(common.Handle(h))
	fb.writes = nil

	require.NoError(t, r.UpdateEntityProperties(h, []float32{0.3, 0.8, 0.3, 1}, nil))
	writes := fb.writesTo(e.params)
	require.Len(t, writes, 1)
	assert.Equal(t, 0, writes[0].Binding)
	assert.Equal(t, uint64(0), writes[0].Offset)
	assert.Equal(t, []float32{0.3, 0.8, 0.3, 1}, decodeFloats(writes[0].Data))

	// Capacity is rounded up to whole vec4s.
	require.NoError(t, r.UpdateEntityProperties(h, nil, []float32{0.5, 0.5}))
	assert.ErrorIs(t, r.UpdateEntityProperties(h, make([]float32, 5), nil), ErrPropertyOverflow)
	assert.ErrorIs(t, r.UpdateEntityProperties(h, nil, make([]float32, 5)), ErrPropertyOverflow)
}

func TestRenderer_RemoveEntity(t *testing.T) {
	r, fb := newReadyRenderer(t)
	a, err := r.CreateEntity(model.MeshCube, shader.ShaderDefault, 1, 1, 1)
	require.NoError(t, err)
	b, err := r.CreateEntity(model.MeshCube, shader.ShaderDefault, 1, 1, 1)
	require.NoError(t, err)
	ea, _ := r.entities.Get(common.Handle(a))
	mv, params := ea.modelView, ea.params

	require.NoError(t, r.RemoveEntity(a))
	assert.True(t, mv.Released())
	assert.True(t, params.Released())
	assert.False(t, r.ContainsEntity(a))
	assert.True(t, r.ContainsEntity(b))

	assert.ErrorIs(t, r.RemoveEntity(a), common.ErrStaleHandle)
	assert.ErrorIs(t, r.UpdateEntityTransform(a, common.IdentityTransform(), 0), common.ErrStaleHandle)
	assert.ErrorIs(t, r.UpdateEntityProperties(a, []float32{1}, nil), common.ErrStaleHandle)

	// A reused slot does not revive the old handle.
	c, err := r.CreateEntity(model.MeshCube, shader.ShaderDefault, 1, 1, 1)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.False(t, r.ContainsEntity(a))

	require.NoError(t, r.SubmitFrame(false, DebugLines{}))
	require.Len(t, fb.draws, 2)
	for _, d := range fb.draws {
		assert.NotSame(t, mv, d.bindGroups[1])
	}
}

func TestRenderer_SubmitFrameDrawsEveryEntity(t *testing.T) {
	r, fb := newReadyRenderer(t)
	h, err := r.CreateEntity(model.MeshHex, shader.ShaderDefault, 4, 1, 5)
	require.NoError(t, err)
	e, _ := r.entities.Get(common.Handle(h))

	require.NoError(t, r.SubmitFrame(false, DebugLines{}))
	require.Len(t, fb.draws, 1)
	d := fb.draws[0]
	assert.Equal(t, uint32(5), d.instances)
	assert.Same(t, e.mesh, d.mesh)
	require.Len(t, d.bindGroups, 3)
	assert.Same(t, r.scene, d.bindGroups[0])
	assert.Same(t, e.modelView, d.bindGroups[1])
	assert.Same(t, e.params, d.bindGroups[2])
	assert.Empty(t, fb.lineVertices)
	assert.Equal(t, 1, fb.polls)

	stats := r.Stats()
	assert.Equal(t, uint64(1), stats.Frames)
	assert.Equal(t, 1, stats.Entities)
	assert.False(t, stats.GPUTimeAvailable)
}

func TestRenderer_DebugLines(t *testing.T) {
	r, fb := newReadyRenderer(t)

	lines := DebugLines{
		Vertices: []float32{0, 0, 0, 1, 1, 1, 2, 2, 2},
		Colors:   []float32{1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1},
	}
	// Disabled overlay draws nothing.
	require.NoError(t, r.SubmitFrame(false, lines))
	assert.Empty(t, fb.lineVertices)

	require.NoError(t, r.SubmitFrame(true, lines))
	assert.Equal(t, []uint32{2}, fb.lineVertices)
	assert.Equal(t, 1, r.Stats().DebugSegments)
	pos := fb.writesTo(r.debugPositions)
	require.Len(t, pos, 1)
	assert.Len(t, pos[0].Data, 2*3*4)

}

func TestRenderer_DebugLinesTruncatedToBuffer(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r, fb := newReadyRenderer(t, WithLogger(zap.New(core).Sugar()))

	// The line buffers hold DebugLineVertexCapacity vertices.
	assert.Equal(t, uint64(DebugLineVertexCapacity*3*4), r.debugPositions.BufferSize(0))
	assert.Equal(t, uint64(DebugLineVertexCapacity*4*4), r.debugColors.BufferSize(0))

	over := DebugLines{
		Vertices: make([]float32, (DebugLineVertexCapacity+20)*3),
		Colors:   make([]float32, (DebugLineVertexCapacity+20)*4),
	}
	require.NoError(t, r.SubmitFrame(true, over))
	require.NoError(t, r.SubmitFrame(true, over))
	assert.Equal(t, []uint32{DebugLineVertexCapacity, DebugLineVertexCapacity}, fb.lineVertices)
	assert.Equal(t, DebugLineVertexCapacity/2, r.Stats().DebugSegments)
	assert.Equal(t, 1, logs.FilterMessage("debug lines truncated").Len())
}

func TestRenderer_TimestampReadbackIsSingleSlot(t *testing.T) {
	fb := newFakeBackend()
	fb.timestamps = true
	r := NewRenderer(nil, WithBackend(fb))
	require.NoError(t, r.Configure(800, 600))
	require.NoError(t, r.SetCamera(mgl32.Vec3{}, 0, 0, 0))

	require.NoError(t, r.SubmitFrame(false, DebugLines{}))
	require.Len(t, fb.readCallbacks, 1)

	// While the readback is outstanding no new timestamps are written.
	require.NoError(t, r.SubmitFrame(false, DebugLines{}))
	assert.Equal(t, []bool{true, false}, fb.beginFrames)
	assert.Equal(t, []bool{true, false}, fb.endFrames)
	assert.Len(t, fb.readCallbacks, 1)
	assert.False(t, r.Stats().GPUTimeAvailable)

	fb.readCallbacks[0](2*time.Millisecond, nil)
	require.NoError(t, r.SubmitFrame(false, DebugLines{}))
	assert.True(t, fb.beginFrames[2])
	stats := r.Stats()
	assert.True(t, stats.GPUTimeAvailable)
	assert.Equal(t, 2*time.Millisecond, stats.GPUTime)

	// A failed readback frees the slot without recording a sample.
	require.Len(t, fb.readCallbacks, 2)
	fb.readCallbacks[1](0, errors.New("device lost"))
	require.NoError(t, r.SubmitFrame(false, DebugLines{}))
	assert.True(t, fb.beginFrames[3])
	assert.Equal(t, 2*time.Millisecond, r.Stats().GPUTime)
}

func TestRenderer_TimestampsDisabled(t *testing.T) {
	fb := newFakeBackend()
	fb.timestamps = true
	r := NewRenderer(nil, WithBackend(fb), WithTimestamps(false))
	require.NoError(t, r.Configure(800, 600))
	require.NoError(t, r.SetCamera(mgl32.Vec3{}, 0, 0, 0))
	require.NoError(t, r.SubmitFrame(false, DebugLines{}))

	assert.Equal(t, []bool{false}, fb.beginFrames)
	assert.Empty(t, fb.readCallbacks)
}

func TestRenderer_Resize(t *testing.T) {
	r, fb := newReadyRenderer(t)
	h, err := r.CreateEntity(model.MeshCube, shader.ShaderDefault, 1, 1, 1)
	require.NoError(t, err)
	tr, err := common.NewTransform(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 45, 0}, mgl32.Vec3{1, 1, 1})
	require.NoError(t, err)
	require.NoError(t, r.UpdateEntityTransform(h, tr, 0))
	e, _ := r.entities.Get(common.Handle(h))
	mesh, modelView, params := e.mesh, e.modelView, e.params
	fb.writes = nil

	require.NoError(t, r.Resize(0, 600))
	require.NoError(t, r.Resize(1024, -1))
	assert.Len(t, fb.surfaceSizes, 1)

	require.NoError(t, r.Resize(1000, 500))
	assert.Equal(t, [2]int{1000, 500}, fb.surfaceSizes[1])
	assert.InDelta(t, 2.0, r.Camera().Aspect(), 1e-6)
	assert.Len(t, fb.writesTo(r.scene), 1)

	// Only the scene uniform changes; the entity keeps its buffers and mesh.
	assert.True(t, r.ContainsEntity(h))
	assert.Empty(t, fb.writesTo(modelView))
	assert.Empty(t, fb.writesTo(params))
	require.NoError(t, r.SubmitFrame(false, DebugLines{}))
	require.Len(t, fb.draws, 1)
	assert.Same(t, mesh, fb.draws[0].mesh)
	assert.Same(t, modelView, fb.draws[0].bindGroups[1])
	assert.Same(t, params, fb.draws[0].bindGroups[2])
}

func TestRenderer_ReleaseFreesEverything(t *testing.T) {
	r, fb := newReadyRenderer(t)
	h, err := r.CreateEntity(model.MeshCube, shader.ShaderDefault, 1, 1, 1)
	require.NoError(t, err)
	e, _ := r.entities.Get(common.Handle(h))
	mesh, mv := e.mesh, e.modelView

	r.Release()
	assert.True(t, mesh.Released())
	assert.True(t, mv.Released())
	assert.True(t, r.scene.Released())
	assert.True(t, r.debugPositions.Released())
	assert.Equal(t, 0, r.Stats().Entities)
	assert.False(t, r.ContainsEntity(h))
	assert.True(t, fb.backendFreed)
}

func TestRenderer_ClearColorOption(t *testing.T) {
	r := NewRenderer(nil).(*renderer)
	assert.Equal(t, DefaultClearColor, r.clearColor)

	r = NewRenderer(nil, WithClearColor([4]float64{0.1, 0.2, 0.3, 1})).(*renderer)
	assert.Equal(t, 0.1, r.clearColor.R)
	assert.Equal(t, 0.3, r.clearColor.B)
}
