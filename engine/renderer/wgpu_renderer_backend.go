package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/DatBlindArcher/bin-thrower/engine/renderer/bind_group_provider"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/pipeline"
	"github.com/DatBlindArcher/bin-thrower/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

const (
	depthFormat = wgpu.TextureFormatDepth24Plus

	// timestampBytes holds the begin and end ticks of the main pass.
	timestampBytes = 2 * 8
)

// DefaultClearColor is the main pass background.
var DefaultClearColor = wgpu.Color{R: 0.2, G: 0.2, B: 0.2, A: 1.0}

// backendOptions selects adapter features and fixed frame settings of the wgpu backend.
type backendOptions struct {
	forceFallbackAdapter bool
	timestamps           bool
	clearColor           wgpu.Color
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	log    *zap.SugaredLogger
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat    wgpu.TextureFormat
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView
	presentMode      wgpu.PresentMode
	clearColor       wgpu.Color

	// layouts holds one shared bind group layout per BindGroupLayoutKind.
	layouts map[BindGroupLayoutKind]*wgpu.BindGroupLayout

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Timestamp state; querySet is nil when the adapter lacks timestamp queries.
	querySet        *wgpu.QuerySet
	resolveBuffer   *wgpu.Buffer
	readbackBuffer  *wgpu.Buffer
	readbackPending bool
	// frameTimestamps is set when the current frame writes main pass timestamps.
	frameTimestamps bool
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// timestampWriter is the part of *wgpu.CommandEncoder that records GPU timestamps.
type timestampWriter interface {
	WriteTimestamp(querySet *wgpu.QuerySet, queryIndex uint32) error
}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, opts backendOptions, log *zap.SugaredLogger) (RendererBackend, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		log:         log,
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		clearColor:  opts.clearColor,
		layouts:     make(map[BindGroupLayoutKind]*wgpu.BindGroupLayout),
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	var features []wgpu.FeatureName
	if opts.timestamps && a.HasFeature(wgpu.FeatureNameTimestampQuery) {
		features = append(features, wgpu.FeatureNameTimestampQuery)
	}

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "Main Device",
		RequiredFeatures: features,
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	if err := w.initLayouts(); err != nil {
		w.Release()
		return nil, err
	}
	if len(features) > 0 {
		if err := w.initTimestamps(); err != nil {
			log.Warnw("timestamp queries disabled", "error", err)
			w.releaseTimestamps()
		}
	}
	return w, nil
}

func (b *wgpuRendererBackendImpl) initLayouts() error {
	descriptors := map[BindGroupLayoutKind]wgpu.BindGroupLayoutDescriptor{
		LayoutScene: {
			Label: "Scene Layout",
			Entries: []wgpu.BindGroupLayoutEntry{{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			}},
		},
		LayoutModelView: {
			Label: "ModelView Layout",
			Entries: []wgpu.BindGroupLayoutEntry{{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage},
			}},
		},
		LayoutParams: {
			Label: "Params Layout",
			Entries: []wgpu.BindGroupLayoutEntry{
				{
					Binding:    0,
					Visibility: wgpu.ShaderStageFragment,
					Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
				},
				{
					Binding:    1,
					Visibility: wgpu.ShaderStageFragment,
					Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
				},
			},
		},
	}
	for kind, desc := range descriptors {
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return fmt.Errorf("bind group layout %q: %w", desc.Label, err)
		}
		b.layouts[kind] = layout
	}
	return nil
}

func (b *wgpuRendererBackendImpl) initTimestamps() error {
	qs, err := b.device.CreateQuerySet(&wgpu.QuerySetDescriptor{
		Label: "Main Pass Timestamps",
		Type:  wgpu.QueryTypeTimestamp,
		Count: 2,
	})
	if err != nil {
		return err
	}
	b.querySet = qs

	b.resolveBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Timestamp Resolve Buffer",
		Size:  timestampBytes,
		Usage: wgpu.BufferUsageQueryResolve | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return err
	}
	b.readbackBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Timestamp Readback Buffer",
		Size:  timestampBytes,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	return err
}

func (b *wgpuRendererBackendImpl) releaseTimestamps() {
	if b.readbackBuffer != nil {
		b.readbackBuffer.Release()
		b.readbackBuffer = nil
	}
	if b.resolveBuffer != nil {
		b.resolveBuffer.Release()
		b.resolveBuffer = nil
	}
	if b.querySet != nil {
		b.querySet.Release()
		b.querySet = nil
	}
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("surface reports no supported formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
	}
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("depth texture: %w", err)
	}
	view, err := depthTexture.CreateView(nil)
	if err != nil {
		depthTexture.Release()
		return fmt.Errorf("depth texture view: %w", err)
	}
	b.depthTexture = depthTexture
	b.depthTextureView = view
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) TimestampsSupported() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.querySet != nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline, layouts []BindGroupLayoutKind) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := p.Shader()
	if s == nil {
		return errors.New("a shader must be set to create a render pipeline")
	}
	module, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return fmt.Errorf("shader module %q: %w", s.Key(), err)
	}
	defer module.Release()

	bindGroupLayouts := make([]*wgpu.BindGroupLayout, len(layouts))
	for i, kind := range layouts {
		layout, ok := b.layouts[kind]
		if !ok {
			return fmt.Errorf("unknown bind group layout %d", kind)
		}
		bindGroupLayouts[i] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	depthCompare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: s.EntryPoint(shader.StageVertex),
			Buffers:    p.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: s.EntryPoint(shader.StageFragment),
			Targets: []wgpu.ColorTargetState{{
				Format:    b.surfaceFormat,
				WriteMask: p.WriteMask(),
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Vertex Buffer",
			Size:  uint64(len(vertexData)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitVertexBuffer(provider bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Vertex Buffer",
		Size:  provider.BufferSize(0),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	provider.SetBuffer(0, buf)
	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, kind BindGroupLayoutKind) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	layout, ok := b.layouts[kind]
	if !ok {
		return fmt.Errorf("unknown bind group layout %d", kind)
	}

	usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	bindings := []int{0}
	switch kind {
	case LayoutModelView:
		usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	case LayoutParams:
		bindings = []int{0, 1}
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(bindings))
	for _, binding := range bindings {
		buf := provider.Buffer(binding)
		if buf == nil {
			size := provider.BufferSize(binding)
			if size == 0 {
				return fmt.Errorf("%s binding %d has no buffer size", provider.Label(), binding)
			}
			var err error
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: provider.Label() + " Buffer",
				Size:  size,
				Usage: usage,
			})
			if err != nil {
				return err
			}
			provider.SetBuffer(binding, buf)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(binding),
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) ReleaseProvider(provider bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()
	provider.Release()
}

func (b *wgpuRendererBackendImpl) BeginFrame(timestamps bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	desc := &wgpu.RenderPassDescriptor{
		Label: "Main Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: b.clearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	}
	// Query 0 is written before the main pass begins and query 1 after it ends.
	b.frameTimestamps = b.mainPassTimestamps(timestamps)
	b.writeTimestamp(encoder, 0)

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(desc)
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.SetPipeline(p.RenderPipeline())
	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(meshProvider.IndexCount()), instanceCount, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndMainPass() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endMainPass()
}

func (b *wgpuRendererBackendImpl) endMainPass() {
	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil
	b.writeTimestamp(b.frameEncoder, 1)
}

// mainPassTimestamps reports whether a frame may write timestamps: they must be requested and supported, and the
// readback buffer must not be mapped by an earlier frame.
func (b *wgpuRendererBackendImpl) mainPassTimestamps(requested bool) bool {
	return requested && b.querySet != nil && !b.readbackPending
}

func (b *wgpuRendererBackendImpl) writeTimestamp(enc timestampWriter, index uint32) {
	if !b.frameTimestamps {
		return
	}
	if err := enc.WriteTimestamp(b.querySet, index); err != nil {
		b.log.Debugw("timestamp write failed", "query", index, "error", err)
		b.frameTimestamps = false
	}
}

func (b *wgpuRendererBackendImpl) DrawLines(
	p pipeline.Pipeline,
	vertexBuffers []bind_group_provider.BindGroupProvider,
	vertexCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return
	}
	pass := b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Debug Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    b.frameView,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:         b.depthTextureView,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpDiscard,
		},
	})
	pass.SetPipeline(p.RenderPipeline())
	for i, bg := range bindGroups {
		pass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	for i, vb := range vertexBuffers {
		pass.SetVertexBuffer(uint32(i), vb.Buffer(0), 0, wgpu.WholeSize)
	}
	pass.Draw(vertexCount, 1, 0, 0)
	pass.End()
	pass.Release()
}

func (b *wgpuRendererBackendImpl) EndFrame(resolveTimestamps bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errors.New("no frame in progress")
	}
	b.endMainPass()

	if resolveTimestamps && b.frameTimestamps {
		b.frameEncoder.ResolveQuerySet(b.querySet, 0, 2, b.resolveBuffer, 0)
		b.frameEncoder.CopyBufferToBuffer(b.resolveBuffer, 0, b.readbackBuffer, 0, timestampBytes)
	}
	b.frameTimestamps = false

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameSurface = nil
		b.frameView = nil
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) ReadTimestamps(callback TimestampCallback) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.readbackBuffer == nil {
		callback(0, errors.New("timestamp queries unavailable"))
		return
	}
	if b.readbackPending {
		callback(0, errors.New("timestamp readback already in flight"))
		return
	}
	b.readbackPending = true

	buf := b.readbackBuffer
	buf.MapAsync(wgpu.MapModeRead, 0, timestampBytes, func(status wgpu.BufferMapAsyncStatus) {
		// Runs inside Poll, which holds b.mu.
		b.readbackPending = false
		if status != wgpu.BufferMapAsyncStatusSuccess {
			callback(0, fmt.Errorf("map timestamp buffer: status %d", status))
			return
		}
		data := buf.GetMappedRange(0, timestampBytes)
		begin := binary.LittleEndian.Uint64(data[0:8])
		end := binary.LittleEndian.Uint64(data[8:16])
		buf.Unmap()
		if end < begin {
			callback(0, fmt.Errorf("timestamps out of order: %d > %d", begin, end))
			return
		}
		callback(time.Duration(end-begin), nil)
	})
}

func (b *wgpuRendererBackendImpl) Poll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.device.Poll(false, nil)
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseTimestamps()
	for kind, layout := range b.layouts {
		layout.Release()
		delete(b.layouts, kind)
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
		b.depthTextureView = nil
		b.depthTexture = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
