package renderer

import (
	"encoding/binary"
	"math"
	"time"
	"unsafe"

	"github.com/DatBlindArcher/bin-thrower/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ModelViewStride is the byte size of one instance record in an entity's model-view storage buffer.
	ModelViewStride = 144

	modelOffset   = 0
	inverseOffset = 64
	scaleOffset   = 128

	// DebugLineVertexCapacity is the number of line vertices the debug overlay can draw per frame,
	// two per segment. Extra segments are dropped.
	DebugLineVertexCapacity = 1024

	debugPositionStride = 3 * 4
	debugColorStride    = 4 * 4
)

// GPUModelView is the GPU-aligned per-instance record read by the vertex stage.
// Matches the WGSL ModelView struct layout exactly. Size: 144 bytes.
type GPUModelView struct {
	Model        [16]float32 // offset   0: model matrix (mat4x4<f32>)
	ModelInverse [16]float32 // offset  64: inverse model matrix (mat4x4<f32>)
	Scale        [4]float32  // offset 128: scale xyz, w = 0 (vec4<f32>)
}

// Size returns the size of the GPUModelView struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g *GPUModelView) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelView struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUModelView) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf[modelOffset:], g.Model[:])
	putFloats(buf[inverseOffset:], g.ModelInverse[:])
	putFloats(buf[scaleOffset:], g.Scale[:])
	return buf
}

func putFloats(dst []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

func floatBytes(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	putFloats(buf, values)
	return buf
}

func matBytes(m mgl32.Mat4) []byte {
	return floatBytes(m[:])
}

// align16 rounds n up to a multiple of 16, the uniform buffer binding granularity.
func align16(n uint64) uint64 {
	return (n + 15) &^ 15
}

// DebugLines is a line-list overlay: every two vertices form one segment.
type DebugLines struct {
	// Vertices holds xyz per vertex.
	Vertices []float32
	// Colors holds rgba per vertex.
	Colors []float32
}

// VertexCount returns the number of complete vertices, limited by both arrays and rounded down to whole segments.
func (d DebugLines) VertexCount() int {
	n := len(d.Vertices) / 3
	if c := len(d.Colors) / 4; c < n {
		n = c
	}
	return n &^ 1
}

// FrameStats holds rolling render timings.
type FrameStats struct {
	// RenderTime is the CPU time spent recording and submitting a frame.
	RenderTime time.Duration
	// GPUTime is the GPU duration of the main pass, measured with timestamp queries.
	GPUTime time.Duration
	// GPUTimeAvailable is false until the first timestamp readback completes or when the adapter lacks timestamp queries.
	GPUTimeAvailable bool
	// Entities is the number of live render entities.
	Entities int
	// DebugSegments is the number of debug line segments drawn in the last frame.
	DebugSegments int
	// Frames is the number of frames submitted.
	Frames uint64
}

// meshVertexLayout is the vertex buffer layout shared by every mesh pipeline: one float32x3 position.
var meshVertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: model.GPUVertexStride,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
	},
}

// debugVertexLayouts are the two vertex buffers of the debug pipeline: positions then colors.
var debugVertexLayouts = []wgpu.VertexBufferLayout{
	{
		ArrayStride: debugPositionStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		},
	},
	{
		ArrayStride: debugColorStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 1},
		},
	},
}
