package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUSceneUniformSource is the canonical WGSL definition of the Scene struct.
// Matches GPUSceneUniform layout exactly (128 bytes).
//
//go:embed assets/scene_uniform.wgsl
var GPUSceneUniformSource string

// GPUSceneUniform is the GPU-aligned representation of the shared scene uniform buffer.
// Matches the WGSL Scene struct layout exactly (see GPUSceneUniformSource).
// Size: 128 bytes.
type GPUSceneUniform struct {
	ProjectionView [16]float32 // offset  0: projection * view (mat4x4<f32>)
	ViewInverse    [16]float32 // offset 64: inverse of the view matrix, camera to world (mat4x4<f32>)
}

// Size returns the size of the GPUSceneUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (128)
func (g *GPUSceneUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSceneUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSceneUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ProjectionView[i]))
	}
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.ViewInverse[i]))
	}
	return buf
}
