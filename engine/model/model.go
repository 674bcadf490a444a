package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/DatBlindArcher/bin-thrower/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrTooFewSides is returned by PolygonPrism for side counts below 3.
var ErrTooFewSides = errors.New("polygon prism needs at least 3 sides")

// Mesh is an indexed triangle list. Vertices holds packed xyz positions; Indices holds three entries per triangle.
// A Mesh is treated as immutable once registered: the helper methods return new meshes.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// cubeVertices are the 8 corners of the cube spanning [-1, 1] on every axis.
var cubeVertices = []float32{
	-1, -1, -1,
	1, -1, -1,
	1, 1, -1,
	-1, 1, -1,
	-1, -1, 1,
	1, -1, 1,
	1, 1, 1,
	-1, 1, 1,
}

// cubeIndices wind every face so that it is culled by a front-face culling pipeline when seen from outside.
var cubeIndices = []uint32{
	0, 1, 3, 3, 1, 2,
	1, 5, 2, 2, 5, 6,
	5, 4, 6, 6, 4, 7,
	4, 0, 7, 7, 0, 3,
	3, 2, 7, 7, 2, 6,
	4, 5, 0, 0, 5, 1,
}

// Cube returns the 8-vertex, 36-index cube centered at the origin with corners at +/-1.
//
// Returns:
//   - Mesh: a fresh copy of the cube mesh
func Cube() Mesh {
	return Mesh{
		Vertices: append([]float32(nil), cubeVertices...),
		Indices:  append([]uint32(nil), cubeIndices...),
	}
}

// PolygonPrism generates an N-sided prism of height 1 whose rims lie on a circle of radius 0.5.
// Vertex 0 is the top cap center, vertex 1 the bottom cap center, followed by N top rim vertices (y = 0.5)
// and N bottom rim vertices (y = -0.5). Each side segment contributes four triangles: top cap wedge, two side
// triangles and bottom cap wedge, wound the same way as Cube.
//
// Parameters:
//   - sides: the number of sides, at least 3
//
// Returns:
//   - Mesh: a mesh with 2*sides+2 vertices and 12*sides indices
//   - error: ErrTooFewSides if sides < 3
func PolygonPrism(sides int) (Mesh, error) {
	if sides < 3 {
		return Mesh{}, fmt.Errorf("sides = %d: %w", sides, ErrTooFewSides)
	}
	c := uint32(sides)
	step := 360.0 / float64(sides)

	v := make([]float32, 3*(2*sides+2))
	v[1] = 0.5
	v[4] = -0.5
	for s := 0; s < sides; s++ {
		r := float64(mgl32.DegToRad(float32(float64(s) * step)))
		x := float32(math.Cos(r) / 2)
		z := float32(math.Sin(r) / 2)

		top := 6 + s*3
		v[top], v[top+1], v[top+2] = x, 0.5, z
		bottom := 6 + sides*3 + s*3
		v[bottom], v[bottom+1], v[bottom+2] = x, -0.5, z
	}

	idx := make([]uint32, 0, 12*sides)
	for s := uint32(0); s < c; s++ {
		s2 := (s + 1) % c
		idx = append(idx,
			0, 2+s, 2+s2, // top cap
			2+c+s2, 2+s2, 2+s, // top side
			2+s, 2+c+s, 2+c+s2, // bottom side
			1, 2+c+s2, 2+c+s, // bottom cap
		)
	}
	return Mesh{Vertices: v, Indices: idx}, nil
}

// VertexCount returns the number of xyz vertices in the mesh.
func (m Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// IndexCount returns the number of indices in the mesh.
func (m Mesh) IndexCount() int {
	return len(m.Indices)
}

// Vertex returns the position of vertex i.
func (m Mesh) Vertex(i uint32) mgl32.Vec3 {
	return mgl32.Vec3{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
}

// Scaled returns a copy of the mesh with every vertex multiplied component-wise by (sx, sy, sz).
func (m Mesh) Scaled(sx, sy, sz float32) Mesh {
	v := make([]float32, len(m.Vertices))
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		v[i] = m.Vertices[i] * sx
		v[i+1] = m.Vertices[i+1] * sy
		v[i+2] = m.Vertices[i+2] * sz
	}
	return Mesh{Vertices: v, Indices: append([]uint32(nil), m.Indices...)}
}

// Wireframe returns the triangle edges of the mesh as a line list (a-b, b-c, c-a per triangle),
// with every endpoint transformed by model.
//
// Parameters:
//   - model: transform applied to every endpoint
//
// Returns:
//   - []float32: packed xyz endpoints, two per line segment
func (m Mesh) Wireframe(model mgl32.Mat4) []float32 {
	out := make([]float32, 0, len(m.Indices)*6)
	push := func(i uint32) {
		p := model.Mul4x1(m.Vertex(i).Vec4(1))
		out = append(out, p[0], p[1], p[2])
	}
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		push(a)
		push(b)
		push(b)
		push(c)
		push(c)
		push(a)
	}
	return out
}

// VertexBytes returns the vertex positions as a little-endian byte slice for GPU upload.
func (m Mesh) VertexBytes() []byte {
	buf := make([]byte, 0, len(m.Vertices)*4)
	for i := 0; i < m.VertexCount(); i++ {
		v := GPUVertex{Position: [3]float32(m.Vertex(uint32(i)))}
		buf = append(buf, v.Marshal()...)
	}
	return buf
}

// IndexBytes returns the indices as a little-endian uint32 byte slice for GPU upload.
func (m Mesh) IndexBytes() []byte {
	return append([]byte(nil), common.SliceToBytes(m.Indices)...)
}
