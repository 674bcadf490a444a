package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertInwardWinding checks that every triangle's normal points toward the mesh center,
// which is the orientation a front-face culling pipeline needs to show the outside.
func assertInwardWinding(t *testing.T, m Mesh) {
	t.Helper()
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Vertex(m.Indices[i]), m.Vertex(m.Indices[i+1]), m.Vertex(m.Indices[i+2])
		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Mul(1.0 / 3.0)
		assert.Lessf(t, n.Dot(centroid), float32(0), "triangle %d (%d,%d,%d)", i/3, m.Indices[i], m.Indices[i+1], m.Indices[i+2])
	}
}

// assertClosed checks that every edge is shared by exactly two triangles in opposite directions.
func assertClosed(t *testing.T, m Mesh) {
	t.Helper()
	type edge struct{ a, b uint32 }
	edges := map[edge]int{}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		tri := [3]uint32{m.Indices[i], m.Indices[i+1], m.Indices[i+2]}
		for k := 0; k < 3; k++ {
			edges[edge{tri[k], tri[(k+1)%3]}]++
		}
	}
	for e, n := range edges {
		assert.Equalf(t, 1, n, "directed edge %v", e)
		assert.Equalf(t, 1, edges[edge{e.b, e.a}], "edge %v has no opposite", e)
	}
}

func TestCube(t *testing.T) {
	c := Cube()
	assert.Equal(t, 8, c.VertexCount())
	assert.Equal(t, 36, c.IndexCount())
	for _, v := range c.Vertices {
		assert.Equal(t, float32(1), float32(math.Abs(float64(v))))
	}
	assert.Equal(t, []uint32{0, 1, 3, 3, 1, 2}, c.Indices[:6])
	assertInwardWinding(t, c)
	assertClosed(t, c)

	// Cube returns a copy.
	c.Vertices[0] = 42
	assert.Equal(t, float32(-1), Cube().Vertices[0])
}

func TestPolygonPrism(t *testing.T) {
	for n := 3; n <= 12; n++ {
		m, err := PolygonPrism(n)
		require.NoError(t, err)

		assert.Len(t, m.Vertices, 3*(2*n+2), "n=%d", n)
		assert.Len(t, m.Indices, 12*n, "n=%d", n)
		for _, idx := range m.Indices {
			assert.Less(t, idx, uint32(2*n+2))
		}
		assertInwardWinding(t, m)
		assertClosed(t, m)

		for i := 2; i < 2*n+2; i++ {
			v := m.Vertex(uint32(i))
			assert.InDelta(t, 0.5, math.Hypot(float64(v[0]), float64(v[2])), 1e-6)
			assert.Equal(t, float32(0.5), float32(math.Abs(float64(v[1]))))
		}
	}
}

func TestPolygonPrism_TooFewSides(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 2} {
		_, err := PolygonPrism(n)
		assert.ErrorIs(t, err, ErrTooFewSides)
	}
}

func TestMesh_Scaled(t *testing.T) {
	c := Cube()
	s := c.Scaled(2, 3, 4)
	assert.Equal(t, mgl32.Vec3{-2, -3, -4}, s.Vertex(0))
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, c.Vertex(0))
	assert.Equal(t, c.Indices, s.Indices)
}

func TestMesh_Wireframe(t *testing.T) {
	c := Cube()
	lines := c.Wireframe(mgl32.Translate3D(0, 10, 0))
	// 12 triangles, 3 segments each, 2 endpoints of 3 floats.
	assert.Len(t, lines, 12*3*2*3)
	assert.Equal(t, []float32{-1, 9, -1, 1, 9, -1}, lines[:6])
}

func TestMesh_Bytes(t *testing.T) {
	c := Cube()
	vb := c.VertexBytes()
	require.Len(t, vb, 8*GPUVertexStride)
	assert.Equal(t, float32(-1), math.Float32frombits(binary.LittleEndian.Uint32(vb[0:4])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(vb[12:16])))

	ib := c.IndexBytes()
	require.Len(t, ib, 36*4)
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(ib[8:12]))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{MeshCube, MeshHex}, r.Names())

	hex, err := r.Get(MeshHex)
	require.NoError(t, err)
	assert.Equal(t, 14, hex.VertexCount())

	_, err = r.Get("sphere")
	assert.ErrorIs(t, err, ErrUnknownMesh)

	assert.ErrorIs(t, r.Register(MeshCube, Cube()), ErrDuplicateMesh)

	tri, err := PolygonPrism(3)
	require.NoError(t, err)
	require.NoError(t, r.Register("tri", tri))
	assert.Equal(t, []string{MeshCube, MeshHex, "tri"}, r.Names())
}

func TestRegistry_Options(t *testing.T) {
	tri, err := PolygonPrism(3)
	require.NoError(t, err)
	r := NewRegistry(WithoutBuiltins(), WithMesh("tri", tri))
	assert.Equal(t, []string{"tri"}, r.Names())
}
