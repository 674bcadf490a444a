package physics

import (
	"math"

	"github.com/DatBlindArcher/bin-thrower/common"
	"github.com/DatBlindArcher/bin-thrower/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Debug line colors per collider kind.
var (
	debugColorFixed   = [4]float32{0.6, 0.6, 1, 1}
	debugColorDynamic = [4]float32{1, 0.6, 0.2, 1}
)

// ballDebugSegments is the number of segments used for each great circle of a ball.
const ballDebugSegments = 16

var debugCube = model.Cube()

func (w *world) DebugLines() DebugRenderBuffers {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out DebugRenderBuffers
	w.colliders.Each(func(_ common.Handle, c *collider) {
		color := debugColorFixed
		if w.isDynamic(c) {
			color = debugColorDynamic
		}
		p := w.worldPose(c)

		var verts []float32
		switch s := c.shape.(type) {
		case Cuboid:
			// The unit cube spans [-1, 1], so scaling by the half extents gives the box.
			m := p.matrix().Mul4(mgl32.Scale3D(s.HalfExtents[0], s.HalfExtents[1], s.HalfExtents[2]))
			verts = debugCube.Wireframe(m)
		case Ball:
			verts = ballWireframe(p, s.Radius)
		}
		out.Vertices = append(out.Vertices, verts...)
		for i := 0; i < len(verts)/3; i++ {
			out.Colors = append(out.Colors, color[:]...)
		}
	})
	return out
}

// ballWireframe draws three great circles around the ball center, one per local axis plane.
func ballWireframe(p pose, radius float32) []float32 {
	axes := p.axes()
	planes := [3][2]int{{0, 1}, {0, 2}, {1, 2}}
	out := make([]float32, 0, 3*ballDebugSegments*2*3)
	point := func(u, v mgl32.Vec3, k int) mgl32.Vec3 {
		a := 2 * math.Pi * float64(k) / ballDebugSegments
		return p.pos.Add(u.Mul(radius * float32(math.Cos(a)))).Add(v.Mul(radius * float32(math.Sin(a))))
	}
	for _, pl := range planes {
		u, v := axes[pl[0]], axes[pl[1]]
		for k := 0; k < ballDebugSegments; k++ {
			a, b := point(u, v, k), point(u, v, k+1)
			out = append(out, a[0], a[1], a[2], b[0], b[1], b[2])
		}
	}
	return out
}
