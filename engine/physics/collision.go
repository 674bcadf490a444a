package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// pose is the world placement of a collider.
type pose struct {
	pos mgl32.Vec3
	rot mgl32.Quat
}

func (p pose) axes() [3]mgl32.Vec3 {
	m := p.rot.Mat4()
	return [3]mgl32.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
}

func (p pose) matrix() mgl32.Mat4 {
	return mgl32.Translate3D(p.pos[0], p.pos[1], p.pos[2]).Mul4(p.rot.Mat4())
}

// contact describes the overlap of shape a with shape b.
// normal points from b toward a; moving a along normal by depth separates the shapes.
type contact struct {
	normal mgl32.Vec3
	depth  float32
}

// collide returns the contact between two posed shapes, or false when they are apart.
func collide(sa Shape, pa pose, sb Shape, pb pose) (contact, bool) {
	switch a := sa.(type) {
	case Ball:
		switch b := sb.(type) {
		case Ball:
			return ballBall(a, pa, b, pb)
		case Cuboid:
			return ballCuboid(a, pa, b, pb)
		}
	case Cuboid:
		switch b := sb.(type) {
		case Ball:
			c, ok := ballCuboid(b, pb, a, pa)
			c.normal = c.normal.Mul(-1)
			return c, ok
		case Cuboid:
			return cuboidCuboid(a, pa, b, pb)
		}
	}
	return contact{}, false
}

func ballBall(a Ball, pa pose, b Ball, pb pose) (contact, bool) {
	d := pa.pos.Sub(pb.pos)
	dist := d.Len()
	depth := a.Radius + b.Radius - dist
	if depth < 0 {
		return contact{}, false
	}
	n := mgl32.Vec3{0, 1, 0}
	if dist > 1e-6 {
		n = d.Mul(1 / dist)
	}
	return contact{normal: n, depth: depth}, true
}

// ballCuboid finds the closest point of the box to the sphere center. A center inside the box is pushed out
// through the face of least penetration.
func ballCuboid(a Ball, pa pose, b Cuboid, pb pose) (contact, bool) {
	axes := pb.axes()
	rel := pa.pos.Sub(pb.pos)

	var local, clamped mgl32.Vec3
	inside := true
	for i := 0; i < 3; i++ {
		local[i] = rel.Dot(axes[i])
		clamped[i] = local[i]
		if clamped[i] > b.HalfExtents[i] {
			clamped[i] = b.HalfExtents[i]
			inside = false
		} else if clamped[i] < -b.HalfExtents[i] {
			clamped[i] = -b.HalfExtents[i]
			inside = false
		}
	}

	if inside {
		best := float32(math.MaxFloat32)
		var n mgl32.Vec3
		for i := 0; i < 3; i++ {
			pen := b.HalfExtents[i] - float32(math.Abs(float64(local[i])))
			if pen < best {
				best = pen
				n = axes[i]
				if local[i] < 0 {
					n = n.Mul(-1)
				}
			}
		}
		return contact{normal: n, depth: a.Radius + best}, true
	}

	closest := pb.pos
	for i := 0; i < 3; i++ {
		closest = closest.Add(axes[i].Mul(clamped[i]))
	}
	d := pa.pos.Sub(closest)
	dist := d.Len()
	if dist > a.Radius {
		return contact{}, false
	}
	n := mgl32.Vec3{0, 1, 0}
	if dist > 1e-6 {
		n = d.Mul(1 / dist)
	}
	return contact{normal: n, depth: a.Radius - dist}, true
}

// cuboidCuboid runs the separating axis test over the 15 candidate axes of two oriented boxes.
func cuboidCuboid(a Cuboid, pa pose, b Cuboid, pb pose) (contact, bool) {
	axesA := pa.axes()
	axesB := pb.axes()
	l := pb.pos.Sub(pa.pos)

	testAxes := make([]mgl32.Vec3, 0, 15)
	for i := 0; i < 3; i++ {
		testAxes = append(testAxes, axesA[i], axesB[i])
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := axesA[i].Cross(axesB[j])
			if cross.LenSqr() > 0.0001 {
				testAxes = append(testAxes, cross.Normalize())
			}
		}
	}

	minOverlap := float32(math.MaxFloat32)
	var normal mgl32.Vec3
	for _, axis := range testAxes {
		overlap := projectedRadius(axesA, a.HalfExtents, axis) + projectedRadius(axesB, b.HalfExtents, axis) -
			float32(math.Abs(float64(l.Dot(axis))))
		if overlap < 0 {
			return contact{}, false
		}
		if overlap < minOverlap {
			minOverlap = overlap
			normal = axis
		}
	}

	// Point the normal from b to a.
	if l.Dot(normal) > 0 {
		normal = normal.Mul(-1)
	}
	return contact{normal: normal, depth: minOverlap}, true
}

func projectedRadius(axes [3]mgl32.Vec3, halfExtents, axis mgl32.Vec3) float32 {
	var r float32
	for i := 0; i < 3; i++ {
		r += float32(math.Abs(float64(axes[i].Dot(axis)))) * halfExtents[i]
	}
	return r
}
