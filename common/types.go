// package common contains the math, handle and key code helpers shared by every part of the game. They are plain values and functions,
// not interface-wrapped structs.
package common

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNonPositiveScale is returned by NewTransform when any scale component is zero or negative.
var ErrNonPositiveScale = errors.New("scale components must be positive")

// Transform is a model matrix plus the scale vector it was built with.
// The renderer uploads the scale separately from the matrix so shaders can correct normals for non-uniform scale.
type Transform struct {
	// Matrix is the column-major model matrix: translate, then rotate about X, Y and Z, then scale.
	Matrix mgl32.Mat4
	// Scale is the per-axis scale applied last when building Matrix. Every component is positive.
	Scale mgl32.Vec3
}

// NewTransform builds a Transform from a position, Euler rotation in degrees and scale.
// The rotation is rebuilt from the angles on every call; nothing is accumulated between calls.
//
// Parameters:
//   - pos: translation in world space
//   - rotDeg: rotation about the X, Y and Z axes in degrees, applied in that order
//   - scale: scale factors along each axis, all strictly positive
//
// Returns:
//   - Transform: the composed transform
//   - error: ErrNonPositiveScale if any scale component is <= 0
func NewTransform(pos, rotDeg, scale mgl32.Vec3) (Transform, error) {
	for i, s := range scale {
		if s <= 0 {
			return Transform{}, fmt.Errorf("scale[%d] = %v: %w", i, s, ErrNonPositiveScale)
		}
	}

	m := Identity()
	Translate(&m, pos[0], pos[1], pos[2])
	Rotate(&m, mgl32.Vec3{1, 0, 0}, rotDeg[0])
	Rotate(&m, mgl32.Vec3{0, 1, 0}, rotDeg[1])
	Rotate(&m, mgl32.Vec3{0, 0, 1}, rotDeg[2])

	return Transform{
		Matrix: Scale(m, scale[0], scale[1], scale[2]),
		Scale:  scale,
	}, nil
}

// NewTransformQuat builds a transform from a position, an orientation quaternion and a scale.
// The matrix is translate * rotation * scale, so the orientation is applied exactly as given.
func NewTransformQuat(pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) (Transform, error) {
	for i, s := range scale {
		if s <= 0 {
			return Transform{}, fmt.Errorf("scale[%d] = %v: %w", i, s, ErrNonPositiveScale)
		}
	}
	if rot.Len() == 0 {
		rot = mgl32.QuatIdent()
	}

	m := Identity()
	Translate(&m, pos[0], pos[1], pos[2])
	m = Mul4(m, rot.Normalize().Mat4())

	return Transform{
		Matrix: Scale(m, scale[0], scale[1], scale[2]),
		Scale:  scale,
	}, nil
}

// IdentityTransform returns a Transform with the identity matrix and unit scale.
func IdentityTransform() Transform {
	return Transform{Matrix: Identity(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Position returns the translation column of the transform matrix.
func (t Transform) Position() mgl32.Vec3 {
	return mgl32.Vec3{t.Matrix[12], t.Matrix[13], t.Matrix[14]}
}
