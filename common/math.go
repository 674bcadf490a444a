package common

import (
	"errors"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrSingular is returned by Invert when the determinant of the matrix is exactly zero.
var ErrSingular = errors.New("matrix is singular")

// normalizeEpsilon is the magnitude under which Normalize returns the zero vector.
const normalizeEpsilon = 0.00001

// Identity returns a fresh 4x4 identity matrix.
// All matrices in this package are stored in column-major order.
//
// Returns:
//   - mgl32.Mat4: the identity matrix
func Identity() mgl32.Mat4 {
	return mgl32.Ident4()
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mul4 multiplies two 4x4 matrices.
// Result: a * b
//
// Parameters:
//   - a: left-hand matrix
//   - b: right-hand matrix
//
// Returns:
//   - mgl32.Mat4: the product a * b
func Mul4(a, b mgl32.Mat4) mgl32.Mat4 {
	return a.Mul4(b)
}

// Perspective creates a perspective projection matrix for the WebGPU clip space depth range [0, 1].
// Passing +Inf as far produces the infinite far plane form.
//
// Parameters:
//   - fovDeg: vertical field of view in degrees
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near, or +Inf)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovDeg, aspect, near, far float32) mgl32.Mat4 {
	fov := float64(mgl32.DegToRad(fovDeg))
	f := float32(math.Tan(math.Pi/2 - 0.5*fov))

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[11] = -1
	if math.IsInf(float64(far), 1) {
		out[10] = -1
		out[14] = -near
	} else {
		rangeInv := 1 / (near - far)
		out[10] = far * rangeInv
		out[14] = far * near * rangeInv
	}
	return out
}

// Orthographic creates an orthographic projection matrix for the WebGPU clip space depth range [0, 1].
//
// Parameters:
//   - left, right: horizontal extents of the view volume
//   - bottom, top: vertical extents of the view volume
//   - near, far: depth extents of the view volume
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Orthographic(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	var out mgl32.Mat4
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 1 / (near - far)
	out[12] = (right + left) / (left - right)
	out[13] = (top + bottom) / (bottom - top)
	out[14] = near / (near - far)
	out[15] = 1
	return out
}

// Translate post-multiplies m by a translation, mutating m in place (m = m * T).
//
// Parameters:
//   - m: matrix to modify
//   - x, y, z: translation along each axis
func Translate(m *mgl32.Mat4, x, y, z float32) {
	*m = m.Mul4(mgl32.Translate3D(x, y, z))
}

// Rotate post-multiplies m by an angle-axis rotation built with Rodrigues' formula, mutating m in place (m = m * R).
// The axis is normalized first; a zero axis leaves m unchanged.
//
// Parameters:
//   - m: matrix to modify
//   - axis: rotation axis
//   - angleDeg: rotation angle in degrees
func Rotate(m *mgl32.Mat4, axis mgl32.Vec3, angleDeg float32) {
	axis = Normalize(axis)
	if axis == (mgl32.Vec3{}) {
		return
	}
	x, y, z := axis[0], axis[1], axis[2]
	rad := float64(mgl32.DegToRad(angleDeg))
	c := float32(math.Cos(rad))
	s := float32(math.Sin(rad))
	t := 1 - c

	r := mgl32.Ident4()
	r[0] = t*x*x + c
	r[1] = t*x*y + s*z
	r[2] = t*x*z - s*y
	r[4] = t*x*y - s*z
	r[5] = t*y*y + c
	r[6] = t*y*z + s*x
	r[8] = t*x*z + s*y
	r[9] = t*y*z - s*x
	r[10] = t*z*z + c

	*m = m.Mul4(r)
}

// Scale returns m post-multiplied by a non-uniform scale.
//
// Parameters:
//   - m: source matrix
//   - x, y, z: scale factors along each axis
//
// Returns:
//   - mgl32.Mat4: m * S
func Scale(m mgl32.Mat4, x, y, z float32) mgl32.Mat4 {
	return m.Mul4(mgl32.Scale3D(x, y, z))
}

// Determinant returns the determinant of a 4x4 matrix.
func Determinant(m mgl32.Mat4) float32 {
	s, c := subDeterminants(m)
	return s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
}

// subDeterminants returns the 2x2 sub-determinants of the upper and lower row pairs used by the Laplace expansion.
func subDeterminants(m mgl32.Mat4) (s, c [6]float32) {
	s[0] = m[0]*m[5] - m[4]*m[1]
	s[1] = m[0]*m[6] - m[4]*m[2]
	s[2] = m[0]*m[7] - m[4]*m[3]
	s[3] = m[1]*m[6] - m[5]*m[2]
	s[4] = m[1]*m[7] - m[5]*m[3]
	s[5] = m[2]*m[7] - m[6]*m[3]

	c[5] = m[10]*m[15] - m[14]*m[11]
	c[4] = m[9]*m[15] - m[13]*m[11]
	c[3] = m[9]*m[14] - m[13]*m[10]
	c[2] = m[8]*m[15] - m[12]*m[11]
	c[1] = m[8]*m[14] - m[12]*m[10]
	c[0] = m[8]*m[13] - m[12]*m[9]
	return s, c
}

// Invert computes the inverse of a 4x4 matrix using the cofactor (adjugate) method.
//
// Parameters:
//   - m: source matrix
//
// Returns:
//   - mgl32.Mat4: the inverse of m, or the zero matrix when m is singular
//   - error: ErrSingular if the determinant is exactly zero
func Invert(m mgl32.Mat4) (mgl32.Mat4, error) {
	s, c := subDeterminants(m)
	det := s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
	if det == 0 {
		return mgl32.Mat4{}, ErrSingular
	}
	inv := 1 / det

	var out mgl32.Mat4
	out[0] = (m[5]*c[5] - m[6]*c[4] + m[7]*c[3]) * inv
	out[1] = (-m[1]*c[5] + m[2]*c[4] - m[3]*c[3]) * inv
	out[2] = (m[13]*s[5] - m[14]*s[4] + m[15]*s[3]) * inv
	out[3] = (-m[9]*s[5] + m[10]*s[4] - m[11]*s[3]) * inv

	out[4] = (-m[4]*c[5] + m[6]*c[2] - m[7]*c[1]) * inv
	out[5] = (m[0]*c[5] - m[2]*c[2] + m[3]*c[1]) * inv
	out[6] = (-m[12]*s[5] + m[14]*s[2] - m[15]*s[1]) * inv
	out[7] = (m[8]*s[5] - m[10]*s[2] + m[11]*s[1]) * inv

	out[8] = (m[4]*c[4] - m[5]*c[2] + m[7]*c[0]) * inv
	out[9] = (-m[0]*c[4] + m[1]*c[2] - m[3]*c[0]) * inv
	out[10] = (m[12]*s[4] - m[13]*s[2] + m[15]*s[0]) * inv
	out[11] = (-m[8]*s[4] + m[9]*s[2] - m[11]*s[0]) * inv

	out[12] = (-m[4]*c[3] + m[5]*c[1] - m[6]*c[0]) * inv
	out[13] = (m[0]*c[3] - m[1]*c[1] + m[2]*c[0]) * inv
	out[14] = (-m[12]*s[3] + m[13]*s[1] - m[14]*s[0]) * inv
	out[15] = (m[8]*s[3] - m[9]*s[1] + m[10]*s[0]) * inv
	return out, nil
}

// InvertInPlace replaces dst with its inverse. When dst is singular it is left untouched and ErrSingular is returned.
//
// Parameters:
//   - dst: matrix to invert
//
// Returns:
//   - error: ErrSingular if the determinant is exactly zero
func InvertInPlace(dst *mgl32.Mat4) error {
	inv, err := Invert(*dst)
	if err != nil {
		return err
	}
	*dst = inv
	return nil
}

// Cross returns the cross product a x b.
func Cross(a, b mgl32.Vec3) mgl32.Vec3 {
	return a.Cross(b)
}

// Dot returns the dot product of a and b.
func Dot(a, b mgl32.Vec3) float32 {
	return a.Dot(b)
}

// Normalize returns v scaled to unit length, or the zero vector when the magnitude of v is below 1e-5.
func Normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < normalizeEpsilon {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// Project returns the projection of a onto b. A zero b yields the zero vector.
func Project(a, b mgl32.Vec3) mgl32.Vec3 {
	ll := b.Dot(b)
	if ll == 0 {
		return mgl32.Vec3{}
	}
	return b.Mul(a.Dot(b) / ll)
}

// ProjectOnPlane removes the component of v along the unit plane normal n.
func ProjectOnPlane(v, n mgl32.Vec3) mgl32.Vec3 {
	return v.Sub(n.Mul(v.Dot(n)))
}

// EulerToQuat converts Euler angles in degrees to a quaternion using the Z * Y * X composition
// (x is roll about X, y is pitch about Y, z is yaw about Z).
//
// Parameters:
//   - xDeg, yDeg, zDeg: rotation about each axis in degrees
//
// Returns:
//   - mgl32.Quat: the unit quaternion
func EulerToQuat(xDeg, yDeg, zDeg float32) mgl32.Quat {
	hx := float64(mgl32.DegToRad(xDeg)) * 0.5
	hy := float64(mgl32.DegToRad(yDeg)) * 0.5
	hz := float64(mgl32.DegToRad(zDeg)) * 0.5
	cr, sr := math.Cos(hx), math.Sin(hx)
	cp, sp := math.Cos(hy), math.Sin(hy)
	cy, sy := math.Cos(hz), math.Sin(hz)

	return mgl32.Quat{
		W: float32(cr*cp*cy + sr*sp*sy),
		V: mgl32.Vec3{
			float32(sr*cp*cy - cr*sp*sy),
			float32(cr*sp*cy + sr*cp*sy),
			float32(cr*cp*sy - sr*sp*cy),
		},
	}
}

// QuatToEuler converts a unit quaternion back to Euler angles in degrees, inverting EulerToQuat.
// Results are ambiguous when the Y angle approaches +/-90 degrees.
//
// Parameters:
//   - q: unit quaternion
//
// Returns:
//   - mgl32.Vec3: rotation about X, Y and Z in degrees
func QuatToEuler(q mgl32.Quat) mgl32.Vec3 {
	w, x, y, z := float64(q.W), float64(q.V[0]), float64(q.V[1]), float64(q.V[2])

	roll := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	sinp := 2 * (w*y - z*x)
	sinp = math.Max(-1, math.Min(1, sinp))
	pitch := math.Asin(sinp)
	yaw := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))

	return mgl32.Vec3{
		mgl32.RadToDeg(float32(roll)),
		mgl32.RadToDeg(float32(pitch)),
		mgl32.RadToDeg(float32(yaw)),
	}
}

// LookAt creates a view matrix that positions and orients the camera.
// The resulting matrix transforms world coordinates to view/camera space.
//
// Parameters:
//   - eye: camera position in world space
//   - target: point the camera looks at
//   - up: up vector defining camera orientation (typically 0,1,0)
//
// Returns:
//   - mgl32.Mat4: the view matrix
func LookAt(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	z := Normalize(eye.Sub(target))
	x := Normalize(up.Cross(z))
	y := Normalize(z.Cross(x))

	return mgl32.Mat4{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// Lerp linearly interpolates between lo and hi by t.
func Lerp(lo, hi, t float32) float32 {
	return t*(hi-lo) + lo
}

// Clamp limits v to the closed range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
