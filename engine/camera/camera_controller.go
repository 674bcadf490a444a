package camera

// CameraController turns absolute pointer positions into accumulated rotation angles.
// The first sample only seeds the last-seen position; every later sample adds delta * sensitivity
// to the rotation. The angles are not clamped and can wrap freely.
type CameraController interface {
	// Sample feeds the current pointer position and accumulates the delta against the previous sample.
	//
	// Parameters:
	//   - x, y: pointer position in pixels
	//
	// Returns:
	//   - rotX: accumulated horizontal rotation in degrees (from x movement)
	//   - rotY: accumulated vertical rotation in degrees (from y movement)
	Sample(x, y float64) (rotX, rotY float32)

	// Rotation returns the accumulated rotation in degrees.
	//
	// Returns:
	//   - rotX, rotY: rotation from horizontal and vertical pointer movement
	Rotation() (rotX, rotY float32)

	// HasSample reports whether a pointer position has been seen since creation or the last Reset.
	HasSample() bool

	// Reset forgets the last pointer position so the next sample only seeds it again.
	// Accumulated rotation is kept.
	Reset()

	// Sensitivity returns the degrees of rotation per pixel of pointer movement.
	Sensitivity() float32
}
