package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithSensitivity sets the degrees of rotation per pixel of pointer movement.
//
// Parameters:
//   - sensitivity: degrees per pixel
//
// Returns:
//   - CameraControllerOption: functional option to set the sensitivity
func WithSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.sensitivity = sensitivity
	}
}

// WithRotation sets the initial accumulated rotation.
//
// Parameters:
//   - rotX, rotY: rotation in degrees
//
// Returns:
//   - CameraControllerOption: functional option to set the rotation
func WithRotation(rotX, rotY float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotX, cc.rotY = rotX, rotY
	}
}
