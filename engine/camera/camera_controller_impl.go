package camera

import "sync"

// cameraControllerImpl is the pointer-orbit implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	sensitivity float32
	rotX, rotY  float32

	lastX, lastY float64
	hasSample    bool
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a pointer-orbit controller turning 0.1 degrees per pixel.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:          &sync.Mutex{},
		sensitivity: 0.1,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Sample(x, y float64) (float32, float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.hasSample {
		cc.rotX += float32(x-cc.lastX) * cc.sensitivity
		cc.rotY += float32(y-cc.lastY) * cc.sensitivity
	}
	cc.lastX, cc.lastY = x, y
	cc.hasSample = true
	return cc.rotX, cc.rotY
}

func (cc *cameraControllerImpl) Rotation() (float32, float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotX, cc.rotY
}

func (cc *cameraControllerImpl) HasSample() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.hasSample
}

func (cc *cameraControllerImpl) Reset() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.hasSample = false
}

func (cc *cameraControllerImpl) Sensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.sensitivity
}
