package camera

import (
	"sync"

	"github.com/DatBlindArcher/bin-thrower/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	fov    float32
	aspect float32
	near   float32
	far    float32

	position mgl32.Vec3
	pitch    float32
	yaw      float32
	roll     float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
	viewInverse          mgl32.Mat4
}

// Camera holds the perspective settings and the pose of the viewer and derives the matrices uploaded to the scene uniform.
// The view matrix is rebuilt from the pose on every change as Rx(pitch) * Ry(yaw) * Rz(roll) * T(-position), angles in degrees.
type Camera interface {
	// Fov returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: field of view in degrees
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Orientation returns the pitch, yaw and roll angles in degrees.
	//
	// Returns:
	//   - pitch, yaw, roll: rotation about X, Y and Z
	Orientation() (pitch, yaw, roll float32)

	// SetPose moves and orients the camera and recomputes matrices.
	//
	// Parameters:
	//   - position: world-space position
	//   - pitch, yaw, roll: rotation about X, Y and Z in degrees
	SetPose(position mgl32.Vec3, pitch, yaw, roll float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// ViewMatrix returns the current view matrix.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix.
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	ViewProjectionMatrix() mgl32.Mat4

	// ViewInverse returns the inverse of the view matrix. When the view matrix is singular the last good inverse is kept.
	ViewInverse() mgl32.Mat4

	// Uniform returns the scene uniform built from the current matrices.
	//
	// Returns:
	//   - GPUSceneUniform: the 128-byte scene uniform
	Uniform() GPUSceneUniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with a 60 degree field of view, near plane 0.2 and far plane 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:          &sync.Mutex{},
		fov:         60,
		aspect:      1,
		near:        0.2,
		far:         100,
		viewInverse: mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Orientation() (pitch, yaw, roll float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch, c.yaw, c.roll
}

func (c *cameraImpl) SetPose(position mgl32.Vec3, pitch, yaw, roll float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
	c.pitch, c.yaw, c.roll = pitch, yaw, roll
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) ViewInverse() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewInverse
}

func (c *cameraImpl) Uniform() GPUSceneUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUSceneUniform{
		ProjectionView: c.viewProjectionMatrix,
		ViewInverse:    c.viewInverse,
	}
}

// updateMatrices recalculates the projection, view, view-projection and view inverse matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.projectionMatrix = common.Perspective(c.fov, c.aspect, c.near, c.far)

	view := common.Identity()
	common.Rotate(&view, mgl32.Vec3{1, 0, 0}, c.pitch)
	common.Rotate(&view, mgl32.Vec3{0, 1, 0}, c.yaw)
	common.Rotate(&view, mgl32.Vec3{0, 0, 1}, c.roll)
	common.Translate(&view, -c.position[0], -c.position[1], -c.position[2])
	c.viewMatrix = view

	c.viewProjectionMatrix = common.Mul4(c.projectionMatrix, c.viewMatrix)
	// On a singular view the previous inverse stays in place.
	if inv, err := common.Invert(view); err == nil {
		c.viewInverse = inv
	}
}
