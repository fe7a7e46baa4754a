package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	up mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
	projectionVersion    uint64
	projectionDirty      bool

	controller Controller
}

// Camera holds perspective settings and computes view/projection matrices
// from an attached Controller each frame via Update().
type Camera interface {
	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// Position returns the eye position read from the controller at the last Update.
	//
	// Returns:
	//   - mgl32.Vec3: world-space eye position
	Position() mgl32.Vec3

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the combined view-projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: projection * view
	ViewProjectionMatrix() mgl32.Mat4

	// ProjectionVersion increases every time the projection matrix is recomputed.
	// It only moves when fov, aspect, near or far actually change.
	//
	// Returns:
	//   - uint64: the projection version
	ProjectionVersion() uint64

	// Controller returns the attached Controller, or nil.
	//
	// Returns:
	//   - Controller: the attached controller or nil
	Controller() Controller

	// Update reads position/target from the controller and recomputes the view matrix, and
	// the projection matrix when a perspective setting changed since the last Update.
	// Does nothing without a controller.
	Update()

	// Uniform returns the GPU representation of the camera as of the last Update.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform block
	Uniform() GPUCameraUniform

	// SetUp sets the camera's up vector.
	SetUp(up mgl32.Vec3)

	// SetFov sets the field of view in radians. The projection is recomputed on the next
	// Update only if the value differs.
	//
	// Parameters:
	//   - fov: field of view in radians
	//
	// Returns:
	//   - bool: true if the value changed
	SetFov(fov float32) bool

	// SetAspect sets the aspect ratio (width / height). Non-positive or non-finite values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	//
	// Returns:
	//   - bool: true if the value changed
	SetAspect(aspect float32) bool

	// SetNear sets the near clipping plane distance.
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	SetFar(far float32)

	// SetController attaches a Controller to the camera.
	SetController(ctrl Controller)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings.
// A controller must be attached via SetController or WithController
// before position/target data is available.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:                   &sync.Mutex{},
		up:                   mgl32.Vec3{0, 1, 0},
		fov:                  mgl32.DegToRad(45),
		aspect:               1.0,
		near:                 0.1,
		far:                  300.0,
		viewMatrix:           mgl32.Ident4(),
		viewProjectionMatrix: mgl32.Ident4(),
		projectionDirty:      true,
	}
	for _, option := range options {
		option(c)
	}
	c.updateProjection()
	c.updateView()
	return c
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
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

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return mgl32.Vec3{}
	}
	return c.controller.Position()
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

func (c *cameraImpl) ProjectionVersion() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionVersion
}

func (c *cameraImpl) Controller() Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.updateProjection()
	c.updateView()
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := GPUCameraUniform{
		ViewProj: c.viewProjectionMatrix,
		View:     c.viewMatrix,
		Near:     c.near,
		Far:      c.far,
		Fov:      c.fov,
		Aspect:   c.aspect,
	}
	if c.controller != nil {
		u.Position = c.controller.Position()
	}
	return u
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
}

func (c *cameraImpl) SetFov(fov float32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !validPositive(fov) || fov >= math.Pi || fov == c.fov {
		return false
	}
	c.fov = fov
	c.projectionDirty = true
	return true
}

func (c *cameraImpl) SetAspect(aspect float32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !validPositive(aspect) || aspect == c.aspect {
		return false
	}
	c.aspect = aspect
	c.projectionDirty = true
	return true
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if validPositive(near) && near != c.near {
		c.near = near
		c.projectionDirty = true
	}
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if validPositive(far) && far != c.far {
		c.far = far
		c.projectionDirty = true
	}
}

func (c *cameraImpl) SetController(ctrl Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func validPositive(v float32) bool {
	f := float64(v)
	return f > 0 && !math.IsInf(f, 0)
}

// updateProjection recomputes the projection matrix when a perspective setting changed.
// Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	if !c.projectionDirty {
		return
	}
	c.projectionMatrix = common.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.projectionVersion++
	c.projectionDirty = false
}

// updateView recalculates the view and view-projection matrices from the controller.
// This is a no-op when the controller is nil or reports a degenerate pose.
// Caller must hold the mutex.
func (c *cameraImpl) updateView() {
	if c.controller == nil {
		return
	}
	eye, target := c.controller.Position(), c.controller.Target()
	if !common.FiniteVec3(eye) || !common.FiniteVec3(target) || eye.Sub(target).LenSqr() < 1e-12 {
		return
	}
	c.viewMatrix = mgl32.LookAtV(eye, target, c.up)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
