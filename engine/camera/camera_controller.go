package camera

import "github.com/go-gl/mathgl/mgl32"

// Controller owns the positional state of a camera. The camera reads from the controller and
// computes view/projection matrices; it never writes back.
type Controller interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3
}

// StaticController is a Controller with a fixed pose.
type StaticController struct {
	Eye    mgl32.Vec3
	LookAt mgl32.Vec3
}

var _ Controller = StaticController{}

func (s StaticController) Position() mgl32.Vec3 { return s.Eye }

func (s StaticController) Target() mgl32.Vec3 { return s.LookAt }
