package director

import (
	"math"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Keyframe is one way-point of the camera path.
type Keyframe struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Fov      float32 // vertical field of view in degrees
}

// Pose is a sampled camera pose.
type Pose struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Fov      float32 // degrees
}

// DefaultKeyframes is the five-stop path from the establishing wide shot to the high
// reveal of the finished building.
func DefaultKeyframes() []Keyframe {
	return []Keyframe{
		{Position: mgl32.Vec3{12, 8, 12}, LookAt: mgl32.Vec3{0, 2, 0}, Fov: 45},
		{Position: mgl32.Vec3{8, 4, 10}, LookAt: mgl32.Vec3{0, 1, 0}, Fov: 50},
		{Position: mgl32.Vec3{-6, 6, 10}, LookAt: mgl32.Vec3{0, 3, 0}, Fov: 45},
		{Position: mgl32.Vec3{-10, 10, -4}, LookAt: mgl32.Vec3{0, 4, 0}, Fov: 40},
		{Position: mgl32.Vec3{0, 14, 16}, LookAt: mgl32.Vec3{0, 5, 0}, Fov: 35},
	}
}

// SegmentIndex returns the path segment for progress on an n-keyframe path, together with the
// linear position inside that segment. The segment is floor(progress*(n-1)) clamped to
// [0, n-2]; progress is sanitized to [0, 1] first. Paths with fewer than two keyframes have no
// segments and always return (0, 0).
//
// Parameters:
//   - progress: scroll progress
//   - n: keyframe count
//
// Returns:
//   - int: the segment index
//   - float64: the linear parameter inside the segment, in [0, 1]
func SegmentIndex(progress float64, n int) (int, float64) {
	if n < 2 {
		return 0, 0
	}
	scaled := common.Clamp01(progress) * float64(n-1)
	segment := int(math.Floor(scaled))
	segment = max(0, min(segment, n-2))
	return segment, common.Clamp(scaled-float64(segment), 0, 1)
}

// Sample evaluates the keyframe path at progress with ease-in-out-cubic easing inside each
// segment. A single keyframe yields its pose unchanged and an empty path yields the zero pose.
//
// Parameters:
//   - keyframes: the path
//   - progress: scroll progress
//
// Returns:
//   - Pose: the interpolated pose
//   - int: the segment index
//   - float64: the eased parameter inside the segment
func Sample(keyframes []Keyframe, progress float64) (Pose, int, float64) {
	switch len(keyframes) {
	case 0:
		return Pose{}, 0, 0
	case 1:
		k := keyframes[0]
		return Pose{Position: k.Position, LookAt: k.LookAt, Fov: k.Fov}, 0, 0
	}
	segment, localT := SegmentIndex(progress, len(keyframes))
	t := common.EaseInOutCubic(localT)
	a, b := keyframes[segment], keyframes[segment+1]
	return Pose{
		Position: common.LerpVec3(a.Position, b.Position, t),
		LookAt:   common.LerpVec3(a.LookAt, b.LookAt, t),
		Fov:      float32(common.Lerp(float64(a.Fov), float64(b.Fov), t)),
	}, segment, t
}
