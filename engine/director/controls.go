package director

import (
	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Controls is the interaction policy selected by the viewport probe.
type Controls struct {
	AutoRotate bool    // accumulate the orbit angle
	MinZoom    float64 // smallest dolly factor along the view ray
	MaxZoom    float64 // largest dolly factor along the view ray
	PanEnabled bool
	PanLimit   float64 // maximum pan offset in world units
}

// DesktopControls allows the idle orbit and generous zoom and pan.
func DesktopControls() Controls {
	return Controls{AutoRotate: true, MinZoom: 0.6, MaxZoom: 1.6, PanEnabled: true, PanLimit: 4}
}

// MobileControls disables the idle orbit rotation and limits zoom to a narrow band.
func MobileControls() Controls {
	return Controls{AutoRotate: false, MinZoom: 0.9, MaxZoom: 1.1, PanEnabled: false}
}

// ZoomFactor clamps a requested zoom to the policy. Zero and non-finite requests mean no zoom.
//
// Parameters:
//   - zoom: the requested dolly factor
//
// Returns:
//   - float64: the factor to apply
func (c Controls) ZoomFactor(zoom float64) float64 {
	zoom = common.Finite(zoom, 1)
	if zoom == 0 {
		zoom = 1
	}
	lo, hi := c.MinZoom, c.MaxZoom
	if lo <= 0 || hi < lo {
		return 1
	}
	return common.Clamp(zoom, lo, hi)
}

// PanOffset clamps a requested pan to the policy. It returns zero when panning is disabled.
//
// Parameters:
//   - pan: requested offset along the camera right and world up axes
//
// Returns:
//   - mgl32.Vec2: the offset to apply
func (c Controls) PanOffset(pan mgl32.Vec2) mgl32.Vec2 {
	if !c.PanEnabled || c.PanLimit <= 0 {
		return mgl32.Vec2{}
	}
	for i := range 2 {
		pan[i] = float32(common.Finite(float64(pan[i]), 0))
	}
	if l := float64(pan.Len()); l > c.PanLimit {
		pan = pan.Mul(float32(c.PanLimit / l))
	}
	return pan
}

// apply dollies and pans a target pose.
func (c Controls) apply(p Pose, zoom float64, pan mgl32.Vec2) Pose {
	if f := c.ZoomFactor(zoom); f != 1 {
		p.Position = p.LookAt.Add(p.Position.Sub(p.LookAt).Mul(float32(f)))
	}
	off := c.PanOffset(pan)
	if off == (mgl32.Vec2{}) {
		return p
	}
	up := mgl32.Vec3{0, 1, 0}
	right := p.LookAt.Sub(p.Position).Cross(up)
	if right.LenSqr() < 1e-12 {
		right = mgl32.Vec3{1, 0, 0}
	}
	shift := right.Normalize().Mul(off.X()).Add(up.Mul(off.Y()))
	p.Position = p.Position.Add(shift)
	p.LookAt = p.LookAt.Add(shift)
	return p
}
