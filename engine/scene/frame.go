package scene

import (
	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/camera"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/construction"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/director"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/environment"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/light"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/particle"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/postfx"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/scenegraph"
)

// ParticleBatch is the GPU-ready state of one particle field.
type ParticleBatch struct {
	Name      string
	Uniform   particle.GPUFieldUniform
	Instances []particle.GPUParticle
}

// Frame is everything the renderer needs to draw one tick. A Frame returned by Scene.Update
// is reused by the next Update; callers must not keep it across ticks.
type Frame struct {
	Time     clock.Time
	Input    Input
	Viewport common.Viewport

	Director     director.State
	Construction construction.State
	Environment  environment.State

	Camera camera.GPUCameraUniform
	Light  light.GPULightUniform
	Sky    environment.GPUSkyUniform
	Post   postfx.GPUPostUniform
	Passes []postfx.Pass

	// Rebuild is set when the set of visible meshes changed since the previous frame, which
	// happens only on a phase change or on the first frame.
	Rebuild      bool
	ActiveMeshes []string
	Draws        []scenegraph.DrawItem

	Particles []ParticleBatch
	Clouds    []environment.GPUSprite
	Stars     []environment.GPUSprite

	// OverlayAlpha is the loading overlay coverage in [0, 1]; the lifecycle sets it.
	OverlayAlpha float32
}

// SetOverlayAlpha stores the loading overlay coverage in the frame and its post uniform.
//
// Parameters:
//   - alpha: coverage, clamped to [0, 1]
func (f *Frame) SetOverlayAlpha(alpha float32) {
	alpha = float32(common.Clamp01(float64(alpha)))
	f.OverlayAlpha = alpha
	f.Post.OverlayAlpha = alpha
}
