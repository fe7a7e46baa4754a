package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/particle"
)

// Validate reports every problem in the configuration at once.
//
// Returns:
//   - error: nil, or all problems joined, each wrapping ErrInvalid
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	color := func(field, s string) {
		if _, err := common.ParseHexColor(s); err != nil {
			bad("%s: %v", field, err)
		}
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Render.MSAA != 1 && c.Render.MSAA != 4 {
		bad("render.msaa %d must be 1 or 4", c.Render.MSAA)
	}
	if c.Render.FrameLimit < 0 {
		bad("render.frame_limit %v must not be negative", c.Render.FrameLimit)
	}

	if len(c.Camera.Keyframes) == 0 {
		bad("camera.keyframes must not be empty")
	}
	for i, k := range c.Camera.Keyframes {
		if !finite3(k.Position) || !finite3(k.LookAt) {
			bad("camera.keyframes[%d] has a non-finite coordinate", i)
		}
		if k.Fov <= 0 || k.Fov >= 180 {
			bad("camera.keyframes[%d].fov %v must be in (0, 180)", i, k.Fov)
		}
	}
	if c.Camera.Orbit.Fov <= 0 || c.Camera.Orbit.Fov >= 180 {
		bad("camera.orbit.fov %v must be in (0, 180)", c.Camera.Orbit.Fov)
	}
	if c.Camera.Smoothing <= 0 {
		bad("camera.smoothing %v must be positive", c.Camera.Smoothing)
	}
	if c.Camera.MaxSpeed <= 0 {
		bad("camera.max_speed %v must be positive", c.Camera.MaxSpeed)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		bad("camera clip planes near %v far %v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far)
	}

	if n := len(c.Lighting.Moods); n != common.PhaseMax+1 {
		bad("lighting.moods has %d entries, want %d", n, common.PhaseMax+1)
	}
	for i, m := range c.Lighting.Moods {
		color(fmt.Sprintf("lighting.moods[%d].sun_color", i), m.SunColor)
		if m.SunIntensity < 0 || m.AmbientIntensity < 0 {
			bad("lighting.moods[%d] intensities must not be negative", i)
		}
	}

	for i, f := range c.Particles.Fields {
		if _, ok := particle.Preset(f.Preset); !ok {
			bad("particles.fields[%d].preset %q is not one of %v", i, f.Preset, particle.PresetNames())
		}
		if f.Color != "" {
			color(fmt.Sprintf("particles.fields[%d].color", i), f.Color)
		}
		if f.Count < 0 || f.Size < 0 || f.Spread < 0 || f.Opacity < 0 || f.Opacity > 1 {
			bad("particles.fields[%d] has an out of range override", i)
		}
	}

	e := c.Environment
	color("environment.zenith", e.Zenith)
	color("environment.horizon", e.Horizon)
	color("environment.fog", e.Fog)
	color("environment.ground", e.Ground)
	if e.FogNear < 0 || e.FogFar <= e.FogNear {
		bad("environment fog range %v..%v must satisfy 0 <= near < far", e.FogNear, e.FogFar)
	}
	if e.GroundSize <= 0 {
		bad("environment.ground_size %v must be positive", e.GroundSize)
	}
	if e.Clouds < 0 || e.Stars < 0 {
		bad("environment cloud and star counts must not be negative")
	}

	if c.PostFX.BloomThreshold < 0 {
		bad("postfx.bloom_threshold %v must not be negative", c.PostFX.BloomThreshold)
	}
	if c.PostFX.FocusDistance <= 0 {
		bad("postfx.focus_distance %v must be positive", c.PostFX.FocusDistance)
	}

	l := c.Lifecycle
	if l.TickRate <= 0 {
		bad("lifecycle.tick_rate %v must be positive", l.TickRate)
	}
	if l.LoadingDelay < 0 || l.Fade < 0 {
		bad("lifecycle loading delay and fade must not be negative")
	}
	if l.MobileBreakpoint < 0 {
		bad("lifecycle.mobile_breakpoint %d must not be negative", l.MobileBreakpoint)
	}
	if l.MaxDrawFailures < 1 {
		bad("lifecycle.max_draw_failures %d must be at least 1", l.MaxDrawFailures)
	}
	if l.ComputeWorkers < 0 {
		bad("lifecycle.compute_workers %d must not be negative", l.ComputeWorkers)
	}

	return errors.Join(errs...)
}

func finite3(v Vec3) bool {
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return false
		}
	}
	return true
}
