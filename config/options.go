package config

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/camera"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/director"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/environment"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/particle"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/postfx"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/scene"
)

// Director builds the camera and light director. The engine installs the viewport controls
// at mount, so they are not part of the configuration.
func (c *Config) Director() (director.Director, error) {
	keyframes := make([]director.Keyframe, len(c.Camera.Keyframes))
	for i, k := range c.Camera.Keyframes {
		keyframes[i] = director.Keyframe{Position: k.Position.vec(), LookAt: k.LookAt.vec(), Fov: k.Fov}
	}
	moods := make([]director.LightMood, len(c.Lighting.Moods))
	for i, m := range c.Lighting.Moods {
		sun, err := common.ParseHexColor(m.SunColor)
		if err != nil {
			return nil, fmt.Errorf("lighting.moods[%d]: %w", i, err)
		}
		moods[i] = director.LightMood{
			SunPosition:      m.SunPosition.vec(),
			SunIntensity:     m.SunIntensity,
			AmbientIntensity: m.AmbientIntensity,
			SunColor:         sun,
		}
	}
	o := c.Camera.Orbit
	return director.NewDirector(
		director.WithKeyframes(keyframes),
		director.WithOrbit(director.Orbit{
			Radius:       o.Radius,
			Rate:         o.Rate,
			Height:       o.Height,
			BobAmplitude: o.BobAmplitude,
			BobFrequency: o.BobFrequency,
			LookAt:       o.LookAt.vec(),
			Fov:          o.Fov,
		}),
		director.WithLightMoods(moods),
		director.WithSmoothing(c.Camera.Smoothing),
		director.WithMaxSpeed(c.Camera.MaxSpeed),
	), nil
}

// FieldParams resolves every configured field against its preset.
func (c *Config) FieldParams() ([]particle.Params, error) {
	out := make([]particle.Params, 0, len(c.Particles.Fields))
	for i, f := range c.Particles.Fields {
		p, ok := particle.Preset(f.Preset)
		if !ok {
			return nil, fmt.Errorf("particles.fields[%d]: unknown preset %q", i, f.Preset)
		}
		if f.Count > 0 {
			p.Count = f.Count
		}
		if f.Color != "" {
			col, err := common.ParseHexColor(f.Color)
			if err != nil {
				return nil, fmt.Errorf("particles.fields[%d]: %w", i, err)
			}
			p.Color = col
		}
		if f.Size > 0 {
			p.Size = f.Size
		}
		if f.Spread > 0 {
			p.Spread = f.Spread
		}
		if f.Speed > 0 {
			p.Speed = f.Speed
		}
		if f.Opacity > 0 {
			p.Opacity = f.Opacity
		}
		out = append(out, p)
	}
	return out, nil
}

// EnvironmentParams overlays the configured sky, fog and population on the defaults.
func (c *Config) EnvironmentParams() (environment.Params, error) {
	p := environment.DefaultParams()
	e := c.Environment
	for _, field := range []struct {
		name string
		src  string
		dst  *common.Color
	}{
		{"zenith", e.Zenith, &p.Zenith},
		{"horizon", e.Horizon, &p.Horizon},
		{"fog", e.Fog, &p.FogColor},
		{"ground", e.Ground, &p.GroundColor},
	} {
		col, err := common.ParseHexColor(field.src)
		if err != nil {
			return environment.Params{}, fmt.Errorf("environment.%s: %w", field.name, err)
		}
		*field.dst = col
	}
	p.FogNear, p.FogFar = e.FogNear, e.FogFar
	p.GroundSize = e.GroundSize
	p.CloudCount = e.Clouds
	p.CloudSpeed = e.CloudSpeed
	p.StarCount = e.Stars
	return p, nil
}

// PostParams overlays the configured toggles on the default effect chain.
func (c *Config) PostParams() postfx.Params {
	p := postfx.DefaultParams()
	p.BloomEnabled = c.PostFX.Bloom
	p.BloomThreshold = c.PostFX.BloomThreshold
	p.VignetteEnabled = c.PostFX.Vignette
	p.ChromaticEnabled = c.PostFX.Chromatic
	p.DepthOfFieldEnabled = c.PostFX.DepthOfField
	p.FocusDistance = c.PostFX.FocusDistance
	return p
}

// SceneOptions builds the scene components described by the configuration.
//
// Returns:
//   - []scene.SceneBuilderOption: options for scene.NewScene
//   - error: error if a component cannot be built
func (c *Config) SceneOptions() ([]scene.SceneBuilderOption, error) {
	dir, err := c.Director()
	if err != nil {
		return nil, err
	}
	fieldParams, err := c.FieldParams()
	if err != nil {
		return nil, err
	}
	envParams, err := c.EnvironmentParams()
	if err != nil {
		return nil, err
	}

	fields := make([]particle.Field, len(fieldParams))
	for i, p := range fieldParams {
		fields[i] = particle.NewField(p, particle.WithSeed(c.Seed+uint64(i)+1))
	}
	opts := []scene.SceneBuilderOption{
		scene.WithSeed(c.Seed),
		scene.WithDirector(dir),
		scene.WithCamera(camera.NewCamera(camera.WithClipPlanes(c.Camera.Near, c.Camera.Far))),
		scene.WithEnvironment(environment.NewEnvironment(environment.WithParams(envParams), environment.WithSeed(c.Seed))),
		scene.WithCompositor(postfx.NewCompositor(postfx.WithParams(c.PostParams()))),
		scene.WithFields(fields...),
	}
	if c.Lifecycle.ComputeWorkers > 0 {
		opts = append(opts, scene.WithComputeWorkers(c.Lifecycle.ComputeWorkers))
	}
	return opts, nil
}

// EngineOptions builds the lifecycle options described by the configuration. The caller
// adds the logger, the render target factory and the fallback sink.
//
// Returns:
//   - []engine.EngineBuilderOption: options for engine.NewEngine
//   - error: error if the scene components cannot be built
func (c *Config) EngineOptions() ([]engine.EngineBuilderOption, error) {
	sceneOpts, err := c.SceneOptions()
	if err != nil {
		return nil, err
	}
	return []engine.EngineBuilderOption{
		engine.WithSceneOptions(sceneOpts...),
		engine.WithViewport(common.Viewport{Width: c.Window.Width, Height: c.Window.Height}),
		engine.WithTickRate(c.Lifecycle.TickRate),
		engine.WithLoadingOverlay(c.Lifecycle.LoadingDelay, c.Lifecycle.Fade),
		engine.WithMobileBreakpoint(c.Lifecycle.MobileBreakpoint),
		engine.WithMaxDrawFailures(c.Lifecycle.MaxDrawFailures),
		engine.WithProfiling(c.Lifecycle.Profile),
	}, nil
}
