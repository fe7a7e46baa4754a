package config

import (
	"github.com/Carmen-Shannon/oxy-cinematic/engine/director"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/environment"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/particle"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/postfx"
	"github.com/go-gl/mathgl/mgl32"
)

// Default returns the configuration the viewer runs with when no file is given. Every value
// mirrors the component defaults so that an empty file changes nothing.
func Default() *Config {
	orbit := director.DefaultOrbit()
	env := environment.DefaultParams()
	post := postfx.DefaultParams()

	cfg := &Config{
		Seed: 1,
		Window: WindowConfig{
			Title:  "oxy-cinematic",
			Width:  1280,
			Height: 720,
		},
		Render: RenderConfig{
			MSAA:  4,
			VSync: true,
		},
		Camera: CameraConfig{
			Orbit: OrbitConfig{
				Radius:       orbit.Radius,
				Rate:         orbit.Rate,
				Height:       orbit.Height,
				BobAmplitude: orbit.BobAmplitude,
				BobFrequency: orbit.BobFrequency,
				LookAt:       fromVec(orbit.LookAt),
				Fov:          orbit.Fov,
			},
			Smoothing: 2,
			MaxSpeed:  40,
			Near:      0.1,
			Far:       300,
		},
		Environment: EnvironmentConfig{
			Zenith:     env.Zenith.Hex(),
			Horizon:    env.Horizon.Hex(),
			Fog:        env.FogColor.Hex(),
			FogNear:    env.FogNear,
			FogFar:     env.FogFar,
			Ground:     env.GroundColor.Hex(),
			GroundSize: env.GroundSize,
			Clouds:     env.CloudCount,
			CloudSpeed: env.CloudSpeed,
			Stars:      env.StarCount,
		},
		PostFX: PostFXConfig{
			Bloom:          post.BloomEnabled,
			BloomThreshold: post.BloomThreshold,
			Vignette:       post.VignetteEnabled,
			Chromatic:      post.ChromaticEnabled,
			DepthOfField:   post.DepthOfFieldEnabled,
			FocusDistance:  post.FocusDistance,
		},
		Lifecycle: LifecycleConfig{
			TickRate:         60,
			LoadingDelay:     1.2,
			Fade:             0.8,
			MobileBreakpoint: 768,
			MaxDrawFailures:  3,
		},
	}
	for _, k := range director.DefaultKeyframes() {
		cfg.Camera.Keyframes = append(cfg.Camera.Keyframes, KeyframeConfig{
			Position: fromVec(k.Position),
			LookAt:   fromVec(k.LookAt),
			Fov:      k.Fov,
		})
	}
	for _, m := range director.DefaultMoods() {
		cfg.Lighting.Moods = append(cfg.Lighting.Moods, MoodConfig{
			SunPosition:      fromVec(m.SunPosition),
			SunIntensity:     m.SunIntensity,
			AmbientIntensity: m.AmbientIntensity,
			SunColor:         m.SunColor.Hex(),
		})
	}
	for _, name := range []string{particle.PresetMotes, particle.PresetDust, particle.PresetSparkles} {
		cfg.Particles.Fields = append(cfg.Particles.Fields, FieldConfig{Preset: name})
	}
	return cfg
}

func fromVec(v mgl32.Vec3) Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

func (v Vec3) vec() mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[1], v[2]}
}
