package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/camera"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/construction"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/director"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/environment"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/particle"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/postfx"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithLogger sets the structured logger. Defaults to slog.Default().
//
// Parameters:
//   - logger: the logger; nil is ignored
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCamera supplies the camera. The scene installs its director as the camera controller.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cam = cam
	}
}

// WithDirector supplies the camera and lighting controller.
//
// Parameters:
//   - d: the director
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDirector(d director.Director) SceneBuilderOption {
	return func(s *scene) {
		s.dir = d
	}
}

// WithModel supplies the procedural building.
//
// Parameters:
//   - m: the model
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithModel(m construction.Model) SceneBuilderOption {
	return func(s *scene) {
		s.model = m
	}
}

// WithEnvironment supplies the background compositor.
//
// Parameters:
//   - e: the environment
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithEnvironment(e environment.Environment) SceneBuilderOption {
	return func(s *scene) {
		s.env = e
	}
}

// WithCompositor supplies the post-processing parameters.
//
// Parameters:
//   - c: the compositor
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCompositor(c postfx.Compositor) SceneBuilderOption {
	return func(s *scene) {
		s.post = c
	}
}

// WithFields supplies the particle fields, replacing the three default presets.
//
// Parameters:
//   - fields: the fields in draw order
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFields(fields ...particle.Field) SceneBuilderOption {
	return func(s *scene) {
		s.fields = append([]particle.Field{}, fields...)
	}
}

// WithSeed seeds the default particle fields and environment.
//
// Parameters:
//   - seed: the base seed
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSeed(seed uint64) SceneBuilderOption {
	return func(s *scene) {
		s.seed = seed
	}
}

// WithViewport sets the initial viewport used for the camera aspect.
//
// Parameters:
//   - vp: the viewport in pixels; empty viewports are ignored
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithViewport(vp common.Viewport) SceneBuilderOption {
	return func(s *scene) {
		if !vp.Empty() {
			s.viewport = vp
		}
	}
}

// WithComputeWorkers sets the number of worker goroutines that advance the particle fields
// and the environment each tick. Defaults to runtime.NumCPU()-1, capped at 4.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.workWorkers = n
	}
}
