package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/scene"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithLogger sets the structured logger. Defaults to slog.Default().
//
// Parameters:
//   - logger: the logger; nil is ignored
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the loop rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.tickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithClock injects the time source. Defaults to a wall clock capped at clock.DefaultMaxDelta.
//
// Parameters:
//   - c: the clock
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(c clock.Clock) EngineBuilderOption {
	return func(e *engine) {
		e.clk = c
	}
}

// WithRenderTargetFactory sets the capability probe. Without one the engine always falls back.
//
// Parameters:
//   - f: the factory
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderTargetFactory(f RenderTargetFactory) EngineBuilderOption {
	return func(e *engine) {
		e.factory = f
	}
}

// WithFallbackSink sets where the static fallback panel is shown. Defaults to a log record.
//
// Parameters:
//   - sink: the sink
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFallbackSink(sink FallbackSink) EngineBuilderOption {
	return func(e *engine) {
		e.sink = sink
	}
}

// WithSceneOptions forwards options to the scene created at mount.
//
// Parameters:
//   - options: scene options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSceneOptions(options ...scene.SceneBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.sceneOptions = append(e.sceneOptions, options...)
	}
}

// WithViewport sets the viewport read at mount.
//
// Parameters:
//   - vp: the viewport in pixels; empty viewports are ignored
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithViewport(vp common.Viewport) EngineBuilderOption {
	return func(e *engine) {
		if !vp.Empty() {
			e.viewport = vp
		}
	}
}

// WithLoadingOverlay sets how long the loading overlay fully covers the scene and how long
// it then takes to fade out, both in seconds of clock time.
//
// Parameters:
//   - delay: fully covered duration; negative values mean none
//   - fade: fade-out duration; non-positive values remove the overlay at once
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoadingOverlay(delay, fade float64) EngineBuilderOption {
	return func(e *engine) {
		e.loadingDelay = max(delay, 0)
		e.fadeDuration = fade
	}
}

// WithMobileBreakpoint sets the viewport width below which the mobile policy applies.
//
// Parameters:
//   - px: breakpoint in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMobileBreakpoint(px int) EngineBuilderOption {
	return func(e *engine) {
		e.mobileBreakpoint = px
	}
}

// WithMaxDrawFailures sets how many consecutive failed draws count as a lost context.
//
// Parameters:
//   - n: the threshold (minimum 1)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxDrawFailures(n int) EngineBuilderOption {
	return func(e *engine) {
		e.maxDrawFailures = max(n, 1)
	}
}
