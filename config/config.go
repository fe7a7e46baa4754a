// Package config loads the cinematic viewer configuration.
//
// Configuration comes from a single YAML file given by the --config flag or the
// OXY_CINEMATIC_CONFIG environment variable. The file is merged over Default(), so it only
// needs to name the values it changes. Without a file the defaults are used unchanged.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "OXY_CINEMATIC_CONFIG"

// ErrInvalid is wrapped by every validation problem.
var ErrInvalid = errors.New("invalid config")

// Config is the complete viewer configuration.
type Config struct {
	// Seed drives every seeded component (particle fields, clouds, stars).
	Seed uint64 `yaml:"seed"`

	Window      WindowConfig      `yaml:"window"`
	Render      RenderConfig      `yaml:"render"`
	Camera      CameraConfig      `yaml:"camera"`
	Lighting    LightingConfig    `yaml:"lighting"`
	Particles   ParticlesConfig   `yaml:"particles"`
	Environment EnvironmentConfig `yaml:"environment"`
	PostFX      PostFXConfig      `yaml:"postfx"`
	Lifecycle   LifecycleConfig   `yaml:"lifecycle"`
}

// WindowConfig configures the native window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RenderConfig configures the GPU backend.
type RenderConfig struct {
	// MSAA is the scene sample count: 1 or 4.
	MSAA int `yaml:"msaa"`

	// VSync selects FIFO presentation; otherwise frames are presented immediately.
	VSync bool `yaml:"vsync"`

	// Software forces a fallback (CPU) adapter.
	Software bool `yaml:"software"`

	// FrameLimit caps presented frames per second; 0 means unlimited.
	FrameLimit float64 `yaml:"frame_limit"`
}

// Vec3 is a YAML friendly [x, y, z].
type Vec3 [3]float32

// KeyframeConfig is one camera way-point.
type KeyframeConfig struct {
	Position Vec3    `yaml:"position"`
	LookAt   Vec3    `yaml:"look_at"`
	Fov      float32 `yaml:"fov"`
}

// OrbitConfig is the hero-section ambient orbit.
type OrbitConfig struct {
	Radius       float64 `yaml:"radius"`
	Rate         float64 `yaml:"rate"`
	Height       float64 `yaml:"height"`
	BobAmplitude float64 `yaml:"bob_amplitude"`
	BobFrequency float64 `yaml:"bob_frequency"`
	LookAt       Vec3    `yaml:"look_at"`
	Fov          float32 `yaml:"fov"`
}

// CameraConfig configures the camera path and its smoothing.
type CameraConfig struct {
	Keyframes []KeyframeConfig `yaml:"keyframes"`
	Orbit     OrbitConfig      `yaml:"orbit"`
	Smoothing float64          `yaml:"smoothing"`
	MaxSpeed  float64          `yaml:"max_speed"`
	Near      float32          `yaml:"near"`
	Far       float32          `yaml:"far"`
}

// MoodConfig is the light mood of one construction phase.
type MoodConfig struct {
	SunPosition      Vec3    `yaml:"sun_position"`
	SunIntensity     float32 `yaml:"sun_intensity"`
	AmbientIntensity float32 `yaml:"ambient_intensity"`
	SunColor         string  `yaml:"sun_color"`
}

// LightingConfig holds one mood per phase, phase 0 first.
type LightingConfig struct {
	Moods []MoodConfig `yaml:"moods"`
}

// FieldConfig is one particle field. Preset names the base parameters; non-zero fields
// override them.
type FieldConfig struct {
	Preset  string  `yaml:"preset"`
	Count   int     `yaml:"count,omitempty"`
	Color   string  `yaml:"color,omitempty"`
	Size    float32 `yaml:"size,omitempty"`
	Spread  float64 `yaml:"spread,omitempty"`
	Speed   float64 `yaml:"speed,omitempty"`
	Opacity float32 `yaml:"opacity,omitempty"`
}

// ParticlesConfig lists the particle fields in draw order.
type ParticlesConfig struct {
	Fields []FieldConfig `yaml:"fields"`
}

// EnvironmentConfig configures the sky, fog, ground, clouds and stars.
type EnvironmentConfig struct {
	Zenith     string  `yaml:"zenith"`
	Horizon    string  `yaml:"horizon"`
	Fog        string  `yaml:"fog"`
	FogNear    float32 `yaml:"fog_near"`
	FogFar     float32 `yaml:"fog_far"`
	Ground     string  `yaml:"ground"`
	GroundSize float64 `yaml:"ground_size"`
	Clouds     int     `yaml:"clouds"`
	CloudSpeed float64 `yaml:"cloud_speed"`
	Stars      int     `yaml:"stars"`
}

// PostFXConfig toggles and tunes the effect chain.
type PostFXConfig struct {
	Bloom          bool    `yaml:"bloom"`
	BloomThreshold float32 `yaml:"bloom_threshold"`
	Vignette       bool    `yaml:"vignette"`
	Chromatic      bool    `yaml:"chromatic_aberration"`
	DepthOfField   bool    `yaml:"depth_of_field"`
	FocusDistance  float32 `yaml:"focus_distance"`
}

// LifecycleConfig configures mount, the loop and the loading overlay.
type LifecycleConfig struct {
	TickRate         float64 `yaml:"tick_rate"`
	LoadingDelay     float64 `yaml:"loading_delay"`
	Fade             float64 `yaml:"fade"`
	MobileBreakpoint int     `yaml:"mobile_breakpoint"`
	MaxDrawFailures  int     `yaml:"max_draw_failures"`
	ComputeWorkers   int     `yaml:"compute_workers"`
	Profile          bool    `yaml:"profile"`
}

// Load loads the file named by OXY_CINEMATIC_CONFIG, or returns the defaults when the
// variable is unset.
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if the file cannot be read, parsed or validated
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile merges a YAML file over the defaults and validates the result.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if the file cannot be read, parsed or validated
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return Parse(data)
}

// Parse merges YAML over the defaults and validates the result.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Config: the parsed configuration
//   - error: error if the document is malformed or invalid
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML, e.g. to dump the defaults as a template.
//
// Returns:
//   - []byte: the YAML document
//   - error: error if encoding fails
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
