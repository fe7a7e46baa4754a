package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
)

var (
	// ErrNoAdapter is returned when no GPU adapter can drive the surface.
	ErrNoAdapter = errors.New("renderer: no compatible adapter")

	// ErrContextLost is returned by every draw after the renderer was released or the device
	// went away.
	ErrContextLost = common.ErrContextLost
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA)
// of the scene pass. WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// TargetID names one of the colour targets the frame graph renders into.
type TargetID uint8

const (
	TargetSurface TargetID = iota // the swapchain image of the current frame
	TargetHDR                     // resolved scene colour, alpha carries linear depth
	TargetBloomA                  // half resolution ping
	TargetBloomB                  // half resolution pong
	TargetLDR                     // composited colour awaiting depth of field
)

func (t TargetID) String() string {
	switch t {
	case TargetSurface:
		return "surface"
	case TargetHDR:
		return "hdr"
	case TargetBloomA:
		return "bloom-a"
	case TargetBloomB:
		return "bloom-b"
	case TargetLDR:
		return "ldr"
	}
	return "unknown"
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
