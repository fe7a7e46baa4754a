// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Color is a linear RGB color with components nominally in [0, 1].
type Color struct {
	R, G, B float32
}

// ParseHexColor parses "#rrggbb" or "rrggbb" into a Color.
//
// Parameters:
//   - s: the hex string
//
// Returns:
//   - Color: the parsed color
//   - error: error if the string is not a 6 digit hex color
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("color %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{
		R: float32((v>>16)&0xff) / 255,
		G: float32((v>>8)&0xff) / 255,
		B: float32(v&0xff) / 255,
	}, nil
}

// MustHexColor is ParseHexColor for compile-time constants. It panics on malformed input.
//
// Parameters:
//   - s: the hex string
//
// Returns:
//   - Color: the parsed color
func MustHexColor(s string) Color {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Lerp interpolates between c and o.
//
// Parameters:
//   - o: the target color
//   - t: the interpolation factor
//
// Returns:
//   - Color: the interpolated color
func (c Color) Lerp(o Color, t float64) Color {
	f := float32(t)
	return Color{
		R: c.R + (o.R-c.R)*f,
		G: c.G + (o.G-c.G)*f,
		B: c.B + (o.B-c.B)*f,
	}
}

// Scale multiplies every channel by s.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s}
}

// Hex formats the color as "#rrggbb", clamping each channel to [0, 1].
func (c Color) Hex() string {
	ch := func(v float32) int {
		return int(Clamp01(float64(v))*255 + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", ch(c.R), ch(c.G), ch(c.B))
}

// Vec3 returns the color as a vector, convenient for GPU marshaling.
func (c Color) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// Viewport is the pixel size of the drawable area a scene is mounted into.
type Viewport struct {
	Width  int
	Height int
}

// Aspect returns width/height, or 1 for a degenerate viewport.
//
// Returns:
//   - float32: the aspect ratio
func (v Viewport) Aspect() float32 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// Empty reports whether the viewport has no drawable area (minimized window).
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}
