package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// dampSnapEpsilon is the distance below which Damp and DampVec3 land exactly on the target.
const dampSnapEpsilon = 1e-4

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Clamp restricts v to the closed interval [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - float64: v limited to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 restricts v to [0, 1] and maps NaN and infinities to a finite value.
// NaN becomes 0, +Inf becomes 1 and -Inf becomes 0.
//
// Parameters:
//   - v: the value to sanitize
//
// Returns:
//   - float64: a finite value in [0, 1]
func Clamp01(v float64) float64 {
	return Clamp(Finite(v, 0), 0, 1)
}

// Finite returns v when it is a finite number, fallback when it is NaN,
// and the signed max float64 when it is infinite.
//
// Parameters:
//   - v: the value to check
//   - fallback: the value returned for NaN
//
// Returns:
//   - float64: a finite value
func Finite(v, fallback float64) float64 {
	switch {
	case math.IsNaN(v):
		return fallback
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

// Lerp linearly interpolates between a and b.
//
// Parameters:
//   - a: start value
//   - b: end value
//   - t: interpolation factor (not clamped)
//
// Returns:
//   - float64: a + (b-a)*t
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseInOutCubic eases t in [0, 1] with a cubic acceleration in the first half and a
// cubic deceleration in the second half. Inputs are clamped to [0, 1].
//
// Parameters:
//   - t: the linear parameter
//
// Returns:
//   - float64: the eased parameter, 0 at t=0, 0.5 at t=0.5 and 1 at t=1
func EaseInOutCubic(t float64) float64 {
	t = Clamp(t, 0, 1)
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

// DampFactor returns the exponential smoothing factor for one step of dt seconds at rate k.
// The factor is min(1, dt*k) so a long frame lands on the target instead of overshooting.
//
// Parameters:
//   - dt: frame delta in seconds
//   - k: smoothing rate per second
//
// Returns:
//   - float64: the interpolation factor in [0, 1]
func DampFactor(dt, k float64) float64 {
	return Clamp(dt*k, 0, 1)
}

// Damp advances current toward target by one exponential smoothing step.
// Values within a small epsilon of the target snap onto it so steady states are exact.
//
// Parameters:
//   - current: the committed value from the previous tick
//   - target: the value being approached
//   - dt: frame delta in seconds
//   - k: smoothing rate per second
//
// Returns:
//   - float64: the new committed value
func Damp(current, target, dt, k float64) float64 {
	next := Lerp(current, target, DampFactor(dt, k))
	if math.Abs(target-next) < dampSnapEpsilon {
		return target
	}
	return next
}

// DampVec3 advances current toward target by one exponential smoothing step and bounds the
// length of the step to maxStep. A maxStep <= 0 disables the bound.
//
// Parameters:
//   - current: the committed vector from the previous tick
//   - target: the vector being approached
//   - dt: frame delta in seconds
//   - k: smoothing rate per second
//   - maxStep: the largest distance the vector may travel this step
//
// Returns:
//   - mgl32.Vec3: the new committed vector
func DampVec3(current, target mgl32.Vec3, dt, k, maxStep float64) mgl32.Vec3 {
	step := target.Sub(current).Mul(float32(DampFactor(dt, k)))
	if maxStep > 0 {
		if l := float64(step.Len()); l > maxStep {
			step = step.Mul(float32(maxStep / l))
		}
	}
	next := current.Add(step)
	if float64(target.Sub(next).Len()) < dampSnapEpsilon && (maxStep <= 0 || float64(target.Sub(current).Len()) <= maxStep) {
		return target
	}
	return next
}

// LerpVec3 linearly interpolates between two vectors.
//
// Parameters:
//   - a: start vector
//   - b: end vector
//   - t: interpolation factor
//
// Returns:
//   - mgl32.Vec3: the interpolated vector
func LerpVec3(a, b mgl32.Vec3, t float64) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(float32(t)))
}

// FiniteVec3 reports whether every component of v is a finite number.
//
// Parameters:
//   - v: the vector to check
//
// Returns:
//   - bool: true if no component is NaN or infinite
func FiniteVec3(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Perspective creates a perspective projection matrix for WebGPU clip space, where depth maps to [0, 1].
// mgl32.Perspective targets the OpenGL [-1, 1] range and is not used for that reason.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// ModelMatrix composes translation * yaw(Y) * pitch(X) * roll(Z) * scale.
//
// Parameters:
//   - position: translation in parent space
//   - rotation: Euler angles in radians (pitch X, yaw Y, roll Z)
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the column-major model matrix
func ModelMatrix(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(mgl32.HomogRotate3DY(rotation.Y())).
		Mul4(mgl32.HomogRotate3DX(rotation.X())).
		Mul4(mgl32.HomogRotate3DZ(rotation.Z())).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}
