// Package particle simulates drifting point clouds: an infinite fountain of particles rising
// through a box, each with a sinusoidal horizontal drift, reinjected at the bottom once it
// passes the ceiling. The three visual presets differ only in their Params.
package particle

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
	"github.com/go-gl/mathgl/mgl32"
)

// wrapFactor is how far past the spread a particle may drift horizontally before it is moved
// back inside.
const wrapFactor = 1.2

// reinjectBand is the fraction of the spread above the floor where reinjected particles appear.
const reinjectBand = 0.05

// Field is one particle cloud.
type Field interface {
	// Update advances every particle by one tick.
	//
	// Parameters:
	//   - t: the tick time
	Update(t clock.Time)

	// Params returns the field parameters.
	//
	// Returns:
	//   - Params: the parameters
	Params() Params

	// Count returns the fixed particle count.
	//
	// Returns:
	//   - int: the count
	Count() int

	// Positions appends the current positions to dst.
	//
	// Parameters:
	//   - dst: slice to append to
	//
	// Returns:
	//   - []mgl32.Vec3: the extended slice
	Positions(dst []mgl32.Vec3) []mgl32.Vec3

	// Instances appends the GPU instance data to dst.
	//
	// Parameters:
	//   - dst: slice to append to
	//
	// Returns:
	//   - []GPUParticle: the extended slice
	Instances(dst []GPUParticle) []GPUParticle

	// Uniform returns the per-field GPU uniform at the last update.
	//
	// Returns:
	//   - GPUFieldUniform: the uniform block
	Uniform() GPUFieldUniform

	// Reinjected returns how many particles have been reinjected since creation.
	//
	// Returns:
	//   - uint64: the reinjection count
	Reinjected() uint64

	// Reset reseeds the field to its initial distribution.
	Reset()
}

type fieldImpl struct {
	mu *sync.Mutex

	params     Params
	seed       uint64
	drift      float64 // horizontal drift amplitude as a fraction of speed
	rng        *rand.Rand
	positions  []mgl32.Vec3
	velocities []mgl32.Vec3
	phases     []float64
	elapsed    float64
	reinjected uint64
}

var _ Field = &fieldImpl{}

// NewField creates a field of params.Count particles seeded inside its box.
// Negative counts are treated as zero and a non-positive spread as 1.
//
// Parameters:
//   - params: the field parameters
//   - options: functional options
//
// Returns:
//   - Field: the field
func NewField(params Params, options ...FieldBuilderOption) Field {
	params.Count = max(params.Count, 0)
	if !(params.Spread > 0) || math.IsInf(params.Spread, 0) {
		params.Spread = 1
	}
	if math.IsNaN(params.Speed) || math.IsInf(params.Speed, 0) {
		params.Speed = 0
	}
	params.Speed = math.Abs(params.Speed)
	f := &fieldImpl{
		mu:     &sync.Mutex{},
		params: params,
		seed:   1,
		drift:  0.25,
	}
	for _, option := range options {
		option(f)
	}
	f.seedParticles()
	return f
}

// seedParticles fills the arrays from a fresh generator. Caller must hold the mutex or own f.
func (f *fieldImpl) seedParticles() {
	f.rng = rand.New(rand.NewPCG(f.seed, uint64(f.params.Count)))
	n := f.params.Count
	f.positions = make([]mgl32.Vec3, n)
	f.velocities = make([]mgl32.Vec3, n)
	f.phases = make([]float64, n)
	s, floor, ceiling := f.params.Spread, f.params.Floor(), f.params.Ceiling()
	for i := range n {
		f.positions[i] = mgl32.Vec3{
			float32(f.uniform(-s, s)),
			heightIn(f.uniform(floor, ceiling), floor, ceiling),
			float32(f.uniform(-s, s)),
		}
		f.velocities[i] = f.velocity()
		f.phases[i] = f.rng.Float64() * 2 * math.Pi
	}
	f.elapsed = 0
	f.reinjected = 0
}

// heightIn clamps y to [lo, hi] and rounds it to a float32 that still lies inside the band.
func heightIn(y, lo, hi float64) float32 {
	v := float32(common.Clamp(y, lo, hi))
	if float64(v) < lo {
		v = math.Nextafter32(v, float32(math.Inf(1)))
	}
	if float64(v) > hi {
		v = math.Nextafter32(v, float32(math.Inf(-1)))
	}
	return v
}

func (f *fieldImpl) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*f.rng.Float64()
}

// velocity draws an upward-biased velocity: always rising, with a small horizontal component.
func (f *fieldImpl) velocity() mgl32.Vec3 {
	v := f.params.Speed
	return mgl32.Vec3{
		float32(v * 0.2 * (f.rng.Float64() - 0.5)),
		float32(v * (0.3 + 0.7*f.rng.Float64())),
		float32(v * 0.2 * (f.rng.Float64() - 0.5)),
	}
}

func (f *fieldImpl) Update(t clock.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	dt := math.Max(0, common.Finite(t.Delta, 0))
	f.elapsed = common.Finite(t.Elapsed, f.elapsed)
	s := f.params.Spread
	floor, ceiling := f.params.Floor(), f.params.Ceiling()
	amp := f.drift * f.params.Speed
	limit := float32(s * wrapFactor)

	for i := range f.positions {
		p, v, ph := f.positions[i], f.velocities[i], f.phases[i]
		dx := float64(v.X()) + amp*math.Sin(f.elapsed*0.6+ph)
		dz := float64(v.Z()) + amp*math.Cos(f.elapsed*0.45+ph)
		p[0] += float32(dx * dt)
		p[1] += float32(float64(v.Y()) * dt)
		p[2] += float32(dz * dt)

		if float64(p[1]) > ceiling {
			p[0] = float32(f.uniform(-s, s))
			p[1] = heightIn(floor+f.rng.Float64()*reinjectBand*s, floor, ceiling)
			p[2] = float32(f.uniform(-s, s))
			f.velocities[i] = f.velocity()
			f.reinjected++
		}
		if float64(p[1]) < floor {
			p[1] = heightIn(floor, floor, ceiling)
		}
		for _, k := range [2]int{0, 2} {
			if p[k] > limit || p[k] < -limit {
				p[k] = float32(f.uniform(-s, s))
			}
		}
		f.positions[i] = p
	}
}

func (f *fieldImpl) Params() Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params
}

func (f *fieldImpl) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.positions)
}

func (f *fieldImpl) Positions(dst []mgl32.Vec3) []mgl32.Vec3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append(dst, f.positions...)
}

func (f *fieldImpl) Instances(dst []GPUParticle) []GPUParticle {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.positions {
		dst = append(dst, GPUParticle{Position: [3]float32(p), Phase: float32(f.phases[i])})
	}
	return dst
}

func (f *fieldImpl) Uniform() GPUFieldUniform {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.params.Color
	return GPUFieldUniform{
		Color:     [3]float32{c.R, c.G, c.B},
		PointSize: f.params.Size,
		Opacity:   f.params.Opacity,
		Time:      float32(f.elapsed),
	}
}

func (f *fieldImpl) Reinjected() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reinjected
}

func (f *fieldImpl) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seedParticles()
}
