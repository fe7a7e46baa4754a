// Package environment supplies the always-on background: sky gradient, fog, ground plane and
// base ambient light, plus the slow perpetual motion of drifting cloud masses and a twinkling
// star field. Everything is a function of elapsed time and the seed; scroll and phase never
// reach this package.
package environment

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/scenegraph"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshGround is the mesh key of the ground plane.
const MeshGround = "environment/ground"

// groundThickness keeps the ground top flush with y=0.
const groundThickness = 0.05

// Cloud is one drifting cloud mass at the current tick.
type Cloud struct {
	Position mgl32.Vec3
	Scale    float32
	Opacity  float32
}

// Star is one star at the current tick.
type Star struct {
	Position   mgl32.Vec3
	Size       float32
	Brightness float32 // in [1-2*TwinkleAmplitude, 1]
}

// State is the environment at one tick.
type State struct {
	Zenith   common.Color
	Horizon  common.Color
	FogColor common.Color
	FogNear  float32
	FogFar   float32
	Ground   common.Color
	Ambient  float32 // base ambient intensity including breathing
	Elapsed  float64
	Clouds   []Cloud
	Stars    []Star
}

// Environment is the background compositor.
type Environment interface {
	// Update recomputes the animated state from the tick's elapsed time.
	//
	// Parameters:
	//   - t: the tick time; only Elapsed is read
	Update(t clock.Time)

	// State returns a copy of the state computed by the last Update.
	//
	// Returns:
	//   - State: the environment state
	State() State

	// Params returns the environment parameters.
	//
	// Returns:
	//   - Params: the parameters
	Params() Params

	// Meshes returns the static environment meshes keyed by mesh name.
	//
	// Returns:
	//   - map[string]geometry.Mesh: the meshes
	Meshes() map[string]geometry.Mesh

	// Attach registers the ground node in arena under parent.
	//
	// Parameters:
	//   - arena: the scene arena
	//   - parent: the parent node, or scenegraph.Root
	//
	// Returns:
	//   - error: error if the node cannot be added
	Attach(arena scenegraph.Arena, parent scenegraph.Handle) error

	// Sprites appends the clouds and the stars as GPU sprites to the two slices.
	//
	// Parameters:
	//   - clouds: slice receiving the cloud sprites
	//   - stars: slice receiving the star sprites
	//
	// Returns:
	//   - []GPUSprite: the extended cloud slice
	//   - []GPUSprite: the extended star slice
	Sprites(clouds, stars []GPUSprite) ([]GPUSprite, []GPUSprite)

	// Uniform returns the sky uniform for the last Update.
	//
	// Returns:
	//   - GPUSkyUniform: the uniform block
	Uniform() GPUSkyUniform
}

// cloudSeed is the fixed part of a cloud; its position at any time derives from it.
type cloudSeed struct {
	origin  mgl32.Vec3
	speed   float64 // world units per second of cloud time
	scale   float32
	opacity float32
}

type starSeed struct {
	position mgl32.Vec3
	size     float32
	rate     float64
	phase    float64
}

type environmentImpl struct {
	mu *sync.Mutex

	params Params
	seed   uint64
	clouds []cloudSeed
	stars  []starSeed
	state  State
}

var _ Environment = &environmentImpl{}

// NewEnvironment seeds the clouds and the stars and computes the state at time zero.
//
// Parameters:
//   - options: functional options overriding the defaults
//
// Returns:
//   - Environment: the environment
func NewEnvironment(options ...EnvironmentBuilderOption) Environment {
	e := &environmentImpl{
		mu:     &sync.Mutex{},
		params: DefaultParams(),
		seed:   1,
	}
	for _, option := range options {
		option(e)
	}
	e.params = e.params.sanitized()
	e.seedSky()
	e.update(0)
	return e
}

func (e *environmentImpl) seedSky() {
	rng := rand.New(rand.NewPCG(e.seed, 0x5eed))
	p := e.params
	span := func(lo, hi float64) float64 { return lo + (hi-lo)*rng.Float64() }

	e.clouds = make([]cloudSeed, p.CloudCount)
	for i := range e.clouds {
		e.clouds[i] = cloudSeed{
			origin: mgl32.Vec3{
				float32(span(-p.CloudBound, p.CloudBound)),
				float32(span(p.CloudHeightMin, p.CloudHeightMax)),
				float32(span(-p.CloudBound, p.CloudBound)),
			},
			speed:   span(0.5, 1.5) * p.CloudSpeed,
			scale:   float32(span(8, 16)),
			opacity: float32(span(0.15, 0.3)),
		}
	}

	e.stars = make([]starSeed, p.StarCount)
	for i := range e.stars {
		// upper hemisphere, kept slightly above the horizon
		y := span(0.1, 1)
		az := rng.Float64() * 2 * math.Pi
		r := math.Sqrt(1 - y*y)
		dir := mgl32.Vec3{float32(r * math.Cos(az)), float32(y), float32(r * math.Sin(az))}
		e.stars[i] = starSeed{
			position: dir.Mul(float32(p.StarRadius)),
			size:     float32(span(0.3, 0.8)),
			rate:     span(0.5, 2),
			phase:    rng.Float64() * 2 * math.Pi,
		}
	}
}

// wrap maps x into [-bound, bound).
func wrap(x, bound float64) float64 {
	w := 2 * bound
	m := math.Mod(x+bound, w)
	if m < 0 {
		m += w
	}
	return m - bound
}

func (e *environmentImpl) update(elapsed float64) {
	p := e.params
	cloudTime := elapsed * p.CloudTimeScale

	clouds := e.state.Clouds[:0]
	for _, c := range e.clouds {
		pos := c.origin
		pos[0] = float32(wrap(float64(c.origin.X())+c.speed*cloudTime, p.CloudBound))
		clouds = append(clouds, Cloud{Position: pos, Scale: c.scale, Opacity: c.opacity})
	}
	stars := e.state.Stars[:0]
	for _, s := range e.stars {
		b := 1 - p.TwinkleAmplitude + p.TwinkleAmplitude*math.Sin(elapsed*s.rate+s.phase)
		stars = append(stars, Star{Position: s.position, Size: s.size, Brightness: float32(b)})
	}

	e.state = State{
		Zenith:   p.Zenith,
		Horizon:  p.Horizon,
		FogColor: p.FogColor,
		FogNear:  p.FogNear,
		FogFar:   p.FogFar,
		Ground:   p.GroundColor,
		Ambient:  float32(p.AmbientBase + p.AmbientAmplitude*math.Sin(elapsed*p.AmbientFrequency)),
		Elapsed:  elapsed,
		Clouds:   clouds,
		Stars:    stars,
	}
}

func (e *environmentImpl) Update(t clock.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.update(math.Max(0, common.Finite(t.Elapsed, e.state.Elapsed)))
}

func (e *environmentImpl) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.Clouds = append([]Cloud(nil), s.Clouds...)
	s.Stars = append([]Star(nil), s.Stars...)
	return s
}

func (e *environmentImpl) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

func (e *environmentImpl) Meshes() map[string]geometry.Mesh {
	e.mu.Lock()
	defer e.mu.Unlock()
	size := float32(e.params.GroundSize)
	return map[string]geometry.Mesh{
		MeshGround: geometry.Box(mgl32.Vec3{size, groundThickness, size}, e.params.GroundColor),
	}
}

func (e *environmentImpl) Attach(arena scenegraph.Arena, parent scenegraph.Handle) error {
	tr := scenegraph.IdentityTransform()
	tr.Position = mgl32.Vec3{0, -groundThickness, 0}
	if _, err := arena.Add(scenegraph.NodeDesc{
		Name:      MeshGround,
		Parent:    parent,
		Transform: tr,
		Mesh:      MeshGround,
		Layer:     scenegraph.LayerOpaque,
		Opacity:   1,
		Visible:   true,
	}); err != nil {
		return fmt.Errorf("attach ground: %w", err)
	}
	return nil
}

func (e *environmentImpl) Sprites(clouds, stars []GPUSprite) ([]GPUSprite, []GPUSprite) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cc := e.params.CloudColor
	for _, c := range e.state.Clouds {
		clouds = append(clouds, GPUSprite{
			Position: [3]float32(c.Position),
			Size:     c.Scale,
			Color:    [4]float32{cc.R, cc.G, cc.B, c.Opacity},
		})
	}
	sc := e.params.StarColor
	for _, s := range e.state.Stars {
		stars = append(stars, GPUSprite{
			Position: [3]float32(s.Position),
			Size:     s.Size,
			Color:    [4]float32{sc.R, sc.G, sc.B, s.Brightness},
		})
	}
	return clouds, stars
}

func (e *environmentImpl) Uniform() GPUSkyUniform {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	return GPUSkyUniform{
		Zenith:   [3]float32{s.Zenith.R, s.Zenith.G, s.Zenith.B},
		Time:     float32(s.Elapsed),
		Horizon:  [3]float32{s.Horizon.R, s.Horizon.G, s.Horizon.B},
		FogNear:  s.FogNear,
		FogColor: [3]float32{s.FogColor.R, s.FogColor.G, s.FogColor.B},
		FogFar:   s.FogFar,
	}
}
