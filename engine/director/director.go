// Package director maps scroll progress, hero mode and construction phase to a camera pose and a
// light rig. It owns two driving modes, an ambient orbit for the idle hero section and a
// keyframe path traversal for scrolling, and smooths every output toward its per-tick target so
// discontinuous inputs never pop.
package director

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/camera"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
	"github.com/go-gl/mathgl/mgl32"
)

// Mode is the camera driving mode.
type Mode uint8

const (
	ModePath Mode = iota
	ModeOrbit
)

func (m Mode) String() string {
	if m == ModeOrbit {
		return "orbit"
	}
	return "path"
}

// Input is the per-tick snapshot of the external signals.
type Input struct {
	Progress float64    // scroll progress, sanitized to [0, 1]
	Phase    int        // construction phase, clamped to [0, 4]
	HeroMode bool       // the hero section is on screen
	Zoom     float64    // user dolly factor, 0 means none
	Pan      mgl32.Vec2 // user pan offset
}

// State is the committed director output of one tick.
type State struct {
	Mode     Mode
	Position mgl32.Vec3 // smoothed eye
	LookAt   mgl32.Vec3 // smoothed target
	Fov      float32    // smoothed fov in degrees
	Target   Pose       // the unsmoothed pose this tick approached
	Segment  int        // path segment, 0 in orbit mode
	EasedT   float64    // eased parameter inside the segment
	Progress float64    // sanitized progress
	Phase    int        // clamped phase
	Light    LightState
}

// Director is the camera and lighting controller.
type Director interface {
	camera.Controller

	// Update advances the director by one tick.
	//
	// Parameters:
	//   - t: the tick time
	//   - in: the input snapshot sampled at the start of the tick
	//
	// Returns:
	//   - State: the committed state after smoothing
	Update(t clock.Time, in Input) State

	// State returns the last committed state.
	//
	// Returns:
	//   - State: the committed state
	State() State

	// Keyframes returns a copy of the camera path.
	//
	// Returns:
	//   - []Keyframe: the keyframes
	Keyframes() []Keyframe

	// Controls returns the active interaction policy.
	//
	// Returns:
	//   - Controls: the policy
	Controls() Controls

	// SetControls swaps the interaction policy, for example after a viewport resize.
	//
	// Parameters:
	//   - c: the new policy
	SetControls(c Controls)

	// MaxStep returns the largest distance the eye may travel in a tick of dt seconds.
	//
	// Parameters:
	//   - dt: tick delta in seconds
	//
	// Returns:
	//   - float64: maxSpeed * dt
	MaxStep(dt float64) float64

	// Reset forgets the committed state; the next Update snaps to its target.
	Reset()
}

type directorImpl struct {
	mu *sync.Mutex

	keyframes      []Keyframe
	orbit          Orbit
	breathing      Breathing
	moods          []LightMood
	lightBreathing LightBreathing
	controls       Controls

	smoothing      float64 // exponential rate k
	maxSpeed       float64 // world units per second
	heroThreshold  float64 // orbit mode below this progress
	orbitAngle     float64
	initialized    bool
	state          State
	rig            lightRig
}

var _ Director = &directorImpl{}

// NewDirector creates a Director with the default path, orbit, moods and desktop controls.
//
// Parameters:
//   - options: functional options overriding the defaults
//
// Returns:
//   - Director: the director
func NewDirector(options ...DirectorBuilderOption) Director {
	d := &directorImpl{
		mu:             &sync.Mutex{},
		keyframes:      DefaultKeyframes(),
		orbit:          DefaultOrbit(),
		breathing:      DefaultBreathing(),
		moods:          DefaultMoods(),
		lightBreathing: DefaultLightBreathing(),
		controls:       DesktopControls(),
		smoothing:      2,
		maxSpeed:       40,
		heroThreshold:  0.05,
	}
	for _, option := range options {
		option(d)
	}
	first := Pose{}
	if len(d.keyframes) > 0 {
		k := d.keyframes[0]
		first = Pose{Position: k.Position, LookAt: k.LookAt, Fov: k.Fov}
	}
	d.state = State{Position: first.Position, LookAt: first.LookAt, Fov: first.Fov, Target: first}
	return d
}

func (d *directorImpl) Position() mgl32.Vec3 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Position
}

func (d *directorImpl) Target() mgl32.Vec3 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.LookAt
}

func (d *directorImpl) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *directorImpl) Keyframes() []Keyframe {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Keyframe(nil), d.keyframes...)
}

func (d *directorImpl) Controls() Controls {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.controls
}

func (d *directorImpl) SetControls(c Controls) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.controls = c
}

func (d *directorImpl) MaxStep(dt float64) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxSpeed * dt
}

func (d *directorImpl) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initialized = false
	d.orbitAngle = 0
}

func (d *directorImpl) Update(t clock.Time, in Input) State {
	d.mu.Lock()
	defer d.mu.Unlock()

	progress := common.Clamp01(in.Progress)
	phase := common.ClampPhase(in.Phase)
	dt := math.Max(0, common.Finite(t.Delta, 0))

	mode := ModePath
	if in.HeroMode && progress < d.heroThreshold {
		mode = ModeOrbit
	}

	var target Pose
	segment, eased := 0, 0.0
	switch mode {
	case ModeOrbit:
		if d.controls.AutoRotate {
			d.orbitAngle = math.Mod(d.orbitAngle+d.orbit.Rate*dt, 2*math.Pi)
		}
		target = d.orbit.Pose(d.orbitAngle, t.Elapsed)
	default:
		target, segment, eased = Sample(d.keyframes, progress)
		target.Position = target.Position.Add(d.breathing.Offset(t.Elapsed))
	}
	target = d.controls.apply(target, in.Zoom, in.Pan)

	mood := moodFor(d.moods, phase)
	if !d.initialized {
		// Nothing has been presented yet, so the first tick lands on its target.
		d.state.Position, d.state.LookAt, d.state.Fov = target.Position, target.LookAt, target.Fov
		d.rig.snap(mood)
		d.initialized = true
	} else {
		d.state.Position = common.DampVec3(d.state.Position, target.Position, dt, d.smoothing, d.maxSpeed*dt)
		d.state.LookAt = common.DampVec3(d.state.LookAt, target.LookAt, dt, d.smoothing, 0)
		d.state.Fov = float32(common.Damp(float64(d.state.Fov), float64(target.Fov), dt, d.smoothing))
		d.rig.step(mood, dt, d.smoothing)
	}

	d.state.Mode = mode
	d.state.Target = target
	d.state.Segment = segment
	d.state.EasedT = eased
	d.state.Progress = progress
	d.state.Phase = phase
	d.state.Light = d.rig.state(d.lightBreathing, t.Elapsed)
	return d.state
}
