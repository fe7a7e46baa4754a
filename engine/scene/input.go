package scene

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Input is the snapshot of the external signals taken at the start of a tick. Values are
// stored raw; each consumer clamps what it reads.
type Input struct {
	Progress float64
	Phase    int
	HeroMode bool
	Zoom     float64
	Pan      mgl32.Vec2
}

// InputBuffer is written by any goroutine and read once per tick by the loop.
// The loop is the only writer of animated state; setters here never touch it.
type InputBuffer struct {
	mu *sync.Mutex
	in Input
}

// NewInputBuffer creates an empty buffer: progress 0, phase 0, hero mode off.
//
// Returns:
//   - *InputBuffer: the buffer
func NewInputBuffer() *InputBuffer {
	return &InputBuffer{mu: &sync.Mutex{}}
}

// SetProgress records the latest scroll progress.
func (b *InputBuffer) SetProgress(progress float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.in.Progress = progress
}

// SetPhase records the latest construction phase.
func (b *InputBuffer) SetPhase(phase int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.in.Phase = phase
}

// SetHeroMode records whether the hero section is on screen.
func (b *InputBuffer) SetHeroMode(hero bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.in.HeroMode = hero
}

// SetZoom records the user dolly factor.
func (b *InputBuffer) SetZoom(zoom float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.in.Zoom = zoom
}

// SetPan records the user pan offset.
func (b *InputBuffer) SetPan(pan mgl32.Vec2) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.in.Pan = pan
}

// Set replaces the whole snapshot.
func (b *InputBuffer) Set(in Input) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.in = in
}

// Snapshot returns the current values.
//
// Returns:
//   - Input: a copy of the buffered input
func (b *InputBuffer) Snapshot() Input {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.in
}
