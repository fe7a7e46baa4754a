package main

import (
	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Input tuning for the desktop viewer.
const (
	scrollStep  = 0.02 // progress per wheel notch
	keyStep     = 0.05 // progress per arrow key
	pageStep    = 0.25 // progress per page key
	zoomStep    = 0.05 // zoom factor per wheel notch while shift is held
	panPerPixel = 0.01 // world units per dragged pixel
	minZoom     = 0.25
	maxZoom     = 4.0
)

// inputSink is the part of the engine the viewer drives.
type inputSink interface {
	SetProgress(progress float64)
	SetPhase(phase int)
	SetHeroMode(hero bool)
	SetZoom(zoom float64)
	SetPan(pan mgl32.Vec2)
}

// controller turns window events into scene input. Progress stands in for the page scroll
// fraction and always carries the phase derived from it.
type controller struct {
	sink inputSink

	progress float64
	hero     bool
	zoom     float64
	pan      mgl32.Vec2
	shift    bool

	quit func()
}

func newController(sink inputSink, hero bool, quit func()) *controller {
	c := &controller{sink: sink, hero: hero, zoom: 1, quit: quit}
	c.sink.SetHeroMode(hero)
	c.setProgress(0)
	return c
}

func (c *controller) setProgress(p float64) {
	c.progress = common.Clamp01(p)
	c.sink.SetProgress(c.progress)
	c.sink.SetPhase(common.PhaseFromProgress(c.progress))
}

// scroll scrubs progress, or zooms while shift is held. Wheel up moves back toward the hero.
func (c *controller) scroll(delta float32) {
	if c.shift {
		c.zoom = common.Clamp(c.zoom-float64(delta)*zoomStep, minZoom, maxZoom)
		c.sink.SetZoom(c.zoom)
		return
	}
	c.setProgress(c.progress - float64(delta)*scrollStep)
}

func (c *controller) keyDown(key uint32) {
	if phase, ok := common.PhaseKey(key); ok {
		c.setProgress(common.ProgressForPhase(phase))
		return
	}
	switch key {
	case common.KeyLeftShift, common.KeyRightShift:
		c.shift = true
	case common.KeyH, common.KeySpace:
		c.hero = !c.hero
		c.sink.SetHeroMode(c.hero)
	case common.KeyR:
		c.resetView()
	case common.KeyDown, common.KeyRight:
		c.setProgress(c.progress + keyStep)
	case common.KeyUp, common.KeyLeft:
		c.setProgress(c.progress - keyStep)
	case common.KeyPageDown:
		c.setProgress(c.progress + pageStep)
	case common.KeyPageUp:
		c.setProgress(c.progress - pageStep)
	case common.KeyHome:
		c.setProgress(0)
	case common.KeyEnd:
		c.setProgress(1)
	case common.KeyEsc:
		if c.quit != nil {
			c.quit()
		}
	}
}

func (c *controller) keyUp(key uint32) {
	if key == common.KeyLeftShift || key == common.KeyRightShift {
		c.shift = false
	}
}

// drag pans the view. Screen y grows downward.
func (c *controller) drag(dx, dy float32) {
	c.pan = c.pan.Add(mgl32.Vec2{dx * panPerPixel, -dy * panPerPixel})
	c.sink.SetPan(c.pan)
}

// resetView drops the user zoom and pan.
func (c *controller) resetView() {
	c.zoom = 1
	c.pan = mgl32.Vec2{}
	c.sink.SetZoom(c.zoom)
	c.sink.SetPan(c.pan)
}
