package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/config"
	"github.com/go-gl/mathgl/mgl32"
)

type recordingSink struct {
	progress float64
	phase    int
	hero     bool
	zoom     float64
	pan      mgl32.Vec2
}

func (s *recordingSink) SetProgress(p float64) { s.progress = p }
func (s *recordingSink) SetPhase(p int) { s.phase = p }
func (s *recordingSink) SetHeroMode(hero bool) { s.hero = hero }
func (s *recordingSink) SetZoom(zoom float64) { s.zoom = zoom }
func (s *recordingSink) SetPan(pan mgl32.Vec2) { s.pan = pan }

func TestControllerScrollKeepsPhaseInStep(t *testing.T) {
	sink := &recordingSink{}
	c := newController(sink, true, nil)
	if !sink.hero || sink.progress != 0 || sink.phase != 0 {
		t.Fatalf("initial input = %+v", sink)
	}

	for range 100 {
		c.scroll(-1)
	}
	if sink.progress != 1 {
		t.Fatalf("progress = %v, want clamp at 1", sink.progress)
	}
	if sink.phase != common.PhaseFromProgress(sink.progress) {
		t.Fatalf("phase %d out of step with progress %v", sink.phase, sink.progress)
	}

	c.scroll(1000)
	if sink.progress != 0 || sink.phase != 0 {
		t.Fatalf("progress %v phase %d after scrolling back", sink.progress, sink.phase)
	}
}

func TestControllerKeys(t *testing.T) {
	tests := []struct {
		name      string
		keys      []uint32
		wantPhase int
		wantHero  bool
	}{
		{name: "phase key", keys: []uint32{common.Key3}, wantPhase: 3, wantHero: true},
		{name: "end", keys: []uint32{common.KeyEnd}, wantPhase: common.PhaseMax, wantHero: true},
		{name: "end then home", keys: []uint32{common.KeyEnd, common.KeyHome}, wantPhase: 0, wantHero: true},
		{name: "page down", keys: []uint32{common.KeyPageDown}, wantPhase: 1, wantHero: true},
		{name: "hero toggle", keys: []uint32{common.KeyH}, wantPhase: 0, wantHero: false},
		{name: "hero toggle twice", keys: []uint32{common.KeyH, common.KeySpace}, wantPhase: 0, wantHero: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			c := newController(sink, true, nil)
			for _, k := range tt.keys {
				c.keyDown(k)
			}
			if sink.phase != tt.wantPhase {
				t.Errorf("phase = %d, want %d", sink.phase, tt.wantPhase)
			}
			if sink.hero != tt.wantHero {
				t.Errorf("hero = %v, want %v", sink.hero, tt.wantHero)
			}
		})
	}
}

func TestControllerShiftScrollZooms(t *testing.T) {
	sink := &recordingSink{}
	c := newController(sink, false, nil)
	c.keyDown(common.KeyLeftShift)
	c.scroll(-2)
	if math.Abs(sink.zoom-1.1) > 1e-9 || sink.progress != 0 {
		t.Fatalf("zoom %v progress %v", sink.zoom, sink.progress)
	}
	c.keyUp(common.KeyLeftShift)
	c.scroll(-1)
	if sink.progress == 0 {
		t.Fatal("scroll after shift release did not scrub")
	}

	c.drag(100, 50)
	if sink.pan != (mgl32.Vec2{1, -0.5}) {
		t.Fatalf("pan = %v", sink.pan)
	}
	c.keyDown(common.KeyR)
	if sink.zoom != 1 || sink.pan != (mgl32.Vec2{}) {
		t.Fatalf("reset left zoom %v pan %v", sink.zoom, sink.pan)
	}
}

func TestControllerEscQuits(t *testing.T) {
	quit := false
	c := newController(&recordingSink{}, true, func() { quit = true })
	c.keyDown(common.KeyEsc)
	if !quit {
		t.Fatal("Esc did not request close")
	}
}

func TestLoadConfigAppliesChangedFlagsOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.yaml")
	if err := os.WriteFile(path, []byte("window:\n  width: 800\n  height: 600\nrender:\n  frame_limit: 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, fs, err := parseFlags([]string{"--config", path, "--height", "500", "--msaa", "1", "--dof"})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(f, fs)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 500 {
		t.Fatalf("window = %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Render.MSAA != 1 || !cfg.PostFX.DepthOfField || !cfg.Render.VSync {
		t.Fatalf("render = %+v dof = %v", cfg.Render, cfg.PostFX.DepthOfField)
	}
	if cfg.Lifecycle.TickRate != 30 {
		t.Fatalf("tick rate = %v, want the frame limit", cfg.Lifecycle.TickRate)
	}
}

func TestLoadConfigRejectsBadFlags(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	f, fs, err := parseFlags([]string{"--msaa", "2"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(f, fs); err == nil {
		t.Fatal("msaa 2 accepted")
	}
}

func TestRendererOptions(t *testing.T) {
	if got := len(rendererOptions(config.Default().Render, nil)); got != 4 {
		t.Fatalf("options = %d", got)
	}
}
