package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
)

func TestNewEngineWindowClampsSize(t *testing.T) {
	tests := []struct {
		name string
		opts []WindowBuilderOption
		want common.Viewport
	}{
		{"defaults", nil, common.Viewport{Width: 1280, Height: 720}},
		{"too small", []WindowBuilderOption{WithSize(10, 10)}, common.Viewport{Width: 320, Height: 240}},
		{"too large", []WindowBuilderOption{WithSize(5000, 900), WithSizeLimits(0, 0, 1920, 0)}, common.Viewport{Width: 1920, Height: 900}},
		{"raised minimum", []WindowBuilderOption{WithSizeLimits(800, 0, 0, 0), WithSize(640, 720)}, common.Viewport{Width: 800, Height: 720}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newEngineWindow(tt.opts...).Viewport(); got != tt.want {
				t.Fatalf("viewport = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSetTitleIsTakenOnce(t *testing.T) {
	w := newEngineWindow(WithTitle("first"))
	if _, ok := w.takeTitle(); ok {
		t.Fatal("no title was set yet")
	}
	w.SetTitle("phase 2")
	title, ok := w.takeTitle()
	if !ok || title != "phase 2" || w.title != "phase 2" {
		t.Fatalf("takeTitle = %q %v", title, ok)
	}
	if _, ok := w.takeTitle(); ok {
		t.Fatal("title taken twice")
	}
}

func TestDragDeltas(t *testing.T) {
	w := newEngineWindow()
	var got [][2]float32
	ended := 0
	w.SetDragCallback(func(dx, dy float32) { got = append(got, [2]float32{dx, dy}) })
	w.SetDragEndCallback(func() { ended++ })

	w.cursorMoved(10, 10) // not dragging
	w.primaryButton(true, 10, 10)
	w.cursorMoved(15, 8)
	w.cursorMoved(15, 8) // no movement
	w.cursorMoved(20, 18)
	w.primaryButton(false, 20, 18)
	w.cursorMoved(40, 40)

	want := [][2]float32{{5, -2}, {5, 10}}
	if len(got) != len(want) {
		t.Fatalf("deltas = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("deltas = %v, want %v", got, want)
		}
	}
	if ended != 1 {
		t.Fatalf("drag end fired %d times", ended)
	}
}

func TestKeyDispatch(t *testing.T) {
	w := newEngineWindow()
	var down, up []uint32
	w.SetKeyDownCallback(func(k uint32) { down = append(down, k) })
	w.SetKeyUpCallback(func(k uint32) { up = append(up, k) })
	w.key(common.KeyH, true)
	w.key(common.KeyH, true)
	w.key(common.KeyH, false)
	if len(down) != 2 || len(up) != 1 || up[0] != common.KeyH {
		t.Fatalf("down %v up %v", down, up)
	}
}

func TestSetSizeNotifies(t *testing.T) {
	w := newEngineWindow()
	var seen common.Viewport
	w.SetResizeCallback(func(width, height int) { seen = common.Viewport{Width: width, Height: height} })
	w.setSize(800, 600)
	if seen != (common.Viewport{Width: 800, Height: 600}) || w.Viewport() != seen {
		t.Fatalf("seen %+v viewport %+v", seen, w.Viewport())
	}
}

func TestIsRunningWithoutPlatformWindow(t *testing.T) {
	w := newEngineWindow()
	if w.IsRunning() {
		t.Fatal("window without a platform window reports running")
	}
	if err := w.Close(); err == nil {
		t.Fatal("Close on an unspawned window should fail")
	}
}
