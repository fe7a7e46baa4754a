package profiler

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestTickLogsOncePerInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(slog.New(slog.NewTextHandler(&buf, nil)))

	start := time.Unix(1000, 0)
	now := start
	p.now = func() time.Time { return now }
	p.lastTime = start

	for i := range 59 {
		now = start.Add(time.Duration(i+1) * time.Second / 60)
		if _, logged := p.Tick(); logged {
			t.Fatalf("logged early at frame %d", i)
		}
	}
	now = start.Add(time.Second)
	s, logged := p.Tick()
	if !logged {
		t.Fatal("expected stats after one second")
	}
	if s.FPS < 59.9 || s.FPS > 60.1 {
		t.Fatalf("fps = %v, want 60", s.FPS)
	}
	out := buf.String()
	if !strings.Contains(out, "component=profiler") || !strings.Contains(out, "fps=") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestSetIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(nil)
	p.SetInterval(0)
	if p.updateInterval != time.Second {
		t.Fatalf("interval changed to %v", p.updateInterval)
	}
	p.SetInterval(250 * time.Millisecond)
	if p.updateInterval != 250*time.Millisecond {
		t.Fatalf("interval = %v", p.updateInterval)
	}
}
