package common

import "testing"

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"#ff8000", "#ff8000", false},
		{"2dd4bf", "#2dd4bf", false},
		{"  #FFFFFF ", "#ffffff", false},
		{"#fff", "", true},
		{"#gg0000", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseHexColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.Hex() != tt.want {
				t.Fatalf("Hex = %q, want %q", c.Hex(), tt.want)
			}
		})
	}
}

func TestHexClampsChannels(t *testing.T) {
	if got := (Color{R: 2, G: -1, B: 0.5}).Hex(); got != "#ff0080" {
		t.Fatalf("Hex = %q", got)
	}
}

func TestViewportAspect(t *testing.T) {
	if got := (Viewport{Width: 1920, Height: 1080}).Aspect(); got != float32(1920)/1080 {
		t.Fatalf("aspect = %v", got)
	}
	if got := (Viewport{Width: 0, Height: 10}).Aspect(); got != 1 {
		t.Fatalf("degenerate aspect = %v", got)
	}
	if !(Viewport{Width: 10}).Empty() {
		t.Fatal("zero height not empty")
	}
}
