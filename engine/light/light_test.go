package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/director"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/environment"
	"github.com/go-gl/mathgl/mgl32"
)

func TestNormalize3(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float32
		want    [3]float32
	}{
		{"axis", 0, 0, 5, [3]float32{0, 0, 1}},
		{"diagonal", 3, 4, 0, [3]float32{0.6, 0.8, 0}},
		{"zero falls back to up", 0, 0, 0, [3]float32{0, 1, 0}},
		{"nan falls back to up", float32(math.NaN()), 1, 0, [3]float32{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize3(tt.x, tt.y, tt.z)
			for i := range got {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-6 {
					t.Fatalf("normalize3 = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDisabledLightMarshalsDark(t *testing.T) {
	r := NewRig()
	r.Sun().SetIntensity(2)
	r.Sun().SetEnabled(false)
	if u := r.Uniform(); u.SunIntensity != 0 {
		t.Fatalf("disabled sun intensity = %v", u.SunIntensity)
	}
	r.Sun().SetEnabled(true)
	if u := r.Uniform(); u.SunIntensity != 2 {
		t.Fatalf("sun intensity = %v", u.SunIntensity)
	}
	r.Ambient().SetIntensity(-1)
	if r.Ambient().Intensity() != 0 {
		t.Fatal("negative intensity accepted")
	}
}

func TestRigApply(t *testing.T) {
	env := environment.NewEnvironment().State()
	mood := director.LightState{
		SunPosition:  mgl32.Vec3{0, 10, 0},
		SunIntensity: 1.5,
		SunColor:     common.MustHexColor("#ffb870"),
		Ambient:      0.45,
		Hemisphere:   0.4,
	}
	r := NewRig()
	r.Apply(mood, env)

	if d := r.Sun().Direction(); d != [3]float32{0, 1, 0} {
		t.Fatalf("sun direction = %v", d)
	}
	if r.Sun().Color() != mood.SunColor {
		t.Fatalf("sun color = %v", r.Sun().Color())
	}
	want := 0.5 * (mood.Ambient + env.Ambient)
	if math.Abs(float64(r.Ambient().Intensity()-want)) > 1e-6 {
		t.Fatalf("ambient = %v, want %v", r.Ambient().Intensity(), want)
	}
	if r.Hemisphere().GroundColor() != env.Ground || r.Hemisphere().Intensity() != 0.4 {
		t.Fatal("hemisphere not driven by the environment and the mood")
	}
}

func TestUniformMarshalOffsets(t *testing.T) {
	u := GPULightUniform{
		SunDirection:        [3]float32{0, 1, 0},
		SunIntensity:        1.25,
		HemisphereIntensity: 0.5,
		GroundColor:         [3]float32{0.1, 0.2, 0.3},
	}
	buf := u.Marshal()
	if len(buf) != u.Size() || u.Size() != 80 {
		t.Fatalf("size = %d, marshal = %d", u.Size(), len(buf))
	}
	read := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	if read(12) != 1.25 || read(44) != 0.5 || read(72) != 0.3 || read(4) != 1 {
		t.Fatalf("fields at wrong offsets: %v %v %v %v", read(12), read(44), read(72), read(4))
	}
}
