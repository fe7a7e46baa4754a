package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const testCamera = `struct CameraUniform {
    view_proj: mat4x4<f32>,
    position: vec3<f32>,
    far: f32,
};
`

const testMesh = `//@oxy:include frame

@group(1) @binding(0) var<storage, read> instances: array<vec4<f32>>;
@group(1) @binding(1) var samp: sampler;
@group(1) @binding(2) var tex: texture_2d<f32>;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) color: vec4<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = camera.view_proj * vec4<f32>(in.position, 1.0);
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

func testPreProcessor() PreProcessor {
	return NewPreProcessor(
		WithInclude("camera", testCamera),
		WithInclude("frame", "//@oxy:include camera\n@group(0) @binding(0) var<uniform> camera: CameraUniform;\n"),
	)
}

func TestPreProcessorExpandsNestedIncludesOnce(t *testing.T) {
	pp := testPreProcessor()
	out, err := pp.Process("//@oxy:include frame\n//@oxy:include camera\nfn f() {}")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if n := strings.Count(out, "struct CameraUniform"); n != 1 {
		t.Fatalf("CameraUniform declared %d times:\n%s", n, out)
	}
	if strings.Contains(out, includePrefix) {
		t.Fatalf("directive left in output:\n%s", out)
	}
	if got := pp.Includes(); len(got) != 2 || got[0] != "camera" || got[1] != "frame" {
		t.Fatalf("Includes = %v", got)
	}
}

func TestPreProcessorErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"unknown include", "//@oxy:include nope", "unknown include"},
		{"missing name", "//@oxy:include", "exactly one name"},
		{"extra argument", "//@oxy:include camera frame", "exactly one name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testPreProcessor().Process(tt.source)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestPreProcessorStopsCycles(t *testing.T) {
	pp := NewPreProcessor(
		WithInclude("a", "//@oxy:include b\nconst A = 1;"),
		WithInclude("b", "//@oxy:include a\nconst B = 2;"),
	)
	out, err := pp.Process("//@oxy:include a")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if strings.Count(out, "const A") != 1 || strings.Count(out, "const B") != 1 {
		t.Fatalf("unexpected expansion:\n%s", out)
	}
}

func TestNewShaderReflectsLayouts(t *testing.T) {
	s, err := NewShader("mesh", testMesh, testPreProcessor())
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if s.Key() != "mesh" || s.VertexEntryPoint() != "vs_main" || s.FragmentEntryPoint() != "fs_main" {
		t.Fatalf("key %q entries %q %q", s.Key(), s.VertexEntryPoint(), s.FragmentEntryPoint())
	}
	if s.Module() == nil || s.Module().WGSLDescriptor.Code != s.Source() {
		t.Fatal("module does not carry the expanded source")
	}

	layouts := s.VertexLayouts()
	if len(layouts) != 1 {
		t.Fatalf("got %d vertex layouts, want 1", len(layouts))
	}
	if layouts[0].ArrayStride != 40 || len(layouts[0].Attributes) != 3 {
		t.Fatalf("layout = %+v", layouts[0])
	}
	if a := layouts[0].Attributes[2]; a.Offset != 24 || a.Format != wgpu.VertexFormatFloat32x4 || a.ShaderLocation != 2 {
		t.Fatalf("color attribute = %+v", a)
	}

	frame := s.BindGroupLayoutDescriptor(0).Entries
	if len(frame) != 1 || frame[0].Buffer.Type != wgpu.BufferBindingTypeUniform || frame[0].Buffer.MinBindingSize != 80 {
		t.Fatalf("frame entries = %+v", frame)
	}
	if frame[0].Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
		t.Fatalf("visibility = %v", frame[0].Visibility)
	}

	group1 := s.BindGroupLayoutDescriptor(1).Entries
	if len(group1) != 3 {
		t.Fatalf("group 1 has %d entries", len(group1))
	}
	if group1[0].Buffer.Type != wgpu.BufferBindingTypeReadOnlyStorage || group1[0].Buffer.MinBindingSize != 16 {
		t.Errorf("storage entry = %+v", group1[0])
	}
	if group1[1].Sampler.Type != wgpu.SamplerBindingTypeFiltering {
		t.Errorf("sampler entry = %+v", group1[1])
	}
	if group1[2].Texture.SampleType != wgpu.TextureSampleTypeFloat || group1[2].Texture.ViewDimension != wgpu.TextureViewDimension2D {
		t.Errorf("texture entry = %+v", group1[2])
	}

	if name := s.BindGroupVarName(1, 2); name != "tex" {
		t.Errorf("BindGroupVarName = %q", name)
	}
	if b, ok := s.BindGroupFromVarName(1, "samp"); !ok || b != 1 {
		t.Errorf("BindGroupFromVarName = %d %v", b, ok)
	}
	if _, ok := s.BindGroupFromVarName(0, "missing"); ok {
		t.Error("found a variable that does not exist")
	}
}

func TestNewShaderRequiresBothStages(t *testing.T) {
	src := "@vertex\nfn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }"
	_, err := NewShader("half", src, nil)
	if !errors.Is(err, ErrMissingEntryPoint) {
		t.Fatalf("err = %v, want ErrMissingEntryPoint", err)
	}
}

func TestNewShaderPropagatesIncludeErrors(t *testing.T) {
	if _, err := NewShader("broken", "//@oxy:include nope", nil); err == nil {
		t.Fatal("expected an error for an unknown include")
	}
}

func TestTypeLayout(t *testing.T) {
	structs := structLayouts(parseStructs(`
struct Outer { inner: Inner, scale: f32, };
struct Inner { a: vec3<f32>, b: f32, };
struct Tail { count: u32, items: array<vec4f>, };
`))
	tests := []struct {
		typeName string
		want     layout
	}{
		{"f32", layout{4, 4}},
		{"vec2<f32>", layout{8, 8}},
		{"vec3f", layout{12, 16}},
		{"vec4<u32>", layout{16, 16}},
		{"mat4x4<f32>", layout{64, 16}},
		{"mat3x3f", layout{48, 16}},
		{"mat2x2<f32>", layout{16, 8}},
		{"array<f32, 5>", layout{20, 4}},
		{"array<vec3<f32>, 2>", layout{32, 16}},
		{"Inner", layout{16, 16}},
		{"Outer", layout{32, 16}},
		{"Tail", layout{16, 16}},
		{"array<Inner>", layout{16, 16}},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			got, ok := typeLayout(tt.typeName, structs)
			if !ok || got != tt.want {
				t.Fatalf("typeLayout(%q) = %+v %v, want %+v", tt.typeName, got, ok, tt.want)
			}
		})
	}
	if _, ok := typeLayout("vec3<f16>", structs); ok {
		t.Fatal("f16 vectors are not supported")
	}
}

func TestStripComments(t *testing.T) {
	src := "a // line\nb /* block /* nested */ still */ c\n// last"
	if got := stripComments(src); got != "a \nb  c\n" {
		t.Fatalf("stripComments = %q", got)
	}
}
