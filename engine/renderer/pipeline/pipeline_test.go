package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("mesh")
	if p.PipelineKey() != "mesh" {
		t.Fatalf("key = %q", p.PipelineKey())
	}
	if !p.DepthEnabled() || !p.DepthTestEnabled() || !p.DepthWriteEnabled() {
		t.Fatal("depth should default to enabled")
	}
	if p.BlendEnabled() {
		t.Fatal("blending should default to disabled")
	}
	if p.SampleCount() != 1 || p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Fatalf("sample count %d topology %v", p.SampleCount(), p.Topology())
	}
	if p.RenderPipeline() != nil {
		t.Fatal("pipeline registered before the backend saw it")
	}
}

func TestPipelineOptions(t *testing.T) {
	additive := &wgpu.BlendState{
		Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
		Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorZero, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
	}
	p := NewPipeline("particles",
		WithTargetFormat(wgpu.TextureFormatRGBA16Float),
		WithSampleCount(4),
		WithDepthWriteEnabled(false),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithBlendState(additive),
	)
	if p.TargetFormat() != wgpu.TextureFormatRGBA16Float || p.SampleCount() != 4 {
		t.Fatalf("format %v samples %d", p.TargetFormat(), p.SampleCount())
	}
	if p.DepthWriteEnabled() || !p.DepthTestEnabled() {
		t.Fatal("depth write should be off with testing still on")
	}
	if !p.BlendEnabled() || p.BlendState() != additive {
		t.Fatal("blend state not applied")
	}
	if p.Topology() != wgpu.PrimitiveTopologyLineList {
		t.Fatalf("topology = %v", p.Topology())
	}

	off := NewPipeline("post", WithDepth(false), WithBlendState(nil), WithSampleCount(0))
	if off.DepthEnabled() || off.BlendEnabled() || off.SampleCount() != 1 {
		t.Fatalf("depth %v blend %v samples %d", off.DepthEnabled(), off.BlendEnabled(), off.SampleCount())
	}
}
