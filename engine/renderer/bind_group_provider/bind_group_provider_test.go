package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewBindGroupProviderKeepsLabel(t *testing.T) {
	p := NewBindGroupProvider("frame")
	if p.Label() != "frame" {
		t.Fatalf("label = %q", p.Label())
	}
	if p.BindGroup() != nil || p.Buffer(0) != nil || p.IndexCount() != 0 {
		t.Fatal("fresh provider holds resources")
	}
}

func TestBorrowedResourcesAreDroppedOnRelease(t *testing.T) {
	view := &wgpu.TextureView{}
	sampler := &wgpu.Sampler{}
	layout := &wgpu.BindGroupLayout{}
	p := NewBindGroupProvider("bloom",
		WithTextureView(2, view),
		WithSampler(1, sampler),
		WithBindGroupLayout(layout),
	)
	if p.TextureView(2) != view || p.Sampler(1) != sampler || p.BindGroupLayout() != layout {
		t.Fatal("options not applied")
	}

	// Nothing owned was created, so Release only forgets the borrowed handles.
	p.Release()
	if p.TextureView(2) != nil || p.Sampler(1) != nil || p.BindGroupLayout() != nil {
		t.Fatal("borrowed handles survived Release")
	}
	p.Release()
}
