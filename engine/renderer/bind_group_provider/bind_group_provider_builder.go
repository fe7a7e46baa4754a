package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption attaches a borrowed resource at construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindGroupLayout records the borrowed layout the bind group will be created against.
//
// Parameters:
//   - bgl: the bind group layout
//
// Returns:
//   - BindGroupProviderOption: option function to apply
func WithBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
	}
}

// WithTextureView binds a borrowed texture view, typically an offscreen render target.
//
// Parameters:
//   - binding: the binding index
//   - tv: the texture view
//
// Returns:
//   - BindGroupProviderOption: option function to apply
func WithTextureView(binding int, tv *wgpu.TextureView) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.SetTextureView(binding, tv)
	}
}

// WithSampler binds a borrowed sampler.
//
// Parameters:
//   - binding: the binding index
//   - s: the sampler
//
// Returns:
//   - BindGroupProviderOption: option function to apply
func WithSampler(binding int, s *wgpu.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.SetSampler(binding, s)
	}
}
