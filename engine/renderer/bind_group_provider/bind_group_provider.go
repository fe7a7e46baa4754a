package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BindGroupProvider holds the GPU resources behind one bind group, or behind one mesh.
//
// The renderer creates one provider per uniform group, per particle field, per post pass and
// per mesh. Texture views and samplers are attached before the backend builds the bind group;
// buffers are created by the backend and handed over. Per-frame data reaches the buffers as
// BufferWrite values.
//
// A provider owns its buffers, its mesh buffers and its bind group, and replacing any of them
// releases the old one. Texture views, samplers and the layout are borrowed: render targets own
// the views, the renderer owns the samplers and the backend layout cache owns the layout.
type BindGroupProvider interface {
	// Label returns the debug label, prefixed to every GPU object created for the provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the bind group, or nil before the backend built it.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// SetBindGroup takes ownership of a bind group, releasing the previous one.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// BindGroupLayout returns the borrowed layout the bind group was created against.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// SetBindGroupLayout records the borrowed layout.
	//
	// Parameters:
	//   - bgl: the bind group layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// Buffer returns the buffer behind a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// SetBuffer takes ownership of the buffer behind a binding, releasing the previous one.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// TextureView returns the borrowed view bound at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view or nil
	TextureView(binding int) *wgpu.TextureView

	// SetTextureView binds a borrowed texture view.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view
	SetTextureView(binding int, tv *wgpu.TextureView)

	// Sampler returns the borrowed sampler bound at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// SetSampler binds a borrowed sampler.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	SetSampler(binding int, s *wgpu.Sampler)

	// VertexBuffer returns the mesh vertex buffer, or nil.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the mesh index buffer, or nil.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of mesh indices.
	IndexCount() int

	// SetMesh takes ownership of the mesh buffers, releasing the previous ones.
	//
	// Parameters:
	//   - vertices: the vertex buffer
	//   - indices: the uint32 index buffer
	//   - indexCount: the number of indices
	SetMesh(vertices, indices *wgpu.Buffer, indexCount int)

	// Release releases everything the provider owns and forgets the borrowed handles. The
	// provider can be filled again afterwards.
	Release()
}

// BufferWrite is one queued write into a provider buffer.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

type bindGroupProvider struct {
	label string

	// owned
	bindGroup    *wgpu.BindGroup
	buffers      map[int]*wgpu.Buffer
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int

	// borrowed
	bindGroupLayout *wgpu.BindGroupLayout
	textureViews    map[int]*wgpu.TextureView
	samplers        map[int]*wgpu.Sampler
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: the debug label
//   - options: borrowed resources to attach
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if old := p.buffers[binding]; old != nil && old != buf {
		old.Release()
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetMesh(vertices, indices *wgpu.Buffer, indexCount int) {
	p.releaseMesh()
	p.vertexBuffer, p.indexBuffer, p.indexCount = vertices, indices, indexCount
}

func (p *bindGroupProvider) releaseMesh() {
	for _, buf := range []*wgpu.Buffer{p.vertexBuffer, p.indexBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	p.vertexBuffer, p.indexBuffer, p.indexCount = nil, nil, 0
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for _, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
	}
	clear(p.buffers)
	p.releaseMesh()

	clear(p.textureViews)
	clear(p.samplers)
	p.bindGroupLayout = nil
}
