package renderer

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-cinematic/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// HDRFormat is the format of every offscreen colour target.
const HDRFormat = wgpu.TextureFormatRGBA16Float

// renderTexture is a texture owned by the backend together with its default view.
type renderTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (t *renderTexture) release() {
	if t == nil {
		return
	}
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	width         int
	height        int

	// Offscreen targets, recreated on every ConfigureSurface.
	targets map[TargetID]*renderTexture
	msaa    *renderTexture
	depth   *renderTexture

	// Bind group layouts shared between pipelines and providers, keyed by their entries.
	layouts map[string]*wgpu.BindGroupLayout

	// Frame state for batching every pass of a frame into one submission.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	released bool

	// lost is set by the device lost callback, which may run on a driver thread.
	lost atomic.Pointer[string]
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue

	// SurfaceFormat returns the swapchain format chosen by the last ConfigureSurface.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// SampleCount returns the multisample count of the scene pass.
	//
	// Returns:
	//   - uint32: 1 or 4
	SampleCount() uint32

	// Size returns the surface size in pixels.
	//
	// Returns:
	//   - int: width
	//   - int: height
	Size() (int, int)

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// It also recreates every offscreen target at the new size, so bind groups holding target
	// views must be rebuilt afterwards.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if a target could not be created
	ConfigureSurface(width, height int) error

	// BindGroupLayout returns the layout for a descriptor, creating it on first use. Pipelines
	// and providers built from identical descriptors share one layout object.
	//
	// Parameters:
	//   - desc: the layout descriptor
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the shared layout, owned by the backend
	//   - error: an error if the layout could not be created
	BindGroupLayout(desc wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)

	// RegisterRenderPipeline is a high-level function that creates a render pipeline based on the provided pipeline.
	// It handles creating the shader module, pipeline layout, and render pipeline based on the pipeline's configuration.
	//
	// Parameters:
	//   - p: the pipeline object containing the shader and configuration for the pipeline
	//
	// Returns:
	//   - error: an error if the pipeline could not be created, otherwise nil
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers inits the vertex and index buffers for a mesh based on the provided vertex and index data, and stores them on the given BindGroupProvider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created vertex and index buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices represented in the indexData, used for draw calls
	//
	// Returns:
	//   - error: an error if the buffers could not be created or initialized, otherwise nil
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup is a high-level function that creates GPU buffers and a bind group based on a BindGroupProvider's layout entries.
	// Texture and sampler entries must already be present on the provider. Buffers already
	// present are reused.
	//
	// Parameters:
	//   - provider: the BindGroupProvider describing the layout entries and storage for the bind group
	//   - descriptor: the BindGroupLayoutDescriptor describing the layout of the bind group
	//   - bufferSizeOverrides: a map of binding indices to buffer sizes, used for storage arrays
	//
	// Returns:
	//   - error: an error if the bind group could not be initialized, otherwise nil
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// CreateSampler creates the linear clamp-to-edge sampler used by the post passes.
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler, owned by the caller
	//   - error: an error if sampler creation fails
	CreateSampler() (*wgpu.Sampler, error)

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// TargetView returns the view of an offscreen target. TargetSurface is only valid
	// between BeginFrame and Present.
	//
	// Parameters:
	//   - id: the target
	//
	// Returns:
	//   - *wgpu.TextureView: the view, or nil before ConfigureSurface
	TargetView(id TargetID) *wgpu.TextureView

	// BeginFrame acquires the next swapchain texture and creates the frame's command encoder.
	// On failure the surface is reconfigured so the next frame can retry.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// BeginScenePass begins the multisampled scene pass into the HDR target, clearing colour
	// and depth.
	BeginScenePass()

	// BeginPostPass begins a fullscreen pass writing dest without a depth attachment.
	//
	// Parameters:
	//   - dest: the target to write
	BeginPostPass(dest TargetID)

	// DrawCall encodes a single indexed instanced draw within the current pass.
	//
	// Parameters:
	//   - p: the cached Pipeline containing the render pipeline to use
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - instanceCount: the number of instances to draw
	//   - firstInstance: the instance index of the first instance
	//   - bindGroups: BindGroupProviders set at group 0, 1, ...
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount, firstInstance uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// Draw encodes a non-indexed draw for shaders that build their vertices from the vertex
	// and instance indices.
	//
	// Parameters:
	//   - p: the cached Pipeline containing the render pipeline to use
	//   - vertexCount: vertices per instance
	//   - instanceCount: the number of instances to draw
	//   - firstInstance: the instance index of the first instance
	//   - bindGroups: BindGroupProviders set at group 0, 1, ...
	Draw(p pipeline.Pipeline, vertexCount, instanceCount, firstInstance uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// EndPass ends the current pass.
	EndPass()

	// EndFrame finishes the command encoder and submits it to the GPU.
	// Does not present the surface; call Present() after EndFrame to display the frame.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// Release frees every target, layout, the device and the surface. It is idempotent.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the instance, surface, adapter and device. Nothing is
// leaked on failure.
//
// Parameters:
//   - surfaceDescriptor: the platform surface to draw into
//   - forceFallbackAdapter: request the software adapter
//   - sampleCount: the scene pass MSAA sample count
//   - mode: the present mode
//
// Returns:
//   - wgpuRendererBackend: the backend, not yet configured
//   - error: ErrNoAdapter or a device error
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, mode PresentMode) (wgpuRendererBackend, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("renderer: nil surface descriptor")
	}
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
		targets:     make(map[TargetID]*renderTexture),
		layouts:     make(map[string]*wgpu.BindGroupLayout),
	}
	if mode == PresentModeUncapped {
		w.presentMode = wgpu.PresentModeImmediate
	}
	if w.sampleCount != MSAA4x {
		w.sampleCount = MSAAOff
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil || a == nil {
		w.Release()
		return nil, fmt.Errorf("%w: %v", ErrNoAdapter, err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label:              "Cinematic Device",
		DeviceLostCallback: w.deviceLost,
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

// deviceLost records a lost device. Every BeginFrame after it fails with ErrContextLost.
// It must not take the backend mutex: Release destroys the device while holding it.
func (b *wgpuRendererBackendImpl) deviceLost(reason wgpu.DeviceLostReason, message string) {
	desc := reason.String()
	if message != "" {
		desc += ": " + message
	}
	b.lost.CompareAndSwap(nil, &desc)
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) SampleCount() uint32 {
	return uint32(b.sampleCount)
}

func (b *wgpuRendererBackendImpl) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// pickSurfaceFormat prefers an sRGB swapchain format so the composite pass can write linear
// colour.
func pickSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			return f
		}
	}
	if len(formats) == 0 {
		return wgpu.TextureFormatBGRA8UnormSrgb
	}
	return formats[0]
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.configureSurface(width, height)
}

func (b *wgpuRendererBackendImpl) configureSurface(width, height int) error {
	width, height = max(width, 1), max(height, 1)
	b.width, b.height = width, height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = pickSurfaceFormat(capabilities.Formats)
	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(capabilities.AlphaModes) > 0 {
		alphaMode = capabilities.AlphaModes[0]
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   alphaMode,
	})

	b.releaseTargets()

	count := uint32(b.sampleCount)
	sampled := wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding
	halfW, halfH := max(width/2, 1), max(height/2, 1)

	var err error
	if b.targets[TargetHDR], err = b.createTexture("HDR Texture", width, height, 1, HDRFormat, sampled); err != nil {
		return err
	}
	if b.targets[TargetBloomA], err = b.createTexture("Bloom A Texture", halfW, halfH, 1, HDRFormat, sampled); err != nil {
		return err
	}
	if b.targets[TargetBloomB], err = b.createTexture("Bloom B Texture", halfW, halfH, 1, HDRFormat, sampled); err != nil {
		return err
	}
	if b.targets[TargetLDR], err = b.createTexture("LDR Texture", width, height, 1, HDRFormat, sampled); err != nil {
		return err
	}
	if count > 1 {
		// The scene pass draws into the MSAA texture and resolves into the HDR target.
		if b.msaa, err = b.createTexture("MSAA Texture", width, height, count, HDRFormat, wgpu.TextureUsageRenderAttachment); err != nil {
			return err
		}
	}
	// Depth texture sample count must match the color attachment.
	if b.depth, err = b.createTexture("Depth Texture", width, height, count, wgpu.TextureFormatDepth24Plus, wgpu.TextureUsageRenderAttachment); err != nil {
		return err
	}
	return nil
}

func (b *wgpuRendererBackendImpl) createTexture(label string, width, height int, sampleCount uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*renderTexture, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return &renderTexture{texture: tex, view: view}, nil
}

func (b *wgpuRendererBackendImpl) releaseTargets() {
	for id, t := range b.targets {
		t.release()
		delete(b.targets, id)
	}
	b.msaa.release()
	b.msaa = nil
	b.depth.release()
	b.depth = nil
}

// layoutKey identifies a layout by its entries; the label is ignored so shaders sharing a
// prelude share layouts.
func layoutKey(desc wgpu.BindGroupLayoutDescriptor) string {
	return fmt.Sprintf("%+v", desc.Entries)
}

func (b *wgpuRendererBackendImpl) BindGroupLayout(desc wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bindGroupLayout(desc)
}

func (b *wgpuRendererBackendImpl) bindGroupLayout(desc wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	key := layoutKey(desc)
	if layout, ok := b.layouts[key]; ok {
		return layout, nil
	}
	layout, err := b.device.CreateBindGroupLayout(&desc)
	if err != nil {
		return nil, err
	}
	b.layouts[key] = layout
	return layout, nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	s := p.Shader()
	if s == nil {
		return fmt.Errorf("pipeline %s has no shader", p.PipelineKey())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return fmt.Errorf("pipeline %s: %w", p.PipelineKey(), err)
	}
	defer module.Release()

	descs := s.BindGroupLayoutDescriptors()
	groups := make([]int, 0, len(descs))
	for g := range descs {
		groups = append(groups, g)
	}
	sort.Ints(groups)
	maxGroup := -1
	if len(groups) > 0 {
		maxGroup = groups[len(groups)-1]
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for _, g := range groups {
		layout, layoutErr := b.bindGroupLayout(descs[g])
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	target := wgpu.ColorTargetState{
		Format:    p.TargetFormat(),
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	var depthStencil *wgpu.DepthStencilState
	if p.DepthEnabled() {
		depthCompare := wgpu.CompareFunctionLess
		if !p.DepthTestEnabled() {
			depthCompare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: s.VertexEntryPoint(),
			Buffers:    s.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: s.FragmentEntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: p.SampleCount(),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return fmt.Errorf("pipeline %s: %w", p.PipelineKey(), err)
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var vertices, indices *wgpu.Buffer
	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Vertex Buffer",
			Size:             uint64(len(vertexData)),
			Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		vertices = buf
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Index Buffer",
			Size:             uint64(len(indexData)),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			if vertices != nil {
				vertices.Release()
			}
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		indices = buf
	}

	provider.SetMesh(vertices, indices, indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout, err := b.bindGroupLayout(descriptor)
	if err != nil {
		return err
	}
	provider.SetBindGroupLayout(layout)

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		switch {
		case isTexture:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("%s: texture binding %d has no texture view", provider.Label(), binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding:     entry.Binding,
				TextureView: tv,
			}
		case isSampler:
			samp := provider.Sampler(binding)
			if samp == nil {
				return fmt.Errorf("%s: sampler binding %d has no sampler", provider.Label(), binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Sampler: samp,
			}
		default:
			// Buffer binding, created if not already present
			usage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
			if entry.Buffer.Type == wgpu.BufferBindingTypeUniform {
				usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
			}

			buf := provider.Buffer(binding)
			if buf == nil {
				bufSize := entry.Buffer.MinBindingSize
				if overrideSize, ok := bufferSizeOverrides[binding]; ok {
					bufSize = max(overrideSize, bufSize)
				}
				var bufErr error
				buf, bufErr = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
					Size:  bufSize,
					Usage: usage,
				})
				if bufErr != nil {
					return bufErr
				}
				provider.SetBuffer(binding, buf)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuRendererBackendImpl) CreateSampler() (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Post Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		if len(w.Data) == 0 {
			continue
		}
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) TargetView(id TargetID) *wgpu.TextureView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.targetView(id)
}

func (b *wgpuRendererBackendImpl) targetView(id TargetID) *wgpu.TextureView {
	if id == TargetSurface {
		return b.frameView
	}
	if t := b.targets[id]; t != nil {
		return t.view
	}
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return ErrContextLost
	}
	if reason := b.lost.Load(); reason != nil {
		return fmt.Errorf("%w: %s", ErrContextLost, *reason)
	}
	// A previous frame's surface texture still held means EndFrame or Present was skipped.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		// Outdated or lost swapchain: reconfigure so the next frame can acquire.
		if cfgErr := b.configureSurface(b.width, b.height); cfgErr != nil {
			return fmt.Errorf("acquire surface texture: %w (reconfigure: %v)", err, cfgErr)
		}
		return fmt.Errorf("acquire surface texture: %w", err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) BeginScenePass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// When MSAA is enabled the MSAA texture is the colour attachment and the HDR target is
	// the resolve target; otherwise the pass draws straight into the HDR target.
	color := wgpu.RenderPassColorAttachment{
		View:    b.targets[TargetHDR].view,
		LoadOp:  wgpu.LoadOpClear,
		StoreOp: wgpu.StoreOpStore,
		// Alpha 1 is the far plane in the depth channel.
		ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
	}
	if b.msaa != nil {
		color.View = b.msaa.view
		color.ResolveTarget = b.targets[TargetHDR].view
		color.StoreOp = wgpu.StoreOpDiscard
	}
	b.framePass = b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depth.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
}

func (b *wgpuRendererBackendImpl) BeginPostPass(dest TargetID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.framePass = b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.targetView(dest),
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
}

func (b *wgpuRendererBackendImpl) setBindGroups(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) {
	b.framePass.SetPipeline(p.RenderPipeline())
	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
}

func (b *wgpuRendererBackendImpl) DrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	instanceCount, firstInstance uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setBindGroups(p, bindGroups)
	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(meshProvider.IndexCount()), instanceCount, 0, 0, firstInstance)
}

func (b *wgpuRendererBackendImpl) Draw(
	p pipeline.Pipeline,
	vertexCount, instanceCount, firstInstance uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setBindGroups(p, bindGroups)
	b.framePass.Draw(vertexCount, instanceCount, 0, firstInstance)
}

func (b *wgpuRendererBackendImpl) EndPass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return nil
	}
	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameSurface()
		return fmt.Errorf("finish frame: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return
	}
	b.released = true

	if b.framePass != nil {
		b.framePass.Release()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseFrameSurface()
	b.releaseTargets()
	for key, layout := range b.layouts {
		layout.Release()
		delete(b.layouts, key)
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
