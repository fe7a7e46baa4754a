package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/environment"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/particle"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/scene"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/scenegraph"
	"github.com/cogentcore/webgpu/wgpu"
)

// Scene pipeline keys. Post pipelines use the shader keys plus pipelineCompositeLDR.
const (
	PipelineSky         = "sky"
	PipelineOpaque      = "opaque"
	PipelineTransparent = "transparent"
	PipelineLines       = "lines"
	PipelineParticles   = "particles"
	PipelineClouds      = "clouds"
	PipelineStars       = "stars"
)

// Vertices per billboard quad and per fullscreen triangle.
const (
	quadVertexCount       = 6
	fullscreenVertexCount = 3
)

// SurfaceSource is the platform surface the renderer presents to.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// meshEntry is an uploaded mesh.
type meshEntry struct {
	provider bind_group_provider.BindGroupProvider
	topology geometry.Topology
}

// storageBinding is a bind group whose storage buffer grows to fit its instance count.
type storageBinding struct {
	provider bind_group_provider.BindGroupProvider
	capacity int
}

// drawRun is a run of consecutive object records sharing a mesh and a pipeline.
type drawRun struct {
	pipeline string
	mesh     string
	first    uint32
	count    uint32
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *slog.Logger

	backend       RendererBackend
	shaders       map[string]shader.Shader
	pipelineCache map[string]pipeline.Pipeline

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	sampleCount          MSAASampleCount

	sourceMeshes map[string]geometry.Mesh
	meshes       map[string]meshEntry

	sampler *wgpu.Sampler
	frame   bind_group_provider.BindGroupProvider
	objects storageBinding
	sprites storageBinding
	fields  map[string]*storageBinding
	post    map[string]bind_group_provider.BindGroupProvider

	// Scratch reused across frames.
	byLayer    [3][]int
	objectData []byte
	runs       []drawRun
	spriteData []environment.GPUSprite
	writes     []bind_group_provider.BufferWrite

	released bool
}

// Renderer draws scene frames with WebGPU: a multisampled HDR scene pass followed by the
// post chain the compositor asks for.
//
// The Renderer owns every GPU object it creates: the device, the offscreen targets, one
// bind group per uniform block, the instance storage buffers and the uploaded meshes. All of
// them are freed by Release.
type Renderer interface {
	// Draw renders and presents one frame.
	//
	// Parameters:
	//   - f: the frame produced by the scene
	//
	// Returns:
	//   - error: ErrContextLost after Release, or the failure of this frame
	Draw(f *scene.Frame) error

	// Resize reconfigures the surface and the offscreen targets.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - vp: the new viewport in pixels
	Resize(vp common.Viewport)

	// Release frees every GPU resource. It is idempotent.
	Release()

	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves the entire cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// SurfaceFormat returns the swapchain format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat
}

var _ Renderer = &renderer{}

// NewRenderer creates the device, configures the surface at the viewport size, registers
// every pipeline and uploads the meshes of the initial frame lazily on first use. Any failure
// releases what was created and returns an error; callers treat it as a missing 3D context.
//
// Parameters:
//   - surface: the platform surface
//   - vp: the initial viewport in pixels
//   - meshes: every mesh the scene may draw, keyed by name
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: error if no adapter, device, target or pipeline could be created
func NewRenderer(surface SurfaceSource, vp common.Viewport, meshes map[string]geometry.Mesh, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		logger:        slog.Default(),
		pipelineCache: make(map[string]pipeline.Pipeline),
		presentMode:   PresentModeVSync,
		sampleCount:   MSAA4x,
		sourceMeshes:  meshes,
		meshes:        make(map[string]meshEntry),
		fields:        make(map[string]*storageBinding),
		post:          make(map[string]bind_group_provider.BindGroupProvider),
	}
	for _, option := range options {
		option(r)
	}
	r.logger = r.logger.With("component", "renderer")

	shaders, err := loadShaders()
	if err != nil {
		return nil, err
	}
	r.shaders = shaders

	backend, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.sampleCount, r.presentMode)
	if err != nil {
		return nil, err
	}
	r.backend = backend

	if err := r.init(vp); err != nil {
		r.Release()
		return nil, err
	}
	r.logger.Info("renderer ready",
		"width", vp.Width, "height", vp.Height,
		"format", r.backend.SurfaceFormat(),
		"msaa", r.backend.SampleCount(),
	)
	return r, nil
}

func (r *renderer) init(vp common.Viewport) error {
	if err := r.backend.ConfigureSurface(vp.Width, vp.Height); err != nil {
		return err
	}
	if err := r.registerPipelines(); err != nil {
		return err
	}

	sampler, err := r.backend.CreateSampler()
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	r.sampler = sampler

	r.frame = bind_group_provider.NewBindGroupProvider("frame")
	if err := r.backend.InitBindGroup(r.frame, r.shaders[ShaderMesh].BindGroupLayoutDescriptor(0), nil); err != nil {
		return fmt.Errorf("frame bind group: %w", err)
	}
	r.objects.provider = bind_group_provider.NewBindGroupProvider("objects")
	r.sprites.provider = bind_group_provider.NewBindGroupProvider("sprites")
	return nil
}

// alphaBlend keeps the destination alpha, which carries scene depth for depth of field.
var alphaBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
	Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorZero, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
}

var additiveBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
	Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorZero, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
}

// pipelineSpecs lists every pipeline the renderer draws with.
//
// Parameters:
//   - shaders: the loaded shaders
//   - surfaceFormat: the swapchain format
//   - sampleCount: the scene pass sample count
//
// Returns:
//   - []pipeline.Pipeline: the pipelines, not yet registered
func pipelineSpecs(shaders map[string]shader.Shader, surfaceFormat wgpu.TextureFormat, sampleCount uint32) []pipeline.Pipeline {
	scenePipeline := func(key, shaderKey string, opts ...pipeline.PipelineBuilderOption) pipeline.Pipeline {
		base := []pipeline.PipelineBuilderOption{
			pipeline.WithShader(shaders[shaderKey]),
			pipeline.WithTargetFormat(HDRFormat),
			pipeline.WithSampleCount(sampleCount),
		}
		return pipeline.NewPipeline(key, append(base, opts...)...)
	}
	postPipeline := func(key, shaderKey string, format wgpu.TextureFormat) pipeline.Pipeline {
		return pipeline.NewPipeline(key,
			pipeline.WithShader(shaders[shaderKey]),
			pipeline.WithTargetFormat(format),
			pipeline.WithDepth(false),
		)
	}
	noDepthWrite := pipeline.WithDepthWriteEnabled(false)

	return []pipeline.Pipeline{
		scenePipeline(PipelineSky, ShaderSky, pipeline.WithDepthTestEnabled(false), noDepthWrite),
		scenePipeline(PipelineOpaque, ShaderMesh),
		scenePipeline(PipelineTransparent, ShaderMesh, pipeline.WithBlendState(alphaBlend), noDepthWrite),
		scenePipeline(PipelineLines, ShaderLines, pipeline.WithTopology(wgpu.PrimitiveTopologyLineList), pipeline.WithBlendState(alphaBlend), noDepthWrite),
		scenePipeline(PipelineParticles, ShaderParticles, pipeline.WithBlendState(additiveBlend), noDepthWrite),
		scenePipeline(PipelineClouds, ShaderSprites, pipeline.WithBlendState(alphaBlend), noDepthWrite),
		scenePipeline(PipelineStars, ShaderSprites, pipeline.WithBlendState(additiveBlend), noDepthWrite),
		postPipeline(ShaderBright, ShaderBright, HDRFormat),
		postPipeline(ShaderBlurH, ShaderBlurH, HDRFormat),
		postPipeline(ShaderBlurV, ShaderBlurV, HDRFormat),
		postPipeline(ShaderComposite, ShaderComposite, surfaceFormat),
		postPipeline(pipelineCompositeLDR, ShaderComposite, HDRFormat),
		postPipeline(ShaderDOF, ShaderDOF, surfaceFormat),
	}
}

func (r *renderer) registerPipelines() error {
	for _, p := range pipelineSpecs(r.shaders, r.backend.SurfaceFormat(), r.backend.SampleCount()) {
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return err
		}
		r.pipelineCache[p.PipelineKey()] = p
	}
	return nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) Resize(vp common.Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}
	if err := r.backend.ConfigureSurface(vp.Width, vp.Height); err != nil {
		r.logger.Error("resize failed", "width", vp.Width, "height", vp.Height, "error", err)
		return
	}
	// Post bind groups borrow the target views that were just recreated.
	r.releasePost()
}

// ensureMesh uploads a mesh on first use.
func (r *renderer) ensureMesh(name string) (meshEntry, bool) {
	if m, ok := r.meshes[name]; ok {
		return m, true
	}
	src, ok := r.sourceMeshes[name]
	if !ok || len(src.Indices) == 0 {
		return meshEntry{}, false
	}
	provider := bind_group_provider.NewBindGroupProvider(name)
	if err := r.backend.InitMeshBuffers(provider, common.SliceToBytes(src.Vertices), common.SliceToBytes(src.Indices), len(src.Indices)); err != nil {
		provider.Release()
		r.logger.Error("mesh upload failed", "mesh", name, "error", err)
		return meshEntry{}, false
	}
	m := meshEntry{provider: provider, topology: src.Topology}
	r.meshes[name] = m
	return m, true
}

// ensureStorage grows b to hold count elements of stride bytes, rebuilding its bind group.
func (r *renderer) ensureStorage(b *storageBinding, desc wgpu.BindGroupLayoutDescriptor, binding, count int, stride uint64) error {
	if b.provider.BindGroup() != nil && count <= b.capacity {
		return nil
	}
	capacity := max(count, b.capacity*2, 64)
	b.provider.Release()
	if err := r.backend.InitBindGroup(b.provider, desc, map[int]uint64{binding: uint64(capacity) * stride}); err != nil {
		return fmt.Errorf("%s bind group: %w", b.provider.Label(), err)
	}
	b.capacity = capacity
	return nil
}

// pipelineFor picks the pipeline of a draw item: line meshes always use the line pipeline.
func pipelineFor(item scenegraph.DrawItem, topology geometry.Topology) string {
	if topology == geometry.Lines {
		return PipelineLines
	}
	if item.Layer == scenegraph.LayerOpaque {
		return PipelineOpaque
	}
	return PipelineTransparent
}

// buildObjects fills the object records in draw order, opaque first, and groups them into
// runs of the same mesh and pipeline.
func (r *renderer) buildObjects(draws []scenegraph.DrawItem) {
	for l := range r.byLayer {
		r.byLayer[l] = r.byLayer[l][:0]
	}
	for i, item := range draws {
		if int(item.Layer) < len(r.byLayer) {
			r.byLayer[item.Layer] = append(r.byLayer[item.Layer], i)
		}
	}

	r.objectData = r.objectData[:0]
	r.runs = r.runs[:0]
	var n uint32
	for _, indices := range r.byLayer {
		for _, i := range indices {
			item := draws[i]
			m, ok := r.ensureMesh(item.Mesh)
			if !ok {
				continue
			}
			rec := NewGPUObjectData(item)
			r.objectData = append(r.objectData, rec.Marshal()...)

			key := pipelineFor(item, m.topology)
			if last := len(r.runs) - 1; last >= 0 && r.runs[last].mesh == item.Mesh && r.runs[last].pipeline == key {
				r.runs[last].count++
			} else {
				r.runs = append(r.runs, drawRun{pipeline: key, mesh: item.Mesh, first: n, count: 1})
			}
			n++
		}
	}
}

// postKey identifies the bind group of a step; the same pass may read different targets.
func postKey(s postStep) string {
	return fmt.Sprintf("%s:%d:%d", s.key, s.source, s.aux)
}

func (r *renderer) ensurePost(s postStep) (bind_group_provider.BindGroupProvider, error) {
	key := postKey(s)
	if p, ok := r.post[key]; ok {
		return p, nil
	}
	p := bind_group_provider.NewBindGroupProvider(key,
		bind_group_provider.WithSampler(1, r.sampler),
		bind_group_provider.WithTextureView(2, r.backend.TargetView(s.source)),
		bind_group_provider.WithTextureView(3, r.backend.TargetView(s.aux)),
	)
	if err := r.backend.InitBindGroup(p, r.shaders[s.key].BindGroupLayoutDescriptor(0), nil); err != nil {
		p.Release()
		return nil, fmt.Errorf("post bind group %s: %w", key, err)
	}
	r.post[key] = p
	return p, nil
}

func (r *renderer) releasePost() {
	for key, p := range r.post {
		p.Release()
		delete(r.post, key)
	}
}

// texelFor returns the texel size of a target.
func (r *renderer) texelFor(id TargetID) [2]float32 {
	w, h := r.backend.Size()
	if id == TargetBloomA || id == TargetBloomB {
		w, h = max(w/2, 1), max(h/2, 1)
	}
	return [2]float32{1 / float32(max(w, 1)), 1 / float32(max(h, 1))}
}

func (r *renderer) Draw(f *scene.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrContextLost
	}
	if f == nil {
		return errors.New("renderer: nil frame")
	}

	if f.Rebuild {
		for _, name := range f.ActiveMeshes {
			r.ensureMesh(name)
		}
	}

	r.writes = r.writes[:0]
	r.writes = append(r.writes,
		bind_group_provider.BufferWrite{Provider: r.frame, Binding: 0, Data: f.Camera.Marshal()},
		bind_group_provider.BufferWrite{Provider: r.frame, Binding: 1, Data: f.Light.Marshal()},
		bind_group_provider.BufferWrite{Provider: r.frame, Binding: 2, Data: f.Sky.Marshal()},
	)

	r.buildObjects(f.Draws)
	if len(r.runs) > 0 {
		if err := r.ensureStorage(&r.objects, r.shaders[ShaderMesh].BindGroupLayoutDescriptor(1), 0, len(r.objectData)/int(GPUObjectDataSize), GPUObjectDataSize); err != nil {
			return err
		}
		r.writes = append(r.writes, bind_group_provider.BufferWrite{Provider: r.objects.provider, Binding: 0, Data: r.objectData})
	}

	for _, batch := range f.Particles {
		if len(batch.Instances) == 0 {
			continue
		}
		b := r.fields[batch.Name]
		if b == nil {
			b = &storageBinding{provider: bind_group_provider.NewBindGroupProvider("field " + batch.Name)}
			r.fields[batch.Name] = b
		}
		if err := r.ensureStorage(b, r.shaders[ShaderParticles].BindGroupLayoutDescriptor(1), 1, len(batch.Instances), particle.GPUParticleSize); err != nil {
			return err
		}
		uniform := batch.Uniform
		r.writes = append(r.writes,
			bind_group_provider.BufferWrite{Provider: b.provider, Binding: 0, Data: uniform.Marshal()},
			bind_group_provider.BufferWrite{Provider: b.provider, Binding: 1, Data: common.SliceToBytes(batch.Instances)},
		)
	}

	r.spriteData = append(append(r.spriteData[:0], f.Clouds...), f.Stars...)
	if len(r.spriteData) > 0 {
		if err := r.ensureStorage(&r.sprites, r.shaders[ShaderSprites].BindGroupLayoutDescriptor(1), 0, len(r.spriteData), environment.GPUSpriteSize); err != nil {
			return err
		}
		r.writes = append(r.writes, bind_group_provider.BufferWrite{Provider: r.sprites.provider, Binding: 0, Data: common.SliceToBytes(r.spriteData)})
	}

	steps := planPost(f.Passes)
	postProviders := make([]bind_group_provider.BindGroupProvider, len(steps))
	for i, s := range steps {
		p, err := r.ensurePost(s)
		if err != nil {
			return err
		}
		postProviders[i] = p
		u := f.Post
		u.Texel = r.texelFor(s.source)
		if !hasBloom(steps) {
			u.BloomIntensity = 0
		}
		r.writes = append(r.writes, bind_group_provider.BufferWrite{Provider: p, Binding: 0, Data: u.Marshal()})
	}

	r.backend.WriteBuffers(r.writes)

	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.encodeScene(f)
	for i, s := range steps {
		r.backend.BeginPostPass(s.dest)
		r.backend.Draw(r.pipelineCache[s.key], fullscreenVertexCount, 1, 0, []bind_group_provider.BindGroupProvider{postProviders[i]})
		r.backend.EndPass()
	}
	if err := r.backend.EndFrame(); err != nil {
		return err
	}
	r.backend.Present()
	return nil
}

// encodeScene records the scene pass: sky, meshes by layer, particles, clouds then stars.
func (r *renderer) encodeScene(f *scene.Frame) {
	r.backend.BeginScenePass()
	defer r.backend.EndPass()

	frameOnly := []bind_group_provider.BindGroupProvider{r.frame}
	r.backend.Draw(r.pipelineCache[PipelineSky], fullscreenVertexCount, 1, 0, frameOnly)

	withObjects := []bind_group_provider.BindGroupProvider{r.frame, r.objects.provider}
	for _, run := range r.runs {
		m := r.meshes[run.mesh]
		r.backend.DrawCall(r.pipelineCache[run.pipeline], m.provider, run.count, run.first, withObjects)
	}

	for _, batch := range f.Particles {
		b := r.fields[batch.Name]
		if len(batch.Instances) == 0 || b == nil {
			continue
		}
		r.backend.Draw(r.pipelineCache[PipelineParticles], quadVertexCount, uint32(len(batch.Instances)), 0,
			[]bind_group_provider.BindGroupProvider{r.frame, b.provider})
	}

	withSprites := []bind_group_provider.BindGroupProvider{r.frame, r.sprites.provider}
	if len(f.Clouds) > 0 {
		r.backend.Draw(r.pipelineCache[PipelineClouds], quadVertexCount, uint32(len(f.Clouds)), 0, withSprites)
	}
	if len(f.Stars) > 0 {
		r.backend.Draw(r.pipelineCache[PipelineStars], quadVertexCount, uint32(len(f.Stars)), uint32(len(f.Clouds)), withSprites)
	}
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}
	r.released = true

	r.releasePost()
	for name, b := range r.fields {
		b.provider.Release()
		delete(r.fields, name)
	}
	for _, b := range []*storageBinding{&r.objects, &r.sprites} {
		if b.provider != nil {
			b.provider.Release()
		}
		b.capacity = 0
	}
	if r.frame != nil {
		r.frame.Release()
	}
	for name, m := range r.meshes {
		m.provider.Release()
		delete(r.meshes, name)
	}
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	if r.sampler != nil {
		r.sampler.Release()
		r.sampler = nil
	}
	if r.backend != nil {
		r.backend.Release()
	}
	r.logger.Info("renderer released")
}
