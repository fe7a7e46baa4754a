package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrMissingEntryPoint is returned when a render shader lacks a @vertex or @fragment function.
var ErrMissingEntryPoint = errors.New("shader: missing entry point")

// shader is the implementation of the Shader interface.
// It holds the expanded source and the layout metadata reflected from it.
type shader struct {
	key                        string
	source                     string
	vertexEntry                string
	fragmentEntry              string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              []wgpu.VertexBufferLayout
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a parsed WGSL render module holding both the vertex and the fragment stage.
// It exposes the reflected bind group layouts and vertex buffer layouts needed to build a
// render pipeline without hand-written layout tables.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the expanded WGSL source.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// VertexEntryPoint returns the name of the @vertex function.
	//
	// Returns:
	//   - string: the entry point name
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function.
	//
	// Returns:
	//   - string: the entry point name
	FragmentEntryPoint() string

	// BindGroupLayoutDescriptor retrieves the layout descriptor for one group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is unused
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by
	// group index. Every entry is visible to both stages.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index of a variable within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable name was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// VertexLayouts retrieves the vertex buffer layouts in slot order. Shaders that pull
	// their geometry from storage buffers have none.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// Module returns the shader module descriptor built from the expanded source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader expands and reflects a WGSL render module.
//
// Parameters:
//   - key: a unique identifier for the shader, used for labels and caching
//   - source: the raw WGSL source, which may contain include directives
//   - pp: the pre-processor expanding includes, or nil when the source has none
//
// Returns:
//   - Shader: the parsed shader
//   - error: error if includes cannot be expanded or an entry point is missing
func NewShader(key, source string, pp PreProcessor) (Shader, error) {
	if pp == nil {
		pp = NewPreProcessor()
	}
	expanded, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:           key,
		source:        expanded,
		vertexEntry:   parseEntryPoint(expanded, vertexEntryRegex),
		fragmentEntry: parseEntryPoint(expanded, fragmentEntryRegex),
	}
	if s.vertexEntry == "" || s.fragmentEntry == "" {
		return nil, fmt.Errorf("%w: %s needs both @vertex and @fragment", ErrMissingEntryPoint, key)
	}
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: expanded,
		},
	}
	s.vertexLayouts = parseVertexLayouts(expanded)
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(expanded, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntry
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntry
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
