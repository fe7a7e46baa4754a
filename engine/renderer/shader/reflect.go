package shader

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// Layout reflection reads the WGSL declarations the renderer needs to build pipelines and bind
// groups without restating them in Go: vertex input structs, @group/@binding resources with the
// byte size of the bound type, and the stage entry points. It understands the subset of WGSL the
// scene shaders are written in: f32/i32/u32 scalars, their vectors, f32 matrices, structs and
// arrays of those, 2D textures and samplers.

var (
	structRegex    = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	attributeRegex = regexp.MustCompile(`@(\w+)(?:\(\s*([^)]*?)\s*\))?`)
	vectorRegex    = regexp.MustCompile(`^vec([234])(?:<(\w+)>|([fiu]))$`)
	matrixRegex    = regexp.MustCompile(`^mat([234])x([234])(?:<f32>|f)$`)
	arrayRegex     = regexp.MustCompile(`^array<\s*(.+?)\s*(?:,\s*(\d+)\s*)?>$`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// resourceRegex captures group, binding, address space, name and type of declarations like
	// `@group(0) @binding(1) var<storage, read> objects: array<ObjectData>;`.
	resourceRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// layout is the size and alignment of a host-shareable WGSL type.
type layout struct {
	size  uint64
	align uint64
}

// stride is the distance between consecutive array elements of the type.
func (l layout) stride() uint64 {
	return alignUp(l.size, l.align)
}

type member struct {
	name     string
	typeName string
	location int // -1 without @location
	builtin  bool
}

type structDecl struct {
	name    string
	members []member
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// vectorShape splits vec3<f32> and vec3f alike into the component count and scalar name.
func vectorShape(typeName string) (int, string, bool) {
	m := vectorRegex.FindStringSubmatch(typeName)
	if m == nil {
		return 0, "", false
	}
	n, _ := strconv.Atoi(m[1])
	scalar := m[2]
	if scalar == "" {
		scalar = m[3] + "32"
	}
	switch scalar {
	case "f32", "i32", "u32":
		return n, scalar, true
	}
	return 0, "", false
}

// builtinLayout returns the layout of a scalar, vector or matrix type.
func builtinLayout(typeName string) (layout, bool) {
	switch typeName {
	case "f32", "i32", "u32", "bool":
		return layout{4, 4}, true
	}
	if n, _, ok := vectorShape(typeName); ok {
		if n == 2 {
			return layout{8, 8}, true
		}
		return layout{uint64(n) * 4, 16}, true
	}
	if m := matrixRegex.FindStringSubmatch(typeName); m != nil {
		cols, _ := strconv.Atoi(m[1])
		rows, _ := strconv.Atoi(m[2])
		column, _ := builtinLayout("vec" + strconv.Itoa(rows) + "f")
		return layout{uint64(cols) * column.stride(), column.align}, true
	}
	return layout{}, false
}

// typeLayout resolves a type against the builtins and the structs resolved so far. A runtime
// sized array resolves to one element, the smallest binding that can be useful.
func typeLayout(typeName string, structs map[string]layout) (layout, bool) {
	if l, ok := builtinLayout(typeName); ok {
		return l, true
	}
	if l, ok := structs[typeName]; ok {
		return l, true
	}
	m := arrayRegex.FindStringSubmatch(typeName)
	if m == nil {
		return layout{}, false
	}
	elem, ok := typeLayout(m[1], structs)
	if !ok {
		return layout{}, false
	}
	count := uint64(1)
	if m[2] != "" {
		count, _ = strconv.ParseUint(m[2], 10, 64)
	}
	return layout{elem.stride() * count, elem.align}, true
}

// structLayouts lays out every struct, resolving structs nested in other structs regardless of
// declaration order. Builtin members do not occupy buffer space. A trailing runtime sized array
// contributes its fixed prefix, or one element when it is the only member.
func structLayouts(decls []structDecl) map[string]layout {
	resolved := make(map[string]layout, len(decls))
	pending := slices.Clone(decls)
	for len(pending) > 0 {
		next := pending[:0]
		for _, d := range pending {
			if l, ok := layoutStruct(d, resolved); ok {
				resolved[d.name] = l
			} else {
				next = append(next, d)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return resolved
}

func layoutStruct(d structDecl, resolved map[string]layout) (layout, bool) {
	var offset uint64
	align := uint64(1)
	for i, m := range d.members {
		if m.builtin {
			continue
		}
		l, ok := typeLayout(m.typeName, resolved)
		if !ok {
			return layout{}, false
		}
		runtimeArray := i == len(d.members)-1 && strings.HasPrefix(m.typeName, "array<") && !strings.Contains(m.typeName, ",")
		align = max(align, l.align)
		if runtimeArray && offset > 0 {
			break
		}
		offset = alignUp(offset, l.align) + l.size
	}
	return layout{alignUp(offset, align), align}, true
}

// stripComments removes // and nested /* */ comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		two := ""
		if i+1 < len(source) {
			two = source[i : i+2]
		}
		switch {
		case two == "/*":
			depth++
			i++
		case two == "*/" && depth > 0:
			depth--
			i++
		case depth > 0:
		case two == "//":
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// splitMembers splits a struct body at commas outside angle brackets, so array<T, N> stays whole.
func splitMembers(body string) []string {
	var parts []string
	depth, start := 0, 0
	for i, c := range body {
		switch c {
		case '<':
			depth++
		case '>':
			depth = max(depth-1, 0)
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, body[start:])
}

func parseMember(text string) (member, bool) {
	m := member{location: -1}
	for _, attr := range attributeRegex.FindAllStringSubmatch(text, -1) {
		switch attr[1] {
		case "builtin":
			m.builtin = true
		case "location":
			if loc, err := strconv.Atoi(attr[2]); err == nil {
				m.location = loc
			}
		}
	}
	name, typeName, ok := strings.Cut(attributeRegex.ReplaceAllString(text, ""), ":")
	if !ok {
		return member{}, false
	}
	m.name = strings.TrimSpace(name)
	m.typeName = strings.TrimSpace(typeName)
	return m, m.name != "" && m.typeName != ""
}

func parseStructs(source string) []structDecl {
	var decls []structDecl
	for _, match := range structRegex.FindAllStringSubmatch(source, -1) {
		d := structDecl{name: match[1]}
		for _, text := range splitMembers(match[2]) {
			if m, ok := parseMember(text); ok {
				d.members = append(d.members, m)
			}
		}
		decls = append(decls, d)
	}
	return decls
}

// vertexFormats lists the formats of one to four components per scalar type.
var vertexFormats = map[string][4]wgpu.VertexFormat{
	"f32": {wgpu.VertexFormatFloat32, wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x4},
	"i32": {wgpu.VertexFormatSint32, wgpu.VertexFormatSint32x2, wgpu.VertexFormatSint32x3, wgpu.VertexFormatSint32x4},
	"u32": {wgpu.VertexFormatUint32, wgpu.VertexFormatUint32x2, wgpu.VertexFormatUint32x3, wgpu.VertexFormatUint32x4},
}

// vertexFormat maps a vertex attribute type onto its wgpu format and byte size.
func vertexFormat(typeName string) (wgpu.VertexFormat, uint64, bool) {
	n, scalar := 1, typeName
	if vn, vs, ok := vectorShape(typeName); ok {
		n, scalar = vn, vs
	}
	f, ok := vertexFormats[scalar]
	if !ok {
		return 0, 0, false
	}
	return f[n-1], uint64(n) * 4, true
}

// parseVertexLayouts returns one tightly packed vertex buffer layout per vertex input struct,
// in declaration order. A vertex input struct has @location members and no @builtin member;
// shaders that read their data from storage buffers have none.
//
// Parameters:
//   - source: the expanded WGSL source
//
// Returns:
//   - []wgpu.VertexBufferLayout: vertex layouts in slot order
func parseVertexLayouts(source string) []wgpu.VertexBufferLayout {
	var out []wgpu.VertexBufferLayout
	for _, d := range parseStructs(stripComments(source)) {
		if l, ok := vertexLayout(d); ok {
			out = append(out, l)
		}
	}
	return out
}

func vertexLayout(d structDecl) (wgpu.VertexBufferLayout, bool) {
	var attrs []wgpu.VertexAttribute
	var offset uint64
	for _, m := range d.members {
		if m.builtin || m.location < 0 {
			return wgpu.VertexBufferLayout{}, false
		}
		format, size, ok := vertexFormat(m.typeName)
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{Format: format, Offset: offset, ShaderLocation: uint32(m.location)})
		offset += size
	}
	if len(attrs) == 0 {
		return wgpu.VertexBufferLayout{}, false
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

// resourceEntry builds the layout entry of one declared resource.
func resourceEntry(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string, structs map[string]layout) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}
	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(addressSpace, "storage") && strings.Contains(addressSpace, "read_write"):
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
	case strings.HasPrefix(addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typeName == "texture_depth_2d":
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case strings.HasPrefix(typeName, "texture_2d<"), strings.HasPrefix(typeName, "texture_multisampled_2d<"):
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		entry.Texture.Multisampled = strings.HasPrefix(typeName, "texture_multisampled")
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		if strings.HasSuffix(typeName, "<i32>") {
			entry.Texture.SampleType = wgpu.TextureSampleTypeSint
		} else if strings.HasSuffix(typeName, "<u32>") {
			entry.Texture.SampleType = wgpu.TextureSampleTypeUint
		}
	}
	if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
		if l, ok := typeLayout(typeName, structs); ok {
			entry.Buffer.MinBindingSize = l.size
		}
	}
	return entry
}

// parseBindGroupLayouts collects every @group/@binding declaration into one layout descriptor
// per group with entries sorted by binding. Buffer entries carry the size of the bound type as
// MinBindingSize so that bind group providers can size their buffers from the layout alone.
//
// Parameters:
//   - source: the expanded WGSL source
//   - visibility: the stages that see every entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding index
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := stripComments(source)
	structs := structLayouts(parseStructs(cleaned))

	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, m := range resourceRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		addressSpace := strings.Join(strings.Fields(m[3]), " ")
		entries[group] = append(entries[group], resourceEntry(uint32(binding), visibility, addressSpace, m[5], structs))
		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = m[4]
	}

	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for g, list := range entries {
		slices.SortFunc(list, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		out[g] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return out, names
}

// parseEntryPoint returns the name of the first function carrying the stage attribute matched
// by re, or "" when there is none.
func parseEntryPoint(source string, re *regexp.Regexp) string {
	if m := re.FindStringSubmatch(stripComments(source)); m != nil {
		return m[1]
	}
	return ""
}
