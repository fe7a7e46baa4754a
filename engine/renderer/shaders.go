package renderer

import (
	"embed"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-cinematic/engine/camera"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/environment"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/light"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/particle"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/postfx"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/renderer/shader"
)

//go:embed shaders/*.wgsl
var shaderFS embed.FS

// Shader keys.
const (
	ShaderSky       = "sky"
	ShaderMesh      = "mesh"
	ShaderLines     = "lines"
	ShaderParticles = "particles"
	ShaderSprites   = "sprites"
	ShaderBright    = "bright"
	ShaderBlurH     = "blur-h"
	ShaderBlurV     = "blur-v"
	ShaderComposite = "composite"
	ShaderDOF       = "dof"
)

const blurDirectionToken = "BLUR_DIRECTION"

// shaderFile reads one embedded WGSL file.
func shaderFile(name string) (string, error) {
	b, err := shaderFS.ReadFile("shaders/" + name + ".wgsl")
	if err != nil {
		return "", fmt.Errorf("read shader %s: %w", name, err)
	}
	return string(b), nil
}

// newShaderPreProcessor registers the struct declarations of every GPU uniform plus the
// shared frame and fullscreen preludes as includes.
func newShaderPreProcessor() (shader.PreProcessor, error) {
	frame, err := shaderFile("frame")
	if err != nil {
		return nil, err
	}
	fullscreen, err := shaderFile("fullscreen")
	if err != nil {
		return nil, err
	}
	return shader.NewPreProcessor(
		shader.WithInclude("camera", camera.GPUCameraUniformSource),
		shader.WithInclude("light", light.GPULightUniformSource),
		shader.WithInclude("sky", environment.GPUSkyUniformSource),
		shader.WithInclude("post", postfx.GPUPostUniformSource),
		shader.WithInclude("particle", particle.GPUParticleSource),
		shader.WithInclude("sprite", environment.GPUSpriteSource),
		shader.WithInclude("object", GPUObjectDataSource),
		shader.WithInclude("frame", frame),
		shader.WithInclude("fullscreen", fullscreen),
	), nil
}

// loadShaders expands and reflects every shader the renderer uses.
//
// Returns:
//   - map[string]shader.Shader: shaders keyed by the Shader* constants
//   - error: error if a file is missing or a shader fails to parse
func loadShaders() (map[string]shader.Shader, error) {
	pp, err := newShaderPreProcessor()
	if err != nil {
		return nil, err
	}

	sources := make(map[string]string)
	for _, name := range []string{ShaderSky, ShaderMesh, ShaderLines, ShaderParticles, ShaderSprites, ShaderBright, ShaderComposite, ShaderDOF} {
		src, err := shaderFile(name)
		if err != nil {
			return nil, err
		}
		sources[name] = src
	}
	blur, err := shaderFile("blur")
	if err != nil {
		return nil, err
	}
	sources[ShaderBlurH] = strings.ReplaceAll(blur, blurDirectionToken, "vec2<f32>(1.0, 0.0)")
	sources[ShaderBlurV] = strings.ReplaceAll(blur, blurDirectionToken, "vec2<f32>(0.0, 1.0)")

	shaders := make(map[string]shader.Shader, len(sources))
	for key, src := range sources {
		s, err := shader.NewShader(key, src, pp)
		if err != nil {
			return nil, err
		}
		shaders[key] = s
	}
	return shaders, nil
}
