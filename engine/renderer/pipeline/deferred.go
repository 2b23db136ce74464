package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/light"
	"github.com/Carmen-Shannon/oxy-pbr/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
)

// ShadowDepthFormat is the format of the directional shadow map.
const ShadowDepthFormat = wgpu.TextureFormatDepth32Float

// DeferredConfig selects the shading variant and output formats of the
// deferred pipeline set.
type DeferredConfig struct {
	// LightingMode specializes the resolve program.
	LightingMode shading.LightingMode
	// GBufferMode selects split float attachments or one packed attachment.
	GBufferMode gbuffer.Mode
	// HDRFormat is the target format of the resolve and prefilter passes.
	HDRFormat wgpu.TextureFormat
	// OutputFormat is the target format of the post passes, usually the surface format.
	OutputFormat wgpu.TextureFormat
	// Library supplies the programs. A nil Library uses the embedded programs.
	Library shader.Library
}

// DefaultDeferredConfig returns a PBR, float G-buffer configuration writing
// rgba16float HDR targets and a bgra8unorm output.
//
// Returns:
//   - DeferredConfig: the default configuration
func DefaultDeferredConfig() DeferredConfig {
	return DeferredConfig{
		LightingMode: shading.LightingModePBR,
		GBufferMode:  gbuffer.ModeFloat,
		HDRFormat:    wgpu.TextureFormatRGBA16Float,
		OutputFormat: wgpu.TextureFormatBGRA8Unorm,
	}
}

// DeferredPipelines is the configured pipeline of every deferred stage.
type DeferredPipelines struct {
	// Geometry draws tangented meshes into the G-buffer.
	Geometry Pipeline
	// GeometryStatic draws meshes without tangents into the G-buffer.
	GeometryStatic Pipeline
	// Shadow renders light-space depth. It has no fragment shader.
	Shadow Pipeline
	// Skybox draws the environment into the HDR target before the resolve,
	// which leaves pixels without geometry untouched.
	Skybox Pipeline
	// Resolve shades the G-buffer into the HDR target.
	Resolve Pipeline
	// Prefilter renders one roughness level of one cube face.
	Prefilter Pipeline
	// PostInvert inverts the HDR target into the output.
	PostInvert Pipeline
	// PostTonemap tone maps the HDR target into the output.
	PostTonemap Pipeline
}

// All returns every pipeline in frame order.
//
// Returns:
//   - []Pipeline: the pipelines
func (d *DeferredPipelines) All() []Pipeline {
	return []Pipeline{d.Shadow, d.Geometry, d.GeometryStatic, d.Skybox, d.Resolve, d.PostInvert, d.PostTonemap, d.Prefilter}
}

// NewDeferredPipelines loads every program with the configured defines and
// builds the pipeline of each deferred stage. GPU objects are not created;
// the host builds them from each pipeline's Descriptor and stores them with
// SetRenderPipeline.
//
// Parameters:
//   - cfg: the shading variant and target formats
//
// Returns:
//   - *DeferredPipelines: the configured pipelines
//   - error: error if a program fails to load or pre-process
func NewDeferredPipelines(cfg DeferredConfig) (*DeferredPipelines, error) {
	lib := cfg.Library
	if lib == nil {
		lib = shader.NewLibrary()
	}

	shaders := make(map[string]shader.Shader, len(shader.Programs))
	for _, program := range shader.Programs {
		s, err := lib.Load(program.Name,
			shader.WithLightingMode(cfg.LightingMode),
			shader.WithGBufferMode(cfg.GBufferMode),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s pipeline program: %w", program.Name, err)
		}
		shaders[program.Name] = s
	}

	variant := WithShadingVariant(cfg.LightingMode, cfg.GBufferMode)
	key := func(name string) string {
		return fmt.Sprintf("%s[%s,%s]", name, cfg.LightingMode, cfg.GBufferMode)
	}

	attachments := gbuffer.Attachments(cfg.GBufferMode)
	gbufferFormats := make([]wgpu.TextureFormat, len(attachments))
	for i, a := range attachments {
		gbufferFormats[i] = a.Format
	}
	geometry := func(name, vertexProgram string) Pipeline {
		return NewPipeline(key(name), StageGeometry,
			variant,
			WithVertexShader(shaders[vertexProgram]),
			WithFragmentShader(shaders[shader.ProgramGBufferWrite]),
			WithColorFormats(gbufferFormats...),
			WithDepthFormat(gbuffer.DepthFormat),
			WithCullMode(wgpu.CullModeBack),
		)
	}

	fullscreen := func(name string, stage Stage, fragmentProgram string, format wgpu.TextureFormat) Pipeline {
		return NewPipeline(key(name), stage,
			variant,
			WithVertexShader(shaders[shader.ProgramFullscreen]),
			WithFragmentShader(shaders[fragmentProgram]),
			WithColorFormats(format),
			WithDepthTestEnabled(false),
			WithDepthWriteEnabled(false),
		)
	}

	return &DeferredPipelines{
		Geometry:       geometry("geometry", shader.ProgramGeometry),
		GeometryStatic: geometry("geometry_static", shader.ProgramGeometryStatic),
		Shadow: NewPipeline(key("shadow"), StageShadow,
			variant,
			WithVertexShader(shaders[shader.ProgramShadowDepth]),
			WithDepthFormat(ShadowDepthFormat),
			WithDepthBias(light.ShadowDepthBias, light.ShadowDepthBiasSlopeScale),
		),
		Skybox: NewPipeline(key("skybox"), StageSkybox,
			variant,
			WithVertexShader(shaders[shader.ProgramSkyboxCube]),
			WithFragmentShader(shaders[shader.ProgramSkybox]),
			WithColorFormats(cfg.HDRFormat),
			WithDepthTestEnabled(false),
			WithDepthWriteEnabled(false),
			WithCullMode(wgpu.CullModeFront),
		),
		Resolve: fullscreen("lighting_resolve", StageLightingResolve, shader.ProgramLightingResolve, cfg.HDRFormat),
		Prefilter: NewPipeline(key("prefilter"), StagePrefilter,
			variant,
			WithVertexShader(shaders[shader.ProgramCubemap]),
			WithFragmentShader(shaders[shader.ProgramPrefilter]),
			WithColorFormats(cfg.HDRFormat),
			WithDepthTestEnabled(false),
			WithDepthWriteEnabled(false),
		),
		PostInvert:  fullscreen("post_invert", StagePostInvert, shader.ProgramPostInvert, cfg.OutputFormat),
		PostTonemap: fullscreen("post_tonemap", StagePostTonemap, shader.ProgramPostTonemap, cfg.OutputFormat),
	}, nil
}
