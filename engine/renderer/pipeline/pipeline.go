package pipeline

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
)

// Stage identifies which pass of the deferred renderer a pipeline draws.
type Stage int

const (
	// StageGeometry transforms meshes and writes the G-buffer.
	StageGeometry Stage = iota

	// StageShadow renders light-space depth for the directional shadow map.
	StageShadow

	// StageLightingResolve shades the G-buffer with a fullscreen triangle.
	StageLightingResolve

	// StagePrefilter convolves one face of an environment cubemap mip.
	StagePrefilter

	// StagePostInvert inverts the color of the resolved image.
	StagePostInvert

	// StagePostTonemap applies exposure tone mapping to the resolved image.
	StagePostTonemap

	// StageSkybox draws the environment behind the resolved geometry.
	StageSkybox

	// StageMipmap blits one mip level of a texture from the level above it.
	StageMipmap
)

func (s Stage) String() string {
	switch s {
	case StageGeometry:
		return "geometry"
	case StageShadow:
		return "shadow"
	case StageLightingResolve:
		return "lighting_resolve"
	case StagePrefilter:
		return "prefilter"
	case StagePostInvert:
		return "post_invert"
	case StagePostTonemap:
		return "post_tonemap"
	case StageSkybox:
		return "skybox"
	case StageMipmap:
		return "mipmap"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	stage       Stage
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	// renderPipeline is set by the host once it has created the GPU object.
	renderPipeline *wgpu.RenderPipeline

	colorFormats []wgpu.TextureFormat
	depthFormat  wgpu.TextureFormat
	lightingMode shading.LightingMode
	gbufferMode  gbuffer.Mode

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline holds everything a host needs to create the render pipeline of one
// deferred stage: its shaders, the formats of the targets it draws into, the
// shading variant it was built for, and its fixed-function state.
type Pipeline interface {
	// Stage returns the pass this pipeline draws.
	//
	// Returns:
	//   - Stage: the deferred stage
	Stage() Stage

	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader of the given stage, or nil if none is set.
	// Depth-only pipelines have no fragment shader.
	//
	// Parameters:
	//   - shaderType: shader.ShaderTypeVertex or shader.ShaderTypeFragment
	//
	// Returns:
	//   - shader.Shader: the shader, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// Pipeline returns the GPU pipeline set by the host, or nil before SetRenderPipeline.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the created render pipeline
	Pipeline() *wgpu.RenderPipeline

	// ColorFormats returns the format of every color target in @location order.
	//
	// Returns:
	//   - []wgpu.TextureFormat: the color target formats, empty for depth-only pipelines
	ColorFormats() []wgpu.TextureFormat

	// DepthFormat returns the depth attachment format, or wgpu.TextureFormatUndefined
	// if the pipeline draws without depth.
	//
	// Returns:
	//   - wgpu.TextureFormat: the depth format
	DepthFormat() wgpu.TextureFormat

	// LightingMode returns the lighting mode the shaders were specialized for.
	//
	// Returns:
	//   - shading.LightingMode: the lighting mode
	LightingMode() shading.LightingMode

	// GBufferMode returns the G-buffer storage mode the shaders were specialized for.
	//
	// Returns:
	//   - gbuffer.Mode: the G-buffer mode
	GBufferMode() gbuffer.Mode

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthBias returns the constant depth bias configured for this pipeline.
	//
	// Returns:
	//   - int32: the depth bias value for this pipeline
	DepthBias() int32

	// DepthBiasSlopeScale returns the slope-scaled depth bias configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias slope scale for this pipeline
	DepthBiasSlopeScale() float32

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask applied to every color target.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, used only when blending is enabled
	BlendState() *wgpu.BlendState

	// BindGroupLayoutDescriptors merges the bind group layouts of the vertex
	// and fragment shaders. A binding declared by both stages is visible to both.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged layouts keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// VertexBuffers returns the vertex shader's buffer layouts ordered by buffer slot.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexBuffers() []wgpu.VertexBufferLayout

	// Descriptor assembles the render pipeline descriptor from the pipeline's
	// state and the host-created modules and layout.
	//
	// Parameters:
	//   - layout: the pipeline layout built from BindGroupLayoutDescriptors
	//   - vs: the vertex shader module
	//   - fs: the fragment shader module, ignored for depth-only pipelines
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor to pass to the device
	Descriptor(layout *wgpu.PipelineLayout, vs, fs *wgpu.ShaderModule) *wgpu.RenderPipelineDescriptor

	// SetRenderPipeline stores the GPU pipeline created by the host.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline for one deferred stage.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - stage: the deferred stage the pipeline draws
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified stage and configuration
func NewPipeline(pipelineKey string, stage Stage, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		stage:             stage,
		depthFormat:       wgpu.TextureFormatUndefined,
		lightingMode:      shading.LightingModePBR,
		gbufferMode:       gbuffer.ModeFloat,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Stage() Stage {
	return p.stage
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) ColorFormats() []wgpu.TextureFormat {
	return p.colorFormats
}

func (p *pipeline) DepthFormat() wgpu.TextureFormat {
	return p.depthFormat
}

func (p *pipeline) LightingMode() shading.LightingMode {
	return p.lightingMode
}

func (p *pipeline) GBufferMode() gbuffer.Mode {
	return p.gbufferMode
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	var vertex, fragment map[int]wgpu.BindGroupLayoutDescriptor
	if p.vertexShader != nil {
		vertex = p.vertexShader.BindGroupLayoutDescriptors()
	}
	if p.fragmentShader != nil {
		fragment = p.fragmentShader.BindGroupLayoutDescriptors()
	}
	return mergeBindGroupLayouts(vertex, fragment)
}

func (p *pipeline) VertexBuffers() []wgpu.VertexBufferLayout {
	if p.vertexShader == nil {
		return nil
	}
	layouts := p.vertexShader.VertexLayouts()
	slots := make([]int, 0, len(layouts))
	for slot := range layouts {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	buffers := make([]wgpu.VertexBufferLayout, 0, len(slots))
	for _, slot := range slots {
		buffers = append(buffers, layouts[slot]...)
	}
	return buffers
}

func (p *pipeline) Descriptor(layout *wgpu.PipelineLayout, vs, fs *wgpu.ShaderModule) *wgpu.RenderPipelineDescriptor {
	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.pipelineKey + " Render Pipeline",
		Layout: layout,
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if p.vertexShader != nil {
		desc.Vertex = wgpu.VertexState{
			Module:     vs,
			EntryPoint: p.vertexShader.EntryPoint(),
			Buffers:    p.VertexBuffers(),
		}
	}

	if p.fragmentShader != nil {
		targets := make([]wgpu.ColorTargetState, 0, len(p.colorFormats))
		for _, format := range p.colorFormats {
			state := wgpu.ColorTargetState{
				Format:    format,
				WriteMask: p.writeMask,
			}
			if p.blendEnabled {
				state.Blend = p.blendState
			}
			targets = append(targets, state)
		}
		desc.Fragment = &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: p.fragmentShader.EntryPoint(),
			Targets:    targets,
		}
	}

	if p.depthFormat != wgpu.TextureFormatUndefined {
		depthCompare := wgpu.CompareFunctionLess
		if !p.depthTestEnabled {
			depthCompare = wgpu.CompareFunctionAlways
		}
		desc.DepthStencil = &wgpu.DepthStencilState{
			Format:              p.depthFormat,
			DepthWriteEnabled:   p.depthWriteEnabled,
			DepthCompare:        depthCompare,
			DepthBias:           p.depthBias,
			DepthBiasSlopeScale: p.depthBiasSlopeScale,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}
	return desc
}

func mergeBindGroupLayouts(
	vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor,
) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)
	for g, desc := range vertexLayouts {
		merged[g] = desc
	}

	for g, fDesc := range fragmentLayouts {
		vDesc, ok := merged[g]
		if !ok {
			merged[g] = fDesc
			continue
		}

		entryMap := make(map[uint32]wgpu.BindGroupLayoutEntry)
		for _, e := range vDesc.Entries {
			entryMap[e.Binding] = e
		}
		for _, e := range fDesc.Entries {
			if existing, ok := entryMap[e.Binding]; ok {
				// same binding in both stages
				existing.Visibility |= e.Visibility
				entryMap[e.Binding] = existing
			} else {
				entryMap[e.Binding] = e
			}
		}

		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
		for _, e := range entryMap {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		merged[g] = wgpu.BindGroupLayoutDescriptor{
			Label:   vDesc.Label,
			Entries: entries,
		}
	}
	return merged
}
