package pipeline

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/light"
	"github.com/Carmen-Shannon/oxy-pbr/engine/model"
	"github.com/Carmen-Shannon/oxy-pbr/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("p", StagePostInvert)
	if p.Stage() != StagePostInvert || p.PipelineKey() != "p" {
		t.Fatalf("stage/key = %v/%q", p.Stage(), p.PipelineKey())
	}
	if !p.DepthTestEnabled() || !p.DepthWriteEnabled() || p.BlendEnabled() {
		t.Errorf("depth test/write/blend = %v/%v/%v", p.DepthTestEnabled(), p.DepthWriteEnabled(), p.BlendEnabled())
	}
	if p.DepthFormat() != wgpu.TextureFormatUndefined {
		t.Errorf("depth format = %v, want undefined", p.DepthFormat())
	}
	if p.LightingMode() != shading.LightingModePBR || p.GBufferMode() != gbuffer.ModeFloat {
		t.Errorf("variant = %v/%v", p.LightingMode(), p.GBufferMode())
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList || p.FrontFace() != wgpu.FrontFaceCCW || p.CullMode() != wgpu.CullModeNone {
		t.Errorf("primitive state = %v/%v/%v", p.Topology(), p.FrontFace(), p.CullMode())
	}
	if p.Shader(shader.ShaderTypeVertex) != nil || p.Shader(shader.ShaderTypeCompute) != nil {
		t.Error("unset shaders should be nil")
	}
	if p.Pipeline() != nil {
		t.Error("render pipeline should be nil before SetRenderPipeline")
	}
}

func TestDescriptor(t *testing.T) {
	lib := shader.NewLibrary()
	vs, err := lib.Load(shader.ProgramFullscreen)
	if err != nil {
		t.Fatal(err)
	}
	fs, err := lib.Load(shader.ProgramPostInvert)
	if err != nil {
		t.Fatal(err)
	}
	blend := &wgpu.BlendState{
		Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
		Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorZero, Operation: wgpu.BlendOperationAdd},
	}

	t.Run("color targets", func(t *testing.T) {
		p := NewPipeline("invert", StagePostInvert,
			WithVertexShader(vs),
			WithFragmentShader(fs),
			WithColorFormats(wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA16Float),
			WithBlendEnabled(true),
			WithBlendState(blend),
			WithWriteMask(wgpu.ColorWriteMaskRed),
			WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
			WithFrontFace(wgpu.FrontFaceCW),
		)
		d := p.Descriptor(nil, nil, nil)
		if d.Label != "invert Render Pipeline" {
			t.Errorf("label = %q", d.Label)
		}
		if d.Vertex.EntryPoint != vs.EntryPoint() || d.Fragment == nil || d.Fragment.EntryPoint != fs.EntryPoint() {
			t.Fatalf("entry points = %q/%+v", d.Vertex.EntryPoint, d.Fragment)
		}
		if len(d.Fragment.Targets) != 2 {
			t.Fatalf("targets = %d, want 2", len(d.Fragment.Targets))
		}
		for i, want := range []wgpu.TextureFormat{wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA16Float} {
			target := d.Fragment.Targets[i]
			if target.Format != want || target.Blend != blend || target.WriteMask != wgpu.ColorWriteMaskRed {
				t.Errorf("target %d = %+v", i, target)
			}
		}
		if d.Primitive.Topology != wgpu.PrimitiveTopologyTriangleStrip || d.Primitive.FrontFace != wgpu.FrontFaceCW {
			t.Errorf("primitive = %+v", d.Primitive)
		}
		if d.DepthStencil != nil {
			t.Error("depth stencil should be nil without a depth format")
		}
		if d.Multisample.Count != 1 || d.Multisample.Mask != 0xFFFFFFFF {
			t.Errorf("multisample = %+v", d.Multisample)
		}
		if len(d.Vertex.Buffers) != 0 {
			t.Errorf("fullscreen buffers = %d, want 0", len(d.Vertex.Buffers))
		}
	})

	t.Run("depth", func(t *testing.T) {
		tests := []struct {
			name      string
			depthTest bool
			want      wgpu.CompareFunction
		}{
			{"tested", true, wgpu.CompareFunctionLess},
			{"untested", false, wgpu.CompareFunctionAlways},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := NewPipeline("depth", StageShadow,
					WithVertexShader(vs),
					WithDepthFormat(wgpu.TextureFormatDepth32Float),
					WithDepthTestEnabled(tt.depthTest),
					WithDepthBias(3, 1.5),
				)
				d := p.Descriptor(nil, nil, nil)
				if d.Fragment != nil {
					t.Error("depth-only pipeline should have no fragment state")
				}
				ds := d.DepthStencil
				if ds == nil {
					t.Fatal("depth stencil is nil")
				}
				if ds.DepthCompare != tt.want || ds.Format != wgpu.TextureFormatDepth32Float {
					t.Errorf("compare/format = %v/%v", ds.DepthCompare, ds.Format)
				}
				if ds.DepthBias != 3 || ds.DepthBiasSlopeScale != 1.5 {
					t.Errorf("bias = %d/%v", ds.DepthBias, ds.DepthBiasSlopeScale)
				}
				if ds.StencilFront.Compare != wgpu.CompareFunctionAlways || ds.StencilBack.Compare != wgpu.CompareFunctionAlways {
					t.Error("stencil faces should always pass")
				}
			})
		}
	})
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Label: "v0", Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageVertex},
			{Binding: 0, Visibility: wgpu.ShaderStageVertex},
		}},
		1: {Label: "v1", Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageVertex}}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Label: "f0", Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
			{Binding: 2, Visibility: wgpu.ShaderStageFragment},
		}},
		2: {Label: "f2", Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	if len(merged) != 3 {
		t.Fatalf("groups = %d, want 3", len(merged))
	}
	g0 := merged[0]
	if g0.Label != "v0" || len(g0.Entries) != 3 {
		t.Fatalf("group 0 = %+v", g0)
	}
	wantVis := []wgpu.ShaderStage{
		wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		wgpu.ShaderStageVertex,
		wgpu.ShaderStageFragment,
	}
	for i, e := range g0.Entries {
		if e.Binding != uint32(i) || e.Visibility != wantVis[i] {
			t.Errorf("entry %d = binding %d visibility %v", i, e.Binding, e.Visibility)
		}
	}
	if merged[1].Label != "v1" || merged[2].Label != "f2" {
		t.Errorf("single-stage groups = %q/%q", merged[1].Label, merged[2].Label)
	}
	if len(mergeBindGroupLayouts(nil, nil)) != 0 {
		t.Error("merging nothing should be empty")
	}
}

func TestNewDeferredPipelines(t *testing.T) {
	tests := []struct {
		name           string
		mode           gbuffer.Mode
		lighting       shading.LightingMode
		gbufferTargets int
	}{
		{"pbr float", gbuffer.ModeFloat, shading.LightingModePBR, 5},
		{"blinn-phong packed", gbuffer.ModePacked, shading.LightingModeBlinnPhong, 1},
		{"unlit float", gbuffer.ModeFloat, shading.LightingModeUnlit, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDeferredConfig()
			cfg.GBufferMode = tt.mode
			cfg.LightingMode = tt.lighting
			d, err := NewDeferredPipelines(cfg)
			if err != nil {
				t.Fatal(err)
			}

			for _, p := range d.All() {
				if p == nil {
					t.Fatal("nil pipeline in set")
				}
				if p.LightingMode() != tt.lighting || p.GBufferMode() != tt.mode {
					t.Errorf("%s variant = %v/%v", p.PipelineKey(), p.LightingMode(), p.GBufferMode())
				}
				if p.Shader(shader.ShaderTypeVertex) == nil {
					t.Errorf("%s has no vertex shader", p.PipelineKey())
				}
				if fs := p.Shader(shader.ShaderTypeFragment); fs != nil {
					defines := fs.Defines()
					if defines[shader.DefineGBufferMode] != uint32(tt.mode) || defines[shader.DefineLightingMode] != uint32(tt.lighting) {
						t.Errorf("%s defines = %v", p.PipelineKey(), defines)
					}
				}
			}

			geo := d.Geometry
			if geo.Stage() != StageGeometry || len(geo.ColorFormats()) != tt.gbufferTargets {
				t.Errorf("geometry stage/targets = %v/%d", geo.Stage(), len(geo.ColorFormats()))
			}
			for i, a := range gbuffer.Attachments(tt.mode) {
				if geo.ColorFormats()[i] != a.Format {
					t.Errorf("geometry target %d = %v, want %v", i, geo.ColorFormats()[i], a.Format)
				}
			}
			if geo.DepthFormat() != gbuffer.DepthFormat || geo.CullMode() != wgpu.CullModeBack {
				t.Errorf("geometry depth/cull = %v/%v", geo.DepthFormat(), geo.CullMode())
			}
			if n := len(geo.Descriptor(nil, nil, nil).Fragment.Targets); n != tt.gbufferTargets {
				t.Errorf("geometry descriptor targets = %d", n)
			}
			buffers := geo.VertexBuffers()
			if len(buffers) != 1 || int(buffers[0].ArrayStride) != (&model.GPUVertex{}).Size() {
				t.Errorf("geometry buffers = %+v", buffers)
			}
			static := d.GeometryStatic.VertexBuffers()
			if len(static) != 1 || int(static[0].ArrayStride) != (&model.GPUStaticVertex{}).Size() {
				t.Errorf("static geometry buffers = %+v", static)
			}
			if groups := geo.BindGroupLayoutDescriptors(); len(groups) != 3 {
				t.Errorf("geometry groups = %d, want 3", len(groups))
			}

			shadow := d.Shadow
			if shadow.Shader(shader.ShaderTypeFragment) != nil || len(shadow.ColorFormats()) != 0 {
				t.Error("shadow pipeline should be depth only")
			}
			if shadow.DepthFormat() != ShadowDepthFormat ||
				shadow.DepthBias() != light.ShadowDepthBias ||
				shadow.DepthBiasSlopeScale() != light.ShadowDepthBiasSlopeScale {
				t.Errorf("shadow depth = %v bias %d/%v", shadow.DepthFormat(), shadow.DepthBias(), shadow.DepthBiasSlopeScale())
			}

			resolve := d.Resolve
			if resolve.DepthFormat() != wgpu.TextureFormatUndefined || resolve.DepthTestEnabled() {
				t.Error("resolve should draw without depth")
			}
			if f := resolve.ColorFormats(); len(f) != 1 || f[0] != cfg.HDRFormat {
				t.Errorf("resolve formats = %v", f)
			}
			if groups := resolve.BindGroupLayoutDescriptors(); len(groups) != 3 || len(groups[0].Entries) != 7 {
				t.Errorf("resolve groups = %d", len(groups))
			}

			prefilter := d.Prefilter.BindGroupLayoutDescriptors()
			if e := prefilter[0].Entries; len(e) != 1 || e[0].Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
				t.Errorf("prefilter params entry = %+v", e)
			}

			sky := d.Skybox
			if sky.Stage() != StageSkybox || sky.CullMode() != wgpu.CullModeFront || sky.DepthTestEnabled() {
				t.Errorf("skybox stage/cull/depth test = %v/%v/%v", sky.Stage(), sky.CullMode(), sky.DepthTestEnabled())
			}
			if f := sky.ColorFormats(); len(f) != 1 || f[0] != cfg.HDRFormat {
				t.Errorf("skybox formats = %v", f)
			}
			if desc := sky.Descriptor(nil, nil, nil); desc.DepthStencil != nil || desc.Primitive.CullMode != wgpu.CullModeFront {
				t.Errorf("skybox descriptor depth/cull = %v/%v", desc.DepthStencil, desc.Primitive.CullMode)
			}
			skyGroups := sky.BindGroupLayoutDescriptors()
			if len(skyGroups) != 1 || len(skyGroups[0].Entries) != 3 {
				t.Fatalf("skybox groups = %+v", skyGroups)
			}
			if e := skyGroups[0].Entries[0]; e.Visibility != wgpu.ShaderStageVertex || e.Buffer.Type != wgpu.BufferBindingTypeUniform {
				t.Errorf("skybox camera entry = %+v", e)
			}
			if e := skyGroups[0].Entries[1]; e.Visibility != wgpu.ShaderStageFragment || e.Texture.ViewDimension != wgpu.TextureViewDimensionCube {
				t.Errorf("skybox cube entry = %+v", e)
			}

			for _, p := range []Pipeline{d.PostInvert, d.PostTonemap} {
				if f := p.ColorFormats(); len(f) != 1 || f[0] != cfg.OutputFormat {
					t.Errorf("%s formats = %v", p.PipelineKey(), f)
				}
			}
		})
	}
}

func TestNewMipmapPipeline(t *testing.T) {
	tests := []struct {
		name   string
		format wgpu.TextureFormat
	}{
		{"rgba8unorm", wgpu.TextureFormatRGBA8Unorm},
		{"rgba16float", wgpu.TextureFormatRGBA16Float},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewMipmapPipeline(nil, tt.format)
			if err != nil {
				t.Fatal(err)
			}
			if p.Stage() != StageMipmap || p.DepthTestEnabled() || p.DepthFormat() != wgpu.TextureFormatUndefined {
				t.Errorf("stage/depth = %v/%v/%v", p.Stage(), p.DepthTestEnabled(), p.DepthFormat())
			}
			if f := p.ColorFormats(); len(f) != 1 || f[0] != tt.format {
				t.Errorf("formats = %v", f)
			}
			groups := p.BindGroupLayoutDescriptors()
			if len(groups) != 1 || len(groups[0].Entries) != 2 {
				t.Fatalf("groups = %+v", groups)
			}
			if groups[0].Entries[1].Sampler.Type != wgpu.SamplerBindingTypeFiltering {
				t.Errorf("sampler type = %v", groups[0].Entries[1].Sampler.Type)
			}
		})
	}

	lib := shader.NewLibrary(shader.WithSourceFS(fstest.MapFS{}))
	if _, err := NewMipmapPipeline(lib, wgpu.TextureFormatRGBA8Unorm); err == nil {
		t.Error("expected an error for a library without programs")
	}
}

func TestNewDeferredPipelinesMissingProgram(t *testing.T) {
	cfg := DefaultDeferredConfig()
	cfg.Library = shader.NewLibrary(shader.WithSourceFS(fstest.MapFS{}))
	_, err := NewDeferredPipelines(cfg)
	if err == nil {
		t.Fatal("expected an error for a library without programs")
	}
	if errors.Is(err, shader.ErrUnknownProgram) {
		t.Errorf("missing file should be a read error, got %v", err)
	}
}

func TestStageString(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageGeometry, "geometry"},
		{StageShadow, "shadow"},
		{StageLightingResolve, "lighting_resolve"},
		{StagePrefilter, "prefilter"},
		{StagePostInvert, "post_invert"},
		{StagePostTonemap, "post_tonemap"},
		{StageSkybox, "skybox"},
		{StageMipmap, "mipmap"},
		{Stage(42), "Stage(42)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.stage.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
