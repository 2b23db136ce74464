// annotations.go defines the @oxy: annotation grammar understood by the WGSL
// pre-processor. An annotation is a single-line WGSL comment; it either injects
// a registered schema (include), declares a buffer binding (group), records a
// hand-written binding's owner (provider), or materializes a host constant
// (define).
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks an annotation inside a WGSL line comment.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered schema at
	// the annotation site.
	//
	// Syntax: //@oxy:include <schema>
	//
	// Example: //@oxy:include camera
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding buffer declaration
	// typed by a registered struct and records it in the declarations list.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@oxy:group 0 0 storage_uniform camera camera
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider records which host resource backs a hand-written
	// binding (textures, samplers) without emitting any WGSL. An optional
	// binding role names the individual resource inside the provider's group.
	//
	// Syntax:
	//   //@oxy:provider <group> <binding> <provider_identity>
	//   //@oxy:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Example: //@oxy:provider 0 2 shadow shadow_map
	AnnotationTypeProvider AnnotationType = "provider"

	// annotationTypeDefine emits `const NAME: u32 = value;` with the value
	// taken from the pre-processor's define table.
	//
	// Syntax: //@oxy:define <name>
	//
	// Example: //@oxy:define lighting_mode
	annotationTypeDefine AnnotationType = "define"
)

// Annotation is one parsed @oxy: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = schema key
	//   - group:    [0] = address space, [1] = var name, [2] = type key
	//   - provider: [0] = provider identity, [1] = binding role (optional)
	//   - define:   [0] = define name
	Args []AnnotationArg

	// Line is the 1-based source line of the annotation.
	Line int

	// Group is the @group index of group and provider annotations.
	Group *int

	// Binding is the @binding index of group and provider annotations.
	Binding *int
}

// AnnotationArg is a typed annotation argument.
type AnnotationArg string

// Schema arguments. Each names a WGSL asset embedded next to its Go mirror.
const (
	// AnnotationArgCamera is the CameraUniform struct (engine/camera).
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgLightUniform is the LightUniform struct (engine/light).
	AnnotationArgLightUniform AnnotationArg = "light_uniform"

	// AnnotationArgPointLight is the PointLight storage element (engine/light).
	AnnotationArgPointLight AnnotationArg = "point_light"

	// AnnotationArgShadowUniform is the ShadowUniform struct (engine/light).
	AnnotationArgShadowUniform AnnotationArg = "shadow_uniform"

	// AnnotationArgTransform is the TransformUniform struct (engine/model).
	AnnotationArgTransform AnnotationArg = "transform"

	// annotationArgVertex is the tangent-space VertexInput struct (engine/model).
	annotationArgVertex AnnotationArg = "vertex"

	// annotationArgStaticVertex is the StaticVertexInput struct (engine/model).
	annotationArgStaticVertex AnnotationArg = "static_vertex"

	// annotationArgGBuffer is the PBRSurface/PackedGBuffer schema with its
	// pack and unpack functions (engine/gbuffer).
	annotationArgGBuffer AnnotationArg = "gbuffer"

	// annotationArgGBufferTargets binds the G-buffer attachments for the
	// resolve; the source depends on the gbuffer_mode define.
	annotationArgGBufferTargets AnnotationArg = "gbuffer_targets"

	// annotationArgGBufferOutput declares the geometry pass fragment output;
	// the source depends on the gbuffer_mode define.
	annotationArgGBufferOutput AnnotationArg = "gbuffer_output"

	// annotationArgBRDF is the BRDF function library (engine/shading).
	annotationArgBRDF AnnotationArg = "brdf"

	// AnnotationArgPrefilterParams is the PrefilterParams struct (engine/ibl).
	AnnotationArgPrefilterParams AnnotationArg = "prefilter_params"

	// AnnotationArgPostParams is the PostParams struct (engine/shading).
	AnnotationArgPostParams AnnotationArg = "post_params"
)

// Address space arguments of @oxy:group annotations.
const (
	// annotationArgStorageTypeUniform maps to var<uniform>.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read>.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write>.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// Provider identities of @oxy:provider annotations.
const (
	// AnnotationArgMaterial owns the geometry pass material textures.
	AnnotationArgMaterial AnnotationArg = "material"

	// AnnotationArgLights owns the light uniform and the point-light buffer.
	AnnotationArgLights AnnotationArg = "lights"

	// AnnotationArgShadow owns the shadow depth texture and comparison sampler.
	AnnotationArgShadow AnnotationArg = "shadow"

	// AnnotationArgGBuffer owns the G-buffer attachments read by the resolve.
	AnnotationArgGBuffer AnnotationArg = "gbuffer"

	// AnnotationArgEnvironment owns the environment cube, the DFG table and
	// their sampler.
	AnnotationArgEnvironment AnnotationArg = "environment"

	// AnnotationArgPost owns the input texture of a post-processing pass.
	AnnotationArgPost AnnotationArg = "post"

	// AnnotationArgMipmap owns the source level and sampler of a mip blit.
	AnnotationArgMipmap AnnotationArg = "mipmap"
)

// Binding roles qualify individual bindings inside a provider's group.
const (
	AnnotationArgBaseColorTexture         AnnotationArg = "base_color_texture"
	AnnotationArgBaseColorSampler         AnnotationArg = "base_color_sampler"
	AnnotationArgNormalTexture            AnnotationArg = "normal_texture"
	AnnotationArgMetallicRoughnessTexture AnnotationArg = "metallic_roughness_texture"
	AnnotationArgEmissiveTexture          AnnotationArg = "emissive_texture"
	AnnotationArgShadowMap                AnnotationArg = "shadow_map"
	AnnotationArgShadowSampler            AnnotationArg = "shadow_sampler"
	AnnotationArgDFGTexture               AnnotationArg = "dfg_lut"
	AnnotationArgEnvironmentTexture       AnnotationArg = "environment_cube"
	AnnotationArgEnvironmentSampler       AnnotationArg = "environment_sampler"
	AnnotationArgSkyboxTexture            AnnotationArg = "skybox_cube"
	AnnotationArgSkyboxSampler            AnnotationArg = "skybox_sampler"
	AnnotationArgSourceTexture            AnnotationArg = "source_texture"
	AnnotationArgSourceSampler            AnnotationArg = "source_sampler"
)

// Define names of @oxy:define annotations.
const (
	// DefineLightingMode selects the resolve's lighting model (shading.LightingMode).
	DefineLightingMode = "lighting_mode"

	// DefineGBufferMode selects float or packed G-buffer storage (gbuffer.Mode).
	DefineGBufferMode = "gbuffer_mode"

	// DefineGBufferLayoutVersion is the packed layout version the host was built with.
	DefineGBufferLayoutVersion = "gbuffer_layout_version"
)

// defineConstants maps each define to the WGSL constant it emits.
var defineConstants = map[string]string{
	DefineLightingMode:         "LIGHTING_MODE",
	DefineGBufferMode:          "GBUFFER_MODE",
	DefineGBufferLayoutVersion: "HOST_GBUFFER_LAYOUT_VERSION",
}

var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgLightUniform,
	AnnotationArgPointLight,
	AnnotationArgShadowUniform,
	AnnotationArgTransform,
	annotationArgVertex,
	annotationArgStaticVertex,
	annotationArgGBuffer,
	annotationArgGBufferTargets,
	annotationArgGBufferOutput,
	annotationArgBRDF,
	AnnotationArgPrefilterParams,
	AnnotationArgPostParams,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgMaterial,
	AnnotationArgLights,
	AnnotationArgShadow,
	AnnotationArgGBuffer,
	AnnotationArgEnvironment,
	AnnotationArgPost,
	AnnotationArgMipmap,
}

var validBindingRoles = []AnnotationArg{
	AnnotationArgBaseColorTexture,
	AnnotationArgBaseColorSampler,
	AnnotationArgNormalTexture,
	AnnotationArgMetallicRoughnessTexture,
	AnnotationArgEmissiveTexture,
	AnnotationArgShadowMap,
	AnnotationArgShadowSampler,
	AnnotationArgDFGTexture,
	AnnotationArgEnvironmentTexture,
	AnnotationArgEnvironmentSampler,
	AnnotationArgSkyboxTexture,
	AnnotationArgSkyboxSampler,
	AnnotationArgSourceTexture,
	AnnotationArgSourceSampler,
}

// parseAnnotation parses one WGSL source line. Lines without the annotation
// prefix return (nil, nil); malformed annotations return an error carrying
// the line number.
//
// Parameters:
//   - line: the raw WGSL source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, after, ok := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{Type: annotationTypeInclude, Args: []AnnotationArg{AnnotationArg(args[1])}, Line: lineNum}, nil

	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires five arguments (group, binding, address space, var name, type)", lineNum)
		}
		group, binding, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		elem := args[5]
		if inner, ok := strings.CutPrefix(elem, "array<"); ok {
			elem = strings.TrimSuffix(inner, ">")
		}
		if !slices.Contains(validStructTypes, AnnotationArg(elem)) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, elem)
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil

	case AnnotationTypeProvider:
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @oxy provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		group, binding, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @oxy provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @oxy provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil

	case annotationTypeDefine:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy define annotation requires exactly one argument", lineNum)
		}
		if _, ok := defineConstants[args[1]]; !ok {
			return nil, fmt.Errorf("line %d: unknown define %q in @oxy define annotation", lineNum, args[1])
		}
		return &Annotation{Type: annotationTypeDefine, Args: []AnnotationArg{AnnotationArg(args[1])}, Line: lineNum}, nil

	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}

func parseGroupBinding(groupArg, bindingArg string, lineNum int) (int, int, error) {
	group, err := strconv.Atoi(groupArg)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q: %w", lineNum, groupArg, err)
	}
	binding, err := strconv.Atoi(bindingArg)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q: %w", lineNum, bindingArg, err)
	}
	return group, binding, nil
}
