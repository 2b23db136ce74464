// pre_processor.go expands @oxy: annotations in WGSL source. Includes are
// resolved against a registry of schema sources owned by the engine packages,
// so every struct the host marshals has exactly one WGSL definition. Group and
// provider annotations are collected as declarations for resource wiring, and
// define annotations turn host configuration into WGSL constants.
package shader

import (
	"fmt"
	"maps"
	"strings"

	"github.com/Carmen-Shannon/oxy-pbr/engine/camera"
	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/ibl"
	"github.com/Carmen-Shannon/oxy-pbr/engine/light"
	"github.com/Carmen-Shannon/oxy-pbr/engine/model"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
)

// registryEntry is one includable schema. Type is the WGSL type name emitted
// by group annotations. When Define is set the source is picked from Variants
// by that define's value instead of Source.
type registryEntry struct {
	Source   string
	Type     string
	Define   string
	Variants map[uint32]string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string
	defines              map[string]uint32

	declarations []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source and records the
// resource declarations it finds.
type PreProcessor interface {
	// Process expands every annotation in source. Include annotations inject
	// the registered schema once per source; later includes of the same schema
	// expand to nothing. Group annotations become @group/@binding declarations,
	// define annotations become u32 constants and provider annotations emit no
	// WGSL. The declarations list is reset on every call.
	//
	// Parameters:
	//   - source: WGSL source containing annotations
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: error naming the offending line for malformed annotations,
	//     unknown schemas, or defines without a value
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations collected by the
	// last Process call, in source order.
	//
	// Returns:
	//   - []Annotation: the collected declarations
	Declarations() []Annotation

	// Defines returns a copy of the define table.
	//
	// Returns:
	//   - map[string]uint32: define values keyed by define name
	Defines() map[string]uint32
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with every engine schema registered
// and applies the provided options. No defines are set by default.
//
// Parameters:
//   - opts: variadic list of PreProcessorBuilderOption functions
//
// Returns:
//   - PreProcessor: the configured pre-processor
func NewPreProcessor(opts ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:          {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			AnnotationArgLightUniform:    {Source: light.GPULightUniformSource, Type: "LightUniform"},
			AnnotationArgPointLight:      {Source: light.GPUPointLightSource, Type: "PointLight"},
			AnnotationArgShadowUniform:   {Source: light.GPUShadowUniformSource, Type: "ShadowUniform"},
			AnnotationArgTransform:       {Source: model.GPUTransformUniformSource, Type: "TransformUniform"},
			annotationArgVertex:          {Source: model.GPUVertexSource, Type: "VertexInput"},
			annotationArgStaticVertex:    {Source: model.GPUStaticVertexSource, Type: "StaticVertexInput"},
			annotationArgGBuffer:         {Source: gbuffer.GPUGBufferSource, Type: "PackedGBuffer"},
			annotationArgBRDF:            {Source: shading.BRDFSource},
			AnnotationArgPrefilterParams: {Source: ibl.GPUPrefilterParamsSource, Type: "PrefilterParams"},
			AnnotationArgPostParams:      {Source: shading.GPUPostParamsSource, Type: "PostParams"},
			annotationArgGBufferTargets: {
				Define: DefineGBufferMode,
				Variants: map[uint32]string{
					uint32(gbuffer.ModeFloat):  gbuffer.TargetsSource(gbuffer.ModeFloat),
					uint32(gbuffer.ModePacked): gbuffer.TargetsSource(gbuffer.ModePacked),
				},
			},
			annotationArgGBufferOutput: {
				Type:   "GBufferOutput",
				Define: DefineGBufferMode,
				Variants: map[uint32]string{
					uint32(gbuffer.ModeFloat):  gbuffer.OutputSource(gbuffer.ModeFloat),
					uint32(gbuffer.ModePacked): gbuffer.OutputSource(gbuffer.ModePacked),
				},
			},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
		defines: make(map[string]uint32),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

func (p *preProcessor) Defines() map[string]uint32 {
	return maps.Clone(p.defines)
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			if included[a.Args[0]] {
				continue
			}
			src, err := p.includeSource(a)
			if err != nil {
				return "", err
			}
			included[a.Args[0]] = true
			out = append(out, src)

		case AnnotationTypeBindingGroup:
			wgslType, err := p.bindingType(a)
			if err != nil {
				return "", err
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				*a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], wgslType))
			p.declarations = append(p.declarations, *a)

		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)

		case annotationTypeDefine:
			name := string(a.Args[0])
			v, ok := p.defines[name]
			if !ok {
				return "", fmt.Errorf("line %d: define %q has no value", a.Line, name)
			}
			out = append(out, fmt.Sprintf("const %s: u32 = %du;", defineConstants[name], v))
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) includeSource(a *Annotation) (string, error) {
	entry, ok := p.structRegistry[a.Args[0]]
	if !ok {
		return "", fmt.Errorf("line %d: unknown @oxy include argument %q", a.Line, a.Args[0])
	}
	if entry.Define == "" {
		return entry.Source, nil
	}

	v, ok := p.defines[entry.Define]
	if !ok {
		return "", fmt.Errorf("line %d: include %q needs define %q", a.Line, a.Args[0], entry.Define)
	}
	src, ok := entry.Variants[v]
	if !ok {
		return "", fmt.Errorf("line %d: include %q has no variant for %s=%d", a.Line, a.Args[0], entry.Define, v)
	}
	return src, nil
}

// bindingType resolves the WGSL type of a group annotation, unwrapping a
// runtime-sized array of a registered struct.
func (p *preProcessor) bindingType(a *Annotation) (string, error) {
	key := string(a.Args[2])
	inner, isArray := strings.CutPrefix(key, "array<")
	if isArray {
		key = strings.TrimSuffix(inner, ">")
	}
	entry, ok := p.structRegistry[AnnotationArg(key)]
	if !ok || entry.Type == "" {
		return "", fmt.Errorf("line %d: %q cannot type a binding", a.Line, key)
	}
	if isArray {
		return fmt.Sprintf("array<%s>", entry.Type), nil
	}
	return entry.Type, nil
}
