package shader

import (
	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
)

// PreProcessorBuilderOption is a function that configures a PreProcessor during construction.
type PreProcessorBuilderOption func(*preProcessor)

// WithDefine is an option builder that sets the value emitted for a define annotation.
//
// Parameters:
//   - name: the define name, e.g. DefineLightingMode
//   - value: the constant's value
//
// Returns:
//   - PreProcessorBuilderOption: a function that applies the define to a pre-processor
func WithDefine(name string, value uint32) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.defines[name] = value
	}
}

// WithLightingMode is an option builder that sets the lighting_mode define.
//
// Parameters:
//   - mode: the resolve's lighting model
//
// Returns:
//   - PreProcessorBuilderOption: a function that applies the lighting mode to a pre-processor
func WithLightingMode(mode shading.LightingMode) PreProcessorBuilderOption {
	return WithDefine(DefineLightingMode, uint32(mode))
}

// WithGBufferMode is an option builder that sets the gbuffer_mode define and
// the host's packed layout version, which travel together.
//
// Parameters:
//   - mode: the G-buffer storage mode
//
// Returns:
//   - PreProcessorBuilderOption: a function that applies the G-buffer mode to a pre-processor
func WithGBufferMode(mode gbuffer.Mode) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.defines[DefineGBufferMode] = uint32(mode)
		p.defines[DefineGBufferLayoutVersion] = gbuffer.GBufferLayoutVersion
	}
}
