package shading

import "github.com/Carmen-Shannon/oxy-pbr/engine/light"

// ResolverBuilderOption is a function that configures a Resolver during construction.
type ResolverBuilderOption func(*resolver)

// WithLightingMode is an option builder that selects the lighting model.
//
// Parameters:
//   - mode: the lighting mode
//
// Returns:
//   - ResolverBuilderOption: a function that applies the mode option to a resolver
func WithLightingMode(mode LightingMode) ResolverBuilderOption {
	return func(r *resolver) {
		r.mode = mode
	}
}

// WithDirectionalLight is an option builder that sets the single directional
// light of the resolve.
//
// Parameters:
//   - l: the directional light
//
// Returns:
//   - ResolverBuilderOption: a function that applies the light option to a resolver
func WithDirectionalLight(l light.Light) ResolverBuilderOption {
	return func(r *resolver) {
		r.directional = l
	}
}

// WithPointLights is an option builder that sets the point lights. Disabled
// lights and non-point lights are dropped, and at most light.MaxPointLights
// are kept, matching what the point-light storage buffer receives.
//
// Parameters:
//   - lights: the candidate lights
//
// Returns:
//   - ResolverBuilderOption: a function that applies the point lights option to a resolver
func WithPointLights(lights ...light.Light) ResolverBuilderOption {
	return func(r *resolver) {
		r.pointLights = r.pointLights[:0]
		for _, l := range lights {
			if len(r.pointLights) >= light.MaxPointLights {
				break
			}
			if l.Enabled() && l.Type() == light.LightTypePoint {
				r.pointLights = append(r.pointLights, l)
			}
		}
	}
}

// WithShadowMap is an option builder that sets the directional shadow map.
//
// Parameters:
//   - sm: the shadow map
//
// Returns:
//   - ResolverBuilderOption: a function that applies the shadow map option to a resolver
func WithShadowMap(sm ShadowMap) ResolverBuilderOption {
	return func(r *resolver) {
		r.shadowMap = sm
	}
}

// WithEnvironment is an option builder that enables specular image-based
// lighting from a prefiltered environment and a DFG table.
//
// Parameters:
//   - prefiltered: the prefiltered radiance mip chain
//   - dfg: the split-sum lookup table
//
// Returns:
//   - ResolverBuilderOption: a function that applies the environment option to a resolver
func WithEnvironment(prefiltered PrefilteredEnvironment, dfg DFGTable) ResolverBuilderOption {
	return func(r *resolver) {
		r.prefiltered = prefiltered
		r.dfg = dfg
	}
}

// WithIrradiance is an option builder that enables diffuse image-based lighting.
//
// Parameters:
//   - irradiance: the irradiance source
//
// Returns:
//   - ResolverBuilderOption: a function that applies the irradiance option to a resolver
func WithIrradiance(irradiance IrradianceSource) ResolverBuilderOption {
	return func(r *resolver) {
		r.irradiance = irradiance
	}
}
