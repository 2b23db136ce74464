package shading

import (
	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// AmbientTerm is the flat radiance added to every channel of a lit pixel.
const AmbientTerm float32 = 0.1

// pointLightEpsilon keeps point-light attenuation finite at zero distance.
const pointLightEpsilon float32 = 0.001

type resolver struct {
	mode        LightingMode
	directional light.Light
	lightVP     mgl32.Mat4
	pointLights []light.Light
	shadowMap   ShadowMap
	prefiltered PrefilteredEnvironment
	dfg         DFGTable
	irradiance  IrradianceSource
}

// Resolver evaluates the lighting resolve for individual G-buffer pixels.
//
// A Resolver holds everything that is constant across a frame: the lighting
// mode, the directional light and its shadow map, the point lights, and the
// optional environment. Resolve is safe for concurrent use.
type Resolver interface {
	// Mode returns the lighting model used by Resolve.
	//
	// Returns:
	//   - LightingMode: the lighting mode
	Mode() LightingMode

	// PointLights returns the point lights that take part in the resolve, in
	// the order they are summed. Disabled lights are already removed and the
	// list is capped at light.MaxPointLights.
	//
	// Returns:
	//   - []light.Light: the active point lights
	PointLights() []light.Light

	// Resolve returns the final radiance of one pixel.
	//
	// Parameters:
	//   - s: the decoded surface
	//   - world: the world-space position of the pixel
	//   - eye: the world-space camera position
	//
	// Returns:
	//   - mgl32.Vec4: RGB radiance with alpha 1
	Resolve(s gbuffer.Surface, world, eye mgl32.Vec3) mgl32.Vec4
}

var _ Resolver = &resolver{}

// NewResolver creates a Resolver in PBR mode with no lights, then applies the
// provided options.
//
// Parameters:
//   - opts: variadic list of ResolverBuilderOption functions
//
// Returns:
//   - Resolver: the configured resolver
func NewResolver(opts ...ResolverBuilderOption) Resolver {
	r := &resolver{mode: LightingModePBR}
	for _, opt := range opts {
		opt(r)
	}
	if r.directional != nil {
		r.lightVP = light.LightSpaceMatrix(r.directional)
	}
	return r
}

func (r *resolver) Mode() LightingMode {
	return r.mode
}

func (r *resolver) PointLights() []light.Light {
	return r.pointLights
}

func (r *resolver) Resolve(s gbuffer.Surface, world, eye mgl32.Vec3) mgl32.Vec4 {
	emissive := s.Emissive.Vec3()
	if r.mode == LightingModeUnlit {
		return s.BaseColor.Add(emissive).Vec4(1)
	}

	s.Normal = safeNormalize(s.Normal)
	v := safeNormalize(eye.Sub(world))
	brdf := CalculateLight
	if r.mode == LightingModeBlinnPhong {
		brdf = CalculateLightBlinnPhong
	}

	var radiance mgl32.Vec3
	if d := r.directional; d != nil && d.Enabled() {
		dir := d.Direction()
		l := safeNormalize(mgl32.Vec3{-dir[0], -dir[1], -dir[2]})
		contribution := brdf(d.Color(), d.Intensity(), s, l, v)
		if r.shadowMap != nil && d.CastsShadows() {
			contribution = contribution.Mul(ShadowFactor(r.shadowMap, r.lightVP, world))
		}
		radiance = radiance.Add(contribution)
	}

	for _, p := range r.pointLights {
		pos := p.Position()
		toLight := mgl32.Vec3{pos[0], pos[1], pos[2]}.Sub(world)
		dist := toLight.Len()
		if dist > p.Distance() {
			continue
		}
		attenuated := PointLightAttenuation(p.Intensity(), p.Decay(), dist)
		radiance = radiance.Add(brdf(p.Color(), attenuated, s, safeNormalize(toLight), v))
	}

	if r.prefiltered != nil && r.dfg != nil {
		radiance = radiance.Add(EvaluateIBL(s, s.Normal, v, r.prefiltered, r.dfg))
	}
	radiance = radiance.Add(EvaluateDiffuseIBL(s, s.Normal, r.irradiance))

	ambient := mgl32.Vec3{AmbientTerm, AmbientTerm, AmbientTerm}
	return radiance.Add(ambient).Add(emissive).Vec4(1)
}

// PointLightAttenuation returns intensity / (decay·d² + ε).
//
// Parameters:
//   - intensity: the light intensity
//   - decay: the quadratic falloff coefficient
//   - dist: distance from the light to the surface
//
// Returns:
//   - float32: the attenuated intensity
func PointLightAttenuation(intensity, decay, dist float32) float32 {
	return intensity / (decay*dist*dist + pointLightEpsilon)
}

// ReconstructWorldPosition rebuilds a world position from a screen coordinate
// and its depth-buffer value, as the packed G-buffer resolve does.
//
// Parameters:
//   - uv: texture coordinate of the pixel, v pointing down
//   - depth: the stored depth in [0, 1]
//   - invViewProj: the inverse of the camera view-projection matrix
//
// Returns:
//   - mgl32.Vec3: the world-space position
func ReconstructWorldPosition(uv mgl32.Vec2, depth float32, invViewProj mgl32.Mat4) mgl32.Vec3 {
	ndc := mgl32.Vec4{uv.X()*2 - 1, (1-uv.Y())*2 - 1, depth, 1}
	p := invViewProj.Mul4x1(ndc)
	return p.Vec3().Mul(1 / p.W())
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.LenSqr() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return v.Normalize()
}
