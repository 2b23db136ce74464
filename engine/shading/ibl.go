package shading

import (
	"math"
	"math/bits"

	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxReflectionLod is the prefiltered mip level sampled at roughness 1.
const MaxReflectionLod float32 = 5

// Environment is a radiance source indexed by world direction.
type Environment interface {
	// Sample returns the radiance arriving from direction dir.
	Sample(dir mgl32.Vec3) mgl32.Vec3
}

// EnvironmentFunc adapts a plain function to the Environment interface.
type EnvironmentFunc func(dir mgl32.Vec3) mgl32.Vec3

func (f EnvironmentFunc) Sample(dir mgl32.Vec3) mgl32.Vec3 {
	return f(dir)
}

// PrefilteredEnvironment is a roughness-prefiltered radiance mip chain.
type PrefilteredEnvironment interface {
	// SampleLod returns the prefiltered radiance along dir at mip level lod,
	// interpolating between neighbouring levels.
	SampleLod(dir mgl32.Vec3, lod float32) mgl32.Vec3
}

// DFGTable is the split-sum lookup table indexed by (n·v, roughness).
type DFGTable interface {
	// Lookup returns the Fresnel scale (x) and bias (y) terms.
	Lookup(nv, roughness float32) mgl32.Vec2
}

// IrradianceSource supplies diffuse irradiance for image-based lighting.
// When none is configured the diffuse IBL term is zero.
type IrradianceSource interface {
	// Irradiance returns the cosine-convolved radiance around normal n.
	Irradiance(n mgl32.Vec3) mgl32.Vec3
}

// RadicalInverseVdC mirrors the bits of i around the binary point, giving the
// base-2 Van der Corput sequence.
//
// Parameters:
//   - i: the sample index
//
// Returns:
//   - float32: a value in [0, 1)
func RadicalInverseVdC(i uint32) float32 {
	return float32(float64(bits.Reverse32(i)) * 2.3283064365386963e-10) // 1 / 2^32
}

// Hammersley returns sample i of an n-point Hammersley set: (i/n, VdC(i)).
//
// Parameters:
//   - i: the sample index
//   - n: the total number of samples
//
// Returns:
//   - mgl32.Vec2: the low-discrepancy point in [0, 1)²
func Hammersley(i, n uint32) mgl32.Vec2 {
	return mgl32.Vec2{float32(i) / float32(n), RadicalInverseVdC(i)}
}

// ImportanceSampleGGX maps a uniform point to a half vector distributed
// according to the GGX lobe of the given roughness around n.
//
// Parameters:
//   - xi: uniform sample in [0, 1)²
//   - n: unit normal the lobe is centred on
//   - roughness: perceptual roughness, squared into α internally
//
// Returns:
//   - mgl32.Vec3: unit world-space half vector
func ImportanceSampleGGX(xi mgl32.Vec2, n mgl32.Vec3, roughness float32) mgl32.Vec3 {
	a := roughness * roughness

	phi := 2 * math.Pi * float64(xi.X())
	cosTheta := math.Sqrt(float64((1 - xi.Y()) / (1 + (a*a-1)*xi.Y())))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))

	h := mgl32.Vec3{
		float32(math.Cos(phi) * sinTheta),
		float32(math.Sin(phi) * sinTheta),
		float32(cosTheta),
	}

	up := mgl32.Vec3{0, 0, 1}
	if math.Abs(float64(n.Z())) >= 0.999 {
		up = mgl32.Vec3{1, 0, 0}
	}
	tangent := up.Cross(n).Normalize()
	bitangent := n.Cross(tangent)

	return tangent.Mul(h.X()).Add(bitangent.Mul(h.Y())).Add(n.Mul(h.Z())).Normalize()
}

// Prefilter convolves env with the GGX lobe of the given roughness around n,
// assuming the view and reflection directions equal n. Samples below the
// horizon are discarded; when no sample survives, including sampleCount 0,
// the unfiltered env(n) is returned so the result is never NaN.
//
// Parameters:
//   - env: the source radiance
//   - n: unit lookup direction
//   - roughness: perceptual roughness
//   - sampleCount: number of Hammersley samples
//
// Returns:
//   - mgl32.Vec3: the prefiltered radiance
func Prefilter(env Environment, n mgl32.Vec3, roughness float32, sampleCount uint32) mgl32.Vec3 {
	v := n
	var sum mgl32.Vec3
	var weight float32
	for i := uint32(0); i < sampleCount; i++ {
		h := ImportanceSampleGGX(Hammersley(i, sampleCount), n, roughness)
		l := h.Mul(2 * v.Dot(h)).Sub(v)
		nl := n.Dot(l)
		if nl > 0 {
			sum = sum.Add(env.Sample(l).Mul(nl))
			weight += nl
		}
	}
	if weight == 0 {
		return env.Sample(n)
	}
	return sum.Mul(1 / weight)
}

// IntegrateDFG computes the split-sum scale and bias for one (n·v, roughness)
// pair by importance sampling the GGX lobe around +Z.
//
// Parameters:
//   - nv: cosine between the normal and the view vector
//   - roughness: perceptual roughness
//   - sampleCount: number of Hammersley samples
//
// Returns:
//   - mgl32.Vec2: x = scale applied to f0, y = bias
func IntegrateDFG(nv, roughness float32, sampleCount uint32) mgl32.Vec2 {
	if sampleCount == 0 {
		return mgl32.Vec2{}
	}
	nv = mgl32.Clamp(nv, 1e-4, 1)
	v := mgl32.Vec3{float32(math.Sqrt(float64(1 - nv*nv))), 0, nv}
	n := mgl32.Vec3{0, 0, 1}
	alpha := roughness * roughness

	var a, b float32
	for i := uint32(0); i < sampleCount; i++ {
		h := ImportanceSampleGGX(Hammersley(i, sampleCount), n, roughness)
		vh := v.Dot(h)
		l := h.Mul(2 * vh).Sub(v)

		nl := saturate(l.Z())
		nh := saturate(h.Z())
		vh = saturate(vh)
		if nl <= 0 || nh <= 0 {
			continue
		}
		vis := VisibilitySmithGGX(nl, nv, alpha) * 4 * nl * vh / nh
		fc := pow5(1 - vh)
		a += (1 - fc) * vis
		b += fc * vis
	}
	return mgl32.Vec2{a, b}.Mul(1 / float32(sampleCount))
}

// ReflectionLod maps perceptual roughness to a prefiltered mip level.
func ReflectionLod(roughness float32) float32 {
	return saturate(roughness) * MaxReflectionLod
}

// EvaluateIBL returns the split-sum specular image-based lighting:
// prefiltered(R, roughness·MaxReflectionLod) · (f0·dfg.x + dfg.y).
//
// Parameters:
//   - s: the surface being lit
//   - n: unit surface normal
//   - v: unit vector toward the viewer
//   - prefiltered: the prefiltered environment
//   - dfg: the split-sum lookup table
//
// Returns:
//   - mgl32.Vec3: the specular IBL radiance
func EvaluateIBL(s gbuffer.Surface, n, v mgl32.Vec3, prefiltered PrefilteredEnvironment, dfg DFGTable) mgl32.Vec3 {
	nv := saturate(n.Dot(v))
	r := n.Mul(2 * n.Dot(v)).Sub(v)
	radiance := prefiltered.SampleLod(r, ReflectionLod(s.PerceptualRoughness))
	env := dfg.Lookup(nv, s.PerceptualRoughness)
	f0 := s.F0()
	bias := mgl32.Vec3{env.Y(), env.Y(), env.Y()}
	return mulComponents(radiance, f0.Mul(env.X()).Add(bias))
}

// EvaluateDiffuseIBL returns diffuse color × irradiance(n), or zero when
// irradiance is nil.
//
// Parameters:
//   - s: the surface being lit
//   - n: unit surface normal
//   - irradiance: the diffuse irradiance source, may be nil
//
// Returns:
//   - mgl32.Vec3: the diffuse IBL radiance
func EvaluateDiffuseIBL(s gbuffer.Surface, n mgl32.Vec3, irradiance IrradianceSource) mgl32.Vec3 {
	if irradiance == nil {
		return mgl32.Vec3{}
	}
	return mulComponents(s.DiffuseColor(), irradiance.Irradiance(n))
}
