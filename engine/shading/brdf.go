// Package shading is the CPU reference of the deferred lighting resolve. Its
// functions mirror the WGSL programs in the shader library one for one and are
// pure, so they are safe to call from any number of goroutines.
package shading

import (
	"math"

	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/go-gl/mathgl/mgl32"
)

// visibilityEpsilon keeps the visibility denominator positive at grazing angles.
const visibilityEpsilon float32 = 0.001

// Fresnel evaluates the Schlick approximation f0 + (1 - f0)·(1 - v·h)⁵.
//
// Parameters:
//   - f0: reflectance at normal incidence
//   - vh: cosine between the view vector and the half vector
//
// Returns:
//   - mgl32.Vec3: reflectance per channel
func Fresnel(f0 mgl32.Vec3, vh float32) mgl32.Vec3 {
	fc := pow5(1 - saturate(vh))
	one := mgl32.Vec3{1, 1, 1}
	return f0.Add(one.Sub(f0).Mul(fc))
}

// DistributionGGX evaluates the Trowbridge-Reitz normal distribution
// α² / (π·((n·h)²·(α²−1)+1)²).
//
// Parameters:
//   - nh: cosine between the normal and the half vector
//   - alpha: linear roughness
//
// Returns:
//   - float32: microfacet density
func DistributionGGX(nh, alpha float32) float32 {
	a2 := alpha * alpha
	f := nh*nh*(a2-1) + 1
	return a2 / (math.Pi * f * f)
}

// VisibilitySmithGGX evaluates the height-correlated Smith visibility term in
// its fast form 0.5 / (n·l·(n·v·(1−α)+α) + n·v·(n·l·(1−α)+α) + ε).
//
// Parameters:
//   - nl: cosine between the normal and the light vector
//   - nv: cosine between the normal and the view vector
//   - alpha: linear roughness
//
// Returns:
//   - float32: the visibility term, already divided by 4·n·l·n·v
func VisibilitySmithGGX(nl, nv, alpha float32) float32 {
	ggxV := nl * (nv*(1-alpha) + alpha)
	ggxL := nv * (nl*(1-alpha) + alpha)
	return 0.5 / (ggxV + ggxL + visibilityEpsilon)
}

// CalculateLight evaluates the Cook-Torrance specular lobe plus Lambert
// diffuse for one light and returns the outgoing radiance.
// A light below the surface horizon (n·l ≤ 0) contributes exactly zero.
//
// Parameters:
//   - color: light color; only RGB is used
//   - intensity: light intensity, already attenuated for distance
//   - s: the surface being lit
//   - l: unit vector from the surface toward the light
//   - v: unit vector from the surface toward the viewer
//
// Returns:
//   - mgl32.Vec3: outgoing radiance
func CalculateLight(color mgl32.Vec4, intensity float32, s gbuffer.Surface, l, v mgl32.Vec3) mgl32.Vec3 {
	n := s.Normal
	nl := n.Dot(l)
	if nl <= 0 {
		return mgl32.Vec3{}
	}
	h := halfVector(l, v)
	nv := saturate(n.Dot(v))
	nh := saturate(n.Dot(h))
	vh := saturate(v.Dot(h))

	alpha := s.Roughness()
	f := Fresnel(s.F0(), vh)
	d := DistributionGGX(nh, alpha)
	vis := VisibilitySmithGGX(nl, nv, alpha)

	specular := f.Mul(d * vis)
	diffuse := s.DiffuseColor().Mul(1 / math.Pi)
	return mulComponents(specular.Add(diffuse), color.Vec3()).Mul(intensity * nl)
}

// BlinnPhongShininess converts linear roughness into the equivalent Blinn-Phong
// exponent 2/α² − 2.
//
// Parameters:
//   - alpha: linear roughness
//
// Returns:
//   - float32: the specular exponent
func BlinnPhongShininess(alpha float32) float32 {
	return 2/(alpha*alpha) - 2
}

// CalculateLightBlinnPhong evaluates Lambert diffuse plus a normalized
// Blinn-Phong lobe tinted by the surface's f0. A light below the surface
// horizon contributes exactly zero.
//
// Parameters:
//   - color: light color; only RGB is used
//   - intensity: light intensity, already attenuated for distance
//   - s: the surface being lit
//   - l: unit vector from the surface toward the light
//   - v: unit vector from the surface toward the viewer
//
// Returns:
//   - mgl32.Vec3: outgoing radiance
func CalculateLightBlinnPhong(color mgl32.Vec4, intensity float32, s gbuffer.Surface, l, v mgl32.Vec3) mgl32.Vec3 {
	n := s.Normal
	nl := n.Dot(l)
	if nl <= 0 {
		return mgl32.Vec3{}
	}
	nh := saturate(n.Dot(halfVector(l, v)))
	shininess := BlinnPhongShininess(s.Roughness())
	lobe := (shininess + 8) / (8 * math.Pi) * float32(math.Pow(float64(nh), float64(shininess)))

	specular := s.F0().Mul(lobe)
	diffuse := s.DiffuseColor().Mul(1 / math.Pi)
	return mulComponents(specular.Add(diffuse), color.Vec3()).Mul(intensity * nl)
}

func halfVector(l, v mgl32.Vec3) mgl32.Vec3 {
	h := l.Add(v)
	if h.LenSqr() == 0 {
		return l
	}
	return h.Normalize()
}

func saturate(x float32) float32 {
	return mgl32.Clamp(x, 0, 1)
}

func pow5(x float32) float32 {
	x2 := x * x
	return x2 * x2 * x
}

func mulComponents(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
