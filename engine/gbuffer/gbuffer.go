// Package gbuffer defines the surface record written by the geometry pass and
// read by the lighting resolve, in both its float multi-target form and its
// single packed rgba32uint form.
package gbuffer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MinPerceptualRoughness is the lower clamp applied to perceptual roughness
// before it is squared into linear roughness. Lower values produce specular
// highlights too small to sample.
const MinPerceptualRoughness float32 = 0.089

// Surface is the per-pixel material record consumed by the BRDF. It mirrors
// the WGSL PBRSurface struct.
//
// ClearCoat and ClearCoatRoughness are carried through the packed G-buffer but
// are not consumed by the lighting model.
type Surface struct {
	BaseColor           mgl32.Vec3
	Normal              mgl32.Vec3
	Metallic            float32
	PerceptualRoughness float32
	Reflectance         float32
	ClearCoat           float32
	ClearCoatRoughness  float32
	Emissive            mgl32.Vec4
}

// Roughness returns the linear roughness used by the distribution and
// visibility terms: the perceptual roughness clamped to
// [MinPerceptualRoughness, 1] and squared.
//
// Returns:
//   - float32: linear roughness
func (s Surface) Roughness() float32 {
	r := mgl32.Clamp(s.PerceptualRoughness, MinPerceptualRoughness, 1)
	return r * r
}

// F0 returns the Fresnel reflectance at normal incidence, blending the
// dielectric reflectance 0.16·reflectance² with the base color by metallic.
//
// Returns:
//   - mgl32.Vec3: reflectance at normal incidence per channel
func (s Surface) F0() mgl32.Vec3 {
	dielectric := 0.16 * s.Reflectance * s.Reflectance * (1 - s.Metallic)
	return mgl32.Vec3{dielectric, dielectric, dielectric}.Add(s.BaseColor.Mul(s.Metallic))
}

// DiffuseColor returns the albedo available for diffuse reflection.
//
// Returns:
//   - mgl32.Vec3: (1 - metallic) × base color
func (s Surface) DiffuseColor() mgl32.Vec3 {
	return s.BaseColor.Mul(1 - s.Metallic)
}

// Pack encodes a surface into the packed G-buffer layout. Every channel is
// clamped to [0, 1] and quantized to 8 bits; the normal is biased into [0, 1]
// first.
//
// Parameters:
//   - s: the surface to encode
//
// Returns:
//   - GPUPackedGBuffer: the four packed words
func Pack(s Surface) GPUPackedGBuffer {
	n := s.Normal.Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5})
	return GPUPackedGBuffer{
		Normal:    Pack4x8Unorm(n.Vec4(0)),
		Material:  Pack4x8Unorm(mgl32.Vec4{s.Metallic, s.Reflectance, s.ClearCoatRoughness, s.ClearCoat}),
		BaseColor: Pack4x8Unorm(s.BaseColor.Vec4(s.PerceptualRoughness)),
		Emissive:  Pack4x8Unorm(s.Emissive),
	}
}

// Unpack decodes the packed G-buffer layout back into a surface. Each channel
// is within 1/255 of the value that was packed; the normal is unbiased and
// renormalized.
//
// Parameters:
//   - p: the packed words
//
// Returns:
//   - Surface: the decoded surface
func Unpack(p GPUPackedGBuffer) Surface {
	n := Unpack4x8Unorm(p.Normal).Vec3()
	material := Unpack4x8Unorm(p.Material)
	base := Unpack4x8Unorm(p.BaseColor)

	return Surface{
		Normal:              safeNormalize(n.Sub(mgl32.Vec3{0.5, 0.5, 0.5}).Mul(2)),
		Metallic:            material[0],
		Reflectance:         material[1],
		ClearCoatRoughness:  material[2],
		ClearCoat:           material[3],
		BaseColor:           base.Vec3(),
		PerceptualRoughness: base[3],
		Emissive:            Unpack4x8Unorm(p.Emissive),
	}
}

// Pack4x8Unorm matches the WGSL pack4x8unorm builtin: each component is
// clamped to [0, 1], scaled to 255 and rounded, component x landing in the
// least significant byte.
//
// Parameters:
//   - v: the four components to pack
//
// Returns:
//   - uint32: the packed word
func Pack4x8Unorm(v mgl32.Vec4) uint32 {
	var out uint32
	for i := 0; i < 4; i++ {
		c := mgl32.Clamp(v[i], 0, 1)
		out |= uint32(math.Floor(float64(c)*255+0.5)) << (8 * i)
	}
	return out
}

// Unpack4x8Unorm matches the WGSL unpack4x8unorm builtin.
//
// Parameters:
//   - u: the packed word
//
// Returns:
//   - mgl32.Vec4: the four components in [0, 1]
func Unpack4x8Unorm(u uint32) mgl32.Vec4 {
	var out mgl32.Vec4
	for i := 0; i < 4; i++ {
		out[i] = float32((u>>(8*i))&0xff) / 255
	}
	return out
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return v.Mul(1 / l)
}
