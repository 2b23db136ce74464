package ibl

import (
	"math"

	"github.com/Carmen-Shannon/oxy-pbr/common"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultPrefilterLevels is the number of mip levels in a baked prefiltered chain.
const DefaultPrefilterLevels = 5

// PrefilteredCubemap is a roughness-prefiltered mip chain. Level 0 is the
// unfiltered source; level L was convolved at roughness L/len(Levels) and its
// faces are half the size of level L-1, down to 1 texel.
type PrefilteredCubemap struct {
	Levels []*Cubemap
}

var _ shading.PrefilteredEnvironment = &PrefilteredCubemap{}

// LevelRoughness returns the perceptual roughness a level is convolved at.
//
// Parameters:
//   - level: the mip level
//   - levels: the total number of levels in the chain
//
// Returns:
//   - float32: the roughness in [0, 1)
func LevelRoughness(level, levels int) float32 {
	return float32(level) / float32(levels)
}

// LevelSize returns the face size of a mip level, halving per level down to 1.
func LevelSize(baseSize, level int) int {
	return max(1, baseSize>>level)
}

// SampleLod samples the chain along dir, linearly blending the two levels
// around lod. Levels past the end of the chain clamp to the last level.
func (p *PrefilteredCubemap) SampleLod(dir mgl32.Vec3, lod float32) mgl32.Vec3 {
	if len(p.Levels) == 0 {
		return mgl32.Vec3{}
	}
	last := float32(len(p.Levels) - 1)
	lod = mgl32.Clamp(lod, 0, last)
	lo := int(math.Floor(float64(lod)))
	hi := min(lo+1, len(p.Levels)-1)
	t := lod - float32(lo)

	a := p.Levels[lo].Sample(dir)
	if hi == lo || t == 0 {
		return a
	}
	return lerp3(a, p.Levels[hi].Sample(dir), t)
}

// EnvironmentSampler returns the sampler configuration shared by the
// prefiltered cubemap and the DFG table: trilinear and clamped, so mip levels
// blend between roughness steps.
//
// Returns:
//   - common.SamplerStagingData: the filtering sampler data
func EnvironmentSampler() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   shading.MaxReflectionLod,
		MaxAnisotropy: 1,
	}
}
