package common

import (
	"math"
	"math/bits"

	"github.com/cogentcore/webgpu/wgpu"
)

// MipLevelCount returns the number of levels of a full mip chain for a texture
// of the given dimensions: 1 + floor(log2(max dimension)). Zero dimensions
// yield a single level.
//
// Parameters:
//   - dims: the texture width, height and optionally depth
//
// Returns:
//   - uint32: the mip level count
func MipLevelCount(dims ...uint32) uint32 {
	var largest uint32
	for _, d := range dims {
		largest = max(largest, d)
	}
	if largest == 0 {
		return 1
	}
	return uint32(bits.Len32(largest))
}

// MipSampler returns the sampler a mip blit reads the previous level with:
// linear magnification, so sampling level 0 at the destination texel centre
// averages the texels beneath it, and clamped edges.
//
// Returns:
//   - SamplerStagingData: the sampler configuration
func MipSampler() SamplerStagingData {
	return SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeNearest,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
		LodMaxClamp:  32,
	}
}

// Downsample returns the next mip level of the texture, halving each
// dimension (minimum 1). Each destination texel is a bilinear sample of the
// source at the texel's centre with clamp-to-edge addressing, which is what
// the blit program computes on the GPU. For even dimensions it is the mean of
// a 2x2 block.
//
// Returns:
//   - TextureStagingData: the downsampled level
func (t *TextureStagingData) Downsample() TextureStagingData {
	w := max(1, t.Width/2)
	h := max(1, t.Height/2)
	out := TextureStagingData{
		Pixels: make([]byte, w*h*4),
		Width:  w,
		Height: h,
	}

	sx := float64(t.Width) / float64(w)
	sy := float64(t.Height) / float64(h)
	for y := 0; y < int(h); y++ {
		v := (float64(y)+0.5)*sy - 0.5
		y0 := int(math.Floor(v))
		fy := float32(v - float64(y0))
		for x := 0; x < int(w); x++ {
			u := (float64(x)+0.5)*sx - 0.5
			x0 := int(math.Floor(u))
			fx := float32(u - float64(x0))

			a, b := t.Texel(x0, y0), t.Texel(x0+1, y0)
			c, d := t.Texel(x0, y0+1), t.Texel(x0+1, y0+1)
			i := (y*int(w) + x) * 4
			for ch := 0; ch < 4; ch++ {
				top := a[ch] + (b[ch]-a[ch])*fx
				bottom := c[ch] + (d[ch]-c[ch])*fx
				out.Pixels[i+ch] = unorm8(top + (bottom-top)*fy)
			}
		}
	}
	return out
}

// GenerateMips builds the full mip chain of the texture. Level 0 is the
// texture itself and every further level is the Downsample of the one above.
//
// Returns:
//   - []TextureStagingData: MipLevelCount(Width, Height) levels
func (t *TextureStagingData) GenerateMips() []TextureStagingData {
	count := MipLevelCount(t.Width, t.Height)
	levels := make([]TextureStagingData, 0, count)
	levels = append(levels, *t)
	for len(levels) < int(count) {
		levels = append(levels, levels[len(levels)-1].Downsample())
	}
	return levels
}

func unorm8(v float32) byte {
	v = max(0, min(v, 1))
	return byte(math.Round(float64(v) * 255))
}
