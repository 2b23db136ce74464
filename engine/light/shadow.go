package light

import (
	"github.com/Carmen-Shannon/oxy-pbr/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ShadowMapResolution is the width and height in texels of the directional
// shadow depth texture.
const ShadowMapResolution = 2048

// PCFTexelOffset is the spacing between percentage-closer filtering taps in
// normalized shadow-map coordinates, one texel of a ShadowMapResolution map.
const PCFTexelOffset float32 = 1.0 / ShadowMapResolution

// ShadowFloor is the lighting factor applied to a fully occluded receiver.
// Shadowed surfaces are darkened, never blacked out.
const ShadowFloor float32 = 0.5

// DefaultShadowSize is the default full width and height (in world units) of
// the directional light's orthographic shadow frustum.
const DefaultShadowSize float32 = 10.0

// DefaultShadowNear is the default near plane for the directional light's
// orthographic shadow projection.
const DefaultShadowNear float32 = 1.0

// DefaultShadowFar is the default far plane for the directional light's
// orthographic shadow projection.
const DefaultShadowFar float32 = 20.0

// ShadowDepthBias and ShadowDepthBiasSlopeScale configure the rasterizer
// depth bias of the shadow depth pass to reduce shadow acne.
const (
	ShadowDepthBias           int32   = 2
	ShadowDepthBiasSlopeScale float32 = 2.0
)

// ShadowSampler returns the comparison sampler configuration for the shadow
// map. A tap is lit when the receiver depth is less than the stored depth,
// matching shading.DepthMap.CompareDepth.
//
// Returns:
//   - common.SamplerStagingData: linear, clamp-to-edge comparison sampler data
func ShadowSampler() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	}
}
