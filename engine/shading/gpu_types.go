package shading

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-pbr/common"
)

// BRDFSource holds the WGSL versions of the BRDF, attenuation and GGX
// sampling functions of this package. It expects the PBRSurface struct of
// gbuffer.GPUGBufferSource in the same program.
//
//go:embed assets/brdf.wgsl
var BRDFSource string

// GPUPostParamsSource is the canonical WGSL definition of the PostParams struct.
// Matches GPUPostParams layout exactly (16 bytes, uniform aligned).
//
//go:embed assets/post_params.wgsl
var GPUPostParamsSource string

// GPUPostParams is the uniform of the tone-mapping pass.
// Matches the WGSL PostParams struct layout exactly (see GPUPostParamsSource).
// Size: 16 bytes.
type GPUPostParams struct {
	Exposure float32 // offset 0
	_pad     [3]float32
}

// Size returns the size of the GPUPostParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (p *GPUPostParams) Size() int {
	return int(unsafe.Sizeof(*p))
}

// Marshal serializes the GPUPostParams struct into a byte buffer suitable for
// GPU uniform upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (p *GPUPostParams) Marshal() []byte {
	buf := make([]byte, p.Size())
	common.PutFloat32s(buf, 0, p.Exposure)
	return buf
}
