package ibl

import (
	_ "embed"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-pbr/common"
)

// GPUPrefilterParamsSource is the canonical WGSL definition of the PrefilterParams struct.
// Matches GPUPrefilterParams layout exactly (80 bytes, uniform aligned).
//
//go:embed assets/prefilter_params.wgsl
var GPUPrefilterParamsSource string

// GPUPrefilterParams is the per-face uniform of the GPU prefilter pass.
// Matches the WGSL PrefilterParams struct layout exactly (see GPUPrefilterParamsSource).
// Size: 80 bytes.
type GPUPrefilterParams struct {
	ViewProj    [16]float32 // offset  0: face view with a 90 degree projection
	Roughness   float32     // offset 64
	SampleCount uint32      // offset 68
	_pad        [2]float32  // offset 72
}

// Size returns the size of the GPUPrefilterParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (p *GPUPrefilterParams) Size() int {
	return int(unsafe.Sizeof(*p))
}

// Marshal serializes the GPUPrefilterParams struct into a byte buffer suitable
// for GPU uniform upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (p *GPUPrefilterParams) Marshal() []byte {
	buf := make([]byte, p.Size())
	off := common.PutFloat32s(buf, 0, p.ViewProj[:]...)
	off = common.PutFloat32s(buf, off, p.Roughness)
	common.PutUint32s(buf, off, p.SampleCount)
	return buf
}

// PrefilterParams builds the uniforms for every face of one mip level, in
// layer order.
//
// Parameters:
//   - level: the mip level being rendered
//   - levels: the total number of levels in the chain
//   - sampleCount: GGX samples per texel
//
// Returns:
//   - [6]GPUPrefilterParams: one uniform per face
func PrefilterParams(level, levels int, sampleCount uint32) [6]GPUPrefilterParams {
	var proj [16]float32
	common.Perspective(proj[:], math.Pi/2, 1, 0.1, 10)

	var out [6]GPUPrefilterParams
	for f, view := range FaceViewMatrices() {
		common.Mul4(out[f].ViewProj[:], proj[:], view[:])
		out[f].Roughness = LevelRoughness(level, levels)
		out[f].SampleCount = sampleCount
	}
	return out
}
