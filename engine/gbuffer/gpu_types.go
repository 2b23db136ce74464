package gbuffer

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-pbr/common"
)

// GBufferLayoutVersion identifies the packed G-buffer word layout. The WGSL
// schema declares the same value as GBUFFER_LAYOUT_VERSION; writer and
// resolve programs built from different versions must not be mixed.
const GBufferLayoutVersion uint32 = 1

// GPUGBufferSource is the canonical WGSL definition of the PackedGBuffer and
// PBRSurface structs together with the pack_gbuffer and unpack_gbuffer
// functions. It is injected into both the G-buffer writer and the lighting
// resolve programs so the two stages cannot drift apart.
//
//go:embed assets/gbuffer.wgsl
var GPUGBufferSource string

// PackedFieldNames lists the PackedGBuffer words in storage order.
var PackedFieldNames = []string{"normal", "material", "base_color", "emissive"}

// GPUPackedGBuffer is one texel of the packed rgba32uint G-buffer attachment.
// Matches the WGSL PackedGBuffer struct layout exactly (see GPUGBufferSource).
// Size: 16 bytes.
type GPUPackedGBuffer struct {
	Normal    uint32 // offset  0: biased normal xyz, w unused
	Material  uint32 // offset  4: metallic, reflectance, clear-coat roughness, clear-coat
	BaseColor uint32 // offset  8: base color rgb, perceptual roughness
	Emissive  uint32 // offset 12: emissive rgba
}

// Size returns the size of the GPUPackedGBuffer struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUPackedGBuffer) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Words returns the packed words as the vec4<u32> the shaders read.
func (g *GPUPackedGBuffer) Words() [4]uint32 {
	return [4]uint32{g.Normal, g.Material, g.BaseColor, g.Emissive}
}

// Marshal serializes the GPUPackedGBuffer into a byte buffer matching one
// rgba32uint texel.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUPackedGBuffer) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutUint32s(buf, 0, g.Normal, g.Material, g.BaseColor, g.Emissive)
	return buf
}

//go:embed assets/targets_float.wgsl
var gpuTargetsFloatSource string

//go:embed assets/targets_packed.wgsl
var gpuTargetsPackedSource string

//go:embed assets/output_float.wgsl
var gpuOutputFloatSource string

//go:embed assets/output_packed.wgsl
var gpuOutputPackedSource string

// TargetsSource returns the WGSL that binds the G-buffer attachments of a
// mode in group 1 and defines load_gbuffer(coord, uv) -> GBufferSample for
// the resolve. The packed variant expects a `camera` uniform in scope.
//
// Parameters:
//   - mode: the G-buffer storage mode
//
// Returns:
//   - string: the WGSL source
func TargetsSource(mode Mode) string {
	if mode == ModePacked {
		return gpuTargetsPackedSource
	}
	return gpuTargetsFloatSource
}

// OutputSource returns the WGSL that defines the GBufferOutput fragment
// output of a mode and write_gbuffer(surface, world) -> GBufferOutput.
//
// Parameters:
//   - mode: the G-buffer storage mode
//
// Returns:
//   - string: the WGSL source
func OutputSource(mode Mode) string {
	if mode == ModePacked {
		return gpuOutputPackedSource
	}
	return gpuOutputFloatSource
}
