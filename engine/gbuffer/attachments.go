package gbuffer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-pbr/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Mode selects how the geometry pass stores surfaces.
type Mode uint32

const (
	// ModeFloat writes five separate attachments: world position, normal,
	// base color, PBR parameters and emissive.
	ModeFloat Mode = iota

	// ModePacked writes a single rgba32uint attachment holding the packed
	// surface. World position is reconstructed from depth during resolve.
	ModePacked
)

// DepthFormat is the depth attachment format shared by the geometry pass and
// the packed resolve, which samples it to reconstruct world positions.
const DepthFormat = wgpu.TextureFormatDepth32Float

func (m Mode) String() string {
	switch m {
	case ModeFloat:
		return "float"
	case ModePacked:
		return "packed"
	default:
		return fmt.Sprintf("Mode(%d)", uint32(m))
	}
}

// ParseMode resolves a mode from its String form.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "float":
		return ModeFloat, nil
	case "packed":
		return ModePacked, nil
	default:
		return 0, fmt.Errorf("unknown G-buffer mode %q", s)
	}
}

// Attachment describes one color target written by the geometry pass.
type Attachment struct {
	// Name is the resolve program's texture variable for this target.
	Name string
	// Location is the fragment output @location index.
	Location uint32
	// Format is the texture format of the target.
	Format wgpu.TextureFormat
}

// Attachments returns the color targets written for the given mode, ordered
// by output location.
//
// Parameters:
//   - mode: the G-buffer storage mode
//
// Returns:
//   - []Attachment: the color targets
func Attachments(mode Mode) []Attachment {
	if mode == ModePacked {
		return []Attachment{
			{Name: "gbuffer_packed", Location: 0, Format: wgpu.TextureFormatRGBA32Uint},
		}
	}
	return []Attachment{
		{Name: "gbuffer_position", Location: 0, Format: wgpu.TextureFormatRGBA16Float},
		{Name: "gbuffer_normal", Location: 1, Format: wgpu.TextureFormatRGBA16Float},
		{Name: "gbuffer_base_color", Location: 2, Format: wgpu.TextureFormatRGBA8Unorm},
		{Name: "gbuffer_params", Location: 3, Format: wgpu.TextureFormatRGBA8Unorm},
		{Name: "gbuffer_emissive", Location: 4, Format: wgpu.TextureFormatRGBA8Unorm},
	}
}

// Sampler returns the sampler configuration used to read G-buffer targets.
// Targets are read texel-exact, so filtering is disabled.
//
// Returns:
//   - common.SamplerStagingData: nearest, clamp-to-edge sampler data
func Sampler() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

// FloatTexels holds one pixel of every float-mode attachment, in the values
// the targets store after format conversion.
type FloatTexels struct {
	WorldPosition mgl32.Vec4
	Normal        mgl32.Vec4
	BaseColor     mgl32.Vec4
	Params        mgl32.Vec4
	Emissive      mgl32.Vec4
}

// EncodeFloat produces the float-mode attachment values for a surface. The
// 8-bit unorm targets are quantized the way the GPU stores them; the
// ambient-occlusion channel of the params target is written as 1.
//
// Parameters:
//   - s: the surface to encode
//   - worldPos: the world-space position of the pixel
//
// Returns:
//   - FloatTexels: the attachment values
func EncodeFloat(s Surface, worldPos mgl32.Vec3) FloatTexels {
	return FloatTexels{
		WorldPosition: worldPos.Vec4(1),
		Normal:        s.Normal.Vec4(0),
		BaseColor:     quantize(s.BaseColor.Vec4(1)),
		Params:        quantize(mgl32.Vec4{s.Metallic, s.PerceptualRoughness, s.Reflectance, 1}),
		Emissive:      quantize(s.Emissive),
	}
}

// DecodeFloat rebuilds the surface and world position from float-mode
// attachment values. Clear-coat is not stored in this mode and decodes as 0.
//
// Parameters:
//   - t: the attachment values
//
// Returns:
//   - Surface: the decoded surface
//   - mgl32.Vec3: the world-space position
func DecodeFloat(t FloatTexels) (Surface, mgl32.Vec3) {
	return Surface{
		Normal:              safeNormalize(t.Normal.Vec3()),
		BaseColor:           t.BaseColor.Vec3(),
		Metallic:            t.Params[0],
		PerceptualRoughness: t.Params[1],
		Reflectance:         t.Params[2],
		Emissive:            t.Emissive,
	}, t.WorldPosition.Vec3()
}

func quantize(v mgl32.Vec4) mgl32.Vec4 {
	return Unpack4x8Unorm(Pack4x8Unorm(v))
}
