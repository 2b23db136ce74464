package camera

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-pbr/common"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (160 bytes, uniform aligned).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraUniform struct layout exactly (see GPUCameraUniformSource).
// Size: 160 bytes (WGSL aligned).
type GPUCameraUniform struct {
	ViewProj      [16]float32 // offset   0: combined view-projection matrix (mat4x4<f32>)
	InvViewProj   [16]float32 // offset  64: inverse view-projection matrix (mat4x4<f32>)
	Position      [3]float32  // offset 128: world-space camera position (vec3<f32>)
	_pad0         float32     // offset 140
	ViewDirection [3]float32  // offset 144: unit direction from eye to target (vec3<f32>)
	_pad1         float32     // offset 156: padding to 160 bytes
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (160)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloat32s(buf, 0, g.ViewProj[:]...)
	common.PutFloat32s(buf, 64, g.InvViewProj[:]...)
	common.PutFloat32s(buf, 128, g.Position[:]...)
	common.PutFloat32s(buf, 144, g.ViewDirection[:]...)
	return buf
}

// ToGPUCameraUniform snapshots the camera into its GPU uniform representation.
//
// Parameters:
//   - c: the camera to convert
//
// Returns:
//   - GPUCameraUniform: the GPU-aligned representation
func ToGPUCameraUniform(c Camera) GPUCameraUniform {
	return GPUCameraUniform{
		ViewProj:      c.ViewProjectionMatrix(),
		InvViewProj:   c.InverseViewProjectionMatrix(),
		Position:      c.Eye(),
		ViewDirection: c.ViewDirection(),
	}
}
