package model

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-pbr/common"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct for the geometry pass.
// Matches GPUVertex layout exactly (64 bytes, tightly packed vertex attributes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex for the geometry pass.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 64 bytes (no padding required).
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal (12 bytes)
	Tangent  [4]float32 // offset 24: tangent (xyz) + bitangent handedness (w) for normal mapping (16 bytes)
	Color    [4]float32 // offset 40: per-vertex RGBA color (16 bytes)
	TexCoord [2]float32 // offset 56: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := common.PutFloat32s(buf, 0, g.Position[:]...)
	off = common.PutFloat32s(buf, off, g.Normal[:]...)
	off = common.PutFloat32s(buf, off, g.Tangent[:]...)
	off = common.PutFloat32s(buf, off, g.Color[:]...)
	common.PutFloat32s(buf, off, g.TexCoord[:]...)
	return buf
}

// GPUStaticVertexSource is the canonical WGSL definition of the StaticVertexInput struct
// used by the shadow depth pass.
// Matches GPUStaticVertex layout exactly (48 bytes, tightly packed vertex attributes).
//
//go:embed assets/static_vertex.wgsl
var GPUStaticVertexSource string

// GPUStaticVertex is the GPU-aligned representation of a vertex without tangent data.
// Matches the WGSL StaticVertexInput struct layout exactly (see GPUStaticVertexSource).
// Size: 48 bytes (no padding required).
type GPUStaticVertex struct {
	Position [3]float32 // offset  0
	Normal   [3]float32 // offset 12
	Color    [4]float32 // offset 24
	TexCoord [2]float32 // offset 40
}

// Size returns the size of the GPUStaticVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUStaticVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUStaticVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUStaticVertex) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := common.PutFloat32s(buf, 0, g.Position[:]...)
	off = common.PutFloat32s(buf, off, g.Normal[:]...)
	off = common.PutFloat32s(buf, off, g.Color[:]...)
	common.PutFloat32s(buf, off, g.TexCoord[:]...)
	return buf
}

// Static drops the tangent so the vertex can feed the shadow depth pass.
func (g *GPUVertex) Static() GPUStaticVertex {
	return GPUStaticVertex{
		Position: g.Position,
		Normal:   g.Normal,
		Color:    g.Color,
		TexCoord: g.TexCoord,
	}
}

// GPUTransformUniformSource is the canonical WGSL definition of the TransformUniform struct.
// Matches GPUTransformUniform layout exactly (112 bytes, uniform aligned).
//
//go:embed assets/transform.wgsl
var GPUTransformUniformSource string

// GPUTransformUniform is the GPU-aligned representation of an object's transform.
// Matches the WGSL TransformUniform struct layout exactly (see GPUTransformUniformSource).
// Size: 112 bytes.
//
// Layout:
//
//	mat4x4<f32> model     (64 bytes, offset  0)
//	mat3x3<f32> rotation  (48 bytes, offset 64; each column padded to 16 bytes)
type GPUTransformUniform struct {
	Model    [16]float32
	Rotation [12]float32 // three vec3 columns, each followed by one padding float
}

// Size returns the size of the GPUTransformUniform struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (112).
func (g *GPUTransformUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUTransformUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 112-byte buffer ready for GPU upload.
func (g *GPUTransformUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := common.PutFloat32s(buf, 0, g.Model[:]...)
	common.PutFloat32s(buf, off, g.Rotation[:]...)
	return buf
}
