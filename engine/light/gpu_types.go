package light

import (
	_ "embed"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-pbr/common"
)

// MaxPointLights is the capacity of the point-light storage buffer. Enabled
// point lights beyond this count are dropped when marshaling.
const MaxPointLights = 128

// GPULightUniformSource is the canonical WGSL definition of the LightUniform struct.
// Matches GPULightUniform layout exactly (128 bytes, uniform aligned).
//
//go:embed assets/light_uniform.wgsl
var GPULightUniformSource string

// GPULightUniform is the GPU-aligned representation of the directional light
// and the active point-light count.
// Matches the WGSL LightUniform struct layout exactly (see GPULightUniformSource).
// Size: 128 bytes.
//
// Layout:
//
//	vec3<f32>   direction     (12 bytes, offset   0)
//	vec4<f32>   color         (16 bytes, offset  16)
//	mat4x4<f32> space_matrix  (64 bytes, offset  32)
//	f32         intensity     ( 4 bytes, offset  96)
//	vec4<u32>   lights_count  (16 bytes, offset 112)
type GPULightUniform struct {
	Direction   [3]float32
	_pad0       float32
	Color       [4]float32
	SpaceMatrix [16]float32 // light-space view-projection for the shadow lookup
	Intensity   float32
	_pad1       [3]float32
	LightsCount [4]uint32 // x = number of point lights in the storage buffer, y = LightFlag bits
}

// LightFlag bits are stored in lights_count.y and gate the resolve's terms.
type LightFlag uint32

const (
	// LightFlagDirectional enables the directional light.
	LightFlagDirectional LightFlag = 1 << iota
	// LightFlagShadows applies the shadow map to the directional light.
	LightFlagShadows
	// LightFlagIBL enables split-sum image-based lighting. The host sets it
	// once the environment cube and DFG table are bound.
	LightFlagIBL
)

// SetFlag sets or clears one flag bit.
//
// Parameters:
//   - f: the flag
//   - on: whether the flag is set
func (u *GPULightUniform) SetFlag(f LightFlag, on bool) {
	if on {
		u.LightsCount[1] |= uint32(f)
	} else {
		u.LightsCount[1] &^= uint32(f)
	}
}

// HasFlag reports whether a flag bit is set.
func (u *GPULightUniform) HasFlag(f LightFlag) bool {
	return u.LightsCount[1]&uint32(f) != 0
}

// Size returns the size of the GPULightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (128)
func (u *GPULightUniform) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the GPULightUniform struct into a byte buffer suitable for
// GPU uniform upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload
func (u *GPULightUniform) Marshal() []byte {
	buf := make([]byte, u.Size())
	common.PutFloat32s(buf, 0, u.Direction[:]...)
	common.PutFloat32s(buf, 16, u.Color[:]...)
	common.PutFloat32s(buf, 32, u.SpaceMatrix[:]...)
	common.PutFloat32s(buf, 96, u.Intensity)
	common.PutUint32s(buf, 112, u.LightsCount[:]...)
	return buf
}

// GPUPointLightSource is the canonical WGSL definition of the PointLight struct.
// Matches GPUPointLight layout exactly (48 bytes, std430 aligned).
//
//go:embed assets/point_light.wgsl
var GPUPointLightSource string

// GPUPointLight is the GPU-aligned representation of a single point light in
// the storage buffer.
// Matches the WGSL PointLight struct layout exactly (see GPUPointLightSource).
// Size: 48 bytes (std430 / WGSL aligned).
type GPUPointLight struct {
	Color     [4]float32 // offset  0
	Position  [4]float32 // offset 16: homogeneous world position, w = 1
	Intensity float32    // offset 32
	Distance  float32    // offset 36: contribution cutoff
	Decay     float32    // offset 40
	_pad      float32    // offset 44
}

// Size returns the size of the GPUPointLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (p *GPUPointLight) Size() int {
	return int(unsafe.Sizeof(*p))
}

// Marshal serializes the GPUPointLight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (p *GPUPointLight) Marshal() []byte {
	buf := make([]byte, p.Size())
	off := common.PutFloat32s(buf, 0, p.Color[:]...)
	off = common.PutFloat32s(buf, off, p.Position[:]...)
	common.PutFloat32s(buf, off, p.Intensity, p.Distance, p.Decay)
	return buf
}

// GPUShadowUniformSource is the canonical WGSL definition of the ShadowUniform struct.
// Matches GPUShadowUniform layout exactly (64 bytes). It also declares the
// PCF_TEXEL_OFFSET and SHADOW_FLOOR constants mirroring PCFTexelOffset and ShadowFloor.
//
//go:embed assets/shadow_uniform.wgsl
var GPUShadowUniformSource string

// GPUShadowUniform is the GPU-aligned representation of the shadow depth pass
// uniform containing only the light view-projection matrix.
// Matches the WGSL ShadowUniform struct layout exactly (see GPUShadowUniformSource).
// Size: 64 bytes (mat4x4<f32>).
type GPUShadowUniform struct {
	LightVP [16]float32 // orthographic view-projection from light's perspective
}

// Size returns the size of the GPUShadowUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (u *GPUShadowUniform) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the GPUShadowUniform struct into a byte buffer suitable for
// GPU uniform upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (u *GPUShadowUniform) Marshal() []byte {
	buf := make([]byte, u.Size())
	common.PutFloat32s(buf, 0, u.LightVP[:]...)
	return buf
}

// LightSpaceMatrix builds the orthographic view-projection matrix used by the
// shadow depth pass and by the resolve's shadow lookup. The eye sits at the
// light's position looking along its direction; the frustum spans size/2 in
// every lateral direction between the light's near and far planes.
//
// Parameters:
//   - l: the directional light
//
// Returns:
//   - [16]float32: the column-major light view-projection matrix
func LightSpaceMatrix(l Light) [16]float32 {
	pos := l.Position()
	dir := l.Direction()
	size, near, far := l.ShadowFrustum()

	// A stable up vector that isn't parallel to the light direction.
	upX, upY, upZ := float32(0), float32(1), float32(0)
	if math.Abs(float64(dir[1])) > 0.99 {
		upX, upY, upZ = 1, 0, 0
	}

	var view [16]float32
	common.LookAt(view[:],
		pos[0], pos[1], pos[2],
		pos[0]+dir[0], pos[1]+dir[1], pos[2]+dir[2],
		upX, upY, upZ,
	)

	half := size * 0.5
	var proj [16]float32
	common.Ortho(proj[:], -half, half, -half, half, near, far)

	var vp [16]float32
	common.Mul4(vp[:], proj[:], view[:])
	return vp
}

// ToGPULightUniform converts the directional light and the number of point
// lights that will be uploaded into the GPU light uniform. The directional and
// shadow flags follow the light's state; LightFlagIBL is left clear.
//
// Parameters:
//   - l: the directional light
//   - pointLights: the count written to lights_count.x
//
// Returns:
//   - GPULightUniform: the GPU-aligned representation
func ToGPULightUniform(l Light, pointLights int) GPULightUniform {
	u := GPULightUniform{
		Direction:   l.Direction(),
		Color:       l.Color(),
		SpaceMatrix: LightSpaceMatrix(l),
		Intensity:   l.Intensity(),
		LightsCount: [4]uint32{uint32(min(pointLights, MaxPointLights)), 0, 0, 0},
	}
	u.SetFlag(LightFlagDirectional, l.Enabled())
	u.SetFlag(LightFlagShadows, l.Enabled() && l.CastsShadows())
	return u
}

// ToGPUPointLight converts a point light into the GPU-aligned GPUPointLight
// struct suitable for writing into the point-light storage buffer.
//
// Parameters:
//   - l: the Light to convert
//
// Returns:
//   - GPUPointLight: the GPU-aligned representation
func ToGPUPointLight(l Light) GPUPointLight {
	pos := l.Position()
	return GPUPointLight{
		Color:     l.Color(),
		Position:  [4]float32{pos[0], pos[1], pos[2], 1},
		Intensity: l.Intensity(),
		Distance:  l.Distance(),
		Decay:     l.Decay(),
	}
}

// MarshalPointLightBuffer marshals the enabled point lights into a byte buffer
// suitable for the point-light storage buffer. Directional and disabled lights
// are skipped; at most MaxPointLights entries are written.
//
// Parameters:
//   - lights: the lights to marshal
//
// Returns:
//   - []byte: the marshaled buffer ready for GPU upload
//   - int: the number of point lights written
func MarshalPointLightBuffer(lights []Light) ([]byte, int) {
	entrySize := (&GPUPointLight{}).Size()

	count := 0
	for _, l := range lights {
		if l.Enabled() && l.Type() == LightTypePoint {
			count++
		}
	}
	count = min(count, MaxPointLights)

	buf := make([]byte, count*entrySize)
	written := 0
	for _, l := range lights {
		if written >= count {
			break
		}
		if !l.Enabled() || l.Type() != LightTypePoint {
			continue
		}
		gpu := ToGPUPointLight(l)
		copy(buf[written*entrySize:], gpu.Marshal())
		written++
	}
	return buf, written
}
