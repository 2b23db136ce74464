package shading

import (
	"github.com/Carmen-Shannon/oxy-pbr/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowMap is a directional shadow depth texture sampled through a
// comparison sampler.
type ShadowMap interface {
	// CompareDepth performs one comparison tap: 1 when the reference depth is
	// closer than the stored depth at uv, 0 otherwise.
	//
	// Parameters:
	//   - uv: shadow-map coordinates in [0, 1]
	//   - reference: the receiver depth in light clip space
	//
	// Returns:
	//   - float32: 1 for lit, 0 for occluded
	CompareDepth(uv mgl32.Vec2, reference float32) float32
}

// DepthMap is an in-memory ShadowMap. Lookups use the nearest texel and clamp
// coordinates to the edges, matching the resolve's comparison sampler.
type DepthMap struct {
	Width, Height int
	// Depth holds Width×Height depths in row-major order, row 0 at v = 0.
	Depth []float32
}

var _ ShadowMap = &DepthMap{}

// NewDepthMap allocates a depth map with every texel set to clear.
//
// Parameters:
//   - width, height: dimensions in texels
//   - clear: the initial depth, 1 for an empty far plane
//
// Returns:
//   - *DepthMap: the new map
func NewDepthMap(width, height int, clear float32) *DepthMap {
	d := &DepthMap{Width: width, Height: height, Depth: make([]float32, width*height)}
	for i := range d.Depth {
		d.Depth[i] = clear
	}
	return d
}

// Set stores a depth at texel (x, y). Out-of-range coordinates are ignored.
func (d *DepthMap) Set(x, y int, depth float32) {
	if x < 0 || y < 0 || x >= d.Width || y >= d.Height {
		return
	}
	d.Depth[y*d.Width+x] = depth
}

// At returns the stored depth nearest to uv.
func (d *DepthMap) At(uv mgl32.Vec2) float32 {
	x := int(uv.X() * float32(d.Width))
	y := int(uv.Y() * float32(d.Height))
	x = max(0, min(x, d.Width-1))
	y = max(0, min(y, d.Height-1))
	return d.Depth[y*d.Width+x]
}

func (d *DepthMap) CompareDepth(uv mgl32.Vec2, reference float32) float32 {
	if reference < d.At(uv) {
		return 1
	}
	return 0
}

// ShadowCoordinates projects a world position into the shadow map. The clip
// position is divided by w, and xy is mapped to texture space with y flipped.
//
// Parameters:
//   - lightVP: the light's view-projection matrix
//   - world: the receiver position
//
// Returns:
//   - mgl32.Vec2: the shadow-map coordinates
//   - float32: the receiver depth
func ShadowCoordinates(lightVP mgl32.Mat4, world mgl32.Vec3) (mgl32.Vec2, float32) {
	p := lightVP.Mul4x1(world.Vec4(1))
	p = p.Mul(1 / p.W())
	uv := mgl32.Vec2{p.X()*0.5 + 0.5, p.Y()*-0.5 + 0.5}
	return uv, p.Z()
}

// PCF averages a 3×3 grid of comparison taps spaced light.PCFTexelOffset
// apart around uv. The result is always k/9 for some k in [0, 9].
//
// Parameters:
//   - sm: the shadow map
//   - uv: the center tap
//   - depth: the receiver depth
//
// Returns:
//   - float32: fraction of taps that are lit
func PCF(sm ShadowMap, uv mgl32.Vec2, depth float32) float32 {
	var lit float32
	for y := -1; y <= 1; y++ {
		for x := -1; x <= 1; x++ {
			offset := mgl32.Vec2{float32(x), float32(y)}.Mul(light.PCFTexelOffset)
			lit += sm.CompareDepth(uv.Add(offset), depth)
		}
	}
	return lit / 9
}

// ShadowFactor returns the multiplier applied to the directional light:
// mix(light.ShadowFloor, 1, pcf). Receivers outside the light's depth range
// are fully lit.
//
// Parameters:
//   - sm: the shadow map
//   - lightVP: the light's view-projection matrix
//   - world: the receiver position
//
// Returns:
//   - float32: the lighting factor in [light.ShadowFloor, 1]
func ShadowFactor(sm ShadowMap, lightVP mgl32.Mat4, world mgl32.Vec3) float32 {
	uv, depth := ShadowCoordinates(lightVP, world)
	if depth < 0 || depth > 1 {
		return 1
	}
	shadow := PCF(sm, uv, depth)
	return light.ShadowFloor + (1-light.ShadowFloor)*shadow
}
