package ibl

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-pbr/common"
	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultDFGSize is the width and height of a baked DFG lookup table.
const DefaultDFGSize = 128

// DFGLUT is the split-sum lookup table. The x axis is n·v and the y axis is
// perceptual roughness, both sampled at texel centers; each entry holds the
// Fresnel scale (x) and bias (y).
type DFGLUT struct {
	Size int
	Data []mgl32.Vec2
}

var _ shading.DFGTable = &DFGLUT{}

// TexelCoordinates returns the (n·v, roughness) pair at the center of texel (x, y).
func TexelCoordinates(x, y, size int) (nv, roughness float32) {
	return (float32(x) + 0.5) / float32(size), (float32(y) + 0.5) / float32(size)
}

// Lookup bilinearly interpolates the table, clamping at the edges.
func (d *DFGLUT) Lookup(nv, roughness float32) mgl32.Vec2 {
	x := mgl32.Clamp(nv, 0, 1)*float32(d.Size) - 0.5
	y := mgl32.Clamp(roughness, 0, 1)*float32(d.Size) - 0.5
	x0 := int(math.Floor(float64(x)))
	y0 := int(math.Floor(float64(y)))
	fx := x - float32(x0)
	fy := y - float32(y0)

	top := d.at(x0, y0).Mul(1 - fx).Add(d.at(x0+1, y0).Mul(fx))
	bottom := d.at(x0, y0+1).Mul(1 - fx).Add(d.at(x0+1, y0+1).Mul(fx))
	return top.Mul(1 - fy).Add(bottom.Mul(fy))
}

func (d *DFGLUT) at(x, y int) mgl32.Vec2 {
	x = max(0, min(x, d.Size-1))
	y = max(0, min(y, d.Size-1))
	return d.Data[y*d.Size+x]
}

// Texture encodes the table as 8-bit RGBA staging data: red holds the scale,
// green the bias, blue 0 and alpha 1.
//
// Returns:
//   - common.TextureStagingData: the encoded table
func (d *DFGLUT) Texture() common.TextureStagingData {
	pixels := make([]byte, d.Size*d.Size*4)
	for i, v := range d.Data {
		common.PutUint32s(pixels, i*4, gbuffer.Pack4x8Unorm(mgl32.Vec4{v.X(), v.Y(), 0, 1}))
	}
	return common.TextureStagingData{
		Pixels: pixels,
		Width:  uint32(d.Size),
		Height: uint32(d.Size),
	}
}

// DFGFromTexture rebuilds a table from an encoded image, such as a LUT baked
// offline and shipped as a PNG.
//
// Parameters:
//   - t: the decoded image; must be square
//
// Returns:
//   - *DFGLUT: the table
//   - error: error if the image is empty or not square
func DFGFromTexture(t common.TextureStagingData) (*DFGLUT, error) {
	if t.Width == 0 || t.Width != t.Height {
		return nil, fmt.Errorf("DFG lookup table must be square, got %dx%d", t.Width, t.Height)
	}
	size := int(t.Width)
	d := &DFGLUT{Size: size, Data: make([]mgl32.Vec2, size*size)}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			texel := t.Texel(x, y)
			d.Data[y*size+x] = mgl32.Vec2{texel[0], texel[1]}
		}
	}
	return d, nil
}
