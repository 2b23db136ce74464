package shading

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultExposure is the tone-mapping exposure used when none is configured.
const DefaultExposure float32 = 1.0

// Invert returns (1-r, 1-g, 1-b, a).
func Invert(c mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{1 - c[0], 1 - c[1], 1 - c[2], c[3]}
}

// ToneMap applies exponential exposure tone mapping 1 - exp(-c·exposure) to
// each RGB channel and keeps alpha.
//
// Parameters:
//   - c: the HDR color
//   - exposure: the exposure multiplier
//
// Returns:
//   - mgl32.Vec4: the display color, RGB in [0, 1) for non-negative input
func ToneMap(c mgl32.Vec4, exposure float32) mgl32.Vec4 {
	out := c
	for i := 0; i < 3; i++ {
		out[i] = 1 - float32(math.Exp(float64(-c[i]*exposure)))
	}
	return out
}
