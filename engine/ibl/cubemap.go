// Package ibl holds the image-based lighting inputs of the resolve: the
// environment cubemap, its roughness-prefiltered mip chain and the split-sum
// DFG lookup table, together with the bakers that produce them.
package ibl

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-pbr/common"
	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrInvalidCubemap is returned when cubemap faces are missing, not
	// square, or differ in size.
	ErrInvalidCubemap = errors.New("invalid cubemap")

	// ErrInvalidSampleCount is returned when a bake is requested with zero samples.
	ErrInvalidSampleCount = errors.New("sample count must be positive")
)

// Face indexes the six cubemap faces in WebGPU layer order.
type Face int

const (
	FacePositiveX Face = iota
	FaceNegativeX
	FacePositiveY
	FaceNegativeY
	FacePositiveZ
	FaceNegativeZ
)

// FaceNames are the short names of the faces in layer order.
var FaceNames = [6]string{"px", "nx", "py", "ny", "pz", "nz"}

func (f Face) String() string {
	if f < 0 || int(f) >= len(FaceNames) {
		return fmt.Sprintf("Face(%d)", int(f))
	}
	return FaceNames[f]
}

// Cubemap is a linear-RGB environment with six square faces of equal size.
// Face texels are stored row-major with row 0 at v = 0.
type Cubemap struct {
	Size  int
	Faces [6][]mgl32.Vec3
}

var _ shading.Environment = &Cubemap{}

// NewCubemap allocates a black cubemap with faces of size×size texels.
//
// Parameters:
//   - size: the face width and height in texels
//
// Returns:
//   - *Cubemap: the new cubemap
func NewCubemap(size int) *Cubemap {
	c := &Cubemap{Size: size}
	for f := range c.Faces {
		c.Faces[f] = make([]mgl32.Vec3, size*size)
	}
	return c
}

// CubemapFromTextures builds a cubemap from six decoded face images in
// FaceNames order. Colors are normalized to [0, 1]; alpha is dropped.
//
// Parameters:
//   - faces: the face images
//
// Returns:
//   - *Cubemap: the cubemap
//   - error: ErrInvalidCubemap if a face is empty, not square, or differs in size
func CubemapFromTextures(faces [6]common.TextureStagingData) (*Cubemap, error) {
	size := int(faces[0].Width)
	for i, t := range faces {
		if t.Width == 0 || t.Width != t.Height || int(t.Width) != size {
			return nil, fmt.Errorf("%w: face %s is %dx%d, want %dx%d", ErrInvalidCubemap, FaceNames[i], t.Width, t.Height, size, size)
		}
		if len(t.Pixels) != size*size*4 {
			return nil, fmt.Errorf("%w: face %s has %d bytes, want %d", ErrInvalidCubemap, FaceNames[i], len(t.Pixels), size*size*4)
		}
	}

	c := NewCubemap(size)
	for f := range faces {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				texel := faces[f].Texel(x, y)
				c.Faces[f][y*size+x] = mgl32.Vec3{texel[0], texel[1], texel[2]}
			}
		}
	}
	return c, nil
}

// LoadCubemap decodes six face images from disk in FaceNames order.
//
// Parameters:
//   - paths: the PNG or JPEG files of each face
//
// Returns:
//   - *Cubemap: the cubemap
//   - error: error if a file cannot be decoded or the faces are inconsistent
func LoadCubemap(paths [6]string) (*Cubemap, error) {
	var faces [6]common.TextureStagingData
	for i, p := range paths {
		t, err := common.LoadTexture(p)
		if err != nil {
			return nil, fmt.Errorf("failed to load cubemap face %s: %w", FaceNames[i], err)
		}
		faces[i] = t
	}
	return CubemapFromTextures(faces)
}

// Texture encodes one face as 8-bit RGBA staging data. Channels are clamped
// to [0, 1].
//
// Parameters:
//   - f: the face to encode
//
// Returns:
//   - common.TextureStagingData: the encoded face
func (c *Cubemap) Texture(f Face) common.TextureStagingData {
	pixels := make([]byte, c.Size*c.Size*4)
	for i, v := range c.Faces[f] {
		common.PutUint32s(pixels, i*4, gbuffer.Pack4x8Unorm(v.Vec4(1)))
	}
	return common.TextureStagingData{
		Pixels: pixels,
		Width:  uint32(c.Size),
		Height: uint32(c.Size),
	}
}

// At returns the texel at (x, y) of a face, clamping coordinates to the edges.
func (c *Cubemap) At(f Face, x, y int) mgl32.Vec3 {
	x = max(0, min(x, c.Size-1))
	y = max(0, min(y, c.Size-1))
	return c.Faces[f][y*c.Size+x]
}

// Sample returns the bilinearly filtered radiance along dir. Filtering is
// clamped at face edges.
func (c *Cubemap) Sample(dir mgl32.Vec3) mgl32.Vec3 {
	f, u, v := DirectionToFace(dir)
	x := u*float32(c.Size) - 0.5
	y := v*float32(c.Size) - 0.5
	x0 := int(math.Floor(float64(x)))
	y0 := int(math.Floor(float64(y)))
	fx := x - float32(x0)
	fy := y - float32(y0)

	top := lerp3(c.At(f, x0, y0), c.At(f, x0+1, y0), fx)
	bottom := lerp3(c.At(f, x0, y0+1), c.At(f, x0+1, y0+1), fx)
	return lerp3(top, bottom, fy)
}

// FaceDirection returns the unit direction through texture coordinate (u, v)
// of a face.
//
// Parameters:
//   - f: the face
//   - u, v: texture coordinates in [0, 1]
//
// Returns:
//   - mgl32.Vec3: the unit direction
func FaceDirection(f Face, u, v float32) mgl32.Vec3 {
	sc := 2*u - 1
	tc := 2*v - 1
	var d mgl32.Vec3
	switch f {
	case FacePositiveX:
		d = mgl32.Vec3{1, -tc, -sc}
	case FaceNegativeX:
		d = mgl32.Vec3{-1, -tc, sc}
	case FacePositiveY:
		d = mgl32.Vec3{sc, 1, tc}
	case FaceNegativeY:
		d = mgl32.Vec3{sc, -1, -tc}
	case FacePositiveZ:
		d = mgl32.Vec3{sc, -tc, 1}
	default:
		d = mgl32.Vec3{-sc, -tc, -1}
	}
	return d.Normalize()
}

// DirectionToFace selects the face a direction hits and the texture
// coordinate it hits it at. It is the inverse of FaceDirection.
//
// Parameters:
//   - dir: the lookup direction, need not be normalized
//
// Returns:
//   - Face: the face hit
//   - u, v: texture coordinates in [0, 1]
func DirectionToFace(dir mgl32.Vec3) (Face, float32, float32) {
	ax := float32(math.Abs(float64(dir.X())))
	ay := float32(math.Abs(float64(dir.Y())))
	az := float32(math.Abs(float64(dir.Z())))

	var f Face
	var sc, tc, ma float32
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if dir.X() >= 0 {
			f, sc, tc = FacePositiveX, -dir.Z(), -dir.Y()
		} else {
			f, sc, tc = FaceNegativeX, dir.Z(), -dir.Y()
		}
	case ay >= az:
		ma = ay
		if dir.Y() >= 0 {
			f, sc, tc = FacePositiveY, dir.X(), dir.Z()
		} else {
			f, sc, tc = FaceNegativeY, dir.X(), -dir.Z()
		}
	default:
		ma = az
		if dir.Z() >= 0 {
			f, sc, tc = FacePositiveZ, dir.X(), -dir.Y()
		} else {
			f, sc, tc = FaceNegativeZ, -dir.X(), -dir.Y()
		}
	}
	if ma == 0 {
		return FacePositiveZ, 0.5, 0.5
	}
	return f, (sc/ma + 1) * 0.5, (tc/ma + 1) * 0.5
}

// FaceViewMatrices returns the view matrices that render each face from the
// cube's center, in layer order.
//
// Returns:
//   - [6][16]float32: column-major view matrices
func FaceViewMatrices() [6][16]float32 {
	targets := [6][3]float32{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	ups := [6][3]float32{{0, -1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}, {0, -1, 0}, {0, -1, 0}}

	var views [6][16]float32
	for f := range views {
		common.LookAt(views[f][:],
			0, 0, 0,
			targets[f][0], targets[f][1], targets[f][2],
			ups[f][0], ups[f][1], ups[f][2],
		)
	}
	return views
}

func lerp3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
