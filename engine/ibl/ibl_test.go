package ibl

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-pbr/common"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
	"github.com/go-gl/mathgl/mgl32"
)

func constantCubemap(size int, c mgl32.Vec3) *Cubemap {
	cube := NewCubemap(size)
	for f := range cube.Faces {
		for i := range cube.Faces[f] {
			cube.Faces[f][i] = c
		}
	}
	return cube
}

// gradientCubemap stores each texel's direction remapped to [0, 1].
func gradientCubemap(size int) *Cubemap {
	cube := NewCubemap(size)
	for f := range cube.Faces {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				u := (float32(x) + 0.5) / float32(size)
				v := (float32(y) + 0.5) / float32(size)
				d := FaceDirection(Face(f), u, v)
				cube.Faces[f][y*size+x] = d.Add(mgl32.Vec3{1, 1, 1}).Mul(0.5)
			}
		}
	}
	return cube
}

func TestFaceDirectionRoundTrip(t *testing.T) {
	coords := []float32{0.1, 0.35, 0.5, 0.8}
	for f := FacePositiveX; f <= FaceNegativeZ; f++ {
		t.Run(f.String(), func(t *testing.T) {
			for _, u := range coords {
				for _, v := range coords {
					d := FaceDirection(f, u, v)
					if math.Abs(float64(d.Len()-1)) > 1e-5 {
						t.Fatalf("FaceDirection(%v, %v) is not unit: %v", u, v, d)
					}
					gf, gu, gv := DirectionToFace(d)
					if gf != f {
						t.Fatalf("(%v, %v) mapped to face %s", u, v, gf)
					}
					if math.Abs(float64(gu-u)) > 1e-5 || math.Abs(float64(gv-v)) > 1e-5 {
						t.Errorf("(%v, %v) round tripped to (%v, %v)", u, v, gu, gv)
					}
				}
			}
		})
	}
}

func TestFaceCenters(t *testing.T) {
	want := [6]mgl32.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for f, w := range want {
		if got := FaceDirection(Face(f), 0.5, 0.5); !got.ApproxEqualThreshold(w, 1e-6) {
			t.Errorf("center of %s = %v, want %v", Face(f), got, w)
		}
	}
	if f, u, v := DirectionToFace(mgl32.Vec3{}); f != FacePositiveZ || u != 0.5 || v != 0.5 {
		t.Errorf("zero direction = (%s, %v, %v), want (pz, 0.5, 0.5)", f, u, v)
	}
}

func TestFaceViewMatrices(t *testing.T) {
	targets := [6]mgl32.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for f, view := range FaceViewMatrices() {
		d := targets[f]
		got := common.MulVec4(view[:], [4]float32{d[0], d[1], d[2], 0})
		want := [4]float32{0, 0, -1, 0}
		for i := range got {
			if math.Abs(float64(got[i]-want[i])) > 1e-6 {
				t.Errorf("face %s maps its target to %v, want %v", Face(f), got, want)
				break
			}
		}
	}
}

func TestCubemapSample(t *testing.T) {
	c := mgl32.Vec3{0.2, 0.4, 0.6}
	cube := constantCubemap(4, c)
	dirs := []mgl32.Vec3{{1, 0, 0}, {0.3, -0.9, 0.1}, {-0.5, 0.5, -0.7}, {1, 1, 1}}
	for _, d := range dirs {
		if got := cube.Sample(d); !got.ApproxEqualThreshold(c, 1e-6) {
			t.Errorf("Sample(%v) = %v, want %v", d, got, c)
		}
	}

	cube = NewCubemap(2)
	for i := range cube.Faces[FacePositiveY] {
		cube.Faces[FacePositiveY][i] = mgl32.Vec3{1, 1, 1}
	}
	if got := cube.Sample(mgl32.Vec3{0, 1, 0}); !got.ApproxEqualThreshold(mgl32.Vec3{1, 1, 1}, 1e-6) {
		t.Errorf("Sample(+Y) = %v, want white", got)
	}
	if got := cube.Sample(mgl32.Vec3{0, -1, 0}); !got.ApproxEqualThreshold(mgl32.Vec3{}, 1e-6) {
		t.Errorf("Sample(-Y) = %v, want black", got)
	}
}

func TestCubemapFromTextures(t *testing.T) {
	face := func(w, h uint32) common.TextureStagingData {
		return common.TextureStagingData{Pixels: make([]byte, w*h*4), Width: w, Height: h}
	}
	uniform := func(w uint32) [6]common.TextureStagingData {
		var faces [6]common.TextureStagingData
		for i := range faces {
			faces[i] = face(w, w)
		}
		return faces
	}

	tests := []struct {
		name  string
		faces func() [6]common.TextureStagingData
	}{
		{"empty", func() [6]common.TextureStagingData { return [6]common.TextureStagingData{} }},
		{"not square", func() [6]common.TextureStagingData {
			faces := uniform(4)
			faces[2] = face(4, 2)
			return faces
		}},
		{"mismatched sizes", func() [6]common.TextureStagingData {
			faces := uniform(4)
			faces[5] = face(2, 2)
			return faces
		}},
		{"short pixel buffer", func() [6]common.TextureStagingData {
			faces := uniform(4)
			faces[1].Pixels = faces[1].Pixels[:8]
			return faces
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CubemapFromTextures(tt.faces()); !errors.Is(err, ErrInvalidCubemap) {
				t.Errorf("err = %v, want ErrInvalidCubemap", err)
			}
		})
	}
}

func TestCubemapTextureRoundTrip(t *testing.T) {
	src := gradientCubemap(4)
	var faces [6]common.TextureStagingData
	for f := range faces {
		faces[f] = src.Texture(Face(f))
	}
	got, err := CubemapFromTextures(faces)
	if err != nil {
		t.Fatalf("CubemapFromTextures: %v", err)
	}
	for f := range src.Faces {
		for i, want := range src.Faces[f] {
			if !got.Faces[f][i].ApproxEqualThreshold(want, 0.5/255+1e-6) {
				t.Fatalf("face %s texel %d = %v, want %v", Face(f), i, got.Faces[f][i], want)
			}
		}
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		base, level, want int
	}{
		{256, 0, 256},
		{256, 1, 128},
		{256, 4, 16},
		{4, 2, 1},
		{4, 5, 1},
	}
	for _, tt := range tests {
		if got := LevelSize(tt.base, tt.level); got != tt.want {
			t.Errorf("LevelSize(%d, %d) = %d, want %d", tt.base, tt.level, got, tt.want)
		}
	}
	if got := LevelRoughness(0, 5); got != 0 {
		t.Errorf("LevelRoughness(0, 5) = %v, want 0", got)
	}
	if got := LevelRoughness(4, 5); got != 0.8 {
		t.Errorf("LevelRoughness(4, 5) = %v, want 0.8", got)
	}
}

func TestSampleLod(t *testing.T) {
	p := &PrefilteredCubemap{Levels: []*Cubemap{
		constantCubemap(4, mgl32.Vec3{0, 0, 0}),
		constantCubemap(2, mgl32.Vec3{1, 1, 1}),
	}}
	dir := mgl32.Vec3{0, 0, 1}

	tests := []struct {
		lod  float32
		want float32
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{5, 1},
	}
	for _, tt := range tests {
		if got := p.SampleLod(dir, tt.lod); !got.ApproxEqualThreshold(mgl32.Vec3{tt.want, tt.want, tt.want}, 1e-6) {
			t.Errorf("SampleLod(%v) = %v, want %v", tt.lod, got, tt.want)
		}
	}
	if got := (&PrefilteredCubemap{}).SampleLod(dir, 0); got != (mgl32.Vec3{}) {
		t.Errorf("empty chain = %v, want zero", got)
	}
}

func TestBakePrefiltered(t *testing.T) {
	b := NewBaker(WithWorkers(3))
	defer b.Close()

	t.Run("constant environment", func(t *testing.T) {
		c := mgl32.Vec3{0.3, 0.5, 0.7}
		out, err := b.BakePrefiltered(context.Background(), constantCubemap(8, c), 4, 16)
		if err != nil {
			t.Fatalf("BakePrefiltered: %v", err)
		}
		if len(out.Levels) != 4 {
			t.Fatalf("got %d levels, want 4", len(out.Levels))
		}
		for level, cube := range out.Levels {
			if want := LevelSize(8, level); cube.Size != want {
				t.Errorf("level %d size = %d, want %d", level, cube.Size, want)
			}
			for f := range cube.Faces {
				for i, got := range cube.Faces[f] {
					if !got.ApproxEqualThreshold(c, 1e-4) {
						t.Fatalf("level %d face %s texel %d = %v, want %v", level, Face(f), i, got, c)
					}
				}
			}
		}
	})

	t.Run("matches direct prefilter", func(t *testing.T) {
		src := gradientCubemap(8)
		out, err := b.BakePrefiltered(context.Background(), src, 3, 32)
		if err != nil {
			t.Fatalf("BakePrefiltered: %v", err)
		}
		for f := range src.Faces {
			for i, want := range src.Faces[f] {
				if out.Levels[0].Faces[f][i] != want {
					t.Fatalf("level 0 face %s texel %d = %v, want source %v", Face(f), i, out.Levels[0].Faces[f][i], want)
				}
			}
		}
		orig := src.Faces[0][0]
		src.Faces[0][0] = mgl32.Vec3{9, 9, 9}
		if out.Levels[0].Faces[0][0] == src.Faces[0][0] {
			t.Error("level 0 aliases the source")
		}
		src.Faces[0][0] = orig

		for level := 1; level < 3; level++ {
			size := LevelSize(8, level)
			for f := range out.Levels[level].Faces {
				x, y := size-1, 0
				u := (float32(x) + 0.5) / float32(size)
				v := (float32(y) + 0.5) / float32(size)
				want := shading.Prefilter(src, FaceDirection(Face(f), u, v), LevelRoughness(level, 3), 32)
				if got := out.Levels[level].At(Face(f), x, y); !got.ApproxEqualThreshold(want, 1e-6) {
					t.Errorf("level %d face %s = %v, want %v", level, Face(f), got, want)
				}
			}
		}
	})

	t.Run("single level", func(t *testing.T) {
		out, err := b.BakePrefiltered(context.Background(), constantCubemap(2, mgl32.Vec3{1, 0, 0}), 1, 8)
		if err != nil {
			t.Fatalf("BakePrefiltered: %v", err)
		}
		if len(out.Levels) != 1 || out.Levels[0].Size != 2 {
			t.Errorf("got %d levels, want 1 level of size 2", len(out.Levels))
		}
	})
}

func TestBakeErrors(t *testing.T) {
	b := NewBaker(WithWorkers(2))
	defer b.Close()
	ctx := context.Background()
	cube := constantCubemap(4, mgl32.Vec3{1, 1, 1})
	broken := constantCubemap(4, mgl32.Vec3{1, 1, 1})
	broken.Faces[3] = broken.Faces[3][:5]

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	tests := []struct {
		name string
		bake func() error
		want error
	}{
		{"nil source", func() error { _, err := b.BakePrefiltered(ctx, nil, 2, 8); return err }, ErrInvalidCubemap},
		{"short face", func() error { _, err := b.BakePrefiltered(ctx, broken, 2, 8); return err }, ErrInvalidCubemap},
		{"zero prefilter samples", func() error { _, err := b.BakePrefiltered(ctx, cube, 2, 0); return err }, ErrInvalidSampleCount},
		{"zero dfg samples", func() error { _, err := b.BakeDFG(ctx, 8, 0); return err }, ErrInvalidSampleCount},
		{"cancelled prefilter", func() error { _, err := b.BakePrefiltered(cancelled, cube, 3, 8); return err }, context.Canceled},
		{"cancelled dfg", func() error { _, err := b.BakeDFG(cancelled, 8, 8); return err }, context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.bake(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := b.BakePrefiltered(ctx, cube, 0, 8); err == nil {
		t.Error("zero levels should fail")
	}
	if _, err := b.BakeDFG(ctx, 0, 8); err == nil {
		t.Error("zero size should fail")
	}
}

func TestBakeDFG(t *testing.T) {
	b := NewBaker(WithWorkers(4), WithQueueSize(4))
	defer b.Close()

	const size = 16
	lut, err := b.BakeDFG(context.Background(), size, 64)
	if err != nil {
		t.Fatalf("BakeDFG: %v", err)
	}
	if lut.Size != size || len(lut.Data) != size*size {
		t.Fatalf("got %d entries of size %d", len(lut.Data), lut.Size)
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			got := lut.Data[y*size+x]
			nv, roughness := TexelCoordinates(x, y, size)
			want := shading.IntegrateDFG(nv, roughness, 64)
			if got != want {
				t.Fatalf("texel (%d, %d) = %v, want %v", x, y, got, want)
			}
			if got.X() < 0 || got.Y() < 0 || math.IsNaN(float64(got.X())) || math.IsNaN(float64(got.Y())) {
				t.Fatalf("texel (%d, %d) = %v, want non-negative", x, y, got)
			}
		}
	}

	// Near normal incidence the split-sum terms conserve energy.
	for y := 0; y < size; y++ {
		e := lut.Data[y*size+size-1]
		if e.X()+e.Y() > 1.05 {
			t.Errorf("row %d: scale + bias = %v, want <= 1", y, e.X()+e.Y())
		}
	}

	nv, roughness := TexelCoordinates(3, 7, size)
	if got := lut.Lookup(nv, roughness); !got.ApproxEqualThreshold(lut.Data[7*size+3], 1e-5) {
		t.Errorf("Lookup at texel center = %v, want %v", got, lut.Data[7*size+3])
	}
}

func TestDFGTextureRoundTrip(t *testing.T) {
	lut := &DFGLUT{Size: 2, Data: []mgl32.Vec2{{0, 1}, {0.25, 0.5}, {0.9, 0.05}, {1, 0}}}
	tex := lut.Texture()
	if tex.Width != 2 || tex.Height != 2 || len(tex.Pixels) != 16 {
		t.Fatalf("texture is %dx%d with %d bytes", tex.Width, tex.Height, len(tex.Pixels))
	}
	if tex.Pixels[3] != 255 || tex.Pixels[2] != 0 {
		t.Errorf("texel 0 blue/alpha = %d/%d, want 0/255", tex.Pixels[2], tex.Pixels[3])
	}

	got, err := DFGFromTexture(tex)
	if err != nil {
		t.Fatalf("DFGFromTexture: %v", err)
	}
	for i, want := range lut.Data {
		if !got.Data[i].ApproxEqualThreshold(want, 0.5/255+1e-6) {
			t.Errorf("entry %d = %v, want %v", i, got.Data[i], want)
		}
	}

	if _, err := DFGFromTexture(common.TextureStagingData{Pixels: make([]byte, 24), Width: 3, Height: 2}); err == nil {
		t.Error("non-square texture should fail")
	}
}

func TestBakerWorkers(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{3, 3},
		{0, 1},
		{-2, 1},
	}
	for _, tt := range tests {
		b := NewBaker(WithWorkers(tt.n))
		if got := b.Workers(); got != tt.want {
			t.Errorf("WithWorkers(%d): Workers() = %d, want %d", tt.n, got, tt.want)
		}
		b.Close()
	}
}

func TestPrefilterParams(t *testing.T) {
	var p GPUPrefilterParams
	if p.Size() != 80 {
		t.Fatalf("GPUPrefilterParams size = %d, want 80", p.Size())
	}

	params := PrefilterParams(2, 5, 256)
	for f, fp := range params {
		buf := fp.Marshal()
		if got := common.Float32At(buf, 64); got != 0.4 {
			t.Errorf("face %s roughness = %v, want 0.4", Face(f), got)
		}
		if got := uint32(buf[68]) | uint32(buf[69])<<8; got != 256 {
			t.Errorf("face %s sample count = %d, want 256", Face(f), got)
		}
	}

	// The center of each face projects to the middle of clip space.
	targets := [6][4]float32{{1, 0, 0, 1}, {-1, 0, 0, 1}, {0, 1, 0, 1}, {0, -1, 0, 1}, {0, 0, 1, 1}, {0, 0, -1, 1}}
	for f, fp := range params {
		clip := common.MulVec4(fp.ViewProj[:], targets[f])
		if math.Abs(float64(clip[0]/clip[3])) > 1e-5 || math.Abs(float64(clip[1]/clip[3])) > 1e-5 {
			t.Errorf("face %s center projects to (%v, %v)", Face(f), clip[0]/clip[3], clip[1]/clip[3])
		}
	}
}
