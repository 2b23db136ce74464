package gbuffer

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const quantum = 1.0/255 + 1e-6

func within(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

func TestPack4x8UnormMatchesWGSL(t *testing.T) {
	tests := []struct {
		name string
		in   mgl32.Vec4
		want uint32
	}{
		{"zero", mgl32.Vec4{0, 0, 0, 0}, 0x00000000},
		{"one", mgl32.Vec4{1, 1, 1, 1}, 0xffffffff},
		{"x in low byte", mgl32.Vec4{1, 0, 0, 0}, 0x000000ff},
		{"w in high byte", mgl32.Vec4{0, 0, 0, 1}, 0xff000000},
		{"half rounds up", mgl32.Vec4{0.5, 0, 0, 0}, 0x00000080},
		{"clamped", mgl32.Vec4{-3, 2, 0, 0}, 0x0000ff00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pack4x8Unorm(tt.in); got != tt.want {
				t.Errorf("Pack4x8Unorm(%v) = %#08x, want %#08x", tt.in, got, tt.want)
			}
		})
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	surfaces := []Surface{
		{
			BaseColor:           mgl32.Vec3{1, 1, 1},
			Normal:              mgl32.Vec3{0, 0, 1},
			Metallic:            0,
			PerceptualRoughness: 0.5,
			Reflectance:         0.5,
			Emissive:            mgl32.Vec4{0, 0, 0, 1},
		},
		{
			BaseColor:           mgl32.Vec3{0.2, 0.7, 0.33},
			Normal:              mgl32.Vec3{1, 2, -3}.Normalize(),
			Metallic:            0.9,
			PerceptualRoughness: 0.12,
			Reflectance:         0.04,
			ClearCoat:           0.6,
			ClearCoatRoughness:  0.25,
			Emissive:            mgl32.Vec4{0.1, 0.2, 0.3, 0.4},
		},
		{
			BaseColor:           mgl32.Vec3{0, 0, 0},
			Normal:              mgl32.Vec3{-1, 0, 0},
			Metallic:            1,
			PerceptualRoughness: 1,
			Reflectance:         1,
		},
	}

	for i, s := range surfaces {
		t.Run(fmt.Sprintf("surface %d", i), func(t *testing.T) {
			got := Unpack(Pack(s))

			scalars := []struct {
				name      string
				got, want float32
			}{
				{"metallic", got.Metallic, s.Metallic},
				{"perceptual roughness", got.PerceptualRoughness, s.PerceptualRoughness},
				{"reflectance", got.Reflectance, s.Reflectance},
				{"clear coat", got.ClearCoat, s.ClearCoat},
				{"clear coat roughness", got.ClearCoatRoughness, s.ClearCoatRoughness},
			}
			for _, c := range scalars {
				if !within(c.got, c.want, quantum) {
					t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
				}
			}
			for c := 0; c < 3; c++ {
				if !within(got.BaseColor[c], s.BaseColor[c], quantum) {
					t.Errorf("base color = %v, want %v", got.BaseColor, s.BaseColor)
				}
				// the bias doubles the quantization step, renormalization adds a little more
				if !within(got.Normal[c], s.Normal[c], 3*quantum) {
					t.Errorf("normal = %v, want %v", got.Normal, s.Normal)
				}
			}
			for c := 0; c < 4; c++ {
				if !within(got.Emissive[c], s.Emissive[c], quantum) {
					t.Errorf("emissive = %v, want %v", got.Emissive, s.Emissive)
				}
			}
			if !within(got.Normal.Len(), 1, 1e-5) {
				t.Errorf("unpacked normal length = %v, want 1", got.Normal.Len())
			}
		})
	}
}

func TestRoughnessClamp(t *testing.T) {
	tests := []struct {
		perceptual, want float32
	}{
		{0, MinPerceptualRoughness * MinPerceptualRoughness},
		{0.5, 0.25},
		{1, 1},
		{4, 1},
	}
	for _, tt := range tests {
		s := Surface{PerceptualRoughness: tt.perceptual}
		if got := s.Roughness(); !within(got, tt.want, 1e-6) {
			t.Errorf("Roughness(%v) = %v, want %v", tt.perceptual, got, tt.want)
		}
	}
}

func TestF0(t *testing.T) {
	dielectric := Surface{BaseColor: mgl32.Vec3{1, 0, 0}, Reflectance: 0.5}
	if got := dielectric.F0(); !got.ApproxEqualThreshold(mgl32.Vec3{0.04, 0.04, 0.04}, 1e-6) {
		t.Errorf("dielectric F0 = %v, want 0.04", got)
	}
	metal := Surface{BaseColor: mgl32.Vec3{1, 0.5, 0.25}, Reflectance: 0.5, Metallic: 1}
	if got := metal.F0(); !got.ApproxEqualThreshold(metal.BaseColor, 1e-6) {
		t.Errorf("metal F0 = %v, want base color", got)
	}
	if got := metal.DiffuseColor(); got != (mgl32.Vec3{}) {
		t.Errorf("metal diffuse = %v, want zero", got)
	}
}

func TestFloatRoundTrip(t *testing.T) {
	s := Surface{
		BaseColor:           mgl32.Vec3{0.25, 0.5, 0.75},
		Normal:              mgl32.Vec3{0, 1, 0},
		Metallic:            0.3,
		PerceptualRoughness: 0.6,
		Reflectance:         0.5,
		ClearCoat:           1,
		Emissive:            mgl32.Vec4{1, 0, 0, 1},
	}
	pos := mgl32.Vec3{1, -2, 3}

	texels := EncodeFloat(s, pos)
	if texels.Params[3] != 1 {
		t.Errorf("occlusion channel = %v, want 1", texels.Params[3])
	}
	got, gotPos := DecodeFloat(texels)
	if gotPos != pos {
		t.Errorf("world position = %v, want %v", gotPos, pos)
	}
	if got.Normal != s.Normal {
		t.Errorf("normal = %v, want %v", got.Normal, s.Normal)
	}
	if !within(got.Metallic, s.Metallic, quantum) || !within(got.PerceptualRoughness, s.PerceptualRoughness, quantum) {
		t.Errorf("params = %v", texels.Params)
	}
	if got.ClearCoat != 0 {
		t.Errorf("clear coat = %v, float targets do not store it", got.ClearCoat)
	}
}

func TestAttachments(t *testing.T) {
	packed := Attachments(ModePacked)
	if len(packed) != 1 || packed[0].Name != "gbuffer_packed" {
		t.Fatalf("packed attachments = %+v", packed)
	}
	float := Attachments(ModeFloat)
	if len(float) != 5 {
		t.Fatalf("float attachments = %d, want 5", len(float))
	}
	for i, a := range float {
		if a.Location != uint32(i) {
			t.Errorf("attachment %s at location %d, want %d", a.Name, a.Location, i)
		}
	}

	for _, m := range []Mode{ModeFloat, ModePacked} {
		parsed, err := ParseMode(m.String())
		if err != nil || parsed != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), parsed, err)
		}
	}
	if _, err := ParseMode("half"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestSchemaSource(t *testing.T) {
	want := fmt.Sprintf("const GBUFFER_LAYOUT_VERSION: u32 = %du;", GBufferLayoutVersion)
	if !strings.Contains(GPUGBufferSource, want) {
		t.Errorf("WGSL schema does not declare %q", want)
	}

	p := GPUPackedGBuffer{Normal: 1, Material: 2, BaseColor: 3, Emissive: 4}
	if p.Size() != 16 {
		t.Errorf("Size = %d, want 16", p.Size())
	}
	buf := p.Marshal()
	for i, w := range p.Words() {
		if buf[i*4] != byte(w) {
			t.Errorf("word %d marshaled as %d, want %d", i, buf[i*4], w)
		}
	}
}
