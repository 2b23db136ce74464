package shading

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-pbr/common"
	"github.com/Carmen-Shannon/oxy-pbr/engine/camera"
	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

func within(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}

func whiteDielectric() gbuffer.Surface {
	return gbuffer.Surface{
		BaseColor:           mgl32.Vec3{1, 1, 1},
		Normal:              mgl32.Vec3{0, 0, 1},
		Metallic:            0,
		PerceptualRoughness: 0.5,
		Reflectance:         0.5,
		Emissive:            mgl32.Vec4{0, 0, 0, 1},
	}
}

func TestFresnel(t *testing.T) {
	f0 := mgl32.Vec3{0.04, 0.04, 0.04}
	if got := Fresnel(f0, 1); !got.ApproxEqualThreshold(f0, 1e-6) {
		t.Errorf("F(v·h=1) = %v, want f0", got)
	}
	if got := Fresnel(f0, 0); !got.ApproxEqualThreshold(mgl32.Vec3{1, 1, 1}, 1e-6) {
		t.Errorf("F(v·h=0) = %v, want 1", got)
	}
}

func TestCalculateLight(t *testing.T) {
	s := whiteDielectric()
	white := mgl32.Vec4{1, 1, 1, 1}
	n := s.Normal

	tests := []struct {
		name string
		l, v mgl32.Vec3
		zero bool
	}{
		{"n = l = v", n, n, false},
		{"grazing view", n, mgl32.Vec3{1, 0, 0}, false},
		{"light at horizon", mgl32.Vec3{1, 0, 0}, n, true},
		{"light below surface", mgl32.Vec3{0, 0, -1}, n, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, brdf := range []func(mgl32.Vec4, float32, gbuffer.Surface, mgl32.Vec3, mgl32.Vec3) mgl32.Vec3{
				CalculateLight, CalculateLightBlinnPhong,
			} {
				got := brdf(white, 1, s, tt.l, tt.v)
				if tt.zero {
					if got != (mgl32.Vec3{}) {
						t.Errorf("radiance = %v, want exactly 0", got)
					}
					continue
				}
				if !finite(got) || got.X() < 0 {
					t.Errorf("radiance = %v, want finite and non-negative", got)
				}
			}
		})
	}
}

func TestCalculateLightSpecularAtNormalIncidence(t *testing.T) {
	s := whiteDielectric()
	n := s.Normal
	got := CalculateLight(mgl32.Vec4{1, 1, 1, 1}, 1, s, n, n)

	alpha := s.Roughness()
	specular := 0.04 * DistributionGGX(1, alpha) * VisibilitySmithGGX(1, 1, alpha)
	want := specular + 1/math.Pi
	if !within(got.X(), want, 1e-5) {
		t.Errorf("radiance = %v, want %v", got.X(), want)
	}
}

func TestResolveEndToEnd(t *testing.T) {
	sun := light.NewLight(light.LightTypeDirectional,
		light.WithDirection(0, 0, -1),
		light.WithColor(1, 1, 1, 1),
		light.WithIntensity(1),
	)
	r := NewResolver(WithDirectionalLight(sun))
	got := r.Resolve(whiteDielectric(), mgl32.Vec3{}, mgl32.Vec3{0, 0, 5})

	diffuse := float32(1 / math.Pi)
	for c := 0; c < 3; c++ {
		if !finite(got.Vec3()) {
			t.Fatalf("radiance = %v, want finite", got)
		}
		if got[c] <= diffuse+AmbientTerm {
			t.Errorf("channel %d = %v, want above diffuse + ambient %v", c, got[c], diffuse+AmbientTerm)
		}
		if got[c] > diffuse+AmbientTerm+0.1 {
			t.Errorf("channel %d = %v, specular should stay small for a dielectric", c, got[c])
		}
	}
	if got.W() != 1 {
		t.Errorf("alpha = %v, want 1", got.W())
	}
}

func TestPointLightCutoff(t *testing.T) {
	far := light.NewLight(light.LightTypePoint,
		light.WithPosition(0, 0, 20),
		light.WithIntensity(100),
		light.WithDistance(10),
	)
	r := NewResolver(WithPointLights(far))
	got := r.Resolve(whiteDielectric(), mgl32.Vec3{}, mgl32.Vec3{0, 0, 5})
	want := mgl32.Vec4{AmbientTerm, AmbientTerm, AmbientTerm, 1}
	if got != want {
		t.Errorf("radiance = %v, want ambient only %v", got, want)
	}

	inRange := light.NewLight(light.LightTypePoint, light.WithPosition(0, 0, 2), light.WithIntensity(4))
	r = NewResolver(WithPointLights(far, inRange))
	if got := r.Resolve(whiteDielectric(), mgl32.Vec3{}, mgl32.Vec3{0, 0, 5}); got.X() <= AmbientTerm {
		t.Errorf("in-range light contributed nothing: %v", got)
	}
	if len(r.PointLights()) != 2 {
		t.Errorf("point lights = %d, want 2", len(r.PointLights()))
	}
}

func TestPointLightAttenuation(t *testing.T) {
	if got := PointLightAttenuation(1, 1, 0); !within(got, 1000, 1e-2) {
		t.Errorf("attenuation at 0 = %v, want 1/ε", got)
	}
	if got := PointLightAttenuation(8, 2, 2); !within(got, 8/(8+pointLightEpsilon), 1e-6) {
		t.Errorf("attenuation = %v", got)
	}
}

func TestLightingModes(t *testing.T) {
	s := whiteDielectric()
	s.BaseColor = mgl32.Vec3{0.2, 0.4, 0.6}
	s.Emissive = mgl32.Vec4{0.1, 0, 0, 1}

	unlit := NewResolver(WithLightingMode(LightingModeUnlit))
	got := unlit.Resolve(s, mgl32.Vec3{}, mgl32.Vec3{0, 0, 5})
	if !got.ApproxEqualThreshold(mgl32.Vec4{0.3, 0.4, 0.6, 1}, 1e-6) {
		t.Errorf("unlit = %v, want base + emissive", got)
	}

	for _, m := range LightingModes {
		parsed, err := ParseLightingMode(m.String())
		if err != nil || parsed != m {
			t.Errorf("ParseLightingMode(%q) = %v, %v", m.String(), parsed, err)
		}
	}
	if _, err := ParseLightingMode("toon"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if got := BlinnPhongShininess(0.25); !within(got, 30, 1e-4) {
		t.Errorf("shininess = %v, want 30", got)
	}
}

func TestPCF(t *testing.T) {
	const res = light.ShadowMapResolution
	center := mgl32.Vec2{0.5, 0.5}

	lit := NewDepthMap(res, res, 1)
	if got := PCF(lit, center, 0.5); got != 1 {
		t.Errorf("all lit = %v, want 1", got)
	}

	occluded := NewDepthMap(res, res, 0)
	if got := PCF(occluded, center, 0.5); got != 0 {
		t.Errorf("all occluded = %v, want 0", got)
	}

	partial := NewDepthMap(res, res, 1)
	for y := 0; y < res; y++ {
		partial.Set(res/2+1, y, 0)
	}
	if got := PCF(partial, center, 0.5); !within(got, 6.0/9.0, 1e-6) {
		t.Errorf("one occluded column = %v, want 6/9", got)
	}
}

func TestShadowedResolve(t *testing.T) {
	sun := light.NewLight(light.LightTypeDirectional,
		light.WithPosition(0, 0, 10),
		light.WithDirection(0, 0, -1),
		light.WithColor(1, 1, 1, 1),
	)
	s := whiteDielectric()
	eye := mgl32.Vec3{0, 0, 5}

	lit := NewResolver(WithDirectionalLight(sun)).Resolve(s, mgl32.Vec3{}, eye)
	shadowed := NewResolver(
		WithDirectionalLight(sun),
		WithShadowMap(NewDepthMap(64, 64, 0)),
	).Resolve(s, mgl32.Vec3{}, eye)

	want := (lit.X()-AmbientTerm)*light.ShadowFloor + AmbientTerm
	if !within(shadowed.X(), want, 1e-5) {
		t.Errorf("shadowed = %v, want %v", shadowed.X(), want)
	}

	vp := light.LightSpaceMatrix(sun)
	if got := ShadowFactor(NewDepthMap(4, 4, 0), vp, mgl32.Vec3{0, 0, 50}); got != 1 {
		t.Errorf("receiver behind the light = %v, want lit", got)
	}
}

func TestHammersley(t *testing.T) {
	want := []mgl32.Vec2{{0, 0}, {0.125, 0.5}, {0.25, 0.25}, {0.375, 0.75}}
	for i, w := range want {
		if got := Hammersley(uint32(i), 8); got != w {
			t.Errorf("Hammersley(%d, 8) = %v, want %v", i, got, w)
		}
	}
	for i := uint32(0); i < 64; i++ {
		if Hammersley(i, 64) != Hammersley(i, 64) {
			t.Fatalf("Hammersley(%d) not deterministic", i)
		}
	}
}

func TestImportanceSampleGGX(t *testing.T) {
	normals := []mgl32.Vec3{{0, 0, 1}, {0, 1, 0}, mgl32.Vec3{1, -1, 0.5}.Normalize()}
	for _, n := range normals {
		for i := uint32(0); i < 32; i++ {
			h := ImportanceSampleGGX(Hammersley(i, 32), n, 0.7)
			if !within(h.Len(), 1, 1e-5) {
				t.Errorf("|h| = %v, want 1", h.Len())
			}
			if h.Dot(n) < 0 {
				t.Errorf("h = %v below the hemisphere of %v", h, n)
			}
		}
	}
}

func TestPrefilter(t *testing.T) {
	sky := EnvironmentFunc(func(dir mgl32.Vec3) mgl32.Vec3 {
		return mgl32.Vec3{dir.Z() + 1, 0.5, 0.25}
	})
	n := mgl32.Vec3{0, 0, 1}

	if got := Prefilter(sky, n, 0.5, 0); got != sky.Sample(n) {
		t.Errorf("zero samples = %v, want env(n)", got)
	}

	constant := EnvironmentFunc(func(mgl32.Vec3) mgl32.Vec3 { return mgl32.Vec3{2, 2, 2} })
	if got := Prefilter(constant, n, 0.8, 64); !got.ApproxEqualThreshold(mgl32.Vec3{2, 2, 2}, 1e-4) {
		t.Errorf("constant environment = %v, want 2", got)
	}

	got := Prefilter(sky, n, 1, 128)
	if !finite(got) {
		t.Errorf("rough prefilter = %v, want finite", got)
	}
	if got.X() > sky.Sample(n).X()+1e-5 {
		t.Errorf("rough prefilter = %v exceeds the peak of the environment", got)
	}
}

func TestIntegrateDFG(t *testing.T) {
	smooth := IntegrateDFG(1, 0.1, 256)
	if smooth.X() < 0.9 || smooth.Y() > 0.05 {
		t.Errorf("smooth DFG = %v, want scale near 1 and bias near 0", smooth)
	}
	for _, r := range []float32{0.1, 0.5, 1} {
		got := IntegrateDFG(1, r, 256)
		if got.X() < 0 || got.Y() < 0 || got.X()+got.Y() > 1+1e-4 {
			t.Errorf("DFG(1, %v) = %v, want scale+bias within [0, 1]", r, got)
		}
	}
	if got := IntegrateDFG(0.5, 0.5, 0); got != (mgl32.Vec2{}) {
		t.Errorf("zero samples = %v, want 0", got)
	}
}

type constantLod mgl32.Vec3

func (c constantLod) SampleLod(mgl32.Vec3, float32) mgl32.Vec3 { return mgl32.Vec3(c) }

type constantDFG mgl32.Vec2

func (c constantDFG) Lookup(float32, float32) mgl32.Vec2 { return mgl32.Vec2(c) }

type constantIrradiance mgl32.Vec3

func (c constantIrradiance) Irradiance(mgl32.Vec3) mgl32.Vec3 { return mgl32.Vec3(c) }

func TestEvaluateIBL(t *testing.T) {
	s := whiteDielectric()
	n := s.Normal
	got := EvaluateIBL(s, n, n, constantLod{1, 1, 1}, constantDFG{0.5, 0.1})
	want := float32(0.04*0.5 + 0.1)
	if !within(got.X(), want, 1e-6) {
		t.Errorf("EvaluateIBL = %v, want %v", got.X(), want)
	}

	if got := EvaluateDiffuseIBL(s, n, nil); got != (mgl32.Vec3{}) {
		t.Errorf("nil irradiance = %v, want 0", got)
	}
	if got := EvaluateDiffuseIBL(s, n, constantIrradiance{0.5, 0.5, 0.5}); got.X() != 0.5 {
		t.Errorf("diffuse IBL = %v, want 0.5", got)
	}

	r := NewResolver(
		WithEnvironment(constantLod{1, 1, 1}, constantDFG{0.5, 0.1}),
		WithIrradiance(constantIrradiance{0.5, 0.5, 0.5}),
	)
	if got := r.Resolve(s, mgl32.Vec3{}, mgl32.Vec3{0, 0, 5}); !within(got.X(), AmbientTerm+want+0.5, 1e-5) {
		t.Errorf("resolve with environment = %v, want %v", got.X(), AmbientTerm+want+0.5)
	}
}

func TestPost(t *testing.T) {
	c := mgl32.Vec4{0.25, 0.5, 1, 0.3}
	if got := Invert(c); got != (mgl32.Vec4{0.75, 0.5, 0, 0.3}) {
		t.Errorf("Invert = %v", got)
	}
	if got := Invert(Invert(c)); got != c {
		t.Errorf("double invert = %v, want %v", got, c)
	}

	mapped := ToneMap(mgl32.Vec4{0, 1, 100, 0.5}, DefaultExposure)
	if mapped[0] != 0 {
		t.Errorf("ToneMap(0) = %v, want 0", mapped[0])
	}
	if !within(mapped[1], float32(1-math.Exp(-1)), 1e-6) {
		t.Errorf("ToneMap(1) = %v", mapped[1])
	}
	if mapped[2] > 1 || mapped[3] != 0.5 {
		t.Errorf("ToneMap = %v, want bounded RGB and preserved alpha", mapped)
	}

	params := GPUPostParams{Exposure: 2.5}
	if params.Size() != 16 {
		t.Fatalf("GPUPostParams size = %d, want 16", params.Size())
	}
	if got := common.Float32At(params.Marshal(), 0); got != 2.5 {
		t.Errorf("marshaled exposure = %v, want 2.5", got)
	}
}

func TestBRDFSource(t *testing.T) {
	for _, fn := range []string{"fn calculate_light(", "fn calculate_light_blinn_phong(", "fn point_light_attenuation(", "fn importance_sample_ggx("} {
		if !strings.Contains(BRDFSource, fn) {
			t.Errorf("BRDFSource is missing %q", fn)
		}
	}
	for m, name := range map[LightingMode]string{
		LightingModePBR:        "LIGHTING_MODE_PBR: u32 = %du;",
		LightingModeBlinnPhong: "LIGHTING_MODE_BLINN_PHONG: u32 = %du;",
		LightingModeUnlit:      "LIGHTING_MODE_UNLIT: u32 = %du;",
	} {
		if want := fmt.Sprintf(name, uint32(m)); !strings.Contains(BRDFSource, want) {
			t.Errorf("BRDFSource does not declare %q", want)
		}
	}
}

func TestReconstructWorldPosition(t *testing.T) {
	cam := camera.NewCamera(camera.WithEye(0, 1, -4), camera.WithAspect(1.5))
	vp := mgl32.Mat4(cam.ViewProjectionMatrix())
	inv := mgl32.Mat4(cam.InverseViewProjectionMatrix())

	world := mgl32.Vec3{0.3, -0.2, 1}
	clip := vp.Mul4x1(world.Vec4(1))
	ndc := clip.Vec3().Mul(1 / clip.W())
	uv := mgl32.Vec2{ndc.X()*0.5 + 0.5, 0.5 - ndc.Y()*0.5}

	got := ReconstructWorldPosition(uv, ndc.Z(), inv)
	if !got.ApproxEqualThreshold(world, 1e-3) {
		t.Errorf("reconstructed = %v, want %v", got, world)
	}
}
