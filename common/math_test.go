package common

import (
	"math"
	"testing"
)

const eps = 1e-5

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) <= eps
}

func TestMul4Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	for i := range m {
		m[i] = float32(i + 1)
	}
	Mul4(out[:], id[:], m[:])
	if out != m {
		t.Fatalf("identity * m = %v, want %v", out, m)
	}
	Mul4(out[:], m[:], id[:])
	if out != m {
		t.Fatalf("m * identity = %v, want %v", out, m)
	}
}

func TestInvert4(t *testing.T) {
	var view, inv, prod [16]float32
	LookAt(view[:], 3, 4, 5, 0, 0, 0, 0, 1, 0)
	if !Invert4(inv[:], view[:]) {
		t.Fatal("view matrix reported singular")
	}
	Mul4(prod[:], view[:], inv[:])
	var id [16]float32
	Identity(id[:])
	for i := range prod {
		if !approx(prod[i], id[i]) {
			t.Fatalf("view * inverse element %d = %v, want %v", i, prod[i], id[i])
		}
	}

	var zero [16]float32
	if Invert4(inv[:], zero[:]) {
		t.Fatal("zero matrix should be singular")
	}
}

func TestOrthoDepthRange(t *testing.T) {
	var proj [16]float32
	Ortho(proj[:], -10, 10, -10, 10, 1, 20)

	tests := []struct {
		name  string
		viewZ float32
		want  float32
	}{
		{"near plane", -1, 0},
		{"far plane", -20, 1},
		{"midpoint", -10.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := MulVec4(proj[:], [4]float32{0, 0, tt.viewZ, 1})
			if !approx(clip[2]/clip[3], tt.want) {
				t.Errorf("depth = %v, want %v", clip[2]/clip[3], tt.want)
			}
		})
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	var proj [16]float32
	Perspective(proj[:], math.Pi/4, 1, 0.1, 100)

	near := MulVec4(proj[:], [4]float32{0, 0, -0.1, 1})
	far := MulVec4(proj[:], [4]float32{0, 0, -100, 1})
	if !approx(near[2]/near[3], 0) {
		t.Errorf("near depth = %v, want 0", near[2]/near[3])
	}
	if math.Abs(float64(far[2]/far[3]-1)) > 1e-4 {
		t.Errorf("far depth = %v, want 1", far[2]/far[3])
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	var view [16]float32
	LookAt(view[:], 0, 0, -2, 0, 0, 0, 0, 1, 0)

	eye := MulVec4(view[:], [4]float32{0, 0, -2, 1})
	for i := 0; i < 3; i++ {
		if !approx(eye[i], 0) {
			t.Fatalf("eye in view space = %v, want origin", eye)
		}
	}
	target := MulVec4(view[:], [4]float32{0, 0, 0, 1})
	if !approx(target[2], -2) {
		t.Fatalf("target view z = %v, want -2", target[2])
	}
}

func TestNormalize3(t *testing.T) {
	tests := []struct {
		name string
		in   [3]float32
		want [3]float32
	}{
		{"axis", [3]float32{0, 5, 0}, [3]float32{0, 1, 0}},
		{"diagonal", [3]float32{3, 0, 4}, [3]float32{0.6, 0, 0.8}},
		{"zero", [3]float32{}, [3]float32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize3(tt.in)
			for i := range got {
				if !approx(got[i], tt.want[i]) {
					t.Fatalf("Normalize3(%v) = %v, want %v", tt.in, got, tt.want)
				}
			}
		})
	}
}
