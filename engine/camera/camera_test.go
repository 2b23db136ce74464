package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-pbr/common"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) <= 1e-4
}

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	if c.Eye() != [3]float32{0, 0, -2} {
		t.Errorf("eye = %v, want (0, 0, -2)", c.Eye())
	}
	if c.ViewDirection() != [3]float32{0, 0, 1} {
		t.Errorf("view direction = %v, want +Z", c.ViewDirection())
	}
	if !approx(c.Fov(), math.Pi/4) {
		t.Errorf("fov = %v, want pi/4", c.Fov())
	}
	if c.Near() != 0.1 || c.Far() != 100 {
		t.Errorf("near/far = %v/%v", c.Near(), c.Far())
	}
}

func TestInverseViewProjectionRoundTrip(t *testing.T) {
	c := NewCamera(WithEye(3, 2, -5), WithTarget(0, 1, 0), WithAspect(16.0/9.0))
	vp := c.ViewProjectionMatrix()
	inv := c.InverseViewProjectionMatrix()

	points := [][4]float32{
		{0, 0, 0, 1},
		{1, 1, 1, 1},
		{-2, 0.5, 3, 1},
	}
	for _, p := range points {
		clip := common.MulVec4(vp[:], p)
		ndc := [4]float32{clip[0] / clip[3], clip[1] / clip[3], clip[2] / clip[3], 1}
		if ndc[2] < 0 || ndc[2] > 1 {
			t.Errorf("point %v depth %v outside [0, 1]", p, ndc[2])
		}
		back := common.MulVec4(inv[:], ndc)
		for i := 0; i < 3; i++ {
			if !approx(back[i]/back[3], p[i]) {
				t.Errorf("point %v reconstructed as %v", p, back)
				break
			}
		}
	}
}

func TestSettersRecomputeMatrices(t *testing.T) {
	c := NewCamera()
	before := c.ViewProjectionMatrix()
	c.SetEye(0, 5, -5)
	if c.ViewProjectionMatrix() == before {
		t.Error("SetEye did not update the view-projection matrix")
	}
	before = c.ProjectionMatrix()
	c.SetFov(math.Pi / 2)
	if c.ProjectionMatrix() == before {
		t.Error("SetFov did not update the projection matrix")
	}
}

func TestGPUCameraUniform(t *testing.T) {
	c := NewCamera(WithEye(1, 2, 3))
	u := ToGPUCameraUniform(c)
	if u.Size() != 160 {
		t.Fatalf("Size = %d, want 160", u.Size())
	}
	buf := u.Marshal()
	if got := common.Float32At(buf, 128); got != 1 {
		t.Errorf("position.x = %v, want 1", got)
	}
	if got := common.Float32At(buf, 136); got != 3 {
		t.Errorf("position.z = %v, want 3", got)
	}
	dir := c.ViewDirection()
	if got := common.Float32At(buf, 144); got != dir[0] {
		t.Errorf("view_direction.x = %v, want %v", got, dir[0])
	}
}
