package model

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// transform is the implementation of the Transform interface.
type transform struct {
	mu       *sync.Mutex
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
}

// Transform defines the interface for an object's placement in the world.
// It composes translation, rotation and scale into the model matrix consumed
// by the geometry and shadow passes, and the normal matrix used to bring
// vertex normals and tangents into world space.
type Transform interface {
	// Position retrieves the world-space translation.
	//
	// Returns:
	//   - mgl32.Vec3: the translation
	Position() mgl32.Vec3

	// Rotation retrieves the orientation quaternion.
	//
	// Returns:
	//   - mgl32.Quat: the rotation
	Rotation() mgl32.Quat

	// Scale retrieves the per-axis scale.
	//
	// Returns:
	//   - mgl32.Vec3: the scale
	Scale() mgl32.Vec3

	// SetPosition sets the world-space translation.
	//
	// Parameters:
	//   - p: the translation
	SetPosition(p mgl32.Vec3)

	// SetRotation sets the orientation. The quaternion is normalized before storing.
	//
	// Parameters:
	//   - q: the rotation
	SetRotation(q mgl32.Quat)

	// SetScale sets the per-axis scale.
	//
	// Parameters:
	//   - s: the scale
	SetScale(s mgl32.Vec3)

	// ModelMatrix composes translation · rotation · scale.
	//
	// Returns:
	//   - mgl32.Mat4: the model-to-world matrix (column-major)
	ModelMatrix() mgl32.Mat4

	// NormalMatrix returns the inverse transpose of the model matrix's upper
	// 3x3, which keeps normals perpendicular under non-uniform scale.
	//
	// Returns:
	//   - mgl32.Mat3: the normal matrix
	NormalMatrix() mgl32.Mat3

	// GPUUniform snapshots the transform into its GPU uniform representation.
	//
	// Returns:
	//   - GPUTransformUniform: the model and normal matrices, column-padded for upload
	GPUUniform() GPUTransformUniform
}

var _ Transform = &transform{}

// NewTransform creates a Transform at the origin with no rotation and unit
// scale, then applies the provided options.
//
// Parameters:
//   - opts: variadic list of TransformBuilderOption functions
//
// Returns:
//   - Transform: the new transform
func NewTransform(opts ...TransformBuilderOption) Transform {
	t := &transform{
		mu:       &sync.Mutex{},
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *transform) Position() mgl32.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

func (t *transform) Rotation() mgl32.Quat {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rotation
}

func (t *transform) Scale() mgl32.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scale
}

func (t *transform) SetPosition(p mgl32.Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.position = p
}

func (t *transform) SetRotation(q mgl32.Quat) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rotation = q.Normalize()
}

func (t *transform) SetScale(s mgl32.Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scale = s
}

func (t *transform) ModelMatrix() mgl32.Mat4 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.modelMatrix()
}

func (t *transform) NormalMatrix() mgl32.Mat3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return mgl32.Mat4Normal(t.modelMatrix())
}

func (t *transform) GPUUniform() GPUTransformUniform {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := t.modelMatrix()
	n := mgl32.Mat4Normal(m)

	u := GPUTransformUniform{Model: m}
	for col := 0; col < 3; col++ {
		copy(u.Rotation[col*4:col*4+3], n[col*3:col*3+3])
	}
	return u
}

// modelMatrix composes the matrix. Caller must hold the mutex.
func (t *transform) modelMatrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.position.X(), t.position.Y(), t.position.Z())
	scale := mgl32.Scale3D(t.scale.X(), t.scale.Y(), t.scale.Z())
	return translate.Mul4(t.rotation.Mat4()).Mul4(scale)
}
