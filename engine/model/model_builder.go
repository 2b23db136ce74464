package model

import "github.com/go-gl/mathgl/mgl32"

// TransformBuilderOption is a functional option for configuring a Transform via NewTransform.
type TransformBuilderOption func(*transform)

// WithPosition is an option builder that sets the world-space translation.
//
// Parameters:
//   - x, y, z: translation components
//
// Returns:
//   - TransformBuilderOption: a function that applies the position option to a transform
func WithPosition(x, y, z float32) TransformBuilderOption {
	return func(t *transform) {
		t.position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation is an option builder that sets the orientation quaternion.
// The quaternion is normalized before storing.
//
// Parameters:
//   - q: the rotation
//
// Returns:
//   - TransformBuilderOption: a function that applies the rotation option to a transform
func WithRotation(q mgl32.Quat) TransformBuilderOption {
	return func(t *transform) {
		t.rotation = q.Normalize()
	}
}

// WithAxisAngle is an option builder that sets the orientation from a rotation
// of angle radians about axis.
//
// Parameters:
//   - angle: rotation angle in radians
//   - axis: the rotation axis (normalized internally)
//
// Returns:
//   - TransformBuilderOption: a function that applies the rotation option to a transform
func WithAxisAngle(angle float32, axis mgl32.Vec3) TransformBuilderOption {
	return func(t *transform) {
		t.rotation = mgl32.QuatRotate(angle, axis.Normalize())
	}
}

// WithScale is an option builder that sets the per-axis scale.
//
// Parameters:
//   - x, y, z: scale factors
//
// Returns:
//   - TransformBuilderOption: a function that applies the scale option to a transform
func WithScale(x, y, z float32) TransformBuilderOption {
	return func(t *transform) {
		t.scale = mgl32.Vec3{x, y, z}
	}
}
