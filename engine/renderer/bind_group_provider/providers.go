package bind_group_provider

import (
	"github.com/Carmen-Shannon/oxy-pbr/common"
	"github.com/Carmen-Shannon/oxy-pbr/engine/camera"
	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/ibl"
	"github.com/Carmen-Shannon/oxy-pbr/engine/light"
	"github.com/Carmen-Shannon/oxy-pbr/engine/model"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
)

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Bindings of the lighting resolve's frame group (group 0).
const (
	FrameBindingCamera             = 0
	FrameBindingLight              = 1
	FrameBindingShadowMap          = 2
	FrameBindingShadowSampler      = 3
	FrameBindingDFG                = 4
	FrameBindingEnvironment        = 5
	FrameBindingEnvironmentSampler = 6
)

// NewFrameProvider stages group 0 of the lighting resolve: the camera and
// light uniforms and the shadow and environment samplers. The light uniform
// counts the point lights that NewPointLightProvider stages for the same list.
//
// Parameters:
//   - cam: the viewing camera
//   - sun: the directional light, or nil for none
//   - pointLights: the lights handed to NewPointLightProvider
//   - environment: whether the host binds a prefiltered environment and DFG table
//
// Returns:
//   - BindGroupProvider: the group 0 provider
func NewFrameProvider(cam camera.Camera, sun light.Light, pointLights []light.Light, environment bool) BindGroupProvider {
	camUniform := camera.ToGPUCameraUniform(cam)
	_, count := light.MarshalPointLightBuffer(pointLights)

	var lightUniform light.GPULightUniform
	if sun != nil {
		lightUniform = light.ToGPULightUniform(sun, count)
	} else {
		lightUniform.LightsCount[0] = uint32(count)
	}
	lightUniform.SetFlag(light.LightFlagIBL, environment)

	return NewBindGroupProvider("lighting frame", 0,
		WithBuffer(FrameBindingCamera, camUniform.Marshal()),
		WithBuffer(FrameBindingLight, lightUniform.Marshal()),
		WithSampler(FrameBindingShadowSampler, light.ShadowSampler()),
		WithSampler(FrameBindingEnvironmentSampler, ibl.EnvironmentSampler()),
	)
}

// NewPointLightProvider stages group 2 of the lighting resolve: the point
// light storage buffer. The buffer always holds at least one entry so the
// binding is never empty; the light uniform's count keeps a zeroed entry unused.
//
// Parameters:
//   - lights: the scene lights; directional and disabled lights are skipped
//
// Returns:
//   - BindGroupProvider: the group 2 provider
func NewPointLightProvider(lights []light.Light) BindGroupProvider {
	data, count := light.MarshalPointLightBuffer(lights)
	if count == 0 {
		data = make([]byte, (&light.GPUPointLight{}).Size())
	}
	return NewBindGroupProvider("point lights", 2, WithBuffer(0, data))
}

// NewShadowProvider stages group 0 of the shadow depth pass: the light-space matrix.
//
// Parameters:
//   - sun: the shadow-casting directional light
//
// Returns:
//   - BindGroupProvider: the group 0 provider
func NewShadowProvider(sun light.Light) BindGroupProvider {
	u := light.GPUShadowUniform{LightVP: light.LightSpaceMatrix(sun)}
	return NewBindGroupProvider("shadow", 0, WithBuffer(0, u.Marshal()))
}

// NewTransformProvider stages group 1 of the geometry and shadow passes: one object's transform.
//
// Parameters:
//   - t: the object transform
//
// Returns:
//   - BindGroupProvider: the group 1 provider
func NewTransformProvider(t model.Transform) BindGroupProvider {
	u := t.GPUUniform()
	return NewBindGroupProvider("transform", 1, WithBuffer(0, u.Marshal()))
}

// NewSkyboxProvider stages group 0 of the skybox pass: the camera uniform and
// the environment sampler. The environment cube view is host-owned.
//
// Parameters:
//   - cam: the viewing camera
//
// Returns:
//   - BindGroupProvider: the group 0 provider
func NewSkyboxProvider(cam camera.Camera) BindGroupProvider {
	u := camera.ToGPUCameraUniform(cam)
	return NewBindGroupProvider("skybox", 0,
		WithBuffer(0, u.Marshal()),
		WithSampler(2, ibl.EnvironmentSampler()),
	)
}

// NewPrefilterProvider stages group 0 of the prefilter pass for one face and level.
//
// Parameters:
//   - params: the face's prefilter parameters, e.g. from ibl.PrefilterParams
//
// Returns:
//   - BindGroupProvider: the group 0 provider
func NewPrefilterProvider(params ibl.GPUPrefilterParams) BindGroupProvider {
	return NewBindGroupProvider("prefilter params", 0, WithBuffer(0, params.Marshal()))
}

// NewEnvironmentProvider stages group 1 of the prefilter pass: the source
// environment sampler. The cubemap view is host-owned.
//
// Returns:
//   - BindGroupProvider: the group 1 provider
func NewEnvironmentProvider() BindGroupProvider {
	return NewBindGroupProvider("environment", 1, WithSampler(1, ibl.EnvironmentSampler()))
}

// NewInvertProvider stages the invert pass: the texel-exact source sampler.
//
// Returns:
//   - BindGroupProvider: the group 0 provider
func NewInvertProvider() BindGroupProvider {
	return NewBindGroupProvider("post invert", 0, WithSampler(1, gbuffer.Sampler()))
}

// NewToneMapProvider stages the tone-mapping pass: the exposure uniform and
// the texel-exact source sampler.
//
// Parameters:
//   - exposure: the exposure multiplier
//
// Returns:
//   - BindGroupProvider: the group 0 provider
func NewToneMapProvider(exposure float32) BindGroupProvider {
	params := shading.GPUPostParams{Exposure: exposure}
	return NewBindGroupProvider("post tone map", 0,
		WithBuffer(0, params.Marshal()),
		WithSampler(2, gbuffer.Sampler()),
	)
}

// NewMipmapProvider stages a mip blit: the sampler reading the previous level.
//
// Returns:
//   - BindGroupProvider: the group 0 provider
func NewMipmapProvider() BindGroupProvider {
	return NewBindGroupProvider("mipmap", 0, WithSampler(1, common.MipSampler()))
}
