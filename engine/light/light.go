package light

import (
	"math"

	"github.com/Carmen-Shannon/oxy-pbr/common"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position falloff, only direction.
	// Used for large distant sources like the sun. Exactly one directional light
	// contributes to each resolve, and it is the only light that casts shadows.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Radiance falls off as intensity / (decay·d² + ε) and drops to exactly zero
	// beyond the light's cutoff distance.
	LightTypePoint
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType    LightType
	position     [3]float32
	direction    [3]float32
	color        [4]float32
	intensity    float32
	distance     float32 // 0 selects the intensity-derived default
	decay        float32
	enabled      bool
	castsShadows bool
	shadowSize   float32
	shadowNear   float32
	shadowFar    float32
}

// Light defines the interface for a light source feeding the lighting resolve.
//
// Directional and point lights share this interface; type-specific properties
// return their stored values even when the resolve ignores them for that type.
// Lights are marshaled into the light uniform and the point-light storage
// buffer via the gpu_types helpers.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional or point)
	Type() LightType

	// Position returns the world-space position of the light. For directional
	// lights this is the eye of the shadow projection.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Direction returns the normalized direction the light travels, from the
	// light toward the scene. Meaningless for point lights.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the RGBA color of the light.
	//
	// Returns:
	//   - [4]float32: color as (r, g, b, a)
	Color() [4]float32

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Distance returns the cutoff distance of a point light. Surfaces farther
	// away receive no contribution. When no distance was configured the cutoff
	// is derived from intensity and decay as sqrt(intensity·256 / decay).
	//
	// Returns:
	//   - float32: the cutoff distance
	Distance() float32

	// Decay returns the quadratic falloff coefficient of a point light.
	//
	// Returns:
	//   - float32: the decay value
	Decay() float32

	// Enabled returns whether this light is active for rendering.
	// Disabled lights are skipped during GPU buffer marshaling.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// CastsShadows returns whether this light renders a shadow depth pass.
	// Only directional lights are sampled for shadows by the resolve.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// ShadowFrustum returns the orthographic shadow frustum of a directional
	// light: the full width and height in world units, and the near and far
	// plane distances.
	//
	// Returns:
	//   - size, near, far: the frustum parameters
	ShadowFrustum() (size, near, far float32)

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetColor sets the RGBA color of the light.
	//
	// Parameters:
	//   - r, g, b, a: color components
	SetColor(r, g, b, a float32)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetDistance sets the point-light cutoff distance. Zero restores the
	// intensity-derived default.
	//
	// Parameters:
	//   - distance: the cutoff distance
	SetDistance(distance float32)

	// SetDecay sets the quadratic falloff coefficient.
	//
	// Parameters:
	//   - decay: the decay value
	SetDecay(decay float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetCastsShadows sets whether the light renders a shadow depth pass.
	//
	// Parameters:
	//   - castsShadows: true to enable shadow casting
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with defaults and any
// provided options applied. Directional lights default to a warm white
// (0.6, 0.6, 0.5) pointing straight down and cast shadows; point lights
// default to white with decay 1.
//
// Parameters:
//   - lightType: the kind of light to create (directional or point)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:  lightType,
		position:   [3]float32{0, 0, 0},
		direction:  [3]float32{0, -1, 0},
		color:      [4]float32{1, 1, 1, 1},
		intensity:  1.0,
		decay:      1.0,
		enabled:    true,
		shadowSize: DefaultShadowSize,
		shadowNear: DefaultShadowNear,
		shadowFar:  DefaultShadowFar,
	}
	if lightType == LightTypeDirectional {
		l.color = [4]float32{0.6, 0.6, 0.5, 1}
		l.castsShadows = true
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() [4]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Distance() float32 {
	if l.distance > 0 {
		return l.distance
	}
	decay := common.Coalesce(l.decay, 1)
	return float32(math.Sqrt(float64(l.intensity * 256 / decay)))
}

func (l *lightImpl) Decay() float32 {
	return l.decay
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows
}

func (l *lightImpl) ShadowFrustum() (size, near, far float32) {
	return l.shadowSize, l.shadowNear, l.shadowFar
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = common.Normalize3([3]float32{x, y, z})
}

func (l *lightImpl) SetColor(r, g, b, a float32) {
	l.color = [4]float32{r, g, b, a}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetDistance(distance float32) {
	l.distance = distance
}

func (l *lightImpl) SetDecay(decay float32) {
	l.decay = decay
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}
