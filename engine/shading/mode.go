package shading

import "fmt"

// LightingMode selects the lighting model of the resolve. The value is shared
// with the WGSL resolve program through the lighting_mode define.
type LightingMode uint32

const (
	// LightingModePBR is Cook-Torrance GGX specular plus Lambert diffuse.
	LightingModePBR LightingMode = iota

	// LightingModeBlinnPhong is Lambert diffuse plus a Blinn-Phong lobe whose
	// exponent is derived from the surface roughness.
	LightingModeBlinnPhong

	// LightingModeUnlit outputs base color plus emissive with no lights.
	LightingModeUnlit
)

// LightingModes lists every mode in value order.
var LightingModes = []LightingMode{LightingModePBR, LightingModeBlinnPhong, LightingModeUnlit}

func (m LightingMode) String() string {
	switch m {
	case LightingModePBR:
		return "pbr"
	case LightingModeBlinnPhong:
		return "blinn-phong"
	case LightingModeUnlit:
		return "unlit"
	default:
		return fmt.Sprintf("LightingMode(%d)", uint32(m))
	}
}

// ParseLightingMode resolves a mode from its String form.
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - LightingMode: the parsed mode
//   - error: error if the name is unknown
func ParseLightingMode(s string) (LightingMode, error) {
	for _, m := range LightingModes {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown lighting mode %q", s)
}
