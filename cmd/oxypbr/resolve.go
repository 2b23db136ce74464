package main

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/light"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// scenario is a white surface at the origin facing +z, lit head-on by a
// white directional light and viewed from +z.
type scenario struct {
	surface gbuffer.Surface
	world   mgl32.Vec3
	eye     mgl32.Vec3
	sun     light.Light
}

func newScenario(intensity, metallic, roughness float32) scenario {
	return scenario{
		surface: gbuffer.Surface{
			BaseColor:           mgl32.Vec3{1, 1, 1},
			Normal:              mgl32.Vec3{0, 0, 1},
			Metallic:            metallic,
			PerceptualRoughness: roughness,
			Reflectance:         0.5,
		},
		eye: mgl32.Vec3{0, 0, 5},
		sun: light.NewLight(light.LightTypeDirectional,
			light.WithDirection(0, 0, -1),
			light.WithColor(1, 1, 1, 1),
			light.WithIntensity(intensity),
			light.WithCastsShadows(false),
		),
	}
}

// Store the surface the way the geometry pass would and read it back.
func (s scenario) roundTrip(mode gbuffer.Mode) (gbuffer.Surface, mgl32.Vec3) {
	if mode == gbuffer.ModePacked {
		// packed targets carry no position; the resolve reconstructs it from depth
		return gbuffer.Unpack(gbuffer.Pack(s.surface)), s.world
	}
	return gbuffer.DecodeFloat(gbuffer.EncodeFloat(s.surface, s.world))
}

// Evaluate the scenario through the reference resolve and print the result.
func resolveScenario(ctx *cli.Context) error {
	lightingMode, gbufferMode, err := variantFromFlags(ctx)
	if err != nil {
		return err
	}

	sc := newScenario(float32(ctx.Float64("intensity")), float32(ctx.Float64("metallic")), float32(ctx.Float64("roughness")))
	surface, world := sc.roundTrip(gbufferMode)
	r := shading.NewResolver(
		shading.WithLightingMode(lightingMode),
		shading.WithDirectionalLight(sc.sun),
	)
	radiance := r.Resolve(surface, world, sc.eye)
	mapped := shading.ToneMap(radiance, float32(ctx.Float64("exposure")))
	logger.Debug("resolved scenario",
		zap.Stringer("lighting_mode", lightingMode),
		zap.Stringer("gbuffer_mode", gbufferMode),
		zap.Float32("roughness", surface.PerceptualRoughness),
	)

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Value", "R", "G", "B"})
	table.Append(rgbRow("radiance", radiance))
	table.Append(rgbRow("tone mapped", mapped))
	fmt.Fprintf(ctx.App.Writer, "lighting mode %s, G-buffer mode %s\n", lightingMode, gbufferMode)
	table.Render()
	return nil
}

func rgbRow(name string, c mgl32.Vec4) []string {
	return []string{name, fmt.Sprintf("%.6f", c[0]), fmt.Sprintf("%.6f", c[1]), fmt.Sprintf("%.6f", c[2])}
}
