package main

import (
	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
	"github.com/Carmen-Shannon/oxy-pbr/log"
	"github.com/urfave/cli"
)

var logger = log.New("oxypbr")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

// Parse the lighting and G-buffer mode flags shared by several commands.
func variantFromFlags(ctx *cli.Context) (shading.LightingMode, gbuffer.Mode, error) {
	lightingMode, err := shading.ParseLightingMode(ctx.String("lighting-mode"))
	if err != nil {
		return 0, 0, err
	}
	gbufferMode, err := gbuffer.ParseMode(ctx.String("gbuffer-mode"))
	if err != nil {
		return 0, 0, err
	}
	return lightingMode, gbufferMode, nil
}
