package main

import (
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

var variantFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "lighting-mode",
		Value: "pbr",
		Usage: "lighting model: pbr, blinn-phong or unlit",
	},
	cli.StringFlag{
		Name:  "gbuffer-mode",
		Value: "float",
		Usage: "G-buffer storage: float or packed",
	},
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "oxypbr"
	app.Usage = "inspect, compile and bake the deferred PBR shading core"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.IntFlag{
			Name:   "workers",
			EnvVar: "OXYPBR_WORKERS",
			Usage:  "bake worker pool size (0 uses one worker per CPU)",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		setupLogging(ctx)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:   "shaders",
			Usage:  "list the shader programs with their entry points and bindings",
			Flags:  variantFlags,
			Action: listShaders,
		},
		{
			Name:  "compile",
			Usage: "compile shader programs to SPIR-V",
			Description: `
Pre-process every embedded program with the selected lighting and G-buffer
modes, validate it and write <program>.spv into the output directory. With
no arguments every program is compiled.`,
			ArgsUsage: "[program ...]",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "spv",
					Usage: "output directory",
				},
			}, variantFlags...),
			Action: compileShaders,
		},
		{
			Name:  "bake-dfg",
			Usage: "bake the split-sum DFG lookup table",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "size",
					Value: 128,
					Usage: "table width and height",
				},
				cli.IntFlag{
					Name:  "samples",
					Value: 512,
					Usage: "GGX samples per texel",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "dfg_lut.png",
					Usage: "image filename for the table",
				},
			},
			Action: bakeDFG,
		},
		{
			Name:  "prefilter",
			Usage: "bake the prefiltered mip chain of an environment cubemap",
			Description: `
Load six face images, convolve them with the GGX lobe at increasing roughness
and write level<L>_<face>.png for every level into the output directory.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "faces",
					Usage: "comma separated face images in px,nx,py,ny,pz,nz order",
				},
				cli.IntFlag{
					Name:  "levels",
					Value: 5,
					Usage: "number of mip levels",
				},
				cli.IntFlag{
					Name:  "samples",
					Value: 256,
					Usage: "GGX samples per texel",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "prefiltered",
					Usage: "output directory",
				},
			},
			Action: prefilterCubemap,
		},
		{
			Name:  "mipmap",
			Usage: "generate the mip chain of an image",
			Description: `
Downsample the image level by level the way the blit program does and write
level<L>.png for every level into the output directory.`,
			ArgsUsage: "image",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "mips",
					Usage: "output directory",
				},
			},
			Action: generateMips,
		},
		{
			Name:  "resolve",
			Usage: "evaluate the reference resolve for a lit surface",
			Description: `
Store a surface facing a directional light in the selected G-buffer mode, read
it back and print the resolved radiance.`,
			Flags: append([]cli.Flag{
				cli.Float64Flag{
					Name:  "intensity",
					Value: 1,
					Usage: "directional light intensity",
				},
				cli.Float64Flag{
					Name:  "metallic",
					Value: 0,
					Usage: "surface metallic",
				},
				cli.Float64Flag{
					Name:  "roughness",
					Value: 0.5,
					Usage: "surface perceptual roughness",
				},
				cli.Float64Flag{
					Name:  "exposure",
					Value: 1,
					Usage: "exposure of the tone mapped value",
				},
			}, variantFlags...),
			Action: resolveScenario,
		},
	}
	return app
}
