package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-pbr/common"
	"github.com/Carmen-Shannon/oxy-pbr/engine/ibl"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func newBaker(ctx *cli.Context) ibl.Baker {
	var opts []ibl.BakerBuilderOption
	if n := ctx.GlobalInt("workers"); n > 0 {
		opts = append(opts, ibl.WithWorkers(n))
	}
	return ibl.NewBaker(opts...)
}

// Bake the DFG lookup table and write it as a PNG.
func bakeDFG(ctx *cli.Context) error {
	size, samples := ctx.Int("size"), ctx.Int("samples")
	if samples < 1 {
		return ibl.ErrInvalidSampleCount
	}

	bctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	b := newBaker(ctx)
	defer b.Close()

	start := time.Now()
	lut, err := b.BakeDFG(bctx, size, uint32(samples))
	if err != nil {
		return err
	}
	tex := lut.Texture()
	if err := writePNG(ctx.String("out"), &tex); err != nil {
		return err
	}
	logger.Info("baked DFG table",
		zap.Int("size", size),
		zap.Int("samples", samples),
		zap.Int("workers", b.Workers()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Prefilter a cubemap and write every level face as a PNG.
func prefilterCubemap(ctx *cli.Context) error {
	faces := strings.Split(ctx.String("faces"), ",")
	if len(faces) != 6 {
		return fmt.Errorf("%w: --faces needs 6 images, got %d", ibl.ErrInvalidCubemap, len(faces))
	}
	var paths [6]string
	for i, f := range faces {
		paths[i] = strings.TrimSpace(f)
	}
	samples := ctx.Int("samples")
	if samples < 1 {
		return ibl.ErrInvalidSampleCount
	}

	src, err := ibl.LoadCubemap(paths)
	if err != nil {
		return err
	}

	bctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	b := newBaker(ctx)
	defer b.Close()

	start := time.Now()
	chain, err := b.BakePrefiltered(bctx, src, ctx.Int("levels"), uint32(samples))
	if err != nil {
		return err
	}

	outDir := ctx.String("out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for level, cube := range chain.Levels {
		for f := ibl.FacePositiveX; f <= ibl.FaceNegativeZ; f++ {
			tex := cube.Texture(f)
			path := filepath.Join(outDir, fmt.Sprintf("level%d_%s.png", level, f))
			if err := writePNG(path, &tex); err != nil {
				return err
			}
		}
	}
	logger.Info("prefiltered cubemap",
		zap.Int("size", src.Size),
		zap.Int("levels", len(chain.Levels)),
		zap.Int("samples", samples),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Generate the mip chain of one image and write every level as a PNG.
func generateMips(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("mipmap needs exactly one image, got %d", ctx.NArg())
	}
	src, err := common.LoadTexture(ctx.Args().First())
	if err != nil {
		return err
	}

	outDir := ctx.String("out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	levels := src.GenerateMips()
	for i := range levels {
		path := filepath.Join(outDir, fmt.Sprintf("level%d.png", i))
		if err := writePNG(path, &levels[i]); err != nil {
			return err
		}
	}
	logger.Info("generated mip chain",
		zap.Uint32("width", src.Width),
		zap.Uint32("height", src.Height),
		zap.Int("levels", len(levels)),
	)
	return nil
}

func writePNG(path string, tex *common.TextureStagingData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := tex.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
