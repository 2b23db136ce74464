package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-pbr/engine/renderer/shader"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// List every program with its entry points and resource bindings.
func listShaders(ctx *cli.Context) error {
	lightingMode, gbufferMode, err := variantFromFlags(ctx)
	if err != nil {
		return err
	}

	lib := shader.NewLibrary()
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Program", "Stage", "Entry", "Bindings"})
	for _, p := range lib.Programs() {
		s, err := lib.Load(p.Name, shader.WithLightingMode(lightingMode), shader.WithGBufferMode(gbufferMode))
		if err != nil {
			return err
		}
		r, err := shader.Reflect(s.Source())
		if err != nil {
			return fmt.Errorf("program %s: %w", p.Name, err)
		}

		bindings := make([]string, 0, len(r.Bindings))
		for _, b := range r.Bindings {
			bindings = append(bindings, fmt.Sprintf("%d.%d %s", b.Group, b.Binding, b.Name))
		}
		if len(bindings) == 0 {
			bindings = append(bindings, "-")
		}
		table.Append([]string{p.Name, p.Stage.String(), s.EntryPoint(), strings.Join(bindings, ", ")})
	}

	fmt.Fprintf(ctx.App.Writer, "lighting mode %s, G-buffer mode %s\n", lightingMode, gbufferMode)
	table.Render()
	return nil
}

// Compile the named programs, or every program, to SPIR-V.
func compileShaders(ctx *cli.Context) error {
	lightingMode, gbufferMode, err := variantFromFlags(ctx)
	if err != nil {
		return err
	}

	outDir := ctx.String("out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	lib := shader.NewLibrary()
	names := []string(ctx.Args())
	if len(names) == 0 {
		for _, p := range lib.Programs() {
			names = append(names, p.Name)
		}
	}
	for _, name := range names {
		s, err := lib.Load(name, shader.WithLightingMode(lightingMode), shader.WithGBufferMode(gbufferMode))
		if err != nil {
			return err
		}
		spv, err := shader.Compile(s.Source())
		if err != nil {
			return fmt.Errorf("program %s: %w", name, err)
		}

		path := filepath.Join(outDir, name+".spv")
		if err := os.WriteFile(path, spv, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info("compiled program",
			zap.String("program", name),
			zap.String("path", path),
			zap.Int("bytes", len(spv)),
		)
	}
	return nil
}
