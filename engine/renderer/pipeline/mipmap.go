package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-pbr/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// NewMipmapPipeline builds the blit pipeline that fills a texture's mip chain
// one level at a time. The host draws one fullscreen triangle per level with
// the previous level's view bound at group 0 binding 0 and a sampler from
// common.MipSampler at binding 1. Mip generation is format specific, so the
// pipeline is built per texture format rather than as part of the deferred set.
//
// Parameters:
//   - lib: the program library, or nil for the embedded programs
//   - format: the format of the texture whose levels are generated
//
// Returns:
//   - Pipeline: the mipmap pipeline
//   - error: error if a program fails to load
func NewMipmapPipeline(lib shader.Library, format wgpu.TextureFormat) (Pipeline, error) {
	if lib == nil {
		lib = shader.NewLibrary()
	}
	vs, err := lib.Load(shader.ProgramFullscreen)
	if err != nil {
		return nil, fmt.Errorf("failed to load mipmap vertex program: %w", err)
	}
	fs, err := lib.Load(shader.ProgramBlit)
	if err != nil {
		return nil, fmt.Errorf("failed to load mipmap fragment program: %w", err)
	}

	return NewPipeline(fmt.Sprintf("mipmap[%v]", format), StageMipmap,
		WithVertexShader(vs),
		WithFragmentShader(fs),
		WithColorFormats(format),
		WithDepthTestEnabled(false),
		WithDepthWriteEnabled(false),
	), nil
}
