package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/Carmen-Shannon/oxy-pbr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
)

//go:embed assets/*.wgsl
var programFS embed.FS

// ErrUnknownProgram is returned when a program name is not in the library.
var ErrUnknownProgram = errors.New("unknown shader program")

// Program names of the embedded deferred pipeline.
const (
	ProgramGeometry        = "geometry"
	ProgramGeometryStatic  = "geometry_static"
	ProgramGBufferWrite    = "gbuffer_write"
	ProgramShadowDepth     = "shadow_depth"
	ProgramSkyboxCube      = "skybox_cube"
	ProgramSkybox          = "skybox"
	ProgramFullscreen      = "fullscreen"
	ProgramLightingResolve = "lighting_resolve"
	ProgramCubemap         = "cubemap"
	ProgramPrefilter       = "prefilter"
	ProgramPostInvert      = "post_invert"
	ProgramPostTonemap     = "post_tonemap"
	ProgramBlit            = "blit"
)

// Program is one shader source of the library and the stage it is built for.
type Program struct {
	Name  string
	Stage ShaderType
}

// Programs lists every embedded program in pipeline order.
var Programs = []Program{
	{Name: ProgramGeometry, Stage: ShaderTypeVertex},
	{Name: ProgramGeometryStatic, Stage: ShaderTypeVertex},
	{Name: ProgramGBufferWrite, Stage: ShaderTypeFragment},
	{Name: ProgramShadowDepth, Stage: ShaderTypeVertex},
	{Name: ProgramSkyboxCube, Stage: ShaderTypeVertex},
	{Name: ProgramSkybox, Stage: ShaderTypeFragment},
	{Name: ProgramFullscreen, Stage: ShaderTypeVertex},
	{Name: ProgramLightingResolve, Stage: ShaderTypeFragment},
	{Name: ProgramCubemap, Stage: ShaderTypeVertex},
	{Name: ProgramPrefilter, Stage: ShaderTypeFragment},
	{Name: ProgramPostInvert, Stage: ShaderTypeFragment},
	{Name: ProgramPostTonemap, Stage: ShaderTypeFragment},
	{Name: ProgramBlit, Stage: ShaderTypeFragment},
}

// library is the implementation of the Library interface.
type library struct {
	fsys     fs.FS
	defaults []PreProcessorBuilderOption
}

// Library loads the deferred pipeline's WGSL programs. Programs are embedded
// in the binary; a directory of overrides can be supplied with WithSourceFS.
type Library interface {
	// Programs returns the programs the library can load.
	Programs() []Program

	// RawSource returns a program's source before pre-processing.
	//
	// Parameters:
	//   - name: the program name
	//
	// Returns:
	//   - string: the annotated WGSL source
	//   - error: ErrUnknownProgram, or a wrapped read error
	RawSource(name string) (string, error)

	// Load pre-processes a program with the library's default defines
	// (PBR lighting, float G-buffer) overridden by opts.
	//
	// Parameters:
	//   - name: the program name
	//   - opts: pre-processor options, applied after the defaults
	//
	// Returns:
	//   - Shader: the loaded shader
	//   - error: ErrUnknownProgram, a wrapped read error, or a pre-processing error
	Load(name string, opts ...PreProcessorBuilderOption) (Shader, error)
}

var _ Library = &library{}

// NewLibrary creates a Library reading the embedded programs and applies the
// provided options.
//
// Parameters:
//   - opts: variadic list of LibraryBuilderOption functions
//
// Returns:
//   - Library: the configured library
func NewLibrary(opts ...LibraryBuilderOption) Library {
	sub, _ := fs.Sub(programFS, "assets")
	l := &library{
		fsys: sub,
		defaults: []PreProcessorBuilderOption{
			WithLightingMode(shading.LightingModePBR),
			WithGBufferMode(gbuffer.ModeFloat),
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *library) Programs() []Program {
	return Programs
}

func (l *library) RawSource(name string) (string, error) {
	if _, ok := lookupProgram(name); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProgram, name)
	}
	data, err := fs.ReadFile(l.fsys, name+".wgsl")
	if err != nil {
		return "", fmt.Errorf("failed to read program %q: %w", name, err)
	}
	return string(data), nil
}

func (l *library) Load(name string, opts ...PreProcessorBuilderOption) (Shader, error) {
	p, ok := lookupProgram(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, name)
	}
	src, err := l.RawSource(name)
	if err != nil {
		return nil, err
	}
	all := append(append([]PreProcessorBuilderOption{}, l.defaults...), opts...)
	return NewShaderFromSource(name, p.Stage, src, all...)
}

func lookupProgram(name string) (Program, bool) {
	for _, p := range Programs {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}
