package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader is built for.
type ShaderType int

const (
	// ShaderTypeCompute is a shader with a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is a shader with a @vertex entry point.
	ShaderTypeVertex

	// ShaderTypeFragment is a shader with a @fragment entry point.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeCompute:
		return "compute"
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// Visibility returns the wgpu stage flag for the shader type.
func (t ShaderType) Visibility() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	case ShaderTypeCompute:
		return wgpu.ShaderStageCompute
	default:
		return wgpu.ShaderStageNone
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	workGroupSize              [3]uint32
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a pre-processed WGSL program together with the metadata a host
// needs to build a pipeline for it: entry point, bind group layouts, vertex
// layouts and the resource declarations collected from annotations.
type Shader interface {
	// Key returns the shader's unique identifier.
	Key() string

	// Source returns the pre-processed WGSL source.
	Source() string

	// ShaderType returns the stage the shader was built for.
	ShaderType() ShaderType

	// EntryPoint returns the entry point of the shader's stage.
	EntryPoint() string

	// BindGroupLayoutDescriptor returns the layout of one bind group, or an
	// empty descriptor if the shader declares nothing in that group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the group's layout
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every declared group's layout.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: layouts keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the WGSL variable bound at (group, binding).
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index
	//
	// Returns:
	//   - string: the variable name, or "" if nothing is bound there
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName finds the binding index of a variable within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the WGSL variable name
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// BindGroupVarNames returns every bound variable keyed by group and binding.
	BindGroupVarNames() map[int]map[int]string

	// VertexLayouts returns the vertex buffer layouts of a vertex shader.
	// Other stages return an empty map.
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// WorkgroupSize returns the @workgroup_size of a compute shader and
	// [0, 0, 0] for other stages.
	WorkgroupSize() [3]uint32

	// Module returns the shader module descriptor to hand to the device.
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the group and provider annotations of the source.
	Declarations() []Annotation

	// Defines returns the define values the source was expanded with.
	Defines() map[string]uint32
}

var _ Shader = &shader{}

// NewShader reads and pre-processes a WGSL file. It panics when the path is
// empty or the file cannot be read or expanded; use NewShaderFromSource for
// sources that may be malformed.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader is built for
//   - sourcePath: the WGSL file to read
//   - opts: pre-processor options, such as defines
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, sourcePath string, opts ...PreProcessorBuilderOption) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s must have a source path", key))
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", sourcePath, err))
	}
	s, err := NewShaderFromSource(key, shaderType, string(data), opts...)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process shader source %q: %v", sourcePath, err))
	}
	return s
}

// NewShaderFromSource pre-processes WGSL source and extracts its pipeline
// metadata.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader is built for
//   - source: WGSL source containing annotations
//   - opts: pre-processor options, such as defines
//
// Returns:
//   - Shader: the parsed shader
//   - error: error if pre-processing fails or the source has no entry point
//     for shaderType
func NewShaderFromSource(key string, shaderType ShaderType, source string, opts ...PreProcessorBuilderOption) (Shader, error) {
	s := &shader{
		key:           key,
		shaderType:    shaderType,
		vertexLayouts: make(map[int][]wgpu.VertexBufferLayout),
		pp:            NewPreProcessor(opts...),
	}

	var err error
	s.source, err = s.pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	s.entryPoint = parseEntryPoint(s.source, shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %s: no %s entry point", key, shaderType)
	}

	s.module = &wgpu.ShaderModuleDescriptor{
		Label:          key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: s.source},
	}
	switch shaderType {
	case ShaderTypeVertex:
		s.vertexLayouts = parseVertexLayouts(s.source)
	case ShaderTypeCompute:
		s.workGroupSize = parseWorkgroupSize(s.source)
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(s.source, shaderType.Visibility())
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) BindGroupVarNames() map[int]map[int]string {
	return s.bindingVarNames
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workGroupSize
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

func (s *shader) Defines() map[string]uint32 {
	return s.pp.Defines()
}
