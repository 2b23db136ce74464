package shader

import (
	"fmt"
	"sort"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// Reflection is what the WGSL front end reports about a program.
type Reflection struct {
	EntryPoints []EntryPoint
	Bindings    []Binding
}

// Binding is one resource variable of a program.
type Binding struct {
	Group   uint32
	Binding uint32
	Name    string
}

var nagaStages = map[ir.ShaderStage]ShaderType{
	ir.StageVertex:   ShaderTypeVertex,
	ir.StageFragment: ShaderTypeFragment,
	ir.StageCompute:  ShaderTypeCompute,
}

// Compile translates pre-processed WGSL to SPIR-V, validating the module on
// the way.
//
// Parameters:
//   - source: pre-processed WGSL source
//
// Returns:
//   - []byte: the SPIR-V binary, little-endian words
//   - error: error if the source fails to parse, lower, validate or generate
func Compile(source string) ([]byte, error) {
	spv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	return spv, nil
}

// Reflect runs the WGSL front end (parse and lower) without generating code
// and reports the program's entry points and resource bindings. Bindings are
// sorted by group then binding.
//
// Parameters:
//   - source: pre-processed WGSL source
//
// Returns:
//   - Reflection: the program's entry points and bindings
//   - error: error if the source fails to parse or lower
func Reflect(source string) (Reflection, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return Reflection{}, fmt.Errorf("failed to parse shader: %w", err)
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return Reflection{}, fmt.Errorf("failed to lower shader: %w", err)
	}

	var r Reflection
	for _, ep := range module.EntryPoints {
		stage, ok := nagaStages[ep.Stage]
		if !ok {
			continue
		}
		r.EntryPoints = append(r.EntryPoints, EntryPoint{Stage: stage, Name: ep.Name})
	}
	for _, gv := range module.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		r.Bindings = append(r.Bindings, Binding{Group: gv.Binding.Group, Binding: gv.Binding.Binding, Name: gv.Name})
	}
	sort.Slice(r.Bindings, func(i, j int) bool {
		if r.Bindings[i].Group != r.Bindings[j].Group {
			return r.Bindings[i].Group < r.Bindings[j].Group
		}
		return r.Bindings[i].Binding < r.Bindings[j].Binding
	})
	return r, nil
}
