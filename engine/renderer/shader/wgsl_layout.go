package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// Layout is the host-shareable size and alignment of a WGSL type.
type Layout struct {
	Size  uint64
	Align uint64
}

// scalarLayouts holds the layout of every non-struct type the schemas use.
// Matrices are stored as arrays of column vectors, so a mat3x3 column is
// padded to 16 bytes.
var scalarLayouts = map[string]Layout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},
	"vec2<i32>": {8, 8},
	"vec3<i32>": {12, 16},
	"vec4<i32>": {16, 16},
	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec3<u32>": {12, 16},
	"vec3u":     {12, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	"mat2x2<f32>": {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat3x4<f32>": {48, 16},
	"mat4x3<f32>": {64, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},

	"atomic<u32>": {4, 4},
	"atomic<i32>": {4, 4},
}

// StructLayout computes the layout of the named struct in WGSL source using
// the uniform/storage alignment rules. Structs referenced by the named struct
// must be declared in the same source.
//
// Parameters:
//   - source: WGSL source containing the struct
//   - name: the struct name
//
// Returns:
//   - Layout: the struct's size and alignment
//   - error: error if the struct is missing or a field type cannot be resolved
func StructLayout(source, name string) (Layout, error) {
	structs := parseStructBlocks(stripComments(source))
	found := false
	for _, ps := range structs {
		if ps.name == name {
			found = true
			break
		}
	}
	if !found {
		return Layout{}, fmt.Errorf("struct %q not found", name)
	}

	layouts := computeStructLayouts(structs)
	l, ok := layouts[name]
	if !ok {
		return Layout{}, fmt.Errorf("struct %q has a field of unknown layout", name)
	}
	return l, nil
}

func alignUp(align, v uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// resolveLayout looks up a type among the scalar table and the structs
// resolved so far. A runtime-sized array resolves to one element stride.
func resolveLayout(typeName string, known map[string]Layout) (Layout, bool) {
	if l, ok := scalarLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return l, true
	}

	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return Layout{}, false
	}
	elemType, count, sized := strings.Cut(strings.TrimSuffix(inner, ">"), ",")
	elem, ok := resolveLayout(strings.TrimSpace(elemType), known)
	if !ok {
		return Layout{}, false
	}
	stride := alignUp(elem.Align, elem.Size)
	if !sized {
		return Layout{stride, elem.Align}, true
	}
	n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
	if err != nil {
		return Layout{}, false
	}
	return Layout{n * stride, elem.Align}, true
}

// structLayout lays out one struct. Builtin fields are not part of a buffer
// and are skipped.
func structLayout(ps parsedStruct, known map[string]Layout) (Layout, bool) {
	var offset uint64
	align := uint64(1)
	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		l, ok := resolveLayout(f.typeName, known)
		if !ok {
			return Layout{}, false
		}
		offset = alignUp(l.Align, offset) + l.Size
		align = max(align, l.Align)
	}
	return Layout{alignUp(align, offset), align}, true
}

// computeStructLayouts resolves every struct, repeating until no further
// struct can be resolved so that declaration order does not matter.
func computeStructLayouts(structs []parsedStruct) map[string]Layout {
	resolved := make(map[string]Layout, len(structs))
	pending := structs
	for len(pending) > 0 {
		var next []parsedStruct
		for _, ps := range pending {
			if l, ok := structLayout(ps, resolved); ok {
				resolved[ps.name] = l
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return resolved
}
