package model

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-pbr/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh holds indexed triangle geometry ready for upload to the geometry pass.
type Mesh struct {
	// Vertices are the mesh vertices in model space.
	Vertices []GPUVertex
	// Indices are the triangle-list indices into Vertices.
	Indices []uint32
}

// VertexData marshals every vertex into one contiguous vertex buffer.
//
// Returns:
//   - []byte: the vertex buffer contents
func (m *Mesh) VertexData() []byte {
	stride := (&GPUVertex{}).Size()
	buf := make([]byte, 0, len(m.Vertices)*stride)
	for i := range m.Vertices {
		buf = append(buf, m.Vertices[i].Marshal()...)
	}
	return buf
}

// StaticVertexData marshals the vertices without tangents for the shadow depth pass.
//
// Returns:
//   - []byte: the vertex buffer contents
func (m *Mesh) StaticVertexData() []byte {
	stride := (&GPUStaticVertex{}).Size()
	buf := make([]byte, 0, len(m.Vertices)*stride)
	for i := range m.Vertices {
		s := m.Vertices[i].Static()
		buf = append(buf, s.Marshal()...)
	}
	return buf
}

// IndexData marshals the indices as little-endian uint32 values.
//
// Returns:
//   - []byte: the index buffer contents
func (m *Mesh) IndexData() []byte {
	buf := make([]byte, len(m.Indices)*4)
	common.PutUint32s(buf, 0, m.Indices...)
	return buf
}

// BoundingRadius returns the largest distance from the model-space origin to
// any vertex.
//
// Returns:
//   - float32: the bounding sphere radius
func (m *Mesh) BoundingRadius() float32 {
	var maxDistSq float32
	for _, v := range m.Vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}

// ComputeTangents derives per-vertex tangents from positions, normals and UVs.
// Triangle tangents are accumulated per vertex, Gram-Schmidt orthogonalized
// against the normal, and the bitangent handedness is stored in w. Vertices
// without usable UVs get an arbitrary tangent perpendicular to the normal.
//
// Returns:
//   - error: error if the index count is not a multiple of 3 or an index is out of range
func (m *Mesh) ComputeTangents() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}

	tan := make([]mgl32.Vec3, len(m.Vertices))
	bitan := make([]mgl32.Vec3, len(m.Vertices))

	for i := 0; i < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		n := uint32(len(m.Vertices))
		if i0 >= n || i1 >= n || i2 >= n {
			return fmt.Errorf("triangle %d references vertex out of range (%d vertices)", i/3, n)
		}
		v0, v1, v2 := &m.Vertices[i0], &m.Vertices[i1], &m.Vertices[i2]

		e1 := mgl32.Vec3(v1.Position).Sub(v0.Position)
		e2 := mgl32.Vec3(v2.Position).Sub(v0.Position)
		du1, dv1 := v1.TexCoord[0]-v0.TexCoord[0], v1.TexCoord[1]-v0.TexCoord[1]
		du2, dv2 := v2.TexCoord[0]-v0.TexCoord[0], v2.TexCoord[1]-v0.TexCoord[1]

		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		r := 1 / det
		t := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(r)
		b := e2.Mul(du1).Sub(e1.Mul(du2)).Mul(r)

		for _, idx := range []uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			bitan[idx] = bitan[idx].Add(b)
		}
	}

	for i := range m.Vertices {
		n := mgl32.Vec3(m.Vertices[i].Normal)
		t := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if t.LenSqr() < 1e-12 {
			t = orthogonal(n)
		}
		t = t.Normalize()

		w := float32(1)
		if n.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		m.Vertices[i].Tangent = [4]float32{t[0], t[1], t[2], w}
	}
	return nil
}

// orthogonal returns some vector perpendicular to n.
func orthogonal(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if math.Abs(float64(n.X())) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return n.Cross(axis)
}
