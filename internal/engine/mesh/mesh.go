// Package mesh provides CPU-side triangle meshes: planar grid construction,
// per-vertex position access and normal recomputation.
package mesh

import (
	"fmt"

	"github.com/Faultbox/islandrun/pkg/math"
)

// Vertex is a mesh vertex with all attributes uploaded to the GPU.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Mesh holds vertex and index buffers ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// NewPlane builds a grid lying in the XZ plane. X spans [-width/2, width/2] and Z runs
// from 0 to -length, so row 0 is the leading edge. All normals face +Y.
func NewPlane(width, length float32, widthSegments, lengthSegments int) (*Mesh, error) {
	if width <= 0 || length <= 0 {
		return nil, fmt.Errorf("plane size must be positive, got %vx%v", width, length)
	}
	if widthSegments < 1 || lengthSegments < 1 {
		return nil, fmt.Errorf("plane needs at least one segment per axis, got %dx%d", widthSegments, lengthSegments)
	}

	cols := widthSegments + 1
	rows := lengthSegments + 1
	m := &Mesh{
		Vertices: make([]Vertex, 0, cols*rows),
		Indices:  make([]uint32, 0, widthSegments*lengthSegments*6),
	}

	for iz := 0; iz < rows; iz++ {
		v := float32(iz) / float32(lengthSegments)
		for ix := 0; ix < cols; ix++ {
			u := float32(ix) / float32(widthSegments)
			m.Vertices = append(m.Vertices, Vertex{
				Position: [3]float32{-width/2 + width*u, 0, -length * v},
				Normal:   [3]float32{0, 1, 0},
				TexCoord: [2]float32{u, v},
			})
		}
	}

	for iz := 0; iz < lengthSegments; iz++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iz*cols + ix)
			b := a + 1
			c := a + uint32(cols)
			d := c + 1
			// Counter-clockwise seen from above
			m.Indices = append(m.Indices, a, b, c, b, d, c)
		}
	}

	m.ComputeBounds()
	return m, nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of indexed triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Position returns the local position of vertex i.
func (m *Mesh) Position(i int) math.Vec3 {
	return math.FromArray(m.Vertices[i].Position)
}

// SetPosition overwrites the local position of vertex i.
// Call ComputeNormals and ComputeBounds after a batch of edits.
func (m *Mesh) SetPosition(i int, p math.Vec3) {
	m.Vertices[i].Position = p.Array()
}

// Positions returns a copy of all vertex positions.
func (m *Mesh) Positions() []math.Vec3 {
	out := make([]math.Vec3, len(m.Vertices))
	for i := range m.Vertices {
		out[i] = math.FromArray(m.Vertices[i].Position)
	}
	return out
}

// ComputeNormals rebuilds vertex normals by accumulating the face normals of every
// triangle sharing the vertex. Larger faces contribute proportionally more.
func (m *Mesh) ComputeNormals() {
	sums := make([]math.Vec3, len(m.Vertices))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		p0 := m.Position(int(i0))
		p1 := m.Position(int(i1))
		p2 := m.Position(int(i2))
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		sums[i0] = sums[i0].Add(n)
		sums[i1] = sums[i1].Add(n)
		sums[i2] = sums[i2].Add(n)
	}

	for i := range m.Vertices {
		n := sums[i].Normalize()
		if n == (math.Vec3{}) {
			n = math.Up
		}
		m.Vertices[i].Normal = n.Array()
	}
}

// ComputeBounds recalculates the bounding box from the vertex positions.
func (m *Mesh) ComputeBounds() {
	b := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	for i := range m.Vertices {
		updateBounds(&b, m.Vertices[i].Position)
	}
	m.Bounds = b
}

func updateBounds(b *Bounds, p [3]float32) {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < b.Min[axis] {
			b.Min[axis] = p[axis]
		}
		if p[axis] > b.Max[axis] {
			b.Max[axis] = p[axis]
		}
	}
}

// NewCube builds an axis-aligned cube of the given edge length centred on the
// origin. Each face has its own four vertices so normals stay flat.
func NewCube(size float32) *Mesh {
	h := size / 2
	faces := []struct{ n, u, v math.Vec3 }{
		{math.Vec3{X: 1}, math.Vec3{Y: 1}, math.Vec3{Z: 1}},
		{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Y: 1}, math.Vec3{Z: 1}, math.Vec3{X: 1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
		{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: -1}, math.Vec3{Y: 1}, math.Vec3{X: 1}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	m := &Mesh{
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for _, c := range corners {
			p := f.n.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1])).Scale(h)
			m.Vertices = append(m.Vertices, Vertex{
				Position: p.Array(),
				Normal:   f.n.Array(),
				TexCoord: [2]float32{(c[0] + 1) / 2, (c[1] + 1) / 2},
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	m.ComputeBounds()
	return m
}
