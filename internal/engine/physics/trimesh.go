package physics

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/islandrun/pkg/math"
)

// bucketDepth is the Z extent of one broad-phase bucket in local units.
const bucketDepth = 8

// TriMesh is a static triangle-mesh collision shape. It keeps its own copy of the
// vertex and index buffers it was built from.
type TriMesh struct {
	Vertices []math.Vec3
	Indices  []uint32
	Bounds   AABB

	// Triangles bucketed by Z so rays along the run only test nearby faces.
	buckets [][]int32
	minZ    float32
}

// NewTriMesh builds a shape from a mesh's vertex positions and index buffer.
func NewTriMesh(vertices []math.Vec3, indices []uint32) (*TriMesh, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("trimesh: no vertices")
	}
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("trimesh: index count %d is not a positive multiple of 3", len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("trimesh: index %d out of range (%d vertices)", idx, len(vertices))
		}
	}

	s := &TriMesh{
		Vertices: append([]math.Vec3(nil), vertices...),
		Indices:  append([]uint32(nil), indices...),
	}
	lo, hi := s.Vertices[0], s.Vertices[0]
	for _, v := range s.Vertices[1:] {
		lo = math.Vec3{X: min(lo.X, v.X), Y: min(lo.Y, v.Y), Z: min(lo.Z, v.Z)}
		hi = math.Vec3{X: max(hi.X, v.X), Y: max(hi.Y, v.Y), Z: max(hi.Z, v.Z)}
	}
	s.Bounds = AABB{Min: lo, Max: hi}
	s.buildBuckets()
	return s, nil
}

// TriangleCount returns the number of triangles in the shape.
func (s *TriMesh) TriangleCount() int {
	return len(s.Indices) / 3
}

// Triangle returns the corners of triangle i.
func (s *TriMesh) Triangle(i int) (a, b, c math.Vec3) {
	return s.Vertices[s.Indices[i*3]], s.Vertices[s.Indices[i*3+1]], s.Vertices[s.Indices[i*3+2]]
}

// Normal returns the unit face normal of triangle i.
func (s *TriMesh) Normal(i int) math.Vec3 {
	a, b, c := s.Triangle(i)
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

func (s *TriMesh) buildBuckets() {
	s.minZ = s.Bounds.Min.Z
	n := int((s.Bounds.Max.Z-s.minZ)/bucketDepth) + 1
	s.buckets = make([][]int32, n)

	for i := 0; i < s.TriangleCount(); i++ {
		a, b, c := s.Triangle(i)
		lo := s.bucket(min(a.Z, b.Z, c.Z))
		hi := s.bucket(max(a.Z, b.Z, c.Z))
		for k := lo; k <= hi; k++ {
			s.buckets[k] = append(s.buckets[k], int32(i))
		}
	}
}

func (s *TriMesh) bucket(z float32) int {
	k := int((z - s.minZ) / bucketDepth)
	if k < 0 {
		return 0
	}
	if k >= len(s.buckets) {
		return len(s.buckets) - 1
	}
	return k
}

// RayCast intersects a ray given in the shape's local frame. Faces are two-sided so a
// ray from below the surface still reports a hit.
func (s *TriMesh) RayCast(r Ray, maxDist float32) (Hit, bool) {
	lo, hi := 0, len(s.buckets)-1
	switch {
	case r.Direction.Z == 0:
		if r.Origin.Z < s.Bounds.Min.Z || r.Origin.Z > s.Bounds.Max.Z {
			return Hit{}, false
		}
		lo = s.bucket(r.Origin.Z)
		hi = lo
	case !gomath.IsInf(float64(maxDist), 1):
		z0 := r.Origin.Z
		z1 := r.At(maxDist).Z
		lo, hi = s.bucket(min(z0, z1)), s.bucket(max(z0, z1))
	}

	best := Hit{Distance: maxDist, Triangle: -1}
	for k := lo; k <= hi; k++ {
		for _, tri := range s.buckets[k] {
			a, b, c := s.Triangle(int(tri))
			t, ok := r.IntersectTriangle(a, b, c)
			if !ok || t > best.Distance {
				continue
			}
			if t == best.Distance && best.Triangle >= 0 {
				continue
			}
			best.Distance = t
			best.Triangle = int(tri)
		}
	}

	if best.Triangle < 0 {
		return Hit{}, false
	}
	best.Point = r.At(best.Distance)
	best.Local = s.Normal(best.Triangle)
	best.Normal = best.Local
	return best, true
}
