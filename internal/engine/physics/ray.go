// Package physics provides the collision side of the terrain: triangle-mesh shapes
// derived from render meshes, rigid bodies, ray queries and box overlap tests.
package physics

import (
	gomath "math"

	"github.com/Faultbox/islandrun/pkg/math"
)

// Unbounded is the range of a ray with no distance limit.
var Unbounded = float32(gomath.Inf(1))

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// NewRay creates a ray, normalizing the direction.
func NewRay(origin, direction math.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Hit describes the closest intersection of a ray query.
type Hit struct {
	Distance float32
	Point    math.Vec3 // World space
	Normal   math.Vec3 // World space face normal
	Local    math.Vec3 // Face normal in the body's own frame
	Body     BodyID
	Triangle int
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// NewAABB creates an AABB from two corners, handling swapped components.
func NewAABB(a, b math.Vec3) AABB {
	box := AABB{Min: a, Max: b}
	if box.Min.X > box.Max.X {
		box.Min.X, box.Max.X = box.Max.X, box.Min.X
	}
	if box.Min.Y > box.Max.Y {
		box.Min.Y, box.Max.Y = box.Max.Y, box.Min.Y
	}
	if box.Min.Z > box.Max.Z {
		box.Min.Z, box.Max.Z = box.Max.Z, box.Min.Z
	}
	return box
}

// CenteredAABB creates a box around center extending half in each direction.
func CenteredAABB(center, half math.Vec3) AABB {
	return NewAABB(center.Sub(half), center.Add(half))
}

// Overlaps reports whether two boxes intersect. Touching faces count as overlap.
func (b AABB) Overlaps(other AABB) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// Shrink returns the box pulled in by inset on every side. The box never inverts.
func (b AABB) Shrink(inset float32) AABB {
	c := b.Min.Add(b.Max).Scale(0.5)
	half := b.Max.Sub(b.Min).Scale(0.5)
	half = math.Vec3{
		X: gomax(half.X-inset, 0),
		Y: gomax(half.Y-inset, 0),
		Z: gomax(half.Z-inset, 0),
	}
	return CenteredAABB(c, half)
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns 0.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	o := r.Origin.Array()
	d := r.Direction.Array()
	lo := box.Min.Array()
	hi := box.Max.Array()

	for axis := 0; axis < 3; axis++ {
		if d[axis] != 0 {
			t1 := (lo[axis] - o[axis]) / d[axis]
			t2 := (hi[axis] - o[axis]) / d[axis]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
		} else if o[axis] < lo[axis] || o[axis] > hi[axis] {
			return 0, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}

// IntersectTriangle runs a two-sided Möller–Trumbore test. Returns the distance along
// the ray and whether the triangle was hit in front of the origin.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (float32, bool) {
	const epsilon = 1e-7

	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -epsilon && det < epsilon {
		return 0, false // Parallel to the triangle plane
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

func gomax(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
