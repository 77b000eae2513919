package physics

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/islandrun/internal/engine/mesh"
	"github.com/Faultbox/islandrun/pkg/math"
)

func flatShape(t *testing.T) *TriMesh {
	t.Helper()
	m, err := mesh.NewPlane(20, 100, 4, 20)
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}
	s, err := NewTriMesh(m.Positions(), m.Indices)
	if err != nil {
		t.Fatalf("NewTriMesh: %v", err)
	}
	return s
}

func TestNewTriMeshPreservesTopology(t *testing.T) {
	m, err := mesh.NewPlane(20, 100, 4, 20)
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}
	s, err := NewTriMesh(m.Positions(), m.Indices)
	if err != nil {
		t.Fatalf("NewTriMesh: %v", err)
	}

	if s.TriangleCount() != m.TriangleCount() {
		t.Errorf("triangle count = %d, mesh has %d", s.TriangleCount(), m.TriangleCount())
	}
	if len(s.Vertices) != m.VertexCount() {
		t.Errorf("vertex count = %d, mesh has %d", len(s.Vertices), m.VertexCount())
	}
}

func TestNewTriMeshRejectsBadIndices(t *testing.T) {
	verts := []math.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}}
	if _, err := NewTriMesh(verts, []uint32{0, 1}); err == nil {
		t.Error("expected error for partial triangle")
	}
	if _, err := NewTriMesh(verts, []uint32{0, 1, 7}); err == nil {
		t.Error("expected error for out of range index")
	}
	if _, err := NewTriMesh(nil, []uint32{0, 1, 2}); err == nil {
		t.Error("expected error for empty vertex buffer")
	}
}

func TestTriMeshRayCastDown(t *testing.T) {
	s := flatShape(t)

	hit, ok := s.RayCast(NewRay(math.Vec3{X: 1, Y: 3, Z: -40}, math.Down), 10)
	if !ok {
		t.Fatal("expected a hit straight down")
	}
	if gomath.Abs(float64(hit.Distance-3)) > 0.0001 {
		t.Errorf("distance = %v, want 3", hit.Distance)
	}
	if hit.Normal.Distance(math.Up) > 0.0001 {
		t.Errorf("normal = %v, want +Y", hit.Normal)
	}
}

func TestTriMeshRayCastRange(t *testing.T) {
	s := flatShape(t)

	if _, ok := s.RayCast(NewRay(math.Vec3{Y: 30, Z: -40}, math.Down), 10); ok {
		t.Error("hit beyond max distance should be ignored")
	}
}

func TestTriMeshRayCastTwoSided(t *testing.T) {
	s := flatShape(t)

	hit, ok := s.RayCast(NewRay(math.Vec3{Y: -2, Z: -10}, math.Up), Unbounded)
	if !ok {
		t.Fatal("upward ray from below should hit the surface")
	}
	if gomath.Abs(float64(hit.Point.Y)) > 0.0001 {
		t.Errorf("hit point y = %v, want 0", hit.Point.Y)
	}
}

func TestWorldRayCastUndoesRotation(t *testing.T) {
	w := NewWorld()
	s := flatShape(t)

	// Tilt the terrain 30 degrees about X and lift it
	rot := math.QuatFromAxisAngle(math.Right, float32(gomath.Pi/6))
	w.AddBody(&Body{Type: Static, Position: math.Vec3{Y: 5}, Rotation: rot, Shape: s})

	hit, ok := w.RayCast(NewRay(math.Vec3{Y: 20, Z: -1}, math.Down), Unbounded)
	if !ok {
		t.Fatal("expected hit on rotated body")
	}
	want := rot.Rotate(math.Up)
	if hit.Normal.Distance(want) > 0.001 {
		t.Errorf("world normal = %v, want %v", hit.Normal, want)
	}
	if hit.Local.Distance(math.Up) > 0.001 {
		t.Errorf("local normal = %v, want +Y", hit.Local)
	}
}

func TestWorldRayCastClosestAndRemove(t *testing.T) {
	w := NewWorld()
	low := w.AddBody(&Body{Type: Static, Shape: flatShape(t)})
	high := w.AddBody(&Body{Type: Static, Position: math.Vec3{Y: 2}, Shape: flatShape(t)})
	w.AddBody(&Body{Type: Dynamic, Mass: 1, FixedRotation: true, Position: math.Vec3{Y: 4, Z: -10}})

	r := NewRay(math.Vec3{Y: 5, Z: -10}, math.Down)
	hit, ok := w.RayCast(r, Unbounded)
	if !ok || hit.Body != high {
		t.Fatalf("closest hit = %+v (ok=%v), want body %d", hit, ok, high)
	}

	w.RemoveBody(high)
	hit, ok = w.RayCast(r, Unbounded)
	if !ok || hit.Body != low {
		t.Fatalf("after removal hit = %+v (ok=%v), want body %d", hit, ok, low)
	}
	if w.Len() != 2 {
		t.Errorf("Len() = %d, want 2", w.Len())
	}
}

func TestAABBOverlapAndShrink(t *testing.T) {
	a := CenteredAABB(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1})
	b := CenteredAABB(math.Vec3{X: 1.5}, math.Vec3{X: 1, Y: 1, Z: 1})
	if !a.Overlaps(b) {
		t.Error("boxes should overlap")
	}
	if a.Shrink(0.3).Overlaps(b.Shrink(0.3)) {
		t.Error("shrunk boxes should no longer overlap")
	}

	tiny := a.Shrink(5)
	if tiny.Min != tiny.Max {
		t.Errorf("over-shrunk box should collapse to a point, got %+v", tiny)
	}
}

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})

	d, ok := NewRay(math.Vec3{Z: 5}, math.Forward).IntersectAABB(box)
	if !ok || gomath.Abs(float64(d-4)) > 0.0001 {
		t.Errorf("IntersectAABB = %v, %v; want 4, true", d, ok)
	}
	if _, ok := NewRay(math.Vec3{Z: 5}, math.Up).IntersectAABB(box); ok {
		t.Error("ray pointing away should miss")
	}
}
