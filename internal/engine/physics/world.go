package physics

import (
	"github.com/Faultbox/islandrun/pkg/math"
)

// BodyID identifies a body inside a World.
type BodyID uint32

// BodyType distinguishes immovable terrain from simulated bodies.
type BodyType uint8

const (
	// Static bodies never move and are the only targets of ray queries.
	Static BodyType = iota
	// Dynamic bodies carry mass and are driven by a controller.
	Dynamic
)

// String returns the body type name.
func (t BodyType) String() string {
	if t == Static {
		return "static"
	}
	return "dynamic"
}

// Body is a rigid body with an optional triangle-mesh shape.
type Body struct {
	ID            BodyID
	Type          BodyType
	Mass          float32
	FixedRotation bool // Orientation is owned by the controller, not the solver
	Position      math.Vec3
	Rotation      math.Quat
	Shape         *TriMesh

	// Owner is an opaque tag set by whoever created the body (segment id).
	Owner int
}

// World holds the bodies that take part in collision queries.
type World struct {
	bodies map[BodyID]*Body
	order  []BodyID
	nextID BodyID
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{bodies: make(map[BodyID]*Body)}
}

// AddBody registers a body and assigns its ID.
func (w *World) AddBody(b *Body) BodyID {
	w.nextID++
	b.ID = w.nextID
	if b.Rotation == (math.Quat{}) {
		b.Rotation = math.QuatIdentity()
	}
	if b.Type == Static {
		b.Mass = 0
	}
	w.bodies[b.ID] = b
	w.order = append(w.order, b.ID)
	return b.ID
}

// RemoveBody unregisters a body. Removing an unknown ID is a no-op.
func (w *World) RemoveBody(id BodyID) {
	if _, ok := w.bodies[id]; !ok {
		return
	}
	delete(w.bodies, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// Body returns the body with the given ID.
func (w *World) Body(id BodyID) (*Body, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// Len returns the number of registered bodies.
func (w *World) Len() int {
	return len(w.order)
}

// RayCast returns the closest hit against all static shapes within maxDist.
// Each body is queried in its own frame: the ray is moved into body space by undoing
// the body's rotation, and the hit is rotated back to world space.
func (w *World) RayCast(r Ray, maxDist float32) (Hit, bool) {
	var best Hit
	found := false
	limit := maxDist

	for _, id := range w.order {
		b := w.bodies[id]
		if b.Type != Static || b.Shape == nil {
			continue
		}

		inv := b.Rotation.Conjugate()
		local := Ray{
			Origin:    inv.Rotate(r.Origin.Sub(b.Position)),
			Direction: inv.Rotate(r.Direction),
		}

		// Broad phase against the shape bounds
		t, ok := local.IntersectAABB(b.Shape.Bounds)
		if !ok || t > limit {
			continue
		}

		hit, ok := b.Shape.RayCast(local, limit)
		if !ok {
			continue
		}
		hit.Body = b.ID
		hit.Point = b.Rotation.Rotate(hit.Point).Add(b.Position)
		hit.Normal = b.Rotation.Rotate(hit.Local)

		best = hit
		limit = hit.Distance
		found = true
	}

	return best, found
}
