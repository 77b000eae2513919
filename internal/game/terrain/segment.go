package terrain

import (
	"github.com/Faultbox/islandrun/internal/engine/mesh"
	"github.com/Faultbox/islandrun/internal/engine/physics"
	"github.com/Faultbox/islandrun/internal/game/entity"
	"github.com/Faultbox/islandrun/pkg/math"
)

// Segment is one generated stretch of terrain. Geometry is local: the
// leading edge sits at z = 0 and the trailing edge at z = -Length.
type Segment struct {
	Index  int
	Width  float32
	Length float32

	// Set by Place.
	StartZ float32
	EndZ   float32
	Placed bool

	Texture   string
	Amplitude float32
	Points    []ControlPoint
	Samples   []CurveSample

	Mesh  *mesh.Mesh
	Shape *physics.TriMesh

	// The cap closes the island past the trailing edge. CapOffset places
	// cap-local geometry in segment-local space.
	Cap       *mesh.Mesh
	CapShape  *physics.TriMesh
	CapOffset math.Vec3

	Vegetation []*entity.Spawnable
	Clouds     []*entity.Spawnable
	Entities   []*entity.Spawnable
}

// Place positions the segment so its leading edge is at startZ.
func (s *Segment) Place(startZ float32) {
	s.StartZ = startZ
	s.EndZ = startZ - s.Length
	s.Placed = true
}

// Origin returns the world position of the segment's local origin.
func (s *Segment) Origin() math.Vec3 {
	return math.Vec3{Z: s.StartZ}
}

// CapOrigin returns the world position of the cap's local origin.
func (s *Segment) CapOrigin() math.Vec3 {
	return s.Origin().Add(s.CapOffset)
}

// Contains reports whether world z lies within [EndZ, StartZ].
func (s *Segment) Contains(z float32) bool {
	return s.Placed && z <= s.StartZ && z >= s.EndZ
}

// Release drops the geometry so nothing keeps it alive after retirement.
func (s *Segment) Release() {
	s.Mesh = nil
	s.Shape = nil
	s.Cap = nil
	s.CapShape = nil
	s.Samples = nil
	s.Points = nil
	for _, group := range [][]*entity.Spawnable{s.Vegetation, s.Clouds, s.Entities} {
		for _, e := range group {
			e.Alive = false
		}
	}
	s.Vegetation = nil
	s.Clouds = nil
	s.Entities = nil
}

// Stats summarizes a segment for tooling.
type Stats struct {
	Index         int     `yaml:"index"`
	Length        float32 `yaml:"length"`
	StartZ        float32 `yaml:"start_z"`
	EndZ          float32 `yaml:"end_z"`
	Amplitude     float32 `yaml:"amplitude"`
	ControlPoints int     `yaml:"control_points"`
	Samples       int     `yaml:"samples"`
	Vertices      int     `yaml:"vertices"`
	Triangles     int     `yaml:"triangles"`
	MinHeight     float32 `yaml:"min_height"`
	MaxHeight     float32 `yaml:"max_height"`
	Texture       string  `yaml:"texture"`
	Vegetation    int     `yaml:"vegetation"`
	Clouds        int     `yaml:"clouds"`
	Entities      int     `yaml:"entities"`
}

// Stats returns a summary of the segment.
func (s *Segment) Stats() Stats {
	st := Stats{
		Index:         s.Index,
		Length:        s.Length,
		StartZ:        s.StartZ,
		EndZ:          s.EndZ,
		Amplitude:     s.Amplitude,
		ControlPoints: len(s.Points),
		Samples:       len(s.Samples),
		Texture:       s.Texture,
		Vegetation:    len(s.Vegetation),
		Clouds:        len(s.Clouds),
		Entities:      len(s.Entities),
	}
	if s.Mesh != nil {
		st.Vertices = s.Mesh.VertexCount()
		st.Triangles = s.Mesh.TriangleCount()
		st.MinHeight = s.Mesh.Bounds.Min[1]
		st.MaxHeight = s.Mesh.Bounds.Max[1]
	}
	return st
}
