// Package terrain synthesizes wave-shaped island segments: control points,
// a cosine height profile, a render mesh with a matching collision shape,
// an end cap and decoration.
package terrain

import (
	"errors"
	"fmt"
	gomath "math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/islandrun/internal/config"
	"github.com/Faultbox/islandrun/internal/engine/mesh"
	"github.com/Faultbox/islandrun/internal/engine/physics"
	"github.com/Faultbox/islandrun/internal/game/entity"
	"github.com/Faultbox/islandrun/pkg/math"
)

var (
	ErrNoTextures          = errors.New("terrain: no textures configured")
	ErrNoVegetationModels  = errors.New("terrain: no vegetation models configured")
	ErrNoCloudModels       = errors.New("terrain: no cloud models configured")
	ErrCurveSampleMissing  = errors.New("terrain: no curve sample for vertex")
	ErrInvalidSegmentIndex = errors.New("terrain: negative segment index")
)

// Synthesizer generates terrain segments from a seeded random source.
type Synthesizer struct {
	cfg config.TerrainConfig
	rng *rand.Rand
	log *zap.Logger
}

// NewSynthesizer validates the asset lists and returns a synthesizer.
func NewSynthesizer(cfg config.TerrainConfig, rng *rand.Rand, log *zap.Logger) (*Synthesizer, error) {
	switch {
	case len(cfg.Textures) == 0:
		return nil, ErrNoTextures
	case len(cfg.VegetationModels) == 0:
		return nil, ErrNoVegetationModels
	case len(cfg.CloudModels) == 0:
		return nil, ErrNoCloudModels
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{cfg: cfg, rng: rng, log: log}, nil
}

// Amplitude returns the random part of the vertical step range for a segment.
func (s *Synthesizer) Amplitude(index int) float32 {
	return float32(s.cfg.Amplitude.At(index))
}

// ControlPoints rolls the anchor points for a segment. Z grows strictly and
// the vertical step alternates in sign.
func (s *Synthesizer) ControlPoints(index int) []ControlPoint {
	amp := s.Amplitude(index)
	points := make([]ControlPoint, 0, s.cfg.ControlPointCount)
	points = append(points, ControlPoint{})

	var z, y float32
	sign := float32(1)
	for i := 1; i < s.cfg.ControlPointCount; i++ {
		z += s.cfg.ZStepBase + s.rng.Float32()*s.cfg.ZStepJitter
		y += sign * (s.cfg.YStepBase + s.rng.Float32()*amp)
		sign = -sign
		points = append(points, ControlPoint{Z: z, Y: y})
	}
	return points
}

// Generate builds a complete segment for index with the given decoration counts.
func (s *Synthesizer) Generate(index, vegetationCount, cloudCount int) (*Segment, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSegmentIndex, index)
	}
	return s.Build(index, s.ControlPoints(index), vegetationCount, cloudCount)
}

// Build turns a control-point sequence into a segment. The points must
// start at z = 0.
func (s *Synthesizer) Build(index int, points []ControlPoint, vegetationCount, cloudCount int) (*Segment, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSegmentIndex, index)
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("segment %d: need at least 2 control points, got %d", index, len(points))
	}

	samples := SampleCurve(points, s.cfg.SampleStep)
	span := points[len(points)-1].Z
	if span <= 0 {
		return nil, fmt.Errorf("segment %d: control points span %v", index, span)
	}

	rows := int(gomath.Ceil(float64(span / s.cfg.SampleStep)))
	m, err := mesh.NewPlane(s.cfg.Width, span, s.cfg.WidthSegments, rows)
	if err != nil {
		return nil, fmt.Errorf("segment %d: %w", index, err)
	}

	for i := 0; i < m.VertexCount(); i++ {
		p := m.Position(i)
		h, err := LookupHeight(samples, -p.Z, s.cfg.SampleTolerance)
		if err != nil {
			return nil, fmt.Errorf("segment %d vertex %d at z=%v: %w", index, i, p.Z, err)
		}
		p.Y = h
		m.SetPosition(i, p)
	}
	m.ComputeNormals()
	m.ComputeBounds()

	shape, err := physics.NewTriMesh(m.Positions(), m.Indices)
	if err != nil {
		return nil, fmt.Errorf("segment %d collision shape: %w", index, err)
	}

	seg := &Segment{
		Index:     index,
		Width:     s.cfg.Width,
		Length:    span,
		Texture:   s.cfg.Textures[s.rng.IntN(len(s.cfg.Textures))],
		Amplitude: s.Amplitude(index),
		Points:    points,
		Samples:   samples,
		Mesh:      m,
		Shape:     shape,
	}

	if err := s.attachCap(seg); err != nil {
		return nil, fmt.Errorf("segment %d cap: %w", index, err)
	}
	s.decorate(seg, vegetationCount, cloudCount)

	s.log.Debug("segment generated",
		zap.Int("segment", index),
		zap.Float32("length", span),
		zap.Float32("amplitude", seg.Amplitude),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("vegetation", len(seg.Vegetation)),
		zap.Int("clouds", len(seg.Clouds)),
	)
	return seg, nil
}

// buildCap makes the end-cap mesh: a rounded drop over CapLength, centered
// on its own bounds like an imported model.
func (s *Synthesizer) buildCap() (*mesh.Mesh, error) {
	m, err := mesh.NewPlane(s.cfg.Width, s.cfg.CapLength, s.cfg.WidthSegments, s.cfg.CapSegments)
	if err != nil {
		return nil, err
	}
	for i := 0; i < m.VertexCount(); i++ {
		p := m.Position(i)
		t := -p.Z / s.cfg.CapLength
		p.Y = -s.cfg.CapDrop * (1 - float32(gomath.Cos(float64(t)*gomath.Pi/2)))
		m.SetPosition(i, p)
	}
	m.ComputeBounds()

	center := math.Vec3{
		X: (m.Bounds.Min[0] + m.Bounds.Max[0]) / 2,
		Y: (m.Bounds.Min[1] + m.Bounds.Max[1]) / 2,
		Z: (m.Bounds.Min[2] + m.Bounds.Max[2]) / 2,
	}
	for i := 0; i < m.VertexCount(); i++ {
		m.SetPosition(i, m.Position(i).Sub(center))
	}
	m.ComputeNormals()
	m.ComputeBounds()
	return m, nil
}

// attachCap places the cap so its leading row meets the segment's trailing row.
func (s *Synthesizer) attachCap(seg *Segment) error {
	capMesh, err := s.buildCap()
	if err != nil {
		return err
	}
	shape, err := physics.NewTriMesh(capMesh.Positions(), capMesh.Indices)
	if err != nil {
		return err
	}

	// Row 0 is the leading edge; vertex 0 is its left corner.
	lead := capMesh.Position(0)
	last := seg.Samples[len(seg.Samples)-1]
	trailLeft := math.Vec3{X: -seg.Width / 2, Y: last.Y, Z: -seg.Length}

	seg.Cap = capMesh
	seg.CapShape = shape
	seg.CapOffset = trailLeft.Sub(lead)
	return nil
}

func (s *Synthesizer) decorate(seg *Segment, vegetationCount, cloudCount int) {
	m := seg.Mesh
	for i := 0; i < vegetationCount; i++ {
		p := m.Position(s.rng.IntN(m.VertexCount()))
		e := entity.New(entity.KindVegetation, seg.Index, p, 1)
		e.Model = s.cfg.VegetationModels[s.rng.IntN(len(s.cfg.VegetationModels))]
		seg.Vegetation = append(seg.Vegetation, e)
	}

	height := float32(s.cfg.CloudHeight.At(seg.Index))
	spread := float32(s.cfg.CloudSpread.At(seg.Index))
	for i := 0; i < cloudCount; i++ {
		p := m.Position(s.rng.IntN(m.VertexCount()))
		p.X += (s.rng.Float32()*2 - 1) * spread
		p.Y += height
		e := entity.New(entity.KindCloud, seg.Index, p, 1)
		e.Model = s.cfg.CloudModels[s.rng.IntN(len(s.cfg.CloudModels))]
		seg.Clouds = append(seg.Clouds, e)
	}
}
