package terrain

import (
	"errors"
	gomath "math"
	"math/rand/v2"
	"testing"

	"github.com/Faultbox/islandrun/internal/config"
	"github.com/Faultbox/islandrun/pkg/math"
)

func testTerrainConfig() config.TerrainConfig {
	cfg := config.Default().Terrain
	cfg.ControlPointCount = 6
	cfg.WidthSegments = 4
	return cfg
}

func newTestSynth(t *testing.T, cfg config.TerrainConfig, seed uint64) *Synthesizer {
	t.Helper()
	s, err := NewSynthesizer(cfg, rand.New(rand.NewPCG(seed, seed)), nil)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}
	return s
}

func near(a, b, eps float32) bool {
	return float32(gomath.Abs(float64(a-b))) <= eps
}

func TestNewSynthesizerRejectsEmptyAssets(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.TerrainConfig)
		want   error
	}{
		{"textures", func(c *config.TerrainConfig) { c.Textures = nil }, ErrNoTextures},
		{"vegetation", func(c *config.TerrainConfig) { c.VegetationModels = []string{} }, ErrNoVegetationModels},
		{"clouds", func(c *config.TerrainConfig) { c.CloudModels = nil }, ErrNoCloudModels},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testTerrainConfig()
			tt.mutate(&cfg)
			_, err := NewSynthesizer(cfg, rand.New(rand.NewPCG(1, 1)), nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGenerateRejectsNegativeIndex(t *testing.T) {
	s := newTestSynth(t, testTerrainConfig(), 1)
	if _, err := s.Generate(-1, 0, 0); !errors.Is(err, ErrInvalidSegmentIndex) {
		t.Errorf("expected ErrInvalidSegmentIndex, got %v", err)
	}
}

func TestGenerateCollisionMatchesMesh(t *testing.T) {
	s := newTestSynth(t, testTerrainConfig(), 7)
	for index := 0; index < 5; index++ {
		seg, err := s.Generate(index, 3, 2)
		if err != nil {
			t.Fatalf("Generate(%d): %v", index, err)
		}
		if seg.Length <= 0 {
			t.Errorf("segment %d: length %v", index, seg.Length)
		}
		if got, want := seg.Shape.TriangleCount(), seg.Mesh.TriangleCount(); got != want {
			t.Errorf("segment %d: collision has %d triangles, mesh has %d", index, got, want)
		}
		if got, want := seg.CapShape.TriangleCount(), seg.Cap.TriangleCount(); got != want {
			t.Errorf("segment %d: cap collision has %d triangles, cap mesh has %d", index, got, want)
		}
		if seg.Texture == "" {
			t.Errorf("segment %d: no texture", index)
		}
	}
}

func TestControlPoints(t *testing.T) {
	cfg := testTerrainConfig()
	cfg.ControlPointCount = 20
	s := newTestSynth(t, cfg, 3)

	points := s.ControlPoints(4)
	if len(points) != 20 {
		t.Fatalf("expected 20 points, got %d", len(points))
	}
	if points[0] != (ControlPoint{}) {
		t.Errorf("first point should be the origin, got %+v", points[0])
	}
	for i := 1; i < len(points); i++ {
		if points[i].Z <= points[i-1].Z {
			t.Errorf("z not strictly increasing at %d: %v -> %v", i, points[i-1].Z, points[i].Z)
		}
		dy := points[i].Y - points[i-1].Y
		if (i%2 == 1) != (dy > 0) {
			t.Errorf("step %d has dy %v, expected alternating sign", i, dy)
		}
		if gomath.Abs(float64(dy)) < float64(cfg.YStepBase)-1e-3 {
			t.Errorf("step %d smaller than base: %v", i, dy)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := newTestSynth(t, testTerrainConfig(), 99)
	b := newTestSynth(t, testTerrainConfig(), 99)
	segA, err := a.Generate(2, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	segB, err := b.Generate(2, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(segA.Points) != len(segB.Points) {
		t.Fatalf("point counts differ")
	}
	for i := range segA.Points {
		if segA.Points[i] != segB.Points[i] {
			t.Errorf("point %d differs: %+v vs %+v", i, segA.Points[i], segB.Points[i])
		}
	}
}

func TestAmplitudeMonotonicAndClamped(t *testing.T) {
	cfg := testTerrainConfig()
	s := newTestSynth(t, cfg, 1)
	ceiling := float32(cfg.Amplitude.Max)
	sat := cfg.Amplitude.SaturationLevel()

	prev := s.Amplitude(0)
	for i := 1; i <= sat+5; i++ {
		a := s.Amplitude(i)
		if a < prev {
			t.Errorf("amplitude decreased at %d: %v -> %v", i, prev, a)
		}
		if a > ceiling {
			t.Errorf("amplitude %v exceeds ceiling %v at %d", a, ceiling, i)
		}
		prev = a
	}
	if s.Amplitude(0) != float32(cfg.Amplitude.Base) {
		t.Errorf("expected base amplitude at 0, got %v", s.Amplitude(0))
	}
	if s.Amplitude(sat) != ceiling || s.Amplitude(sat+1) != ceiling {
		t.Errorf("expected ceiling at and above saturation level %d", sat)
	}
	if s.Amplitude(sat-1) >= ceiling {
		t.Errorf("expected amplitude below ceiling one level before saturation")
	}
}

func TestSampleCurve(t *testing.T) {
	samples := SampleCurve([]ControlPoint{{Z: 0, Y: 0}, {Z: 10, Y: 10}}, 2.5)
	if len(samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(samples))
	}
	if samples[0] != (CurveSample{Z: 0, Y: 0}) {
		t.Errorf("first sample should match control point, got %+v", samples[0])
	}
	if samples[4] != (CurveSample{Z: 10, Y: 10}) {
		t.Errorf("last sample should match control point, got %+v", samples[4])
	}
	if samples[2].Z != 5 || !near(samples[2].Y, 5, 1e-5) {
		t.Errorf("midpoint should be the mean, got %+v", samples[2])
	}
	// Cosine ease: the first quarter rises less than linearly.
	if samples[1].Y >= 2.5 {
		t.Errorf("expected eased rise at t=0.25, got %v", samples[1].Y)
	}

	multi := SampleCurve([]ControlPoint{{0, 0}, {4, 6}, {8, -2}}, 2)
	want := []float32{0, 3, 6, 2, -2}
	if len(multi) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(multi))
	}
	for i := range want {
		if !near(multi[i].Y, want[i], 1e-5) {
			t.Errorf("sample %d: y = %v, want %v", i, multi[i].Y, want[i])
		}
		if i > 0 && multi[i].Z <= multi[i-1].Z {
			t.Errorf("sample z not increasing at %d", i)
		}
	}
	if multi[2].Y != 6 {
		t.Errorf("interior control point should be exact, got %v", multi[2].Y)
	}
}

func TestLookupHeight(t *testing.T) {
	samples := []CurveSample{{0, 1}, {2, 2}, {4, 3}}
	tests := []struct {
		z, tol  float32
		want    float32
		wantErr bool
	}{
		{z: 0, tol: 0.5, want: 1},
		{z: 2.9, tol: 0.5, want: 2},
		{z: 3.1, tol: 0.5, want: 3},
		{z: -0.3, tol: 0.5, want: 1},
		{z: 4.4, tol: 0.5, want: 3},
		{z: 1, tol: 0.1, want: 1}, // inside the span: nearest sample regardless of tolerance
		{z: -1, tol: 0.5, wantErr: true},
		{z: 5, tol: 0.5, wantErr: true},
	}
	for _, tt := range tests {
		got, err := LookupHeight(samples, tt.z, tt.tol)
		if tt.wantErr {
			if !errors.Is(err, ErrCurveSampleMissing) {
				t.Errorf("z=%v: expected ErrCurveSampleMissing, got %v", tt.z, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("z=%v: unexpected error %v", tt.z, err)
			continue
		}
		if got != tt.want {
			t.Errorf("z=%v: got %v, want %v", tt.z, got, tt.want)
		}
	}

	if _, err := LookupHeight(nil, 0, 1); !errors.Is(err, ErrCurveSampleMissing) {
		t.Errorf("empty profile: expected ErrCurveSampleMissing, got %v", err)
	}
}

func TestFlatControlPointsGiveFlatTerrain(t *testing.T) {
	s := newTestSynth(t, testTerrainConfig(), 1)
	points := []ControlPoint{{0, 3}, {50, 3}, {120, 3}}
	seg, err := s.Build(0, points, 0, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < seg.Mesh.VertexCount(); i++ {
		if y := seg.Mesh.Position(i).Y; y != 3 {
			t.Fatalf("vertex %d: y = %v, want 3", i, y)
		}
		n := math.FromArray(seg.Mesh.Vertices[i].Normal)
		if !near(n.Y, 1, 1e-5) {
			t.Fatalf("vertex %d: normal %+v, want up", i, n)
		}
	}
	if seg.Length != 120 {
		t.Errorf("expected length 120, got %v", seg.Length)
	}
}

func TestCapMeetsTrailingEdge(t *testing.T) {
	cfg := testTerrainConfig()
	s := newTestSynth(t, cfg, 11)
	seg, err := s.Generate(3, 0, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	cols := cfg.WidthSegments + 1
	trailStart := seg.Mesh.VertexCount() - cols
	lastY := seg.Samples[len(seg.Samples)-1].Y
	for col := 0; col < cols; col++ {
		trail := seg.Mesh.Position(trailStart + col)
		lead := seg.Cap.Position(col).Add(seg.CapOffset)
		if trail.Y != lastY {
			t.Errorf("trailing row y = %v, want last sample %v", trail.Y, lastY)
		}
		if !near(lead.X, trail.X, 1e-3) || !near(lead.Y, trail.Y, 1e-3) || !near(lead.Z, trail.Z, 1e-3) {
			t.Errorf("column %d: cap edge %+v does not meet trailing edge %+v", col, lead, trail)
		}
	}

	// The rest of the cap lies behind and below the seam.
	for i := cols; i < seg.Cap.VertexCount(); i++ {
		p := seg.Cap.Position(i).Add(seg.CapOffset)
		if p.Z > -seg.Length+1e-3 {
			t.Errorf("cap vertex %d at z=%v is ahead of the trailing edge", i, p.Z)
		}
		if p.Y > lastY+1e-3 {
			t.Errorf("cap vertex %d at y=%v rises above the seam", i, p.Y)
		}
	}
}

func TestDecorationSitsOnMesh(t *testing.T) {
	cfg := testTerrainConfig()
	s := newTestSynth(t, cfg, 5)
	const index = 2
	seg, err := s.Generate(index, 10, 6)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(seg.Vegetation) != 10 || len(seg.Clouds) != 6 {
		t.Fatalf("expected 10 vegetation and 6 clouds, got %d and %d", len(seg.Vegetation), len(seg.Clouds))
	}

	positions := seg.Mesh.Positions()
	for _, v := range seg.Vegetation {
		found := false
		for _, p := range positions {
			if p == v.Position {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("vegetation at %+v is not on a mesh vertex", v.Position)
		}
		if v.Model == "" || v.Segment != index {
			t.Errorf("vegetation missing model or segment: %+v", v)
		}
	}

	height := float32(cfg.CloudHeight.At(index))
	spread := float32(cfg.CloudSpread.At(index))
	for _, c := range seg.Clouds {
		found := false
		for _, p := range positions {
			if p.Z == c.Position.Z && near(c.Position.Y, p.Y+height, 1e-3) && gomath.Abs(float64(c.Position.X-p.X)) <= float64(spread)+1e-3 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("cloud at %+v is not %v above a mesh vertex", c.Position, height)
		}
	}
}

func TestCloudPlacementTightensWithIndex(t *testing.T) {
	cfg := testTerrainConfig()
	prevH, prevS := cfg.CloudHeight.At(0), cfg.CloudSpread.At(0)
	for i := 1; i < 30; i++ {
		h, s := cfg.CloudHeight.At(i), cfg.CloudSpread.At(i)
		if h > prevH || s > prevS {
			t.Errorf("cloud placement loosened at %d", i)
		}
		if h < cfg.CloudHeight.Min || s < cfg.CloudSpread.Min {
			t.Errorf("cloud placement below floor at %d", i)
		}
		prevH, prevS = h, s
	}
}

func TestPlaceAndContains(t *testing.T) {
	s := newTestSynth(t, testTerrainConfig(), 2)
	seg, err := s.Generate(0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if seg.Contains(0) {
		t.Error("unplaced segment should contain nothing")
	}
	seg.Place(950)
	if seg.EndZ != 950-seg.Length {
		t.Errorf("EndZ = %v, want %v", seg.EndZ, 950-seg.Length)
	}
	if !seg.Contains(900) || seg.Contains(951) || seg.Contains(seg.EndZ-1) {
		t.Error("Contains disagrees with [EndZ, StartZ]")
	}
	if seg.Origin() != (math.Vec3{Z: 950}) {
		t.Errorf("unexpected origin %+v", seg.Origin())
	}

	st := seg.Stats()
	if st.Triangles != seg.Mesh.TriangleCount() || st.StartZ != 950 {
		t.Errorf("unexpected stats %+v", st)
	}

	seg.Release()
	if seg.Mesh != nil || seg.Shape != nil || seg.Cap != nil {
		t.Error("Release should drop geometry")
	}
}
