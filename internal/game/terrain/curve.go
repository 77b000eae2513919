package terrain

import (
	gomath "math"
	"sort"
)

// ControlPoint is a sparse height anchor. Z is the distance along the
// segment in the direction of travel.
type ControlPoint struct {
	Z float32
	Y float32
}

// CurveSample is one point of the dense interpolated profile.
type CurveSample struct {
	Z float32
	Y float32
}

// SampleCurve fills a cosine wave between each pair of control points in
// sub-steps no wider than step. The first and last sample equal the first
// and last control point exactly.
func SampleCurve(points []ControlPoint, step float32) []CurveSample {
	if len(points) == 0 || step <= 0 {
		return nil
	}

	samples := make([]CurveSample, 0, estimateSamples(points, step))
	for i := 0; i+1 < len(points); i++ {
		p0, p1 := points[i], points[i+1]
		dz := p1.Z - p0.Z
		n := int(gomath.Ceil(float64(dz / step)))
		if n < 1 {
			n = 1
		}

		mid := (p0.Y + p1.Y) / 2
		amp := (p0.Y - p1.Y) / 2
		samples = append(samples, CurveSample{Z: p0.Z, Y: p0.Y})
		for k := 1; k < n; k++ {
			t := float32(k) / float32(n)
			samples = append(samples, CurveSample{
				Z: p0.Z + dz*t,
				Y: mid + amp*float32(gomath.Cos(gomath.Pi*float64(t))),
			})
		}
	}
	last := points[len(points)-1]
	return append(samples, CurveSample{Z: last.Z, Y: last.Y})
}

func estimateSamples(points []ControlPoint, step float32) int {
	span := points[len(points)-1].Z - points[0].Z
	return int(span/step) + len(points) + 1
}

// LookupHeight returns the height of the sample nearest to z.
//
// A vertex inside the sampled span always resolves to its nearest sample,
// even when that sample lies outside tolerance. Only an empty profile or a
// z beyond either end by more than tolerance fails, with ErrCurveSampleMissing.
func LookupHeight(samples []CurveSample, z, tolerance float32) (float32, error) {
	if len(samples) == 0 {
		return 0, ErrCurveSampleMissing
	}
	first, last := samples[0], samples[len(samples)-1]
	if z < first.Z-tolerance || z > last.Z+tolerance {
		return 0, ErrCurveSampleMissing
	}

	i := sort.Search(len(samples), func(i int) bool { return samples[i].Z >= z })
	switch {
	case i == 0:
		return first.Y, nil
	case i == len(samples):
		return last.Y, nil
	}
	if samples[i].Z-z < z-samples[i-1].Z {
		return samples[i].Y, nil
	}
	return samples[i-1].Y, nil
}
