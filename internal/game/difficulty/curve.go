// Package difficulty defines the clamped linear curves that scale terrain roughness
// and entity populations with the progression level.
package difficulty

import (
	"fmt"
	"math"
)

// Curve is value = clamp(Base + PerLevel*level, Min, Max).
type Curve struct {
	Base     float64 `yaml:"base"`
	PerLevel float64 `yaml:"per_level"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
}

// At returns the curve value for a level. Negative levels are treated as 0.
func (c Curve) At(level int) float64 {
	if level < 0 {
		level = 0
	}
	v := c.Base + c.PerLevel*float64(level)
	if v < c.Min {
		return c.Min
	}
	if v > c.Max {
		return c.Max
	}
	return v
}

// Count returns the curve value floored to a whole count.
func (c Curve) Count(level int) int {
	return int(math.Floor(c.At(level)))
}

// SaturationLevel returns the first level at which the curve reaches its clamp
// (Max for rising curves, Min for falling ones). Flat curves saturate at level 0.
func (c Curve) SaturationLevel() int {
	switch {
	case c.PerLevel > 0:
		return int(math.Max(0, math.Ceil((c.Max-c.Base)/c.PerLevel)))
	case c.PerLevel < 0:
		return int(math.Max(0, math.Ceil((c.Min-c.Base)/c.PerLevel)))
	default:
		return 0
	}
}

// Validate checks that the bounds are ordered.
func (c Curve) Validate() error {
	if c.Min > c.Max {
		return fmt.Errorf("min %v exceeds max %v", c.Min, c.Max)
	}
	return nil
}
