// Package player holds the state shared between the locomotion controller
// and the island manager.
//
// The controller is the only writer of the physics fields (position,
// velocity, orientation, grounded, acceleration). The island manager is the
// only writer of score, effects and the terminal flag.
package player

import (
	"time"

	"github.com/Faultbox/islandrun/internal/engine/physics"
	"github.com/Faultbox/islandrun/internal/game/effects"
	"github.com/Faultbox/islandrun/pkg/math"
)

// Input is the raw key state for one frame.
type Input struct {
	Left    bool
	Right   bool
	Descend bool
}

// State is the player for one session.
type State struct {
	Body physics.BodyID

	Position             math.Vec3
	Velocity             math.Vec3
	Orientation          math.Quat
	Grounded             bool
	VerticalAcceleration float32
	GravityEnabled       bool

	Score    int
	Effects  map[effects.Kind]time.Duration // active effect -> expiry
	Terminal bool
}

// NewState creates an airborne player at spawn.
func NewState(spawn math.Vec3) *State {
	return &State{
		Position:       spawn,
		Orientation:    math.QuatIdentity(),
		GravityEnabled: true,
		Effects:        make(map[effects.Kind]time.Duration),
	}
}

// AddScore adjusts the score, flooring at zero.
func (s *State) AddScore(delta int) {
	s.Score += delta
	if s.Score < 0 {
		s.Score = 0
	}
}

// EffectActive reports whether a timed effect is running.
func (s *State) EffectActive(kind effects.Kind) bool {
	_, ok := s.Effects[kind]
	return ok
}

// Bounds returns the player's collision box: a cube of the given radius,
// shrunk by inset on every side.
func (s *State) Bounds(radius, inset float32) physics.AABB {
	return physics.CenteredAABB(s.Position, math.Vec3{X: radius, Y: radius, Z: radius}).Shrink(inset)
}
