// Package entity implements the spawnable objects that live on terrain
// segments: hazards, collectibles, power-ups and decoration.
package entity

import (
	"fmt"

	"github.com/Faultbox/islandrun/internal/engine/physics"
	"github.com/Faultbox/islandrun/pkg/math"
)

// Kind represents the type of entity.
type Kind uint8

const (
	KindEnemy Kind = iota
	KindCollectible
	KindPowerup
	KindVegetation
	KindCloud
)

func (k Kind) String() string {
	switch k {
	case KindEnemy:
		return "enemy"
	case KindCollectible:
		return "collectible"
	case KindPowerup:
		return "powerup"
	case KindVegetation:
		return "vegetation"
	case KindCloud:
		return "cloud"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Variant selects the power-up effect. Only meaningful for KindPowerup.
type Variant uint8

const (
	VariantNone Variant = iota
	VariantScoreDoubler
	VariantInvulnerability
	VariantShrink
)

// PowerupVariants lists the variants a power-up can roll.
var PowerupVariants = []Variant{VariantScoreDoubler, VariantInvulnerability, VariantShrink}

func (v Variant) String() string {
	switch v {
	case VariantNone:
		return "none"
	case VariantScoreDoubler:
		return "score-doubler"
	case VariantInvulnerability:
		return "invulnerability"
	case VariantShrink:
		return "shrink"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// ID identifies a registered entity. Zero means unregistered.
type ID uint32

// Spawnable is one object owned by a terrain segment. Position is local to
// the owning segment; the segment is referenced by index only.
type Spawnable struct {
	ID       ID
	Kind     Kind
	Variant  Variant
	Segment  int
	Position math.Vec3
	Model    string

	Size      float32 // edge length of the bounding cube at scale 1
	Scale     float32
	BaseScale float32
	Alive     bool
}

// New creates a live entity at unit scale.
func New(kind Kind, segment int, pos math.Vec3, size float32) *Spawnable {
	return &Spawnable{
		Kind:      kind,
		Segment:   segment,
		Position:  pos,
		Size:      size,
		Scale:     1,
		BaseScale: 1,
		Alive:     true,
	}
}

// NewPowerup creates a power-up of the given variant.
func NewPowerup(v Variant, segment int, pos math.Vec3, size float32) *Spawnable {
	e := New(KindPowerup, segment, pos, size)
	e.Variant = v
	return e
}

// Collidable reports whether the entity takes part in collision dispatch.
func (e *Spawnable) Collidable() bool {
	return e.Alive && e.Kind != KindVegetation
}

// Shrinkable reports whether the shrink effect applies to this entity.
func (e *Spawnable) Shrinkable() bool {
	return e.Kind == KindEnemy || e.Kind == KindCloud
}

// Bounds returns the world-space box for an entity whose segment origin is at origin.
func (e *Spawnable) Bounds(origin math.Vec3) physics.AABB {
	half := e.Size * e.Scale / 2
	return physics.CenteredAABB(origin.Add(e.Position), math.Vec3{X: half, Y: half, Z: half})
}

// WorldPosition returns the entity position given its segment origin.
func (e *Spawnable) WorldPosition(origin math.Vec3) math.Vec3 {
	return origin.Add(e.Position)
}
