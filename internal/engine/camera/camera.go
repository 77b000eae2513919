// Package camera provides the chase camera that trails the player.
package camera

import (
	gomath "math"

	"github.com/Faultbox/islandrun/pkg/math"
)

// ChaseCamera follows a target from behind and above, looking ahead along
// the direction of travel.
type ChaseCamera struct {
	Pitch     float32 // Angle above the target (radians)
	Distance  float32 // Distance from target
	LookAhead float32 // How far past the target to aim
	Lift      float32 // Aim point height above the target

	// Follow smoothing per second; 0 snaps.
	Stiffness float32

	FovY      float32
	NearPlane float32
	FarPlane  float32

	pos     math.Vec3
	settled bool
}

// NewChaseCamera creates a chase camera with defaults suited to the run.
func NewChaseCamera() *ChaseCamera {
	return &ChaseCamera{
		Pitch:     0.42, // ~24 degrees
		Distance:  35,
		LookAhead: 30,
		Lift:      2,
		Stiffness: 8,
		FovY:      60 * gomath.Pi / 180,
		NearPlane: 0.5,
		FarPlane:  3000,
	}
}

// Desired returns where the camera wants to be for a target.
func (c *ChaseCamera) Desired(target math.Vec3) math.Vec3 {
	up := c.Distance * float32(gomath.Sin(float64(c.Pitch)))
	back := c.Distance * float32(gomath.Cos(float64(c.Pitch)))
	return target.Add(math.Forward.Scale(-back)).Add(math.Up.Scale(up))
}

// Follow moves the camera towards its desired position. The first call
// snaps.
func (c *ChaseCamera) Follow(target math.Vec3, dt float32) {
	want := c.Desired(target)
	if !c.settled || c.Stiffness <= 0 {
		c.pos = want
		c.settled = true
		return
	}
	t := 1 - float32(gomath.Exp(float64(-c.Stiffness*dt)))
	c.pos = c.pos.Lerp(want, t)
	// Never fall behind by more than the follow distance along travel.
	if lag := c.pos.Z - want.Z; lag > c.Distance {
		c.pos.Z = want.Z + c.Distance
	}
}

// Position returns the current camera position.
func (c *ChaseCamera) Position() math.Vec3 {
	return c.pos
}

// ViewMatrix returns the view matrix looking ahead of target.
func (c *ChaseCamera) ViewMatrix(target math.Vec3) math.Mat4 {
	aim := target.Add(math.Forward.Scale(c.LookAhead)).Add(math.Up.Scale(c.Lift))
	return math.LookAt(c.pos, aim, math.Up)
}

// ViewProjection returns projection * view for the given aspect ratio.
func (c *ChaseCamera) ViewProjection(target math.Vec3, aspect float32) math.Mat4 {
	proj := math.Perspective(c.FovY, aspect, c.NearPlane, c.FarPlane)
	return proj.Mul(c.ViewMatrix(target))
}

// Reset makes the next Follow snap.
func (c *ChaseCamera) Reset() {
	c.settled = false
}
