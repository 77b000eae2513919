// Package locomotion implements the ground-following player controller.
//
// Every tick the controller integrates the player forward, casts four rays
// against the resident terrain and decides from the hits alone whether the
// player is grounded. Grounded players lean onto the surface normal and are
// kept out of the ground; airborne players pitch along their velocity.
package locomotion

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/islandrun/internal/config"
	"github.com/Faultbox/islandrun/internal/engine/physics"
	"github.com/Faultbox/islandrun/internal/game/player"
	"github.com/Faultbox/islandrun/pkg/math"
)

// RayCaster answers ray queries against the terrain.
type RayCaster interface {
	RayCast(r physics.Ray, maxDist float32) (physics.Hit, bool)
}

// Mode is the controller state.
type Mode uint8

const (
	Airborne Mode = iota
	Grounded
)

func (m Mode) String() string {
	if m == Grounded {
		return "grounded"
	}
	return "airborne"
}

// Probe directions in the player's frame.
var (
	probeDown     = math.Down
	probeDiagonal = math.Vec3{Y: -1, Z: -1}.Normalize()
	probeForward  = math.Forward
)

// Controller drives a player.State from ray casts.
type Controller struct {
	cfg    config.LocomotionConfig
	caster RayCaster
	st     *player.State
	log    *zap.Logger

	mode      Mode
	contacted bool // set on the first ground contact of the session

	// Transitions counts grounded/airborne changes. Teleports counts
	// fell-through recoveries.
	Transitions int
	Teleports   int
}

// NewController creates an airborne controller for st.
func NewController(cfg config.LocomotionConfig, caster RayCaster, st *player.State, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		cfg:    cfg,
		caster: caster,
		st:     st,
		log:    log,
		mode:   Airborne,
	}
}

// State returns the current mode.
func (c *Controller) State() Mode {
	return c.mode
}

// reach is the range of the three bounded probes.
func (c *Controller) reach() float32 {
	return c.cfg.Radius + 5
}

// integrationError is how far a single tick of gravity can carry the player.
func (c *Controller) integrationError(dt float32) float32 {
	return 0.5 * c.cfg.Gravity * c.cfg.DescendMultiplier * dt * dt
}

// Update advances the player by dt seconds.
func (c *Controller) Update(dt float32, in player.Input) {
	st := c.st
	p := st.Position
	v := st.Velocity
	a := st.VerticalAcceleration

	// Integrate
	p.Y += v.Y*dt + 0.5*a*dt*dt
	v.Y += a * dt
	p.Z += v.Z * dt

	// Gravity for the next step
	switch {
	case !st.GravityEnabled || st.Grounded:
		a = 0
	case in.Descend:
		a = -c.cfg.Gravity * c.cfg.DescendMultiplier
	default:
		a = -c.cfg.Gravity
	}

	// Forward motion never stalls or reverses.
	if v.Z > -c.cfg.MoveSpeed {
		v.Z = -c.cfg.MoveSpeed
	}

	if in.Left {
		p.X -= c.cfg.TurnSpeed * dt
	}
	if in.Right {
		p.X += c.cfg.TurnSpeed * dt
	}

	// Probe the terrain
	rot := st.Orientation
	downDir := rot.Rotate(probeDown)
	down, downOK := c.caster.RayCast(physics.NewRay(p, downDir), c.reach())
	diag, diagOK := c.caster.RayCast(physics.NewRay(p, rot.Rotate(probeDiagonal)), c.reach())
	fwd, fwdOK := c.caster.RayCast(physics.NewRay(p, rot.Rotate(probeForward)), c.reach())

	var nearest physics.Hit
	found := false
	for _, h := range []struct {
		hit physics.Hit
		ok  bool
	}{{down, downOK}, {diag, diagOK}, {fwd, fwdOK}} {
		if h.ok && (!found || h.hit.Distance < nearest.Distance) {
			nearest = h.hit
			found = true
		}
	}
	grounded := found && nearest.Distance <= c.cfg.Radius+1

	if grounded {
		target := math.QuatFromTo(math.Up, nearest.Normal)
		if !c.contacted {
			st.Orientation = target
			c.contacted = true
			c.log.Debug("first ground contact", zap.Float32("z", p.Z))
		} else {
			st.Orientation = st.Orientation.RotateTowards(target, c.cfg.MaxAngularStep)
		}

		if downOK {
			if pen := c.cfg.Radius - down.Distance; pen > c.integrationError(dt) {
				p = p.Sub(downDir.Scale(pen))
			}
		}

		// Follow the surface instead of sinking into the next rise.
		n := nearest.Normal
		if n.Y > 1e-3 {
			if tangent := (-n.Z / n.Y) * v.Z; v.Y < tangent {
				v.Y = tangent
			}
		}
	} else {
		pitch := float32(gomath.Atan2(float64(v.Y), float64(math.Abs(v.Z))))
		target := math.QuatFromAxisAngle(math.Right, pitch)
		st.Orientation = st.Orientation.RotateTowards(target, c.cfg.MaxAngularStep)
	}

	// Fell through the world: only the up probe can see the surface.
	if up, ok := c.caster.RayCast(physics.NewRay(p, math.Up), physics.Unbounded); ok {
		p.Y = up.Point.Y + c.cfg.Radius
		if v.Y < 0 {
			v.Y = 0
		}
		c.Teleports++
		c.log.Warn("player below terrain, teleported",
			zap.Float32("z", p.Z),
			zap.Float32("y", p.Y),
		)
	}

	mode := Airborne
	if grounded {
		mode = Grounded
	}
	if mode != c.mode {
		c.Transitions++
		c.log.Debug("locomotion state changed",
			zap.Stringer("from", c.mode),
			zap.Stringer("to", mode),
		)
		c.mode = mode
	}

	st.Position = p
	st.Velocity = v
	st.VerticalAcceleration = a
	st.Grounded = grounded
}
