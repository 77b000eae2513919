// Package game wires one run together: terrain synthesis, the physics world,
// the locomotion controller and the island manager, stepped from a single
// frame loop.
package game

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/islandrun/internal/config"
	"github.com/Faultbox/islandrun/internal/engine/physics"
	"github.com/Faultbox/islandrun/internal/game/island"
	"github.com/Faultbox/islandrun/internal/game/locomotion"
	"github.com/Faultbox/islandrun/internal/game/player"
	"github.com/Faultbox/islandrun/internal/game/terrain"
	"github.com/Faultbox/islandrun/pkg/math"
)

// Game is one run.
type Game struct {
	cfg   *config.Config
	runID uuid.UUID
	seed  int64
	log   *zap.Logger

	world      *physics.World
	synth      *terrain.Synthesizer
	player     *player.State
	controller *locomotion.Controller
	islands    *island.Manager

	step        time.Duration
	accumulator time.Duration
	frames      int
}

// New creates a run. A zero terrain seed picks one from the clock.
func New(cfg *config.Config, sinks island.Sinks, log *zap.Logger) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		cfg:   cfg,
		runID: uuid.New(),
		seed:  cfg.Terrain.Seed,
		step:  cfg.Streaming.PhysicsStep,
		world: physics.NewWorld(),
	}
	if g.seed == 0 {
		g.seed = time.Now().UnixNano()
	}
	g.log = log.With(zap.String("run", g.runID.String()))

	rng := rand.New(rand.NewPCG(uint64(g.seed), uint64(g.seed)>>1|1))

	var err error
	g.synth, err = terrain.NewSynthesizer(cfg.Terrain, rng, g.log.Named("terrain"))
	if err != nil {
		return nil, fmt.Errorf("creating synthesizer: %w", err)
	}

	spawn := math.Vec3{Y: cfg.Locomotion.SpawnHeight, Z: cfg.Streaming.SpawnZ}
	g.player = player.NewState(spawn)
	g.player.Velocity.Z = -cfg.Locomotion.MoveSpeed

	g.islands, err = island.New(cfg, g.synth, g.world, g.player, sinks, rng, g.log.Named("island"))
	if err != nil {
		return nil, fmt.Errorf("creating islands: %w", err)
	}

	// Drop in above the terrain under the spawn point.
	probe := physics.NewRay(math.Vec3{Y: 1e4, Z: spawn.Z}, math.Down)
	if hit, ok := g.world.RayCast(probe, physics.Unbounded); ok {
		g.player.Position.Y = hit.Point.Y + cfg.Locomotion.SpawnHeight
	}

	g.player.Body = g.world.AddBody(&physics.Body{
		Type:          physics.Dynamic,
		Mass:          1,
		FixedRotation: true,
		Position:      g.player.Position,
		Rotation:      g.player.Orientation,
	})
	g.controller = locomotion.NewController(cfg.Locomotion, g.world, g.player, g.log.Named("locomotion"))

	g.log.Info("run started",
		zap.Int64("seed", g.seed),
		zap.Float32("spawn_y", g.player.Position.Y),
		zap.Duration("physics_step", g.step),
	)
	return g, nil
}

// Update advances the run by one frame. Physics runs in fixed steps; the
// island manager ticks once per frame. Nothing moves after the run ends.
func (g *Game) Update(frameDt float32, in player.Input) error {
	if g.player.Terminal {
		return nil
	}
	g.frames++

	g.accumulator += time.Duration(float64(frameDt) * float64(time.Second))
	stepDt := float32(g.step.Seconds())
	for n := 0; g.accumulator >= g.step; n++ {
		if n == g.cfg.Streaming.MaxSubsteps {
			// Too far behind; drop the backlog rather than spiral.
			g.log.Debug("physics backlog dropped", zap.Duration("backlog", g.accumulator))
			g.accumulator = 0
			break
		}
		g.controller.Update(stepDt, in)
		g.accumulator -= g.step
	}

	if body, ok := g.world.Body(g.player.Body); ok {
		body.Position = g.player.Position
		body.Rotation = g.player.Orientation
	}

	if err := g.islands.Tick(frameDt); err != nil {
		return fmt.Errorf("island tick: %w", err)
	}
	if g.player.Terminal {
		g.log.Info("run ended",
			zap.Int("score", g.player.Score),
			zap.Int("level", g.islands.Level()),
			zap.Int("frames", g.frames),
			zap.Int("transitions", g.controller.Transitions),
			zap.Int("teleports", g.controller.Teleports),
		)
	}
	return nil
}

// Player returns the player state.
func (g *Game) Player() *player.State { return g.player }

// Islands returns the island manager.
func (g *Game) Islands() *island.Manager { return g.islands }

// Controller returns the locomotion controller.
func (g *Game) Controller() *locomotion.Controller { return g.controller }

// World returns the physics world.
func (g *Game) World() *physics.World { return g.world }

// Over reports whether the run has ended.
func (g *Game) Over() bool { return g.player.Terminal }

// RunID returns the run identifier used in logs.
func (g *Game) RunID() string { return g.runID.String() }

// Seed returns the terrain seed in use.
func (g *Game) Seed() int64 { return g.seed }

// Close releases the resident segments.
func (g *Game) Close() {
	g.islands.Close()
	g.world.RemoveBody(g.player.Body)
	g.log.Info("run closed", zap.Int("score", g.player.Score))
}
