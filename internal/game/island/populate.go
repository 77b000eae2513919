package island

import (
	"go.uber.org/zap"

	"github.com/Faultbox/islandrun/internal/game/effects"
	"github.com/Faultbox/islandrun/internal/game/entity"
	"github.com/Faultbox/islandrun/pkg/math"
)

// Population is the entity mix for one level.
type Population struct {
	Hazards      int
	Collectibles int
	Powerups     int
	Vegetation   int
	Clouds       int
}

// PopulationAt returns the clamped entity counts for a progression level.
func (m *Manager) PopulationAt(level int) Population {
	pop := m.cfg.Population
	return Population{
		Hazards:      pop.Hazards.Count(level),
		Collectibles: pop.Collectibles.Count(level),
		Powerups:     pop.Powerups.Count(level),
		Vegetation:   pop.Vegetation.Count(level),
		Clouds:       pop.Clouds.Count(level),
	}
}

// populate scatters hazards, collectibles and power-ups over a segment's
// surface. Entities hover above a random mesh vertex.
func (m *Manager) populate(r *resident, level int) {
	counts := m.PopulationAt(level)
	cfg := m.cfg.Population
	shrunk := m.st.EffectActive(effects.Shrink)

	spawn := func(e *entity.Spawnable) {
		if shrunk && e.Shrinkable() {
			e.Scale = e.BaseScale * m.cfg.Effects.ShrinkFactor
		}
		e.Model = e.Kind.String()
		r.seg.Entities = append(r.seg.Entities, e)
		m.entities.Add(e)
	}

	for i := 0; i < counts.Hazards; i++ {
		spawn(entity.New(entity.KindEnemy, r.seg.Index, m.surfacePoint(r, cfg.HazardSize), cfg.HazardSize))
	}
	for i := 0; i < counts.Collectibles; i++ {
		spawn(entity.New(entity.KindCollectible, r.seg.Index, m.surfacePoint(r, cfg.CollectibleSize), cfg.CollectibleSize))
	}
	for i := 0; i < counts.Powerups; i++ {
		v := entity.PowerupVariants[m.rng.IntN(len(entity.PowerupVariants))]
		spawn(entity.NewPowerup(v, r.seg.Index, m.surfacePoint(r, cfg.PowerupSize), cfg.PowerupSize))
	}

	m.log.Debug("segment populated",
		zap.Int("segment", r.seg.Index),
		zap.Int("level", level),
		zap.Int("hazards", counts.Hazards),
		zap.Int("collectibles", counts.Collectibles),
		zap.Int("powerups", counts.Powerups),
	)
}

// surfacePoint picks a random vertex and lifts it so an entity of the given
// size floats HoverHeight above the ground.
func (m *Manager) surfacePoint(r *resident, size float32) math.Vec3 {
	msh := r.seg.Mesh
	p := msh.Position(m.rng.IntN(msh.VertexCount()))
	p.Y += m.cfg.Population.HoverHeight + size/2
	return p
}
