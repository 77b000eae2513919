package island

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/islandrun/internal/game/effects"
	"github.com/Faultbox/islandrun/internal/game/entity"
)

// collide tests the player's box against the current segment's entities
// and every resident cloud.
func (m *Manager) collide() {
	if m.st.Terminal {
		return
	}
	box := m.st.Bounds(m.cfg.Locomotion.Radius, m.cfg.Streaming.PlayerInset)
	invulnerable := m.st.EffectActive(effects.Invulnerability)

	for _, e := range m.entities.All() {
		if !e.Collidable() {
			continue
		}
		if e.Segment != m.current && e.Kind != entity.KindCloud {
			continue
		}
		if invulnerable && (e.Kind == entity.KindCloud || e.Kind == entity.KindEnemy) {
			continue
		}
		r, ok := m.segments[e.Segment]
		if !ok || !e.Bounds(r.seg.Origin()).Overlaps(box) {
			continue
		}

		m.hit(e)
		if m.st.Terminal {
			return
		}
	}
}

// hit applies the effect of touching e.
func (m *Manager) hit(e *entity.Spawnable) {
	switch e.Kind {
	case entity.KindCollectible:
		m.destroy(e)
		m.st.AddScore(1)
		m.sinks.Cues.Cue(CueCollect)
	case entity.KindEnemy:
		m.destroy(e)
		m.st.AddScore(-1)
		m.sinks.Cues.Cue(CueImpact)
	case entity.KindPowerup:
		m.destroy(e)
		m.sinks.Cues.Cue(CuePowerup)
		m.applyPowerup(e.Variant)
	case entity.KindCloud:
		// Clouds stay; the run ends.
		m.st.Terminal = true
		m.st.GravityEnabled = false
		m.sinks.Cues.Cue(CueGameOver)
		m.log.Info("run over", zap.Int("score", m.st.Score), zap.Int("level", m.level))
	case entity.KindVegetation:
		return
	}
	m.sinks.Score.SetScore(m.st.Score)
	m.log.Debug("collision",
		zap.Stringer("kind", e.Kind),
		zap.Stringer("variant", e.Variant),
		zap.Int("score", m.st.Score),
	)
}

func (m *Manager) applyPowerup(v entity.Variant) {
	switch v {
	case entity.VariantScoreDoubler:
		m.st.Score *= m.cfg.Effects.ScoreMultiplier
	case entity.VariantInvulnerability:
		m.startEffect(effects.Invulnerability, m.cfg.Effects.InvulnerabilityDuration, nil)
	case entity.VariantShrink:
		m.setShrink(m.cfg.Effects.ShrinkFactor)
		m.startEffect(effects.Shrink, m.cfg.Effects.ShrinkDuration, func() { m.setShrink(1) })
	case entity.VariantNone:
	}
}

// startEffect (re)starts a timed effect. A running one is cancelled first so
// its old expiry can never fire.
func (m *Manager) startEffect(kind effects.Kind, d time.Duration, expire func()) {
	at := m.clock + d
	m.st.Effects[kind] = at
	m.sched.Schedule(kind, at, func() {
		delete(m.st.Effects, kind)
		if expire != nil {
			expire()
		}
		m.log.Debug("effect expired", zap.Stringer("effect", kind))
	})
	m.log.Debug("effect started", zap.Stringer("effect", kind), zap.Duration("until", at))
}

// setShrink scales every hazard and cloud to factor times its base scale.
func (m *Manager) setShrink(factor float32) {
	for _, e := range m.entities.All() {
		if e.Shrinkable() {
			e.Scale = e.BaseScale * factor
		}
	}
}
