// Package island streams terrain segments around the player.
//
// The manager keeps exactly two segments resident: the one the player is
// crossing and the one after it. When the player runs past the end of the
// current segment by the lookahead margin the window slides by one: the old
// segment and everything on it is released, the next one is promoted and a
// fresh one is generated behind it. The manager also owns the entities on
// those segments, collision dispatch against them and the timed effects
// that collisions start.
package island

import (
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/islandrun/internal/config"
	"github.com/Faultbox/islandrun/internal/engine/physics"
	"github.com/Faultbox/islandrun/internal/game/effects"
	"github.com/Faultbox/islandrun/internal/game/entity"
	"github.com/Faultbox/islandrun/internal/game/player"
	"github.com/Faultbox/islandrun/internal/game/terrain"
)

// Cue names sent to the CueSink.
const (
	CueCollect    = "collect"
	CueImpact     = "impact"
	CuePowerup    = "powerup"
	CueGameOver   = "gameover"
	CueBackground = "background"
)

// Generator builds terrain segments.
type Generator interface {
	Generate(index, vegetationCount, cloudCount int) (*terrain.Segment, error)
}

// CueSink plays fire-and-forget audio cues.
type CueSink interface {
	Cue(name string)
}

// ScoreSink displays the score.
type ScoreSink interface {
	SetScore(score int)
}

// Renderer owns the GPU side of segments and entities.
type Renderer interface {
	AddSegment(seg *terrain.Segment)
	RemoveSegment(seg *terrain.Segment)
	RemoveEntity(e *entity.Spawnable)
}

// Sinks bundles the manager's outputs. Nil members are ignored.
type Sinks struct {
	Cues     CueSink
	Score    ScoreSink
	Renderer Renderer
}

type nopSinks struct{}

func (nopSinks) Cue(string) {}
func (nopSinks) SetScore(int) {}
func (nopSinks) AddSegment(*terrain.Segment) {}
func (nopSinks) RemoveSegment(*terrain.Segment) {}
func (nopSinks) RemoveEntity(*entity.Spawnable) {}

func (s Sinks) withDefaults() Sinks {
	if s.Cues == nil {
		s.Cues = nopSinks{}
	}
	if s.Score == nil {
		s.Score = nopSinks{}
	}
	if s.Renderer == nil {
		s.Renderer = nopSinks{}
	}
	return s
}

// resident is an arena slot: a live segment and the bodies it added.
type resident struct {
	seg    *terrain.Segment
	bodies []physics.BodyID
}

// Manager owns the streaming window.
type Manager struct {
	cfg   *config.Config
	gen   Generator
	world *physics.World
	st    *player.State
	sinks Sinks
	rng   *rand.Rand
	log   *zap.Logger

	segments map[int]*resident
	current  int
	next     int
	level    int

	generated int
	entities  *entity.Registry
	sched     *effects.Scheduler
	clock     time.Duration
	closed    bool
}

// New generates and places the first two segments and populates the first.
func New(cfg *config.Config, gen Generator, world *physics.World, st *player.State, sinks Sinks, rng *rand.Rand, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		cfg:      cfg,
		gen:      gen,
		world:    world,
		st:       st,
		sinks:    sinks.withDefaults(),
		rng:      rng,
		log:      log,
		segments: make(map[int]*resident),
		entities: entity.NewRegistry(),
		sched:    effects.NewScheduler(),
	}

	first, err := m.spawnSegment(0, cfg.Streaming.SpawnZ+cfg.Streaming.StartAhead)
	if err != nil {
		return nil, err
	}
	if _, err := m.spawnSegment(1, first.seg.EndZ-cfg.Streaming.Gap); err != nil {
		m.dispose(0)
		return nil, err
	}
	m.current, m.next = 0, 1
	m.populate(first, m.level)

	m.sinks.Cues.Cue(CueBackground)
	m.sinks.Score.SetScore(st.Score)
	m.log.Info("island window ready",
		zap.Float32("start_z", first.seg.StartZ),
		zap.Float32("end_z", first.seg.EndZ),
		zap.Int("entities", m.entities.Count()),
		zap.Int("hazards_saturate_at", cfg.Population.Hazards.SaturationLevel()),
	)
	return m, nil
}

// spawnSegment generates segment index, places it, adds its bodies and
// registers its decoration.
func (m *Manager) spawnSegment(index int, startZ float32) (*resident, error) {
	pop := m.cfg.Population
	seg, err := m.gen.Generate(index, pop.Vegetation.Count(index), pop.Clouds.Count(index))
	if err != nil {
		return nil, fmt.Errorf("generating segment %d: %w", index, err)
	}
	m.generated++
	seg.Place(startZ)

	r := &resident{seg: seg}
	r.bodies = append(r.bodies, m.world.AddBody(&physics.Body{
		Type:     physics.Static,
		Position: seg.Origin(),
		Shape:    seg.Shape,
		Owner:    index,
	}))
	if seg.CapShape != nil {
		r.bodies = append(r.bodies, m.world.AddBody(&physics.Body{
			Type:     physics.Static,
			Position: seg.CapOrigin(),
			Shape:    seg.CapShape,
			Owner:    index,
		}))
	}

	for _, e := range seg.Vegetation {
		m.entities.Add(e)
	}
	for _, e := range seg.Clouds {
		e.Size = pop.CloudSize
		if m.st.EffectActive(effects.Shrink) {
			e.Scale = e.BaseScale * m.cfg.Effects.ShrinkFactor
		}
		m.entities.Add(e)
	}

	m.segments[index] = r
	m.sinks.Renderer.AddSegment(seg)
	m.log.Debug("segment placed",
		zap.Int("segment", index),
		zap.Float32("start_z", seg.StartZ),
		zap.Float32("end_z", seg.EndZ),
	)
	return r, nil
}

// Tick runs one frame: effect expiry, window advance, trailing disposal and
// collision dispatch.
func (m *Manager) Tick(dt float32) error {
	if m.closed {
		return nil
	}
	m.clock += time.Duration(float64(dt) * float64(time.Second))
	m.sched.Advance(m.clock)

	cur := m.segments[m.current]
	if m.st.Position.Z < cur.seg.EndZ-m.cfg.Streaming.Lookahead {
		if err := m.advance(); err != nil {
			return err
		}
	}

	m.disposeTrailing()
	m.collide()
	return nil
}

// advance slides the window by one segment.
func (m *Manager) advance() error {
	m.dispose(m.current)

	m.current = m.next
	m.level++
	cur := m.segments[m.current]

	nxt, err := m.spawnSegment(m.current+1, cur.seg.EndZ-m.cfg.Streaming.Gap)
	if err != nil {
		return err
	}
	m.next = nxt.seg.Index
	m.populate(cur, m.level)

	m.log.Info("island window advanced",
		zap.Int("segment", m.current),
		zap.Int("level", m.level),
		zap.Int("score", m.st.Score),
		zap.Int("entities", m.entities.Count()),
	)
	return nil
}

// dispose releases a segment's bodies, render handles and entities.
func (m *Manager) dispose(index int) {
	r, ok := m.segments[index]
	if !ok {
		return
	}
	for _, id := range r.bodies {
		m.world.RemoveBody(id)
	}
	for _, e := range m.entities.BySegment(index) {
		m.destroy(e)
	}
	m.sinks.Renderer.RemoveSegment(r.seg)
	r.seg.Release()
	delete(m.segments, index)
	m.log.Debug("segment disposed", zap.Int("segment", index))
}

// destroy unregisters an entity and releases its render resources. An
// entity already gone from the registry is left alone.
func (m *Manager) destroy(e *entity.Spawnable) {
	if m.entities.Get(e.ID) != e {
		return
	}
	m.entities.Remove(e.ID)
	m.sinks.Renderer.RemoveEntity(e)
}

// disposeTrailing destroys entities that fell behind the player.
func (m *Manager) disposeTrailing() {
	limit := m.st.Position.Z + m.cfg.Streaming.TrailingDistance
	for _, e := range m.entities.All() {
		r, ok := m.segments[e.Segment]
		if !ok {
			continue
		}
		if e.WorldPosition(r.seg.Origin()).Z > limit {
			m.destroy(e)
		}
	}
}

// Current returns the segment the window is on.
func (m *Manager) Current() *terrain.Segment {
	return m.segments[m.current].seg
}

// Next returns the segment after Current.
func (m *Manager) Next() *terrain.Segment {
	return m.segments[m.next].seg
}

// Level returns the progression level.
func (m *Manager) Level() int {
	return m.level
}

// Generated returns how many segments have been generated.
func (m *Manager) Generated() int {
	return m.generated
}

// Clock returns the time accumulated by Tick.
func (m *Manager) Clock() time.Duration {
	return m.clock
}

// Segment returns a resident segment by index.
func (m *Manager) Segment(index int) (*terrain.Segment, bool) {
	r, ok := m.segments[index]
	if !ok {
		return nil, false
	}
	return r.seg, true
}

// SegmentAt returns the resident segment spanning world z.
func (m *Manager) SegmentAt(z float32) (*terrain.Segment, bool) {
	for _, index := range []int{m.current, m.next} {
		if r, ok := m.segments[index]; ok && r.seg.Contains(z) {
			return r.seg, true
		}
	}
	return nil, false
}

// Entities returns a snapshot of the live entities.
func (m *Manager) Entities() []*entity.Spawnable {
	return m.entities.All()
}

// Close releases both resident segments and cancels pending effects.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	m.sched.Reset()
	for _, index := range []int{m.current, m.next} {
		m.dispose(index)
	}
	m.entities.Clear()
	m.closed = true
}
