// Package config handles game configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/islandrun/internal/game/difficulty"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Config holds all game settings.
type Config struct {
	Graphics   GraphicsConfig   `yaml:"graphics"`
	Audio      AudioConfig      `yaml:"audio"`
	Terrain    TerrainConfig    `yaml:"terrain"`
	Locomotion LocomotionConfig `yaml:"locomotion"`
	Streaming  StreamingConfig  `yaml:"streaming"`
	Population PopulationConfig `yaml:"population"`
	Effects    EffectsConfig    `yaml:"effects"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	MasterVolume float64           `yaml:"master_volume"`
	MusicVolume  float64           `yaml:"music_volume"`
	SFXVolume    float64           `yaml:"sfx_volume"`
	Muted        bool              `yaml:"muted"`
	Cues         map[string]string `yaml:"cues"` // cue name -> WAV path
}

// TerrainConfig controls segment synthesis.
type TerrainConfig struct {
	Seed              int64   `yaml:"seed"` // 0 picks a time-based seed
	Width             float32 `yaml:"width"`
	WidthSegments     int     `yaml:"width_segments"`
	SampleStep        float32 `yaml:"sample_step"`      // curve sample spacing and mesh row spacing
	SampleTolerance   float32 `yaml:"sample_tolerance"` // vertex to sample match window
	ControlPointCount int     `yaml:"control_points"`
	ZStepBase         float32 `yaml:"z_step_base"`
	ZStepJitter       float32 `yaml:"z_step_jitter"`
	YStepBase         float32 `yaml:"y_step_base"`

	// Amplitude is the random part of each vertical step, by segment index.
	Amplitude difficulty.Curve `yaml:"amplitude"`

	CapLength   float32 `yaml:"cap_length"`
	CapDrop     float32 `yaml:"cap_drop"`
	CapSegments int     `yaml:"cap_segments"`

	Textures         []string `yaml:"textures"`
	VegetationModels []string `yaml:"vegetation_models"`
	CloudModels      []string `yaml:"cloud_models"`

	// Cloud placement above the sampled vertex, by segment index.
	CloudHeight difficulty.Curve `yaml:"cloud_height"`
	CloudSpread difficulty.Curve `yaml:"cloud_spread"`
}

// LocomotionConfig holds ground-following controller tuning.
type LocomotionConfig struct {
	Radius            float32 `yaml:"radius"`
	Gravity           float32 `yaml:"gravity"`
	DescendMultiplier float32 `yaml:"descend_multiplier"`
	MoveSpeed         float32 `yaml:"move_speed"` // forward speed floor
	TurnSpeed         float32 `yaml:"turn_speed"`
	MaxAngularStep    float32 `yaml:"max_angular_step"` // radians per tick
	SpawnHeight       float32 `yaml:"spawn_height"`
}

// StreamingConfig holds island window settings.
type StreamingConfig struct {
	SpawnZ           float32       `yaml:"spawn_z"`
	StartAhead       float32       `yaml:"start_ahead"`
	Gap              float32       `yaml:"gap"`
	Lookahead        float32       `yaml:"lookahead"`
	TrailingDistance float32       `yaml:"trailing_distance"`
	PlayerInset      float32       `yaml:"player_inset"`
	PhysicsStep      time.Duration `yaml:"physics_step"`
	MaxSubsteps      int           `yaml:"max_substeps"`
}

// PopulationConfig holds the per-level entity counts and entity sizes.
type PopulationConfig struct {
	Hazards      difficulty.Curve `yaml:"hazards"`
	Collectibles difficulty.Curve `yaml:"collectibles"`
	Powerups     difficulty.Curve `yaml:"powerups"`
	Vegetation   difficulty.Curve `yaml:"vegetation"`
	Clouds       difficulty.Curve `yaml:"clouds"`

	HoverHeight     float32 `yaml:"hover_height"`
	HazardSize      float32 `yaml:"hazard_size"`
	CollectibleSize float32 `yaml:"collectible_size"`
	PowerupSize     float32 `yaml:"powerup_size"`
	CloudSize       float32 `yaml:"cloud_size"`
}

// EffectsConfig holds power-up tuning.
type EffectsConfig struct {
	ScoreMultiplier         int           `yaml:"score_multiplier"`
	InvulnerabilityDuration time.Duration `yaml:"invulnerability_duration"`
	ShrinkDuration          time.Duration `yaml:"shrink_duration"`
	ShrinkFactor            float32       `yaml:"shrink_factor"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Audio: AudioConfig{
			MasterVolume: 0.8,
			MusicVolume:  0.7,
			SFXVolume:    0.8,
			Muted:        false,
			Cues: map[string]string{
				"collect":    "sounds/collect.wav",
				"impact":     "sounds/impact.wav",
				"powerup":    "sounds/powerup.wav",
				"gameover":   "sounds/gameover.wav",
				"background": "sounds/background.wav",
			},
		},
		Terrain: TerrainConfig{
			Width:             60,
			WidthSegments:     12,
			SampleStep:        2,
			SampleTolerance:   0.5,
			ControlPointCount: 20,
			ZStepBase:         80,
			ZStepJitter:       60,
			YStepBase:         10,
			Amplitude:         difficulty.Curve{Base: 10, PerLevel: 4, Min: 0, Max: 40},
			CapLength:         30,
			CapDrop:           40,
			CapSegments:       4,
			Textures:          []string{"textures/grass.png", "textures/sand.png"},
			VegetationModels:  []string{"models/palm.glb", "models/bush.glb"},
			CloudModels:       []string{"models/cloud.glb"},
			CloudHeight:       difficulty.Curve{Base: 60, PerLevel: -4, Min: 15, Max: 60},
			CloudSpread:       difficulty.Curve{Base: 25, PerLevel: -2, Min: 8, Max: 25},
		},
		Locomotion: LocomotionConfig{
			Radius:            2,
			Gravity:           60,
			DescendMultiplier: 3,
			MoveSpeed:         40,
			TurnSpeed:         15,
			MaxAngularStep:    0.05,
			SpawnHeight:       20,
		},
		Streaming: StreamingConfig{
			SpawnZ:           0,
			StartAhead:       950,
			Gap:              60,
			Lookahead:        400,
			TrailingDistance: 50,
			PlayerInset:      0.5,
			PhysicsStep:      time.Second / 60,
			MaxSubsteps:      5,
		},
		Population: PopulationConfig{
			Hazards:         difficulty.Curve{Base: 10, PerLevel: 5, Min: 10, Max: 40},
			Collectibles:    difficulty.Curve{Base: 60, PerLevel: -4, Min: 20, Max: 60},
			Powerups:        difficulty.Curve{Base: 6, PerLevel: -0.5, Min: 2, Max: 6},
			Vegetation:      difficulty.Curve{Base: 40, PerLevel: 10, Min: 40, Max: 120},
			Clouds:          difficulty.Curve{Base: 4, PerLevel: 2, Min: 4, Max: 24},
			HoverHeight:     2,
			HazardSize:      3,
			CollectibleSize: 1.5,
			PowerupSize:     2,
			CloudSize:       8,
		},
		Effects: EffectsConfig{
			ScoreMultiplier:         2,
			InvulnerabilityDuration: 8 * time.Second,
			ShrinkDuration:          10 * time.Second,
			ShrinkFactor:            0.5,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks ranges the game relies on.
func (c *Config) Validate() error {
	t := c.Terrain
	switch {
	case t.Width <= 0 || t.WidthSegments < 1:
		return fmt.Errorf("%w: terrain width %v / segments %d", ErrInvalid, t.Width, t.WidthSegments)
	case t.SampleStep <= 0:
		return fmt.Errorf("%w: terrain sample_step must be positive", ErrInvalid)
	case t.SampleTolerance < 0:
		return fmt.Errorf("%w: terrain sample_tolerance must not be negative", ErrInvalid)
	case t.ControlPointCount < 2 || t.ControlPointCount > 20:
		return fmt.Errorf("%w: terrain control_points %d outside [2, 20]", ErrInvalid, t.ControlPointCount)
	case t.ZStepBase <= 0 || t.ZStepJitter < 0:
		return fmt.Errorf("%w: terrain z steps must be positive", ErrInvalid)
	case t.CapLength <= 0 || t.CapSegments < 1:
		return fmt.Errorf("%w: terrain cap size", ErrInvalid)
	}

	l := c.Locomotion
	if l.Radius <= 0 || l.MoveSpeed <= 0 || l.Gravity < 0 || l.MaxAngularStep <= 0 {
		return fmt.Errorf("%w: locomotion radius, move_speed, gravity and max_angular_step", ErrInvalid)
	}

	s := c.Streaming
	if s.Lookahead < 0 || s.TrailingDistance < 0 || s.PhysicsStep <= 0 || s.MaxSubsteps < 1 {
		return fmt.Errorf("%w: streaming lookahead, trailing_distance, physics_step and max_substeps", ErrInvalid)
	}

	curves := map[string]difficulty.Curve{
		"terrain.amplitude":       t.Amplitude,
		"terrain.cloud_height":    t.CloudHeight,
		"terrain.cloud_spread":    t.CloudSpread,
		"population.hazards":      c.Population.Hazards,
		"population.collectibles": c.Population.Collectibles,
		"population.powerups":     c.Population.Powerups,
		"population.vegetation":   c.Population.Vegetation,
		"population.clouds":       c.Population.Clouds,
	}
	for name, curve := range curves {
		if err := curve.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
		}
		if curve.Min < 0 {
			return fmt.Errorf("%w: %s: negative minimum", ErrInvalid, name)
		}
	}

	if c.Effects.ShrinkFactor <= 0 || c.Effects.ShrinkFactor > 1 {
		return fmt.Errorf("%w: effects shrink_factor %v outside (0, 1]", ErrInvalid, c.Effects.ShrinkFactor)
	}
	return nil
}
