// Package main is the entry point for the IslandRun client.
package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/islandrun/internal/config"
	"github.com/Faultbox/islandrun/internal/engine/audio"
	"github.com/Faultbox/islandrun/internal/engine/input"
	"github.com/Faultbox/islandrun/internal/engine/renderer"
	"github.com/Faultbox/islandrun/internal/engine/window"
	"github.com/Faultbox/islandrun/internal/game"
	"github.com/Faultbox/islandrun/internal/game/island"
	"github.com/Faultbox/islandrun/internal/logger"
)

// client owns the platform side of a run: window, GL, audio and input.
type client struct {
	cfg   *config.Config
	win   *window.Window
	rend  *renderer.Renderer
	in    *input.Input
	sound *audio.Player
	run   *game.Game
}

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== IslandRun ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	c, err := newClient(cfg)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		os.Exit(1)
	}
	defer c.close()

	if err := c.loop(); err != nil {
		logger.Error("run error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("closed normally")
}

func newClient(cfg *config.Config) (*client, error) {
	c := &client{cfg: cfg, in: input.New(input.DefaultBindings())}

	var err error
	c.win, err = window.New("IslandRun", cfg.Graphics, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	w, h := c.win.Size()
	c.rend, err = renderer.New(w, h, logger.Named("renderer"))
	if err != nil {
		c.win.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	c.sound = audio.New(cfg.Audio, logger.Named("audio"))
	c.sound.Load()
	if err := c.sound.Init(); err != nil {
		// A missing audio device is not fatal.
		logger.Warn("audio disabled", zap.Error(err))
	}

	if err := c.start(); err != nil {
		c.close()
		return nil, err
	}
	return c, nil
}

// start begins a fresh run, replacing any previous one.
func (c *client) start() error {
	if c.run != nil {
		c.run.Close()
	}
	g, err := game.New(c.cfg, island.Sinks{
		Cues:     c.sound,
		Score:    c.win,
		Renderer: c.rend,
	}, logger.Log)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	c.run = g
	return nil
}

func (c *client) loop() error {
	last := time.Now()
	frames := 0
	fpsTimer := last

	for {
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		if c.in.Update() {
			return nil
		}
		for _, e := range c.in.Events() {
			if e.Type == input.EventWindowResize {
				c.rend.Resize(e.Width, e.Height)
			}
		}
		if c.in.MutePressed() {
			c.toggleMute()
		}
		if c.run.Over() && c.in.RestartPressed() {
			if err := c.start(); err != nil {
				return err
			}
		}

		if err := c.run.Update(dt, c.in.State()); err != nil {
			return err
		}
		c.win.SetLevel(c.run.Islands().Level())

		c.rend.Draw(c.run.Player(), dt)
		c.win.SwapBuffers()

		frames++
		if elapsed := now.Sub(fpsTimer); elapsed >= 5*time.Second {
			logger.Debug("frame stats",
				zap.String("run", c.run.RunID()),
				zap.Float64("fps", float64(frames)/elapsed.Seconds()),
				zap.Int("level", c.run.Islands().Level()),
				zap.Int("entities", len(c.run.Islands().Entities())),
			)
			frames = 0
			fpsTimer = now
		}
	}
}

func (c *client) close() {
	if c.run != nil {
		c.run.Close()
		c.run = nil
	}
	if c.sound != nil {
		c.sound.Close()
	}
	if c.rend != nil {
		c.rend.Close()
	}
	if c.win != nil {
		c.win.Close()
	}
}

// toggleMute flips audio and stores the choice in the user's config file.
func (c *client) toggleMute() {
	muted := !c.sound.Muted()
	c.sound.SetMuted(muted)
	c.cfg.Audio.Muted = muted
	if err := config.Update(func(cfg *config.Config) { cfg.Audio.Muted = muted }); err != nil {
		logger.Warn("failed to save mute setting", zap.Error(err))
	}
}
