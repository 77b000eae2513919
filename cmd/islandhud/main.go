// Command islandhud runs IslandRun inside a Dear ImGui window: the scene is
// drawn offscreen and shown behind a HUD with score, island level and
// effect timers.
package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/islandrun/internal/config"
	"github.com/Faultbox/islandrun/internal/engine/audio"
	"github.com/Faultbox/islandrun/internal/engine/framebuffer"
	"github.com/Faultbox/islandrun/internal/engine/renderer"
	"github.com/Faultbox/islandrun/internal/engine/ui"
	"github.com/Faultbox/islandrun/internal/game"
	"github.com/Faultbox/islandrun/internal/game/island"
	"github.com/Faultbox/islandrun/internal/logger"
)

type host struct {
	cfg     *config.Config
	backend *ui.Backend
	rend    *renderer.Renderer
	fb      *framebuffer.Framebuffer
	sound   *audio.Player
	hud     *ui.HUD
	keys    ui.Keys
	run     *game.Game

	last time.Time
	err  error
}

func main() {
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

	logger.Info("=== IslandRun (HUD) ===")

	h, err := newHost(cfg)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		os.Exit(1)
	}

	h.backend.Run(h.frame)
	h.close()

	if h.err != nil {
		logger.Error("run error", zap.Error(h.err))
		os.Exit(1)
	}
	logger.Info("closed normally")
}

func newHost(cfg *config.Config) (*host, error) {
	h := &host{
		cfg:  cfg,
		hud:  ui.NewHUD(cfg.Effects),
		keys: ui.DefaultKeys(),
	}

	var err error
	h.backend, err = ui.NewBackend("IslandRun", cfg.Graphics, logger.Named("ui"))
	if err != nil {
		return nil, fmt.Errorf("creating ui backend: %w", err)
	}

	h.rend, err = renderer.New(cfg.Graphics.Width, cfg.Graphics.Height, logger.Named("renderer"))
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	h.fb, err = framebuffer.New(int32(cfg.Graphics.Width), int32(cfg.Graphics.Height))
	if err != nil {
		h.rend.Close()
		return nil, err
	}

	h.sound = audio.New(cfg.Audio, logger.Named("audio"))
	h.sound.Load()
	if err := h.sound.Init(); err != nil {
		logger.Warn("audio disabled", zap.Error(err))
	}

	if err := h.start(); err != nil {
		h.close()
		return nil, err
	}
	return h, nil
}

// start begins a fresh run, replacing any previous one.
func (h *host) start() error {
	if h.run != nil {
		h.run.Close()
	}
	h.hud.SetScore(0)
	g, err := game.New(h.cfg, island.Sinks{
		Cues:     h.sound,
		Score:    h.hud,
		Renderer: h.rend,
	}, logger.Log)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	h.run = g
	h.backend.SetWindowTitle("IslandRun - " + g.RunID())
	return nil
}

// fail records err and ends the loop.
func (h *host) fail(err error) {
	h.err = err
	h.backend.Quit()
}

func (h *host) frame() {
	now := time.Now()
	if h.last.IsZero() {
		h.last = now
	}
	dt := float32(now.Sub(h.last).Seconds())
	h.last = now

	if ui.Pressed(h.keys.Quit) {
		h.backend.Quit()
		return
	}
	if ui.Pressed(h.keys.Mute) {
		h.toggleMute()
	}
	if h.run.Over() && ui.Pressed(h.keys.Restart) {
		if err := h.start(); err != nil {
			h.fail(err)
			return
		}
	}

	if err := h.run.Update(dt, h.keys.State()); err != nil {
		h.fail(err)
		return
	}

	x, y, w, height := ui.Viewport()
	if h.fb.Resize(int32(w), int32(height)) {
		fw, fh := h.fb.Size()
		h.rend.Resize(int(fw), int(fh))
	}

	restore := h.fb.BindWithViewport()
	h.rend.Draw(h.run.Player(), dt)
	restore()

	ui.DrawScene(h.fb.ColorTexture(), x, y, w, height)
	h.hud.Render(x, y, w, height, ui.Frame{
		State: h.run.Player(),
		Level: h.run.Islands().Level(),
		Clock: h.run.Islands().Clock(),
		Muted: h.sound.Muted(),
	})
}

// toggleMute flips audio and stores the choice in the user's config file.
func (h *host) toggleMute() {
	muted := !h.sound.Muted()
	h.sound.SetMuted(muted)
	h.cfg.Audio.Muted = muted
	if err := config.Update(func(cfg *config.Config) { cfg.Audio.Muted = muted }); err != nil {
		logger.Warn("failed to save mute setting", zap.Error(err))
	}
}

func (h *host) close() {
	if h.run != nil {
		h.run.Close()
		h.run = nil
	}
	if h.sound != nil {
		h.sound.Close()
	}
	if h.fb != nil {
		h.fb.Destroy()
	}
	if h.rend != nil {
		h.rend.Close()
	}
}
