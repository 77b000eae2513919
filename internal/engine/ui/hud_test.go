package ui

import (
	"testing"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/islandrun/internal/config"
	"github.com/Faultbox/islandrun/internal/game/effects"
	"github.com/Faultbox/islandrun/internal/game/player"
	"github.com/Faultbox/islandrun/pkg/math"
)

func TestHUDIsScoreSink(t *testing.T) {
	h := NewHUD(config.Default().Effects)
	h.SetScore(7)
	h.SetScore(3)
	if h.Score() != 3 {
		t.Errorf("expected last score 3, got %d", h.Score())
	}
}

func TestEffectBars(t *testing.T) {
	cfg := config.Default().Effects
	h := NewHUD(cfg)
	st := player.NewState(math.Vec3{})
	now := 20 * time.Second
	st.Effects[effects.Shrink] = now + cfg.ShrinkDuration/2
	st.Effects[effects.Invulnerability] = now + cfg.InvulnerabilityDuration

	bars := h.EffectBars(st, now)
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Kind != effects.Invulnerability || bars[1].Kind != effects.Shrink {
		t.Errorf("bars out of kind order: %v, %v", bars[0].Kind, bars[1].Kind)
	}
	if bars[0].Fraction != 1 || bars[0].Remaining != cfg.InvulnerabilityDuration {
		t.Errorf("fresh invulnerability: %+v", bars[0])
	}
	if bars[1].Fraction != 0.5 {
		t.Errorf("half-run shrink: fraction %v, want 0.5", bars[1].Fraction)
	}
}

func TestEffectBarsClampExpired(t *testing.T) {
	h := NewHUD(config.Default().Effects)
	st := player.NewState(math.Vec3{})
	st.Effects[effects.Invulnerability] = time.Second

	bars := h.EffectBars(st, 5*time.Second)
	if len(bars) != 1 || bars[0].Remaining != 0 || bars[0].Fraction != 0 {
		t.Errorf("expected an empty bar, got %+v", bars)
	}
}

func TestEffectTintWarmsWhenLow(t *testing.T) {
	fullR, _, fullB := EffectTint(EffectBar{Kind: effects.Invulnerability, Fraction: 1})
	lowR, _, lowB := EffectTint(EffectBar{Kind: effects.Invulnerability, Fraction: 0})
	if fullR != 0.3 || fullB != 1.0 {
		t.Errorf("full bar should keep the effect tint, got r=%v b=%v", fullR, fullB)
	}
	if lowR <= fullR || lowB >= fullB {
		t.Errorf("empty bar should be warmer: r=%v b=%v", lowR, lowB)
	}
}

func TestKeysSample(t *testing.T) {
	keys := DefaultKeys()
	tests := []struct {
		name string
		down []imgui.Key
		want player.Input
	}{
		{"none", nil, player.Input{}},
		{"arrow left", []imgui.Key{imgui.KeyLeftArrow}, player.Input{Left: true}},
		{"wasd right", []imgui.Key{imgui.KeyD}, player.Input{Right: true}},
		{"space descends", []imgui.Key{imgui.KeySpace}, player.Input{Descend: true}},
		{"both turns", []imgui.Key{imgui.KeyA, imgui.KeyRightArrow}, player.Input{Left: true, Right: true}},
		{"unbound", []imgui.Key{imgui.KeyM}, player.Input{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			held := make(map[imgui.Key]bool)
			for _, k := range tt.down {
				held[k] = true
			}
			got := keys.Sample(func(k imgui.Key) bool { return held[k] })
			if got != tt.want {
				t.Errorf("Sample() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
