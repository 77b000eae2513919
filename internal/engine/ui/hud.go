package ui

import (
	"fmt"
	"slices"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/islandrun/internal/config"
	"github.com/Faultbox/islandrun/internal/game/effects"
	"github.com/Faultbox/islandrun/internal/game/player"
)

// HUD renders the score, island level, running effects and the game-over
// banner. It receives score updates as the run's score sink.
type HUD struct {
	effects config.EffectsConfig
	score   int

	// Compact draws thinner effect bars.
	Compact bool
}

// Frame is the run state one HUD draw reads.
type Frame struct {
	State *player.State
	Level int
	Clock time.Duration // island manager clock, the base of effect expiries
	Muted bool
}

// EffectBar is one running effect.
type EffectBar struct {
	Kind      effects.Kind
	Remaining time.Duration
	Fraction  float32 // share of the full duration left, in [0, 1]
}

// NewHUD creates a HUD for the given effect durations.
func NewHUD(cfg config.EffectsConfig) *HUD {
	return &HUD{effects: cfg}
}

// SetScore records the latest score.
func (h *HUD) SetScore(score int) {
	h.score = score
}

// Score returns the last score received.
func (h *HUD) Score() int {
	return h.score
}

func (h *HUD) duration(kind effects.Kind) time.Duration {
	switch kind {
	case effects.Invulnerability:
		return h.effects.InvulnerabilityDuration
	case effects.Shrink:
		return h.effects.ShrinkDuration
	}
	return 0
}

// EffectBars lists the running effects in kind order.
func (h *HUD) EffectBars(st *player.State, now time.Duration) []EffectBar {
	bars := make([]EffectBar, 0, len(st.Effects))
	for kind, expiry := range st.Effects {
		remaining := max(expiry-now, 0)
		var frac float32
		if total := h.duration(kind); total > 0 {
			frac = min(float32(remaining)/float32(total), 1)
		}
		bars = append(bars, EffectBar{Kind: kind, Remaining: remaining, Fraction: frac})
	}
	slices.SortFunc(bars, func(a, b EffectBar) int { return int(a.Kind) - int(b.Kind) })
	return bars
}

// Render draws the HUD over the viewport rectangle.
func (h *HUD) Render(x, y, w, height float32, f Frame) {
	if f.State == nil {
		return
	}
	bars := h.EffectBars(f.State, f.Clock)

	rowHeight := float32(24)
	if h.Compact {
		rowHeight = 18
	}
	imgui.SetNextWindowPos(imgui.NewVec2(x+10, y+10))
	imgui.SetNextWindowSize(imgui.NewVec2(240, 60+rowHeight*float32(len(bars))))

	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
		imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
		imgui.WindowFlagsNoCollapse | imgui.WindowFlagsNoInputs

	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.NewVec2(8, 8))
	imgui.PushStyleVarFloat(imgui.StyleVarWindowRounding, 5)
	imgui.SetNextWindowBgAlpha(0.6)

	if imgui.BeginV("##HUD", nil, flags) {
		imgui.Text(fmt.Sprintf("Score %d", h.score))
		imgui.SameLine()
		imgui.TextDisabled(fmt.Sprintf("island %d", f.Level+1))
		if f.Muted {
			imgui.SameLine()
			imgui.TextDisabled("muted")
		}
		for _, bar := range bars {
			imgui.Spacing()
			h.renderBar(bar)
		}
	}
	imgui.End()

	imgui.PopStyleVar()
	imgui.PopStyleVar()

	if f.State.Terminal {
		h.renderGameOver(x, y, w, height)
	}
}

func (h *HUD) renderBar(bar EffectBar) {
	imgui.Text(bar.Kind.String())
	imgui.SameLine()

	imgui.PushStyleColorVec4(imgui.ColPlotHistogram, effectColor(bar))
	barSize := imgui.NewVec2(-1, 16)
	if h.Compact {
		barSize.Y = 10
	}
	imgui.ProgressBarV(bar.Fraction, barSize, fmt.Sprintf("%.1fs", bar.Remaining.Seconds()))
	imgui.PopStyleColor()
}

func (h *HUD) renderGameOver(x, y, w, height float32) {
	const bw, bh = 260, 80
	imgui.SetNextWindowPos(imgui.NewVec2(x+(w-bw)/2, y+(height-bh)/2))
	imgui.SetNextWindowSize(imgui.NewVec2(bw, bh))

	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
		imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
		imgui.WindowFlagsNoCollapse | imgui.WindowFlagsNoInputs

	imgui.SetNextWindowBgAlpha(0.85)
	if imgui.BeginV("##GameOver", nil, flags) {
		imgui.TextColored(imgui.NewVec4(1, 0.35, 0.3, 1), "Run over")
		imgui.Text(fmt.Sprintf("Final score %d", h.score))
		imgui.TextDisabled("R to restart, Esc to quit")
	}
	imgui.End()
}

// effectColor matches the effect's world tint and warms toward red as it
// runs out.
func effectColor(bar EffectBar) imgui.Vec4 {
	r, g, b := EffectTint(bar)
	return imgui.NewVec4(r, g, b, 1.0)
}

// EffectTint returns the bar colour for an effect.
func EffectTint(bar EffectBar) (r, g, b float32) {
	switch bar.Kind {
	case effects.Invulnerability:
		r, g, b = 0.3, 0.5, 1.0
	default:
		r, g, b = 0.8, 0.3, 0.9
	}
	if bar.Fraction < 0.25 {
		t := bar.Fraction * 4
		r = r*t + 1.0*(1-t)
		g = g*t + 0.3*(1-t)
		b = b*t + 0.2*(1-t)
	}
	return r, g, b
}
