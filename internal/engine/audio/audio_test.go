package audio

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"

	"github.com/Faultbox/islandrun/internal/config"
)

func TestVolumeConversion(t *testing.T) {
	tests := []struct {
		vol float64
		min float64
		max float64
	}{
		{1.0, -0.01, 0.01}, // Full volume is unchanged
		{0.5, -1.01, -0.99},
		{0.25, -2.01, -1.99},
		{0.0, -200, -90}, // Zero volume should be very negative
	}

	for _, tt := range tests {
		db := volumeToDb(tt.vol)
		if db < tt.min || db > tt.max {
			t.Errorf("volumeToDb(%f) = %f, want between %f and %f", tt.vol, db, tt.min, tt.max)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0, 0, 1, 0},
		{1, 0, 1, 1},
	}

	for _, tt := range tests {
		got := clamp(tt.v, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("clamp(%f, %f, %f) = %f, want %f", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default().Audio
	cfg.MasterVolume = 3
	p := New(cfg, nil)

	if p.MasterVolume() != 1.0 {
		t.Errorf("master volume = %f, want 1.0 (clamped)", p.MasterVolume())
	}
	if p.MusicVolume() != cfg.MusicVolume {
		t.Errorf("music volume = %f, want %f", p.MusicVolume(), cfg.MusicVolume)
	}
	if p.SFXVolume() != cfg.SFXVolume {
		t.Errorf("sfx volume = %f, want %f", p.SFXVolume(), cfg.SFXVolume)
	}
	if p.IsInitialized() {
		t.Error("player should not be initialized before Init")
	}
}

func TestSetVolume(t *testing.T) {
	p := New(config.AudioConfig{}, nil)

	p.SetMasterVolume(0.5)
	if p.MasterVolume() != 0.5 {
		t.Errorf("master volume = %f, want 0.5", p.MasterVolume())
	}
	p.SetMasterVolume(2.0)
	if p.MasterVolume() != 1.0 {
		t.Errorf("master volume = %f, want 1.0 (clamped)", p.MasterVolume())
	}
	p.SetMusicVolume(-1.0)
	if p.MusicVolume() != 0.0 {
		t.Errorf("music volume = %f, want 0.0 (clamped)", p.MusicVolume())
	}
	p.SetMuted(true)
	if !p.Muted() {
		t.Error("expected muted")
	}
}

func writeSilence(t *testing.T, path string, rate beep.SampleRate) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Silence(rate.N(100*time.Millisecond)), format); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	writeSilence(t, filepath.Join(dir, "collect.wav"), DefaultSampleRate)
	writeSilence(t, filepath.Join(dir, "impact.wav"), 22050)
	if err := os.WriteFile(filepath.Join(dir, "broken.wav"), []byte("not a wav"), 0644); err != nil {
		t.Fatal(err)
	}

	p := New(config.AudioConfig{Cues: map[string]string{
		"collect": filepath.Join(dir, "collect.wav"),
		"impact":  filepath.Join(dir, "impact.wav"),
		"broken":  filepath.Join(dir, "broken.wav"),
		"missing": filepath.Join(dir, "missing.wav"),
	}}, nil)
	p.Load()

	if got, want := p.Loaded(), []string{"collect", "impact"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Loaded() = %v, want %v", got, want)
	}
}

func TestCueBeforeInitIsNoop(t *testing.T) {
	p := New(config.Default().Audio, nil)
	p.Cue("collect")
	p.Cue(BackgroundCue)
	p.Close()

	if err := p.playOnce("collect"); err != ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}
