// Package audio plays the run's cues: looping background music and
// one-shot effects mixed over it.
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/islandrun/internal/config"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// BackgroundCue is the cue that loops instead of playing once.
const BackgroundCue = "background"

// ErrNotInitialized is returned when playing before Init.
var ErrNotInitialized = errors.New("audio not initialized")

// Player decodes cue files up front and plays them by name.
type Player struct {
	mu  sync.RWMutex
	log *zap.Logger

	// State
	initialized bool
	sampleRate  beep.SampleRate
	muted       bool

	cuePaths map[string]string
	cues     map[string]*beep.Buffer

	// Background loop
	bgmCtrl   *beep.Ctrl
	bgmVolume *effects.Volume

	// Volume settings (0.0 to 1.0)
	masterVolume float64
	bgmVolLevel  float64
	sfxVolLevel  float64

	// SFX mixer for concurrent sound effects
	sfxMixer *beep.Mixer
}

// New creates a player from the audio config.
func New(cfg config.AudioConfig, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	paths := make(map[string]string, len(cfg.Cues))
	for name, p := range cfg.Cues {
		paths[name] = p
	}
	return &Player{
		log:          log,
		sampleRate:   DefaultSampleRate,
		muted:        cfg.Muted,
		cuePaths:     paths,
		cues:         make(map[string]*beep.Buffer),
		masterVolume: clamp(cfg.MasterVolume, 0, 1),
		bgmVolLevel:  clamp(cfg.MusicVolume, 0, 1),
		sfxVolLevel:  clamp(cfg.SFXVolume, 0, 1),
		sfxMixer:     &beep.Mixer{},
	}
}

// Load decodes every configured cue file. Files that are missing or fail
// to decode are logged and skipped; the cue then plays nothing.
func (p *Player) Load() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for name, path := range p.cuePaths {
		buf, err := decodeFile(path, p.sampleRate)
		if err != nil {
			p.log.Warn("cue not loaded",
				zap.String("cue", name),
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		p.cues[name] = buf
		p.log.Debug("cue loaded",
			zap.String("cue", name),
			zap.Int("samples", buf.Len()),
		)
	}
}

func decodeFile(path string, rate beep.SampleRate) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()

	// Resample if needed
	var src beep.Streamer = streamer
	if format.SampleRate != rate {
		src = beep.Resample(4, format.SampleRate, rate, streamer)
		format.SampleRate = rate
	}

	buf := beep.NewBuffer(format)
	buf.Append(src)
	return buf, nil
}

// Loaded returns the names of the decoded cues, sorted.
func (p *Player) Loaded() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.cues))
	for name := range p.cues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Init opens the speaker.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Second/30))
	if err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	// Start SFX mixer
	speaker.Play(p.sfxMixer)

	p.initialized = true
	return nil
}

// Close stops playback.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	p.bgmCtrl = nil
	p.bgmVolume = nil
	speaker.Clear()
	p.initialized = false
}

// IsInitialized returns whether the speaker is open.
func (p *Player) IsInitialized() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.initialized
}

// Cue plays the named cue. Unknown cues, a muted player or a closed
// speaker make it a no-op.
func (p *Player) Cue(name string) {
	var err error
	if name == BackgroundCue {
		err = p.playBackground()
	} else {
		err = p.playOnce(name)
	}
	if err != nil && !errors.Is(err, ErrNotInitialized) {
		p.log.Debug("cue skipped", zap.String("cue", name), zap.Error(err))
	}
}

func (p *Player) playOnce(name string) error {
	p.mu.RLock()
	initialized, muted := p.initialized, p.muted
	buf := p.cues[name]
	sfxVol := p.masterVolume * p.sfxVolLevel
	p.mu.RUnlock()

	if !initialized {
		return ErrNotInitialized
	}
	if muted {
		return nil
	}
	if buf == nil {
		return fmt.Errorf("cue %q not loaded", name)
	}

	// Add to mixer (concurrent playback)
	speaker.Lock()
	p.sfxMixer.Add(&effects.Volume{
		Streamer: buf.Streamer(0, buf.Len()),
		Base:     2,
		Volume:   volumeToDb(sfxVol),
		Silent:   sfxVol <= 0,
	})
	speaker.Unlock()
	return nil
}

func (p *Player) playBackground() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return ErrNotInitialized
	}
	if p.muted {
		return nil
	}
	buf := p.cues[BackgroundCue]
	if buf == nil {
		return fmt.Errorf("cue %q not loaded", BackgroundCue)
	}
	if p.bgmCtrl != nil {
		return nil
	}

	p.bgmCtrl = &beep.Ctrl{Streamer: &loopStreamer{buf: buf, cur: buf.Streamer(0, buf.Len())}}
	p.bgmVolume = &effects.Volume{Streamer: p.bgmCtrl, Base: 2}
	p.updateBGMVolume()

	speaker.Play(p.bgmVolume)
	return nil
}

// SetMuted silences or restores every cue.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
	if p.bgmCtrl != nil {
		speaker.Lock()
		p.bgmCtrl.Paused = muted
		speaker.Unlock()
	}
}

// Muted reports whether the player is muted.
func (p *Player) Muted() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.muted
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (p *Player) SetMasterVolume(vol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.masterVolume = clamp(vol, 0, 1)
	p.updateBGMVolume()
}

// SetMusicVolume sets the background volume (0.0 to 1.0).
func (p *Player) SetMusicVolume(vol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bgmVolLevel = clamp(vol, 0, 1)
	p.updateBGMVolume()
}

// SetSFXVolume sets the effect volume (0.0 to 1.0).
func (p *Player) SetSFXVolume(vol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sfxVolLevel = clamp(vol, 0, 1)
}

// MasterVolume returns the master volume.
func (p *Player) MasterVolume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.masterVolume
}

// MusicVolume returns the background volume.
func (p *Player) MusicVolume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bgmVolLevel
}

// SFXVolume returns the effect volume.
func (p *Player) SFXVolume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sfxVolLevel
}

func (p *Player) updateBGMVolume() {
	if p.bgmVolume == nil {
		return
	}
	vol := p.masterVolume * p.bgmVolLevel
	if p.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	p.bgmVolume.Silent = vol <= 0
	p.bgmVolume.Volume = volumeToDb(vol)
}

// volumeToDb maps a 0-1 volume onto the base-2 scale effects.Volume uses:
// 1 is unchanged, 0.5 is one halving.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100 // Effectively silent
	}
	return math.Log2(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// loopStreamer replays a buffer forever.
type loopStreamer struct {
	buf *beep.Buffer
	cur beep.StreamSeeker
}

func (l *loopStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if l.buf.Len() == 0 {
		return 0, false
	}
	filled := 0
	for filled < len(samples) {
		n, ok := l.cur.Stream(samples[filled:])
		filled += n
		if !ok || n == 0 {
			// Reset to beginning
			if err := l.cur.Seek(0); err != nil {
				return filled, filled > 0
			}
		}
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.cur.Err()
}
