// Package audio plays the game sounds on the default output device: a short
// procedural cue for every game event and an endless background theme.
package audio

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"blockfall/tetris"
)

// volumeSteps is how many VolumeUp presses it takes from silence to full
// volume.
const volumeSteps = 16

var ErrStarted = errors.New("audio: player already started")

type Options struct {
	Enabled bool
	Volume  float64 // 0 to 1
	Music   bool
	Logger  *slog.Logger
}

// Player turns game events into sounds. It implements tetris.EventSink.
//
// Every method is safe to call before Start and after Close, and when no
// output device is available the player runs silent. A Player is not safe
// for concurrent use.
type Player struct {
	logger *slog.Logger
	cache  *Cache

	// the speaker plays master, which wraps mixer; music always sits in
	// the mixer and is paused while no round is being played.
	mixer  *beep.Mixer
	master *effects.Volume
	music  *beep.Ctrl

	enabled bool
	started bool
	silent  bool
	steps   int
	musicOn bool
	playing bool
}

func NewPlayer(o Options) *Player {
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Player{
		logger:  logger,
		cache:   NewCache(),
		mixer:   &beep.Mixer{},
		music:   &beep.Ctrl{Streamer: newTheme(), Paused: true},
		enabled: o.Enabled,
		steps:   int(math.Round(min(max(o.Volume, 0), 1) * volumeSteps)),
		musicOn: o.Music,
	}
	p.master = newVolume(p.mixer, p.Volume())
	p.mixer.Add(p.music)
	return p
}

// Start opens the output device. When audio is disabled or no device can
// be opened the player goes silent; that is not an error.
func (p *Player) Start() error {
	if p.started {
		return ErrStarted
	}
	p.started = true
	if !p.enabled {
		p.silent = true
		p.logger.Info("audio disabled")
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		p.silent = true
		p.logger.Warn("unable to open the audio device, running silent", slog.String("error", err.Error()))
		return nil
	}
	// the cues played every few frames are rendered before the first round.
	p.cache.Preload(tetris.PieceMoved, tetris.PieceRotated, tetris.PieceLanded)
	speaker.Play(p.master)
	p.logger.Info("audio started", slog.Float64("volume", p.Volume()), slog.Bool("music", p.musicOn))
	return nil
}

// live reports whether the speaker goroutine is reading from the mixer.
func (p *Player) live() bool { return p.started && !p.silent }

// locked runs fn holding the speaker lock when the speaker is playing.
func (p *Player) locked(fn func()) {
	if p.live() {
		speaker.Lock()
		defer speaker.Unlock()
	}
	fn()
}

func (p *Player) Notify(e tetris.Event) {
	switch e.Kind {
	case tetris.MenuConfirm:
		p.playing = true
		p.updateMusic()
	case tetris.GameOver:
		p.playing = false
		p.updateMusic()
	}

	if !p.live() {
		return
	}
	buf := p.cache.Get(e.Kind)
	if buf == nil {
		return
	}
	p.locked(func() { p.mixer.Add(buf.Streamer(0, buf.Len())) })
}

func (p *Player) VolumeUp()   { p.setSteps(p.steps + 1) }
func (p *Player) VolumeDown() { p.setSteps(p.steps - 1) }

func (p *Player) setSteps(n int) {
	p.steps = min(max(n, 0), volumeSteps)
	p.locked(func() { setVolume(p.master, p.Volume()) })
	p.logger.Debug("volume changed", slog.Float64("volume", p.Volume()))
}

// Volume returns the master volume between 0 and 1.
func (p *Player) Volume() float64 { return float64(p.steps) / volumeSteps }

// ToggleMusic switches the background theme on or off. While switched on
// it only plays during a round.
func (p *Player) ToggleMusic() {
	p.musicOn = !p.musicOn
	p.updateMusic()
	p.logger.Debug("music toggled", slog.Bool("music", p.musicOn))
}

func (p *Player) updateMusic() {
	p.locked(func() { p.music.Paused = !(p.musicOn && p.playing) })
}

// MusicPlaying reports whether the theme is currently unpaused.
func (p *Player) MusicPlaying() bool {
	playing := false
	p.locked(func() { playing = !p.music.Paused })
	return playing
}

func (p *Player) Silent() bool { return p.silent }

// Close stops every sound and releases the device.
func (p *Player) Close() {
	if !p.live() {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.silent = true
}
