// Package config loads the game options from a YAML file and lets the
// command line override them.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"blockfall/tetris"
)

const (
	minWidth  = 5
	minHeight = 4
)

var ErrInvalid = errors.New("invalid config")

type Options struct {
	Game     tetris.Config `yaml:"game"`
	Audio    Audio         `yaml:"audio"`
	Spectate Spectate      `yaml:"spectate"`
	Log      Log           `yaml:"log"`

	// Seed makes every round of the session deterministic. 0 picks a
	// random seed.
	Seed  uint64 `yaml:"seed"`
	Ghost bool   `yaml:"ghost"`
}

type Audio struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
	Music   bool    `yaml:"music"`
}

// Spectate configures the spectator feed. The feed is off while Address
// is empty.
type Spectate struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name"`
}

type Log struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

func Default() Options {
	return Options{
		Game: tetris.DefaultConfig(),
		Audio: Audio{
			Enabled: true,
			Volume:  0.5,
			Music:   true,
		},
		Log:   Log{Level: "info"},
		Ghost: true,
	}
}

// Load reads the YAML file at path over the defaults. Keys missing from
// the file keep their default value, unknown keys are an error. An empty
// path returns the defaults.
func Load(path string) (Options, error) {
	o := Default()
	if path == "" {
		return o, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return o, fmt.Errorf("unable to open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return o, fmt.Errorf("unable to parse config %s: %w", path, err)
	}
	return o, nil
}

// Validate returns every problem found, joined.
func (o Options) Validate() error {
	var errs []error
	invalid := func(format string, a ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, a...)...))
	}

	g := o.Game
	if g.Width < minWidth {
		invalid("game.width is %d, must be at least %d", g.Width, minWidth)
	}
	if g.Height < minHeight {
		invalid("game.height is %d, must be at least %d", g.Height, minHeight)
	}
	if g.StartLevel < 0 {
		invalid("game.start_level is %d, can't be negative", g.StartLevel)
	}
	if g.ScorePerLine <= 0 {
		invalid("game.score_per_line is %d, must be positive", g.ScorePerLine)
	}
	if g.LevelThreshold <= 0 {
		invalid("game.level_threshold is %d, must be positive", g.LevelThreshold)
	}
	if g.MinGravity <= 0 {
		invalid("game.min_gravity is %v, must be positive", g.MinGravity)
	}
	if g.BaseGravity < g.MinGravity {
		invalid("game.base_gravity %v is below game.min_gravity %v", g.BaseGravity, g.MinGravity)
	}
	if g.GravityStep < 0 {
		invalid("game.gravity_step is %v, can't be negative", g.GravityStep)
	}
	if o.Audio.Volume < 0 || o.Audio.Volume > 1 {
		invalid("audio.volume is %v, must be between 0 and 1", o.Audio.Volume)
	}
	if _, err := o.Log.level(); err != nil {
		invalid("log.level %q: %v", o.Log.Level, err)
	}
	return errors.Join(errs...)
}

func (l Log) level() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	err := lvl.UnmarshalText([]byte(l.Level))
	return lvl, err
}

// NewLogger returns a JSON logger appending to the log file, and a func
// closing it. Without a file every record is discarded: the terminal is
// taken by the game.
func (l Log) NewLogger() (*slog.Logger, func() error, error) {
	if l.File == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	lvl, err := l.level()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: log.level %q: %v", ErrInvalid, l.Level, err)
	}
	f, err := os.OpenFile(l.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: lvl})), f.Close, nil
}
