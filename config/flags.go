package config

import "flag"

// Flags holds the command line options. Only the flags actually given
// replace the values read from the config file.
type Flags struct {
	Path string

	fs  *flag.FlagSet
	set Options
}

// flagFields copies the option behind each flag.
var flagFields = map[string]func(dst, src *Options){
	"width":     func(d, s *Options) { d.Game.Width = s.Game.Width },
	"height":    func(d, s *Options) { d.Game.Height = s.Game.Height },
	"level":     func(d, s *Options) { d.Game.StartLevel = s.Game.StartLevel },
	"ghost":     func(d, s *Options) { d.Ghost = s.Ghost },
	"seed":      func(d, s *Options) { d.Seed = s.Seed },
	"sound":     func(d, s *Options) { d.Audio.Enabled = s.Audio.Enabled },
	"volume":    func(d, s *Options) { d.Audio.Volume = s.Audio.Volume },
	"music":     func(d, s *Options) { d.Audio.Music = s.Audio.Music },
	"spectate":  func(d, s *Options) { d.Spectate.Address = s.Spectate.Address },
	"name":      func(d, s *Options) { d.Spectate.Name = s.Spectate.Name },
	"log":       func(d, s *Options) { d.Log.File = s.Log.File },
	"log-level": func(d, s *Options) { d.Log.Level = s.Log.Level },
}

func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs, set: Default()}
	s := &f.set
	fs.StringVar(&f.Path, "config", "", "path to a YAML config file")
	fs.IntVar(&s.Game.Width, "width", s.Game.Width, "board width")
	fs.IntVar(&s.Game.Height, "height", s.Game.Height, "board height")
	fs.IntVar(&s.Game.StartLevel, "level", s.Game.StartLevel, "starting level")
	fs.BoolVar(&s.Ghost, "ghost", s.Ghost, "show where the tetromino will land")
	fs.Uint64Var(&s.Seed, "seed", s.Seed, "random seed, 0 for a random one")
	fs.BoolVar(&s.Audio.Enabled, "sound", s.Audio.Enabled, "play sounds")
	fs.Float64Var(&s.Audio.Volume, "volume", s.Audio.Volume, "master volume from 0 to 1")
	fs.BoolVar(&s.Audio.Music, "music", s.Audio.Music, "play the background theme")
	fs.StringVar(&s.Spectate.Address, "spectate", s.Spectate.Address, "serve the game to spectators on this address")
	fs.StringVar(&s.Spectate.Name, "name", s.Spectate.Name, "player name shown to spectators")
	fs.StringVar(&s.Log.File, "log", s.Log.File, "log file")
	fs.StringVar(&s.Log.Level, "log-level", s.Log.Level, "debug, info, warn or error")
	return f
}

// Apply copies every flag given on the command line over o.
func (f *Flags) Apply(o *Options) {
	f.fs.Visit(func(fl *flag.Flag) {
		if cp, ok := flagFields[fl.Name]; ok {
			cp(o, &f.set)
		}
	})
}

// Load reads the file given with -config, applies the flags over it and
// validates the result. Call it after the flag set was parsed.
func (f *Flags) Load() (Options, error) {
	o, err := Load(f.Path)
	if err != nil {
		return o, err
	}
	f.Apply(&o)
	return o, o.Validate()
}
