package tetris

import "time"

const (
	DefaultWidth          = 10
	DefaultHeight         = 20
	DefaultStartLevel     = 1
	DefaultScorePerLine   = 100
	DefaultLevelThreshold = 1000

	DefaultBaseGravity = 1000 * time.Millisecond
	DefaultGravityStep = 100 * time.Millisecond
	DefaultMinGravity  = 50 * time.Millisecond
)

// Config holds the rules of a session. Every board created by the
// session shares it.
type Config struct {
	Width          int `yaml:"width"`
	Height         int `yaml:"height"`
	StartLevel     int `yaml:"start_level"`
	ScorePerLine   int `yaml:"score_per_line"`
	LevelThreshold int `yaml:"level_threshold"`

	BaseGravity time.Duration `yaml:"base_gravity"`
	GravityStep time.Duration `yaml:"gravity_step"`
	MinGravity  time.Duration `yaml:"min_gravity"`
}

func DefaultConfig() Config {
	return Config{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		StartLevel:     DefaultStartLevel,
		ScorePerLine:   DefaultScorePerLine,
		LevelThreshold: DefaultLevelThreshold,
		BaseGravity:    DefaultBaseGravity,
		GravityStep:    DefaultGravityStep,
		MinGravity:     DefaultMinGravity,
	}
}

// GravityInterval returns how long the tetromino waits between two
// gravity steps at the given level:
//
//	max(MinGravity, BaseGravity - level*GravityStep)
//
// With the defaults it is 900ms at level 1 and bottoms out at 50ms from
// level 10 on.
func (c Config) GravityInterval(level int) time.Duration {
	return max(c.MinGravity, c.BaseGravity-time.Duration(level)*c.GravityStep)
}
