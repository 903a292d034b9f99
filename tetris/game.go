package tetris

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

type Intent string

const (
	MoveLeft  Intent = "left"    // Moves the Tetromino one step to the left.
	MoveRight Intent = "right"   // Moves the Tetromino one step to the right.
	SoftDrop  Intent = "down"    // Moves the Tetromino one step down.
	HardDrop  Intent = "drop"    // Drops the Tetromino down the stack and locks it.
	Rotate    Intent = "rotate"  // Rotates the Tetromino clockwise.
	Start     Intent = "start"   // Leaves the start screen.
	Restart   Intent = "restart" // Starts a new round after a game over.
	Quit      Intent = "quit"    // Ends the session from any state.

	// Sound controls never reach the session.
	VolumeUp    Intent = "volume_up"
	VolumeDown  Intent = "volume_down"
	ToggleMusic Intent = "music"
)

type State int

const (
	StateStart State = iota
	StatePlaying
	StateGameOver
	StateQuit
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StatePlaying:
		return "playing"
	case StateGameOver:
		return "game_over"
	case StateQuit:
		return "quit"
	}
	return "unknown"
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, bool) {
	for st := StateStart; st <= StateQuit; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return StateStart, false
}

type SessionOptions struct {
	Rand   *rand.Rand
	Sink   EventSink
	Logger *slog.Logger
}

// Session owns the board and moves it through the start screen, the
// round being played and the game over screen. It is not safe for
// concurrent use: one loop calls Handle and Tick and reads Snapshot.
type Session struct {
	cfg    Config
	rng    *rand.Rand
	sink   EventSink
	logger *slog.Logger

	board   *Board
	round   uuid.UUID
	state   State
	elapsed time.Duration
}

func NewSession(cfg Config, o SessionOptions) *Session {
	s := &Session{
		cfg:    cfg,
		rng:    o.Rand,
		sink:   o.Sink,
		logger: o.Logger,
		state:  StateStart,
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.sink == nil {
		s.sink = nopSink{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.newRound()
	return s
}

func (s *Session) newRound() {
	s.round = uuid.New()
	s.elapsed = 0
	s.board = NewBoard(s.cfg, s.rng, Events{logSink{s.logger, s.round.String()}, s.sink})
}

// Handle applies one input intent. Intents that make no sense in the
// current state are ignored.
func (s *Session) Handle(in Intent) {
	switch in {
	case Quit:
		s.logger.Info("session quit", slog.String("from", s.state.String()))
		s.state = StateQuit
		return
	case Start:
		if s.state == StateStart {
			s.play()
		}
		return
	case Restart:
		if s.state == StateGameOver {
			s.newRound()
			s.play()
		}
		return
	}

	if s.state != StatePlaying {
		return
	}
	switch in {
	case MoveLeft:
		s.move(-1, 0)
	case MoveRight:
		s.move(1, 0)
	case SoftDrop:
		s.move(0, 1)
	case Rotate:
		if s.board.TryRotate() {
			s.sink.Notify(Event{Kind: PieceRotated})
		}
	case HardDrop:
		s.board.Drop()
		// the next tetromino gets a full interval before its first fall.
		s.elapsed = 0
		s.checkGameOver()
	}
}

func (s *Session) play() {
	s.state = StatePlaying
	s.elapsed = 0
	s.sink.Notify(Event{Kind: MenuConfirm})
	s.logger.Info("round started",
		slog.String("round", s.round.String()),
		slog.Int("level", s.board.Level()),
	)
}

func (s *Session) move(dx, dy int) {
	if s.board.TryMove(dx, dy) {
		s.sink.Notify(Event{Kind: PieceMoved})
	}
}

// Tick advances the gravity clock by elapsed. The board falls one step
// once the time accumulated reaches the interval for the current level.
func (s *Session) Tick(elapsed time.Duration) {
	if s.state != StatePlaying {
		return
	}
	s.elapsed += elapsed
	if s.elapsed < s.cfg.GravityInterval(s.board.Level()) {
		return
	}
	s.elapsed = 0
	s.board.Update()
	s.checkGameOver()
}

func (s *Session) checkGameOver() {
	if s.state != StatePlaying || !s.board.Collided() {
		return
	}
	s.state = StateGameOver
	s.sink.Notify(Event{Kind: GameOver})
	s.logger.Info("round over",
		slog.String("round", s.round.String()),
		slog.Int("score", s.board.Score()),
		slog.Int("level", s.board.Level()),
		slog.Int("lines", s.board.Lines()),
	)
}

func (s *Session) State() State { return s.state }

// Done reports whether a quit was requested.
func (s *Session) Done() bool { return s.state == StateQuit }

// Board gives read access to the board of the current round.
func (s *Session) Board() *Board { return s.board }

func (s *Session) Round() string { return s.round.String() }

// Interval returns the current gravity interval.
func (s *Session) Interval() time.Duration {
	return s.cfg.GravityInterval(s.board.Level())
}

// logSink writes every board event to the debug log.
type logSink struct {
	logger *slog.Logger
	round  string
}

func (l logSink) Notify(e Event) {
	l.logger.Debug("board event",
		slog.String("round", l.round),
		slog.String("event", e.Kind.String()),
		slog.Int("lines", e.Lines),
	)
}
