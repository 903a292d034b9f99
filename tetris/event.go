package tetris

type EventKind int

const (
	PieceMoved EventKind = iota
	PieceRotated
	PieceLanded
	LineCleared
	TetrisClear
	LevelUp
	GameOver
	MenuConfirm
)

var eventNames = [...]string{
	PieceMoved:   "piece_moved",
	PieceRotated: "piece_rotated",
	PieceLanded:  "piece_landed",
	LineCleared:  "line_cleared",
	TetrisClear:  "tetris_clear",
	LevelUp:      "level_up",
	GameOver:     "game_over",
	MenuConfirm:  "menu_confirm",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event is a fire-and-forget notification about something that happened
// in the game. Lines is only set for LineCleared and TetrisClear.
type Event struct {
	Kind  EventKind
	Lines int
}

// EventSink receives events. Implementations must not call back into the
// board or the session.
type EventSink interface {
	Notify(Event)
}

// Events fans an event out to several sinks.
type Events []EventSink

func (e Events) Notify(ev Event) {
	for _, s := range e {
		if s != nil {
			s.Notify(ev)
		}
	}
}

type nopSink struct{}

func (nopSink) Notify(Event) {}
