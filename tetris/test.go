package tetris

import "math/rand/v2"

// NewTestBoard creates a default sized board whose current and next
// tetromino are both of the given shape and painted with the first color
// of the palette.
func NewTestBoard(shape Shape) *Board {
	return NewTestBoardWithConfig(DefaultConfig(), shape)
}

// NewTestBoardWithConfig is NewTestBoard for a custom config.
func NewTestBoardWithConfig(cfg Config, shape Shape) *Board {
	b := &Board{
		cfg:   cfg,
		rng:   rand.New(rand.NewPCG(1, 2)),
		sink:  nopSink{},
		stack: emptyStack(cfg.Width, cfg.Height),
		level: cfg.StartLevel,
		next:  newTetromino(shape, palette[0]),
	}
	b.trySpawnNext()
	b.next = newTetromino(shape, palette[0])
	return b
}

// EventRecorder is an EventSink that keeps every event it receives.
type EventRecorder struct {
	Events []Event
}

func (r *EventRecorder) Notify(e Event) { r.Events = append(r.Events, e) }

// Count returns how many events of kind k were recorded.
func (r *EventRecorder) Count(k EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

func (r *EventRecorder) Reset() { r.Events = nil }
