package tetris

// Snapshot is a copy of everything a renderer needs to draw one frame.
// It shares no memory with the board.
type Snapshot struct {
	Round  string
	State  State
	Width  int
	Height int
	Stack  [][]Cell

	// Current and Next are nil when there is nothing to draw.
	Current *Tetromino
	Next    *Tetromino
	GhostY  int

	Score int
	Level int
	Lines int
}

// Snapshot returns a copy of the board.
func (b *Board) Snapshot() Snapshot {
	stack := make([][]Cell, len(b.stack))
	for i := range b.stack {
		stack[i] = make([]Cell, len(b.stack[i]))
		copy(stack[i], b.stack[i])
	}
	s := Snapshot{
		Width:  b.cfg.Width,
		Height: b.cfg.Height,
		Stack:  stack,
		Next:   b.next.copy(),
		Score:  b.score,
		Level:  b.level,
		Lines:  b.lines,
	}
	if !b.collided {
		s.Current = b.current.copy()
		s.GhostY = b.GhostY()
	}
	return s
}

// Snapshot returns a copy of the session for the renderer.
func (s *Session) Snapshot() Snapshot {
	snap := s.board.Snapshot()
	snap.Round = s.round.String()
	snap.State = s.state
	return snap
}
