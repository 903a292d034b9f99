// Package tetris contains the logic of the game: the board with its
// falling tetromino, and the session driving it on a gravity timer.
package tetris

import (
	"math/rand/v2"
	"slices"
)

// Segment tells the renderer which part of an I tetromino a locked cell
// was. It has no effect on the game.
type Segment int

const (
	SegmentSolid Segment = iota
	SegmentLeft
	SegmentHorizontal
	SegmentRight
	SegmentTop
	SegmentVertical
	SegmentBottom
)

// Cell is one square of the stack. The zero value is an empty cell.
type Cell struct {
	Shape   Shape
	Segment Segment
	Color   Color
}

func (c Cell) Empty() bool { return c.Shape == "" }

// Board is the playfield plus the tetromino under player control, the
// one queued after it, and the scoring counters.
//
// Columns are 0 > width-1 left to right and represent the X axis.
// Rows are 0 > height-1 top to bottom and represent the Y axis.
//
// .	0 1 2 3 4 5 6 7 8 9
// 0	. . . . O O O O . .		<- tetrominos spawn at x = width/2-1, y = 0
// 1	. . . . . . . . . .
// ..
// 19	X X X . X X X X X X		<- the bottom row
type Board struct {
	cfg  Config
	rng  *rand.Rand
	sink EventSink

	stack   [][]Cell
	current *Tetromino
	next    *Tetromino

	score    int
	level    int
	lines    int
	collided bool
}

// NewBoard returns a board with an empty stack and the first tetromino
// already spawned. A nil rng draws from a randomly seeded source, a nil
// sink drops every event.
func NewBoard(cfg Config, rng *rand.Rand, sink EventSink) *Board {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if sink == nil {
		sink = nopSink{}
	}
	b := &Board{
		cfg:   cfg,
		rng:   rng,
		sink:  sink,
		stack: emptyStack(cfg.Width, cfg.Height),
		level: cfg.StartLevel,
	}
	b.trySpawnNext()
	return b
}

func emptyStack(width, height int) [][]Cell {
	stack := make([][]Cell, height)
	for i := range stack {
		stack[i] = make([]Cell, width)
	}
	return stack
}

// trySpawnNext promotes the next tetromino to current and drafts a new
// next one. When the spawned tetromino has no room the board is collided
// for good and the stack is wiped.
func (b *Board) trySpawnNext() {
	if b.next == nil {
		b.next = randomTetromino(b.rng)
	}
	b.current = b.next
	b.current.move(b.cfg.Width/2-1, 0)
	b.next = randomTetromino(b.rng)

	if b.checkCollision(b.current) {
		b.collided = true
		b.stack = emptyStack(b.cfg.Width, b.cfg.Height)
	}
}

// TryMove moves the current tetromino by dx, dy. When the new position
// collides the move is reverted and TryMove returns false.
func (b *Board) TryMove(dx, dy int) bool {
	if b.collided {
		return false
	}
	b.current.move(dx, dy)
	if b.checkCollision(b.current) {
		b.current.move(-dx, -dy)
		return false
	}
	return true
}

// TryRotate rotates the current tetromino clockwise, kicking it to the
// left when needed. It returns false when the tetromino did not rotate.
func (b *Board) TryRotate() bool {
	if b.collided {
		return false
	}
	return b.current.rotate(b.isValidPosition)
}

// checkCollision reports whether any cell of t is out of the horizontal
// bounds, below the bottom, or on top of a locked cell. Cells above the
// board (y < 0) only collide with the walls.
func (b *Board) checkCollision(t *Tetromino) bool {
	collision := false
	t.cells(func(x, y int) {
		switch {
		case x < 0 || x >= b.cfg.Width || y >= b.cfg.Height:
			collision = true
		case y >= 0 && !b.stack[y][x].Empty():
			collision = true
		}
	})
	return collision
}

// isValidPosition is the strict check used by rotations and drops: every
// cell must be inside the board, rows above it included, and empty.
func (b *Board) isValidPosition(grid [][]bool, x, y int) bool {
	for iy, row := range grid {
		for ix, c := range row {
			if !c {
				continue
			}
			cx, cy := x+ix, y+iy
			if cx < 0 || cx >= b.cfg.Width || cy < 0 || cy >= b.cfg.Height {
				return false
			}
			if !b.stack[cy][cx].Empty() {
				return false
			}
		}
	}
	return true
}

// lockCurrent copies the current tetromino into the stack. Cells that are
// still above the board are dropped.
func (b *Board) lockCurrent() {
	t := b.current
	n := 0
	t.cells(func(int, int) { n++ })

	k := 0
	t.cells(func(x, y int) {
		seg := t.segment(k, n)
		k++
		if y < 0 || y >= b.cfg.Height || x < 0 || x >= b.cfg.Width {
			return
		}
		b.stack[y][x] = Cell{Shape: t.Shape, Segment: seg, Color: t.Color}
	})
	b.sink.Notify(Event{Kind: PieceLanded})
}

// segment returns the segment of the k-th of n occupied cells, counted
// top to bottom, left to right.
func (t *Tetromino) segment(k, n int) Segment {
	if t.Shape != I {
		return SegmentSolid
	}
	horizontal := len(t.Grid) == 1
	switch {
	case k == 0 && horizontal:
		return SegmentLeft
	case k == 0:
		return SegmentTop
	case k == n-1 && horizontal:
		return SegmentRight
	case k == n-1:
		return SegmentBottom
	case horizontal:
		return SegmentHorizontal
	default:
		return SegmentVertical
	}
}

// clearLines removes every full row in one pass. The rows above a removed
// one shift down and fresh empty rows come in at the top. Each cleared
// line scores cfg.ScorePerLine; the level goes up every time the score
// reaches a multiple of cfg.LevelThreshold.
func (b *Board) clearLines() int {
	kept := make([][]Cell, 0, len(b.stack))
	for _, row := range b.stack {
		if !slices.ContainsFunc(row, Cell.Empty) {
			continue
		}
		kept = append(kept, row)
	}
	cleared := len(b.stack) - len(kept)
	if cleared == 0 {
		return 0
	}
	b.stack = append(emptyStack(b.cfg.Width, cleared), kept...)

	levels := 0
	for range cleared {
		before := b.score
		b.score += b.cfg.ScorePerLine
		b.lines++
		if b.cfg.LevelThreshold > 0 {
			levels += b.score/b.cfg.LevelThreshold - before/b.cfg.LevelThreshold
		}
	}
	b.level += levels

	if cleared >= 4 {
		b.sink.Notify(Event{Kind: TetrisClear, Lines: cleared})
	} else {
		b.sink.Notify(Event{Kind: LineCleared, Lines: cleared})
	}
	for range levels {
		b.sink.Notify(Event{Kind: LevelUp})
	}
	return cleared
}

// Update is the gravity tick. When the tetromino can't fall any further
// it is locked, full lines are cleared and the next one spawns.
func (b *Board) Update() {
	if b.collided {
		return
	}
	if b.TryMove(0, 1) {
		return
	}
	b.land()
}

func (b *Board) land() {
	b.lockCurrent()
	b.clearLines()
	b.trySpawnNext()
}

// MoveToBottom moves the current tetromino down for as long as it fits
// and returns how many rows it fell. It does not lock it.
func (b *Board) MoveToBottom() int {
	if b.collided {
		return 0
	}
	n := 0
	for b.isValidPosition(b.current.Grid, b.current.X, b.current.Y+1) {
		b.current.move(0, 1)
		n++
	}
	return n
}

// Drop moves the current tetromino to the bottom and locks it right away.
func (b *Board) Drop() {
	if b.collided {
		return
	}
	b.MoveToBottom()
	b.land()
}

// GhostY returns the row where the current tetromino would rest if
// dropped now.
func (b *Board) GhostY() int {
	y := b.current.Y
	for b.isValidPosition(b.current.Grid, b.current.X, y+1) {
		y++
	}
	return y
}

func (b *Board) Width() int     { return b.cfg.Width }
func (b *Board) Height() int    { return b.cfg.Height }
func (b *Board) Score() int     { return b.score }
func (b *Board) Level() int     { return b.level }
func (b *Board) Lines() int     { return b.lines }
func (b *Board) Collided() bool { return b.collided }

// Cell returns the locked cell at x, y. Out of range coordinates read as
// empty.
func (b *Board) Cell(x, y int) Cell {
	if x < 0 || x >= b.cfg.Width || y < 0 || y >= b.cfg.Height {
		return Cell{}
	}
	return b.stack[y][x]
}

func (b *Board) ShapeAt(x, y int) Shape { return b.Cell(x, y).Shape }
func (b *Board) ColorAt(x, y int) Color { return b.Cell(x, y).Color }

// Current returns a copy of the tetromino under player control.
func (b *Board) Current() *Tetromino { return b.current.copy() }

// Next returns a copy of the queued tetromino.
func (b *Board) Next() *Tetromino { return b.next.copy() }
