package tetris

import "math/rand/v2"

type Shape string

const (
	I Shape = "I"
	O Shape = "O"
	S Shape = "S"
	Z Shape = "Z"
	J Shape = "J"
	L Shape = "L"
	T Shape = "T"
)

// Shapes lists every tetromino kind in spawn-table order.
var Shapes = []Shape{I, O, S, Z, J, L, T}

// Color is the RGB color a tetromino is painted with.
type Color struct {
	R, G, B uint8
}

// palette holds the colors a new tetromino can be painted with.
var palette = []Color{
	{0, 191, 255},  // deep sky blue
	{255, 215, 0},  // gold
	{138, 43, 226}, // blue violet
	{0, 204, 102},  // green
	{255, 69, 0},   // orange red
	{30, 144, 255}, // dodger blue
	{255, 140, 0},  // dark orange
}

type Tetromino struct {
	// Grid is the footprint of the current orientation.
	// Rows go top to bottom, columns left to right.
	Grid     [][]bool
	X        int
	Y        int
	Rotation int
	Shape    Shape
	Color    Color
}

/*
.	Spawn shapes, as laid out on the board (row 0 on top)

.	I			O		S		Z
.	O O O O		O O		X O O	O O X
.				O O		O O X	X O O

.	J			L			T
.	O X X		X X O		O O O
.	O O O		O O O		X O X
*/
var layouts = map[Shape][][]bool{
	I: {
		{true, true, true, true},
	},
	O: {
		{true, true},
		{true, true},
	},
	S: {
		{false, true, true},
		{true, true, false},
	},
	Z: {
		{true, true, false},
		{false, true, true},
	},
	J: {
		{true, false, false},
		{true, true, true},
	},
	L: {
		{false, false, true},
		{true, true, true},
	},
	T: {
		{true, true, true},
		{false, true, false},
	},
}

func newTetromino(shape Shape, color Color) *Tetromino {
	layout := layouts[shape]
	grid := make([][]bool, len(layout))
	for i := range layout {
		grid[i] = make([]bool, len(layout[i]))
		copy(grid[i], layout[i])
	}
	return &Tetromino{
		Grid:  grid,
		Shape: shape,
		Color: color,
	}
}

// randomTetromino draws the shape and the color uniformly.
func randomTetromino(rng *rand.Rand) *Tetromino {
	return newTetromino(Shapes[rng.IntN(len(Shapes))], palette[rng.IntN(len(palette))])
}

func (t *Tetromino) move(dx, dy int) {
	t.X += dx
	t.Y += dy
}

// rotated returns the grid turned 90° clockwise. The result has the
// dimensions swapped: cell [r][c] lands on [c][rows-1-r].
func (t *Tetromino) rotated() [][]bool {
	rows, cols := len(t.Grid), len(t.Grid[0])
	out := make([][]bool, cols)
	for c := range out {
		out[c] = make([]bool, rows)
	}
	for r := range t.Grid {
		for c, v := range t.Grid[r] {
			out[c][rows-1-r] = v
		}
	}
	return out
}

// validator reports whether a grid fits the board at the given position.
type validator func(grid [][]bool, x, y int) bool

// rotate turns the tetromino clockwise when the rotated grid fits, sliding
// it to the left if needed (wall-kick). The kick search gives up at the
// first column where not even the unrotated grid fits; in that case the
// tetromino is left untouched and rotate returns false.
func (t *Tetromino) rotate(valid validator) bool {
	r := t.rotated()
	x := t.X
	if !valid(r, x, t.Y) {
		for x = t.X - 1; !valid(r, x, t.Y); x-- {
			if !valid(t.Grid, x, t.Y) {
				return false
			}
		}
	}
	t.X = x
	t.Grid = r
	t.Rotation = (t.Rotation + 1) % 4
	return true
}

// cells calls fn with the board coordinates of every occupied cell.
func (t *Tetromino) cells(fn func(x, y int)) {
	for iy, row := range t.Grid {
		for ix, c := range row {
			if c {
				fn(t.X+ix, t.Y+iy)
			}
		}
	}
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	grid := make([][]bool, len(t.Grid))
	for i := range t.Grid {
		grid[i] = make([]bool, len(t.Grid[i]))
		copy(grid[i], t.Grid[i])
	}
	c := *t
	c.Grid = grid
	return &c
}
