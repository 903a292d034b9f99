package server

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"blockfall/tetris"
)

var ErrMalformed = errors.New("malformed snapshot")

const emptyCell = '.'

// Encode turns a snapshot into a generic protobuf struct:
//
//	round, state            string
//	width, height           number
//	rows                    one string per row, a shape letter or '.' per cell
//	colors                  one list per row, "#rrggbb" or "" per cell
//	segments                one string per row, a digit per cell
//	current, next           shape, x, y, rotation, color, grid ("#." rows)
//	ghost_y                 number, only with current
//	score, level, lines     number
func Encode(s tetris.Snapshot) (*structpb.Struct, error) {
	rows := make([]any, len(s.Stack))
	colors := make([]any, len(s.Stack))
	segments := make([]any, len(s.Stack))
	for y, row := range s.Stack {
		var shapes, segs strings.Builder
		cols := make([]any, len(row))
		for x, c := range row {
			if c.Empty() {
				shapes.WriteByte(emptyCell)
				segs.WriteByte('0')
				cols[x] = ""
				continue
			}
			shapes.WriteString(string(c.Shape))
			segs.WriteByte(byte('0' + c.Segment))
			cols[x] = hexColor(c.Color)
		}
		rows[y] = shapes.String()
		colors[y] = cols
		segments[y] = segs.String()
	}

	m := map[string]any{
		"round":    s.Round,
		"state":    s.State.String(),
		"width":    s.Width,
		"height":   s.Height,
		"rows":     rows,
		"colors":   colors,
		"segments": segments,
		"score":    s.Score,
		"level":    s.Level,
		"lines":    s.Lines,
	}
	if s.Current != nil {
		m["current"] = encodeTetromino(s.Current)
		m["ghost_y"] = s.GhostY
	}
	if s.Next != nil {
		m["next"] = encodeTetromino(s.Next)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("unable to encode snapshot: %w", err)
	}
	return st, nil
}

func encodeTetromino(t *tetris.Tetromino) map[string]any {
	grid := make([]any, len(t.Grid))
	for i, row := range t.Grid {
		var b strings.Builder
		for _, v := range row {
			if v {
				b.WriteByte('#')
			} else {
				b.WriteByte(emptyCell)
			}
		}
		grid[i] = b.String()
	}
	return map[string]any{
		"shape":    string(t.Shape),
		"x":        t.X,
		"y":        t.Y,
		"rotation": t.Rotation,
		"color":    hexColor(t.Color),
		"grid":     grid,
	}
}

// Decode is the inverse of Encode.
func Decode(st *structpb.Struct) (tetris.Snapshot, error) {
	f := st.GetFields()
	s := tetris.Snapshot{
		Round:  f["round"].GetStringValue(),
		Width:  int(f["width"].GetNumberValue()),
		Height: int(f["height"].GetNumberValue()),
		Score:  int(f["score"].GetNumberValue()),
		Level:  int(f["level"].GetNumberValue()),
		Lines:  int(f["lines"].GetNumberValue()),
	}
	state, ok := tetris.ParseState(f["state"].GetStringValue())
	if !ok {
		return s, fmt.Errorf("%w: unknown state %q", ErrMalformed, f["state"].GetStringValue())
	}
	s.State = state

	rows := f["rows"].GetListValue().GetValues()
	colors := f["colors"].GetListValue().GetValues()
	segments := f["segments"].GetListValue().GetValues()
	if s.Width <= 0 || len(rows) != s.Height || len(colors) != s.Height || len(segments) != s.Height {
		return s, fmt.Errorf("%w: stack doesn't match %dx%d", ErrMalformed, s.Width, s.Height)
	}

	s.Stack = make([][]tetris.Cell, s.Height)
	for y := range s.Stack {
		shapes := rows[y].GetStringValue()
		segs := segments[y].GetStringValue()
		cols := colors[y].GetListValue().GetValues()
		if len(shapes) != s.Width || len(segs) != s.Width || len(cols) != s.Width {
			return s, fmt.Errorf("%w: row %d isn't %d cells wide", ErrMalformed, y, s.Width)
		}
		s.Stack[y] = make([]tetris.Cell, s.Width)
		for x := range s.Width {
			if shapes[x] == emptyCell {
				continue
			}
			c, err := parseColor(cols[x].GetStringValue())
			if err != nil {
				return s, fmt.Errorf("%w: cell %d,%d: %v", ErrMalformed, x, y, err)
			}
			seg := tetris.Segment(segs[x]) - '0'
			if seg < tetris.SegmentSolid || seg > tetris.SegmentBottom {
				return s, fmt.Errorf("%w: cell %d,%d: unknown segment %q", ErrMalformed, x, y, segs[x])
			}
			s.Stack[y][x] = tetris.Cell{
				Shape:   tetris.Shape(shapes[x : x+1]),
				Segment: seg,
				Color:   c,
			}
		}
	}

	var err error
	if v, ok := f["current"]; ok {
		if s.Current, err = decodeTetromino(v.GetStructValue()); err != nil {
			return s, fmt.Errorf("current: %w", err)
		}
		s.GhostY = int(f["ghost_y"].GetNumberValue())
	}
	if v, ok := f["next"]; ok {
		if s.Next, err = decodeTetromino(v.GetStructValue()); err != nil {
			return s, fmt.Errorf("next: %w", err)
		}
	}
	return s, nil
}

func decodeTetromino(st *structpb.Struct) (*tetris.Tetromino, error) {
	f := st.GetFields()
	c, err := parseColor(f["color"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	rows := f["grid"].GetListValue().GetValues()
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrMalformed)
	}
	grid := make([][]bool, len(rows))
	for i, r := range rows {
		line := r.GetStringValue()
		if line == "" {
			return nil, fmt.Errorf("%w: empty grid row", ErrMalformed)
		}
		if i > 0 && len(line) != len(grid[0]) {
			return nil, fmt.Errorf("%w: grid isn't rectangular", ErrMalformed)
		}
		grid[i] = make([]bool, len(line))
		for j := range line {
			grid[i][j] = line[j] == '#'
		}
	}
	return &tetris.Tetromino{
		Grid:     grid,
		X:        int(f["x"].GetNumberValue()),
		Y:        int(f["y"].GetNumberValue()),
		Rotation: int(f["rotation"].GetNumberValue()),
		Shape:    tetris.Shape(f["shape"].GetStringValue()),
		Color:    c,
	}, nil
}

func hexColor(c tetris.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func parseColor(s string) (tetris.Color, error) {
	var c tetris.Color
	if len(s) != 7 {
		return c, fmt.Errorf("bad color %q", s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("bad color %q: %w", s, err)
	}
	return c, nil
}
