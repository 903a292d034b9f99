package terminal

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/template"

	"blockfall/tetris"
)

const (
	resetPos   = "\033[H"          // Reset cursor position to 0,0
	clearLine  = "\033[K"          // Erase to the end of the line
	HideCursor = "\033[2J\033[?25l" // also clear screen
	ShowCursor = "\033[?25h\r\n"

	emptyCell = "  "
	ghostCell = "[]"

	// the first board row is printed on the third line of the screen, one
	// column in from the left border.
	boardTop  = 3
	boardLeft = 3
	sideWidth = 22
)

//go:embed "layout.tmpl"
var layout string

// glyphs draws the segments of a locked I tetromino so it still looks
// like one piece.
var glyphs = map[tetris.Segment]string{
	tetris.SegmentSolid:      "[]",
	tetris.SegmentLeft:       "[=",
	tetris.SegmentHorizontal: "==",
	tetris.SegmentRight:      "=]",
	tetris.SegmentTop:        "/\\",
	tetris.SegmentVertical:   "||",
	tetris.SegmentBottom:     "\\/",
}

type templateData struct {
	Name   string
	Border string
	Rows   []string
	Side   []string
}

type RenderOptions struct {
	// Ghost draws where the current tetromino would land.
	Ghost bool
	// Name is shown next to the title.
	Name string
}

// Renderer draws snapshots on an ANSI terminal in raw mode.
type Renderer struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	opts     RenderOptions
}

func NewRenderer(w io.Writer, l *slog.Logger, o RenderOptions) (*Renderer, error) {
	tmpl, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &Renderer{writer: w, logger: l, template: tmpl, opts: o}, nil
}

func loadTemplate() (*template.Template, error) {
	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout. Lines are
	// also erased to the end so shorter text doesn't leave the previous frame behind.
	l := strings.ReplaceAll(layout, "\n", clearLine+"\r\n")
	l = strings.ReplaceAll(l, "BLOCKFALL", "\033[1mBLOCKFALL\033[0m")
	return template.New("layout").Parse(l)
}

// Size returns the columns and lines a frame of a width x height board
// takes on screen.
func Size(width, height int) (int, int) {
	return 1 + 2 + width*2 + 1 + sideWidth, boardTop + height
}

// Render draws a full frame, then the start or game over box on top of it.
// The frame is written with a single call.
func (r *Renderer) Render(s tetris.Snapshot) error {
	var buf bytes.Buffer
	buf.WriteString(resetPos)
	td := &templateData{
		Name:   r.opts.Name,
		Border: strings.Repeat("═", s.Width*2),
		Rows:   r.board(s),
		Side:   side(s),
	}
	if err := r.template.Execute(&buf, td); err != nil {
		return fmt.Errorf("unable to execute template: %w", err)
	}

	switch s.State {
	case tetris.StateStart:
		box(&buf, s, "BLOCKFALL", "", "(g)o  (q)uit")
	case tetris.StateGameOver:
		box(&buf, s,
			"GAME OVER",
			"",
			"score "+strconv.Itoa(s.Score),
			"level "+strconv.Itoa(s.Level),
			"lines "+strconv.Itoa(s.Lines),
			"",
			"(r)estart (q)uit",
		)
	}

	if _, err := r.writer.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("unable to write frame: %w", err)
	}
	return nil
}

func paint(c tetris.Color, glyph string) string {
	return fmt.Sprintf("\x1b[7m\x1b[38;2;%d;%d;%dm%s\x1b[0m", c.R, c.G, c.B, glyph)
}

// board renders every row of the stack with the ghost and the current
// tetromino on top.
func (r *Renderer) board(s tetris.Snapshot) []string {
	rendered := make([][]string, s.Height)
	for y := range rendered {
		rendered[y] = make([]string, s.Width)
		for x := range rendered[y] {
			rendered[y][x] = emptyCell
			if y >= len(s.Stack) || x >= len(s.Stack[y]) {
				continue
			}
			if c := s.Stack[y][x]; !c.Empty() {
				rendered[y][x] = paint(c.Color, glyphs[c.Segment])
			}
		}
	}

	inside := func(x, y int) bool {
		return y >= 0 && y < s.Height && x >= 0 && x < s.Width
	}
	if t := s.Current; t != nil {
		for iy, row := range t.Grid {
			for ix, v := range row {
				x, y := t.X+ix, s.GhostY+iy
				if v && r.opts.Ghost && inside(x, y) && rendered[y][x] == emptyCell {
					rendered[y][x] = ghostCell
				}
			}
		}
		for iy, row := range t.Grid {
			for ix, v := range row {
				x, y := t.X+ix, t.Y+iy
				if v && inside(x, y) {
					rendered[y][x] = paint(t.Color, glyphs[tetris.SegmentSolid])
				}
			}
		}
	}

	rows := make([]string, s.Height)
	for y := range rendered {
		rows[y] = strings.Join(rendered[y], "")
	}
	return rows
}

// side is the panel on the right of the board, one line per board row.
func side(s tetris.Snapshot) []string {
	lines := []string{"NEXT"}
	for i := range 2 {
		line := ""
		if s.Next != nil && i < len(s.Next.Grid) {
			for _, v := range s.Next.Grid[i] {
				if v {
					line += paint(s.Next.Color, glyphs[tetris.SegmentSolid])
				} else {
					line += emptyCell
				}
			}
		}
		lines = append(lines, line)
	}
	lines = append(lines,
		"",
		"SCORE "+strconv.Itoa(s.Score),
		"LEVEL "+strconv.Itoa(s.Level),
		"LINES "+strconv.Itoa(s.Lines),
		"",
		"←→ move   ↓ down",
		"↑ rotate  ␣ drop",
		"+- volume m music",
		"q quit",
	)

	out := make([]string, s.Height)
	copy(out, lines)
	return out
}

// box prints lines centered in a frame over the board, moving the cursor
// to each line.
func box(buf *bytes.Buffer, s tetris.Snapshot, lines ...string) {
	width := s.Width * 2
	if width < 4 {
		return
	}
	inner := width - 2
	frame := append([]string{""}, lines...)
	frame = append(frame, "")
	top := boardTop + max((s.Height-len(frame)-2)/2, 0)

	edge := "+" + strings.Repeat("-", inner) + "+"
	fmt.Fprintf(buf, "\033[%d;%dH%s", top, boardLeft, edge)
	for i, l := range frame {
		fmt.Fprintf(buf, "\033[%d;%dH|%s|", top+1+i, boardLeft, center(l, inner))
	}
	fmt.Fprintf(buf, "\033[%d;%dH%s", top+1+len(frame), boardLeft, edge)
}

func center(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}
