package terminal

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	approvals "github.com/approvals/go-approval-tests"

	"blockfall/tetris"
)

var (
	red  = tetris.Color{R: 255}
	blue = tetris.Color{B: 255}
)

func smallSnapshot() tetris.Snapshot {
	stack := make([][]tetris.Cell, 4)
	for y := range stack {
		stack[y] = make([]tetris.Cell, 4)
	}
	stack[3][0] = tetris.Cell{Shape: tetris.Z, Color: red}
	return tetris.Snapshot{
		State:  tetris.StatePlaying,
		Width:  4,
		Height: 4,
		Stack:  stack,
		Current: &tetris.Tetromino{
			Grid:  [][]bool{{true, true}},
			X:     1,
			Y:     0,
			Shape: tetris.I,
			Color: blue,
		},
		Next: &tetris.Tetromino{
			Grid:  [][]bool{{true, true}, {true, true}},
			Shape: tetris.O,
			Color: red,
		},
		GhostY: 3,
	}
}

func TestBoard(t *testing.T) {
	cur := paint(blue, "[]")
	locked := paint(red, "[]")
	tests := []struct {
		name  string
		ghost bool
		edit  func(*tetris.Snapshot)
		want  []string
	}{
		{
			name:  "current, ghost and stack",
			ghost: true,
			want: []string{
				"  " + cur + cur + "  ",
				"        ",
				"        ",
				locked + "[][]" + "  ",
			},
		},
		{
			name: "no ghost",
			want: []string{
				"  " + cur + cur + "  ",
				"        ",
				"        ",
				locked + "    " + "  ",
			},
		},
		{
			name:  "current covers its ghost",
			ghost: true,
			edit:  func(s *tetris.Snapshot) { s.GhostY = 0 },
			want: []string{
				"  " + cur + cur + "  ",
				"        ",
				"        ",
				locked + "      ",
			},
		},
		{
			name:  "no current tetromino",
			ghost: true,
			edit:  func(s *tetris.Snapshot) { s.Current = nil },
			want: []string{
				"        ",
				"        ",
				"        ",
				locked + "      ",
			},
		},
		{
			name: "cells above the board are skipped",
			edit: func(s *tetris.Snapshot) { s.Current.Y = -1 },
			want: []string{
				"        ",
				"        ",
				"        ",
				locked + "      ",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := smallSnapshot()
			if tt.edit != nil {
				tt.edit(&s)
			}
			r := &Renderer{opts: RenderOptions{Ghost: tt.ghost}}
			if got := r.board(s); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wanted %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLockedSegments(t *testing.T) {
	b := tetris.NewTestBoard(tetris.I)
	b.Drop()
	s := b.Snapshot()
	s.Current = nil

	row := (&Renderer{}).board(s)[s.Height-1]
	for _, glyph := range []string{"[=", "==", "=]"} {
		if !strings.Contains(row, glyph) {
			t.Errorf("wanted %q in the bottom row %q", glyph, row)
		}
	}
}

func TestSide(t *testing.T) {
	s := smallSnapshot()
	s.Height = 20
	s.Score, s.Level, s.Lines = 300, 1, 12

	got := side(s)
	if len(got) != 20 {
		t.Fatalf("wanted one line per board row, got %d", len(got))
	}
	next := paint(red, "[]") + paint(red, "[]")
	for i, want := range map[int]string{0: "NEXT", 1: next, 2: next, 4: "SCORE 300", 5: "LEVEL 1", 6: "LINES 12"} {
		if got[i] != want {
			t.Errorf("line %d: wanted %q, got %q", i, want, got[i])
		}
	}
	if got[19] != "" {
		t.Errorf("wanted the last line empty, got %q", got[19])
	}

	s.Height = 2
	if got := side(s); len(got) != 2 || got[0] != "NEXT" {
		t.Errorf("wanted the panel cut to the board height, got %q", got)
	}
}

func TestRender(t *testing.T) {
	snap := func(st tetris.State) tetris.Snapshot {
		s := tetris.NewTestBoard(tetris.T).Snapshot()
		s.State = st
		s.Score, s.Level, s.Lines = 1200, 3, 31
		return s
	}
	tests := []struct {
		name    string
		state   tetris.State
		want    []string
		notWant []string
	}{
		{
			name:    "start screen",
			state:   tetris.StateStart,
			want:    []string{"(g)o  (q)uit"},
			notWant: []string{"GAME OVER"},
		},
		{
			name:    "playing",
			state:   tetris.StatePlaying,
			notWant: []string{"(g)o  (q)uit", "GAME OVER"},
		},
		{
			name:  "game over",
			state: tetris.StateGameOver,
			want:  []string{"GAME OVER", "score 1200", "level 3", "lines 31", "(r)estart (q)uit"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := &strings.Builder{}
			r, err := NewRenderer(w, nil, RenderOptions{Ghost: true, Name: "local"})
			if err != nil {
				t.Fatalf("unable to create renderer: %v", err)
			}
			if err := r.Render(snap(tt.state)); err != nil {
				t.Fatalf("unable to render: %v", err)
			}

			out := w.String()
			if !strings.HasPrefix(out, resetPos) {
				t.Errorf("wanted the frame to start at the top left corner")
			}
			if !strings.Contains(out, "\033[1mBLOCKFALL\033[0m local") {
				t.Errorf("wanted the title and the name in %q", out)
			}
			if n := strings.Count(out, "║"); n != 40 {
				t.Errorf("wanted 40 side borders, got %d", n)
			}
			if strings.Contains(out, "\n") && strings.Count(out, "\n") != strings.Count(out, "\r\n") {
				t.Errorf("wanted every new line to carry a carriage return")
			}
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("wanted %q in the frame", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("didn't want %q in the frame", s)
				}
			}
		})
	}
}

// frameSnapshot is a full size board with a locked I and O, a J falling
// above its ghost and a T coming next.
func frameSnapshot(st tetris.State) tetris.Snapshot {
	stack := make([][]tetris.Cell, tetris.DefaultHeight)
	for y := range stack {
		stack[y] = make([]tetris.Cell, tetris.DefaultWidth)
	}
	iColor := tetris.Color{B: 255}
	for x, seg := range []tetris.Segment{tetris.SegmentLeft, tetris.SegmentHorizontal, tetris.SegmentHorizontal, tetris.SegmentRight} {
		stack[19][x] = tetris.Cell{Shape: tetris.I, Segment: seg, Color: iColor}
	}
	oColor := tetris.Color{R: 255, G: 215}
	for _, p := range [][2]int{{8, 18}, {9, 18}, {8, 19}, {9, 19}} {
		stack[p[1]][p[0]] = tetris.Cell{Shape: tetris.O, Color: oColor}
	}
	return tetris.Snapshot{
		State:  st,
		Width:  tetris.DefaultWidth,
		Height: tetris.DefaultHeight,
		Stack:  stack,
		Current: &tetris.Tetromino{
			Grid:  [][]bool{{true, false, false}, {true, true, true}},
			X:     4,
			Y:     2,
			Shape: tetris.J,
			Color: tetris.Color{R: 255},
		},
		GhostY: 18,
		Next: &tetris.Tetromino{
			Grid:  [][]bool{{true, true, true}, {false, true, false}},
			Shape: tetris.T,
			Color: tetris.Color{R: 128, B: 128},
		},
		Score: 300,
		Level: 1,
		Lines: 3,
	}
}

// visible shows escape characters as ^[ so approved frames stay readable.
func visible(frame string) string {
	return strings.ReplaceAll(frame, "\x1b", "^[") + "\n"
}

func TestRenderFrames(t *testing.T) {
	tests := []struct {
		name string
		snap func() tetris.Snapshot
	}{
		{
			name: "start screen",
			snap: func() tetris.Snapshot { return frameSnapshot(tetris.StateStart) },
		},
		{
			name: "playing with ghost",
			snap: func() tetris.Snapshot { return frameSnapshot(tetris.StatePlaying) },
		},
		{
			name: "game over",
			snap: func() tetris.Snapshot {
				s := frameSnapshot(tetris.StateGameOver)
				s.Current = nil
				s.Score, s.Level, s.Lines = 1200, 2, 12
				return s
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := &strings.Builder{}
			r, err := NewRenderer(w, nil, RenderOptions{Ghost: true, Name: "local"})
			if err != nil {
				t.Fatalf("unable to create renderer: %v", err)
			}
			if err := r.Render(tt.snap()); err != nil {
				t.Fatalf("unable to render: %v", err)
			}
			approvals.VerifyString(t, visible(w.String()))
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRenderWriteError(t *testing.T) {
	r, err := NewRenderer(failingWriter{}, nil, RenderOptions{})
	if err != nil {
		t.Fatalf("unable to create renderer: %v", err)
	}
	if err := r.Render(tetris.NewTestBoard(tetris.O).Snapshot()); err == nil {
		t.Errorf("wanted an error from a broken writer")
	}
}

func TestSize(t *testing.T) {
	cols, lines := Size(10, 20)
	if cols != 46 || lines != 23 {
		t.Errorf("wanted 46x23, got %dx%d", cols, lines)
	}
}

func TestCenter(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"ab", 6, "  ab  "},
		{"abc", 6, " abc  "},
		{"abcdefgh", 6, "abcdef"},
	}
	for _, tt := range tests {
		if got := center(tt.in, tt.width); got != tt.want {
			t.Errorf("center(%q, %d): wanted %q, got %q", tt.in, tt.width, tt.want, got)
		}
	}
}
