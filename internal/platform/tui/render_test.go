package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/tui-blocks/internal/clock"
	"github.com/vovakirdan/tui-blocks/internal/core"
	"github.com/vovakirdan/tui-blocks/internal/tetris"
)

func newRenderEngine() *tetris.Engine {
	c := clock.NewManual(time.Unix(0, 0))
	return tetris.NewEngine(c, 6, 8, tetris.WithNow(c.Now), tetris.WithSeed(3))
}

func TestBoardSize(t *testing.T) {
	w, h := BoardSize(10, 20)
	if w != 10*cellW+2+panelGap+panelWidth {
		t.Errorf("BoardSize width = %d", w)
	}
	if h != 22 {
		t.Errorf("BoardSize height = %d, expected 22", h)
	}

	if _, h := BoardSize(4, 4); h != 12 {
		t.Errorf("BoardSize height for small board = %d, expected 12", h)
	}
}

func TestDrawGameShowsActivePiece(t *testing.T) {
	e := newRenderEngine()
	w, h := BoardSize(e.Width(), e.Height())
	s := core.NewScreen(w, h)

	DrawGame(s, e, "")
	if n := strings.Count(s.String(), string(blockGlyph)); n != 0 {
		t.Errorf("no piece should be drawn before the game starts, found %d glyphs", n)
	}
	if !strings.Contains(s.String(), "Press r to start") {
		t.Error("idle status not shown")
	}

	e.StartGame(6, 8)
	DrawGame(s, e, "hello")

	out := s.String()
	if n := strings.Count(out, string(blockGlyph)); n != 4*cellW {
		t.Errorf("active piece drew %d glyphs, expected %d", n, 4*cellW)
	}
	for _, want := range []string{"BLOCKS", "Lines  0", "Time   00:00:00.000", "Playing", "hello"} {
		if !strings.Contains(out, want) {
			t.Errorf("panel missing %q", want)
		}
	}
}

func TestDrawGameColorsPieceCells(t *testing.T) {
	e := newRenderEngine()
	e.StartGame(6, 8)
	w, h := BoardSize(e.Width(), e.Height())
	s := core.NewScreen(w, h)
	DrawGame(s, e, "")

	piece, anchor := e.Piece(), e.Anchor()
	want := core.PieceColor(piece.Color())
	for px := range piece.Size() {
		for py := range piece.Size() {
			if piece.At(px, py) == 0 {
				continue
			}
			cell := s.GetCell(1+(anchor.X+px)*cellW, 1+anchor.Y+py)
			if cell.Rune != blockGlyph || cell.Color != want {
				t.Errorf("cell (%d,%d) = %q/%v, expected block in %v", px, py, cell.Rune, cell.Color, want)
			}
		}
	}
}

func TestDrawGamePausedLabel(t *testing.T) {
	e := newRenderEngine()
	e.StartGame(6, 8)
	e.PauseGame()

	w, h := BoardSize(e.Width(), e.Height())
	s := core.NewScreen(w, h)
	DrawGame(s, e, "")
	if !strings.Contains(s.String(), "PAUSED") {
		t.Error("paused label not shown")
	}

	// 6x8 board: inner area starts at (1,1) and is 12x8, banner on row 5.
	if got := s.GetCell(4, 5); got.Rune != 'P' || got.Color != core.ColorYellow {
		t.Errorf("banner cell = %q/%v, expected yellow 'P' centered on the board", got.Rune, got.Color)
	}
	for _, y := range []int{4, 6} {
		if got := s.GetCell(1, y).Rune; got != ' ' {
			t.Errorf("banner row %d should be blanked, got %q", y, got)
		}
	}
}

func TestDrawGameOverBanner(t *testing.T) {
	e := newRenderEngine()
	e.StartGame(6, 8)
	for range 100 {
		if e.IsGameOver() {
			break
		}
		e.Drop()
	}
	if !e.IsGameOver() {
		t.Fatal("game did not end")
	}

	w, h := BoardSize(e.Width(), e.Height())
	s := core.NewScreen(w, h)
	DrawGame(s, e, "")

	row := strings.Split(s.String(), "\n")[5]
	if !strings.Contains(row, "GAME OVER") {
		t.Errorf("board row 5 = %q, expected game over banner", row)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		n        int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much too long", 5, "much…"},
	}
	for _, tc := range tests {
		if got := truncate(tc.in, tc.n); got != tc.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q", tc.in, tc.n, got, tc.expected)
		}
	}
}
