package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-blocks/internal/core"
	"github.com/vovakirdan/tui-blocks/internal/persistence"
	"github.com/vovakirdan/tui-blocks/internal/tetris"
)

// Layout constants. Every board cell is two characters wide so cells look
// square in a typical terminal font.
const (
	cellW      = 2
	panelGap   = 2
	panelWidth = 22
)

// Glyphs used for board cells.
const (
	blockGlyph = '█'
	emptyGlyph = '·'
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			// Collect consecutive cells with same color
			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			// Apply style to the run
			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// BoardSize returns the screen area needed for a board of the given size,
// including its frame and the side panel.
func BoardSize(width, height int) (int, int) {
	return width*cellW + 2 + panelGap + panelWidth, max(height+2, 12)
}

// DrawGame renders the engine's board and status panel into s.
// The active piece is overlaid on the locked cells.
func DrawGame(s *core.Screen, e *tetris.Engine, message string) {
	s.Clear()

	w, h := e.Width(), e.Height()
	frame := core.NewRect(0, 0, w*cellW+2, h+2)
	s.DrawBox(frame)

	grid := e.Grid()
	for y := range h {
		for x := range w {
			drawCell(s, x, y, grid.At(x, y))
		}
	}

	st := e.Status()
	if st == tetris.StatusRunning || st == tetris.StatusPaused {
		field := core.NewRect(0, 0, w, h)
		piece, anchor := e.Piece(), e.Anchor()
		for px := range piece.Size() {
			for py := range piece.Size() {
				x, y := anchor.X+px, anchor.Y+py
				if piece.At(px, py) != 0 && field.Contains(x, y) {
					drawCell(s, x, y, piece.Color())
				}
			}
		}
	}

	switch st {
	case tetris.StatusPaused:
		drawBanner(s, frame, "PAUSED", core.ColorYellow)
	case tetris.StatusGameOver:
		drawBanner(s, frame, "GAME OVER", core.ColorBrightRed)
	}

	px := frame.Right() + panelGap
	s.DrawTextColored(px, 1, "BLOCKS", core.ColorBrightCyan)
	s.DrawText(px, 3, fmt.Sprintf("Lines  %d", e.LinesCleared()))
	s.DrawText(px, 4, "Time   "+persistence.FormatElapsed(e.Elapsed()))
	s.DrawTextColored(px, 6, statusLabel(e.Status()), statusColor(e.Status()))
	if message != "" {
		s.DrawTextColored(px, 8, truncate(message, panelWidth), core.ColorGray)
	}
}

// drawBanner blanks a three-row band across the middle of the board and
// centers label in it.
func drawBanner(s *core.Screen, frame core.Rect, label string, c core.Color) {
	inner := core.NewRect(frame.X+1, frame.Y+1, frame.W-2, frame.H-2)
	mid := inner.Y + inner.H/2
	s.FillRect(core.NewRect(inner.X, mid-1, inner.W, 3), core.Cell{Rune: ' '})
	s.DrawTextCentered(inner, mid, label, c)
}

func drawCell(s *core.Screen, x, y, value int) {
	sx, sy := 1+x*cellW, 1+y
	if value == 0 {
		s.SetColored(sx, sy, emptyGlyph, core.ColorGray)
		s.Set(sx+1, sy, ' ')
		return
	}
	c := core.PieceColor(value)
	s.SetColored(sx, sy, blockGlyph, c)
	s.SetColored(sx+1, sy, blockGlyph, c)
}

func statusLabel(st tetris.Status) string {
	switch st {
	case tetris.StatusRunning:
		return "Playing"
	case tetris.StatusPaused:
		return "PAUSED"
	case tetris.StatusGameOver:
		return "GAME OVER - r"
	default:
		return "Press r to start"
	}
}

func statusColor(st tetris.Status) core.Color {
	switch st {
	case tetris.StatusPaused:
		return core.ColorYellow
	case tetris.StatusGameOver:
		return core.ColorBrightRed
	default:
		return core.ColorGreen
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
