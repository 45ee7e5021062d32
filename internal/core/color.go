package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for game elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// pieceColors maps piece color tags 1..7 to display colors.
var pieceColors = [...]Color{
	ColorDefault,
	ColorRed,
	ColorGreen,
	ColorYellow,
	ColorBlue,
	ColorMagenta,
	ColorCyan,
	ColorOrange,
}

// PieceColor returns the display color for a field cell value.
// Empty cells and unknown tags map to ColorDefault.
func PieceColor(tag int) Color {
	if tag <= 0 || tag >= len(pieceColors) {
		return ColorDefault
	}
	return pieceColors[tag]
}
