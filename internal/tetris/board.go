package tetris

import "math/rand"

// Board is the playfield: a grid of locked cells plus one active piece
// anchored at the top-left of its bounding box. The anchor may sit above
// row 0 or partly off the sides while the piece's empty cells overhang.
type Board struct {
	grid   Grid
	piece  *Piece
	anchor Point
	rng    *rand.Rand
}

// NewBoard creates an empty board and spawns the first piece.
func NewBoard(width, height int, rng *rand.Rand) *Board {
	b := &Board{
		grid: NewGrid(width, height),
		rng:  rng,
	}
	b.spawn()
	return b
}

// Width returns the number of columns.
func (b *Board) Width() int {
	return b.grid.Width()
}

// Height returns the number of rows.
func (b *Board) Height() int {
	return b.grid.Height()
}

// Grid returns the live grid. Callers that keep it must Clone it.
func (b *Board) Grid() Grid {
	return b.grid
}

// Piece returns the active piece.
func (b *Board) Piece() *Piece {
	return b.piece
}

// Anchor returns the active piece's bounding-box origin.
func (b *Board) Anchor() Point {
	return b.anchor
}

// Place installs a piece at an anchor without validating the position.
// Used when restoring a snapshot.
func (b *Board) Place(p *Piece, anchor Point) {
	b.piece = p
	b.anchor = anchor
}

// MoveLeft shifts the piece one column left. It reports false and leaves
// the board unchanged when the move collides.
func (b *Board) MoveLeft() bool {
	return b.shift(-1, 0)
}

// MoveRight shifts the piece one column right.
func (b *Board) MoveRight() bool {
	return b.shift(1, 0)
}

// MoveDown shifts the piece one row down. When that collides the piece is
// locked where it is, a new piece spawns and MoveDown reports false.
func (b *Board) MoveDown() bool {
	if b.shift(0, 1) {
		return true
	}
	b.lock()
	b.spawn()
	return false
}

// Rotate turns the piece clockwise. An invalid result is undone by three
// more turns; there is no wall kick.
func (b *Board) Rotate() bool {
	b.piece.Rotate()
	if b.valid() {
		return true
	}
	for range 3 {
		b.piece.Rotate()
	}
	return false
}

// Drop moves the piece down until it locks.
func (b *Board) Drop() {
	for b.MoveDown() {
	}
}

// IsGameOver reports whether any locked cell occupies the spawn rows 0 or 1.
func (b *Board) IsGameOver() bool {
	rows := min(2, b.Height())
	for y := range rows {
		for x := range b.Width() {
			if b.grid.At(x, y) != 0 {
				return true
			}
		}
	}
	return false
}

// ClearFullLines removes every full row, shifting the rows above it down,
// and returns how many were removed. Rows are scanned bottom-up and the
// same index is checked again after a clear, so adjacent full rows are all
// removed in a single call.
func (b *Board) ClearFullLines() int {
	cleared := 0
	for y := b.Height() - 1; y >= 0; {
		if !b.lineFull(y) {
			y--
			continue
		}
		b.removeLine(y)
		cleared++
	}
	return cleared
}

func (b *Board) shift(dx, dy int) bool {
	b.anchor.X += dx
	b.anchor.Y += dy
	if b.valid() {
		return true
	}
	b.anchor.X -= dx
	b.anchor.Y -= dy
	return false
}

// valid checks the active piece against the walls, the floor and locked
// cells. Cells above row 0 only need to stay inside the side walls.
func (b *Board) valid() bool {
	n := b.piece.Size()
	for x := range n {
		for y := range n {
			if b.piece.cells[x][y] == 0 {
				continue
			}
			bx, by := b.anchor.X+x, b.anchor.Y+y
			if bx < 0 || bx >= b.Width() || by >= b.Height() {
				return false
			}
			if by >= 0 && b.grid.At(bx, by) != 0 {
				return false
			}
		}
	}
	return true
}

func (b *Board) lock() {
	n := b.piece.Size()
	for x := range n {
		for y := range n {
			if b.piece.cells[x][y] == 0 {
				continue
			}
			bx, by := b.anchor.X+x, b.anchor.Y+y
			if b.grid.In(bx, by) {
				b.grid.Set(bx, by, b.piece.color)
			}
		}
	}
}

func (b *Board) spawn() {
	b.piece = RandomPiece(b.rng)
	b.anchor = Point{X: b.Width()/2 - 1, Y: 0}
}

func (b *Board) lineFull(y int) bool {
	for x := range b.Width() {
		if b.grid.At(x, y) == 0 {
			return false
		}
	}
	return true
}

func (b *Board) removeLine(line int) {
	for y := line; y > 0; y-- {
		for x := range b.Width() {
			b.grid.Set(x, y, b.grid.At(x, y-1))
		}
	}
	for x := range b.Width() {
		b.grid.Set(x, 0, 0)
	}
}
