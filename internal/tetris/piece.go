// Package tetris contains the falling-block game engine: piece geometry,
// the board with its collision and line rules, state snapshots, and the
// run/pause/game-over state machine.
//
// Nothing in this package knows about terminals or Bubble Tea. Front ends
// drive an Engine through its command methods and a Timer, and observe it
// through listeners.
package tetris

import (
	"fmt"
	"math/rand"
)

// Variant identifies one of the fixed piece shapes.
type Variant int

const (
	VariantK Variant = iota // 2x2 square
	VariantE                // 4-long line
	VariantL
	VariantT
	VariantR
)

// Variants lists every variant in tag order.
var Variants = []Variant{VariantK, VariantE, VariantL, VariantT, VariantR}

// MinColor and MaxColor bound the color tag of a piece and of a locked cell.
const (
	MinColor = 1
	MaxColor = 7
)

// canonical holds each variant's spawn matrix, indexed [x][y]:
// every inner slice is one board column of the bounding box.
var canonical = map[Variant][][]int{
	VariantK: {
		{1, 1},
		{1, 1},
	},
	VariantE: {
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	},
	VariantL: {
		{0, 0, 1},
		{1, 1, 1},
		{0, 0, 0},
	},
	VariantT: {
		{0, 1, 0},
		{1, 1, 1},
		{0, 0, 0},
	},
	VariantR: {
		{0, 0, 1},
		{0, 1, 1},
		{0, 1, 0},
	},
}

// String returns the variant's persistence token.
func (v Variant) String() string {
	switch v {
	case VariantK:
		return "K"
	case VariantE:
		return "E"
	case VariantL:
		return "L"
	case VariantT:
		return "T"
	case VariantR:
		return "R"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	_, ok := canonical[v]
	return ok
}

// Size returns the side length of the variant's bounding box.
func (v Variant) Size() int {
	return len(canonical[v])
}

// ParseVariant maps a persistence token back to its variant.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("tetris: unknown piece variant %q", s)
}

// Piece is an active falling shape. The variant tag survives rotation and
// cloning; only the occupancy matrix changes.
type Piece struct {
	variant Variant
	color   int
	cells   [][]int // [x][y], size x size
}

// NewPiece creates a piece of the given variant in its spawn orientation
// with a color drawn from rng.
func NewPiece(v Variant, rng *rand.Rand) *Piece {
	if !v.Valid() {
		panic(fmt.Sprintf("tetris: unknown piece variant %d", int(v)))
	}
	return &Piece{
		variant: v,
		color:   MinColor + rng.Intn(MaxColor-MinColor+1),
		cells:   copyMatrix(canonical[v]),
	}
}

// RandomPiece picks a variant uniformly and creates it.
func RandomPiece(rng *rand.Rand) *Piece {
	return NewPiece(Variants[rng.Intn(len(Variants))], rng)
}

// Variant returns the shape tag the piece was created with.
func (p *Piece) Variant() Variant {
	return p.variant
}

// Color returns the color tag written into the grid when the piece locks.
func (p *Piece) Color() int {
	return p.color
}

// Size returns the side length of the occupancy matrix.
func (p *Piece) Size() int {
	return len(p.cells)
}

// At returns the occupancy (0 or 1) at local coordinates.
// It panics if x or y is outside [0, Size()).
func (p *Piece) At(x, y int) int {
	n := p.Size()
	if x < 0 || x >= n || y < 0 || y >= n {
		panic(fmt.Sprintf("tetris: piece cell (%d, %d) outside %dx%d matrix", x, y, n, n))
	}
	return p.cells[x][y]
}

// Cells returns a copy of the occupancy matrix, indexed [x][y].
func (p *Piece) Cells() [][]int {
	return copyMatrix(p.cells)
}

// Rotate turns the matrix 90 degrees clockwise in place. It never checks
// the board; four rotations restore the original matrix.
func (p *Piece) Rotate() {
	n := p.Size()
	rotated := make([][]int, n)
	for x := range n {
		rotated[x] = make([]int, n)
		for y := range n {
			rotated[x][y] = p.cells[n-1-y][x]
		}
	}
	p.cells = rotated
}

// Clone returns an independent copy with the same variant, color and
// current orientation.
func (p *Piece) Clone() *Piece {
	return &Piece{
		variant: p.variant,
		color:   p.color,
		cells:   copyMatrix(p.cells),
	}
}

// SetCells replaces the occupancy matrix. It exists for decoding saved games,
// where the stored matrix reflects rotations applied before saving.
func (p *Piece) SetCells(cells [][]int) error {
	n := p.variant.Size()
	if len(cells) != n {
		return fmt.Errorf("tetris: %s matrix must be %dx%d, got %d columns", p.variant, n, n, len(cells))
	}
	for x, col := range cells {
		if len(col) != n {
			return fmt.Errorf("tetris: %s matrix column %d has %d cells, want %d", p.variant, x, len(col), n)
		}
		for y, v := range col {
			if v != 0 && v != 1 {
				return fmt.Errorf("tetris: %s matrix cell (%d, %d) = %d, want 0 or 1", p.variant, x, y, v)
			}
		}
	}
	p.cells = copyMatrix(cells)
	return nil
}

// SetColor overrides the color tag.
func (p *Piece) SetColor(color int) error {
	if color < MinColor || color > MaxColor {
		return fmt.Errorf("tetris: piece color %d outside %d..%d", color, MinColor, MaxColor)
	}
	p.color = color
	return nil
}

// Equal reports whether two pieces share variant, color and matrix.
func (p *Piece) Equal(o *Piece) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.variant != o.variant || p.color != o.color || p.Size() != o.Size() {
		return false
	}
	for x := range p.cells {
		for y := range p.cells[x] {
			if p.cells[x][y] != o.cells[x][y] {
				return false
			}
		}
	}
	return true
}

func copyMatrix(src [][]int) [][]int {
	dst := make([][]int, len(src))
	for i := range src {
		dst[i] = append([]int(nil), src[i]...)
	}
	return dst
}
