package tetris

import "fmt"

// Point is a board coordinate. Y grows downward; row 0 is the top.
type Point struct {
	X, Y int
}

// MaxSide bounds each side of a board.
const MaxSide = 1024

// Grid is a fixed-size field of cell values: 0 is empty, 1..7 is the color
// of a locked piece. Storage is one contiguous buffer indexed x*height+y.
type Grid struct {
	width  int
	height int
	cells  []int
}

// NewGrid allocates an empty grid.
func NewGrid(width, height int) Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("tetris: invalid grid size %dx%d", width, height))
	}
	return Grid{
		width:  width,
		height: height,
		cells:  make([]int, width*height),
	}
}

// Width returns the number of columns.
func (g Grid) Width() int {
	return g.width
}

// Height returns the number of rows.
func (g Grid) Height() int {
	return g.height
}

// In reports whether (x, y) lies on the grid.
func (g Grid) In(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// At returns the value at (x, y). It panics when out of bounds.
func (g Grid) At(x, y int) int {
	return g.cells[g.index(x, y)]
}

// Set stores v at (x, y). It panics when out of bounds.
func (g Grid) Set(x, y, v int) {
	g.cells[g.index(x, y)] = v
}

// Row returns a copy of row y, left to right.
func (g Grid) Row(y int) []int {
	row := make([]int, g.width)
	for x := range g.width {
		row[x] = g.At(x, y)
	}
	return row
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	return Grid{
		width:  g.width,
		height: g.height,
		cells:  append([]int(nil), g.cells...),
	}
}

// Equal reports whether both grids have the same size and contents.
func (g Grid) Equal(o Grid) bool {
	if g.width != o.width || g.height != o.height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

func (g Grid) index(x, y int) int {
	if !g.In(x, y) {
		panic(fmt.Sprintf("tetris: cell (%d, %d) outside %dx%d grid", x, y, g.width, g.height))
	}
	return x*g.height + y
}
