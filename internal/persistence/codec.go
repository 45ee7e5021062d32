package persistence

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/vovakirdan/tui-blocks/internal/tetris"
)

// Record layout, one value group per line, tokens separated by spaces:
//
//	<width> <height> <elapsed> <linesCleared>
//	<variant> <color>
//	<anchorX> <anchorY>
//	<size>
//	size lines of the piece matrix; line i lists cells (i, 0..size-1)
//	height lines of the field; line y lists cells (0..width-1, y)

// Encode writes state as a text record.
func Encode(w io.Writer, state tetris.GameState) error {
	if state.Piece == nil {
		return &DataError{Op: "save", Msg: "state has no active piece"}
	}
	if state.Field.Width() != state.Width || state.Field.Height() != state.Height {
		return &DataError{Op: "save", Msg: fmt.Sprintf("field is %dx%d, state declares %dx%d",
			state.Field.Width(), state.Field.Height(), state.Width, state.Height)}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %s %d\n", state.Width, state.Height, FormatElapsed(state.Elapsed), state.LinesCleared)
	fmt.Fprintf(bw, "%s %d\n", state.Piece.Variant(), state.Piece.Color())
	fmt.Fprintf(bw, "%d %d\n", state.Anchor.X, state.Anchor.Y)

	n := state.Piece.Size()
	fmt.Fprintf(bw, "%d\n", n)
	for i := range n {
		row := make([]int, n)
		for j := range n {
			row[j] = state.Piece.At(i, j)
		}
		writeInts(bw, row)
	}

	for y := range state.Height {
		writeInts(bw, state.Field.Row(y))
	}

	if err := bw.Flush(); err != nil {
		return &DataError{Op: "save", Msg: "write failed", Err: err}
	}
	return nil
}

// Marshal encodes state into a byte slice.
func Marshal(state tetris.GameState) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads one text record. Nothing is returned unless the whole record
// parses and describes a consistent state.
func Decode(r io.Reader) (tetris.GameState, error) {
	d := &decoder{sc: bufio.NewScanner(r)}
	state, err := d.decode()
	if err != nil {
		return tetris.GameState{}, err
	}
	return state, nil
}

// Unmarshal decodes a record held in memory.
func Unmarshal(data []byte) (tetris.GameState, error) {
	return Decode(bytes.NewReader(data))
}

func writeInts(w *bufio.Writer, vals []int) {
	for i, v := range vals {
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(strconv.Itoa(v))
	}
	w.WriteByte('\n')
}

type decoder struct {
	sc   *bufio.Scanner
	line int
}

func (d *decoder) fail(format string, args ...any) error {
	return &DataError{Op: "decode", Line: d.line, Msg: fmt.Sprintf(format, args...)}
}

// next returns the fields of the next line, requiring exactly want tokens.
func (d *decoder) next(want int, what string) ([]string, error) {
	if !d.sc.Scan() {
		d.line++
		if err := d.sc.Err(); err != nil {
			return nil, &DataError{Op: "decode", Line: d.line, Msg: "read failed", Err: err}
		}
		return nil, d.fail("unexpected end of record, want %s", what)
	}
	d.line++
	fields := strings.Fields(d.sc.Text())
	if len(fields) != want {
		return nil, d.fail("%s: want %d values, got %d", what, want, len(fields))
	}
	return fields, nil
}

func (d *decoder) ints(fields []string, what string) ([]int, error) {
	vals := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, d.fail("%s: %q is not a number", what, f)
		}
		vals[i] = v
	}
	return vals, nil
}

func (d *decoder) decode() (tetris.GameState, error) {
	var s tetris.GameState

	header, err := d.next(4, "header")
	if err != nil {
		return s, err
	}
	dims, err := d.ints([]string{header[0], header[1], header[3]}, "header")
	if err != nil {
		return s, err
	}
	s.Width, s.Height, s.LinesCleared = dims[0], dims[1], dims[2]
	if s.Width <= 0 || s.Height <= 0 {
		return s, d.fail("header: invalid size %dx%d", s.Width, s.Height)
	}
	if s.Width > tetris.MaxSide || s.Height > tetris.MaxSide {
		return s, d.fail("header: board %dx%d exceeds %d cells per side", s.Width, s.Height, tetris.MaxSide)
	}
	if s.LinesCleared < 0 {
		return s, d.fail("header: negative lines cleared %d", s.LinesCleared)
	}
	if s.Elapsed, err = ParseElapsed(header[2]); err != nil {
		return s, d.fail("header: %v", err)
	}
	s.HasElapsed = true

	pieceInfo, err := d.next(2, "piece")
	if err != nil {
		return s, err
	}
	variant, err := tetris.ParseVariant(pieceInfo[0])
	if err != nil {
		return s, d.fail("piece: unknown variant %q", pieceInfo[0])
	}
	color, err := d.ints(pieceInfo[1:], "piece color")
	if err != nil {
		return s, err
	}
	if color[0] < tetris.MinColor || color[0] > tetris.MaxColor {
		return s, d.fail("piece: color %d outside %d..%d", color[0], tetris.MinColor, tetris.MaxColor)
	}

	pos, err := d.next(2, "position")
	if err != nil {
		return s, err
	}
	anchor, err := d.ints(pos, "position")
	if err != nil {
		return s, err
	}
	s.Anchor = tetris.Point{X: anchor[0], Y: anchor[1]}

	sizeLine, err := d.next(1, "piece size")
	if err != nil {
		return s, err
	}
	size, err := d.ints(sizeLine, "piece size")
	if err != nil {
		return s, err
	}
	n := size[0]
	if n != variant.Size() {
		return s, d.fail("piece size: %s is %dx%d, record says %d", variant, variant.Size(), variant.Size(), n)
	}

	cells := make([][]int, n)
	for i := range n {
		fields, err := d.next(n, "piece matrix")
		if err != nil {
			return s, err
		}
		if cells[i], err = d.ints(fields, "piece matrix"); err != nil {
			return s, err
		}
	}

	// The random source only seeds a color that is overwritten below.
	piece := tetris.NewPiece(variant, rand.New(rand.NewSource(0)))
	if err := piece.SetCells(cells); err != nil {
		return s, d.fail("piece matrix: %v", err)
	}
	if err := piece.SetColor(color[0]); err != nil {
		return s, d.fail("piece: %v", err)
	}
	s.Piece = piece

	s.Field = tetris.NewGrid(s.Width, s.Height)
	for y := range s.Height {
		fields, err := d.next(s.Width, "field row")
		if err != nil {
			return s, err
		}
		row, err := d.ints(fields, "field row")
		if err != nil {
			return s, err
		}
		for x, v := range row {
			if v < 0 || v > tetris.MaxColor {
				return s, d.fail("field row: cell %d = %d outside 0..%d", x, v, tetris.MaxColor)
			}
			s.Field.Set(x, y, v)
		}
	}

	for d.sc.Scan() {
		d.line++
		if strings.TrimSpace(d.sc.Text()) != "" {
			return s, d.fail("unexpected data after field")
		}
	}
	if err := d.sc.Err(); err != nil {
		return s, &DataError{Op: "decode", Msg: "read failed", Err: err}
	}

	if err := s.Validate(); err != nil {
		return s, &DataError{Op: "decode", Msg: "inconsistent state", Err: err}
	}
	return s, nil
}
