// Package persistence reads and writes saved games in the line-oriented
// text record format and stores them as files.
package persistence

import (
	"errors"
	"fmt"
)

// DataError reports a saved game that could not be read or written.
type DataError struct {
	Op   string // "load", "save" or "decode"
	Path string // empty when not file-backed
	Line int    // 1-based record line, 0 when not applicable
	Msg  string
	Err  error
}

func (e *DataError) Error() string {
	s := "persistence: " + e.Op
	if e.Path != "" {
		s += " " + e.Path
	}
	if e.Line > 0 {
		s += fmt.Sprintf(": line %d", e.Line)
	}
	s += ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// IsDataError reports whether err is or wraps a DataError.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

// withPath fills in the file path on a DataError produced by the codec.
func withPath(err error, op, path string) error {
	var de *DataError
	if errors.As(err, &de) {
		de.Op = op
		de.Path = path
		return de
	}
	return &DataError{Op: op, Path: path, Msg: "i/o failure", Err: err}
}
