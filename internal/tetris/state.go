package tetris

import (
	"context"
	"fmt"
	"time"
)

// GameState is a complete, independent copy of a game: the field, the
// active piece and its anchor, the line counter and the elapsed time.
// It backs both pause/resume and saved games.
type GameState struct {
	Field        Grid
	Piece        *Piece
	Anchor       Point
	Elapsed      time.Duration
	HasElapsed   bool // false when Elapsed is unknown
	LinesCleared int
	Width        int
	Height       int
}

// Validate checks the state is internally consistent before it is restored.
func (s GameState) Validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.Width > MaxSide || s.Height > MaxSide {
		return fmt.Errorf("tetris: invalid state size %dx%d", s.Width, s.Height)
	}
	if s.Field.Width() != s.Width || s.Field.Height() != s.Height {
		return fmt.Errorf("tetris: field is %dx%d, state declares %dx%d",
			s.Field.Width(), s.Field.Height(), s.Width, s.Height)
	}
	for x := range s.Width {
		for y := range s.Height {
			if v := s.Field.At(x, y); v < 0 || v > MaxColor {
				return fmt.Errorf("tetris: cell (%d, %d) = %d outside 0..%d", x, y, v, MaxColor)
			}
		}
	}
	if s.Piece == nil {
		return fmt.Errorf("tetris: state has no active piece")
	}
	if !s.Piece.Variant().Valid() {
		return fmt.Errorf("tetris: unknown piece variant %d", s.Piece.Variant())
	}
	if s.LinesCleared < 0 {
		return fmt.Errorf("tetris: negative lines cleared %d", s.LinesCleared)
	}
	if s.HasElapsed && s.Elapsed < 0 {
		return fmt.Errorf("tetris: negative elapsed time %s", s.Elapsed)
	}
	return nil
}

// Clone returns a deep copy.
func (s GameState) Clone() GameState {
	c := s
	if s.Field.cells != nil {
		c.Field = s.Field.Clone()
	}
	if s.Piece != nil {
		c.Piece = s.Piece.Clone()
	}
	return c
}

// Timer is the tick source that drives gravity. The engine sets the
// interval, starts and stops it, and registers one elapsed callback.
// Callbacks must arrive on the same goroutine that issues commands.
type Timer interface {
	Start()
	Stop()
	SetInterval(d time.Duration)
	OnElapsed(fn func())
}

// Repository persists game states under a name.
type Repository interface {
	Save(ctx context.Context, name string, state GameState) error
	Load(ctx context.Context, name string) (GameState, error)
}

// Status is the engine's run state.
type Status int

const (
	StatusNotStarted Status = iota
	StatusRunning
	StatusPaused
	StatusGameOver
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not started"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// Event is a state-change notification for the presentation layer.
type Event int

const (
	EventUpdated Event = iota
	EventGameOver
	EventLinesCleared
	EventPaused
	EventResumed
)

func (e Event) String() string {
	switch e {
	case EventUpdated:
		return "updated"
	case EventGameOver:
		return "game_over"
	case EventLinesCleared:
		return "lines_cleared"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	default:
		return "unknown"
	}
}

// Listener receives engine events synchronously.
type Listener func(Event)
