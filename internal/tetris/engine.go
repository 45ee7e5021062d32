package tetris

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultInterval is the gravity period.
const DefaultInterval = 700 * time.Millisecond

// Engine owns a Board and runs the start/pause/resume/game-over state
// machine on top of it. Commands issued in a state where they do not apply
// are ignored. Engine is not safe for concurrent use: timer callbacks and
// commands must be delivered from one goroutine.
type Engine struct {
	board    *Board
	timer    Timer
	now      func() time.Time
	rng      *rand.Rand
	logger   *log.Logger
	interval time.Duration

	notifyRejected bool
	listeners      []Listener

	started bool
	paused  bool
	over    bool
	lines   int

	startTime    time.Time
	pauseStart   time.Time
	pausedFor    time.Duration
	finalElapsed time.Duration
	pauseState   *GameState
}

// Option configures an Engine.
type Option func(*Engine)

// WithNow replaces the wall clock used for elapsed-time accounting.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRand sets the random source for piece variants and colors.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithSeed seeds the random source.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithNotifyRejected controls whether a move or rotation the board rejects
// still raises EventUpdated. It does by default.
func WithNotifyRejected(notify bool) Option {
	return func(e *Engine) {
		e.notifyRejected = notify
	}
}

// WithInterval overrides the gravity period.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// NewEngine creates an engine with an idle board of the given size and
// subscribes it to the timer. The game does not run until StartGame.
func NewEngine(timer Timer, width, height int, opts ...Option) *Engine {
	e := &Engine{
		timer:          timer,
		now:            time.Now,
		logger:         log.New(io.Discard),
		interval:       DefaultInterval,
		notifyRejected: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e.board = NewBoard(width, height, e.rng)
	e.timer.SetInterval(e.interval)
	e.timer.OnElapsed(e.MoveDown)
	return e
}

// Subscribe registers a listener for state-change events.
func (e *Engine) Subscribe(l Listener) {
	e.listeners = append(e.listeners, l)
}

// Width returns the board width.
func (e *Engine) Width() int { return e.board.Width() }

// Height returns the board height.
func (e *Engine) Height() int { return e.board.Height() }

// Grid returns a copy of the locked cells.
func (e *Engine) Grid() Grid { return e.board.Grid().Clone() }

// Piece returns a copy of the active piece.
func (e *Engine) Piece() *Piece { return e.board.Piece().Clone() }

// Anchor returns the active piece's position.
func (e *Engine) Anchor() Point { return e.board.Anchor() }

// LinesCleared returns the number of rows removed since the game started.
func (e *Engine) LinesCleared() int { return e.lines }

// IsStarted reports whether a game is in progress (running or paused).
func (e *Engine) IsStarted() bool { return e.started }

// IsPaused reports whether the game is paused.
func (e *Engine) IsPaused() bool { return e.paused }

// IsGameOver reports whether the last game ended.
func (e *Engine) IsGameOver() bool { return e.over }

// Status returns the current run state.
func (e *Engine) Status() Status {
	switch {
	case e.over:
		return StatusGameOver
	case !e.started:
		return StatusNotStarted
	case e.paused:
		return StatusPaused
	default:
		return StatusRunning
	}
}

// Elapsed returns play time excluding pauses. It is frozen once the game
// ends and while it is paused.
func (e *Engine) Elapsed() time.Duration {
	switch {
	case e.over:
		return e.finalElapsed
	case !e.started:
		return 0
	case e.paused:
		return e.pauseStart.Sub(e.startTime) - e.pausedFor
	default:
		return e.now().Sub(e.startTime) - e.pausedFor
	}
}

// StartGame discards any current game and starts a new one on a fresh
// board of the given size.
func (e *Engine) StartGame(width, height int) {
	e.board = NewBoard(width, height, e.rng)
	e.lines = 0
	e.paused = false
	e.over = false
	e.started = true
	e.startTime = e.now()
	e.pausedFor = 0
	e.finalElapsed = 0
	e.pauseState = nil

	e.timer.Start()
	e.logger.Debug("game started", "width", width, "height", height)

	e.emit(EventUpdated)
	e.emit(EventLinesCleared)
}

// PauseGame stops the timer and captures the state to restore on resume.
func (e *Engine) PauseGame() {
	if !e.running() {
		return
	}
	e.timer.Stop()
	e.paused = true
	e.pauseStart = e.now()
	state := e.SaveGameState()
	e.pauseState = &state
	e.logger.Debug("game paused", "elapsed", state.Elapsed)
	e.emit(EventPaused)
}

// ResumeGame restores the pause snapshot and restarts the timer. Time
// spent paused is excluded from Elapsed.
func (e *Engine) ResumeGame() {
	if !e.paused || !e.started || e.over {
		return
	}
	if e.pauseState != nil {
		e.restoreBoard(*e.pauseState)
		e.lines = e.pauseState.LinesCleared
		e.pauseState = nil
	}
	e.timer.Start()
	e.paused = false
	e.pausedFor += e.now().Sub(e.pauseStart)
	e.logger.Debug("game resumed", "paused_for", e.pausedFor)

	e.emit(EventResumed)
	e.emit(EventUpdated)
}

// TogglePause pauses a running game or resumes a paused one.
func (e *Engine) TogglePause() {
	if e.paused {
		e.ResumeGame()
		return
	}
	e.PauseGame()
}

// MoveLeft shifts the active piece one column left.
func (e *Engine) MoveLeft() {
	if e.running() {
		e.moved(e.board.MoveLeft())
	}
}

// MoveRight shifts the active piece one column right.
func (e *Engine) MoveRight() {
	if e.running() {
		e.moved(e.board.MoveRight())
	}
}

// Rotate turns the active piece clockwise if it fits.
func (e *Engine) Rotate() {
	if e.running() {
		e.moved(e.board.Rotate())
	}
}

// MoveDown advances the piece one row. It is also the timer callback.
// When the piece locks, full lines are cleared and game over is checked.
func (e *Engine) MoveDown() {
	if !e.running() {
		return
	}
	if e.board.MoveDown() {
		e.emit(EventUpdated)
		return
	}
	e.afterLock()
}

// Drop moves the piece down until it locks, then settles the board.
func (e *Engine) Drop() {
	if !e.running() {
		return
	}
	e.board.Drop()
	e.afterLock()
}

// SaveGameState captures the current game as an independent copy.
func (e *Engine) SaveGameState() GameState {
	return GameState{
		Field:        e.board.Grid().Clone(),
		Piece:        e.board.Piece().Clone(),
		Anchor:       e.board.Anchor(),
		Elapsed:      e.Elapsed(),
		HasElapsed:   true,
		LinesCleared: e.lines,
		Width:        e.board.Width(),
		Height:       e.board.Height(),
	}
}

// RestoreGameState replaces the board with one built from state and
// resumes play from it. A state whose spawn rows are already occupied ends
// the game immediately. A state without an elapsed time keeps the current
// game clock. An invalid state is rejected without touching the engine.
func (e *Engine) RestoreGameState(state GameState) error {
	if err := state.Validate(); err != nil {
		return err
	}

	elapsed := e.Elapsed()
	if state.HasElapsed {
		elapsed = state.Elapsed
	}

	e.restoreBoard(state)
	e.lines = state.LinesCleared
	e.pauseState = nil
	e.paused = false

	if e.board.IsGameOver() {
		e.started = false
		e.over = true
		e.timer.Stop()
		e.finalElapsed = elapsed
		e.logger.Debug("restored finished game", "lines", e.lines)
		e.emit(EventGameOver)
	} else {
		e.started = true
		e.over = false
		e.startTime = e.now().Add(-elapsed)
		e.pausedFor = 0
		e.timer.Start()
		e.logger.Debug("game restored", "lines", e.lines, "elapsed", elapsed)
	}

	e.emit(EventLinesCleared)
	e.emit(EventUpdated)
	return nil
}

// SaveGame writes the current state to repo. Only a running, unpaused
// game can be saved.
func (e *Engine) SaveGame(ctx context.Context, repo Repository, name string) error {
	if !e.running() {
		return fmt.Errorf("%w (status: %s)", ErrInvalidState, e.Status())
	}
	state := e.SaveGameState()
	if err := repo.Save(ctx, name, state); err != nil {
		e.logger.Warn("save failed", "name", name, "error", err)
		return err
	}
	e.logger.Info("game saved", "name", name, "lines", state.LinesCleared)
	return nil
}

// LoadGame pauses a running game, reads name from repo and restores it.
// A failed load leaves the (now paused) game as it was.
func (e *Engine) LoadGame(ctx context.Context, repo Repository, name string) error {
	if e.running() {
		e.PauseGame()
	}
	state, err := repo.Load(ctx, name)
	if err != nil {
		e.logger.Warn("load failed", "name", name, "error", err)
		return err
	}
	if err := e.RestoreGameState(state); err != nil {
		return err
	}
	e.logger.Info("game loaded", "name", name, "lines", state.LinesCleared)
	return nil
}

func (e *Engine) running() bool {
	return e.started && !e.paused && !e.over
}

func (e *Engine) moved(ok bool) {
	if ok || e.notifyRejected {
		e.emit(EventUpdated)
	}
}

// afterLock clears lines and checks for game over after a piece locked.
func (e *Engine) afterLock() {
	if n := e.board.ClearFullLines(); n > 0 {
		e.lines += n
		e.emit(EventLinesCleared)
	}
	if e.board.IsGameOver() {
		e.endGame()
		return
	}
	e.emit(EventUpdated)
}

func (e *Engine) endGame() {
	e.timer.Stop()
	e.finalElapsed = e.now().Sub(e.startTime) - e.pausedFor
	e.started = false
	e.over = true
	e.logger.Debug("game over", "lines", e.lines, "elapsed", e.finalElapsed)
	e.emit(EventGameOver)
}

// restoreBoard rebuilds the board at the state's size from copies of its
// field and piece.
func (e *Engine) restoreBoard(state GameState) {
	state = state.Clone()
	b := &Board{
		grid: state.Field,
		rng:  e.rng,
	}
	if state.Piece != nil {
		b.Place(state.Piece, state.Anchor)
	} else {
		b.spawn()
	}
	e.board = b
}

func (e *Engine) emit(ev Event) {
	for _, l := range e.listeners {
		l(ev)
	}
}
