package tetris

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-blocks/internal/clock"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// recorder collects engine events.
type recorder struct {
	events []Event
}

func (r *recorder) listen(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) count(ev Event) int {
	n := 0
	for _, e := range r.events {
		if e == ev {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.events = nil
}

// memRepo is an in-memory Repository.
type memRepo struct {
	states map[string]GameState
	err    error
}

func newMemRepo() *memRepo {
	return &memRepo{states: make(map[string]GameState)}
}

func (m *memRepo) Save(_ context.Context, name string, state GameState) error {
	if m.err != nil {
		return m.err
	}
	m.states[name] = state.Clone()
	return nil
}

func (m *memRepo) Load(_ context.Context, name string) (GameState, error) {
	if m.err != nil {
		return GameState{}, m.err
	}
	s, ok := m.states[name]
	if !ok {
		return GameState{}, errors.New("not found")
	}
	return s.Clone(), nil
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *clock.Manual, *recorder) {
	t.Helper()
	timer := clock.NewManual(epoch)
	opts = append([]Option{WithNow(timer.Now), WithSeed(99)}, opts...)
	e := NewEngine(timer, 10, 20, opts...)
	rec := &recorder{}
	e.Subscribe(rec.listen)
	return e, timer, rec
}

// stateWith builds a restorable state with the given piece and anchor on an
// otherwise empty 10x20 field.
func stateWith(t *testing.T, v Variant, anchor Point) GameState {
	t.Helper()
	return GameState{
		Field:  NewGrid(10, 20),
		Piece:  pieceOf(t, v, 3),
		Anchor: anchor,
		Width:  10,
		Height: 20,
	}
}

func TestEngineNewGame(t *testing.T) {
	e, timer, rec := newTestEngine(t)

	assert.Equal(t, StatusNotStarted, e.Status())
	assert.Equal(t, DefaultInterval, timer.Interval())
	assert.False(t, timer.Enabled())
	assert.Zero(t, e.Elapsed())

	e.StartGame(10, 20)

	assert.Equal(t, StatusRunning, e.Status())
	assert.True(t, e.IsStarted())
	assert.False(t, e.IsPaused())
	assert.False(t, e.IsGameOver())
	assert.True(t, timer.Enabled())
	assert.Zero(t, e.LinesCleared())
	assert.Equal(t, 10, e.Width())
	assert.Equal(t, 20, e.Height())
	assert.Equal(t, Point{X: 4, Y: 0}, e.Anchor())
	assert.Equal(t, 1, rec.count(EventUpdated))
}

func TestEngineCustomSize(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartGame(4, 16)

	assert.Equal(t, 4, e.Width())
	assert.Equal(t, 16, e.Height())
	assert.Equal(t, 4, e.Grid().Width())
	assert.Equal(t, 16, e.Grid().Height())
	assert.Equal(t, Point{X: 1, Y: 0}, e.Anchor())
}

func TestEngineIgnoresCommandsBeforeStart(t *testing.T) {
	e, timer, rec := newTestEngine(t)
	anchor := e.Anchor()

	e.MoveLeft()
	e.MoveRight()
	e.MoveDown()
	e.Rotate()
	e.Drop()
	e.PauseGame()
	e.ResumeGame()
	timer.Fire()

	assert.Empty(t, rec.events)
	assert.Equal(t, anchor, e.Anchor())
	assert.Equal(t, StatusNotStarted, e.Status())
}

func TestEngineMovement(t *testing.T) {
	e, timer, _ := newTestEngine(t)
	require.NoError(t, e.RestoreGameState(stateWith(t, VariantT, Point{X: 4, Y: 2})))

	e.MoveRight()
	assert.Equal(t, Point{X: 5, Y: 2}, e.Anchor())

	e.MoveLeft()
	assert.Equal(t, Point{X: 4, Y: 2}, e.Anchor())

	e.MoveDown()
	assert.Equal(t, Point{X: 4, Y: 3}, e.Anchor())

	assert.True(t, timer.Tick())
	assert.Equal(t, Point{X: 4, Y: 4}, e.Anchor())
}

func TestEngineRotateNotifies(t *testing.T) {
	e, _, rec := newTestEngine(t)
	require.NoError(t, e.RestoreGameState(stateWith(t, VariantT, Point{X: 5, Y: 5})))
	before := e.Piece().Cells()
	rec.reset()

	e.Rotate()

	assert.Equal(t, 1, rec.count(EventUpdated))
	assert.NotEqual(t, before, e.Piece().Cells())
}

func TestEngineRejectedMoveNotification(t *testing.T) {
	tests := []struct {
		name     string
		notify   bool
		expected int
	}{
		{"notifies by default", true, 1},
		{"suppressed", false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, _, rec := newTestEngine(t, WithNotifyRejected(tc.notify))
			require.NoError(t, e.RestoreGameState(stateWith(t, VariantK, Point{X: 0, Y: 5})))
			rec.reset()

			e.MoveLeft()

			assert.Equal(t, Point{X: 0, Y: 5}, e.Anchor())
			assert.Equal(t, tc.expected, rec.count(EventUpdated))
		})
	}
}

func TestEnginePauseResume(t *testing.T) {
	e, timer, rec := newTestEngine(t)
	e.StartGame(10, 20)
	e.MoveDown()
	e.MoveRight()
	timer.Advance(5 * time.Second)

	before := e.SaveGameState()
	e.PauseGame()

	assert.Equal(t, StatusPaused, e.Status())
	assert.False(t, timer.Enabled())
	assert.Equal(t, 1, rec.count(EventPaused))

	// Commands and ticks are ignored while paused.
	e.MoveLeft()
	e.Drop()
	timer.Fire()
	timer.Advance(10 * time.Second)
	assert.Equal(t, 5*time.Second, e.Elapsed())

	e.ResumeGame()

	assert.Equal(t, StatusRunning, e.Status())
	assert.True(t, timer.Enabled())
	assert.Equal(t, 1, rec.count(EventResumed))

	after := e.SaveGameState()
	assert.True(t, before.Field.Equal(after.Field))
	assert.True(t, before.Piece.Equal(after.Piece))
	assert.Equal(t, before.Anchor, after.Anchor)
	assert.Equal(t, before.LinesCleared, after.LinesCleared)
	assert.Equal(t, 5*time.Second, after.Elapsed)

	timer.Advance(2 * time.Second)
	assert.Equal(t, 7*time.Second, e.Elapsed())
}

func TestEngineTogglePause(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartGame(10, 20)

	e.TogglePause()
	assert.True(t, e.IsPaused())
	e.TogglePause()
	assert.False(t, e.IsPaused())
}

func TestEngineLineClear(t *testing.T) {
	e, _, rec := newTestEngine(t)
	state := stateWith(t, VariantE, Point{X: -1, Y: 16})
	for x := 1; x < 10; x++ {
		state.Field.Set(x, 19, 1)
	}
	require.NoError(t, e.RestoreGameState(state))
	rec.reset()

	e.MoveDown()

	assert.Equal(t, 1, e.LinesCleared())
	assert.Equal(t, 1, rec.count(EventLinesCleared))
	assert.Equal(t, 1, rec.count(EventUpdated))
	assert.Equal(t, StatusRunning, e.Status())
	assert.Equal(t, Point{X: 4, Y: 0}, e.Anchor())
}

func TestEngineDropClearsLines(t *testing.T) {
	e, _, _ := newTestEngine(t)
	state := stateWith(t, VariantK, Point{X: 0, Y: 0})
	for x := 2; x < 10; x++ {
		state.Field.Set(x, 18, 2)
		state.Field.Set(x, 19, 2)
	}
	state.LinesCleared = 3
	require.NoError(t, e.RestoreGameState(state))

	e.Drop()

	assert.Equal(t, 5, e.LinesCleared())
	for y := range 20 {
		assert.Equal(t, make([]int, 10), e.Grid().Row(y), "row %d", y)
	}
}

func TestEngineGameOver(t *testing.T) {
	e, timer, rec := newTestEngine(t)
	state := stateWith(t, VariantK, Point{X: 4, Y: 0})
	for x := 3; x <= 6; x++ {
		for y := 2; y < 20; y++ {
			state.Field.Set(x, y, 1)
		}
	}
	state.Elapsed = 30 * time.Second
	state.HasElapsed = true
	require.NoError(t, e.RestoreGameState(state))
	rec.reset()
	timer.Advance(4 * time.Second)

	e.Drop()

	assert.Equal(t, StatusGameOver, e.Status())
	assert.True(t, e.IsGameOver())
	assert.False(t, e.IsStarted())
	assert.False(t, timer.Enabled())
	assert.Equal(t, 1, rec.count(EventGameOver))
	assert.Zero(t, rec.count(EventUpdated), "game over replaces the update notification")
	assert.Equal(t, 34*time.Second, e.Elapsed())

	timer.Advance(time.Minute)
	assert.Equal(t, 34*time.Second, e.Elapsed(), "elapsed time freezes at game over")

	rec.reset()
	e.MoveLeft()
	e.PauseGame()
	timer.Fire()
	assert.Empty(t, rec.events)

	e.StartGame(10, 20)
	assert.Equal(t, StatusRunning, e.Status())
	assert.Zero(t, e.Elapsed())
}

func TestEngineRestoreState(t *testing.T) {
	e, timer, _ := newTestEngine(t)
	state := stateWith(t, VariantT, Point{X: 3, Y: 4})
	state.Field.Set(5, 19, 2)
	state.Elapsed = time.Minute
	state.HasElapsed = true
	state.LinesCleared = 5

	require.NoError(t, e.RestoreGameState(state))

	assert.Equal(t, 5, e.LinesCleared())
	assert.Equal(t, 2, e.Grid().At(5, 19))
	assert.Equal(t, Point{X: 3, Y: 4}, e.Anchor())
	assert.Equal(t, VariantT, e.Piece().Variant())
	assert.True(t, timer.Enabled())
	assert.Equal(t, time.Minute, e.Elapsed())

	timer.Advance(time.Second)
	assert.Equal(t, time.Minute+time.Second, e.Elapsed())

	// The engine keeps its own copy.
	state.Field.Set(0, 19, 7)
	assert.Zero(t, e.Grid().At(0, 19))
}

func TestEngineRestoreFinishedGame(t *testing.T) {
	e, timer, rec := newTestEngine(t)
	e.StartGame(10, 20)
	rec.reset()

	state := stateWith(t, VariantT, Point{X: 5, Y: 0})
	state.Field.Set(5, 0, 1)
	state.Field.Set(5, 1, 1)
	state.Elapsed = 42 * time.Second
	state.HasElapsed = true

	require.NoError(t, e.RestoreGameState(state))

	assert.Equal(t, StatusGameOver, e.Status())
	assert.False(t, timer.Enabled())
	assert.Equal(t, 1, rec.count(EventGameOver))
	assert.Equal(t, 42*time.Second, e.Elapsed())
}

func TestEngineRestoreWithoutElapsedKeepsClock(t *testing.T) {
	e, timer, _ := newTestEngine(t)
	e.StartGame(10, 20)
	timer.Advance(10 * time.Second)

	require.NoError(t, e.RestoreGameState(stateWith(t, VariantT, Point{X: 3, Y: 4})))

	if got := e.Elapsed(); got != 10*time.Second {
		t.Errorf("Elapsed() = %v, expected %v", got, 10*time.Second)
	}
	timer.Advance(5 * time.Second)
	if got := e.Elapsed(); got != 15*time.Second {
		t.Errorf("Elapsed() = %v, expected %v", got, 15*time.Second)
	}
}

func TestEngineRestoreFinishedGameWithoutElapsed(t *testing.T) {
	e, timer, _ := newTestEngine(t)
	e.StartGame(10, 20)
	timer.Advance(8 * time.Second)

	state := stateWith(t, VariantT, Point{X: 5, Y: 0})
	state.Field.Set(5, 0, 1)
	state.Field.Set(5, 1, 1)
	require.NoError(t, e.RestoreGameState(state))

	assert.Equal(t, StatusGameOver, e.Status())
	assert.Equal(t, 8*time.Second, e.Elapsed())
}

func TestEngineRestoreRejectsInvalidState(t *testing.T) {
	e, _, rec := newTestEngine(t)
	e.StartGame(10, 20)
	before := e.SaveGameState()
	rec.reset()

	bad := stateWith(t, VariantK, Point{X: 0, Y: 0})
	bad.Height = 22

	require.Error(t, e.RestoreGameState(bad))
	assert.Empty(t, rec.events)
	assert.True(t, before.Field.Equal(e.Grid()))
	assert.Equal(t, 20, e.Height())
}

func TestEngineSaveGame(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	e, _, _ := newTestEngine(t)

	err := e.SaveGame(ctx, repo, "slot")
	require.ErrorIs(t, err, ErrInvalidState, "not started")

	e.StartGame(10, 20)
	e.MoveDown()
	require.NoError(t, e.SaveGame(ctx, repo, "slot"))
	saved := repo.states["slot"]
	assert.Equal(t, e.Anchor(), saved.Anchor)
	assert.True(t, saved.Piece.Equal(e.Piece()))

	e.PauseGame()
	require.ErrorIs(t, e.SaveGame(ctx, repo, "slot"), ErrInvalidState, "paused")
}

func TestEngineLoadGame(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	e, timer, _ := newTestEngine(t)

	saved := stateWith(t, VariantL, Point{X: 2, Y: 7})
	saved.LinesCleared = 12
	saved.Elapsed = 90 * time.Second
	saved.HasElapsed = true
	repo.states["slot"] = saved

	e.StartGame(10, 20)
	require.NoError(t, e.LoadGame(ctx, repo, "slot"))

	assert.Equal(t, StatusRunning, e.Status())
	assert.True(t, timer.Enabled())
	assert.Equal(t, 12, e.LinesCleared())
	assert.Equal(t, Point{X: 2, Y: 7}, e.Anchor())
	assert.Equal(t, 90*time.Second, e.Elapsed())
}

func TestEngineFailedLoadKeepsState(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	repo.err = errors.New("disk on fire")
	e, _, _ := newTestEngine(t)
	e.StartGame(10, 20)
	e.MoveDown()
	before := e.SaveGameState()

	err := e.LoadGame(ctx, repo, "slot")

	require.ErrorIs(t, err, repo.err)
	assert.Equal(t, StatusPaused, e.Status())
	assert.Equal(t, before.Anchor, e.Anchor())
	assert.True(t, before.Piece.Equal(e.Piece()))

	e.ResumeGame()
	assert.Equal(t, before.Anchor, e.Anchor())
}

func TestEngineDeterminism(t *testing.T) {
	e1, t1, _ := newTestEngine(t)
	e2, t2, _ := newTestEngine(t)
	e1.StartGame(10, 20)
	e2.StartGame(10, 20)

	for i := range 200 {
		for _, e := range []*Engine{e1, e2} {
			switch i % 5 {
			case 0:
				e.MoveLeft()
			case 1:
				e.Rotate()
			case 3:
				e.MoveRight()
			}
		}
		t1.Tick()
		t2.Tick()
	}

	s1, s2 := e1.SaveGameState(), e2.SaveGameState()
	assert.True(t, s1.Field.Equal(s2.Field))
	assert.True(t, s1.Piece.Equal(s2.Piece))
	assert.Equal(t, s1.Anchor, s2.Anchor)
	assert.Equal(t, s1.LinesCleared, s2.LinesCleared)
	assert.Equal(t, e1.Status(), e2.Status())
}
