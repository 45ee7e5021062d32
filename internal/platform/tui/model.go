package tui

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/core"
	"github.com/vovakirdan/tui-blocks/internal/storage"
	"github.com/vovakirdan/tui-blocks/internal/tetris"
)

// DefaultSlot is the save name used by the save and load keys.
const DefaultSlot = "quicksave"

// repoTimeout bounds a single save or load from the UI.
const repoTimeout = 5 * time.Second

// Options configures a game session.
type Options struct {
	Game    config.BlocksConfig
	Runtime core.RuntimeConfig
	Scores  *storage.Store    // nil disables score recording
	Saves   tetris.Repository // nil disables save and load
	Slot    string
	Logger  *log.Logger
}

// session is the mutable state shared by copies of Model. Engine listeners
// write to it, so it must outlive any single Model value.
type session struct {
	gameOver   bool
	scoreSaved bool
	message    string
}

// Model is the Bubble Tea model for a blocks session.
type Model struct {
	engine   *tetris.Engine
	timer    *TeaTimer
	screen   *core.Screen
	opts     Options
	keys     KeyMap
	help     help.Model
	state    *session
	logger   *log.Logger
	quitting bool
}

// NewModel creates a session model. The game starts on Init.
func NewModel(opts Options) Model {
	// Use time-based seed if not specified
	if opts.Runtime.Seed == 0 {
		opts.Runtime.Seed = time.Now().UnixNano()
	}
	if opts.Slot == "" {
		opts.Slot = DefaultSlot
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	timer := NewTeaTimer()
	engine := tetris.NewEngine(timer, opts.Game.Board.Width, opts.Game.Board.Height,
		tetris.WithSeed(opts.Runtime.Seed),
		tetris.WithInterval(opts.Game.Interval()),
		tetris.WithNotifyRejected(opts.Game.Rules.NotifyRejectedMoves),
		tetris.WithLogger(logger),
	)

	st := &session{}
	engine.Subscribe(func(ev tetris.Event) {
		if ev == tetris.EventGameOver {
			st.gameOver = true
		}
	})

	w, h := BoardSize(opts.Game.Board.Width, opts.Game.Board.Height)
	hp := help.New()
	hp.Width = opts.Runtime.ScreenW

	return Model{
		engine: engine,
		timer:  timer,
		screen: core.NewScreen(max(w, opts.Runtime.ScreenW), h),
		opts:   opts,
		keys:   DefaultKeyMap(),
		help:   hp,
		state:  st,
		logger: logger,
	}
}

// Engine exposes the underlying engine.
func (m Model) Engine() *tetris.Engine {
	return m.engine
}

// Init starts the first game and the gravity timer.
func (m Model) Init() tea.Cmd {
	m.newGame()
	return m.timer.Sync()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		return m.apply(m.keys.Action(msg))

	case tea.WindowSizeMsg:
		m.opts.Runtime.ScreenW = msg.Width
		m.opts.Runtime.ScreenH = msg.Height
		m.help.Width = msg.Width
		m.fitScreen()
		return m, nil

	case TickMsg:
		cmd := m.timer.Handle(msg)
		m.recordScore()
		return m, cmd
	}

	return m, nil
}

// apply runs one action against the engine.
func (m Model) apply(action core.Action) (tea.Model, tea.Cmd) {
	if action.Moves() {
		m.state.message = ""
	}
	switch action {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionLeft:
		m.engine.MoveLeft()
	case core.ActionRight:
		m.engine.MoveRight()
	case core.ActionSoftDrop:
		m.engine.MoveDown()
	case core.ActionRotate:
		m.engine.Rotate()
	case core.ActionDrop:
		m.engine.Drop()
	case core.ActionPause:
		m.engine.TogglePause()
	case core.ActionSave:
		m.save()
	case core.ActionLoad:
		m.load()
	case core.ActionRestart:
		if st := m.engine.Status(); st == tetris.StatusGameOver || st == tetris.StatusNotStarted {
			m.newGame()
		}
	}

	m.recordScore()
	return m, m.timer.Sync()
}

func (m Model) newGame() {
	m.engine.StartGame(m.opts.Game.Board.Width, m.opts.Game.Board.Height)
	m.fitScreen()
	m.state.gameOver = false
	m.state.scoreSaved = false
	m.state.message = ""
}

func (m Model) save() {
	if m.opts.Saves == nil {
		m.state.message = "saving disabled"
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	err := m.engine.SaveGame(ctx, m.opts.Saves, m.opts.Slot)
	switch {
	case errors.Is(err, tetris.ErrInvalidState):
		m.state.message = "can only save while playing"
	case err != nil:
		m.logger.Error("save failed", "slot", m.opts.Slot, "error", err)
		m.state.message = "save failed"
	default:
		m.state.message = "saved to " + m.opts.Slot
	}
}

func (m Model) load() {
	if m.opts.Saves == nil {
		m.state.message = "loading disabled"
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	if err := m.engine.LoadGame(ctx, m.opts.Saves, m.opts.Slot); err != nil {
		m.logger.Error("load failed", "slot", m.opts.Slot, "error", err)
		m.state.message = "load failed"
		return
	}
	m.fitScreen()
	m.state.gameOver = m.engine.IsGameOver()
	m.state.scoreSaved = m.state.gameOver
	m.state.message = "loaded " + m.opts.Slot
}

// fitScreen sizes the buffer for the current board, which a loaded save may
// have changed.
func (m Model) fitScreen() {
	w, h := BoardSize(m.engine.Width(), m.engine.Height())
	m.screen.Resize(max(w, m.opts.Runtime.ScreenW), h)
}

// recordScore stores the result once per finished game.
func (m Model) recordScore() {
	if !m.state.gameOver || m.state.scoreSaved {
		return
	}
	m.state.scoreSaved = true
	if m.opts.Scores == nil {
		return
	}
	lines, elapsed := m.engine.LinesCleared(), m.engine.Elapsed()
	if _, err := m.opts.Scores.SaveScore(m.opts.Runtime.Player, lines, elapsed); err != nil {
		m.logger.Error("could not record score", "error", err)
		return
	}
	m.logger.Info("score recorded", "player", m.opts.Runtime.Player, "lines", lines, "elapsed", elapsed)
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	DrawGame(m.screen, m.engine, m.state.message)
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// Run starts the Bubble Tea program with a new session.
func Run(opts Options) error {
	p := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
