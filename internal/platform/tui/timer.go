// Package tui provides the Bubble Tea front end for blocks.
// It handles the terminal UI loop, key bindings, rendering and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-blocks/internal/tetris"
)

// TickMsg is sent when the gravity timer elapses.
type TickMsg struct {
	At  time.Time
	gen int
}

// TeaTimer drives the engine's gravity from tea.Tick messages, so every
// callback runs on the Bubble Tea update goroutine.
//
// Stopping and restarting bumps a generation counter; ticks scheduled for an
// older generation are dropped when they arrive.
type TeaTimer struct {
	interval  time.Duration
	enabled   bool
	gen       int
	scheduled int // generation with a tick in flight, 0 if none
	handlers  []func()
}

var _ tetris.Timer = (*TeaTimer)(nil)

// NewTeaTimer creates a stopped timer.
func NewTeaTimer() *TeaTimer {
	return &TeaTimer{interval: tetris.DefaultInterval}
}

// Start enables the timer. Starting a running timer does nothing.
func (t *TeaTimer) Start() {
	if t.enabled {
		return
	}
	t.enabled = true
	t.gen++
}

// Stop disables the timer and invalidates any tick in flight.
func (t *TeaTimer) Stop() {
	if !t.enabled {
		return
	}
	t.enabled = false
	t.gen++
	t.scheduled = 0
}

// SetInterval changes the delay used for the next scheduled tick.
func (t *TeaTimer) SetInterval(d time.Duration) {
	t.interval = d
}

// OnElapsed registers a callback run on every tick.
func (t *TeaTimer) OnElapsed(fn func()) {
	t.handlers = append(t.handlers, fn)
}

// Enabled reports whether the timer is running.
func (t *TeaTimer) Enabled() bool {
	return t.enabled
}

// Sync returns the command that schedules the next tick, or nil when the
// timer is stopped or a tick is already pending. Call it after anything that
// may have started the timer.
func (t *TeaTimer) Sync() tea.Cmd {
	if !t.enabled || t.scheduled == t.gen {
		return nil
	}
	t.scheduled = t.gen
	gen := t.gen
	return tea.Tick(t.interval, func(at time.Time) tea.Msg {
		return TickMsg{At: at, gen: gen}
	})
}

// Handle runs the callbacks for a current tick and schedules the next one.
// Stale ticks are ignored.
func (t *TeaTimer) Handle(msg TickMsg) tea.Cmd {
	if !t.enabled || msg.gen != t.gen {
		return nil
	}
	t.scheduled = 0
	for _, fn := range t.handlers {
		fn()
	}
	return t.Sync()
}
