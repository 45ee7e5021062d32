// Package clock provides a manually driven tick source and wall clock for
// tests and headless runs of the engine.
package clock

import "time"

// Manual is a Timer that only fires when told to, paired with a wall clock
// that only moves when advanced.
type Manual struct {
	enabled  bool
	interval time.Duration
	handlers []func()
	now      time.Time
	starts   int
	stops    int
}

// NewManual creates a stopped timer whose clock reads start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Start enables the timer.
func (m *Manual) Start() {
	m.enabled = true
	m.starts++
}

// Stop disables the timer.
func (m *Manual) Stop() {
	m.enabled = false
	m.stops++
}

// SetInterval records the tick period.
func (m *Manual) SetInterval(d time.Duration) {
	m.interval = d
}

// OnElapsed registers a tick handler.
func (m *Manual) OnElapsed(fn func()) {
	m.handlers = append(m.handlers, fn)
}

// Enabled reports whether the timer is running.
func (m *Manual) Enabled() bool {
	return m.enabled
}

// Interval returns the configured period.
func (m *Manual) Interval() time.Duration {
	return m.interval
}

// Starts returns how many times Start was called.
func (m *Manual) Starts() int {
	return m.starts
}

// Stops returns how many times Stop was called.
func (m *Manual) Stops() int {
	return m.stops
}

// Fire delivers one tick to every handler, regardless of Enabled, the way
// a raised event would.
func (m *Manual) Fire() {
	for _, fn := range m.handlers {
		fn()
	}
}

// Tick advances the clock by one interval and fires if enabled.
// It reports whether handlers ran.
func (m *Manual) Tick() bool {
	m.now = m.now.Add(m.interval)
	if !m.enabled {
		return false
	}
	m.Fire()
	return true
}

// Now returns the current reading. Pass m.Now to the engine's WithNow.
func (m *Manual) Now() time.Time {
	return m.now
}

// Advance moves the clock forward without firing.
func (m *Manual) Advance(d time.Duration) {
	m.now = m.now.Add(d)
}
