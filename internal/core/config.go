package core

// RuntimeConfig contains configuration passed to a game session at
// initialization. The platform uses it to adapt to screen size and to seed
// the piece generator for deterministic play.
type RuntimeConfig struct {
	ScreenW int    // Screen width in characters
	ScreenH int    // Screen height in characters
	Seed    int64  // RNG seed for deterministic gameplay
	Player  string // Name recorded with scores and saves
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW: 80,
		ScreenH: 24,
		Seed:    0, // 0 means use current time in platform layer
		Player:  "player",
	}
}
