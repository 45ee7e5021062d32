// Package config provides YAML-based configuration loading and difficulty
// presets for the blocks game.
package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tui-blocks/internal/tetris"
)

// MinBoardSide is the smallest board side that still fits the 4x4 line piece.
const MinBoardSide = 4

// MaxBoardSide is the largest board side a save record can hold.
const MaxBoardSide = tetris.MaxSide

// BlocksConfig contains all configuration for the game.
type BlocksConfig struct {
	Board   BoardConfig   `yaml:"board"`
	Timing  TimingConfig  `yaml:"timing"`
	Rules   RulesConfig   `yaml:"rules"`
	Storage StorageConfig `yaml:"storage"`
}

// BoardConfig defines the playfield size in cells.
type BoardConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TimingConfig defines the gravity tick.
type TimingConfig struct {
	TickMS int `yaml:"tick_ms"` // Milliseconds between automatic moves down
}

// RulesConfig toggles rule variations.
type RulesConfig struct {
	NotifyRejectedMoves bool `yaml:"notify_rejected_moves"` // Redraw even when a move is blocked
}

// StorageConfig defines where scores and saves live.
type StorageConfig struct {
	DBPath  string `yaml:"db_path"`
	SaveDir string `yaml:"save_dir"`
}

// Interval returns the tick interval as a duration.
func (c BlocksConfig) Interval() time.Duration {
	return time.Duration(c.Timing.TickMS) * time.Millisecond
}

// Validate checks the configuration can start a game.
func (c BlocksConfig) Validate() error {
	if c.Board.Width < MinBoardSide || c.Board.Height < MinBoardSide {
		return fmt.Errorf("config: board must be at least %dx%d, got %dx%d",
			MinBoardSide, MinBoardSide, c.Board.Width, c.Board.Height)
	}
	if c.Board.Width > MaxBoardSide || c.Board.Height > MaxBoardSide {
		return fmt.Errorf("config: board must be at most %dx%d, got %dx%d",
			MaxBoardSide, MaxBoardSide, c.Board.Width, c.Board.Height)
	}
	if c.Timing.TickMS <= 0 {
		return fmt.Errorf("config: tick_ms must be positive, got %d", c.Timing.TickMS)
	}
	return nil
}
