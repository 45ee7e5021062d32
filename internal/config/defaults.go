package config

import (
	_ "embed"
)

//go:embed defaults/blocks.yaml
var defaultBlocksYAML []byte

// DefaultBlocksConfig returns the default configuration.
func DefaultBlocksConfig() BlocksConfig {
	return BlocksConfig{
		Board: BoardConfig{
			Width:  10,
			Height: 20,
		},
		Timing: TimingConfig{
			TickMS: 700,
		},
		Rules: RulesConfig{
			NotifyRejectedMoves: true,
		},
		Storage: StorageConfig{
			DBPath:  "~/.blocks/blocks.db",
			SaveDir: "~/.blocks/saves",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultBlocksYAML
}
