// blocks is a falling-block puzzle game for the terminal.
//
// Usage:
//
//	blocks play              - Play in this terminal
//	blocks serve             - Start SSH server for remote play
//	blocks scores            - Show high scores
//	blocks inspect [file]    - Decode a save file, or list saves
//	blocks config            - Print the resolved configuration
//
// Global flags:
//
//	--seed <value>         - Set RNG seed for reproducible gameplay
//	--db <path>            - Set database path (default from config: ~/.blocks/blocks.db)
//	--config <path>        - Use a custom config YAML
//	--difficulty <preset>  - easy, normal or hard
//	--player <name>        - Name recorded with scores and saves (default: $USER)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-blocks/internal/config"
)

var (
	// Global flags
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagPlayer     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Blocks - a falling-block puzzle in your terminal",
	Long: `Blocks is a terminal falling-block puzzle. Steer the falling piece,
fill whole rows to clear them and keep the stack out of the top rows.

Available commands:
  play     - Play in this terminal
  serve    - Start SSH server for remote play
  scores   - View high scores
  inspect  - Decode a save file or list saves
  config   - Print the resolved configuration

Examples:
  blocks play
  blocks play --difficulty hard
  blocks serve --ssh :2222
  blocks scores --interactive
  blocks inspect ~/.blocks/saves/quicksave.blocks`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Player name (default: $USER)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig resolves the config file and applies the global flags on top.
func loadConfig() (config.BlocksConfig, string, error) {
	cfg, source, err := config.Load(flagConfig)
	if err != nil {
		return config.BlocksConfig{}, "", err
	}

	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return config.BlocksConfig{}, "", err
	}
	config.ApplyPreset(&cfg, preset)

	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	return cfg, source, nil
}

// playerName returns the --player flag, falling back to $USER.
func playerName() string {
	if flagPlayer != "" {
		return flagPlayer
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "player"
}
