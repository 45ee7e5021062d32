package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-blocks/internal/core"
	"github.com/vovakirdan/tui-blocks/internal/persistence"
	"github.com/vovakirdan/tui-blocks/internal/platform/tui"
	"github.com/vovakirdan/tui-blocks/internal/storage"
	"github.com/vovakirdan/tui-blocks/internal/tetris"
)

var (
	flagLogPath string
	flagSlot    string
	flagSlotDB  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game",
	Long: `Start a game in this terminal.

Controls:
  Left/Right   - Move
  Down         - Soft drop
  Up/X         - Rotate
  Space        - Drop
  P/Esc        - Pause
  Ctrl+S       - Save to slot
  Ctrl+L       - Load slot
  R            - Restart (after game over)
  Q/Ctrl+C     - Quit

Saves go to the configured save directory as <slot>.blocks files, or into
the scores database with --db-saves.

Difficulty options:
  easy   - 1000ms per row
  normal - 700ms per row
  hard   - 350ms per row

Examples:
  blocks play
  blocks play --difficulty hard
  blocks play --slot evening --db-saves
  blocks play --log ./blocks.log --config ./my-blocks.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagLogPath, "log", "", "Write debug logs to this file")
	playCmd.Flags().StringVar(&flagSlot, "slot", tui.DefaultSlot, "Save slot used by ctrl+s and ctrl+l")
	playCmd.Flags().BoolVar(&flagSlotDB, "db-saves", false, "Keep saves in the database instead of files")
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, source, err := loadConfig()
	if err != nil {
		return err
	}

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	needW, needH := tui.BoardSize(cfg.Board.Width, cfg.Board.Height)
	if width < needW || height < needH+1 {
		return fmt.Errorf("terminal is %dx%d, a %dx%d board needs at least %dx%d",
			width, height, cfg.Board.Width, cfg.Board.Height, needW, needH+1)
	}

	logger, closeLog, err := openLog(flagLogPath)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("config loaded", "source", source, "board", fmt.Sprintf("%dx%d", cfg.Board.Width, cfg.Board.Height), "tick", cfg.Interval())

	// Open score storage
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	player := playerName()
	var saves tetris.Repository
	switch {
	case flagSlotDB && store != nil:
		saves = store.Slots(player)
	case flagSlotDB:
		fmt.Fprintln(os.Stderr, "Warning: database unavailable, saving disabled")
	default:
		fs, fsErr := persistence.NewFileStore(cfg.Storage.SaveDir)
		if fsErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: saving disabled: %v\n", fsErr)
		} else {
			saves = fs
		}
	}

	return tui.Run(tui.Options{
		Game: cfg,
		Runtime: core.RuntimeConfig{
			ScreenW: width,
			ScreenH: height,
			Seed:    flagSeed,
			Player:  player,
		},
		Scores: store,
		Saves:  saves,
		Slot:   flagSlot,
		Logger: logger,
	})
}

// openLog returns a file logger, or a discarding one when path is empty.
// The terminal belongs to the game while it runs.
func openLog(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "blocks",
		Level:           log.DebugLevel,
	})
	return logger, func() { f.Close() }, nil
}
