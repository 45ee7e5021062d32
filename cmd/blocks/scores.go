package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-blocks/internal/persistence"
	"github.com/vovakirdan/tui-blocks/internal/platform/tui"
	"github.com/vovakirdan/tui-blocks/internal/storage"
)

var (
	flagInteractive bool
	flagMine        bool
	flagClear       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores",
	Long: `Display the top 10 results by lines cleared. Ties go to the faster game.

Examples:
  blocks scores
  blocks scores --mine
  blocks scores --interactive
  blocks scores --clear`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse scores in a table")
	scoresCmd.Flags().BoolVar(&flagMine, "mine", false, "Only show scores for --player")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all recorded scores")
}

func runScores(_ *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	// Open score storage
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("cannot open scores database: %w", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearScores(); err != nil {
			return err
		}
		fmt.Println("Scores cleared.")
		return nil
	}

	if flagInteractive {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		return tui.RunScoreboard(store, playerName(), width, height)
	}

	var scores []storage.ScoreEntry
	title := "High Scores"
	if flagMine {
		scores, err = store.PlayerScores(playerName())
		if len(scores) > 10 {
			scores = scores[:10]
		}
		title += " - " + playerName()
	} else {
		scores, err = store.TopScores(10)
	}
	if err != nil {
		return fmt.Errorf("cannot retrieve scores: %w", err)
	}

	fmt.Println(title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'blocks play' to set the first high score!")
		return nil
	}

	// Print header
	fmt.Printf("  %-4s  %-12s  %-5s  %-12s  %s\n", "Rank", "Player", "Lines", "Time", "Date")
	fmt.Printf("  %-4s  %-12s  %-5s  %-12s  %s\n", "----", "------", "-----", "----", "----")

	// Print scores
	for i, entry := range scores {
		dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-12s  %-5d  %-12s  %s\n",
			i+1, entry.Player, entry.Lines, persistence.FormatElapsed(entry.Elapsed), dateStr)
	}

	// Show summary
	fmt.Println()
	if best, err := store.HighScore(); err == nil {
		fmt.Printf("Best: %d lines\n", best)
	}
	if stats, err := store.GetStats(); err == nil && stats.GamesCount > 0 {
		fmt.Printf("Games: %d  Total lines: %d  Average: %.1f\n",
			stats.GamesCount, stats.TotalLines, stats.AvgLines)
	}
	return nil
}
