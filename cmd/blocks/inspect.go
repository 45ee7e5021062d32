package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-blocks/internal/persistence"
	"github.com/vovakirdan/tui-blocks/internal/storage"
	"github.com/vovakirdan/tui-blocks/internal/tetris"
)

var flagFromDB bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [file|slot]",
	Short: "Decode a save, or list saves",
	Long: `Decode a saved game and print its header and board.

Locked cells show their color tag (1-7), the falling piece shows as @.
Without an argument, lists the saves in the save directory and the
database slots of --player.

Examples:
  blocks inspect
  blocks inspect ~/.blocks/saves/quicksave.blocks
  blocks inspect quicksave --from-db --player ann`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&flagFromDB, "from-db", false, "Read the named slot from the database")
}

func runInspect(_ *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if len(args) == 0 {
		return listSaves(ctx, cfg.Storage.SaveDir, cfg.Storage.DBPath)
	}

	var state tetris.GameState
	if flagFromDB {
		store, err := storage.Open(cfg.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("cannot open database: %w", err)
		}
		defer store.Close()
		if state, err = store.LoadSlot(ctx, playerName(), args[0]); err != nil {
			return err
		}
	} else {
		path := args[0]
		if _, statErr := os.Stat(path); statErr != nil {
			// Not a file: treat it as a save name in the save directory.
			fs, fsErr := persistence.NewFileStore(cfg.Storage.SaveDir)
			if fsErr != nil {
				return fsErr
			}
			path = fs.Path(path)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("cannot open save: %w", err)
		}
		defer f.Close()
		if state, err = persistence.Decode(f); err != nil {
			return err
		}
	}

	fmt.Print(describeState(state))
	return nil
}

func listSaves(ctx context.Context, saveDir, dbPath string) error {
	fs, err := persistence.NewFileStore(saveDir)
	if err != nil {
		return err
	}
	names, err := fs.List()
	if err != nil {
		return err
	}

	fmt.Printf("Save files in %s:\n", fs.Dir)
	if len(names) == 0 {
		fmt.Println("  (none)")
	}
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		return nil
	}
	defer store.Close()

	slots, err := store.ListSlots(ctx, playerName())
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Database slots for %s:\n", playerName())
	if len(slots) == 0 {
		fmt.Println("  (none)")
	}
	for _, s := range slots {
		fmt.Printf("  %-16s %4d lines  %s\n", s.Name, s.Lines, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// describeState renders the header lines and an ASCII board for state.
func describeState(s tetris.GameState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Board    %dx%d\n", s.Width, s.Height)
	fmt.Fprintf(&b, "Lines    %d\n", s.LinesCleared)
	fmt.Fprintf(&b, "Elapsed  %s\n", persistence.FormatElapsed(s.Elapsed))
	if s.Piece != nil {
		fmt.Fprintf(&b, "Piece    %s color %d at (%d,%d)\n", s.Piece.Variant(), s.Piece.Color(), s.Anchor.X, s.Anchor.Y)
	}
	b.WriteString("\n")
	b.WriteString(renderBoard(s))
	return b.String()
}

// renderBoard draws the field with the piece overlaid.
func renderBoard(s tetris.GameState) string {
	rows := make([][]byte, s.Height)
	for y := range s.Height {
		rows[y] = make([]byte, s.Width)
		for x := range s.Width {
			if v := s.Field.At(x, y); v > 0 {
				rows[y][x] = byte('0' + v)
			} else {
				rows[y][x] = '.'
			}
		}
	}
	if p := s.Piece; p != nil {
		for px := range p.Size() {
			for py := range p.Size() {
				x, y := s.Anchor.X+px, s.Anchor.Y+py
				if p.At(px, py) != 0 && s.Field.In(x, y) {
					rows[y][x] = '@'
				}
			}
		}
	}

	var b strings.Builder
	border := "+" + strings.Repeat("-", s.Width) + "+\n"
	b.WriteString(border)
	for _, row := range rows {
		b.WriteString("|")
		b.Write(row)
		b.WriteString("|\n")
	}
	b.WriteString(border)
	return b.String()
}
