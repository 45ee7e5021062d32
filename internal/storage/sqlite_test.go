package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.SaveScore("ann", 12, time.Minute); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	high, err := store.HighScore()
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 12 {
		t.Errorf("HighScore() = %d, expected 12", high)
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	games := []struct {
		player  string
		lines   int
		elapsed time.Duration
	}{
		{"ann", 10, 90 * time.Second},
		{"bob", 5, 30 * time.Second},
		{"ann", 20, 4 * time.Minute},
		{"bob", 20, 3 * time.Minute},
	}
	for _, g := range games {
		if _, err := store.SaveScore(g.player, g.lines, g.elapsed); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}

	scores, err := store.TopScores(10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 4 {
		t.Fatalf("Expected 4 scores, got %d", len(scores))
	}

	// Most lines first, the faster game wins a tie.
	if scores[0].Player != "bob" || scores[0].Lines != 20 {
		t.Errorf("Expected bob/20 first, got %s/%d", scores[0].Player, scores[0].Lines)
	}
	if scores[1].Player != "ann" || scores[1].Lines != 20 {
		t.Errorf("Expected ann/20 second, got %s/%d", scores[1].Player, scores[1].Lines)
	}
	if scores[3].Lines != 5 {
		t.Errorf("Expected lowest score to be 5, got %d", scores[3].Lines)
	}
	if scores[0].Elapsed != 3*time.Minute {
		t.Errorf("Elapsed = %v, expected 3m0s", scores[0].Elapsed)
	}
	if scores[0].CreatedAt.IsZero() {
		t.Error("CreatedAt was not parsed")
	}

	annScores, err := store.PlayerScores("ann")
	if err != nil {
		t.Fatalf("PlayerScores() failed: %v", err)
	}
	if len(annScores) != 2 || annScores[0].Lines != 20 {
		t.Errorf("PlayerScores(ann) = %v, expected 2 entries led by 20", annScores)
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveScore("p", (i+1)*10, time.Second)
	}

	scores, err := store.TopScores(3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Errorf("Expected 3 scores with limit, got %d", len(scores))
	}

	if scores[0].Lines != 50 || scores[1].Lines != 40 || scores[2].Lines != 30 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore()
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected 0 for empty table, got %d", high)
	}

	store.SaveScore("p", 7, time.Second)
	store.SaveScore("p", 31, time.Second)
	store.SaveScore("p", 2, time.Second)

	high, err = store.HighScore()
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 31 {
		t.Errorf("HighScore() = %d, expected 31", high)
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("p", 1, time.Second)
	store.SaveScore("q", 2, time.Second)

	if err := store.ClearScores(); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	scores, err := store.TopScores(10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 0 {
		t.Errorf("Expected no scores after clear, got %d", len(scores))
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if stats.GamesCount != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("Expected empty stats, got %+v", stats)
	}

	store.SaveScore("p", 4, time.Second)
	store.SaveScore("p", 8, time.Second)

	stats, err = store.GetStats()
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if stats.GamesCount != 2 {
		t.Errorf("GamesCount = %d, expected 2", stats.GamesCount)
	}
	if stats.BestLines != 8 {
		t.Errorf("BestLines = %d, expected 8", stats.BestLines)
	}
	if stats.AvgLines != 6 {
		t.Errorf("AvgLines = %v, expected 6", stats.AvgLines)
	}
	if stats.TotalLines != 12 {
		t.Errorf("TotalLines = %d, expected 12", stats.TotalLines)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed was not parsed")
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := Open("~/.blocks/test.db")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(home, ".blocks", "test.db")); err != nil {
		t.Errorf("Database not created under home: %v", err)
	}
}
