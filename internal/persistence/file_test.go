package persistence

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-blocks/internal/tetris"
)

var _ tetris.Repository = (*FileStore)(nil)

func TestFileStoreSaveLoad(t *testing.T) {
	store := &FileStore{Dir: filepath.Join(t.TempDir(), "saves")}
	ctx := context.Background()
	state := smallState(t)

	require.NoError(t, store.Save(ctx, "slot1", state))

	data, err := os.ReadFile(filepath.Join(store.Dir, "slot1.blocks"))
	require.NoError(t, err)
	assert.Equal(t, smallRecord, string(data))

	got, err := store.Load(ctx, "slot1")
	require.NoError(t, err)
	assert.True(t, state.Field.Equal(got.Field))
	assert.True(t, state.Piece.Equal(got.Piece))
	assert.Equal(t, state.Elapsed, got.Elapsed)

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"slot1"}, names)
}

func TestFileStoreOverwriteKeepsSingleFile(t *testing.T) {
	store := &FileStore{Dir: t.TempDir()}
	ctx := context.Background()
	state := smallState(t)

	require.NoError(t, store.Save(ctx, "slot", state))
	state.LinesCleared = 40
	require.NoError(t, store.Save(ctx, "slot", state))

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")

	got, err := store.Load(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, 40, got.LinesCleared)
}

func TestFileStoreFailedSaveKeepsPreviousFile(t *testing.T) {
	store := &FileStore{Dir: t.TempDir()}
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "slot", smallState(t)))

	bad := smallState(t)
	bad.Piece = nil
	err := store.Save(ctx, "slot", bad)
	require.Error(t, err)
	assert.True(t, IsDataError(err))

	got, err := store.Load(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, 2, got.LinesCleared)
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := &FileStore{Dir: t.TempDir()}

	_, err := store.Load(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsDataError(err))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "nope.blocks")
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	store := &FileStore{Dir: t.TempDir()}
	path := store.Path("broken")
	require.NoError(t, os.WriteFile(path, []byte("4 5 oops 2\n"), 0o644))

	_, err := store.Load(context.Background(), "broken")
	require.Error(t, err)

	var de *DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "load", de.Op)
	assert.Equal(t, path, de.Path)
	assert.Equal(t, 1, de.Line)
}

func TestFileStoreCancelledContext(t *testing.T) {
	store := &FileStore{Dir: t.TempDir()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Save(ctx, "slot", smallState(t))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Load(ctx, "slot")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStorePath(t *testing.T) {
	store := &FileStore{Dir: "/var/saves"}

	tests := []struct {
		name     string
		expected string
	}{
		{"game", "/var/saves/game.blocks"},
		{"game.txt", "/var/saves/game.txt"},
		{"/tmp/x", "/tmp/x.blocks"},
		{"/tmp/x.blocks", "/tmp/x.blocks"},
	}

	for _, tc := range tests {
		if got := store.Path(tc.name); got != tc.expected {
			t.Errorf("Path(%q) = %q, expected %q", tc.name, got, tc.expected)
		}
	}
}

func TestFileStoreListMissingDir(t *testing.T) {
	store := &FileStore{Dir: filepath.Join(t.TempDir(), "absent")}
	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}
