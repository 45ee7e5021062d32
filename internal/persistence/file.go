package persistence

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vovakirdan/tui-blocks/internal/tetris"
)

// Ext is appended to save names that carry no extension.
const Ext = ".blocks"

// FileStore keeps one text record per file under Dir.
type FileStore struct {
	Dir string
}

// NewFileStore returns a store rooted at dir. A leading ~ is expanded.
func NewFileStore(dir string) (*FileStore, error) {
	dir, err := expandHome(dir)
	if err != nil {
		return nil, &DataError{Op: "open", Path: dir, Msg: "cannot expand home directory", Err: err}
	}
	return &FileStore{Dir: dir}, nil
}

// Path resolves a save name to a file path. Absolute names are used as is.
func (f *FileStore) Path(name string) string {
	if filepath.Ext(name) == "" {
		name += Ext
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(f.Dir, name)
}

// Save writes the record to a temporary file and renames it into place so a
// failed write never truncates an existing save.
func (f *FileStore) Save(ctx context.Context, name string, state tetris.GameState) error {
	path := f.Path(name)
	if err := ctx.Err(); err != nil {
		return &DataError{Op: "save", Path: path, Msg: "cancelled", Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &DataError{Op: "save", Path: path, Msg: "cannot create directory", Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".save-*")
	if err != nil {
		return &DataError{Op: "save", Path: path, Msg: "cannot create temporary file", Err: err}
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, state); err != nil {
		tmp.Close()
		return withPath(err, "save", path)
	}
	if err := tmp.Close(); err != nil {
		return &DataError{Op: "save", Path: path, Msg: "cannot flush file", Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &DataError{Op: "save", Path: path, Msg: "cannot replace file", Err: err}
	}
	return nil
}

// Load reads and decodes a saved game.
func (f *FileStore) Load(ctx context.Context, name string) (tetris.GameState, error) {
	path := f.Path(name)
	if err := ctx.Err(); err != nil {
		return tetris.GameState{}, &DataError{Op: "load", Path: path, Msg: "cancelled", Err: err}
	}

	file, err := os.Open(path)
	if err != nil {
		msg := "cannot open file"
		if errors.Is(err, fs.ErrNotExist) {
			msg = "no such save"
		}
		return tetris.GameState{}, &DataError{Op: "load", Path: path, Msg: msg, Err: err}
	}
	defer file.Close()

	state, err := Decode(file)
	if err != nil {
		return tetris.GameState{}, withPath(err, "load", path)
	}
	return state, nil
}

// List returns the save names found in Dir, without extension.
func (f *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(f.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &DataError{Op: "list", Path: f.Dir, Msg: "cannot read directory", Err: err}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Ext))
	}
	return names, nil
}

func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path, err
	}
	return filepath.Join(home, path[1:]), nil
}
