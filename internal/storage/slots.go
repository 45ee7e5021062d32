package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-blocks/internal/persistence"
	"github.com/vovakirdan/tui-blocks/internal/tetris"
)

// ErrSlotNotFound is returned when no save exists under the requested name.
var ErrSlotNotFound = errors.New("storage: save slot not found")

// SlotInfo describes a stored save without decoding it.
type SlotInfo struct {
	ID        string
	Owner     string
	Name      string
	Lines     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveSlot encodes state and stores it under (owner, name), replacing any
// previous save with that name. The slot keeps its ID across overwrites.
func (s *Store) SaveSlot(ctx context.Context, owner, name string, state tetris.GameState) (string, error) {
	record, err := persistence.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("storage: cannot encode save %q: %w", name, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (id, owner, name, record, lines)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(owner, name) DO UPDATE SET
		     record = excluded.record,
		     lines = excluded.lines,
		     updated_at = CURRENT_TIMESTAMP`,
		uuid.NewString(), owner, name, string(record), state.LinesCleared,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save slot %q: %w", name, err)
	}

	var id string
	err = s.db.QueryRowContext(ctx,
		"SELECT id FROM saves WHERE owner = ? AND name = ?", owner, name,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("storage: cannot read slot id: %w", err)
	}
	return id, nil
}

// LoadSlot decodes the save stored under (owner, name).
func (s *Store) LoadSlot(ctx context.Context, owner, name string) (tetris.GameState, error) {
	var record string
	err := s.db.QueryRowContext(ctx,
		"SELECT record FROM saves WHERE owner = ? AND name = ?", owner, name,
	).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return tetris.GameState{}, &persistence.DataError{
			Op: "load", Path: owner + "/" + name, Msg: "no such save", Err: ErrSlotNotFound,
		}
	}
	if err != nil {
		return tetris.GameState{}, fmt.Errorf("storage: cannot query slot %q: %w", name, err)
	}

	state, err := persistence.Unmarshal([]byte(record))
	if err != nil {
		return tetris.GameState{}, fmt.Errorf("storage: slot %q: %w", name, err)
	}
	return state, nil
}

// ListSlots returns the saves of one owner ordered by name.
func (s *Store) ListSlots(ctx context.Context, owner string) ([]SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, name, lines, created_at, updated_at
		 FROM saves
		 WHERE owner = ?
		 ORDER BY name ASC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query slots: %w", err)
	}
	defer rows.Close()

	var slots []SlotInfo
	for rows.Next() {
		var info SlotInfo
		var createdAt, updatedAt any
		if err := rows.Scan(&info.ID, &info.Owner, &info.Name, &info.Lines, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		info.CreatedAt = parseTime(createdAt)
		info.UpdatedAt = parseTime(updatedAt)
		slots = append(slots, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return slots, nil
}

// DeleteSlot removes a save. Deleting a missing slot is not an error.
func (s *Store) DeleteSlot(ctx context.Context, owner, name string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM saves WHERE owner = ? AND name = ?", owner, name)
	if err != nil {
		return fmt.Errorf("storage: cannot delete slot %q: %w", name, err)
	}
	return nil
}

// SlotRepository exposes one owner's save slots as a tetris.Repository.
type SlotRepository struct {
	store *Store
	owner string
}

// Slots returns the repository for owner's saves.
func (s *Store) Slots(owner string) *SlotRepository {
	return &SlotRepository{store: s, owner: owner}
}

func (r *SlotRepository) Save(ctx context.Context, name string, state tetris.GameState) error {
	_, err := r.store.SaveSlot(ctx, r.owner, name, state)
	return err
}

func (r *SlotRepository) Load(ctx context.Context, name string) (tetris.GameState, error) {
	return r.store.LoadSlot(ctx, r.owner, name)
}

var _ tetris.Repository = (*SlotRepository)(nil)
