package tetris

import "errors"

// ErrInvalidState is returned when a game is saved outside a running,
// unpaused game.
var ErrInvalidState = errors.New("tetris: game can only be saved while running")
