package core

// Action represents a semantic game action, abstracted from physical key presses.
// This allows the game to work with high-level intents rather than raw input.
type Action int

const (
	ActionNone     Action = iota
	ActionLeft            // Left arrow, H - shift piece left
	ActionRight           // Right arrow, L - shift piece right
	ActionSoftDrop        // Down arrow, J - move piece down one row
	ActionRotate          // Up arrow, X - rotate clockwise
	ActionDrop            // Space - hard drop
	ActionPause           // P - pause/resume
	ActionSave            // Ctrl+S - save to the quick slot
	ActionLoad            // Ctrl+L - load the quick slot
	ActionRestart         // R - start a new game
	ActionQuit            // Q, Ctrl+C - exit session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionSoftDrop:
		return "SoftDrop"
	case ActionRotate:
		return "Rotate"
	case ActionDrop:
		return "Drop"
	case ActionPause:
		return "Pause"
	case ActionSave:
		return "Save"
	case ActionLoad:
		return "Load"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Moves reports whether the action manipulates the falling piece.
func (a Action) Moves() bool {
	switch a {
	case ActionLeft, ActionRight, ActionSoftDrop, ActionRotate, ActionDrop:
		return true
	default:
		return false
	}
}
