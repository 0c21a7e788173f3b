// Package history keeps the undo/redo stack of an editing session. Every
// change to a track.Path goes through History.Push so that it can be
// reversed; nothing else in the editor mutates the path.
package history

import (
	"fmt"

	"github.com/trackforge/editor/internal/track"
)

// History is an ordered list of executed commands and a cursor separating
// the undoable prefix from the redoable tail.
type History struct {
	path     *track.Path
	commands []Command
	cursor   int
	limit    int
}

// New creates a history bound to path. A limit above zero caps the number
// of entries kept; the oldest are dropped first.
func New(path *track.Path, limit int) *History {
	return &History{path: path, limit: limit}
}

// Path returns the path this history mutates.
func (h *History) Path() *track.Path { return h.path }

// Push executes cmd, drops any redo tail and records cmd at the cursor.
// A command that fails to apply is not recorded.
func (h *History) Push(cmd Command) error {
	if err := cmd.Apply(h.path); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	h.commands = append(h.commands[:h.cursor], cmd)
	h.cursor++
	if h.limit > 0 && len(h.commands) > h.limit {
		drop := len(h.commands) - h.limit
		h.commands = append([]Command(nil), h.commands[drop:]...)
		h.cursor -= drop
	}
	return nil
}

// Undo reverts the command before the cursor. It reports false when there
// is nothing to undo.
func (h *History) Undo() (bool, error) {
	if h.cursor == 0 {
		return false, nil
	}
	cmd := h.commands[h.cursor-1]
	if err := cmd.Revert(h.path); err != nil {
		return false, fmt.Errorf("undo %s: %w", cmd.Name(), err)
	}
	h.cursor--
	return true, nil
}

// Redo re-applies the command at the cursor. It reports false when there
// is nothing to redo.
func (h *History) Redo() (bool, error) {
	if h.cursor == len(h.commands) {
		return false, nil
	}
	cmd := h.commands[h.cursor]
	if err := cmd.Apply(h.path); err != nil {
		return false, fmt.Errorf("redo %s: %w", cmd.Name(), err)
	}
	h.cursor++
	return true, nil
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.commands) }
func (h *History) Len() int      { return len(h.commands) }
func (h *History) Cursor() int   { return h.cursor }

// UndoName names the command Undo would revert, or "" if none.
func (h *History) UndoName() string {
	if !h.CanUndo() {
		return ""
	}
	return h.commands[h.cursor-1].Name()
}

// RedoName names the command Redo would apply, or "" if none.
func (h *History) RedoName() string {
	if !h.CanRedo() {
		return ""
	}
	return h.commands[h.cursor].Name()
}

// Clear forgets every entry without touching the path.
func (h *History) Clear() {
	h.commands = nil
	h.cursor = 0
}
