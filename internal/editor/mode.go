package editor

import (
	"fmt"
	"strings"
)

// Mode is the active tool context.
type Mode int

const (
	ModeSelect Mode = iota
	ModeMove
	ModeRotate
	ModeScale
	ModeFreeCam
	ModeTerrainModify
	ModeTerrainCut
	ModeTerrainDraw
)

var modeNames = [...]string{
	ModeSelect:        "select",
	ModeMove:          "move",
	ModeRotate:        "rotate",
	ModeScale:         "scale",
	ModeFreeCam:       "free-cam",
	ModeTerrainModify: "terrain-modify",
	ModeTerrainCut:    "terrain-cut",
	ModeTerrainDraw:   "terrain-draw",
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// IsTerrain reports whether the mode is one of the terrain tools.
func (m Mode) IsTerrain() bool {
	return m == ModeTerrainModify || m == ModeTerrainCut || m == ModeTerrainDraw
}

// Action identifies a toolbar or tool-panel button.
type Action int

const (
	ActionNew Action = iota
	ActionOpen
	ActionSave
	ActionSaveAs
	ActionUndo
	ActionRedo
	ActionSelect
	ActionMove
	ActionRotate
	ActionScale
	ActionDelete
	ActionCam
	ActionGridOnOff
	ActionGridInc
	ActionGridDec
	ActionTry
	ActionSettings
	ActionExit
	ActionTerrainModify
	ActionTerrainCut
	ActionTerrainDraw

	actionCount
)

var actionNames = [...]string{
	ActionNew:           "new",
	ActionOpen:          "open",
	ActionSave:          "save",
	ActionSaveAs:        "save-as",
	ActionUndo:          "undo",
	ActionRedo:          "redo",
	ActionSelect:        "select",
	ActionMove:          "move",
	ActionRotate:        "rotate",
	ActionScale:         "scale",
	ActionDelete:        "delete",
	ActionCam:           "cam",
	ActionGridOnOff:     "grid-on-off",
	ActionGridInc:       "grid-inc",
	ActionGridDec:       "grid-dec",
	ActionTry:           "try",
	ActionSettings:      "settings",
	ActionExit:          "exit",
	ActionTerrainModify: "terrain-modify",
	ActionTerrainCut:    "terrain-cut",
	ActionTerrainDraw:   "terrain-draw",
}

func (a Action) String() string {
	if a >= 0 && a < actionCount {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction resolves an action by its name.
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a := Action(0); a < actionCount; a++ {
		if actionNames[a] == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnrecognizedAction, name)
}

// ActionKind groups actions by the component that handles them.
type ActionKind int

const (
	KindUnknown ActionKind = iota
	// KindModal actions switch the tool mode.
	KindModal
	// KindHistory actions walk the undo stack.
	KindHistory
	// KindEdit actions mutate the path through a command.
	KindEdit
	// KindGrid actions change the grid flags.
	KindGrid
	// KindSession actions reset or end the session.
	KindSession
	// KindHost actions are handed back to the host (files, play-testing, settings).
	KindHost
)

var actionKinds = map[Action]ActionKind{
	ActionNew:           KindSession,
	ActionOpen:          KindHost,
	ActionSave:          KindHost,
	ActionSaveAs:        KindHost,
	ActionUndo:          KindHistory,
	ActionRedo:          KindHistory,
	ActionSelect:        KindModal,
	ActionMove:          KindModal,
	ActionRotate:        KindModal,
	ActionScale:         KindModal,
	ActionDelete:        KindEdit,
	ActionCam:           KindModal,
	ActionGridOnOff:     KindGrid,
	ActionGridInc:       KindGrid,
	ActionGridDec:       KindGrid,
	ActionTry:           KindHost,
	ActionSettings:      KindHost,
	ActionExit:          KindSession,
	ActionTerrainModify: KindModal,
	ActionTerrainCut:    KindModal,
	ActionTerrainDraw:   KindModal,
}

// Classify returns the kind of a, or KindUnknown.
func Classify(a Action) ActionKind {
	return actionKinds[a]
}

// modeTransitions is the whole transition table. Every target is reachable
// from every mode, so the table is keyed by action alone.
var modeTransitions = map[Action]Mode{
	ActionSelect:        ModeSelect,
	// Move gets its own mode; the legacy toolbar fell back to select here,
	// which left ModeMove unreachable.
	ActionMove:          ModeMove,
	ActionRotate:        ModeRotate,
	ActionScale:         ModeScale,
	ActionCam:           ModeFreeCam,
	ActionTerrainModify: ModeTerrainModify,
	ActionTerrainCut:    ModeTerrainCut,
	ActionTerrainDraw:   ModeTerrainDraw,
}

// Transition is the pure transition function. ok is false when a has no
// transition; the returned mode is then current.
func Transition(current Mode, a Action) (next Mode, ok bool) {
	if m, found := modeTransitions[a]; found {
		return m, true
	}
	return current, false
}
