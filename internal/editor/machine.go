package editor

import (
	"errors"
	"log/slog"
)

// ErrUnrecognizedAction is returned for an action with no transition. The
// state is left unchanged.
var ErrUnrecognizedAction = errors.New("unrecognized action")

const (
	MinGridDensity     = 1
	MaxGridDensity     = 16
	DefaultGridDensity = 4
)

// TerrainParams are the values selected in the terrain tool panel. The
// panel owns the widgets; the machine keeps the latest values.
type TerrainParams struct {
	Radius    float64 `json:"radius"`
	Intensity float64 `json:"intensity"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// DefaultTerrainParams mirrors the tool panel's initial slider positions.
func DefaultTerrainParams() TerrainParams {
	return TerrainParams{Radius: 5, Intensity: 0.5, Min: 0, Max: 10}
}

// StateMachine holds the modal tool state of one session plus the
// independent flags that are not part of the transition table.
type StateMachine struct {
	mode        Mode
	roadEditing bool
	gridOn      bool
	gridDensity int
	terrain     TerrainParams
	log         *slog.Logger
}

// NewStateMachine starts in ModeSelect with the grid shown.
func NewStateMachine(log *slog.Logger) *StateMachine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &StateMachine{
		mode:        ModeSelect,
		gridOn:      true,
		gridDensity: DefaultGridDensity,
		terrain:     DefaultTerrainParams(),
		log:         log,
	}
}

// SetMode applies the transition for a. Unknown actions are logged and
// reported; the mode does not change.
func (m *StateMachine) SetMode(a Action) error {
	next, ok := Transition(m.mode, a)
	if !ok {
		m.log.Warn("action has no mode transition", "action", a.String(), "mode", m.mode.String())
		return ErrUnrecognizedAction
	}
	if next != m.mode {
		m.log.Debug("mode changed", "from", m.mode.String(), "to", next.String())
	}
	m.mode = next
	return nil
}

func (m *StateMachine) CurrentMode() Mode { return m.mode }

func (m *StateMachine) SetRoadEditingEnabled(enabled bool) { m.roadEditing = enabled }
func (m *StateMachine) RoadEditingEnabled() bool           { return m.roadEditing }

func (m *StateMachine) SetGrid(on bool) { m.gridOn = on }
func (m *StateMachine) GridOn() bool    { return m.gridOn }
func (m *StateMachine) GridDensity() int {
	return m.gridDensity
}

// SetGridDensity clamps density to [MinGridDensity, MaxGridDensity].
func (m *StateMachine) SetGridDensity(density int) {
	m.gridDensity = min(max(density, MinGridDensity), MaxGridDensity)
}

// ChangeGridDensity steps the density by delta, clamped.
func (m *StateMachine) ChangeGridDensity(delta int) {
	m.SetGridDensity(m.gridDensity + delta)
}

// SetTerrainParams stores the values picked in the terrain panel. Min and
// Max are swapped if given out of order.
func (m *StateMachine) SetTerrainParams(p TerrainParams) {
	if p.Min > p.Max {
		p.Min, p.Max = p.Max, p.Min
	}
	m.terrain = p
}

func (m *StateMachine) TerrainParams() TerrainParams { return m.terrain }
