package editor

import (
	"errors"
	"testing"
)

var allModes = []Mode{
	ModeSelect, ModeMove, ModeRotate, ModeScale,
	ModeFreeCam, ModeTerrainModify, ModeTerrainCut, ModeTerrainDraw,
}

func TestActions_AllClassified(t *testing.T) {
	for a := Action(0); a < actionCount; a++ {
		kind := Classify(a)
		if kind == KindUnknown {
			t.Errorf("%v has no kind", a)
			continue
		}
		_, inTable := modeTransitions[a]
		if (kind == KindModal) != inTable {
			t.Errorf("%v: kind %v but in transition table = %v", a, kind, inTable)
		}
		if a.String() == "" {
			t.Errorf("action %d has no name", int(a))
		}
		parsed, err := ParseAction(a.String())
		if err != nil || parsed != a {
			t.Errorf("ParseAction(%q) = %v, %v", a.String(), parsed, err)
		}
	}
	if Classify(actionCount) != KindUnknown {
		t.Error("out-of-range action classified")
	}
}

func TestTransition_Table(t *testing.T) {
	tests := []struct {
		action Action
		want   Mode
	}{
		{ActionSelect, ModeSelect},
		{ActionMove, ModeMove},
		{ActionRotate, ModeRotate},
		{ActionScale, ModeScale},
		{ActionCam, ModeFreeCam},
		{ActionTerrainModify, ModeTerrainModify},
		{ActionTerrainCut, ModeTerrainCut},
		{ActionTerrainDraw, ModeTerrainDraw},
	}
	for _, tt := range tests {
		for _, from := range allModes {
			got, ok := Transition(from, tt.action)
			if !ok || got != tt.want {
				t.Errorf("Transition(%v, %v) = %v, %v, want %v", from, tt.action, got, ok, tt.want)
			}
		}
	}
}

func TestTransition_NonModalKeepsMode(t *testing.T) {
	for _, from := range allModes {
		for _, a := range []Action{ActionSave, ActionUndo, ActionGridInc, Action(999), Action(-1)} {
			got, ok := Transition(from, a)
			if ok || got != from {
				t.Errorf("Transition(%v, %v) = %v, %v, want %v, false", from, a, got, ok, from)
			}
		}
	}
}

func TestStateMachine_SetMode(t *testing.T) {
	m := NewStateMachine(nil)
	if m.CurrentMode() != ModeSelect {
		t.Fatalf("initial mode = %v, want select", m.CurrentMode())
	}

	for _, from := range []Action{ActionRotate, ActionCam, ActionTerrainDraw} {
		if err := m.SetMode(from); err != nil {
			t.Fatal(err)
		}
		if err := m.SetMode(ActionSelect); err != nil {
			t.Fatal(err)
		}
		if m.CurrentMode() != ModeSelect {
			t.Errorf("select after %v gave %v", from, m.CurrentMode())
		}
	}

	_ = m.SetMode(ActionScale)
	err := m.SetMode(Action(4242))
	if !errors.Is(err, ErrUnrecognizedAction) {
		t.Errorf("error = %v, want ErrUnrecognizedAction", err)
	}
	if m.CurrentMode() != ModeScale {
		t.Errorf("mode after unknown action = %v, want scale", m.CurrentMode())
	}
}

func TestStateMachine_FlagsAreIndependent(t *testing.T) {
	m := NewStateMachine(nil)
	m.SetRoadEditingEnabled(true)
	m.SetGrid(false)
	for _, a := range []Action{ActionMove, ActionTerrainCut, ActionSelect} {
		_ = m.SetMode(a)
		if !m.RoadEditingEnabled() || m.GridOn() {
			t.Fatalf("mode change %v touched flags", a)
		}
	}
	m.SetRoadEditingEnabled(false)
	if m.CurrentMode() != ModeSelect {
		t.Error("flag change touched mode")
	}
}

func TestStateMachine_GridDensityClamped(t *testing.T) {
	m := NewStateMachine(nil)
	for i := 0; i < 40; i++ {
		m.ChangeGridDensity(1)
	}
	if m.GridDensity() != MaxGridDensity {
		t.Errorf("density = %d, want %d", m.GridDensity(), MaxGridDensity)
	}
	for i := 0; i < 40; i++ {
		m.ChangeGridDensity(-1)
	}
	if m.GridDensity() != MinGridDensity {
		t.Errorf("density = %d, want %d", m.GridDensity(), MinGridDensity)
	}
}

func TestStateMachine_TerrainParams(t *testing.T) {
	m := NewStateMachine(nil)
	_ = m.SetMode(ActionTerrainModify)
	m.SetTerrainParams(TerrainParams{Radius: 3, Intensity: 0.8, Min: 7, Max: 2})
	got := m.TerrainParams()
	want := TerrainParams{Radius: 3, Intensity: 0.8, Min: 2, Max: 7}
	if got != want {
		t.Errorf("TerrainParams = %+v, want %+v", got, want)
	}
	if !m.CurrentMode().IsTerrain() || ModeMove.IsTerrain() {
		t.Error("IsTerrain mismatch")
	}
}
