package history

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/track"
)

func cp(id string, x float64) track.ControlPoint {
	return track.ControlPoint{ID: id, Position: mgl64.Vec3{x, 0, 0}, Meta: track.Meta{Width: 8}}
}

func abcd(closed bool) *track.Path {
	return track.NewPathFrom([]track.ControlPoint{cp("A", 0), cp("B", 1), cp("C", 2), cp("D", 3)}, closed)
}

func order(p *track.Path) string {
	s := ""
	for _, pt := range p.Points() {
		s += pt.ID
	}
	return s
}

func TestCommands_UndoRestoresState(t *testing.T) {
	override := mgl64.Vec3{0, 0, 1}
	tests := []struct {
		name string
		cmd  Command
	}{
		{"add front", &AddPoint{Index: 0, Point: cp("X", -1)}},
		{"add middle", &AddPoint{Index: 2, Point: cp("X", 1.5)}},
		{"add end", &AddPoint{Index: 4, Point: cp("X", 4)}},
		{"remove first", &RemovePoint{Index: 0}},
		{"remove last", &RemovePoint{Index: 3}},
		{"move", &MovePoint{Index: 2, Old: mgl64.Vec3{2, 0, 0}, New: mgl64.Vec3{2, 5, -1}}},
		{"meta", &SetMeta{Index: 1, Old: track.Meta{Width: 8}, New: track.Meta{Width: 3, Bank: 0.2, TangentOverride: &override}}},
		{"close", &SetClosed{Closed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := abcd(false)
			p := abcd(false)
			h := New(p, 0)

			if err := h.Push(tt.cmd); err != nil {
				t.Fatalf("Push error: %v", err)
			}
			if p.Equal(before) {
				t.Fatal("command did not change the path")
			}
			after := track.NewPathFrom(p.Points(), p.IsClosed())

			if ok, err := h.Undo(); !ok || err != nil {
				t.Fatalf("Undo = %v, %v", ok, err)
			}
			if !p.Equal(before) {
				t.Errorf("after undo = %s closed=%v, want %s", order(p), p.IsClosed(), order(before))
			}

			if ok, err := h.Redo(); !ok || err != nil {
				t.Fatalf("Redo = %v, %v", ok, err)
			}
			if !p.Equal(after) {
				t.Errorf("after redo = %s, want %s", order(p), order(after))
			}
		})
	}
}

func TestHistory_RemoveUndoRedoScenario(t *testing.T) {
	p := abcd(true)
	h := New(p, 0)

	if err := h.Push(&RemovePoint{Index: 1}); err != nil {
		t.Fatal(err)
	}
	if got := order(p); got != "ACD" {
		t.Fatalf("after remove = %s, want ACD", got)
	}

	_, _ = h.Undo()
	if got := order(p); got != "ABCD" {
		t.Fatalf("after undo = %s, want ABCD", got)
	}
	b, _ := p.Get(1)
	if !b.Equal(cp("B", 1)) {
		t.Errorf("restored point = %+v, want B", b)
	}

	_, _ = h.Redo()
	if got := order(p); got != "ACD" {
		t.Fatalf("after redo = %s, want ACD", got)
	}
	if !p.IsClosed() {
		t.Error("closed flag lost")
	}
}

func TestHistory_PushTruncatesRedoTail(t *testing.T) {
	p := abcd(false)
	h := New(p, 0)

	_ = h.Push(&MovePoint{Index: 0, Old: mgl64.Vec3{0, 0, 0}, New: mgl64.Vec3{0, 1, 0}})
	_ = h.Push(&MovePoint{Index: 1, Old: mgl64.Vec3{1, 0, 0}, New: mgl64.Vec3{1, 1, 0}})
	_, _ = h.Undo()
	if !h.CanRedo() {
		t.Fatal("expected redo after undo")
	}

	_ = h.Push(&RemovePoint{Index: 3})
	if h.CanRedo() {
		t.Error("redo tail survived a new push")
	}
	if ok, err := h.Redo(); ok || err != nil {
		t.Errorf("Redo = %v, %v, want silent no-op", ok, err)
	}
	if h.Len() != 2 || h.Cursor() != 2 {
		t.Errorf("len=%d cursor=%d, want 2,2", h.Len(), h.Cursor())
	}
	if got := order(p); got != "ABC" {
		t.Errorf("path = %s, want ABC", got)
	}
}

func TestHistory_EmptyIsNoop(t *testing.T) {
	p := abcd(false)
	h := New(p, 0)
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("fresh history reports work")
	}
	if ok, err := h.Undo(); ok || err != nil {
		t.Errorf("Undo = %v, %v", ok, err)
	}
	if ok, err := h.Redo(); ok || err != nil {
		t.Errorf("Redo = %v, %v", ok, err)
	}
	if !p.Equal(abcd(false)) {
		t.Error("no-op mutated the path")
	}
}

func TestHistory_FailedPushNotRecorded(t *testing.T) {
	p := abcd(false)
	h := New(p, 0)
	err := h.Push(&RemovePoint{Index: 7})
	if !errors.Is(err, track.ErrIndexOutOfRange) {
		t.Fatalf("error = %v, want ErrIndexOutOfRange", err)
	}
	if h.Len() != 0 || h.CanUndo() {
		t.Error("failed command was recorded")
	}
}

func TestCommands_CaptureStateOnApply(t *testing.T) {
	override := mgl64.Vec3{1, 0, 0}
	tests := []struct {
		name string
		cmd  Command
	}{
		{"move with stale old", &MovePoint{Index: 2, Old: mgl64.Vec3{99, 99, 99}, New: mgl64.Vec3{2, 5, 0}}},
		{"meta with stale old", &SetMeta{Index: 1, Old: track.Meta{Width: 42, Bank: 1}, New: track.Meta{Width: 3, TangentOverride: &override}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := abcd(false)
			h := New(p, 0)
			if err := h.Push(tt.cmd); err != nil {
				t.Fatal(err)
			}
			if _, err := h.Undo(); err != nil {
				t.Fatal(err)
			}
			if !p.Equal(abcd(false)) {
				t.Errorf("undo trusted the caller's Old: %s", order(p))
			}
		})
	}
}

func TestCommands_FailedApplyLeavesOld(t *testing.T) {
	c := &MovePoint{Index: 10, Old: mgl64.Vec3{1, 2, 3}}
	if err := c.Apply(abcd(false)); !errors.Is(err, track.ErrIndexOutOfRange) {
		t.Fatalf("error = %v", err)
	}
	if c.Old != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("Old overwritten by failed apply: %v", c.Old)
	}
}

func TestHistory_Limit(t *testing.T) {
	p := track.NewPath()
	h := New(p, 3)
	for i := 0; i < 5; i++ {
		_ = h.Push(&AddPoint{Index: i, Point: cp(string(rune('A'+i)), float64(i))})
	}
	if h.Len() != 3 || h.Cursor() != 3 {
		t.Fatalf("len=%d cursor=%d, want 3,3", h.Len(), h.Cursor())
	}
	for h.CanUndo() {
		_, _ = h.Undo()
	}
	if got := order(p); got != "AB" {
		t.Errorf("after undoing everything = %s, want AB", got)
	}
}

func TestHistory_Names(t *testing.T) {
	h := New(abcd(false), 0)
	_ = h.Push(&RemovePoint{Index: 0})
	if h.UndoName() != "remove point" || h.RedoName() != "" {
		t.Errorf("names = %q, %q", h.UndoName(), h.RedoName())
	}
	_, _ = h.Undo()
	if h.UndoName() != "" || h.RedoName() != "remove point" {
		t.Errorf("names = %q, %q", h.UndoName(), h.RedoName())
	}
	h.Clear()
	if h.CanRedo() || h.Len() != 0 {
		t.Error("Clear kept entries")
	}
}
