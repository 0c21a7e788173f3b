package editor

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/spline"
)

// PointerKind is the phase of a pointer event.
type PointerKind int

const (
	PointerPress PointerKind = iota
	PointerMove
	PointerRelease
)

// PointerEvent carries a pick ray in world space and the cursor position
// in screen pixels.
type PointerEvent struct {
	Kind   PointerKind `json:"kind"`
	Ray    spline.Ray  `json:"ray"`
	Screen mgl64.Vec2  `json:"screen"`
}

// Key is a keyboard key the editor reacts to.
type Key int

const (
	KeyOther Key = iota
	KeyDelete
	KeyEscape
	KeyZ
	KeyY
	KeyC
)

// KeyEvent is a key transition with modifier state.
type KeyEvent struct {
	Key     Key  `json:"key"`
	Pressed bool `json:"pressed"`
	Ctrl    bool `json:"ctrl"`
	Shift   bool `json:"shift"`
}

// FocusSource reports whether a UI widget currently holds input focus.
type FocusSource interface {
	HasFocus() bool
}

// FocusFunc adapts a function to FocusSource.
type FocusFunc func() bool

func (f FocusFunc) HasFocus() bool { return f() }

// Router forwards raw input to a session. Pointer and keyboard events are
// dropped while a widget has focus; the UI consumes them instead. Button
// actions come from the widgets themselves and are always delivered.
type Router struct {
	session *Session
	focus   FocusSource
}

// NewRouter creates a router. A nil focus source never reports focus.
func NewRouter(s *Session, focus FocusSource) *Router {
	if focus == nil {
		focus = FocusFunc(func() bool { return false })
	}
	return &Router{session: s, focus: focus}
}

// Pointer forwards ev unless a widget has focus. It reports whether the
// event reached the session.
func (r *Router) Pointer(ev PointerEvent) (bool, error) {
	if r.focus.HasFocus() {
		return false, nil
	}
	return true, r.session.HandlePointer(ev)
}

// Key forwards ev unless a widget has focus.
func (r *Router) Key(ev KeyEvent) (bool, error) {
	if r.focus.HasFocus() {
		return false, nil
	}
	return true, r.session.HandleKey(ev)
}

// Action delivers a toolbar or panel action.
func (r *Router) Action(a Action) error {
	return r.session.HandleAction(a)
}
