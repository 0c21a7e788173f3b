// Package editor turns toolbar actions and pointer/keyboard input into
// reversible edits of a track path.
//
// A Session is an explicitly constructed editing context: it owns the path,
// its command history and the modal state machine. Nothing here is global,
// so any number of sessions can run side by side (one per websocket room,
// one per test).
package editor

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/history"
	"github.com/trackforge/editor/internal/spline"
	"github.com/trackforge/editor/internal/track"
	"github.com/trackforge/editor/internal/typeid"
)

// Options tune a session.
type Options struct {
	HistoryLimit int
	// PickRadius is how close, in world units, a ray must pass to a control
	// point or the curve to hit it.
	PickRadius  float64
	GridDensity int
	FrameSteps  int
}

func (o Options) withDefaults() Options {
	if o.PickRadius <= 0 {
		o.PickRadius = 1.5
	}
	if o.GridDensity <= 0 {
		o.GridDensity = DefaultGridDensity
	}
	return o
}

const (
	bankPerPixel   = 0.01
	widthPerPixel  = 0.05
	minPointWidth  = 0.5
	maxBankRadians = math.Pi / 3
)

type dragState struct {
	index     int
	id        string
	startPos  mgl64.Vec3
	pos       mgl64.Vec3
	startMeta track.Meta
	meta      track.Meta
	startX    float64
}

// Session is one editing context.
type Session struct {
	ID string

	opts     Options
	path     *track.Path
	history  *history.History
	machine  *StateMachine
	log      *slog.Logger
	selected int
	drag     *dragState
	exited   bool

	eval    *spline.Evaluator
	evalRev uint64

	// OnHostAction receives actions the session does not handle itself
	// (open, save, play-test, settings).
	OnHostAction func(Action)
}

// NewSession creates an empty session.
func NewSession(opts Options, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	opts = opts.withDefaults()
	id := typeid.NewSessionID()
	s := &Session{
		ID:       id,
		opts:     opts,
		machine:  NewStateMachine(log),
		log:      log.With("session", id),
		selected: -1,
	}
	s.machine.SetGridDensity(opts.GridDensity)
	s.reset(track.NewPath())
	return s
}

func (s *Session) reset(p *track.Path) {
	s.path = p
	s.history = history.New(p, s.opts.HistoryLimit)
	s.selected = -1
	s.drag = nil
	s.eval = nil
}

// Load replaces the path and forgets the history.
func (s *Session) Load(points []track.ControlPoint, closed bool) {
	s.reset(track.NewPathFrom(points, closed))
	s.log.Info("track loaded", "points", len(points), "closed", closed)
}

func (s *Session) Path() track.Reader        { return s.path }
func (s *Session) History() *history.History { return s.history }
func (s *Session) Machine() *StateMachine    { return s.machine }
func (s *Session) Selected() int             { return s.selected }
func (s *Session) Exited() bool              { return s.exited }

// Evaluator returns the curve for the current path revision. It is rebuilt
// only after the path changes.
func (s *Session) Evaluator() *spline.Evaluator {
	if s.eval == nil || s.evalRev != s.path.Revision() {
		s.eval = spline.New(s.path, s.frameOpts()...)
		s.evalRev = s.path.Revision()
	}
	return s.eval
}

func (s *Session) frameOpts() []spline.Option {
	if s.opts.FrameSteps > 0 {
		return []spline.Option{spline.WithFrameSteps(s.opts.FrameSteps)}
	}
	return nil
}

// Apply pushes cmd onto the history. A command that adds or removes points
// cancels any drag in progress.
func (s *Session) Apply(cmd history.Command) error {
	size := s.path.Size()
	if err := s.history.Push(cmd); err != nil {
		s.log.Warn("command rejected", "command", cmd.Name(), "error", err)
		return err
	}
	if s.drag != nil && s.path.Size() != size {
		s.log.Debug("drag cancelled by edit", "command", cmd.Name())
		s.drag = nil
	}
	s.log.Debug("command applied", "command", cmd.Name(), "points", s.path.Size())
	s.clampSelection()
	return nil
}

// Undo reverts the last command; an empty history is a silent no-op.
func (s *Session) Undo() error {
	s.drag = nil
	_, err := s.history.Undo()
	s.clampSelection()
	return err
}

// Redo re-applies the next command; an empty redo tail is a silent no-op.
func (s *Session) Redo() error {
	s.drag = nil
	_, err := s.history.Redo()
	s.clampSelection()
	return err
}

func (s *Session) clampSelection() {
	if s.selected >= s.path.Size() {
		s.selected = -1
	}
}

// Select marks the point at index as selected; -1 clears the selection.
func (s *Session) Select(index int) error {
	if index < -1 || index >= s.path.Size() {
		return track.ErrIndexOutOfRange
	}
	s.selected = index
	return nil
}

// HandleAction dispatches a toolbar action by its kind.
func (s *Session) HandleAction(a Action) error {
	switch Classify(a) {
	case KindModal:
		s.drag = nil
		return s.machine.SetMode(a)
	case KindHistory:
		if a == ActionUndo {
			return s.Undo()
		}
		return s.Redo()
	case KindEdit:
		return s.deleteSelected()
	case KindGrid:
		switch a {
		case ActionGridOnOff:
			s.machine.SetGrid(!s.machine.GridOn())
		case ActionGridInc:
			s.machine.ChangeGridDensity(1)
		case ActionGridDec:
			s.machine.ChangeGridDensity(-1)
		}
		return nil
	case KindSession:
		if a == ActionExit {
			s.exited = true
			s.log.Info("session exit requested")
			return nil
		}
		s.reset(track.NewPath())
		s.log.Info("new track")
		return nil
	case KindHost:
		if s.OnHostAction != nil {
			s.OnHostAction(a)
		} else {
			s.log.Debug("host action ignored", "action", a.String())
		}
		return nil
	default:
		return s.machine.SetMode(a)
	}
}

// HandleKey reacts to key presses; releases are ignored.
func (s *Session) HandleKey(ev KeyEvent) error {
	if !ev.Pressed {
		return nil
	}
	switch {
	case ev.Key == KeyZ && ev.Ctrl && ev.Shift, ev.Key == KeyY && ev.Ctrl:
		return s.Redo()
	case ev.Key == KeyZ && ev.Ctrl:
		return s.Undo()
	case ev.Key == KeyDelete:
		return s.deleteSelected()
	case ev.Key == KeyEscape:
		s.drag = nil
		return nil
	case ev.Key == KeyC && s.machine.RoadEditingEnabled():
		return s.Apply(&history.SetClosed{Closed: !s.path.IsClosed()})
	}
	return nil
}

func (s *Session) deleteSelected() error {
	if s.selected < 0 {
		return nil
	}
	cmd := &history.RemovePoint{Index: s.selected}
	s.selected = -1
	s.drag = nil
	if err := s.Apply(cmd); err != nil {
		return err
	}
	s.log.Info("point removed", "id", cmd.Removed().ID)
	return nil
}

// HandlePointer interprets a pointer event according to the current mode.
func (s *Session) HandlePointer(ev PointerEvent) error {
	switch ev.Kind {
	case PointerPress:
		return s.press(ev)
	case PointerMove:
		s.dragTo(ev)
		return nil
	case PointerRelease:
		return s.release()
	}
	return nil
}

func (s *Session) press(ev PointerEvent) error {
	hit := s.Pick(ev.Ray)
	mode := s.machine.CurrentMode()
	switch mode {
	case ModeSelect:
		if hit >= 0 {
			s.selected = hit
			return nil
		}
		s.selected = -1
		if !s.machine.RoadEditingEnabled() {
			return nil
		}
		return s.insert(ev.Ray)
	case ModeMove, ModeRotate, ModeScale:
		// Bank and width drags may start anywhere once a point is selected.
		if hit < 0 && mode != ModeMove {
			hit = s.selected
		}
		if hit < 0 {
			return nil
		}
		cp, err := s.path.Get(hit)
		if err != nil {
			return err
		}
		s.selected = hit
		s.drag = &dragState{
			index:     hit,
			id:        cp.ID,
			startPos:  cp.Position,
			pos:       cp.Position,
			startMeta: cp.Meta,
			meta:      cp.Meta,
			startX:    ev.Screen.X(),
		}
	}
	return nil
}

func (s *Session) dragTo(ev PointerEvent) {
	d := s.drag
	if d == nil {
		return
	}
	dx := ev.Screen.X() - d.startX
	switch s.machine.CurrentMode() {
	case ModeMove:
		if p, ok := ev.Ray.GroundHit(d.startPos.Y()); ok {
			d.pos = p
		}
	case ModeRotate:
		d.meta = d.startMeta.Clone()
		d.meta.Bank = math.Max(-maxBankRadians, math.Min(maxBankRadians, d.startMeta.Bank+dx*bankPerPixel))
	case ModeScale:
		d.meta = d.startMeta.Clone()
		d.meta.Width = math.Max(minPointWidth, d.startMeta.Width+dx*widthPerPixel)
	}
}

func (s *Session) release() error {
	d := s.drag
	s.drag = nil
	if d == nil {
		return nil
	}
	// The point is looked up by id; a drag whose point is gone commits nothing.
	idx := s.path.IndexOf(d.id)
	if idx < 0 {
		return nil
	}
	switch s.machine.CurrentMode() {
	case ModeMove:
		if d.pos == d.startPos {
			return nil
		}
		return s.Apply(&history.MovePoint{Index: idx, Old: d.startPos, New: d.pos})
	case ModeRotate, ModeScale:
		if d.meta.Equal(d.startMeta) {
			return nil
		}
		return s.Apply(&history.SetMeta{Index: idx, Old: d.startMeta, New: d.meta})
	}
	return nil
}

// insert places a new point where the ray meets the curve, or appends one
// where it meets the ground plane.
func (s *Session) insert(ray spline.Ray) error {
	if s.path.Size() >= 2 {
		t, dist, err := s.Evaluator().Closest(ray)
		if err == nil && dist <= s.opts.PickRadius {
			pos, _ := s.Evaluator().Position(t)
			idx := int(math.Floor(t)) + 1
			idx = min(idx, s.path.Size())
			cp := track.NewPoint(pos)
			cp.Meta.Width = s.interpolatedWidth(t)
			if err := s.Apply(&history.AddPoint{Index: idx, Point: cp}); err != nil {
				return err
			}
			s.selected = idx
			return nil
		}
	}
	pos, ok := ray.GroundHit(0)
	if !ok {
		return nil
	}
	idx := s.path.Size()
	if err := s.Apply(&history.AddPoint{Index: idx, Point: track.NewPoint(pos)}); err != nil {
		return err
	}
	s.selected = idx
	return nil
}

func (s *Session) interpolatedWidth(t float64) float64 {
	f, err := s.Evaluator().Frame(t)
	if err != nil || f.Width <= 0 {
		return track.DefaultWidth
	}
	return f.Width
}

// Pick returns the index of the control point nearest to the ray within the
// pick radius, or -1.
func (s *Session) Pick(ray spline.Ray) int {
	best, bestDist := -1, s.opts.PickRadius
	for i, cp := range s.path.Points() {
		if d := ray.Distance(cp.Position); d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Preview describes a drag in progress. The path is untouched until the
// drag is released.
type Preview struct {
	Index    int
	Position mgl64.Vec3
	Meta     track.Meta
}

// DragPreview returns the in-flight drag, if any.
func (s *Session) DragPreview() (Preview, bool) {
	if s.drag == nil {
		return Preview{}, false
	}
	return Preview{Index: s.drag.index, Position: s.drag.pos, Meta: s.drag.meta}, true
}

// PreviewEvaluator returns the curve with the drag preview applied, or the
// regular evaluator when nothing is being dragged.
func (s *Session) PreviewEvaluator() *spline.Evaluator {
	p, ok := s.DragPreview()
	if !ok {
		return s.Evaluator()
	}
	points := s.path.Points()
	if p.Index < 0 || p.Index >= len(points) {
		return s.Evaluator()
	}
	points[p.Index].Position = p.Position
	points[p.Index].Meta = p.Meta
	return spline.FromPoints(points, s.path.IsClosed(), s.frameOpts()...)
}
