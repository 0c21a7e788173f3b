package engine

import (
	"encoding/json"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/document"
	"github.com/trackforge/editor/internal/editor"
	"github.com/trackforge/editor/internal/track"
	"github.com/trackforge/editor/internal/typeid"
)

const (
	defaultSamples = 16
	orbitPerPixel  = 0.01
)

// Options configure an engine.
type Options struct {
	Session           editor.Options
	SamplesPerSegment int
	Width, Height     float64
	Logger            *slog.Logger
}

// Engine owns one editing session and renders it for a single viewport.
// It processes commands from the frontend and answers queries; it is not
// safe for concurrent use.
type Engine struct {
	doc     *document.TrackDocument
	docPath track.Reader
	docRev  uint64
	session *editor.Session
	router  *editor.Router
	camera  Camera
	samples int
	log     *slog.Logger

	// Focus is set while a UI widget owns the keyboard and pointer.
	focus bool

	// Free camera drag state
	orbiting bool
	lastX    float64
	lastY    float64

	hostActions []editor.Action

	scene    *Scene
	sceneRev uint64
	dirty    bool
}

// NewEngine creates an engine holding an empty track.
func NewEngine(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.SamplesPerSegment <= 0 {
		opts.SamplesPerSegment = defaultSamples
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	e := &Engine{
		session: editor.NewSession(opts.Session, opts.Logger),
		camera:  NewCamera(opts.Width, opts.Height),
		samples: opts.SamplesPerSegment,
		log:     opts.Logger,
		dirty:   true,
	}
	e.router = editor.NewRouter(e.session, editor.FocusFunc(func() bool { return e.focus }))
	e.session.OnHostAction = func(a editor.Action) {
		e.hostActions = append(e.hostActions, a)
	}
	return e
}

// --- Commands (frontend → backend) ---

// LoadDocument replaces the track with a JSON document.
func (e *Engine) LoadDocument(jsonData string) error {
	doc, err := document.Parse([]byte(jsonData))
	if err != nil {
		return err
	}
	e.SetDocument(doc)
	return nil
}

// SetDocument replaces the track. History and selection are reset.
func (e *Engine) SetDocument(doc *document.TrackDocument) {
	e.doc = doc
	e.session.Load(doc.Points, doc.Closed)
	e.docPath = e.session.Path()
	e.docRev = e.docPath.Revision()
	e.orbiting = false
	e.dirty = true
}

// LoadSampleDocument loads the built-in oval.
func (e *Engine) LoadSampleDocument(trackID string) {
	e.SetDocument(document.NewSampleDocument(trackID))
}

// HandleAction dispatches a toolbar action by name.
func (e *Engine) HandleAction(name string) error {
	a, err := editor.ParseAction(name)
	if err != nil {
		return err
	}
	return e.Dispatch(a)
}

// Dispatch delivers a toolbar action. Actions are never filtered by focus.
func (e *Engine) Dispatch(a editor.Action) error {
	e.dirty = true
	e.orbiting = false
	return e.router.Action(a)
}

// HandlePointer delivers a pointer event at screen pixel (x, y). In the
// free camera mode a drag orbits the camera instead of editing. It reports
// whether the event was consumed by the editor.
func (e *Engine) HandlePointer(kind editor.PointerKind, x, y float64) (bool, error) {
	if e.focus {
		return false, nil
	}
	if e.session.Machine().CurrentMode() == editor.ModeFreeCam {
		e.orbit(kind, x, y)
		return true, nil
	}
	e.dirty = true
	return e.router.Pointer(editor.PointerEvent{
		Kind:   kind,
		Ray:    e.camera.Ray(x, y),
		Screen: mgl64.Vec2{x, y},
	})
}

func (e *Engine) orbit(kind editor.PointerKind, x, y float64) {
	switch kind {
	case editor.PointerPress:
		e.orbiting = true
	case editor.PointerMove:
		if !e.orbiting {
			break
		}
		e.camera.Orbit((x-e.lastX)*orbitPerPixel, (y-e.lastY)*orbitPerPixel)
		e.dirty = true
	case editor.PointerRelease:
		e.orbiting = false
	}
	e.lastX, e.lastY = x, y
}

// HandleKey delivers a key event unless a widget has focus.
func (e *Engine) HandleKey(ev editor.KeyEvent) (bool, error) {
	handled, err := e.router.Key(ev)
	if handled {
		e.dirty = true
	}
	return handled, err
}

// SetFocus records whether a UI widget currently owns input.
func (e *Engine) SetFocus(focused bool) {
	e.focus = focused
	if focused {
		e.orbiting = false
	}
}

func (e *Engine) SetRoadEditing(enabled bool) {
	e.session.Machine().SetRoadEditingEnabled(enabled)
}

func (e *Engine) SetTerrainParams(p editor.TerrainParams) {
	e.session.Machine().SetTerrainParams(p)
}

func (e *Engine) Resize(width, height float64) {
	e.camera.Resize(width, height)
	e.dirty = true
}

func (e *Engine) Zoom(factor float64) {
	e.camera.Zoom(factor)
	e.dirty = true
}

// TakeHostActions returns and clears the actions the session handed back
// to the host (open, save, play-test, settings).
func (e *Engine) TakeHostActions() []editor.Action {
	out := e.hostActions
	e.hostActions = nil
	return out
}

// --- Queries (frontend ← backend) ---

func (e *Engine) Session() *editor.Session { return e.session }
func (e *Engine) Camera() Camera           { return e.camera }

// Scene returns the current scene, rebuilding it if anything changed
// since the last call.
func (e *Engine) Scene() *Scene {
	rev := e.session.Path().Revision()
	if e.scene != nil && !e.dirty && rev == e.sceneRev {
		return e.scene
	}

	points := e.session.Path().Points()
	dragging := -1
	if p, ok := e.session.DragPreview(); ok && p.Index >= 0 && p.Index < len(points) {
		points[p.Index].Position = p.Position
		points[p.Index].Meta = p.Meta
		dragging = p.Index
	}
	m := e.session.Machine()
	e.scene = BuildScene(sceneInput{
		eval:        e.session.PreviewEvaluator(),
		points:      points,
		selected:    e.session.Selected(),
		dragging:    dragging,
		camera:      e.camera,
		gridOn:      m.GridOn(),
		gridDensity: m.GridDensity(),
		samples:     e.samples,
	})
	e.sceneRev = rev
	e.dirty = false
	return e.scene
}

// Render returns the draw commands for the current state as JSON.
func (e *Engine) Render() string {
	result, err := DrawCommandsToJSON(CompileDrawCommands(e.Scene()))
	if err != nil {
		e.log.Error("failed to encode draw commands", "error", err)
	}
	return result
}

// HitTest returns the id of the control point under (x, y), "road", or "".
func (e *Engine) HitTest(x, y float64) string {
	return HitTest(e.Scene(), x, y)
}

// GetSelectionBounds returns the screen box of the selected point as JSON.
func (e *Engine) GetSelectionBounds() string {
	var bounds Rect
	if i := e.session.Selected(); i >= 0 {
		if cp, err := e.session.Path().Get(i); err == nil {
			bounds = GetSelectionBounds(e.Scene(), []string{cp.ID})
		}
	}
	data, _ := json.Marshal(bounds)
	return string(data)
}

// State is the editor status shown by toolbars and panels.
type State struct {
	Mode        string               `json:"mode"`
	RoadEditing bool                 `json:"roadEditing"`
	Grid        bool                 `json:"grid"`
	GridDensity int                  `json:"gridDensity"`
	Terrain     editor.TerrainParams `json:"terrain"`
	Selected    int                  `json:"selected"`
	SelectedID  string               `json:"selectedId,omitempty"`
	Points      int                  `json:"points"`
	Closed      bool                 `json:"closed"`
	Revision    uint64               `json:"revision"`
	CanUndo     bool                 `json:"canUndo"`
	CanRedo     bool                 `json:"canRedo"`
	UndoName    string               `json:"undoName,omitempty"`
	RedoName    string               `json:"redoName,omitempty"`
	Dragging    bool                 `json:"dragging"`
	Focus       bool                 `json:"focus"`
	Exited      bool                 `json:"exited"`
}

func (e *Engine) State() State {
	m := e.session.Machine()
	h := e.session.History()
	path := e.session.Path()
	_, dragging := e.session.DragPreview()
	st := State{
		Mode:        m.CurrentMode().String(),
		RoadEditing: m.RoadEditingEnabled(),
		Grid:        m.GridOn(),
		GridDensity: m.GridDensity(),
		Terrain:     m.TerrainParams(),
		Selected:    e.session.Selected(),
		Points:      path.Size(),
		Closed:      path.IsClosed(),
		Revision:    path.Revision(),
		CanUndo:     h.CanUndo(),
		CanRedo:     h.CanRedo(),
		UndoName:    h.UndoName(),
		RedoName:    h.RedoName(),
		Dragging:    dragging,
		Focus:       e.focus,
		Exited:      e.session.Exited(),
	}
	if cp, err := path.Get(st.Selected); err == nil {
		st.SelectedID = cp.ID
	}
	return st
}

// GetState returns State as JSON.
func (e *Engine) GetState() string {
	data, _ := json.Marshal(e.State())
	return string(data)
}

// Document returns the track as a document, bumping its version when the
// path changed since the last call. A "new" action replaces the path
// object, which also counts as a change.
func (e *Engine) Document() *document.TrackDocument {
	if e.doc == nil {
		e.doc = document.NewEmptyDocument(typeid.NewTrackID(), "Untitled")
	}
	path := e.session.Path()
	if path != e.docPath || path.Revision() != e.docRev {
		e.doc.SetPath(path)
		e.docPath = path
		e.docRev = path.Revision()
	}
	return e.doc
}

// SetDocumentID renames the track the engine edits, keeping its contents.
func (e *Engine) SetDocumentID(id, name string) {
	doc := e.Document()
	doc.ID = id
	if name != "" {
		doc.Name = name
	}
}

// GetDocument returns the full document as JSON.
func (e *Engine) GetDocument() string {
	data, err := e.Document().JSON()
	if err != nil {
		return "{}"
	}
	return string(data)
}
