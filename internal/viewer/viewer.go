// Package viewer is the desktop front end: a raylib window that renders
// the track in 3D and feeds mouse, keyboard and toolbar input to an engine.
package viewer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/document"
	"github.com/trackforge/editor/internal/editor"
	"github.com/trackforge/editor/internal/engine"
	"github.com/trackforge/editor/internal/ui"
)

const (
	toolbarX      = 10
	toolbarY      = 10
	buttonW       = 96
	buttonH       = 24
	buttonGap     = 4
	nameMaxLength = 64
	zoomPerNotch  = 0.1
	pointRadius   = 0.8
)

var (
	background    = rl.NewColor(26, 26, 46, 255)
	buttonColor   = rl.NewColor(45, 45, 68, 255)
	activeColor   = rl.NewColor(233, 69, 96, 255)
	textColor     = rl.NewColor(230, 230, 240, 255)
	roadColor     = rl.NewColor(58, 58, 72, 255)
	edgeColor     = rl.NewColor(154, 154, 176, 255)
	centerColor   = rl.NewColor(245, 209, 66, 255)
	normalColor   = rl.NewColor(83, 215, 96, 255)
	pointColor    = rl.NewColor(233, 69, 96, 255)
	selectedColor = rl.White
)

// Options configure the window and where documents are saved.
type Options struct {
	Width   int
	Height  int
	Title   string
	File    string
	Samples int
}

// Viewer couples a window to an engine. The track name field is the
// widget that can take focus away from the viewport.
type Viewer struct {
	eng     *engine.Engine
	opts    Options
	toolbar *ui.Toolbar
	name    *ui.TextField
	log     *slog.Logger
	status  string
}

func New(eng *engine.Engine, opts Options, log *slog.Logger) *Viewer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.Samples <= 0 {
		opts.Samples = 16
	}
	tb := ui.NewToolbar(toolbarX, toolbarY, buttonW, buttonH, buttonGap)
	b := tb.Bounds()
	name := ui.NewTextField(ui.Rect{X: b.X, Y: b.Y + b.H + buttonGap, W: 3*buttonW + 2*buttonGap, H: buttonH},
		nameMaxLength, eng.Document().Name)
	return &Viewer{eng: eng, opts: opts, toolbar: tb, name: name, log: log}
}

// Run opens the window and blocks until it is closed or the editor exits.
func (v *Viewer) Run() {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(v.opts.Width), int32(v.opts.Height), v.opts.Title)
	defer rl.CloseWindow()

	// Escape cancels drags and edits; the window closes via its button or exit.
	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(60)
	v.eng.Resize(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))

	for !rl.WindowShouldClose() && !v.eng.Session().Exited() {
		v.update()

		rl.BeginDrawing()
		rl.ClearBackground(background)
		v.draw()
		rl.EndDrawing()
	}
	v.log.Info("viewer closed")
}

func (v *Viewer) update() {
	if rl.IsWindowResized() {
		v.eng.Resize(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))
	}
	mouse := rl.GetMousePosition()
	x, y := float64(mouse.X), float64(mouse.Y)

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		v.click(x, y)
	} else if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		v.pointer(editor.PointerMove, x, y)
	} else if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		v.pointer(editor.PointerRelease, x, y)
	} else {
		v.pointer(editor.PointerMove, x, y)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 && !v.name.HasFocus() {
		v.eng.Zoom(1 - float64(wheel)*zoomPerNotch)
	}

	if v.name.HasFocus() {
		v.typeName()
	} else {
		v.keys()
	}
	v.hostActions()
}

// click routes a press to the toolbar, the name field or the viewport.
func (v *Viewer) click(x, y float64) {
	wasFocused := v.name.HasFocus()
	if v.name.Click(x, y) {
		v.eng.SetFocus(true)
		return
	}
	if wasFocused {
		v.commitName()
	}
	if a, ok := v.toolbar.At(x, y); ok {
		if err := v.eng.Dispatch(a); err != nil {
			v.fail("action "+a.String(), err)
		}
		return
	}
	if v.toolbar.Contains(x, y) {
		return
	}
	v.pointer(editor.PointerPress, x, y)
}

func (v *Viewer) pointer(kind editor.PointerKind, x, y float64) {
	if _, err := v.eng.HandlePointer(kind, x, y); err != nil {
		v.fail("pointer", err)
	}
}

func (v *Viewer) typeName() {
	for r := rl.GetCharPressed(); r > 0; r = rl.GetCharPressed() {
		v.name.Type(rune(r))
	}
	switch {
	case rl.IsKeyPressed(rl.KeyBackspace):
		v.name.Backspace()
	case rl.IsKeyPressed(rl.KeyEnter):
		v.commitName()
	case rl.IsKeyPressed(rl.KeyEscape):
		v.name.Cancel(v.eng.Document().Name)
		v.eng.SetFocus(false)
	}
}

func (v *Viewer) commitName() {
	name := v.name.Submit()
	v.eng.SetFocus(false)
	if name == "" {
		v.name.SetText(v.eng.Document().Name)
		return
	}
	doc := v.eng.Document()
	v.eng.SetDocumentID(doc.ID, name)
}

var keyMap = []struct {
	raylib int32
	key    editor.Key
}{
	{rl.KeyDelete, editor.KeyDelete},
	{rl.KeyEscape, editor.KeyEscape},
	{rl.KeyZ, editor.KeyZ},
	{rl.KeyY, editor.KeyY},
	{rl.KeyC, editor.KeyC},
}

func (v *Viewer) keys() {
	ctrl := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)
	shift := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
	for _, k := range keyMap {
		if !rl.IsKeyPressed(k.raylib) {
			continue
		}
		ev := editor.KeyEvent{Key: k.key, Pressed: true, Ctrl: ctrl, Shift: shift}
		if _, err := v.eng.HandleKey(ev); err != nil {
			v.fail("key", err)
		}
	}
}

func (v *Viewer) hostActions() {
	for _, a := range v.eng.TakeHostActions() {
		switch a {
		case editor.ActionSave, editor.ActionSaveAs:
			v.save()
		case editor.ActionOpen:
			v.open()
		default:
			v.status = a.String() + " is not available in the desktop editor"
			v.log.Info("host action ignored", "action", a.String())
		}
	}
}

func (v *Viewer) save() {
	data, err := v.eng.Document().JSON()
	if err == nil {
		err = os.WriteFile(v.opts.File, data, 0o644)
	}
	if err != nil {
		v.fail("save", err)
		return
	}
	v.status = "saved " + v.opts.File
	v.log.Info("track saved", "file", v.opts.File, "version", v.eng.Document().Version)
}

func (v *Viewer) open() {
	data, err := os.ReadFile(v.opts.File)
	if err != nil {
		v.fail("open", err)
		return
	}
	if err := v.eng.LoadDocument(string(data)); err != nil {
		v.fail("open", err)
		return
	}
	v.name.SetText(v.eng.Document().Name)
	v.status = "opened " + v.opts.File
	v.log.Info("track opened", "file", v.opts.File)
}

func (v *Viewer) fail(what string, err error) {
	if errors.Is(err, document.ErrInvalidDocument) {
		v.status = what + ": invalid track file"
	} else {
		v.status = fmt.Sprintf("%s: %v", what, err)
	}
	v.log.Warn("editor error", "op", what, "error", err)
}

func (v *Viewer) draw() {
	cam := camera3D(v.eng.Camera())
	rl.BeginMode3D(cam)
	v.drawWorld()
	rl.EndMode3D()
	v.drawToolbar()
}

func (v *Viewer) drawWorld() {
	s := v.eng.Session()
	m := s.Machine()
	if m.GridOn() {
		spacing := float32(40) / float32(m.GridDensity())
		rl.DrawGrid(int32(400/spacing), spacing)
	}

	eval := s.PreviewEvaluator()
	if frames, err := eval.Sample(v.opts.Samples); err == nil {
		for i := 1; i < len(frames); i++ {
			a, b := frames[i-1], frames[i]
			al, ar := a.Edges()
			bl, br := b.Edges()
			drawQuad(al, ar, br, bl, roadColor)
			rl.DrawLine3D(vec3(al), vec3(bl), edgeColor)
			rl.DrawLine3D(vec3(ar), vec3(br), edgeColor)
			rl.DrawLine3D(vec3(a.Position), vec3(b.Position), centerColor)
		}
		for i, f := range frames {
			if i%v.opts.Samples != 0 {
				continue
			}
			up, _ := f.Banked()
			rl.DrawLine3D(vec3(f.Position), vec3(f.Position.Add(up.Mul(3))), normalColor)
		}
	}

	points := s.Path().Points()
	preview, dragging := s.DragPreview()
	for i, cp := range points {
		pos := cp.Position
		if dragging && preview.Index == i {
			pos = preview.Position
		}
		c := pointColor
		if i == s.Selected() {
			c = selectedColor
		}
		rl.DrawSphere(vec3(pos), pointRadius, c)
	}
}

// drawQuad draws both windings so the ribbon is visible from below.
func drawQuad(a, b, c, d mgl64.Vec3, color rl.Color) {
	va, vb, vc, vd := vec3(a), vec3(b), vec3(c), vec3(d)
	rl.DrawTriangle3D(va, vb, vc, color)
	rl.DrawTriangle3D(va, vc, vd, color)
	rl.DrawTriangle3D(va, vc, vb, color)
	rl.DrawTriangle3D(va, vd, vc, color)
}

func (v *Viewer) drawToolbar() {
	st := v.eng.State()
	for _, b := range v.toolbar.Buttons {
		c := buttonColor
		if b.Action.String() == st.Mode || (b.Action == editor.ActionCam && st.Mode == editor.ModeFreeCam.String()) {
			c = activeColor
		}
		rl.DrawRectangleRec(rect(b.Rect), c)
		rl.DrawText(b.Label, int32(b.Rect.X)+6, int32(b.Rect.Y)+6, 12, textColor)
	}

	r := v.name.Rect
	border := edgeColor
	if v.name.HasFocus() {
		border = activeColor
	}
	rl.DrawRectangleRec(rect(r), buttonColor)
	rl.DrawRectangleLinesEx(rect(r), 1, border)
	rl.DrawText(v.name.Text(), int32(r.X)+6, int32(r.Y)+6, 12, textColor)

	info := fmt.Sprintf("mode %s  points %d  closed %v  grid %v/%d  road editing %v",
		st.Mode, st.Points, st.Closed, st.Grid, st.GridDensity, st.RoadEditing)
	if st.UndoName != "" {
		info += "  undo " + st.UndoName
	}
	h := int32(rl.GetScreenHeight())
	rl.DrawText(info, toolbarX, h-40, 14, textColor)
	if v.status != "" {
		rl.DrawText(v.status, toolbarX, h-20, 14, centerColor)
	}
}

func camera3D(c engine.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(c.Eye()),
		Target:     vec3(c.Target),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       float32(mgl64.RadToDeg(c.FovY)),
		Projection: rl.CameraPerspective,
	}
}

func vec3(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X()), float32(v.Y()), float32(v.Z()))
}

func rect(r ui.Rect) rl.Rectangle {
	return rl.NewRectangle(float32(r.X), float32(r.Y), float32(r.W), float32(r.H))
}
