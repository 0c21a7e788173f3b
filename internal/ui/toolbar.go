// Package ui holds the desktop editor's widget state: toolbar layout and
// the track name field. Nothing here draws; the viewer renders it.
package ui

import (
	"github.com/trackforge/editor/internal/editor"
)

// Rect is a screen rectangle in pixels.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Button is one toolbar entry.
type Button struct {
	Label  string
	Action editor.Action
	Rect   Rect
}

var (
	fileRow = []editor.Action{
		editor.ActionNew, editor.ActionOpen, editor.ActionSave, editor.ActionSaveAs,
		editor.ActionUndo, editor.ActionRedo, editor.ActionTry, editor.ActionSettings, editor.ActionExit,
	}
	toolRow = []editor.Action{
		editor.ActionSelect, editor.ActionMove, editor.ActionRotate, editor.ActionScale,
		editor.ActionDelete, editor.ActionCam,
		editor.ActionGridOnOff, editor.ActionGridInc, editor.ActionGridDec,
	}
	terrainRow = []editor.Action{
		editor.ActionTerrainModify, editor.ActionTerrainCut, editor.ActionTerrainDraw,
	}
)

// Toolbar is a fixed grid of buttons along the top of the window.
type Toolbar struct {
	Buttons []Button
	bounds  Rect
}

// NewToolbar lays out the file, tool and terrain rows starting at (x, y).
func NewToolbar(x, y, buttonW, buttonH, gap float64) *Toolbar {
	tb := &Toolbar{}
	for row, actions := range [][]editor.Action{fileRow, toolRow, terrainRow} {
		ry := y + float64(row)*(buttonH+gap)
		for col, a := range actions {
			r := Rect{X: x + float64(col)*(buttonW+gap), Y: ry, W: buttonW, H: buttonH}
			tb.Buttons = append(tb.Buttons, Button{Label: a.String(), Action: a, Rect: r})
			tb.bounds = union(tb.bounds, r)
		}
	}
	return tb
}

// At returns the action of the button under (x, y).
func (tb *Toolbar) At(x, y float64) (editor.Action, bool) {
	for _, b := range tb.Buttons {
		if b.Rect.Contains(x, y) {
			return b.Action, true
		}
	}
	return 0, false
}

// Contains reports whether (x, y) is anywhere over the toolbar, gaps
// included, so clicks between buttons do not reach the viewport.
func (tb *Toolbar) Contains(x, y float64) bool {
	return tb.bounds.Contains(x, y)
}

func (tb *Toolbar) Bounds() Rect { return tb.bounds }

func union(a, b Rect) Rect {
	if a.W == 0 && a.H == 0 {
		return b
	}
	x0, y0 := min(a.X, b.X), min(a.Y, b.Y)
	x1, y1 := max(a.X+a.W, b.X+b.W), max(a.Y+a.H, b.Y+b.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
