//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/trackforge/editor/internal/editor"
	"github.com/trackforge/editor/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(engine.Options{})

	trackEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	trackEngine.Set("loadDocument", js.FuncOf(loadDocument))
	trackEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	trackEngine.Set("action", js.FuncOf(action))
	trackEngine.Set("pointer", js.FuncOf(pointer))
	trackEngine.Set("key", js.FuncOf(key))
	trackEngine.Set("setFocus", js.FuncOf(setFocus))
	trackEngine.Set("setRoadEditing", js.FuncOf(setRoadEditing))
	trackEngine.Set("setTerrainParams", js.FuncOf(setTerrainParams))
	trackEngine.Set("resize", js.FuncOf(resize))
	trackEngine.Set("zoom", js.FuncOf(zoom))
	trackEngine.Set("takeHostActions", js.FuncOf(takeHostActions))

	// --- Queries (frontend ← backend) ---
	trackEngine.Set("render", js.FuncOf(render))
	trackEngine.Set("hitTest", js.FuncOf(hitTest))
	trackEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	trackEngine.Set("getState", js.FuncOf(getState))
	trackEngine.Set("getDocument", js.FuncOf(getDocument))

	js.Global().Set("trackEngine", trackEngine)
	js.Global().Set("trackWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) any {
	if err != nil {
		return js.ValueOf(map[string]any{"error": err.Error()})
	}
	return js.ValueOf(map[string]any{"ok": true})
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing document JSON"})
	}
	return result(eng.LoadDocument(args[0].String()))
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	trackID := "track_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		trackID = args[0].String()
	}
	eng.LoadSampleDocument(trackID)
	return result(nil)
}

func action(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing action name"})
	}
	return result(eng.HandleAction(args[0].String()))
}

// pointer(kind, x, y) with kind "press", "move" or "release".
func pointer(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	var kind editor.PointerKind
	switch args[0].String() {
	case "press":
		kind = editor.PointerPress
	case "move":
		kind = editor.PointerMove
	case "release":
		kind = editor.PointerRelease
	default:
		return js.ValueOf(false)
	}
	handled, err := eng.HandlePointer(kind, args[1].Float(), args[2].Float())
	if err != nil {
		return js.ValueOf(map[string]any{"error": err.Error()})
	}
	return js.ValueOf(handled)
}

// key(json) takes a serialized editor.KeyEvent.
func key(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	var ev editor.KeyEvent
	if err := json.Unmarshal([]byte(args[0].String()), &ev); err != nil {
		return js.ValueOf(map[string]any{"error": err.Error()})
	}
	handled, err := eng.HandleKey(ev)
	if err != nil {
		return js.ValueOf(map[string]any{"error": err.Error()})
	}
	return js.ValueOf(handled)
}

func setFocus(this js.Value, args []js.Value) any {
	eng.SetFocus(len(args) > 0 && args[0].Truthy())
	return nil
}

func setRoadEditing(this js.Value, args []js.Value) any {
	eng.SetRoadEditing(len(args) > 0 && args[0].Truthy())
	return nil
}

func setTerrainParams(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	var p editor.TerrainParams
	if err := json.Unmarshal([]byte(args[0].String()), &p); err != nil {
		return js.ValueOf(map[string]any{"error": err.Error()})
	}
	eng.SetTerrainParams(p)
	return nil
}

func resize(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return nil
	}
	eng.Resize(args[0].Float(), args[1].Float())
	return nil
}

func zoom(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	eng.Zoom(args[0].Float())
	return nil
}

func takeHostActions(this js.Value, args []js.Value) any {
	actions := eng.TakeHostActions()
	names := make([]any, len(actions))
	for i, a := range actions {
		names[i] = a.String()
	}
	return js.ValueOf(names)
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getState(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetState())
}

func getDocument(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetDocument())
}
