package engine

import (
	"encoding/json"
)

// DrawCommand is a single drawing operation for the frontend, executed on a
// Canvas2D context in the order received.
type DrawCommand struct {
	Op          string        `json:"op"`               // "path"
	NodeID      string        `json:"nodeId,omitempty"` // For hit correlation
	Kind        string        `json:"kind,omitempty"`
	Path        []PathCommand `json:"path,omitempty"`
	Fill        string        `json:"fill,omitempty"`
	Stroke      string        `json:"stroke,omitempty"`
	StrokeWidth float64       `json:"strokeWidth,omitempty"`
	Opacity     float64       `json:"opacity,omitempty"`
}

// CompileDrawCommands flattens a scene into its draw command buffer.
func CompileDrawCommands(sc *Scene) []DrawCommand {
	if sc == nil {
		return nil
	}
	commands := make([]DrawCommand, 0, len(sc.Nodes))
	for _, n := range sc.Nodes {
		if len(n.Path) == 0 {
			continue
		}
		commands = append(commands, DrawCommand{
			Op:          "path",
			NodeID:      n.ID,
			Kind:        n.Kind,
			Path:        n.Path,
			Fill:        n.Fill,
			Stroke:      n.Stroke,
			StrokeWidth: n.StrokeWidth,
			Opacity:     n.Opacity,
		})
	}
	return commands
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTest returns the id of the topmost control point at (x, y), "road" if
// the pixel falls inside the road bounds, or "".
func HitTest(sc *Scene, x, y float64) string {
	if sc == nil {
		return ""
	}
	for i := len(sc.Nodes) - 1; i >= 0; i-- {
		n := sc.Nodes[i]
		if n.Kind == KindPoint && n.Bounds.Contains(x, y) {
			return n.ID
		}
	}
	if road, ok := sc.NodesByID[KindRoad]; ok && road.Bounds.Contains(x, y) {
		return road.ID
	}
	return ""
}

// GetSelectionBounds returns the screen box of the given point ids.
func GetSelectionBounds(sc *Scene, ids []string) Rect {
	var result Rect
	if sc == nil {
		return result
	}
	for _, id := range ids {
		if n, ok := sc.NodesByID[id]; ok {
			result = result.Union(n.Bounds)
		}
	}
	return result
}
