package collab

import (
	"encoding/json"

	"github.com/trackforge/editor/internal/editor"
	"github.com/trackforge/editor/internal/engine"
)

type Message struct {
	Type     string          `json:"type"`
	TrackID  string          `json:"trackId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client → server
	TypeAction      = "input.action"
	TypePointer     = "input.pointer"
	TypeKey         = "input.key"
	TypeFocus       = "input.focus"
	TypeView        = "view.update"
	TypeRoadEditing = "editor.roadEditing"
	TypeTerrain     = "editor.terrain"
	TypeDocLoad     = "doc.load"

	// Server → client
	TypeWelcome  = "welcome"
	TypeFrame    = "frame"
	TypeDocSaved = "doc.saved"
	TypeError    = "error"

	// Presence
	TypePresenceState = "presence.state"
	TypePresenceJoin  = "presence.join"
	TypePresenceLeave = "presence.leave"
)

type ActionPayload struct {
	Name string `json:"name"`
}

// PointerPayload is a pointer event in viewport pixels.
type PointerPayload struct {
	Kind string  `json:"kind"` // "press", "move" or "release"
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type KeyPayload = editor.KeyEvent

type FocusPayload struct {
	Focused bool `json:"focused"`
}

// ViewPayload resizes the shared viewport and optionally zooms it.
type ViewPayload struct {
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Zoom   float64 `json:"zoom,omitempty"`
}

type RoadEditingPayload struct {
	Enabled bool `json:"enabled"`
}

type TerrainPayload = editor.TerrainParams

type WelcomePayload struct {
	ClientID string       `json:"clientId"`
	TrackID  string       `json:"trackId"`
	State    engine.State `json:"state"`
}

// FramePayload carries the draw commands and editor state after a change.
type FramePayload struct {
	Commands json.RawMessage `json:"commands"`
	State    engine.State    `json:"state"`
}

type DocSavedPayload struct {
	SnapshotID string `json:"snapshotId"`
	Version    int    `json:"version"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PresenceStatePayload struct {
	Presences map[string]*Presence `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

// newMessage marshals payload into a message of type typ.
func newMessage(typ string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		return errorMessage(err)
	}
	return &Message{Type: typ, Payload: data}
}

func errorMessage(err error) *Message {
	data, _ := json.Marshal(ErrorPayload{Message: err.Error()})
	return &Message{Type: TypeError, Payload: data}
}

func pointerKind(kind string) (editor.PointerKind, bool) {
	switch kind {
	case "press":
		return editor.PointerPress, true
	case "move":
		return editor.PointerMove, true
	case "release":
		return editor.PointerRelease, true
	}
	return 0, false
}
