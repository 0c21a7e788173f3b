package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/trackforge/editor/internal/document"
	"github.com/trackforge/editor/internal/editor"
	"github.com/trackforge/editor/internal/engine"
)

var ErrUnknownMessage = errors.New("unknown message type")

// TrackState holds the authoritative editing state for a room. Every
// client in the room edits the same session; messages are applied one at
// a time in arrival order.
type TrackState struct {
	mu        sync.Mutex
	engine    *engine.Engine
	serverSeq int64
	// savedVersion is the document version last known to be stored; -1
	// when the track came from a client and was never saved.
	savedVersion int
}

// NewTrackState creates a state editing doc, which is taken to be stored.
func NewTrackState(doc *document.TrackDocument, opts engine.Options) *TrackState {
	e := engine.NewEngine(opts)
	e.SetDocument(doc)
	return &TrackState{engine: e, savedVersion: doc.Version}
}

// Result is the outcome of one applied message.
type Result struct {
	Seq int64
	// Changed is false when the message was dropped (pointer or key input
	// while the sender has a widget focused).
	Changed     bool
	HostActions []editor.Action
}

// Apply applies a client message. focused is the sender's focus flag.
func (ts *TrackState) Apply(msg *Message, focused bool) (Result, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.engine.SetFocus(focused)
	changed, err := ts.applyLocked(msg)
	res := Result{Changed: changed, HostActions: ts.engine.TakeHostActions()}
	if err != nil {
		return res, err
	}
	if changed {
		ts.serverSeq++
	}
	res.Seq = ts.serverSeq
	return res, nil
}

func (ts *TrackState) applyLocked(msg *Message) (bool, error) {
	e := ts.engine
	switch msg.Type {
	case TypeAction:
		var p ActionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid action: %w", err)
		}
		return true, e.HandleAction(p.Name)
	case TypePointer:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid pointer event: %w", err)
		}
		kind, ok := pointerKind(p.Kind)
		if !ok {
			return false, fmt.Errorf("invalid pointer kind %q", p.Kind)
		}
		return e.HandlePointer(kind, p.X, p.Y)
	case TypeKey:
		var p KeyPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid key event: %w", err)
		}
		return e.HandleKey(p)
	case TypeView:
		var p ViewPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid view: %w", err)
		}
		if p.Width > 0 && p.Height > 0 {
			e.Resize(p.Width, p.Height)
		}
		if p.Zoom > 0 {
			e.Zoom(p.Zoom)
		}
		return true, nil
	case TypeRoadEditing:
		var p RoadEditingPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid road editing flag: %w", err)
		}
		e.SetRoadEditing(p.Enabled)
		return true, nil
	case TypeTerrain:
		var p TerrainPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid terrain params: %w", err)
		}
		e.SetTerrainParams(p)
		return true, nil
	case TypeDocLoad:
		if err := e.LoadDocument(string(msg.Payload)); err != nil {
			return false, err
		}
		ts.savedVersion = -1
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownMessage, msg.Type)
	}
}

// Document returns a copy of the current track document.
func (ts *TrackState) Document() *document.TrackDocument {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	doc := *ts.engine.Document()
	doc.Points = append(doc.Points[:0:0], doc.Points...)
	return &doc
}

// Replace swaps the edited track for doc, as when reopening a snapshot.
func (ts *TrackState) Replace(doc *document.TrackDocument) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.engine.SetDocument(doc)
	ts.savedVersion = doc.Version
	ts.serverSeq++
}

// MarkSaved records that version is stored.
func (ts *TrackState) MarkSaved(version int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.savedVersion = version
}

// Unsaved reports whether the track changed since it was last stored.
func (ts *TrackState) Unsaved() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.engine.Document().Version != ts.savedVersion
}

// Frame renders the current state for broadcast.
func (ts *TrackState) Frame() *Message {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	msg := newMessage(TypeFrame, FramePayload{
		Commands: json.RawMessage(ts.engine.Render()),
		State:    ts.engine.State(),
	})
	msg.Seq = ts.serverSeq
	return msg
}

func (ts *TrackState) State() engine.State {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.engine.State()
}
