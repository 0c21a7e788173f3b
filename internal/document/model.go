package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/trackforge/editor/internal/track"
)

var ErrInvalidDocument = errors.New("invalid track document")

// TrackDocument is the persisted form of a track. Snapshots, websocket
// loads and the wasm bridge all exchange this shape.
type TrackDocument struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Closed    bool                 `json:"closed"`
	Points    []track.ControlPoint `json:"points"`
	Version   int                  `json:"version"`
	CreatedAt string               `json:"createdAt"`
	UpdatedAt string               `json:"updatedAt"`
}

// NewEmptyDocument creates an empty open track.
func NewEmptyDocument(trackID, name string) *TrackDocument {
	now := time.Now().UTC().Format(time.RFC3339)
	return &TrackDocument{
		ID:        trackID,
		Name:      name,
		Points:    []track.ControlPoint{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Parse decodes and validates a document.
func Parse(data []byte) (*TrackDocument, error) {
	var doc TrackDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks that point ids are present and unique and that every
// position and width is a finite number.
func (d *TrackDocument) Validate() error {
	seen := make(map[string]struct{}, len(d.Points))
	for i, cp := range d.Points {
		if cp.ID == "" {
			return fmt.Errorf("%w: point %d has no id", ErrInvalidDocument, i)
		}
		if _, dup := seen[cp.ID]; dup {
			return fmt.Errorf("%w: duplicate point id %q", ErrInvalidDocument, cp.ID)
		}
		seen[cp.ID] = struct{}{}
		for _, v := range cp.Position {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: point %q has a non-finite position", ErrInvalidDocument, cp.ID)
			}
		}
		if cp.Meta.Width < 0 || math.IsNaN(cp.Meta.Width) {
			return fmt.Errorf("%w: point %q has width %v", ErrInvalidDocument, cp.ID, cp.Meta.Width)
		}
	}
	return nil
}

// Path builds a fresh editable path from the document.
func (d *TrackDocument) Path() *track.Path {
	return track.NewPathFrom(d.Points, d.Closed)
}

// SetPath replaces the document's points with the current contents of p and
// bumps the version.
func (d *TrackDocument) SetPath(p track.Reader) {
	d.Points = p.Points()
	d.Closed = p.IsClosed()
	d.Version++
	d.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

func (d *TrackDocument) JSON() ([]byte, error) {
	return json.Marshal(d)
}
