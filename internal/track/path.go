// Package track holds the ordered control points that define a race-track
// centerline. A Path is the single source of truth for track topology; it
// performs no recomputation of its own and consumers re-evaluate lazily.
package track

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/typeid"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// Meta is optional per-point shaping data.
type Meta struct {
	Width           float64     `json:"width,omitempty"`
	Bank            float64     `json:"bank,omitempty"` // radians, positive rolls right
	TangentOverride *mgl64.Vec3 `json:"tangentOverride,omitempty"`
}

// ControlPoint is a user-placed anchor on the centerline.
type ControlPoint struct {
	ID       string     `json:"id"`
	Position mgl64.Vec3 `json:"position"`
	Meta     Meta       `json:"meta"`
}

// NewPoint creates a control point with a fresh id and default width.
func NewPoint(pos mgl64.Vec3) ControlPoint {
	return ControlPoint{
		ID:       typeid.NewPointID(),
		Position: pos,
		Meta:     Meta{Width: DefaultWidth},
	}
}

// DefaultWidth is the road width given to newly placed points.
const DefaultWidth = 8.0

// Reader is the read-only view of a path handed to evaluators and renderers.
type Reader interface {
	Size() int
	Get(index int) (ControlPoint, error)
	IsClosed() bool
	Points() []ControlPoint
	Revision() uint64
}

// Path is an ordered, mutable sequence of control points plus a closed flag.
type Path struct {
	points   []ControlPoint
	closed   bool
	revision uint64
}

// NewPath creates an empty open path.
func NewPath() *Path {
	return &Path{}
}

// NewPathFrom creates a path holding copies of points.
func NewPathFrom(points []ControlPoint, closed bool) *Path {
	p := &Path{closed: closed}
	p.points = make([]ControlPoint, len(points))
	for i, cp := range points {
		p.points[i] = cp.Clone()
	}
	return p
}

// Insert places point at index, shifting the tail. index may equal Size().
func (p *Path) Insert(index int, point ControlPoint) error {
	if index < 0 || index > len(p.points) {
		return rangeError(index, len(p.points)+1)
	}
	p.points = append(p.points, ControlPoint{})
	copy(p.points[index+1:], p.points[index:])
	p.points[index] = point.Clone()
	p.revision++
	return nil
}

// RemoveAt deletes and returns the point at index.
func (p *Path) RemoveAt(index int) (ControlPoint, error) {
	if err := p.check(index); err != nil {
		return ControlPoint{}, err
	}
	removed := p.points[index]
	p.points = append(p.points[:index], p.points[index+1:]...)
	p.revision++
	return removed, nil
}

func (p *Path) SetPosition(index int, pos mgl64.Vec3) error {
	if err := p.check(index); err != nil {
		return err
	}
	p.points[index].Position = pos
	p.revision++
	return nil
}

func (p *Path) SetMeta(index int, meta Meta) error {
	if err := p.check(index); err != nil {
		return err
	}
	p.points[index].Meta = meta.Clone()
	p.revision++
	return nil
}

func (p *Path) SetClosed(closed bool) {
	if p.closed != closed {
		p.closed = closed
		p.revision++
	}
}

func (p *Path) Get(index int) (ControlPoint, error) {
	if err := p.check(index); err != nil {
		return ControlPoint{}, err
	}
	return p.points[index].Clone(), nil
}

func (p *Path) Size() int      { return len(p.points) }
func (p *Path) IsClosed() bool { return p.closed }

// Revision increments on every mutation. Renderers compare it between frames
// to decide whether a new evaluator snapshot is needed.
func (p *Path) Revision() uint64 { return p.revision }

// Points returns a copy of the sequence. Use it once per frame so that every
// consumer in that frame sees the same state.
func (p *Path) Points() []ControlPoint {
	out := make([]ControlPoint, len(p.points))
	for i, cp := range p.points {
		out[i] = cp.Clone()
	}
	return out
}

// IndexOf returns the index of the point with the given id, or -1.
func (p *Path) IndexOf(id string) int {
	for i, cp := range p.points {
		if cp.ID == id {
			return i
		}
	}
	return -1
}

// Equal reports whether two paths hold the same points in the same order
// with the same closed flag. Revisions are ignored.
func (p *Path) Equal(other *Path) bool {
	if p.closed != other.closed || len(p.points) != len(other.points) {
		return false
	}
	for i := range p.points {
		if !p.points[i].Equal(other.points[i]) {
			return false
		}
	}
	return true
}

func (p *Path) check(index int) error {
	if index < 0 || index >= len(p.points) {
		return rangeError(index, len(p.points))
	}
	return nil
}

func rangeError(index, limit int) error {
	return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, limit)
}

// Clone returns a deep copy of the point.
func (cp ControlPoint) Clone() ControlPoint {
	cp.Meta = cp.Meta.Clone()
	return cp
}

// Equal compares points field by field, including the tangent override value.
func (cp ControlPoint) Equal(other ControlPoint) bool {
	if cp.ID != other.ID || cp.Position != other.Position {
		return false
	}
	return cp.Meta.Equal(other.Meta)
}

func (m Meta) Clone() Meta {
	if m.TangentOverride != nil {
		v := *m.TangentOverride
		m.TangentOverride = &v
	}
	return m
}

func (m Meta) Equal(other Meta) bool {
	if m.Width != other.Width || m.Bank != other.Bank {
		return false
	}
	switch {
	case m.TangentOverride == nil && other.TangentOverride == nil:
		return true
	case m.TangentOverride == nil || other.TangentOverride == nil:
		return false
	default:
		return *m.TangentOverride == *other.TangentOverride
	}
}
