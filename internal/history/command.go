package history

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/track"
)

// Command is a reversible mutation of a track.Path. Revert must restore the
// exact state that Apply started from.
type Command interface {
	Name() string
	Apply(p *track.Path) error
	Revert(p *track.Path) error
}

// AddPoint inserts Point at Index.
type AddPoint struct {
	Index int
	Point track.ControlPoint
}

func (c *AddPoint) Name() string { return "add point" }

func (c *AddPoint) Apply(p *track.Path) error {
	return p.Insert(c.Index, c.Point)
}

func (c *AddPoint) Revert(p *track.Path) error {
	_, err := p.RemoveAt(c.Index)
	return err
}

// RemovePoint deletes the point at Index. The removed point is captured on
// Apply so Revert can put it back unchanged.
type RemovePoint struct {
	Index int

	removed track.ControlPoint
}

func (c *RemovePoint) Name() string { return "remove point" }

func (c *RemovePoint) Apply(p *track.Path) error {
	removed, err := p.RemoveAt(c.Index)
	if err != nil {
		return err
	}
	c.removed = removed
	return nil
}

func (c *RemovePoint) Revert(p *track.Path) error {
	return p.Insert(c.Index, c.removed)
}

// Removed returns the point captured by the last Apply.
func (c *RemovePoint) Removed() track.ControlPoint { return c.removed }

// MovePoint sets the position of the point at Index to New. Old is
// overwritten with the position found on Apply.
type MovePoint struct {
	Index int
	Old   mgl64.Vec3
	New   mgl64.Vec3
}

func (c *MovePoint) Name() string { return "move point" }

func (c *MovePoint) Apply(p *track.Path) error {
	cp, err := p.Get(c.Index)
	if err != nil {
		return err
	}
	c.Old = cp.Position
	return p.SetPosition(c.Index, c.New)
}

func (c *MovePoint) Revert(p *track.Path) error {
	return p.SetPosition(c.Index, c.Old)
}

// SetMeta replaces the shaping data of the point at Index. Old is
// overwritten with the data found on Apply.
type SetMeta struct {
	Index int
	Old   track.Meta
	New   track.Meta
}

func (c *SetMeta) Name() string { return "edit point" }

func (c *SetMeta) Apply(p *track.Path) error {
	cp, err := p.Get(c.Index)
	if err != nil {
		return err
	}
	c.Old = cp.Meta.Clone()
	return p.SetMeta(c.Index, c.New)
}

func (c *SetMeta) Revert(p *track.Path) error {
	return p.SetMeta(c.Index, c.Old)
}

// SetClosed opens or closes the loop. The previous flag is captured on Apply.
type SetClosed struct {
	Closed bool

	previous bool
}

func (c *SetClosed) Name() string {
	if c.Closed {
		return "close loop"
	}
	return "open loop"
}

func (c *SetClosed) Apply(p *track.Path) error {
	c.previous = p.IsClosed()
	p.SetClosed(c.Closed)
	return nil
}

func (c *SetClosed) Revert(p *track.Path) error {
	p.SetClosed(c.previous)
	return nil
}
