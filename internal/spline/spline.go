// Package spline evaluates a smooth centerline through the control points of
// a track.Path.
//
// An Evaluator is built from a single read of the path and is immutable
// afterwards, so position and normal queries are pure and may be issued any
// number of times per frame by renderers, hit-testers and previews.
//
// The curve parameter t is segmentIndex + fraction. Each segment is a cubic
// Hermite blend between two control points whose tangents come from the
// configured TangentPolicy. Normals are carried along the curve by a
// rotation-minimizing frame so they never flip at segment boundaries, even
// where the curve runs close to vertical.
package spline

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/track"
)

// ErrDegenerateSegment is returned when the path has fewer than two points.
// Callers should skip drawing for the frame.
var ErrDegenerateSegment = errors.New("degenerate segment: path needs at least 2 points")

// WorldUp is the fixed reference used to build the first frame.
var WorldUp = mgl64.Vec3{0, 1, 0}

const (
	defaultFrameSteps = 16
	epsilon           = 1e-12
)

// Evaluator is an immutable curve built from one snapshot of a path.
type Evaluator struct {
	points []track.ControlPoint
	closed bool
	policy TangentPolicy
	steps  int

	// ups[s] is the transported up vector at the start of segment s;
	// ups[segments] is the up vector at the end of the last segment.
	ups []mgl64.Vec3
	// twist is the angle that closes the frame around a loop. It is spread
	// evenly over the whole loop so normals stay periodic.
	twist float64
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithPolicy selects the tangent estimation policy.
func WithPolicy(p TangentPolicy) Option {
	return func(e *Evaluator) { e.policy = p }
}

// WithFrameSteps sets how many sub-steps per segment the frame propagation
// uses. Values below 1 are ignored.
func WithFrameSteps(n int) Option {
	return func(e *Evaluator) {
		if n >= 1 {
			e.steps = n
		}
	}
}

// New snapshots path and precomputes the frame at every segment start.
func New(path track.Reader, opts ...Option) *Evaluator {
	return FromPoints(path.Points(), path.IsClosed(), opts...)
}

// FromPoints builds an evaluator over an explicit point list.
func FromPoints(points []track.ControlPoint, closed bool, opts ...Option) *Evaluator {
	e := &Evaluator{
		points: points,
		closed: closed,
		policy: CatmullRom,
		steps:  defaultFrameSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(points) >= 2 {
		e.buildFrames()
	}
	return e
}

// Size returns the number of control points in the snapshot.
func (e *Evaluator) Size() int { return len(e.points) }

// Closed reports whether the snapshot was a closed loop.
func (e *Evaluator) Closed() bool { return e.closed }

// Segments returns the number of curve segments.
func (e *Evaluator) Segments() int {
	n := len(e.points)
	switch {
	case n < 2:
		return 0
	case e.closed:
		return n
	default:
		return n - 1
	}
}

// Domain returns the parameter range covered by the curve. For closed paths
// the range is one period.
func (e *Evaluator) Domain() (lo, hi float64, err error) {
	if len(e.points) < 2 {
		return 0, 0, ErrDegenerateSegment
	}
	return 0, float64(e.Segments()), nil
}

// Position returns the curve point at t.
func (e *Evaluator) Position(t float64) (mgl64.Vec3, error) {
	if len(e.points) < 2 {
		return mgl64.Vec3{}, ErrDegenerateSegment
	}
	seg, f := e.locate(t)
	return e.position(seg, f), nil
}

// Tangent returns the unit forward direction at t.
func (e *Evaluator) Tangent(t float64) (mgl64.Vec3, error) {
	if len(e.points) < 2 {
		return mgl64.Vec3{}, ErrDegenerateSegment
	}
	seg, f := e.locate(t)
	return e.direction(seg, f, mgl64.Vec3{}), nil
}

// Normal returns the unit up vector of the curve frame at t. It is
// orthogonal to the tangent and varies continuously along the curve.
func (e *Evaluator) Normal(t float64) (mgl64.Vec3, error) {
	if len(e.points) < 2 {
		return mgl64.Vec3{}, ErrDegenerateSegment
	}
	seg, f := e.locate(t)
	up, _ := e.frameAt(seg, f)
	return up, nil
}

// locate resolves t into a segment index and a fraction in [0,1]. Open
// paths clamp to their endpoints; closed paths wrap.
func (e *Evaluator) locate(t float64) (int, float64) {
	segs := e.Segments()
	if math.IsNaN(t) {
		t = 0
	}
	if !e.closed {
		if t <= 0 {
			return 0, 0
		}
		if t >= float64(segs) {
			return segs - 1, 1
		}
		seg := int(math.Floor(t))
		return seg, t - float64(seg)
	}
	whole := math.Floor(t)
	f := t - whole
	seg := int(math.Mod(whole, float64(segs)))
	if seg < 0 {
		seg += segs
	}
	return seg, f
}

// ends returns the indices of the two control points bounding seg.
func (e *Evaluator) ends(seg int) (int, int) {
	return seg, (seg + 1) % len(e.points)
}

func (e *Evaluator) position(seg int, f float64) mgl64.Vec3 {
	i, j := e.ends(seg)
	p0, p1 := e.points[i].Position, e.points[j].Position
	v0, v1 := e.tangents(seg)

	h00, h10, h01, h11 := hermite(f)
	return p0.Mul(h00).Add(v0.Mul(h10)).Add(p1.Mul(h01)).Add(v1.Mul(h11))
}

func (e *Evaluator) derivative(seg int, f float64) mgl64.Vec3 {
	i, j := e.ends(seg)
	p0, p1 := e.points[i].Position, e.points[j].Position
	v0, v1 := e.tangents(seg)

	d00, d10, d01, d11 := hermiteDerivative(f)
	return p0.Mul(d00).Add(v0.Mul(d10)).Add(p1.Mul(d01)).Add(v1.Mul(d11))
}

// direction returns the normalized derivative, falling back to the segment
// chord and then to fallback when the curve stalls on duplicate points.
func (e *Evaluator) direction(seg int, f float64, fallback mgl64.Vec3) mgl64.Vec3 {
	if d := e.derivative(seg, f); d.Len() > epsilon {
		return d.Normalize()
	}
	i, j := e.ends(seg)
	if chord := e.points[j].Position.Sub(e.points[i].Position); chord.Len() > epsilon {
		return chord.Normalize()
	}
	if fallback.Len() > epsilon {
		return fallback
	}
	return mgl64.Vec3{1, 0, 0}
}

// hermite returns the cubic Hermite basis functions at f.
func hermite(f float64) (h00, h10, h01, h11 float64) {
	f2 := f * f
	f3 := f2 * f
	h00 = 2*f3 - 3*f2 + 1
	h10 = f3 - 2*f2 + f
	h01 = -2*f3 + 3*f2
	h11 = f3 - f2
	return
}

func hermiteDerivative(f float64) (d00, d10, d01, d11 float64) {
	f2 := f * f
	d00 = 6*f2 - 6*f
	d10 = 3*f2 - 4*f + 1
	d01 = -6*f2 + 6*f
	d11 = 3*f2 - 2*f
	return
}
