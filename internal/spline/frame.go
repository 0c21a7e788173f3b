package spline

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Frame is the orientation of the curve at one parameter value.
type Frame struct {
	T        float64    `json:"t"`
	Position mgl64.Vec3 `json:"position"`
	Tangent  mgl64.Vec3 `json:"tangent"`
	Up       mgl64.Vec3 `json:"up"`
	Right    mgl64.Vec3 `json:"right"`
	Width    float64    `json:"width"`
	Bank     float64    `json:"bank"`
}

// Banked returns the up and right vectors rolled by the frame's bank angle
// around the tangent.
func (f Frame) Banked() (up, right mgl64.Vec3) {
	if f.Bank == 0 {
		return f.Up, f.Right
	}
	q := mgl64.QuatRotate(f.Bank, f.Tangent)
	return q.Rotate(f.Up), q.Rotate(f.Right)
}

// Edges returns the left and right road borders at half the frame width.
func (f Frame) Edges() (left, right mgl64.Vec3) {
	_, r := f.Banked()
	half := r.Mul(f.Width / 2)
	return f.Position.Sub(half), f.Position.Add(half)
}

// Frame returns the full frame at t.
func (e *Evaluator) Frame(t float64) (Frame, error) {
	if len(e.points) < 2 {
		return Frame{}, ErrDegenerateSegment
	}
	seg, f := e.locate(t)
	return e.frame(t, seg, f), nil
}

func (e *Evaluator) frame(t float64, seg int, f float64) Frame {
	up, tan := e.frameAt(seg, f)
	i, j := e.ends(seg)
	a, b := e.points[i].Meta, e.points[j].Meta
	return Frame{
		T:        t,
		Position: e.position(seg, f),
		Tangent:  tan,
		Up:       up,
		Right:    tan.Cross(up).Normalize(),
		Width:    a.Width + (b.Width-a.Width)*f,
		Bank:     a.Bank + (b.Bank-a.Bank)*f,
	}
}

// Sample returns frames at stepsPerSegment uniform parameter steps along
// every segment, including the final endpoint. For closed paths the last
// sample repeats the first.
func (e *Evaluator) Sample(stepsPerSegment int) ([]Frame, error) {
	if len(e.points) < 2 {
		return nil, ErrDegenerateSegment
	}
	if stepsPerSegment < 1 {
		stepsPerSegment = 1
	}
	segs := e.Segments()
	out := make([]Frame, 0, segs*stepsPerSegment+1)
	for s := 0; s < segs; s++ {
		for k := 0; k < stepsPerSegment; k++ {
			f := float64(k) / float64(stepsPerSegment)
			out = append(out, e.frame(float64(s)+f, s, f))
		}
	}
	if e.closed {
		out = append(out, e.frame(float64(segs), 0, 0))
	} else {
		out = append(out, e.frame(float64(segs), segs-1, 1))
	}
	return out, nil
}

// frameAt returns the up vector and unit tangent at fraction f of seg.
func (e *Evaluator) frameAt(seg int, f float64) (up, tan mgl64.Vec3) {
	up = e.ups[seg]
	tan = e.direction(seg, 0, mgl64.Vec3{})
	if f > 0 {
		x := e.position(seg, 0)
		for k := 1; k <= e.steps; k++ {
			s := f * float64(k) / float64(e.steps)
			nx := e.position(seg, s)
			nt := e.direction(seg, s, tan)
			up = transport(up, x, tan, nx, nt)
			x, tan = nx, nt
		}
	}
	if e.twist != 0 {
		share := (float64(seg) + f) / float64(e.Segments())
		up = mgl64.QuatRotate(e.twist*share, tan).Rotate(up)
	}
	return orthonormalize(up, tan), tan
}

// buildFrames walks the whole curve once and records the transported up
// vector at every segment boundary.
func (e *Evaluator) buildFrames() {
	segs := e.Segments()
	e.ups = make([]mgl64.Vec3, segs+1)

	tan := e.direction(0, 0, mgl64.Vec3{})
	up := initialUp(tan)
	e.ups[0] = up
	x := e.position(0, 0)

	for s := 0; s < segs; s++ {
		if s > 0 {
			// Re-enter the segment at its own start so the walk matches frameAt.
			nt := e.direction(s, 0, tan)
			up = orthonormalize(transport(up, x, tan, x, nt), nt)
			tan = nt
			e.ups[s] = up
		}
		for k := 1; k <= e.steps; k++ {
			f := float64(k) / float64(e.steps)
			nx := e.position(s, f)
			nt := e.direction(s, f, tan)
			up = transport(up, x, tan, nx, nt)
			x, tan = nx, nt
		}
		up = orthonormalize(up, tan)
	}
	e.ups[segs] = up

	if e.closed && len(e.points) >= 3 {
		start := e.direction(0, 0, mgl64.Vec3{})
		e.twist = signedAngle(orthonormalize(up, start), e.ups[0], start)
	}
}

// initialUp builds an up vector orthogonal to tan from the world reference,
// switching to a horizontal reference when tan is nearly vertical.
func initialUp(tan mgl64.Vec3) mgl64.Vec3 {
	right := tan.Cross(WorldUp)
	if right.Len() < 1e-6 {
		right = tan.Cross(mgl64.Vec3{0, 0, -1})
	}
	return right.Cross(tan).Normalize()
}

// transport carries up from (x0, t0) to (x1, t1) by double reflection,
// the rotation-minimizing scheme of Wang et al.
func transport(up, x0, t0, x1, t1 mgl64.Vec3) mgl64.Vec3 {
	v1 := x1.Sub(x0)
	c1 := v1.Dot(v1)
	rL, tL := up, t0
	if c1 > epsilon {
		rL = up.Sub(v1.Mul(2 / c1 * v1.Dot(up)))
		tL = t0.Sub(v1.Mul(2 / c1 * v1.Dot(t0)))
	}
	v2 := t1.Sub(tL)
	c2 := v2.Dot(v2)
	if c2 <= epsilon {
		return rL
	}
	return rL.Sub(v2.Mul(2 / c2 * v2.Dot(rL)))
}

// orthonormalize removes the tan component from up and normalizes it.
func orthonormalize(up, tan mgl64.Vec3) mgl64.Vec3 {
	v := up.Sub(tan.Mul(up.Dot(tan)))
	if v.Len() < epsilon {
		return initialUp(tan)
	}
	return v.Normalize()
}

// signedAngle returns the angle rotating a onto b around axis.
func signedAngle(a, b, axis mgl64.Vec3) float64 {
	return math.Atan2(a.Cross(b).Dot(axis), a.Dot(b))
}
