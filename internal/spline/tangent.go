package spline

import "github.com/go-gl/mathgl/mgl64"

// TangentPolicy selects how tangents at control points are estimated.
type TangentPolicy int

const (
	// CatmullRom uses the centered difference (p[k+1]-p[k-1])/2 at a point
	// when both of its neighbours exist and falls back to the segment secant
	// at the ends of an open path.
	CatmullRom TangentPolicy = iota
	// Secant always uses the chord of the segment being evaluated.
	Secant
)

func (p TangentPolicy) String() string {
	switch p {
	case CatmullRom:
		return "catmull-rom"
	case Secant:
		return "secant"
	default:
		return "unknown"
	}
}

// tangents returns the outgoing tangent at the start of seg and the
// incoming tangent at its end.
func (e *Evaluator) tangents(seg int) (v0, v1 mgl64.Vec3) {
	i, j := e.ends(seg)
	secant := e.points[j].Position.Sub(e.points[i].Position)
	return e.tangentAt(i, secant), e.tangentAt(j, secant)
}

// tangentAt estimates the tangent at point k. secant is the chord of the
// segment being evaluated and is used whenever k lacks a neighbour.
func (e *Evaluator) tangentAt(k int, secant mgl64.Vec3) mgl64.Vec3 {
	if o := e.points[k].Meta.TangentOverride; o != nil {
		return *o
	}
	if e.policy == Secant {
		return secant
	}
	prev, next, ok := e.neighbours(k)
	if !ok {
		return secant
	}
	return e.points[next].Position.Sub(e.points[prev].Position).Mul(0.5)
}

// neighbours returns the indices on either side of k. ok is false when one
// of them does not exist. A two-point loop has no distinct neighbours: both
// would alias the other end of the segment.
func (e *Evaluator) neighbours(k int) (prev, next int, ok bool) {
	n := len(e.points)
	if e.closed {
		if n < 3 {
			return 0, 0, false
		}
		return (k - 1 + n) % n, (k + 1) % n, true
	}
	if k-1 < 0 || k+1 >= n {
		return 0, 0, false
	}
	return k - 1, k + 1, true
}
