package spline

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a pick ray in world space. Dir need not be normalized.
type Ray struct {
	Origin mgl64.Vec3 `json:"origin"`
	Dir    mgl64.Vec3 `json:"dir"`
}

// Distance returns the distance from p to the closest point on the ray.
func (r Ray) Distance(p mgl64.Vec3) float64 {
	d := r.Dir
	if d.Len() < epsilon {
		return p.Sub(r.Origin).Len()
	}
	d = d.Normalize()
	w := p.Sub(r.Origin)
	s := math.Max(0, w.Dot(d))
	return w.Sub(d.Mul(s)).Len()
}

// GroundHit intersects the ray with the horizontal plane y = height.
func (r Ray) GroundHit(height float64) (mgl64.Vec3, bool) {
	if math.Abs(r.Dir.Y()) < epsilon {
		return mgl64.Vec3{}, false
	}
	s := (height - r.Origin.Y()) / r.Dir.Y()
	if s < 0 {
		return mgl64.Vec3{}, false
	}
	return r.Origin.Add(r.Dir.Mul(s)), true
}

const (
	closestCoarseSteps = 32
	closestRefineIters = 40
)

// Closest returns the curve parameter whose point lies nearest to the ray
// and that distance. The curve is scanned coarsely and the best bracket is
// refined with a golden-section search.
func (e *Evaluator) Closest(r Ray) (t, dist float64, err error) {
	if len(e.points) < 2 {
		return 0, 0, ErrDegenerateSegment
	}
	segs := e.Segments()
	total := segs * closestCoarseSteps
	h := float64(segs) / float64(total)

	dist = math.Inf(1)
	for k := 0; k <= total; k++ {
		u := float64(k) * h
		if d := r.Distance(e.positionAt(u)); d < dist {
			t, dist = u, d
		}
	}

	lo, hi := t-h, t+h
	if !e.closed {
		lo = math.Max(lo, 0)
		hi = math.Min(hi, float64(segs))
	}
	const invPhi = 0.6180339887498949
	a := hi - invPhi*(hi-lo)
	b := lo + invPhi*(hi-lo)
	da, db := r.Distance(e.positionAt(a)), r.Distance(e.positionAt(b))
	for i := 0; i < closestRefineIters; i++ {
		if da < db {
			hi, b, db = b, a, da
			a = hi - invPhi*(hi-lo)
			da = r.Distance(e.positionAt(a))
		} else {
			lo, a, da = a, b, db
			b = lo + invPhi*(hi-lo)
			db = r.Distance(e.positionAt(b))
		}
	}
	if best := (lo + hi) / 2; r.Distance(e.positionAt(best)) < dist {
		t, dist = best, r.Distance(e.positionAt(best))
	}
	if e.closed {
		t = math.Mod(t+float64(segs), float64(segs))
	}
	return t, dist, nil
}

func (e *Evaluator) positionAt(t float64) mgl64.Vec3 {
	seg, f := e.locate(t)
	return e.position(seg, f)
}
