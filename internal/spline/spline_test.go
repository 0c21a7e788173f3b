package spline

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/track"
)

const eps = 1e-9

func vecEqual(a, b mgl64.Vec3, tol float64) bool {
	return a.Sub(b).Len() < tol
}

func points(ps ...mgl64.Vec3) []track.ControlPoint {
	out := make([]track.ControlPoint, len(ps))
	for i, p := range ps {
		out[i] = track.ControlPoint{ID: string(rune('A' + i)), Position: p}
	}
	return out
}

func openSquare() []track.ControlPoint {
	return points(
		mgl64.Vec3{0, 0, 0},
		mgl64.Vec3{10, 0, 0},
		mgl64.Vec3{10, 2, 10},
		mgl64.Vec3{0, 0, 10},
	)
}

// -------------------------------------------------------------------
// Position
// -------------------------------------------------------------------

func TestPosition_OpenEndpoints(t *testing.T) {
	pts := openSquare()
	e := FromPoints(pts, false)

	tests := []struct {
		name string
		t    float64
		want mgl64.Vec3
	}{
		{"first boundary", 0, pts[0].Position},
		{"last boundary", 3, pts[3].Position},
		{"clamped below", -2.5, pts[0].Position},
		{"clamped above", 7, pts[3].Position},
		{"interior knot", 1, pts[1].Position},
		{"interior knot 2", 2, pts[2].Position},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Position(tt.t)
			if err != nil {
				t.Fatalf("Position(%v) error: %v", tt.t, err)
			}
			if !vecEqual(got, tt.want, eps) {
				t.Errorf("Position(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestPosition_ContinuousAtBoundaries(t *testing.T) {
	for _, closed := range []bool{false, true} {
		e := FromPoints(openSquare(), closed)
		_, hi, _ := e.Domain()
		for k := 1.0; k < hi; k++ {
			left, _ := e.Position(k - 1e-9)
			at, _ := e.Position(k)
			right, _ := e.Position(k + 1e-9)
			if !vecEqual(left, at, 1e-6) || !vecEqual(right, at, 1e-6) {
				t.Errorf("closed=%v: discontinuity at t=%v: %v | %v | %v", closed, k, left, at, right)
			}
		}
	}
}

func TestPosition_ClosedIsPeriodic(t *testing.T) {
	e := FromPoints(openSquare(), true)
	n := float64(e.Size())
	for _, u := range []float64{0, 0.25, 1.5, 2.75, 3.9, -0.4} {
		a, _ := e.Position(u)
		b, _ := e.Position(u + n)
		c, _ := e.Position(u - n)
		if !vecEqual(a, b, 1e-9) || !vecEqual(a, c, 1e-9) {
			t.Errorf("Position(%v) = %v, Position(t+n) = %v, Position(t-n) = %v", u, a, b, c)
		}
	}
	// The closing segment runs from the last point back to the first.
	last, _ := e.Position(n - 1)
	wrap, _ := e.Position(n)
	if !vecEqual(last, openSquare()[3].Position, eps) || !vecEqual(wrap, openSquare()[0].Position, eps) {
		t.Errorf("closing segment endpoints = %v -> %v", last, wrap)
	}
}

// -------------------------------------------------------------------
// Tangent estimation
// -------------------------------------------------------------------

func TestTangents_TwoPointPathUsesSecantOnBothEnds(t *testing.T) {
	e := FromPoints(points(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{3, 0, 0}), false)

	v0, v1 := e.tangents(0)
	want := mgl64.Vec3{3, 0, 0}
	if v0 != want || v1 != want {
		t.Fatalf("tangents = %v, %v, want secant %v on both ends", v0, v1, want)
	}
	// A secant on both ends reduces the blend to a straight line.
	for _, f := range []float64{0.1, 0.5, 0.9} {
		got, _ := e.Position(f)
		if !vecEqual(got, mgl64.Vec3{3 * f, 0, 0}, eps) {
			t.Errorf("Position(%v) = %v, want (%v,0,0)", f, got, 3*f)
		}
	}
}

func TestTangents_BoundaryAwareSwitch(t *testing.T) {
	pts := points(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 1})

	tests := []struct {
		name   string
		policy TangentPolicy
		want   mgl64.Vec3
	}{
		// Start of segment 0 has no predecessor: secant (1,0,0).
		// End of segment 0 has both neighbours: centered (0.5,0,0.5).
		{"catmull-rom", CatmullRom, mgl64.Vec3{0.5625, 0, -0.0625}},
		{"secant", Secant, mgl64.Vec3{0.5, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromPoints(pts, false, WithPolicy(tt.policy))
			got, err := e.Position(0.5)
			if err != nil {
				t.Fatal(err)
			}
			if !vecEqual(got, tt.want, eps) {
				t.Errorf("Position(0.5) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTangents_LastSegmentFallsBackAtEnd(t *testing.T) {
	pts := openSquare()
	e := FromPoints(pts, false)
	v0, v1 := e.tangents(2)
	wantStart := pts[3].Position.Sub(pts[1].Position).Mul(0.5)
	wantEnd := pts[3].Position.Sub(pts[2].Position)
	if !vecEqual(v0, wantStart, eps) {
		t.Errorf("start tangent = %v, want centered %v", v0, wantStart)
	}
	if !vecEqual(v1, wantEnd, eps) {
		t.Errorf("end tangent = %v, want secant %v", v1, wantEnd)
	}
}

func TestTangents_ClosedUsesWrappedNeighbours(t *testing.T) {
	pts := openSquare()
	e := FromPoints(pts, true)
	v0, _ := e.tangents(0)
	want := pts[1].Position.Sub(pts[3].Position).Mul(0.5)
	if !vecEqual(v0, want, eps) {
		t.Errorf("start tangent = %v, want %v", v0, want)
	}
}

func TestTangents_Override(t *testing.T) {
	pts := points(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0})
	zero := mgl64.Vec3{}
	pts[0].Meta.TangentOverride = &zero
	e := FromPoints(pts, false)
	got, _ := e.Position(0.5)
	if !vecEqual(got, mgl64.Vec3{0.375, 0, 0}, eps) {
		t.Errorf("Position(0.5) = %v, want (0.375,0,0)", got)
	}
}

// -------------------------------------------------------------------
// Normals
// -------------------------------------------------------------------

func TestNormal_FlatPathPointsUp(t *testing.T) {
	e := FromPoints(points(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 0, 0}, mgl64.Vec3{10, 0, 0}), false)
	for _, u := range []float64{0, 0.3, 1, 1.7, 2} {
		n, err := e.Normal(u)
		if err != nil {
			t.Fatal(err)
		}
		if !vecEqual(n, WorldUp, 1e-9) {
			t.Errorf("Normal(%v) = %v, want %v", u, n, WorldUp)
		}
	}
	f, _ := e.Frame(0.5)
	if !vecEqual(f.Right, mgl64.Vec3{0, 0, 1}, 1e-9) {
		t.Errorf("Right = %v, want (0,0,1)", f.Right)
	}
}

func TestNormal_OrthonormalToTangent(t *testing.T) {
	e := FromPoints(openSquare(), true)
	frames, err := e.Sample(20)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range frames {
		if math.Abs(f.Up.Len()-1) > 1e-9 {
			t.Errorf("t=%v: |up| = %v", f.T, f.Up.Len())
		}
		if math.Abs(f.Up.Dot(f.Tangent)) > 1e-9 {
			t.Errorf("t=%v: up·tangent = %v", f.T, f.Up.Dot(f.Tangent))
		}
	}
}

func TestNormal_NoFlipThroughVertical(t *testing.T) {
	// Climbs straight up and over: a fixed world-up projection flips here.
	pts := points(
		mgl64.Vec3{0, 0, 0},
		mgl64.Vec3{10, 0, 0},
		mgl64.Vec3{12, 10, 0},
		mgl64.Vec3{10, 20, 0.5},
		mgl64.Vec3{0, 20, 1},
	)
	e := FromPoints(pts, false)
	frames, err := e.Sample(64)
	if err != nil {
		t.Fatal(err)
	}
	for k := 1; k < len(frames); k++ {
		if d := frames[k-1].Up.Dot(frames[k].Up); d < 0.9 {
			t.Fatalf("normal jumps between t=%v and t=%v (dot %v)", frames[k-1].T, frames[k].T, d)
		}
	}
}

func TestNormal_ContinuousAtBoundaries(t *testing.T) {
	for _, closed := range []bool{false, true} {
		e := FromPoints(openSquare(), closed)
		_, hi, _ := e.Domain()
		for k := 1.0; k <= hi; k++ {
			left, _ := e.Normal(k - 1e-7)
			at, _ := e.Normal(k)
			if !vecEqual(left, at, 1e-4) {
				t.Errorf("closed=%v: normal discontinuity at t=%v: %v vs %v", closed, k, left, at)
			}
		}
	}
}

func TestNormal_ClosedIsPeriodic(t *testing.T) {
	e := FromPoints(openSquare(), true)
	n := float64(e.Size())
	for _, u := range []float64{0.1, 1.25, 3.5} {
		a, _ := e.Normal(u)
		b, _ := e.Normal(u + n)
		if !vecEqual(a, b, 1e-9) {
			t.Errorf("Normal(%v) = %v, Normal(t+n) = %v", u, a, b)
		}
	}
}

func TestNormal_Idempotent(t *testing.T) {
	e := FromPoints(openSquare(), false)
	a, _ := e.Normal(1.37)
	b, _ := e.Normal(1.37)
	if a != b {
		t.Errorf("repeated Normal differs: %v vs %v", a, b)
	}
}

// -------------------------------------------------------------------
// Degenerate input
// -------------------------------------------------------------------

func TestDegenerateSegment(t *testing.T) {
	for _, n := range []int{0, 1} {
		pts := points(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{4, 5, 6})[:n]
		e := FromPoints(pts, false)

		checks := map[string]error{}
		_, checks["Position"] = e.Position(0)
		_, checks["Normal"] = e.Normal(0)
		_, checks["Tangent"] = e.Tangent(0)
		_, checks["Frame"] = e.Frame(0)
		_, checks["Sample"] = e.Sample(4)
		_, _, checks["Domain"] = e.Domain()
		_, _, checks["Closest"] = e.Closest(Ray{Dir: mgl64.Vec3{0, -1, 0}})
		for name, err := range checks {
			if !errors.Is(err, ErrDegenerateSegment) {
				t.Errorf("%d points: %s error = %v, want ErrDegenerateSegment", n, name, err)
			}
		}
	}
}

func TestNew_SnapshotsPath(t *testing.T) {
	p := track.NewPathFrom(openSquare(), false)
	e := New(p)
	_ = p.SetPosition(0, mgl64.Vec3{100, 100, 100})
	got, _ := e.Position(0)
	if !vecEqual(got, mgl64.Vec3{}, eps) {
		t.Errorf("evaluator saw a later mutation: %v", got)
	}
}

// -------------------------------------------------------------------
// Sampling and picking
// -------------------------------------------------------------------

func TestSample_Counts(t *testing.T) {
	tests := []struct {
		closed bool
		want   int
	}{
		{false, 3*8 + 1},
		{true, 4*8 + 1},
	}
	for _, tt := range tests {
		e := FromPoints(openSquare(), tt.closed)
		frames, _ := e.Sample(8)
		if len(frames) != tt.want {
			t.Errorf("closed=%v: %d samples, want %d", tt.closed, len(frames), tt.want)
		}
		first, last := frames[0].Position, frames[len(frames)-1].Position
		if tt.closed && !vecEqual(first, last, eps) {
			t.Errorf("closed sample does not return to start: %v vs %v", first, last)
		}
	}
}

func TestFrame_WidthAndBankInterpolate(t *testing.T) {
	pts := points(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 0, 0})
	pts[0].Meta = track.Meta{Width: 4, Bank: 0}
	pts[1].Meta = track.Meta{Width: 8, Bank: 0.5}
	e := FromPoints(pts, false)
	f, _ := e.Frame(0.5)
	if math.Abs(f.Width-6) > eps || math.Abs(f.Bank-0.25) > eps {
		t.Errorf("width %v bank %v, want 6 and 0.25", f.Width, f.Bank)
	}
	left, right := f.Edges()
	if math.Abs(left.Sub(right).Len()-6) > 1e-9 {
		t.Errorf("edge spacing = %v, want 6", left.Sub(right).Len())
	}
}

func TestClosest(t *testing.T) {
	e := FromPoints(points(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 0, 0}, mgl64.Vec3{10, 0, 0}), false)
	ray := Ray{Origin: mgl64.Vec3{4, 10, 0}, Dir: mgl64.Vec3{0, -1, 0}}
	u, dist, err := e.Closest(ray)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(u-0.8) > 1e-4 || dist > 1e-4 {
		t.Errorf("Closest = (%v, %v), want (0.8, 0)", u, dist)
	}
}

func TestRay_GroundHit(t *testing.T) {
	r := Ray{Origin: mgl64.Vec3{1, 10, 1}, Dir: mgl64.Vec3{1, -2, 0}}
	p, ok := r.GroundHit(0)
	if !ok || !vecEqual(p, mgl64.Vec3{6, 0, 1}, eps) {
		t.Errorf("GroundHit = %v, %v", p, ok)
	}
	if _, ok := (Ray{Origin: mgl64.Vec3{0, 1, 0}, Dir: mgl64.Vec3{1, 0, 0}}).GroundHit(0); ok {
		t.Error("parallel ray should miss")
	}
	if _, ok := (Ray{Origin: mgl64.Vec3{0, 1, 0}, Dir: mgl64.Vec3{0, 1, 0}}).GroundHit(0); ok {
		t.Error("ray pointing away should miss")
	}
}
