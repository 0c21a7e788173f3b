package engine

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/spline"
	"github.com/trackforge/editor/internal/track"
)

const (
	gridExtent     = 200.0
	gridBaseCell   = 40.0
	pointHalfSize  = 6.0
	normalLength   = 3.0
	roadFill       = "#3a3a48"
	roadStroke     = "#9a9ab0"
	centerStroke   = "#f5d142"
	normalStroke   = "#53d769"
	gridStroke     = "#2a2a3e"
	pointFill      = "#e94560"
	selectedFill   = "#ffffff"
	previewOpacity = 0.6
)

// sceneInput is everything BuildScene reads. points already carry any drag
// preview, and eval is built from them.
type sceneInput struct {
	eval        *spline.Evaluator
	points      []track.ControlPoint
	selected    int
	dragging    int
	camera      Camera
	gridOn      bool
	gridDensity int
	samples     int
}

// BuildScene projects the grid, the road ribbon, the centerline with its
// up vectors and the control point handles, in painter's order.
func BuildScene(in sceneInput) *Scene {
	sc := NewScene()
	if in.gridOn {
		if n := buildGrid(in.camera, in.gridDensity); n != nil {
			sc.add(n)
		}
	}

	if frames, err := in.eval.Sample(in.samples); err == nil {
		opacity := 1.0
		if in.dragging >= 0 {
			opacity = previewOpacity
		}
		for _, n := range buildRoad(in.camera, frames, in.samples, opacity) {
			sc.add(n)
		}
	}

	for i, cp := range in.points {
		s, ok := in.camera.Project(cp.Position)
		if !ok {
			continue
		}
		fill := pointFill
		if i == in.selected || i == in.dragging {
			fill = selectedFill
		}
		x0, y0 := s.X()-pointHalfSize, s.Y()-pointHalfSize
		x1, y1 := s.X()+pointHalfSize, s.Y()+pointHalfSize
		sc.add(&SceneNode{
			ID:    cp.ID,
			Kind:  KindPoint,
			Index: i,
			Path: []PathCommand{
				{"M", x0, y0}, {"L", x1, y0}, {"L", x1, y1}, {"L", x0, y1}, {"Z"},
			},
			Fill:        fill,
			Stroke:      "#000000",
			StrokeWidth: 1,
			Opacity:     1,
			Bounds:      Rect{X: x0, Y: y0, Width: 2 * pointHalfSize, Height: 2 * pointHalfSize},
		})
	}
	return sc
}

func buildGrid(cam Camera, density int) *SceneNode {
	step := gridBaseCell / float64(max(density, 1))
	var path []PathCommand
	var xs, ys []float64
	line := func(a, b mgl64.Vec3) {
		sa, okA := cam.Project(a)
		sb, okB := cam.Project(b)
		if !okA || !okB {
			return
		}
		path = append(path, PathCommand{"M", sa.X(), sa.Y()}, PathCommand{"L", sb.X(), sb.Y()})
		xs = append(xs, sa.X(), sb.X())
		ys = append(ys, sa.Y(), sb.Y())
	}
	for v := -gridExtent; v <= gridExtent; v += step {
		line(mgl64.Vec3{v, 0, -gridExtent}, mgl64.Vec3{v, 0, gridExtent})
		line(mgl64.Vec3{-gridExtent, 0, v}, mgl64.Vec3{gridExtent, 0, v})
	}
	if len(path) == 0 {
		return nil
	}
	return &SceneNode{
		ID: KindGrid, Kind: KindGrid, Index: -1,
		Path: path, Stroke: gridStroke, StrokeWidth: 1, Opacity: 1,
		Bounds: boundsOf(xs, ys),
	}
}

// buildRoad returns the ribbon between the banked road edges, the
// centerline, and one up-vector tick per control point span.
func buildRoad(cam Camera, frames []spline.Frame, samples int, opacity float64) []*SceneNode {
	var road, center, normals []PathCommand
	var rx, ry []float64
	var prevL, prevR mgl64.Vec2
	havePrev := false

	for i, f := range frames {
		l, r := f.Edges()
		sl, okL := cam.Project(l)
		sr, okR := cam.Project(r)
		sc, okC := cam.Project(f.Position)
		if !okL || !okR || !okC {
			havePrev = false
			continue
		}

		if havePrev {
			road = append(road,
				PathCommand{"M", prevL.X(), prevL.Y()},
				PathCommand{"L", sl.X(), sl.Y()},
				PathCommand{"L", sr.X(), sr.Y()},
				PathCommand{"L", prevR.X(), prevR.Y()},
				PathCommand{"Z"},
			)
		}
		rx = append(rx, sl.X(), sr.X())
		ry = append(ry, sl.Y(), sr.Y())
		prevL, prevR, havePrev = sl, sr, true

		if len(center) == 0 {
			center = append(center, PathCommand{"M", sc.X(), sc.Y()})
		} else {
			center = append(center, PathCommand{"L", sc.X(), sc.Y()})
		}

		if samples > 0 && i%samples == 0 {
			up, _ := f.Banked()
			if tip, ok := cam.Project(f.Position.Add(up.Mul(normalLength))); ok {
				normals = append(normals,
					PathCommand{"M", sc.X(), sc.Y()},
					PathCommand{"L", tip.X(), tip.Y()},
				)
			}
		}
	}

	var nodes []*SceneNode
	if len(road) > 0 {
		nodes = append(nodes, &SceneNode{
			ID: KindRoad, Kind: KindRoad, Index: -1,
			Path: road, Fill: roadFill, Stroke: roadStroke, StrokeWidth: 1, Opacity: opacity,
			Bounds: boundsOf(rx, ry),
		})
	}
	if len(center) > 1 {
		nodes = append(nodes, &SceneNode{
			ID: KindCenterline, Kind: KindCenterline, Index: -1,
			Path: center, Stroke: centerStroke, StrokeWidth: 2, Opacity: opacity,
		})
	}
	if len(normals) > 0 {
		nodes = append(nodes, &SceneNode{
			ID: KindNormals, Kind: KindNormals, Index: -1,
			Path: normals, Stroke: normalStroke, StrokeWidth: 1, Opacity: opacity,
		})
	}
	return nodes
}
