package engine

// Node kinds. Control point nodes use the point's id as their node id.
const (
	KindGrid       = "grid"
	KindRoad       = "road"
	KindCenterline = "centerline"
	KindNormals    = "normals"
	KindPoint      = "point"
)

// Scene is the projected, render-ready state of the track for one camera.
// It is rebuilt when the path, the drag preview or the camera changes.
type Scene struct {
	Nodes     []*SceneNode
	NodesByID map[string]*SceneNode
}

// SceneNode is one drawable in screen space.
type SceneNode struct {
	ID   string
	Kind string

	// Index is the control point index for point nodes, -1 otherwise.
	Index int

	Path        []PathCommand
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64

	// Hit testing
	Bounds Rect
}

// PathCommand is a single path segment in Canvas2D form:
// ["M", x, y], ["L", x, y] or ["Z"].
type PathCommand []any

// Rect is an axis-aligned box in screen pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewScene() *Scene {
	return &Scene{NodesByID: make(map[string]*SceneNode)}
}

func (s *Scene) add(n *SceneNode) {
	s.Nodes = append(s.Nodes, n)
	s.NodesByID[n.ID] = n
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Center returns the center point of the rect.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// boundsOf returns the box around a set of screen points.
func boundsOf(xs, ys []float64) Rect {
	if len(xs) == 0 {
		return Rect{}
	}
	minX, maxX, minY, maxY := xs[0], xs[0], ys[0], ys[0]
	for i := 1; i < len(xs); i++ {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
