package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/spline"
)

const (
	minPitch    = 0.05
	maxPitch    = math.Pi/2 - 0.01
	minDistance = 5.0
	maxDistance = 2000.0
	nearPlane   = 0.1
	farPlane    = 5000.0
)

// Camera is an orbit camera around Target. Screen coordinates are pixels
// with the origin at the top-left corner, as on a Canvas2D context.
type Camera struct {
	Target   mgl64.Vec3 `json:"target"`
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
	Distance float64    `json:"distance"`
	FovY     float64    `json:"fovY"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
}

// NewCamera looks down at the origin from above and slightly south.
func NewCamera(width, height float64) Camera {
	c := Camera{
		Yaw:      math.Pi / 2,
		Pitch:    1.0,
		Distance: 150,
		FovY:     mgl64.DegToRad(45),
	}
	c.Resize(width, height)
	return c
}

// Eye returns the camera position in world space.
func (c Camera) Eye() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	dir := mgl64.Vec3{cp * math.Cos(c.Yaw), math.Sin(c.Pitch), cp * math.Sin(c.Yaw)}
	return c.Target.Add(dir.Mul(c.Distance))
}

func (c Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye(), c.Target, spline.WorldUp)
}

func (c Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(c.FovY, c.Width/c.Height, nearPlane, farPlane)
}

// ViewProjection returns Projection * View.
func (c Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Project maps a world point to screen pixels. ok is false for points
// behind the camera.
func (c Camera) Project(p mgl64.Vec3) (screen mgl64.Vec2, ok bool) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	if clip.W() <= nearPlane/2 {
		return mgl64.Vec2{}, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	return mgl64.Vec2{
		(ndc.X() + 1) / 2 * c.Width,
		(1 - ndc.Y()) / 2 * c.Height,
	}, true
}

// Ray returns the pick ray through the given pixel.
func (c Camera) Ray(x, y float64) spline.Ray {
	ndcX := 2*x/c.Width - 1
	ndcY := 1 - 2*y/c.Height
	inv := c.ViewProjection().Inv()

	near := inv.Mul4x1(mgl64.Vec4{ndcX, ndcY, -1, 1})
	far := inv.Mul4x1(mgl64.Vec4{ndcX, ndcY, 1, 1})
	n := near.Vec3().Mul(1 / near.W())
	f := far.Vec3().Mul(1 / far.W())
	return spline.Ray{Origin: n, Dir: f.Sub(n).Normalize()}
}

// Orbit rotates the camera around its target. Pitch is kept above the
// ground and short of straight down.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = math.Max(minPitch, math.Min(maxPitch, c.Pitch+dPitch))
}

// Zoom scales the orbit distance by factor.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.Distance = math.Max(minDistance, math.Min(maxDistance, c.Distance*factor))
}

func (c *Camera) Resize(width, height float64) {
	c.Width = math.Max(1, width)
	c.Height = math.Max(1, height)
}
