package document

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/track"
)

// NewSampleDocument returns a closed oval with a banked hairpin at each end,
// so a fresh editor has something to drive on.
func NewSampleDocument(trackID string) *TrackDocument {
	now := time.Now().UTC().Format(time.RFC3339)

	const (
		radiusX = 60.0
		radiusZ = 30.0
		count   = 10
	)
	points := make([]track.ControlPoint, 0, count)
	for i := 0; i < count; i++ {
		a := 2 * math.Pi * float64(i) / count
		cp := track.NewPoint(mgl64.Vec3{radiusX * math.Cos(a), 0, radiusZ * math.Sin(a)})
		// Points near the ends of the long axis carry the tightest turn.
		if c := math.Cos(a); math.Abs(c) > 0.9 {
			cp.Meta.Bank = 0.2
			cp.Meta.Width = track.DefaultWidth * 1.25
		}
		points = append(points, cp)
	}

	return &TrackDocument{
		ID:        trackID,
		Name:      "Oval",
		Closed:    true,
		Points:    points,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
