package plan

import (
	"bytes"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/document"
	"github.com/trackforge/editor/internal/track"
)

func TestFit_KeepsAspectAndCenters(t *testing.T) {
	world := box{-100, -50, 100, 50}
	area := box{10, 10, 110, 110}
	tr := fit(world, area)

	if math.Abs(tr.scale-0.5) > 1e-9 {
		t.Fatalf("scale = %v, want 0.5", tr.scale)
	}
	x0, y0 := tr.apply(mgl64.Vec3{-100, 0, -50})
	x1, y1 := tr.apply(mgl64.Vec3{100, 0, 50})
	if x0 != 10 || x1 != 110 {
		t.Errorf("x range = %v..%v, want 10..110", x0, x1)
	}
	if math.Abs(y0-35) > 1e-9 || math.Abs(y1-85) > 1e-9 {
		t.Errorf("y range = %v..%v, want 35..85", y0, y1)
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name string
		doc  *document.TrackDocument
	}{
		{"sample", document.NewSampleDocument("track_plan")},
		{"empty", document.NewEmptyDocument("track_plan", "Empty")},
		{"single point", &document.TrackDocument{
			ID:     "track_plan",
			Name:   "One",
			Points: []track.ControlPoint{track.NewPoint(mgl64.Vec3{3, 0, 4})},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, tt.doc, Options{SamplesPerSegment: 4}); err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
				t.Errorf("output does not start with a PDF header: %q", buf.Bytes()[:min(8, buf.Len())])
			}
		})
	}
}
