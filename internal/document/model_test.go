package document

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trackforge/editor/internal/track"
)

func TestSampleDocument(t *testing.T) {
	doc := NewSampleDocument("track_test")
	if err := doc.Validate(); err != nil {
		t.Fatal(err)
	}
	if !doc.Closed || len(doc.Points) < 3 {
		t.Fatalf("sample closed=%v points=%d", doc.Closed, len(doc.Points))
	}

	data, err := doc.JSON()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Path().Equal(doc.Path()) {
		t.Error("document did not survive a JSON round trip")
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{"points": [`},
		{"missing id", `{"points": [{"position": [0,0,0]}]}`},
		{"duplicate id", `{"points": [{"id":"a","position":[0,0,0]},{"id":"a","position":[1,0,0]}]}`},
		{"negative width", `{"points": [{"id":"a","position":[0,0,0],"meta":{"width":-1}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("err = %v, want ErrInvalidDocument", err)
			}
		})
	}
}

func TestValidate_NonFinite(t *testing.T) {
	doc := NewEmptyDocument("track_x", "x")
	doc.Points = append(doc.Points, track.NewPoint(mgl64.Vec3{math.NaN(), 0, 0}))
	if err := doc.Validate(); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("err = %v", err)
	}
}

func TestSetPath(t *testing.T) {
	doc := NewEmptyDocument("track_x", "x")
	p := track.NewPath()
	_ = p.Insert(0, track.NewPoint(mgl64.Vec3{1, 2, 3}))
	p.SetClosed(true)

	doc.SetPath(p)
	if doc.Version != 2 || !doc.Closed || len(doc.Points) != 1 {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Points[0].Position != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("position = %v", doc.Points[0].Position)
	}
}
