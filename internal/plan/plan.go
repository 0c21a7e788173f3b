// Package plan prints a top-down track plan as a PDF page.
package plan

import (
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jung-kurt/gofpdf"

	"github.com/trackforge/editor/internal/document"
	"github.com/trackforge/editor/internal/spline"
)

const (
	pageW       = 297.0
	pageH       = 210.0
	margin      = 15.0
	titleHeight = 12.0
	pointRadius = 1.2
)

// Options tune the drawing.
type Options struct {
	SamplesPerSegment int
}

// box is an axis-aligned area on the ground plane (x, z) or the page.
type box struct {
	minX, minY, maxX, maxY float64
}

func emptyBox() box {
	return box{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

func (b *box) add(x, y float64) {
	b.minX, b.maxX = math.Min(b.minX, x), math.Max(b.maxX, x)
	b.minY, b.maxY = math.Min(b.minY, y), math.Max(b.maxY, y)
}

func (b box) empty() bool { return b.minX > b.maxX }

// transform maps ground coordinates onto the page.
type transform struct {
	scale, offX, offY float64
	minX, minY        float64
}

func (t transform) apply(p mgl64.Vec3) (x, y float64) {
	return t.offX + (p.X()-t.minX)*t.scale, t.offY + (p.Z()-t.minY)*t.scale
}

// fit scales world into area uniformly and centers it.
func fit(world, area box) transform {
	w := math.Max(world.maxX-world.minX, 1e-6)
	h := math.Max(world.maxY-world.minY, 1e-6)
	aw, ah := area.maxX-area.minX, area.maxY-area.minY
	s := math.Min(aw/w, ah/h)
	return transform{
		scale: s,
		offX:  area.minX + (aw-w*s)/2,
		offY:  area.minY + (ah-h*s)/2,
		minX:  world.minX,
		minY:  world.minY,
	}
}

// Write renders doc as a single landscape A4 page to w. Tracks with fewer
// than two points print their handles only.
func Write(w io.Writer, doc *document.TrackDocument, opts Options) error {
	if opts.SamplesPerSegment <= 0 {
		opts.SamplesPerSegment = 16
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(doc.Name, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(margin, margin, pdf.UnicodeTranslatorFromDescriptor("")(doc.Name))
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(margin, margin+5, fmt.Sprintf("%d points, %s, version %d",
		len(doc.Points), loopLabel(doc.Closed), doc.Version))

	frames, _ := spline.FromPoints(doc.Points, doc.Closed).Sample(opts.SamplesPerSegment)

	world := emptyBox()
	for _, f := range frames {
		l, r := f.Edges()
		world.add(l.X(), l.Z())
		world.add(r.X(), r.Z())
	}
	for _, cp := range doc.Points {
		world.add(cp.Position.X(), cp.Position.Z())
	}
	if world.empty() {
		return pdf.Output(w)
	}
	area := box{margin, margin + titleHeight, pageW - margin, pageH - margin}
	t := fit(world, area)

	pdf.SetLineWidth(0.3)
	pdf.SetDrawColor(90, 90, 110)
	for i := 1; i < len(frames); i++ {
		al, ar := frames[i-1].Edges()
		bl, br := frames[i].Edges()
		line(pdf, t, al, bl)
		line(pdf, t, ar, br)
	}

	pdf.SetDrawColor(200, 150, 0)
	pdf.SetDashPattern([]float64{1.5, 1}, 0)
	for i := 1; i < len(frames); i++ {
		line(pdf, t, frames[i-1].Position, frames[i].Position)
	}
	pdf.SetDashPattern(nil, 0)

	pdf.SetFillColor(233, 69, 96)
	for i, cp := range doc.Points {
		x, y := t.apply(cp.Position)
		pdf.Circle(x, y, pointRadius, "F")
		pdf.Text(x+pointRadius+0.5, y-pointRadius, fmt.Sprint(i))
	}
	return pdf.Output(w)
}

func line(pdf *gofpdf.Fpdf, t transform, a, b mgl64.Vec3) {
	x1, y1 := t.apply(a)
	x2, y2 := t.apply(b)
	pdf.Line(x1, y1, x2, y2)
}

func loopLabel(closed bool) string {
	if closed {
		return "closed loop"
	}
	return "open"
}
