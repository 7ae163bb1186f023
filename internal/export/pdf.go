package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jung-kurt/gofpdf"

	"Paint3D/internal/geom"
	"Paint3D/internal/state"
)

const (
	pageMargin = 15.0 // mm
	titleSpace = 12.0 // mm
	// A width-1 stroke is this many millimetres wide on paper.
	mmPerWidth = 0.35
)

// PDF renders strokes seen from above (world X across, world Z down) onto
// a landscape A4 page, scaled to fit the margins.
func PDF(w io.Writer, title string, strokes []state.Stroke) error {
	p := gofpdf.New("L", "mm", "A4", "")
	p.SetTitle(title, true)
	p.AddPage()

	pageW, pageH := p.GetPageSize()
	top := pageMargin
	if title != "" {
		p.SetFont("Helvetica", "B", 16)
		p.SetXY(pageMargin, pageMargin)
		p.CellFormat(pageW-2*pageMargin, 8, p.UnicodeTranslatorFromDescriptor("")(title), "", 0, "L", false, 0, "")
		top += titleSpace
	}

	var all []geom.Vec3
	for _, st := range strokes {
		for _, pt := range st.Points {
			all = append(all, pt.Vec())
		}
	}
	if bounds, ok := geom.TopDownBounds(all); ok {
		box := geom.Rect{MinX: pageMargin, MinY: top, MaxX: pageW - pageMargin, MaxY: pageH - pageMargin}
		fit := fitTransform(bounds.Pad(0.5), box)

		p.SetLineCapStyle("round")
		p.SetLineJoinStyle("round")
		for _, st := range strokes {
			c := state.ParseColor(st.Color)
			p.SetDrawColor(int(c.R), int(c.G), int(c.B))
			p.SetLineWidth(float64(st.Width) * mmPerWidth)
			for i := 1; i < len(st.Points); i++ {
				x1, y1 := fit(st.Points[i-1])
				x2, y2 := fit(st.Points[i])
				p.Line(x1, y1, x2, y2)
			}
		}
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// PDFFile is PDF written to path.
func PDFFile(path, title string, strokes []state.Stroke) error {
	if path == "" {
		return errNoPath
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := PDF(f, title, strokes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fitTransform maps world points inside src onto dst, keeping the aspect
// ratio and centering the result.
func fitTransform(src, dst geom.Rect) func(state.Point) (float64, float64) {
	sw, sh := math.Max(src.Width(), 1e-9), math.Max(src.Height(), 1e-9)
	scale := math.Min(dst.Width()/sw, dst.Height()/sh)
	offX := dst.MinX + (dst.Width()-sw*scale)/2
	offY := dst.MinY + (dst.Height()-sh*scale)/2
	return func(pt state.Point) (float64, float64) {
		return offX + (pt.X-src.MinX)*scale, offY + (pt.Z-src.MinY)*scale
	}
}

var errNoPath = errors.New("export path is empty")
