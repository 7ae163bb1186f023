package state

import (
	"encoding/json"
	"fmt"
	"image/color"
	"regexp"

	"Paint3D/internal/geom"
)

// Point is a recorded position on the drawing plane. It serializes as a
// three element array.
type Point struct{ X, Y, Z float64 }

func PointOf(v geom.Vec3) Point { return Point{X: v.X, Y: v.Y, Z: v.Z} }

func (p Point) Vec() geom.Vec3 { return geom.V(p.X, p.Y, p.Z) }

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.X, p.Y, p.Z})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var xyz [3]float64
	if err := json.Unmarshal(data, &xyz); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	p.X, p.Y, p.Z = xyz[0], xyz[1], xyz[2]
	return nil
}

// Stroke is one continuous freehand line.
type Stroke struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
	Color  string  `json:"color"` // #rrggbb
	Width  int     `json:"width"`
}

// Clone returns a copy that shares no memory with s.
func (s Stroke) Clone() Stroke {
	s.Points = append([]Point(nil), s.Points...)
	return s
}

func (s Stroke) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

func cloneStrokes(in []Stroke) []Stroke {
	out := make([]Stroke, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidColor reports whether c is a #rrggbb string.
func ValidColor(c string) bool { return hexColor.MatchString(c) }

// ParseColor turns a #rrggbb string into an opaque color. Invalid input
// falls back to black.
func ParseColor(c string) color.NRGBA {
	var r, g, b uint8
	if !ValidColor(c) {
		return color.NRGBA{A: 255}
	}
	fmt.Sscanf(c[1:], "%02x%02x%02x", &r, &g, &b)
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

type OpKind string

const (
	OpAppend  OpKind = "append"
	OpUndo    OpKind = "undo"
	OpClear   OpKind = "clear"
	OpReplace OpKind = "replace"
)

// Op describes one store mutation. Observers and share viewers receive
// these in order.
type Op struct {
	Kind    OpKind   `json:"kind"`
	Stroke  *Stroke  `json:"stroke,omitempty"`
	Strokes []Stroke `json:"strokes,omitempty"`
	Seq     uint64   `json:"seq"`
	Site    string   `json:"site"`
}
