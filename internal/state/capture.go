package state

import (
	"github.com/google/uuid"

	"Paint3D/internal/geom"
)

// CaptureOptions configures a Capture.
type CaptureOptions struct {
	Plane       geom.Plane
	MinDistance float64 // a new point must be farther than this from the last one
	Color       string
	Width       int
	MinWidth    int
	MaxWidth    int
}

func DefaultCaptureOptions() CaptureOptions {
	return CaptureOptions{
		Plane:       geom.HorizontalPlane(0),
		MinDistance: 0.1,
		Color:       "#ff6b6b",
		Width:       3,
		MinWidth:    1,
		MaxWidth:    10,
	}
}

// Capture turns a pointer drag into a stroke on the drawing plane and
// hands it to the store when the drag ends. It is driven from the UI event
// goroutine and is not safe for concurrent use.
type Capture struct {
	opts   CaptureOptions
	store  *Store
	open   *Stroke
	cursor geom.Vec3
	newID  func() string
}

func NewCapture(store *Store, opts CaptureOptions) *Capture {
	c := &Capture{
		opts:  opts,
		store: store,
		newID: uuid.NewString,
	}
	if !ValidColor(c.opts.Color) {
		c.opts.Color = DefaultCaptureOptions().Color
	}
	c.opts.Width = geom.ClampInt(c.opts.Width, c.opts.MinWidth, c.opts.MaxWidth)
	return c
}

// SetColor changes the color of the next stroke. Invalid colors are
// ignored and reported as false.
func (c *Capture) SetColor(hex string) bool {
	if !ValidColor(hex) {
		return false
	}
	c.opts.Color = hex
	return true
}

func (c *Capture) Color() string { return c.opts.Color }

// SetWidth changes the width of the next stroke, clamped to the bounds.
func (c *Capture) SetWidth(w int) {
	c.opts.Width = geom.ClampInt(w, c.opts.MinWidth, c.opts.MaxWidth)
}

func (c *Capture) Width() int { return c.opts.Width }

func (c *Capture) Plane() geom.Plane { return c.opts.Plane }

// Cursor is the last point where the pointer met the plane.
func (c *Capture) Cursor() geom.Vec3 { return c.cursor }

func (c *Capture) Drawing() bool { return c.open != nil }

// Begin starts a stroke where r meets the plane. A ray that misses the
// plane starts nothing.
func (c *Capture) Begin(r geom.Ray) bool {
	p, ok := geom.IntersectPlane(r, c.opts.Plane)
	if !ok {
		return false
	}
	c.BeginAt(PointOf(p))
	return true
}

// BeginAt starts a stroke at p with the current color and width.
func (c *Capture) BeginAt(p Point) {
	c.cursor = p.Vec()
	c.open = &Stroke{
		ID:     c.newID(),
		Points: []Point{p},
		Color:  c.opts.Color,
		Width:  c.opts.Width,
	}
}

// Move follows the pointer ray. It reports whether a point was added to
// the open stroke.
func (c *Capture) Move(r geom.Ray) bool {
	p, ok := geom.IntersectPlane(r, c.opts.Plane)
	if !ok {
		return false
	}
	return c.MoveTo(PointOf(p))
}

// MoveTo updates the cursor and, while drawing, appends p if it is far
// enough from the last recorded point.
func (c *Capture) MoveTo(p Point) bool {
	c.cursor = p.Vec()
	if c.open == nil {
		return false
	}
	last, _ := c.open.Last()
	if geom.Distance(last.Vec(), p.Vec()) <= c.opts.MinDistance {
		return false
	}
	c.open.Points = append(c.open.Points, p)
	return true
}

// End closes the open stroke into the store if it has at least two points
// and discards it otherwise. It reports whether a stroke was stored.
func (c *Capture) End() bool {
	open := c.open
	c.open = nil
	if open == nil || len(open.Points) < 2 {
		return false
	}
	c.store.Append(*open)
	return true
}

// Current returns a copy of the stroke being drawn, for preview.
func (c *Capture) Current() (Stroke, bool) {
	if c.open == nil {
		return Stroke{}, false
	}
	return c.open.Clone(), true
}
