package geom

// Rect is an axis-aligned rectangle in some 2D projection of world space.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Pad grows the rectangle by p on every side.
func (r Rect) Pad(p float64) Rect {
	return Rect{r.MinX - p, r.MinY - p, r.MaxX + p, r.MaxY + p}
}

// TopDownBounds is the bounding box of points seen from above: X across,
// Z down. It reports false for an empty set.
func TopDownBounds(points []Vec3) (Rect, bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	r := Rect{points[0].X, points[0].Z, points[0].X, points[0].Z}
	for _, p := range points[1:] {
		if p.X < r.MinX {
			r.MinX = p.X
		}
		if p.X > r.MaxX {
			r.MaxX = p.X
		}
		if p.Z < r.MinY {
			r.MinY = p.Z
		}
		if p.Z > r.MaxY {
			r.MaxY = p.Z
		}
	}
	return r, true
}
