package geom

import "math"

const (
	maxPitch = 89 * math.Pi / 180
	nearClip = 1e-3
)

// OrbitCamera is a perspective camera circling Target. Yaw and Pitch are in
// radians; Pitch is measured from the horizontal plane.
type OrbitCamera struct {
	Target      Vec3
	Distance    float64
	Yaw         float64
	Pitch       float64
	FOV         float64 // vertical field of view, degrees
	MinDistance float64
	MaxDistance float64
}

// NewOrbitCamera places a camera at pos looking at target.
func NewOrbitCamera(pos, target Vec3, fov, minDist, maxDist float64) *OrbitCamera {
	d := pos.Sub(target)
	dist := d.Len()
	c := &OrbitCamera{
		Target:      target,
		Distance:    dist,
		FOV:         fov,
		MinDistance: minDist,
		MaxDistance: maxDist,
	}
	if dist > 0 {
		c.Yaw = math.Atan2(d.X, d.Z)
		c.Pitch = math.Asin(d.Y / dist)
	}
	c.clamp()
	return c
}

// Position is the eye point in world space.
func (c *OrbitCamera) Position() Vec3 {
	cp := math.Cos(c.Pitch)
	off := V(cp*math.Sin(c.Yaw), math.Sin(c.Pitch), cp*math.Cos(c.Yaw))
	return c.Target.Add(off.Scale(c.Distance))
}

// basis returns forward, right and up unit vectors.
func (c *OrbitCamera) basis() (f, r, u Vec3) {
	f = c.Target.Sub(c.Position()).Normalize()
	r = f.Cross(V(0, 1, 0)).Normalize()
	u = r.Cross(f)
	return f, r, u
}

// Ray returns the world-space ray through normalized device coordinates
// (ndcX, ndcY in [-1, 1], y up) for a viewport with the given aspect ratio.
func (c *OrbitCamera) Ray(ndcX, ndcY, aspect float64) Ray {
	f, r, u := c.basis()
	th := math.Tan(DegToRad(c.FOV) / 2)
	dir := f.Add(r.Scale(ndcX * th * aspect)).Add(u.Scale(ndcY * th))
	return Ray{Origin: c.Position(), Dir: dir.Normalize()}
}

// Project maps a world point to normalized device coordinates. It reports
// false for points behind the camera.
func (c *OrbitCamera) Project(p Vec3, aspect float64) (x, y float64, ok bool) {
	f, r, u := c.basis()
	d := p.Sub(c.Position())
	z := d.Dot(f)
	if z <= nearClip {
		return 0, 0, false
	}
	th := math.Tan(DegToRad(c.FOV) / 2)
	return d.Dot(r) / (z * th * aspect), d.Dot(u) / (z * th), true
}

// Orbit rotates the camera around the target.
func (c *OrbitCamera) Orbit(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch += dPitch
	c.clamp()
}

// Zoom multiplies the distance by factor, within the distance bounds.
func (c *OrbitCamera) Zoom(factor float64) {
	c.Distance *= factor
	c.clamp()
}

func (c *OrbitCamera) clamp() {
	if v, err := Clamp(c.Pitch, -maxPitch, maxPitch); err == nil {
		c.Pitch = v
	}
	if v, err := Clamp(c.Distance, c.MinDistance, c.MaxDistance); err == nil {
		c.Distance = v
	}
}

// NDC converts a position inside a w×h viewport (origin top-left, y down)
// to normalized device coordinates.
func NDC(px, py, w, h float64) (x, y float64) {
	return px/w*2 - 1, -(py/h)*2 + 1
}

// Viewport is the inverse of NDC.
func Viewport(x, y, w, h float64) (px, py float64) {
	return (x + 1) / 2 * w, (1 - y) / 2 * h
}
