// Package geom holds the pure 3D math behind the painter: vectors, rays,
// planes and the orbit camera. Nothing here knows about Fyne.
package geom

import "math"

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }

// Normalize returns the unit vector in the direction of a. The zero vector
// stays zero.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return a
	}
	return a.Scale(1 / l)
}

// Distance is the Euclidean distance between two points.
func Distance(a, b Vec3) float64 { return a.Sub(b).Len() }

// Ray is a half-line starting at Origin. Dir does not need to be normalized.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point Origin + t*Dir.
func (r Ray) At(t float64) Vec3 { return r.Origin.Add(r.Dir.Scale(t)) }

// Plane is the set of points p with Normal·p + Constant = 0.
type Plane struct {
	Normal   Vec3
	Constant float64
}

// HorizontalPlane is the plane y = height with an upward normal.
func HorizontalPlane(height float64) Plane {
	return Plane{Normal: V(0, 1, 0), Constant: -height}
}

// DistanceTo is the signed distance from p to the plane. Normal must be a
// unit vector.
func (pl Plane) DistanceTo(p Vec3) float64 {
	return pl.Normal.Dot(p) + pl.Constant
}

const parallelEpsilon = 1e-12

// IntersectPlane returns where r meets pl. It reports false when the ray is
// parallel to the plane (unless the origin already lies on it) or when the
// plane is behind the origin.
func IntersectPlane(r Ray, pl Plane) (Vec3, bool) {
	denom := pl.Normal.Dot(r.Dir)
	if math.Abs(denom) < parallelEpsilon {
		if pl.DistanceTo(r.Origin) == 0 {
			return r.Origin, true
		}
		return Vec3{}, false
	}
	t := -(r.Origin.Dot(pl.Normal) + pl.Constant) / denom
	if t < 0 {
		return Vec3{}, false
	}
	return r.At(t), true
}
