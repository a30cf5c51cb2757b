package transport

import "math"

// AABB is an axis-aligned bounding box. Unbounded directions use ±Inf.
type AABB struct {
	Min, Max Position
}

var everywhere = AABB{
	Min: Position{-Infinity, -Infinity, -Infinity},
	Max: Position{Infinity, Infinity, Infinity},
}

// BoundingBox returns a box containing every point of the surface.
func (s *Surface) BoundingBox() AABB {
	switch s.Kind {
	case KindSphere:
		c, r := s.Center, s.R
		return AABB{
			Min: Position{c.X - r, c.Y - r, c.Z - r},
			Max: Position{c.X + r, c.Y + r, c.Z + r},
		}
	case KindXCylinder, KindYCylinder, KindZCylinder:
		ax := s.axis()
		lo := s.Center.array()
		hi := s.Center.array()
		for i := 0; i < 3; i++ {
			if i == ax {
				lo[i], hi[i] = math.Inf(-1), math.Inf(1)
				continue
			}
			lo[i] -= float64(s.R)
			hi[i] += float64(s.R)
		}
		return AABB{
			Min: Position{Length(lo[0]), Length(lo[1]), Length(lo[2])},
			Max: Position{Length(hi[0]), Length(hi[1]), Length(hi[2])},
		}
	case KindXPlane, KindYPlane, KindZPlane:
		b := everywhere
		switch s.Kind {
		case KindXPlane:
			b.Min.X, b.Max.X = Length(s.D), Length(s.D)
		case KindYPlane:
			b.Min.Y, b.Max.Y = Length(s.D), Length(s.D)
		default:
			b.Min.Z, b.Max.Z = Length(s.D), Length(s.D)
		}
		return b
	}
	return everywhere
}

// Bounded reports whether the box is finite along at least one axis.
func (b AABB) Bounded() bool {
	return isFinite(float64(b.Min.X)) || isFinite(float64(b.Max.X)) ||
		isFinite(float64(b.Min.Y)) || isFinite(float64(b.Max.Y)) ||
		isFinite(float64(b.Min.Z)) || isFinite(float64(b.Max.Z))
}

func (b AABB) Contains(p Position) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

type rayRecips struct {
	invX, invY, invZ float64
	parX, parY, parZ bool // parallel flags (|u| < eps)
}

func newRayRecips(u Direction) rayRecips {
	const eps = 1e-300
	var rr rayRecips
	rr.parX = math.Abs(u.X) < eps
	rr.parY = math.Abs(u.Y) < eps
	rr.parZ = math.Abs(u.Z) < eps
	if !rr.parX {
		rr.invX = 1 / u.X
	}
	if !rr.parY {
		rr.invY = 1 / u.Y
	}
	if !rr.parZ {
		rr.invZ = 1 / u.Z
	}
	return rr
}

// slab clips [tmin, tmax] against one axis; ok=false when the ray misses.
func slab(o, lo, hi, inv float64, parallel bool, tmin, tmax float64) (float64, float64, bool) {
	if parallel {
		return tmin, tmax, o >= lo && o <= hi
	}
	t1 := (lo - o) * inv
	t2 := (hi - o) * inv
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if t1 > tmin {
		tmin = t1
	}
	if t2 < tmax {
		tmax = t2
	}
	return tmin, tmax, true
}

// rayAABB returns whether the ray from O meets the box ahead of it, and the
// entry distance (negative when O is inside).
func rayAABB(O Position, b AABB, rr rayRecips) (bool, Length) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	var ok bool

	if tmin, tmax, ok = slab(float64(O.X), float64(b.Min.X), float64(b.Max.X), rr.invX, rr.parX, tmin, tmax); !ok {
		return false, 0
	}
	if tmin, tmax, ok = slab(float64(O.Y), float64(b.Min.Y), float64(b.Max.Y), rr.invY, rr.parY, tmin, tmax); !ok {
		return false, 0
	}
	if tmin, tmax, ok = slab(float64(O.Z), float64(b.Min.Z), float64(b.Max.Z), rr.invZ, rr.parZ, tmin, tmax); !ok {
		return false, 0
	}

	if tmax < 0 || tmin > tmax {
		return false, 0
	}
	return true, Length(tmin)
}
