package transport

// Geometry is the shared read-only set of bounding surfaces with their
// cached bounding boxes.
type Geometry struct {
	Surfaces []Surface
	boxes    []AABB
	bounded  []bool
}

func NewGeometry(surfaces []Surface) *Geometry {
	g := &Geometry{
		Surfaces: surfaces,
		boxes:    make([]AABB, len(surfaces)),
		bounded:  make([]bool, len(surfaces)),
	}
	for i := range surfaces {
		g.boxes[i] = surfaces[i].BoundingBox()
		g.bounded[i] = g.boxes[i].Bounded()
	}
	return g
}

func (g *Geometry) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Surfaces)
}

// nearestSurface returns the index of the first surface hit by the ray and
// its distance, or (-1, Infinity). last is the surface the particle sits on.
func (g *Geometry) nearestSurface(r Position, u Direction, last int) (int, Length) {
	best, bestD := -1, Infinity
	if g.Len() == 0 {
		return best, bestD
	}
	var rr rayRecips
	if UseAABB {
		rr = newRayRecips(u)
	}
	for i := range g.Surfaces {
		if UseAABB && g.bounded[i] && i != last {
			ok, tEnter := rayAABB(r, g.boxes[i], rr)
			if !ok || tEnter > bestD {
				continue
			}
		}
		if d := g.Surfaces[i].Distance(r, u, i == last); d < bestD {
			best, bestD = i, d
		}
	}
	return best, bestD
}
