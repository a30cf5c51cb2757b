package transport

import (
	"fmt"
	"math"
	"strings"
)

// Kind tags the analytic form of a Surface.
type Kind uint8

const (
	KindPlane Kind = iota // Ax + By + Cz - D = 0
	KindXPlane
	KindYPlane
	KindZPlane
	KindSphere
	KindXCylinder
	KindYCylinder
	KindZCylinder
)

var kindNames = [...]string{"plane", "x-plane", "y-plane", "z-plane", "sphere", "x-cylinder", "y-cylinder", "z-cylinder"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind accepts the names printed by Kind.String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidSurface, s)
}

// Boundary is the condition applied when a particle reaches a surface.
type Boundary uint8

const (
	Transmission Boundary = iota
	Vacuum
	Reflective
)

func ParseBoundary(s string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "transmission":
		return Transmission, nil
	case "vacuum":
		return Vacuum, nil
	case "reflective", "reflect":
		return Reflective, nil
	}
	return 0, fmt.Errorf("%w: unknown boundary %q", ErrInvalidSurface, s)
}

func (b Boundary) String() string {
	switch b {
	case Vacuum:
		return "vacuum"
	case Reflective:
		return "reflective"
	}
	return "transmission"
}

// Surface is a tagged variant over the supported quadrics. Only the fields
// meaningful for Kind are set:
//
//	plane:        A, B, C, D
//	axis plane:   D (the intercept)
//	sphere:       Center, R
//	cylinder:     Center (the coordinate along the axis is ignored), R
type Surface struct {
	Name     string
	Kind     Kind
	A, B, C  float64
	D        float64
	Center   Position
	R        Length
	Boundary Boundary
}

func NewPlane(a, b, c, d float64) (Surface, error) {
	if a == 0 && b == 0 && c == 0 {
		return Surface{}, fmt.Errorf("%w: plane normal is zero", ErrInvalidSurface)
	}
	if !isFinite(a) || !isFinite(b) || !isFinite(c) || !isFinite(d) {
		return Surface{}, fmt.Errorf("%w: plane coefficients (%g, %g, %g, %g)", ErrInvalidSurface, a, b, c, d)
	}
	return Surface{Kind: KindPlane, A: a, B: b, C: c, D: d}, nil
}

// NewAxisPlane builds an x-, y- or z-plane at the given intercept.
func NewAxisPlane(axis int, x0 Length) (Surface, error) {
	if axis < 0 || axis > 2 {
		return Surface{}, fmt.Errorf("%w: %d", ErrAxisOutOfRange, axis)
	}
	if !isFinite(float64(x0)) {
		return Surface{}, fmt.Errorf("%w: plane intercept %g", ErrInvalidSurface, float64(x0))
	}
	return Surface{Kind: KindXPlane + Kind(axis), D: float64(x0)}, nil
}

func NewSphere(center Position, r Length) (Surface, error) {
	if err := checkQuadric(center, r); err != nil {
		return Surface{}, err
	}
	return Surface{Kind: KindSphere, Center: center, R: r}, nil
}

// NewAxisCylinder builds an infinite cylinder parallel to the given axis
// passing through center.
func NewAxisCylinder(axis int, center Position, r Length) (Surface, error) {
	if axis < 0 || axis > 2 {
		return Surface{}, fmt.Errorf("%w: %d", ErrAxisOutOfRange, axis)
	}
	if err := checkQuadric(center, r); err != nil {
		return Surface{}, err
	}
	return Surface{Kind: KindXCylinder + Kind(axis), Center: center, R: r}, nil
}

func checkQuadric(center Position, r Length) error {
	if !(r > 0) || !isFinite(float64(r)) {
		return fmt.Errorf("%w: radius must be > 0, got %g", ErrInvalidSurface, float64(r))
	}
	if !isFinite(float64(center.X)) || !isFinite(float64(center.Y)) || !isFinite(float64(center.Z)) {
		return fmt.Errorf("%w: center %+v", ErrInvalidSurface, center)
	}
	return nil
}

// axis returns the principal axis of an axis plane or cylinder.
func (s *Surface) axis() int {
	switch s.Kind {
	case KindXPlane, KindXCylinder:
		return 0
	case KindYPlane, KindYCylinder:
		return 1
	case KindZPlane, KindZCylinder:
		return 2
	}
	return -1
}

// Evaluate returns the implicit function f(r); f = 0 on the surface.
func (s *Surface) Evaluate(r Position) float64 {
	switch s.Kind {
	case KindPlane:
		return s.A*float64(r.X) + s.B*float64(r.Y) + s.C*float64(r.Z) - s.D
	case KindXPlane, KindYPlane, KindZPlane:
		return r.array()[s.axis()] - s.D
	case KindSphere:
		d := r.Sub(s.Center)
		return float64(d.Dot(d) - s.R.Mul(s.R))
	case KindXCylinder, KindYCylinder, KindZCylinder:
		a1, a2 := otherAxes(s.axis())
		p, c := r.array(), s.Center.array()
		x, y := p[a1]-c[a1], p[a2]-c[a2]
		return x*x + y*y - float64(s.R*s.R)
	}
	return math.NaN()
}

// Normal returns the (unnormalised) outward normal at r.
func (s *Surface) Normal(r Position) Direction {
	switch s.Kind {
	case KindPlane:
		return Direction{s.A, s.B, s.C}
	case KindXPlane:
		return Direction{1, 0, 0}
	case KindYPlane:
		return Direction{0, 1, 0}
	case KindZPlane:
		return Direction{0, 0, 1}
	case KindSphere:
		d := r.Sub(s.Center)
		return Direction{2 * float64(d.X), 2 * float64(d.Y), 2 * float64(d.Z)}
	case KindXCylinder, KindYCylinder, KindZCylinder:
		a1, a2 := otherAxes(s.axis())
		p, c := r.array(), s.Center.array()
		var n [3]float64
		n[a1] = 2 * (p[a1] - c[a1])
		n[a2] = 2 * (p[a2] - c[a2])
		return Direction{n[0], n[1], n[2]}
	}
	return Direction{}
}

// Sense reports whether r lies on the positive side. A point within
// Coincident of the surface takes the side u is heading into.
func (s *Surface) Sense(r Position, u Direction) bool {
	f := s.Evaluate(r)
	if math.Abs(f) < Coincident {
		return u.Dot(s.Normal(r)) > 0
	}
	return f > 0
}

// Distance returns the distance along u from r to the surface, or Infinity
// if the ray never reaches it. coincident tells the surface that r is known
// to lie on it (typically because the particle just crossed it).
func (s *Surface) Distance(r Position, u Direction, coincident bool) Length {
	u, err := u.Normalize()
	if err != nil {
		return Infinity
	}
	switch s.Kind {
	case KindPlane:
		f := s.Evaluate(r)
		proj := s.A*u.X + s.B*u.Y + s.C*u.Z
		if coincident || math.Abs(f) < Coincident || proj == 0 {
			return Infinity
		}
		return positive(-f / proj)
	case KindXPlane, KindYPlane, KindZPlane:
		i := s.axis()
		f := s.D - r.array()[i]
		ui := u.array()[i]
		if coincident || math.Abs(f) < Coincident || ui == 0 {
			return Infinity
		}
		return positive(f / ui)
	case KindSphere:
		d := r.Sub(s.Center)
		k := float64(d.X)*u.X + float64(d.Y)*u.Y + float64(d.Z)*u.Z
		c := s.Evaluate(r)
		return quadricRoot(1, k, c, coincident)
	case KindXCylinder, KindYCylinder, KindZCylinder:
		ax := s.axis()
		a1, a2 := otherAxes(ax)
		uv := u.array()
		a := 1 - uv[ax]*uv[ax]
		if a == 0 {
			return Infinity
		}
		p, cen := r.array(), s.Center.array()
		x, y := p[a1]-cen[a1], p[a2]-cen[a2]
		k := x*uv[a1] + y*uv[a2]
		c := x*x + y*y - float64(s.R*s.R)
		return quadricRoot(a, k, c, coincident)
	}
	return Infinity
}

// quadricRoot solves a*d^2 + 2k*d + c = 0 for the first crossing ahead of the
// ray. A discriminant of zero is a graze and does not count as a crossing.
func quadricRoot(a, k, c float64, coincident bool) Length {
	quad := k*k - a*c
	if quad <= 0 {
		return Infinity
	}
	switch {
	case coincident || math.Abs(c) < Coincident:
		if k >= 0 {
			return Infinity
		}
		return Length((-k + math.Sqrt(quad)) / a)
	case c < 0:
		return Length((-k + math.Sqrt(quad)) / a)
	}
	return positive((-k - math.Sqrt(quad)) / a)
}

func positive(d float64) Length {
	if d < 0 || !isFinite(d) {
		return Infinity
	}
	return Length(d)
}

func otherAxes(axis int) (int, int) {
	switch axis {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	}
	return 0, 1
}

// Reflect returns u specularly reflected about the surface normal at r.
func (s *Surface) Reflect(r Position, u Direction) Direction {
	n := s.Normal(r)
	nn := n.Dot(n)
	if nn == 0 {
		return u
	}
	out := u.Sub(n.Mul(2 * u.Dot(n) / nn))
	if v, err := out.Normalize(); err == nil {
		return v
	}
	return out
}

func (s Surface) String() string {
	switch s.Kind {
	case KindPlane:
		return fmt.Sprintf("%s %q (%g, %g, %g, %g) %s", s.Kind, s.Name, s.A, s.B, s.C, s.D, s.Boundary)
	case KindXPlane, KindYPlane, KindZPlane:
		return fmt.Sprintf("%s %q at %g %s", s.Kind, s.Name, s.D, s.Boundary)
	}
	return fmt.Sprintf("%s %q center=%+v r=%g %s", s.Kind, s.Name, s.Center, float64(s.R), s.Boundary)
}
