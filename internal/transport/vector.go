package transport

import (
	"fmt"
	"math"
)

// Position is a point in space, components in cm.
type Position struct {
	X, Y, Z Length
}

// Direction is a dimensionless 3-vector, nominally of unit length.
type Direction struct {
	X, Y, Z float64
}

// Position functions
func (a Position) Add(b Position) Position { return Position{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Position) Sub(b Position) Position { return Position{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (p Position) Scale(s float64) Position {
	return Position{p.X * Length(s), p.Y * Length(s), p.Z * Length(s)}
}

// Dot returns the dot product of two positions, an area.
func (a Position) Dot(b Position) Area {
	return a.X.Mul(b.X) + a.Y.Mul(b.Y) + a.Z.Mul(b.Z)
}

// Cross returns the cross product; each component carries cm^2.
func (a Position) Cross(b Position) [3]Area {
	return [3]Area{
		a.Y.Mul(b.Z) - a.Z.Mul(b.Y),
		a.Z.Mul(b.X) - a.X.Mul(b.Z),
		a.X.Mul(b.Y) - a.Y.Mul(b.X),
	}
}

// Norm returns the Euclidean distance from the origin.
func (p Position) Norm() Length { return p.Dot(p).Sqrt() }

// Move translates p by d along u.
func (p Position) Move(u Direction, d Length) Position { return p.Add(u.Displace(d)) }

// Axis returns the component along axis i (0=x, 1=y, 2=z).
func (p Position) Axis(i int) (Length, error) {
	switch i {
	case 0:
		return p.X, nil
	case 1:
		return p.Y, nil
	case 2:
		return p.Z, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrAxisOutOfRange, i)
}

func (p Position) array() [3]float64 { return [3]float64{float64(p.X), float64(p.Y), float64(p.Z)} }

// Direction functions
func (a Direction) Add(b Direction) Direction { return Direction{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Direction) Sub(b Direction) Direction { return Direction{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (v Direction) Mul(s float64) Direction   { return Direction{v.X * s, v.Y * s, v.Z * s} }

func (a Direction) Dot(b Direction) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func (a Direction) Cross(b Direction) Direction {
	return Direction{a.Y*b.Z - a.Z*b.Y, a.Z*b.X - a.X*b.Z, a.X*b.Y - a.Y*b.X}
}

// Len returns the Euclidean length of the vector.
func (v Direction) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns a unit-length copy of v.
func (v Direction) Normalize() (Direction, error) {
	l := v.Len()
	if l == 0 || !isFinite(l) {
		return v, ErrZeroDirection
	}
	if l == 1 {
		return v, nil
	}
	return Direction{v.X / l, v.Y / l, v.Z / l}, nil
}

// Displace scales the direction by a length, giving a displacement.
func (v Direction) Displace(l Length) Position {
	return Position{Length(v.X) * l, Length(v.Y) * l, Length(v.Z) * l}
}

// Axis returns the component along axis i (0=x, 1=y, 2=z).
func (v Direction) Axis(i int) (float64, error) {
	switch i {
	case 0:
		return v.X, nil
	case 1:
		return v.Y, nil
	case 2:
		return v.Z, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrAxisOutOfRange, i)
}

func (v Direction) array() [3]float64 { return [3]float64{v.X, v.Y, v.Z} }
