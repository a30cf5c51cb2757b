package transport

import "math"

const (
	// Coincident is the |f(r)| below which a point is treated as lying on a surface.
	Coincident = 1e-12
	// xsTolerance bounds |Σs+Σa-Σt| relative to Σt.
	xsTolerance = 1e-12

	DefaultHistories    = 1000
	DefaultSeed         = 1
	DefaultMaxEvents    = 1_000_000
	DefaultTemperature  = 294.0 // K
	DefaultSourceEnergy = 2.0e6 // eV
)

// Infinity is the distance reported when a ray never reaches a surface.
var Infinity = Length(math.Inf(1))
