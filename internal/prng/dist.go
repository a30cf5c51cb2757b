package prng

import "math"

// Uniform samples U(a, b).
func Uniform(a, b float64, seed *uint64) float64 {
	return a + (b-a)*Draw(seed)
}

// Maxwell samples a Maxwellian energy spectrum with temperature T (energy units).
func Maxwell(T float64, seed *uint64) float64 {
	r1 := Draw(seed)
	r2 := Draw(seed)
	r3 := Draw(seed)
	c := math.Cos(math.Pi / 2 * r3)
	return -T * (math.Log(r1) + math.Log(r2)*c*c)
}

// Watt samples the Watt fission spectrum with parameters a and b.
func Watt(a, b float64, seed *uint64) float64 {
	w := Maxwell(a, seed)
	return w + 0.25*a*a*b + Uniform(-1, 1, seed)*math.Sqrt(a*a*b*w)
}

// Normal samples N(mean, stdev^2) with the Marsaglia polar method.
func Normal(mean, stdev float64, seed *uint64) float64 {
	var x, r2 float64
	for {
		x = Uniform(-1, 1, seed)
		y := Uniform(-1, 1, seed)
		r2 = x*x + y*y
		if r2 <= 1 && r2 != 0 {
			break
		}
	}
	z := math.Sqrt(-2 * math.Log(r2) / r2)
	return mean + stdev*x*z
}

// Muir samples the Gaussian fusion spectrum centred on e0 for a reactant
// mass ratio and ion temperature kT.
func Muir(e0, massRatio, kT float64, seed *uint64) float64 {
	return Normal(e0, math.Sqrt(4*e0*kT/massRatio), seed)
}

// OpenUnit is the largest value below 1 in the (0, 1) reaction and
// flight-distance draws.
const OpenUnit = 1 - 0x1p-52

// Exponential samples a free path with the given rate: -ln(xi)/rate.
func Exponential(rate float64, seed *uint64) float64 {
	return -math.Log(Uniform(0, OpenUnit, seed)) / rate
}

// IsotropicMu samples a scattering cosine uniformly on [-1, 1).
func IsotropicMu(seed *uint64) float64 {
	return 2*Draw(seed) - 1
}
