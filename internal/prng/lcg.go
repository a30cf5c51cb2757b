// Package prng implements the 64-bit linear congruential stream used by the
// transport engine together with logarithmic skip-ahead and per-particle stream
// seeding. There is no global generator: every draw advances a seed owned by
// the caller.
package prng

import "math"

const (
	// Mult and Add define seed' = Mult*seed + Add (mod 2^64).
	Mult uint64 = 6364136223846793005
	Add  uint64 = 1442695040888963407

	// Stride is the number of draws reserved for one particle history.
	Stride uint64 = 152917

	permuteMult uint64 = 12605985483714917081
)

// Independent streams carried by every particle.
const (
	StreamTracking = iota
	StreamSource
	StreamURR
	StreamVolume
	StreamPhoton
	NumStreams
)

// Draw advances *seed by one step and returns a uniform variate in [0, 1].
// The upper end is reached only when the permuted word is within 1024 of
// 2^64 and rounds up to it in float64, about once in 2^54 draws.
func Draw(seed *uint64) float64 {
	*seed = Mult*(*seed) + Add
	s := *seed
	word := ((s >> ((s >> 59) + 5)) ^ s) * permuteMult
	result := (word >> 43) ^ word
	return math.Ldexp(float64(result), -64)
}

// FutureSeed returns the seed reached after n advances from seed, in O(log n).
func FutureSeed(n, seed uint64) uint64 {
	g, c := Mult, Add
	gNew, cNew := uint64(1), uint64(0)
	for n > 0 {
		if n&1 == 1 {
			gNew *= g
			cNew = cNew*g + c
		}
		c *= g + 1
		g *= g
		n >>= 1
	}
	return gNew*seed + cNew
}

// InitSeed returns the starting seed of stream `offset` for history id.
func InitSeed(id int64, offset int, master uint64) uint64 {
	return FutureSeed(uint64(id)*Stride, master+uint64(offset))
}

// InitParticleSeeds returns the starting seeds of all streams for history id.
func InitParticleSeeds(id int64, master uint64) [NumStreams]uint64 {
	var seeds [NumStreams]uint64
	for i := 0; i < NumStreams; i++ {
		seeds[i] = InitSeed(id, i, master)
	}
	return seeds
}

// Stream is a value wrapper around one seed for callers that prefer methods.
type Stream struct {
	seed uint64
}

func NewStream(seed uint64) Stream { return Stream{seed: seed} }

func (s *Stream) Next() float64    { return Draw(&s.seed) }
func (s *Stream) Skip(n uint64)    { s.seed = FutureSeed(n, s.seed) }
func (s *Stream) Seed() uint64     { return s.seed }
func (s *Stream) SeedPtr() *uint64 { return &s.seed }
