package transport

import (
	"fmt"
	"math"
	"strings"

	"github.com/theodoreOnzGit/teh-o/internal/prng"
)

type Spectrum uint8

const (
	Monoenergetic Spectrum = iota
	MaxwellSpectrum
	WattSpectrum
)

func ParseSpectrum(s string) (Spectrum, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mono", "monoenergetic":
		return Monoenergetic, nil
	case "maxwell":
		return MaxwellSpectrum, nil
	case "watt":
		return WattSpectrum, nil
	}
	return 0, fmt.Errorf("%w: unknown spectrum %q", ErrConfig, s)
}

// Source is a point source of neutrons.
type Source struct {
	Origin    Position
	Direction Direction // used when Isotropic is false
	Isotropic bool

	Spectrum Spectrum
	Energy   float64 // eV, monoenergetic
	MaxwellT float64 // eV
	WattA    float64 // eV
	WattB    float64 // 1/eV

	dir Direction // cached unit direction
}

// NewSource validates the parameters and caches the unit direction.
func NewSource(s Source) (*Source, error) {
	if !s.Isotropic {
		d, err := s.Direction.Normalize()
		if err != nil {
			return nil, fmt.Errorf("source direction: %w", err)
		}
		s.dir = d
	}
	switch s.Spectrum {
	case Monoenergetic:
		if s.Energy == 0 {
			s.Energy = DefaultSourceEnergy
		}
		if !(s.Energy > 0) {
			return nil, fmt.Errorf("%w: source energy %g eV", ErrConfig, s.Energy)
		}
	case MaxwellSpectrum:
		if !(s.MaxwellT > 0) {
			return nil, fmt.Errorf("%w: maxwell temperature %g eV", ErrConfig, s.MaxwellT)
		}
	case WattSpectrum:
		if !(s.WattA > 0) || !(s.WattB > 0) {
			return nil, fmt.Errorf("%w: watt parameters a=%g b=%g", ErrConfig, s.WattA, s.WattB)
		}
	default:
		return nil, fmt.Errorf("%w: spectrum %d", ErrConfig, s.Spectrum)
	}
	return &s, nil
}

// Sample draws a birth direction and energy from seed.
func (s *Source) Sample(seed *uint64) (Direction, float64) {
	u := s.dir
	if s.Isotropic {
		u = isotropicDirection(prng.IsotropicMu(seed), prng.Uniform(-math.Pi, math.Pi, seed))
	}
	var e float64
	switch s.Spectrum {
	case MaxwellSpectrum:
		e = prng.Maxwell(s.MaxwellT, seed)
	case WattSpectrum:
		e = prng.Watt(s.WattA, s.WattB, seed)
	default:
		e = s.Energy
	}
	return u, e
}

// Initialize creates the particle for history id. Source sampling uses the
// particle's source stream so the tracking stream is left untouched.
func (s *Source) Initialize(id int64, master uint64) Particle {
	p := InitializeParticle(id, master)
	p.R = s.Origin
	p.U, p.E = s.Sample(&p.Seeds[prng.StreamSource])
	return p
}

func isotropicDirection(mu, phi float64) Direction {
	st := math.Sqrt(math.Max(0, 1-mu*mu))
	return Direction{st * math.Cos(phi), st * math.Sin(phi), mu}
}
