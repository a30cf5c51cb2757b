package transport

import (
	"fmt"
	"math"
)

// Nuclide holds monoenergetic microscopic data for one nuclide in a material.
// Fission is a part of Absorption.
type Nuclide struct {
	Name       string
	Density    NumberDensity
	Absorption MicroXS
	Scatter    MicroXS
	Fission    MicroXS
	Nu         float64 // neutrons per fission
}

// Total is the microscopic total cross section.
func (n Nuclide) Total() MicroXS { return n.Absorption + n.Scatter }

func (n Nuclide) validate() error {
	for _, v := range []struct {
		name string
		xs   MicroXS
	}{{"absorption", n.Absorption}, {"scatter", n.Scatter}, {"fission", n.Fission}} {
		if v.xs < 0 || !isFinite(float64(v.xs)) {
			return fmt.Errorf("%w: nuclide %q %s=%g b", ErrNegativeCrossSection, n.Name, v.name, float64(v.xs))
		}
	}
	if n.Fission > n.Absorption {
		return fmt.Errorf("%w: nuclide %q fission %g b exceeds absorption %g b", ErrConfig, n.Name, float64(n.Fission), float64(n.Absorption))
	}
	if !(n.Density > 0) || !isFinite(float64(n.Density)) {
		return fmt.Errorf("%w: nuclide %q atom density %g", ErrConfig, n.Name, float64(n.Density))
	}
	if n.Nu < 0 {
		return fmt.Errorf("%w: nuclide %q nu=%g", ErrConfig, n.Name, n.Nu)
	}
	return nil
}

// Material is a homogeneous mixture of nuclides.
type Material struct {
	Name     string
	Nuclides []Nuclide
}

// CrossSections are the macroscopic cross sections seen by a particle.
type CrossSections struct {
	Total      MacroXS
	Scatter    MacroXS
	Absorption MacroXS
	NuFission  MacroXS
}

// Macro sums N_i * sigma_i over the material's nuclides.
func (m *Material) Macro() (CrossSections, error) {
	var xs CrossSections
	if len(m.Nuclides) == 0 {
		return xs, fmt.Errorf("%w: material %q has no nuclides", ErrConfig, m.Name)
	}
	for _, n := range m.Nuclides {
		if err := n.validate(); err != nil {
			return xs, err
		}
		xs.Total += n.Total().Macro(n.Density)
		xs.Scatter += n.Scatter.Macro(n.Density)
		xs.Absorption += n.Absorption.Macro(n.Density)
		xs.NuFission += MacroXS(n.Nu) * n.Fission.Macro(n.Density)
	}
	return xs, xs.Validate()
}

// Validate rejects cross sections that cannot drive a random walk.
func (xs CrossSections) Validate() error {
	for _, v := range []struct {
		name string
		s    MacroXS
	}{{"total", xs.Total}, {"scatter", xs.Scatter}, {"absorption", xs.Absorption}, {"nu-fission", xs.NuFission}} {
		if v.s < 0 || math.IsNaN(float64(v.s)) {
			return fmt.Errorf("%w: %s=%g /cm", ErrNegativeCrossSection, v.name, float64(v.s))
		}
	}
	if !(xs.Total > 0) || math.IsInf(float64(xs.Total), 0) {
		return fmt.Errorf("%w: total=%g /cm", ErrZeroCrossSection, float64(xs.Total))
	}
	if xs.Scatter > xs.Total || xs.Absorption > xs.Total {
		return fmt.Errorf("%w: scatter=%g /cm and absorption=%g /cm must not exceed total=%g /cm",
			ErrConfig, float64(xs.Scatter), float64(xs.Absorption), float64(xs.Total))
	}
	// Σt = Σs + Σa, up to summation rounding
	if math.Abs(float64(xs.Scatter+xs.Absorption-xs.Total)) > xsTolerance*float64(xs.Total) {
		return fmt.Errorf("%w: scatter+absorption=%g /cm differs from total=%g /cm",
			ErrConfig, float64(xs.Scatter+xs.Absorption), float64(xs.Total))
	}
	return nil
}

// ScatterProbability is Σs/Σt.
func (xs CrossSections) ScatterProbability() float64 {
	return float64(xs.Scatter / xs.Total)
}
