package transport

import (
	"fmt"
	"math"
)

// Length is measured in cm.
type Length float64

// Area is measured in cm^2.
type Area float64

// InverseLength is measured in 1/cm.
type InverseLength float64

// MacroXS is a macroscopic cross section (interaction probability per cm).
type MacroXS = InverseLength

// MicroXS is a microscopic cross section in barns.
type MicroXS float64

// NumberDensity is measured in atoms/cm^3.
type NumberDensity float64

const (
	Avogadro  = 6.02214076e23 // 1/mol
	BarnToCm2 = 1e-24
)

func (l Length) Mul(o Length) Area { return Area(float64(l) * float64(o)) }
func (a Area) Sqrt() Length        { return Length(math.Sqrt(float64(a))) }

// Macro converts a microscopic cross section into a macroscopic one.
func (m MicroXS) Macro(n NumberDensity) MacroXS {
	return MacroXS(float64(m) * BarnToCm2 * float64(n))
}

// MeanFreePath returns 1/Σ.
func (s InverseLength) MeanFreePath() (Length, error) {
	if !(s > 0) || math.IsInf(float64(s), 0) {
		return 0, fmt.Errorf("%w: mean free path of Σ=%g", ErrZeroCrossSection, float64(s))
	}
	return Length(1 / float64(s)), nil
}

// AtomDensity converts a mass density (g/cm^3) and molar mass (g/mol) into
// an atom number density.
func AtomDensity(massDensity, molarMass float64) (NumberDensity, error) {
	if !(massDensity > 0) || !(molarMass > 0) || !isFinite(massDensity) || !isFinite(molarMass) {
		return 0, fmt.Errorf("%w: density=%g g/cm3, molar mass=%g g/mol", ErrConfig, massDensity, molarMass)
	}
	return NumberDensity(massDensity * Avogadro / molarMass), nil
}
