package transport

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// ENDF reaction identifiers.
const (
	MTTotal      = 1
	MTElastic    = 2
	MTFission    = 18
	MTAbsorption = 27
	MTCapture    = 102
)

// EnergyDatasetPath and ReactionDatasetPath locate datasets inside an
// HDF5 nuclear data library. MT numbers are zero padded to three digits.
func EnergyDatasetPath(nuclide string, temperatureK int) string {
	return fmt.Sprintf("/%s/energy/%dK", nuclide, temperatureK)
}

func ReactionDatasetPath(nuclide string, mt int, temperatureK int) string {
	return fmt.Sprintf("/%s/reactions/reaction_%03d/%dK/xs", nuclide, mt, temperatureK)
}

// XSProvider supplies tabulated microscopic cross sections. Reading nuclear
// data files happens behind this interface.
type XSProvider interface {
	Lookup(nuclide string, mt int, temperatureK int) (energy []float64, xs []MicroXS, err error)
}

// ConstantXS is an in-memory provider keyed by dataset path.
type ConstantXS struct {
	mu     sync.RWMutex
	tables map[string]xsTable
}

type xsTable struct {
	energy []float64
	xs     []MicroXS
}

func NewConstantXS() *ConstantXS {
	return &ConstantXS{tables: make(map[string]xsTable)}
}

// Set stores a single value valid at all energies.
func (c *ConstantXS) Set(nuclide string, mt int, temperatureK int, xs MicroXS) {
	c.SetTable(nuclide, mt, temperatureK, []float64{0}, []MicroXS{xs})
}

// SetTable stores a table; energy must be ascending.
func (c *ConstantXS) SetTable(nuclide string, mt int, temperatureK int, energy []float64, xs []MicroXS) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[ReactionDatasetPath(nuclide, mt, temperatureK)] = xsTable{energy: energy, xs: xs}
}

func (c *ConstantXS) Lookup(nuclide string, mt int, temperatureK int) ([]float64, []MicroXS, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[ReactionDatasetPath(nuclide, mt, temperatureK)]
	if !ok {
		return nil, nil, fmt.Errorf("no data at %s", ReactionDatasetPath(nuclide, mt, temperatureK))
	}
	return t.energy, t.xs, nil
}

// MicroAt returns the tabulated value at the last grid point not above e.
// Values are piecewise constant between grid points.
func MicroAt(energy []float64, xs []MicroXS, e float64) (MicroXS, error) {
	if len(energy) == 0 || len(energy) != len(xs) {
		return 0, fmt.Errorf("%w: energy grid has %d points for %d values", ErrConfig, len(energy), len(xs))
	}
	i := sort.SearchFloat64s(energy, math.Nextafter(e, math.Inf(1))) - 1
	if i < 0 {
		i = 0
	}
	return xs[i], nil
}

// NuclideFromProvider builds a Nuclide by looking up absorption (MT 27),
// elastic scatter (MT 2) and fission (MT 18) at energy e. A missing fission
// table means a non-fissile nuclide.
func NuclideFromProvider(p XSProvider, name string, density NumberDensity, nu float64, temperatureK int, e float64) (Nuclide, error) {
	n := Nuclide{Name: name, Density: density, Nu: nu}
	for _, ch := range []struct {
		mt       int
		dst      *MicroXS
		optional bool
	}{
		{MTAbsorption, &n.Absorption, false},
		{MTElastic, &n.Scatter, false},
		{MTFission, &n.Fission, true},
	} {
		grid, xs, err := p.Lookup(name, ch.mt, temperatureK)
		if err != nil {
			if ch.optional {
				continue
			}
			return n, fmt.Errorf("nuclide %q: %w", name, err)
		}
		if *ch.dst, err = MicroAt(grid, xs, e); err != nil {
			return n, fmt.Errorf("nuclide %q MT %d: %w", name, ch.mt, err)
		}
	}
	return n, n.validate()
}
