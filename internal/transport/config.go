package transport

import (
	"fmt"
	"runtime"
	"sort"
	"time"

	"gopkg.in/gcfg.v1"
)

const ExampleConfigFile = `[Settings]

#######################
# Required Parameters #
#######################

# Number of source particles to transport.
Histories = 1000

#######################
# Optional Parameters #
#######################

# Root seed of the random number streams. Default is 1.
# Seed = 1
# Number of worker goroutines. Default is the number of CPUs.
# Workers = 8
# Histories exceeding this many events are killed and counted as lost.
# MaxEvents = 1000000
# Particles born below this energy (eV) are killed immediately.
# EnergyCutoff = 0
# Nuclear data temperature in K.
# Temperature = 294
# One of: angle-sum | isotropic
# ScatterModel = angle-sum
# Wall-clock budget for the run, e.g. 30s. Unset means no limit.
# TimeBudget = 30s

[Material]
Name = fuel

[Nuclide "U235"]
# Either Density (g/cm3) with MolarMass (g/mol), or AtomDensity (atoms/cm3).
Density = 19.1
MolarMass = 235
# Microscopic cross sections in barns. Fission is part of Absorption.
Absorption = 1.65
Scatter = 2.839
# Fission = 1.4
# Nu = 2.43

# Surfaces are optional; without them the medium is infinite.
# Kind is one of: plane | x-plane | y-plane | z-plane | sphere |
# x-cylinder | y-cylinder | z-cylinder
# Boundary is one of: transmission | vacuum | reflective
# [Surface "outer"]
# Kind = sphere
# X0 = 0
# Y0 = 0
# Z0 = 0
# R = 10
# Boundary = vacuum

[Source]
# X = 0
# Y = 0
# Z = 0
# U = 1
# V = 0
# W = 0
# Isotropic = false
# One of: mono | maxwell | watt
# Spectrum = mono
# Energy = 2e6
# MaxwellT = 1.2895e6
# WattA = 0.988e6
# WattB = 2.249e-6

# [Mesh]
# LowerX = -10
# LowerY = -10
# LowerZ = -10
# UpperX = 10
# UpperY = 10
# UpperZ = 10
# Nx = 20
# Ny = 20
# Nz = 20`

type SettingsConfig struct {
	// Required
	Histories int64

	// Optional
	Seed         int64
	Workers      int
	MaxEvents    int
	EnergyCutoff float64
	Temperature  float64
	ScatterModel string
	TimeBudget   string

	scatter ScatterModel
	budget  time.Duration
}

func (con *SettingsConfig) CheckInit() error {
	if con.Histories <= 0 {
		return fmt.Errorf("Need to specify a positive Histories in [Settings], got %d.", con.Histories)
	}
	if con.Seed < 0 {
		return fmt.Errorf("Seed must be non-negative, but is %d.", con.Seed)
	}
	if con.Workers <= 0 {
		con.Workers = runtime.NumCPU()
	}
	if con.MaxEvents <= 0 {
		con.MaxEvents = DefaultMaxEvents
	}
	if con.EnergyCutoff < 0 {
		return fmt.Errorf("EnergyCutoff must be non-negative, but is %g.", con.EnergyCutoff)
	}
	if con.Temperature <= 0 {
		return fmt.Errorf("Temperature must be positive, but is %g.", con.Temperature)
	}
	var err error
	if con.scatter, err = ParseScatterModel(con.ScatterModel); err != nil {
		return err
	}
	if con.TimeBudget != "" {
		if con.budget, err = time.ParseDuration(con.TimeBudget); err != nil {
			return fmt.Errorf("Invalid TimeBudget %q: %w", con.TimeBudget, err)
		}
	}
	return nil
}

type MaterialConfig struct {
	Name string
}

type NuclideConfig struct {
	// Required
	Absorption, Scatter float64

	// One of Density+MolarMass or AtomDensity is required.
	Density, MolarMass float64
	AtomDensity        float64

	// Optional
	Fission float64
	Nu      float64

	Name string
}

func (nc *NuclideConfig) CheckInit(name string) error {
	nc.Name = name
	if nc.Absorption < 0 || nc.Scatter < 0 || nc.Fission < 0 {
		return fmt.Errorf(
			"%w: Nuclide '%s' has a negative cross section (absorption=%g, scatter=%g, fission=%g)",
			ErrNegativeCrossSection, name, nc.Absorption, nc.Scatter, nc.Fission,
		)
	}
	if nc.Absorption+nc.Scatter == 0 {
		return fmt.Errorf("%w: Nuclide '%s' has zero total cross section", ErrZeroCrossSection, name)
	}
	if nc.AtomDensity == 0 && (nc.Density == 0 || nc.MolarMass == 0) {
		return fmt.Errorf(
			"Nuclide '%s' needs either AtomDensity or both Density and MolarMass.", name,
		)
	}
	if nc.Fission > 0 && nc.Nu == 0 {
		nc.Nu = 2.43
	}
	return nil
}

// Register stores the nuclide's cross sections in provider at temperatureK.
func (nc *NuclideConfig) Register(provider *ConstantXS, temperatureK int) {
	provider.Set(nc.Name, MTAbsorption, temperatureK, MicroXS(nc.Absorption))
	provider.Set(nc.Name, MTElastic, temperatureK, MicroXS(nc.Scatter))
	if nc.Fission > 0 {
		provider.Set(nc.Name, MTFission, temperatureK, MicroXS(nc.Fission))
	}
}

func (nc *NuclideConfig) NumberDensity() (NumberDensity, error) {
	if nc.AtomDensity != 0 {
		return NumberDensity(nc.AtomDensity), nil
	}
	d, err := AtomDensity(nc.Density, nc.MolarMass)
	if err != nil {
		return 0, fmt.Errorf("nuclide %q: %w", nc.Name, err)
	}
	return d, nil
}

type SurfaceConfig struct {
	// Required
	Kind string

	// Coefficients, used according to Kind.
	A, B, C, D float64
	X0, Y0, Z0 float64
	R          float64

	// Optional
	Boundary string

	Name string
}

func (sc *SurfaceConfig) CheckInit(name string) error {
	sc.Name = name
	if sc.Kind == "" {
		return fmt.Errorf("Need to specify a Kind for Surface '%s'.", name)
	}
	return nil
}

// Surface builds the runtime surface.
func (sc *SurfaceConfig) Surface() (Surface, error) {
	kind, err := ParseKind(sc.Kind)
	if err != nil {
		return Surface{}, fmt.Errorf("surface %q: %w", sc.Name, err)
	}
	bc, err := ParseBoundary(sc.Boundary)
	if err != nil {
		return Surface{}, fmt.Errorf("surface %q: %w", sc.Name, err)
	}
	center := Position{Length(sc.X0), Length(sc.Y0), Length(sc.Z0)}

	var s Surface
	switch kind {
	case KindPlane:
		s, err = NewPlane(sc.A, sc.B, sc.C, sc.D)
	case KindXPlane:
		s, err = NewAxisPlane(0, Length(sc.X0))
	case KindYPlane:
		s, err = NewAxisPlane(1, Length(sc.Y0))
	case KindZPlane:
		s, err = NewAxisPlane(2, Length(sc.Z0))
	case KindSphere:
		s, err = NewSphere(center, Length(sc.R))
	default:
		s, err = NewAxisCylinder(int(kind-KindXCylinder), center, Length(sc.R))
	}
	if err != nil {
		return Surface{}, fmt.Errorf("surface %q: %w", sc.Name, err)
	}
	s.Name = sc.Name
	s.Boundary = bc
	return s, nil
}

type SourceConfig struct {
	X, Y, Z   float64
	U, V, W   float64
	Isotropic bool
	Spectrum  string
	Energy    float64
	MaxwellT  float64
	WattA     float64
	WattB     float64
}

func (sc *SourceConfig) Source() (*Source, error) {
	sp, err := ParseSpectrum(sc.Spectrum)
	if err != nil {
		return nil, err
	}
	dir := Direction{sc.U, sc.V, sc.W}
	if dir == (Direction{}) {
		dir = Direction{1, 0, 0}
	}
	return NewSource(Source{
		Origin:    Position{Length(sc.X), Length(sc.Y), Length(sc.Z)},
		Direction: dir,
		Isotropic: sc.Isotropic,
		Spectrum:  sp,
		Energy:    sc.Energy,
		MaxwellT:  sc.MaxwellT,
		WattA:     sc.WattA,
		WattB:     sc.WattB,
	})
}

type MeshConfig struct {
	LowerX, LowerY, LowerZ float64
	UpperX, UpperY, UpperZ float64
	Nx, Ny, Nz             int
}

func (mc *MeshConfig) Enabled() bool { return mc.Nx != 0 || mc.Ny != 0 || mc.Nz != 0 }

func (mc *MeshConfig) Mesh() (*Mesh, error) {
	return NewMesh(
		Position{Length(mc.LowerX), Length(mc.LowerY), Length(mc.LowerZ)},
		Position{Length(mc.UpperX), Length(mc.UpperY), Length(mc.UpperZ)},
		mc.Nx, mc.Ny, mc.Nz,
	)
}

// Config is the whole run configuration file.
type Config struct {
	Settings SettingsConfig
	Material MaterialConfig
	Nuclide  map[string]*NuclideConfig
	Surface  map[string]*SurfaceConfig
	Source   SourceConfig
	Mesh     MeshConfig
}

// DefaultConfig returns a Config with every optional value filled in.
func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			Histories:   DefaultHistories,
			Seed:        DefaultSeed,
			MaxEvents:   DefaultMaxEvents,
			Temperature: DefaultTemperature,
		},
		Material: MaterialConfig{Name: "material"},
		Source:   SourceConfig{Energy: DefaultSourceEnergy},
	}
}

// ReadConfig parses and validates a run configuration file.
func ReadConfig(fname string) (*Config, error) {
	con := DefaultConfig()
	if err := gcfg.ReadFileInto(con, fname); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, fname, err)
	}
	return con, con.CheckInit()
}

// ParseConfig is ReadConfig for in-memory text.
func ParseConfig(text string) (*Config, error) {
	con := DefaultConfig()
	if err := gcfg.ReadStringInto(con, text); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return con, con.CheckInit()
}

func (con *Config) CheckInit() error {
	if err := con.Settings.CheckInit(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if len(con.Nuclide) == 0 {
		return fmt.Errorf("%w: at least one [Nuclide \"name\"] section is required", ErrConfig)
	}
	for name, nc := range con.Nuclide {
		if err := nc.CheckInit(name); err != nil {
			return fmt.Errorf("%w: %w", ErrConfig, err)
		}
	}
	for name, sc := range con.Surface {
		if err := sc.CheckInit(name); err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}
	return nil
}

// sortedKeys gives a stable build order for gcfg subsections.
func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Problem builds the validated runtime inputs of a run.
func (con *Config) Problem() (*Problem, error) {
	temperatureK := int(con.Settings.Temperature + 0.5)
	provider := NewConstantXS()
	for _, nc := range con.Nuclide {
		nc.Register(provider, temperatureK)
	}

	src, err := con.Source.Source()
	if err != nil {
		return nil, err
	}

	mat := Material{Name: con.Material.Name}
	for _, name := range sortedKeys(con.Nuclide) {
		nc := con.Nuclide[name]
		density, err := nc.NumberDensity()
		if err != nil {
			return nil, err
		}
		n, err := NuclideFromProvider(provider, name, density, nc.Nu, temperatureK, src.Energy)
		if err != nil {
			return nil, err
		}
		mat.Nuclides = append(mat.Nuclides, n)
	}
	xs, err := mat.Macro()
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", mat.Name, err)
	}

	surfaces := make([]Surface, 0, len(con.Surface))
	for _, name := range sortedKeys(con.Surface) {
		s, err := con.Surface[name].Surface()
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, s)
	}

	p := &Problem{
		Material:   mat,
		XS:         xs,
		Geometry:   NewGeometry(surfaces),
		Source:     src,
		Histories:  con.Settings.Histories,
		Seed:       uint64(con.Settings.Seed),
		Workers:    con.Settings.Workers,
		TimeBudget: con.Settings.budget,
		Walk: WalkOptions{
			Scatter:      con.Settings.scatter,
			MaxEvents:    con.Settings.MaxEvents,
			EnergyCutoff: con.Settings.EnergyCutoff,
		},
	}
	if con.Mesh.Enabled() {
		if p.Mesh, err = con.Mesh.Mesh(); err != nil {
			return nil, err
		}
	}
	return p, nil
}
