package transport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestExampleConfigParses(t *testing.T) {
	con, err := ParseConfig(ExampleConfigFile)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), con.Settings.Histories)
	assert.Equal(t, int64(DefaultSeed), con.Settings.Seed)
	assert.Equal(t, runtime.NumCPU(), con.Settings.Workers)
	assert.Equal(t, DefaultMaxEvents, con.Settings.MaxEvents)
	assert.Equal(t, ScatterAngleSum, con.Settings.scatter)
	assert.Zero(t, con.Settings.budget)
	assert.Equal(t, "fuel", con.Material.Name)
	require.Contains(t, con.Nuclide, "U235")
	assert.Equal(t, "U235", con.Nuclide["U235"].Name)
	assert.Empty(t, con.Surface)
	assert.False(t, con.Mesh.Enabled())

	p, err := con.Problem()
	require.NoError(t, err)
	n := 19.1 * Avogadro / 235
	assert.InEpsilon(t, 2.839e-24*n, float64(p.XS.Scatter), 1e-12)
	assert.InEpsilon(t, 1.65e-24*n, float64(p.XS.Absorption), 1e-12)
	assert.Zero(t, p.XS.NuFission)
	assert.Zero(t, p.Geometry.Len())
	assert.Nil(t, p.Mesh)
	assert.Equal(t, uint64(1), p.Seed)
	assert.Equal(t, Direction{1, 0, 0}, p.Source.dir)
	assert.Equal(t, DefaultSourceEnergy, p.Source.Energy)
}

const fullConfig = `
[Settings]
Histories = 300
Seed = 9
Workers = 2
MaxEvents = 5000
ScatterModel = isotropic
TimeBudget = 1m

[Material]
Name = oxide

[Nuclide "U235"]
Density = 19.1
MolarMass = 235
Absorption = 1.65
Scatter = 2.839
Fission = 1.4

[Nuclide "O16"]
AtomDensity = 4.0e22
Absorption = 0.0002
Scatter = 3.9

[Surface "outer"]
Kind = sphere
R = 4
Boundary = vacuum

[Surface "floor"]
Kind = z-plane
Z0 = -2
Boundary = reflective

[Source]
Isotropic = true
Spectrum = watt
WattA = 0.988e6
WattB = 2.249e-6

[Mesh]
LowerX = -4
LowerY = -4
LowerZ = -4
UpperX = 4
UpperY = 4
UpperZ = 4
Nx = 8
Ny = 8
Nz = 2
`

func TestFullConfig(t *testing.T) {
	con, err := ParseConfig(fullConfig)
	require.NoError(t, err)
	assert.Equal(t, 2.43, con.Nuclide["U235"].Nu, "nu defaults for fissile nuclides")
	assert.Zero(t, con.Nuclide["O16"].Nu)
	assert.Equal(t, time.Minute, con.Settings.budget)

	p, err := con.Problem()
	require.NoError(t, err)
	assert.Equal(t, "oxide", p.Material.Name)
	require.Len(t, p.Material.Nuclides, 2)
	// nuclides and surfaces are built in name order
	assert.Equal(t, "O16", p.Material.Nuclides[0].Name)
	assert.Equal(t, NumberDensity(4.0e22), p.Material.Nuclides[0].Density)
	require.Equal(t, 2, p.Geometry.Len())
	assert.Equal(t, "floor", p.Geometry.Surfaces[0].Name)
	assert.Equal(t, Reflective, p.Geometry.Surfaces[0].Boundary)
	assert.Equal(t, KindZPlane, p.Geometry.Surfaces[0].Kind)
	assert.Equal(t, KindSphere, p.Geometry.Surfaces[1].Kind)
	assert.Equal(t, Vacuum, p.Geometry.Surfaces[1].Boundary)
	assert.Greater(t, float64(p.XS.NuFission), 0.0)
	assert.Equal(t, ScatterIsotropic, p.Walk.Scatter)
	assert.Equal(t, 5000, p.Walk.MaxEvents)
	assert.Equal(t, WattSpectrum, p.Source.Spectrum)
	require.NotNil(t, p.Mesh)
	assert.Equal(t, 2, p.Mesh.Nz)

	res, err := Simulate(context.Background(), p)
	require.NoError(t, err)
	tl := res.Tally
	assert.Equal(t, int64(300), res.Completed)
	assert.Equal(t, tl.Histories, tl.Leakage+tl.Absorption+tl.Lost)
}

func TestConfigErrors(t *testing.T) {
	for name, text := range map[string]string{
		"no nuclide":       "[Settings]\nHistories = 10\n",
		"zero histories":   "[Settings]\nHistories = 0\n[Nuclide \"A\"]\nAtomDensity = 1e22\nScatter = 1\n",
		"negative seed":    "[Settings]\nSeed = -1\n[Nuclide \"A\"]\nAtomDensity = 1e22\nScatter = 1\n",
		"no density":       "[Nuclide \"A\"]\nScatter = 1\n",
		"zero xs":          "[Nuclide \"A\"]\nAtomDensity = 1e22\n",
		"negative xs":      "[Nuclide \"A\"]\nAtomDensity = 1e22\nScatter = -1\nAbsorption = 2\n",
		"bad model":        "[Settings]\nScatterModel = forward\n[Nuclide \"A\"]\nAtomDensity = 1e22\nScatter = 1\n",
		"bad budget":       "[Settings]\nTimeBudget = soon\n[Nuclide \"A\"]\nAtomDensity = 1e22\nScatter = 1\n",
		"surface no kind":  "[Nuclide \"A\"]\nAtomDensity = 1e22\nScatter = 1\n[Surface \"s\"]\nR = 1\n",
		"unknown variable": "[Settings]\nParticles = 10\n",
	} {
		_, err := ParseConfig(text)
		assert.True(t, errors.Is(err, ErrConfig), "%s: %v", name, err)
	}
}

func TestProblemErrors(t *testing.T) {
	base := "[Nuclide \"A\"]\nAtomDensity = 1e22\nScatter = 1\n"
	for name, extra := range map[string]string{
		"bad kind":     "[Surface \"s\"]\nKind = cone\n",
		"bad boundary": "[Surface \"s\"]\nKind = sphere\nR = 1\nBoundary = periodic\n",
		"zero radius":  "[Surface \"s\"]\nKind = sphere\n",
		"zero plane":   "[Surface \"s\"]\nKind = plane\nD = 1\n",
		"bad mesh":     "[Mesh]\nNx = 2\nNy = 2\nNz = 2\n",
		"bad spectrum": "[Source]\nSpectrum = flat\n",
	} {
		con, err := ParseConfig(base + extra)
		require.NoError(t, err, name)
		_, err = con.Problem()
		assert.Error(t, err, name)
	}
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "run.ini")
	require.NoError(t, os.WriteFile(cfg, []byte(fullConfig), 0o644))

	opts := RunOptions{
		Workers:    3,
		Histories:  120,
		Seed:       -1,
		ResultPath: filepath.Join(dir, "out", "result.json"),
		MeshRaw:    filepath.Join(dir, "out", "mesh.raw.lz4"),
		MeshPNG:    filepath.Join(dir, "out", "slice"),
		Gamma:      1,
	}
	res, err := Run(context.Background(), cfg, opts)
	require.NoError(t, err)
	assert.Equal(t, int64(120), res.Completed)
	assert.Equal(t, uint64(9), res.Seed)
	assert.Equal(t, 3, res.Workers)

	data, err := os.ReadFile(opts.ResultPath)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(data))
	assert.Equal(t, int64(120), gjson.GetBytes(data, "completed").Int())
	assert.Equal(t, "isotropic", gjson.GetBytes(data, "scatterModel").String())
	assert.Equal(t, int64(120), gjson.GetBytes(data, "tally.histories").Int())
	assert.InDelta(t, res.KEff.Mean, gjson.GetBytes(data, "keff.mean").Float(), 1e-12)
	assert.False(t, gjson.GetBytes(data, "tally.KCollision").Exists())

	mesh, err := ReadRaw(opts.MeshRaw)
	require.NoError(t, err)
	assert.InDelta(t, res.Mesh.Total(), mesh.Total(), 1e-9)

	for _, name := range []string{"slice_0.png", "slice_1.png"} {
		_, err := os.Stat(filepath.Join(dir, "out", name))
		assert.NoError(t, err)
	}
}

func TestRunOverridesSeed(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "run.ini")
	require.NoError(t, os.WriteFile(cfg, []byte(fullConfig), 0o644))
	res, err := Run(context.Background(), cfg, RunOptions{Histories: 20, Seed: 0})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), res.Seed)
	assert.Equal(t, 2, res.Workers)
}

func TestRunMissingFile(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "nope.ini"), RunOptions{Seed: -1})
	assert.True(t, errors.Is(err, ErrConfig))
	assert.True(t, strings.Contains(err.Error(), "nope.ini"))
}
