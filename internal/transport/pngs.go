package transport

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
)

// SavePNGSlices writes one 16-bit grayscale PNG per Z slice of the mesh
// (k = 0..Nz-1), each normalized to its own peak and gamma encoded.
func SavePNGSlices(m *Mesh, prefix string, gamma float64) error {
	if gamma <= 0 {
		gamma = 1
	}
	if err := os.MkdirAll(filepath.Dir(prefix), 0o755); err != nil {
		return err
	}

	toU16 := func(v, scale float64) uint16 {
		if v <= 0 {
			return 0
		}
		n := math.Min(v*scale, 1)
		if gamma != 1 {
			n = math.Pow(n, 1.0/gamma)
		}
		return uint16(math.Round(n * 65535.0))
	}

	// Zero-padding width based on number of slices.
	width := 1
	if m.Nz > 1 {
		width = int(math.Log10(float64(m.Nz-1))) + 1
	}

	for k := 0; k < m.Nz; k++ {
		sliceMax := 0.0
		for j := 0; j < m.Ny; j++ {
			for i := 0; i < m.Nx; i++ {
				sliceMax = math.Max(sliceMax, m.At(i, j, k))
			}
		}
		if sliceMax == 0 {
			sliceMax = 1 // the slice will be black
		}
		scale := 1.0 / sliceMax

		// flip Y so up is up
		img := image.NewGray16(image.Rect(0, 0, m.Nx, m.Ny))
		for j := 0; j < m.Ny; j++ {
			y := m.Ny - 1 - j
			for i := 0; i < m.Nx; i++ {
				img.SetGray16(i, y, color.Gray16{Y: toU16(m.At(i, j, k), scale)})
			}
		}

		full := fmt.Sprintf("%s_%0*d.png", prefix, width, k)
		f, err := os.Create(full)
		if err != nil {
			return err
		}
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(f, img); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	DebugLog("Saved %d PNG slices with prefix: %s", m.Nz, prefix)
	return nil
}
