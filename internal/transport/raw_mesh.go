package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// compressed reports whether a mesh dump path asks for an lz4 frame.
func compressed(path string) bool { return strings.HasSuffix(path, ".lz4") }

// WriteRaw dumps the mesh as little-endian binary: Nx, Ny, Nz as int32, the
// lower and upper corners as six float64, then Nx*Ny*Nz float64 scores.
// A path ending in .lz4 is written as an lz4 frame.
func (m *Mesh) WriteRaw(path string) error {
	exp64 := int64(m.Nx) * int64(m.Ny) * int64(m.Nz)
	if int64(len(m.Buf)) != exp64 {
		return fmt.Errorf("Buf length mismatch: got %d, expected %d (Nx*Ny*Nz)", len(m.Buf), exp64)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var out io.Writer = f
	var zw *lz4.Writer
	if compressed(path) {
		zw = lz4.NewWriter(f)
		out = zw
	}
	w := bufio.NewWriter(out)
	header := []int32{int32(m.Nx), int32(m.Ny), int32(m.Nz)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	bounds := []float64{
		float64(m.Lower.X), float64(m.Lower.Y), float64(m.Lower.Z),
		float64(m.Upper.X), float64(m.Upper.Y), float64(m.Upper.Z),
	}
	if err := binary.Write(w, binary.LittleEndian, bounds); err != nil {
		return err
	}
	if exp64 > 0 {
		if err := binary.Write(w, binary.LittleEndian, m.Buf); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	return f.Sync()
}

// ReadRaw loads a mesh written by WriteRaw.
func ReadRaw(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var in io.Reader = f
	if compressed(path) {
		in = lz4.NewReader(f)
	}
	return readRaw(bufio.NewReader(in))
}

func readRaw(r io.Reader) (*Mesh, error) {
	var header [3]int32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read mesh header: %w", err)
	}
	var bounds [6]float64
	if err := binary.Read(r, binary.LittleEndian, &bounds); err != nil {
		return nil, fmt.Errorf("read mesh bounds: %w", err)
	}
	m, err := NewMesh(
		Position{Length(bounds[0]), Length(bounds[1]), Length(bounds[2])},
		Position{Length(bounds[3]), Length(bounds[4]), Length(bounds[5])},
		int(header[0]), int(header[1]), int(header[2]),
	)
	if err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, m.Buf); err != nil {
		return nil, fmt.Errorf("read mesh scores: %w", err)
	}
	return m, nil
}
