package transport

import (
	"fmt"
)

// Mesh is a regular XYZ grid counting weighted collision sites.
type Mesh struct {
	Lower, Upper Position
	Nx, Ny, Nz   int
	Buf          []float64 // flat: ((i*Ny)+j)*Nz + k

	// cached mapping
	invSpanX, invSpanY, invSpanZ float64
	strideX, strideY             int
}

// NewMesh allocates a zero-initialized grid spanning [lower, upper).
func NewMesh(lower, upper Position, nx, ny, nz int) (*Mesh, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("%w: mesh resolution must be positive, got (%d, %d, %d)", ErrConfig, nx, ny, nz)
	}
	if !(upper.X > lower.X && upper.Y > lower.Y && upper.Z > lower.Z) {
		return nil, fmt.Errorf("%w: mesh upper corner %+v must exceed lower corner %+v", ErrConfig, upper, lower)
	}
	m := &Mesh{
		Lower:    lower,
		Upper:    upper,
		Nx:       nx,
		Ny:       ny,
		Nz:       nz,
		Buf:      make([]float64, nx*ny*nz),
		invSpanX: 1 / float64(upper.X-lower.X),
		invSpanY: 1 / float64(upper.Y-lower.Y),
		invSpanZ: 1 / float64(upper.Z-lower.Z),
		strideY:  nz,
		strideX:  ny * nz,
	}
	DebugLog("Created mesh lower=%+v upper=%+v resolution=(%d, %d, %d)", lower, upper, nx, ny, nz)
	return m, nil
}

// Empty returns a zeroed mesh with the same layout.
func (m *Mesh) Empty() *Mesh {
	c := *m
	c.Buf = make([]float64, len(m.Buf))
	return &c
}

// VoxelSize returns the physical size of each voxel along X,Y,Z.
func (m *Mesh) VoxelSize() (dx, dy, dz Length) {
	dx = (m.Upper.X - m.Lower.X) / Length(m.Nx)
	dy = (m.Upper.Y - m.Lower.Y) / Length(m.Ny)
	dz = (m.Upper.Z - m.Lower.Z) / Length(m.Nz)
	DebugLogOnce("Voxel size: (%.5f, %.5f, %.5f)", dx, dy, dz)
	return
}

// VoxelIndexOf maps a point to voxel indices.
func (m *Mesh) VoxelIndexOf(p Position) (ok bool, i, j, k int) {
	if p.X < m.Lower.X || p.X >= m.Upper.X || p.Y < m.Lower.Y || p.Y >= m.Upper.Y || p.Z < m.Lower.Z || p.Z >= m.Upper.Z {
		return false, 0, 0, 0
	}
	i = int(float64(p.X-m.Lower.X) * m.invSpanX * float64(m.Nx))
	j = int(float64(p.Y-m.Lower.Y) * m.invSpanY * float64(m.Ny))
	k = int(float64(p.Z-m.Lower.Z) * m.invSpanZ * float64(m.Nz))
	if i == m.Nx {
		i = m.Nx - 1
	}
	if j == m.Ny {
		j = m.Ny - 1
	}
	if k == m.Nz {
		k = m.Nz - 1
	}
	return true, i, j, k
}

func (m *Mesh) idx(i, j, k int) int {
	return i*m.strideX + j*m.strideY + k
}

func (m *Mesh) At(i, j, k int) float64 { return m.Buf[m.idx(i, j, k)] }

// Score adds w to the voxel containing p; points outside are ignored.
func (m *Mesh) Score(p Position, w float64) bool {
	ok, i, j, k := m.VoxelIndexOf(p)
	if ok {
		m.Buf[m.idx(i, j, k)] += w
	}
	return ok
}

// Merge adds o into m.
func (m *Mesh) Merge(o *Mesh) error {
	if o == nil {
		return nil
	}
	if m.Nx != o.Nx || m.Ny != o.Ny || m.Nz != o.Nz || m.Lower != o.Lower || m.Upper != o.Upper {
		return fmt.Errorf("%w: (%d, %d, %d) vs (%d, %d, %d)", ErrMeshMismatch, m.Nx, m.Ny, m.Nz, o.Nx, o.Ny, o.Nz)
	}
	for i, v := range o.Buf {
		m.Buf[i] += v
	}
	return nil
}

func (m *Mesh) Total() float64 {
	s := 0.0
	for _, v := range m.Buf {
		s += v
	}
	return s
}
