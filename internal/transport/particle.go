package transport

import (
	"fmt"

	"github.com/theodoreOnzGit/teh-o/internal/prng"
)

type ParticleType uint8

const (
	Neutron ParticleType = iota
	Photon
	Electron
	Positron
)

func (t ParticleType) String() string {
	switch t {
	case Neutron:
		return "neutron"
	case Photon:
		return "photon"
	case Electron:
		return "electron"
	case Positron:
		return "positron"
	}
	return fmt.Sprintf("particle(%d)", t)
}

// Particle is the state of one history. It owns its random streams; nothing
// else draws from them.
type Particle struct {
	ID   int64
	Type ParticleType
	R    Position
	U    Direction
	E    float64 // eV
	Wgt  float64

	Seeds  [prng.NumStreams]uint64
	Stream int // index into Seeds used for draws

	NEvent     int
	NCollision int
	Surface    int // index of the surface the particle sits on, -1 if none

	RLast Position  // position before the last flight
	ULast Direction // direction during the last flight
}

// InitializeParticle creates a neutron for history id, at the origin moving
// along +x with unit weight, with its streams seeded from master.
func InitializeParticle(id int64, master uint64) Particle {
	return Particle{
		ID:      id,
		Type:    Neutron,
		U:       Direction{1, 0, 0},
		E:       DefaultSourceEnergy,
		Wgt:     1,
		Seeds:   prng.InitParticleSeeds(id, master),
		Stream:  prng.StreamTracking,
		Surface: -1,
	}
}

func (p *Particle) Alive() bool { return p.Wgt != 0 }
func (p *Particle) Kill()       { p.Wgt = 0 }

// Seed returns the seed of the active stream.
func (p *Particle) Seed() *uint64 { return &p.Seeds[p.Stream] }

// UseStream switches the active stream.
func (p *Particle) UseStream(i int) error {
	if i < 0 || i >= prng.NumStreams {
		return fmt.Errorf("stream %d out of range [0, %d)", i, prng.NumStreams)
	}
	p.Stream = i
	return nil
}
