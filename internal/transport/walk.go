package transport

import (
	"fmt"
	"math"
	"strings"

	"github.com/theodoreOnzGit/teh-o/internal/prng"
)

type Interaction uint8

const (
	ReactionScatter Interaction = iota
	ReactionAbsorption
)

func (i Interaction) String() string {
	if i == ReactionAbsorption {
		return "absorption"
	}
	return "scatter"
}

// ScatterModel selects how the two scattering draws become a new direction.
type ScatterModel uint8

const (
	// ScatterAngleSum adds the sampled polar angle acos(mu) and azimuth
	// 2*asin(s) to the particle's current polar/azimuthal angles. The current
	// azimuth is atan(y/x) with no quadrant correction.
	ScatterAngleSum ScatterModel = iota
	// ScatterIsotropic ignores the incoming direction and picks a new one
	// uniformly on the unit sphere.
	ScatterIsotropic
)

func ParseScatterModel(s string) (ScatterModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "angle-sum":
		return ScatterAngleSum, nil
	case "isotropic":
		return ScatterIsotropic, nil
	}
	return 0, fmt.Errorf("%w: unknown scatter model %q", ErrConfig, s)
}

func (m ScatterModel) String() string {
	if m == ScatterIsotropic {
		return "isotropic"
	}
	return "angle-sum"
}

// WalkOptions are the per-run knobs of RunHistory.
type WalkOptions struct {
	Scatter      ScatterModel
	MaxEvents    int     // 0 means DefaultMaxEvents
	EnergyCutoff float64 // eV; particles born below it are killed
	Mesh         *Mesh   // optional collision-site tally, owned by the caller
}

// SampleDistance samples a free-flight length -ln(xi)/Σt.
func SampleDistance(seed *uint64, total MacroXS) (Length, error) {
	if !(total > 0) {
		return 0, fmt.Errorf("%w: Σt=%g /cm", ErrZeroCrossSection, float64(total))
	}
	return Length(prng.Exponential(float64(total), seed)), nil
}

// SampleReaction picks absorption when xi exceeds Σs/Σt, scatter otherwise.
func SampleReaction(seed *uint64, xs CrossSections) Interaction {
	xi := prng.Uniform(0, prng.OpenUnit, seed)
	if xi > xs.ScatterProbability() {
		return ReactionAbsorption
	}
	return ReactionScatter
}

// ScatterAngles draws the scattering cosine mu and the azimuthal sine term,
// both in [-1, 1).
func ScatterAngles(seed *uint64) (mu, sinAz float64) {
	mu = prng.IsotropicMu(seed)
	sinAz = prng.IsotropicMu(seed)
	return
}

// ScatterDirection turns the sampled angles into the outgoing direction.
func ScatterDirection(model ScatterModel, u Direction, mu, sinAz float64) (Direction, error) {
	rho := u.Len()
	if rho == 0 || !isFinite(rho) {
		return u, ErrZeroDirection
	}
	if model == ScatterIsotropic {
		return isotropicDirection(mu, math.Pi*sinAz), nil
	}

	polar := math.Acos(clampUnit(u.Z / rho))
	azimuth := 0.0 // along the z axis the azimuth is undefined
	if u.X != 0 || u.Y != 0 {
		azimuth = math.Atan(u.Y / u.X)
	}
	polar += math.Acos(mu)
	azimuth += 2 * math.Asin(sinAz)

	sinP, cosP := math.Sincos(polar)
	sinA, cosA := math.Sincos(azimuth)
	return Direction{sinP * cosA, sinP * sinA, cosP}, nil
}

// RunHistory transports p until it is absorbed, leaks through a vacuum
// boundary or exceeds the event limit, and returns the history's tally.
// geom may be nil for an infinite medium.
func RunHistory(p *Particle, xs CrossSections, geom *Geometry, opts WalkOptions) (CollisionTally, error) {
	var t CollisionTally
	if err := xs.Validate(); err != nil {
		return t, fmt.Errorf("history %d: %w", p.ID, err)
	}
	if p.Type != Neutron {
		return t, fmt.Errorf("history %d: %w, got %s", p.ID, ErrUnsupportedParticle, p.Type)
	}
	u, err := p.U.Normalize()
	if err != nil {
		return t, fmt.Errorf("history %d: %w", p.ID, err)
	}
	p.U = u
	t.Histories = 1

	if p.E < opts.EnergyCutoff {
		t.Cutoff++
		if Debug {
			logEvent("cutoff", EventCutoff, p, 0)
		}
		p.Kill()
		return t, nil
	}

	maxEvents := opts.MaxEvents
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	nuSigF := float64(xs.NuFission)
	seed := p.Seed()

	for p.Alive() {
		if p.NEvent >= maxEvents {
			t.Lost++
			if Debug {
				logEvent("lost", EventLost, p, 0)
			}
			p.Kill()
			break
		}
		p.NEvent++

		dColl, err := SampleDistance(seed, xs.Total)
		if err != nil {
			return t, err
		}
		surf, dSurf := geom.nearestSurface(p.R, p.U, p.Surface)
		p.RLast, p.ULast = p.R, p.U

		if surf >= 0 && dSurf < dColl {
			p.R = p.R.Move(p.U, dSurf)
			p.Surface = surf
			t.TrackLength += p.Wgt * float64(dSurf)
			t.KTrackLength += p.Wgt * float64(dSurf) * nuSigF

			s := &geom.Surfaces[surf]
			switch s.Boundary {
			case Vacuum:
				t.Leakage++
				if Debug {
					logEvent(s.Name, EventLeak, p, dSurf)
				}
				p.Kill()
			case Reflective:
				t.Reflections++
				p.U = s.Reflect(p.R, p.U)
				if Debug {
					logEvent(s.Name, EventReflect, p, dSurf)
				}
			default:
				t.Crossings++
				if Debug {
					logEvent(s.Name, EventCross, p, dSurf)
				}
			}
			continue
		}

		p.R = p.R.Move(p.U, dColl)
		p.Surface = -1
		p.NCollision++
		t.Collisions++
		t.TrackLength += p.Wgt * float64(dColl)
		t.KTrackLength += p.Wgt * float64(dColl) * nuSigF
		t.KCollision += p.Wgt * nuSigF / float64(xs.Total)
		if opts.Mesh != nil {
			opts.Mesh.Score(p.R, p.Wgt)
		}

		if SampleReaction(seed, xs) == ReactionAbsorption {
			t.Absorption++
			t.KAbsorption += p.Wgt * nuSigF / float64(xs.Absorption)
			if Debug {
				logEvent("absorbed", EventAbsorb, p, dColl)
			}
			p.Kill()
			continue
		}

		t.Scatter++
		mu, sinAz := ScatterAngles(seed)
		if p.U, err = ScatterDirection(opts.Scatter, p.U, mu, sinAz); err != nil {
			return t, fmt.Errorf("history %d event %d: %w", p.ID, p.NEvent, err)
		}
		if Debug {
			logEvent("scattered", EventScatter, p, dColl)
		}
	}
	return t, nil
}
