package transport

// CollisionTally accumulates the outcomes of one or more histories. Tallies
// owned by different workers are combined with Merge.
type CollisionTally struct {
	Scatter    uint64 `json:"scatter"`
	Absorption uint64 `json:"absorption"`
	Collisions uint64 `json:"collisions"` // reaction-branch draws

	Leakage     uint64 `json:"leakage"`
	Reflections uint64 `json:"reflections"`
	Crossings   uint64 `json:"crossings"`
	Lost        uint64 `json:"lost"`
	Cutoff      uint64 `json:"cutoff"`
	Histories   uint64 `json:"histories"`

	TrackLength  float64 `json:"trackLength"` // cm
	KCollision   float64 `json:"-"`
	KAbsorption  float64 `json:"-"`
	KTrackLength float64 `json:"-"`
}

// Merge adds o into t.
func (t *CollisionTally) Merge(o CollisionTally) {
	t.Scatter += o.Scatter
	t.Absorption += o.Absorption
	t.Collisions += o.Collisions
	t.Leakage += o.Leakage
	t.Reflections += o.Reflections
	t.Crossings += o.Crossings
	t.Lost += o.Lost
	t.Cutoff += o.Cutoff
	t.Histories += o.Histories
	t.TrackLength += o.TrackLength
	t.KCollision += o.KCollision
	t.KAbsorption += o.KAbsorption
	t.KTrackLength += o.KTrackLength
}

// ScatterToAbsorption is the ratio of scatter to absorption events, 0 when
// nothing was absorbed.
func (t CollisionTally) ScatterToAbsorption() float64 {
	if t.Absorption == 0 {
		return 0
	}
	return float64(t.Scatter) / float64(t.Absorption)
}

// KEstimates are per-history estimates of the multiplication factor.
type KEstimates struct {
	Collision   float64 `json:"collision"`
	Absorption  float64 `json:"absorption"`
	TrackLength float64 `json:"trackLength"`
	Mean        float64 `json:"mean"`
}

func (t CollisionTally) KEff() KEstimates {
	if t.Histories == 0 {
		return KEstimates{}
	}
	n := float64(t.Histories)
	k := KEstimates{
		Collision:   t.KCollision / n,
		Absorption:  t.KAbsorption / n,
		TrackLength: t.KTrackLength / n,
	}
	k.Mean = (k.Collision + k.Absorption + k.TrackLength) / 3
	return k
}
