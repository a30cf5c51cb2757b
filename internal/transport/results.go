package transport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Result is the merged outcome of a run.
type Result struct {
	Requested int64         `json:"requested"`
	Completed int64         `json:"completed"`
	Seed      uint64        `json:"seed"`
	Workers   int           `json:"workers"`
	Scatter   string        `json:"scatterModel"`
	Elapsed   time.Duration `json:"elapsedNs"`

	Tally               CollisionTally `json:"tally"`
	KEff                KEstimates     `json:"keff"`
	ScatterToAbsorption float64        `json:"scatterToAbsorption"`
	LeakageFraction     float64        `json:"leakageFraction"`

	Mesh *Mesh `json:"-"`
}

func (r *Result) finish() {
	r.Completed = int64(r.Tally.Histories)
	r.KEff = r.Tally.KEff()
	r.ScatterToAbsorption = r.Tally.ScatterToAbsorption()
	if r.Tally.Histories > 0 {
		r.LeakageFraction = float64(r.Tally.Leakage) / float64(r.Tally.Histories)
	}
}

// WriteJSON writes the result as indented JSON.
func (r *Result) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
