package transport

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theodoreOnzGit/teh-o/internal/logger"
)

// Problem is a fully built run: one homogeneous material, optional bounding
// surfaces and a point source.
type Problem struct {
	Material   Material
	XS         CrossSections
	Geometry   *Geometry
	Source     *Source
	Walk       WalkOptions
	Histories  int64
	Seed       uint64
	Workers    int
	TimeBudget time.Duration
	Mesh       *Mesh // template; each worker scores into its own copy
}

// splitHistories distributes n histories across workers (evenly, with
// remainder spread) and returns the first id and count per worker. History
// ids start at 1.
func splitHistories(n int64, workers int) (first, count []int64) {
	first = make([]int64, workers)
	count = make([]int64, workers)
	base, rem := n/int64(workers), n%int64(workers)
	next := int64(1)
	for w := 0; w < workers; w++ {
		count[w] = base
		if int64(w) < rem {
			count[w]++
		}
		first[w] = next
		next += count[w]
	}
	return first, count
}

// Simulate runs all histories of p across p.Workers goroutines. Each worker
// owns its tally and mesh; they are merged once every worker has stopped.
// A cancelled ctx or an expired TimeBudget stops the run early without error
// and the result reports how many histories completed.
func Simulate(ctx context.Context, p *Problem) (*Result, error) {
	if p.Histories <= 0 {
		return nil, fmt.Errorf("%w: histories must be positive, got %d", ErrConfig, p.Histories)
	}
	if err := p.XS.Validate(); err != nil {
		return nil, err
	}
	src := p.Source
	if src == nil {
		var err error
		if src, err = NewSource(Source{Direction: Direction{1, 0, 0}}); err != nil {
			return nil, err
		}
	}
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if int64(workers) > p.Histories {
		workers = int(p.Histories)
	}
	if p.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.TimeBudget)
		defer cancel()
	}

	first, count := splitHistories(p.Histories, workers)
	tallies := make([]CollisionTally, workers)
	meshes := make([]*Mesh, workers)

	var counter int64
	nextPrint := int64(1)
	if p.Histories >= 100 {
		nextPrint = p.Histories / 100
	}

	logger.Info("starting run", "histories", p.Histories, "workers", workers, "seed", p.Seed,
		"surfaces", p.Geometry.Len(), "scatter", p.Walk.Scatter.String())
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		wid := w
		g.Go(func() error {
			opts := p.Walk
			if p.Mesh != nil {
				meshes[wid] = p.Mesh.Empty()
				opts.Mesh = meshes[wid]
			}
			tally := &tallies[wid]
			for id := first[wid]; id < first[wid]+count[wid]; id++ {
				if gctx.Err() != nil {
					return nil
				}
				particle := src.Initialize(id, p.Seed)
				t, err := RunHistory(&particle, p.XS, p.Geometry, opts)
				if err != nil {
					return fmt.Errorf("worker %d: %w", wid, err)
				}
				tally.Merge(t)
				done := atomic.AddInt64(&counter, 1)
				if Progress && done%nextPrint == 0 {
					logger.Info("progress", "percent", float64(done)*100/float64(p.Histories))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Requested: p.Histories,
		Seed:      p.Seed,
		Workers:   workers,
		Scatter:   p.Walk.Scatter.String(),
		Elapsed:   time.Since(start),
	}
	for w := 0; w < workers; w++ {
		res.Tally.Merge(tallies[w])
	}
	if p.Mesh != nil {
		res.Mesh = p.Mesh.Empty()
		for w := 0; w < workers; w++ {
			if err := res.Mesh.Merge(meshes[w]); err != nil {
				return nil, err
			}
		}
	}
	res.finish()

	if res.Completed < res.Requested {
		logger.Warn("run stopped early", "completed", res.Completed, "requested", res.Requested, "reason", ctx.Err())
	}
	logger.Info("run finished", "completed", res.Completed, "elapsed", res.Elapsed,
		"scatterToAbsorption", res.ScatterToAbsorption, "keff", res.KEff.Mean)
	if Debug {
		eventStats()
	}
	return res, nil
}

// RunOptions override configuration values and select outputs for Run.
type RunOptions struct {
	Workers    int
	Histories  int64
	Seed       int64 // negative keeps the configured seed
	TimeBudget time.Duration

	ResultPath string // JSON results
	MeshRaw    string // binary mesh dump
	MeshPNG    string // PNG slice prefix
	Gamma      float64
}

// Run loads a configuration file, simulates it and writes the requested
// outputs.
func Run(ctx context.Context, cfgPath string, opts RunOptions) (*Result, error) {
	con, err := ReadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	p, err := con.Problem()
	if err != nil {
		return nil, err
	}
	if opts.Workers > 0 {
		p.Workers = opts.Workers
	}
	if opts.Histories > 0 {
		p.Histories = opts.Histories
	}
	if opts.Seed >= 0 {
		p.Seed = uint64(opts.Seed)
	}
	if opts.TimeBudget > 0 {
		p.TimeBudget = opts.TimeBudget
	}
	DebugLog("Material %s: Σt=%g Σs=%g Σa=%g νΣf=%g /cm", p.Material.Name,
		float64(p.XS.Total), float64(p.XS.Scatter), float64(p.XS.Absorption), float64(p.XS.NuFission))
	for _, s := range p.Geometry.Surfaces {
		DebugLog("Surface %s", s)
	}

	res, err := Simulate(ctx, p)
	if err != nil {
		return nil, err
	}

	if opts.ResultPath != "" {
		if err := res.WriteJSON(opts.ResultPath); err != nil {
			return res, err
		}
		DebugLog("Saved results: %s", opts.ResultPath)
	}
	if res.Mesh != nil && opts.MeshRaw != "" {
		if err := res.Mesh.WriteRaw(opts.MeshRaw); err != nil {
			return res, err
		}
		DebugLog("Saved raw mesh: %s", opts.MeshRaw)
	}
	if res.Mesh != nil && opts.MeshPNG != "" {
		if err := SavePNGSlices(res.Mesh, opts.MeshPNG, opts.Gamma); err != nil {
			return res, err
		}
	}
	return res, nil
}
