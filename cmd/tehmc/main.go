package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/theodoreOnzGit/teh-o/internal/logger"
	"github.com/theodoreOnzGit/teh-o/internal/transport"
)

type options struct {
	Debug      bool          `env:"TEHMC_DEBUG"`
	Profile    string        `env:"TEHMC_PROFILE"`
	Progress   bool          `env:"TEHMC_PROGRESS"`
	NoAABB     bool          `env:"TEHMC_NO_AABB"`
	LogFormat  string        `env:"TEHMC_LOG_FORMAT" envDefault:"console"`
	Workers    int           `env:"TEHMC_WORKERS"`
	Histories  int64         `env:"TEHMC_HISTORIES"`
	Seed       int64         `env:"TEHMC_SEED" envDefault:"-1"`
	TimeBudget time.Duration `env:"TEHMC_TIME_BUDGET"`
	Output     string        `env:"TEHMC_OUTPUT" envDefault:"out/result.json"`
	MeshRaw    string        `env:"TEHMC_MESH_RAW"`
	MeshPNG    string        `env:"TEHMC_MESH_PNG"`
	Gamma      float64       `env:"TEHMC_GAMMA" envDefault:"2.2"`
}

func main() {
	var opts options
	if err := env.Parse(&opts); err != nil {
		fmt.Printf("Error: parse env: %v\n", err)
		os.Exit(1)
	}
	if err := logger.SetFormat(opts.LogFormat); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	logger.SetDebug(opts.Debug)
	transport.Debug = opts.Debug
	transport.Progress = opts.Progress
	transport.UseAABB = !opts.NoAABB

	cfg := "configs/u235.ini"
	if len(os.Args) > 1 {
		cfg = os.Args[1]
	}
	if cfg == "example" {
		fmt.Println(transport.ExampleConfigFile)
		return
	}

	if opts.Profile != "" {
		f, err := os.Create(opts.Profile)
		if err != nil {
			panic(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := transport.Run(ctx, cfg, transport.RunOptions{
		Workers:    opts.Workers,
		Histories:  opts.Histories,
		Seed:       opts.Seed,
		TimeBudget: opts.TimeBudget,
		ResultPath: opts.Output,
		MeshRaw:    opts.MeshRaw,
		MeshPNG:    opts.MeshPNG,
		Gamma:      opts.Gamma,
	})
	if err != nil {
		logger.Error(err, "run failed", "config", cfg)
		fmt.Printf("Error: %v\n", err)
		stop()
		os.Exit(1)
	}
	fmt.Printf("histories=%d/%d scatter/absorption=%.6f k(col/abs/trk)=%.5f/%.5f/%.5f leakage=%.5f elapsed=%s\n",
		res.Completed, res.Requested, res.ScatterToAbsorption,
		res.KEff.Collision, res.KEff.Absorption, res.KEff.TrackLength,
		res.LeakageFraction, res.Elapsed)
}
