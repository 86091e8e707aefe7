// Command vizserver runs a schedule once and serves its Gantt timeline over
// a websocket-backed page, for visual inspection of a single run.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"ccsched/config"
	"ccsched/ioadapter"
	"ccsched/scheduler"
	"ccsched/viz"
)

var (
	instanceDir *string
	configPath  *string
	addr        *string
	seed        *int64
)

func init() {
	instanceDir = flag.String("instance", "", "directory containing the six instance CSV tables")
	configPath = flag.String("config", "", "path to a YAML run config (optional)")
	addr = flag.String("addr", ":8080", "address to bind the viz server to")
	seed = flag.Int64("seed", 0, "override the config's PRNG seed (0 means: use the config value)")
	flag.Parse()
}

func runApp() (err error) {
	if *instanceDir == "" {
		return fmt.Errorf("-instance is required")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, loadErr := config.FromYaml(*configPath)
		if loadErr != nil {
			return fmt.Errorf("loading config: %w", loadErr)
		}
		cfg = *loaded
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *addr != "" {
		cfg.VizAddr = *addr
	}

	inst, err := ioadapter.LoadInstance(*instanceDir)
	if err != nil {
		return fmt.Errorf("loading instance: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	res, err := scheduler.Run(inst, rng)
	if err != nil {
		return fmt.Errorf("scheduling: %w", err)
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := viz.ResultSource{Inst: inst, Result: res}
	// A single completed run has no further snapshots to push; the
	// updates channel is closed immediately so the page serves the one
	// finished timeline.
	snapshots := make(chan viz.AllocationSource)
	close(snapshots)

	srv, err := viz.NewServer(appCtx, cfg.VizAddr, source, snapshots)
	if err != nil {
		return fmt.Errorf("building viz server: %w", err)
	}

	return srv.Serve()
}

func main() {
	if err := runApp(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
