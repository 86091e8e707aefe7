// Command batchrun runs a scheduling instance across every seed in a run
// config concurrently and reports the seed with the smallest weighted
// objective total.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"ccsched/batchrun"
	"ccsched/config"
	"ccsched/ioadapter"
	"ccsched/objectives"
)

var (
	instanceDir *string
	configPath  *string
)

func init() {
	instanceDir = flag.String("instance", "", "directory containing the six instance CSV tables")
	configPath = flag.String("config", "", "path to a YAML run config listing seeds and weights (optional)")
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

	inst, err := ioadapter.LoadInstance(*instanceDir)
	if err != nil {
		return fmt.Errorf("loading instance: %w", err)
	}

	weights := objectives.Weights{
		Lambda1: cfg.Weights.Lambda1,
		Lambda2: cfg.Weights.Lambda2,
		Lambda3: cfg.Weights.Lambda3,
	}

	done := make(chan struct{})
	defer close(done)

	outcomes, best := batchrun.Run(inst, cfg.Seeds, weights, done)
	for _, o := range outcomes {
		if o.Err != nil {
			log.Printf("seed=%d failed: %v", o.Seed, o.Err)
			continue
		}
		log.Printf("seed=%d total=%.2f", o.Seed, o.Objectives.Total)
	}

	if best == nil {
		return fmt.Errorf("no seed produced a valid schedule")
	}
	log.Printf("best: seed=%d z1=%.2f z2=%.2f z3=%.2f total=%.2f",
		best.Seed, best.Objectives.Z1, best.Objectives.Z2, best.Objectives.Z3, best.Objectives.Total)
	return nil
}

func main() {
	if err := runApp(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
