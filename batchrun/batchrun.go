// Package batchrun is the ambient "outer metaheuristic" collaborator: it
// runs N independent, seeded scheduling simulations concurrently, one
// goroutine per seed, fans their results into a single channel, and
// reports whichever run found the smallest weighted objective total. It
// does not search, repair, or perturb within a run — each run is a plain
// single-threaded scheduler.Run call, exactly as the kernel defines it.
package batchrun

import (
	"math/rand"

	channerics "github.com/niceyeti/channerics/channels"

	"ccsched/instance"
	"ccsched/internal/statsfloat"
	"ccsched/objectives"
	"ccsched/scheduler"
)

// ZetaOverride is the shape of a function that perturbs a stage-1
// permutation. Nothing in this module accepts or applies one: neither Run
// nor scheduler.Run takes a ZetaOverride, and every run dispatches stage 1
// in the order its own seeded draw produced.
type ZetaOverride func(initial []instance.ChargeID) []instance.ChargeID

// Outcome is one seed's finished run: the seed itself, the scheduler
// result, and its evaluated objectives.
type Outcome struct {
	Seed       int64
	Result     *scheduler.Result
	Objectives objectives.Result
	Err        error
}

// Run launches one goroutine per seed, each running an independent
// scheduler.Run against its own seeded *rand.Rand, fans their outcomes
// into a single channel via channerics.Merge, and returns every outcome
// plus whichever had the smallest Objectives.Total. inst is read-only and
// shared across workers; no worker mutates it or any other worker's state.
func Run(inst *instance.Instance, seeds []int64, weights objectives.Weights, done <-chan struct{}) ([]Outcome, *Outcome) {
	worker := func(seed int64) <-chan *Outcome {
		out := make(chan *Outcome, 1)
		go func() {
			defer close(out)

			rng := rand.New(rand.NewSource(seed))
			res, err := scheduler.Run(inst, rng)
			if err != nil {
				select {
				case out <- &Outcome{Seed: seed, Err: err}:
				case <-done:
				}
				return
			}

			obj := objectives.Evaluate(inst, res.Charges, weights)
			select {
			case out <- &Outcome{Seed: seed, Result: res, Objectives: obj}:
			case <-done:
			}
		}()
		return out
	}

	workers := make([]<-chan *Outcome, 0, len(seeds))
	for _, seed := range seeds {
		workers = append(workers, worker(seed))
	}
	merged := channerics.Merge(done, workers...)

	best := statsfloat.NewBest()
	var bestOutcome *Outcome
	var outcomes []Outcome

	for o := range merged {
		outcomes = append(outcomes, *o)
		if o.Err == nil && best.TryImprove(o.Objectives.Total) {
			bestOutcome = o
		}
	}

	return outcomes, bestOutcome
}
