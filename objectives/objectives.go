// Package objectives computes the three scalar penalties a finished
// scheduling run is judged by: makespan, inter-stage waiting, and deviation
// from standard processing time.
package objectives

import (
	"ccsched/csstate"
	"ccsched/instance"
)

// Weights are the λ multipliers applied to each penalty before summing.
// The zero value is invalid; use DefaultWeights.
type Weights struct {
	Lambda1 float64
	Lambda2 float64
	Lambda3 float64
}

// DefaultWeights returns the spec's default of 1 for every weight.
func DefaultWeights() Weights {
	return Weights{Lambda1: 1, Lambda2: 1, Lambda3: 1}
}

// Result holds the three raw penalties and their weighted sum.
type Result struct {
	Z1, Z2, Z3 float64
	Total      float64
}

// Evaluate computes z1 (makespan), z2 (inter-stage waiting), and z3
// (deviation from standard processing time) over a finished run's charge
// states, and combines them with w into Total.
func Evaluate(inst *instance.Instance, charges csstate.ChargeStates, w Weights) Result {
	z1 := makespan(charges)
	z2 := waitingTime(inst, charges)
	z3 := deviation(inst, charges)

	return Result{
		Z1:    z1,
		Z2:    z2,
		Z3:    z3,
		Total: w.Lambda1*z1 + w.Lambda2*z2 + w.Lambda3*z3,
	}
}

// makespan is the latest end time across every charge's last allocation.
func makespan(charges csstate.ChargeStates) float64 {
	var latest instance.Seconds
	for _, cs := range charges {
		if n := len(cs.Allocations); n > 0 {
			if end := cs.Allocations[n-1].End; end > latest {
				latest = end
			}
		}
	}
	return float64(latest)
}

// waitingTime sums, over every charge and every consecutive pair of
// allocations, the gap between one stage's end and the next stage's start,
// net of the transport time between the two machines involved. The sign is
// never clamped: a charge that starts its next stage before its previous
// one technically ended (shouldn't happen, but isn't enforced here) would
// contribute a negative term, exactly as the gap is computed.
func waitingTime(inst *instance.Instance, charges csstate.ChargeStates) float64 {
	var total instance.Seconds
	for _, cs := range charges {
		for i := 1; i < len(cs.Allocations); i++ {
			prev := cs.Allocations[i-1]
			next := cs.Allocations[i]

			tt, _ := inst.TransportTime(prev.Machine, next.Machine)
			total += next.Start - prev.End - instance.Seconds(tt*60)
		}
	}
	return float64(total)
}

// deviation sums, over every allocation, the absolute difference between
// its actual duration and the charge's standard processing time for that
// stage. abs(x) here is exactly max(0,x) - min(0,x).
func deviation(inst *instance.Instance, charges csstate.ChargeStates) float64 {
	var total float64
	for cid, cs := range charges {
		for _, a := range cs.Allocations {
			std, ok := inst.StandardTime(cid, a.Stage)
			if !ok {
				continue
			}
			actual := float64(a.End - a.Start)
			want := float64(std) * 60
			diff := actual - want
			total += absFloat(diff)
		}
	}
	return total
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
