// Package scheduler implements the list-scheduling kernel: the
// stage-by-stage dispatch loop that builds a per-stage charge order, picks
// an earliest-finishing machine for each charge with tie-breaking, threads
// transport times and machine availabilities, allocates the terminal
// continuous-casting stage under its predefined cast sequence, and
// performs the continuity-preserving reverse adjustment.
//
// Run is single-threaded and deterministic given a seeded *rand.Rand: it
// draws the stage-1 permutation first, then every machine-selection
// tie-break, in that order, so two runs with the same seed and instance
// produce bit-identical results.
package scheduler

import (
	"fmt"
	"math/rand"
	"sort"

	"ccsched/csstate"
	"ccsched/instance"
)

// StageWithNoMachinesError is raised when a stage has charges routed
// through it but no machines to serve them.
type StageWithNoMachinesError struct {
	Stage instance.StageID
}

func (e *StageWithNoMachinesError) Error() string {
	return fmt.Sprintf("stage %d has charges but no machines", e.Stage)
}

// MissingTransportTimeError is raised when a transport time is needed
// between two specific machines but absent from the instance.
type MissingTransportTimeError struct {
	From, To instance.MachineID
}

func (e *MissingTransportTimeError) Error() string {
	return fmt.Sprintf("missing transport time from machine %d to machine %d", e.From, e.To)
}

// Result bundles everything a scheduling run produces: the final
// per-charge and per-machine state tables, and the stage-1 permutation
// that was actually used (the "chromosome" an outer metaheuristic would
// perturb).
type Result struct {
	Charges     csstate.ChargeStates
	Machines    csstate.MachineStates
	InitialZeta []instance.ChargeID
}

// Run executes the full kernel against inst using rng as the single seeded
// source of randomness for both the stage-1 permutation and every
// machine-selection tie-break.
func Run(inst *instance.Instance, rng *rand.Rand) (*Result, error) {
	charges := csstate.NewChargeStates(inst)
	machines := csstate.NewMachineStates(inst)

	// Stage 1 always draws its random permutation, even when H == 1 and
	// stage 1 is itself the terminal casting stage: InitialZeta records
	// that draw, but in that trivial case runTerminalStage (not
	// dispatchStage) is what actually allocates the charges, since
	// the terminal stage never permutes or selects (§4.1.4).
	initialZeta := drawInitialZeta(inst, rng)

	if inst.H > 1 {
		if err := dispatchStage(inst, charges, machines, 1, initialZeta, rng); err != nil {
			return nil, err
		}
	}

	for h := instance.StageID(2); h < inst.H; h++ {
		if err := runNonTerminalStage(inst, charges, machines, h, rng); err != nil {
			return nil, err
		}
	}

	if err := runTerminalStage(inst, charges, machines); err != nil {
		return nil, err
	}

	reverseAdjust(inst, charges, machines)

	return &Result{Charges: charges, Machines: machines, InitialZeta: initialZeta}, nil
}

// drawInitialZeta builds the uniformly random initial permutation for
// stage 1 (§4.1.2). It only draws the permutation; dispatching it is the
// caller's responsibility, since stage 1 may be either a normal
// non-terminal stage or (when H == 1) the terminal casting stage itself.
func drawInitialZeta(inst *instance.Instance, rng *rand.Rand) []instance.ChargeID {
	const stage1 = instance.StageID(1)

	ids := append([]instance.ChargeID(nil), inst.ChargesInStage(stage1)...)
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

// runNonTerminalStage computes the non-decreasing-EST permutation for
// stage h (§4.1.2, h > 1) and dispatches it.
func runNonTerminalStage(
	inst *instance.Instance,
	charges csstate.ChargeStates,
	machines csstate.MachineStates,
	h instance.StageID,
	rng *rand.Rand,
) error {
	ids := append([]instance.ChargeID(nil), inst.ChargesInStage(h)...)
	machIDs := inst.MachinesInStage(h)
	if len(ids) > 0 && len(machIDs) == 0 {
		return &StageWithNoMachinesError{Stage: h}
	}

	est := make(map[instance.ChargeID]instance.Seconds, len(ids))
	for _, cid := range ids {
		cs := charges[cid]
		best := instance.Seconds(0)
		first := true
		for _, mid := range machIDs {
			ms := machines[mid]
			tt, ok := inst.TransportTime(cs.PrevMachine, mid)
			if !ok {
				return &MissingTransportTimeError{From: cs.PrevMachine, To: mid}
			}
			avail := maxSeconds(ms.ReadyTime, cs.ReadyTime+instance.Seconds(tt*60))
			if first || avail < best {
				best = avail
				first = false
			}
		}
		est[cid] = best
	}

	sort.SliceStable(ids, func(i, j int) bool { return est[ids[i]] < est[ids[j]] })

	return dispatchStage(inst, charges, machines, h, ids, rng)
}

// dispatchStage processes ζ head-first, allocating each charge to the
// earliest-finishing machine with a random tie-break (§4.1.3), mutating
// both sides of the allocation as it goes.
func dispatchStage(
	inst *instance.Instance,
	charges csstate.ChargeStates,
	machines csstate.MachineStates,
	h instance.StageID,
	zeta []instance.ChargeID,
	rng *rand.Rand,
) error {
	machIDs := inst.MachinesInStage(h)
	if len(zeta) > 0 && len(machIDs) == 0 {
		return &StageWithNoMachinesError{Stage: h}
	}

	for _, cid := range zeta {
		cs := charges[cid]

		var minners []instance.MachineID
		var best instance.Seconds
		for _, mid := range machIDs {
			ms := machines[mid]
			tt, ok := inst.TransportTime(cs.PrevMachine, mid)
			if !ok {
				return &MissingTransportTimeError{From: cs.PrevMachine, To: mid}
			}
			avail := maxSeconds(ms.ReadyTime, cs.ReadyTime+instance.Seconds(tt*60))
			switch {
			case len(minners) == 0 || avail < best:
				best = avail
				minners = minners[:0]
				minners = append(minners, mid)
			case avail == best:
				minners = append(minners, mid)
			}
		}

		chosen := minners[0]
		if len(minners) > 1 {
			chosen = minners[rng.Intn(len(minners))]
		}

		std, ok := inst.StandardTime(cid, h)
		if !ok {
			return &instance.MalformedInstanceError{Charge: cid, Stage: h, Reason: "missing standard processing time"}
		}
		start := best
		end := start + instance.Seconds(std*60)

		cs.Allocate(h, chosen, start, end)
		machines[chosen].Allocate(cid, h, start, end)
	}

	return nil
}

// runTerminalStage allocates stage H under its predefined cast sequence,
// no selection and no permutation (§4.1.4). Gaps may result; reverseAdjust
// eliminates them.
func runTerminalStage(inst *instance.Instance, charges csstate.ChargeStates, machines csstate.MachineStates) error {
	h := inst.H
	for _, caster := range inst.MachinesInStage(h) {
		ms := machines[caster]
		for _, cid := range inst.CastSequence(caster) {
			cs := charges[cid]

			tt, ok := inst.TransportTime(cs.PrevMachine, caster)
			if !ok {
				return &MissingTransportTimeError{From: cs.PrevMachine, To: caster}
			}
			start := maxSeconds(ms.ReadyTime, cs.ReadyTime+instance.Seconds(tt*60))

			spec, ok := inst.Charges[cid]
			if !ok {
				return &instance.MalformedInstanceError{Charge: cid, Reason: "unknown charge in cast sequence"}
			}
			end := start + instance.Seconds(spec.CC.Std*60)

			cs.Allocate(h, caster, start, end)
			ms.Allocate(cid, h, start, end)
		}
	}
	return nil
}

// reverseAdjust enforces casting continuity (§4.1.5): on each caster, the
// last charge's (start, end) is kept, and every earlier charge is
// back-shifted so it ends exactly when its successor begins.
func reverseAdjust(inst *instance.Instance, charges csstate.ChargeStates, machines csstate.MachineStates) {
	h := inst.H
	for _, caster := range inst.MachinesInStage(h) {
		ms := machines[caster]
		n := len(ms.Allocations)
		for i := n - 2; i >= 0; i-- {
			cid := ms.Allocations[i].Charge
			spec := inst.Charges[cid]

			newEnd := ms.Allocations[i+1].Start
			newStart := newEnd - instance.Seconds(spec.CC.Std*60)

			ms.Allocations[i].Start = newStart
			ms.Allocations[i].End = newEnd

			cs := charges[cid]
			if idx, ok := cs.AllocationAt(caster); ok {
				cs.Allocations[idx].Start = newStart
				cs.Allocations[idx].End = newEnd
			}
		}
	}
}

func maxSeconds(a, b instance.Seconds) instance.Seconds {
	if a > b {
		return a
	}
	return b
}
