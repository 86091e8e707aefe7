// Package instance holds the immutable input bundle a scheduling run
// consumes: charges, their predefined routes, machines, transport times,
// processing envelopes, and the mandatory cast sequence on each caster.
package instance

import (
	"fmt"
	"sort"
)

// Seconds is a signed count of seconds since an epoch. Only add/compare
// operations are performed on it.
type Seconds int64

// StageID identifies a production stage. The last stage (H) is the
// continuous-casting stage.
type StageID int

// MachineID identifies a machine. NoMachine is the sentinel for "no prior
// machine" (real machine IDs are always >= 1).
type MachineID int

// NoMachine means "there was no previous machine" (first stage of a route).
const NoMachine MachineID = 0

// ChargeID identifies a charge (a batch of molten steel).
type ChargeID int

// Envelope is a {min, standard, max} processing-time triple, in minutes.
type Envelope struct {
	Min int
	Std int
	Max int
}

// ChargeSpec is the predefined, immutable description of one charge.
type ChargeSpec struct {
	ID     ChargeID
	Route  []StageID
	Caster MachineID
	CastID int
	// NonCC holds the processing envelope for every non-terminal stage in Route.
	NonCC map[StageID]Envelope
	// CC is the processing envelope for the terminal (casting) stage.
	CC Envelope
}

// MachineSpec is the predefined, immutable description of one machine.
type MachineSpec struct {
	ID    MachineID
	Stage StageID
}

// Instance is the immutable bundle of everything a scheduling run needs.
// It is built once by New and never mutated afterward.
type Instance struct {
	Charges  map[ChargeID]ChargeSpec
	Machines map[MachineID]MachineSpec
	// Transport holds transport times in minutes, keyed by (from, to).
	// Transport[{NoMachine, m}] is never consulted; "from none" is always 0.
	Transport map[[2]MachineID]int
	// MachineReady is each machine's earliest available time, seconds since epoch.
	MachineReady map[MachineID]Seconds
	// H is the terminal (continuous-casting) stage.
	H StageID

	chargesInStage  map[StageID][]ChargeID
	machinesInStage map[StageID][]MachineID
	castSequence    map[MachineID][]ChargeID
}

// MalformedInstanceError reports a structurally invalid instance: a missing
// table entry, an unparseable route, or a reference to a nonexistent machine.
type MalformedInstanceError struct {
	Charge  ChargeID
	Stage   StageID
	Machine MachineID
	Reason  string
}

func (e *MalformedInstanceError) Error() string {
	return fmt.Sprintf("malformed instance: charge=%d stage=%d machine=%d: %s",
		e.Charge, e.Stage, e.Machine, e.Reason)
}

// InconsistentCastPlanError reports a charge whose predefined caster does
// not belong to stage H, or that is missing from its caster's cast sequence.
type InconsistentCastPlanError struct {
	Charge  ChargeID
	Machine MachineID
	Reason  string
}

func (e *InconsistentCastPlanError) Error() string {
	return fmt.Sprintf("inconsistent cast plan: charge=%d caster=%d: %s",
		e.Charge, e.Machine, e.Reason)
}

// New validates the given specs and builds an Instance, including all
// derived indices (charges/machines per stage, cast sequences).
func New(
	charges map[ChargeID]ChargeSpec,
	machines map[MachineID]MachineSpec,
	transport map[[2]MachineID]int,
	machineReady map[MachineID]Seconds,
) (*Instance, error) {
	if len(charges) == 0 {
		return nil, &MalformedInstanceError{Reason: "no charges in Cast_plan"}
	}
	if len(machines) == 0 {
		return nil, &MalformedInstanceError{Reason: "no machines in Stage"}
	}

	h := StageID(0)
	for _, m := range machines {
		if m.Stage > h {
			h = m.Stage
		}
	}

	inst := &Instance{
		Charges:         charges,
		Machines:        machines,
		Transport:       transport,
		MachineReady:    machineReady,
		H:               h,
		chargesInStage:  map[StageID][]ChargeID{},
		machinesInStage: map[StageID][]MachineID{},
		castSequence:    map[MachineID][]ChargeID{},
	}

	for id, m := range machines {
		inst.machinesInStage[m.Stage] = append(inst.machinesInStage[m.Stage], id)
		if _, ok := inst.MachineReady[id]; !ok {
			return nil, &MalformedInstanceError{Machine: id, Reason: "missing Earliest_available_time"}
		}
	}
	for _, stageList := range inst.machinesInStage {
		sort.Slice(stageList, func(i, j int) bool { return stageList[i] < stageList[j] })
	}

	for id, c := range charges {
		if len(c.Route) == 0 {
			return nil, &MalformedInstanceError{Charge: id, Reason: "empty route"}
		}
		if c.Route[len(c.Route)-1] != h {
			return nil, &MalformedInstanceError{Charge: id, Reason: "route does not end at the terminal stage"}
		}
		for _, s := range c.Route {
			if s == h {
				continue
			}
			if _, ok := c.NonCC[s]; !ok {
				return nil, &MalformedInstanceError{Charge: id, Stage: s, Reason: "missing nonCC_Processing_Time entry"}
			}
			inst.chargesInStage[s] = append(inst.chargesInStage[s], id)
		}
		inst.chargesInStage[h] = append(inst.chargesInStage[h], id)

		caster, ok := machines[c.Caster]
		if !ok {
			return nil, &InconsistentCastPlanError{Charge: id, Machine: c.Caster, Reason: "caster does not exist"}
		}
		if caster.Stage != h {
			return nil, &InconsistentCastPlanError{Charge: id, Machine: c.Caster, Reason: "caster is not a stage-H machine"}
		}
		inst.castSequence[c.Caster] = append(inst.castSequence[c.Caster], id)
	}

	for _, lst := range inst.chargesInStage {
		sort.Slice(lst, func(i, j int) bool { return lst[i] < lst[j] })
	}

	// Cast sequence order must come from CC_Processing_Time row order, which
	// the loader is responsible for preserving; New only validates
	// membership here, it does not re-sort castSequence.
	for caster, seq := range inst.castSequence {
		seen := map[ChargeID]bool{}
		for _, c := range seq {
			seen[c] = true
		}
		for _, c := range charges {
			if c.Caster == caster && !seen[c.ID] {
				return nil, &InconsistentCastPlanError{Charge: c.ID, Machine: caster, Reason: "charge missing from cast sequence"}
			}
		}
	}

	return inst, nil
}

// NewWithCastOrder is like New but takes the cast sequence order explicitly,
// as read from CC_Processing_Time row order (the loader is the only caller
// that knows that order; New alone cannot recover it from an unordered map).
func NewWithCastOrder(
	charges map[ChargeID]ChargeSpec,
	machines map[MachineID]MachineSpec,
	transport map[[2]MachineID]int,
	machineReady map[MachineID]Seconds,
	castOrder map[MachineID][]ChargeID,
) (*Instance, error) {
	inst, err := New(charges, machines, transport, machineReady)
	if err != nil {
		return nil, err
	}
	for caster, seq := range castOrder {
		inst.castSequence[caster] = append([]ChargeID(nil), seq...)
	}
	for id, c := range charges {
		found := false
		for _, sid := range inst.castSequence[c.Caster] {
			if sid == id {
				found = true
				break
			}
		}
		if !found {
			return nil, &InconsistentCastPlanError{Charge: id, Machine: c.Caster, Reason: "charge missing from cast sequence"}
		}
	}
	return inst, nil
}

// ChargesInStage returns the charges whose route visits stage h, in
// ascending ChargeID order (a deterministic base order the scheduler's
// permutation step reorders).
func (inst *Instance) ChargesInStage(h StageID) []ChargeID {
	return inst.chargesInStage[h]
}

// MachinesInStage returns the machines belonging to stage h, in ascending
// MachineID order.
func (inst *Instance) MachinesInStage(h StageID) []MachineID {
	return inst.machinesInStage[h]
}

// CastSequence returns the predefined, ordered list of charges assigned to
// the given caster machine.
func (inst *Instance) CastSequence(caster MachineID) []ChargeID {
	return inst.castSequence[caster]
}

// TransportTime returns the transport time, in minutes, between two
// machines. It is 0 whenever from is NoMachine.
func (inst *Instance) TransportTime(from, to MachineID) (int, bool) {
	if from == NoMachine {
		return 0, true
	}
	tt, ok := inst.Transport[[2]MachineID{from, to}]
	return tt, ok
}

// StandardTime returns the standard processing time, in minutes, for charge
// c at stage s.
func (inst *Instance) StandardTime(c ChargeID, s StageID) (int, bool) {
	spec, ok := inst.Charges[c]
	if !ok {
		return 0, false
	}
	if s == inst.H {
		return spec.CC.Std, true
	}
	env, ok := spec.NonCC[s]
	if !ok {
		return 0, false
	}
	return env.Std, true
}
