// Package csstate holds the mutable per-charge and per-machine state the
// scheduler mutates stage by stage, and the objectives package reads
// read-only once the scheduler has finished.
package csstate

import "ccsched/instance"

// Allocation records a single machine visit: who, where, when. Each visit
// is recorded twice, as one value in the charge's list and one in the
// machine's list, both referring to the other side by ID rather than by
// pointer; anything that rewrites a visit must update both copies.
type Allocation struct {
	Charge  instance.ChargeID
	Machine instance.MachineID
	Stage   instance.StageID
	Start   instance.Seconds
	End     instance.Seconds
}

// ChargeState is the mutable state tracked for one charge as it moves
// through its route.
type ChargeState struct {
	ID          instance.ChargeID
	ReadyTime   instance.Seconds
	PrevMachine instance.MachineID
	Allocations []Allocation
}

// NewChargeState returns a charge's state initialized to the epoch-zero
// sentinel ready time and no previous machine.
func NewChargeState(id instance.ChargeID) *ChargeState {
	return &ChargeState{
		ID:          id,
		ReadyTime:   instance.Seconds(0),
		PrevMachine: instance.NoMachine,
	}
}

// Allocate appends a new allocation to this charge and advances its ready
// time and previous-machine pointer. Apart from construction, the only
// other mutation of ChargeState is the scheduler's reverse adjustment,
// which rewrites the start/end of the caster allocation in place.
func (cs *ChargeState) Allocate(stage instance.StageID, machine instance.MachineID, start, end instance.Seconds) {
	cs.Allocations = append(cs.Allocations, Allocation{
		Charge:  cs.ID,
		Machine: machine,
		Stage:   stage,
		Start:   start,
		End:     end,
	})
	cs.ReadyTime = end
	cs.PrevMachine = machine
}

// AllocationAt returns the index in Allocations of the first allocation
// whose machine equals m, and whether one was found. Used by the reverse-adjustment pass to mirror a caster's
// back-shifted start/end into the charge's own allocation list.
func (cs *ChargeState) AllocationAt(m instance.MachineID) (int, bool) {
	for i, a := range cs.Allocations {
		if a.Machine == m {
			return i, true
		}
	}
	return 0, false
}

// ChargeStates is a keyed collection of per-charge state.
type ChargeStates map[instance.ChargeID]*ChargeState

// NewChargeStates builds one ChargeState per charge in the instance.
func NewChargeStates(inst *instance.Instance) ChargeStates {
	out := make(ChargeStates, len(inst.Charges))
	for id := range inst.Charges {
		out[id] = NewChargeState(id)
	}
	return out
}

// InStage returns the charge states whose underlying charge visits stage h,
// in the order given (the scheduler controls ordering via its own
// permutation; this is a plain filter, not a sort).
func (cs ChargeStates) InStage(inst *instance.Instance, h instance.StageID) []*ChargeState {
	ids := inst.ChargesInStage(h)
	out := make([]*ChargeState, 0, len(ids))
	for _, id := range ids {
		out = append(out, cs[id])
	}
	return out
}

// MachineState is the mutable state tracked for one machine.
type MachineState struct {
	ID          instance.MachineID
	ReadyTime   instance.Seconds
	Allocations []Allocation
}

// NewMachineState returns a machine's state initialized to its input ready
// time.
func NewMachineState(id instance.MachineID, ready instance.Seconds) *MachineState {
	return &MachineState{ID: id, ReadyTime: ready}
}

// Allocate appends a new allocation to this machine and advances its ready
// time. Apart from construction, the only other mutation of MachineState
// is the scheduler's reverse adjustment, which rewrites the start/end of a
// caster's allocations in place.
func (ms *MachineState) Allocate(charge instance.ChargeID, stage instance.StageID, start, end instance.Seconds) {
	ms.Allocations = append(ms.Allocations, Allocation{
		Charge:  charge,
		Machine: ms.ID,
		Stage:   stage,
		Start:   start,
		End:     end,
	})
	ms.ReadyTime = end
}

// MachineStates is a keyed collection of per-machine state.
type MachineStates map[instance.MachineID]*MachineState

// NewMachineStates builds one MachineState per machine in the instance,
// seeded with each machine's earliest available time.
func NewMachineStates(inst *instance.Instance) MachineStates {
	out := make(MachineStates, len(inst.Machines))
	for id := range inst.Machines {
		out[id] = NewMachineState(id, inst.MachineReady[id])
	}
	return out
}

// InStage returns the machine states belonging to stage h.
func (ms MachineStates) InStage(inst *instance.Instance, h instance.StageID) []*MachineState {
	ids := inst.MachinesInStage(h)
	out := make([]*MachineState, 0, len(ids))
	for _, id := range ids {
		out = append(out, ms[id])
	}
	return out
}

// TransportTime looks up the transport time between two machines, in
// minutes, returning 0 when from is instance.NoMachine.
func TransportTime(inst *instance.Instance, from, to instance.MachineID) (int, bool) {
	return inst.TransportTime(from, to)
}
