// Package timeline converts a machine-state snapshot into the per-lane
// view-model the Gantt chart renders, the scheduling-domain analogue of
// the teacher's grid-cell view-model conversion.
package timeline

import (
	"fmt"

	"ccsched/csstate"
	"ccsched/instance"
)

// Cell is one allocation block drawn on a machine's lane: its horizontal
// position and width are derived from Start/End, its fill from Stage.
type Cell struct {
	Machine instance.MachineID
	Charge  instance.ChargeID
	Stage   instance.StageID
	Start   instance.Seconds
	End     instance.Seconds
	Fill    string
}

// Convert flattens machine states into lanes of cells, one lane per
// machine ordered by MachineID, each lane's cells ordered by Start.
func Convert(inst *instance.Instance, machines csstate.MachineStates) [][]Cell {
	ids := make([]instance.MachineID, 0, len(machines))
	for id := range machines {
		ids = append(ids, id)
	}
	sortMachineIDs(ids)

	lanes := make([][]Cell, 0, len(ids))
	for _, id := range ids {
		ms := machines[id]
		lane := make([]Cell, 0, len(ms.Allocations))
		for _, a := range ms.Allocations {
			lane = append(lane, Cell{
				Machine: a.Machine,
				Charge:  a.Charge,
				Stage:   a.Stage,
				Start:   a.Start,
				End:     a.End,
				Fill:    fill(inst, a.Stage),
			})
		}
		lanes = append(lanes, lane)
	}
	return lanes
}

// EleID returns the DOM element id a cell's rect is addressed by.
func (c Cell) EleID() string {
	return fmt.Sprintf("m%d-c%d", c.Machine, c.Charge)
}

// fill picks a lane color by whether the stage is the terminal casting
// stage or an earlier one, so casters visually stand out.
func fill(inst *instance.Instance, stage instance.StageID) string {
	if stage == inst.H {
		return "lightyellow"
	}
	return "lightblue"
}

func sortMachineIDs(ids []instance.MachineID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
