package objectives

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"ccsched/csstate"
	"ccsched/instance"
	"ccsched/scheduler"
)

func buildTwoStageInstance() (*instance.Instance, error) {
	charges := map[instance.ChargeID]instance.ChargeSpec{
		1: {
			ID:     1,
			Route:  []instance.StageID{1, 2},
			Caster: 201,
			CastID: 1,
			NonCC:  map[instance.StageID]instance.Envelope{1: {Min: 10, Std: 15, Max: 20}},
			CC:     instance.Envelope{Min: 10, Std: 20, Max: 30},
		},
		2: {
			ID:     2,
			Route:  []instance.StageID{1, 2},
			Caster: 201,
			CastID: 2,
			NonCC:  map[instance.StageID]instance.Envelope{1: {Min: 10, Std: 15, Max: 20}},
			CC:     instance.Envelope{Min: 10, Std: 20, Max: 30},
		},
	}
	machines := map[instance.MachineID]instance.MachineSpec{
		101: {ID: 101, Stage: 1},
		201: {ID: 201, Stage: 2},
	}
	transport := map[[2]instance.MachineID]int{
		{101, 201}: 0,
	}
	machineReady := map[instance.MachineID]instance.Seconds{101: 0, 201: 0}

	return instance.NewWithCastOrder(charges, machines, transport, machineReady,
		map[instance.MachineID][]instance.ChargeID{201: {1, 2}})
}

func TestEvaluate(t *testing.T) {
	Convey("Given a finished two-stage run", t, func() {
		inst, err := buildTwoStageInstance()
		So(err, ShouldBeNil)

		res, err := scheduler.Run(inst, rand.New(rand.NewSource(7)))
		So(err, ShouldBeNil)

		Convey("z3 is zero when every allocation ran at standard duration", func() {
			out := Evaluate(inst, res.Charges, DefaultWeights())
			So(out.Z3, ShouldEqual, 0)
		})

		Convey("Total equals the weighted sum of z1, z2, z3", func() {
			w := Weights{Lambda1: 2, Lambda2: 3, Lambda3: 5}
			out := Evaluate(inst, res.Charges, w)
			So(out.Total, ShouldEqual, 2*out.Z1+3*out.Z2+5*out.Z3)
		})

		Convey("z1 equals the latest allocation end across all charges", func() {
			out := Evaluate(inst, res.Charges, DefaultWeights())
			var want float64
			for _, cs := range res.Charges {
				if n := len(cs.Allocations); n > 0 {
					if e := float64(cs.Allocations[n-1].End); e > want {
						want = e
					}
				}
			}
			So(out.Z1, ShouldEqual, want)
		})
	})
}

func TestWaitingTimeSubtractsTransportTime(t *testing.T) {
	Convey("Given a charge whose two allocations are separated by a 5-minute transport time", t, func() {
		machines := map[instance.MachineID]instance.MachineSpec{
			101: {ID: 101, Stage: 1},
			201: {ID: 201, Stage: 2},
		}
		transport := map[[2]instance.MachineID]int{
			{101, 201}: 5,
		}
		machineReady := map[instance.MachineID]instance.Seconds{101: 0, 201: 0}
		charges := map[instance.ChargeID]instance.ChargeSpec{
			1: {
				ID:     1,
				Route:  []instance.StageID{1, 2},
				Caster: 201,
				CastID: 1,
				NonCC:  map[instance.StageID]instance.Envelope{1: {Min: 5, Std: 10, Max: 15}},
				CC:     instance.Envelope{Min: 10, Std: 20, Max: 30},
			},
		}
		inst, err := instance.NewWithCastOrder(charges, machines, transport, machineReady,
			map[instance.MachineID][]instance.ChargeID{201: {1}})
		So(err, ShouldBeNil)

		cs := csstate.NewChargeState(1)
		// Stage 1 ends at 600s; the charge isn't actually ready for stage 2
		// until 900s (600 + 5 minutes transport), but here it is made
		// available early, at 650s, to isolate the waiting-time
		// contribution: 650 - 600 - 300 = -250.
		cs.Allocate(1, 101, 0, 600)
		cs.Allocate(2, 201, 650, 1850)
		states := csstate.ChargeStates{1: cs}

		Convey("z2 nets out the transport time, not just the raw start/end gap", func() {
			out := Evaluate(inst, states, DefaultWeights())
			So(out.Z2, ShouldEqual, float64(650-600-5*60))
		})
	})
}
