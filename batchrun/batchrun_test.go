package batchrun

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"ccsched/instance"
	"ccsched/objectives"
)

func buildSmallInstance() (*instance.Instance, error) {
	charges := map[instance.ChargeID]instance.ChargeSpec{
		1: {ID: 1, Route: []instance.StageID{1}, Caster: 101, CastID: 1, CC: instance.Envelope{Min: 10, Std: 20, Max: 30}},
		2: {ID: 2, Route: []instance.StageID{1}, Caster: 101, CastID: 2, CC: instance.Envelope{Min: 10, Std: 20, Max: 30}},
	}
	machines := map[instance.MachineID]instance.MachineSpec{
		101: {ID: 101, Stage: 1},
	}
	machineReady := map[instance.MachineID]instance.Seconds{101: 0}

	return instance.NewWithCastOrder(charges, machines, map[[2]instance.MachineID]int{}, machineReady,
		map[instance.MachineID][]instance.ChargeID{101: {1, 2}})
}

func TestRun(t *testing.T) {
	Convey("Given a small instance and several seeds", t, func() {
		inst, err := buildSmallInstance()
		So(err, ShouldBeNil)

		done := make(chan struct{})
		defer close(done)

		seeds := []int64{1, 2, 3, 4, 5}

		Convey("every seed produces an outcome and one is reported best", func() {
			outcomes, best := Run(inst, seeds, objectives.DefaultWeights(), done)
			So(len(outcomes), ShouldEqual, len(seeds))
			So(best, ShouldNotBeNil)

			for _, o := range outcomes {
				So(o.Err, ShouldBeNil)
				So(o.Objectives.Total, ShouldBeGreaterThanOrEqualTo, best.Objectives.Total)
			}
		})
	})
}
