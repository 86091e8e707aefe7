package ioadapter

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"ccsched/instance"
)

func writeFixture(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
}

func buildFixtureDir(t *testing.T) string {
	dir := t.TempDir()

	writeFixture(t, dir, stageFile, "MachineID,StageID\n101,1\n201,2\n")
	writeFixture(t, dir, earliestAvailableFile, "MachineID,EAT\n101,1980-01-01 00:00:00\n201,1980-01-01 00:05:00\n")
	writeFixture(t, dir, transportTimeFile, "Transport_line,Transport_Time\n101-201,3\n")
	writeFixture(t, dir, castPlanFile, "ChargeID,CC,ChargeRoute\n1,201,1-2\n2,201,1-2\n")
	writeFixture(t, dir, nonCCProcessingFile, "ChargeID,StageID,MinTime,Standard_Time,MaxTime\n1,1,20,30,40\n2,1,20,30,40\n")
	writeFixture(t, dir, ccProcessingFile, "ChargeID,CCID,MinTime,Standard_Time,MaxTime\n2,201,10,20,30\n1,201,10,20,30\n")

	return dir
}

func TestLoadInstance(t *testing.T) {
	Convey("Given a directory of the six fixture tables", t, func() {
		dir := buildFixtureDir(t)

		Convey("LoadInstance builds a valid instance", func() {
			inst, err := LoadInstance(dir)
			So(err, ShouldBeNil)
			So(len(inst.Charges), ShouldEqual, 2)
			So(inst.H, ShouldEqual, instance.StageID(2))
		})

		Convey("the cast sequence preserves CC_Processing_Time row order, not ChargeID order", func() {
			inst, err := LoadInstance(dir)
			So(err, ShouldBeNil)
			So(inst.CastSequence(201), ShouldResemble, []instance.ChargeID{2, 1})
		})

		Convey("transport time and earliest-available time are threaded through", func() {
			inst, err := LoadInstance(dir)
			So(err, ShouldBeNil)
			tt, ok := inst.TransportTime(101, 201)
			So(ok, ShouldBeTrue)
			So(tt, ShouldEqual, 3)
			So(inst.MachineReady[201], ShouldEqual, instance.Seconds(300))
		})
	})
}
