package main

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"ccsched/ioadapter"
)

func TestRunAppRequiresInstanceFlag(t *testing.T) {
	Convey("When -instance is not set", t, func() {
		*instanceDir = ""
		err := runApp()

		Convey("Then runApp reports an error instead of panicking", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRunAppLoadsAndSchedules(t *testing.T) {
	Convey("Given a minimal instance on disk", t, func() {
		dir := writeMinimalInstance(t)
		*instanceDir = dir
		*configPath = ""
		*seed = 7

		Convey("When runApp is invoked", func() {
			err := runApp()

			Convey("Then it loads, schedules, and evaluates without error", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

// writeMinimalInstance writes the six instance tables for a single charge
// running through one non-terminal stage and one terminal caster stage.
func writeMinimalInstance(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"Stage.csv": "MachineID,StageID\n" +
			"101,1\n" +
			"201,2\n",
		"Earliest_available_time.csv": "MachineID,EAT\n" +
			"101,1980-01-01 00:00:00\n" +
			"201,1980-01-01 00:00:00\n",
		"Transport_Time.csv": "Transport_line,Transport_Time\n" +
			"101-201,0\n",
		"Cast_plan.csv": "ChargeID,CC,ChargeRoute\n" +
			"1,201,1-2\n",
		"nonCC_Processing_Time.csv": "ChargeID,StageID,MinTime,Standard_Time,MaxTime\n" +
			"1,1,10,15,20\n",
		"CC_Processing_Time.csv": "ChargeID,CCID,MinTime,Standard_Time,MaxTime\n" +
			"1,201,10,15,20\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}

	if _, err := ioadapter.LoadInstance(dir); err != nil {
		t.Fatalf("fixture does not load: %v", err)
	}
	return dir
}
