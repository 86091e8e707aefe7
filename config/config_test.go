package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFromYaml(t *testing.T) {
	Convey("Given a YAML config naming a seed and custom weights", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "run.yaml")
		body := `
kind: run
def:
  seed: 99
  vizAddr: ":9090"
  weights:
    lambda1: 2
    lambda2: 0.5
    lambda3: 1
  seeds: [1, 2, 3]
`
		So(os.WriteFile(path, []byte(body), 0o644), ShouldBeNil)

		Convey("FromYaml parses every field", func() {
			cfg, err := FromYaml(path)
			So(err, ShouldBeNil)
			So(cfg.Seed, ShouldEqual, 99)
			So(cfg.VizAddr, ShouldEqual, ":9090")
			So(cfg.Weights.Lambda1, ShouldEqual, 2)
			So(cfg.Weights.Lambda2, ShouldEqual, 0.5)
			So(cfg.Seeds, ShouldResemble, []int64{1, 2, 3})
		})
	})

	Convey("Default returns unit weights and a single seed", t, func() {
		cfg := Default()
		So(cfg.Weights.Lambda1, ShouldEqual, 1)
		So(cfg.Weights.Lambda2, ShouldEqual, 1)
		So(cfg.Weights.Lambda3, ShouldEqual, 1)
		So(cfg.Seeds, ShouldResemble, []int64{1})
	})
}
