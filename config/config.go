// Package config loads run parameters for the scheduler and its ambient
// collaborators from a YAML file: the PRNG seed, objective weights, and
// the visualization server's bind address.
package config

import (
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OuterConfig is the top-level YAML envelope: a kind selector plus an
// opaque inner definition, read once via viper and then re-marshaled into
// the concrete RunConfig below.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// RunConfig holds everything a single scheduling invocation needs beyond
// the instance itself.
type RunConfig struct {
	// Seed is the PRNG seed handed to rand.NewSource before a run.
	Seed int64 `mapstructure:"seed" yaml:"seed"`
	// Weights are the λ multipliers applied to z1/z2/z3.
	Weights WeightsConfig `mapstructure:"weights" yaml:"weights"`
	// VizAddr is the bind address for the visualization server, e.g. ":8080".
	VizAddr string `mapstructure:"vizAddr" yaml:"vizaddr"`
	// Seeds is the list of seeds the batch harness runs, one goroutine per seed.
	Seeds []int64 `mapstructure:"seeds" yaml:"seeds"`
}

// WeightsConfig mirrors objectives.Weights in YAML-friendly form.
type WeightsConfig struct {
	Lambda1 float64 `mapstructure:"lambda1" yaml:"lambda1"`
	Lambda2 float64 `mapstructure:"lambda2" yaml:"lambda2"`
	Lambda3 float64 `mapstructure:"lambda3" yaml:"lambda3"`
}

// Default returns a RunConfig with seed 1, unit weights, a single seed for
// the batch harness, and the viz server bound to port 8080 on all
// interfaces.
func Default() RunConfig {
	return RunConfig{
		Seed:    1,
		Weights: WeightsConfig{Lambda1: 1, Lambda2: 1, Lambda3: 1},
		VizAddr: ":8080",
		Seeds:   []int64{1},
	}
}

// FromYaml reads path as an OuterConfig via viper, then re-marshals its
// Def field into a concrete RunConfig. Any field left unset in the file
// keeps its Default() value, since inner starts from Default() rather
// than the zero value.
func FromYaml(path string) (*RunConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))

	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outer := &OuterConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, err
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, err
	}

	inner := Default()
	if err := yaml.Unmarshal(spec, &inner); err != nil {
		return nil, err
	}

	return &inner, nil
}
