package ppo_test

import (
	"testing"

	"github.com/samuelfneumann/goppo/agent/nonlinear/continuous/ppo"
	"github.com/samuelfneumann/goppo/initwfn"
	"github.com/samuelfneumann/goppo/network"
	"github.com/samuelfneumann/goppo/solver"
)

// validConfig returns a Config that passes validation
func validConfig(t *testing.T) ppo.Config {
	t.Helper()

	init, err := initwfn.NewZeroes()
	if err != nil {
		t.Fatalf("could not create init function: %v", err)
	}
	policySolver, err := solver.NewVanilla(0.1, 1, -1.0)
	if err != nil {
		t.Fatalf("could not create policy solver: %v", err)
	}
	criticSolver, err := solver.NewVanilla(0.1, 1, -1.0)
	if err != nil {
		t.Fatalf("could not create critic solver: %v", err)
	}

	return ppo.Config{
		PolicyRootLayers:      []int{2},
		PolicyRootBiases:      []bool{true},
		PolicyRootActivations: []*network.Activation{network.ReLU()},
		PolicyLeafLayers:      [][]int{{}, {}},
		PolicyLeafBiases:      [][]bool{{}, {}},
		PolicyLeafActivations: [][]*network.Activation{{}, {}},

		CriticLayers:      []int{2},
		CriticBiases:      []bool{true},
		CriticActivations: []*network.Activation{network.ReLU()},

		InitWFn:      init,
		PolicySolver: policySolver,
		CriticSolver: criticSolver,

		BufferCapacity: 8,
		BatchSize:      4,
		Gamma:          0.99,
		GAELambda:      0.95,

		Epsilon:          0.2,
		EntropyLossCoeff: 0.01,
		ValueLossCoeff:   0.5,

		TargetKLDivergence: 0.015,
		ALow:               -1.0,
		AHigh:              1.0,
		ReportFrequency:    0,
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*ppo.Config)
	}{
		{"no init function", func(c *ppo.Config) { c.InitWFn = nil }},
		{"no policy solver", func(c *ppo.Config) { c.PolicySolver = nil }},
		{"no critic solver", func(c *ppo.Config) { c.CriticSolver = nil }},
		{"one leaf network", func(c *ppo.Config) {
			c.PolicyLeafLayers = [][]int{{}}
		}},
		{"zero capacity", func(c *ppo.Config) { c.BufferCapacity = 0 }},
		{"zero batch size", func(c *ppo.Config) { c.BatchSize = 0 }},
		{"discount above 1", func(c *ppo.Config) { c.Gamma = 1.1 }},
		{"negative discount", func(c *ppo.Config) { c.Gamma = -0.1 }},
		{"lambda above 1", func(c *ppo.Config) { c.GAELambda = 1.5 }},
		{"zero clipping radius", func(c *ppo.Config) { c.Epsilon = 0.0 }},
		{"negative value loss coefficient", func(c *ppo.Config) {
			c.ValueLossCoeff = -0.5
		}},
		{"equal action bounds", func(c *ppo.Config) { c.ALow = c.AHigh }},
		{"negative report frequency", func(c *ppo.Config) {
			c.ReportFrequency = -1
		}},
	}

	for _, test := range tests {
		config := validConfig(t)
		test.mutate(&config)
		if err := config.Validate(); err == nil {
			t.Errorf("%v: expected a validation error", test.name)
		}
	}
}
