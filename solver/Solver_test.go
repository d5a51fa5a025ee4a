package solver_test

import (
	"encoding/json"
	"testing"

	"github.com/samuelfneumann/goppo/solver"
)

func TestSolverJSON(t *testing.T) {
	adam, err := solver.NewAdam(0.01, 1e-8, 0.9, 0.999, 32)
	if err != nil {
		t.Fatal(err)
	}
	vanilla, err := solver.NewVanilla(0.1, 16, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	rmsProp, err := solver.NewRMSProp(0.0005, 1e-8, 0.001, 0.99, 8, -1.0)
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range []*solver.Solver{adam, vanilla, rmsProp} {
		data, err := json.Marshal(s)
		if err != nil {
			t.Errorf("marshal %v: %v", s.Type, err)
			continue
		}

		var got solver.Solver
		if err := json.Unmarshal(data, &got); err != nil {
			t.Errorf("unmarshal %v: %v", s.Type, err)
			continue
		}

		if got.Type != s.Type {
			t.Errorf("unmarshal: expected type %v, got %v", s.Type, got.Type)
		}
		if got.Config != s.Config {
			t.Errorf("unmarshal %v: expected config %v, got %v", s.Type,
				s.Config, got.Config)
		}
		if got.Solver == nil {
			t.Errorf("unmarshal %v: wrapped solver should not be nil", s.Type)
		}
	}
}

func TestSolverSetLearnRate(t *testing.T) {
	s, err := solver.NewDefaultAdam(0.01, 32)
	if err != nil {
		t.Fatal(err)
	}
	if lr := s.LearnRate(); lr != 0.01 {
		t.Errorf("learnrate: expected 0.01, got %v", lr)
	}

	s.SetLearnRate(0.001)
	if lr := s.LearnRate(); lr != 0.001 {
		t.Errorf("setlearnrate: expected 0.001, got %v", lr)
	}
	if s.Solver == nil {
		t.Error("setlearnrate: wrapped solver should not be nil")
	}

	// Only the step size should change
	config, ok := s.Config.(solver.AdamConfig)
	if !ok {
		t.Fatalf("setlearnrate: expected AdamConfig, got %T", s.Config)
	}
	if config.Beta1 != 0.9 || config.Beta2 != 0.999 || config.Batch != 32 {
		t.Errorf("setlearnrate: hyperparameters changed: %v", config)
	}
}

func TestNewRMSPropEta(t *testing.T) {
	if _, err := solver.NewRMSProp(0.01, 1e-8, 0.5, 0.99, 8, -1.0); err == nil {
		t.Error("newrmsprop: expected error for unsupported η")
	}
}
