package solver

import G "gorgonia.org/gorgonia"

// VanillaConfig describes a configuration of the vanilla gradient
// descent solver.
type VanillaConfig struct {
	StepSize float64
	Batch    int
	Clip     float64 // <= 0 if no clipping
}

// NewVanilla returns a new Vanilla Solver
func NewVanilla(stepSize float64, batchSize int,
	clip float64) (*Solver, error) {
	return newSolver(Vanilla, VanillaConfig{
		StepSize: stepSize,
		Batch:    batchSize,
		Clip:     clip,
	})
}

// Create returns a Gorgonia Vanilla Solver as described by the
// VanillaConfig
func (v VanillaConfig) Create() G.Solver {
	opts := []G.SolverOpt{
		G.WithLearnRate(v.StepSize),
		G.WithBatchSize(float64(v.Batch)),
	}
	if v.Clip > 0 {
		opts = append(opts, G.WithClip(v.Clip))
	}
	return G.NewVanillaSolver(opts...)
}

// ValidType returns whether the given Solver type can be created with
// this config
func (v VanillaConfig) ValidType(t Type) bool {
	return t == Vanilla
}

// LearnRate returns the step size of the described Solver
func (v VanillaConfig) LearnRate() float64 {
	return v.StepSize
}

// WithLearnRate returns a copy of the VanillaConfig with a new step
// size
func (v VanillaConfig) WithLearnRate(stepSize float64) Config {
	v.StepSize = stepSize
	return v
}
