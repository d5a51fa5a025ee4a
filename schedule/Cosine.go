package schedule

import (
	"fmt"
	"math"
)

// CosineAnnealingConfig implements a configuration of a schedule that
// anneals the step size from an initial value to a minimum value along
// a half cosine wave over a fixed number of training steps, after
// which the step size stays at the minimum
type CosineAnnealingConfig struct {
	Initial float64
	Min     float64
	Steps   int
}

// NewCosineAnnealing returns a new schedule that anneals the step size
// from initial to min along a half cosine wave over the first steps
// training steps
func NewCosineAnnealing(initial, min float64, steps int) (*Schedule, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("newCosineAnnealing: steps must be positive "+
			"\n\thave(%v)", steps)
	}

	return newSchedule(CosineAnnealing, CosineAnnealingConfig{
		Initial: initial,
		Min:     min,
		Steps:   steps,
	})
}

// At returns the step size after step training steps
func (c CosineAnnealingConfig) At(step int) float64 {
	if step >= c.Steps {
		return c.Min
	}
	progress := float64(step) / float64(c.Steps)
	return c.Min + 0.5*(c.Initial-c.Min)*(1+math.Cos(math.Pi*progress))
}

// ValidType returns if the given Schedule type is a valid type to be
// created with this config.
func (c CosineAnnealingConfig) ValidType(t Type) bool {
	return t == CosineAnnealing
}
