package schedule

import (
	"fmt"
	"math"
)

// MultiStepConfig implements a configuration of a schedule that
// multiplies the step size by a decay factor at each of a fixed set of
// milestone training steps
type MultiStepConfig struct {
	Initial    float64
	Decay      float64
	Milestones []int
}

// NewMultiStep returns a new schedule that starts at step size initial
// and decays it by a multiplicative factor of decay once the training
// step reaches each milestone
func NewMultiStep(initial, decay float64, milestones []int) (*Schedule,
	error) {
	if decay <= 0 {
		return nil, fmt.Errorf("newMultiStep: decay must be positive "+
			"\n\thave(%v)", decay)
	}

	return newSchedule(MultiStep, MultiStepConfig{
		Initial:    initial,
		Decay:      decay,
		Milestones: milestones,
	})
}

// At returns the step size after step training steps
func (c MultiStepConfig) At(step int) float64 {
	decays := 0
	for _, milestone := range c.Milestones {
		if step >= milestone {
			decays++
		}
	}
	return c.Initial * math.Pow(c.Decay, float64(decays))
}

// ValidType returns if the given Schedule type is a valid type to be
// created with this config.
func (c MultiStepConfig) ValidType(t Type) bool {
	return t == MultiStep
}
