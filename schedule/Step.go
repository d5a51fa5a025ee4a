package schedule

import (
	"fmt"
	"math"
)

// StepConfig implements a configuration of a schedule that multiplies
// the step size by a decay factor every interval training steps
type StepConfig struct {
	Initial  float64
	Decay    float64
	Interval int
}

// NewStep returns a new schedule that starts at step size initial and
// decays it by a multiplicative factor of decay every interval
// training steps
func NewStep(initial, decay float64, interval int) (*Schedule, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("newStep: interval must be positive "+
			"\n\thave(%v)", interval)
	}
	if decay <= 0 {
		return nil, fmt.Errorf("newStep: decay must be positive "+
			"\n\thave(%v)", decay)
	}

	return newSchedule(Step, StepConfig{
		Initial:  initial,
		Decay:    decay,
		Interval: interval,
	})
}

// At returns the step size after step training steps
func (c StepConfig) At(step int) float64 {
	return c.Initial * math.Pow(c.Decay, float64(step/c.Interval))
}

// ValidType returns if the given Schedule type is a valid type to be
// created with this config.
func (c StepConfig) ValidType(t Type) bool {
	return t == Step
}
