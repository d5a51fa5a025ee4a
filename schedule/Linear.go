package schedule

import "fmt"

// LinearConfig implements a configuration of a schedule that linearly
// interpolates the step size from an initial to a final value over a
// fixed number of training steps, after which the step size stays at
// the final value
type LinearConfig struct {
	Initial float64
	Final   float64
	Steps   int
}

// NewLinear returns a new schedule that linearly anneals the step size
// from initial to final over the first steps training steps
func NewLinear(initial, final float64, steps int) (*Schedule, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("newLinear: steps must be positive "+
			"\n\thave(%v)", steps)
	}

	return newSchedule(Linear, LinearConfig{
		Initial: initial,
		Final:   final,
		Steps:   steps,
	})
}

// At returns the step size after step training steps
func (c LinearConfig) At(step int) float64 {
	if step >= c.Steps {
		return c.Final
	}
	progress := float64(step) / float64(c.Steps)
	return c.Initial + (c.Final-c.Initial)*progress
}

// ValidType returns if the given Schedule type is a valid type to be
// created with this config.
func (c LinearConfig) ValidType(t Type) bool {
	return t == Linear
}
